package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/middleware"
)

func (rt *Router) adminRequestRouter(r fiber.Router, auth fiber.Handler) {
	group := r.Group("/admin-requests")
	{
		group.Post("/", auth, rt.createAdminRequest)
		group.Get("/status", auth, rt.adminRequestStatus)

		group.Get("/pending", auth, rt.listPendingAdminRequests)
		group.Post("/approve", auth, rt.resolveAdminRequest)

		// token-gated, reached from the approval mail; no session required
		group.Get("/process", rt.processAdminRequest)
		group.Post("/process", rt.processAdminRequest)
	}
}

func (rt *Router) createAdminRequest(c *fiber.Ctx) error {
	var req model.CreateAdminRequestReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErr(c, http.RequestParameterParsingFailed, c.Path())
	}
	summary, err := rt.requestService.Create(middleware.UserID(c), &req)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepCreated(c, summary)
}

func (rt *Router) adminRequestStatus(c *fiber.Ctx) error {
	status, err := rt.requestService.Status(middleware.UserID(c))
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, status)
}

func (rt *Router) listPendingAdminRequests(c *fiber.Ctx) error {
	caller, err := rt.requireAdmin(c)
	if caller == nil {
		return err
	}
	pending, err := rt.requestService.ListPending(caller.OrganizationId)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, pending)
}

func (rt *Router) resolveAdminRequest(c *fiber.Ctx) error {
	caller, err := rt.requireAdmin(c)
	if caller == nil {
		return err
	}
	var req model.ResolveAdminRequestReq
	if err := c.BodyParser(&req); err != nil {
		return http.WithRepErr(c, http.RequestParameterParsingFailed, c.Path())
	}
	result, err := rt.approvalService.ResolveByID(caller.OrganizationId, caller.UserId, &req)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, result)
}

// processAdminRequest resolves via the emailed token link. GET carries the
// token in the query so the mail links work from any client; POST accepts
// the same fields in the body.
func (rt *Router) processAdminRequest(c *fiber.Ctx) error {
	req := model.ProcessAdminRequestReq{
		Token:  c.Query("token"),
		Action: c.Query("action"),
		Reason: c.Query("reason"),
	}
	if c.Method() == fiber.MethodPost {
		if err := c.BodyParser(&req); err != nil {
			return http.WithRepErr(c, http.RequestParameterParsingFailed, c.Path())
		}
	}
	if req.Token == "" {
		return http.WithRepErr(c, http.RequestParameterParsingFailed, c.Path())
	}
	result, err := rt.approvalService.ResolveByToken(&req)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, result)
}
