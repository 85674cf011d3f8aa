package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worklane/worklane/internal/server/consts"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/middleware"
)

func (rt *Router) userRouter(r fiber.Router, auth fiber.Handler) {
	userGroup := r.Group("/user")
	{
		userGroup.Get("/info", auth, rt.getUserInfo)
		userGroup.Get("/approvers", auth, rt.getApprovers)
	}
}

func (rt *Router) getUserInfo(c *fiber.Ctx) error {
	info, err := rt.userService.Info(middleware.UserID(c))
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, info)
}

// getApprovers lists org members holding a role, defaulting to admin: the
// request form uses it to populate the target picker.
func (rt *Router) getApprovers(c *fiber.Ctx) error {
	caller, err := rt.userService.Info(middleware.UserID(c))
	if err != nil {
		return repErr(c, err)
	}
	role := c.Query("role", consts.RoleAdmin)
	approvers, err := rt.userService.Approvers(caller.OrganizationId, role)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, approvers)
}

// requireAdmin loads the caller and rejects non-admins. Returns nil after
// writing the response when the caller may not proceed.
func (rt *Router) requireAdmin(c *fiber.Ctx) (*model.UserInfo, error) {
	caller, err := rt.userService.Info(middleware.UserID(c))
	if err != nil {
		return nil, repErr(c, err)
	}
	if caller.Role != consts.RoleAdmin {
		return nil, http.WithRepErr(c, http.PermissionDenied, c.Path())
	}
	return caller, nil
}
