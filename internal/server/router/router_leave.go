package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/middleware"
)

func (rt *Router) leaveRouter(r fiber.Router, auth fiber.Handler) {
	group := r.Group("/leave")
	{
		group.Get("/types", auth, rt.listLeaveTypes)
		group.Get("/balances", auth, rt.listLeaveBalances)
	}
}

func (rt *Router) listLeaveTypes(c *fiber.Ctx) error {
	caller, err := rt.userService.Info(middleware.UserID(c))
	if err != nil {
		return repErr(c, err)
	}
	types, err := rt.leaveService.Types(caller.OrganizationId)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, types)
}

func (rt *Router) listLeaveBalances(c *fiber.Ctx) error {
	caller, err := rt.userService.Info(middleware.UserID(c))
	if err != nil {
		return repErr(c, err)
	}
	balances, err := rt.leaveService.Balances(caller.OrganizationId, caller.UserId, c.QueryInt("year", 0))
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, balances)
}
