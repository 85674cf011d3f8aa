package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/middleware"
)

func (rt *Router) orgRouter(r fiber.Router, auth fiber.Handler) {
	group := r.Group("/org")
	{
		group.Get("/settings", auth, rt.getOrgSettings)
	}
}

func (rt *Router) getOrgSettings(c *fiber.Ctx) error {
	caller, err := rt.userService.Info(middleware.UserID(c))
	if err != nil {
		return repErr(c, err)
	}
	settings, err := rt.orgService.Settings(caller.OrganizationId)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, settings)
}
