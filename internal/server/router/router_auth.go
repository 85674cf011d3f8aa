package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worklane/worklane/internal/server/model"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/middleware"
)

func (rt *Router) authRouter(r fiber.Router, auth fiber.Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.Post("/login", rt.login)
		authGroup.Post("/logout", auth, rt.logout)
	}
}

func (rt *Router) login(c *fiber.Ctx) error {
	var login model.Login
	if err := c.BodyParser(&login); err != nil {
		return http.WithRepErr(c, http.RequestParameterParsingFailed, c.Path())
	}
	resp, err := rt.authService.Login(&login)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, resp)
}

func (rt *Router) logout(c *fiber.Ctx) error {
	if err := rt.authService.Logout(middleware.UserID(c)); err != nil {
		return repErr(c, err)
	}
	return http.WithRepNotDetail(c)
}
