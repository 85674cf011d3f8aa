package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/worklane/worklane/pkg/http"
	"github.com/worklane/worklane/pkg/http/middleware"
)

func (rt *Router) notificationRouter(r fiber.Router, auth fiber.Handler) {
	group := r.Group("/notifications")
	{
		group.Get("/", auth, rt.listNotifications)
		group.Post("/:notificationId/read", auth, rt.markNotificationRead)
	}
}

func (rt *Router) listNotifications(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 20)
	items, total, err := rt.notificationService.List(middleware.UserID(c), offset, limit)
	if err != nil {
		return repErr(c, err)
	}
	return http.WithRepJSON(c, fiber.Map{
		"items": items,
		"total": total,
	})
}

func (rt *Router) markNotificationRead(c *fiber.Ctx) error {
	id := c.Params("notificationId")
	if err := rt.notificationService.MarkRead(id, middleware.UserID(c)); err != nil {
		return repErr(c, err)
	}
	return http.WithRepNotDetail(c)
}
