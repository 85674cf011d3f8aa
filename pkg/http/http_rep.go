package http

import (
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Status int    `json:"-"`
	Code   int    `json:"code"`
	Detail any    `json:"detail,omitempty"`
	Msg    string `json:"msg"`
}

// WithRepJSON returns a success envelope carrying detail.
func WithRepJSON(c *fiber.Ctx, detail any) error {
	return c.Status(Success.Status).JSON(Response{
		Code:   Success.Code,
		Detail: detail,
		Msg:    Success.Msg,
	})
}

// WithRepCreated returns a 201 envelope carrying detail.
func WithRepCreated(c *fiber.Ctx, detail any) error {
	return c.Status(SuccessCreated.Status).JSON(Response{
		Code:   SuccessCreated.Code,
		Detail: detail,
		Msg:    SuccessCreated.Msg,
	})
}

// WithRepNotDetail returns a success envelope without a detail field.
func WithRepNotDetail(c *fiber.Ctx) error {
	return c.Status(Success.Status).JSON(Response{
		Code: Success.Code,
		Msg:  Success.Msg,
	})
}
