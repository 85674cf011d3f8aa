package http

import (
	"github.com/gofiber/fiber/v2"
)

type ResponseErr struct {
	ErrCode int    `json:"code"`
	ErrMsg  any    `json:"errMsg"`
	Path    string `json:"path,omitempty"`
}

// WithRepErr returns an error envelope for the given response constant,
// setting the matching HTTP status.
func WithRepErr(c *fiber.Ctx, resp *Response, path string) error {
	return c.Status(resp.Status).JSON(ResponseErr{
		ErrCode: resp.Code,
		ErrMsg:  resp.Msg,
		Path:    path,
	})
}

// WithRepErrMsg returns an error envelope with a custom message.
func WithRepErrMsg(c *fiber.Ctx, status, code int, errMsg string, path string) error {
	return c.Status(status).JSON(ResponseErr{
		ErrCode: code,
		ErrMsg:  errMsg,
		Path:    path,
	})
}
