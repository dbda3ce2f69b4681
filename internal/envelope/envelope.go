// Package envelope writes the uniform JSON response shape shared by every
// endpoint: {"success":true,"data":...} or {"success":false,"error":...,"code":...}.
package envelope

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/illegalcall/codeshell/internal/apperr"
)

const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeServer       = "SERVER_ERROR"
)

const (
	allowHeaders = "authorization, x-client-info, apikey, content-type"
	allowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
)

// AllowOrigin is the value of Access-Control-Allow-Origin. It is set once at startup.
var AllowOrigin = "*"

type successBody struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// JSON writes a success envelope. The status defaults to 200.
func JSON(c *fiber.Ctx, data interface{}, status ...int) error {
	code := fiber.StatusOK
	if len(status) > 0 && status[0] != 0 {
		code = status[0]
	}
	setCORS(c)
	return c.Status(code).JSON(successBody{Success: true, Data: data})
}

// Error writes a failure envelope. A zero status means 400.
func Error(c *fiber.Ctx, message string, status int, code string) error {
	if status == 0 {
		status = fiber.StatusBadRequest
	}
	setCORS(c)
	return c.Status(status).JSON(errorBody{Success: false, Error: message, Code: code})
}

// Unauthorized writes the 401 envelope returned when no user could be resolved.
func Unauthorized(c *fiber.Ctx) error {
	return Error(c, "Unauthorized", fiber.StatusUnauthorized, CodeUnauthorized)
}

// FromError maps err onto the envelope. Errors without a kind become 500 and their
// detail is only exposed when expose is true.
func FromError(c *fiber.Ctx, err error, expose bool) error {
	var msg string
	var e *apperr.Error
	if errors.As(err, &e) {
		msg = e.Msg
	}

	switch apperr.KindOf(err) {
	case apperr.KindUnauthenticated:
		return Error(c, nonEmpty(msg, "Unauthorized"), fiber.StatusUnauthorized, CodeUnauthorized)
	case apperr.KindNotFound:
		return Error(c, nonEmpty(msg, "Not found"), fiber.StatusNotFound, CodeNotFound)
	case apperr.KindValidation:
		return Error(c, nonEmpty(msg, "Invalid request"), fiber.StatusBadRequest, CodeValidation)
	case apperr.KindConflict:
		return Error(c, nonEmpty(msg, "Conflict"), fiber.StatusConflict, CodeConflict)
	}

	if expose {
		msg = err.Error()
	}
	return Error(c, nonEmpty(msg, "Internal server error"), fiber.StatusInternalServerError, CodeServer)
}

// Preflight answers CORS preflight requests.
func Preflight(c *fiber.Ctx) error {
	setCORS(c)
	return c.Status(fiber.StatusOK).SendString("ok")
}

func setCORS(c *fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, AllowOrigin)
	c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)
	c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)
}

func nonEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
