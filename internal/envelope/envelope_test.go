package envelope

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/codeshell/internal/apperr"
)

func call(t *testing.T, h fiber.Handler) (int, string, *fiber.App) {
	t.Helper()
	app := fiber.New()
	app.All("/", h)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Equal(t, allowHeaders, resp.Header.Get(fiber.HeaderAccessControlAllowHeaders))
	return resp.StatusCode, string(body), app
}

func TestJSON_DefaultsTo200(t *testing.T) {
	status, body, _ := call(t, func(c *fiber.Ctx) error {
		return JSON(c, fiber.Map{"name": "demo"})
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"success":true,"data":{"name":"demo"}}`, body)
}

func TestJSON_CustomStatus(t *testing.T) {
	status, body, _ := call(t, func(c *fiber.Ctx) error {
		return JSON(c, []string{"a"}, fiber.StatusCreated)
	})

	assert.Equal(t, fiber.StatusCreated, status)
	assert.JSONEq(t, `{"success":true,"data":["a"]}`, body)
}

func TestError_Shape(t *testing.T) {
	status, body, _ := call(t, func(c *fiber.Ctx) error {
		return Error(c, "Preview not found", fiber.StatusNotFound, CodeNotFound)
	})

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, `{"success":false,"error":"Preview not found","code":"NOT_FOUND"}`, body)
}

func TestError_ZeroStatusIs400AndCodeOmitted(t *testing.T) {
	status, body, _ := call(t, func(c *fiber.Ctx) error {
		return Error(c, "bad", 0, "")
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, `{"success":false,"error":"bad"}`, body)
}

func TestJSON_Idempotent(t *testing.T) {
	h := func(c *fiber.Ctx) error {
		return JSON(c, fiber.Map{"b": 2, "a": []int{1, 2}, "c": "x"})
	}
	_, first, _ := call(t, h)
	for i := 0; i < 5; i++ {
		_, again, _ := call(t, h)
		assert.Equal(t, first, again)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expose bool
		status int
		body   string
	}{
		{"not found", apperr.NotFound("Preview not found", nil), false, 404,
			`{"success":false,"error":"Preview not found","code":"NOT_FOUND"}`},
		{"validation", apperr.Validation("Name is required"), false, 400,
			`{"success":false,"error":"Name is required","code":"VALIDATION_ERROR"}`},
		{"unauthenticated", apperr.Unauthenticated("", nil), false, 401,
			`{"success":false,"error":"Unauthorized","code":"UNAUTHORIZED"}`},
		{"conflict", apperr.Conflict("Deploy already running"), false, 409,
			`{"success":false,"error":"Deploy already running","code":"CONFLICT"}`},
		{"hidden server error", errors.New("dial tcp: refused"), false, 500,
			`{"success":false,"error":"Internal server error","code":"SERVER_ERROR"}`},
		{"exposed server error", errors.New("dial tcp: refused"), true, 500,
			`{"success":false,"error":"dial tcp: refused","code":"SERVER_ERROR"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body, _ := call(t, func(c *fiber.Ctx) error {
				return FromError(c, tt.err, tt.expose)
			})
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestPreflight(t *testing.T) {
	status, body, _ := call(t, Preflight)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body)
}
