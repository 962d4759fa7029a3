package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maderasur/corralon-api/internal/application/dto"
	"github.com/maderasur/corralon-api/internal/domain"
)

// Las validaciones del handler cortan antes de tocar el caso de uso, por eso
// alcanza con handlers sin dependencias.
func buildOrderTestApp() *fiber.App {
	app := fiber.New()
	h := NewOrderHandler(nil, nil, nil)
	app.Post("/api/orders", h.Create)
	app.Put("/api/orders/:id", h.Update)
	app.Post("/api/orders/:id/payments", h.AddPayment)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.ErrorResponse
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestOrderHandler_CuerpoInvalido(t *testing.T) {
	app := buildOrderTestApp()
	status, out := postJSON(t, app, "/api/orders", "{esto no es json")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_BODY", out.Code)
}

func TestOrderHandler_ValidacionDeclarativa(t *testing.T) {
	app := buildOrderTestApp()

	// kind fuera del enum
	status, out := postJSON(t, app, "/api/orders", `{"kind":"invoice","client_id":"c1","items":[{"product_id":"p1","quantity":1}]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Contains(t, out.Message, "kind")

	// sin líneas
	status, out = postJSON(t, app, "/api/orders", `{"kind":"sale","client_id":"c1","items":[]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out.Code)

	// cantidad cero en una línea
	status, out = postJSON(t, app, "/api/orders", `{"kind":"sale","client_id":"c1","items":[{"product_id":"p1","quantity":0}]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out.Code)
}

func TestOrderHandler_PagoSinMetodo(t *testing.T) {
	app := buildOrderTestApp()
	status, out := postJSON(t, app, "/api/orders/o1/payments", `{"amount":"100","recorded_by":"caja"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", out.Code)
}

// Mapeo de errores de dominio a HTTP.
func TestRespondError_Mapeo(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validación", domain.Validation("kind", "tipo desconocido"), fiber.StatusBadRequest, "VALIDATION"},
		{"no encontrado", domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
		{"conflicto de versión", domain.ErrConflict, fiber.StatusConflict, "VERSION_CONFLICT"},
		{"duplicado", domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
		{"persistencia", &domain.PersistenceError{Op: "update", Collection: "orders"}, fiber.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/boom", func(c *fiber.Ctx) error {
				return respondError(c, tc.err)
			})
			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			raw, _ := io.ReadAll(resp.Body)
			var out dto.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &out))
			assert.Equal(t, tc.code, out.Code)
		})
	}
}
