package utils_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/aulagest/aulagest-api/internal/apperr"
	"github.com/aulagest/aulagest-api/internal/utils"
)

func TestSendSuccessDefaults(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, "", map[string]string{"hello": "world"})
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	decode(t, resp, &payload)

	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
	require.Equal(t, "world", payload.Data["hello"])
}

func TestSendSuccessWithStatus(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "created", nil)
	})

	resp := performRequest(t, app, http.MethodPost, "/")
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestSendDomainErrorMapsStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", &apperr.NotFound{Entity: "group", ID: 4}, fiber.StatusNotFound},
		{"validation", &apperr.Validation{Field: "roster", Reason: "missing modules"}, fiber.StatusUnprocessableEntity},
		{"role violation", &apperr.RoleViolation{Entity: "group owner", ExpectedRole: "teacher"}, fiber.StatusUnprocessableEntity},
		{"range", &apperr.Range{Field: "final_score", Min: 0, Max: 10}, fiber.StatusUnprocessableEntity},
		{"authorization", &apperr.Authorization{ActorID: 7, Scope: "grades"}, fiber.StatusForbidden},
		{"conflict", &apperr.Conflict{Constraint: "module code"}, fiber.StatusConflict},
		{"storage", &apperr.Storage{Err: errors.New("connection refused")}, fiber.StatusInternalServerError},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return utils.SendDomainError(c, tc.err)
			})

			resp := performRequest(t, app, http.MethodGet, "/")
			require.Equal(t, tc.status, resp.StatusCode)

			var payload struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			decode(t, resp, &payload)
			require.False(t, payload.Success)
			require.NotEmpty(t, payload.Message)
		})
	}
}

func TestSendDomainErrorHidesStorageDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SendDomainError(c, &apperr.Storage{Err: errors.New("dial tcp 10.0.0.5:5432: connection refused")})
	})

	resp := performRequest(t, app, http.MethodGet, "/")
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var payload struct {
		Message string `json:"message"`
	}
	decode(t, resp, &payload)
	require.Equal(t, "internal error", payload.Message)
	require.NotContains(t, payload.Message, "10.0.0.5")
}

func performRequest(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
