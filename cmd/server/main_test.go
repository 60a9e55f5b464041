package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"canteen-backend/internal/config"
	"canteen-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	t   *testing.T
	app *fiber.App
}

func (cl client) call(method, path, token, body string) (int, map[string]any, []byte) {
	cl.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(cl.t, err)

	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

func (cl client) signup(username, role string) string {
	cl.t.Helper()
	status, _, raw := cl.call(http.MethodPost, "/api/auth/register", "",
		fmt.Sprintf(`{"username":%q,"password":"pw","role":%q}`, username, role))
	require.Equal(cl.t, fiber.StatusCreated, status, string(raw))

	status, obj, raw := cl.call(http.MethodPost, "/api/auth/login", "",
		fmt.Sprintf(`{"username":%q,"password":"pw"}`, username))
	require.Equal(cl.t, fiber.StatusOK, status, string(raw))
	return obj["token"].(string)
}

func newClient(t *testing.T) client {
	cfg := &config.Config{
		JWTSecret:      "0123456789abcdef0123456789abcdef",
		CORSOrigins:    "*",
		LoginRateLimit: 100,

		AllowStaffSignup: true,
	}
	return client{t: t, app: setupApp(cfg, testutil.NewDB(t))}
}

func TestOrderFlowOverHTTP(t *testing.T) {
	cl := newClient(t)
	ann := cl.signup("ann", "student")
	chef := cl.signup("chef", "cook")

	status, _, _ := cl.call(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, obj, raw := cl.call(http.MethodPost, "/api/account/top-up", ann, `{"amount":500}`)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.EqualValues(t, 500, obj["balance"])

	status, obj, raw = cl.call(http.MethodPost, "/api/cook/dishes", chef,
		`{"name":"Borscht","price":150,"category":"lunch","quantity":10}`)
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	itemID := int(obj["item"].(map[string]any)["id"].(float64))

	// drafts cannot be ordered
	status, obj, _ = cl.call(http.MethodPost, "/api/orders", ann, fmt.Sprintf(`{"item_id":%d}`, itemID))
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "unavailable", obj["kind"])

	status, _, raw = cl.call(http.MethodPost, fmt.Sprintf("/api/cook/dishes/%d/publish", itemID), chef, "")
	require.Equal(t, fiber.StatusOK, status, string(raw))

	status, obj, raw = cl.call(http.MethodPost, "/api/orders", ann, fmt.Sprintf(`{"item_id":%d,"quantity":2}`, itemID))
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	assert.EqualValues(t, 300, obj["total"])
	assert.EqualValues(t, 200, obj["balance"])
	assert.Equal(t, "Paid", obj["status"])

	status, obj, _ = cl.call(http.MethodPost, "/api/orders", ann, fmt.Sprintf(`{"item_id":%d,"quantity":2}`, itemID))
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, "insufficient_funds", obj["kind"])

	// students never see the cook queue
	status, _, _ = cl.call(http.MethodGet, "/api/cook/orders", ann, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, raw = cl.call(http.MethodGet, "/api/cook/orders", chef, "")
	require.Equal(t, fiber.StatusOK, status)
	var pending []map[string]any
	require.NoError(t, json.Unmarshal(raw, &pending))
	assert.Len(t, pending, 2)

	status, obj, _ = cl.call(http.MethodGet, "/api/notifications", chef, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, obj["count"])
}

func TestAdminRoutesAreGated(t *testing.T) {
	cl := newClient(t)
	chef := cl.signup("chef", "cook")
	boss := cl.signup("boss", "admin")

	status, _, _ := cl.call(http.MethodGet, "/api/admin/report", chef, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _, _ = cl.call(http.MethodGet, "/api/admin/report", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _, raw := cl.call(http.MethodGet, "/api/admin/report?days=3", boss, "")
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(raw, &rows))
	assert.Len(t, rows, 3)

	status, _, _ = cl.call(http.MethodGet, "/api/admin/audit-logs", boss, "")
	assert.Equal(t, fiber.StatusOK, status)
}
