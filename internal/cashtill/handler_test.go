package cashtill

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"oticas-backend/internal/auth"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(user *models.User) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, user.ID)
		c.Locals(auth.CtxUserRoleKey, user.Role)
		c.Locals(auth.CtxStoreIDKey, user.StoreID)
		return c.Next()
	})

	app.Get("/api/cash-till-sessions/status", StatusHandler())
	app.Post("/api/cash-till-sessions/open", OpenHandler())
	app.Post("/api/cash-till-sessions/:id/close", CloseHandler())
	app.Get("/api/cash-till-sessions", ListHandler())
	app.Get("/api/cash-till-sessions/:id", GetHandler())

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestStatusEndpointClosedWhenNoSession(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)
	app := newTestApp(user)

	code, body := doJSON(t, app, "GET", "/api/cash-till-sessions/status", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, string(models.TillClosed), body["status"])
}

func TestOpenEndpointLifecycle(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)
	app := newTestApp(user)

	code, body := doJSON(t, app, "POST", "/api/cash-till-sessions/open", fiber.Map{"initial_amount": 250.00})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, string(models.TillOpen), body["status"])
	assert.Equal(t, 250.00, body["initial_amount"])
	assert.Equal(t, "Loja Centro", body["store_name"])
	assert.Nil(t, body["closed_at"])
	assert.Nil(t, body["difference"])

	// O status agora devolve a mesma sessão
	code, statusBody := doJSON(t, app, "GET", "/api/cash-till-sessions/status", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, body["id"], statusBody["id"])
	assert.Equal(t, string(models.TillOpen), statusBody["status"])

	// Segunda abertura conflita
	code, _ = doJSON(t, app, "POST", "/api/cash-till-sessions/open", fiber.Map{"initial_amount": 10.00})
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestOpenEndpointValidation(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)
	app := newTestApp(user)

	// Sem valor inicial
	code, _ := doJSON(t, app, "POST", "/api/cash-till-sessions/open", fiber.Map{})
	assert.Equal(t, fiber.StatusBadRequest, code)

	// Valor negativo
	code, _ = doJSON(t, app, "POST", "/api/cash-till-sessions/open", fiber.Map{"initial_amount": -5.00})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestCloseEndpointReportsVariance(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)
	app := newTestApp(user)

	session, err := Open(user.ID, st.ID, 500.00)
	require.NoError(t, err)
	createCashSale(t, db, session, 40.00, models.PaymentCash)

	code, body := doJSON(t, app, "POST", fmt.Sprintf("/api/cash-till-sessions/%d/close", session.ID),
		fiber.Map{"final_amount_reported": 550.50, "notes": "sobra"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, string(models.TillClosed), body["status"])
	assert.InDelta(t, 540.00, body["final_amount_calculated"].(float64), 0.001)
	assert.InDelta(t, 550.50, body["final_amount_reported"].(float64), 0.001)
	assert.InDelta(t, 10.50, body["difference"].(float64), 0.001)
	assert.NotNil(t, body["closed_at"])
	assert.NotNil(t, body["closed_by_name"])

	// Fechar de novo conflita
	code, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/cash-till-sessions/%d/close", session.ID),
		fiber.Map{"final_amount_reported": 550.50})
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestCloseEndpointUnknownSession(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)
	app := newTestApp(user)

	code, _ := doJSON(t, app, "POST", "/api/cash-till-sessions/999/close",
		fiber.Map{"final_amount_reported": 10.00})
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestHistoryShowsPersistedDifference(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)
	app := newTestApp(user)

	session, err := Open(user.ID, st.ID, 100.00)
	require.NoError(t, err)
	_, err = Close(user.ID, models.RoleManager, &st.ID, session.ID, 90.00, "faltou")
	require.NoError(t, err)

	// Venda em dinheiro registrada DEPOIS do fechamento (fora do fluxo normal)
	// não altera a diferença persistida no histórico
	createCashSale(t, db, &models.CashTillSession{ID: session.ID, StoreID: st.ID}, 999.00, models.PaymentCash)

	req := httptest.NewRequest("GET", "/api/cash-till-sessions?status=fechado", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var sessions []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sessions))
	require.Len(t, sessions, 1)
	assert.InDelta(t, -10.00, sessions[0]["difference"].(float64), 0.001)
	assert.Equal(t, "faltou", sessions[0]["notes"])
}

func TestManagerCannotSeeOtherStoreSessions(t *testing.T) {
	db := setupTestDB(t)
	st1 := createStore(t, db, "Loja Centro")
	st2 := createStore(t, db, "Loja Norte")
	user1 := createManager(t, db, "gerente1", st1.ID)
	user2 := createManager(t, db, "gerente2", st2.ID)

	session, err := Open(user1.ID, st1.ID, 100.00)
	require.NoError(t, err)

	app := newTestApp(user2)
	code, _ := doJSON(t, app, "GET", fmt.Sprintf("/api/cash-till-sessions/%d", session.ID), nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}
