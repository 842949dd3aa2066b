package financial

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"oticas-backend/internal/auth"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupFinancialDB(t *testing.T) (*gorm.DB, *models.Store, *models.Employee) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	st := &models.Store{Name: "Loja Centro", Address: "Rua Augusta, 100"}
	require.NoError(t, db.Create(st).Error)

	employee := &models.Employee{
		Name:              "Carlos Silva",
		CPF:               "123.456.789-00",
		Position:          models.PositionSeller,
		HiredAt:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		BaseSalary:        2000.00,
		CommissionPercent: 2.5,
		StoreID:           st.ID,
		Active:            true,
	}
	require.NoError(t, db.Create(employee).Error)

	return db, st, employee
}

func newAdminApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(1))
		c.Locals(auth.CtxUserRoleKey, models.RoleAdmin)
		c.Locals(auth.CtxStoreIDKey, (*uint)(nil))
		return c.Next()
	})

	app.Post("/api/financial/payrolls", CreatePayrollHandler())
	app.Get("/api/financial/payrolls", ListPayrollsHandler())
	app.Put("/api/financial/payrolls/:id", UpdatePayrollHandler())
	app.Post("/api/financial/payrolls/:id/pay", PayPayrollHandler())

	return app
}

func postJSON(t *testing.T, app *fiber.App, method, path string, payload any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestCreatePayrollComputesNetSalary(t *testing.T) {
	_, _, employee := setupFinancialDB(t)
	app := newAdminApp()

	code, body := postJSON(t, app, "POST", "/api/financial/payrolls", fiber.Map{
		"employee":   employee.ID,
		"year":       2026,
		"month":      8,
		"commission": 350.00,
		"bonus":      100.00,
		"deductions": 220.00,
	})
	require.Equal(t, fiber.StatusCreated, code)

	// Líquido sempre recalculado no servidor: 2000 + 350 + 100 - 220
	assert.InDelta(t, 2230.00, body["net_salary"].(float64), 0.001)
	assert.InDelta(t, 2000.00, body["base_salary"].(float64), 0.001)
	assert.Equal(t, "Carlos Silva", body["employee_name"])
	assert.Equal(t, false, body["paid"])
}

func TestCreatePayrollDuplicatePeriodConflicts(t *testing.T) {
	_, _, employee := setupFinancialDB(t)
	app := newAdminApp()

	payload := fiber.Map{"employee": employee.ID, "year": 2026, "month": 8}
	code, _ := postJSON(t, app, "POST", "/api/financial/payrolls", payload)
	require.Equal(t, fiber.StatusCreated, code)

	code, _ = postJSON(t, app, "POST", "/api/financial/payrolls", payload)
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestPaidPayrollIsImmutable(t *testing.T) {
	db, _, employee := setupFinancialDB(t)
	app := newAdminApp()

	code, body := postJSON(t, app, "POST", "/api/financial/payrolls", fiber.Map{
		"employee": employee.ID, "year": 2026, "month": 8,
	})
	require.Equal(t, fiber.StatusCreated, code)
	id := int(body["id"].(float64))

	code, body = postJSON(t, app, "POST", fmt.Sprintf("/api/financial/payrolls/%d/pay", id), nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["paid"])
	assert.NotEmpty(t, body["paid_at"])

	// O pagamento gera saída no fluxo de caixa da loja do funcionário
	var flow models.CashFlow
	require.NoError(t, db.First(&flow, "type = ?", models.CashFlowOut).Error)
	assert.InDelta(t, 2000.00, flow.Amount, 0.001)

	// Pagar de novo falha
	code, _ = postJSON(t, app, "POST", fmt.Sprintf("/api/financial/payrolls/%d/pay", id), nil)
	assert.Equal(t, fiber.StatusBadRequest, code)

	// Alterar depois de paga falha
	code, _ = postJSON(t, app, "PUT", fmt.Sprintf("/api/financial/payrolls/%d", id), fiber.Map{
		"employee": employee.ID, "year": 2026, "month": 8, "bonus": 999.00,
	})
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestPayableLifecycle(t *testing.T) {
	db, st, _ := setupFinancialDB(t)

	app := newAdminApp()
	app.Post("/api/financial/payables", CreatePayableHandler())
	app.Post("/api/financial/payables/:id/pay", PayPayableHandler())

	supplier := &models.Supplier{Name: "Lab Lentes", Active: true}
	require.NoError(t, db.Create(supplier).Error)

	code, body := postJSON(t, app, "POST", "/api/financial/payables", fiber.Map{
		"description": "Lentes progressivas",
		"type":        "fornecedor",
		"supplier":    supplier.ID,
		"amount":      800.00,
		"due_date":    "2026-10-15",
		"store":       st.ID,
	})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, string(models.LedgerPending), body["status"])
	id := int(body["id"].(float64))

	// Pagamento parcial mantém pendente
	code, body = postJSON(t, app, "POST", fmt.Sprintf("/api/financial/payables/%d/pay", id), fiber.Map{"amount": 300.00})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, string(models.LedgerPending), body["status"])
	assert.InDelta(t, 300.00, body["amount_paid"].(float64), 0.001)

	// Quitação do saldo
	code, body = postJSON(t, app, "POST", fmt.Sprintf("/api/financial/payables/%d/pay", id), nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, string(models.LedgerPaid), body["status"])
	assert.NotEmpty(t, body["paid_at"])

	// Pagar conta quitada falha
	code, _ = postJSON(t, app, "POST", fmt.Sprintf("/api/financial/payables/%d/pay", id), nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}
