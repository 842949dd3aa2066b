package sales

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"oticas-backend/internal/auth"
	"oticas-backend/internal/cashtill"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type saleFixture struct {
	db      *gorm.DB
	store   *models.Store
	manager *models.User
	seller  *models.Seller
	product *models.Product
}

func setupSaleFixture(t *testing.T) *saleFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	st := &models.Store{Name: "Loja Centro", Address: "Rua Augusta, 100"}
	require.NoError(t, db.Create(st).Error)

	manager := &models.User{
		Username:     "gerente1",
		FirstName:    "Maria",
		PasswordHash: "x",
		Role:         models.RoleManager,
		StoreID:      &st.ID,
	}
	require.NoError(t, db.Create(manager).Error)

	seller := &models.Seller{Name: "Vendedor", StoreID: st.ID}
	require.NoError(t, db.Create(seller).Error)

	category := &models.Category{Name: "Óculos de Sol", Active: true}
	require.NoError(t, db.Create(category).Error)

	product := &models.Product{
		Name:       "Óculos Aviador",
		Code:       "01",
		Price:      199.90,
		Cost:       80.00,
		CategoryID: category.ID,
	}
	require.NoError(t, db.Create(product).Error)

	stock := &models.StoreProduct{StoreID: st.ID, ProductID: product.ID, Quantity: 10}
	require.NoError(t, db.Create(stock).Error)

	return &saleFixture{db: db, store: st, manager: manager, seller: seller, product: product}
}

func (f *saleFixture) app() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, f.manager.ID)
		c.Locals(auth.CtxUserRoleKey, f.manager.Role)
		c.Locals(auth.CtxStoreIDKey, f.manager.StoreID)
		return c.Next()
	})
	app.Post("/api/sales", CreateSaleHandler())
	app.Get("/api/sales", ListSalesHandler())
	return app
}

func (f *saleFixture) postSale(t *testing.T, app *fiber.App, payload fiber.Map) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	req := httptest.NewRequest("POST", "/api/sales", &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (f *saleFixture) salePayload() fiber.Map {
	return fiber.Map{
		"customer_name":  "João",
		"payment_method": "dinheiro",
		"seller":         f.seller.ID,
		"items": []fiber.Map{
			{"product": f.product.ID, "quantity": 2},
		},
	}
}

func TestSaleBlockedWithoutOpenTill(t *testing.T) {
	f := setupSaleFixture(t)
	app := f.app()

	code, body := f.postSale(t, app, f.salePayload())
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Contains(t, body["error"], "caixa aberto")

	// Nada foi gravado nem descontado
	var saleCount int64
	f.db.Model(&models.Sale{}).Count(&saleCount)
	assert.Zero(t, saleCount)

	var stock models.StoreProduct
	require.NoError(t, f.db.First(&stock, "product_id = ?", f.product.ID).Error)
	assert.Equal(t, 10, stock.Quantity)
}

func TestSaleTiedToOpenSession(t *testing.T) {
	f := setupSaleFixture(t)
	app := f.app()

	session, err := cashtill.Open(f.manager.ID, f.store.ID, 100.00)
	require.NoError(t, err)

	code, body := f.postSale(t, app, f.salePayload())
	require.Equal(t, fiber.StatusCreated, code)

	assert.Equal(t, float64(session.ID), body["cash_till_session"])
	assert.Equal(t, float64(f.store.ID), body["store_id"])
	assert.InDelta(t, 399.80, body["total_amount"].(float64), 0.001)

	// Estoque descontado e movimentação registrada
	var stock models.StoreProduct
	require.NoError(t, f.db.First(&stock, "product_id = ?", f.product.ID).Error)
	assert.Equal(t, 8, stock.Quantity)

	var movementCount int64
	f.db.Model(&models.StockMovement{}).Where("type = ?", models.StockMovementOut).Count(&movementCount)
	assert.Equal(t, int64(1), movementCount)

	// Entrada no fluxo de caixa amarrada à sessão
	var flow models.CashFlow
	require.NoError(t, f.db.First(&flow, "cash_till_session_id = ?", session.ID).Error)
	assert.Equal(t, models.CashFlowIn, flow.Type)
	assert.InDelta(t, 399.80, flow.Amount, 0.001)
}

func TestSaleBlockedAfterTillCloses(t *testing.T) {
	f := setupSaleFixture(t)
	app := f.app()

	session, err := cashtill.Open(f.manager.ID, f.store.ID, 100.00)
	require.NoError(t, err)

	code, _ := f.postSale(t, app, f.salePayload())
	require.Equal(t, fiber.StatusCreated, code)

	_, err = cashtill.Close(f.manager.ID, models.RoleManager, &f.store.ID, session.ID, 499.80, "")
	require.NoError(t, err)

	code, _ = f.postSale(t, app, f.salePayload())
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestSaleInsufficientStockRollsBack(t *testing.T) {
	f := setupSaleFixture(t)
	app := f.app()

	_, err := cashtill.Open(f.manager.ID, f.store.ID, 100.00)
	require.NoError(t, err)

	payload := f.salePayload()
	payload["items"] = []fiber.Map{{"product": f.product.ID, "quantity": 99}}

	code, body := f.postSale(t, app, payload)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body["error"], "estoque")

	// A transação desfez tudo
	var saleCount int64
	f.db.Model(&models.Sale{}).Count(&saleCount)
	assert.Zero(t, saleCount)

	var stock models.StoreProduct
	require.NoError(t, f.db.First(&stock, "product_id = ?", f.product.ID).Error)
	assert.Equal(t, 10, stock.Quantity)
}

func TestSaleValidation(t *testing.T) {
	f := setupSaleFixture(t)
	app := f.app()

	_, err := cashtill.Open(f.manager.ID, f.store.ID, 100.00)
	require.NoError(t, err)

	// Forma de pagamento inválida
	payload := f.salePayload()
	payload["payment_method"] = "cheque"
	code, _ := f.postSale(t, app, payload)
	assert.Equal(t, fiber.StatusBadRequest, code)

	// Sem itens
	payload = f.salePayload()
	payload["items"] = []fiber.Map{}
	code, _ = f.postSale(t, app, payload)
	assert.Equal(t, fiber.StatusBadRequest, code)

	// Vendedor de outra loja
	other := &models.Store{Name: "Loja Norte", Address: "Rua Augusta, 100"}
	require.NoError(t, f.db.Create(other).Error)
	outsider := &models.Seller{Name: "Externo", StoreID: other.ID}
	require.NoError(t, f.db.Create(outsider).Error)

	payload = f.salePayload()
	payload["seller"] = outsider.ID
	code, _ = f.postSale(t, app, payload)
	assert.Equal(t, fiber.StatusBadRequest, code)
}
