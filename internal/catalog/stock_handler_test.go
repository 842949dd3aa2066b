package catalog

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"oticas-backend/internal/auth"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogDB(t *testing.T) (*gorm.DB, *models.Store) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	st := &models.Store{Name: "Loja Centro", Address: "Rua Augusta, 100"}
	require.NoError(t, db.Create(st).Error)
	return db, st
}

func seedStock(t *testing.T, db *gorm.DB, storeID uint, quantities map[string]int) {
	t.Helper()

	category := &models.Category{Name: "Armações", Active: true}
	require.NoError(t, db.Create(category).Error)

	code := 1
	for name, qty := range quantities {
		product := &models.Product{
			Name:       name,
			Code:       string(rune('0' + code)),
			Price:      100.00,
			CategoryID: category.ID,
		}
		require.NoError(t, db.Create(product).Error)
		require.NoError(t, db.Create(&models.StoreProduct{
			StoreID:   storeID,
			ProductID: product.ID,
			Quantity:  qty,
		}).Error)
		code++
	}
}

func newManagerApp(storeID uint) *fiber.App {
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
		c.Locals(auth.CtxUserRoleKey, models.RoleManager)
		c.Locals(auth.CtxStoreIDKey, &storeID)
		return c.Next()
	})
	app.Get("/api/store-products", ListStoreProductsHandler())
	return app
}

func listStock(t *testing.T, app *fiber.App, query string) []map[string]any {
	t.Helper()

	req := httptest.NewRequest("GET", "/api/store-products"+query, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestStockLevelFilters(t *testing.T) {
	db, st := setupCatalogDB(t)
	seedStock(t, db, st.ID, map[string]int{
		"Zerado": 0,
		"Baixo":  3,
		"Normal": 12,
		"Limiar": 5,
	})
	app := newManagerApp(st.ID)

	assert.Len(t, listStock(t, app, ""), 4)

	out := listStock(t, app, "?stock_level=out")
	require.Len(t, out, 1)
	assert.Equal(t, "Zerado", out[0]["product_name"])

	out = listStock(t, app, "?stock_level=low")
	require.Len(t, out, 1)
	assert.Equal(t, "Baixo", out[0]["product_name"])

	// Limiar de 5 unidades já conta como normal
	out = listStock(t, app, "?stock_level=normal")
	assert.Len(t, out, 2)

	req := httptest.NewRequest("GET", "/api/store-products?stock_level=banana", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestManagerOnlySeesOwnStoreStock(t *testing.T) {
	db, st := setupCatalogDB(t)
	other := &models.Store{Name: "Loja Norte", Address: "Rua Augusta, 100"}
	require.NoError(t, db.Create(other).Error)

	seedStock(t, db, st.ID, map[string]int{"Meu": 5})

	category := &models.Category{Name: "Lentes", Active: true}
	require.NoError(t, db.Create(category).Error)
	foreign := &models.Product{Name: "Alheio", Code: "99", Price: 50.00, CategoryID: category.ID}
	require.NoError(t, db.Create(foreign).Error)
	require.NoError(t, db.Create(&models.StoreProduct{StoreID: other.ID, ProductID: foreign.ID, Quantity: 7}).Error)

	app := newManagerApp(st.ID)
	out := listStock(t, app, "")
	require.Len(t, out, 1)
	assert.Equal(t, "Meu", out[0]["product_name"])
}
