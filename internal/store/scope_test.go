package store

import (
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

func setupScopeDB(t *testing.T) *models.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	st := &models.Store{Name: "Loja Centro", Address: "Rua Augusta, 100"}
	require.NoError(t, db.Create(st).Error)
	return st
}

// resolveIn roda ResolveScope dentro de um handler real para ter um
// *fiber.Ctx com os locals do usuário.
func resolveIn(t *testing.T, role models.UserRole, userStoreID *uint, bodyStoreID *uint, query string) (uint, *uint, error, error) {
	t.Helper()

	var (
		resolved   uint
		resolveErr error
		filtered   *uint
		filterErr  error
	)

	app := fiber.New()
	app.Get("/probe", func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserRoleKey, role)
		c.Locals(auth.CtxStoreIDKey, userStoreID)
		resolved, resolveErr = ResolveScope(c, bodyStoreID)
		filtered, filterErr = ScopeFilter(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/probe"+query, nil)
	_, err := app.Test(req, -1)
	require.NoError(t, err)

	return resolved, filtered, resolveErr, filterErr
}

func TestManagerAlwaysPinnedToOwnStore(t *testing.T) {
	st := setupScopeDB(t)
	otherID := st.ID + 100

	// store_id do corpo é ignorado para gerente
	resolved, filtered, resolveErr, filterErr := resolveIn(t, models.RoleManager, &st.ID, &otherID, "?store=999")
	require.NoError(t, resolveErr)
	require.NoError(t, filterErr)
	assert.Equal(t, st.ID, resolved)
	require.NotNil(t, filtered)
	assert.Equal(t, st.ID, *filtered)
}

func TestManagerWithoutStoreIsRejected(t *testing.T) {
	setupScopeDB(t)

	_, _, resolveErr, filterErr := resolveIn(t, models.RoleManager, nil, nil, "")
	assert.Error(t, resolveErr)
	assert.Error(t, filterErr)
}

func TestAdminMustPickExistingStore(t *testing.T) {
	st := setupScopeDB(t)

	// Sem loja indicada
	_, _, resolveErr, _ := resolveIn(t, models.RoleAdmin, nil, nil, "")
	assert.Error(t, resolveErr)

	// Loja inexistente
	ghost := st.ID + 100
	_, _, resolveErr, _ = resolveIn(t, models.RoleAdmin, nil, &ghost, "")
	assert.Error(t, resolveErr)

	// Loja válida
	resolved, _, resolveErr, _ := resolveIn(t, models.RoleAdmin, nil, &st.ID, "")
	require.NoError(t, resolveErr)
	assert.Equal(t, st.ID, resolved)
}

func TestAdminFilterIsOptional(t *testing.T) {
	st := setupScopeDB(t)

	// Sem ?store= enxerga todas as lojas
	_, filtered, _, filterErr := resolveIn(t, models.RoleAdmin, nil, &st.ID, "")
	require.NoError(t, filterErr)
	assert.Nil(t, filtered)

	// Com ?store= restringe
	_, filtered, _, filterErr = resolveIn(t, models.RoleAdmin, nil, &st.ID, "?store=1")
	require.NoError(t, filterErr)
	require.NotNil(t, filtered)
	assert.Equal(t, uint(1), *filtered)
}
