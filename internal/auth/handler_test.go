package auth

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"oticas-backend/internal/config"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := &config.Config{JWTSecret: "chave-de-teste-com-mais-de-32-caracteres"}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Post("/api/auth/register-admin", RegisterAdminHandler(cfg))
	app.Post("/api/auth/login", LoginHandler(cfg))

	protected := app.Group("")
	protected.Use(JWTMiddleware(cfg))
	protected.Get("/api/auth/me", MeHandler())

	return app, cfg
}

func request(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestRegisterAdminBootstrapOnly(t *testing.T) {
	app, _ := setupAuthApp(t)

	code, body := request(t, app, "POST", "/api/auth/register-admin", "", fiber.Map{
		"username": "Admin",
		"password": "senha123",
	})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, "admin", body["username"]) // normalizado para minúsculas
	assert.Equal(t, string(models.RoleAdmin), body["role"])

	// Segundo admin pela rota pública é bloqueado
	code, _ = request(t, app, "POST", "/api/auth/register-admin", "", fiber.Map{
		"username": "outro",
		"password": "senha123",
	})
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestLoginAndMe(t *testing.T) {
	app, _ := setupAuthApp(t)

	code, _ := request(t, app, "POST", "/api/auth/register-admin", "", fiber.Map{
		"username":   "admin",
		"first_name": "Ana",
		"password":   "senha123",
	})
	require.Equal(t, fiber.StatusCreated, code)

	code, body := request(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"username": "ADMIN",
		"password": "senha123",
	})
	require.Equal(t, fiber.StatusOK, code)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	code, me := request(t, app, "GET", "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "admin", me["username"])
	assert.Equal(t, "Ana", me["first_name"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := setupAuthApp(t)

	code, _ := request(t, app, "POST", "/api/auth/register-admin", "", fiber.Map{
		"username": "admin",
		"password": "senha123",
	})
	require.Equal(t, fiber.StatusCreated, code)

	code, _ = request(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"username": "admin",
		"password": "errada",
	})
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = request(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"username": "inexistente",
		"password": "senha123",
	})
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestMeRequiresToken(t *testing.T) {
	app, _ := setupAuthApp(t)

	code, _ := request(t, app, "GET", "/api/auth/me", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = request(t, app, "GET", "/api/auth/me", "token-invalido", nil)
	assert.Equal(t, fiber.StatusUnauthorized, code)
}
