package store

import (
	"fmt"

	"oticas-backend/internal/auth"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ResolveScope resolve, uma única vez na borda da requisição, a loja sobre a
// qual o usuário pode agir. Gerente: sempre a própria loja (store_id do corpo
// é ignorado). Admin: precisa indicar a loja explicitamente, e ela deve
// existir.
func ResolveScope(c *fiber.Ctx, bodyStoreID *uint) (uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "Não foi possível identificar o perfil do usuário")
	}

	if role == models.RoleManager {
		storeIDPtr, ok := c.Locals(auth.CtxStoreIDKey).(*uint)
		if !ok || storeIDPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "O usuário precisa estar associado a uma loja")
		}
		return *storeIDPtr, nil
	}

	// admin
	if bodyStoreID == nil || *bodyStoreID == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Selecione a loja (store_id é obrigatório para administradores)")
	}

	var store models.Store
	if err := database.DB.First(&store, "id = ?", *bodyStoreID).Error; err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Loja inválida")
	}
	return store.ID, nil
}

// ScopeFilter resolve o filtro de loja para leituras. Gerente: a própria
// loja. Admin: o query param ?store= quando informado, senão nil (todas).
func ScopeFilter(c *fiber.Ctx) (*uint, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "Não foi possível identificar o perfil do usuário")
	}

	if role == models.RoleManager {
		storeIDPtr, ok := c.Locals(auth.CtxStoreIDKey).(*uint)
		if !ok || storeIDPtr == nil {
			return nil, fiber.NewError(fiber.StatusForbidden, "O usuário precisa estar associado a uma loja")
		}
		return storeIDPtr, nil
	}

	sidStr := c.Query("store")
	if sidStr == "" {
		return nil, nil
	}
	var sid uint
	if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "store inválido")
	}
	return &sid, nil
}
