package store

import (
	"strings"

	"oticas-backend/internal/auth"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type StoreResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	ManagerID *uint  `json:"manager_id"`
	CreatedAt string `json:"created_at"`
}

type CreateStoreRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Phone     *string `json:"phone"` // opcional
	Email     *string `json:"email"`
	ManagerID *uint   `json:"manager_id"`
}

type UpdateStoreRequest struct {
	Name      *string `json:"name"`
	Address   *string `json:"address"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	ManagerID *uint   `json:"manager_id"`
}

func storeResponse(s *models.Store) StoreResponse {
	return StoreResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Phone:     s.Phone,
		Email:     s.Email,
		ManagerID: s.ManagerID,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// LOJA CRUD
// ----------------------------------------

func CreateStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStoreRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "O nome da loja não pode ficar vazio")
		}

		store := models.Store{
			Name:      body.Name,
			Address:   body.Address,
			ManagerID: body.ManagerID,
		}
		if body.Phone != nil {
			store.Phone = strings.TrimSpace(*body.Phone)
		}
		if body.Email != nil {
			store.Email = strings.TrimSpace(*body.Email)
		}

		if err := database.DB.Create(&store).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a loja")
		}

		return c.Status(fiber.StatusCreated).JSON(storeResponse(&store))
	}
}

func ListStoresHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := c.Locals(auth.CtxUserRoleKey).(models.UserRole)

		dbq := database.DB.Model(&models.Store{}).Order("name asc")

		// Gerente enxerga apenas a própria loja
		if role == models.RoleManager {
			storeIDPtr, ok := c.Locals(auth.CtxStoreIDKey).(*uint)
			if !ok || storeIDPtr == nil {
				return c.JSON([]StoreResponse{})
			}
			dbq = dbq.Where("id = ?", *storeIDPtr)
		}

		var stores []models.Store
		if err := dbq.Find(&stores).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as lojas")
		}

		res := make([]StoreResponse, 0, len(stores))
		for i := range stores {
			res = append(res, storeResponse(&stores[i]))
		}

		return c.JSON(res)
	}
}

func GetStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		role := c.Locals(auth.CtxUserRoleKey).(models.UserRole)

		var store models.Store
		if err := database.DB.First(&store, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Loja não encontrada")
		}

		if role == models.RoleManager {
			storeIDPtr, ok := c.Locals(auth.CtxStoreIDKey).(*uint)
			if !ok || storeIDPtr == nil || *storeIDPtr != store.ID {
				return fiber.NewError(fiber.StatusNotFound, "Loja não encontrada")
			}
		}

		return c.JSON(storeResponse(&store))
	}
}

func UpdateStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var store models.Store
		if err := database.DB.First(&store, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Loja não encontrada")
		}

		var body UpdateStoreRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "O nome da loja não pode ficar vazio")
			}
			store.Name = name
		}

		if body.Address != nil {
			store.Address = *body.Address
		}

		if body.Phone != nil {
			store.Phone = strings.TrimSpace(*body.Phone)
		}

		if body.Email != nil {
			store.Email = strings.TrimSpace(*body.Email)
		}

		if body.ManagerID != nil {
			store.ManagerID = body.ManagerID
		}

		if err := database.DB.Save(&store).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a loja")
		}

		return c.JSON(storeResponse(&store))
	}
}

func DeleteStoreHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		// Loja com sessões de caixa registradas não pode ser removida
		var count int64
		database.DB.Model(&models.CashTillSession{}).Where("store_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível excluir uma loja com sessões de caixa registradas")
		}

		if err := database.DB.Delete(&models.Store{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir a loja")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
