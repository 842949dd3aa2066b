package sales

import (
	"strings"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"
	"oticas-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type SellerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	StoreID   uint   `json:"store_id"`
	StoreName string `json:"store_name"`
	CreatedAt string `json:"created_at"`
}

type CreateSellerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	StoreID *uint  `json:"store_id"` // admin escolhe; gerente usa a própria loja
}

type UpdateSellerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func sellerResponse(s *models.Seller) SellerResponse {
	return SellerResponse{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		Phone:     s.Phone,
		StoreID:   s.StoreID,
		StoreName: s.Store.Name,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/sellers
func CreateSellerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSellerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "O nome do vendedor não pode ficar vazio")
		}

		storeID, err := store.ResolveScope(c, body.StoreID)
		if err != nil {
			return err
		}

		seller := models.Seller{
			Name:    body.Name,
			Email:   body.Email,
			Phone:   body.Phone,
			StoreID: storeID,
		}

		if err := database.DB.Create(&seller).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o vendedor")
		}

		database.DB.Preload("Store").First(&seller, seller.ID)
		return c.Status(fiber.StatusCreated).JSON(sellerResponse(&seller))
	}
}

// GET /api/sellers?name=maria
func ListSellersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Seller{}).Preload("Store").Order("name asc")
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}
		if name := c.Query("name"); name != "" {
			dbq = dbq.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
		}

		var sellers []models.Seller
		if err := dbq.Find(&sellers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os vendedores")
		}

		res := make([]SellerResponse, 0, len(sellers))
		for i := range sellers {
			res = append(res, sellerResponse(&sellers[i]))
		}

		return c.JSON(res)
	}
}

// PUT /api/sellers/:id
func UpdateSellerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("id = ?", id)
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		var seller models.Seller
		if err := dbq.First(&seller).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Vendedor não encontrado")
		}

		var body UpdateSellerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "O nome do vendedor não pode ficar vazio")
			}
			seller.Name = name
		}
		if body.Email != nil {
			seller.Email = *body.Email
		}
		if body.Phone != nil {
			seller.Phone = *body.Phone
		}

		if err := database.DB.Save(&seller).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o vendedor")
		}

		database.DB.Preload("Store").First(&seller, seller.ID)
		return c.JSON(sellerResponse(&seller))
	}
}

// DELETE /api/sellers/:id
func DeleteSellerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		// Vendedor com vendas registradas fica protegido
		var count int64
		database.DB.Model(&models.Sale{}).Where("seller_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível excluir um vendedor com vendas registradas")
		}

		dbq := database.DB.Where("id = ?", id)
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		if err := dbq.Delete(&models.Seller{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o vendedor")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
