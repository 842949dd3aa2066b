package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"oticas-backend/internal/auth"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	CategoryID  uint    `json:"category"`
	// Estoque no contexto do usuário: gerente vê a própria loja,
	// admin vê o total somado de todas as lojas
	StoreQuantity int `json:"store_quantity"`
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	CategoryID  uint    `json:"category"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Brand       *string  `json:"brand"`
	Model       *string  `json:"model"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Cost        *float64 `json:"cost"`
	CategoryID  *uint    `json:"category"`
}

// nextProductCode gera o próximo código sequencial ("01", "02", ...).
func nextProductCode(tx *gorm.DB) string {
	var last models.Product
	next := 1
	if err := tx.Order("id desc").First(&last).Error; err == nil && last.Code != "" {
		if n, convErr := strconv.Atoi(last.Code); convErr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%02d", next)
}

func storeQuantity(c *fiber.Ctx, productID uint) int {
	role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)

	if role == models.RoleManager {
		storeIDPtr, ok := c.Locals(auth.CtxStoreIDKey).(*uint)
		if !ok || storeIDPtr == nil {
			return 0
		}
		var stock models.StoreProduct
		if err := database.DB.First(&stock, "product_id = ? AND store_id = ?", productID, *storeIDPtr).Error; err != nil {
			return 0
		}
		return stock.Quantity
	}

	var total int
	database.DB.Model(&models.StoreProduct{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total)
	return total
}

func productResponse(c *fiber.Ctx, p *models.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Brand:         p.Brand,
		Model:         p.Model,
		Code:          p.Code,
		Description:   p.Description,
		Price:         p.Price,
		Cost:          p.Cost,
		CategoryID:    p.CategoryID,
		StoreQuantity: storeQuantity(c, p.ID),
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "O nome do produto não pode ficar vazio")
		}
		if body.Price < 0 || body.Cost < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Preço e custo não podem ser negativos")
		}

		var category models.Category
		if err := database.DB.First(&category, "id = ?", body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Categoria inválida")
		}

		var product models.Product
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			product = models.Product{
				Name:        body.Name,
				Brand:       body.Brand,
				Model:       body.Model,
				Code:        nextProductCode(tx),
				Description: body.Description,
				Price:       body.Price,
				Cost:        body.Cost,
				CategoryID:  category.ID,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}

			// Gerente: o produto já entra no estoque da loja dele com quantidade zero
			role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
			if role == models.RoleManager {
				if storeIDPtr, ok := c.Locals(auth.CtxStoreIDKey).(*uint); ok && storeIDPtr != nil {
					stock := models.StoreProduct{StoreID: *storeIDPtr, ProductID: product.ID, Quantity: 0}
					if err := tx.Create(&stock).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o produto")
		}

		return c.Status(fiber.StatusCreated).JSON(productResponse(c, &product))
	}
}

// GET /api/products?category=1&product_name=ray
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)

		dbq := database.DB.Model(&models.Product{}).Order("name asc")

		// Gerente enxerga apenas produtos presentes no estoque da loja dele
		if role == models.RoleManager {
			storeIDPtr, ok := c.Locals(auth.CtxStoreIDKey).(*uint)
			if !ok || storeIDPtr == nil {
				return c.JSON([]ProductResponse{})
			}
			dbq = dbq.Where("id IN (?)",
				database.DB.Model(&models.StoreProduct{}).Select("product_id").Where("store_id = ?", *storeIDPtr))
		}

		if categoryStr := c.Query("category"); categoryStr != "" {
			var categoryID uint
			if _, err := fmt.Sscan(categoryStr, &categoryID); err != nil || categoryID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "category inválida")
			}
			dbq = dbq.Where("category_id = ?", categoryID)
		}
		if name := c.Query("product_name"); name != "" {
			dbq = dbq.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
		}

		var products []models.Product
		if err := dbq.Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os produtos")
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, productResponse(c, &products[i]))
		}

		return c.JSON(res)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Produto não encontrado")
		}

		return c.JSON(productResponse(c, &product))
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var product models.Product
		if err := database.DB.First(&product, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Produto não encontrado")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "O nome do produto não pode ficar vazio")
			}
			product.Name = name
		}
		if body.Brand != nil {
			product.Brand = *body.Brand
		}
		if body.Model != nil {
			product.Model = *body.Model
		}
		if body.Description != nil {
			product.Description = *body.Description
		}
		if body.Price != nil {
			if *body.Price < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Preço não pode ser negativo")
			}
			product.Price = *body.Price
		}
		if body.Cost != nil {
			if *body.Cost < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Custo não pode ser negativo")
			}
			product.Cost = *body.Cost
		}
		if body.CategoryID != nil {
			var category models.Category
			if err := database.DB.First(&category, "id = ?", *body.CategoryID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Categoria inválida")
			}
			product.CategoryID = category.ID
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o produto")
		}

		return c.JSON(productResponse(c, &product))
	}
}

// DELETE /api/products/:id (apenas admin)
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		// Produto já vendido fica protegido pelo histórico
		var count int64
		database.DB.Model(&models.SaleItem{}).Where("product_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível excluir um produto com vendas registradas")
		}

		database.DB.Delete(&models.StoreProduct{}, "product_id = ?", id)
		if err := database.DB.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o produto")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
