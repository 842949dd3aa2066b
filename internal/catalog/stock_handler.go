package catalog

import (
	"fmt"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"
	"oticas-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type StoreProductResponse struct {
	ID           uint    `json:"id"`
	StoreID      uint    `json:"store"`
	StoreName    string  `json:"store_name"`
	ProductID    uint    `json:"product"`
	ProductName  string  `json:"product_name"`
	ProductPrice float64 `json:"product_price"`
	Quantity     int     `json:"quantity"`
}

type UpsertStockRequest struct {
	StoreID   *uint `json:"store"` // admin escolhe; gerente usa a própria loja
	ProductID uint  `json:"product"`
	Quantity  int   `json:"quantity"`
}

func storeProductResponse(sp *models.StoreProduct) StoreProductResponse {
	return StoreProductResponse{
		ID:           sp.ID,
		StoreID:      sp.StoreID,
		StoreName:    sp.Store.Name,
		ProductID:    sp.ProductID,
		ProductName:  sp.Product.Name,
		ProductPrice: sp.Product.Price,
		Quantity:     sp.Quantity,
	}
}

// GET /api/store-products?store=1&stock_level=low
// stock_level: low (1-4) | out (0) | normal (>=5)
func ListStoreProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.StoreProduct{}).
			Preload("Product").Preload("Store")
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		switch c.Query("stock_level") {
		case "":
			// sem filtro
		case "low":
			dbq = dbq.Where("quantity > 0 AND quantity < 5")
		case "out":
			dbq = dbq.Where("quantity = 0")
		case "normal":
			dbq = dbq.Where("quantity >= 5")
		default:
			return fiber.NewError(fiber.StatusBadRequest, "stock_level inválido (low|out|normal)")
		}

		var stocks []models.StoreProduct
		if err := dbq.Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar o estoque")
		}

		res := make([]StoreProductResponse, 0, len(stocks))
		for i := range stocks {
			res = append(res, storeProductResponse(&stocks[i]))
		}

		return c.JSON(res)
	}
}

// POST /api/store-products - cria ou ajusta o estoque de um produto na loja.
// Ajustes manuais geram movimentação de estoque para rastreabilidade.
func UpsertStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpsertStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Quantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Quantidade não pode ser negativa")
		}

		storeID, err := store.ResolveScope(c, body.StoreID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Produto inválido")
		}

		var stock models.StoreProduct
		err = database.DB.First(&stock, "store_id = ? AND product_id = ?", storeID, product.ID).Error
		previous := 0
		if err != nil {
			stock = models.StoreProduct{StoreID: storeID, ProductID: product.ID, Quantity: body.Quantity}
			if err := database.DB.Create(&stock).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o registro de estoque")
			}
		} else {
			previous = stock.Quantity
			stock.Quantity = body.Quantity
			if err := database.DB.Save(&stock).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o estoque")
			}
		}

		if delta := body.Quantity - previous; delta != 0 {
			movementType := models.StockMovementIn
			if delta < 0 {
				movementType = models.StockMovementOut
				delta = -delta
			}
			movement := models.StockMovement{
				ProductID: product.ID,
				Quantity:  delta,
				Type:      movementType,
				Reason:    fmt.Sprintf("Ajuste manual de estoque (loja %d)", storeID),
			}
			database.DB.Create(&movement)
		}

		database.DB.Preload("Product").Preload("Store").First(&stock, stock.ID)
		return c.JSON(storeProductResponse(&stock))
	}
}

// GET /api/stock-movements?product=1
func ListStockMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockMovement{}).Preload("Product").Order("created_at desc")

		if productStr := c.Query("product"); productStr != "" {
			var productID uint
			if _, err := fmt.Sscan(productStr, &productID); err != nil || productID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "product inválido")
			}
			dbq = dbq.Where("product_id = ?", productID)
		}

		var movements []models.StockMovement
		if err := dbq.Limit(200).Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as movimentações")
		}

		type movementResponse struct {
			ID          uint                     `json:"id"`
			ProductID   uint                     `json:"product"`
			ProductName string                   `json:"product_name"`
			Quantity    int                      `json:"quantity"`
			Type        models.StockMovementType `json:"movement_type"`
			Reason      string                   `json:"reason"`
			CreatedAt   string                   `json:"created_at"`
		}

		res := make([]movementResponse, 0, len(movements))
		for _, m := range movements {
			res = append(res, movementResponse{
				ID:          m.ID,
				ProductID:   m.ProductID,
				ProductName: m.Product.Name,
				Quantity:    m.Quantity,
				Type:        m.Type,
				Reason:      m.Reason,
				CreatedAt:   m.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}
