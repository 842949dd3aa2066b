package sales

import (
	"errors"
	"fmt"
	"log"
	"time"

	"oticas-backend/internal/audit"
	"oticas-backend/internal/auth"
	"oticas-backend/internal/cashtill"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SaleItemRequest struct {
	ProductID uint `json:"product"`
	Quantity  int  `json:"quantity"`
}

type CreateSaleRequest struct {
	CustomerID    *uint                `json:"customer"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email"`
	CustomerPhone string               `json:"customer_phone"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	SellerID      uint                 `json:"seller"`
	Items         []SaleItemRequest    `json:"items"`
}

type SaleItemResponse struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type SaleResponse struct {
	ID                uint                 `json:"id"`
	CashTillSessionID uint                 `json:"cash_till_session"`
	StoreID           uint                 `json:"store_id"`
	StoreName         string               `json:"store_name"`
	SellerID          uint                 `json:"seller"`
	SellerName        string               `json:"seller_name"`
	CustomerName      string               `json:"customer_name"`
	CustomerEmail     string               `json:"customer_email"`
	CustomerPhone     string               `json:"customer_phone"`
	TotalAmount       float64              `json:"total_amount"`
	PaymentMethod     models.PaymentMethod `json:"payment_method"`
	SaleDate          string               `json:"sale_date"`
	Items             []SaleItemResponse   `json:"items"`
}

func saleResponse(s *models.Sale) SaleResponse {
	resp := SaleResponse{
		ID:                s.ID,
		CashTillSessionID: s.CashTillSessionID,
		StoreID:           s.StoreID,
		StoreName:         s.Store.Name,
		SellerID:          s.SellerID,
		SellerName:        s.Seller.Name,
		CustomerName:      s.CustomerName,
		CustomerEmail:     s.CustomerEmail,
		CustomerPhone:     s.CustomerPhone,
		TotalAmount:       s.TotalAmount,
		PaymentMethod:     s.PaymentMethod,
		SaleDate:          s.SaleDate.Format(time.RFC3339),
		Items:             make([]SaleItemResponse, 0, len(s.Items)),
	}
	for _, item := range s.Items {
		resp.Items = append(resp.Items, SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return resp
}

func actingUser(c *fiber.Ctx) (uint, models.UserRole, *uint, error) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Não foi possível identificar o usuário")
	}
	role, ok := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "Não foi possível identificar o perfil do usuário")
	}
	storeIDPtr, _ := c.Locals(auth.CtxStoreIDKey).(*uint)
	return userID, role, storeIDPtr, nil
}

// -------------------------------------------------
// POST /api/sales
// Toda venda passa pelo guardião de admissão: sem sessão de caixa aberta no
// contexto do usuário a criação é recusada com 409 antes de tocar no estoque.
// A loja da venda é sempre a loja da sessão.
// -------------------------------------------------
func CreateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, storeID, err := actingUser(c)
		if err != nil {
			return err
		}

		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.CustomerName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "O nome do cliente é obrigatório")
		}
		if len(body.Items) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "A venda precisa de pelo menos um item")
		}

		switch body.PaymentMethod {
		case models.PaymentCash, models.PaymentCreditCard, models.PaymentDebitCard, models.PaymentPix:
			// ok
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Forma de pagamento inválida (dinheiro|cartao_credito|cartao_debito|pix)")
		}

		var sale models.Sale

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			session, err := cashtill.SessionForSale(tx, userID, role, storeID)
			if err != nil {
				if errors.Is(err, cashtill.ErrNoOpenSession) {
					return fiber.NewError(fiber.StatusConflict, "Não há um caixa aberto para esta loja. Abra um caixa para registrar vendas.")
				}
				return err
			}

			var seller models.Seller
			if err := tx.First(&seller, "id = ? AND store_id = ?", body.SellerID, session.StoreID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Vendedor inválido para esta loja")
			}

			sale = models.Sale{
				CashTillSessionID: session.ID,
				StoreID:           session.StoreID,
				SellerID:          seller.ID,
				CustomerID:        body.CustomerID,
				CustomerName:      body.CustomerName,
				CustomerEmail:     body.CustomerEmail,
				CustomerPhone:     body.CustomerPhone,
				PaymentMethod:     body.PaymentMethod,
				SaleDate:          time.Now(),
			}
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}

			var totalAmount float64
			for _, itemReq := range body.Items {
				if itemReq.Quantity <= 0 {
					return fiber.NewError(fiber.StatusBadRequest, "Quantidade do item deve ser maior que zero")
				}

				var product models.Product
				if err := tx.First(&product, "id = ?", itemReq.ProductID).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest, "Produto não encontrado")
				}

				var stock models.StoreProduct
				if err := tx.First(&stock, "product_id = ? AND store_id = ?", product.ID, session.StoreID).Error; err != nil {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Produto %s não está no estoque desta loja", product.Name))
				}
				if stock.Quantity < itemReq.Quantity {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Produto %s não tem estoque suficiente", product.Name))
				}

				stock.Quantity -= itemReq.Quantity
				if err := tx.Save(&stock).Error; err != nil {
					return err
				}

				totalPrice := product.Price * float64(itemReq.Quantity)
				item := models.SaleItem{
					SaleID:     sale.ID,
					ProductID:  product.ID,
					Quantity:   itemReq.Quantity,
					UnitPrice:  product.Price,
					TotalPrice: totalPrice,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}

				movement := models.StockMovement{
					ProductID: product.ID,
					Quantity:  itemReq.Quantity,
					Type:      models.StockMovementOut,
					Reason:    fmt.Sprintf("Venda #%d", sale.ID),
				}
				if err := tx.Create(&movement).Error; err != nil {
					return err
				}

				totalAmount += totalPrice
			}

			if err := tx.Model(&sale).Update("total_amount", totalAmount).Error; err != nil {
				return err
			}
			sale.TotalAmount = totalAmount

			flow := models.CashFlow{
				StoreID:           session.StoreID,
				CashTillSessionID: &session.ID,
				Amount:            totalAmount,
				Type:              models.CashFlowIn,
				Description:       fmt.Sprintf("Venda #%d (%s)", sale.ID, sale.PaymentMethod),
				Date:              time.Now(),
			}
			return tx.Create(&flow).Error
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível registrar a venda")
		}

		if err := database.DB.
			Preload("Store").Preload("Seller").Preload("Items.Product").
			First(&sale, sale.ID).Error; err == nil {
			writeSaleAudit(c, &sale)
		}

		return c.Status(fiber.StatusCreated).JSON(saleResponse(&sale))
	}
}

func writeSaleAudit(c *fiber.Ctx, sale *models.Sale) {
	userID, _, _, err := actingUser(c)
	if err != nil {
		return
	}
	var user models.User
	userName := ""
	if err := database.DB.First(&user, userID).Error; err == nil {
		userName = user.FullName()
	}
	storeID := sale.StoreID
	if logErr := audit.WriteLog(audit.LogOptions{
		StoreID:     &storeID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  "sale",
		EntityID:    sale.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Venda registrada: R$ %.2f (%s)", sale.TotalAmount, sale.PaymentMethod),
		Before:      nil,
		After:       saleResponse(sale),
	}); logErr != nil {
		log.Printf("Audit log não gravado: %v", logErr)
	}
}

// -------------------------------------------------
// GET /api/sales?start_date=2026-01-01&end_date=2026-01-31&payment_method=pix&seller=2
// -------------------------------------------------
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, storeID, err := actingUser(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.Sale{}).
			Preload("Store").Preload("Seller").Preload("Items.Product").
			Order("sale_date desc")

		if role == models.RoleManager {
			if storeID == nil {
				return c.JSON([]SaleResponse{})
			}
			dbq = dbq.Where("store_id = ?", *storeID)
		} else if sidStr := c.Query("store"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err == nil && sid > 0 {
				dbq = dbq.Where("store_id = ?", sid)
			}
		}

		if startStr := c.Query("start_date"); startStr != "" {
			start, err := time.Parse("2006-01-02", startStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date inválida, use 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("sale_date >= ?", start)
		}
		if endStr := c.Query("end_date"); endStr != "" {
			end, err := time.Parse("2006-01-02", endStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date inválida, use 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("sale_date < ?", end.AddDate(0, 0, 1))
		}
		if method := c.Query("payment_method"); method != "" {
			dbq = dbq.Where("payment_method = ?", method)
		}
		if sellerStr := c.Query("seller"); sellerStr != "" {
			var sellerID uint
			if _, err := fmt.Sscan(sellerStr, &sellerID); err == nil && sellerID > 0 {
				dbq = dbq.Where("seller_id = ?", sellerID)
			}
		}

		var sales []models.Sale
		if err := dbq.Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as vendas")
		}

		res := make([]SaleResponse, 0, len(sales))
		for i := range sales {
			res = append(res, saleResponse(&sales[i]))
		}

		return c.JSON(res)
	}
}

// -------------------------------------------------
// GET /api/sales/:id
// -------------------------------------------------
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, storeID, err := actingUser(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		dbq := database.DB.
			Preload("Store").Preload("Seller").Preload("Items.Product").
			Where("id = ?", id)
		if role == models.RoleManager {
			if storeID == nil {
				return fiber.NewError(fiber.StatusNotFound, "Venda não encontrada")
			}
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		var sale models.Sale
		if err := dbq.First(&sale).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Venda não encontrada")
		}

		return c.JSON(saleResponse(&sale))
	}
}
