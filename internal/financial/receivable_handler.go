package financial

import (
	"strings"
	"time"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReceivableResponse struct {
	ID           uint   `json:"id"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	CustomerID   *uint  `json:"customer"`
	CustomerName string `json:"customer_name,omitempty"`
	SaleID       *uint  `json:"sale"`

	Amount         float64 `json:"amount"`
	AmountReceived float64 `json:"amount_received"`
	DueDate        string  `json:"due_date"`
	ReceivedAt     string  `json:"received_at,omitempty"`

	StoreID   uint                `json:"store"`
	StoreName string              `json:"store_name"`
	Status    models.LedgerStatus `json:"status"`
	Notes     string              `json:"notes"`
	CreatedAt string              `json:"created_at"`
}

type ReceivableRequest struct {
	Description string   `json:"description"`
	Type        string   `json:"type"`
	CustomerID  *uint    `json:"customer"`
	SaleID      *uint    `json:"sale"`
	Amount      *float64 `json:"amount"`
	DueDate     string   `json:"due_date"`
	StoreID     uint     `json:"store"`
	Notes       string   `json:"notes"`
}

type ReceiveReceivableRequest struct {
	Amount *float64 `json:"amount"` // omitido = recebe o saldo restante
}

func receivableResponse(r *models.Receivable) ReceivableResponse {
	res := ReceivableResponse{
		ID:             r.ID,
		Description:    r.Description,
		Type:           r.Type,
		CustomerID:     r.CustomerID,
		SaleID:         r.SaleID,
		Amount:         r.Amount,
		AmountReceived: r.AmountReceived,
		DueDate:        r.DueDate.Format("2006-01-02"),
		StoreID:        r.StoreID,
		StoreName:      r.Store.Name,
		Status:         r.Status,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if r.Customer != nil {
		res.CustomerName = r.Customer.Name
	}
	if r.ReceivedAt != nil {
		res.ReceivedAt = r.ReceivedAt.Format("2006-01-02 15:04:05")
	}
	return res
}

func receivableStatus(r *models.Receivable, now time.Time) models.LedgerStatus {
	if r.Status == models.LedgerCancelled {
		return models.LedgerCancelled
	}
	if r.AmountReceived >= r.Amount {
		return models.LedgerReceived
	}
	if r.DueDate.Before(now.Truncate(24 * time.Hour)) {
		return models.LedgerOverdue
	}
	return models.LedgerPending
}

// POST /api/financial/receivables (apenas admin)
func CreateReceivableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReceivableRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Description = strings.TrimSpace(body.Description)
		if body.Description == "" {
			return fiber.NewError(fiber.StatusBadRequest, "A descrição não pode ficar vazia")
		}
		if body.Amount == nil || *body.Amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "O valor deve ser maior que zero")
		}
		due, err := time.Parse("2006-01-02", body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Data de vencimento inválida, use 'YYYY-MM-DD'")
		}

		var st models.Store
		if err := database.DB.First(&st, "id = ?", body.StoreID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Loja inválida")
		}
		if body.CustomerID != nil {
			var customer models.Customer
			if err := database.DB.First(&customer, "id = ?", *body.CustomerID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Cliente inválido")
			}
		}
		if body.SaleID != nil {
			var sale models.Sale
			if err := database.DB.First(&sale, "id = ?", *body.SaleID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Venda inválida")
			}
		}

		receivable := models.Receivable{
			Description: body.Description,
			Type:        body.Type,
			CustomerID:  body.CustomerID,
			SaleID:      body.SaleID,
			Amount:      *body.Amount,
			DueDate:     due,
			StoreID:     st.ID,
			Notes:       body.Notes,
		}
		receivable.Status = receivableStatus(&receivable, time.Now())

		if err := database.DB.Create(&receivable).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a conta a receber")
		}

		database.DB.Preload("Store").Preload("Customer").First(&receivable, receivable.ID)
		return c.Status(fiber.StatusCreated).JSON(receivableResponse(&receivable))
	}
}

// GET /api/financial/receivables?status=pendente&store=1&from=2026-01-01&to=2026-01-31
func ListReceivablesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Receivable{}).
			Preload("Store").Preload("Customer").
			Order("due_date asc")

		if statusStr := c.Query("status"); statusStr != "" {
			dbq = dbq.Where("status = ?", statusStr)
		}
		if storeStr := c.Query("store"); storeStr != "" {
			dbq = dbq.Where("store_id = ?", storeStr)
		}
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from inválido, use 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("due_date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to inválido, use 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("due_date < ?", to.AddDate(0, 0, 1))
		}

		var receivables []models.Receivable
		if err := dbq.Find(&receivables).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as contas a receber")
		}

		res := make([]ReceivableResponse, 0, len(receivables))
		for i := range receivables {
			res = append(res, receivableResponse(&receivables[i]))
		}

		return c.JSON(res)
	}
}

// POST /api/financial/receivables/:id/receive (apenas admin)
func ReceiveReceivableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var receivable models.Receivable
		if err := database.DB.First(&receivable, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Conta a receber não encontrada")
		}
		if receivable.Status == models.LedgerReceived {
			return fiber.NewError(fiber.StatusBadRequest, "Esta conta já foi recebida integralmente")
		}
		if receivable.Status == models.LedgerCancelled {
			return fiber.NewError(fiber.StatusBadRequest, "Esta conta foi cancelada")
		}

		var body ReceiveReceivableRequest
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		remaining := receivable.Amount - receivable.AmountReceived
		amount := remaining
		if body.Amount != nil {
			amount = *body.Amount
		}
		if amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "O valor do recebimento deve ser maior que zero")
		}
		if amount > remaining {
			return fiber.NewError(fiber.StatusBadRequest, "O recebimento excede o saldo em aberto")
		}

		now := time.Now()
		receivable.AmountReceived += amount
		if receivable.AmountReceived >= receivable.Amount {
			receivable.ReceivedAt = &now
		}
		receivable.Status = receivableStatus(&receivable, now)

		if err := database.DB.Save(&receivable).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível registrar o recebimento")
		}

		flow := models.CashFlow{
			StoreID:     receivable.StoreID,
			Amount:      amount,
			Type:        models.CashFlowIn,
			Description: "Recebimento: " + receivable.Description,
			Date:        now,
		}
		database.DB.Create(&flow)

		database.DB.Preload("Store").Preload("Customer").First(&receivable, receivable.ID)
		return c.JSON(receivableResponse(&receivable))
	}
}

// DELETE /api/financial/receivables/:id (apenas admin) - cancela em vez de apagar
func CancelReceivableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var receivable models.Receivable
		if err := database.DB.First(&receivable, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Conta a receber não encontrada")
		}
		if receivable.AmountReceived > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível cancelar uma conta com recebimentos registrados")
		}

		receivable.Status = models.LedgerCancelled
		if err := database.DB.Save(&receivable).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível cancelar a conta a receber")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
