package financial

import (
	"strings"
	"time"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type PayableResponse struct {
	ID           uint   `json:"id"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	SupplierID   *uint  `json:"supplier"`
	SupplierName string `json:"supplier_name,omitempty"`
	EmployeeID   *uint  `json:"employee"`
	EmployeeName string `json:"employee_name,omitempty"`

	Amount     float64 `json:"amount"`
	AmountPaid float64 `json:"amount_paid"`
	DueDate    string  `json:"due_date"`
	PaidAt     string  `json:"paid_at,omitempty"`

	StoreID   uint                `json:"store"`
	StoreName string              `json:"store_name"`
	Status    models.LedgerStatus `json:"status"`
	Notes     string              `json:"notes"`
	CreatedAt string              `json:"created_at"`
}

type PayableRequest struct {
	Description string   `json:"description"`
	Type        string   `json:"type"`
	SupplierID  *uint    `json:"supplier"`
	EmployeeID  *uint    `json:"employee"`
	Amount      *float64 `json:"amount"`
	DueDate     string   `json:"due_date"`
	StoreID     uint     `json:"store"`
	Notes       string   `json:"notes"`
}

type PayPayableRequest struct {
	Amount *float64 `json:"amount"` // omitido = quita o saldo restante
}

func payableResponse(p *models.Payable) PayableResponse {
	res := PayableResponse{
		ID:          p.ID,
		Description: p.Description,
		Type:        p.Type,
		SupplierID:  p.SupplierID,
		EmployeeID:  p.EmployeeID,
		Amount:      p.Amount,
		AmountPaid:  p.AmountPaid,
		DueDate:     p.DueDate.Format("2006-01-02"),
		StoreID:     p.StoreID,
		StoreName:   p.Store.Name,
		Status:      p.Status,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if p.Supplier != nil {
		res.SupplierName = p.Supplier.Name
	}
	if p.Employee != nil {
		res.EmployeeName = p.Employee.Name
	}
	if p.PaidAt != nil {
		res.PaidAt = p.PaidAt.Format("2006-01-02 15:04:05")
	}
	return res
}

// payableStatus reclassifica a conta: paga, vencida ou pendente.
func payableStatus(p *models.Payable, now time.Time) models.LedgerStatus {
	if p.Status == models.LedgerCancelled {
		return models.LedgerCancelled
	}
	if p.AmountPaid >= p.Amount {
		return models.LedgerPaid
	}
	if p.DueDate.Before(now.Truncate(24 * time.Hour)) {
		return models.LedgerOverdue
	}
	return models.LedgerPending
}

// POST /api/financial/payables (apenas admin)
func CreatePayableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PayableRequest
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
		if body.SupplierID != nil {
			var supplier models.Supplier
			if err := database.DB.First(&supplier, "id = ?", *body.SupplierID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Fornecedor inválido")
			}
		}
		if body.EmployeeID != nil {
			var employee models.Employee
			if err := database.DB.First(&employee, "id = ?", *body.EmployeeID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Funcionário inválido")
			}
		}

		payable := models.Payable{
			Description: body.Description,
			Type:        body.Type,
			SupplierID:  body.SupplierID,
			EmployeeID:  body.EmployeeID,
			Amount:      *body.Amount,
			DueDate:     due,
			StoreID:     st.ID,
			Notes:       body.Notes,
		}
		payable.Status = payableStatus(&payable, time.Now())

		if err := database.DB.Create(&payable).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a conta a pagar")
		}

		database.DB.Preload("Store").Preload("Supplier").Preload("Employee").First(&payable, payable.ID)
		return c.Status(fiber.StatusCreated).JSON(payableResponse(&payable))
	}
}

// GET /api/financial/payables?status=pendente&store=1&from=2026-01-01&to=2026-01-31
func ListPayablesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Payable{}).
			Preload("Store").Preload("Supplier").Preload("Employee").
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

		var payables []models.Payable
		if err := dbq.Find(&payables).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as contas a pagar")
		}

		res := make([]PayableResponse, 0, len(payables))
		for i := range payables {
			res = append(res, payableResponse(&payables[i]))
		}

		return c.JSON(res)
	}
}

// POST /api/financial/payables/:id/pay (apenas admin)
func PayPayableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var payable models.Payable
		if err := database.DB.First(&payable, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Conta a pagar não encontrada")
		}
		if payable.Status == models.LedgerPaid {
			return fiber.NewError(fiber.StatusBadRequest, "Esta conta já foi quitada")
		}
		if payable.Status == models.LedgerCancelled {
			return fiber.NewError(fiber.StatusBadRequest, "Esta conta foi cancelada")
		}

		var body PayPayableRequest
		if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		remaining := payable.Amount - payable.AmountPaid
		amount := remaining
		if body.Amount != nil {
			amount = *body.Amount
		}
		if amount <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "O valor do pagamento deve ser maior que zero")
		}
		if amount > remaining {
			return fiber.NewError(fiber.StatusBadRequest, "O pagamento excede o saldo devedor")
		}

		now := time.Now()
		payable.AmountPaid += amount
		if payable.AmountPaid >= payable.Amount {
			payable.PaidAt = &now
		}
		payable.Status = payableStatus(&payable, now)

		if err := database.DB.Save(&payable).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível registrar o pagamento")
		}

		// Saída de caixa da loja correspondente
		flow := models.CashFlow{
			StoreID:     payable.StoreID,
			Amount:      amount,
			Type:        models.CashFlowOut,
			Description: "Pagamento: " + payable.Description,
			Date:        now,
		}
		database.DB.Create(&flow)

		database.DB.Preload("Store").Preload("Supplier").Preload("Employee").First(&payable, payable.ID)
		return c.JSON(payableResponse(&payable))
	}
}

// DELETE /api/financial/payables/:id (apenas admin) - cancela em vez de apagar
func CancelPayableHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var payable models.Payable
		if err := database.DB.First(&payable, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Conta a pagar não encontrada")
		}
		if payable.AmountPaid > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível cancelar uma conta com pagamentos registrados")
		}

		payable.Status = models.LedgerCancelled
		if err := database.DB.Save(&payable).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível cancelar a conta a pagar")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
