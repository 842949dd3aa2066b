package financial

import (
	"errors"
	"time"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PayrollResponse struct {
	ID           uint   `json:"id"`
	EmployeeID   uint   `json:"employee"`
	EmployeeName string `json:"employee_name"`
	Year         int    `json:"year"`
	Month        int    `json:"month"`

	BaseSalary float64 `json:"base_salary"`
	Commission float64 `json:"commission"`
	Bonus      float64 `json:"bonus"`
	Deductions float64 `json:"deductions"`
	NetSalary  float64 `json:"net_salary"`

	Paid      bool   `json:"paid"`
	PaidAt    string `json:"paid_at,omitempty"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

type PayrollRequest struct {
	EmployeeID uint `json:"employee"`
	Year       int  `json:"year"`
	Month      int  `json:"month"`

	BaseSalary *float64 `json:"base_salary"` // omitido = salário atual do funcionário
	Commission float64  `json:"commission"`
	Bonus      float64  `json:"bonus"`
	Deductions float64  `json:"deductions"`
	Notes      string   `json:"notes"`
}

func payrollResponse(p *models.Payroll) PayrollResponse {
	res := PayrollResponse{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		EmployeeName: p.Employee.Name,
		Year:         p.Year,
		Month:        p.Month,
		BaseSalary:   p.BaseSalary,
		Commission:   p.Commission,
		Bonus:        p.Bonus,
		Deductions:   p.Deductions,
		NetSalary:    p.NetSalary,
		Paid:         p.Paid,
		Notes:        p.Notes,
		CreatedAt:    p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if p.PaidAt != nil {
		res.PaidAt = p.PaidAt.Format("2006-01-02 15:04:05")
	}
	return res
}

// POST /api/financial/payrolls (apenas admin)
// O líquido é sempre recalculado no servidor: base + comissão + bônus - descontos.
func CreatePayrollHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PayrollRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.Year < 2000 || body.Year > 2100 {
			return fiber.NewError(fiber.StatusBadRequest, "Ano inválido")
		}
		if body.Month < 1 || body.Month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "Mês inválido")
		}
		if body.Commission < 0 || body.Bonus < 0 || body.Deductions < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Valores da folha não podem ser negativos")
		}

		var employee models.Employee
		if err := database.DB.First(&employee, "id = ?", body.EmployeeID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Funcionário inválido")
		}

		base := employee.BaseSalary
		if body.BaseSalary != nil {
			if *body.BaseSalary < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Salário base inválido")
			}
			base = *body.BaseSalary
		}

		payroll := models.Payroll{
			EmployeeID: employee.ID,
			Year:       body.Year,
			Month:      body.Month,
			BaseSalary: base,
			Commission: body.Commission,
			Bonus:      body.Bonus,
			Deductions: body.Deductions,
			NetSalary:  base + body.Commission + body.Bonus - body.Deductions,
			Notes:      body.Notes,
		}

		if err := database.DB.Create(&payroll).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Já existe folha para este funcionário neste período")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar a folha de pagamento")
		}

		database.DB.Preload("Employee").First(&payroll, payroll.ID)
		return c.Status(fiber.StatusCreated).JSON(payrollResponse(&payroll))
	}
}

// GET /api/financial/payrolls?year=2026&month=8&employee=1
func ListPayrollsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Payroll{}).Preload("Employee").
			Order("year desc, month desc")

		if yearStr := c.Query("year"); yearStr != "" {
			dbq = dbq.Where("year = ?", yearStr)
		}
		if monthStr := c.Query("month"); monthStr != "" {
			dbq = dbq.Where("month = ?", monthStr)
		}
		if employeeStr := c.Query("employee"); employeeStr != "" {
			dbq = dbq.Where("employee_id = ?", employeeStr)
		}

		var payrolls []models.Payroll
		if err := dbq.Find(&payrolls).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as folhas de pagamento")
		}

		res := make([]PayrollResponse, 0, len(payrolls))
		for i := range payrolls {
			res = append(res, payrollResponse(&payrolls[i]))
		}

		return c.JSON(res)
	}
}

// PUT /api/financial/payrolls/:id (apenas admin) - folha paga é imutável
func UpdatePayrollHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var payroll models.Payroll
		if err := database.DB.First(&payroll, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Folha de pagamento não encontrada")
		}
		if payroll.Paid {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível alterar uma folha já paga")
		}

		var body PayrollRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}
		if body.Commission < 0 || body.Bonus < 0 || body.Deductions < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Valores da folha não podem ser negativos")
		}

		if body.BaseSalary != nil {
			if *body.BaseSalary < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Salário base inválido")
			}
			payroll.BaseSalary = *body.BaseSalary
		}
		payroll.Commission = body.Commission
		payroll.Bonus = body.Bonus
		payroll.Deductions = body.Deductions
		payroll.NetSalary = payroll.BaseSalary + payroll.Commission + payroll.Bonus - payroll.Deductions
		payroll.Notes = body.Notes

		if err := database.DB.Save(&payroll).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar a folha de pagamento")
		}

		database.DB.Preload("Employee").First(&payroll, payroll.ID)
		return c.JSON(payrollResponse(&payroll))
	}
}

// POST /api/financial/payrolls/:id/pay (apenas admin)
func PayPayrollHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var payroll models.Payroll
		if err := database.DB.Preload("Employee").First(&payroll, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Folha de pagamento não encontrada")
		}
		if payroll.Paid {
			return fiber.NewError(fiber.StatusBadRequest, "Esta folha já foi paga")
		}

		now := time.Now()
		payroll.Paid = true
		payroll.PaidAt = &now

		if err := database.DB.Save(&payroll).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível registrar o pagamento da folha")
		}

		// Saída de caixa na loja do funcionário
		flow := models.CashFlow{
			StoreID:     payroll.Employee.StoreID,
			Amount:      payroll.NetSalary,
			Type:        models.CashFlowOut,
			Description: "Folha de pagamento: " + payroll.Employee.Name,
			Date:        now,
		}
		database.DB.Create(&flow)

		return c.JSON(payrollResponse(&payroll))
	}
}

// DELETE /api/financial/payrolls/:id (apenas admin) - só antes do pagamento
func DeletePayrollHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var payroll models.Payroll
		if err := database.DB.First(&payroll, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Folha de pagamento não encontrada")
		}
		if payroll.Paid {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível excluir uma folha já paga")
		}

		if err := database.DB.Delete(&payroll).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir a folha de pagamento")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
