package financial

import (
	"errors"
	"strings"
	"time"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EmployeeResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CPF       string `json:"cpf"`
	RG        string `json:"rg"`
	BirthDate string `json:"birth_date,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`

	Position          models.EmployeePosition `json:"position"`
	HiredAt           string                  `json:"hired_at"`
	DismissedAt       string                  `json:"dismissed_at,omitempty"`
	BaseSalary        float64                 `json:"base_salary"`
	CommissionPercent float64                 `json:"commission_percent"`

	StoreID   uint   `json:"store"`
	StoreName string `json:"store_name"`
	Active    bool   `json:"active"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

type EmployeeRequest struct {
	Name      string `json:"name"`
	CPF       string `json:"cpf"`
	RG        string `json:"rg"`
	BirthDate string `json:"birth_date"` // "2006-01-02"
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`

	Position          models.EmployeePosition `json:"position"`
	HiredAt           string                  `json:"hired_at"`
	DismissedAt       string                  `json:"dismissed_at"`
	BaseSalary        *float64                `json:"base_salary"`
	CommissionPercent *float64                `json:"commission_percent"`

	StoreID uint   `json:"store"`
	Active  *bool  `json:"active"`
	Notes   string `json:"notes"`
}

func validPosition(p models.EmployeePosition) bool {
	switch p {
	case models.PositionSeller, models.PositionManager, models.PositionOptician,
		models.PositionAuxiliar, models.PositionAdmin, models.PositionOther:
		return true
	}
	return false
}

func employeeResponse(e *models.Employee) EmployeeResponse {
	res := EmployeeResponse{
		ID:                e.ID,
		Name:              e.Name,
		CPF:               e.CPF,
		RG:                e.RG,
		Email:             e.Email,
		Phone:             e.Phone,
		Address:           e.Address,
		City:              e.City,
		State:             e.State,
		ZipCode:           e.ZipCode,
		Position:          e.Position,
		HiredAt:           e.HiredAt.Format("2006-01-02"),
		BaseSalary:        e.BaseSalary,
		CommissionPercent: e.CommissionPercent,
		StoreID:           e.StoreID,
		StoreName:         e.Store.Name,
		Active:            e.Active,
		Notes:             e.Notes,
		CreatedAt:         e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if e.BirthDate != nil {
		res.BirthDate = e.BirthDate.Format("2006-01-02")
	}
	if e.DismissedAt != nil {
		res.DismissedAt = e.DismissedAt.Format("2006-01-02")
	}
	return res
}

func applyEmployeeRequest(e *models.Employee, body *EmployeeRequest) error {
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "O nome do funcionário não pode ficar vazio")
	}
	body.CPF = strings.TrimSpace(body.CPF)
	if body.CPF == "" {
		return fiber.NewError(fiber.StatusBadRequest, "O CPF do funcionário é obrigatório")
	}
	if !validPosition(body.Position) {
		return fiber.NewError(fiber.StatusBadRequest, "Cargo inválido")
	}
	if body.BaseSalary == nil || *body.BaseSalary < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Salário base inválido")
	}
	if body.CommissionPercent != nil && (*body.CommissionPercent < 0 || *body.CommissionPercent > 100) {
		return fiber.NewError(fiber.StatusBadRequest, "Percentual de comissão inválido")
	}

	hired, err := time.Parse("2006-01-02", body.HiredAt)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Data de admissão inválida, use 'YYYY-MM-DD'")
	}

	var st models.Store
	if err := database.DB.First(&st, "id = ?", body.StoreID).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Loja inválida")
	}

	e.Name = body.Name
	e.CPF = body.CPF
	e.RG = body.RG
	e.Email = body.Email
	e.Phone = body.Phone
	e.Address = body.Address
	e.City = body.City
	e.State = body.State
	e.ZipCode = body.ZipCode
	e.Position = body.Position
	e.HiredAt = hired
	e.BaseSalary = *body.BaseSalary
	if body.CommissionPercent != nil {
		e.CommissionPercent = *body.CommissionPercent
	}
	e.StoreID = st.ID
	e.Notes = body.Notes
	if body.Active != nil {
		e.Active = *body.Active
	}

	if body.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", body.BirthDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Data de nascimento inválida, use 'YYYY-MM-DD'")
		}
		e.BirthDate = &birth
	} else {
		e.BirthDate = nil
	}
	if body.DismissedAt != "" {
		dismissed, err := time.Parse("2006-01-02", body.DismissedAt)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Data de desligamento inválida, use 'YYYY-MM-DD'")
		}
		e.DismissedAt = &dismissed
		e.Active = false
	} else {
		e.DismissedAt = nil
	}
	return nil
}

// POST /api/financial/employees (apenas admin)
func CreateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		employee := models.Employee{Active: true}
		if err := applyEmployeeRequest(&employee, &body); err != nil {
			return err
		}

		if err := database.DB.Create(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Já existe um funcionário com este CPF")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o funcionário")
		}

		database.DB.Preload("Store").First(&employee, employee.ID)
		return c.Status(fiber.StatusCreated).JSON(employeeResponse(&employee))
	}
}

// GET /api/financial/employees?active=true&store=1
func ListEmployeesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Employee{}).Preload("Store").Order("name asc")

		switch c.Query("active") {
		case "":
		case "true":
			dbq = dbq.Where("active = ?", true)
		case "false":
			dbq = dbq.Where("active = ?", false)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "active inválido (true|false)")
		}
		if storeStr := c.Query("store"); storeStr != "" {
			dbq = dbq.Where("store_id = ?", storeStr)
		}

		var employees []models.Employee
		if err := dbq.Find(&employees).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os funcionários")
		}

		res := make([]EmployeeResponse, 0, len(employees))
		for i := range employees {
			res = append(res, employeeResponse(&employees[i]))
		}

		return c.JSON(res)
	}
}

// GET /api/financial/employees/:id (apenas admin)
func GetEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var employee models.Employee
		if err := database.DB.Preload("Store").First(&employee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Funcionário não encontrado")
		}

		return c.JSON(employeeResponse(&employee))
	}
}

// PUT /api/financial/employees/:id (apenas admin)
func UpdateEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var employee models.Employee
		if err := database.DB.First(&employee, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Funcionário não encontrado")
		}

		var body EmployeeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if err := applyEmployeeRequest(&employee, &body); err != nil {
			return err
		}

		if err := database.DB.Save(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Já existe um funcionário com este CPF")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o funcionário")
		}

		database.DB.Preload("Store").First(&employee, employee.ID)
		return c.JSON(employeeResponse(&employee))
	}
}

// DELETE /api/financial/employees/:id (apenas admin)
func DeleteEmployeeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		// Funcionário com folha registrada fica protegido
		var count int64
		database.DB.Model(&models.Payroll{}).Where("employee_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível excluir um funcionário com folha de pagamento registrada")
		}

		if err := database.DB.Delete(&models.Employee{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o funcionário")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
