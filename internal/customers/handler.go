package customers

import (
	"errors"
	"strings"
	"time"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CustomerResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"birth_date,omitempty"`
	Sex       string `json:"sex"`
	Address   string `json:"address"`
	Number    string `json:"number"`
	District  string `json:"district"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Notes     string `json:"notes"`

	GrauOD       string `json:"grau_od"`
	GrauOE       string `json:"grau_oe"`
	DNPOD        string `json:"dnp_od"`
	DNPOE        string `json:"dnp_oe"`
	Addition     string `json:"adicao"`
	OpticalNotes string `json:"optical_notes"`

	CreatedAt string `json:"created_at"`
}

type CustomerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"birth_date"` // "2006-01-02"
	Sex       string `json:"sex"`
	Address   string `json:"address"`
	Number    string `json:"number"`
	District  string `json:"district"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Notes     string `json:"notes"`

	GrauOD       string `json:"grau_od"`
	GrauOE       string `json:"grau_oe"`
	DNPOD        string `json:"dnp_od"`
	DNPOE        string `json:"dnp_oe"`
	Addition     string `json:"adicao"`
	OpticalNotes string `json:"optical_notes"`
}

func customerResponse(cu *models.Customer) CustomerResponse {
	res := CustomerResponse{
		ID:           cu.ID,
		Name:         cu.Name,
		Email:        cu.Email,
		Phone:        cu.Phone,
		CPF:          cu.CPF,
		Sex:          cu.Sex,
		Address:      cu.Address,
		Number:       cu.Number,
		District:     cu.District,
		City:         cu.City,
		State:        cu.State,
		ZipCode:      cu.ZipCode,
		Notes:        cu.Notes,
		GrauOD:       cu.GrauOD,
		GrauOE:       cu.GrauOE,
		DNPOD:        cu.DNPOD,
		DNPOE:        cu.DNPOE,
		Addition:     cu.Addition,
		OpticalNotes: cu.OpticalNotes,
		CreatedAt:    cu.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if cu.BirthDate != nil {
		res.BirthDate = cu.BirthDate.Format("2006-01-02")
	}
	return res
}

func applyCustomerRequest(cu *models.Customer, body *CustomerRequest) error {
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "O nome do cliente não pode ficar vazio")
	}
	if body.Sex != "" && body.Sex != "M" && body.Sex != "F" && body.Sex != "O" {
		return fiber.NewError(fiber.StatusBadRequest, "Sexo inválido (M, F ou O)")
	}

	cu.Name = body.Name
	cu.Email = body.Email
	cu.Phone = body.Phone
	cu.CPF = strings.TrimSpace(body.CPF)
	cu.Sex = body.Sex
	cu.Address = body.Address
	cu.Number = body.Number
	cu.District = body.District
	cu.City = body.City
	cu.State = body.State
	cu.ZipCode = body.ZipCode
	cu.Notes = body.Notes
	cu.GrauOD = body.GrauOD
	cu.GrauOE = body.GrauOE
	cu.DNPOD = body.DNPOD
	cu.DNPOE = body.DNPOE
	cu.Addition = body.Addition
	cu.OpticalNotes = body.OpticalNotes

	if body.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", body.BirthDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Data de nascimento inválida, use 'YYYY-MM-DD'")
		}
		cu.BirthDate = &birth
	} else {
		cu.BirthDate = nil
	}
	return nil
}

// POST /api/customers
func CreateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		var customer models.Customer
		if err := applyCustomerRequest(&customer, &body); err != nil {
			return err
		}

		if err := database.DB.Create(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Já existe um cliente com este CPF")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o cliente")
		}

		return c.Status(fiber.StatusCreated).JSON(customerResponse(&customer))
	}
}

// GET /api/customers?search=maria
func ListCustomersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Customer{}).Order("name asc")

		if search := c.Query("search"); search != "" {
			like := "%" + strings.ToLower(search) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR cpf LIKE ? OR phone LIKE ?", like, "%"+search+"%", "%"+search+"%")
		}

		var customers []models.Customer
		if err := dbq.Find(&customers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os clientes")
		}

		res := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			res = append(res, customerResponse(&customers[i]))
		}

		return c.JSON(res)
	}
}

// GET /api/customers/:id
func GetCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cliente não encontrado")
		}

		return c.JSON(customerResponse(&customer))
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var customer models.Customer
		if err := database.DB.First(&customer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cliente não encontrado")
		}

		var body CustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if err := applyCustomerRequest(&customer, &body); err != nil {
			return err
		}

		if err := database.DB.Save(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "Já existe um cliente com este CPF")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o cliente")
		}

		return c.JSON(customerResponse(&customer))
	}
}

// DELETE /api/customers/:id (apenas admin)
func DeleteCustomerHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		// Cliente vinculado a contas a receber fica protegido
		var count int64
		database.DB.Model(&models.Receivable{}).Where("customer_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível excluir um cliente com contas a receber vinculadas")
		}

		if err := database.DB.Delete(&models.Customer{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o cliente")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
