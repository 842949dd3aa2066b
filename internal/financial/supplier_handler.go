package financial

import (
	"strings"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SupplierResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CNPJ      string `json:"cnpj"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Notes     string `json:"notes"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

type SupplierRequest struct {
	Name    string `json:"name"`
	CNPJ    string `json:"cnpj"`
	CPF     string `json:"cpf"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Notes   string `json:"notes"`
	Active  *bool  `json:"active"`
}

func supplierResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		CNPJ:      s.CNPJ,
		CPF:       s.CPF,
		Email:     s.Email,
		Phone:     s.Phone,
		Address:   s.Address,
		City:      s.City,
		State:     s.State,
		ZipCode:   s.ZipCode,
		Notes:     s.Notes,
		Active:    s.Active,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/financial/suppliers (apenas admin)
func CreateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "O nome do fornecedor não pode ficar vazio")
		}

		supplier := models.Supplier{
			Name:    body.Name,
			CNPJ:    body.CNPJ,
			CPF:     body.CPF,
			Email:   body.Email,
			Phone:   body.Phone,
			Address: body.Address,
			City:    body.City,
			State:   body.State,
			ZipCode: body.ZipCode,
			Notes:   body.Notes,
			Active:  true,
		}
		if body.Active != nil {
			supplier.Active = *body.Active
		}

		if err := database.DB.Create(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o fornecedor")
		}

		return c.Status(fiber.StatusCreated).JSON(supplierResponse(&supplier))
	}
}

// GET /api/financial/suppliers?active=true&search=lab
func ListSuppliersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Supplier{}).Order("name asc")

		switch c.Query("active") {
		case "":
		case "true":
			dbq = dbq.Where("active = ?", true)
		case "false":
			dbq = dbq.Where("active = ?", false)
		default:
			return fiber.NewError(fiber.StatusBadRequest, "active inválido (true|false)")
		}
		if search := c.Query("search"); search != "" {
			dbq = dbq.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
		}

		var suppliers []models.Supplier
		if err := dbq.Find(&suppliers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os fornecedores")
		}

		res := make([]SupplierResponse, 0, len(suppliers))
		for i := range suppliers {
			res = append(res, supplierResponse(&suppliers[i]))
		}

		return c.JSON(res)
	}
}

// PUT /api/financial/suppliers/:id (apenas admin)
func UpdateSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var supplier models.Supplier
		if err := database.DB.First(&supplier, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fornecedor não encontrado")
		}

		var body SupplierRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "O nome do fornecedor não pode ficar vazio")
		}

		supplier.Name = body.Name
		supplier.CNPJ = body.CNPJ
		supplier.CPF = body.CPF
		supplier.Email = body.Email
		supplier.Phone = body.Phone
		supplier.Address = body.Address
		supplier.City = body.City
		supplier.State = body.State
		supplier.ZipCode = body.ZipCode
		supplier.Notes = body.Notes
		if body.Active != nil {
			supplier.Active = *body.Active
		}

		if err := database.DB.Save(&supplier).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o fornecedor")
		}

		return c.JSON(supplierResponse(&supplier))
	}
}

// DELETE /api/financial/suppliers/:id (apenas admin)
func DeleteSupplierHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		// Fornecedor com contas a pagar vinculadas fica protegido
		var count int64
		database.DB.Model(&models.Payable{}).Where("supplier_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Não é possível excluir um fornecedor com contas a pagar vinculadas")
		}

		if err := database.DB.Delete(&models.Supplier{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o fornecedor")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
