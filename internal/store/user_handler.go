package store

import (
	"strings"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type UserResponse struct {
	ID        uint            `json:"id"`
	Username  string          `json:"username"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	StoreID   *uint           `json:"store_id"`
	CreatedAt string          `json:"created_at"`
}

type CreateUserRequest struct {
	Username  string          `json:"username"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Email     string          `json:"email"`
	Password  string          `json:"password"`
	Role      models.UserRole `json:"role"`
	StoreID   *uint           `json:"store_id"`
}

type UpdateUserRequest struct {
	FirstName *string          `json:"first_name"`
	LastName  *string          `json:"last_name"`
	Email     *string          `json:"email"`
	Password  *string          `json:"password"`
	Role      *models.UserRole `json:"role"`
	StoreID   *uint            `json:"store_id"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		StoreID:   u.StoreID,
		CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// USUÁRIOS (apenas admin)
// ----------------------------------------

func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		body.Username = strings.TrimSpace(strings.ToLower(body.Username))

		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Usuário e senha são obrigatórios")
		}

		if body.Role != models.RoleAdmin && body.Role != models.RoleManager {
			return fiber.NewError(fiber.StatusBadRequest, "Perfil inválido (admin|gerente)")
		}

		// Gerente precisa de loja
		if body.Role == models.RoleManager {
			if body.StoreID == nil {
				return fiber.NewError(fiber.StatusBadRequest, "Gerente precisa estar associado a uma loja")
			}
			var st models.Store
			if err := database.DB.First(&st, "id = ?", *body.StoreID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Loja inválida")
			}
		}

		var exist models.User
		if err := database.DB.Where("username = ?", body.Username).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Este usuário já está cadastrado")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar o hash da senha")
		}

		user := models.User{
			Username:     body.Username,
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			Email:        body.Email,
			PasswordHash: string(hash),
			Role:         body.Role,
			StoreID:      body.StoreID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível criar o usuário")
		}

		return c.Status(fiber.StatusCreated).JSON(userResponse(&user))
	}
}

func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var users []models.User
		if err := database.DB.Order("username asc").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar os usuários")
		}

		res := make([]UserResponse, 0, len(users))
		for i := range users {
			res = append(res, userResponse(&users[i]))
		}

		return c.JSON(res)
	}
}

func GetUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuário não encontrado")
		}

		return c.JSON(userResponse(&user))
	}
}

func UpdateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var user models.User
		if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Usuário não encontrado")
		}

		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dados inválidos")
		}

		if body.FirstName != nil {
			user.FirstName = *body.FirstName
		}
		if body.LastName != nil {
			user.LastName = *body.LastName
		}
		if body.Email != nil {
			user.Email = *body.Email
		}
		if body.Role != nil {
			if *body.Role != models.RoleAdmin && *body.Role != models.RoleManager {
				return fiber.NewError(fiber.StatusBadRequest, "Perfil inválido (admin|gerente)")
			}
			user.Role = *body.Role
		}
		if body.StoreID != nil {
			var st models.Store
			if err := database.DB.First(&st, "id = ?", *body.StoreID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Loja inválida")
			}
			user.StoreID = body.StoreID
		}
		if body.Password != nil && *body.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(*body.Password), bcrypt.DefaultCost)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível gerar o hash da senha")
			}
			user.PasswordHash = string(hash)
		}

		if err := database.DB.Save(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível atualizar o usuário")
		}

		return c.JSON(userResponse(&user))
	}
}

func DeleteUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		if err := database.DB.Delete(&models.User{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível excluir o usuário")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
