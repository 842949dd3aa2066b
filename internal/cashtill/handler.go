package cashtill

import (
	"errors"
	"fmt"
	"log"
	"time"

	"oticas-backend/internal/audit"
	"oticas-backend/internal/auth"
	"oticas-backend/internal/database"
	"oticas-backend/internal/models"
	"oticas-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type SessionResponse struct {
	ID                    uint              `json:"id"`
	StoreID               uint              `json:"store_id"`
	StoreName             string            `json:"store_name"`
	OpenedBy              uint              `json:"opened_by"`
	OpenedByName          string            `json:"opened_by_name"`
	ClosedBy              *uint             `json:"closed_by"`
	ClosedByName          *string           `json:"closed_by_name"`
	OpenedAt              string            `json:"opened_at"`
	ClosedAt              *string           `json:"closed_at"`
	InitialAmount         float64           `json:"initial_amount"`
	FinalAmountReported   *float64          `json:"final_amount_reported"`
	FinalAmountCalculated *float64          `json:"final_amount_calculated"`
	Difference            *float64          `json:"difference"`
	Status                models.TillStatus `json:"status"`
	Notes                 string            `json:"notes"`
}

type OpenTillRequest struct {
	InitialAmount *float64 `json:"initial_amount"`
	// admin escolhe a loja; para gerente o campo é ignorado
	StoreID *uint `json:"store_id"`
}

type CloseTillRequest struct {
	FinalAmountReported *float64 `json:"final_amount_reported"`
	Notes               string   `json:"notes"`
}

func sessionResponse(s *models.CashTillSession) SessionResponse {
	resp := SessionResponse{
		ID:                    s.ID,
		StoreID:               s.StoreID,
		OpenedBy:              s.OpenedByID,
		OpenedAt:              s.OpenedAt.Format(time.RFC3339),
		InitialAmount:         s.InitialAmount,
		FinalAmountReported:   s.FinalAmountReported,
		FinalAmountCalculated: s.FinalAmountCalculated,
		Difference:            s.Difference,
		Status:                s.Status,
		Notes:                 s.Notes,
		ClosedBy:              s.ClosedByID,
	}

	var st models.Store
	if err := database.DB.First(&st, s.StoreID).Error; err == nil {
		resp.StoreName = st.Name
	}

	var opener models.User
	if err := database.DB.First(&opener, s.OpenedByID).Error; err == nil {
		resp.OpenedByName = opener.FullName()
	}

	if s.ClosedAt != nil {
		closedAt := s.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &closedAt
	}
	if s.ClosedByID != nil {
		var closer models.User
		if err := database.DB.First(&closer, *s.ClosedByID).Error; err == nil {
			name := closer.FullName()
			resp.ClosedByName = &name
		}
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

func writeTillAudit(c *fiber.Ctx, s *models.CashTillSession, action models.AuditAction, description string, before, after any) {
	userID, _, _, err := actingUser(c)
	if err != nil {
		return
	}
	var user models.User
	userName := ""
	if err := database.DB.First(&user, userID).Error; err == nil {
		userName = user.FullName()
	}
	storeID := s.StoreID
	if logErr := audit.WriteLog(audit.LogOptions{
		StoreID:     &storeID,
		UserID:      userID,
		UserName:    userName,
		EntityType:  "cash_till_session",
		EntityID:    s.ID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	}); logErr != nil {
		// Falha de auditoria não derruba a operação
		log.Printf("Audit log não gravado: %v", logErr)
	}
}

// -------------------------------------------------
// GET /api/cash-till-sessions/status
// Sessão aberta no contexto do usuário, ou {"status":"fechado"}.
// -------------------------------------------------
func StatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, storeID, err := actingUser(c)
		if err != nil {
			return err
		}

		session, err := Current(userID, role, storeID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível consultar o status do caixa")
		}

		if session == nil {
			return c.JSON(fiber.Map{"status": models.TillClosed})
		}

		return c.JSON(sessionResponse(session))
	}
}

// -------------------------------------------------
// POST /api/cash-till-sessions/open
// -------------------------------------------------
func OpenHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, _, err := actingUser(c)
		if err != nil {
			return err
		}

		var body OpenTillRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.InitialAmount == nil {
			return fiber.NewError(fiber.StatusBadRequest, "O valor inicial é obrigatório")
		}

		storeID, err := store.ResolveScope(c, body.StoreID)
		if err != nil {
			return err
		}

		session, err := Open(userID, storeID, *body.InitialAmount)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidAmount):
				return fiber.NewError(fiber.StatusBadRequest, "O valor inicial não pode ser negativo")
			case errors.Is(err, ErrUserTillOpen):
				return fiber.NewError(fiber.StatusConflict, "Você já possui um caixa aberto. Feche-o antes de abrir um novo.")
			case errors.Is(err, ErrStoreTillOpen):
				return fiber.NewError(fiber.StatusConflict, "A loja já possui um caixa aberto por outro usuário.")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível abrir o caixa")
			}
		}

		writeTillAudit(c, session, models.AuditActionCreate,
			fmt.Sprintf("Caixa aberto com R$ %.2f", session.InitialAmount),
			nil, sessionResponse(session))

		return c.Status(fiber.StatusCreated).JSON(sessionResponse(session))
	}
}

// -------------------------------------------------
// POST /api/cash-till-sessions/:id/close
// -------------------------------------------------
func CloseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, storeID, err := actingUser(c)
		if err != nil {
			return err
		}

		sessionID, err := c.ParamsInt("id")
		if err != nil || sessionID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id inválido")
		}

		var body CloseTillRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if body.FinalAmountReported == nil {
			return fiber.NewError(fiber.StatusBadRequest, "O valor final informado é obrigatório")
		}

		before := fiber.Map{"status": models.TillOpen}

		session, err := Close(userID, role, storeID, uint(sessionID), *body.FinalAmountReported, body.Notes)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidAmount):
				return fiber.NewError(fiber.StatusBadRequest, "O valor final não pode ser negativo")
			case errors.Is(err, ErrSessionNotFound):
				return fiber.NewError(fiber.StatusNotFound, "Sessão de caixa não encontrada")
			case errors.Is(err, ErrSessionClosed):
				return fiber.NewError(fiber.StatusConflict, "Este caixa já está fechado.")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível fechar o caixa")
			}
		}

		writeTillAudit(c, session, models.AuditActionUpdate,
			fmt.Sprintf("Caixa fechado: informado R$ %.2f, diferença R$ %.2f", *session.FinalAmountReported, *session.Difference),
			before, sessionResponse(session))

		return c.JSON(sessionResponse(session))
	}
}

// -------------------------------------------------
// GET /api/cash-till-sessions
// Histórico de conferência: a diferença exibida é sempre a persistida no
// fechamento, nunca recalculada aqui.
// -------------------------------------------------
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, storeID, err := actingUser(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.CashTillSession{}).Order("opened_at desc")
		if role == models.RoleManager {
			if storeID == nil {
				return c.JSON([]SessionResponse{})
			}
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		if statusStr := c.Query("status"); statusStr != "" {
			dbq = dbq.Where("status = ?", statusStr)
		}

		var sessions []models.CashTillSession
		if err := dbq.Find(&sessions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as sessões")
		}

		res := make([]SessionResponse, 0, len(sessions))
		for i := range sessions {
			res = append(res, sessionResponse(&sessions[i]))
		}

		return c.JSON(res)
	}
}

// -------------------------------------------------
// GET /api/cash-till-sessions/:id
// -------------------------------------------------
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, storeID, err := actingUser(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		dbq := database.DB.Where("id = ?", id)
		if role == models.RoleManager {
			if storeID == nil {
				return fiber.NewError(fiber.StatusNotFound, "Sessão de caixa não encontrada")
			}
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		var session models.CashTillSession
		if err := dbq.First(&session).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sessão de caixa não encontrada")
		}

		return c.JSON(sessionResponse(&session))
	}
}
