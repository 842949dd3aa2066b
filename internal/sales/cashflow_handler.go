package sales

import (
	"time"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"
	"oticas-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type CashFlowResponse struct {
	ID                uint                `json:"id"`
	StoreID           uint                `json:"store_id"`
	CashTillSessionID *uint               `json:"cash_till_session"`
	Amount            float64             `json:"amount"`
	Type              models.CashFlowType `json:"type"`
	Description       string              `json:"description"`
	Date              string              `json:"date"`
}

// GET /api/cash-flows?from=2026-01-01&to=2026-01-31
func ListCashFlowsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeID, err := store.ScopeFilter(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Model(&models.CashFlow{}).Order("date desc")
		if storeID != nil {
			dbq = dbq.Where("store_id = ?", *storeID)
		}

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from inválido, use 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to inválido, use 'YYYY-MM-DD'")
			}
			dbq = dbq.Where("date < ?", to.AddDate(0, 0, 1))
		}

		var flows []models.CashFlow
		if err := dbq.Find(&flows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Não foi possível listar as movimentações")
		}

		res := make([]CashFlowResponse, 0, len(flows))
		for _, f := range flows {
			res = append(res, CashFlowResponse{
				ID:                f.ID,
				StoreID:           f.StoreID,
				CashTillSessionID: f.CashTillSessionID,
				Amount:            f.Amount,
				Type:              f.Type,
				Description:       f.Description,
				Date:              f.Date.Format("2006-01-02"),
			})
		}

		return c.JSON(res)
	}
}
