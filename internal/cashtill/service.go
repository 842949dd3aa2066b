package cashtill

import (
	"errors"
	"time"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"gorm.io/gorm"
)

// Erros tipados do ciclo de vida do caixa. Os handlers traduzem cada um
// para o status HTTP adequado (400/404/409) em vez de lançar panics.
var (
	ErrInvalidAmount   = errors.New("valor inválido")
	ErrStoreTillOpen   = errors.New("a loja já possui um caixa aberto")
	ErrUserTillOpen    = errors.New("o usuário já possui um caixa aberto")
	ErrSessionNotFound = errors.New("sessão de caixa não encontrada")
	ErrSessionClosed   = errors.New("este caixa já está fechado")
	ErrNoOpenSession   = errors.New("não há um caixa aberto para esta loja")
)

// Open abre uma nova sessão de caixa para a loja. A máquina de estados só
// tem dois estados por loja: Fechado (nenhuma sessão aberta) e Aberto
// (exatamente uma). A transição Fechado→Aberto falha com conflito quando a
// loja ou o próprio usuário já têm caixa aberto - o índice único parcial
// garante isso mesmo com duas aberturas simultâneas.
func Open(userID uint, storeID uint, initialAmount float64) (*models.CashTillSession, error) {
	if initialAmount < 0 {
		return nil, ErrInvalidAmount
	}

	session := models.CashTillSession{
		StoreID:       storeID,
		OpenedByID:    userID,
		OpenedAt:      time.Now(),
		InitialAmount: initialAmount,
		Status:        models.TillOpen,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Checagens amigáveis antes do insert; o índice único parcial cobre
		// a corrida entre as duas.
		var count int64
		tx.Model(&models.CashTillSession{}).
			Where("opened_by_id = ? AND status = ?", userID, models.TillOpen).
			Count(&count)
		if count > 0 {
			return ErrUserTillOpen
		}

		tx.Model(&models.CashTillSession{}).
			Where("store_id = ? AND status = ?", storeID, models.TillOpen).
			Count(&count)
		if count > 0 {
			return ErrStoreTillOpen
		}

		return tx.Create(&session).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Perdeu a corrida para outra abertura concorrente
			return nil, ErrStoreTillOpen
		}
		return nil, err
	}

	return &session, nil
}

// Close fecha a sessão: calcula o valor esperado, grava a diferença e faz a
// transição Aberto→Fechado. Sessão fechada é imutável; não existe reabertura.
//
// Regra de agregação (decisão de contrato com o frontend): o valor calculado
// é o valor inicial mais a soma das vendas em DINHEIRO amarradas à sessão.
// Cartão e PIX não passam pela gaveta, então não entram na conferência.
func Close(userID uint, role models.UserRole, userStoreID *uint, sessionID uint, reported float64, notes string) (*models.CashTillSession, error) {
	if reported < 0 {
		return nil, ErrInvalidAmount
	}

	var session models.CashTillSession

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		dbq := tx.Where("id = ?", sessionID)
		if role == models.RoleManager {
			if userStoreID == nil {
				return ErrSessionNotFound
			}
			dbq = dbq.Where("store_id = ?", *userStoreID)
		}
		if err := dbq.First(&session).Error; err != nil {
			return ErrSessionNotFound
		}

		if session.Status == models.TillClosed {
			return ErrSessionClosed
		}

		var cashTotal float64
		if err := tx.Model(&models.Sale{}).
			Where("cash_till_session_id = ? AND payment_method = ?", session.ID, models.PaymentCash).
			Select("COALESCE(SUM(total_amount), 0)").
			Scan(&cashTotal).Error; err != nil {
			return err
		}

		now := time.Now()
		calculated := session.InitialAmount + cashTotal
		difference := reported - calculated

		// Update condicionado ao status: se outro fechamento chegou primeiro,
		// RowsAffected vem zerado e o chamador recebe conflito.
		res := tx.Model(&models.CashTillSession{}).
			Where("id = ? AND status = ?", session.ID, models.TillOpen).
			Updates(map[string]interface{}{
				"status":                  models.TillClosed,
				"closed_by_id":            userID,
				"closed_at":               now,
				"final_amount_reported":   reported,
				"final_amount_calculated": calculated,
				"difference":              difference,
				"notes":                   notes,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionClosed
		}

		return tx.First(&session, session.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return &session, nil
}

// Current devolve a sessão aberta no contexto do usuário, ou nil.
// Admin: a sessão que ele mesmo abriu (em qualquer loja).
// Gerente: a sessão aberta da loja dele, aberta por quem for.
func Current(userID uint, role models.UserRole, userStoreID *uint) (*models.CashTillSession, error) {
	var session models.CashTillSession

	dbq := database.DB.Where("status = ?", models.TillOpen)
	if role == models.RoleAdmin {
		dbq = dbq.Where("opened_by_id = ?", userID)
	} else {
		if userStoreID == nil {
			return nil, nil
		}
		dbq = dbq.Where("store_id = ?", *userStoreID)
	}

	if err := dbq.Order("opened_at desc").First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// SessionForSale localiza, dentro da transação da venda, a sessão aberta à
// qual a venda deve ser amarrada. É o guardião de admissão: sem caixa
// aberto, nenhuma venda é criada.
func SessionForSale(tx *gorm.DB, userID uint, role models.UserRole, userStoreID *uint) (*models.CashTillSession, error) {
	var session models.CashTillSession

	dbq := tx.Where("status = ?", models.TillOpen)
	if role == models.RoleAdmin {
		dbq = dbq.Where("opened_by_id = ?", userID)
	} else {
		if userStoreID == nil {
			return nil, ErrNoOpenSession
		}
		dbq = dbq.Where("store_id = ?", *userStoreID)
	}

	if err := dbq.First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenSession
		}
		return nil, err
	}

	return &session, nil
}
