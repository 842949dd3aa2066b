package cashtill

import (
	"errors"
	"testing"
	"time"

	"oticas-backend/internal/database"
	"oticas-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	database.DB = db
	return db
}

func createStore(t *testing.T, db *gorm.DB, name string) *models.Store {
	t.Helper()
	st := &models.Store{Name: name, Address: "Rua Augusta, 100"}
	require.NoError(t, db.Create(st).Error)
	return st
}

func createManager(t *testing.T, db *gorm.DB, username string, storeID uint) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		FirstName:    "Gerente",
		PasswordHash: "x",
		Role:         models.RoleManager,
		StoreID:      &storeID,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createCashSale(t *testing.T, db *gorm.DB, session *models.CashTillSession, amount float64, method models.PaymentMethod) {
	t.Helper()
	seller := &models.Seller{Name: "Vendedor", StoreID: session.StoreID}
	require.NoError(t, db.Create(seller).Error)
	sale := &models.Sale{
		CashTillSessionID: session.ID,
		StoreID:           session.StoreID,
		SellerID:          seller.ID,
		CustomerName:      "Cliente",
		TotalAmount:       amount,
		PaymentMethod:     method,
		SaleDate:          time.Now(),
	}
	require.NoError(t, db.Create(sale).Error)
}

func TestOpenCreatesOpenSession(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	session, err := Open(user.ID, st.ID, 150.00)
	require.NoError(t, err)
	assert.Equal(t, models.TillOpen, session.Status)
	assert.Equal(t, 150.00, session.InitialAmount)
	assert.Equal(t, st.ID, session.StoreID)
	assert.Nil(t, session.FinalAmountReported)
	assert.Nil(t, session.Difference)

	// O status consultado reflete exatamente a sessão criada
	current, err := Current(user.ID, models.RoleManager, &st.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.ID, current.ID)
}

func TestOpenRejectsNegativeAmount(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	_, err := Open(user.ID, st.ID, -10.00)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestOpenBlockedWhenStoreHasOpenTill(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user1 := createManager(t, db, "gerente1", st.ID)
	user2 := createManager(t, db, "gerente2", st.ID)

	_, err := Open(user1.ID, st.ID, 100.00)
	require.NoError(t, err)

	_, err = Open(user2.ID, st.ID, 100.00)
	assert.ErrorIs(t, err, ErrStoreTillOpen)
}

func TestOpenBlockedWhenUserHasOpenTill(t *testing.T) {
	db := setupTestDB(t)
	st1 := createStore(t, db, "Loja Centro")
	st2 := createStore(t, db, "Loja Norte")
	user := createManager(t, db, "gerente1", st1.ID)

	_, err := Open(user.ID, st1.ID, 100.00)
	require.NoError(t, err)

	_, err = Open(user.ID, st2.ID, 100.00)
	assert.ErrorIs(t, err, ErrUserTillOpen)
}

func TestOpenRaceLoserGetsUniqueViolation(t *testing.T) {
	// Simula a corrida que escapa das checagens amigáveis: o insert direto de
	// uma segunda sessão aberta bate no índice único parcial.
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user1 := createManager(t, db, "gerente1", st.ID)
	user2 := createManager(t, db, "gerente2", st.ID)

	_, err := Open(user1.ID, st.ID, 100.00)
	require.NoError(t, err)

	dup := models.CashTillSession{
		StoreID:       st.ID,
		OpenedByID:    user2.ID,
		OpenedAt:      time.Now(),
		InitialAmount: 50.00,
		Status:        models.TillOpen,
	}
	err = db.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCloseComputesVarianceFromCashSales(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	session, err := Open(user.ID, st.ID, 500.00)
	require.NoError(t, err)

	createCashSale(t, db, session, 40.00, models.PaymentCash)

	closed, err := Close(user.ID, models.RoleManager, &st.ID, session.ID, 550.50, "sobra no caixa")
	require.NoError(t, err)

	assert.Equal(t, models.TillClosed, closed.Status)
	require.NotNil(t, closed.FinalAmountCalculated)
	require.NotNil(t, closed.FinalAmountReported)
	require.NotNil(t, closed.Difference)
	assert.InDelta(t, 540.00, *closed.FinalAmountCalculated, 0.001)
	assert.InDelta(t, 550.50, *closed.FinalAmountReported, 0.001)
	assert.InDelta(t, 10.50, *closed.Difference, 0.001)
	assert.NotNil(t, closed.ClosedAt)
	assert.Equal(t, "sobra no caixa", closed.Notes)
}

func TestCloseIgnoresNonCashSales(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	session, err := Open(user.ID, st.ID, 100.00)
	require.NoError(t, err)

	createCashSale(t, db, session, 200.00, models.PaymentCreditCard)
	createCashSale(t, db, session, 300.00, models.PaymentPix)
	createCashSale(t, db, session, 50.00, models.PaymentCash)

	closed, err := Close(user.ID, models.RoleManager, &st.ID, session.ID, 150.00, "")
	require.NoError(t, err)

	// Cartão e PIX não passam pela gaveta
	assert.InDelta(t, 150.00, *closed.FinalAmountCalculated, 0.001)
	assert.InDelta(t, 0.00, *closed.Difference, 0.001)
}

func TestCloseNegativeShortage(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	session, err := Open(user.ID, st.ID, 200.00)
	require.NoError(t, err)

	closed, err := Close(user.ID, models.RoleManager, &st.ID, session.ID, 180.00, "")
	require.NoError(t, err)

	// Faltou dinheiro: diferença negativa
	assert.InDelta(t, -20.00, *closed.Difference, 0.001)
}

func TestDoubleCloseFails(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	session, err := Open(user.ID, st.ID, 100.00)
	require.NoError(t, err)

	_, err = Close(user.ID, models.RoleManager, &st.ID, session.ID, 100.00, "")
	require.NoError(t, err)

	_, err = Close(user.ID, models.RoleManager, &st.ID, session.ID, 100.00, "")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCloseRejectsNegativeReported(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	session, err := Open(user.ID, st.ID, 100.00)
	require.NoError(t, err)

	_, err = Close(user.ID, models.RoleManager, &st.ID, session.ID, -1.00, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestManagerCannotCloseOtherStoreSession(t *testing.T) {
	db := setupTestDB(t)
	st1 := createStore(t, db, "Loja Centro")
	st2 := createStore(t, db, "Loja Norte")
	user1 := createManager(t, db, "gerente1", st1.ID)
	user2 := createManager(t, db, "gerente2", st2.ID)

	session, err := Open(user1.ID, st1.ID, 100.00)
	require.NoError(t, err)

	_, err = Close(user2.ID, models.RoleManager, &st2.ID, session.ID, 100.00, "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestReopenAfterClose(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	first, err := Open(user.ID, st.ID, 100.00)
	require.NoError(t, err)
	_, err = Close(user.ID, models.RoleManager, &st.ID, first.ID, 100.00, "")
	require.NoError(t, err)

	second, err := Open(user.ID, st.ID, 200.00)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.TillOpen, second.Status)

	// A sessão fechada permanece imutável no histórico
	var reloaded models.CashTillSession
	require.NoError(t, db.First(&reloaded, first.ID).Error)
	assert.Equal(t, models.TillClosed, reloaded.Status)
	assert.InDelta(t, 100.00, reloaded.InitialAmount, 0.001)
}

func TestCurrentNilWhenNoSession(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	session, err := Current(user.ID, models.RoleManager, &st.ID)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestCurrentManagerSeesSessionOpenedByColleague(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user1 := createManager(t, db, "gerente1", st.ID)
	user2 := createManager(t, db, "gerente2", st.ID)

	opened, err := Open(user1.ID, st.ID, 100.00)
	require.NoError(t, err)

	// Gerente da mesma loja enxerga o caixa aberto pelo colega
	current, err := Current(user2.ID, models.RoleManager, &st.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, opened.ID, current.ID)
}

func TestSessionForSaleGuard(t *testing.T) {
	db := setupTestDB(t)
	st := createStore(t, db, "Loja Centro")
	user := createManager(t, db, "gerente1", st.ID)

	_, err := SessionForSale(db, user.ID, models.RoleManager, &st.ID)
	assert.True(t, errors.Is(err, ErrNoOpenSession))

	opened, err := Open(user.ID, st.ID, 100.00)
	require.NoError(t, err)

	session, err := SessionForSale(db, user.ID, models.RoleManager, &st.ID)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, session.ID)

	_, err = Close(user.ID, models.RoleManager, &st.ID, opened.ID, 100.00, "")
	require.NoError(t, err)

	// Depois do fechamento o guardião volta a recusar
	_, err = SessionForSale(db, user.ID, models.RoleManager, &st.ID)
	assert.True(t, errors.Is(err, ErrNoOpenSession))
}
