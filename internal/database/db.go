package database

import (
	"log"

	"oticas-backend/internal/config"
	"oticas-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Não foi possível conectar ao banco: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Erro na migration: %v", err)
	}

	log.Println("Conexão com o banco estabelecida. Migration concluída.")
}

// Migrate roda o AutoMigrate e os índices criados via SQL cru.
// Também é usado pelos testes para preparar o banco em memória.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Store{},
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.StoreProduct{},
		&models.StockMovement{},
		&models.Seller{},
		&models.CashTillSession{},
		&models.Sale{},
		&models.SaleItem{},
		&models.CashFlow{},
		&models.Customer{},
		&models.Order{},
		&models.Supplier{},
		&models.Employee{},
		&models.Payable{},
		&models.Receivable{},
		&models.Payroll{},
		&models.AuditLog{},
	)
	if err != nil {
		return err
	}

	// Índices únicos parciais: garantem no máximo UMA sessão de caixa aberta
	// por loja e por usuário, mesmo com duas aberturas simultâneas (a segunda
	// recebe violação de unicidade). O AutoMigrate não cria índice parcial.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_till_open_store ON cash_till_sessions (store_id) WHERE status = 'aberto'`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_till_open_user ON cash_till_sessions (opened_by_id) WHERE status = 'aberto'`).Error; err != nil {
		return err
	}

	return nil
}
