package models

import "time"

type TillStatus string

const (
	TillOpen   TillStatus = "aberto"
	TillClosed TillStatus = "fechado"
)

// CashTillSession - sessão de caixa de uma loja.
// Invariantes: no máximo uma sessão aberta por loja e por usuário
// (índices únicos parciais criados em database.Migrate); os campos de
// fechamento ficam nulos enquanto status = aberto; valor inicial e loja
// são imutáveis depois da abertura; não existe reabertura.
type CashTillSession struct {
	ID      uint `gorm:"primaryKey"`
	StoreID uint `gorm:"index;not null"`
	Store   Store

	OpenedByID uint `gorm:"index;not null"`
	OpenedBy   User
	ClosedByID *uint
	ClosedBy   *User

	OpenedAt time.Time `gorm:"not null"`
	ClosedAt *time.Time

	InitialAmount         float64 `gorm:"not null"`
	FinalAmountReported   *float64
	FinalAmountCalculated *float64
	Difference            *float64 // informado - calculado (positivo = sobra)

	Status TillStatus `gorm:"size:10;not null;default:aberto"`
	Notes  string     `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
