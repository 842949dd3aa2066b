package models

import "time"

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "dinheiro"
	PaymentCreditCard PaymentMethod = "cartao_credito"
	PaymentDebitCard  PaymentMethod = "cartao_debito"
	PaymentPix        PaymentMethod = "pix"
)

type Sale struct {
	ID uint `gorm:"primaryKey"`

	// Toda venda nasce amarrada a uma sessão de caixa aberta
	CashTillSessionID uint `gorm:"index;not null"`
	CashTillSession   CashTillSession

	StoreID  uint `gorm:"index;not null"`
	Store    Store
	SellerID uint `gorm:"index;not null"`
	Seller   Seller

	CustomerID    *uint
	Customer      *Customer
	CustomerName  string `gorm:"size:100;not null"`
	CustomerEmail string `gorm:"size:100"`
	CustomerPhone string `gorm:"size:50"`

	TotalAmount   float64       `gorm:"not null"`
	PaymentMethod PaymentMethod `gorm:"size:15;not null"`
	SaleDate      time.Time     `gorm:"index;not null"`

	Items []SaleItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

type SaleItem struct {
	ID         uint `gorm:"primaryKey"`
	SaleID     uint `gorm:"index;not null"`
	ProductID  uint `gorm:"index;not null"`
	Product    Product
	Quantity   int     `gorm:"not null"`
	UnitPrice  float64 `gorm:"not null"`
	TotalPrice float64 `gorm:"not null"`
}

type CashFlowType string

const (
	CashFlowIn  CashFlowType = "entrada"
	CashFlowOut CashFlowType = "saida"
)

// CashFlow - livro de movimentações financeiras da loja
type CashFlow struct {
	ID                uint `gorm:"primaryKey"`
	StoreID           uint `gorm:"index;not null"`
	Store             Store
	CashTillSessionID *uint `gorm:"index"`
	Amount            float64      `gorm:"not null"`
	Type              CashFlowType `gorm:"size:10;not null"`
	Description       string       `gorm:"size:200"`
	Date              time.Time    `gorm:"index;not null"`
	CreatedAt         time.Time
}
