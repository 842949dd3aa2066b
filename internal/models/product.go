package models

import "time"

type Product struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Brand       string `gorm:"size:100"`
	Model       string `gorm:"size:100"`
	Code        string `gorm:"size:50;uniqueIndex"` // código sequencial ("01", "02"...)
	Description string `gorm:"size:500"`
	Price       float64
	Cost        float64
	CategoryID  uint `gorm:"index;not null"`
	Category    Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StoreProduct - estoque de um produto em uma loja específica
type StoreProduct struct {
	ID        uint `gorm:"primaryKey"`
	StoreID   uint `gorm:"index;not null;uniqueIndex:idx_store_products_store_product"`
	Store     Store
	ProductID uint `gorm:"index;not null;uniqueIndex:idx_store_products_store_product"`
	Product   Product
	Quantity  int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type StockMovementType string

const (
	StockMovementIn  StockMovementType = "entrada"
	StockMovementOut StockMovementType = "saida"
)

type StockMovement struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  int               `gorm:"not null"`
	Type      StockMovementType `gorm:"size:10;not null"`
	Reason    string            `gorm:"size:200"`
	CreatedAt time.Time
}
