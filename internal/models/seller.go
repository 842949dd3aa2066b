package models

import "time"

type Seller struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null"`
	Email     string `gorm:"size:100"`
	Phone     string `gorm:"size:50"`
	StoreID   uint   `gorm:"index;not null"`
	Store     Store
	CreatedAt time.Time
	UpdatedAt time.Time
}
