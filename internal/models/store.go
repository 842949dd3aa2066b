package models

import "time"

type Store struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null"`
	Address   string `gorm:"size:255"`
	Phone     string `gorm:"size:50"` // Telefone opcional
	Email     string `gorm:"size:100"`
	ManagerID *uint
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}
