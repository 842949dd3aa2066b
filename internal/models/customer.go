package models

import "time"

type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null"`
	Email     string `gorm:"size:100"`
	Phone     string `gorm:"size:50"`
	CPF       string `gorm:"size:14;uniqueIndex"`
	BirthDate *time.Time
	Sex       string `gorm:"size:1"` // M / F / O
	Address   string `gorm:"size:255"`
	Number    string `gorm:"size:10"`
	District  string `gorm:"size:100"`
	City      string `gorm:"size:100"`
	State     string `gorm:"size:2"`
	ZipCode   string `gorm:"size:10"`
	Notes     string `gorm:"size:500"`

	// Receituário óptico
	GrauOD       string `gorm:"size:50"`
	GrauOE       string `gorm:"size:50"`
	DNPOD        string `gorm:"size:20"`
	DNPOE        string `gorm:"size:20"`
	Addition     string `gorm:"size:20"`
	OpticalNotes string `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
