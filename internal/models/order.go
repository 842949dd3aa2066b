package models

import "time"

type OrderStatus string

const (
	OrderInProgress OrderStatus = "realizando"
	OrderReady      OrderStatus = "pronto"
	OrderDelivered  OrderStatus = "entregue"
)

// Order - pedido de óculos sob medida (receita + lentes + armação)
type Order struct {
	ID uint `gorm:"primaryKey"`

	CustomerName  string `gorm:"size:200;not null"`
	CustomerPhone string `gorm:"size:50"`
	SellerID      *uint
	Seller        *Seller
	StoreID       uint `gorm:"index;not null"`
	Store         Store

	// Medidas - olho direito
	SphereRight   *float64
	CylinderRight *float64
	AxisRight     *int
	AdditionRight *float64
	DNPRight      *float64
	HeightRight   *float64

	// Medidas - olho esquerdo
	SphereLeft   *float64
	CylinderLeft *float64
	AxisLeft     *int
	AdditionLeft *float64
	DNPLeft      *float64
	HeightLeft   *float64

	LensDescription  string `gorm:"size:500"`
	FrameDescription string `gorm:"size:500"`
	Notes            string `gorm:"size:500"`
	TotalPrice       float64

	Status    OrderStatus `gorm:"size:20;not null;default:realizando"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
