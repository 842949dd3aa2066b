package models

import "time"

// Supplier - fornecedor (laboratórios, armações, lentes)
type Supplier struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null"`
	CNPJ      string `gorm:"size:18"`
	CPF       string `gorm:"size:14"`
	Email     string `gorm:"size:100"`
	Phone     string `gorm:"size:50"`
	Address   string `gorm:"size:255"`
	City      string `gorm:"size:100"`
	State     string `gorm:"size:2"`
	ZipCode   string `gorm:"size:10"`
	Notes     string `gorm:"size:500"`
	Active    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EmployeePosition string

const (
	PositionSeller   EmployeePosition = "vendedor"
	PositionManager  EmployeePosition = "gerente"
	PositionOptician EmployeePosition = "optico"
	PositionAuxiliar EmployeePosition = "auxiliar"
	PositionAdmin    EmployeePosition = "administrativo"
	PositionOther    EmployeePosition = "outro"
)

type Employee struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:200;not null"`
	CPF       string `gorm:"size:14;uniqueIndex;not null"`
	RG        string `gorm:"size:20"`
	BirthDate *time.Time
	Email     string `gorm:"size:100"`
	Phone     string `gorm:"size:50"`
	Address   string `gorm:"size:255"`
	City      string `gorm:"size:100"`
	State     string `gorm:"size:2"`
	ZipCode   string `gorm:"size:10"`

	Position          EmployeePosition `gorm:"size:20;not null"`
	HiredAt           time.Time        `gorm:"not null"`
	DismissedAt       *time.Time
	BaseSalary        float64 `gorm:"not null"`
	CommissionPercent float64 `gorm:"not null;default:0"`

	StoreID   uint `gorm:"index;not null"`
	Store     Store
	Active    bool   `gorm:"not null;default:true"`
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LedgerStatus string

const (
	LedgerPending   LedgerStatus = "pendente"
	LedgerPaid      LedgerStatus = "pago"
	LedgerReceived  LedgerStatus = "recebido"
	LedgerOverdue   LedgerStatus = "vencido"
	LedgerCancelled LedgerStatus = "cancelado"
)

// Payable - conta a pagar
type Payable struct {
	ID          uint   `gorm:"primaryKey"`
	Description string `gorm:"size:200;not null"`
	Type        string `gorm:"size:20;not null"` // fornecedor, funcionario, imposto, aluguel...
	SupplierID  *uint
	Supplier    *Supplier
	EmployeeID  *uint
	Employee    *Employee

	Amount     float64 `gorm:"not null"`
	AmountPaid float64 `gorm:"not null;default:0"`
	DueDate    time.Time `gorm:"index;not null"`
	PaidAt     *time.Time

	StoreID   uint `gorm:"index;not null"`
	Store     Store
	Status    LedgerStatus `gorm:"size:20;not null;default:pendente"`
	Notes     string       `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Receivable - conta a receber
type Receivable struct {
	ID          uint   `gorm:"primaryKey"`
	Description string `gorm:"size:200;not null"`
	Type        string `gorm:"size:20;not null"` // venda, servico, comissao, outro
	CustomerID  *uint
	Customer    *Customer
	SaleID      *uint
	Sale        *Sale

	Amount         float64 `gorm:"not null"`
	AmountReceived float64 `gorm:"not null;default:0"`
	DueDate        time.Time `gorm:"index;not null"`
	ReceivedAt     *time.Time

	StoreID   uint `gorm:"index;not null"`
	Store     Store
	Status    LedgerStatus `gorm:"size:20;not null;default:pendente"`
	Notes     string       `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Payroll - folha de pagamento, uma linha por funcionário/ano/mês
type Payroll struct {
	ID         uint `gorm:"primaryKey"`
	EmployeeID uint `gorm:"index;not null;uniqueIndex:idx_payrolls_employee_period"`
	Employee   Employee
	Year       int `gorm:"not null;uniqueIndex:idx_payrolls_employee_period"`
	Month      int `gorm:"not null;uniqueIndex:idx_payrolls_employee_period"`

	BaseSalary float64 `gorm:"not null"`
	Commission float64 `gorm:"not null;default:0"`
	Bonus      float64 `gorm:"not null;default:0"`
	Deductions float64 `gorm:"not null;default:0"`
	NetSalary  float64 `gorm:"not null"` // base + comissão + bônus - descontos

	PaidAt    *time.Time
	Paid      bool   `gorm:"not null;default:false"`
	Notes     string `gorm:"size:500"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
