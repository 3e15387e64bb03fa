package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Job struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Paid        bool            `gorm:"not null;default:false;index" json:"paid"`
	PaymentDate *time.Time      `gorm:"index" json:"paymentDate"`
	ContractID  uint            `gorm:"not null;index" json:"contractId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Contract *Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}
