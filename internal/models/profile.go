package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Profile struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	FirstName  string          `gorm:"type:varchar(80);not null" json:"firstName"`
	LastName   string          `gorm:"type:varchar(80);not null" json:"lastName"`
	Profession string          `gorm:"type:varchar(120);not null" json:"profession"`
	Balance    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"balance"`
	Type       Role            `gorm:"type:varchar(20);not null;index" json:"type"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
