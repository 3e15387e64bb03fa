package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LedgerEntryKind string

const (
	LedgerPaymentDebit  LedgerEntryKind = "payment_debit"  // client pays a job
	LedgerPaymentCredit LedgerEntryKind = "payment_credit" // contractor receives a job payment
	LedgerDeposit       LedgerEntryKind = "deposit"
	LedgerAdjustment    LedgerEntryKind = "adjustment"
)

// LedgerEntry is the journal row written next to every balance change.
type LedgerEntry struct {
	ID           uuid.UUID         `gorm:"type:char(36);primaryKey" json:"id"`
	ProfileID    uint              `gorm:"not null;index" json:"profileId"`
	Amount       decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"balanceAfter"`
	Kind         LedgerEntryKind   `gorm:"type:varchar(30);not null;index" json:"kind"`
	JobID        *uint             `gorm:"index" json:"jobId,omitempty"`
	Description  string            `gorm:"type:text" json:"description"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`

	Profile *Profile `gorm:"foreignKey:ProfileID" json:"-"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
