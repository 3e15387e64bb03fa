package billing

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/ledger"
)

// Notifier delivers an event to everyone watching a profile. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, profileID uint, event any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, uint, any) {}

// BillingService runs the two money-moving operations: job payment and deposit.
type BillingService struct {
	DB        *gorm.DB
	Ledger    *ledger.LedgerService
	Contracts *contracts.ContractService

	notifier Notifier
	capRatio decimal.Decimal
	now      func() time.Time
	log      zerolog.Logger
}

type Option func(*BillingService)

func WithNotifier(n Notifier) Option {
	return func(s *BillingService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithDepositCapRatio overrides the share of outstanding debt a client may deposit.
func WithDepositCapRatio(ratio decimal.Decimal) Option {
	return func(s *BillingService) { s.capRatio = ratio }
}

func WithClock(now func() time.Time) Option {
	return func(s *BillingService) { s.now = now }
}

func NewBillingService(db *gorm.DB, ledgerSvc *ledger.LedgerService, contractSvc *contracts.ContractService, log zerolog.Logger, opts ...Option) *BillingService {
	s := &BillingService{
		DB:        db,
		Ledger:    ledgerSvc,
		Contracts: contractSvc,
		notifier:  nopNotifier{},
		capRatio:  decimal.RequireFromString("0.25"),
		now:       time.Now,
		log:       log.With().Str("service", "billing").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Event is pushed to profiles whose balance changed.
type Event struct {
	Type      string          `json:"type"`
	ProfileID uint            `json:"profileId"`
	JobID     *uint           `json:"jobId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	At        time.Time       `json:"at"`
}

const (
	EventPaymentSent     = "payment_sent"
	EventPaymentReceived = "payment_received"
	EventDeposit         = "deposit"
)

func txError(err error) error {
	if apperr.IsBusiness(err) {
		return err
	}
	return apperr.Internal(err)
}
