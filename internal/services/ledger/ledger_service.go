package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
	"github.com/Windi-Fikriyansyah/billing_api/internal/models"
)

type LedgerService struct {
	DB  *gorm.DB
	log zerolog.Logger
}

func NewLedgerService(db *gorm.DB, log zerolog.Logger) *LedgerService {
	return &LedgerService{DB: db, log: log.With().Str("service", "ledger").Logger()}
}

// Posting describes one signed balance change and the journal row recorded for it.
type Posting struct {
	ProfileID   uint
	Delta       decimal.Decimal
	Kind        models.LedgerEntryKind
	JobID       *uint
	Description string
	Metadata    datatypes.JSONMap
}

// GetProfile loads a profile without locking.
func (s *LedgerService) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.DB.WithContext(ctx).First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile %d", apperr.ErrNotFound, id)
		}
		return nil, apperr.Internal(err)
	}
	return &profile, nil
}

// Lock reads a profile row FOR UPDATE. Must be called within a DB transaction.
func (s *LedgerService) Lock(tx *gorm.DB, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&profile, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: profile %d", apperr.ErrNotFound, id)
		}
		return nil, apperr.Internal(err)
	}
	return &profile, nil
}

// Apply changes a balance by p.Delta and writes the matching ledger entry.
// This should be called within a DB transaction.
func (s *LedgerService) Apply(tx *gorm.DB, p Posting) (*models.LedgerEntry, error) {
	if p.Delta.IsZero() {
		return nil, fmt.Errorf("%w: posting amount must not be zero", apperr.ErrValidation)
	}

	profile, err := s.Lock(tx, p.ProfileID)
	if err != nil {
		return nil, err
	}

	next := profile.Balance.Add(p.Delta)
	if next.IsNegative() {
		return nil, fmt.Errorf("%w: profile %d has %s, needs %s",
			apperr.ErrInsufficientBalance, profile.ID, profile.Balance, p.Delta.Neg())
	}

	q := tx.Model(&models.Profile{}).Where("id = ?", p.ProfileID)
	if p.Delta.IsNegative() {
		q = q.Where("balance >= ?", p.Delta.Neg())
	}
	result := q.Update("balance", gorm.Expr("balance + ?", p.Delta))
	if result.Error != nil {
		return nil, apperr.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: profile %d changed concurrently", apperr.ErrInsufficientBalance, p.ProfileID)
	}

	entry := models.LedgerEntry{
		ProfileID:    p.ProfileID,
		Amount:       p.Delta,
		BalanceAfter: next,
		Kind:         p.Kind,
		JobID:        p.JobID,
		Description:  p.Description,
		Metadata:     p.Metadata,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Debug().
		Uint("profile_id", p.ProfileID).
		Str("kind", string(p.Kind)).
		Str("delta", p.Delta.String()).
		Str("balance", next.String()).
		Msg("balance adjusted")
	return &entry, nil
}

// AdjustBalance applies a signed delta in its own transaction and returns the new balance.
func (s *LedgerService) AdjustBalance(ctx context.Context, profileID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.Apply(tx, Posting{
			ProfileID:   profileID,
			Delta:       delta,
			Kind:        models.LedgerAdjustment,
			Description: "manual adjustment",
		})
		if err != nil {
			return err
		}
		balance = entry.BalanceAfter
		return nil
	})
	if err != nil {
		return decimal.Zero, wrapTxError(err)
	}
	return balance, nil
}

// ListEntries returns the newest ledger entries of a profile first.
func (s *LedgerService) ListEntries(ctx context.Context, profileID uint, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.LedgerEntry
	err := s.DB.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return entries, nil
}

func wrapTxError(err error) error {
	if apperr.IsBusiness(err) {
		return err
	}
	return apperr.Internal(err)
}
