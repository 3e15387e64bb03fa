package billing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
	"github.com/Windi-Fikriyansyah/billing_api/internal/models"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/ledger"
)

type DepositResult struct {
	ProfileID uint            `json:"profileId"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	Cap       decimal.Decimal `json:"cap"`
}

// DepositCap is the most a client owing totalUnpaid may deposit at once.
func DepositCap(totalUnpaid, ratio decimal.Decimal) decimal.Decimal {
	return totalUnpaid.Mul(ratio)
}

// Deposit credits a client balance, bounded by a share of what the client still owes.
func (s *BillingService) Deposit(ctx context.Context, profileID uint, amount decimal.Decimal) (*DepositResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: deposit amount must be greater than zero", apperr.ErrValidation)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return nil, fmt.Errorf("%w: deposit amount %s has more than two decimal places", apperr.ErrValidation, amount)
	}

	var result *DepositResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.Ledger.Lock(tx, profileID)
		if err != nil {
			return err
		}
		switch profile.Type {
		case models.RoleClient:
		case models.RoleContractor:
			return fmt.Errorf("%w: deposits are only accepted for client profiles", apperr.ErrForbidden)
		default:
			return fmt.Errorf("%w: unknown role %q", apperr.ErrForbidden, profile.Type)
		}

		totalUnpaid, err := s.Contracts.UnpaidTotalFor(ctx, tx, profileID)
		if err != nil {
			return err
		}
		limit := DepositCap(totalUnpaid, s.capRatio)
		if amount.GreaterThan(limit) {
			return fmt.Errorf("%w: requested %s, maximum is %s", apperr.ErrDepositLimitExceeded, amount, limit)
		}

		entry, err := s.Ledger.Apply(tx, ledger.Posting{
			ProfileID:   profileID,
			Delta:       amount,
			Kind:        models.LedgerDeposit,
			Description: "Balance deposit",
			Metadata: datatypes.JSONMap{
				"total_unpaid": totalUnpaid.String(),
				"cap":          limit.String(),
			},
		})
		if err != nil {
			return err
		}

		result = &DepositResult{
			ProfileID: profileID,
			Amount:    amount,
			Balance:   entry.BalanceAfter,
			Cap:       limit,
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.log.Info().
		Uint("profile_id", profileID).
		Str("amount", amount.String()).
		Str("cap", result.Cap.String()).
		Msg("deposit accepted")

	s.notifier.Notify(ctx, profileID, Event{
		Type: EventDeposit, ProfileID: profileID,
		Amount: amount, Balance: result.Balance, At: s.now().UTC(),
	})
	return result, nil
}
