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

type PayJobResult struct {
	JobID             uint            `json:"jobId"`
	Amount            decimal.Decimal `json:"amount"`
	ClientBalance     decimal.Decimal `json:"clientBalance"`
	ContractorBalance decimal.Decimal `json:"-"`
	ContractorID      uint            `json:"-"`
}

func (r *PayJobResult) Message() string {
	return fmt.Sprintf("Payment of %s processed successfully", r.Amount)
}

// PayJob moves the job price from the requesting client to the contractor and
// marks the job paid. The three writes commit together or not at all.
func (s *BillingService) PayJob(ctx context.Context, jobID uint, requester *models.Profile) (*PayJobResult, error) {
	if requester == nil {
		return nil, fmt.Errorf("%w: missing requesting profile", apperr.ErrForbidden)
	}
	switch requester.Type {
	case models.RoleClient:
	case models.RoleContractor:
		return nil, fmt.Errorf("%w: only clients can pay jobs", apperr.ErrForbidden)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", apperr.ErrForbidden, requester.Type)
	}

	var result *PayJobResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parties, err := s.Contracts.ResolveJobParties(ctx, tx, jobID)
		if err != nil {
			return err
		}
		// Another client's job is reported as missing, not forbidden.
		if parties.ClientID != requester.ID {
			return fmt.Errorf("%w: job %d", apperr.ErrNotFound, jobID)
		}

		job := parties.Job
		if job.Paid {
			return fmt.Errorf("%w: job %d", apperr.ErrAlreadyPaid, jobID)
		}
		if !job.Price.IsPositive() {
			return fmt.Errorf("%w: job %d has non-positive price %s", apperr.ErrValidation, jobID, job.Price)
		}

		client, err := s.Ledger.Lock(tx, parties.ClientID)
		if err != nil {
			return err
		}
		if client.Balance.LessThan(job.Price) {
			return fmt.Errorf("%w: balance %s is below job price %s",
				apperr.ErrInsufficientBalance, client.Balance, job.Price)
		}

		meta := datatypes.JSONMap{
			"contract_id":   job.ContractID,
			"client_id":     parties.ClientID,
			"contractor_id": parties.ContractorID,
		}
		debit, err := s.Ledger.Apply(tx, ledger.Posting{
			ProfileID:   parties.ClientID,
			Delta:       job.Price.Neg(),
			Kind:        models.LedgerPaymentDebit,
			JobID:       &job.ID,
			Description: fmt.Sprintf("Payment for job #%d", job.ID),
			Metadata:    meta,
		})
		if err != nil {
			return err
		}
		credit, err := s.Ledger.Apply(tx, ledger.Posting{
			ProfileID:   parties.ContractorID,
			Delta:       job.Price,
			Kind:        models.LedgerPaymentCredit,
			JobID:       &job.ID,
			Description: fmt.Sprintf("Payment received for job #%d", job.ID),
			Metadata:    meta,
		})
		if err != nil {
			return err
		}

		paidAt := s.now().UTC()
		update := tx.Model(&models.Job{}).
			Where("id = ? AND paid = ?", job.ID, false).
			Updates(map[string]any{"paid": true, "payment_date": paidAt})
		if update.Error != nil {
			return apperr.Internal(update.Error)
		}
		if update.RowsAffected == 0 {
			return fmt.Errorf("%w: job %d", apperr.ErrAlreadyPaid, jobID)
		}

		result = &PayJobResult{
			JobID:             job.ID,
			Amount:            job.Price,
			ClientBalance:     debit.BalanceAfter,
			ContractorBalance: credit.BalanceAfter,
			ContractorID:      parties.ContractorID,
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.log.Info().
		Uint("job_id", result.JobID).
		Uint("client_id", requester.ID).
		Uint("contractor_id", result.ContractorID).
		Str("amount", result.Amount.String()).
		Msg("job paid")

	at := s.now().UTC()
	s.notifier.Notify(ctx, requester.ID, Event{
		Type: EventPaymentSent, ProfileID: requester.ID, JobID: &result.JobID,
		Amount: result.Amount, Balance: result.ClientBalance, At: at,
	})
	s.notifier.Notify(ctx, result.ContractorID, Event{
		Type: EventPaymentReceived, ProfileID: result.ContractorID, JobID: &result.JobID,
		Amount: result.Amount, Balance: result.ContractorBalance, At: at,
	})
	return result, nil
}
