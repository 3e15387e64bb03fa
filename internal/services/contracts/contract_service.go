package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
	"github.com/Windi-Fikriyansyah/billing_api/internal/models"
)

// ContractService answers read-only questions about the contract/job graph.
// Methods take an optional tx so the billing engines can read inside their
// own transaction; a nil tx falls back to the service connection.
type ContractService struct {
	DB *gorm.DB
}

func NewContractService(db *gorm.DB) *ContractService {
	return &ContractService{DB: db}
}

type JobParties struct {
	Job          models.Job
	ClientID     uint
	ContractorID uint
}

func (s *ContractService) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return s.DB.WithContext(ctx)
	}
	return tx.WithContext(ctx)
}

// ResolveJobParties loads a job with the two profiles on its contract.
// Inside a caller transaction the job row is read FOR UPDATE.
func (s *ContractService) ResolveJobParties(ctx context.Context, tx *gorm.DB, jobID uint) (*JobParties, error) {
	q := s.conn(ctx, tx)
	if tx != nil {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var job models.Job
	if err := q.First(&job, jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: job %d", apperr.ErrNotFound, jobID)
		}
		return nil, apperr.Internal(err)
	}

	var contract models.Contract
	if err := s.conn(ctx, tx).First(&contract, job.ContractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d of job %d", apperr.ErrNotFound, job.ContractID, jobID)
		}
		return nil, apperr.Internal(err)
	}
	job.Contract = &contract

	return &JobParties{
		Job:          job,
		ClientID:     contract.ClientID,
		ContractorID: contract.ContractorID,
	}, nil
}

// ListContractsFor returns the non-terminated contracts where the profile acts in role.
func (s *ContractService) ListContractsFor(ctx context.Context, profileID uint, role models.Role) ([]models.Contract, error) {
	column, err := role.PartyColumn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrForbidden, err)
	}

	var contracts []models.Contract
	err = s.DB.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: profileID}).
		Where("status <> ?", models.ContractStatusTerminated).
		Order("id ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return contracts, nil
}

// GetContractFor returns a contract only if the profile is its party in role.
func (s *ContractService) GetContractFor(ctx context.Context, contractID, profileID uint, role models.Role) (*models.Contract, error) {
	column, err := role.PartyColumn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrForbidden, err)
	}

	var contract models.Contract
	err = s.DB.WithContext(ctx).
		Where("id = ?", contractID).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: profileID}).
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %d", apperr.ErrNotFound, contractID)
		}
		return nil, apperr.Internal(err)
	}
	return &contract, nil
}

// ListUnpaidJobsFor returns unpaid jobs on any contract where the profile acts in role.
// Terminated contracts are included: their jobs are still owed.
func (s *ContractService) ListUnpaidJobsFor(ctx context.Context, tx *gorm.DB, profileID uint, role models.Role) ([]models.Job, error) {
	column, err := role.PartyColumn()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrForbidden, err)
	}

	var jobs []models.Job
	err = s.conn(ctx, tx).
		Joins("Contract").
		Where("jobs.paid = ?", false).
		Where(clause.Eq{Column: clause.Column{Table: "Contract", Name: column}, Value: profileID}).
		Order("jobs.id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return jobs, nil
}

// UnpaidTotalFor sums the price of every unpaid job the client owes.
func (s *ContractService) UnpaidTotalFor(ctx context.Context, tx *gorm.DB, clientID uint) (decimal.Decimal, error) {
	jobs, err := s.ListUnpaidJobsFor(ctx, tx, clientID, models.RoleClient)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, job := range jobs {
		total = total.Add(job.Price)
	}
	return total, nil
}
