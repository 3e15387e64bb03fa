package reports

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/billing_api/internal/apperr"
)

// ReportService computes admin aggregates over paid jobs whose payment date
// falls inside the requested range.
type ReportService struct {
	DB *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{DB: db}
}

type Range struct {
	Start time.Time
	End   time.Time
}

type ProfessionEarnings struct {
	Profession    string          `json:"profession"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
}

type ClientPayment struct {
	ID       uint            `json:"id"`
	FullName string          `json:"fullName"`
	Paid     decimal.Decimal `json:"paid"`
}

const DefaultClientLimit = 2

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseRange validates a [start, end] pair. A date-only end covers that whole day.
func ParseRange(startRaw, endRaw string) (Range, error) {
	start, _, err := parseDate(startRaw)
	if err != nil {
		return Range{}, fmt.Errorf("%w: invalid start date, use ISO 8601", apperr.ErrValidation)
	}
	end, dateOnly, err := parseDate(endRaw)
	if err != nil {
		return Range{}, fmt.Errorf("%w: invalid end date, use ISO 8601", apperr.ErrValidation)
	}
	if dateOnly {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if start.After(end) {
		return Range{}, fmt.Errorf("%w: start date must be before end date", apperr.ErrValidation)
	}
	return Range{Start: start, End: end}, nil
}

// ParseLimit reads an optional positive limit, falling back to def when empty.
func ParseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: invalid limit, must be a positive integer", apperr.ErrValidation)
	}
	return n, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, apperr.ErrValidation
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, apperr.ErrValidation
}

func (s *ReportService) paidJobsInRange(ctx context.Context, r Range) *gorm.DB {
	return s.DB.WithContext(ctx).
		Table("jobs").
		Joins("JOIN contracts ON contracts.id = jobs.contract_id").
		Where("jobs.paid = ?", true).
		Where("jobs.payment_date BETWEEN ? AND ?", r.Start.UTC(), r.End.UTC())
}

// BestProfession returns the contractor profession that earned the most in r.
// With no payments in range it reports profession "none" earning 0.
func (s *ReportService) BestProfession(ctx context.Context, r Range) (*ProfessionEarnings, error) {
	var rows []ProfessionEarnings
	err := s.paidJobsInRange(ctx, r).
		Joins("JOIN profiles ON profiles.id = contracts.contractor_id").
		Select("profiles.profession AS profession, SUM(jobs.price) AS total_earnings").
		Group("profiles.profession").
		Order("total_earnings DESC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(rows) == 0 {
		return &ProfessionEarnings{Profession: "none", TotalEarnings: decimal.Zero}, nil
	}
	return &rows[0], nil
}

// BestClients returns the clients that paid the most in r, highest first.
func (s *ReportService) BestClients(ctx context.Context, r Range, limit int) ([]ClientPayment, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: invalid limit, must be a positive integer", apperr.ErrValidation)
	}

	var rows []struct {
		ID        uint
		FirstName string
		LastName  string
		TotalPaid decimal.Decimal
	}
	err := s.paidJobsInRange(ctx, r).
		Joins("JOIN profiles ON profiles.id = contracts.client_id").
		Select("profiles.id AS id, profiles.first_name AS first_name, profiles.last_name AS last_name, SUM(jobs.price) AS total_paid").
		Group("profiles.id, profiles.first_name, profiles.last_name").
		Order("total_paid DESC").
		Order("profiles.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	out := make([]ClientPayment, 0, len(rows))
	for _, row := range rows {
		out = append(out, ClientPayment{
			ID:       row.ID,
			FullName: strings.TrimSpace(row.FirstName + " " + row.LastName),
			Paid:     row.TotalPaid,
		})
	}
	return out, nil
}
