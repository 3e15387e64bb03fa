// Package seed loads the reference dataset used for local runs and demos.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/billing_api/internal/models"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func at(v string) *time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		panic(err)
	}
	t = t.UTC()
	return &t
}

func Profiles() []models.Profile {
	return []models.Profile{
		{ID: 1, FirstName: "Harry", LastName: "Potter", Profession: "Wizard", Balance: dec("1150"), Type: models.RoleClient},
		{ID: 2, FirstName: "Mr", LastName: "Robot", Profession: "Hacker", Balance: dec("231.11"), Type: models.RoleClient},
		{ID: 3, FirstName: "John", LastName: "Snow", Profession: "Knows nothing", Balance: dec("451.3"), Type: models.RoleClient},
		{ID: 4, FirstName: "Ash", LastName: "Kethcum", Profession: "Pokemon master", Balance: dec("1.3"), Type: models.RoleClient},
		{ID: 5, FirstName: "John", LastName: "Lenon", Profession: "Musician", Balance: dec("64"), Type: models.RoleContractor},
		{ID: 6, FirstName: "Linus", LastName: "Torvalds", Profession: "Programmer", Balance: dec("1214"), Type: models.RoleContractor},
		{ID: 7, FirstName: "Alan", LastName: "Turing", Profession: "Programmer", Balance: dec("22"), Type: models.RoleContractor},
		{ID: 8, FirstName: "Aragorn", LastName: "II Elessar Telcontarion", Profession: "Fighter", Balance: dec("314"), Type: models.RoleContractor},
	}
}

func Contracts() []models.Contract {
	rows := []struct {
		id, client, contractor uint
		status                 models.ContractStatus
	}{
		{1, 1, 5, models.ContractStatusTerminated},
		{2, 1, 6, models.ContractStatusInProgress},
		{3, 2, 6, models.ContractStatusInProgress},
		{4, 2, 7, models.ContractStatusInProgress},
		{5, 3, 8, models.ContractStatusNew},
		{6, 3, 7, models.ContractStatusInProgress},
		{7, 4, 7, models.ContractStatusInProgress},
		{8, 4, 6, models.ContractStatusInProgress},
		{9, 4, 8, models.ContractStatusInProgress},
	}
	out := make([]models.Contract, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Contract{
			ID:           r.id,
			Terms:        "bla bla bla",
			Status:       r.status,
			ClientID:     r.client,
			ContractorID: r.contractor,
		})
	}
	return out
}

func Jobs() []models.Job {
	unpaid := func(price string, contract uint) models.Job {
		return models.Job{Description: "work", Price: dec(price), ContractID: contract}
	}
	paid := func(price string, contract uint, when string) models.Job {
		return models.Job{Description: "work", Price: dec(price), ContractID: contract, Paid: true, PaymentDate: at(when)}
	}
	return []models.Job{
		unpaid("200", 1),
		unpaid("201", 2),
		unpaid("202", 3),
		unpaid("200", 4),
		unpaid("200", 7),
		paid("2020", 7, "2020-08-15T19:11:26.737Z"),
		paid("200", 2, "2020-08-15T19:11:26.737Z"),
		paid("200", 3, "2020-08-16T19:11:26.737Z"),
		paid("200", 1, "2020-08-17T19:11:26.737Z"),
		paid("200", 5, "2020-08-17T19:11:26.737Z"),
		paid("21", 1, "2020-08-10T19:11:26.737Z"),
		paid("21", 2, "2020-08-15T19:11:26.737Z"),
		paid("121", 3, "2020-08-15T19:11:26.737Z"),
		paid("121", 3, "2020-08-14T23:11:26.737Z"),
	}
}

// Run wipes billing tables and inserts the reference dataset in one transaction.
func Run(ctx context.Context, gdb *gorm.DB) error {
	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.LedgerEntry{}, &models.Job{}, &models.Contract{}, &models.Profile{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}

		profiles := Profiles()
		if err := tx.Omit(clause.Associations).Create(&profiles).Error; err != nil {
			return fmt.Errorf("seed profiles: %w", err)
		}
		contracts := Contracts()
		if err := tx.Omit(clause.Associations).Create(&contracts).Error; err != nil {
			return fmt.Errorf("seed contracts: %w", err)
		}
		jobs := Jobs()
		if err := tx.Omit(clause.Associations).Create(&jobs).Error; err != nil {
			return fmt.Errorf("seed jobs: %w", err)
		}
		return resetSequences(tx)
	})
}

// resetSequences moves Postgres id sequences past the explicit ids inserted above.
func resetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range []string{"profiles", "contracts", "jobs"} {
		err := tx.Exec(
			"SELECT setval(pg_get_serial_sequence(?, 'id'), (SELECT COALESCE(MAX(id), 1) FROM "+table+"))",
			table,
		).Error
		if err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}
	return nil
}
