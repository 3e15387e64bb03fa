// Package testutil builds throwaway SQLite databases and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/billing_api/internal/db"
	"github.com/Windi-Fikriyansyah/billing_api/internal/models"
)

var dbSeq atomic.Int64

// NewDB opens a migrated in-memory database private to the calling test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func Dec(t testing.TB, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("decimal %q: %v", v, err)
	}
	return d
}

func CreateProfile(t testing.TB, gdb *gorm.DB, role models.Role, balance, profession string) *models.Profile {
	t.Helper()
	seq := dbSeq.Add(1)
	p := &models.Profile{
		FirstName:  fmt.Sprintf("First%d", seq),
		LastName:   fmt.Sprintf("Last%d", seq),
		Profession: profession,
		Balance:    Dec(t, balance),
		Type:       role,
	}
	if err := gdb.Create(p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func CreateContract(t testing.TB, gdb *gorm.DB, clientID, contractorID uint, status models.ContractStatus) *models.Contract {
	t.Helper()
	c := &models.Contract{
		Terms:        "bla bla bla",
		Status:       status,
		ClientID:     clientID,
		ContractorID: contractorID,
	}
	if err := gdb.Create(c).Error; err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return c
}

func CreateJob(t testing.TB, gdb *gorm.DB, contractID uint, price string) *models.Job {
	t.Helper()
	j := &models.Job{
		Description: "work",
		Price:       Dec(t, price),
		ContractID:  contractID,
	}
	if err := gdb.Create(j).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}
	return j
}

func CreatePaidJob(t testing.TB, gdb *gorm.DB, contractID uint, price string, paidAt time.Time) *models.Job {
	t.Helper()
	at := paidAt.UTC()
	j := &models.Job{
		Description: "work",
		Price:       Dec(t, price),
		Paid:        true,
		PaymentDate: &at,
		ContractID:  contractID,
	}
	if err := gdb.Create(j).Error; err != nil {
		t.Fatalf("create paid job: %v", err)
	}
	return j
}

func ReloadProfile(t testing.TB, gdb *gorm.DB, id uint) models.Profile {
	t.Helper()
	var p models.Profile
	if err := gdb.First(&p, id).Error; err != nil {
		t.Fatalf("reload profile %d: %v", id, err)
	}
	return p
}

func ReloadJob(t testing.TB, gdb *gorm.DB, id uint) models.Job {
	t.Helper()
	var j models.Job
	if err := gdb.First(&j, id).Error; err != nil {
		t.Fatalf("reload job %d: %v", id, err)
	}
	return j
}
