package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/billing_api/internal/config"
	"github.com/Windi-Fikriyansyah/billing_api/internal/models"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/billing"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/reports"
	"github.com/Windi-Fikriyansyah/billing_api/internal/testutil"
	"github.com/Windi-Fikriyansyah/billing_api/internal/utils"
)

func newTestApp(t *testing.T, admin config.AdminConfig) (*fiber.App, *gorm.DB) {
	t.Helper()
	gdb := testutil.NewDB(t)
	log := zerolog.Nop()

	ledgerSvc := ledger.NewLedgerService(gdb, log)
	contractSvc := contracts.NewContractService(gdb)
	app := New(Deps{
		Config:    &config.Config{CORSAllowOrigins: "*", Admin: admin},
		Log:       log,
		DB:        gdb,
		Ledger:    ledgerSvc,
		Contracts: contractSvc,
		Billing:   billing.NewBillingService(gdb, ledgerSvc, contractSvc, log),
		Reports:   reports.NewReportService(gdb),
	})
	return app, gdb
}

func do(t *testing.T, app *fiber.App, method, target string, profileID uint, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if profileID != 0 {
		req.Header.Set("profile_id", strconv.FormatUint(uint64(profileID), 10))
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func decodeMap(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return m
}

func assertError(t *testing.T, status int, raw []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status = %d, want %d (body %s)", status, wantStatus, raw)
	}
	body := decodeMap(t, raw)
	if body["success"] != false || body["code"] != wantCode || body["message"] == "" {
		t.Fatalf("error body = %v, want code %s", body, wantCode)
	}
}

func TestProfileHeaderRequired(t *testing.T) {
	app, _ := newTestApp(t, config.AdminConfig{})

	status, raw := do(t, app, http.MethodGet, "/contracts", 0, "")
	assertError(t, status, raw, http.StatusUnauthorized, "unauthorized")

	status, raw = do(t, app, http.MethodGet, "/contracts", 999, "")
	assertError(t, status, raw, http.StatusUnauthorized, "unauthorized")

	req := httptest.NewRequest(http.MethodGet, "/jobs/unpaid", nil)
	req.Header.Set("profile_id", "abc")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("non-numeric header: status = %d", resp.StatusCode)
	}
}

func TestContractsRoutes(t *testing.T) {
	app, gdb := newTestApp(t, config.AdminConfig{})
	client := testutil.CreateProfile(t, gdb, models.RoleClient, "100", "Wizard")
	other := testutil.CreateProfile(t, gdb, models.RoleClient, "100", "Wizard")
	contractor := testutil.CreateProfile(t, gdb, models.RoleContractor, "0", "Programmer")
	active := testutil.CreateContract(t, gdb, client.ID, contractor.ID, models.ContractStatusInProgress)
	testutil.CreateContract(t, gdb, client.ID, contractor.ID, models.ContractStatusTerminated)
	foreign := testutil.CreateContract(t, gdb, other.ID, contractor.ID, models.ContractStatusNew)

	status, raw := do(t, app, http.MethodGet, "/contracts", client.ID, "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, raw)
	}
	var list []models.Contract
	if err := json.Unmarshal(raw, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].ID != active.ID {
		t.Fatalf("contracts = %+v", list)
	}

	status, raw = do(t, app, http.MethodGet, "/contracts/"+strconv.Itoa(int(active.ID)), contractor.ID, "")
	if status != http.StatusOK {
		t.Fatalf("contractor view: status = %d, body %s", status, raw)
	}

	status, raw = do(t, app, http.MethodGet, "/contracts/"+strconv.Itoa(int(foreign.ID)), client.ID, "")
	assertError(t, status, raw, http.StatusNotFound, "not_found")

	status, raw = do(t, app, http.MethodGet, "/contracts/zero", client.ID, "")
	assertError(t, status, raw, http.StatusBadRequest, "validation_error")
}

func TestPayJobRoute(t *testing.T) {
	app, gdb := newTestApp(t, config.AdminConfig{})
	client := testutil.CreateProfile(t, gdb, models.RoleClient, "1000", "Wizard")
	poor := testutil.CreateProfile(t, gdb, models.RoleClient, "100", "Wizard")
	contractor := testutil.CreateProfile(t, gdb, models.RoleContractor, "0", "Programmer")
	contract := testutil.CreateContract(t, gdb, client.ID, contractor.ID, models.ContractStatusInProgress)
	poorContract := testutil.CreateContract(t, gdb, poor.ID, contractor.ID, models.ContractStatusInProgress)
	job := testutil.CreateJob(t, gdb, contract.ID, "150")
	poorJob := testutil.CreateJob(t, gdb, poorContract.ID, "150")

	status, raw := do(t, app, http.MethodGet, "/jobs/unpaid", client.ID, "")
	if status != http.StatusOK {
		t.Fatalf("unpaid: status = %d", status)
	}
	var unpaid []models.Job
	if err := json.Unmarshal(raw, &unpaid); err != nil || len(unpaid) != 1 || unpaid[0].ID != job.ID {
		t.Fatalf("unpaid = %s, %v", raw, err)
	}

	payPath := "/jobs/" + strconv.Itoa(int(job.ID)) + "/pay"
	status, raw = do(t, app, http.MethodPost, payPath, client.ID, "")
	if status != http.StatusOK {
		t.Fatalf("pay: status = %d, body %s", status, raw)
	}
	body := decodeMap(t, raw)
	if body["success"] != true || body["amount"] != float64(150) || body["message"] != "Payment of 150 processed successfully" {
		t.Fatalf("pay body = %v", body)
	}
	if got := testutil.ReloadProfile(t, gdb, client.ID); !got.Balance.Equal(testutil.Dec(t, "850")) {
		t.Fatalf("client balance = %s", got.Balance)
	}

	status, raw = do(t, app, http.MethodPost, payPath, client.ID, "")
	assertError(t, status, raw, http.StatusBadRequest, "already_paid")

	status, raw = do(t, app, http.MethodPost, payPath, contractor.ID, "")
	assertError(t, status, raw, http.StatusForbidden, "forbidden")

	status, raw = do(t, app, http.MethodPost, "/jobs/"+strconv.Itoa(int(poorJob.ID))+"/pay", poor.ID, "")
	assertError(t, status, raw, http.StatusBadRequest, "insufficient_balance")
	if got := testutil.ReloadProfile(t, gdb, poor.ID); !got.Balance.Equal(testutil.Dec(t, "100")) {
		t.Fatalf("poor balance = %s", got.Balance)
	}

	status, raw = do(t, app, http.MethodPost, "/jobs/"+strconv.Itoa(int(poorJob.ID))+"/pay", client.ID, "")
	assertError(t, status, raw, http.StatusNotFound, "not_found")
}

func TestDepositRoute(t *testing.T) {
	app, gdb := newTestApp(t, config.AdminConfig{})
	client := testutil.CreateProfile(t, gdb, models.RoleClient, "0", "Wizard")
	debtFree := testutil.CreateProfile(t, gdb, models.RoleClient, "0", "Wizard")
	contractor := testutil.CreateProfile(t, gdb, models.RoleContractor, "0", "Programmer")
	contract := testutil.CreateContract(t, gdb, client.ID, contractor.ID, models.ContractStatusInProgress)
	testutil.CreateJob(t, gdb, contract.ID, "5000")

	path := func(id uint) string { return "/balances/deposit/" + strconv.Itoa(int(id)) }

	status, raw := do(t, app, http.MethodPost, path(client.ID), 0, `{"amount": 500}`)
	if status != http.StatusOK {
		t.Fatalf("deposit: status = %d, body %s", status, raw)
	}
	if got := testutil.ReloadProfile(t, gdb, client.ID); !got.Balance.Equal(testutil.Dec(t, "500")) {
		t.Fatalf("balance = %s", got.Balance)
	}

	status, raw = do(t, app, http.MethodPost, path(client.ID), 0, `{"amount": "1250.01"}`)
	assertError(t, status, raw, http.StatusBadRequest, "deposit_limit_exceeded")

	status, raw = do(t, app, http.MethodPost, path(debtFree.ID), 0, `{"amount": 1}`)
	assertError(t, status, raw, http.StatusBadRequest, "deposit_limit_exceeded")

	status, raw = do(t, app, http.MethodPost, path(client.ID), 0, `{"amount": -5}`)
	assertError(t, status, raw, http.StatusBadRequest, "validation_error")

	status, raw = do(t, app, http.MethodPost, path(client.ID), 0, `{"amount": 0.001}`)
	assertError(t, status, raw, http.StatusBadRequest, "validation_error")
	if got := testutil.ReloadProfile(t, gdb, client.ID); !got.Balance.Equal(testutil.Dec(t, "500")) {
		t.Fatalf("balance after sub-cent deposit = %s", got.Balance)
	}

	status, raw = do(t, app, http.MethodPost, path(contractor.ID), 0, `{"amount": 1}`)
	assertError(t, status, raw, http.StatusForbidden, "forbidden")

	status, raw = do(t, app, http.MethodPost, path(4242), 0, `{"amount": 1}`)
	assertError(t, status, raw, http.StatusNotFound, "not_found")

	status, raw = do(t, app, http.MethodPost, path(client.ID), 0, `{"amount":`)
	assertError(t, status, raw, http.StatusBadRequest, "validation_error")
}

func TestProfileRoutes(t *testing.T) {
	app, gdb := newTestApp(t, config.AdminConfig{})
	client := testutil.CreateProfile(t, gdb, models.RoleClient, "1000", "Wizard")
	contractor := testutil.CreateProfile(t, gdb, models.RoleContractor, "0", "Programmer")
	contract := testutil.CreateContract(t, gdb, client.ID, contractor.ID, models.ContractStatusInProgress)
	job := testutil.CreateJob(t, gdb, contract.ID, "200")

	if status, raw := do(t, app, http.MethodPost, "/jobs/"+strconv.Itoa(int(job.ID))+"/pay", client.ID, ""); status != http.StatusOK {
		t.Fatalf("pay: %d %s", status, raw)
	}

	status, raw := do(t, app, http.MethodGet, "/profiles/me", contractor.ID, "")
	if status != http.StatusOK {
		t.Fatalf("me: status = %d", status)
	}
	me := decodeMap(t, raw)
	if me["balance"] != float64(200) || me["type"] != "contractor" {
		t.Fatalf("me = %v", me)
	}

	status, raw = do(t, app, http.MethodGet, "/profiles/me/ledger", contractor.ID, "")
	if status != http.StatusOK {
		t.Fatalf("ledger: status = %d", status)
	}
	var entries []models.LedgerEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("decode ledger: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind != models.LedgerPaymentCredit {
		t.Fatalf("entries = %+v", entries)
	}

	status, raw = do(t, app, http.MethodGet, "/profiles/me/ledger?limit=0", contractor.ID, "")
	assertError(t, status, raw, http.StatusBadRequest, "validation_error")
}

func seedReports(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	client := testutil.CreateProfile(t, gdb, models.RoleClient, "0", "Wizard")
	analyst := testutil.CreateProfile(t, gdb, models.RoleContractor, "0", "Analytics")
	programmer := testutil.CreateProfile(t, gdb, models.RoleContractor, "0", "Programmer")
	c1 := testutil.CreateContract(t, gdb, client.ID, analyst.ID, models.ContractStatusInProgress)
	c2 := testutil.CreateContract(t, gdb, client.ID, programmer.ID, models.ContractStatusInProgress)
	testutil.CreatePaidJob(t, gdb, c1.ID, "1000", time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC))
	testutil.CreatePaidJob(t, gdb, c2.ID, "800", time.Date(2023, 5, 2, 9, 0, 0, 0, time.UTC))
}

func TestAdminReportsOpenWhenAuthDisabled(t *testing.T) {
	app, gdb := newTestApp(t, config.AdminConfig{})
	seedReports(t, gdb)

	status, raw := do(t, app, http.MethodGet, "/admin/best-profession?start=2023-01-01&end=2023-12-31", 0, "")
	if status != http.StatusOK {
		t.Fatalf("best-profession: %d %s", status, raw)
	}
	body := decodeMap(t, raw)
	if body["profession"] != "Analytics" || body["totalEarnings"] != float64(1000) {
		t.Fatalf("best-profession = %v", body)
	}

	status, raw = do(t, app, http.MethodGet, "/admin/best-clients?start=2023-01-01&end=2023-12-31", 0, "")
	if status != http.StatusOK {
		t.Fatalf("best-clients: %d %s", status, raw)
	}
	var clients []map[string]any
	if err := json.Unmarshal(raw, &clients); err != nil || len(clients) != 1 || clients[0]["paid"] != float64(1800) {
		t.Fatalf("best-clients = %s, %v", raw, err)
	}

	status, raw = do(t, app, http.MethodGet, "/admin/best-clients?start=2023-12-31&end=2023-01-01", 0, "")
	assertError(t, status, raw, http.StatusBadRequest, "validation_error")

	status, raw = do(t, app, http.MethodGet, "/admin/best-clients?start=2023-01-01&end=2023-12-31&limit=0", 0, "")
	assertError(t, status, raw, http.StatusBadRequest, "validation_error")

	req := httptest.NewRequest(http.MethodGet, "/admin/best-clients/export?start=2023-01-01&end=2023-12-31", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(resp.Header.Get("Content-Type"), "spreadsheetml") {
		t.Fatalf("export: status %d, content type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "best-clients-20230101-20231231.xlsx") {
		t.Fatalf("content disposition = %q", resp.Header.Get("Content-Disposition"))
	}
}

func TestAdminLoginAndBearer(t *testing.T) {
	hash, err := utils.HashPassword("letmein")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	app, gdb := newTestApp(t, config.AdminConfig{JWTSecret: "s3cret", PasswordHash: hash, TokenTTLMin: 5})
	seedReports(t, gdb)
	target := "/admin/best-profession?start=2023-01-01&end=2023-12-31"

	status, raw := do(t, app, http.MethodGet, target, 0, "")
	assertError(t, status, raw, http.StatusUnauthorized, "unauthorized")

	status, raw = do(t, app, http.MethodPost, "/admin/login", 0, `{"password":"nope"}`)
	assertError(t, status, raw, http.StatusUnauthorized, "unauthorized")

	status, raw = do(t, app, http.MethodPost, "/admin/login", 0, `{"password":"letmein"}`)
	if status != http.StatusOK {
		t.Fatalf("login: %d %s", status, raw)
	}
	token, _ := decodeMap(t, raw)["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token: %s", raw)
	}

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("with token: status = %d", resp.StatusCode)
	}

	other, err := utils.SignJWT("s3cret", "someone", "client", 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+other)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin token: status = %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t, config.AdminConfig{})
	status, raw := do(t, app, http.MethodGet, "/healthz", 0, "")
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, raw)
	}
	body := decodeMap(t, raw)
	if body["db"] != "ok" || body["redis"] != "disabled" {
		t.Fatalf("health = %v", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApp(t, config.AdminConfig{})
	status, raw := do(t, app, http.MethodGet, "/nope", 0, "")
	assertError(t, status, raw, http.StatusNotFound, "not_found")
}
