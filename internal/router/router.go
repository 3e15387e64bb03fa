package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/billing_api/internal/config"
	"github.com/Windi-Fikriyansyah/billing_api/internal/handlers"
	"github.com/Windi-Fikriyansyah/billing_api/internal/middleware"
	"github.com/Windi-Fikriyansyah/billing_api/internal/realtime"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/billing"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/contracts"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/ledger"
	"github.com/Windi-Fikriyansyah/billing_api/internal/services/reports"
)

// Deps carries everything main builds once and the routes share.
type Deps struct {
	Config    *config.Config
	Log       zerolog.Logger
	DB        *gorm.DB
	RDB       *redis.Client
	Hub       *realtime.Hub
	Ledger    *ledger.LedgerService
	Contracts *contracts.ContractService
	Billing   *billing.BillingService
	Reports   *reports.ReportService
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "billing-api",
		ErrorHandler:          handlers.ErrorHandler(d.Log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: d.Config.CORSAllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, profile_id",
	}))

	healthH := handlers.NewHealthHandler(d.DB, d.RDB)
	contractH := handlers.NewContractHandler(d.Contracts)
	jobH := handlers.NewJobHandler(d.Contracts, d.Billing)
	balanceH := handlers.NewBalanceHandler(d.Billing)
	profileH := handlers.NewProfileHandler(d.Ledger)
	adminH := handlers.NewAdminHandler(d.Reports, reports.NewExporter())
	adminAuthH := handlers.NewAdminAuthHandler(d.Config.Admin)

	app.Get("/healthz", healthH.Check)

	// The deposit target comes from the path, not the profile_id header.
	app.Post("/balances/deposit/:userId", balanceH.Deposit)

	app.Post("/admin/login", adminAuthH.Login)
	admin := app.Group("/admin", middleware.RequireAdmin(d.Config.Admin.JWTSecret))
	admin.Get("/best-profession", adminH.BestProfession)
	admin.Get("/best-clients", adminH.BestClients)
	admin.Get("/best-clients/export", adminH.ExportBestClients)

	if d.Hub != nil {
		realtimeH := handlers.NewRealtimeHandler(d.Hub, d.Ledger, d.Log)
		app.Get("/ws", realtimeH.Upgrade, websocket.New(realtimeH.Serve))
	}

	profile := middleware.ResolveProfile(d.Ledger)
	app.Get("/contracts", profile, contractH.List)
	app.Get("/contracts/:id", profile, contractH.Get)
	app.Get("/jobs/unpaid", profile, jobH.ListUnpaid)
	app.Post("/jobs/:job_id/pay", profile, jobH.Pay)
	app.Get("/profiles/me", profile, profileH.Me)
	app.Get("/profiles/me/ledger", profile, profileH.Entries)

	return app
}
