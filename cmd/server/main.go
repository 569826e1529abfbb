package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/vexcel-trust/recordsdb/internal/config"
	"github.com/vexcel-trust/recordsdb/internal/database"
	"github.com/vexcel-trust/recordsdb/internal/handlers"
	"github.com/vexcel-trust/recordsdb/internal/middleware"
	"github.com/vexcel-trust/recordsdb/internal/policy"
	"github.com/vexcel-trust/recordsdb/internal/types"

	_ "github.com/vexcel-trust/recordsdb/docs/api" // Swagger docs
)

// @title RecordsDB API
// @version 1.0.0
// @description Versioned student record service with role-scoped access
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/vexcel-trust/recordsdb

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Optional demo data
	if os.Getenv("SEED_DATA") == "true" {
		if err := database.Seed(db); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("recordsdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Create handlers
	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	studentHandler := &handlers.StudentHandler{DB: db}
	recordHandler := &handlers.RecordHandler{DB: db}
	publicHandler := &handlers.PublicHandler{DB: db}
	dashboardHandler := &handlers.DashboardHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}

	// Health probe
	app.Get("/health", healthHandler.Health)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Anonymous routes
	api.Post("/auth/login", authHandler.Login)
	api.Get("/emergency/:token", publicHandler.GetEmergencyInfo)

	// Everything below carries a bearer credential
	api.Use(middleware.Authenticate(cfg))

	// User management (admin)
	api.Post("/auth/register", middleware.Require(policy.OpUserManage), authHandler.Register)
	api.Get("/auth/users", middleware.Require(policy.OpUserManage), authHandler.ListUsers)
	api.Patch("/auth/users/:id", middleware.Require(policy.OpUserManage), authHandler.UpdateUser)
	api.Delete("/auth/users/:id", middleware.Require(policy.OpUserManage), authHandler.DeleteUser)

	// Students. Single-student reads authorize in the handler where the
	// owner id is known; the list is staff and admin only.
	api.Get("/students", middleware.Require(policy.OpStudentList), studentHandler.ListStudents)
	api.Post("/students", middleware.Require(policy.OpStudentCreate), studentHandler.CreateStudent)
	api.Get("/students/:id", studentHandler.GetStudent)
	api.Patch("/students/:id", middleware.Require(policy.OpStudentUpdate), studentHandler.UpdateStudent)
	api.Delete("/students/:id", middleware.Require(policy.OpStudentDelete), studentHandler.DeleteStudent)
	api.Get("/students/ipp/:ipp", studentHandler.GetStudentByIPP)

	// Report metadata
	api.Get("/reports/student/:studentId", studentHandler.ListStudentReports)

	// Versioned clinical records
	api.Post("/records", recordHandler.SaveRecord)
	api.Get("/records/:entityKind/:studentId", recordHandler.GetRecordHistory)

	// Public link administration
	api.Get("/students/:id/public-link", publicHandler.GetPublicLink)
	api.Post("/students/:id/regenerate-public-link", publicHandler.RotatePublicToken)

	// Dashboard
	api.Get("/dashboard/stats", middleware.Require(policy.OpStatsRead), dashboardHandler.GetStats)
	api.Post("/dashboard/events", middleware.Require(policy.OpEventManage), dashboardHandler.CreateEvent)
	api.Patch("/dashboard/events/:id", middleware.Require(policy.OpEventManage), dashboardHandler.UpdateEvent)
	api.Delete("/dashboard/events/:id", middleware.Require(policy.OpEventManage), dashboardHandler.DeleteEvent)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
			"type":      types.KindNotFound,
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := types.KindInternal

	if appErr, ok := types.AsAppError(err); ok {
		code = appErr.StatusCode()
		message = appErr.Message
		errorType = appErr.Kind
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
