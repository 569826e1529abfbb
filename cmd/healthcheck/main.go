package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/vexcel-trust/recordsdb/internal/config"
	"github.com/vexcel-trust/recordsdb/internal/database"
	"github.com/vexcel-trust/recordsdb/internal/services"
	"github.com/vexcel-trust/recordsdb/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Probe the listener first so an unreachable database fails fast
	// instead of waiting out the driver's dial timeout.
	if cfg.DBType != "sqlite" {
		if err := utils.PingHost(cfg.DBHost, cfg.DBPort, 3*time.Second); err != nil {
			log.Fatalf("Database listener unreachable: %v", err)
		}
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Perform health check
	result := services.HealthCheck(cfg, db)

	// Output result as JSON
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}
