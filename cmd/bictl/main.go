// Command bictl is the back-office tool for the brand-certification
// service: it recomputes KPI snapshots, generates reports, and applies
// state transitions directly against the database.
package main

import (
	"os"

	"brandcert/internal/platform/config"
	"brandcert/internal/platform/logger"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	os.Exit(Execute(cfg, log))
}
