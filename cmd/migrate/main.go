package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/config"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/database"
	"github.com/nodeorb/scm-risk-engine/internal/infrastructure/telemetry"
)

// migrator is the subset of database.Migrator the CLI drives
type migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
}

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath, "Path to configuration file")
		action     = flag.String("action", "up", "Migration action: up, down, version")
		steps      = flag.Int("steps", 0, "Number of migrations to roll back (0 = all)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	m, err := database.NewMigrator(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	if err := execute(m, *action, *steps, os.Stdout); err != nil {
		logger.Error("migration failed", zap.String("action", *action), zap.Error(err))
		os.Exit(1)
	}
}

func execute(m migrator, action string, steps int, out io.Writer) error {
	switch action {
	case "up":
		return m.Up()
	case "down":
		return m.Down(steps)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "version=%d dirty=%t\n", version, dirty)
		return err
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}
