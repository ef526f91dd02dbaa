// Package main applies the postgres sink schema in migrations/ with golang-migrate.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/rotimport/internal/config"
	"github.com/cory-johannsen/rotimport/internal/observability"
)

func main() {
	configPath := flag.String("config", "configs/config.example.yaml", "path to configuration file")
	migrationsDir := flag.String("path", "migrations", "directory holding the migration files")
	direction := flag.String("direction", "up", "migration direction: up, down or version")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	v := config.NewViper()
	v.SetConfigFile(*configPath)
	if err := v.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "error: reading config: %v\n", err)
		os.Exit(1)
	}
	// The database section is validated by connecting, whatever sink is configured.
	v.Set("output.sink", config.SinkPostgres)
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, cfg.Database, *migrationsDir, *direction, *steps); err != nil {
		logger.Error("migration failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(logger *zap.Logger, db config.DatabaseConfig, dir, direction string, steps int) error {
	start := time.Now()

	m, err := migrate.New("file://"+dir, db.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
	default:
		return fmt.Errorf("invalid direction %q: must be up, down or version", direction)
	}
	changed := err == nil && direction != "version"
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", verr)
	}
	logger.Info("schema version",
		zap.String("direction", direction),
		zap.Bool("changed", changed),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
