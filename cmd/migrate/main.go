// Command migrate applies the postgres schema migrations.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"expensetracker/internal/database"
	"expensetracker/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const usage = "usage: migrate <up|down [N]|version|force V>"

// migrator is the part of *migrate.Migrate the commands use.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
}

type command struct {
	name string
	n    int
}

func main() {
	logger.Init(os.Getenv("ENV"), os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(args []string) error {
	cmd, err := parseCommand(args)
	if err != nil {
		return err
	}

	cfg, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}
	if cfg.Driver != database.DriverPostgres {
		return fmt.Errorf("SQL migrations target postgres; %s schemas are migrated at startup", cfg.Driver)
	}

	m, err := migrate.New(cfg.MigrationsURL, cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Get().Warnf("migrate source close error: %v", srcErr)
		}
		if dbErr != nil {
			logger.Get().Warnf("migrate database close error: %v", dbErr)
		}
	}()

	return execute(m, cmd, logger.Get())
}

func parseCommand(args []string) (command, error) {
	if len(args) < 1 {
		return command{}, errors.New(usage)
	}

	cmd := command{name: args[0]}
	switch cmd.name {
	case "up", "version":
		return cmd, nil
	case "down":
		cmd.n = 1
		if len(args) > 1 {
			steps, err := strconv.Atoi(args[1])
			if err != nil || steps < 1 {
				return command{}, fmt.Errorf("invalid step count %q", args[1])
			}
			cmd.n = steps
		}
		return cmd, nil
	case "force":
		if len(args) < 2 {
			return command{}, errors.New("force needs a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil || version < -1 {
			return command{}, fmt.Errorf("invalid version %q", args[1])
		}
		cmd.n = version
		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command: %s (%s)", cmd.name, usage)
	}
}

func execute(m migrator, cmd command, log *zap.SugaredLogger) error {
	switch cmd.name {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration up failed: %w", err)
		}
		log.Info("Migrations applied successfully")

	case "down":
		if err := m.Steps(-cmd.n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Infof("Rolled back %d migration(s)", cmd.n)

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Info("No migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		log.Infof("Version: %d, Dirty: %v", version, dirty)

	case "force":
		if err := m.Force(cmd.n); err != nil {
			return fmt.Errorf("force version failed: %w", err)
		}
		log.Infof("Forced version %d", cmd.n)
	}
	return nil
}
