// Command migrate applies the SQL migrations under migrations/.
//
//	migrate up            apply everything pending
//	migrate down [n]      roll back n steps, or everything without n
//	migrate goto <v>      migrate to version v
//	migrate version       print the current version
//	migrate force <v>     mark v as applied after a failed run
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/logger"
)

// migrateLogger forwards golang-migrate's own messages to zerolog.
type migrateLogger struct {
	log     zerolog.Logger
	verbose bool
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}

func (l migrateLogger) Verbose() bool { return l.verbose }

func main() {
	var migrationDir string
	flag.StringVar(&migrationDir, "path", "migrations", "Path to migration files")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat).With().Str("component", "migrate").Logger()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://"+migrationDir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", migrationDir).Msg("Migration failed to initialize")
	}
	defer m.Close()
	m.Log = migrateLogger{log: log, verbose: cfg.LogLevel == "debug"}

	if err := run(m, args); err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("Migration failed")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Str("command", args[0]).Msg("No migrations applied")
	case err != nil:
		log.Fatal().Err(err).Msg("Failed to read version")
	default:
		log.Info().Str("command", args[0]).Uint("version", version).Bool("dirty", dirty).Msg("Migration done")
	}
}

func run(m *migrate.Migrate, args []string) error {
	var err error
	switch args[0] {
	case "up":
		err = m.Up()
	case "down":
		if len(args) > 1 {
			n, perr := strconv.Atoi(args[1])
			if perr != nil || n <= 0 {
				return fmt.Errorf("invalid step count %q", args[1])
			}
			err = m.Steps(-n)
		} else {
			err = m.Down()
		}
	case "goto":
		v, perr := versionArg(args)
		if perr != nil {
			return perr
		}
		err = m.Migrate(uint(v))
	case "version":
		return nil
	case "force":
		v, perr := versionArg(args)
		if perr != nil {
			return perr
		}
		return m.Force(v)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func versionArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a version argument", args[0])
	}
	v, err := strconv.Atoi(args[1])
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version %q", args[1])
	}
	return v, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <command>")
	fmt.Fprintln(os.Stderr, "Commands: up, down [n], goto <version>, version, force <version>")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}
