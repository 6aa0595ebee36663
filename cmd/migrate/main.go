// Command migrate manages the PostgreSQL schema of the scanning service.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/erp/stockscan/internal/infrastructure/config"
	"github.com/erp/stockscan/internal/infrastructure/logger"
	"github.com/erp/stockscan/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// offline commands never open a database connection
var offline = map[string]func(dir string, args []string, log *zap.Logger) error{
	"create": createCmd,
	"list":   listCmd,
}

var online = map[string]func(m *migration.Migrator, args []string, log *zap.Logger) error{
	"up":      func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() },
	"down":    func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() },
	"step":    stepCmd,
	"goto":    gotoCmd,
	"version": versionCmd,
	"status":  statusCmd,
	"force":   forceCmd,
	"drop":    dropCmd,
}

func main() {
	var (
		migrationsPath string
		databaseURL    string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL URL; overrides the [database] configuration")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(args[0], args[1:], resolvePath(migrationsPath), databaseURL, log); err != nil {
		log.Error("Migration command failed", zap.String("command", args[0]), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(command string, args []string, dir, databaseURL string, log *zap.Logger) error {
	log.Debug("Migration CLI started", zap.String("command", command), zap.String("migrations_path", dir))

	if cmd, ok := offline[command]; ok {
		return cmd(dir, args, log)
	}
	cmd, ok := online[command]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}

	m, closeDB, err := openMigrator(dir, databaseURL, log)
	if err != nil {
		return err
	}
	defer closeDB()
	defer func() { _ = m.Close() }()

	return cmd(m, args, log)
}

func openMigrator(dir, databaseURL string, log *zap.Logger) (*migration.Migrator, func(), error) {
	if databaseURL != "" {
		m, err := migration.NewFromURL(databaseURL, dir, log)
		return m, func() {}, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	m, err := migration.New(db, dir, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return m, func() { _ = db.Close() }, nil
}

// resolvePath finds the migrations directory next to the working directory
// or two levels above the executable (bin/<os>/migrate)
func resolvePath(path string) string {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func createCmd(dir string, args []string, log *zap.Logger) error {
	if len(args) < 1 {
		return errors.New("migration name required: migrate create <name> [description]")
	}
	f, err := migration.CreateMigration(dir, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.Uint("version", f.Version),
		zap.String("up_file", f.UpPath),
		zap.String("down_file", f.DownPath),
	)
	return nil
}

func listCmd(dir string, _ []string, log *zap.Logger) error {
	files, err := migration.ListMigrations(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Info("No migrations found", zap.String("path", dir))
		return nil
	}
	for _, f := range files {
		fmt.Printf("  %06d  %s\n", f.Version, f.Name)
	}
	return nil
}

func stepCmd(m *migration.Migrator, args []string, _ *zap.Logger) error {
	if len(args) < 1 {
		return errors.New("step count required: migrate step <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n == 0 {
		return fmt.Errorf("invalid step count %q", args[0])
	}
	return m.Steps(n)
}

func gotoCmd(m *migration.Migrator, args []string, _ *zap.Logger) error {
	if len(args) < 1 {
		return errors.New("version required: migrate goto <version>")
	}
	version, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	return m.GoTo(uint(version))
}

func versionCmd(m *migration.Migrator, _ []string, log *zap.Logger) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func statusCmd(m *migration.Migrator, _ []string, log *zap.Logger) error {
	st, err := m.Status()
	if err != nil {
		return err
	}
	log.Info("Migration status",
		zap.Uint("version", st.Version),
		zap.Bool("dirty", st.Dirty),
		zap.Strings("pending", st.Pending),
	)
	return nil
}

func forceCmd(m *migration.Migrator, args []string, log *zap.Logger) error {
	if len(args) < 1 {
		return errors.New("version required: migrate force <version>")
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	log.Warn("Forcing migration version", zap.Int("version", version))
	return m.Force(version)
}

func dropCmd(m *migration.Migrator, args []string, log *zap.Logger) error {
	if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
		return errors.New("drop cancelled: use 'migrate drop -confirm' to confirm")
	}
	log.Warn("Dropping all database objects")
	return m.Drop()
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `stockscan database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  status                Show version, dirty flag and pending migrations
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -database-url string  PostgreSQL URL (default: built from config.toml / STOCKSCAN_DATABASE_*)
  -log-level string     Log level: debug, info, warn, error (default: info)

Examples:
  migrate up
  migrate step -1
  migrate create add_lot_expiry "Add expiry date to lots"`)
}
