package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erp/stockscan/internal/infrastructure/config"
	"github.com/erp/stockscan/internal/infrastructure/persistence/models"
	"github.com/erp/stockscan/internal/infrastructure/telemetry"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is an open GORM connection for one of the supported drivers
type Database struct {
	DB *gorm.DB
}

// Option configures NewDatabase
type Option func(*options)

type options struct {
	logger  logger.Interface
	tracing *telemetry.DBTracingPlugin
}

// WithGormLogger sets the GORM logger. GORM is silent otherwise.
func WithGormLogger(l logger.Interface) Option {
	return func(o *options) { o.logger = l }
}

// WithTracing installs the otelgorm plugin after connecting
func WithTracing(plugin *telemetry.DBTracingPlugin) Option {
	return func(o *options) { o.tracing = plugin }
}

func dialectorFor(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// NewDatabase connects, sizes the pool and pings before returning
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	o := options{logger: logger.Default.LogMode(logger.Silent)}
	for _, opt := range opts {
		opt(&o)
	}
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver == config.DriverPostgres,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	db := &Database{DB: gdb}

	pool, err := db.pool()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	pool.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	pool.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}
	if o.tracing != nil {
		if err := o.tracing.RegisterOtelGorm(gdb); err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("database tracing: %w", err)
		}
	}
	return db, nil
}

// AutoMigrate creates or updates the scanning tables from the models.
// PostgreSQL deployments use the SQL migrations instead.
func (d *Database) AutoMigrate() error {
	return d.DB.AutoMigrate(models.All()...)
}

// Ping checks the connection. It satisfies the health check interface.
func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.PingContext(ctx)
}

// Stats reports connection pool statistics
func (d *Database) Stats() (sql.DBStats, error) {
	pool, err := d.pool()
	if err != nil {
		return sql.DBStats{}, err
	}
	return pool.Stats(), nil
}

// Close closes the pool
func (d *Database) Close() error {
	pool, err := d.pool()
	if err != nil {
		return err
	}
	return pool.Close()
}

func (d *Database) pool() (*sql.DB, error) {
	pool, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("database pool: %w", err)
	}
	return pool, nil
}
