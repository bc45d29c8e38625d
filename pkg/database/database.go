// Package database opens gorm connections for the cache.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds configuration for database connection.
type Config struct {
	// Driver is "postgres" (default) or "sqlite".
	Driver string

	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Path is the SQLite database file, or ":memory:".
	Path string

	MaxIdleConns    int           // default: 10
	MaxOpenConns    int           // default: 25, always 1 for SQLite
	ConnMaxLifetime time.Duration // default: 5 minutes
	ConnMaxIdleTime time.Duration // default: 10 minutes
}

// Connect establishes a database connection using the provided configuration.
func Connect(cfg Config, log hclog.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "", "postgres":
		return connectPostgres(cfg, log)
	case "sqlite":
		return ConnectSQLite(cfg.Path, log)
	}
	return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", cfg.Driver)
}

func gormConfig(log hclog.Logger) *gorm.Config {
	if log != nil {
		return &gorm.Config{Logger: NewGormLogger(log.Named("gorm")).LogMode(logger.Warn)}
	}
	return &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
}

func connectPostgres(cfg Config, log hclog.Logger) (*gorm.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		sslMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 10
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 25
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	connMaxIdleTime := cfg.ConnMaxIdleTime
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	if log != nil {
		log.Info("connected to database with connection pooling",
			"host", cfg.Host,
			"database", cfg.DBName,
			"max_idle_conns", maxIdleConns,
			"max_open_conns", maxOpenConns,
			"conn_max_lifetime", connMaxLifetime,
			"conn_max_idle_time", connMaxIdleTime,
		)
	}

	return db, nil
}

// ConnectSQLite opens a SQLite database with foreign keys enabled. SQLite
// allows a single writer, so the pool is limited to one connection, which
// also keeps ":memory:" databases from being split across connections.
func ConnectSQLite(path string, log hclog.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if log != nil {
		log.Info("connected to sqlite database", "path", path)
	}
	return db, nil
}

// PoolStats holds database connection pool statistics.
type PoolStats struct {
	MaxOpenConnections int           // Maximum number of open connections to the database
	OpenConnections    int           // The number of established connections both in use and idle
	InUse              int           // The number of connections currently in use
	Idle               int           // The number of idle connections
	WaitCount          int64         // The total number of connections waited for
	WaitDuration       time.Duration // The total time blocked waiting for a new connection
	MaxIdleClosed      int64         // The total number of connections closed due to SetMaxIdleConns
	MaxIdleTimeClosed  int64         // The total number of connections closed due to SetConnMaxIdleTime
	MaxLifetimeClosed  int64         // The total number of connections closed due to SetConnMaxLifetime
}

// GetPoolStats returns connection pool statistics from a GORM DB instance.
// Useful for monitoring and debugging connection pool performance.
func GetPoolStats(db *gorm.DB) (*PoolStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	stats := sqlDB.Stats()
	return &PoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}, nil
}

// gormHclogAdapter adapts hclog.Logger to gorm.logger.Interface.
type gormHclogAdapter struct {
	logger hclog.Logger
	level  logger.LogLevel
}

// NewGormLogger creates a new GORM logger that uses hclog.
func NewGormLogger(log hclog.Logger) logger.Interface {
	return &gormHclogAdapter{
		logger: log,
		level:  logger.Info,
	}
}

// LogMode sets the log level for GORM queries.
func (g *gormHclogAdapter) LogMode(level logger.LogLevel) logger.Interface {
	return &gormHclogAdapter{
		logger: g.logger,
		level:  level,
	}
}

// Info logs info messages.
func (g *gormHclogAdapter) Info(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info && g.logger != nil {
		g.logger.Info(msg, data...)
	}
}

// Warn logs warning messages.
func (g *gormHclogAdapter) Warn(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn && g.logger != nil {
		g.logger.Warn(msg, data...)
	}
}

// Error logs error messages.
func (g *gormHclogAdapter) Error(ctx context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error && g.logger != nil {
		g.logger.Error(msg, data...)
	}
}

// Trace logs SQL queries and execution time.
func (g *gormHclogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	// Missing rows are an expected outcome of lookups.
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error {
		g.logger.Error("database query failed",
			"error", err,
			"elapsed", elapsed,
			"rows", rows,
			"sql", sql,
		)
	} else if elapsed > 200*time.Millisecond && g.level >= logger.Warn {
		g.logger.Warn("slow database query",
			"elapsed", elapsed,
			"rows", rows,
			"sql", sql,
		)
	} else if g.level >= logger.Info {
		g.logger.Debug("database query",
			"elapsed", elapsed,
			"rows", rows,
			"sql", sql,
		)
	}
}
