package db

import (
	"fmt"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Options select the database behind the local backend. A Turso URL takes
// precedence over the SQLite file.
type Options struct {
	Path        string
	TursoURL    string
	TursoToken  string
	Environment string
}

// Dialector returns the GORM dialector for opts
func Dialector(opts Options) gorm.Dialector {
	if opts.TursoURL != "" {
		return sqlite.New(sqlite.Config{DriverName: "libsql", DSN: TursoDSN(opts.TursoURL, opts.TursoToken)})
	}
	// Enable WAL mode for better concurrency support
	return sqlite.Open(opts.Path + "?_journal_mode=WAL")
}

// TursoDSN appends the auth token to a libsql URL
func TursoDSN(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Initialize sets up the database connection
func Initialize(opts Options) error {
	logLevel := logger.Info
	if opts.Environment == "production" {
		logLevel = logger.Warn
	}

	var err error
	DB, err = gorm.Open(Dialector(opts), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.TursoURL != "" {
		zap.L().Info("database connection established", zap.String("driver", "libsql"))
	} else {
		zap.L().Info("database connection established", zap.String("driver", "sqlite"), zap.String("path", opts.Path))
	}
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	zap.L().Info("database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
