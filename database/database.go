package database

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialect names the SQL flavour behind a DATABASE_URL.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

var (
	ErrUnsupportedURL   = errors.New("unsupported database url")
	ErrInvalidBatchSize = errors.New("invalid batch size")
)

// Target is a parsed DATABASE_URL.
type Target struct {
	Dialect  Dialect
	DSN      string
	InMemory bool
}

// ParseURL understands sqlite:<path>, sqlite://<path>, sqlite::memory: and
// postgres:// (or postgresql://) URLs.
func ParseURL(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return Target{Dialect: Postgres, DSN: raw}, nil
	case strings.HasPrefix(raw, "sqlite:"):
		path := strings.TrimPrefix(raw, "sqlite:")
		path = strings.TrimPrefix(path, "//")
		// options such as ?mode=rwc are dropped; the driver only takes pragmas
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if path == "" || path == ":memory:" {
			return Target{Dialect: SQLite, DSN: ":memory:?" + sqlitePragmas(false), InMemory: true}, nil
		}
		return Target{Dialect: SQLite, DSN: path + "?" + sqlitePragmas(true)}, nil
	default:
		return Target{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, raw)
	}
}

func sqlitePragmas(file bool) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	if file {
		q.Add("_pragma", "busy_timeout(5000)")
	}
	return q.Encode()
}

// Open connects to the database behind rawURL. Errors are translated by gorm
// so callers can match gorm.ErrDuplicatedKey and friends.
func Open(rawURL string, gormLogger logger.Interface) (*gorm.DB, Dialect, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return nil, "", err
	}
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	var dialector gorm.Dialector
	switch target.Dialect {
	case Postgres:
		dialector = postgres.Open(target.DSN)
	default:
		dialector = sqlite.Open(target.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, "", fmt.Errorf("open %s database: %w", target.Dialect, err)
	}

	if target.InMemory {
		// every connection to :memory: is a separate database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, "", err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, target.Dialect, nil
}

// LogLevel maps a DB_LOG_LEVEL value to a gorm logger level.
func LogLevel(name string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewLogger routes gorm's logging through w (a *logrus.Logger satisfies
// logger.Writer) at the given DB_LOG_LEVEL.
func NewLogger(w logger.Writer, level string) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  LogLevel(level),
		IgnoreRecordNotFoundError: true,
	})
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InBatches runs fn over items in chunks of batchSize inside one transaction.
// Any error rolls back every chunk.
func InBatches[T any](db *gorm.DB, items []T, batchSize int, fn func(tx *gorm.DB, chunk []T) error) error {
	if batchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if len(items) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < len(items); i += batchSize {
			end := i + batchSize
			if end > len(items) {
				end = len(items)
			}
			if err := fn(tx, items[i:end]); err != nil {
				return fmt.Errorf("batch %d-%d failed: %w", i, end, err)
			}
		}
		return nil
	})
}
