package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kursus/services/progress-service/config"
	"kursus/services/progress-service/internal/domain"
	"kursus/services/progress-service/internal/platform/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Open connects to the store selected by DB_DRIVER. TranslateError is on so
// unique violations surface as gorm.ErrDuplicatedKey on every driver.
func Open(cfg config.Config, log *logger.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log),
	})
}

// gormWriter sends gorm's slow-query and error lines to zap.
type gormWriter struct {
	log *logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.SugaredLogger.Warnf(format, args...)
}

// newGormLogger skips gorm.ErrRecordNotFound: every lookup here treats a miss
// as a normal nil result.
func newGormLogger(log *logger.Logger) gormLogger.Interface {
	return gormLogger.New(gormWriter{log: log.With("component", "gorm")}, gormLogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func dialectorFor(cfg config.Config) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.DBDriver) {
	case "", "postgres":
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		}
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		}
		return mysql.Open(dsn), nil
	case "sqlite":
		dsn := cfg.DBDSN
		if dsn == "" {
			dsn = "progress.db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Migrate creates the progress, certificate and catalog tables with their
// uniqueness constraints.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.LessonCompletion{},
		&domain.Certificate{},
		&domain.Profile{},
		&CourseRecord{},
		&LessonRecord{},
	)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry")
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}
