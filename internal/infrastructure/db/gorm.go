package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ict-ticketing/internal/config"
	"ict-ticketing/internal/domain/device"
	"ict-ticketing/internal/domain/request"
	"ict-ticketing/internal/domain/user"
)

// Dialector picks the gorm driver for the configured engine.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverMySQL:
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func OpenGorm(driver, dsn, logLevel string, log *zap.Logger) (*gorm.DB, error) {
	d, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := open(d, logLevel)
	if err != nil {
		return nil, err
	}
	if log != nil {
		log.Info("gorm: connected", zap.String("driver", driver))
	}
	return db, nil
}

// OpenGormWithDialector is the injectable seam used by tests.
func OpenGormWithDialector(d gorm.Dialector) (*gorm.DB, error) {
	return open(d, "silent")
}

func open(d gorm.Dialector, logLevel string) (*gorm.DB, error) {
	// raw driver errors are kept so the repositories can tell which unique index fired
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(logLevel)),
	}
	db, err := gorm.Open(d, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if d.Name() == "sqlite" {
		// one connection: sqlite serialises writers and :memory: stays a single database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(30)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func gormLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
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

// Migrate creates or updates the tables. Users go first for the requests FK.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.User{}, &device.Device{}, &request.Request{})
}
