// Package db opens the export ledger database.
package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/types"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver     string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(c.Driver)) {
	case "", DriverSQLite:
		path := strings.TrimSpace(c.SQLitePath)
		if path == "" {
			path = "situacio.db"
		}
		return sqlite.Open(path), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresName)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want sqlite|postgres)", c.Driver)
	}
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func Open(log *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := log.With("service", "LedgerDB")

	dial, err := cfg.dialector()
	if err != nil {
		return nil, err
	}
	serviceLog.Info("Connecting to ledger database...", "driver", dial.Name())
	gdb, err := gorm.Open(dial, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		serviceLog.Error("Failed to connect to ledger database", "error", err)
		return nil, fmt.Errorf("connect %s: %w", dial.Name(), err)
	}
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating ledger tables...")
	if err := s.db.AutoMigrate(&types.ExportRecord{}); err != nil {
		s.log.Error("Auto migration failed for ledger tables", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
