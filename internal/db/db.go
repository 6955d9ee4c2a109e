package db

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/punch/internal/config"
	"github.com/balkashynov/punch/internal/models"
)

// sqlitePragmas are applied to every sqlite connection
const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

// Open connects to the store selected by cfg
func Open(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLite.Path + sqlitePragmas)
	case "mysql":
		dialector = mysql.Open(cfg.MySQL.DSN())
	case "postgres":
		dialector = postgres.Open(cfg.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	logLevel := logger.Silent // Quiet by default
	if debug {
		logLevel = logger.Info
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Type == "sqlite" {
		// sqlite allows one writer; a single connection turns lock
		// contention into queueing instead of SQLITE_BUSY
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return gdb, nil
}

// Migrate creates/updates the database schema
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.ActivityLog{},
	)
}

// Bootstrap migrates the schema and seeds the default administrator
// when the users table is empty. It reports whether a user was seeded.
func (s *Store) Bootstrap(ctx context.Context, seed config.DefaultUserConfig) (bool, error) {
	if err := Migrate(s.db.WithContext(ctx)); err != nil {
		return false, fmt.Errorf("failed to run migrations: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return false, s.fail("count users", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := s.AddUser(ctx, NewUser{
		Username: seed.Username,
		Password: seed.Password,
		FullName: seed.FullName,
		Role:     models.RoleAdmin,
	}); err != nil {
		return false, err
	}

	s.logger.Warn("seeded default administrator; change its password before use",
		zap.String("username", seed.Username))
	return true, nil
}

// Close closes the database connection
func Close(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
