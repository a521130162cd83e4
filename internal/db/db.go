package db

import (
	"errors"
	"fmt"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/staff-portal/internal/config"
	"github.com/diewo77/staff-portal/internal/models"
)

// ConnectAndMigrate opens the database and brings the schema up to date.
// A postgres:// DSN selects the postgres driver; anything else is treated as
// a sqlite path. With MIGRATIONS=1 (postgres only) the SQL migrations in
// ./migrations run via golang-migrate; otherwise AutoMigrate keeps dev
// setups working.
func ConnectAndMigrate(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty database DSN")
	}

	logLevel := logger.Silent
	if config.ParseBool("DB_DEBUG", false) {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var (
		db  *gorm.DB
		err error
	)
	isPostgres := strings.HasPrefix(strings.ToLower(dsn), "postgres://") ||
		strings.HasPrefix(strings.ToLower(dsn), "postgresql://")
	if isPostgres {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if isPostgres && config.ParseBool("MIGRATIONS", false) {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		modelsToMigrate := []interface{}{
			&models.User{}, &models.Category{}, &models.Task{},
			&models.Comment{}, &models.CalendarEvent{}, &models.AuditLog{},
		}
		for _, m := range modelsToMigrate {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	return db, nil
}

// EnsureBootstrapAdmin promotes an already-registered bootstrap admin.
// Signup handles the usual case; this covers a deployment where the email is
// configured after the account exists.
func EnsureBootstrapAdmin(db *gorm.DB, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	var u models.User
	err := db.Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find bootstrap admin: %w", err)
	}
	if u.Role == models.RoleSuperAdmin && u.Status == models.StatusApproved {
		return nil
	}
	return db.Model(&u).Updates(map[string]any{
		"role":   models.RoleSuperAdmin,
		"status": models.StatusApproved,
	}).Error
}

// runSQLMigrations executes migrations in ./migrations using golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
