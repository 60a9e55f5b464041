package database

import (
	"errors"
	"fmt"
	"sync"

	"canteen-backend/internal/config"
	"canteen-backend/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the store, migrates it and seeds the default admin.
// Any failure here is fatal for the process.
func Init(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to the database")
	}
	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("auto migration failed")
	}
	created, err := SeedAdmin(db, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("admin seed failed")
	}
	if created {
		log.Info().Str("username", cfg.AdminUsername).Msg("default admin account created")
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("database ready, migration complete")
	return db
}

func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch driver {
	case "postgres", "":
		return gorm.Open(postgres.Open(dsn), gcfg)
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer; a single connection keeps transactions from deadlocking
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Order{},
		&models.SupplyRequest{},
		&models.Review{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

var seedMu sync.Mutex

// SeedAdmin creates an admin account when no user holds the admin role.
// It is safe to call repeatedly; it reports whether an account was created.
func SeedAdmin(db *gorm.DB, username, password string) (bool, error) {
	seedMu.Lock()
	defer seedMu.Unlock()

	if username == "" || password == "" {
		return false, errors.New("admin username and password are required")
	}

	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := models.User{
			Username:     username,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}
