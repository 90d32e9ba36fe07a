package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/checkout-api/internal/config"
	"github.com/sangkips/checkout-api/internal/domain/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Sequences backing batch creation order and invoice numbers.
var sequences = []string{
	"batch_sequence_seq",
	"sales_invoice_seq",
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("connected to PostgreSQL")
	return db, nil
}

// AutoMigrate creates the sequences and runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	for _, seq := range sequences {
		if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS " + seq).Error; err != nil {
			return fmt.Errorf("failed to create sequence %s: %w", seq, err)
		}
	}

	err := db.AutoMigrate(
		// Catalog and stock
		&entity.Customer{},
		&entity.Product{},
		&entity.Batch{},
		&entity.StockMovement{},

		// Sales and credit
		&entity.Sale{},
		&entity.SaleLine{},
		&entity.CreditAccount{},
		&entity.CreditEntry{},
		&entity.ReceiptCopy{},

		// System entities
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// SeedDefaultData makes sure the walk-in customer exists
func SeedDefaultData(db *gorm.DB, walkInID uuid.UUID) error {
	walkIn := entity.Customer{ID: walkInID, Name: "Walk-in Customer"}
	result := db.Where("id = ?", walkInID).FirstOrCreate(&walkIn)
	if result.Error != nil {
		return fmt.Errorf("failed to seed walk-in customer: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Info().Str("customer_id", walkInID.String()).Msg("walk-in customer created")
	}
	return nil
}
