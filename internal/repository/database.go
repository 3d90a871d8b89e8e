package repository

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens a GORM connection to PostgreSQL and configures the pool.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("database connection established")
	return db, nil
}

// Migrate creates the schema and the overlap exclusion constraint. The
// constraint is the database-level backstop behind the serializable insert
// path: two non-cancelled per-day bookings of the same service can never hold
// intersecting ranges, no matter how they race. Hourly bookings are shareable
// and stay out of the constraint; when the hourly overlap guard is enabled
// their exclusivity is enforced by the serializable re-check alone.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("failed to enable btree_gist: %w", err)
	}

	if err := db.AutoMigrate(
		&CategoryModel{},
		&ServiceModel{},
		&BookingModel{},
		&PaymentModel{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	// tstzrange uses half-open [start, end) bounds, matching the overlap
	// semantics used everywhere else: back-to-back bookings do not conflict.
	constraint := `
		DO $$ BEGIN
			ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
				EXCLUDE USING gist (
					service_id WITH =,
					tstzrange(start_time, end_time) WITH &&
				) WHERE (status <> 'cancelled' AND unit = 'per_day');
		EXCEPTION
			WHEN duplicate_object THEN NULL;
			WHEN duplicate_table THEN NULL;
		END $$;`
	if err := db.Exec(constraint).Error; err != nil {
		return fmt.Errorf("failed to create overlap constraint: %w", err)
	}

	return nil
}
