package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/business-scheduler/internal/config"
	"github.com/BruksfildServices01/business-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/business-scheduler/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// Models lists every table owned by the API, in dependency order.
func Models() []any {
	return []any{
		&models.Business{},
		&models.Branch{},
		&models.User{},
		&models.Service{},
		&models.Client{},
		&models.WorkingHours{},
		&models.ScheduleException{},
		&models.Appointment{},
		&models.AuditLog{},
	}
}

// Migrate creates or updates the schema. On Postgres it also installs the
// exclusion constraint that refuses overlapping occupying appointments for
// one professional, which is the last line of defence behind the
// transactional re-check.
func Migrate(db *gorm.DB, log zerolog.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		log.Info().Str("dialect", db.Dialector.Name()).Msg("skipping exclusion constraint")
		return nil
	}

	for _, stmt := range postgresStatements() {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}

	if err := db.Exec(`
		UPDATE businesses
		SET timezone = 'America/Sao_Paulo'
		WHERE timezone IS NULL OR timezone = ''
	`).Error; err != nil {
		return fmt.Errorf("backfill timezone: %w", err)
	}

	log.Info().Msg("database migrated")
	return nil
}

func postgresStatements() []string {
	occupying := "'" + strings.Join(appointment.OccupyingStatuses(), "', '") + "'"

	return []string{
		`CREATE EXTENSION IF NOT EXISTS btree_gist`,
		`ALTER TABLE appointments DROP CONSTRAINT IF EXISTS appointments_no_overlap`,
		fmt.Sprintf(`
			ALTER TABLE appointments
			ADD CONSTRAINT appointments_no_overlap
			EXCLUDE USING gist (
				professional_id WITH =,
				tstzrange(start_time, end_time, '[)') WITH &&
			) WHERE (status IN (%s))
		`, occupying),
	}
}
