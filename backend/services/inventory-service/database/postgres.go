package database

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config describes the PostgreSQL connection. Credentials come from the
// environment or, with AWS_USE_SECRETS, from Secrets Manager.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// DSN renders cfg as a libpq keyword/value string.
func (cfg Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode, cfg.TimeZone,
	)
}

// ConfigFromEnv reads POSTGRES_* variables. Credentials have no defaults.
func ConfigFromEnv() Config {
	return Config{
		Host:     envOr("POSTGRES_HOST", "localhost"),
		Port:     envOr("POSTGRES_PORT", "5432"),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
		SSLMode:  envOr("POSTGRES_SSLMODE", "disable"),
		TimeZone: envOr("POSTGRES_TIMEZONE", "UTC"),
	}
}

// Override replaces connection fields present in m, keyed like the
// environment variables (a Secrets Manager JSON secret).
func (cfg *Config) Override(m map[string]string) {
	for key, dst := range map[string]*string{
		"POSTGRES_HOST":     &cfg.Host,
		"POSTGRES_PORT":     &cfg.Port,
		"POSTGRES_USER":     &cfg.User,
		"POSTGRES_PASSWORD": &cfg.Password,
		"POSTGRES_DB":       &cfg.Name,
	} {
		if v := m[key]; v != "" {
			*dst = v
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (cfg Config) validate() error {
	if cfg.User == "" {
		return fmt.Errorf("POSTGRES_USER not set")
	}
	if cfg.Password == "" {
		return fmt.Errorf("POSTGRES_PASSWORD not set")
	}
	if cfg.Name == "" {
		return fmt.Errorf("POSTGRES_DB not set")
	}
	return nil
}

// GormConfig is shared by the real connection and the sqlmock-backed tests.
// TranslateError surfaces unique and foreign key violations as
// gorm.ErrDuplicatedKey and gorm.ErrForeignKeyViolated.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

const connectAttempts = 10

// ConnectPostgres opens the pool, retrying with a growing backoff while the
// database comes up, and migrates the given models.
func ConnectPostgres(cfg Config, logger *zap.Logger, autoMigrateModels ...interface{}) (*gorm.DB, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var db *gorm.DB
	var err error

	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig())
		if err == nil {
			sqlDB, poolErr := db.DB()
			if poolErr == nil {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
			}

			logger.Info("Connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("db", cfg.Name))

			if len(autoMigrateModels) > 0 {
				if err := db.AutoMigrate(autoMigrateModels...); err != nil {
					return nil, fmt.Errorf("AutoMigrate failed: %w", err)
				}
			}
			return db, nil
		}

		logger.Warn("DB connection failed, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(time.Duration(i+1) * 2 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
