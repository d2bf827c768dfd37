package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// RedisConfig enables the distributed payroll lock when Address is set.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	LockTTL  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// PayrollConfig holds the payroll run parameters
type PayrollConfig struct {
	EpochMonth        int
	EpochYear         int
	WorkerCount       int
	Timezone          string
	AutoGenerate      bool
	NotifyQueueSize   int
	NotifyWorkerCount int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hrms"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	lockTTL, err := time.ParseDuration(getEnv("REDIS_LOCK_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_LOCK_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Address:  getEnv("REDIS_ADDRESS", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		LockTTL:  lockTTL,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS"),
	}
	if len(config.App.AllowedOrigins) == 0 {
		config.App.AllowedOrigins = []string{"http://localhost:3000"}
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "payroll@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "HRMS Payroll"),
	}

	// Payroll configuration
	payroll, err := loadPayrollConfig()
	if err != nil {
		return nil, err
	}
	config.Payroll = payroll

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPayrollConfig() (PayrollConfig, error) {
	epochMonth, err := strconv.Atoi(getEnv("PAYROLL_EPOCH_MONTH", "5"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_EPOCH_MONTH: %w", err)
	}
	epochYear, err := strconv.Atoi(getEnv("PAYROLL_EPOCH_YEAR", "2025"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_EPOCH_YEAR: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("PAYROLL_WORKER_COUNT", "4"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_WORKER_COUNT: %w", err)
	}
	autoGenerate, err := strconv.ParseBool(getEnv("PAYROLL_AUTO_GENERATE", "true"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_AUTO_GENERATE: %w", err)
	}
	queueSize, err := strconv.Atoi(getEnv("PAYROLL_NOTIFY_QUEUE_SIZE", "500"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_NOTIFY_QUEUE_SIZE: %w", err)
	}
	notifyWorkers, err := strconv.Atoi(getEnv("PAYROLL_NOTIFY_WORKER_COUNT", "2"))
	if err != nil {
		return PayrollConfig{}, fmt.Errorf("invalid PAYROLL_NOTIFY_WORKER_COUNT: %w", err)
	}

	return PayrollConfig{
		EpochMonth:        epochMonth,
		EpochYear:         epochYear,
		WorkerCount:       workers,
		Timezone:          getEnv("PAYROLL_TIMEZONE", "Asia/Kolkata"),
		AutoGenerate:      autoGenerate,
		NotifyQueueSize:   queueSize,
		NotifyWorkerCount: notifyWorkers,
	}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return c.Payroll.Validate()
}

// Validate checks the payroll run parameters.
func (p PayrollConfig) Validate() error {
	if p.EpochMonth < 1 || p.EpochMonth > 12 {
		return fmt.Errorf("PAYROLL_EPOCH_MONTH must be between 1 and 12")
	}
	if p.EpochYear < 2000 {
		return fmt.Errorf("PAYROLL_EPOCH_YEAR must be 2000 or later")
	}
	if p.WorkerCount < 1 {
		return fmt.Errorf("PAYROLL_WORKER_COUNT must be at least 1")
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("invalid PAYROLL_TIMEZONE %q: %w", p.Timezone, err)
	}
	return nil
}

// Location returns the time zone payroll months are evaluated in.
func (p PayrollConfig) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
