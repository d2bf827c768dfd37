package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/config"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/database"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/email"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/keylock"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/repository/postgresql"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/service/notification"
	payrollService "github.com/vasudevyadav/HRMS-Backend-sub000/internal/service/payroll"
)

// App holds the long-lived dependencies shared by the API server and the CLI.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *database.DB
	Redis      *redis.Client
	Dispatcher *notification.Dispatcher
	Payroll    payroll.PayrollService
}

// NewLogger builds the JSON logger for the configured level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// New connects to Postgres (and Redis when configured), applies the schema if
// migrate is set, and wires the payroll service.
func New(ctx context.Context, cfg *config.Config, migrate bool) (*App, error) {
	logger := NewLogger(cfg.App.LogLevel)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, DB: db}

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	var locker keylock.Locker = keylock.NewLocal()
	if cfg.Redis.Address != "" {
		client, err := keylock.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = client
		locker = keylock.NewRedis(client, cfg.Redis.LockTTL)
		slog.Info("Using redis payroll lock", "address", cfg.Redis.Address)
	}

	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Dispatcher = notification.NewDispatcher(emailService, notification.Config{
		WorkerCount: cfg.Payroll.NotifyWorkerCount,
		QueueSize:   cfg.Payroll.NotifyQueueSize,
	})

	aggregator := payrollService.NewAggregator(
		postgresql.NewAttendanceRepository(db),
		postgresql.NewLeaveRepository(db),
		postgresql.NewHolidayRepository(db),
	)

	a.Payroll = payrollService.NewPayrollService(
		postgresql.NewTransactor(db),
		postgresql.NewEmployeeRepository(db),
		postgresql.NewSalaryRecordRepository(db),
		postgresql.NewSettingsRepository(db),
		aggregator,
		locker,
		a.Dispatcher,
		payrollService.Config{
			Epoch:       payroll.NewPeriod(cfg.Payroll.EpochMonth, cfg.Payroll.EpochYear),
			WorkerCount: cfg.Payroll.WorkerCount,
			Location:    cfg.Payroll.Location(),
		},
	)

	return a, nil
}

// Close drains pending notifications and releases connections.
func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Stop()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
