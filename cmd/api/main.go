package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/app"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/config"
	appHTTP "github.com/vasudevyadav/HRMS-Backend-sub000/internal/handler/http"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/cron"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/jwt"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	scheduler := cron.NewScheduler()
	if cfg.Payroll.AutoGenerate {
		payrollJobs := cron.NewPayrollJobs(a.Payroll, cfg.Payroll.Location())
		if err := payrollJobs.RegisterJobs(scheduler); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	payrollHandler := appHTTP.NewPayrollHandler(a.Payroll)

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		Logger:         a.Logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
	}, JWTService, payrollHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
