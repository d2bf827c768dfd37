package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/app"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/config"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
)

var out io.Writer = os.Stdout

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "payrollctl",
		Short:         "HRMS payroll operations",
		Long:          "Run payroll maintenance against the HRMS database: migrations, salary generation, approvals, ledger backfill and exports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		migrateCmd(),
		computeCmd(),
		generateCmd(),
		approveAllCmd(),
		backfillLedgerCmd(),
		exportCmd(),
		tokenCmd(),
	)
	return rootCmd
}

// withApp loads configuration, connects, runs fn and always releases the app.
func withApp(ctx context.Context, migrate bool, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a, err := app.New(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// parsePeriod accepts YYYY-MM. An empty value resolves to the month before now.
func parsePeriod(value string, now time.Time) (payroll.Period, error) {
	if value == "" {
		return payroll.PeriodOf(now).Previous(), nil
	}
	year, month, ok := strings.Cut(value, "-")
	if !ok {
		return payroll.Period{}, fmt.Errorf("period %q must be YYYY-MM", value)
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return payroll.Period{}, fmt.Errorf("period %q: invalid year: %w", value, err)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return payroll.Period{}, fmt.Errorf("period %q: invalid month: %w", value, err)
	}
	p := payroll.NewPeriod(m, y)
	if !p.Valid() {
		return payroll.Period{}, fmt.Errorf("period %q is out of range", value)
	}
	return p, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printBulk prints the summary and fails the command when any item failed.
func printBulk(period payroll.Period, results []payroll.BulkResult) error {
	summary := payroll.SummarizeBulk(period, results)
	if err := printJSON(summary); err != nil {
		return err
	}
	if failed := summary.Counts[string(payroll.BulkStatusFailed)]; failed > 0 {
		return fmt.Errorf("%d of %d employees failed", failed, summary.Total)
	}
	return nil
}
