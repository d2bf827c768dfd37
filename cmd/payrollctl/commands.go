package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/app"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/config"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/user"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/jwt"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the payroll schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), true, func(a *app.App) error {
				fmt.Fprintln(out, "schema applied")
				return nil
			})
		},
	}
}

func computeCmd() *cobra.Command {
	var employeeID, periodStr string

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute or fetch one employee's salary",
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(periodStr, time.Now())
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), false, func(a *app.App) error {
				breakdown, err := a.Payroll.ComputeOrFetchSalary(cmd.Context(), employeeID, period.Month, period.Year)
				if err != nil {
					return err
				}
				return printJSON(breakdown)
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID")
	cmd.Flags().StringVarP(&periodStr, "period", "p", "", "Month as YYYY-MM (default: previous month)")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func generateCmd() *cobra.Command {
	var periodStr string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Compute and store salaries for all active employees",
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(periodStr, time.Now())
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), false, func(a *app.App) error {
				results, err := a.Payroll.GenerateForMonth(cmd.Context(), period.Month, period.Year)
				if err != nil {
					return err
				}
				return printBulk(period, results)
			})
		},
	}

	cmd.Flags().StringVarP(&periodStr, "period", "p", "", "Month as YYYY-MM (default: previous month)")
	return cmd
}

func approveAllCmd() *cobra.Command {
	var periodStr string

	cmd := &cobra.Command{
		Use:   "approve-all",
		Short: "Approve every active employee's salary for the previous month",
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(periodStr, time.Now())
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), false, func(a *app.App) error {
				results, err := a.Payroll.ApproveAllForMonth(cmd.Context(), period.Month, period.Year)
				if err != nil {
					return err
				}
				return printBulk(period, results)
			})
		},
	}

	cmd.Flags().StringVarP(&periodStr, "period", "p", "", "Month as YYYY-MM (default: previous month)")
	return cmd
}

func backfillLedgerCmd() *cobra.Command {
	var employeeID, periodStr string

	cmd := &cobra.Command{
		Use:   "backfill-ledger",
		Short: "Fill missing leave ledger months up to and including a month",
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(periodStr, time.Now())
			if err != nil {
				return err
			}
			return withApp(cmd.Context(), false, func(a *app.App) error {
				resp, err := a.Payroll.BackfillLedger(cmd.Context(), employeeID, period.Month, period.Year)
				if err != nil {
					return err
				}
				return printJSON(resp)
			})
		},
	}

	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID")
	cmd.Flags().StringVarP(&periodStr, "period", "p", "", "Last month to fill as YYYY-MM (default: previous month)")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func exportCmd() *cobra.Command {
	var periodStr, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the salary register for a month as XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(periodStr, time.Now())
			if err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("salary-register-%s.xlsx", period)
			}
			return withApp(cmd.Context(), false, func(a *app.App) error {
				f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open output file: %w", err)
				}
				defer f.Close()

				if err := a.Payroll.ExportSalaries(cmd.Context(), period.Month, period.Year, f); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote %s\n", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&periodStr, "period", "p", "", "Month as YYYY-MM (default: previous month)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: salary-register-YYYY-MM.xlsx)")
	return cmd
}

// tokenCmd issues an access token signed with the API's key. It needs no
// database connection.
func tokenCmd() *cobra.Command {
	var userID, employeeID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for operators and integration tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := user.Role(role)
			if _, ok := user.RolePermissions[r]; !ok {
				return fmt.Errorf("unknown role %q", role)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var empID *string
			if employeeID != "" {
				empID = &employeeID
			}

			svc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
			token, expiresAt, err := svc.GenerateAccessToken(userID, empID, r)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"access_token": token,
				"expires_at":   time.Unix(expiresAt, 0).UTC(),
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID")
	cmd.Flags().StringVarP(&employeeID, "employee", "e", "", "Employee ID carried in the token")
	cmd.Flags().StringVarP(&role, "role", "r", string(user.RoleManager), "Role: owner, manager or employee")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
