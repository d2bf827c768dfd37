package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/user"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/handler/http/middleware"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/handler/http/response"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/jwt"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, payrollHandler PayrollHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/salaries", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionPayrollViewAll)).Get("/", payrollHandler.ListSalaries)
					r.With(middleware.RequirePermission(user.PermissionPayrollExport)).Get("/export", payrollHandler.ExportSalaries)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Use(middleware.RequirePermission(user.PermissionPayrollApprove))
						r.Post("/approve-all", payrollHandler.ApproveAll)
						r.Post("/generate", payrollHandler.GenerateSalaries)
						r.Post("/{employeeId}/approve", payrollHandler.ApproveSalary)
					})

					r.With(middleware.RequireSelfOrPermission("employeeId", user.PermissionPayrollViewAll)).
						Get("/{employeeId}", payrollHandler.GetSalary)
				})

				r.Route("/ledger/{employeeId}", func(r chi.Router) {
					r.With(middleware.RequireSelfOrPermission("employeeId", user.PermissionPayrollViewAll)).
						Get("/", payrollHandler.GetLedger)
					r.With(middleware.RequirePermission(user.PermissionPayrollManageLedger)).
						Post("/backfill", payrollHandler.BackfillLedger)
				})

				r.Route("/settings", func(r chi.Router) {
					r.With(middleware.RequireManager).Get("/", payrollHandler.GetSettings)
					r.With(middleware.RequirePermission(user.PermissionPayrollManageSettings)).Put("/", payrollHandler.UpdateSettings)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
