package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/config"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService defines the interface for sending emails
type EmailService interface {
	SendSalaryApproved(ctx context.Context, event payroll.SalaryApprovedEvent) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	return newEmailService(cfg, smtp.SendMail)
}

func newEmailService(cfg config.SMTPConfig, send sendFunc) (*emailServiceImpl, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      send,
		backoff:   time.Second,
	}, nil
}

type salaryApprovedEmailData struct {
	EmployeeName string
	PeriodLabel  string
	WorkingDays  int
	PresentDays  int
	LeaveDays    float64
	UnpaidDays   float64
	BasicSalary  string
	Deduction    string
	FinalSalary  string
	CarryForward float64
	Earnings     []payroll.Earning
	ApprovedAt   string
}

// SendSalaryApproved emails the employee their approved salary breakdown.
func (s *emailServiceImpl) SendSalaryApproved(ctx context.Context, event payroll.SalaryApprovedEvent) error {
	if event.EmployeeEmail == "" {
		slog.Warn("Employee has no email address, skipping salary notification", "employee_id", event.EmployeeID)
		return nil
	}

	b := event.Breakdown
	period := time.Date(event.Year, time.Month(event.Month), 1, 0, 0, 0, 0, time.UTC)
	data := salaryApprovedEmailData{
		EmployeeName: event.EmployeeName,
		PeriodLabel:  period.Format("January 2006"),
		WorkingDays:  b.WorkingDays,
		PresentDays:  b.PresentDays,
		LeaveDays:    b.LeaveDays,
		UnpaidDays:   b.TotalUnpaidDays,
		BasicSalary:  b.BasicSalary.StringFixed(2),
		Deduction:    b.Deduction.StringFixed(2),
		FinalSalary:  event.FinalSalary.StringFixed(2),
		CarryForward: b.Ledger.CarryForward,
		Earnings:     b.Earnings,
		ApprovedAt:   event.ApprovedAt.Format("02 Jan 2006 15:04 MST"),
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "salary_approved.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(ctx, event.EmployeeEmail, fmt.Sprintf("Salary approved for %s", data.PeriodLabel), body.String())
}

func (s *emailServiceImpl) sendHTML(ctx context.Context, to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Wait before retrying (exponential backoff: 1s, 2s, 4s)
		if attempt < maxRetries {
			select {
			case <-time.After(s.backoff << (attempt - 1)):
			case <-ctx.Done():
				return fmt.Errorf("email send cancelled: %w", ctx.Err())
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
