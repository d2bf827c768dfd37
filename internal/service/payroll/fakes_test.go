package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/attendance"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/employee"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/holiday"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/leave"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/pkg/keylock"
)

// ========== EMPLOYEES ==========

type fakeEmployeeRepo struct {
	mu          sync.Mutex
	employees   map[string]employee.Employee
	order       []string
	appendCalls int
	// onAppend, when set, replaces AppendLedgerEntry's behaviour.
	onAppend func(employeeID string, entry employee.LedgerEntry) error
}

func newFakeEmployeeRepo(emps ...employee.Employee) *fakeEmployeeRepo {
	r := &fakeEmployeeRepo{employees: make(map[string]employee.Employee)}
	for _, e := range emps {
		r.employees[e.ID] = e
		r.order = append(r.order, e.ID)
	}
	return r
}

func (r *fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	e.LeaveBalanceHistory = append([]employee.LedgerEntry(nil), e.LeaveBalanceHistory...)
	e.SalaryHistory = append([]employee.SalaryHistoryEntry(nil), e.SalaryHistory...)
	return e, nil
}

func (r *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, id := range r.order {
		if e := r.employees[id]; e.IsActive() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEmployeeRepo) AppendLedgerEntry(ctx context.Context, employeeID string, entry employee.LedgerEntry) error {
	if r.onAppend != nil {
		return r.onAppend(employeeID, entry)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[employeeID]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	if _, exists := e.LedgerEntryFor(entry.Month, entry.Year); exists {
		return employee.ErrLedgerEntryExists
	}
	e.LeaveBalanceHistory = append(e.LeaveBalanceHistory, entry)
	r.employees[employeeID] = e
	r.appendCalls++
	return nil
}

func (r *fakeEmployeeRepo) SetCarryForward(ctx context.Context, employeeID string, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[employeeID]
	if !ok {
		return employee.ErrEmployeeNotFound
	}
	e.CarryForwardLeave = value
	r.employees[employeeID] = e
	return nil
}

func (r *fakeEmployeeRepo) history(id string) []employee.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]employee.LedgerEntry(nil), r.employees[id].LeaveBalanceHistory...)
}

// ========== SALARY RECORDS ==========

type fakeSalaryRepo struct {
	mu          sync.Mutex
	records     map[string]payroll.SalaryRecord
	createCalls int
}

func newFakeSalaryRepo() *fakeSalaryRepo {
	return &fakeSalaryRepo{records: make(map[string]payroll.SalaryRecord)}
}

func recordKey(employeeID string, month, year int) string {
	return fmt.Sprintf("%s/%04d-%02d", employeeID, year, month)
}

func (r *fakeSalaryRepo) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int) (payroll.SalaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recordKey(employeeID, month, year)]
	if !ok {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return rec, nil
}

func (r *fakeSalaryRepo) CreateIfAbsent(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey(record.EmployeeID, record.Month, record.Year)
	if existing, ok := r.records[key]; ok {
		return existing, false, nil
	}
	record.CreatedAt = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	record.UpdatedAt = record.CreatedAt
	r.records[key] = record
	r.createCalls++
	return record, true, nil
}

func (r *fakeSalaryRepo) Approve(ctx context.Context, employeeID string, month, year int, approvedBy string) (payroll.SalaryRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey(employeeID, month, year)
	rec, ok := r.records[key]
	if !ok {
		return payroll.SalaryRecord{}, false, payroll.ErrSalaryRecordNotFound
	}
	if rec.IsApproved {
		return rec, false, nil
	}
	now := time.Now()
	rec.IsApproved = true
	rec.ApprovedAt = &now
	rec.ApprovedBy = &approvedBy
	r.records[key] = rec
	return rec, true, nil
}

func (r *fakeSalaryRepo) ListByPeriod(ctx context.Context, month, year int) ([]payroll.SalaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payroll.SalaryRecord
	for _, rec := range r.records {
		if rec.Month == month && rec.Year == year {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

// ========== SETTINGS ==========

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings *payroll.Settings
}

func (r *fakeSettingsRepo) GetSettings(ctx context.Context) (payroll.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		return payroll.Settings{}, payroll.ErrSettingsNotFound
	}
	return *r.settings, nil
}

func (r *fakeSettingsRepo) UpsertSettings(ctx context.Context, settings payroll.Settings) (payroll.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if settings.ID == "" {
		settings.ID = "settings-1"
	}
	settings.UpdatedAt = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	r.settings = &settings
	return settings, nil
}

// ========== READERS ==========

type fakeAttendance struct {
	records map[string][]attendance.Record
	fail    map[string]error
}

func (f *fakeAttendance) FindByEmployeeBetween(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	if err := f.fail[employeeID]; err != nil {
		return nil, err
	}
	var out []attendance.Record
	for _, r := range f.records[employeeID] {
		if !r.CheckInTime.Before(start) && !r.CheckInTime.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeLeave struct {
	records map[string][]leave.Record
}

func (f *fakeLeave) FindApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]leave.Record, error) {
	var out []leave.Record
	for _, r := range f.records[employeeID] {
		if r.IsApproved() && !civilDate(r.EndDate).Before(civilDate(start)) && !civilDate(r.StartDate).After(civilDate(end)) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeHolidays struct {
	holidays []holiday.Holiday
}

func (f *fakeHolidays) FindOverlapping(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range f.holidays {
		if !civilDate(h.EndDate).Before(civilDate(start)) && !civilDate(h.StartDate).After(civilDate(end)) {
			out = append(out, h)
		}
	}
	return out, nil
}

// ========== TX / NOTIFIER ==========

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []payroll.SalaryApprovedEvent
}

func (n *fakeNotifier) NotifySalaryApproved(ctx context.Context, event payroll.SalaryApprovedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// ========== HARNESS ==========

type harness struct {
	svc        *PayrollServiceImpl
	employees  *fakeEmployeeRepo
	salaries   *fakeSalaryRepo
	settings   *fakeSettingsRepo
	attendance *fakeAttendance
	leaves     *fakeLeave
	holidays   *fakeHolidays
	notifier   *fakeNotifier
}

func newHarness(now time.Time, emps ...employee.Employee) *harness {
	h := &harness{
		employees:  newFakeEmployeeRepo(emps...),
		salaries:   newFakeSalaryRepo(),
		settings:   &fakeSettingsRepo{},
		attendance: &fakeAttendance{records: map[string][]attendance.Record{}, fail: map[string]error{}},
		leaves:     &fakeLeave{records: map[string][]leave.Record{}},
		holidays:   &fakeHolidays{},
		notifier:   &fakeNotifier{},
	}
	svc := NewPayrollService(
		fakeTx{},
		h.employees,
		h.salaries,
		h.settings,
		NewAggregator(h.attendance, h.leaves, h.holidays),
		keylock.NewLocal(),
		h.notifier,
		Config{
			Epoch:       payroll.NewPeriod(5, 2025),
			WorkerCount: 3,
			Location:    time.UTC,
			Now:         func() time.Time { return now },
		},
	)
	h.svc = svc.(*PayrollServiceImpl)
	return h
}

// attendFirstWorkingDays records check-ins on the first n weekdays of the month.
func (h *harness) attendFirstWorkingDays(employeeID string, p payroll.Period, n int) {
	d := p.Start(time.UTC)
	for n > 0 && d.Month() == time.Month(p.Month) {
		if !IsWeekend(d) {
			h.attendance.records[employeeID] = append(h.attendance.records[employeeID], attendance.Record{
				ID:          fmt.Sprintf("%s-%s", employeeID, d.Format("2006-01-02")),
				EmployeeID:  employeeID,
				CheckInTime: d.Add(9 * time.Hour),
			})
			n--
		}
		d = d.AddDate(0, 0, 1)
	}
}

// attendAllWorkingDays marks full attendance for the month.
func (h *harness) attendAllWorkingDays(employeeID string, p payroll.Period) {
	h.attendFirstWorkingDays(employeeID, p, 31)
}

func newEmployee(id string, basic int64) employee.Employee {
	return employee.Employee{
		ID:                 id,
		EmployeeCode:       "EMP-" + id[len(id)-4:],
		FullName:           "Employee " + id[len(id)-4:],
		Email:              id[len(id)-4:] + "@example.com",
		EmploymentStatus:   employee.EmploymentStatusActive,
		CurrentBasicSalary: decimal.NewFromInt(basic),
	}
}

var errAttendanceDown = errors.New("attendance store unreachable")
