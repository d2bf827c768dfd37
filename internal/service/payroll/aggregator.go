package payroll

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/attendance"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/holiday"
	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/leave"
)

// AttendanceSummary is one employee's day counts for one month.
type AttendanceSummary struct {
	WorkingDays        int
	PresentDays        int
	LeaveDays          float64
	AbsentDays         float64
	TotalHolidayDays   int
	WorkingHolidayDays int
}

// ChargedDays is what the leave ledger charges against the paid balance.
func (s AttendanceSummary) ChargedDays() float64 {
	return s.LeaveDays + s.AbsentDays
}

type Aggregator struct {
	attendanceReader attendance.AttendanceReader
	leaveReader      leave.LeaveReader
	holidayReader    holiday.HolidayReader
}

func NewAggregator(
	attendanceReader attendance.AttendanceReader,
	leaveReader leave.LeaveReader,
	holidayReader holiday.HolidayReader,
) *Aggregator {
	return &Aggregator{
		attendanceReader: attendanceReader,
		leaveReader:      leaveReader,
		holidayReader:    holidayReader,
	}
}

// Summarize counts attendance and leave within [monthStart, effectiveEnd] and
// measures working days and holidays against the whole month.
func (a *Aggregator) Summarize(ctx context.Context, employeeID string, monthStart, monthEnd, effectiveEnd time.Time) (AttendanceSummary, error) {
	records, err := a.attendanceReader.FindByEmployeeBetween(ctx, employeeID, monthStart, effectiveEnd)
	if err != nil {
		return AttendanceSummary{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	leaves, err := a.leaveReader.FindApprovedOverlapping(ctx, employeeID, monthStart, effectiveEnd)
	if err != nil {
		return AttendanceSummary{}, fmt.Errorf("failed to load leave: %w", err)
	}

	holidays, err := a.holidayReader.FindOverlapping(ctx, monthStart, monthEnd)
	if err != nil {
		return AttendanceSummary{}, fmt.Errorf("failed to load holidays: %w", err)
	}

	return summarize(records, leaves, holidays, monthStart, monthEnd, effectiveEnd), nil
}

func summarize(records []attendance.Record, leaves []leave.Record, holidays []holiday.Holiday, monthStart, monthEnd, effectiveEnd time.Time) AttendanceSummary {
	workingDays := WorkingDaysBetween(monthStart, monthEnd)
	overlap := HolidayOverlapDays(holidays, monthStart, monthEnd)
	present := PresentDays(records, monthStart, effectiveEnd)
	leaveDays := LeaveDays(leaves, monthStart, effectiveEnd)

	absent := float64(workingDays) - float64(present) - float64(overlap.WorkingHolidayDays) - leaveDays
	absent = math.Max(absent, 0)

	return AttendanceSummary{
		WorkingDays:        workingDays,
		PresentDays:        present,
		LeaveDays:          leaveDays,
		AbsentDays:         absent,
		TotalHolidayDays:   overlap.TotalHolidayDays,
		WorkingHolidayDays: overlap.WorkingHolidayDays,
	}
}

// PresentDays counts records whose check-in lies within [start, end].
func PresentDays(records []attendance.Record, start, end time.Time) int {
	count := 0
	for _, r := range records {
		if r.CheckInTime.Before(start) || r.CheckInTime.After(end) {
			continue
		}
		count++
	}
	return count
}

// LeaveDays weighs approved leave inside [windowStart, windowEnd]: a half day
// counts 0.5 on any date, a full day counts 1 unless it falls on a weekend, and
// multi-day leave counts each overlapping weekday.
func LeaveDays(leaves []leave.Record, windowStart, windowEnd time.Time) float64 {
	total := 0.0
	for _, l := range leaves {
		if !l.IsApproved() {
			continue
		}
		switch l.LeaveType {
		case leave.LeaveTypeHalfDay:
			total += 0.5
		case leave.LeaveTypeFullDay:
			if !IsWeekend(civilDate(l.StartDate)) {
				total++
			}
		case leave.LeaveTypeMultiDay:
			s := laterOf(civilDate(l.StartDate), civilDate(windowStart))
			e := earlierOf(civilDate(l.EndDate), civilDate(windowEnd))
			total += float64(WorkingDaysBetween(s, e))
		}
	}
	return total
}
