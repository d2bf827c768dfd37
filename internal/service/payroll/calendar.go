package payroll

import (
	"time"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/holiday"
)

// civilDate drops the clock and zone, keeping the calendar date as seen in t's
// own location. Day arithmetic is done in UTC so DST never shortens a day.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDaysBetween counts the Monday-to-Friday dates in [start, end]
// inclusive. It returns 0 when end is before start.
func WorkingDaysBetween(start, end time.Time) int {
	s, e := civilDate(start), civilDate(end)
	if e.Before(s) {
		return 0
	}

	count := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if !IsWeekend(d) {
			count++
		}
	}
	return count
}

// daysBetween counts calendar dates in [start, end] inclusive.
func daysBetween(start, end time.Time) int {
	s, e := civilDate(start), civilDate(end)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

type HolidayOverlap struct {
	TotalHolidayDays   int
	WorkingHolidayDays int
}

// HolidayOverlapDays sums, per holiday, the days and working days it shares
// with [start, end]. Holidays outside the window contribute nothing.
func HolidayOverlapDays(holidays []holiday.Holiday, start, end time.Time) HolidayOverlap {
	var overlap HolidayOverlap
	windowStart, windowEnd := civilDate(start), civilDate(end)

	for _, h := range holidays {
		s := laterOf(civilDate(h.StartDate), windowStart)
		e := earlierOf(civilDate(h.EndDate), windowEnd)
		if e.Before(s) {
			continue
		}
		overlap.TotalHolidayDays += daysBetween(s, e)
		overlap.WorkingHolidayDays += WorkingDaysBetween(s, e)
	}
	return overlap
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
