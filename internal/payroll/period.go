package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/payroll-engine/pkg/dateutil"
)

// Half selects which part of the month a pay period covers
type Half int

const (
	FirstHalf  Half = 1 // days 1-15
	SecondHalf Half = 2 // day 16 to end of month
)

// firstHalfLastDay is the last day of the first half of every month
const firstHalfLastDay = 15

// ParseHalf accepts "1", "first", "2" or "second"
func ParseHalf(s string) (Half, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "first":
		return FirstHalf, nil
	case "2", "second":
		return SecondHalf, nil
	default:
		return 0, fmt.Errorf("%w: half must be 1 (first) or 2 (second), got %q", ErrInvalidArgument, s)
	}
}

// String returns "first" or "second"
func (h Half) String() string {
	if h == SecondHalf {
		return "second"
	}
	return "first"
}

// Period is a semi-monthly pay period
type Period struct {
	Year  int
	Month time.Month
	Half  Half
}

// NewPeriod validates month and half
func NewPeriod(year, month int, half Half) (Period, error) {
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month must be between 1 and 12, got %d", ErrInvalidArgument, month)
	}
	if half != FirstHalf && half != SecondHalf {
		return Period{}, fmt.Errorf("%w: unknown period half %d", ErrInvalidArgument, half)
	}
	return Period{Year: year, Month: time.Month(month), Half: half}, nil
}

// Start returns the first day of the period
func (p Period) Start() time.Time {
	if p.Half == SecondHalf {
		return time.Date(p.Year, p.Month, firstHalfLastDay+1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period, inclusive
func (p Period) End() time.Time {
	if p.Half == SecondHalf {
		return time.Date(p.Year, p.Month, dateutil.DaysInMonth(p.Year, p.Month), 0, 0, 0, 0, time.UTC)
	}
	return time.Date(p.Year, p.Month, firstHalfLastDay, 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of the period's month
func (p Period) MonthStart() time.Time {
	return dateutil.StartOfMonth(p.Start())
}

// MonthEnd returns the last day of the period's month
func (p Period) MonthEnd() time.Time {
	return time.Date(p.Year, p.Month, dateutil.DaysInMonth(p.Year, p.Month), 0, 0, 0, 0, time.UTC)
}

// Contains reports whether date falls within the period
func (p Period) Contains(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.Start()) && !day.After(p.End())
}

// String returns e.g. "2022-06 1-15"
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d %d-%d", p.Year, int(p.Month), p.Start().Day(), p.End().Day())
}
