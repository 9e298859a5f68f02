package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HolidayKind represents the classification of a day for pay purposes
type HolidayKind int

const (
	NotHoliday HolidayKind = iota
	RegularHoliday
	SpecialHoliday
)

// String returns the lowercase name used in holiday tables
func (k HolidayKind) String() string {
	switch k {
	case RegularHoliday:
		return "regular"
	case SpecialHoliday:
		return "special"
	default:
		return "none"
	}
}

// ParseHolidayKind parses "regular" or "special"
func ParseHolidayKind(s string) (HolidayKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular":
		return RegularHoliday, nil
	case "special":
		return SpecialHoliday, nil
	default:
		return NotHoliday, fmt.Errorf("unknown holiday kind: %q", s)
	}
}

// Holiday represents the classification of a specific date
type Holiday struct {
	Date       time.Time
	Kind       HolidayKind
	Multiplier decimal.Decimal
	Note       string
}

// IsHoliday reports whether the date is a regular or special holiday
func (h Holiday) IsHoliday() bool {
	return h.Kind != NotHoliday
}

// Ordinary returns the classification of a date absent from every holiday table
func Ordinary(date time.Time) Holiday {
	return Holiday{
		Date:       date,
		Kind:       NotHoliday,
		Multiplier: decimal.NewFromInt(1),
	}
}

// Calendar classifies dates for holiday pay
type Calendar interface {
	// Classify returns the holiday kind and pay multiplier for the date.
	// Dates missing from the table resolve to Ordinary(date).
	Classify(date time.Time) (Holiday, error)
}
