package dateutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical key format for calendar dates
	DateLayout = "2006-01-02"

	// MinutesPerDay is the number of minutes in a 24h day
	MinutesPerDay = 24 * 60
)

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfMonth returns the first day of the month for the given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateKey formats date as YYYY-MM-DD, ignoring time and location
func DateKey(date time.Time) string {
	return date.Format(DateLayout)
}

// ParseDate parses date string in various formats
// Supports ISO (2006-01-02), US spreadsheet (01/02/2006) and dotted (02.01.2006) dates.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	formats := []string{
		DateLayout,
		"01/02/2006",
		"1/2/2006",
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05-0700",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return StartOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %q", dateStr)
}

// ParseClock parses a time of day ("H:mm" or "H:mm:ss") into minutes since midnight.
// Seconds are accepted but discarded.
func ParseClock(clock string) (int, error) {
	clock = strings.TrimSpace(clock)
	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day: %q", clock)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in time of day: %q", clock)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in time of day: %q", clock)
	}

	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid second in time of day: %q", clock)
		}
	}

	return hour*60 + minute, nil
}

// FormatClock formats minutes since midnight as H:mm
func FormatClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// ShiftMinutes returns the worked minutes between timeIn and timeOut.
// A timeOut earlier than timeIn means the shift crossed midnight.
func ShiftMinutes(timeIn, timeOut int) int {
	if timeOut < timeIn {
		return timeOut + MinutesPerDay - timeIn
	}
	return timeOut - timeIn
}
