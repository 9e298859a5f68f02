package dateutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.UTC)
	expected := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	result := StartOfDay(input)

	if !result.Equal(expected) {
		t.Errorf("StartOfDay(%v) = %v, want %v", input, result, expected)
	}
}

func TestStartOfMonth(t *testing.T) {
	input := time.Date(2022, 6, 23, 9, 15, 0, 0, time.UTC)
	expected := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	if result := StartOfMonth(input); !result.Equal(expected) {
		t.Errorf("StartOfMonth(%v) = %v, want %v", input, result, expected)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"January", 2022, time.January, 31},
		{"February non-leap", 2022, time.February, 28},
		{"February leap", 2024, time.February, 29},
		{"June", 2022, time.June, 30},
		{"December", 2022, time.December, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInMonth(tt.year, tt.month); got != tt.want {
				t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			"ISO format YYYY-MM-DD",
			"2025-01-15",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Spreadsheet format MM/dd/yyyy",
			"06/03/2022",
			time.Date(2022, 6, 3, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Dotted format DD.MM.YYYY",
			"15.01.2025",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"ISO with time is truncated to the day",
			"2025-01-15T10:30:00",
			time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			false,
		},
		{
			"Garbage",
			"yesterday",
			time.Time{},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseDate(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDate(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && !result.Equal(tt.want) {
				t.Errorf("ParseDate(%v) = %v, want %v", tt.input, result, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"single digit hour", "8:10", 490, false},
		{"two digit hour", "08:25", 505, false},
		{"with seconds", "22:00:59", 1320, false},
		{"midnight", "0:00", 0, false},
		{"hour out of range", "24:00", 0, true},
		{"minute out of range", "8:60", 0, true},
		{"single digit minute", "8:5", 0, true},
		{"no separator", "0810", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}

			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{490, "8:10"},
		{0, "0:00"},
		{1439, "23:59"},
		{1440 + 60, "1:00"},
	}

	for _, tt := range tests {
		if got := FormatClock(tt.minutes); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestShiftMinutes(t *testing.T) {
	tests := []struct {
		name    string
		timeIn  int
		timeOut int
		want    int
	}{
		{"day shift", 8 * 60, 17 * 60, 9 * 60},
		{"overnight shift", 22 * 60, 6 * 60, 8 * 60},
		{"identical punches", 9 * 60, 9 * 60, 0},
		{"one minute past midnight", 23*60 + 59, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShiftMinutes(tt.timeIn, tt.timeOut); got != tt.want {
				t.Errorf("ShiftMinutes(%d, %d) = %d, want %d", tt.timeIn, tt.timeOut, got, tt.want)
			}
		})
	}
}
