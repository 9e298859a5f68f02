package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/pkg/dateutil"
)

// EmployeeID is an employee number as it appears in the record source.
// Spreadsheet exports coerce numeric ids to floats, so "10001" may arrive
// as "10001.0"; the suffix is stripped on parse so both spellings match.
type EmployeeID string

// NormalizeEmployeeID trims whitespace and the trailing ".0" left by numeric coercion
func NormalizeEmployeeID(raw string) EmployeeID {
	id := strings.TrimSpace(raw)
	id = strings.TrimSuffix(id, ".0")
	return EmployeeID(id)
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller for EmployeeID
func (id *EmployeeID) UnmarshalCSV(value string) error {
	*id = NormalizeEmployeeID(value)
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller for EmployeeID
func (id EmployeeID) MarshalCSV() (string, error) {
	return string(id), nil
}

// String returns string representation
func (id EmployeeID) String() string {
	return string(id)
}

// Matches reports whether the id refers to the same employee as other
func (id EmployeeID) Matches(other EmployeeID) bool {
	return NormalizeEmployeeID(string(id)) == NormalizeEmployeeID(string(other))
}

// Date is a calendar date without time of day
type Date struct {
	time.Time
}

// NewDate creates a Date in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// UnmarshalCSV accepts "MM/dd/yyyy" spreadsheet dates as well as ISO dates
func (d *Date) UnmarshalCSV(value string) error {
	parsed, err := dateutil.ParseDate(value)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller for Date
func (d Date) MarshalCSV() (string, error) {
	return dateutil.DateKey(d.Time), nil
}

// String returns the date as YYYY-MM-DD
func (d Date) String() string {
	return dateutil.DateKey(d.Time)
}

// ClockTime is a time of day in minutes since midnight
type ClockTime int

// NewClockTime creates a ClockTime from hour and minute
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "H:mm" or "H:mm:ss"
func ParseClockTime(value string) (ClockTime, error) {
	minutes, err := dateutil.ParseClock(value)
	if err != nil {
		return 0, err
	}
	return ClockTime(minutes), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller for ClockTime
func (c *ClockTime) UnmarshalCSV(value string) error {
	parsed, err := ParseClockTime(value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller for ClockTime
func (c ClockTime) MarshalCSV() (string, error) {
	return c.String(), nil
}

// Minutes returns minutes since midnight
func (c ClockTime) Minutes() int {
	return int(c)
}

// String returns the time as H:mm
func (c ClockTime) String() string {
	return dateutil.FormatClock(int(c))
}

// Punch is one attendance row: a single time-in/time-out pair on a date
type Punch struct {
	EmployeeID EmployeeID `csv:"id"`
	FirstName  string     `csv:"first_name"`
	LastName   string     `csv:"last_name"`
	Date       Date       `csv:"date"`
	TimeIn     ClockTime  `csv:"time_in"`
	TimeOut    ClockTime  `csv:"time_out"`
}

// WorkedMinutes returns the punch duration, adding 24h for overnight shifts
func (p Punch) WorkedMinutes() int {
	return dateutil.ShiftMinutes(p.TimeIn.Minutes(), p.TimeOut.Minutes())
}

// Employee is a roster entry
type Employee struct {
	ID         EmployeeID
	FirstName  string
	LastName   string
	HourlyRate decimal.Decimal
}

// FullName returns "Last, First" as printed on payslips
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	if e.FirstName == "" {
		return e.LastName
	}
	return fmt.Sprintf("%s, %s", e.LastName, e.FirstName)
}
