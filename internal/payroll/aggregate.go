package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/calendar"
	"github.com/username/payroll-engine/internal/records"
)

var minutesPerHour = decimal.NewFromInt(60)

// DayHours is one attendance punch split into regular and overtime minutes
type DayHours struct {
	Date            time.Time
	RegularMinutes  int
	OvertimeMinutes int
	Holiday         calendar.Holiday
}

// RegularHours returns regular minutes as hours
func (d DayHours) RegularHours() decimal.Decimal {
	return minutesToHours(d.RegularMinutes)
}

// OvertimeHours returns overtime minutes as hours
func (d DayHours) OvertimeHours() decimal.Decimal {
	return minutesToHours(d.OvertimeMinutes)
}

// Hours is the aggregated attendance of one employee over a period
type Hours struct {
	RegularMinutes  int
	OvertimeMinutes int
	Days            []DayHours
}

// RegularHours returns total regular hours
func (h Hours) RegularHours() decimal.Decimal {
	return minutesToHours(h.RegularMinutes)
}

// OvertimeHours returns total overtime hours
func (h Hours) OvertimeHours() decimal.Decimal {
	return minutesToHours(h.OvertimeMinutes)
}

// TotalHours returns regular plus overtime hours
func (h Hours) TotalHours() decimal.Decimal {
	return minutesToHours(h.RegularMinutes + h.OvertimeMinutes)
}

func minutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour)
}

// SplitMinutes splits a worked duration into regular (capped at the daily
// limit) and overtime minutes
func SplitMinutes(worked, regularLimit int) (regular, overtime int) {
	if worked <= 0 {
		return 0, 0
	}
	if worked <= regularLimit {
		return worked, 0
	}
	return regularLimit, worked - regularLimit
}

// Aggregate sums the employee's punches that fall within the period,
// classifying each date against the calendar. Punches of other employees
// or outside the period are ignored; no matches yields zero hours.
func Aggregate(punches []records.Punch, id records.EmployeeID, period Period, cal calendar.Calendar, rules Rules) (Hours, error) {
	var hours Hours

	for _, p := range punches {
		if !p.EmployeeID.Matches(id) || !period.Contains(p.Date.Time) {
			continue
		}

		holiday, err := cal.Classify(p.Date.Time)
		if err != nil {
			return Hours{}, fmt.Errorf("failed to classify %s: %w", p.Date, err)
		}

		regular, overtime := SplitMinutes(p.WorkedMinutes(), rules.RegularMinutesPerDay)
		hours.RegularMinutes += regular
		hours.OvertimeMinutes += overtime
		hours.Days = append(hours.Days, DayHours{
			Date:            p.Date.Time,
			RegularMinutes:  regular,
			OvertimeMinutes: overtime,
			Holiday:         holiday,
		})
	}

	return hours, nil
}
