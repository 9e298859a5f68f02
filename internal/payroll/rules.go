package payroll

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/config"
)

// Rules holds every rate and bound the calculators use
type Rules struct {
	RegularMinutesPerDay int // Work beyond this is overtime

	DayOvertimeRate   decimal.Decimal
	NightOvertimeRate decimal.Decimal

	// Holiday premium may not exceed hours * rate * HolidayPremiumCap
	HolidayPremiumCap decimal.Decimal

	HealthCeiling       decimal.Decimal // Above this gross the contribution is HealthMax
	HealthMax           decimal.Decimal
	HealthRate          decimal.Decimal
	HealthEmployeeShare decimal.Decimal

	HousingLowFloor   decimal.Decimal // (HousingLowFloor, HousingLowCeiling] uses HousingLowRate
	HousingLowCeiling decimal.Decimal
	HousingLowRate    decimal.Decimal
	HousingRate       decimal.Decimal
	HousingCap        decimal.Decimal

	LateGrace time.Duration
}

// DefaultRules returns the statutory defaults
func DefaultRules() Rules {
	return Rules{
		RegularMinutesPerDay: 8 * 60,
		DayOvertimeRate:      decimal.RequireFromString("1.25"),
		NightOvertimeRate:    decimal.RequireFromString("1.10"),
		HolidayPremiumCap:    decimal.RequireFromString("1.3"),
		HealthCeiling:        decimal.NewFromInt(60000),
		HealthMax:            decimal.NewFromInt(1800),
		HealthRate:           decimal.RequireFromString("0.03"),
		HealthEmployeeShare:  decimal.RequireFromString("0.5"),
		HousingLowFloor:      decimal.NewFromInt(1000),
		HousingLowCeiling:    decimal.NewFromInt(1500),
		HousingLowRate:       decimal.RequireFromString("0.03"),
		HousingRate:          decimal.RequireFromString("0.04"),
		HousingCap:           decimal.NewFromInt(100),
		LateGrace:            10 * time.Minute,
	}
}

// RulesFromConfig converts validated configuration into Rules
func RulesFromConfig(cfg config.PayrollConfig) Rules {
	r := cfg.Rules
	return Rules{
		RegularMinutesPerDay: int(r.RegularHoursPerDay * 60),
		DayOvertimeRate:      decimal.NewFromFloat(r.DayOvertimeRate),
		NightOvertimeRate:    decimal.NewFromFloat(r.NightOvertimeRate),
		HolidayPremiumCap:    decimal.NewFromFloat(r.HolidayPremiumCap),
		HealthCeiling:        decimal.NewFromFloat(r.HealthCeiling),
		HealthMax:            decimal.NewFromFloat(r.HealthMax),
		HealthRate:           decimal.NewFromFloat(r.HealthRate),
		HealthEmployeeShare:  decimal.NewFromFloat(r.HealthEmployeeShare),
		HousingLowFloor:      decimal.NewFromFloat(r.HousingLowFloor),
		HousingLowCeiling:    decimal.NewFromFloat(r.HousingLowCeiling),
		HousingLowRate:       decimal.NewFromFloat(r.HousingLowRate),
		HousingRate:          decimal.NewFromFloat(r.HousingRate),
		HousingCap:           decimal.NewFromFloat(r.HousingCap),
		LateGrace:            cfg.GetLateGrace(),
	}
}

// OvertimeRate returns the overtime multiplier for the shift type
func (r Rules) OvertimeRate(night bool) decimal.Decimal {
	if night {
		return r.NightOvertimeRate
	}
	return r.DayOvertimeRate
}

// LateThreshold returns the minute of day after which a time-in is late
func (r Rules) LateThreshold(shiftStart int) int {
	return shiftStart + int(r.LateGrace/time.Minute)
}
