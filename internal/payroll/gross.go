package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PayBreakdown is the gross pay of one employee over one period.
// HolidayPremium reports the holiday share already contained in
// RegularPay plus the holiday share of overtime; it is informational
// and not part of Gross.
type PayBreakdown struct {
	RegularHours   decimal.Decimal
	OvertimeHours  decimal.Decimal
	RegularPay     decimal.Decimal
	OvertimePay    decimal.Decimal
	HolidayPremium decimal.Decimal
	Gross          decimal.Decimal
	Days           []DayHours
}

// TotalHours returns regular plus overtime hours
func (b PayBreakdown) TotalHours() decimal.Decimal {
	return b.RegularHours.Add(b.OvertimeHours)
}

// pay returns rate * minutes / 60
func pay(rate decimal.Decimal, minutes int) decimal.Decimal {
	return rate.Mul(decimal.NewFromInt(int64(minutes))).Div(minutesPerHour)
}

// Gross prices aggregated hours at the hourly rate. Overtime uses the
// night or day overtime rate; holiday days scale regular pay by the
// holiday multiplier.
func Gross(hours Hours, rate decimal.Decimal, night bool, rules Rules) (PayBreakdown, error) {
	if !rate.IsPositive() {
		return PayBreakdown{}, fmt.Errorf("%w: %s", ErrInvalidRate, rate)
	}

	one := decimal.NewFromInt(1)
	limit := decimal.Zero
	otRate := rules.OvertimeRate(night)

	b := PayBreakdown{
		RegularHours:   hours.RegularHours(),
		OvertimeHours:  hours.OvertimeHours(),
		RegularPay:     decimal.Zero,
		OvertimePay:    decimal.Zero,
		HolidayPremium: decimal.Zero,
		Days:           hours.Days,
	}

	for _, day := range hours.Days {
		regularBase := pay(rate, day.RegularMinutes)
		overtimeBase := pay(rate, day.OvertimeMinutes)

		b.OvertimePay = b.OvertimePay.Add(overtimeBase.Mul(otRate))
		limit = limit.Add(regularBase.Mul(rules.HolidayPremiumCap)).Add(overtimeBase.Mul(rules.HolidayPremiumCap))

		if day.Holiday.IsHoliday() {
			extra := day.Holiday.Multiplier.Sub(one)
			b.RegularPay = b.RegularPay.Add(regularBase.Mul(day.Holiday.Multiplier))
			b.HolidayPremium = b.HolidayPremium.
				Add(regularBase.Mul(extra)).
				Add(overtimeBase.Mul(extra))
			continue
		}

		b.RegularPay = b.RegularPay.Add(regularBase)
	}

	// limit uses the same per-day bases as the premium
	if b.HolidayPremium.GreaterThan(limit) {
		return PayBreakdown{}, fmt.Errorf("%w: holiday premium %s exceeds %s", ErrCalculationFault, b.HolidayPremium.StringFixed(2), limit.StringFixed(2))
	}

	b.Gross = b.RegularPay.Add(b.OvertimePay)

	return b, nil
}
