package payslip

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/payroll"
)

// line is one labelled amount on a payslip
type line struct {
	label  string
	amount decimal.Decimal
}

func earnings(p payroll.NetPay) []line {
	return []line{
		{"Regular pay", p.Breakdown.RegularPay},
		{"Overtime pay", p.Breakdown.OvertimePay},
		{"Gross pay", p.Breakdown.Gross},
	}
}

func deductions(p payroll.NetPay) []line {
	d := p.Deductions
	lines := []line{
		{"Social insurance", d.SocialInsurance},
		{"Health insurance", d.HealthInsurance},
		{"Housing fund", d.HousingFund},
		{"Tardiness", d.Tardiness},
		{"Withholding tax", d.WithholdingTax},
	}
	for _, other := range d.Other {
		lines = append(lines, line{other.Name, other.Amount})
	}
	return append(lines, line{"Total deductions", d.Total})
}

func shiftLabel(night bool) string {
	if night {
		return "night"
	}
	return "day"
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// WriteText renders a payslip as a fixed-width text block
func WriteText(w io.Writer, slip payroll.Payslip) error {
	var b strings.Builder
	rule := strings.Repeat("═", 48)

	fmt.Fprintf(&b, "PAYSLIP  %s\n", slip.Period)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "  Employee:  %s (%s)\n", slip.Employee.FullName(), slip.Employee.ID)
	fmt.Fprintf(&b, "  Period:    %s to %s\n", slip.Period.Start().Format("2006-01-02"), slip.Period.End().Format("2006-01-02"))
	fmt.Fprintf(&b, "  Shift:     %s\n", shiftLabel(slip.NightShift))
	fmt.Fprintf(&b, "  Rate:      %s/h\n", money(slip.Employee.HourlyRate))
	fmt.Fprintf(&b, "  Hours:     %sh regular, %sh overtime\n",
		slip.Pay.Breakdown.RegularHours.StringFixed(2),
		slip.Pay.Breakdown.OvertimeHours.StringFixed(2))

	b.WriteString("\nEarnings\n")
	for _, l := range earnings(slip.Pay) {
		fmt.Fprintf(&b, "  %-22s %14s\n", l.label, money(l.amount))
	}
	if slip.Pay.Breakdown.HolidayPremium.IsPositive() {
		fmt.Fprintf(&b, "  %-22s %14s\n", "(holiday premium)", money(slip.Pay.Breakdown.HolidayPremium))
	}

	b.WriteString("\nDeductions\n")
	for _, l := range deductions(slip.Pay) {
		fmt.Fprintf(&b, "  %-22s %14s\n", l.label, money(l.amount))
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "  %-22s %14s\n", "Taxable income", money(slip.Pay.TaxableIncome))
	fmt.Fprintf(&b, "  %-22s %14s\n", "NET PAY", money(slip.Pay.Net))
	fmt.Fprintf(&b, "\n  snapshot %s, generated %s\n", slip.SnapshotID, slip.GeneratedAt.Format("2006-01-02 15:04:05"))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write payslip: %w", err)
	}
	return nil
}
