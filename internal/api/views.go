package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/payroll"
)

type dayView struct {
	Date          string          `json:"date"`
	RegularHours  decimal.Decimal `json:"regularHours"`
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
	Holiday       string          `json:"holiday,omitempty"`
}

type grossView struct {
	RegularHours   decimal.Decimal `json:"regularHours"`
	OvertimeHours  decimal.Decimal `json:"overtimeHours"`
	RegularPay     decimal.Decimal `json:"regularPay"`
	OvertimePay    decimal.Decimal `json:"overtimePay"`
	HolidayPremium decimal.Decimal `json:"holidayPremium"`
	Gross          decimal.Decimal `json:"gross"`
	Days           []dayView       `json:"days"`
}

func newGrossView(b payroll.PayBreakdown) grossView {
	days := make([]dayView, 0, len(b.Days))
	for _, d := range b.Days {
		v := dayView{
			Date:          d.Date.Format("2006-01-02"),
			RegularHours:  d.RegularHours(),
			OvertimeHours: d.OvertimeHours(),
		}
		if d.Holiday.IsHoliday() {
			v.Holiday = d.Holiday.Kind.String()
		}
		days = append(days, v)
	}
	return grossView{
		RegularHours:   b.RegularHours,
		OvertimeHours:  b.OvertimeHours,
		RegularPay:     b.RegularPay,
		OvertimePay:    b.OvertimePay,
		HolidayPremium: b.HolidayPremium,
		Gross:          b.Gross,
		Days:           days,
	}
}

type deductionsView struct {
	SocialInsurance decimal.Decimal            `json:"socialInsurance"`
	HealthInsurance decimal.Decimal            `json:"healthInsurance"`
	HousingFund     decimal.Decimal            `json:"housingFund"`
	Tardiness       decimal.Decimal            `json:"tardiness"`
	WithholdingTax  decimal.Decimal            `json:"withholdingTax"`
	Other           map[string]decimal.Decimal `json:"other,omitempty"`
	Total           decimal.Decimal            `json:"total"`
}

func newDeductionsView(d payroll.DeductionSet) deductionsView {
	v := deductionsView{
		SocialInsurance: d.SocialInsurance,
		HealthInsurance: d.HealthInsurance,
		HousingFund:     d.HousingFund,
		Tardiness:       d.Tardiness,
		WithholdingTax:  d.WithholdingTax,
		Total:           d.Total,
	}
	if len(d.Other) > 0 {
		v.Other = make(map[string]decimal.Decimal, len(d.Other))
		for _, o := range d.Other {
			v.Other[o.Name] = o.Amount
		}
	}
	return v
}

type netView struct {
	Gross         grossView       `json:"gross"`
	Deductions    deductionsView  `json:"deductions"`
	TaxableIncome decimal.Decimal `json:"taxableIncome"`
	HoursWorked   decimal.Decimal `json:"hoursWorked"`
	Net           decimal.Decimal `json:"net"`
}

func newNetView(n payroll.NetPay) netView {
	return netView{
		Gross:         newGrossView(n.Breakdown),
		Deductions:    newDeductionsView(n.Deductions),
		TaxableIncome: n.TaxableIncome,
		HoursWorked:   n.HoursWorked,
		Net:           n.Net,
	}
}

type payslipView struct {
	Employee    employeeView `json:"employee"`
	Period      string       `json:"period"`
	PeriodStart string       `json:"periodStart"`
	PeriodEnd   string       `json:"periodEnd"`
	NightShift  bool         `json:"nightShift"`
	Pay         netView      `json:"pay"`
	SnapshotID  string       `json:"snapshotId"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

func newPayslipView(p payroll.Payslip) payslipView {
	return payslipView{
		Employee: employeeView{
			ID:         p.Employee.ID.String(),
			Name:       p.Employee.FullName(),
			HourlyRate: p.Employee.HourlyRate,
		},
		Period:      p.Period.String(),
		PeriodStart: p.Period.Start().Format("2006-01-02"),
		PeriodEnd:   p.Period.End().Format("2006-01-02"),
		NightShift:  p.NightShift,
		Pay:         newNetView(p.Pay),
		SnapshotID:  p.SnapshotID,
		GeneratedAt: p.GeneratedAt,
	}
}
