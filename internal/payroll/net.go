package payroll

import (
	"github.com/shopspring/decimal"
)

// DeductionSet holds every deduction taken from one period's gross
type DeductionSet struct {
	SocialInsurance decimal.Decimal
	HealthInsurance decimal.Decimal
	HousingFund     decimal.Decimal
	Tardiness       decimal.Decimal
	WithholdingTax  decimal.Decimal

	// Other carries deductions registered beyond the standard four
	Other []DeductionAmount

	Total decimal.Decimal
}

// NewDeductionSet sorts registry results into named fields and sums them
// with the withholding tax
func NewDeductionSet(amounts []DeductionAmount, withholding decimal.Decimal) DeductionSet {
	set := DeductionSet{
		SocialInsurance: decimal.Zero,
		HealthInsurance: decimal.Zero,
		HousingFund:     decimal.Zero,
		Tardiness:       decimal.Zero,
		WithholdingTax:  withholding,
	}

	total := withholding
	for _, a := range amounts {
		switch a.Name {
		case DeductionSocialInsurance:
			set.SocialInsurance = a.Amount
		case DeductionHealthInsurance:
			set.HealthInsurance = a.Amount
		case DeductionHousingFund:
			set.HousingFund = a.Amount
		case DeductionTardiness:
			set.Tardiness = a.Amount
		default:
			set.Other = append(set.Other, a)
		}
		total = total.Add(a.Amount)
	}
	set.Total = total

	return set
}

// NetPay is the full result of a net wage calculation
type NetPay struct {
	Breakdown     PayBreakdown
	Deductions    DeductionSet
	TaxableIncome decimal.Decimal
	HoursWorked   decimal.Decimal
	Net           decimal.Decimal
}

// ComputeNet subtracts every deduction from gross
func ComputeNet(breakdown PayBreakdown, deductions DeductionSet, taxable decimal.Decimal) NetPay {
	return NetPay{
		Breakdown:     breakdown,
		Deductions:    deductions,
		TaxableIncome: taxable,
		HoursWorked:   breakdown.TotalHours(),
		Net:           breakdown.Gross.Sub(deductions.Total),
	}
}
