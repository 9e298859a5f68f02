package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/tables"
)

// TaxableIncome is gross less the statutory contributions.
// Tardiness does not reduce taxable income.
func TaxableIncome(gross, socialInsurance, healthInsurance, housingFund decimal.Decimal) decimal.Decimal {
	return gross.Sub(socialInsurance).Sub(healthInsurance).Sub(housingFund)
}

// WithholdingTax returns the tax due on taxable income; negative income is untaxed
func WithholdingTax(table *tables.TaxTable, taxable decimal.Decimal) decimal.Decimal {
	if !taxable.IsPositive() {
		return decimal.Zero
	}
	return table.Compute(taxable)
}
