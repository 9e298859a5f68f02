package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/records"
	"github.com/username/payroll-engine/internal/tables"
)

// Names of the standard deductions, in registry order
const (
	DeductionSocialInsurance = "social_insurance"
	DeductionHealthInsurance = "health_insurance"
	DeductionHousingFund     = "housing_fund"
	DeductionTardiness       = "tardiness"
)

// DeductionInput is everything a deduction may depend on
type DeductionInput struct {
	Employee records.Employee
	Period   Period
	Gross    decimal.Decimal

	// MonthPunches are the employee's punches for the period's whole month
	MonthPunches []records.Punch

	// LateThreshold is the minute of day after which a time-in is late
	LateThreshold int
}

// DeductionFunc computes one deduction
type DeductionFunc func(DeductionInput) (decimal.Decimal, error)

// DeductionAmount is the result of one named deduction
type DeductionAmount struct {
	Name   string
	Amount decimal.Decimal
}

// Registry composes named deductions in registration order
type Registry struct {
	names []string
	funcs map[string]DeductionFunc
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]DeductionFunc)}
}

// Register appends a deduction. Names must be unique.
func (r *Registry) Register(name string, fn DeductionFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("deduction needs a name and a function")
	}
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("deduction %q already registered", name)
	}
	r.names = append(r.names, name)
	r.funcs[name] = fn
	return nil
}

// Names returns the registered names in order
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Apply runs every deduction in order and stops at the first failure
func (r *Registry) Apply(in DeductionInput) ([]DeductionAmount, error) {
	out := make([]DeductionAmount, 0, len(r.names))
	for _, name := range r.names {
		amount, err := r.funcs[name](in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, DeductionAmount{Name: name, Amount: amount})
	}
	return out, nil
}

// StandardRegistry registers social insurance, health insurance, housing
// fund and tardiness, in that order
func StandardRegistry(brackets *tables.BracketTable, rules Rules) *Registry {
	r := NewRegistry()
	// Names are distinct constants, so registration cannot fail
	_ = r.Register(DeductionSocialInsurance, SocialInsurance(brackets))
	_ = r.Register(DeductionHealthInsurance, HealthInsurance(rules))
	_ = r.Register(DeductionHousingFund, HousingFund(rules))
	_ = r.Register(DeductionTardiness, Tardiness)
	return r
}

// SocialInsurance returns the contribution of the first bracket with
// lower < gross <= upper. Zero gross contributes nothing.
func SocialInsurance(brackets *tables.BracketTable) DeductionFunc {
	return func(in DeductionInput) (decimal.Decimal, error) {
		if in.Gross.IsZero() {
			return decimal.Zero, nil
		}
		b, ok := brackets.Lookup(in.Gross)
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: no compensation bracket for gross %s", ErrLookupMiss, in.Gross.StringFixed(2))
		}
		return b.Contribution, nil
	}
}

// HealthInsurance returns the employee share of the percentage
// contribution, or the fixed maximum above the ceiling
func HealthInsurance(rules Rules) DeductionFunc {
	return func(in DeductionInput) (decimal.Decimal, error) {
		if in.Gross.GreaterThan(rules.HealthCeiling) {
			return rules.HealthMax, nil
		}
		return in.Gross.Mul(rules.HealthRate).Mul(rules.HealthEmployeeShare), nil
	}
}

// HousingFund applies the low rate inside (floor, ceiling], the standard
// rate elsewhere, and caps the result
func HousingFund(rules Rules) DeductionFunc {
	return func(in DeductionInput) (decimal.Decimal, error) {
		rate := rules.HousingRate
		if in.Gross.GreaterThan(rules.HousingLowFloor) && in.Gross.LessThanOrEqual(rules.HousingLowCeiling) {
			rate = rules.HousingLowRate
		}
		return decimal.Min(in.Gross.Mul(rate), rules.HousingCap), nil
	}
}

// Tardiness charges the per-minute rate for every minute a time-in falls
// after the late threshold, across the whole month
func Tardiness(in DeductionInput) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, p := range in.MonthPunches {
		late := p.TimeIn.Minutes() - in.LateThreshold
		if late <= 0 {
			continue
		}
		total = total.Add(pay(in.Employee.HourlyRate, late))
	}

	return total, nil
}
