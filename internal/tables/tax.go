package tables

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxBracket taxes income above Floor at Rate, on top of the fixed Base
type TaxBracket struct {
	Floor decimal.Decimal
	Base  decimal.Decimal
	Rate  decimal.Decimal
}

// taxAt returns Base + (income - Floor) * Rate
func (b TaxBracket) taxAt(income decimal.Decimal) decimal.Decimal {
	return b.Base.Add(income.Sub(b.Floor).Mul(b.Rate))
}

// TaxTable is a validated withholding schedule. Tax is monotonic
// non-decreasing in income.
type TaxTable struct {
	brackets []TaxBracket
}

// NewTaxTable rejects non-increasing floors, negative rates and bases that
// would make tax drop when crossing into the next bracket
func NewTaxTable(brackets []TaxBracket) (*TaxTable, error) {
	if len(brackets) == 0 {
		return nil, fmt.Errorf("tax table is empty")
	}

	for i, b := range brackets {
		if b.Rate.IsNegative() {
			return nil, fmt.Errorf("tax bracket %d: negative rate %s", i+1, b.Rate)
		}
		if b.Base.IsNegative() {
			return nil, fmt.Errorf("tax bracket %d: negative base %s", i+1, b.Base)
		}
		if i == 0 {
			continue
		}

		prev := brackets[i-1]
		if !b.Floor.GreaterThan(prev.Floor) {
			return nil, fmt.Errorf("tax bracket %d: floor %s must exceed previous floor %s", i+1, b.Floor, prev.Floor)
		}
		if reached := prev.taxAt(b.Floor); b.Base.LessThan(reached) {
			return nil, fmt.Errorf("tax bracket %d: base %s is below %s reached by the previous bracket", i+1, b.Base, reached)
		}
	}

	out := make([]TaxBracket, len(brackets))
	copy(out, brackets)

	return &TaxTable{brackets: out}, nil
}

// Compute returns the tax for income using the last bracket whose floor is
// below income. Income at or below the lowest floor is untaxed.
func (t *TaxTable) Compute(income decimal.Decimal) decimal.Decimal {
	for i := len(t.brackets) - 1; i >= 0; i-- {
		if income.GreaterThan(t.brackets[i].Floor) {
			return t.brackets[i].taxAt(income)
		}
	}
	return decimal.Zero
}

// Brackets returns a copy of the brackets in table order
func (t *TaxTable) Brackets() []TaxBracket {
	out := make([]TaxBracket, len(t.brackets))
	copy(out, t.brackets)
	return out
}
