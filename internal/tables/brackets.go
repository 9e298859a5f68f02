package tables

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CompensationBracket maps a gross-pay range to a fixed contribution.
// The lower bound is exclusive and the upper bound inclusive; an Open
// bracket has no upper bound.
type CompensationBracket struct {
	Lower        decimal.Decimal
	Upper        decimal.Decimal
	Open         bool
	Contribution decimal.Decimal
}

// Contains reports whether lower < amount <= upper
func (b CompensationBracket) Contains(amount decimal.Decimal) bool {
	if !amount.GreaterThan(b.Lower) {
		return false
	}
	return b.Open || amount.LessThanOrEqual(b.Upper)
}

// Range returns the bracket in "lower-upper" form ("lower-" when open)
func (b CompensationBracket) Range() string {
	if b.Open {
		return b.Lower.String() + "-"
	}
	return b.Lower.String() + "-" + b.Upper.String()
}

// ParseRange parses "3250-3750" or the open-ended "24750-".
// Thousands separators are ignored.
func ParseRange(s string) (lower, upper decimal.Decimal, open bool, err error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	parts := strings.Split(clean, "-")
	if len(parts) != 2 {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("invalid compensation range format: %q", s)
	}

	lower, err = decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("invalid lower bound in range %q: %w", s, err)
	}

	upperStr := strings.TrimSpace(parts[1])
	if upperStr == "" {
		return lower, decimal.Zero, true, nil
	}

	upper, err = decimal.NewFromString(upperStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("invalid upper bound in range %q: %w", s, err)
	}

	return lower, upper, false, nil
}

// Gap is an uncovered range between two consecutive brackets
type Gap struct {
	From decimal.Decimal // exclusive
	To   decimal.Decimal // inclusive
}

// BracketTable is an ordered, validated list of compensation brackets
type BracketTable struct {
	brackets []CompensationBracket
	gaps     []Gap
}

// NewBracketTable validates ordering and overlap. Gaps between brackets are
// accepted and reported by Gaps; amounts that fall in one miss the lookup.
func NewBracketTable(brackets []CompensationBracket) (*BracketTable, error) {
	if len(brackets) == 0 {
		return nil, fmt.Errorf("bracket table is empty")
	}

	var gaps []Gap
	for i, b := range brackets {
		if b.Lower.IsNegative() {
			return nil, fmt.Errorf("bracket %d (%s): negative lower bound", i+1, b.Range())
		}
		if b.Contribution.IsNegative() {
			return nil, fmt.Errorf("bracket %d (%s): negative contribution", i+1, b.Range())
		}
		if b.Open && i != len(brackets)-1 {
			return nil, fmt.Errorf("bracket %d (%s): only the last bracket may be open-ended", i+1, b.Range())
		}
		if !b.Open && !b.Upper.GreaterThan(b.Lower) {
			return nil, fmt.Errorf("bracket %d (%s): upper bound must exceed lower bound", i+1, b.Range())
		}

		if i == 0 {
			continue
		}
		prev := brackets[i-1]
		if b.Lower.LessThan(prev.Upper) {
			return nil, fmt.Errorf("bracket %d (%s) overlaps bracket %d (%s)", i+1, b.Range(), i, prev.Range())
		}
		if b.Lower.GreaterThan(prev.Upper) {
			gaps = append(gaps, Gap{From: prev.Upper, To: b.Lower})
		}
	}

	out := make([]CompensationBracket, len(brackets))
	copy(out, brackets)

	return &BracketTable{brackets: out, gaps: gaps}, nil
}

// Lookup returns the first bracket containing amount
func (t *BracketTable) Lookup(amount decimal.Decimal) (CompensationBracket, bool) {
	for _, b := range t.brackets {
		if b.Contains(amount) {
			return b, true
		}
	}
	return CompensationBracket{}, false
}

// Brackets returns a copy of the brackets in table order
func (t *BracketTable) Brackets() []CompensationBracket {
	out := make([]CompensationBracket, len(t.brackets))
	copy(out, t.brackets)
	return out
}

// Gaps returns the uncovered ranges found during validation
func (t *BracketTable) Gaps() []Gap {
	return t.gaps
}

// Len returns the number of brackets
func (t *BracketTable) Len() int {
	return len(t.brackets)
}
