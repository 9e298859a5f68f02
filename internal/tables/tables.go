package tables

import (
	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/calendar"
	"go.uber.org/zap"
)

// Set is the group of lookup tables one payroll session runs against
type Set struct {
	Brackets *BracketTable
	Tax      *TaxTable
	Holidays *calendar.Table
}

// Source loads a complete table Set
type Source interface {
	Load() (*Set, error)
}

// DefaultBrackets returns the social-insurance contribution schedule:
// up to 3,250 contributes 135.00, each further 500 adds 22.50, and
// compensation above 24,750 contributes 1,125.00.
func DefaultBrackets() []CompensationBracket {
	step := decimal.NewFromInt(500)
	increment := decimal.RequireFromString("22.50")

	brackets := []CompensationBracket{{
		Lower:        decimal.Zero,
		Upper:        decimal.NewFromInt(3250),
		Contribution: decimal.NewFromInt(135),
	}}

	lower := decimal.NewFromInt(3250)
	contribution := decimal.NewFromInt(135)
	last := decimal.NewFromInt(24750)
	for lower.LessThan(last) {
		contribution = contribution.Add(increment)
		brackets = append(brackets, CompensationBracket{
			Lower:        lower,
			Upper:        lower.Add(step),
			Contribution: contribution,
		})
		lower = lower.Add(step)
	}

	return append(brackets, CompensationBracket{
		Lower:        last,
		Open:         true,
		Contribution: decimal.NewFromInt(1125),
	})
}

// DefaultTaxBrackets returns the monthly withholding schedule
func DefaultTaxBrackets() []TaxBracket {
	row := func(floor, base, rate string) TaxBracket {
		return TaxBracket{
			Floor: decimal.RequireFromString(floor),
			Base:  decimal.RequireFromString(base),
			Rate:  decimal.RequireFromString(rate),
		}
	}

	return []TaxBracket{
		row("20833", "0", "0.20"),
		row("33333", "2500", "0.25"),
		row("66667", "10833.5", "0.30"),
		row("166667", "40833.5", "0.32"),
		row("666667", "200833.5", "0.35"),
	}
}

// DefaultSet builds a Set from the built-in schedules with no holidays
func DefaultSet() (*Set, error) {
	return NewSet(DefaultBrackets(), DefaultTaxBrackets(), nil, zap.NewNop())
}

// NewSet validates raw rows into a Set, logging bracket gaps as warnings
func NewSet(brackets []CompensationBracket, taxBrackets []TaxBracket, holidays []calendar.Holiday, logger *zap.Logger) (*Set, error) {
	bt, err := NewBracketTable(brackets)
	if err != nil {
		return nil, err
	}
	for _, gap := range bt.Gaps() {
		logger.Warn("Compensation bracket table has a gap; amounts in it will miss the lookup",
			zap.String("from", gap.From.String()),
			zap.String("to", gap.To.String()))
	}

	tt, err := NewTaxTable(taxBrackets)
	if err != nil {
		return nil, err
	}

	ht, err := calendar.NewTable(holidays)
	if err != nil {
		return nil, err
	}

	return &Set{Brackets: bt, Tax: tt, Holidays: ht}, nil
}
