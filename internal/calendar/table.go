package calendar

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/pkg/dateutil"
)

// Table implements Calendar over an in-memory holiday table.
// A Table is never modified after construction.
type Table struct {
	days map[string]Holiday // key: "YYYY-MM-DD"
}

// NewTable builds a Table, rejecting duplicate dates and multipliers below 1.0
func NewTable(holidays []Holiday) (*Table, error) {
	days := make(map[string]Holiday, len(holidays))
	one := decimal.NewFromInt(1)

	for _, h := range holidays {
		key := dateutil.DateKey(h.Date)
		if h.Kind == NotHoliday {
			return nil, fmt.Errorf("holiday %s: kind must be regular or special", key)
		}
		if h.Multiplier.LessThan(one) {
			return nil, fmt.Errorf("holiday %s: multiplier %s is below 1.0", key, h.Multiplier)
		}
		if _, exists := days[key]; exists {
			return nil, fmt.Errorf("holiday %s listed twice", key)
		}
		h.Date = dateutil.StartOfDay(h.Date)
		days[key] = h
	}

	return &Table{days: days}, nil
}

// Classify returns the holiday stored for the date, or Ordinary(date)
func (t *Table) Classify(date time.Time) (Holiday, error) {
	if h, ok := t.days[dateutil.DateKey(date)]; ok {
		return h, nil
	}
	return Ordinary(date), nil
}

// Holidays returns all holidays ordered by date
func (t *Table) Holidays() []Holiday {
	out := make([]Holiday, 0, len(t.days))
	for _, h := range t.days {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Len returns the number of holidays in the table
func (t *Table) Len() int {
	return len(t.days)
}
