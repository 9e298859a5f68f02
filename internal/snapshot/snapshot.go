package snapshot

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/username/payroll-engine/internal/calendar"
	"github.com/username/payroll-engine/internal/records"
	"github.com/username/payroll-engine/internal/tables"
	"github.com/username/payroll-engine/pkg/dateutil"
)

// Snapshot is everything one payroll session calculates against:
// attendance, roster, lookup tables and the holiday calendar.
// It is never modified after New returns; reloading builds a new one.
type Snapshot struct {
	ID       string
	LoadedAt time.Time

	punches    map[records.EmployeeID][]records.Punch // sorted by date
	employees  map[records.EmployeeID]records.Employee
	roster     []records.EmployeeID // source order
	brackets   *tables.BracketTable
	taxTable   *tables.TaxTable
	calendar   calendar.Calendar
	punchCount int
}

// New builds a Snapshot. Employee ids must be unique after normalization.
func New(punches []records.Punch, employees []records.Employee, set *tables.Set, cal calendar.Calendar) (*Snapshot, error) {
	if set == nil || set.Brackets == nil || set.Tax == nil {
		return nil, fmt.Errorf("snapshot requires bracket and tax tables")
	}
	if cal == nil {
		return nil, fmt.Errorf("snapshot requires a holiday calendar")
	}

	s := &Snapshot{
		ID:         uuid.NewString(),
		LoadedAt:   time.Now(),
		punches:    make(map[records.EmployeeID][]records.Punch),
		employees:  make(map[records.EmployeeID]records.Employee, len(employees)),
		roster:     make([]records.EmployeeID, 0, len(employees)),
		brackets:   set.Brackets,
		taxTable:   set.Tax,
		calendar:   cal,
		punchCount: len(punches),
	}

	for _, e := range employees {
		id := records.NormalizeEmployeeID(string(e.ID))
		if _, exists := s.employees[id]; exists {
			return nil, fmt.Errorf("employee %s listed twice in roster", id)
		}
		e.ID = id
		s.employees[id] = e
		s.roster = append(s.roster, id)
	}

	for _, p := range punches {
		id := records.NormalizeEmployeeID(string(p.EmployeeID))
		p.EmployeeID = id
		s.punches[id] = append(s.punches[id], p)
	}
	for id := range s.punches {
		list := s.punches[id]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Date.Before(list[j].Date.Time)
		})
	}

	return s, nil
}

// PunchesFor returns the employee's punches dated within [from, to], inclusive
func (s *Snapshot) PunchesFor(id records.EmployeeID, from, to time.Time) []records.Punch {
	from = dateutil.StartOfDay(from)
	to = dateutil.StartOfDay(to)

	var out []records.Punch
	for _, p := range s.punches[records.NormalizeEmployeeID(string(id))] {
		day := dateutil.StartOfDay(p.Date.Time)
		if day.Before(from) || day.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Employee returns the roster entry for id
func (s *Snapshot) Employee(id records.EmployeeID) (records.Employee, bool) {
	e, ok := s.employees[records.NormalizeEmployeeID(string(id))]
	return e, ok
}

// Employees returns the roster in source order
func (s *Snapshot) Employees() []records.Employee {
	out := make([]records.Employee, 0, len(s.roster))
	for _, id := range s.roster {
		out = append(out, s.employees[id])
	}
	return out
}

// Brackets returns the social-insurance contribution table
func (s *Snapshot) Brackets() *tables.BracketTable {
	return s.brackets
}

// TaxTable returns the withholding tax table
func (s *Snapshot) TaxTable() *tables.TaxTable {
	return s.taxTable
}

// Calendar returns the holiday calendar
func (s *Snapshot) Calendar() calendar.Calendar {
	return s.calendar
}

// PunchCount returns the number of attendance rows loaded
func (s *Snapshot) PunchCount() int {
	return s.punchCount
}
