package snapshot

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/calendar"
	"github.com/username/payroll-engine/internal/config"
	"github.com/username/payroll-engine/internal/records"
	"github.com/username/payroll-engine/internal/tables"
	"go.uber.org/zap"
)

func punch(id string, year int, month time.Month, day int) records.Punch {
	return records.Punch{
		EmployeeID: records.EmployeeID(id),
		Date:       records.NewDate(year, month, day),
		TimeIn:     records.NewClockTime(8, 0),
		TimeOut:    records.NewClockTime(17, 0),
	}
}

func defaultSet(t *testing.T) *tables.Set {
	t.Helper()
	set, err := tables.DefaultSet()
	if err != nil {
		t.Fatalf("DefaultSet() error = %v", err)
	}
	return set
}

func TestNew(t *testing.T) {
	set := defaultSet(t)
	punches := []records.Punch{
		punch("10001", 2022, 6, 20),
		punch("10001.0", 2022, 6, 3),
		punch("10002", 2022, 6, 3),
		punch("10001", 2022, 7, 1),
	}
	employees := []records.Employee{
		{ID: "10002", FirstName: "Antonio", LastName: "Lim", HourlyRate: decimal.NewFromInt(357)},
		{ID: "10001.0", FirstName: "Manuel III", LastName: "Garcia", HourlyRate: decimal.NewFromInt(535)},
	}

	snap, err := New(punches, employees, set, set.Holidays)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if snap.ID == "" {
		t.Error("snapshot ID is empty")
	}
	if snap.PunchCount() != 4 {
		t.Errorf("PunchCount() = %d, want 4", snap.PunchCount())
	}

	roster := snap.Employees()
	if len(roster) != 2 || roster[0].ID != "10002" || roster[1].ID != "10001" {
		t.Errorf("Employees() = %+v, want source order with normalized ids", roster)
	}

	if _, ok := snap.Employee("10001.0"); !ok {
		t.Error("Employee(10001.0) not found")
	}
	if _, ok := snap.Employee("99999"); ok {
		t.Error("Employee(99999) should not be found")
	}

	june := snap.PunchesFor("10001", time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 6, 30, 0, 0, 0, 0, time.UTC))
	if len(june) != 2 {
		t.Fatalf("PunchesFor(June) len = %d, want 2", len(june))
	}
	if june[0].Date.Day() != 3 || june[1].Date.Day() != 20 {
		t.Errorf("PunchesFor() not sorted by date: %v, %v", june[0].Date, june[1].Date)
	}

	firstHalf := snap.PunchesFor("10001", time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC))
	if len(firstHalf) != 1 {
		t.Errorf("PunchesFor(1-15) len = %d, want 1", len(firstHalf))
	}

	inclusiveEnd := snap.PunchesFor("10001", time.Date(2022, 6, 16, 0, 0, 0, 0, time.UTC), time.Date(2022, 6, 20, 23, 0, 0, 0, time.UTC))
	if len(inclusiveEnd) != 1 {
		t.Errorf("PunchesFor(16-20) len = %d, want 1 (end date inclusive)", len(inclusiveEnd))
	}
}

func TestNew_DuplicateEmployee(t *testing.T) {
	set := defaultSet(t)
	employees := []records.Employee{{ID: "10001"}, {ID: "10001.0"}}

	if _, err := New(nil, employees, set, set.Holidays); err == nil {
		t.Error("New() expected error for duplicate employee, got nil")
	}
}

func TestNew_MissingTables(t *testing.T) {
	if _, err := New(nil, nil, nil, nil); err == nil {
		t.Error("New() expected error without tables, got nil")
	}
}

const attendance = `id,first_name,last_name,date,time_in,time_out
10001,Manuel III,Garcia,06/03/2022,8:00,17:00
`

const roster = `id,first_name,last_name,hourly_rate
10001,Manuel III,Garcia,535.71
`

const tablesFile = `holidays:
  - date: 2022-06-12
    kind: regular
    multiplier: 2.0
`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Payroll: config.PayrollConfig{Year: 2022},
		Records: config.RecordsConfig{
			AttendanceFile: writeFixture(t, dir, "attendance.csv", attendance),
			EmployeesFile:  writeFixture(t, dir, "employees.csv", roster),
		},
		Tables: config.TablesConfig{
			Source: "yaml",
			File:   writeFixture(t, dir, "tables.yaml", tablesFile),
		},
		Calendar: config.CalendarConfig{Type: "tables"},
	}
}

func TestLoader_Load(t *testing.T) {
	cfg := fixtureConfig(t)
	loader := NewLoader(cfg, zap.NewNop())

	first, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, err := loader.Load()
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	if first.ID == second.ID {
		t.Error("each load must produce a distinct snapshot")
	}

	h, err := first.Calendar().Classify(time.Date(2022, 6, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if h.Kind != calendar.RegularHoliday {
		t.Errorf("Kind = %v, want RegularHoliday", h.Kind)
	}
}

func TestLoader_SQLiteTables(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Tables.Source = "sqlite"
	cfg.Tables.Database = filepath.Join(t.TempDir(), "tables.db")

	store, err := tables.OpenSQLite(cfg.Tables.Database, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := store.Seed(defaultSet(t)); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	store.Close()

	snap, err := NewLoader(cfg, zap.NewNop()).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Brackets().Len() != 45 {
		t.Errorf("Brackets().Len() = %d, want 45", snap.Brackets().Len())
	}
}

func TestLoader_RemoteCalendar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"year":2022,"holidays":[{"date":"2022-06-13","kind":"special","multiplier":"1.3"}]}`)
	}))
	defer server.Close()

	cfg := fixtureConfig(t)
	cfg.Calendar = config.CalendarConfig{Type: "remote", URL: server.URL + "/{year}"}

	snap, err := NewLoader(cfg, zap.NewNop()).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	h, err := snap.Calendar().Classify(time.Date(2022, 6, 13, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if h.Kind != calendar.SpecialHoliday {
		t.Errorf("Kind = %v, want SpecialHoliday from remote", h.Kind)
	}
}

func TestLoader_RemoteRefetchKeepsEarlierSnapshot(t *testing.T) {
	var body atomic.Value
	body.Store(`{"year":2022,"holidays":[{"date":"2022-06-13","kind":"special","multiplier":"1.3"}]}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body.Load().(string))
	}))
	defer server.Close()

	cfg := fixtureConfig(t)
	cfg.Calendar = config.CalendarConfig{Type: "remote", URL: server.URL + "/{year}", CacheTTL: "1ns"}
	loader := NewLoader(cfg, zap.NewNop())

	first, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	body.Store(`{"year":2022,"holidays":[]}`)
	time.Sleep(time.Millisecond)

	second, err := loader.Load()
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	date := time.Date(2022, 6, 13, 0, 0, 0, 0, time.UTC)

	h, err := first.Calendar().Classify(date)
	if err != nil {
		t.Fatalf("first Classify() error = %v", err)
	}
	if h.Kind != calendar.SpecialHoliday {
		t.Errorf("first snapshot Kind = %v after refetch, want SpecialHoliday", h.Kind)
	}

	h, err = second.Calendar().Classify(date)
	if err != nil {
		t.Fatalf("second Classify() error = %v", err)
	}
	if h.IsHoliday() {
		t.Errorf("second snapshot Kind = %v, want no holiday from refetched table", h.Kind)
	}
}

func TestLoader_RemoteCalendarFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := fixtureConfig(t)
	cfg.Calendar = config.CalendarConfig{Type: "remote", URL: server.URL + "/{year}"}

	snap, err := NewLoader(cfg, zap.NewNop()).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	h, err := snap.Calendar().Classify(time.Date(2022, 6, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if h.Kind != calendar.RegularHoliday {
		t.Errorf("Kind = %v, want RegularHoliday from tables fallback", h.Kind)
	}
}

func TestLoader_MissingAttendance(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Records.AttendanceFile = filepath.Join(t.TempDir(), "missing.csv")

	if _, err := NewLoader(cfg, zap.NewNop()).Load(); err == nil {
		t.Error("Load() expected error for missing attendance, got nil")
	}
}
