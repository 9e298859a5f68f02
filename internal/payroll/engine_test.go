package payroll

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/payroll-engine/internal/calendar"
	"github.com/username/payroll-engine/internal/config"
	"github.com/username/payroll-engine/internal/records"
	"github.com/username/payroll-engine/internal/snapshot"
	"github.com/username/payroll-engine/internal/tables"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// June 2022 for employee 10001 at 100/h:
//
//	06-01 08:00-17:00  8h + 1h overtime
//	06-12 08:00-16:00  regular holiday x2
//	06-13 08:25-16:25  15 minutes late
//	06-20 08:40-16:40  30 minutes late, second half
func testSnapshot(t *testing.T) *snapshot.Snapshot {
	t.Helper()

	set, err := tables.DefaultSet()
	require.NoError(t, err)

	cal, err := calendar.NewTable([]calendar.Holiday{
		{Date: day(6, 12), Kind: calendar.RegularHoliday, Multiplier: d("2")},
	})
	require.NoError(t, err)

	punches := []records.Punch{
		mkPunch("10001", 6, 1, "8:00", "17:00"),
		mkPunch("10001.0", 6, 12, "8:00", "16:00"),
		mkPunch("10001", 6, 13, "8:25", "16:25"),
		mkPunch("10001", 6, 20, "8:40", "16:40"),
		mkPunch("10002", 6, 2, "8:00", "17:00"),
	}
	employees := []records.Employee{
		{ID: "10001", FirstName: "Manuel III", LastName: "Garcia", HourlyRate: d("100")},
		{ID: "10002", FirstName: "Antonio", LastName: "Lim", HourlyRate: d("0")},
		{ID: "10003", FirstName: "Bianca Sofia", LastName: "Aquino", HourlyRate: d("250")},
	}

	snap, err := snapshot.New(punches, employees, set, cal)
	require.NoError(t, err)
	return snap
}

func testEngine(t *testing.T) *Engine {
	return NewEngineWithRules(testSnapshot(t), DefaultRules(), 2022, zap.NewNop())
}

func juneFirstHalf(id string) Request {
	return Request{EmployeeID: id, Year: 2022, Month: 6, Half: FirstHalf, ShiftStart: "8:00"}
}

func TestEngine_ComputeGross(t *testing.T) {
	e := testEngine(t)

	b, err := e.ComputeGross(juneFirstHalf("10001.0"))
	require.NoError(t, err)

	assertDecimal(t, "24", b.RegularHours)
	assertDecimal(t, "1", b.OvertimeHours)
	assertDecimal(t, "3200", b.RegularPay)
	assertDecimal(t, "125", b.OvertimePay)
	assertDecimal(t, "800", b.HolidayPremium)
	assertDecimal(t, "3325", b.Gross)
	assert.Len(t, b.Days, 3)
}

func TestEngine_ComputeNet(t *testing.T) {
	e := testEngine(t)

	net, err := e.ComputeNet(juneFirstHalf("10001"))
	require.NoError(t, err)

	ded := net.Deductions
	assertDecimal(t, "157.5", ded.SocialInsurance)
	assertDecimal(t, "49.875", ded.HealthInsurance)
	assertDecimal(t, "100", ded.HousingFund)
	assertDecimal(t, "75", ded.Tardiness, "whole-month tardiness")
	assertDecimal(t, "0", ded.WithholdingTax)
	assertDecimal(t, "382.375", ded.Total)

	assertDecimal(t, "3017.625", net.TaxableIncome)
	assertDecimal(t, "2942.625", net.Net)
	assertDecimal(t, "25", net.HoursWorked)
	assert.True(t, net.Net.LessThanOrEqual(net.Breakdown.Gross))
}

func TestEngine_ComputeDeductions(t *testing.T) {
	e := testEngine(t)

	ded, err := e.ComputeDeductions(juneFirstHalf("10001"))
	require.NoError(t, err)
	assertDecimal(t, "382.375", ded.Total)
}

func TestEngine_LaterShiftStartReducesTardiness(t *testing.T) {
	e := testEngine(t)

	req := juneFirstHalf("10001")
	req.ShiftStart = "8:30"

	ded, err := e.ComputeDeductions(req)
	require.NoError(t, err)
	// threshold 8:40, so neither punch is late
	assertDecimal(t, "0", ded.Tardiness)
}

func TestEngine_NoAttendance(t *testing.T) {
	e := testEngine(t)

	net, err := e.ComputeNet(juneFirstHalf("10003"))
	require.NoError(t, err)

	assertDecimal(t, "0", net.Breakdown.Gross)
	assertDecimal(t, "0", net.Deductions.SocialInsurance)
	assertDecimal(t, "0", net.Net)
}

func TestEngine_Validation(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"empty id", func(r *Request) { r.EmployeeID = " " }, ErrInvalidArgument},
		{"month too large", func(r *Request) { r.Month = 13 }, ErrInvalidArgument},
		{"month zero", func(r *Request) { r.Month = 0 }, ErrInvalidArgument},
		{"other year", func(r *Request) { r.Year = 2023 }, ErrInvalidArgument},
		{"missing shift start", func(r *Request) { r.ShiftStart = "" }, ErrInvalidArgument},
		{"bad shift start", func(r *Request) { r.ShiftStart = "eight" }, ErrInvalidArgument},
		{"unknown employee", func(r *Request) { r.EmployeeID = "99999" }, ErrEmployeeNotFound},
		{"zero rate", func(r *Request) { r.EmployeeID = "10002" }, ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := juneFirstHalf("10001")
			tt.mutate(&req)

			_, err := e.ComputeGross(req)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = e.ComputeNet(req)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = e.ComputeDeductions(req)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = e.Payslip(req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEngine_DeductionFailureAborts(t *testing.T) {
	e := testEngine(t)

	gapped, err := tables.NewBracketTable([]tables.CompensationBracket{
		{Lower: d("0"), Upper: d("1000"), Contribution: d("10")},
	})
	require.NoError(t, err)

	registry := NewRegistry()
	require.NoError(t, registry.Register(DeductionSocialInsurance, SocialInsurance(gapped)))

	_, err = e.WithRegistry(registry).ComputeNet(juneFirstHalf("10001"))
	assert.ErrorIs(t, err, ErrLookupMiss)

	// the receiver keeps the standard registry
	_, err = e.ComputeNet(juneFirstHalf("10001"))
	assert.NoError(t, err)
}

func TestEngine_Payslip(t *testing.T) {
	e := testEngine(t)

	slip, err := e.Payslip(juneFirstHalf("10001"))
	require.NoError(t, err)

	assert.Equal(t, records.EmployeeID("10001"), slip.Employee.ID)
	assert.Equal(t, e.Snapshot().ID, slip.SnapshotID)
	assert.Equal(t, "2022-06 1-15", slip.Period.String())
	assertDecimal(t, "2942.625", slip.Pay.Net)
}

func TestEngine_InfoLogPerEntryPoint(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := NewEngineWithRules(testSnapshot(t), DefaultRules(), 2022, zap.New(core))

	_, err := e.ComputeDeductions(juneFirstHalf("10001"))
	require.NoError(t, err)
	assert.Zero(t, logs.Len(), "deductions stay at debug level")

	_, err = e.ComputeNet(juneFirstHalf("10001"))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Net pay computed").Len())

	_, err = e.Payslip(juneFirstHalf("10001"))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("Payslip built").Len())
	assert.Equal(t, 2, logs.Len())
}

func TestEngine_ConcurrentIdempotent(t *testing.T) {
	e := testEngine(t)

	var wg sync.WaitGroup
	results := make([]NetPay, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.ComputeNet(juneFirstHalf("10001"))
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.True(t, results[i].Net.Equal(results[0].Net))
	}
}

type staticSource struct {
	punches   []records.Punch
	employees []records.Employee
}

func (s *staticSource) Punches() ([]records.Punch, error)      { return s.punches, nil }
func (s *staticSource) Employees() ([]records.Employee, error) { return s.employees, nil }

func TestSession_Reload(t *testing.T) {
	tablesFile := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(tablesFile, []byte("holidays: []\n"), 0o644))

	cfg := &config.Config{
		Payroll:  config.PayrollConfig{Year: 2022, LateGrace: "10m"},
		Tables:   config.TablesConfig{Source: "yaml", File: tablesFile},
		Calendar: config.CalendarConfig{Type: "tables"},
	}
	cfg.Payroll.Rules = config.RulesConfig{
		RegularHoursPerDay: 8, DayOvertimeRate: 1.25, NightOvertimeRate: 1.10, HolidayPremiumCap: 1.3,
		HealthCeiling: 60000, HealthMax: 1800, HealthRate: 0.03, HealthEmployeeShare: 0.5,
		HousingLowFloor: 1000, HousingLowCeiling: 1500, HousingLowRate: 0.03, HousingRate: 0.04, HousingCap: 100,
	}

	source := &staticSource{
		punches:   []records.Punch{mkPunch("10001", 6, 1, "8:00", "16:00")},
		employees: []records.Employee{{ID: "10001", HourlyRate: d("100")}},
	}

	session, err := NewSession(cfg, snapshot.NewLoaderWithSource(cfg, source, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	before := session.Engine()
	b, err := before.ComputeGross(juneFirstHalf("10001"))
	require.NoError(t, err)
	assertDecimal(t, "800", b.Gross)

	source.punches = append(source.punches, mkPunch("10001", 6, 2, "8:00", "16:00"))
	require.NoError(t, session.Reload())

	after := session.Engine()
	assert.NotEqual(t, before.Snapshot().ID, after.Snapshot().ID)

	b, err = after.ComputeGross(juneFirstHalf("10001"))
	require.NoError(t, err)
	assertDecimal(t, "1600", b.Gross)

	// the old engine still sees its own snapshot
	b, err = before.ComputeGross(juneFirstHalf("10001"))
	require.NoError(t, err)
	assertDecimal(t, "800", b.Gross)
}
