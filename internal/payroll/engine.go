package payroll

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/config"
	"github.com/username/payroll-engine/internal/records"
	"github.com/username/payroll-engine/internal/snapshot"
	"github.com/username/payroll-engine/pkg/dateutil"
	"go.uber.org/zap"
)

// Request identifies one employee's pay period calculation
type Request struct {
	EmployeeID string
	Year       int
	Month      int
	Half       Half
	NightShift bool
	ShiftStart string // H:mm, used for the tardiness threshold
}

type validRequest struct {
	id         records.EmployeeID
	period     Period
	night      bool
	shiftStart int
}

// Payslip is the complete result for one employee and period
type Payslip struct {
	Employee    records.Employee
	Period      Period
	NightShift  bool
	Pay         NetPay
	SnapshotID  string
	GeneratedAt time.Time
}

// Engine computes payroll against one immutable Snapshot. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	snapshot *snapshot.Snapshot
	rules    Rules
	year     int
	registry *Registry
	logger   *zap.Logger
}

// NewEngine creates an Engine using the configured rules and payroll year
func NewEngine(cfg *config.Config, snap *snapshot.Snapshot, logger *zap.Logger) *Engine {
	return NewEngineWithRules(snap, RulesFromConfig(cfg.Payroll), cfg.Payroll.Year, logger)
}

// NewEngineWithRules creates an Engine with explicit rules
func NewEngineWithRules(snap *snapshot.Snapshot, rules Rules, year int, logger *zap.Logger) *Engine {
	return &Engine{
		snapshot: snap,
		rules:    rules,
		year:     year,
		registry: StandardRegistry(snap.Brackets(), rules),
		logger:   logger,
	}
}

// WithRegistry returns a copy of the engine using a different deduction registry
func (e *Engine) WithRegistry(registry *Registry) *Engine {
	clone := *e
	clone.registry = registry
	return &clone
}

// Snapshot returns the snapshot the engine calculates against
func (e *Engine) Snapshot() *snapshot.Snapshot {
	return e.snapshot
}

// Year returns the payroll year requests must match
func (e *Engine) Year() int {
	return e.year
}

func (e *Engine) validate(req Request) (validRequest, error) {
	id := records.NormalizeEmployeeID(req.EmployeeID)
	if id == "" {
		return validRequest{}, fmt.Errorf("%w: employee id is required", ErrInvalidArgument)
	}

	period, err := NewPeriod(req.Year, req.Month, req.Half)
	if err != nil {
		return validRequest{}, err
	}
	if req.Year != e.year {
		return validRequest{}, fmt.Errorf("%w: year %d is outside payroll year %d", ErrInvalidArgument, req.Year, e.year)
	}

	if strings.TrimSpace(req.ShiftStart) == "" {
		return validRequest{}, fmt.Errorf("%w: shift start time is required", ErrInvalidArgument)
	}
	shiftStart, err := dateutil.ParseClock(req.ShiftStart)
	if err != nil {
		return validRequest{}, fmt.Errorf("%w: shift start: %v", ErrInvalidArgument, err)
	}

	return validRequest{id: id, period: period, night: req.NightShift, shiftStart: shiftStart}, nil
}

func (e *Engine) employee(id records.EmployeeID) (records.Employee, error) {
	emp, ok := e.snapshot.Employee(id)
	if !ok {
		return records.Employee{}, fmt.Errorf("%w: %s", ErrEmployeeNotFound, id)
	}
	return emp, nil
}

func (e *Engine) gross(vr validRequest, emp records.Employee) (PayBreakdown, error) {
	punches := e.snapshot.PunchesFor(vr.id, vr.period.Start(), vr.period.End())

	hours, err := Aggregate(punches, vr.id, vr.period, e.snapshot.Calendar(), e.rules)
	if err != nil {
		return PayBreakdown{}, fmt.Errorf("failed to aggregate attendance: %w", err)
	}

	breakdown, err := Gross(hours, emp.HourlyRate, vr.night, e.rules)
	if err != nil {
		return PayBreakdown{}, fmt.Errorf("employee %s: %w", emp.ID, err)
	}

	e.logger.Debug("Gross computed",
		zap.String("employee_id", emp.ID.String()),
		zap.String("period", vr.period.String()),
		zap.Int("days", len(hours.Days)),
		zap.String("regular_hours", breakdown.RegularHours.String()),
		zap.String("overtime_hours", breakdown.OvertimeHours.String()),
		zap.String("gross", breakdown.Gross.StringFixed(2)))

	return breakdown, nil
}

func (e *Engine) deductions(vr validRequest, emp records.Employee, breakdown PayBreakdown) (DeductionSet, error) {
	input := DeductionInput{
		Employee:      emp,
		Period:        vr.period,
		Gross:         breakdown.Gross,
		MonthPunches:  e.snapshot.PunchesFor(vr.id, vr.period.MonthStart(), vr.period.MonthEnd()),
		LateThreshold: e.rules.LateThreshold(vr.shiftStart),
	}

	amounts, err := e.registry.Apply(input)
	if err != nil {
		return DeductionSet{}, fmt.Errorf("employee %s: deduction failed: %w", emp.ID, err)
	}

	partial := NewDeductionSet(amounts, decimal.Zero)
	taxable := TaxableIncome(breakdown.Gross, partial.SocialInsurance, partial.HealthInsurance, partial.HousingFund)

	return NewDeductionSet(amounts, WithholdingTax(e.snapshot.TaxTable(), taxable)), nil
}

// resolve validates the request and looks up its employee
func (e *Engine) resolve(req Request) (validRequest, records.Employee, error) {
	vr, err := e.validate(req)
	if err != nil {
		return validRequest{}, records.Employee{}, err
	}
	emp, err := e.employee(vr.id)
	if err != nil {
		return validRequest{}, records.Employee{}, err
	}
	return vr, emp, nil
}

func (e *Engine) computeNet(vr validRequest, emp records.Employee) (NetPay, error) {
	breakdown, err := e.gross(vr, emp)
	if err != nil {
		return NetPay{}, err
	}

	deductions, err := e.deductions(vr, emp, breakdown)
	if err != nil {
		return NetPay{}, err
	}

	taxable := TaxableIncome(breakdown.Gross, deductions.SocialInsurance, deductions.HealthInsurance, deductions.HousingFund)
	return ComputeNet(breakdown, deductions, taxable), nil
}

// ComputeGross returns the gross pay breakdown for the request
func (e *Engine) ComputeGross(req Request) (PayBreakdown, error) {
	vr, emp, err := e.resolve(req)
	if err != nil {
		return PayBreakdown{}, err
	}
	return e.gross(vr, emp)
}

// ComputeDeductions returns every deduction for the request
func (e *Engine) ComputeDeductions(req Request) (DeductionSet, error) {
	vr, emp, err := e.resolve(req)
	if err != nil {
		return DeductionSet{}, err
	}
	net, err := e.computeNet(vr, emp)
	if err != nil {
		return DeductionSet{}, err
	}

	e.logger.Debug("Deductions computed",
		zap.String("employee_id", emp.ID.String()),
		zap.String("period", vr.period.String()),
		zap.String("total", net.Deductions.Total.StringFixed(2)))

	return net.Deductions, nil
}

// ComputeNet returns gross, deductions and net pay for the request
func (e *Engine) ComputeNet(req Request) (NetPay, error) {
	vr, emp, err := e.resolve(req)
	if err != nil {
		return NetPay{}, err
	}
	net, err := e.computeNet(vr, emp)
	if err != nil {
		return NetPay{}, err
	}

	e.logger.Info("Net pay computed",
		zap.String("employee_id", emp.ID.String()),
		zap.String("period", vr.period.String()),
		zap.String("gross", net.Breakdown.Gross.StringFixed(2)),
		zap.String("deductions", net.Deductions.Total.StringFixed(2)),
		zap.String("net", net.Net.StringFixed(2)))

	return net, nil
}

// Payslip returns the complete payslip for the request
func (e *Engine) Payslip(req Request) (Payslip, error) {
	vr, emp, err := e.resolve(req)
	if err != nil {
		return Payslip{}, err
	}
	net, err := e.computeNet(vr, emp)
	if err != nil {
		return Payslip{}, err
	}

	e.logger.Info("Payslip built",
		zap.String("employee_id", emp.ID.String()),
		zap.String("period", vr.period.String()),
		zap.String("net", net.Net.StringFixed(2)))

	return Payslip{
		Employee:    emp,
		Period:      vr.period,
		NightShift:  vr.night,
		Pay:         net,
		SnapshotID:  e.snapshot.ID,
		GeneratedAt: time.Now(),
	}, nil
}
