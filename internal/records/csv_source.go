package records

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Source provides attendance punches and the employee roster
type Source interface {
	Punches() ([]Punch, error)
	Employees() ([]Employee, error)
}

// employeeRow is the CSV shape of a roster entry
type employeeRow struct {
	ID         EmployeeID `csv:"id"`
	FirstName  string     `csv:"first_name"`
	LastName   string     `csv:"last_name"`
	HourlyRate string     `csv:"hourly_rate"`
}

// CSVSource implements Source using two local CSV files
type CSVSource struct {
	attendancePath string
	employeesPath  string
	logger         *zap.Logger
}

// NewCSVSource creates a new CSVSource instance
func NewCSVSource(attendancePath, employeesPath string, logger *zap.Logger) *CSVSource {
	return &CSVSource{
		attendancePath: attendancePath,
		employeesPath:  employeesPath,
		logger:         logger,
	}
}

// Punches loads attendance punches from the attendance CSV file
func (s *CSVSource) Punches() ([]Punch, error) {
	file, err := os.Open(s.attendancePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open attendance file: %w", err)
	}
	defer file.Close()

	punches, err := ReadPunches(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.attendancePath, err)
	}

	s.logger.Info("Attendance records loaded",
		zap.String("file", s.attendancePath),
		zap.Int("punches", len(punches)))

	return punches, nil
}

// Employees loads the roster from the employees CSV file
func (s *CSVSource) Employees() ([]Employee, error) {
	file, err := os.Open(s.employeesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open employees file: %w", err)
	}
	defer file.Close()

	employees, err := ReadEmployees(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.employeesPath, err)
	}

	s.logger.Info("Employee roster loaded",
		zap.String("file", s.employeesPath),
		zap.Int("employees", len(employees)))

	return employees, nil
}

// ReadPunches decodes attendance CSV with header
// id,first_name,last_name,date,time_in,time_out
func ReadPunches(r io.Reader) ([]Punch, error) {
	var punches []Punch
	if err := gocsv.Unmarshal(r, &punches); err != nil {
		return nil, fmt.Errorf("failed to decode attendance csv: %w", err)
	}

	for i, p := range punches {
		if p.EmployeeID == "" {
			return nil, fmt.Errorf("attendance row %d: empty employee id", i+1)
		}
		if p.Date.IsZero() {
			return nil, fmt.Errorf("attendance row %d: missing date", i+1)
		}
	}

	return punches, nil
}

// ReadEmployees decodes roster CSV with header id,first_name,last_name,hourly_rate
func ReadEmployees(r io.Reader) ([]Employee, error) {
	var rows []employeeRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode employees csv: %w", err)
	}

	employees := make([]Employee, 0, len(rows))
	for i, row := range rows {
		if row.ID == "" {
			return nil, fmt.Errorf("employee row %d: empty employee id", i+1)
		}

		// Rates exported from spreadsheets may carry thousands separators
		rateStr := strings.ReplaceAll(strings.TrimSpace(row.HourlyRate), ",", "")
		rate := decimal.Zero
		if rateStr != "" {
			parsed, err := decimal.NewFromString(rateStr)
			if err != nil {
				return nil, fmt.Errorf("employee %s: invalid hourly rate %q: %w", row.ID, row.HourlyRate, err)
			}
			rate = parsed
		}

		employees = append(employees, Employee{
			ID:         row.ID,
			FirstName:  strings.TrimSpace(row.FirstName),
			LastName:   strings.TrimSpace(row.LastName),
			HourlyRate: rate,
		})
	}

	return employees, nil
}
