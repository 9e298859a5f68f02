package calendar

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FileCalendar implements Calendar interface using a local text file
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	table    *Table
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
	}
}

// Load loads holiday data from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var holidays []Holiday
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: YYYY-MM-DD kind multiplier [note]
		// Example: 2022-06-12 regular 2.0 Independence Day
		fields := strings.Fields(line)
		if len(fields) < 3 {
			fc.logger.Warn("Invalid line format", zap.Int("line", lineNo), zap.String("text", line))
			continue
		}

		date, err := time.Parse("2006-01-02", fields[0])
		if err != nil {
			return fmt.Errorf("line %d: failed to parse date %q: %w", lineNo, fields[0], err)
		}

		kind, err := ParseHolidayKind(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		multiplier, err := decimal.NewFromString(fields[2])
		if err != nil {
			return fmt.Errorf("line %d: failed to parse multiplier %q: %w", lineNo, fields[2], err)
		}

		holidays = append(holidays, Holiday{
			Date:       date,
			Kind:       kind,
			Multiplier: multiplier,
			Note:       strings.Join(fields[3:], " "),
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	table, err := NewTable(holidays)
	if err != nil {
		return fmt.Errorf("invalid calendar file %s: %w", fc.filePath, err)
	}
	fc.table = table

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("holidays", table.Len()))

	return nil
}

// Classify returns the holiday classification for the date
func (fc *FileCalendar) Classify(date time.Time) (Holiday, error) {
	if fc.table == nil {
		return Holiday{}, fmt.Errorf("calendar file not loaded: %s", fc.filePath)
	}
	return fc.table.Classify(date)
}
