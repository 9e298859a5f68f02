package tables

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/calendar"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// bracketRecord is the compensation_brackets row
type bracketRecord struct {
	ID           uint            `gorm:"primarykey"`
	Position     int             `gorm:"not null;uniqueIndex"`
	Lower        decimal.Decimal `gorm:"type:text;not null"`
	Upper        decimal.Decimal `gorm:"type:text"`
	Open         bool            `gorm:"not null;default:false"`
	Contribution decimal.Decimal `gorm:"type:text;not null"`
}

func (bracketRecord) TableName() string { return "compensation_brackets" }

// taxBracketRecord is the tax_brackets row
type taxBracketRecord struct {
	ID       uint            `gorm:"primarykey"`
	Position int             `gorm:"not null;uniqueIndex"`
	Floor    decimal.Decimal `gorm:"type:text;not null"`
	Base     decimal.Decimal `gorm:"type:text;not null"`
	Rate     decimal.Decimal `gorm:"type:text;not null"`
}

func (taxBracketRecord) TableName() string { return "tax_brackets" }

// holidayRecord is the holidays row
type holidayRecord struct {
	ID         uint            `gorm:"primarykey"`
	Date       string          `gorm:"not null;uniqueIndex"` // YYYY-MM-DD
	Kind       string          `gorm:"not null"`
	Multiplier decimal.Decimal `gorm:"type:text;not null"`
	Note       string
}

func (holidayRecord) TableName() string { return "holidays" }

// SQLiteStore implements Source over a SQLite database and can be seeded
// from another Set
type SQLiteStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database and migrates the schema
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open tables database: %w", err)
	}

	if err := db.AutoMigrate(&bracketRecord{}, &taxBracketRecord{}, &holidayRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables database: %w", err)
	}

	logger.Info("Tables database opened", zap.String("path", path))

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Seed replaces every stored table with the contents of set
func (s *SQLiteStore) Seed(set *Set) error {
	brackets := set.Brackets.Brackets()
	bracketRows := make([]bracketRecord, 0, len(brackets))
	for i, b := range brackets {
		bracketRows = append(bracketRows, bracketRecord{
			Position:     i,
			Lower:        b.Lower,
			Upper:        b.Upper,
			Open:         b.Open,
			Contribution: b.Contribution,
		})
	}

	taxBrackets := set.Tax.Brackets()
	taxRows := make([]taxBracketRecord, 0, len(taxBrackets))
	for i, tb := range taxBrackets {
		taxRows = append(taxRows, taxBracketRecord{Position: i, Floor: tb.Floor, Base: tb.Base, Rate: tb.Rate})
	}

	holidayRows := make([]holidayRecord, 0, set.Holidays.Len())
	for _, h := range set.Holidays.Holidays() {
		holidayRows = append(holidayRows, holidayRecord{
			Date:       h.Date.Format("2006-01-02"),
			Kind:       h.Kind.String(),
			Multiplier: h.Multiplier,
			Note:       h.Note,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&bracketRecord{}, &taxBracketRecord{}, &holidayRecord{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&bracketRows).Error; err != nil {
			return err
		}
		if err := tx.Create(&taxRows).Error; err != nil {
			return err
		}
		if len(holidayRows) > 0 {
			if err := tx.Create(&holidayRows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed tables database: %w", err)
	}

	s.logger.Info("Tables database seeded",
		zap.Int("brackets", len(bracketRows)),
		zap.Int("tax_brackets", len(taxRows)),
		zap.Int("holidays", len(holidayRows)))

	return nil
}

// Load reads and validates every stored table
func (s *SQLiteStore) Load() (*Set, error) {
	var bracketRows []bracketRecord
	if err := s.db.Order("position").Find(&bracketRows).Error; err != nil {
		return nil, fmt.Errorf("failed to query compensation brackets: %w", err)
	}
	if len(bracketRows) == 0 {
		return nil, fmt.Errorf("tables database has no compensation brackets; run 'tables seed' first")
	}

	var taxRows []taxBracketRecord
	if err := s.db.Order("position").Find(&taxRows).Error; err != nil {
		return nil, fmt.Errorf("failed to query tax brackets: %w", err)
	}

	var holidayRows []holidayRecord
	if err := s.db.Order("date").Find(&holidayRows).Error; err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}

	brackets := make([]CompensationBracket, 0, len(bracketRows))
	for _, r := range bracketRows {
		brackets = append(brackets, CompensationBracket{
			Lower:        r.Lower,
			Upper:        r.Upper,
			Open:         r.Open,
			Contribution: r.Contribution,
		})
	}

	taxBrackets := make([]TaxBracket, 0, len(taxRows))
	for _, r := range taxRows {
		taxBrackets = append(taxBrackets, TaxBracket{Floor: r.Floor, Base: r.Base, Rate: r.Rate})
	}

	holidays := make([]calendar.Holiday, 0, len(holidayRows))
	for _, r := range holidayRows {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, fmt.Errorf("holiday row %d: invalid date %q: %w", r.ID, r.Date, err)
		}
		kind, err := calendar.ParseHolidayKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("holiday row %d: %w", r.ID, err)
		}
		holidays = append(holidays, calendar.Holiday{
			Date:       date,
			Kind:       kind,
			Multiplier: r.Multiplier,
			Note:       r.Note,
		})
	}

	set, err := NewSet(brackets, taxBrackets, holidays, s.logger)
	if err != nil {
		return nil, fmt.Errorf("invalid tables in database: %w", err)
	}

	s.logger.Info("Lookup tables loaded from database",
		zap.Int("brackets", set.Brackets.Len()),
		zap.Int("tax_brackets", len(taxBrackets)),
		zap.Int("holidays", set.Holidays.Len()))

	return set, nil
}
