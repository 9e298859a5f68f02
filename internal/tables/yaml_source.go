package tables

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/payroll-engine/internal/calendar"
	"github.com/username/payroll-engine/pkg/dateutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// amount decodes YAML scalars such as 135, 22.50 or "1,125.00" exactly
type amount struct {
	decimal.Decimal
	set bool
}

func (a *amount) UnmarshalYAML(value *yaml.Node) error {
	raw := strings.ReplaceAll(strings.TrimSpace(value.Value), ",", "")
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q: %w", value.Line, value.Value, err)
	}
	a.Decimal = d
	a.set = true
	return nil
}

func (a amount) MarshalYAML() (interface{}, error) {
	return a.Decimal.String(), nil
}

// day decodes a YAML date scalar
type day struct {
	time.Time
}

func (d *day) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := dateutil.ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Time = parsed
	return nil
}

func (d day) MarshalYAML() (interface{}, error) {
	return dateutil.DateKey(d.Time), nil
}

type bracketDoc struct {
	Range        string `yaml:"range,omitempty"`
	Lower        amount `yaml:"lower,omitempty"`
	Upper        amount `yaml:"upper,omitempty"`
	Contribution amount `yaml:"contribution"`
}

type taxBracketDoc struct {
	Floor amount `yaml:"floor"`
	Base  amount `yaml:"base"`
	Rate  amount `yaml:"rate"`
}

type holidayDoc struct {
	Date       day    `yaml:"date"`
	Kind       string `yaml:"kind"`
	Multiplier amount `yaml:"multiplier"`
	Note       string `yaml:"note,omitempty"`
}

// tablesDoc is the on-disk layout of a tables file
type tablesDoc struct {
	Brackets    []bracketDoc    `yaml:"brackets"`
	TaxBrackets []taxBracketDoc `yaml:"tax_brackets"`
	Holidays    []holidayDoc    `yaml:"holidays"`
}

// YAMLSource implements Source over a YAML tables file
type YAMLSource struct {
	filePath string
	logger   *zap.Logger
}

// NewYAMLSource creates a new YAMLSource instance
func NewYAMLSource(filePath string, logger *zap.Logger) *YAMLSource {
	return &YAMLSource{
		filePath: filePath,
		logger:   logger,
	}
}

// Load reads and validates the tables file
func (s *YAMLSource) Load() (*Set, error) {
	file, err := os.Open(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open tables file: %w", err)
	}
	defer file.Close()

	set, err := ReadYAML(file, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables from %s: %w", s.filePath, err)
	}

	s.logger.Info("Lookup tables loaded",
		zap.String("file", s.filePath),
		zap.Int("brackets", set.Brackets.Len()),
		zap.Int("tax_brackets", len(set.Tax.Brackets())),
		zap.Int("holidays", set.Holidays.Len()))

	return set, nil
}

// ReadYAML decodes a tables document. Missing sections fall back to the
// built-in schedules; holidays default to none.
func ReadYAML(r io.Reader, logger *zap.Logger) (*Set, error) {
	var doc tablesDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse tables yaml: %w", err)
	}

	brackets := DefaultBrackets()
	if len(doc.Brackets) > 0 {
		brackets = make([]CompensationBracket, 0, len(doc.Brackets))
		for i, bd := range doc.Brackets {
			b, err := bd.toBracket()
			if err != nil {
				return nil, fmt.Errorf("brackets[%d]: %w", i, err)
			}
			brackets = append(brackets, b)
		}
	}

	taxBrackets := DefaultTaxBrackets()
	if len(doc.TaxBrackets) > 0 {
		taxBrackets = make([]TaxBracket, 0, len(doc.TaxBrackets))
		for _, td := range doc.TaxBrackets {
			taxBrackets = append(taxBrackets, TaxBracket{
				Floor: td.Floor.Decimal,
				Base:  td.Base.Decimal,
				Rate:  td.Rate.Decimal,
			})
		}
	}

	holidays := make([]calendar.Holiday, 0, len(doc.Holidays))
	for i, hd := range doc.Holidays {
		kind, err := calendar.ParseHolidayKind(hd.Kind)
		if err != nil {
			return nil, fmt.Errorf("holidays[%d]: %w", i, err)
		}
		if !hd.Multiplier.set {
			return nil, fmt.Errorf("holidays[%d]: multiplier is required", i)
		}
		holidays = append(holidays, calendar.Holiday{
			Date:       hd.Date.Time,
			Kind:       kind,
			Multiplier: hd.Multiplier.Decimal,
			Note:       hd.Note,
		})
	}

	return NewSet(brackets, taxBrackets, holidays, logger)
}

func (bd bracketDoc) toBracket() (CompensationBracket, error) {
	if !bd.Contribution.set {
		return CompensationBracket{}, fmt.Errorf("contribution is required")
	}

	if bd.Range != "" {
		lower, upper, open, err := ParseRange(bd.Range)
		if err != nil {
			return CompensationBracket{}, err
		}
		return CompensationBracket{Lower: lower, Upper: upper, Open: open, Contribution: bd.Contribution.Decimal}, nil
	}

	return CompensationBracket{
		Lower:        bd.Lower.Decimal,
		Upper:        bd.Upper.Decimal,
		Open:         !bd.Upper.set,
		Contribution: bd.Contribution.Decimal,
	}, nil
}

// WriteYAML encodes a Set in the layout ReadYAML accepts
func WriteYAML(w io.Writer, set *Set) error {
	var doc tablesDoc

	for _, b := range set.Brackets.Brackets() {
		doc.Brackets = append(doc.Brackets, bracketDoc{
			Range:        b.Range(),
			Contribution: amount{Decimal: b.Contribution, set: true},
		})
	}
	for _, tb := range set.Tax.Brackets() {
		doc.TaxBrackets = append(doc.TaxBrackets, taxBracketDoc{
			Floor: amount{Decimal: tb.Floor, set: true},
			Base:  amount{Decimal: tb.Base, set: true},
			Rate:  amount{Decimal: tb.Rate, set: true},
		})
	}
	for _, h := range set.Holidays.Holidays() {
		doc.Holidays = append(doc.Holidays, holidayDoc{
			Date:       day{Time: h.Date},
			Kind:       h.Kind.String(),
			Multiplier: amount{Decimal: h.Multiplier, set: true},
			Note:       h.Note,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode tables yaml: %w", err)
	}
	return enc.Close()
}
