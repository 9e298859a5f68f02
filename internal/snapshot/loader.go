package snapshot

import (
	"fmt"

	"github.com/username/payroll-engine/internal/calendar"
	"github.com/username/payroll-engine/internal/config"
	"github.com/username/payroll-engine/internal/records"
	"github.com/username/payroll-engine/internal/tables"
	"go.uber.org/zap"
)

// Loader builds Snapshots from the configured sources. Each call to Load
// produces an independent Snapshot. The remote holiday cache is shared
// between loads so reloads within the TTL do not refetch, but each
// Snapshot pins the tables it was loaded with.
type Loader struct {
	config *config.Config
	logger *zap.Logger
	source records.Source
	remote *calendar.RemoteCalendar
}

// NewLoader creates a Loader reading records from the configured CSV files
func NewLoader(cfg *config.Config, logger *zap.Logger) *Loader {
	return NewLoaderWithSource(cfg, records.NewCSVSource(cfg.Records.AttendanceFile, cfg.Records.EmployeesFile, logger), logger)
}

// NewLoaderWithSource creates a Loader with a custom record source
func NewLoaderWithSource(cfg *config.Config, source records.Source, logger *zap.Logger) *Loader {
	l := &Loader{
		config: cfg,
		logger: logger,
		source: source,
	}
	if cfg.Calendar.Type == "remote" {
		l.remote = calendar.NewRemoteCalendar(cfg.Calendar.URL, cfg.Calendar.GetCacheTTL(), logger)
	}
	return l
}

// Load reads every source and returns a new Snapshot
func (l *Loader) Load() (*Snapshot, error) {
	punches, err := l.source.Punches()
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	employees, err := l.source.Employees()
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	set, err := l.loadTables()
	if err != nil {
		return nil, err
	}

	cal, err := l.buildCalendar(set)
	if err != nil {
		return nil, err
	}

	snap, err := New(punches, employees, set, cal)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}

	l.logger.Info("Payroll snapshot loaded",
		zap.String("snapshot_id", snap.ID),
		zap.Int("punches", snap.PunchCount()),
		zap.Int("employees", len(employees)),
		zap.String("tables_source", l.config.Tables.Source),
		zap.String("calendar", l.config.Calendar.Type))

	return snap, nil
}

func (l *Loader) loadTables() (*tables.Set, error) {
	switch l.config.Tables.Source {
	case "sqlite":
		store, err := tables.OpenSQLite(l.config.Tables.Database, l.logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load()
	default:
		return tables.NewYAMLSource(l.config.Tables.File, l.logger).Load()
	}
}

func (l *Loader) buildCalendar(set *tables.Set) (calendar.Calendar, error) {
	switch l.config.Calendar.Type {
	case "file":
		fc := calendar.NewFileCalendar(l.config.Calendar.File, l.logger)
		if err := fc.Load(); err != nil {
			return nil, fmt.Errorf("failed to load holiday calendar: %w", err)
		}
		return fc, nil

	case "remote":
		var fallback calendar.Calendar = set.Holidays
		if l.config.Calendar.File != "" {
			fallback = calendar.NewFileCalendar(l.config.Calendar.File, l.logger)
		}
		preloadErr := l.remote.Preload(l.config.Payroll.Year)

		// the snapshot keeps the tables fetched so far even if a later reload refetches
		composite := calendar.NewCompositeCalendar(l.remote.Pin(), fallback, l.logger)

		fallbackErr := composite.LoadFallback()
		if fallbackErr != nil {
			l.logger.Warn("Failed to load fallback calendar, continuing with remote only",
				zap.Error(fallbackErr))
		}

		if preloadErr != nil {
			if fallbackErr != nil {
				return nil, fmt.Errorf("no holiday calendar available (remote: %v): %w", preloadErr, fallbackErr)
			}
			l.logger.Warn("Remote holiday calendar unavailable, using fallback",
				zap.Int("year", l.config.Payroll.Year),
				zap.Error(preloadErr))
			return fallback, nil
		}
		return composite, nil

	default:
		l.logger.Info("Using holiday table from lookup tables",
			zap.Int("holidays", set.Holidays.Len()))
		return set.Holidays, nil
	}
}
