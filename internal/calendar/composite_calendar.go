package calendar

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// loader is implemented by calendars that read their data lazily
type loader interface {
	Load() error
}

// CompositeCalendar implements Calendar with fallback strategy
// Primary: RemoteCalendar (HTTP)
// Fallback: FileCalendar or the holiday table from the lookup tables
type CompositeCalendar struct {
	primary  Calendar
	fallback Calendar
	logger   *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(primary, fallback Calendar, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Classify asks the primary calendar first and consults the fallback on error
func (cc *CompositeCalendar) Classify(date time.Time) (Holiday, error) {
	holiday, err := cc.primary.Classify(date)
	if err == nil {
		return holiday, nil
	}

	cc.logger.Warn("Primary holiday calendar failed, using fallback",
		zap.String("date", date.Format("2006-01-02")),
		zap.Error(err))

	holiday, fallbackErr := cc.fallback.Classify(date)
	if fallbackErr != nil {
		return Holiday{}, fmt.Errorf("no calendar could classify %s: %w", date.Format("2006-01-02"), fallbackErr)
	}
	return holiday, nil
}

// LoadFallback loads the fallback calendar when it reads from disk
func (cc *CompositeCalendar) LoadFallback() error {
	l, ok := cc.fallback.(loader)
	if !ok {
		return nil
	}
	if err := l.Load(); err != nil {
		return fmt.Errorf("failed to load fallback calendar: %w", err)
	}
	cc.logger.Debug("Fallback holiday calendar loaded")
	return nil
}
