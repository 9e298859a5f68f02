package calendar

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
)

// RemoteCalendar implements Calendar using a JSON holiday table served over HTTP.
// Years are fetched by Preload only; Classify never performs network calls.
// Snapshots hold a Pin of the cache, never the live calendar.
type RemoteCalendar struct {
	httpClient  *http.Client
	logger      *zap.Logger
	urlTemplate string // e.g. https://example.org/holidays/{year}.json
	cacheTTL    time.Duration
	cache       map[int]*cachedYear
	cacheMu     sync.RWMutex
}

type cachedYear struct {
	table     *Table
	fetchedAt time.Time
}

// remoteYear represents the JSON document served per year
type remoteYear struct {
	Year     int             `json:"year"`
	Holidays []remoteHoliday `json:"holidays"`
}

type remoteHoliday struct {
	Date       string          `json:"date"` // "YYYY-MM-DD"
	Kind       string          `json:"kind"` // "regular" or "special"
	Multiplier decimal.Decimal `json:"multiplier"`
	Note       string          `json:"note,omitempty"`
}

// NewRemoteCalendar creates a new RemoteCalendar instance
func NewRemoteCalendar(urlTemplate string, cacheTTL time.Duration, logger *zap.Logger) *RemoteCalendar {
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}

	return &RemoteCalendar{
		httpClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
		logger:      logger,
		urlTemplate: urlTemplate,
		cacheTTL:    cacheTTL,
		cache:       make(map[int]*cachedYear),
	}
}

// Preload fetches the holiday table for the year unless a fresh copy is cached
func (c *RemoteCalendar) Preload(year int) error {
	c.cacheMu.RLock()
	cached, ok := c.cache[year]
	c.cacheMu.RUnlock()

	if ok && time.Since(cached.fetchedAt) < c.cacheTTL {
		c.logger.Debug("Using cached holiday table", zap.Int("year", year))
		return nil
	}

	table, err := c.fetchYear(year)
	if err != nil {
		return err
	}

	c.cacheMu.Lock()
	c.cache[year] = &cachedYear{
		table:     table,
		fetchedAt: time.Now(),
	}
	c.cacheMu.Unlock()

	return nil
}

// Classify returns the holiday classification from the preloaded year
func (c *RemoteCalendar) Classify(date time.Time) (Holiday, error) {
	c.cacheMu.RLock()
	cached, ok := c.cache[date.Year()]
	c.cacheMu.RUnlock()

	if !ok {
		return Holiday{}, fmt.Errorf("holiday table for %d not loaded", date.Year())
	}

	return cached.table.Classify(date)
}

// Pin returns a calendar over the years cached right now.
// Later preloads and ClearCache do not change it.
func (c *RemoteCalendar) Pin() Calendar {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	years := make(yearTables, len(c.cache))
	for year, cached := range c.cache {
		years[year] = cached.table
	}
	return years
}

// yearTables is a fixed set of per-year holiday tables
type yearTables map[int]*Table

func (y yearTables) Classify(date time.Time) (Holiday, error) {
	table, ok := y[date.Year()]
	if !ok {
		return Holiday{}, fmt.Errorf("holiday table for %d not loaded", date.Year())
	}
	return table.Classify(date)
}

// fetchYear downloads and parses one year of holidays
func (c *RemoteCalendar) fetchYear(year int) (*Table, error) {
	url := strings.ReplaceAll(c.urlTemplate, "{year}", strconv.Itoa(year))

	c.logger.Info("Downloading holiday table",
		zap.String("url", url),
		zap.Int("year", year))

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holiday table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday API returned status %d", resp.StatusCode)
	}

	var doc remoteYear
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse holiday JSON: %w", err)
	}

	if doc.Year != 0 && doc.Year != year {
		return nil, fmt.Errorf("holiday API returned year %d, want %d", doc.Year, year)
	}

	holidays := make([]Holiday, 0, len(doc.Holidays))
	for _, rh := range doc.Holidays {
		date, err := time.Parse("2006-01-02", rh.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", rh.Date, err)
		}
		kind, err := ParseHolidayKind(rh.Kind)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, Holiday{
			Date:       date,
			Kind:       kind,
			Multiplier: rh.Multiplier,
			Note:       rh.Note,
		})
	}

	table, err := NewTable(holidays)
	if err != nil {
		return nil, fmt.Errorf("invalid holiday table for %d: %w", year, err)
	}

	c.logger.Info("Holiday table downloaded",
		zap.Int("year", year),
		zap.Int("holidays", table.Len()))

	return table, nil
}

// ClearCache clears the cache
func (c *RemoteCalendar) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache = make(map[int]*cachedYear)
	c.logger.Info("Holiday cache cleared")
}
