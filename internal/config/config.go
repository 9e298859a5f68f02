package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/username/payroll-engine/pkg/dateutil"
)

// Config represents application configuration
type Config struct {
	Payroll  PayrollConfig  `mapstructure:"payroll"`
	Records  RecordsConfig  `mapstructure:"records"`
	Tables   TablesConfig   `mapstructure:"tables"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

// PayrollConfig represents the payroll session settings
type PayrollConfig struct {
	Year       int         `mapstructure:"year"`        // Only periods in this year are accepted
	ShiftStart string      `mapstructure:"shift_start"` // Default shift start (H:mm)
	LateGrace  string      `mapstructure:"late_grace"`  // Grace period before tardiness accrues
	Rules      RulesConfig `mapstructure:"rules"`
}

// RulesConfig holds the statutory rule constants
type RulesConfig struct {
	RegularHoursPerDay  float64 `mapstructure:"regular_hours_per_day"`
	DayOvertimeRate     float64 `mapstructure:"day_overtime_rate"`
	NightOvertimeRate   float64 `mapstructure:"night_overtime_rate"`
	HolidayPremiumCap   float64 `mapstructure:"holiday_premium_cap"`
	HealthCeiling       float64 `mapstructure:"health_ceiling"`
	HealthMax           float64 `mapstructure:"health_max"`
	HealthRate          float64 `mapstructure:"health_rate"`
	HealthEmployeeShare float64 `mapstructure:"health_employee_share"`
	HousingLowFloor     float64 `mapstructure:"housing_low_floor"`
	HousingLowCeiling   float64 `mapstructure:"housing_low_ceiling"`
	HousingLowRate      float64 `mapstructure:"housing_low_rate"`
	HousingRate         float64 `mapstructure:"housing_rate"`
	HousingCap          float64 `mapstructure:"housing_cap"`
}

// RecordsConfig represents the attendance and roster sources
type RecordsConfig struct {
	AttendanceFile string `mapstructure:"attendance_file"`
	EmployeesFile  string `mapstructure:"employees_file"`
}

// TablesConfig represents the lookup table source
type TablesConfig struct {
	Source   string `mapstructure:"source"` // "yaml" or "sqlite"
	File     string `mapstructure:"file"`
	Database string `mapstructure:"database"`
}

// CalendarConfig represents holiday calendar configuration
type CalendarConfig struct {
	Type     string `mapstructure:"type"` // "tables", "file" or "remote"
	File     string `mapstructure:"file"`
	URL      string `mapstructure:"url"` // {year} is substituted
	CacheTTL string `mapstructure:"cache_ttl"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Addr           string `mapstructure:"addr"`
	ReloadInterval string `mapstructure:"reload_interval"` // "0" disables periodic reloads
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("payroll.year", 0)
	v.SetDefault("payroll.shift_start", "8:00")
	v.SetDefault("payroll.late_grace", "10m")

	v.SetDefault("payroll.rules.regular_hours_per_day", 8)
	v.SetDefault("payroll.rules.day_overtime_rate", 1.25)
	v.SetDefault("payroll.rules.night_overtime_rate", 1.10)
	v.SetDefault("payroll.rules.holiday_premium_cap", 1.3)
	v.SetDefault("payroll.rules.health_ceiling", 60000)
	v.SetDefault("payroll.rules.health_max", 1800)
	v.SetDefault("payroll.rules.health_rate", 0.03)
	v.SetDefault("payroll.rules.health_employee_share", 0.5)
	v.SetDefault("payroll.rules.housing_low_floor", 1000)
	v.SetDefault("payroll.rules.housing_low_ceiling", 1500)
	v.SetDefault("payroll.rules.housing_low_rate", 0.03)
	v.SetDefault("payroll.rules.housing_rate", 0.04)
	v.SetDefault("payroll.rules.housing_cap", 100)

	v.SetDefault("records.attendance_file", "data/attendance.csv")
	v.SetDefault("records.employees_file", "data/employees.csv")

	v.SetDefault("tables.source", "yaml")
	v.SetDefault("tables.file", "tables.yaml")
	v.SetDefault("tables.database", "")

	v.SetDefault("calendar.type", "tables")
	v.SetDefault("calendar.file", "")
	v.SetDefault("calendar.url", "")
	v.SetDefault("calendar.cache_ttl", "24h")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.reload_interval", "0")
}

// Load loads configuration from file. A .env file in the working
// directory, if present, is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.payroll")
		v.AddConfigPath("/etc/payroll")
	}

	// PAYROLL_PAYROLL_YEAR overrides payroll.year, and so on
	v.SetEnvPrefix("PAYROLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate Payroll config
	if c.Payroll.Year < 1 || c.Payroll.Year > 9999 {
		return fmt.Errorf("payroll.year is required")
	}
	if _, err := dateutil.ParseClock(c.Payroll.ShiftStart); err != nil {
		return fmt.Errorf("payroll.shift_start: %w", err)
	}
	if grace, err := time.ParseDuration(c.Payroll.LateGrace); err != nil || grace < 0 {
		return fmt.Errorf("payroll.late_grace must be a non-negative duration, got '%s'", c.Payroll.LateGrace)
	}
	if err := c.Payroll.Rules.Validate(); err != nil {
		return err
	}

	// Validate Records config
	if c.Records.AttendanceFile == "" {
		return fmt.Errorf("records.attendance_file is required")
	}
	if c.Records.EmployeesFile == "" {
		return fmt.Errorf("records.employees_file is required")
	}

	// Validate Tables config
	switch c.Tables.Source {
	case "yaml":
		if c.Tables.File == "" {
			return fmt.Errorf("tables.file is required for yaml source")
		}
	case "sqlite":
		if c.Tables.Database == "" {
			return fmt.Errorf("tables.database is required for sqlite source")
		}
	default:
		return fmt.Errorf("tables.source must be 'yaml' or 'sqlite', got '%s'", c.Tables.Source)
	}

	// Validate Calendar config
	switch c.Calendar.Type {
	case "tables":
	case "file":
		if c.Calendar.File == "" {
			return fmt.Errorf("calendar.file is required for file type")
		}
	case "remote":
		if !strings.Contains(c.Calendar.URL, "{year}") {
			return fmt.Errorf("calendar.url must contain {year} for remote type")
		}
	default:
		return fmt.Errorf("calendar.type must be 'tables', 'file' or 'remote', got '%s'", c.Calendar.Type)
	}

	// Validate Server config
	if c.Server.ReloadInterval != "" {
		if interval, err := time.ParseDuration(c.Server.ReloadInterval); err != nil || interval < 0 {
			return fmt.Errorf("server.reload_interval must be a non-negative duration, got '%s'", c.Server.ReloadInterval)
		}
	}

	return nil
}

// Validate checks that every rate and bound is usable
func (r *RulesConfig) Validate() error {
	positive := map[string]float64{
		"regular_hours_per_day": r.RegularHoursPerDay,
		"day_overtime_rate":     r.DayOvertimeRate,
		"night_overtime_rate":   r.NightOvertimeRate,
		"holiday_premium_cap":   r.HolidayPremiumCap,
		"health_ceiling":        r.HealthCeiling,
		"health_rate":           r.HealthRate,
		"health_employee_share": r.HealthEmployeeShare,
		"housing_low_ceiling":   r.HousingLowCeiling,
		"housing_rate":          r.HousingRate,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("payroll.rules.%s must be positive", name)
		}
	}

	if r.RegularHoursPerDay > 24 {
		return fmt.Errorf("payroll.rules.regular_hours_per_day must not exceed 24")
	}
	if r.HealthMax < 0 || r.HousingCap < 0 || r.HousingLowRate < 0 || r.HousingLowFloor < 0 {
		return fmt.Errorf("payroll.rules: caps, floors and rates must not be negative")
	}
	if r.HousingLowFloor >= r.HousingLowCeiling {
		return fmt.Errorf("payroll.rules.housing_low_floor must be below housing_low_ceiling")
	}

	return nil
}

// GetShiftStart returns the default shift start in minutes since midnight
func (p *PayrollConfig) GetShiftStart() int {
	minutes, err := dateutil.ParseClock(p.ShiftStart)
	if err != nil {
		return 8 * 60
	}
	return minutes
}

// GetLateGrace returns the tardiness grace period
func (p *PayrollConfig) GetLateGrace() time.Duration {
	if p.LateGrace == "" {
		return 10 * time.Minute
	}
	duration, err := time.ParseDuration(p.LateGrace)
	if err != nil {
		return 10 * time.Minute
	}
	return duration
}

// GetCacheTTL returns cache TTL duration
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

// GetReloadInterval returns the periodic snapshot reload interval, zero when disabled
func (s *ServerConfig) GetReloadInterval() time.Duration {
	if s.ReloadInterval == "" {
		return 0
	}
	duration, err := time.ParseDuration(s.ReloadInterval)
	if err != nil {
		return 0
	}
	return duration
}

// ExpandEnvVars expands environment variables in path and URL settings
func (c *Config) ExpandEnvVars() {
	c.Records.AttendanceFile = os.ExpandEnv(c.Records.AttendanceFile)
	c.Records.EmployeesFile = os.ExpandEnv(c.Records.EmployeesFile)
	c.Tables.File = os.ExpandEnv(c.Tables.File)
	c.Tables.Database = os.ExpandEnv(c.Tables.Database)
	c.Calendar.File = os.ExpandEnv(c.Calendar.File)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
