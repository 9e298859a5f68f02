package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleConfig = `
payroll:
  year: 2022
  shift_start: "8:30"
  late_grace: 15m
  rules:
    day_overtime_rate: 1.30
records:
  attendance_file: attendance.csv
  employees_file: employees.csv
tables:
  source: yaml
  file: tables.yaml
calendar:
  type: remote
  url: https://holidays.example.org/{year}.json
  cache_ttl: 6h
server:
  reload_interval: 30m
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Payroll.Year != 2022 {
		t.Errorf("Payroll.Year = %d, want 2022", cfg.Payroll.Year)
	}
	if got := cfg.Payroll.GetShiftStart(); got != 8*60+30 {
		t.Errorf("GetShiftStart() = %d, want 510", got)
	}
	if got := cfg.Payroll.GetLateGrace(); got != 15*time.Minute {
		t.Errorf("GetLateGrace() = %v, want 15m", got)
	}
	if got := cfg.Calendar.GetCacheTTL(); got != 6*time.Hour {
		t.Errorf("GetCacheTTL() = %v, want 6h", got)
	}

	// Explicit rule overrides, unspecified rules keep their defaults
	if cfg.Payroll.Rules.DayOvertimeRate != 1.30 {
		t.Errorf("DayOvertimeRate = %v, want 1.30", cfg.Payroll.Rules.DayOvertimeRate)
	}
	if cfg.Payroll.Rules.NightOvertimeRate != 1.10 {
		t.Errorf("NightOvertimeRate = %v, want 1.10", cfg.Payroll.Rules.NightOvertimeRate)
	}
	if cfg.Payroll.Rules.HousingCap != 100 {
		t.Errorf("HousingCap = %v, want 100", cfg.Payroll.Rules.HousingCap)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PAYROLL_SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("PAYROLL_PAYROLL_YEAR", "2023")

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("Server.Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Payroll.Year != 2023 {
		t.Errorf("Payroll.Year = %d, want env override 2023", cfg.Payroll.Year)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		wantErr string
	}{
		{"missing year", [2]string{"year: 2022", "year: 0"}, "payroll.year"},
		{"bad shift start", [2]string{`shift_start: "8:30"`, `shift_start: "late"`}, "payroll.shift_start"},
		{"bad grace", [2]string{"late_grace: 15m", "late_grace: soon"}, "payroll.late_grace"},
		{"bad rule", [2]string{"day_overtime_rate: 1.30", "day_overtime_rate: -1"}, "day_overtime_rate"},
		{"bad tables source", [2]string{"source: yaml", "source: excel"}, "tables.source"},
		{"remote without placeholder", [2]string{"{year}.json", "2022.json"}, "calendar.url"},
		{"unknown calendar", [2]string{"type: remote", "type: lunar"}, "calendar.type"},
		{"bad reload interval", [2]string{"reload_interval: 30m", "reload_interval: hourly"}, "server.reload_interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(sampleConfig, tt.replace[0], tt.replace[1], 1)
			_, err := Load(writeConfig(t, content))
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetReloadInterval(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"0", 0},
		{"30m", 30 * time.Minute},
		{"bogus", 0},
	}
	for _, tt := range tests {
		s := ServerConfig{ReloadInterval: tt.value}
		if got := s.GetReloadInterval(); got != tt.want {
			t.Errorf("GetReloadInterval(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestGetLateGrace_Fallback(t *testing.T) {
	p := PayrollConfig{LateGrace: "garbage"}
	if got := p.GetLateGrace(); got != 10*time.Minute {
		t.Errorf("GetLateGrace() = %v, want 10m fallback", got)
	}
}
