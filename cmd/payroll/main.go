package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/username/payroll-engine/internal/config"
	"github.com/username/payroll-engine/internal/payroll"
	"github.com/username/payroll-engine/internal/snapshot"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     *zap.Logger
	syncWriter io.Writer = os.Stdout
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "payroll",
		Short: "Semi-monthly payroll engine",
		Long:  "Compute gross pay, statutory deductions, withholding tax and net pay from attendance records",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")

	rootCmd.AddCommand(employeesCmd())
	rootCmd.AddCommand(grossCmd())
	rootCmd.AddCommand(netCmd())
	rootCmd.AddCommand(payslipCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(tablesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openSession loads config and the first snapshot
func openSession() (*config.Config, *payroll.Session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	session, err := payroll.NewSession(cfg, snapshot.NewLoader(cfg, logger), logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, session, nil
}

// teeTo mirrors command output to a file until the returned func is called
func teeTo(path string) (func(), error) {
	syncWriter = os.Stdout
	if path == "" {
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tee path: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open tee-output file: %w", err)
	}
	syncWriter = io.MultiWriter(os.Stdout, f)

	return func() {
		syncWriter = os.Stdout
		f.Close()
	}, nil
}

func syncPrintf(format string, a ...interface{}) {
	if syncWriter == nil {
		syncWriter = os.Stdout
	}
	fmt.Fprintf(syncWriter, format, a...)
}

func syncPrintln(a ...interface{}) {
	if syncWriter == nil {
		syncWriter = os.Stdout
	}
	fmt.Fprintln(syncWriter, a...)
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
