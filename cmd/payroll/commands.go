package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/username/payroll-engine/internal/api"
	"github.com/username/payroll-engine/internal/config"
	"github.com/username/payroll-engine/internal/daemon"
	"github.com/username/payroll-engine/internal/payroll"
	"github.com/username/payroll-engine/internal/payslip"
	"github.com/username/payroll-engine/internal/tables"
	"go.uber.org/zap"
)

// periodFlags are shared by every calculation command
type periodFlags struct {
	employee   string
	year       int
	month      int
	half       string
	night      bool
	shiftStart string
}

func (f *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.employee, "employee", "e", "", "Employee id")
	cmd.Flags().IntVar(&f.year, "year", 0, "Payroll year (defaults to payroll.year)")
	cmd.Flags().IntVarP(&f.month, "month", "m", 0, "Month 1-12")
	cmd.Flags().StringVar(&f.half, "half", "1", "Period half: 1 (days 1-15) or 2 (16 to end)")
	cmd.Flags().BoolVar(&f.night, "night", false, "Night shift overtime rate")
	cmd.Flags().StringVar(&f.shiftStart, "shift-start", "", "Shift start H:mm (defaults to payroll.shift_start)")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("month")
}

func (f *periodFlags) request(cfg *config.Config) (payroll.Request, error) {
	half, err := payroll.ParseHalf(f.half)
	if err != nil {
		return payroll.Request{}, err
	}

	req := payroll.Request{
		EmployeeID: f.employee,
		Year:       f.year,
		Month:      f.month,
		Half:       half,
		NightShift: f.night,
		ShiftStart: f.shiftStart,
	}
	if req.Year == 0 {
		req.Year = cfg.Payroll.Year
	}
	if req.ShiftStart == "" {
		req.ShiftStart = cfg.Payroll.ShiftStart
	}
	return req, nil
}

func employeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "employees",
		Short: "List the employee roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, session, err := openSession()
			if err != nil {
				return err
			}

			employees := session.Engine().Snapshot().Employees()
			syncPrintf("\n👥 Employees (%d)\n", len(employees))
			syncPrintln("═══════════════════════════════════════════════════════")
			syncPrintln("  ID       | Name                           | Rate/h")
			syncPrintln("-----------+--------------------------------+----------")
			for _, e := range employees {
				syncPrintf("  %-8s | %-30s | %8s\n", e.ID, e.FullName(), e.HourlyRate.StringFixed(2))
			}
			return nil
		},
	}
}

func grossCmd() *cobra.Command {
	var flags periodFlags

	cmd := &cobra.Command{
		Use:   "gross",
		Short: "Compute gross pay for one employee and period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, session, err := openSession()
			if err != nil {
				return err
			}
			req, err := flags.request(cfg)
			if err != nil {
				return err
			}

			b, err := session.Engine().ComputeGross(req)
			if err != nil {
				return fmt.Errorf("failed to compute gross: %w", err)
			}

			syncPrintf("\n📊 Gross pay for %s\n", req.EmployeeID)
			syncPrintln("═══════════════════════════════════════════════════════")
			syncPrintln("  Date         | Regular | Overtime | Holiday")
			syncPrintln("---------------+---------+----------+----------------")
			for _, day := range b.Days {
				holiday := "-"
				if day.Holiday.IsHoliday() {
					holiday = fmt.Sprintf("%s x%s", day.Holiday.Kind, day.Holiday.Multiplier)
				}
				syncPrintf("  %s | %6sh | %7sh | %s\n",
					day.Date.Format("2006-01-02"),
					day.RegularHours().StringFixed(2),
					day.OvertimeHours().StringFixed(2),
					holiday)
			}
			syncPrintf("\n  Regular pay:     %12s\n", b.RegularPay.StringFixed(2))
			syncPrintf("  Overtime pay:    %12s\n", b.OvertimePay.StringFixed(2))
			syncPrintf("  Holiday premium: %12s  (included above)\n", b.HolidayPremium.StringFixed(2))
			syncPrintf("  Gross:           %12s\n", b.Gross.StringFixed(2))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func netCmd() *cobra.Command {
	var flags periodFlags

	cmd := &cobra.Command{
		Use:   "net",
		Short: "Compute deductions and net pay for one employee and period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, session, err := openSession()
			if err != nil {
				return err
			}
			req, err := flags.request(cfg)
			if err != nil {
				return err
			}

			net, err := session.Engine().ComputeNet(req)
			if err != nil {
				return fmt.Errorf("failed to compute net pay: %w", err)
			}

			ded := net.Deductions
			syncPrintf("\n💰 Net pay for %s\n", req.EmployeeID)
			syncPrintln("═══════════════════════════════════════════════════════")
			syncPrintf("  Gross:            %12s\n", net.Breakdown.Gross.StringFixed(2))
			syncPrintf("  Social insurance: %12s\n", ded.SocialInsurance.StringFixed(2))
			syncPrintf("  Health insurance: %12s\n", ded.HealthInsurance.StringFixed(2))
			syncPrintf("  Housing fund:     %12s\n", ded.HousingFund.StringFixed(2))
			syncPrintf("  Tardiness:        %12s\n", ded.Tardiness.StringFixed(2))
			syncPrintf("  Taxable income:   %12s\n", net.TaxableIncome.StringFixed(2))
			syncPrintf("  Withholding tax:  %12s\n", ded.WithholdingTax.StringFixed(2))
			for _, other := range ded.Other {
				syncPrintf("  %-17s %12s\n", other.Name+":", other.Amount.StringFixed(2))
			}
			syncPrintf("  Total deductions: %12s\n", ded.Total.StringFixed(2))
			syncPrintf("  Net:              %12s\n", net.Net.StringFixed(2))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func payslipCmd() *cobra.Command {
	var flags periodFlags
	var pdfPath string
	var teeOutput string

	cmd := &cobra.Command{
		Use:   "payslip",
		Short: "Print a payslip, optionally saving it as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			restore, err := teeTo(teeOutput)
			if err != nil {
				return err
			}
			defer restore()

			cfg, session, err := openSession()
			if err != nil {
				return err
			}
			req, err := flags.request(cfg)
			if err != nil {
				return err
			}

			slip, err := session.Engine().Payslip(req)
			if err != nil {
				return fmt.Errorf("failed to build payslip: %w", err)
			}

			if err := payslip.WriteText(syncWriter, slip); err != nil {
				return err
			}

			if pdfPath != "" {
				if err := payslip.SavePDF(pdfPath, slip); err != nil {
					return err
				}
				logger.Info("Payslip saved", zap.String("file", pdfPath))
				syncPrintf("\n✅ PDF written to %s\n", pdfPath)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Also write the payslip as PDF to this path")
	cmd.Flags().StringVar(&teeOutput, "tee-output", "", "Mirror output to file (empty to disable)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the payroll HTTP API (SIGHUP reloads the snapshot)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, session, err := openSession()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			server := api.NewServer(session, cfg.Payroll.ShiftStart, logger)
			d := daemon.NewDaemon(session, server, addr, cfg.Server.GetReloadInterval(), logger)
			server.UseReloader(d)
			return d.Start()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	return cmd
}

func tablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage contribution, tax and holiday tables",
	}
	cmd.AddCommand(tablesSeedCmd())
	cmd.AddCommand(tablesExportCmd())
	return cmd
}

func tablesSeedCmd() *cobra.Command {
	var from string
	var database string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy tables from a YAML file (or the built-in defaults) into SQLite",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if database == "" {
				database = cfg.Tables.Database
			}
			if database == "" {
				return fmt.Errorf("no database given: set tables.database or pass --database")
			}

			var set *tables.Set
			if from == "" {
				set, err = tables.DefaultSet()
			} else {
				set, err = tables.NewYAMLSource(from, logger).Load()
			}
			if err != nil {
				return err
			}

			if dir := filepath.Dir(database); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create database directory: %w", err)
				}
			}
			store, err := tables.OpenSQLite(database, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Seed(set); err != nil {
				return err
			}

			syncPrintf("✅ Seeded %s: %d brackets, %d tax brackets, %d holidays\n",
				database, set.Brackets.Len(), len(set.Tax.Brackets()), set.Holidays.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "YAML tables file (empty for built-in defaults)")
	cmd.Flags().StringVar(&database, "database", "", "SQLite file (defaults to tables.database)")
	return cmd
}

func tablesExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the configured tables as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			var source tables.Source
			switch cfg.Tables.Source {
			case "sqlite":
				store, err := tables.OpenSQLite(cfg.Tables.Database, logger)
				if err != nil {
					return err
				}
				defer store.Close()
				source = store
			default:
				source = tables.NewYAMLSource(cfg.Tables.File, logger)
			}

			set, err := source.Load()
			if err != nil {
				return err
			}

			if output == "" {
				return tables.WriteYAML(os.Stdout, set)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()
			return tables.WriteYAML(f, set)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
