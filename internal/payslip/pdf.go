package payslip

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"github.com/username/payroll-engine/internal/payroll"
)

const (
	labelWidth  = 80.0
	amountWidth = 40.0
	rowHeight   = 7.0
)

func amountRow(pdf *gofpdf.Fpdf, l line) {
	pdf.CellFormat(labelWidth, rowHeight, l.label, "", 0, "L", false, 0, "")
	pdf.CellFormat(amountWidth, rowHeight, money(l.amount), "", 1, "R", false, 0, "")
}

func section(pdf *gofpdf.Fpdf, title string, lines []line) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range lines {
		amountRow(pdf, l)
	}
	pdf.Ln(4)
}

func build(slip payroll.Payslip) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", slip.Employee.ID, slip.Period), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", slip.Employee.FullName(), slip.Employee.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s", slip.Period.Start().Format("2006-01-02"), slip.Period.End().Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Shift: %s   Rate: %s/h", shiftLabel(slip.NightShift), money(slip.Employee.HourlyRate)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Hours: %s regular, %s overtime",
		slip.Pay.Breakdown.RegularHours.StringFixed(2),
		slip.Pay.Breakdown.OvertimeHours.StringFixed(2)))
	pdf.Ln(10)

	section(pdf, "Earnings", earnings(slip.Pay))
	section(pdf, "Deductions", deductions(slip.Pay))

	pdf.SetFont("Helvetica", "B", 12)
	amountRow(pdf, line{"Taxable income", slip.Pay.TaxableIncome})
	amountRow(pdf, line{"Net pay", slip.Pay.Net})

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.Cell(0, 5, fmt.Sprintf("Snapshot %s, generated %s", slip.SnapshotID, slip.GeneratedAt.Format("2006-01-02 15:04:05")))

	return pdf
}

// WritePDF renders a single-page A4 payslip
func WritePDF(w io.Writer, slip payroll.Payslip) error {
	pdf := build(slip)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render payslip pdf: %w", err)
	}
	return nil
}

// SavePDF renders the payslip into a file, creating parent directories
func SavePDF(path string, slip payroll.Payslip) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create payslip directory: %w", err)
		}
	}
	if err := build(slip).OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to save payslip pdf: %w", err)
	}
	return nil
}
