package api

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/warp/shift-payroll/payroll"
)

// categoryLabels are the printed names of the hour categories.
var categoryLabels = [payroll.BucketCount]string{
	payroll.BucketDay:                  "Day",
	payroll.BucketNight:                "Night",
	payroll.BucketDayOvertime:          "Day overtime",
	payroll.BucketNightOvertime:        "Night overtime",
	payroll.BucketHolidayDay:           "Holiday day",
	payroll.BucketHolidayNight:         "Holiday night",
	payroll.BucketHolidayDayOvertime:   "Holiday day overtime",
	payroll.BucketHolidayNightOvertime: "Holiday night overtime",
}

func voucherFilename(s payroll.PayrollSummary) string {
	return fmt.Sprintf("voucher-%s-%s.pdf", s.UserID, s.Period.Start.Time.Format(dateLayout))
}

// voucherDays lists every day of the period, with zero rows for days
// without shifts.
func voucherDays(s payroll.PayrollSummary) []payroll.DaySummary {
	worked := make(map[string]payroll.DaySummary, len(s.Days))
	for _, d := range s.Days {
		worked[d.Date.Time.Format(dateLayout)] = d
	}
	days := s.Period.Days()
	out := make([]payroll.DaySummary, len(days))
	for i, day := range days {
		if d, ok := worked[day.Time.Format(dateLayout)]; ok {
			out[i] = d
			continue
		}
		out[i] = payroll.DaySummary{Date: day, TotalHours: decimal.Zero, GrossPay: decimal.Zero}
	}
	return out
}

// renderVoucher writes an A4 payroll voucher for s: the category table on
// the first page, then one row per day of the period.
func renderVoucher(w io.Writer, s payroll.PayrollSummary, settings *payroll.CompanySettings) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payroll voucher")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Worker: %s", s.UserID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Company: %s", s.CompanyID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s (%s)", s.Period.Start.Time.Format(dateLayout), s.Period.End.Time.Format(dateLayout), s.Cycle))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Days worked: %d", s.DaysWorked))
	pdf.Ln(10)

	// Category table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Category", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, "Hours", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Rate", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 7, "Pay", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, b := range payroll.Buckets {
		pdf.CellFormat(70, 6, categoryLabels[b], "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, s.HoursIn(b).StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(settings.Rates.For(b)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, money(s.PayIn(b)), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 7, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 7, s.TotalHours.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 7, money(s.GrossPay), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	writeLines(pdf, "Benefits", s.BenefitBreakdown, s.TotalBenefits)
	writeLines(pdf, "Deductions", s.DeductionBreakdown, s.TotalDeductions)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Gross: %s %s", money(s.GrossPay), s.Currency))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net: %s %s", money(s.NetPay), s.Currency))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "I", 9)
	if s.Partial {
		pdf.MultiCell(0, 5, fmt.Sprintf("Notice: %d shift(s) could not be processed and are not included.", len(s.Excluded)), "", "L", false)
	}
	if s.NetClamped {
		pdf.MultiCell(0, 5, "Notice: deductions exceeded earnings; net pay was floored at zero.", "", "L", false)
	}
	pdf.Ln(4)

	// Daily detail
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(70, 6, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, "Shifts", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, "Hours", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 6, "Pay", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, d := range voucherDays(s) {
		pdf.CellFormat(70, 5, d.Date.Time.Format("Mon 2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, fmt.Sprintf("%d", len(d.Shifts)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 5, d.TotalHours.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 5, money(d.GrossPay), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}

func writeLines(pdf *gofpdf.Fpdf, title string, lines []payroll.BreakdownLine, total decimal.Decimal) {
	if len(lines) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, title)
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range lines {
		pdf.CellFormat(110, 6, fmt.Sprintf("%s (%s %s)", l.Name, l.Type, l.Value.String()), "", 0, "L", false, 0, "")
		pdf.CellFormat(75, 6, money(l.Amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(110, 6, "Total "+title, "T", 0, "L", false, 0, "")
	pdf.CellFormat(75, 6, money(total), "T", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
