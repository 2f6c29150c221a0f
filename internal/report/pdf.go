package report

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// StatementPDF 把對帳單寫成 A4 PDF
func StatementPDF(w io.Writer, f Formatter, s *Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetTitle("Statement "+s.Month.Format("2006-01"), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Statement "+s.Month.Format("January 2006"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	if s.Owner != "" {
		pdf.Cell(0, 6, tr("Owner: "+s.Owner))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, "Currency: "+f.Currency())
	pdf.Ln(10)

	income, expense := s.Totals()
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 11)
	sumW := []float64{45.5, 45.5, 45.5, 45.5}
	for i, h := range []string{"Income", "Expense", "Net", "Balance"} {
		pdf.CellFormat(sumW[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for i, v := range []int64{income, expense, income - expense, s.Balance} {
		pdf.CellFormat(sumW[i], 9, tr(f.Format(v)), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(14)

	colW := []float64{26, 74, 42, 40}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Date", "Title", "Category", "Amount"} {
		align := "L"
		if i == 3 {
			align = "R"
		}
		pdf.CellFormat(colW[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(s.Transactions) == 0 {
		pdf.CellFormat(colW[0]+colW[1]+colW[2]+colW[3], 8, "No transactions this month.", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	for _, t := range s.Transactions {
		if t.Type == domain.TransactionTypeExpense {
			pdf.SetTextColor(170, 30, 30)
		} else {
			pdf.SetTextColor(20, 120, 40)
		}
		pdf.CellFormat(colW[0], 7, t.Date.Format(domain.DateLayout), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 7, tr(truncate(t.Title, 44)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 7, tr(truncate(t.Category, 24)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 7, tr(f.Format(t.Effect())), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render statement pdf: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
