package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// DashboardView 儀表板需要的資料
type DashboardView struct {
	Name       string
	Summary    domain.Summary
	Trend      []domain.MonthTotals
	Categories []domain.CategoryTotal
}

// DashboardMarkdown 彙總卡片、六個月趨勢與分類支出
func DashboardMarkdown(f Formatter, v DashboardView) string {
	var b strings.Builder
	title := "Summary"
	if v.Name != "" {
		title += " for " + v.Name
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "| Balance | Income (month) | Expense (month) | Savings |\n")
	fmt.Fprintf(&b, "|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s |\n\n",
		f.Format(v.Summary.TotalBalance),
		f.Format(v.Summary.MonthlyIncome),
		f.Format(v.Summary.MonthlyExpense),
		f.Format(v.Summary.Savings))

	if len(v.Trend) > 0 {
		b.WriteString("## Last months\n\n| Month | Income | Expense |\n|---|---:|---:|\n")
		for _, m := range v.Trend {
			fmt.Fprintf(&b, "| %04d-%02d | %s | %s |\n", m.Year, int(m.Month), f.Format(m.Income), f.Format(m.Expense))
		}
		b.WriteString("\n")
	}

	if len(v.Categories) > 0 {
		b.WriteString("## Expenses by category\n\n| Category | Amount |\n|---|---:|\n")
		for _, c := range v.Categories {
			fmt.Fprintf(&b, "| %s | %s |\n", escape(c.Category), f.Format(c.Amount))
		}
	}
	return b.String()
}

// Statement 一個日曆月的對帳單
type Statement struct {
	Month        time.Time
	Owner        string
	Balance      int64
	Transactions []domain.Transaction
}

// Totals 本月收入、支出
func (s *Statement) Totals() (income, expense int64) {
	for i := range s.Transactions {
		switch s.Transactions[i].Type {
		case domain.TransactionTypeIncome:
			income += s.Transactions[i].Amount
		case domain.TransactionTypeExpense:
			expense += s.Transactions[i].Amount
		}
	}
	return income, expense
}

// StatementMarkdown 對帳單的 markdown 版本
func StatementMarkdown(f Formatter, s *Statement) string {
	var b strings.Builder
	income, expense := s.Totals()
	fmt.Fprintf(&b, "# Statement %s\n\n", s.Month.Format("2006-01"))
	if s.Owner != "" {
		fmt.Fprintf(&b, "Owner: %s\n\n", escape(s.Owner))
	}
	fmt.Fprintf(&b, "- Income: %s\n- Expense: %s\n- Net: %s\n- Current balance: %s\n\n",
		f.Format(income), f.Format(expense), f.Format(income-expense), f.Format(s.Balance))

	if len(s.Transactions) == 0 {
		b.WriteString("_No transactions this month._\n")
		return b.String()
	}
	b.WriteString("| Date | Title | Category | Amount |\n|---|---|---|---:|\n")
	for _, t := range s.Transactions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			t.Date.Format(domain.DateLayout), escape(t.Title), escape(t.Category), f.Format(t.Effect()))
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
