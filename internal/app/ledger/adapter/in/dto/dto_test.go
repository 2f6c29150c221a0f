package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
)

func TestCreateTransactionRequest_ToDomain(t *testing.T) {
	req := CreateTransactionRequest{Title: " Salary ", Amount: 500000, Type: "Income", Date: "2024-01-10", Category: "work"}
	in, err := req.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain() unexpected error = %v", err)
	}
	if in.Title != "Salary" || in.Type != domain.TransactionTypeIncome || in.Date.Day() != 10 {
		t.Errorf("ToDomain() = %+v", in)
	}

	testCases := []struct {
		name string
		req  CreateTransactionRequest
		want error
	}{
		{"missing type", CreateTransactionRequest{Title: "x", Amount: 1, Date: "2024-01-10", Category: "c"}, domain.ErrMissingField},
		{"bad type", CreateTransactionRequest{Title: "x", Amount: 1, Type: "gift", Date: "2024-01-10", Category: "c"}, domain.ErrInvalidTransactionType},
		{"missing date", CreateTransactionRequest{Title: "x", Amount: 1, Type: "income", Category: "c"}, domain.ErrMissingField},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.req.ToDomain(); !errors.Is(err, tc.want) {
				t.Errorf("ToDomain() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestTransactionPatch_ToDomain(t *testing.T) {
	var nilPatch *TransactionPatch
	if p, err := nilPatch.ToDomain(); err != nil || !p.Empty() {
		t.Errorf("nil patch = %+v, %v", p, err)
	}

	typ, date := "expense", "2024-02-29"
	p, err := (&TransactionPatch{Type: &typ, Date: &date}).ToDomain()
	if err != nil {
		t.Fatalf("ToDomain() unexpected error = %v", err)
	}
	if *p.Type != domain.TransactionTypeExpense || p.Date.Month() != time.February || p.Title != nil {
		t.Errorf("ToDomain() = %+v", p)
	}

	bad := "soon"
	if _, err := (&TransactionPatch{Date: &bad}).ToDomain(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ToDomain() error = %v, want validation error", err)
	}
}

func TestUpdateAndDeleteRequests_Validate(t *testing.T) {
	if err := (&UpdateTransactionRequest{ID: "a"}).Validate(); err == nil {
		t.Error("Validate() accepted request without updatedData")
	}
	if err := (&UpdateTransactionRequest{UpdatedData: &TransactionPatch{}}).Validate(); err == nil {
		t.Error("Validate() accepted request without id")
	}
	if err := (&UpdateTransactionRequest{ID: "a", UpdatedData: &TransactionPatch{}}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}
	if err := (&DeleteTransactionRequest{ID: " "}).Validate(); err == nil {
		t.Error("Validate() accepted blank id")
	}
}

func TestDashboard_RoundTrip(t *testing.T) {
	d := &usecase.Dashboard{
		Summary: domain.Summary{TotalBalance: 350000, MonthlyIncome: 500000, MonthlyExpense: 150000, Savings: 350000},
		Trend: []domain.MonthTotals{
			{Year: 2023, Month: time.December, Expense: 10},
			{Year: 2024, Month: time.January, Income: 500000, Expense: 150000},
		},
		Categories: []domain.CategoryTotal{{Category: "rent", Amount: 150000}},
	}
	res := FromDashboard(d, report.NewFormatter("USD"))
	if res.Currency != "USD" || res.Formatted["savings"] != "$3,500.00" || res.Trend[0].Month != "2023-12" {
		t.Errorf("FromDashboard() = %+v", res)
	}

	view, err := res.ToDashboardView("Ana")
	if err != nil {
		t.Fatalf("ToDashboardView() unexpected error = %v", err)
	}
	if view.Summary != d.Summary || len(view.Trend) != 2 || view.Trend[1].Month != time.January || view.Categories[0] != d.Categories[0] {
		t.Errorf("ToDashboardView() = %+v", view)
	}
}

func TestFromUser(t *testing.T) {
	u := &domain.User{ID: "u1", Email: "a@b.c", Credential: domain.NoLocalPassword}
	if !FromUser(u).ExternalIdentity {
		t.Error("FromUser() ExternalIdentity = false for external user")
	}
	u.Credential = "hash"
	if FromUser(u).ExternalIdentity {
		t.Error("FromUser() ExternalIdentity = true for local user")
	}
}
