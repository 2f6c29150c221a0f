package main

import (
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
)

func TestFakeTransaction_IsValid(t *testing.T) {
	f := gofakeit.New(42)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.Local)
	from := to.AddDate(0, -6, 0)
	for i := 0; i < 200; i++ {
		req := fakeTransaction(f, from, to)
		in, err := req.ToDomain()
		if err != nil {
			t.Fatalf("ToDomain(%+v) unexpected error = %v", req, err)
		}
		if err := in.Validate(); err != nil {
			t.Fatalf("Validate(%+v) unexpected error = %v", req, err)
		}
		if in.Date.Before(from.AddDate(0, 0, -1)) || in.Date.After(to) {
			t.Fatalf("date %v outside [%v, %v]", in.Date, from, to)
		}
	}
}

func TestTransactionsMarkdown(t *testing.T) {
	balance := int64(350000)
	md := transactionsMarkdown(report.NewFormatter("USD"), &dto.ListResult{
		Balance: &balance,
		Transactions: []dto.Transaction{
			{ID: "t1", Title: "Rent", Amount: 150000, Type: "expense", Category: "home", Date: "2024-06-02"},
		},
	})
	for _, want := range []string{"Balance: **$3,500.00**", "| 2024-06-02 | Rent | home | expense | $1,500.00 | `t1` |"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	empty := transactionsMarkdown(report.NewFormatter("USD"), &dto.ListResult{})
	if !strings.Contains(empty, "No transactions") || strings.Contains(empty, "Balance") {
		t.Errorf("empty markdown = %q", empty)
	}
}
