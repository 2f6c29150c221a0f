package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/subcommands"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

var (
	expenseCategories = []string{"food", "rent", "transport", "health", "leisure", "education"}
	incomeCategories  = []string{"salary", "freelance", "investments"}
)

// fakeTransaction 收入約佔四分之一
func fakeTransaction(f *gofakeit.Faker, from, to time.Time) dto.CreateTransactionRequest {
	req := dto.CreateTransactionRequest{Date: f.DateRange(from, to).Format(domain.DateLayout)}
	if f.Number(1, 4) == 1 {
		req.Type = string(domain.TransactionTypeIncome)
		req.Title = f.Company()
		req.Category = f.RandomString(incomeCategories)
		req.Amount = int64(f.Number(150000, 900000))
		return req
	}
	req.Type = string(domain.TransactionTypeExpense)
	req.Title = f.Word()
	req.Category = f.RandomString(expenseCategories)
	req.Amount = int64(f.Number(500, 120000))
	return req
}

type seedCmd struct {
	remote remoteFlags
	count  int
	months int
	seed   int64
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "create random transactions for the caller" }
func (*seedCmd) Usage() string {
	return `finctl seed [-n 40] [-months 6] [-seed 0]

  Creates n fake transactions spread over the last months through the gRPC API.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	c.remote.register(f)
	f.IntVar(&c.count, "n", 40, "number of transactions")
	f.IntVar(&c.months, "months", 6, "spread dates over this many past months")
	f.Int64Var(&c.seed, "seed", 0, "random seed (0 = random)")
}

func (c *seedCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, done, err := c.remote.connect()
	if err != nil {
		return fail(err)
	}
	defer done()
	ctx, cancel := context.WithTimeout(ctx, c.remote.timeout)
	defer cancel()

	faker := gofakeit.New(c.seed)
	now := time.Now()
	from := now.AddDate(0, -c.months, 0)
	var last *dto.TransactionResult
	for i := 0; i < c.count; i++ {
		res, err := client.CreateTransaction(ctx, fakeTransaction(faker, from, now))
		if err != nil {
			return fail(fmt.Errorf("transaction %d: %w", i, err))
		}
		last = res
	}
	if last != nil {
		fmt.Printf("Created %d transactions, balance is now %d\n", c.count, last.Balance)
	}
	return subcommands.ExitSuccess
}
