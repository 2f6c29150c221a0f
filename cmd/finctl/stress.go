package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/subcommands"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// stressCmd 併發寫入後檢查 餘額 == 所有交易效果總和
type stressCmd struct {
	remote      remoteFlags
	total       int
	concurrency int
}

func (*stressCmd) Name() string     { return "stress" }
func (*stressCmd) Synopsis() string { return "concurrent writes followed by a balance check" }
func (*stressCmd) Usage() string {
	return `finctl stress [-n 1000] [-c 50]

  Fires n concurrent creates, reports throughput, then verifies that the stored
  balance equals the sum of every transaction's effect.
`
}

func (c *stressCmd) SetFlags(f *flag.FlagSet) {
	c.remote.register(f)
	f.IntVar(&c.total, "n", 1000, "number of transactions")
	f.IntVar(&c.concurrency, "c", 50, "concurrent requests")
}

func (c *stressCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, done, err := c.remote.connect()
	if err != nil {
		return fail(err)
	}
	defer done()
	ctx, cancel := context.WithTimeout(ctx, c.remote.timeout)
	defer cancel()

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
		sem    = make(chan struct{}, c.concurrency)
		now    = time.Now()
		from   = now.AddDate(0, -1, 0)
	)
	startTime := time.Now()
	for i := 0; i < c.total; i++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			// Faker 不是 goroutine safe，每個請求各自建立
			req := fakeTransaction(gofakeit.New(int64(idx)+1), from, now)
			if _, err := client.CreateTransaction(ctx, req); err != nil {
				if failed.Add(1) <= 5 {
					log.Printf("create %d failed: %v", idx, err)
				}
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(startTime)
	fmt.Printf("Completed %d requests in %v (%d failed)\n", c.total, elapsed, failed.Load())
	fmt.Printf("TPS: %.2f\n", float64(c.total)/elapsed.Seconds())

	listing, err := client.ListTransactions(ctx, "")
	if err != nil {
		return fail(err)
	}
	summary, err := client.GetSummary(ctx)
	if err != nil {
		return fail(err)
	}
	var sum int64
	for _, t := range listing.Transactions {
		sum += domain.TransactionType(t.Type).Delta(t.Amount)
	}
	if sum != summary.Summary.TotalBalance {
		fmt.Printf("Balance mismatch: stored %d, transactions sum to %d\n", summary.Summary.TotalBalance, sum)
		return subcommands.ExitFailure
	}
	fmt.Printf("Balance check OK: %d over %d transactions\n", sum, len(listing.Transactions))
	return subcommands.ExitSuccess
}
