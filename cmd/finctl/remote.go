package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	grpc_adapter "github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/grpc"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
	grpcpool "github.com/JoeShih716/go-fin-ledger/pkg/grpc"
)

// remoteFlags 透過 gRPC 操作執行中的 server
type remoteFlags struct {
	addr    string
	token   string
	timeout time.Duration
}

func (r *remoteFlags) register(f *flag.FlagSet) {
	f.StringVar(&r.addr, "addr", "localhost:50051", "gRPC address of the ledger server")
	f.StringVar(&r.token, "token", os.Getenv("FINLEDGER_TOKEN"), "access token (defaults to $FINLEDGER_TOKEN)")
	f.DurationVar(&r.timeout, "timeout", 30*time.Second, "overall deadline")
}

func (r *remoteFlags) connect() (*grpc_adapter.Client, func(), error) {
	if r.token == "" {
		return nil, nil, fmt.Errorf("missing token: pass -token or set FINLEDGER_TOKEN (see finctl token)")
	}
	pool := grpcpool.NewPool(
		grpcpool.WithInterceptor(grpcpool.BearerInterceptor(r.token)),
		grpcpool.WithInterceptor(grpcpool.SlowCallLogger(time.Second)),
	)
	conn, err := pool.GetConnection(r.addr)
	if err != nil {
		return nil, nil, err
	}
	return grpc_adapter.NewClient(conn), func() { _ = pool.Close() }, nil
}

func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		if out, err := r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}

type summaryCmd struct {
	remote remoteFlags
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display balance, monthly totals and trends" }
func (*summaryCmd) Usage() string {
	return `finctl summary [-addr <host:port>] [-token <token>]

  Shows the dashboard: balance, this month's income, expense and savings,
  the last six months and expenses by category.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) { c.remote.register(f) }

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, done, err := c.remote.connect()
	if err != nil {
		return fail(err)
	}
	defer done()
	ctx, cancel := context.WithTimeout(ctx, c.remote.timeout)
	defer cancel()

	res, err := client.GetSummary(ctx)
	if err != nil {
		return fail(err)
	}
	view, err := res.ToDashboardView("")
	if err != nil {
		return fail(err)
	}
	printMarkdown(report.DashboardMarkdown(report.NewFormatter(res.Currency), view))
	return subcommands.ExitSuccess
}

type listCmd struct {
	remote   remoteFlags
	filter   string
	currency string
}

func (*listCmd) Name() string     { return "tx" }
func (*listCmd) Synopsis() string { return "list transactions, newest first" }
func (*listCmd) Usage() string {
	return `finctl tx [-filter monthly|6-last-month]

  Lists the caller's transactions. Filtered listings also show the balance.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	c.remote.register(f)
	f.StringVar(&c.filter, "filter", "", "monthly, 6-last-month or empty for all")
	f.StringVar(&c.currency, "currency", "BRL", "currency used to display amounts")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, done, err := c.remote.connect()
	if err != nil {
		return fail(err)
	}
	defer done()
	ctx, cancel := context.WithTimeout(ctx, c.remote.timeout)
	defer cancel()

	res, err := client.ListTransactions(ctx, c.filter)
	if err != nil {
		return fail(err)
	}
	printMarkdown(transactionsMarkdown(report.NewFormatter(c.currency), res))
	return subcommands.ExitSuccess
}

func transactionsMarkdown(money report.Formatter, res *dto.ListResult) string {
	var b strings.Builder
	b.WriteString("# Transactions\n\n")
	if res.Balance != nil {
		fmt.Fprintf(&b, "Balance: **%s**\n\n", money.Format(*res.Balance))
	}
	if len(res.Transactions) == 0 {
		b.WriteString("_No transactions._\n")
		return b.String()
	}
	b.WriteString("| Date | Title | Category | Type | Amount | ID |\n|---|---|---|---|---:|---|\n")
	for _, t := range res.Transactions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | `%s` |\n", t.Date, t.Title, t.Category, t.Type, money.Format(t.Amount), t.ID)
	}
	return b.String()
}
