package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/dto"
	grpc_adapter "github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/in/grpc"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/memory"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
	"github.com/JoeShih716/go-fin-ledger/pkg/auth"
	grpcpool "github.com/JoeShih716/go-fin-ledger/pkg/grpc"
)

type harness struct {
	lis   *bufconn.Listener
	authn *auth.Authenticator
	users *usecase.UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := memory.NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore() unexpected error = %v", err)
	}
	authn, err := auth.NewAuthenticator(auth.Config{Secret: "grpc-secret"})
	if err != nil {
		t.Fatalf("NewAuthenticator() unexpected error = %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc_adapter.AuthInterceptor(authn)))
	grpc_adapter.RegisterLedgerServer(s, grpc_adapter.NewGrpcServer(usecase.NewLedgerService(store), report.NewFormatter("USD")))
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	return &harness{lis: lis, authn: authn, users: usecase.NewUserService(store)}
}

func (h *harness) token(t *testing.T, email string) string {
	t.Helper()
	u, err := h.users.Register(context.Background(), domain.NewUser{Name: "Rita", Email: email})
	if err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}
	token, err := h.authn.Issue(auth.Identity{UserID: u.ID, Email: u.Email, Name: u.Name})
	if err != nil {
		t.Fatalf("Issue() unexpected error = %v", err)
	}
	return token
}

func (h *harness) client(t *testing.T, token string) *grpc_adapter.Client {
	t.Helper()
	var opts []grpcpool.PoolOption
	if token != "" {
		opts = append(opts, grpcpool.WithInterceptor(grpcpool.BearerInterceptor(token)))
	}
	pool := grpcpool.NewPool(opts...)
	t.Cleanup(func() { _ = pool.Close() })

	conn, err := pool.GetConnection("passthrough:///bufnet", grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return h.lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("GetConnection() unexpected error = %v", err)
	}
	return grpc_adapter.NewClient(conn)
}

func ctxWithTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newRequest(title string, amount int64, typ string) dto.CreateTransactionRequest {
	return dto.CreateTransactionRequest{
		Title:    title,
		Amount:   amount,
		Type:     typ,
		Category: "general",
		Date:     time.Now().Format(domain.DateLayout),
	}
}

func TestGrpc_Lifecycle(t *testing.T) {
	h := newHarness(t)
	c := h.client(t, h.token(t, "rita@example.com"))
	ctx := ctxWithTimeout(t)

	created, err := c.CreateTransaction(ctx, newRequest("Salary", 500000, "income"))
	if err != nil {
		t.Fatalf("CreateTransaction() unexpected error = %v", err)
	}
	if created.Balance != 500000 || created.Transaction.Amount != 500000 {
		t.Fatalf("CreateTransaction() = %+v", created)
	}

	rent, err := c.CreateTransaction(ctx, newRequest("Rent", 150000, "expense"))
	if err != nil {
		t.Fatalf("CreateTransaction() unexpected error = %v", err)
	}
	if rent.Balance != 350000 {
		t.Fatalf("balance = %d, want 350000", rent.Balance)
	}

	income := "income"
	updated, err := c.UpdateTransaction(ctx, dto.UpdateTransactionRequest{
		ID:          rent.Transaction.ID,
		UpdatedData: &dto.TransactionPatch{Type: &income},
	})
	if err != nil {
		t.Fatalf("UpdateTransaction() unexpected error = %v", err)
	}
	if updated.Balance != 650000 || updated.Transaction.Type != "income" {
		t.Fatalf("UpdateTransaction() = %+v", updated)
	}

	listing, err := c.ListTransactions(ctx, "monthly")
	if err != nil {
		t.Fatalf("ListTransactions() unexpected error = %v", err)
	}
	if len(listing.Transactions) != 2 || listing.Balance == nil || *listing.Balance != 650000 {
		t.Fatalf("ListTransactions() = %+v", listing)
	}

	deleted, err := c.DeleteTransaction(ctx, created.Transaction.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction() unexpected error = %v", err)
	}
	if deleted.Balance != 150000 {
		t.Fatalf("balance after delete = %d, want 150000", deleted.Balance)
	}

	summary, err := c.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary() unexpected error = %v", err)
	}
	if summary.Summary.TotalBalance != 150000 || summary.Summary.MonthlyIncome != 150000 || summary.Currency != "USD" {
		t.Errorf("GetSummary() = %+v", summary)
	}
	if len(summary.Trend) != usecase.TrendMonths {
		t.Errorf("trend has %d months", len(summary.Trend))
	}
}

func TestGrpc_Errors(t *testing.T) {
	h := newHarness(t)
	authed := h.client(t, h.token(t, "sol@example.com"))
	ctx := ctxWithTimeout(t)

	testCases := []struct {
		name string
		call func() error
		want codes.Code
	}{
		{
			name: "no token",
			call: func() error {
				_, err := h.client(t, "").ListTransactions(ctx, "")
				return err
			},
			want: codes.Unauthenticated,
		},
		{
			name: "bad token",
			call: func() error {
				_, err := h.client(t, "garbage").GetSummary(ctx)
				return err
			},
			want: codes.Unauthenticated,
		},
		{
			name: "invalid amount",
			call: func() error {
				_, err := authed.CreateTransaction(ctx, newRequest("Gift", -5, "income"))
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "unknown filter",
			call: func() error {
				_, err := authed.ListTransactions(ctx, "weekly")
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "update without data",
			call: func() error {
				_, err := authed.UpdateTransaction(ctx, dto.UpdateTransactionRequest{ID: "x"})
				return err
			},
			want: codes.InvalidArgument,
		},
		{
			name: "delete unknown",
			call: func() error {
				_, err := authed.DeleteTransaction(ctx, "does-not-exist")
				return err
			},
			want: codes.NotFound,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			if got := status.Code(err); got != tc.want {
				t.Errorf("code = %v, want %v (err %v)", got, tc.want, err)
			}
		})
	}
}
