package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/memory"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
)

type stubProvider struct {
	name  string
	price string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Fetch(ctx context.Context, symbol string) (*domain.Quote, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &domain.Quote{Price: decimal.RequireFromString(p.price), ChangePercent: "1.5"}, nil
}

func TestMarket_FallbackAndCache(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	broken := &stubProvider{name: "primary", err: errors.New("rate limited")}
	backup := &stubProvider{name: "backup", price: "64000.50"}
	gw := usecase.NewMarketGateway(memory.NewQuoteCache(),
		usecase.WithProviders(domain.QuoteKindCrypto, broken, backup),
		usecase.WithMarketClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	q, err := gw.Quote(ctx, domain.QuoteKindCrypto, " btc ")
	if err != nil {
		t.Fatalf("Quote() unexpected error = %v", err)
	}
	if q.Symbol != "BTC" || q.Source != "backup" || !q.Price.Equal(decimal.RequireFromString("64000.50")) {
		t.Errorf("Quote() = %+v", q)
	}

	now = now.Add(30 * time.Minute)
	if _, err := gw.Quote(ctx, domain.QuoteKindCrypto, "BTC"); err != nil {
		t.Fatal(err)
	}
	if backup.calls != 1 {
		t.Errorf("fresh cache should skip providers, backup called %d times", backup.calls)
	}

	now = now.Add(time.Hour)
	if _, err := gw.Quote(ctx, domain.QuoteKindCrypto, "BTC"); err != nil {
		t.Fatal(err)
	}
	if backup.calls != 2 {
		t.Errorf("stale cache should refetch, backup called %d times", backup.calls)
	}
}

func TestMarket_Errors(t *testing.T) {
	gw := usecase.NewMarketGateway(memory.NewQuoteCache(),
		usecase.WithProviders(domain.QuoteKindStock, &stubProvider{name: "down", err: errors.New("503")}),
	)
	ctx := context.Background()

	if _, err := gw.Quote(ctx, domain.QuoteKindStock, "AAPL"); !errors.Is(err, domain.ErrQuoteUnavailable) {
		t.Errorf("Quote(all down) error = %v, want %v", err, domain.ErrQuoteUnavailable)
	}
	if _, err := gw.Quote(ctx, domain.QuoteKindStock, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Quote(blank) error = %v, want validation", err)
	}
	if _, err := gw.Quote(ctx, domain.QuoteKind("bond"), "X"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Quote(bond) error = %v, want validation", err)
	}
}

func TestMarket_PurgeStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := memory.NewQuoteCache()
	ctx := context.Background()
	_ = cache.PutQuote(ctx, &domain.Quote{Symbol: "OLD", Kind: domain.QuoteKindStock, UpdatedAt: now.Add(-25 * time.Hour)})
	_ = cache.PutQuote(ctx, &domain.Quote{Symbol: "NEW", Kind: domain.QuoteKindStock, UpdatedAt: now.Add(-2 * time.Hour)})
	gw := usecase.NewMarketGateway(cache, usecase.WithMarketClock(func() time.Time { return now }))

	if gw.MaxTTL() != usecase.DefaultStockTTL {
		t.Errorf("MaxTTL() = %v", gw.MaxTTL())
	}
	n, err := gw.PurgeStale(ctx)
	if err != nil || n != 1 {
		t.Errorf("PurgeStale() = %d, %v; want 1", n, err)
	}
}
