package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// 預設快取時間：加密貨幣一小時，股票一天
const (
	DefaultCryptoTTL = time.Hour
	DefaultStockTTL  = 24 * time.Hour
)

// MarketGateway 代理外部行情 API，並以 QuoteCache 做短期快取
type MarketGateway struct {
	cache     QuoteCache
	providers map[domain.QuoteKind][]QuoteProvider
	ttl       map[domain.QuoteKind]time.Duration
	now       func() time.Time
}

// MarketOption 設定 MarketGateway
type MarketOption func(*MarketGateway)

// WithProviders 設定某種行情的來源，依序嘗試
func WithProviders(kind domain.QuoteKind, providers ...QuoteProvider) MarketOption {
	return func(g *MarketGateway) {
		g.providers[kind] = append(g.providers[kind], providers...)
	}
}

// WithTTL 設定某種行情的快取時間
func WithTTL(kind domain.QuoteKind, ttl time.Duration) MarketOption {
	return func(g *MarketGateway) {
		if ttl > 0 {
			g.ttl[kind] = ttl
		}
	}
}

// WithMarketClock 替換時間來源 (測試用)
func WithMarketClock(now func() time.Time) MarketOption {
	return func(g *MarketGateway) {
		g.now = now
	}
}

func NewMarketGateway(cache QuoteCache, opts ...MarketOption) *MarketGateway {
	g := &MarketGateway{
		cache:     cache,
		providers: make(map[domain.QuoteKind][]QuoteProvider),
		ttl: map[domain.QuoteKind]time.Duration{
			domain.QuoteKindCrypto: DefaultCryptoTTL,
			domain.QuoteKindStock:  DefaultStockTTL,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Quote 取得報價：快取未過期直接回傳，否則依序詢問來源，第一個成功的寫回快取
func (g *MarketGateway) Quote(ctx context.Context, kind domain.QuoteKind, ticker string) (*domain.Quote, error) {
	if !kind.Valid() {
		return nil, &domain.ValidationError{Field: "kind", Cause: fmt.Errorf("unknown quote kind %q", kind)}
	}
	symbol, err := domain.NormalizeSymbol(ticker)
	if err != nil {
		return nil, err
	}
	now := g.now()

	cached, err := g.cache.GetQuote(ctx, kind, symbol)
	if err != nil {
		return nil, err
	}
	if cached != nil && cached.Fresh(now, g.ttl[kind]) {
		return cached, nil
	}

	for _, p := range g.providers[kind] {
		q, err := p.Fetch(ctx, symbol)
		if err != nil {
			log.Printf("market: %s %s via %s failed: %v", kind, symbol, p.Name(), err)
			continue
		}
		q.Symbol = symbol
		q.Kind = kind
		q.UpdatedAt = now
		if q.Source == "" {
			q.Source = p.Name()
		}
		if err := g.cache.PutQuote(ctx, q); err != nil {
			return nil, err
		}
		return q, nil
	}
	return nil, fmt.Errorf("%w: %s %s", domain.ErrQuoteUnavailable, kind, symbol)
}

// MaxTTL 所有種類中最長的快取時間
func (g *MarketGateway) MaxTTL() time.Duration {
	var max time.Duration
	for _, ttl := range g.ttl {
		if ttl > max {
			max = ttl
		}
	}
	return max
}

// PurgeStale 刪除超過最長 TTL 的快取 (排程呼叫)
func (g *MarketGateway) PurgeStale(ctx context.Context) (int64, error) {
	return g.cache.PurgeQuotes(ctx, g.now().Add(-g.MaxTTL()))
}
