package memory

import (
	"context"
	"sync"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
)

type quoteKey struct {
	kind   domain.QuoteKind
	symbol string
}

// QuoteCache 行情快取的記憶體版本 (不寫 WAL，重啟後重新抓取即可)
type QuoteCache struct {
	mu     sync.RWMutex
	quotes map[quoteKey]domain.Quote
}

func NewQuoteCache() *QuoteCache {
	return &QuoteCache{quotes: make(map[quoteKey]domain.Quote)}
}

func (c *QuoteCache) GetQuote(ctx context.Context, kind domain.QuoteKind, symbol string) (*domain.Quote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quotes[quoteKey{kind, symbol}]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (c *QuoteCache) PutQuote(ctx context.Context, quote *domain.Quote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes[quoteKey{quote.Kind, quote.Symbol}] = *quote
	return nil
}

func (c *QuoteCache) PurgeQuotes(ctx context.Context, before time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for k, q := range c.quotes {
		if q.UpdatedAt.Before(before) {
			delete(c.quotes, k)
			n++
		}
	}
	return n, nil
}

var _ usecase.QuoteCache = (*QuoteCache)(nil)
