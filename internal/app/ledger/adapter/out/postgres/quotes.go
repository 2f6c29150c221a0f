package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/pkg/postgres"
)

// QuoteCache 行情快取 (market_quotes 表)
type QuoteCache struct {
	client *postgres.Client
}

func NewQuoteCache(client *postgres.Client) *QuoteCache {
	return &QuoteCache{client: client}
}

func (c *QuoteCache) GetQuote(ctx context.Context, kind domain.QuoteKind, symbol string) (*domain.Quote, error) {
	var (
		q     domain.Quote
		k     string
		price string
	)
	err := c.client.Pool().QueryRow(ctx,
		`SELECT kind, symbol, price::text, change_percent, source, updated_at
		 FROM market_quotes WHERE kind = $1 AND symbol = $2`, string(kind), symbol).
		Scan(&k, &q.Symbol, &price, &q.ChangePercent, &q.Source, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	q.Kind = domain.QuoteKind(k)
	if q.Price, err = decimal.NewFromString(price); err != nil {
		return nil, storeErr(err)
	}
	q.UpdatedAt = q.UpdatedAt.Local()
	return &q, nil
}

func (c *QuoteCache) PutQuote(ctx context.Context, quote *domain.Quote) error {
	_, err := c.client.Pool().Exec(ctx,
		`INSERT INTO market_quotes (kind, symbol, price, change_percent, source, updated_at)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6)
		 ON CONFLICT (kind, symbol) DO UPDATE SET
		   price = EXCLUDED.price,
		   change_percent = EXCLUDED.change_percent,
		   source = EXCLUDED.source,
		   updated_at = EXCLUDED.updated_at`,
		string(quote.Kind), quote.Symbol, quote.Price.String(), quote.ChangePercent, quote.Source, quote.UpdatedAt)
	return storeErr(err)
}

func (c *QuoteCache) PurgeQuotes(ctx context.Context, before time.Time) (int64, error) {
	tag, err := c.client.Pool().Exec(ctx, `DELETE FROM market_quotes WHERE updated_at < $1`, before)
	if err != nil {
		return 0, storeErr(err)
	}
	return tag.RowsAffected(), nil
}

var _ usecase.QuoteCache = (*QuoteCache)(nil)
