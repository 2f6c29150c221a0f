package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/pkg/mysql"
)

// QuoteCache 行情快取 (market_quotes 表)
type QuoteCache struct {
	client *mysql.Client
}

func NewQuoteCache(client *mysql.Client) *QuoteCache {
	return &QuoteCache{client: client}
}

func (c *QuoteCache) GetQuote(ctx context.Context, kind domain.QuoteKind, symbol string) (*domain.Quote, error) {
	var row sqlQuote
	err := c.client.DB().WithContext(ctx).
		Where("kind = ? AND symbol = ?", string(kind), symbol).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return row.toDomain(), nil
}

// PutQuote upsert (INSERT ... ON DUPLICATE KEY UPDATE)
func (c *QuoteCache) PutQuote(ctx context.Context, quote *domain.Quote) error {
	err := c.client.DB().WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(toQuoteRow(quote)).Error
	return storeErr(err)
}

func (c *QuoteCache) PurgeQuotes(ctx context.Context, before time.Time) (int64, error) {
	res := c.client.DB().WithContext(ctx).Where("updated_at < ?", before.UTC()).Delete(&sqlQuote{})
	if res.Error != nil {
		return 0, storeErr(res.Error)
	}
	return res.RowsAffected, nil
}

var _ usecase.QuoteCache = (*QuoteCache)(nil)
