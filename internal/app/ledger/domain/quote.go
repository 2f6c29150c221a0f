package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteKind 行情種類
type QuoteKind string

const (
	QuoteKindStock  QuoteKind = "stock"
	QuoteKindCrypto QuoteKind = "crypto"
)

// Valid 是否為支援的種類
func (k QuoteKind) Valid() bool {
	return k == QuoteKindStock || k == QuoteKindCrypto
}

// Quote 單一標的的最新報價
type Quote struct {
	Symbol        string
	Kind          QuoteKind
	Price         decimal.Decimal
	ChangePercent string
	Source        string
	UpdatedAt     time.Time
}

// Fresh 報價在 ttl 內仍可使用
func (q *Quote) Fresh(now time.Time, ttl time.Duration) bool {
	return q.UpdatedAt.After(now.Add(-ttl))
}

// NormalizeSymbol 代號一律轉大寫
func NormalizeSymbol(ticker string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(ticker))
	if s == "" {
		return "", invalid(ErrMissingField, "ticker")
	}
	return s, nil
}
