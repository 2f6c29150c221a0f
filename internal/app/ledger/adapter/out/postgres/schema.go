package postgres

import (
	"context"
	"fmt"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/pkg/postgres"
)

// schema 可重複執行
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          VARCHAR(36)  PRIMARY KEY,
	email       VARCHAR(255) NOT NULL UNIQUE,
	name        VARCHAR(255) NOT NULL,
	phone       VARCHAR(64)  NOT NULL DEFAULT '',
	credential  VARCHAR(255) NOT NULL,
	balance     BIGINT       NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
	id          VARCHAR(36)  PRIMARY KEY,
	owner_id    VARCHAR(36)  NOT NULL REFERENCES users(id),
	title       VARCHAR(255) NOT NULL,
	category    VARCHAR(64)  NOT NULL,
	amount      BIGINT       NOT NULL CHECK (amount > 0),
	type        VARCHAR(16)  NOT NULL CHECK (type IN ('income', 'expense')),
	date        TIMESTAMPTZ  NOT NULL,
	created_at  TIMESTAMPTZ  NOT NULL,
	updated_at  TIMESTAMPTZ  NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_owner_date ON transactions (owner_id, date DESC);

CREATE TABLE IF NOT EXISTS market_quotes (
	kind            VARCHAR(16)    NOT NULL,
	symbol          VARCHAR(32)    NOT NULL,
	price           NUMERIC(30,10) NOT NULL,
	change_percent  VARCHAR(32)    NOT NULL DEFAULT '',
	source          VARCHAR(64)    NOT NULL DEFAULT '',
	updated_at      TIMESTAMPTZ    NOT NULL,
	PRIMARY KEY (kind, symbol)
);

CREATE INDEX IF NOT EXISTS idx_market_quotes_updated_at ON market_quotes (updated_at);
`

// Migrate 建立資料表
func Migrate(ctx context.Context, client *postgres.Client) error {
	if _, err := client.Pool().Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate: %v", domain.ErrStoreFailure, err)
	}
	return nil
}
