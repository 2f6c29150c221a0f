package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// serializationRetries serializable 衝突 (SQLSTATE 40001) 時整個交易重跑的次數
const serializationRetries = 3

// Client 封裝 pgxpool
type Client struct {
	pool      *pgxpool.Pool
	isolation pgx.TxIsoLevel
}

// NewClient 建立連線池並確認可連線，失敗時依設定重試
//
// 參數:
//
//	ctx: 上下文
//	cfg: 連線配置
//
// 回傳值:
//
//	*Client: PostgreSQL 客戶端
//	error: 連線失敗
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	return NewClientFromDSN(ctx, cfg.DSN(), cfg)
}

// NewClientFromDSN 以完整 DSN 建立客戶端，連線池等其他設定仍取自 cfg
func NewClientFromDSN(ctx context.Context, dsn string, cfg Config) (*Client, error) {
	isolation, err := ParseIsolation(cfg.Isolation)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	maxRetries := cfg.ConnectRetries
	if maxRetries <= 0 {
		maxRetries = 10
	}
	retryInterval := cfg.RetryInterval
	if retryInterval <= 0 {
		retryInterval = 2 * time.Second
	}

	var pool *pgxpool.Pool
	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		if i < maxRetries-1 {
			log.Printf("postgres: connect failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries, err, retryInterval)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryInterval):
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, err)
	}
	return &Client{pool: pool, isolation: isolation}, nil
}

// Pool 回傳底層連線池
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// InTx 以設定的隔離等級執行 fn，fn 回傳錯誤時 rollback
//
// serializable 衝突時整個 fn 重新執行，fn 必須可以重跑。
func (c *Client) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < serializationRetries; attempt++ {
		err = pgx.BeginTxFunc(ctx, c.pool, pgx.TxOptions{IsoLevel: c.isolation}, fn)
		if !IsSerializationFailure(err) {
			return err
		}
	}
	return err
}

// Close 關閉連線池
func (c *Client) Close() {
	c.pool.Close()
}

// IsSerializationFailure SQLSTATE 40001 / 40P01
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// IsUniqueViolation SQLSTATE 23505
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
