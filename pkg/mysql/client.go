package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client 封裝 GORM DB 實例
type Client struct {
	db        *gorm.DB
	isolation sql.IsolationLevel
}

// NewClient 建立並回傳一個新的 MySQL 客戶端實例 (GORM)
//
// 參數:
//
//	cfg: Config - MySQL 連線配置
//
// 回傳值:
//
//	*Client: 封裝後的 MySQL 客戶端
//	error: 若連線失敗則回傳錯誤
func NewClient(cfg Config) (*Client, error) {
	isolation, err := cfg.IsolationLevel()
	if err != nil {
		return nil, err
	}
	return open(mysql.Open(cfg.DSN()), cfg, isolation)
}

// NewClientWithDialector 以現成的 dialector 建立客戶端 (例如直接給 DSN 的測試)
func NewClientWithDialector(dialector gorm.Dialector, cfg Config) (*Client, error) {
	isolation, err := cfg.IsolationLevel()
	if err != nil {
		return nil, err
	}
	return open(dialector, cfg, isolation)
}

func open(dialector gorm.Dialector, cfg Config, isolation sql.IsolationLevel) (*Client, error) {
	gormConfig := &gorm.Config{
		// 寫入一律走 Transaction，單筆讀取不需要額外包一層
		SkipDefaultTransaction: true,
		// 把 duplicate key 等驅動錯誤轉成 gorm.ErrDuplicatedKey
		TranslateError:         true,
		Logger:                 newLogger(cfg.LogLevel),
	}

	maxRetries := cfg.ConnectRetries
	if maxRetries <= 0 {
		maxRetries = 10
	}
	retryInterval := cfg.RetryInterval
	if retryInterval <= 0 {
		retryInterval = 2 * time.Second
	}

	var db *gorm.DB
	var err error
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(dialector, gormConfig)
		if err == nil {
			rawDB, pingErr := db.DB()
			if pingErr == nil {
				if err = rawDB.Ping(); err == nil {
					break
				}
			} else {
				err = pingErr
			}
		}

		if i < maxRetries-1 {
			log.Printf("mysql: connect failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries, err, retryInterval)
			time.Sleep(retryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql after %d attempts: %w", maxRetries, err)
	}

	// 取得底層 sql.DB 物件以設定連線池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &Client{db: db, isolation: isolation}, nil
}

// DB 回傳底層的 *gorm.DB 實例，供 adapter 使用
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Transaction 以設定的隔離等級執行 fn，fn 回傳錯誤時 rollback
func (c *Client) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: c.isolation})
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newLogger 根據配置建立 GORM Logger
func newLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch level {
	case "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "error":
		logLevel = logger.Error
	case "silent":
		logLevel = logger.Silent
	default:
		logLevel = logger.Error // 預設只記錄錯誤
	}

	return logger.Default.LogMode(logLevel)
}
