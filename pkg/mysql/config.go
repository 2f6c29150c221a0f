package mysql

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Config 定義 MySQL 連線與連線池的配置
type Config struct {
	Host     string `yaml:"host"`     // 資料庫主機地址
	Port     int    `yaml:"port"`     // 資料庫埠號 (預設 3306)
	User     string `yaml:"user"`     // 使用者名稱
	Password string `yaml:"password"` // 密碼
	DBName   string `yaml:"db_name"`  // 資料庫名稱

	// 連線池設定 (Connection Pool)
	// 參考: https://github.com/go-sql-driver/mysql#important-settings
	MaxOpenConns    int           `yaml:"max_open_conns"`    // 最大開啟連線數
	MaxIdleConns    int           `yaml:"max_idle_conns"`    // 最大閒置連線數
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"` // 連線最大存活時間

	// ConnectRetries 啟動時連線重試次數 (資料庫容器可能比服務晚起來)
	ConnectRetries int           `yaml:"connect_retries"`
	RetryInterval  time.Duration `yaml:"retry_interval"`

	// Isolation 交易隔離等級: "serializable" (預設), "repeatable_read", "read_committed"
	Isolation string `yaml:"isolation"`

	// GORM 設定
	LogLevel string `yaml:"log_level"` // Log 等級: "silent", "error", "warn", "info"
}

// DSN (Data Source Name) 產生連線字串
// 格式: user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=UTC
//
// 時間一律以 UTC 存放，顯示時再轉成本地時間。
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}

// IsolationLevel 把設定字串轉成 sql.IsolationLevel
func (c *Config) IsolationLevel() (sql.IsolationLevel, error) {
	return ParseIsolation(c.Isolation)
}

// ParseIsolation 解析隔離等級，空字串視為 serializable
func ParseIsolation(s string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "serializable":
		return sql.LevelSerializable, nil
	case "repeatable_read", "repeatable read":
		return sql.LevelRepeatableRead, nil
	case "read_committed", "read committed":
		return sql.LevelReadCommitted, nil
	}
	return 0, fmt.Errorf("unsupported isolation level %q", s)
}
