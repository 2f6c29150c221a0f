package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/market"
	"github.com/JoeShih716/go-fin-ledger/pkg/auth"
	"github.com/JoeShih716/go-fin-ledger/pkg/mysql"
	"github.com/JoeShih716/go-fin-ledger/pkg/postgres"
)

// Store driver
const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Store    StoreConfig     `yaml:"store"`
	MySQL    mysql.Config    `yaml:"mysql"`
	Postgres postgres.Config `yaml:"postgres"`
	Auth     auth.Config     `yaml:"auth"`
	Currency CurrencyConfig  `yaml:"currency"`
	Market   MarketConfig    `yaml:"market"`
}

type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	CORSOrigins     string        `yaml:"cors_origins"`
	CookieName      string        `yaml:"cookie_name"`
	WriteRateLimit  int           `yaml:"write_rate_limit"` // 每個使用者每分鐘的寫入次數
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver  string `yaml:"driver"`   // memory / mysql / postgres
	WALPath string `yaml:"wal_path"` // memory 專用，空字串代表不落地
	// Sequencer memory 專用：所有寫入交給單一 goroutine 依序執行 (預設為互斥鎖)
	Sequencer       bool `yaml:"sequencer"`
	SequencerBuffer int  `yaml:"sequencer_buffer"`
}

// CurrencyConfig 金額以該幣別的最小單位存放
type CurrencyConfig struct {
	Code string `yaml:"code"`
}

type MarketConfig struct {
	StockTTL      time.Duration   `yaml:"stock_ttl"`
	CryptoTTL     time.Duration   `yaml:"crypto_ttl"`
	PurgeSchedule string          `yaml:"purge_schedule"` // cron 表示式
	Stock         []market.Config `yaml:"stock"`
	Crypto        []market.Config `yaml:"crypto"`
}

// Load 讀取 yaml 設定檔
//
// 同目錄或工作目錄的 .env 會先載入 (不存在則略過)，
// yaml 內的 ${VAR} 以環境變數展開後才解析。
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse 解析設定內容並補上預設值
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":50051"
	}
	if c.Server.CORSOrigins == "" {
		c.Server.CORSOrigins = "*"
	}
	if c.Server.CookieName == "" {
		c.Server.CookieName = "auth_token"
	}
	if c.Server.WriteRateLimit == 0 {
		c.Server.WriteRateLimit = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}

	// 補全 MySQL 預設配置 (如果 yaml 沒寫)
	if c.MySQL.Port == 0 {
		c.MySQL.Port = 3306
	}
	if c.MySQL.MaxOpenConns == 0 {
		c.MySQL.MaxOpenConns = 100
	}
	if c.MySQL.MaxIdleConns == 0 {
		c.MySQL.MaxIdleConns = 10
	}
	if c.MySQL.ConnMaxLifetime == 0 {
		c.MySQL.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Postgres.MaxConns == 0 {
		c.Postgres.MaxConns = 20
	}

	if c.Auth.TTL == 0 {
		c.Auth.TTL = 24 * time.Hour
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "finledger"
	}
	if c.Currency.Code == "" {
		c.Currency.Code = "BRL"
	}
	c.Currency.Code = strings.ToUpper(c.Currency.Code)

	if c.Market.StockTTL == 0 {
		c.Market.StockTTL = 24 * time.Hour
	}
	if c.Market.CryptoTTL == 0 {
		c.Market.CryptoTTL = time.Hour
	}
	if c.Market.PurgeSchedule == "" {
		c.Market.PurgeSchedule = "@every 1h"
	}
}

// Validate 檢查必要設定
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("config: auth.secret is required (set FINLEDGER_JWT_SECRET)")
	}
	for _, p := range append(append([]market.Config{}, c.Market.Stock...), c.Market.Crypto...) {
		if p.Name == "" || p.URL == "" || p.PricePath == "" {
			return fmt.Errorf("config: market provider needs name, url and price_path: %+v", p)
		}
	}
	return nil
}
