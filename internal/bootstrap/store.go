// Package bootstrap 依設定組出儲存層，server 與 finctl 共用
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	memory_adapter "github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/memory"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/market"
	mysql_adapter "github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/mysql"
	postgres_adapter "github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/postgres"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/config"
	"github.com/JoeShih716/go-fin-ledger/pkg/mysql"
	"github.com/JoeShih716/go-fin-ledger/pkg/postgres"
	"github.com/JoeShih716/go-fin-ledger/pkg/wal"
)

// Backend 一組儲存實作與對應的關閉函式
type Backend struct {
	Store  usecase.Store
	Quotes usecase.QuoteCache
	close  []func() error
}

// Close 依建立的反向順序釋放資源
func (b *Backend) Close() error {
	var firstErr error
	for i := len(b.close) - 1; i >= 0; i-- {
		if err := b.close[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.close = nil
	return firstErr
}

// OpenBackend 依 store.driver 建立儲存層
//
// migrate 為 true 時會先建立 / 更新資料表 (memory 無作用)。
func OpenBackend(ctx context.Context, cfg *config.Config, migrate bool) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMySQL:
		return openMySQL(ctx, cfg.MySQL, migrate)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Postgres, migrate)
	case config.DriverMemory:
		return openMemory(cfg.Store)
	}
	return nil, fmt.Errorf("bootstrap: unknown store driver %q", cfg.Store.Driver)
}

func openMySQL(ctx context.Context, cfg mysql.Config, migrate bool) (*Backend, error) {
	client, err := mysql.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	store := mysql_adapter.NewStore(client)
	if migrate {
		if err := store.Migrate(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("migrate mysql: %w", err)
		}
	}
	log.Printf("Using MySQL store at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &Backend{
		Store:  store,
		Quotes: mysql_adapter.NewQuoteCache(client),
		close:  []func() error{client.Close},
	}, nil
}

func openPostgres(ctx context.Context, cfg postgres.Config, migrate bool) (*Backend, error) {
	client, err := postgres.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if migrate {
		if err := postgres_adapter.Migrate(ctx, client); err != nil {
			client.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}
	log.Printf("Using PostgreSQL store at %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &Backend{
		Store:  postgres_adapter.NewStore(client),
		Quotes: postgres_adapter.NewQuoteCache(client),
		close:  []func() error{func() error { client.Close(); return nil }},
	}, nil
}

func openMemory(cfg config.StoreConfig) (*Backend, error) {
	b := &Backend{Quotes: memory_adapter.NewQuoteCache()}
	var w *wal.WAL
	if cfg.WALPath != "" {
		var err error
		if w, err = wal.NewWAL(cfg.WALPath); err != nil {
			return nil, fmt.Errorf("open wal: %w", err)
		}
		b.close = append(b.close, w.Close)
	}
	store, err := memory_adapter.NewStore(w)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("recover memory store: %w", err)
	}
	b.Store = store
	if w != nil {
		log.Printf("Using memory store (WAL: %s)", cfg.WALPath)
	} else {
		log.Println("Using memory store without WAL, data is lost on exit")
	}

	if cfg.Sequencer {
		ctx, cancel := context.WithCancel(context.Background())
		seq := memory_adapter.NewSequencer(store, cfg.SequencerBuffer)
		seq.Start(ctx)
		// 先停 sequencer 再關 WAL
		b.close = append(b.close, func() error {
			cancel()
			<-seq.Done()
			return nil
		})
		b.Store = seq
		log.Println("Memory store writes go through the sequencer")
	}
	return b, nil
}

// NewMarketGateway 依設定建立報價來源 (依序嘗試) 與快取時間
func NewMarketGateway(cfg config.MarketConfig, quotes usecase.QuoteCache, client *http.Client) (*usecase.MarketGateway, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	opts := []usecase.MarketOption{
		usecase.WithTTL(domain.QuoteKindStock, cfg.StockTTL),
		usecase.WithTTL(domain.QuoteKindCrypto, cfg.CryptoTTL),
	}
	for kind, providers := range map[domain.QuoteKind][]market.Config{
		domain.QuoteKindStock:  cfg.Stock,
		domain.QuoteKindCrypto: cfg.Crypto,
	} {
		list := make([]usecase.QuoteProvider, 0, len(providers))
		for _, pc := range providers {
			p, err := market.NewHTTPProvider(pc, client)
			if err != nil {
				return nil, fmt.Errorf("market provider %s: %w", pc.Name, err)
			}
			list = append(list, p)
		}
		opts = append(opts, usecase.WithProviders(kind, list...))
	}
	return usecase.NewMarketGateway(quotes, opts...), nil
}
