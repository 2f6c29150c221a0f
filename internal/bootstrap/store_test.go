package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/market"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/adapter/out/memory"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/config"
)

func TestOpenBackend_MemoryWithWAL(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory, WALPath: filepath.Join(t.TempDir(), "wal.log")}}

	b, err := OpenBackend(ctx, cfg, true)
	if err != nil {
		t.Fatalf("OpenBackend() unexpected error = %v", err)
	}
	users := usecase.NewUserService(b.Store)
	u, err := users.Register(ctx, domain.NewUser{Name: "Lia", Email: "lia@example.com"})
	if err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() unexpected error = %v", err)
	}

	reopened, err := OpenBackend(ctx, cfg, false)
	if err != nil {
		t.Fatalf("OpenBackend() reopen unexpected error = %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Store.GetUser(ctx, u.ID); err != nil {
		t.Errorf("GetUser() after reopen error = %v", err)
	}
}

func TestOpenBackend_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}
	if _, err := OpenBackend(context.Background(), cfg, false); err == nil {
		t.Error("OpenBackend() error = nil for unknown driver")
	}
}

func TestNewMarketGateway(t *testing.T) {
	b, err := OpenBackend(context.Background(), &config.Config{Store: config.StoreConfig{Driver: config.DriverMemory}}, false)
	if err != nil {
		t.Fatalf("OpenBackend() unexpected error = %v", err)
	}
	defer b.Close()

	cfg := config.MarketConfig{
		Stock: []market.Config{{Name: "broken"}},
	}
	if _, err := NewMarketGateway(cfg, b.Quotes, nil); err == nil {
		t.Error("NewMarketGateway() error = nil for provider without url")
	}

	cfg.Stock = []market.Config{{Name: "brapi", URL: "https://example.invalid/{symbol}", PricePath: "$.price"}}
	if _, err := NewMarketGateway(cfg, b.Quotes, nil); err != nil {
		t.Errorf("NewMarketGateway() unexpected error = %v", err)
	}
}

func TestOpenBackend_MemorySequencer(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{
		Driver:    config.DriverMemory,
		WALPath:   filepath.Join(t.TempDir(), "wal.log"),
		Sequencer: true,
	}}
	b, err := OpenBackend(ctx, cfg, false)
	if err != nil {
		t.Fatalf("OpenBackend() unexpected error = %v", err)
	}
	if _, ok := b.Store.(*memory.Sequencer); !ok {
		t.Fatalf("Store = %T, want *memory.Sequencer", b.Store)
	}
	u, err := usecase.NewUserService(b.Store).Register(ctx, domain.NewUser{Name: "Max", Email: "max@example.com"})
	if err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}
	_, balance, err := usecase.NewLedgerService(b.Store).CreateTransaction(ctx, u.ID, domain.NewTransaction{
		Title: "Salary", Amount: 1000, Type: domain.TransactionTypeIncome, Category: "work", Date: time.Now(),
	})
	if err != nil || balance != 1000 {
		t.Fatalf("CreateTransaction() = %d, %v", balance, err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close() unexpected error = %v", err)
	}
}
