package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase/storetest"
)

func newSequencer(t *testing.T) *Sequencer {
	t.Helper()
	store, err := NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore() unexpected error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	seq := NewSequencer(store, 16)
	seq.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-seq.Done()
	})
	return seq
}

func TestSequencer_Contract(t *testing.T) {
	storetest.Run(t, newSequencer(t))
}

func TestSequencer_ConcurrentWritesKeepBalance(t *testing.T) {
	seq := newSequencer(t)
	ctx := context.Background()
	users := usecase.NewUserService(seq)
	ledger := usecase.NewLedgerService(seq)
	u, err := users.Register(ctx, domain.NewUser{Name: "Seq", Email: "seq@example.com"})
	if err != nil {
		t.Fatalf("Register() unexpected error = %v", err)
	}

	const writers = 20
	const perWriter = 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			typ := domain.TransactionTypeIncome
			if w%2 == 1 {
				typ = domain.TransactionTypeExpense
			}
			for i := 0; i < perWriter; i++ {
				_, _, err := ledger.CreateTransaction(ctx, u.ID, domain.NewTransaction{
					Title: "tick", Amount: int64(w + 1), Type: typ, Category: "load", Date: time.Now(),
				})
				if err != nil {
					t.Errorf("CreateTransaction() unexpected error = %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	txs, err := seq.ListTransactions(ctx, u.ID, nil, nil)
	if err != nil {
		t.Fatalf("ListTransactions() unexpected error = %v", err)
	}
	if len(txs) != writers*perWriter {
		t.Fatalf("got %d transactions, want %d", len(txs), writers*perWriter)
	}
	var sum int64
	for i := range txs {
		sum += txs[i].Effect()
	}
	got, err := seq.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser() unexpected error = %v", err)
	}
	if got.Balance != sum {
		t.Errorf("balance = %d, transactions sum to %d", got.Balance, sum)
	}
}

func TestSequencer_StoppedRejectsWrites(t *testing.T) {
	store, err := NewStore(nil)
	if err != nil {
		t.Fatalf("NewStore() unexpected error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	seq := NewSequencer(store, 1)
	seq.Start(ctx)
	cancel()
	<-seq.Done()

	err = seq.Atomically(context.Background(), func(tx usecase.StoreTx) error { return nil })
	if !errors.Is(err, domain.ErrStoreFailure) {
		t.Errorf("Atomically() after stop error = %v, want %v", err, domain.ErrStoreFailure)
	}
}

func TestSequencer_PanicBecomesStoreFailure(t *testing.T) {
	seq := newSequencer(t)
	ctx := context.Background()
	seedUser(t, seq.Store, "u1")

	err := seq.Atomically(ctx, func(tx usecase.StoreTx) error {
		if _, err := tx.AdjustBalance(ctx, "u1", 900); err != nil {
			return err
		}
		panic("boom")
	})
	if !errors.Is(err, domain.ErrStoreFailure) {
		t.Fatalf("Atomically() error = %v, want %v", err, domain.ErrStoreFailure)
	}

	// loop 仍在運作，且 panic 前的變動已回滾
	err = seq.Atomically(ctx, func(tx usecase.StoreTx) error {
		return insertIncome(ctx, tx, "t1", "u1", 250)
	})
	if err != nil {
		t.Fatalf("Atomically() after panic unexpected error = %v", err)
	}
	u, err := seq.GetUser(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUser() unexpected error = %v", err)
	}
	if u.Balance != 250 {
		t.Errorf("balance = %d, want 250", u.Balance)
	}
}
