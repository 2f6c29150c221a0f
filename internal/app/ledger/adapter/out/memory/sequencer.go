package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
)

// ErrSequencerStopped Sequencer 已停止，不再接受寫入
var ErrSequencerStopped = errors.New("sequencer stopped")

// sequencedRequest 包裝一個原子單元，讓呼叫者可以等結果
type sequencedRequest struct {
	ctx    context.Context
	fn     func(tx usecase.StoreTx) error
	result chan error
}

// Sequencer 單一寫入者模式的 Store
//
// Atomically -> Channel -> run loop (唯一的寫入 goroutine) -> Store.Atomically -> result channel。
// 讀取直接走內嵌的 Store。
type Sequencer struct {
	*Store
	requests chan *sequencedRequest
	pool     sync.Pool
	done     chan struct{}
	started  sync.Once
}

// NewSequencer buffer 為輸送帶長度，<= 0 時用 1024
func NewSequencer(store *Store, buffer int) *Sequencer {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Sequencer{
		Store:    store,
		requests: make(chan *sequencedRequest, buffer),
		pool: sync.Pool{
			New: func() any {
				return &sequencedRequest{result: make(chan error, 1)}
			},
		},
		done: make(chan struct{}),
	}
}

// Start 啟動寫入 loop，ctx 結束時處理完輸送帶上剩下的請求後停止
func (s *Sequencer) Start(ctx context.Context) {
	s.started.Do(func() {
		go s.run(ctx)
	})
}

// Done loop 結束後關閉
func (s *Sequencer) Done() <-chan struct{} {
	return s.done
}

func (s *Sequencer) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case req := <-s.requests:
			s.process(req)
		}
	}
}

func (s *Sequencer) drain() {
	for {
		select {
		case req := <-s.requests:
			s.process(req)
		default:
			return
		}
	}
}

// process fn panic 時 Store 已回滾，這裡轉成錯誤交回呼叫者，loop 繼續
func (s *Sequencer) process(req *sequencedRequest) {
	defer func() {
		if r := recover(); r != nil {
			req.result <- fmt.Errorf("%w: panic: %v", domain.ErrStoreFailure, r)
		}
	}()
	req.result <- s.Store.Atomically(req.ctx, req.fn)
}

// Atomically 排進輸送帶並等待單一寫入者執行完畢
func (s *Sequencer) Atomically(ctx context.Context, fn func(tx usecase.StoreTx) error) error {
	req := s.pool.Get().(*sequencedRequest)
	req.ctx, req.fn = ctx, fn

	select {
	case s.requests <- req:
	case <-s.done:
		s.recycle(req)
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, ErrSequencerStopped)
	case <-ctx.Done():
		s.recycle(req)
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, ctx.Err())
	}

	select {
	case err := <-req.result:
		s.recycle(req)
		return err
	case <-s.done:
		// loop 結束前可能剛好處理完
		select {
		case err := <-req.result:
			s.recycle(req)
			return err
		default:
			// 請求還留在輸送帶上，不放回 pool
			return fmt.Errorf("%w: %v", domain.ErrStoreFailure, ErrSequencerStopped)
		}
	}
}

func (s *Sequencer) recycle(req *sequencedRequest) {
	req.ctx, req.fn = nil, nil
	s.pool.Put(req)
}

var _ usecase.Store = (*Sequencer)(nil)
