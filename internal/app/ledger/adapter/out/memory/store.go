package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/pkg/wal"
)

// walOp 原子單元內的一個動作，重放時依序套用
type walOp struct {
	Op          string              `json:"op"`
	User        *domain.User        `json:"user,omitempty"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	ID          string              `json:"id,omitempty"`
	OwnerID     string              `json:"owner_id,omitempty"`
	Delta       int64               `json:"delta,omitempty"`
	Phone       string              `json:"phone,omitempty"`
}

const (
	opCreateUser   = "create_user"
	opUpdatePhone  = "update_phone"
	opDeleteUser   = "delete_user"
	opInsertTx     = "insert_tx"
	opSaveTx       = "save_tx"
	opDeleteTx     = "delete_tx"
	opDeleteByUser = "delete_by_owner"
	opAdjust       = "adjust_balance"
)

// walRecord 一個已提交的原子單元
type walRecord struct {
	Ops         []walOp `json:"ops"`
	CommittedAt int64   `json:"committed_at"`
}

// Store 是一個使用 Mutex 實現的帳本 store
//
// 結構:
//
//	users: 使用者 Map (含餘額)
//	transactions: 交易 Map
//	mu: 整個 store 只有一把鎖，原子單元彼此序列化
//	wal: Write-Ahead Log，nil 代表純記憶體
type Store struct {
	mu           sync.RWMutex
	users        map[string]*domain.User
	emails       map[string]string
	transactions map[string]*domain.Transaction
	wal          *wal.WAL
}

// NewStore 建立 Store，若有 WAL 先從 WAL 恢復狀態
//
// 參數:
//
//	w: Write-Ahead Log 實例，可為 nil
//
// 回傳:
//
//	*Store: Store 實例
//	error: 初始化錯誤 (如 WAL 恢復失敗)
func NewStore(w *wal.WAL) (*Store, error) {
	s := &Store{
		users:        make(map[string]*domain.User),
		emails:       make(map[string]string),
		transactions: make(map[string]*domain.Transaction),
		wal:          w,
	}
	if w == nil {
		return s, nil
	}
	if err := s.recoverFromWAL(); err != nil {
		return nil, err
	}
	return s, nil
}

// recoverFromWAL 從 WAL 檔案恢復狀態
// 只有 NewStore 呼叫，無需 Lock (單執行緒)
func (s *Store) recoverFromWAL() error {
	return s.wal.ReadAll(func(jsonRaw []byte) error {
		var rec walRecord
		if err := json.Unmarshal(jsonRaw, &rec); err != nil {
			return err
		}
		for _, op := range rec.Ops {
			if err := s.replay(op); err != nil {
				return fmt.Errorf("replay %s: %w", op.Op, err)
			}
		}
		return nil
	})
}

func (s *Store) replay(op walOp) error {
	switch op.Op {
	case opCreateUser:
		u := *op.User
		s.users[u.ID] = &u
		s.emails[u.Email] = u.ID
	case opUpdatePhone:
		if u, ok := s.users[op.ID]; ok {
			u.Phone = op.Phone
		}
	case opDeleteUser:
		if u, ok := s.users[op.ID]; ok {
			delete(s.emails, u.Email)
			delete(s.users, op.ID)
		}
	case opInsertTx, opSaveTx:
		t := *op.Transaction
		s.transactions[t.ID] = &t
	case opDeleteTx:
		delete(s.transactions, op.ID)
	case opDeleteByUser:
		for id, t := range s.transactions {
			if t.OwnerID == op.OwnerID {
				delete(s.transactions, id)
			}
		}
	case opAdjust:
		u, ok := s.users[op.ID]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.Balance += op.Delta
	default:
		return fmt.Errorf("unknown wal op %q", op.Op)
	}
	return nil
}

// journal 把提交的動作寫入 WAL (呼叫者持有寫鎖)
func (s *Store) journal(ops []walOp) error {
	if s.wal == nil || len(ops) == 0 {
		return nil
	}
	return s.wal.Write(walRecord{Ops: ops, CommittedAt: time.Now().UnixNano()})
}

// Atomically 在寫鎖內執行 fn，fn 失敗、panic 或 WAL 寫入失敗時依 undo log 反向回滾
func (s *Store) Atomically(ctx context.Context, fn func(tx usecase.StoreTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &storeTx{store: s}
	// fn panic 時先回滾再往上拋，鎖由上面的 defer 釋放
	defer func() {
		if r := recover(); r != nil {
			tx.rollback()
			panic(r)
		}
	}()
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	if err := s.journal(tx.ops); err != nil {
		tx.rollback()
		return fmt.Errorf("%w: wal: %v", domain.ErrStoreFailure, err)
	}
	return nil
}

// ListTransactions 依 owner 與日期範圍篩選，新到舊
func (s *Store) ListTransactions(ctx context.Context, ownerID string, from, to *time.Time) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, 0)
	for _, t := range s.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if from != nil && t.Date.Before(*from) {
			continue
		}
		if to != nil && t.Date.After(*to) {
			continue
		}
		out = append(out, *t)
	}
	domain.SortNewestFirst(out)
	return out, nil
}

// GetUser 取得使用者副本
func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// FindUserByEmail 以 email 查詢 (不分大小寫)
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.emails[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return s.GetUser(ctx, id)
}

// CreateUser 建立使用者
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := s.emails[email]; ok {
		return domain.ErrUserAlreadyExists
	}
	if _, ok := s.users[user.ID]; ok {
		return domain.ErrUserAlreadyExists
	}
	cp := *user
	cp.Email = email
	if err := s.journal([]walOp{{Op: opCreateUser, User: &cp}}); err != nil {
		return fmt.Errorf("%w: wal: %v", domain.ErrStoreFailure, err)
	}
	s.users[cp.ID] = &cp
	s.emails[email] = cp.ID
	return nil
}

// UpdateUserPhone 更新電話
func (s *Store) UpdateUserPhone(ctx context.Context, userID, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if err := s.journal([]walOp{{Op: opUpdatePhone, ID: userID, Phone: phone}}); err != nil {
		return fmt.Errorf("%w: wal: %v", domain.ErrStoreFailure, err)
	}
	u.Phone = phone
	return nil
}

// storeTx 原子單元：直接改 Map，並記錄 undo 與 WAL 動作
type storeTx struct {
	store *Store
	undo  []func()
	ops   []walOp
}

func (tx *storeTx) record(op walOp, undo func()) {
	tx.ops = append(tx.ops, op)
	tx.undo = append(tx.undo, undo)
}

// rollback 反向執行 undo
func (tx *storeTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	tx.ops = nil
}

func (tx *storeTx) LockUser(ctx context.Context, userID string) (*domain.User, error) {
	u, ok := tx.store.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (tx *storeTx) InsertTransaction(ctx context.Context, tran *domain.Transaction) error {
	if _, ok := tx.store.transactions[tran.ID]; ok {
		return fmt.Errorf("%w: duplicate transaction id %s", domain.ErrStoreFailure, tran.ID)
	}
	cp := *tran
	tx.store.transactions[cp.ID] = &cp
	tx.record(walOp{Op: opInsertTx, Transaction: &cp}, func() {
		delete(tx.store.transactions, cp.ID)
	})
	return nil
}

func (tx *storeTx) FindTransaction(ctx context.Context, id, ownerID string) (*domain.Transaction, error) {
	t, ok := tx.store.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (tx *storeTx) SaveTransaction(ctx context.Context, tran *domain.Transaction) error {
	prev, ok := tx.store.transactions[tran.ID]
	if !ok || prev.OwnerID != tran.OwnerID {
		return domain.ErrTransactionNotFound
	}
	cp := *tran
	tx.store.transactions[cp.ID] = &cp
	tx.record(walOp{Op: opSaveTx, Transaction: &cp}, func() {
		tx.store.transactions[prev.ID] = prev
	})
	return nil
}

func (tx *storeTx) DeleteTransaction(ctx context.Context, id, ownerID string) error {
	prev, ok := tx.store.transactions[id]
	if !ok || prev.OwnerID != ownerID {
		return domain.ErrTransactionNotFound
	}
	delete(tx.store.transactions, id)
	tx.record(walOp{Op: opDeleteTx, ID: id, OwnerID: ownerID}, func() {
		tx.store.transactions[id] = prev
	})
	return nil
}

func (tx *storeTx) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	u, ok := tx.store.users[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	if (delta > 0 && u.Balance > math.MaxInt64-delta) || (delta < 0 && u.Balance < math.MinInt64-delta) {
		return 0, fmt.Errorf("%w: balance of %s out of range", domain.ErrStoreFailure, userID)
	}
	u.Balance += delta
	tx.record(walOp{Op: opAdjust, ID: userID, Delta: delta}, func() {
		u.Balance -= delta
	})
	return u.Balance, nil
}

func (tx *storeTx) DeleteTransactionsByOwner(ctx context.Context, ownerID string) (int64, error) {
	removed := make(map[string]*domain.Transaction)
	for id, t := range tx.store.transactions {
		if t.OwnerID == ownerID {
			removed[id] = t
			delete(tx.store.transactions, id)
		}
	}
	tx.record(walOp{Op: opDeleteByUser, OwnerID: ownerID}, func() {
		for id, t := range removed {
			tx.store.transactions[id] = t
		}
	})
	return int64(len(removed)), nil
}

func (tx *storeTx) DeleteUser(ctx context.Context, userID string) error {
	u, ok := tx.store.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(tx.store.users, userID)
	delete(tx.store.emails, u.Email)
	tx.record(walOp{Op: opDeleteUser, ID: userID}, func() {
		tx.store.users[userID] = u
		tx.store.emails[u.Email] = userID
	})
	return nil
}

var (
	_ usecase.Store   = (*Store)(nil)
	_ usecase.StoreTx = (*storeTx)(nil)
)
