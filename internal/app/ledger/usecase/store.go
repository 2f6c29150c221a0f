package usecase

import (
	"context"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// Store 是帳本的持久層介面 (Relational Store)
//
// 所有會動到餘額的寫入只能透過 Atomically 拿到的 StoreTx 進行，
// 確保交易紀錄與餘額永遠在同一個原子單元內變動。
type Store interface {
	// Atomically 在單一 store transaction 內執行 fn，fn 回傳錯誤時全部回滾
	Atomically(ctx context.Context, fn func(tx StoreTx) error) error
	// ListTransactions 取得使用者的交易，from/to 為 nil 代表不限，依日期新到舊
	ListTransactions(ctx context.Context, ownerID string, from, to *time.Time) ([]domain.Transaction, error)
	// GetUser 取得使用者 (含餘額)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	// FindUserByEmail 以 email 查詢使用者
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// CreateUser 建立使用者，email 重複回傳 domain.ErrUserAlreadyExists
	CreateUser(ctx context.Context, user *domain.User) error
	// UpdateUserPhone 更新電話
	UpdateUserPhone(ctx context.Context, userID, phone string) error
}

// StoreTx 是原子單元內可用的操作
type StoreTx interface {
	// LockUser 鎖定使用者列 (SELECT ... FOR UPDATE)，之後同一使用者的寫入都會排隊
	LockUser(ctx context.Context, userID string) (*domain.User, error)
	// InsertTransaction 新增交易
	InsertTransaction(ctx context.Context, tran *domain.Transaction) error
	// FindTransaction 以 (id, owner) 查詢並鎖定交易，找不到回傳 domain.ErrTransactionNotFound
	FindTransaction(ctx context.Context, id, ownerID string) (*domain.Transaction, error)
	// SaveTransaction 覆寫交易欄位
	SaveTransaction(ctx context.Context, tran *domain.Transaction) error
	// DeleteTransaction 刪除交易
	DeleteTransaction(ctx context.Context, id, ownerID string) error
	// AdjustBalance 以 delta 調整餘額並回傳新餘額
	AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error)
	// DeleteTransactionsByOwner 刪除使用者所有交易，回傳筆數
	DeleteTransactionsByOwner(ctx context.Context, ownerID string) (int64, error)
	// DeleteUser 刪除使用者
	DeleteUser(ctx context.Context, userID string) error
}

// QuoteCache 行情快取
type QuoteCache interface {
	// GetQuote 找不到時回傳 (nil, nil)
	GetQuote(ctx context.Context, kind domain.QuoteKind, symbol string) (*domain.Quote, error)
	// PutQuote upsert 一筆報價
	PutQuote(ctx context.Context, quote *domain.Quote) error
	// PurgeQuotes 刪除 before 之前更新的報價，回傳筆數
	PurgeQuotes(ctx context.Context, before time.Time) (int64, error)
}

// QuoteProvider 外部行情來源
type QuoteProvider interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (*domain.Quote, error)
}
