package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// TrendMonths 儀表板趨勢圖的月數
const TrendMonths = 6

// LedgerService 維護「餘額 == 所有交易帶號金額總和」的不變量
type LedgerService struct {
	store Store
	now   func() time.Time
	newID func() string
}

// LedgerOption 設定 LedgerService
type LedgerOption func(*LedgerService)

// WithClock 替換時間來源 (測試用)
func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) {
		s.now = now
	}
}

// WithIDGenerator 替換交易 ID 產生器
func WithIDGenerator(newID func() string) LedgerOption {
	return func(s *LedgerService) {
		s.newID = newID
	}
}

// NewLedgerService 建立 LedgerService
func NewLedgerService(store Store, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listing 查詢結果，Balance 只有在有時間範圍時才帶
type Listing struct {
	Transactions []domain.Transaction
	Balance      *int64
}

// Dashboard 彙總、趨勢與分類支出
type Dashboard struct {
	Summary    domain.Summary
	Trend      []domain.MonthTotals
	Categories []domain.CategoryTotal
}

// CreateTransaction 新增交易並在同一個原子單元內調整餘額
//
// 參數:
//
//	ctx: 上下文
//	ownerID: 已驗證的使用者 ID
//	in: 交易內容
//
// 回傳:
//
//	*domain.Transaction: 建立的交易
//	int64: 新餘額
//	error: 驗證錯誤 / domain.ErrUserNotFound / domain.ErrStoreFailure
func (s *LedgerService) CreateTransaction(ctx context.Context, ownerID string, in domain.NewTransaction) (*domain.Transaction, int64, error) {
	if err := in.Validate(); err != nil {
		return nil, 0, err
	}
	now := s.now()
	tran := &domain.Transaction{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Title:     in.Title,
		Category:  in.Category,
		Amount:    in.Amount,
		Type:      in.Type,
		Date:      in.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var balance int64
	err := s.store.Atomically(ctx, func(tx StoreTx) error {
		if _, err := tx.LockUser(ctx, ownerID); err != nil {
			return err
		}
		if err := tx.InsertTransaction(ctx, tran); err != nil {
			return err
		}
		var err error
		balance, err = tx.AdjustBalance(ctx, ownerID, tran.Effect())
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return tran, balance, nil
}

// UpdateTransaction 部分更新交易
//
// 先反轉原交易對餘額的影響，再套用更新後的影響；金額、類型或兩者一起改都用同一條路徑。
// 空的 patch 也會走完整流程，淨變動為零。
func (s *LedgerService) UpdateTransaction(ctx context.Context, id, ownerID string, patch domain.TransactionPatch) (*domain.Transaction, int64, error) {
	if err := patch.Validate(); err != nil {
		return nil, 0, err
	}
	var (
		updated *domain.Transaction
		balance int64
	)
	err := s.store.Atomically(ctx, func(tx StoreTx) error {
		if _, err := tx.LockUser(ctx, ownerID); err != nil {
			return hideOwner(err)
		}
		tran, err := tx.FindTransaction(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if _, err := tx.AdjustBalance(ctx, ownerID, -tran.Effect()); err != nil {
			return err
		}
		patch.ApplyTo(tran)
		tran.UpdatedAt = s.now()
		if err := tx.SaveTransaction(ctx, tran); err != nil {
			return err
		}
		balance, err = tx.AdjustBalance(ctx, ownerID, tran.Effect())
		updated = tran
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return updated, balance, nil
}

// DeleteTransaction 刪除交易並反轉其對餘額的影響，回傳被刪除前的資料
func (s *LedgerService) DeleteTransaction(ctx context.Context, id, ownerID string) (*domain.Transaction, int64, error) {
	var (
		deleted *domain.Transaction
		balance int64
	)
	err := s.store.Atomically(ctx, func(tx StoreTx) error {
		if _, err := tx.LockUser(ctx, ownerID); err != nil {
			return hideOwner(err)
		}
		tran, err := tx.FindTransaction(ctx, id, ownerID)
		if err != nil {
			return err
		}
		balance, err = tx.AdjustBalance(ctx, ownerID, -tran.Effect())
		if err != nil {
			return err
		}
		if err := tx.DeleteTransaction(ctx, id, ownerID); err != nil {
			return err
		}
		deleted = tran
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return deleted, balance, nil
}

// GetTransactions 依時間範圍查詢交易，新到舊
//
// 有範圍時附帶目前完整餘額 (不是範圍起點的餘額)。
func (s *LedgerService) GetTransactions(ctx context.Context, ownerID string, window domain.Window) (*Listing, error) {
	from, to, windowed := window.Bounds(s.now())
	if !windowed {
		txs, err := s.store.ListTransactions(ctx, ownerID, nil, nil)
		if err != nil {
			return nil, err
		}
		domain.SortNewestFirst(txs)
		return &Listing{Transactions: txs}, nil
	}

	txs, err := s.store.ListTransactions(ctx, ownerID, &from, &to)
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(txs)
	user, err := s.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	balance := user.Balance
	return &Listing{Transactions: txs, Balance: &balance}, nil
}

// Dashboard 以最近六個月的交易計算儀表板資料，TotalBalance 取帳本餘額，分類支出也以這六個月為範圍
func (s *LedgerService) Dashboard(ctx context.Context, ownerID string) (*Dashboard, error) {
	listing, err := s.GetTransactions(ctx, ownerID, domain.WindowTrailingSixMonths)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &Dashboard{
		Summary:    domain.Summarize(now, *listing.Balance, listing.Transactions),
		Trend:      domain.Trend(now, TrendMonths, listing.Transactions),
		Categories: domain.ExpensesByCategory(listing.Transactions),
	}, nil
}

// MonthTransactions 取得指定日曆月的交易 (對帳單用)
func (s *LedgerService) MonthTransactions(ctx context.Context, ownerID string, month time.Time) ([]domain.Transaction, *domain.User, error) {
	from := domain.StartOfMonth(month)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	txs, err := s.store.ListTransactions(ctx, ownerID, &from, &to)
	if err != nil {
		return nil, nil, err
	}
	domain.SortNewestFirst(txs)
	user, err := s.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return txs, user, nil
}

// hideOwner 更新/刪除時使用者不存在也視為交易不存在
func hideOwner(err error) error {
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrTransactionNotFound
	}
	return err
}
