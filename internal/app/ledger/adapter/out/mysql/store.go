package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/pkg/mysql"
)

// Store 以 GORM/MySQL 實作 usecase.Store
//
// 每個原子單元是一個資料庫 transaction，先以 SELECT ... FOR UPDATE 鎖住
// 使用者列，同一使用者的所有寫入因此排隊執行。
type Store struct {
	client *mysql.Client
}

func NewStore(client *mysql.Client) *Store {
	return &Store{
		client: client,
	}
}

// Migrate 建立或更新資料表
func (s *Store) Migrate(ctx context.Context) error {
	err := s.client.DB().WithContext(ctx).AutoMigrate(&sqlUser{}, &sqlTransaction{}, &sqlQuote{})
	if err != nil {
		return fmt.Errorf("%w: migrate: %v", domain.ErrStoreFailure, err)
	}
	return nil
}

// storeErr 領域錯誤原樣回傳，其餘一律包成 domain.ErrStoreFailure ，保留 driver 錯誤鏈
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, domain.ErrStoreFailure):
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreFailure, err)
}

func (s *Store) Atomically(ctx context.Context, fn func(tx usecase.StoreTx) error) error {
	err := s.client.Transaction(ctx, func(db *gorm.DB) error {
		return fn(&storeTx{db: db})
	})
	return storeErr(err)
}

func (s *Store) ListTransactions(ctx context.Context, ownerID string, from, to *time.Time) ([]domain.Transaction, error) {
	q := s.client.DB().WithContext(ctx).Where("owner_id = ?", ownerID)
	if from != nil {
		q = q.Where("date >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("date <= ?", to.UTC())
	}
	var rows []sqlTransaction
	if err := q.Order("date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return findUser(s.client.DB().WithContext(ctx), "id = ?", userID)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findUser(s.client.DB().WithContext(ctx), "email = ?", email)
}

func findUser(db *gorm.DB, query string, arg any) (*domain.User, error) {
	var row sqlUser
	err := db.Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return row.toDomain(), nil
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	err := s.client.DB().WithContext(ctx).Create(toUserRow(user)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrUserAlreadyExists
	}
	return storeErr(err)
}

func (s *Store) UpdateUserPhone(ctx context.Context, userID, phone string) error {
	return s.client.Transaction(ctx, func(db *gorm.DB) error {
		if _, err := findUser(db, "id = ?", userID); err != nil {
			return err
		}
		return storeErr(db.Model(&sqlUser{}).Where("id = ?", userID).Update("phone", phone).Error)
	})
}

// storeTx 原子單元內的操作，db 為 gorm transaction
type storeTx struct {
	db *gorm.DB
}

func (tx *storeTx) LockUser(ctx context.Context, userID string) (*domain.User, error) {
	return findUser(tx.db.Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", userID)
}

func (tx *storeTx) InsertTransaction(ctx context.Context, tran *domain.Transaction) error {
	return storeErr(tx.db.Create(toTransactionRow(tran)).Error)
}

func (tx *storeTx) FindTransaction(ctx context.Context, id, ownerID string) (*domain.Transaction, error) {
	var row sqlTransaction
	err := tx.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	t := row.toDomain()
	return &t, nil
}

// SaveTransaction 呼叫前必須已經 FindTransaction 鎖定該列
func (tx *storeTx) SaveTransaction(ctx context.Context, tran *domain.Transaction) error {
	row := toTransactionRow(tran)
	err := tx.db.Model(&sqlTransaction{}).
		Where("id = ? AND owner_id = ?", tran.ID, tran.OwnerID).
		Updates(map[string]any{
			"title":      row.Title,
			"category":   row.Category,
			"amount":     row.Amount,
			"type":       row.Type,
			"date":       row.Date,
			"updated_at": row.UpdatedAt,
		}).Error
	return storeErr(err)
}

func (tx *storeTx) DeleteTransaction(ctx context.Context, id, ownerID string) error {
	res := tx.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&sqlTransaction{})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (tx *storeTx) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	err := tx.db.Model(&sqlUser{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta)).Error
	if err != nil {
		return 0, storeErr(err)
	}
	// MySQL 的 RowsAffected 不計入值沒變的列，改以讀回確認使用者存在
	u, err := findUser(tx.db, "id = ?", userID)
	if err != nil {
		return 0, err
	}
	return u.Balance, nil
}

func (tx *storeTx) DeleteTransactionsByOwner(ctx context.Context, ownerID string) (int64, error) {
	res := tx.db.Where("owner_id = ?", ownerID).Delete(&sqlTransaction{})
	if res.Error != nil {
		return 0, storeErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (tx *storeTx) DeleteUser(ctx context.Context, userID string) error {
	res := tx.db.Where("id = ?", userID).Delete(&sqlUser{})
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

var (
	_ usecase.Store   = (*Store)(nil)
	_ usecase.StoreTx = (*storeTx)(nil)
)
