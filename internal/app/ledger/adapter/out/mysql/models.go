package mysql

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// sqlUser 對應資料庫的 users 表
type sqlUser struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	Email      string `gorm:"type:varchar(255);uniqueIndex"`
	Name       string `gorm:"type:varchar(255)"`
	Phone      string `gorm:"type:varchar(64)"`
	Credential string `gorm:"type:varchar(255)"`
	Balance    int64
	CreatedAt  time.Time `gorm:"type:datetime(6)"`
	UpdatedAt  time.Time `gorm:"type:datetime(6)"` // 自動更新時間
}

func (*sqlUser) TableName() string {
	return "users"
}

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	OwnerID   string    `gorm:"type:varchar(36);index:idx_owner_date,priority:1"`
	Title     string    `gorm:"type:varchar(255)"`
	Category  string    `gorm:"type:varchar(64)"`
	Amount    int64     // cents，永遠 > 0
	Type      string    `gorm:"type:varchar(16)"`
	Date      time.Time `gorm:"type:datetime(6);index:idx_owner_date,priority:2"`
	CreatedAt time.Time `gorm:"type:datetime(6)"`
	UpdatedAt time.Time `gorm:"type:datetime(6)"`
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

// sqlQuote 對應 market_quotes 表 (行情快取)
type sqlQuote struct {
	Kind          string          `gorm:"primaryKey;type:varchar(16)"`
	Symbol        string          `gorm:"primaryKey;type:varchar(32)"`
	Price         decimal.Decimal `gorm:"type:decimal(30,10)"`
	ChangePercent string          `gorm:"type:varchar(32)"`
	Source        string          `gorm:"type:varchar(64)"`
	UpdatedAt     time.Time       `gorm:"type:datetime(6);index;autoUpdateTime:false"`
}

func (*sqlQuote) TableName() string {
	return "market_quotes"
}

func toUserRow(u *domain.User) *sqlUser {
	return &sqlUser{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		Credential: u.Credential,
		Balance:    u.Balance,
		CreatedAt:  u.CreatedAt.UTC(),
	}
}

func (r *sqlUser) toDomain() *domain.User {
	return &domain.User{
		ID:         r.ID,
		Email:      r.Email,
		Name:       r.Name,
		Phone:      r.Phone,
		Credential: r.Credential,
		Balance:    r.Balance,
		CreatedAt:  r.CreatedAt.Local(),
	}
}

func toTransactionRow(t *domain.Transaction) *sqlTransaction {
	return &sqlTransaction{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Title:     t.Title,
		Category:  t.Category,
		Amount:    t.Amount,
		Type:      string(t.Type),
		Date:      t.Date.UTC(),
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
}

func (r *sqlTransaction) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Title:     r.Title,
		Category:  r.Category,
		Amount:    r.Amount,
		Type:      domain.TransactionType(r.Type),
		Date:      r.Date.Local(),
		CreatedAt: r.CreatedAt.Local(),
		UpdatedAt: r.UpdatedAt.Local(),
	}
}

func toQuoteRow(q *domain.Quote) *sqlQuote {
	return &sqlQuote{
		Kind:          string(q.Kind),
		Symbol:        q.Symbol,
		Price:         q.Price,
		ChangePercent: q.ChangePercent,
		Source:        q.Source,
		UpdatedAt:     q.UpdatedAt.UTC(),
	}
}

func (r *sqlQuote) toDomain() *domain.Quote {
	return &domain.Quote{
		Symbol:        r.Symbol,
		Kind:          domain.QuoteKind(r.Kind),
		Price:         r.Price,
		ChangePercent: r.ChangePercent,
		Source:        r.Source,
		UpdatedAt:     r.UpdatedAt.Local(),
	}
}
