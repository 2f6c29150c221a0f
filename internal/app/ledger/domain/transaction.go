package domain

import (
	"strings"
	"time"
)

// CurrencyScale amount 以最小貨幣單位 (cents) 存放
const CurrencyScale = 100

// TransactionType 交易類型，方向由類型決定，amount 永遠是正數
type TransactionType string

const (
	// 收入
	TransactionTypeIncome TransactionType = "income"
	// 支出
	TransactionTypeExpense TransactionType = "expense"
)

// ParseTransactionType 解析交易類型 (不分大小寫)
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", invalid(ErrInvalidTransactionType, "type")
	}
	return t, nil
}

// Valid 是否為合法類型
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Delta 回傳這個類型對餘額的影響
func (t TransactionType) Delta(amount int64) int64 {
	if t == TransactionTypeExpense {
		return -amount
	}
	return amount
}

// Transaction 一筆收支紀錄
type Transaction struct {
	ID       string
	OwnerID  string
	Title    string
	Category string
	// Amount: 金額大小 (cents)，永遠 > 0
	Amount int64
	Type   TransactionType
	// Date: 交易日期，可以是過去或未來
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Effect 這筆交易對擁有者餘額的帶號影響
func (t *Transaction) Effect() int64 {
	return t.Type.Delta(t.Amount)
}

// MaxAmount 單筆金額上限 (最小單位)，JSON number 與 structpb 都能精確表示
const MaxAmount int64 = 1<<53 - 1

// validAmount 金額必須在 (0, MaxAmount]
func validAmount(amount int64) error {
	if amount <= 0 {
		return invalid(ErrAmountMustBePositive, "amount")
	}
	if amount > MaxAmount {
		return invalid(ErrAmountTooLarge, "amount")
	}
	return nil
}

// NewTransaction 建立交易的輸入
type NewTransaction struct {
	Title    string
	Amount   int64
	Type     TransactionType
	Category string
	Date     time.Time
}

// Validate 檢查所有必填欄位
func (n *NewTransaction) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return invalid(ErrMissingField, "title")
	}
	if err := validAmount(n.Amount); err != nil {
		return err
	}
	if !n.Type.Valid() {
		return invalid(ErrInvalidTransactionType, "type")
	}
	if strings.TrimSpace(n.Category) == "" {
		return invalid(ErrMissingField, "category")
	}
	if n.Date.IsZero() {
		return invalid(ErrMissingField, "date")
	}
	return nil
}

// TransactionPatch 部分更新，nil 代表不變
type TransactionPatch struct {
	Title    *string
	Amount   *int64
	Type     *TransactionType
	Category *string
	Date     *time.Time
}

// Empty 沒有任何欄位要更新
func (p *TransactionPatch) Empty() bool {
	return p.Title == nil && p.Amount == nil && p.Type == nil && p.Category == nil && p.Date == nil
}

// Validate 只檢查有提供的欄位
func (p *TransactionPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid(ErrMissingField, "title")
	}
	if p.Amount != nil {
		if err := validAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Type != nil && !p.Type.Valid() {
		return invalid(ErrInvalidTransactionType, "type")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		return invalid(ErrMissingField, "category")
	}
	if p.Date != nil && p.Date.IsZero() {
		return invalid(ErrMissingField, "date")
	}
	return nil
}

// ApplyTo 把有提供的欄位寫進 t
func (p *TransactionPatch) ApplyTo(t *Transaction) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
}

// DateLayout 日期在邊界上的格式
const DateLayout = "2006-01-02"

// ParseDate 接受 YYYY-MM-DD 或 RFC3339
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, invalid(ErrMissingField, "date")
	}
	if d, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalid(err, "date")
	}
	return d.In(time.Local), nil
}
