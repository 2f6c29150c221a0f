// Package dto 是 HTTP 與 gRPC 共用的邊界資料格式 (JSON 欄位名稱)
package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/internal/report"
)

// Transaction 金額一律是最小貨幣單位 (cents)
type Transaction struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromTransaction(t *domain.Transaction) Transaction {
	return Transaction{
		ID:        t.ID,
		Title:     t.Title,
		Amount:    t.Amount,
		Type:      string(t.Type),
		Category:  t.Category,
		Date:      t.Date.Format(domain.DateLayout),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func FromTransactions(txs []domain.Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for i := range txs {
		out = append(out, FromTransaction(&txs[i]))
	}
	return out
}

// CreateTransactionRequest POST /api/transactions
type CreateTransactionRequest struct {
	Title    string `json:"title"`
	Amount   int64  `json:"amount"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	Category string `json:"category"`
}

func parseType(s string) (domain.TransactionType, error) {
	if strings.TrimSpace(s) == "" {
		return "", &domain.ValidationError{Field: "type", Cause: domain.ErrMissingField}
	}
	return domain.ParseTransactionType(s)
}

// ToDomain 轉成 NewTransaction，欄位本身的規則由 domain 驗證
func (r *CreateTransactionRequest) ToDomain() (domain.NewTransaction, error) {
	typ, err := parseType(r.Type)
	if err != nil {
		return domain.NewTransaction{}, err
	}
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return domain.NewTransaction{}, err
	}
	return domain.NewTransaction{
		Title:    strings.TrimSpace(r.Title),
		Amount:   r.Amount,
		Type:     typ,
		Category: strings.TrimSpace(r.Category),
		Date:     date,
	}, nil
}

// TransactionPatch 只有出現的欄位會被更新
type TransactionPatch struct {
	Title    *string `json:"title,omitempty"`
	Amount   *int64  `json:"amount,omitempty"`
	Type     *string `json:"type,omitempty"`
	Category *string `json:"category,omitempty"`
	Date     *string `json:"date,omitempty"`
}

func (p *TransactionPatch) ToDomain() (domain.TransactionPatch, error) {
	var out domain.TransactionPatch
	if p == nil {
		return out, nil
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		out.Title = &title
	}
	out.Amount = p.Amount
	if p.Type != nil {
		typ, err := parseType(*p.Type)
		if err != nil {
			return out, err
		}
		out.Type = &typ
	}
	if p.Category != nil {
		category := strings.TrimSpace(*p.Category)
		out.Category = &category
	}
	if p.Date != nil {
		date, err := domain.ParseDate(*p.Date)
		if err != nil {
			return out, err
		}
		out.Date = &date
	}
	return out, nil
}

// UpdateTransactionRequest PUT /api/transactions
type UpdateTransactionRequest struct {
	ID          string            `json:"id"`
	UpdatedData *TransactionPatch `json:"updatedData"`
}

// Validate id 與 updatedData 都必須出現 (updatedData 可以是空物件)
func (r *UpdateTransactionRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return &domain.ValidationError{Field: "id", Cause: domain.ErrMissingField}
	}
	if r.UpdatedData == nil {
		return &domain.ValidationError{Field: "updatedData", Cause: domain.ErrMissingField}
	}
	return nil
}

// DeleteTransactionRequest DELETE /api/transactions
type DeleteTransactionRequest struct {
	ID string `json:"id"`
}

func (r *DeleteTransactionRequest) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return &domain.ValidationError{Field: "id", Cause: domain.ErrMissingField}
	}
	return nil
}

// ListTransactionsRequest filter: monthly / 6-last-month / 空白
type ListTransactionsRequest struct {
	Filter string `json:"filter"`
}

// TransactionResult 建立、更新、刪除的回應
type TransactionResult struct {
	Message     string      `json:"message,omitempty"`
	Transaction Transaction `json:"transaction"`
	Balance     int64       `json:"balance"`
}

// ListResult 有時間範圍時才帶 balance
type ListResult struct {
	Transactions []Transaction `json:"transactions"`
	Balance      *int64        `json:"balance,omitempty"`
}

func FromListing(l *usecase.Listing) ListResult {
	return ListResult{Transactions: FromTransactions(l.Transactions), Balance: l.Balance}
}

type Summary struct {
	TotalBalance   int64 `json:"total_balance"`
	MonthlyIncome  int64 `json:"monthly_income"`
	MonthlyExpense int64 `json:"monthly_expense"`
	Savings        int64 `json:"savings"`
}

type MonthTotals struct {
	Month   string `json:"month"` // YYYY-MM
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

type CategoryTotal struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

// SummaryResult GET /api/summary，Formatted 為顯示用字串
type SummaryResult struct {
	Currency   string            `json:"currency"`
	Summary    Summary           `json:"summary"`
	Formatted  map[string]string `json:"formatted"`
	Trend      []MonthTotals     `json:"trend"`
	Categories []CategoryTotal   `json:"categories"`
}

func FromDashboard(d *usecase.Dashboard, f report.Formatter) SummaryResult {
	s := d.Summary
	out := SummaryResult{
		Currency: f.Currency(),
		Summary: Summary{
			TotalBalance:   s.TotalBalance,
			MonthlyIncome:  s.MonthlyIncome,
			MonthlyExpense: s.MonthlyExpense,
			Savings:        s.Savings,
		},
		Formatted: map[string]string{
			"total_balance":   f.Format(s.TotalBalance),
			"monthly_income":  f.Format(s.MonthlyIncome),
			"monthly_expense": f.Format(s.MonthlyExpense),
			"savings":         f.Format(s.Savings),
		},
		Trend:      make([]MonthTotals, 0, len(d.Trend)),
		Categories: make([]CategoryTotal, 0, len(d.Categories)),
	}
	for _, m := range d.Trend {
		out.Trend = append(out.Trend, MonthTotals{Month: fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)), Income: m.Income, Expense: m.Expense})
	}
	for _, c := range d.Categories {
		out.Categories = append(out.Categories, CategoryTotal{Category: c.Category, Amount: c.Amount})
	}
	return out
}

// ToDashboardView SummaryResult 轉回 report 用的資料 (CLI 端)
func (r *SummaryResult) ToDashboardView(name string) (report.DashboardView, error) {
	v := report.DashboardView{
		Name: name,
		Summary: domain.Summary{
			TotalBalance:   r.Summary.TotalBalance,
			MonthlyIncome:  r.Summary.MonthlyIncome,
			MonthlyExpense: r.Summary.MonthlyExpense,
			Savings:        r.Summary.Savings,
		},
	}
	for _, m := range r.Trend {
		t, err := time.Parse("2006-01", m.Month)
		if err != nil {
			return v, fmt.Errorf("trend month %q: %w", m.Month, err)
		}
		v.Trend = append(v.Trend, domain.MonthTotals{Year: t.Year(), Month: t.Month(), Income: m.Income, Expense: m.Expense})
	}
	for _, c := range r.Categories {
		v.Categories = append(v.Categories, domain.CategoryTotal{Category: c.Category, Amount: c.Amount})
	}
	return v, nil
}

// User GET /api/me
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Balance          int64     `json:"balance"`
	ExternalIdentity bool      `json:"external_identity"`
	CreatedAt        time.Time `json:"created_at"`
}

func FromUser(u *domain.User) User {
	return User{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Phone:            u.Phone,
		Balance:          u.Balance,
		ExternalIdentity: !u.HasLocalPassword(),
		CreatedAt:        u.CreatedAt,
	}
}

// UpdatePhoneRequest PUT /api/me/phone
type UpdatePhoneRequest struct {
	Phone string `json:"phone"`
}

// DeleteAccountRequest DELETE /api/me，email 必須是登入中的帳號
type DeleteAccountRequest struct {
	Email string `json:"email"`
}

// Quote GET /api/invests/{kind}，price 以字串保留精度
type Quote struct {
	Symbol        string    `json:"symbol"`
	Kind          string    `json:"kind"`
	Price         string    `json:"price"`
	ChangePercent string    `json:"changePercent"`
	Source        string    `json:"source"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

func FromQuote(q *domain.Quote) Quote {
	return Quote{
		Symbol:        q.Symbol,
		Kind:          string(q.Kind),
		Price:         q.Price.StringFixed(2),
		ChangePercent: q.ChangePercent,
		Source:        q.Source,
		LastUpdated:   q.UpdatedAt,
	}
}

// Message 只有訊息的回應
type Message struct {
	Message string `json:"message"`
}
