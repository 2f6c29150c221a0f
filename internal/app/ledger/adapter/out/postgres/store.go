package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/usecase"
	"github.com/JoeShih716/go-fin-ledger/pkg/postgres"
)

const userColumns = `id, email, name, phone, credential, balance, created_at`

const transactionColumns = `id, owner_id, title, category, amount, type, date, created_at, updated_at`

// querier 是 pool 與 pgx.Tx 共同的查詢介面
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store 以 pgx/PostgreSQL 實作 usecase.Store
type Store struct {
	client *postgres.Client
}

func NewStore(client *postgres.Client) *Store {
	return &Store{client: client}
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
	err := s.client.InTx(ctx, func(tx pgx.Tx) error {
		return fn(&storeTx{tx: tx})
	})
	return storeErr(err)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.Credential, &u.Balance, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	u.CreatedAt = u.CreatedAt.Local()
	return &u, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t   domain.Transaction
		typ string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Category, &t.Amount, &typ, &t.Date, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	t.Type = domain.TransactionType(typ)
	t.Date = t.Date.Local()
	t.CreatedAt = t.CreatedAt.Local()
	t.UpdatedAt = t.UpdatedAt.Local()
	return &t, nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID string, from, to *time.Time) ([]domain.Transaction, error) {
	var (
		sb   strings.Builder
		args = []any{ownerID}
	)
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE owner_id = $1`)
	if from != nil {
		args = append(args, *from)
		fmt.Fprintf(&sb, ` AND date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		fmt.Fprintf(&sb, ` AND date <= $%d`, len(args))
	}
	sb.WriteString(` ORDER BY date DESC, created_at DESC`)
	return listTransactions(ctx, s.client.Pool(), sb.String(), args...)
}

func listTransactions(ctx context.Context, q querier, sql string, args ...any) ([]domain.Transaction, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := make([]domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return scanUser(s.client.Pool().QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(s.client.Pool().QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.client.Pool().Exec(ctx,
		`INSERT INTO users (id, email, name, phone, credential, balance, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		user.ID, user.Email, user.Name, user.Phone, user.Credential, user.Balance, user.CreatedAt)
	if postgres.IsUniqueViolation(err) {
		return domain.ErrUserAlreadyExists
	}
	return storeErr(err)
}

func (s *Store) UpdateUserPhone(ctx context.Context, userID, phone string) error {
	tag, err := s.client.Pool().Exec(ctx, `UPDATE users SET phone = $2, updated_at = now() WHERE id = $1`, userID, phone)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// storeTx 原子單元內的操作
type storeTx struct {
	tx pgx.Tx
}

func (tx *storeTx) LockUser(ctx context.Context, userID string) (*domain.User, error) {
	return scanUser(tx.tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
}

func (tx *storeTx) InsertTransaction(ctx context.Context, tran *domain.Transaction) error {
	_, err := tx.tx.Exec(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tran.ID, tran.OwnerID, tran.Title, tran.Category, tran.Amount, string(tran.Type), tran.Date, tran.CreatedAt, tran.UpdatedAt)
	return storeErr(err)
}

func (tx *storeTx) FindTransaction(ctx context.Context, id, ownerID string) (*domain.Transaction, error) {
	return scanTransaction(tx.tx.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID))
}

func (tx *storeTx) SaveTransaction(ctx context.Context, tran *domain.Transaction) error {
	tag, err := tx.tx.Exec(ctx,
		`UPDATE transactions SET title = $3, category = $4, amount = $5, type = $6, date = $7, updated_at = $8
		 WHERE id = $1 AND owner_id = $2`,
		tran.ID, tran.OwnerID, tran.Title, tran.Category, tran.Amount, string(tran.Type), tran.Date, tran.UpdatedAt)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (tx *storeTx) DeleteTransaction(ctx context.Context, id, ownerID string) error {
	tag, err := tx.tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (tx *storeTx) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	var balance int64
	err := tx.tx.QueryRow(ctx,
		`UPDATE users SET balance = balance + $2, updated_at = now() WHERE id = $1 RETURNING balance`,
		userID, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, storeErr(err)
	}
	return balance, nil
}

func (tx *storeTx) DeleteTransactionsByOwner(ctx context.Context, ownerID string) (int64, error) {
	tag, err := tx.tx.Exec(ctx, `DELETE FROM transactions WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, storeErr(err)
	}
	return tag.RowsAffected(), nil
}

func (tx *storeTx) DeleteUser(ctx context.Context, userID string) error {
	tag, err := tx.tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

var (
	_ usecase.Store   = (*Store)(nil)
	_ usecase.StoreTx = (*storeTx)(nil)
)
