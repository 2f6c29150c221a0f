package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JoeShih716/go-fin-ledger/internal/app/ledger/domain"
)

// UserService 使用者生命週期 (註冊、資料、刪除帳號)
type UserService struct {
	store Store
	now   func() time.Time
}

func NewUserService(store Store) *UserService {
	return &UserService{
		store: store,
		now:   time.Now,
	}
}

// Register 建立使用者，餘額從 0 開始
//
// credential 為空時視為外部身分使用者，存入 domain.NoLocalPassword。
func (s *UserService) Register(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	credential := in.Credential
	if credential == "" {
		credential = domain.NoLocalPassword
	}
	user := &domain.User{
		ID:         uuid.NewString(),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Name:       strings.TrimSpace(in.Name),
		Phone:      strings.TrimSpace(in.Phone),
		Credential: credential,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureExternal 外部身分第一次登入時建立使用者，已存在則直接回傳
func (s *UserService) EnsureExternal(ctx context.Context, email, name string) (*domain.User, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	return s.Register(ctx, domain.NewUser{Name: name, Email: email})
}

// Profile 取得使用者資料與餘額
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdatePhone 更新電話 (必填)
func (s *UserService) UpdatePhone(ctx context.Context, userID, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return &domain.ValidationError{Field: "phone", Cause: domain.ErrMissingField}
	}
	return s.store.UpdateUserPhone(ctx, userID, phone)
}

// DeleteAccount 在同一個原子單元內刪除所有交易與使用者
//
// 回傳:
//
//	int64: 一併刪除的交易筆數
//	error: domain.ErrUserNotFound / domain.ErrStoreFailure
func (s *UserService) DeleteAccount(ctx context.Context, userID string) (int64, error) {
	var removed int64
	err := s.store.Atomically(ctx, func(tx StoreTx) error {
		if _, err := tx.LockUser(ctx, userID); err != nil {
			return err
		}
		n, err := tx.DeleteTransactionsByOwner(ctx, userID)
		if err != nil {
			return err
		}
		removed = n
		return tx.DeleteUser(ctx, userID)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
