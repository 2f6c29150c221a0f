package domain

import (
	"net/mail"
	"strings"
	"time"
)

// NoLocalPassword 外部身分 (OAuth) 使用者的 credential 佔位值，代表沒有本地密碼
const NoLocalPassword = "external_identity_no_local_password"

// User 使用者以及其快取餘額
type User struct {
	ID    string
	Email string
	Name  string
	Phone string
	// Credential: 已雜湊的密碼或 NoLocalPassword
	Credential string
	// Balance: 所有交易帶號金額總和 (cents)
	Balance   int64
	CreatedAt time.Time
}

// HasLocalPassword 是否為本地帳號
func (u *User) HasLocalPassword() bool {
	return u.Credential != "" && u.Credential != NoLocalPassword
}

// NewUser 註冊輸入
type NewUser struct {
	Name       string
	Email      string
	Phone      string
	Credential string
}

// Validate 檢查名稱與 email
func (n *NewUser) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return invalid(ErrMissingField, "name")
	}
	if strings.TrimSpace(n.Email) == "" {
		return invalid(ErrMissingField, "email")
	}
	if _, err := mail.ParseAddress(n.Email); err != nil {
		return invalid(err, "email")
	}
	return nil
}
