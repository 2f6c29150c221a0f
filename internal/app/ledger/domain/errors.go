package domain

import "errors"

var (
	// ErrValidation 請求欄位缺漏或不合法，不會觸發任何 store 寫入
	ErrValidation = errors.New("validation failed")

	// ErrAmountMustBePositive 金額必須為正數
	ErrAmountMustBePositive = errors.New("amount must be positive")

	// ErrAmountTooLarge 金額超過 MaxAmount
	ErrAmountTooLarge = errors.New("amount exceeds the maximum allowed")

	// ErrInvalidTransactionType 交易類型只能是 income / expense
	ErrInvalidTransactionType = errors.New("transaction type must be income or expense")

	// ErrMissingField 必填欄位缺漏
	ErrMissingField = errors.New("missing required field")

	// ErrTransactionNotFound 交易不存在或不屬於呼叫者 (兩者刻意不區分)
	ErrTransactionNotFound = errors.New("transaction not found or unauthorized")

	// ErrUserNotFound 找不到使用者
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists 使用者已存在 (email 重複)
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrStoreFailure 原子單元無法提交，呼叫端必須假設狀態完全沒有改變
	ErrStoreFailure = errors.New("store failure")

	// ErrQuoteUnavailable 所有行情來源都拿不到報價
	ErrQuoteUnavailable = errors.New("quote unavailable")
)

// invalid 把具體原因包成 ErrValidation，errors.Is 對兩者都成立
func invalid(cause error, field string) error {
	return &ValidationError{Field: field, Cause: cause}
}

// ValidationError 指出是哪個欄位驗證失敗
type ValidationError struct {
	Field string
	Cause error
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + e.Field + ": " + e.Cause.Error()
}

// Is 讓 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
