// Package report 把帳本資料排成人看的格式 (markdown、PDF)
package report

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// Formatter 以固定幣別顯示最小單位金額
type Formatter struct {
	currency string
}

// NewFormatter 未知幣別時 go-money 仍會以代碼顯示
func NewFormatter(currency string) Formatter {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = money.BRL
	}
	return Formatter{currency: currency}
}

// Currency 幣別代碼
func (f Formatter) Currency() string {
	return f.currency
}

// Format 例如 150000 -> "R$1.500,00"
func (f Formatter) Format(cents int64) string {
	return money.New(cents, f.currency).Display()
}
