package domain

import (
	"sort"
	"time"
)

// Summary 儀表板卡片需要的彙總
type Summary struct {
	// TotalBalance 一律是帳本維護的餘額，不從可見的交易重算
	TotalBalance   int64
	MonthlyIncome  int64
	MonthlyExpense int64
	// Savings 可以是負數
	Savings int64
}

// Summarize 以本地日曆月計算本月收支
//
// 參數:
//
//	now: 目前時間 (決定「本月」)
//	balance: 帳本餘額
//	txs: 任意範圍的交易，不在本月的會被忽略
//
// 回傳:
//
//	Summary: 彙總結果
func Summarize(now time.Time, balance int64, txs []Transaction) Summary {
	s := Summary{TotalBalance: balance}
	for i := range txs {
		if !SameMonth(txs[i].Date, now) {
			continue
		}
		switch txs[i].Type {
		case TransactionTypeIncome:
			s.MonthlyIncome += txs[i].Amount
		case TransactionTypeExpense:
			s.MonthlyExpense += txs[i].Amount
		}
	}
	s.Savings = s.MonthlyIncome - s.MonthlyExpense
	return s
}

// MonthTotals 單一日曆月的收支
type MonthTotals struct {
	Year    int
	Month   time.Month
	Income  int64
	Expense int64
}

// Trend 最近 months 個日曆月 (含本月) 的收支，由舊到新
func Trend(now time.Time, months int, txs []Transaction) []MonthTotals {
	if months <= 0 {
		return nil
	}
	first := StartOfMonth(now)
	out := make([]MonthTotals, months)
	index := make(map[[2]int]int, months)
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i-months+1, 0)
		out[i] = MonthTotals{Year: m.Year(), Month: m.Month()}
		index[[2]int{m.Year(), int(m.Month())}] = i
	}
	for i := range txs {
		d := txs[i].Date.In(now.Location())
		pos, ok := index[[2]int{d.Year(), int(d.Month())}]
		if !ok {
			continue
		}
		switch txs[i].Type {
		case TransactionTypeIncome:
			out[pos].Income += txs[i].Amount
		case TransactionTypeExpense:
			out[pos].Expense += txs[i].Amount
		}
	}
	return out
}

// CategoryTotal 單一分類的支出總額
type CategoryTotal struct {
	Category string
	Amount   int64
}

// ExpensesByCategory 依分類加總支出，金額大到小 (同額依名稱)
func ExpensesByCategory(txs []Transaction) []CategoryTotal {
	totals := make(map[string]int64)
	for i := range txs {
		if txs[i].Type != TransactionTypeExpense {
			continue
		}
		totals[txs[i].Category] += txs[i].Amount
	}
	out := make([]CategoryTotal, 0, len(totals))
	for c, a := range totals {
		out = append(out, CategoryTotal{Category: c, Amount: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// SortNewestFirst 依日期新到舊，同日依建立時間新到舊
func SortNewestFirst(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}
