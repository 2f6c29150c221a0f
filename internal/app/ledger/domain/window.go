package domain

import (
	"fmt"
	"time"
)

// Window 讀取交易時的日期範圍
type Window int

const (
	// WindowAll 全部交易，不附帶餘額
	WindowAll Window = iota
	// WindowCurrentMonth 本月一日到現在
	WindowCurrentMonth
	// WindowTrailingSixMonths 六個日曆月前到現在
	WindowTrailingSixMonths
)

// ParseWindow 對應 HTTP 的 filter query (monthly / 6-last-month / 空)
func ParseWindow(filter string) (Window, error) {
	switch filter {
	case "", "all":
		return WindowAll, nil
	case "monthly":
		return WindowCurrentMonth, nil
	case "6-last-month":
		return WindowTrailingSixMonths, nil
	}
	return WindowAll, invalid(fmt.Errorf("unknown filter %q", filter), "filter")
}

func (w Window) String() string {
	switch w {
	case WindowCurrentMonth:
		return "monthly"
	case WindowTrailingSixMonths:
		return "6-last-month"
	}
	return "all"
}

// Bounds 回傳 [from, to] (含兩端)，WindowAll 回傳 ok=false
//
// 起點取當天 00:00，讓「剛好六個月前那天」的交易也算在內。
func (w Window) Bounds(now time.Time) (from, to time.Time, ok bool) {
	switch w {
	case WindowCurrentMonth:
		return StartOfMonth(now), now, true
	case WindowTrailingSixMonths:
		return StartOfDay(now.AddDate(0, -6, 0)), now, true
	}
	return time.Time{}, time.Time{}, false
}

// StartOfMonth 當月一日 00:00 (同一時區)
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfDay 當天 00:00
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameMonth 以 ref 的時區判斷 t 是否落在 ref 的日曆月
func SameMonth(t, ref time.Time) bool {
	t = t.In(ref.Location())
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}
