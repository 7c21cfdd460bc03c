// Package dateutil はAPI入力の日付パースと暦日計算のヘルパーを提供します。
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// DateLayout は日付のみの入力フォーマットです。
const DateLayout = "2006-01-02"

// ErrInvalidDate は日付文字列を解釈できない場合に返されます。
var ErrInvalidDate = errors.New("invalid date")

// Parse は "YYYY-MM-DD" またはRFC 3339形式の文字列を暦日に変換します。
// 結果は常にUTCの午前0時です。RFC 3339の時刻部分はUTCに変換した後に切り捨てます。
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return StartOfDay(t), nil
	}
	return time.Time{}, ErrInvalidDate
}

// StartOfDay は t と同じUTC暦日の午前0時を返します。
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
