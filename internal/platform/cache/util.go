package cache

import (
	"time"
)

// TimeUntilNextDay は now から次のUTC午前0時までの期間を返します。
// 「期限間近」の範囲は暦日単位で変わるため、その境界でキャッシュを失効させます。
func TimeUntilNextDay(now time.Time) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.Sub(now)
}
