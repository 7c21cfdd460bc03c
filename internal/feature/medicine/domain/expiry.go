// Package domain holds the pure, storage-independent rules of the medicine feature.
package domain

import (
	"fmt"
	"math"
	"time"

	"medicine_backend/internal/shared/dateutil"
)

// ExpiringSoonDays is the look-ahead used by the "expiring soon" filter and warnings.
const ExpiringSoonDays = 30

const day = 24 * time.Hour

// Warning texts. The "expires soon" variant is formatted with the day count.
const (
	WarningExpired     = "expired"
	WarningNoConcern   = "no immediate concern"
	WarningNoExpiry    = "no expiry date set"
	warningExpiresSoon = "expires soon, %d days left"
)

// DateRange is an inclusive time interval.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ExpiringSoonWindow returns [today, today+30 days] for the calendar day containing now.
func ExpiringSoonWindow(now time.Time) DateRange {
	today := dateutil.StartOfDay(now)
	return DateRange{From: today, To: today.AddDate(0, 0, ExpiringSoonDays)}
}

// DaysLeft returns ceil((expiry - today) / 1 day), where today is the start
// of the UTC calendar day containing now.
func DaysLeft(expiry, now time.Time) int {
	diff := expiry.Sub(dateutil.StartOfDay(now))
	return int(math.Ceil(float64(diff) / float64(day)))
}

// Warning derives the expiry warning for a record. A zero expiry means the
// date is absent. The result depends only on its two arguments.
func Warning(expiry, now time.Time) string {
	if expiry.IsZero() {
		return WarningNoExpiry
	}
	daysLeft := DaysLeft(expiry, now)
	switch {
	case daysLeft <= 0:
		return WarningExpired
	case daysLeft <= ExpiringSoonDays:
		return fmt.Sprintf(warningExpiresSoon, daysLeft)
	default:
		return WarningNoConcern
	}
}
