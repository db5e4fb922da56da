// Package recurring materializes the monthly copies of a transaction flagged
// as recurring at creation time.
package recurring

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// Occurrences is how many rows a recurring transaction expands into,
// the first one included.
const Occurrences = 12

// Template is the user input a recurring series is stamped from.
type Template struct {
	Amount      decimal.Decimal
	Category    string
	Type        models.TransactionType
	Description string
	Date        time.Time
}

// AddMonthsClamped moves t forward by n calendar months, keeping the day of
// month when it exists and clamping to the month's last day otherwise.
// Time of day and location are preserved.
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, dd := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first); dd > last {
		dd = last
	}
	return first.AddDate(0, 0, dd-1)
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Marker is the suffix appended to the description of occurrence index
// (zero-based) out of count.
func Marker(index, count int) string {
	return fmt.Sprintf("(Recurring %d/%d)", index+1, count)
}

// ExpandMonthly returns count copies of base. Copy i is dated i months after
// base.Date, always measured from the base day so a 31st series returns to
// the 31st after a short month. Every copy after the first gets Marker
// appended to its description. count < 1 yields nil.
func ExpandMonthly(base Template, count int) []Template {
	if count < 1 {
		return nil
	}
	desc := strings.TrimSpace(base.Description)
	out := make([]Template, count)
	for i := range out {
		occ := base
		occ.Date = AddMonthsClamped(base.Date, i)
		occ.Description = desc
		if i > 0 {
			if desc == "" {
				occ.Description = Marker(i, count)
			} else {
				occ.Description = desc + " " + Marker(i, count)
			}
		}
		out[i] = occ
	}
	return out
}
