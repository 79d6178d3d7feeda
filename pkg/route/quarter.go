package route

import (
	"fmt"
	"time"

	"github.com/bastiangx/farecast/internal/utils"
)

// DateLayout is the ISO calendar date form used for travel dates.
const DateLayout = time.DateOnly

// DeriveQuarter maps a date's calendar month to its quarter, 1 to 4.
func DeriveQuarter(d time.Time) int {
	return (int(d.Month())-1)/3 + 1
}

// ParseDate reads a YYYY-MM-DD date in the local calendar.
func ParseDate(iso string) (time.Time, error) {
	if !utils.IsISODate(iso) {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", iso)
	}
	d, err := time.ParseInLocation(DateLayout, iso, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return d, nil
}

// QuarterOf derives the quarter of an ISO date string.
func QuarterOf(iso string) (int, error) {
	d, err := ParseDate(iso)
	if err != nil {
		return 0, err
	}
	return DeriveQuarter(d), nil
}

// FormatDate renders t's local calendar day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// DaysFrom returns the local calendar day offset days after now's day.
func DaysFrom(now time.Time, days int) string {
	local := now.In(time.Local)
	return FormatDate(time.Date(local.Year(), local.Month(), local.Day()+days, 0, 0, 0, 0, time.Local))
}

// NotBefore reports whether iso is on or after min; both are YYYY-MM-DD.
// Unparseable dates are never acceptable.
func NotBefore(iso, min string) bool {
	d, err := ParseDate(iso)
	if err != nil {
		return false
	}
	m, err := ParseDate(min)
	if err != nil {
		return false
	}
	return !d.Before(m)
}
