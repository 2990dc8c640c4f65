package leave

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, errors.New("end date before start date")
	}
	days := int64(end.Sub(start).Hours()/24) + 1
	return decimal.NewFromInt(days), nil
}

// parseDays reads the gateway's day count, falling back to the inclusive
// span between from and to when the count is absent or unreadable.
func parseDays(raw, from, to string) decimal.Decimal {
	if d, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		return d
	}
	start, err := parseDate(from)
	if err != nil {
		return decimal.Zero
	}
	end, err := parseDate(to)
	if err != nil {
		return decimal.Zero
	}
	days, err := CalculateDays(start, end)
	if err != nil {
		return decimal.Zero
	}
	return days
}

// parseDate accepts plain dates and the timestamp forms some gateway
// deployments return.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) >= len(dateLayout) {
		if t, err := time.Parse(dateLayout, value[:len(dateLayout)]); err == nil {
			return t, nil
		}
	}
	return time.Parse("02-01-2006", value)
}
