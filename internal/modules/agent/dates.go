package agent

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates not in strict YYYY-MM-DD form
var ErrInvalidDate = errors.New("invalid date")

// NormalizeDate snaps a YYYY-MM-DD date to the last day of its month.
func NormalizeDate(s string) (string, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, s)
	}
	// Day 0 of the next month is the last day of this one
	monthEnd := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return monthEnd.Format(dateLayout), nil
}
