// README: Date-only JSON codec; the backend serves license expiry and log dates as YYYY-MM-DD.
package fleet

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date marshals as a bare calendar date, matching the backend's wire format.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Before reports whether the date falls strictly before the calendar day of t.
func (d Date) Before(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return d.Time.Before(day)
}
