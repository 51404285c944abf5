package model

import (
	"time"
)

// dateLayout is the calendar-date format used in cleaned and derived CSVs.
const dateLayout = "2006-01-02"

// Date is a calendar date. It serializes as YYYY-MM-DD in CSV and JSON so
// downstream consumers read stable, timezone-free values. A nil *Date means
// the source value was missing or unparseable.
type Date struct {
	time.Time
}

// NewDate returns a Date truncated to midnight UTC.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// DaysUntil returns the whole days between d and other (other - d).
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

// MarshalCSV implements csvutil.Marshaler.
func (d Date) MarshalCSV() ([]byte, error) {
	return []byte(d.Format(dateLayout)), nil
}

// UnmarshalCSV implements csvutil.Unmarshaler.
func (d *Date) UnmarshalCSV(b []byte) error {
	t, err := time.Parse(dateLayout, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
