package value

import (
	"fmt"
	"time"
)

// Date, Time, and DateTime wrap the calendar/clock fields Cypher's temporal
// types need. They are backed by time.Time internally for arithmetic but
// expose ISO-8601 formatting directly, since that is the only
// representation the binary and interchange codecs ever see (§ graph-data
// serialization).

type Date struct{ t time.Time }

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date %q", ErrOutOfRange, s)
	}
	return Date{t: t}, nil
}

func (d Date) String() string { return d.t.Format("2006-01-02") }
func (d Date) Time() time.Time { return d.t }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

type Time struct {
	t      time.Time
	hasTZ  bool
	offset int // seconds east of UTC, valid when hasTZ
}

func NewTime(hour, minute, second, nanos int) Time {
	return Time{t: time.Date(0, 1, 1, hour, minute, second, nanos, time.UTC)}
}

func ParseTime(s string) (Time, error) {
	layouts := []string{"15:04:05.999999999Z07:00", "15:04:05Z07:00", "15:04:05", "15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			_, offset := t.Zone()
			hasTZ := layout == layouts[0] || layout == layouts[1]
			return Time{t: t, hasTZ: hasTZ, offset: offset}, nil
		}
	}
	return Time{}, fmt.Errorf("%w: invalid time %q", ErrOutOfRange, s)
}

func (t Time) String() string {
	if t.hasTZ {
		return t.t.Format("15:04:05.999999999Z07:00")
	}
	return t.t.Format("15:04:05.999999999")
}

type DateTime struct {
	t time.Time
}

func NewDateTime(t time.Time) DateTime { return DateTime{t: t} }

func ParseDateTime(s string) (DateTime, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{t: t}, nil
		}
	}
	return DateTime{}, fmt.Errorf("%w: invalid datetime %q", ErrOutOfRange, s)
}

func (dt DateTime) String() string  { return dt.t.Format(time.RFC3339Nano) }
func (dt DateTime) Time() time.Time { return dt.t }
func (dt DateTime) Equal(o DateTime) bool { return dt.t.Equal(o.t) }
func (dt DateTime) Compare(o DateTime) int {
	switch {
	case dt.t.Before(o.t):
		return -1
	case dt.t.After(o.t):
		return 1
	default:
		return 0
	}
}
func (dt DateTime) Add(d Duration) DateTime {
	return DateTime{t: d.addTo(dt.t)}
}
func (dt DateTime) Sub(o DateTime) Duration {
	return Duration{seconds: dt.t.Sub(o.t).Seconds()}
}
