package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration models an ISO-8601 period (PnYnMnDTnHnMnS). Months and years are
// kept separate from the seconds component because calendar arithmetic
// (adding a month) is not a fixed number of seconds; AddTo resolves that
// against a concrete instant the way DateTime.Add does.
type Duration struct {
	months  int64 // years*12 + months
	days    int64
	seconds float64
}

func NewDuration(months, days int64, seconds float64) Duration {
	return Duration{months: months, days: days, seconds: seconds}
}

// Seconds returns a fixed-length approximation (30-day months, 24h days)
// used only for ordering two durations, never for date arithmetic.
func (d Duration) Seconds() float64 {
	return float64(d.months)*30*86400 + float64(d.days)*86400 + d.seconds
}

func (d Duration) addTo(t time.Time) time.Time {
	t = t.AddDate(0, int(d.months), int(d.days))
	return t.Add(time.Duration(d.seconds * float64(time.Second)))
}

// String renders the canonical ISO-8601 period representation.
func (d Duration) String() string {
	years := d.months / 12
	months := d.months % 12
	var b strings.Builder
	b.WriteByte('P')
	if years != 0 {
		fmt.Fprintf(&b, "%dY", years)
	}
	if months != 0 {
		fmt.Fprintf(&b, "%dM", months)
	}
	if d.days != 0 {
		fmt.Fprintf(&b, "%dD", d.days)
	}
	if d.seconds != 0 {
		b.WriteByte('T')
		secs := d.seconds
		hours := int64(secs / 3600)
		secs -= float64(hours) * 3600
		mins := int64(secs / 60)
		secs -= float64(mins) * 60
		if hours != 0 {
			fmt.Fprintf(&b, "%dH", hours)
		}
		if mins != 0 {
			fmt.Fprintf(&b, "%dM", mins)
		}
		if secs != 0 {
			fmt.Fprintf(&b, "%gS", secs)
		}
	}
	if b.Len() == 1 {
		b.WriteString("T0S")
	}
	return b.String()
}

// ParseDuration parses an ISO-8601 period string of the form
// P[n]Y[n]M[n]DT[n]H[n]M[n]S (every component optional, T section only
// present when a time component is given).
func ParseDuration(s string) (Duration, error) {
	orig := s
	if len(s) == 0 || s[0] != 'P' {
		return Duration{}, fmt.Errorf("%w: duration %q must start with P", ErrOutOfRange, orig)
	}
	s = s[1:]
	datePart, timePart, hasTime := strings.Cut(s, "T")

	var d Duration
	if err := scanComponents(datePart, map[byte]func(float64){
		'Y': func(v float64) { d.months += int64(v) * 12 },
		'M': func(v float64) { d.months += int64(v) },
		'D': func(v float64) { d.days += int64(v) },
		'W': func(v float64) { d.days += int64(v) * 7 },
	}); err != nil {
		return Duration{}, fmt.Errorf("%w: invalid duration %q: %v", ErrOutOfRange, orig, err)
	}
	if hasTime {
		if err := scanComponents(timePart, map[byte]func(float64){
			'H': func(v float64) { d.seconds += v * 3600 },
			'M': func(v float64) { d.seconds += v * 60 },
			'S': func(v float64) { d.seconds += v },
		}); err != nil {
			return Duration{}, fmt.Errorf("%w: invalid duration %q: %v", ErrOutOfRange, orig, err)
		}
	}
	return d, nil
}

func scanComponents(s string, handlers map[byte]func(float64)) error {
	num := strings.Builder{}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' || c == '-' || (c >= '0' && c <= '9') {
			num.WriteByte(c)
			continue
		}
		handler, ok := handlers[c]
		if !ok {
			return fmt.Errorf("unexpected unit %q", c)
		}
		v, err := strconv.ParseFloat(num.String(), 64)
		if err != nil {
			return fmt.Errorf("bad numeric component before %q", c)
		}
		handler(v)
		num.Reset()
	}
	if num.Len() != 0 {
		return fmt.Errorf("dangling numeric component %q with no unit", num.String())
	}
	return nil
}
