package eval

import (
	"time"

	"github.com/cypherlabs/cygraph/pkg/value"
)

// registerTemporalFunctions wires date()/time()/datetime()/duration() and
// timestamp(), grounded on the date/time section of the teacher's
// pkg/cypher/functions.go (timestamp()/datetime()/localdatetime()/date()/
// time()/localtime()), built on value.Date/Time/DateTime/Duration's
// ISO-8601 parsing already established in pkg/value (§4.3 serialization).
func registerTemporalFunctions(r *FunctionRegistry) {
	r.Register("timestamp", func(args []value.Value, ctx *Context) (value.Value, error) {
		return value.Int(time.Now().UnixMilli()), nil
	})
	r.Register("date", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) == 0 {
			now := time.Now().UTC()
			return value.FromDate(value.NewDate(now.Year(), now.Month(), now.Day())), nil
		}
		if len(args) != 1 {
			return value.Null, wrongArgCount("date", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		s, err := requireString("date", args[0])
		if err != nil {
			return value.Null, err
		}
		d, err := value.ParseDate(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDate(d), nil
	})
	r.Register("time", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) == 0 {
			now := time.Now().UTC()
			return value.FromTime(value.NewTime(now.Hour(), now.Minute(), now.Second(), now.Nanosecond())), nil
		}
		if len(args) != 1 {
			return value.Null, wrongArgCount("time", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		s, err := requireString("time", args[0])
		if err != nil {
			return value.Null, err
		}
		t, err := value.ParseTime(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromTime(t), nil
	})
	r.Register("localtime", r.scalars["time"])
	datetimeFn := func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) == 0 {
			return value.FromDateTime(value.NewDateTime(time.Now().UTC())), nil
		}
		if len(args) != 1 {
			return value.Null, wrongArgCount("datetime", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		s, err := requireString("datetime", args[0])
		if err != nil {
			return value.Null, err
		}
		dt, err := value.ParseDateTime(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDateTime(dt), nil
	}
	r.Register("datetime", datetimeFn)
	r.Register("localdatetime", datetimeFn)
	r.Register("duration", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("duration", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		s, err := requireString("duration", args[0])
		if err != nil {
			return value.Null, err
		}
		d, err := value.ParseDuration(s)
		if err != nil {
			return value.Null, err
		}
		return value.FromDuration(d), nil
	})
}
