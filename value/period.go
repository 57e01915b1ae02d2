package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a PERIOD value: either an explicit start and end, or a start
// and a positive duration.
type Period struct {
	Start       DateTime
	End         DateTime
	Duration    Duration
	HasDuration bool
}

// EndTime returns the end instant, computing it from the duration when the
// period is in start/duration form.
func (p Period) EndTime() time.Time {
	if p.HasDuration {
		return p.Duration.AddTo(p.Start.Time)
	}
	return p.End.Time
}

// ParsePeriod parses start "/" (end / duration). Both date-times share tzid.
func ParsePeriod(s, tzid string, r Resolver) (Period, error) {
	startText, endText, ok := strings.Cut(s, "/")
	if !ok {
		return Period{}, typeErr(TypePeriod, s, "missing \"/\"")
	}
	start, err := ParseDateTime(startText, tzid, r)
	if err != nil {
		return Period{}, periodErr(s, err)
	}
	if strings.HasPrefix(endText, "P") || strings.HasPrefix(endText, "+P") || strings.HasPrefix(endText, "-P") {
		d, err := ParseDuration(endText)
		if err != nil {
			return Period{}, periodErr(s, err)
		}
		if d.Negative || d.IsZero() {
			return Period{}, typeErr(TypePeriod, s, "duration must be positive")
		}
		return Period{Start: start, Duration: d, HasDuration: true}, nil
	}
	end, err := ParseDateTime(endText, tzid, r)
	if err != nil {
		return Period{}, periodErr(s, err)
	}
	if !end.Time.After(start.Time) {
		return Period{}, typeErr(TypePeriod, s, "end must be after start")
	}
	return Period{Start: start, End: end}, nil
}

func periodErr(raw string, err error) error {
	if vt, ok := err.(*ValueTypeError); ok {
		return typeErr(TypePeriod, raw, "%s", vt.Reason)
	}
	return err
}

func (p Period) String() string {
	if p.HasDuration {
		return p.Start.String() + "/" + p.Duration.String()
	}
	return p.Start.String() + "/" + p.End.String()
}

// UTCOffset is a UTC-OFFSET value in seconds east of UTC.
type UTCOffset struct {
	Seconds int
}

// ParseUTCOffset parses ("+" / "-") HHMM [SS]. "-0000" is rejected.
func ParseUTCOffset(s string) (UTCOffset, error) {
	if len(s) != 5 && len(s) != 7 {
		return UTCOffset{}, typeErr(TypeUTCOffset, s, "expected +HHMM or +HHMMSS")
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return UTCOffset{}, typeErr(TypeUTCOffset, s, "missing sign")
	}
	if !allDigits(s[1:]) {
		return UTCOffset{}, typeErr(TypeUTCOffset, s, "expected digits after sign")
	}
	h, _ := strconv.Atoi(s[1:3])
	m, _ := strconv.Atoi(s[3:5])
	sec := 0
	if len(s) == 7 {
		sec, _ = strconv.Atoi(s[5:7])
	}
	if h > 23 || m > 59 || sec > 59 {
		return UTCOffset{}, typeErr(TypeUTCOffset, s, "component out of range")
	}
	total := h*3600 + m*60 + sec
	if total == 0 && sign < 0 {
		return UTCOffset{}, typeErr(TypeUTCOffset, s, "negative zero offset is not allowed")
	}
	return UTCOffset{Seconds: sign * total}, nil
}

// Location returns a fixed zone with this offset.
func (o UTCOffset) Location() *time.Location {
	return time.FixedZone(o.String(), o.Seconds)
}

func (o UTCOffset) String() string {
	sign := '+'
	secs := o.Seconds
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	s := fmt.Sprintf("%c%02d%02d", sign, secs/3600, secs%3600/60)
	if secs%60 != 0 {
		s += fmt.Sprintf("%02d", secs%60)
	}
	return s
}
