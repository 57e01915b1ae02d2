package value

import (
	"strconv"
	"strings"
	"time"
)

// Duration is a DURATION value. Weeks are never combined with other units.
type Duration struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

// ParseDuration parses
//
//	dur-value = (["+"] / "-") "P" (dur-date / dur-time / dur-week)
//	dur-date  = dur-day [dur-time]
//	dur-time  = "T" (dur-hour / dur-minute / dur-second)
//
// Time units must be contiguous: PT1H30S is rejected, PT1H0M30S is not.
func ParseDuration(s string) (Duration, error) {
	var d Duration
	rest := s
	switch {
	case strings.HasPrefix(rest, "-"):
		d.Negative = true
		rest = rest[1:]
	case strings.HasPrefix(rest, "+"):
		rest = rest[1:]
	}
	if !strings.HasPrefix(rest, "P") {
		return Duration{}, typeErr(TypeDuration, s, "missing P designator")
	}
	rest = rest[1:]
	if rest == "" {
		return Duration{}, typeErr(TypeDuration, s, "no components")
	}

	datePart, timePart, hasTime := strings.Cut(rest, "T")
	if hasTime && timePart == "" {
		return Duration{}, typeErr(TypeDuration, s, "T without time components")
	}

	if datePart != "" {
		n, unit, tail, ok := durationComponent(datePart)
		if !ok || tail != "" {
			return Duration{}, typeErr(TypeDuration, s, "malformed date component %q", datePart)
		}
		switch unit {
		case 'W':
			if hasTime {
				return Duration{}, typeErr(TypeDuration, s, "weeks cannot be combined with other units")
			}
			d.Weeks = n
		case 'D':
			d.Days = n
		default:
			return Duration{}, typeErr(TypeDuration, s, "unexpected unit %q before T", unit)
		}
	}

	order := "HMS"
	first := true
	for timePart != "" {
		n, unit, tail, ok := durationComponent(timePart)
		if !ok {
			return Duration{}, typeErr(TypeDuration, s, "malformed time component %q", timePart)
		}
		i := strings.IndexByte(order, unit)
		if i < 0 || (!first && i != 0) {
			return Duration{}, typeErr(TypeDuration, s, "unexpected unit %q after T", unit)
		}
		first = false
		order = order[i+1:]
		switch unit {
		case 'H':
			d.Hours = n
		case 'M':
			d.Minutes = n
		case 'S':
			d.Seconds = n
		}
		timePart = tail
	}
	return d, nil
}

// durationComponent splits "12H..." into 12, 'H' and the remainder.
func durationComponent(s string) (n int, unit byte, tail string, ok bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i == len(s) {
		return 0, 0, "", false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, 0, "", false
	}
	return n, s[i], s[i+1:], true
}

// IsZero reports whether every component is zero.
func (d Duration) IsZero() bool {
	return d.Weeks == 0 && d.Days == 0 && d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0
}

// AddTo adds d to t. Weeks and days are nominal and follow the wall clock
// across DST changes; hours, minutes and seconds are exact.
func (d Duration) AddTo(t time.Time) time.Time {
	sign := 1
	if d.Negative {
		sign = -1
	}
	t = t.AddDate(0, 0, sign*(d.Weeks*7+d.Days))
	return t.Add(time.Duration(sign) * d.clock())
}

// Exact converts d to a time.Duration treating a day as 24 hours.
func (d Duration) Exact() time.Duration {
	total := time.Duration(d.Weeks*7+d.Days)*24*time.Hour + d.clock()
	if d.Negative {
		return -total
	}
	return total
}

func (d Duration) clock() time.Duration {
	return time.Duration(d.Hours)*time.Hour + time.Duration(d.Minutes)*time.Minute + time.Duration(d.Seconds)*time.Second
}

// DurationOf converts a time.Duration into a DURATION using days and clock
// units only.
func DurationOf(td time.Duration) Duration {
	var d Duration
	if td < 0 {
		d.Negative = true
		td = -td
	}
	secs := int64(td / time.Second)
	d.Days = int(secs / 86400)
	secs %= 86400
	d.Hours = int(secs / 3600)
	secs %= 3600
	d.Minutes = int(secs / 60)
	d.Seconds = int(secs % 60)
	return d
}

func (d Duration) String() string {
	var b strings.Builder
	if d.Negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if d.Weeks > 0 {
		b.WriteString(strconv.Itoa(d.Weeks))
		b.WriteByte('W')
		return b.String()
	}
	if d.Days > 0 {
		b.WriteString(strconv.Itoa(d.Days))
		b.WriteByte('D')
	}
	if d.Hours == 0 && d.Minutes == 0 && d.Seconds == 0 {
		if d.Days == 0 {
			b.WriteString("T0S")
		}
		return b.String()
	}
	b.WriteByte('T')
	// hour and second with a zero minute must keep the minute to stay
	// within the dur-time grammar
	if d.Hours > 0 {
		b.WriteString(strconv.Itoa(d.Hours))
		b.WriteByte('H')
	}
	if d.Minutes > 0 || (d.Hours > 0 && d.Seconds > 0) {
		b.WriteString(strconv.Itoa(d.Minutes))
		b.WriteByte('M')
	}
	if d.Seconds > 0 {
		b.WriteString(strconv.Itoa(d.Seconds))
		b.WriteByte('S')
	}
	return b.String()
}
