package value

import (
	"fmt"
	"strconv"
	"time"
)

const dateTimeLayout = "20060102T150405"

// DaysIn returns the number of days in month m of year, using the
// proleptic Gregorian calendar.
func DaysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseDate parses a DATE value: exactly eight digits naming a real
// calendar day.
func ParseDate(s string) (Date, error) {
	if len(s) != 8 || !allDigits(s) {
		return Date{}, typeErr(TypeDate, s, "expected YYYYMMDD")
	}
	y, _ := strconv.Atoi(s[0:4])
	m, _ := strconv.Atoi(s[4:6])
	d, _ := strconv.Atoi(s[6:8])
	if m < 1 || m > 12 {
		return Date{}, typeErr(TypeDate, s, "month %d out of range", m)
	}
	if d < 1 || d > DaysIn(time.Month(m), y) {
		return Date{}, typeErr(TypeDate, s, "day %d does not exist in %04d-%02d", d, y, m)
	}
	return Date{Year: y, Month: time.Month(m), Day: d}, nil
}

// ParseDateTime parses a DATE-TIME value. A non-empty tzid is resolved
// through r; failure to resolve is a TimezoneResolutionError.
func ParseDateTime(s, tzid string, r Resolver) (DateTime, error) {
	if len(s) != 15 && len(s) != 16 || s[8] != 'T' {
		return DateTime{}, typeErr(TypeDateTime, s, "expected YYYYMMDDTHHMMSS[Z]")
	}
	d, err := ParseDate(s[:8])
	if err != nil {
		return DateTime{}, typeErr(TypeDateTime, s, "%s", err.(*ValueTypeError).Reason)
	}
	h, mi, sec, err := parseClock(s[9:15])
	if err != nil {
		return DateTime{}, typeErr(TypeDateTime, s, "%v", err)
	}
	utc := len(s) == 16
	if utc && s[15] != 'Z' {
		return DateTime{}, typeErr(TypeDateTime, s, "unexpected suffix %q", s[15:])
	}

	switch {
	case utc && tzid != "":
		return DateTime{}, typeErr(TypeDateTime, s, "UTC value must not carry TZID %q", tzid)
	case utc:
		return DateTime{Time: time.Date(d.Year, d.Month, d.Day, h, mi, sec, 0, time.UTC), Form: UTC}, nil
	case tzid != "":
		loc, err := resolve(r, tzid)
		if err != nil {
			return DateTime{}, err
		}
		return DateTime{Time: time.Date(d.Year, d.Month, d.Day, h, mi, sec, 0, loc), Form: Zoned, TZID: tzid}, nil
	default:
		return DateTime{Time: time.Date(d.Year, d.Month, d.Day, h, mi, sec, 0, time.UTC), Form: Floating}, nil
	}
}

// ParseTime parses a TIME value.
func ParseTime(s, tzid string, r Resolver) (Time, error) {
	if len(s) != 6 && len(s) != 7 {
		return Time{}, typeErr(TypeTime, s, "expected HHMMSS[Z]")
	}
	h, mi, sec, err := parseClock(s[:6])
	if err != nil {
		return Time{}, typeErr(TypeTime, s, "%v", err)
	}
	t := Time{Hour: h, Minute: mi, Second: sec}
	if len(s) == 7 {
		if s[6] != 'Z' {
			return Time{}, typeErr(TypeTime, s, "unexpected suffix %q", s[6:])
		}
		if tzid != "" {
			return Time{}, typeErr(TypeTime, s, "UTC value must not carry TZID %q", tzid)
		}
		t.Form = UTC
		return t, nil
	}
	if tzid != "" {
		if _, err := resolve(r, tzid); err != nil {
			return Time{}, err
		}
		t.Form, t.TZID = Zoned, tzid
	}
	return t, nil
}

func parseClock(s string) (h, m, sec int, err error) {
	if len(s) != 6 || !allDigits(s) {
		return 0, 0, 0, fmt.Errorf("expected HHMMSS")
	}
	h, _ = strconv.Atoi(s[0:2])
	m, _ = strconv.Atoi(s[2:4])
	sec, _ = strconv.Atoi(s[4:6])
	switch {
	case h > 23:
		return 0, 0, 0, fmt.Errorf("hour %d out of range", h)
	case m > 59:
		return 0, 0, 0, fmt.Errorf("minute %d out of range", m)
	case sec > 60:
		// 60 is a leap second
		return 0, 0, 0, fmt.Errorf("second %d out of range", sec)
	}
	return h, m, sec, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

func (dt DateTime) String() string {
	if dt.Form == UTC {
		return dt.Time.UTC().Format(dateTimeLayout) + "Z"
	}
	return dt.Time.Format(dateTimeLayout)
}

func (t Time) String() string {
	s := fmt.Sprintf("%02d%02d%02d", t.Hour, t.Minute, t.Second)
	if t.Form == UTC {
		s += "Z"
	}
	return s
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
