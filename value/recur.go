package value

import (
	"strconv"
	"strings"
	"time"
)

// Frequency is the FREQ rule part, ordered from finest to coarsest.
type Frequency int

const (
	Secondly Frequency = iota
	Minutely
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

var frequencyNames = [...]string{"SECONDLY", "MINUTELY", "HOURLY", "DAILY", "WEEKLY", "MONTHLY", "YEARLY"}

func (f Frequency) String() string {
	if f < Secondly || f > Yearly {
		return "Frequency(" + strconv.Itoa(int(f)) + ")"
	}
	return frequencyNames[f]
}

var weekdayNames = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

func parseWeekday(s string) (time.Weekday, bool) {
	for i, n := range weekdayNames {
		if n == s {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// WeekdayNum is one BYDAY entry. Ordinal zero means every such weekday in
// the period.
type WeekdayNum struct {
	Ordinal int
	Weekday time.Weekday
}

func (w WeekdayNum) String() string {
	if w.Ordinal == 0 {
		return weekdayNames[w.Weekday]
	}
	return strconv.Itoa(w.Ordinal) + weekdayNames[w.Weekday]
}

// Until is the UNTIL bound. DateOnly values and floating values carry their
// wall clock in time.UTC.
type Until struct {
	Time     time.Time
	Form     TimeForm
	DateOnly bool
}

func (u Until) String() string {
	if u.DateOnly {
		return DateOf(u.Time).String()
	}
	return DateTime{Time: u.Time, Form: u.Form}.String()
}

// Recur is a parsed and validated RECUR value.
type Recur struct {
	Freq       Frequency
	Interval   int
	Count      int
	Until      *Until
	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []WeekdayNum
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int
	WeekStart  time.Weekday
}

// ParseRecur parses and validates a RECUR value such as
// FREQ=MONTHLY;BYDAY=-1FR;COUNT=3.
func ParseRecur(s string) (*Recur, error) {
	r := &Recur{Interval: 1, WeekStart: time.Monday}
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}
		name, val, ok := strings.Cut(part, "=")
		name = strings.ToUpper(name)
		if !ok || val == "" {
			return nil, ruleErr(name, "", "expected NAME=VALUE")
		}
		if seen[name] {
			return nil, ruleErr(name, val, "appears more than once")
		}
		seen[name] = true
		if err := r.setPart(name, val); err != nil {
			return nil, err
		}
	}
	if !seen["FREQ"] {
		return nil, ruleErr("FREQ", "", "is required")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recur) setPart(name, val string) error {
	var err error
	switch name {
	case "FREQ":
		found := false
		for i, n := range frequencyNames {
			if strings.EqualFold(n, val) {
				r.Freq, found = Frequency(i), true
			}
		}
		if !found {
			return ruleErr(name, val, "unknown frequency")
		}
	case "UNTIL":
		r.Until, err = parseUntil(val)
	case "COUNT":
		r.Count, err = ruleInt(name, val)
		if err == nil && r.Count < 1 {
			err = ruleErr(name, val, "must be positive")
		}
	case "INTERVAL":
		r.Interval, err = ruleInt(name, val)
		if err == nil && r.Interval < 1 {
			err = ruleErr(name, val, "must be positive")
		}
	case "BYSECOND":
		r.BySecond, err = ruleIntList(name, val)
	case "BYMINUTE":
		r.ByMinute, err = ruleIntList(name, val)
	case "BYHOUR":
		r.ByHour, err = ruleIntList(name, val)
	case "BYDAY":
		r.ByDay, err = parseByDay(val)
	case "BYMONTHDAY":
		r.ByMonthDay, err = ruleIntList(name, val)
	case "BYYEARDAY":
		r.ByYearDay, err = ruleIntList(name, val)
	case "BYWEEKNO":
		r.ByWeekNo, err = ruleIntList(name, val)
	case "BYMONTH":
		r.ByMonth, err = ruleIntList(name, val)
	case "BYSETPOS":
		r.BySetPos, err = ruleIntList(name, val)
	case "WKST":
		wd, ok := parseWeekday(strings.ToUpper(val))
		if !ok {
			return ruleErr(name, val, "unknown weekday")
		}
		r.WeekStart = wd
	default:
		return ruleErr(name, val, "unknown rule part")
	}
	return err
}

func parseUntil(val string) (*Until, error) {
	if len(val) == 8 {
		d, err := ParseDate(val)
		if err != nil {
			return nil, ruleErr("UNTIL", val, "invalid date")
		}
		return &Until{Time: d.In(time.UTC), DateOnly: true}, nil
	}
	dt, err := ParseDateTime(val, "", nil)
	if err != nil {
		return nil, ruleErr("UNTIL", val, "invalid date-time")
	}
	return &Until{Time: dt.Time, Form: dt.Form}, nil
}

func ruleInt(name, val string) (int, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, ruleErr(name, val, "expected an integer")
	}
	return n, nil
}

func ruleIntList(name, val string) ([]int, error) {
	parts := strings.Split(val, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := ruleInt(name, p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func parseByDay(val string) ([]WeekdayNum, error) {
	parts := strings.Split(val, ",")
	out := make([]WeekdayNum, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(p)
		if len(p) < 2 {
			return nil, ruleErr("BYDAY", p, "malformed weekday")
		}
		wd, ok := parseWeekday(p[len(p)-2:])
		if !ok {
			return nil, ruleErr("BYDAY", p, "unknown weekday")
		}
		w := WeekdayNum{Weekday: wd}
		if ord := p[:len(p)-2]; ord != "" {
			n, err := strconv.Atoi(ord)
			if err != nil || n == 0 {
				return nil, ruleErr("BYDAY", p, "malformed ordinal")
			}
			w.Ordinal = n
		}
		out = append(out, w)
	}
	return out, nil
}

// Validate checks value ranges and the combinations of rule parts that
// RFC 5545 forbids.
func (r *Recur) Validate() error {
	if r.Freq < Secondly || r.Freq > Yearly {
		return ruleErr("FREQ", r.Freq.String(), "unknown frequency")
	}
	if r.Interval < 1 {
		return ruleErr("INTERVAL", strconv.Itoa(r.Interval), "must be positive")
	}
	if r.Count < 0 {
		return ruleErr("COUNT", strconv.Itoa(r.Count), "must be positive")
	}
	if r.Count > 0 && r.Until != nil {
		return ruleErr("COUNT", "", "COUNT and UNTIL are mutually exclusive")
	}

	checks := []struct {
		part     string
		values   []int
		min, max int
		signed   bool
	}{
		{"BYSECOND", r.BySecond, 0, 60, false},
		{"BYMINUTE", r.ByMinute, 0, 59, false},
		{"BYHOUR", r.ByHour, 0, 23, false},
		{"BYMONTHDAY", r.ByMonthDay, 1, 31, true},
		{"BYYEARDAY", r.ByYearDay, 1, 366, true},
		{"BYWEEKNO", r.ByWeekNo, 1, 53, true},
		{"BYMONTH", r.ByMonth, 1, 12, false},
		{"BYSETPOS", r.BySetPos, 1, 366, true},
	}
	for _, c := range checks {
		for _, v := range c.values {
			abs := v
			if c.signed && v < 0 {
				abs = -v
			}
			if abs < c.min || abs > c.max || (!c.signed && v < 0) {
				return ruleErr(c.part, strconv.Itoa(v), "out of range")
			}
		}
	}

	for _, wd := range r.ByDay {
		if wd.Ordinal == 0 {
			continue
		}
		switch {
		case r.Freq != Monthly && r.Freq != Yearly:
			return ruleErr("BYDAY", wd.String(), "ordinal weekdays require MONTHLY or YEARLY")
		case r.Freq == Yearly && len(r.ByWeekNo) > 0:
			return ruleErr("BYDAY", wd.String(), "ordinal weekdays cannot be combined with BYWEEKNO")
		case r.Freq == Monthly && (wd.Ordinal > 5 || wd.Ordinal < -5):
			return ruleErr("BYDAY", wd.String(), "ordinal out of range for MONTHLY")
		case wd.Ordinal > 53 || wd.Ordinal < -53:
			return ruleErr("BYDAY", wd.String(), "ordinal out of range")
		}
	}

	if len(r.ByWeekNo) > 0 && r.Freq != Yearly {
		return ruleErr("BYWEEKNO", "", "only valid with FREQ=YEARLY")
	}
	if len(r.ByYearDay) > 0 && (r.Freq == Daily || r.Freq == Weekly || r.Freq == Monthly) {
		return ruleErr("BYYEARDAY", "", "not valid with FREQ="+r.Freq.String())
	}
	if len(r.ByMonthDay) > 0 && r.Freq == Weekly {
		return ruleErr("BYMONTHDAY", "", "not valid with FREQ=WEEKLY")
	}
	if len(r.BySetPos) > 0 && !r.hasByRule() {
		return ruleErr("BYSETPOS", "", "requires another BYxxx rule part")
	}
	return nil
}

func (r *Recur) hasByRule() bool {
	return len(r.BySecond)+len(r.ByMinute)+len(r.ByHour)+len(r.ByDay)+
		len(r.ByMonthDay)+len(r.ByYearDay)+len(r.ByWeekNo)+len(r.ByMonth) > 0
}

// String formats the rule in a canonical part order.
func (r *Recur) String() string {
	parts := []string{"FREQ=" + r.Freq.String()}
	if r.Until != nil {
		parts = append(parts, "UNTIL="+r.Until.String())
	}
	if r.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(r.Count))
	}
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	lists := []struct {
		name   string
		values []int
	}{
		{"BYSECOND", r.BySecond},
		{"BYMINUTE", r.ByMinute},
		{"BYHOUR", r.ByHour},
	}
	for _, l := range lists {
		if len(l.values) > 0 {
			parts = append(parts, l.name+"="+joinInts(l.values))
		}
	}
	if len(r.ByDay) > 0 {
		days := make([]string, len(r.ByDay))
		for i, d := range r.ByDay {
			days[i] = d.String()
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	lists = []struct {
		name   string
		values []int
	}{
		{"BYMONTHDAY", r.ByMonthDay},
		{"BYYEARDAY", r.ByYearDay},
		{"BYWEEKNO", r.ByWeekNo},
		{"BYMONTH", r.ByMonth},
		{"BYSETPOS", r.BySetPos},
	}
	for _, l := range lists {
		if len(l.values) > 0 {
			parts = append(parts, l.name+"="+joinInts(l.values))
		}
	}
	if r.WeekStart != time.Monday {
		parts = append(parts, "WKST="+weekdayNames[r.WeekStart])
	}
	return strings.Join(parts, ";")
}

func joinInts(vs []int) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = strconv.Itoa(v)
	}
	return strings.Join(s, ",")
}
