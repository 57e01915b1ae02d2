package recurrence

import (
	"slices"
	"time"

	"github.com/cyp0633/libical/value"
)

// stream yields instants in ascending order.
type stream interface {
	next() (time.Time, bool)
}

// single yields one instant.
type single struct {
	t    time.Time
	used bool
}

func (s *single) next() (time.Time, bool) {
	if s.used {
		return time.Time{}, false
	}
	s.used = true
	return s.t, true
}

// ruleIter walks the candidates of one RECUR rule. DAILY and coarser
// rules compute candidates on a naive wall clock held in time.UTC and place
// them in loc when emitted. Sub-daily rules step in absolute time from
// DTSTART, so a DST transition neither repeats nor loses an instant.
type ruleIter struct {
	r        value.Recur // with defaults applied
	loc      *time.Location
	base     time.Time // DTSTART wall clock
	origin   time.Time // DTSTART instant, truncated to the second
	dateOnly bool
	subDaily bool
	force    bool      // emit base first, counted toward COUNT
	limit    time.Time // inclusive UNTIL bound, zero if none
	horizon  time.Time // exclusive end of the caller's window, zero if none
	maxYear  int

	hours, minutes, seconds []int
	period                  time.Time // naive, or an instant in loc when subDaily
	pending                 []time.Time
	last                    time.Time
	count                   int
	started                 bool
	done                    bool
}

func newRuleIter(r *value.Recur, start time.Time, dateOnly, force bool, limit, horizon time.Time, maxYear int) *ruleIter {
	it := &ruleIter{
		r:        *r,
		loc:      start.Location(),
		base:     naive(start),
		origin:   start.Add(-time.Duration(start.Nanosecond())),
		dateOnly: dateOnly,
		subDaily: r.Freq < value.Daily,
		force:    force,
		limit:    limit,
		horizon:  horizon,
		maxYear:  maxYear,
	}
	if it.r.Interval < 1 {
		it.r.Interval = 1
	}
	it.applyDefaults()
	it.period = it.anchor()
	return it
}

func naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// applyDefaults fills in the day and time parts DTSTART implies.
func (it *ruleIter) applyDefaults() {
	r, b := &it.r, it.base
	if len(r.ByWeekNo)+len(r.ByYearDay)+len(r.ByMonthDay)+len(r.ByDay) == 0 {
		switch r.Freq {
		case value.Yearly:
			if len(r.ByMonth) == 0 {
				r.ByMonth = []int{int(b.Month())}
			}
			r.ByMonthDay = []int{b.Day()}
		case value.Monthly:
			r.ByMonthDay = []int{b.Day()}
		case value.Weekly:
			r.ByDay = []value.WeekdayNum{{Weekday: b.Weekday()}}
		}
	}
	if it.dateOnly {
		it.hours, it.minutes, it.seconds = []int{0}, []int{0}, []int{0}
		return
	}
	it.hours = timeSet(r.ByHour, b.Hour(), r.Freq >= value.Daily)
	it.minutes = timeSet(r.ByMinute, b.Minute(), r.Freq >= value.Hourly)
	it.seconds = timeSet(r.BySecond, b.Second(), r.Freq >= value.Minutely)
}

func timeSet(by []int, fallback int, coarse bool) []int {
	if len(by) > 0 {
		out := slices.Clone(by)
		slices.Sort(out)
		return slices.Compact(out)
	}
	if coarse {
		return []int{fallback}
	}
	return nil
}

// anchor returns the start of the period holding DTSTART.
func (it *ruleIter) anchor() time.Time {
	b, o := it.base, it.origin
	day := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	switch it.r.Freq {
	case value.Yearly:
		return time.Date(b.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	case value.Monthly:
		return time.Date(b.Year(), b.Month(), 1, 0, 0, 0, 0, time.UTC)
	case value.Weekly:
		back := (int(b.Weekday()) - int(it.r.WeekStart) + 7) % 7
		return day.AddDate(0, 0, -back)
	case value.Daily:
		return day
	case value.Hourly:
		return o.Add(-time.Duration(b.Minute())*time.Minute - time.Duration(b.Second())*time.Second)
	case value.Minutely:
		return o.Add(-time.Duration(b.Second()) * time.Second)
	}
	return o
}

func (it *ruleIter) next() (time.Time, bool) {
	if it.done {
		return time.Time{}, false
	}
	if it.force && !it.started {
		it.started = true
		it.count++
		first := it.origin
		if !it.subDaily {
			first = it.emit(it.base)
		}
		it.last = first
		return first, true
	}
	for {
		if it.r.Count > 0 && it.count >= it.r.Count {
			it.done = true
			return time.Time{}, false
		}
		for len(it.pending) == 0 {
			if it.period.Year() > it.maxYear || it.exhausted() {
				it.done = true
				return time.Time{}, false
			}
			it.pending = it.candidates()
		}
		c := it.pending[0]
		it.pending = it.pending[1:]

		t := c
		if it.subDaily {
			if c.Before(it.origin) || (it.force && c.Equal(it.origin)) {
				continue
			}
		} else {
			if c.Before(it.base) || (it.force && c.Equal(it.base)) {
				continue
			}
			t = it.emit(c)
		}
		if !it.limit.IsZero() && t.After(it.limit) {
			it.done = true
			return time.Time{}, false
		}
		// Wall clock times inside a DST gap can land on an instant already
		// emitted. They do not count.
		if !it.last.IsZero() && !t.After(it.last) {
			continue
		}
		it.last = t
		it.count++
		return t, true
	}
}

// exhausted reports whether the current period starts past UNTIL or at or
// after the window end. Every candidate of a period lies at or after its
// start.
func (it *ruleIter) exhausted() bool {
	start := it.period
	if !it.subDaily {
		start = it.emit(it.period)
	}
	if !it.limit.IsZero() && start.After(it.limit) {
		return true
	}
	return !it.horizon.IsZero() && !start.Before(it.horizon)
}

func (it *ruleIter) emit(c time.Time) time.Time {
	return time.Date(c.Year(), c.Month(), c.Day(), c.Hour(), c.Minute(), c.Second(), 0, it.loc)
}

// candidates returns the sorted candidates of the current period and moves
// on to the next one.
func (it *ruleIter) candidates() []time.Time {
	r := &it.r

	var out []time.Time
	if it.subDaily {
		p := it.period
		w := p.In(it.loc)
		day := time.Date(w.Year(), w.Month(), w.Day(), 0, 0, 0, 0, time.UTC)
		switch {
		case !it.matchDay(day):
			it.skipDay()
			return nil
		case len(r.ByHour) > 0 && !slices.Contains(r.ByHour, w.Hour()):
			it.skip(time.Hour)
			return nil
		case r.Freq <= value.Minutely && len(r.ByMinute) > 0 && !slices.Contains(r.ByMinute, w.Minute()):
			it.skip(time.Minute)
			return nil
		case r.Freq == value.Secondly && len(r.BySecond) > 0 && !slices.Contains(r.BySecond, w.Second()):
			it.advance()
			return nil
		}
		switch r.Freq {
		case value.Hourly:
			for _, m := range it.minutes {
				for _, sec := range it.seconds {
					out = append(out, p.Add(time.Duration(m)*time.Minute+time.Duration(sec)*time.Second))
				}
			}
		case value.Minutely:
			for _, sec := range it.seconds {
				out = append(out, p.Add(time.Duration(sec)*time.Second))
			}
		default:
			out = []time.Time{p}
		}
	} else {
		for _, day := range it.days() {
			out = append(out, it.times(day, it.hours, it.minutes, it.seconds)...)
		}
	}

	if len(r.BySetPos) > 0 {
		out = setPos(out, r.BySetPos)
	}
	it.advance()
	return out
}

func (it *ruleIter) times(day time.Time, hours, minutes, seconds []int) []time.Time {
	out := make([]time.Time, 0, len(hours)*len(minutes)*len(seconds))
	for _, h := range hours {
		for _, m := range minutes {
			for _, s := range seconds {
				out = append(out, time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, time.UTC))
			}
		}
	}
	return out
}

func (it *ruleIter) days() []time.Time {
	p := it.period
	n := 1
	switch it.r.Freq {
	case value.Yearly:
		n = daysInYear(p.Year())
	case value.Monthly:
		n = value.DaysIn(p.Month(), p.Year())
	case value.Weekly:
		n = 7
	}
	var out []time.Time
	for i := 0; i < n; i++ {
		d := p.AddDate(0, 0, i)
		if it.matchDay(d) {
			out = append(out, d)
		}
	}
	return out
}

func (it *ruleIter) advance() {
	p, n := it.period, it.r.Interval
	switch it.r.Freq {
	case value.Yearly:
		it.period = p.AddDate(n, 0, 0)
	case value.Monthly:
		it.period = p.AddDate(0, n, 0)
	case value.Weekly:
		it.period = p.AddDate(0, 0, 7*n)
	case value.Daily:
		it.period = p.AddDate(0, 0, n)
	default:
		it.period = p.Add(it.step())
	}
}

// step is the absolute length of one sub-daily INTERVAL.
func (it *ruleIter) step() time.Duration {
	unit := time.Second
	switch it.r.Freq {
	case value.Hourly:
		unit = time.Hour
	case value.Minutely:
		unit = time.Minute
	}
	return unit * time.Duration(it.r.Interval)
}

// skip moves a sub-daily period to the first step at or after the next
// wall clock boundary of the given granularity.
func (it *ruleIter) skip(boundary time.Duration) {
	w := it.period.In(it.loc)
	since := time.Duration(w.Hour())*time.Hour + time.Duration(w.Minute())*time.Minute + time.Duration(w.Second())*time.Second
	it.skipBy(boundary - since%boundary)
}

// skipDay moves a sub-daily period to the first step on or after the next
// local midnight.
func (it *ruleIter) skipDay() {
	w := it.period.In(it.loc)
	midnight := time.Date(w.Year(), w.Month(), w.Day()+1, 0, 0, 0, 0, it.loc)
	it.skipBy(midnight.Sub(it.period))
}

func (it *ruleIter) skipBy(rest time.Duration) {
	step := it.step()
	n := (rest + step - 1) / step
	if n < 1 {
		n = 1
	}
	it.period = it.period.Add(n * step)
}

// reachable reports whether the INTERVAL steps of a sub-daily rule can land
// on its BYHOUR, BYMINUTE and BYSECOND values. A zone whose offset changes
// shifts the wall clock by the size of that change, so both alignments
// count.
func reachable(r *value.Recur, start time.Time) bool {
	var unit int
	switch r.Freq {
	case value.Hourly:
		unit = 3600
	case value.Minutely:
		unit = 60
	case value.Secondly:
		unit = 1
	default:
		return true
	}
	constrained := len(r.ByHour) > 0 ||
		(r.Freq <= value.Minutely && len(r.ByMinute) > 0) ||
		(r.Freq == value.Secondly && len(r.BySecond) > 0)
	if !constrained || r.Interval <= 1 {
		return true
	}
	const day = 86400
	g := gcd(r.Interval*unit, day)

	hours := r.ByHour
	if len(hours) == 0 {
		hours = upTo(24)
	}
	minutes, seconds := []int{0}, []int{0}
	origin := start.Hour() * 3600
	if r.Freq <= value.Minutely {
		minutes = r.ByMinute
		if len(minutes) == 0 {
			minutes = upTo(60)
		}
		origin += start.Minute() * 60
	}
	if r.Freq == value.Secondly {
		seconds = r.BySecond
		if len(seconds) == 0 {
			seconds = upTo(60)
		}
		origin += start.Second()
	}

	shifts := []int{0}
	_, jan := time.Date(start.Year(), 1, 1, 0, 0, 0, 0, start.Location()).Zone()
	_, jul := time.Date(start.Year(), 7, 1, 0, 0, 0, 0, start.Location()).Zone()
	if d := jul - jan; d != 0 {
		shifts = append(shifts, d, -d)
	}
	for _, h := range hours {
		for _, m := range minutes {
			for _, s := range seconds {
				for _, shift := range shifts {
					if ((h*3600+m*60+s-origin+shift)%g+g)%g == 0 {
						return true
					}
				}
			}
		}
	}
	return false
}

func upTo(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func (it *ruleIter) matchDay(d time.Time) bool {
	r := &it.r
	if len(r.ByMonth) > 0 && !slices.Contains(r.ByMonth, int(d.Month())) {
		return false
	}
	if len(r.ByWeekNo) > 0 {
		no, total := weekNumber(d, r.WeekStart)
		if !slices.Contains(r.ByWeekNo, no) && !slices.Contains(r.ByWeekNo, no-total-1) {
			return false
		}
	}
	if len(r.ByYearDay) > 0 {
		yd, n := d.YearDay(), daysInYear(d.Year())
		if !slices.Contains(r.ByYearDay, yd) && !slices.Contains(r.ByYearDay, yd-n-1) {
			return false
		}
	}
	if len(r.ByMonthDay) > 0 {
		md, n := d.Day(), value.DaysIn(d.Month(), d.Year())
		if !slices.Contains(r.ByMonthDay, md) && !slices.Contains(r.ByMonthDay, md-n-1) {
			return false
		}
	}
	return len(r.ByDay) == 0 || it.matchWeekday(d)
}

func (it *ruleIter) matchWeekday(d time.Time) bool {
	r := &it.r
	for _, wd := range r.ByDay {
		if wd.Weekday != d.Weekday() {
			continue
		}
		if wd.Ordinal == 0 {
			return true
		}
		// Ordinals count within the month for MONTHLY rules and for
		// YEARLY rules narrowed by BYMONTH, within the year otherwise.
		idx, n := d.YearDay(), daysInYear(d.Year())
		if r.Freq == value.Monthly || (r.Freq == value.Yearly && len(r.ByMonth) > 0) {
			idx, n = d.Day(), value.DaysIn(d.Month(), d.Year())
		}
		if wd.Ordinal == (idx-1)/7+1 || wd.Ordinal == -((n-idx)/7+1) {
			return true
		}
	}
	return false
}

func setPos(set []time.Time, positions []int) []time.Time {
	var out []time.Time
	for _, p := range positions {
		i := p - 1
		if p < 0 {
			i = len(set) + p
		}
		if i >= 0 && i < len(set) {
			out = append(out, set[i])
		}
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(out, func(a, b time.Time) bool { return a.Equal(b) })
}

func daysInYear(year int) int {
	if value.DaysIn(time.February, year) == 29 {
		return 366
	}
	return 365
}

// weekOne returns the first day of week 1: the week starting on wkst that
// holds at least four days of the year.
func weekOne(year int, wkst time.Weekday) time.Time {
	jan1 := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	back := (int(jan1.Weekday()) - int(wkst) + 7) % 7
	start := jan1.AddDate(0, 0, -back)
	if back > 3 {
		start = start.AddDate(0, 0, 7)
	}
	return start
}

// weekNumber returns d's week number and the number of weeks in its
// week-numbering year.
func weekNumber(d time.Time, wkst time.Weekday) (no, total int) {
	year := d.Year()
	start := weekOne(year, wkst)
	if d.Before(start) {
		year--
		start = weekOne(year, wkst)
	} else if next := weekOne(year+1, wkst); !d.Before(next) {
		year++
		start = next
	}
	end := weekOne(year+1, wkst)
	return int(d.Sub(start).Hours())/24/7 + 1, int(end.Sub(start).Hours()) / 24 / 7
}
