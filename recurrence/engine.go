// Package recurrence expands RRULE, RDATE, EXRULE and EXDATE into the
// ordered instances of a recurrence set.
package recurrence

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/cyp0633/libical/internal/metrics"
	"github.com/cyp0633/libical/value"
)

// Engine provides unified recurrence expansion and validation logic
type Engine struct {
	config  EngineConfig
	metrics *metrics.Collector
	cache   *rangeCache // nil when disabled
}

// NewEngine creates a new recurrence engine instance
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// Expand returns an iterator over the instances of set inside w. A nil
// window is unbounded; so is an iterator over a rule without COUNT or
// UNTIL, which then runs until MaxYear.
func (e *Engine) Expand(set Set, w *Window) (*Iterator, error) {
	if set.Start.IsZero() {
		return nil, ErrNoStart
	}
	loc := set.Start.Location()
	it := &Iterator{
		exdates: make(map[int64]bool, len(set.ExDates)),
		loc:     loc,
		window:  w,
		metrics: e.metrics,
	}

	if set.Rule == nil {
		it.rule = &single{t: set.Start}
	} else {
		ri, err := e.ruleIter(set, set.Rule, true, w)
		if err != nil {
			return nil, err
		}
		it.rule = ri
	}
	for _, r := range set.ExRules {
		ri, err := e.ruleIter(set, r, false, w)
		if err != nil {
			return nil, err
		}
		it.exrules = append(it.exrules, &exclusion{s: ri})
	}

	it.rdates = slices.Clone(set.RDates)
	slices.SortFunc(it.rdates, func(a, b time.Time) int { return a.Compare(b) })
	for _, t := range set.ExDates {
		it.exdates[t.UnixNano()] = true
	}
	if len(set.ExDays) > 0 {
		it.exdays = make(map[value.Date]bool, len(set.ExDays))
		for _, d := range set.ExDays {
			it.exdays[d] = true
		}
	}

	e.config.Logger.Debug("expanding recurrence set",
		"start", set.Start,
		"rule", set.Rule,
		"rdates", len(set.RDates),
		"exdates", len(set.ExDates)+len(set.ExDays),
		"exrules", len(set.ExRules))
	return it, nil
}

func (e *Engine) ruleIter(set Set, r *value.Recur, force bool, w *Window) (*ruleIter, error) {
	if set.AllDay && r.Freq < value.Daily {
		return nil, &value.RecurrenceRuleError{Part: "FREQ", Value: r.Freq.String(), Reason: "sub-daily frequency with a DATE start"}
	}
	if !reachable(r, set.Start) {
		return nil, &value.RecurrenceRuleError{
			Part:   "INTERVAL",
			Value:  strconv.Itoa(r.Interval),
			Reason: "steps never reach the BYHOUR, BYMINUTE or BYSECOND values",
		}
	}
	var limit time.Time
	if r.Until != nil {
		if err := checkUntilForm(*r.Until, set); err != nil {
			return nil, err
		}
		limit = untilLimit(*r.Until, set.Start.Location(), set.AllDay)
		if limit.Before(set.Start) {
			return nil, &value.RecurrenceRuleError{Part: "UNTIL", Value: r.Until.String(), Reason: "is before DTSTART"}
		}
	}
	var horizon time.Time
	if w != nil {
		horizon = w.End
	}
	return newRuleIter(r, set.Start, set.AllDay, force, limit, horizon, e.config.MaxYear), nil
}

// checkUntilForm enforces RFC 5545 section 3.3.10: a floating DTSTART takes
// a floating UNTIL, a UTC or zoned DTSTART takes a UTC one. DATE starts
// accept either.
func checkUntilForm(u value.Until, set Set) error {
	if u.DateOnly || set.AllDay {
		return nil
	}
	switch {
	case set.Floating && u.Form != value.Floating:
		return &value.RecurrenceRuleError{Part: "UNTIL", Value: u.String(), Reason: "must be floating when DTSTART is floating"}
	case !set.Floating && u.Form == value.Floating:
		return &value.RecurrenceRuleError{Part: "UNTIL", Value: u.String(), Reason: "must be UTC when DTSTART is UTC or has a TZID"}
	}
	return nil
}

// untilLimit turns UNTIL into an inclusive instant in loc. A date bound
// covers its whole day unless the set itself is made of dates.
func untilLimit(u value.Until, loc *time.Location, allDay bool) time.Time {
	t := u.Time
	switch {
	case u.DateOnly && allDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	case u.DateOnly:
		return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	case u.Form == value.Floating:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
	}
	return t
}

// All expands set inside w and collects the instances, failing once more
// than MaxOccurrences would be returned.
func (e *Engine) All(set Set, w *Window) ([]time.Time, error) {
	it, err := e.Expand(set, w)
	if err != nil {
		return nil, err
	}
	var out []time.Time
	for t := range it.All() {
		if e.config.MaxOccurrences > 0 && len(out) == e.config.MaxOccurrences {
			return nil, fmt.Errorf("recurrence set exceeds %d occurrences", e.config.MaxOccurrences)
		}
		out = append(out, t)
	}
	return out, nil
}
