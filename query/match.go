package query

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/cyp0633/libical/ical"
	"github.com/cyp0633/libical/recurrence"
	"github.com/cyp0633/libical/value"
)

var (
	// ErrUnsupportedCollation is returned for a text-match collation other
	// than i;ascii-casemap, i;unicode-casemap and i;octet.
	ErrUnsupportedCollation = errors.New("query: unsupported collation")
	// ErrUnsupportedMatchType is returned for an unknown match-type.
	ErrUnsupportedMatchType = errors.New("query: unsupported match type")
)

// farFuture stands in for an open time-range end.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Matcher evaluates filters. Time ranges are checked against expanded
// recurrence sets.
type Matcher struct {
	engine *recurrence.Engine
}

// NewMatcher returns a Matcher expanding recurrences with e, or with a
// default engine when e is nil.
func NewMatcher(e *recurrence.Engine) *Matcher {
	if e == nil {
		e = recurrence.NewEngine()
	}
	return &Matcher{engine: e}
}

// Match reports whether cal satisfies f using a default engine.
func Match(cal *ical.Calendar, f *Filter) (bool, error) {
	return NewMatcher(nil).Match(cal, f)
}

// Match reports whether cal satisfies f. A nil filter matches everything.
func (m *Matcher) Match(cal *ical.Calendar, f *Filter) (bool, error) {
	if f == nil {
		return true, nil
	}
	if f.Component != ical.CompCalendar {
		return false, fmt.Errorf("top-level comp-filter must name VCALENDAR, not %q", f.Component)
	}
	if f.IsNotDefined {
		return false, nil
	}
	return m.matchComp(cal.Component, nil, f)
}

func (m *Matcher) matchComp(c, parent *ical.Component, f *Filter) (bool, error) {
	if f.TimeRange != nil {
		ok, err := m.inRange(c, parent, f.TimeRange)
		if err != nil || !ok {
			return false, err
		}
	}
	conds := make([]func() (bool, error), 0, len(f.PropFilters)+len(f.Children))
	for i := range f.PropFilters {
		pf := &f.PropFilters[i]
		conds = append(conds, func() (bool, error) { return matchProp(c, pf) })
	}
	for i := range f.Children {
		child := &f.Children[i]
		conds = append(conds, func() (bool, error) { return m.matchChildren(c, child) })
	}
	return combine(f.Test, conds)
}

func (m *Matcher) matchChildren(c *ical.Component, f *Filter) (bool, error) {
	kids := c.Components(f.Component)
	if f.IsNotDefined {
		return len(kids) == 0, nil
	}
	for _, kid := range kids {
		ok, err := m.matchComp(kid, c, f)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// combine evaluates conditions lazily. "anyof" needs one to hold, anything
// else needs all of them. No conditions always hold.
func combine(test string, conds []func() (bool, error)) (bool, error) {
	if len(conds) == 0 {
		return true, nil
	}
	anyOf := strings.EqualFold(test, "anyof")
	for _, cond := range conds {
		ok, err := cond()
		if err != nil {
			return false, err
		}
		if ok == anyOf {
			return ok, nil
		}
	}
	return !anyOf, nil
}

func matchProp(c *ical.Component, pf *PropFilter) (bool, error) {
	props := c.Props(pf.Name)
	if pf.IsNotDefined {
		return len(props) == 0, nil
	}
	for _, p := range props {
		var conds []func() (bool, error)
		if pf.TextMatch != nil {
			conds = append(conds, func() (bool, error) { return pf.TextMatch.MatchAny(texts(p)) })
		}
		for i := range pf.ParamFilters {
			param := &pf.ParamFilters[i]
			conds = append(conds, func() (bool, error) { return matchParam(p, param) })
		}
		ok, err := combine(pf.Test, conds)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func matchParam(p *ical.Property, f *ParamFilter) (bool, error) {
	param, ok := p.Params.Get(f.Name)
	if f.IsNotDefined {
		return !ok, nil
	}
	if !ok {
		return false, nil
	}
	if f.TextMatch == nil {
		return true, nil
	}
	return f.TextMatch.MatchAny(param.Values)
}

// texts returns the strings a text-match is run against: each TEXT item,
// or the formatted value for any other type.
func texts(p *ical.Property) []string {
	switch v := p.Value.(type) {
	case value.Text:
		return []string{string(v)}
	case value.List:
		if v.Elem == value.TypeText {
			out := make([]string, len(v.Items))
			for i, item := range v.Items {
				out[i] = string(item.(value.Text))
			}
			return out
		}
	}
	if p.Verbatim() || p.Value == nil {
		return []string{p.RawValue}
	}
	return []string{value.Format(p.Value)}
}

// Match applies the text-match to s.
func (tm *TextMatch) Match(s string) (bool, error) {
	a, b := s, tm.Value
	switch tm.Collation {
	case "", "i;ascii-casemap":
		a, b = asciiLower(a), asciiLower(b)
	case "i;unicode-casemap":
		fold := cases.Fold()
		a, b = fold.String(a), fold.String(b)
	case "i;octet":
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedCollation, tm.Collation)
	}
	var ok bool
	switch tm.MatchType {
	case "", "contains":
		ok = strings.Contains(a, b)
	case "equals":
		ok = a == b
	case "starts-with":
		ok = strings.HasPrefix(a, b)
	case "ends-with":
		ok = strings.HasSuffix(a, b)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedMatchType, tm.MatchType)
	}
	return ok != tm.Negate, nil
}

// MatchAny reports whether the text-match holds for any of values.
func (tm *TextMatch) MatchAny(values []string) (bool, error) {
	for _, v := range values {
		ok, err := tm.Match(v)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	}, s)
}

func bounds(tr *TimeRange) (start, end time.Time) {
	end = farFuture
	if tr.Start != nil {
		start = *tr.Start
	}
	if tr.End != nil {
		end = *tr.End
	}
	return start, end
}

// inRange applies a time-range to one component.
func (m *Matcher) inRange(c, parent *ical.Component, tr *TimeRange) (bool, error) {
	start, end := bounds(tr)
	switch c.Name {
	case ical.CompEvent, ical.CompJournal:
		if c.Prop("DTSTART") == nil {
			return false, nil
		}
		return m.engine.HasOccurrenceInRange(c, start, end)
	case ical.CompToDo:
		if c.Prop("DTSTART") != nil {
			return m.engine.HasOccurrenceInRange(c, start, end)
		}
		// Without DTSTART the first of these dates stands for the to-do.
		for _, name := range []string{"DUE", "COMPLETED", "CREATED"} {
			if v, ok := c.GetProperty(name).Get(); ok {
				t, ok := instant(v)
				return ok && !t.Before(start) && t.Before(end), nil
			}
		}
		return true, nil
	case ical.CompFreeBusy:
		s, okStart := instantOf(c, "DTSTART")
		e, okEnd := instantOf(c, "DTEND")
		return okStart && okEnd && s.Before(end) && e.After(start), nil
	case ical.CompAlarm:
		return m.alarmInRange(c, parent, start, end)
	}
	return false, nil
}

// alarmInRange reports whether the alarm's first trigger falls in range.
// Relative triggers are evaluated against every instance of the parent.
func (m *Matcher) alarmInRange(alarm, parent *ical.Component, start, end time.Time) (bool, error) {
	trigger := alarm.Prop("TRIGGER")
	if trigger == nil {
		return false, nil
	}
	switch v := trigger.Value.(type) {
	case value.DateTime:
		t := v.In(time.UTC)
		return !t.Before(start) && t.Before(end), nil
	case value.Duration:
		if parent == nil || parent.Prop("DTSTART") == nil {
			return false, nil
		}
		offset := v.Exact()
		if related, ok := trigger.Params.Get("RELATED"); ok && strings.EqualFold(related.Value(), "END") {
			offset += length(parent)
		}
		set, err := m.engine.FromComponent(parent)
		if err != nil {
			return false, err
		}
		it, err := m.engine.Expand(set, &recurrence.Window{Start: start.Add(-offset), End: end.Add(-offset)})
		if err != nil {
			return false, err
		}
		_, ok := it.Next()
		return ok, nil
	}
	return false, nil
}

// length is the parent's DTEND (or DUE) minus DTSTART, else its DURATION.
func length(c *ical.Component) time.Duration {
	s, ok := instantOf(c, "DTSTART")
	if !ok {
		return 0
	}
	for _, name := range []string{"DTEND", "DUE"} {
		if e, ok := instantOf(c, name); ok {
			return e.Sub(s)
		}
	}
	if d, ok := ical.Get[value.Duration](c, "DURATION").Get(); ok {
		return d.Exact()
	}
	return 0
}

func instantOf(c *ical.Component, name string) (time.Time, bool) {
	v, ok := c.GetProperty(name).Get()
	if !ok {
		return time.Time{}, false
	}
	return instant(v)
}

// instant places DATE and floating values in UTC.
func instant(v value.Value) (time.Time, bool) {
	switch v := v.(type) {
	case value.Date:
		return v.In(time.UTC), true
	case value.DateTime:
		return v.In(time.UTC), true
	}
	return time.Time{}, false
}
