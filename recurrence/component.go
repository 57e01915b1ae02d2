package recurrence

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/libical/ical"
	"github.com/cyp0633/libical/value"
)

// FromComponent builds the recurrence set of a VEVENT, VTODO or VJOURNAL.
// Floating and DATE values are placed in the engine's FloatingLocation.
func (e *Engine) FromComponent(comp *ical.Component) (Set, error) {
	v, ok := comp.GetProperty("DTSTART").Get()
	if !ok {
		return Set{}, ErrNoStart
	}
	var set Set
	switch v := v.(type) {
	case value.Date:
		set.Start, set.AllDay, set.Floating = v.In(e.config.FloatingLocation), true, true
	case value.DateTime:
		set.Start, set.Floating = v.In(e.config.FloatingLocation), v.Form == value.Floating
	default:
		return Set{}, fmt.Errorf("DTSTART has unexpected type %s", v.Type())
	}
	loc := set.Start.Location()

	rules := comp.Props("RRULE")
	if len(rules) > 1 {
		return Set{}, ErrMultipleRules
	}
	if len(rules) == 1 {
		set.Rule, _ = rules[0].Value.(*value.Recur)
	}
	for _, p := range comp.Props("EXRULE") {
		if r, ok := p.Value.(*value.Recur); ok {
			set.ExRules = append(set.ExRules, r)
		}
	}
	for _, p := range comp.Props("RDATE") {
		for _, item := range items(p.Value) {
			if t, _, ok := instant(item, loc); ok {
				set.RDates = append(set.RDates, t)
			}
		}
	}
	for _, p := range comp.Props("EXDATE") {
		for _, item := range items(p.Value) {
			t, date, ok := instant(item, loc)
			switch {
			case !ok:
			case date && !set.AllDay:
				set.ExDays = append(set.ExDays, value.DateOf(t))
			default:
				set.ExDates = append(set.ExDates, t)
			}
		}
	}
	return set, nil
}

func items(v value.Value) []value.Value {
	if l, ok := v.(value.List); ok {
		return l.Items
	}
	return []value.Value{v}
}

// instant places a DATE, DATE-TIME or PERIOD start on the time line.
// Floating values take loc.
func instant(v value.Value, loc *time.Location) (t time.Time, date, ok bool) {
	switch v := v.(type) {
	case value.Date:
		return v.In(loc), true, true
	case value.DateTime:
		return v.In(loc), false, true
	case value.Period:
		return v.Start.In(loc), false, true
	}
	return time.Time{}, false, false
}

// ExpandComponent expands a component that owns exactly one RRULE.
func (e *Engine) ExpandComponent(comp *ical.Component, w *Window) (*Iterator, error) {
	if len(comp.Props("RRULE")) == 0 {
		if comp.Prop("DTSTART") == nil {
			return nil, ErrNoStart
		}
		return nil, ErrNoRule
	}
	set, err := e.FromComponent(comp)
	if err != nil {
		return nil, err
	}
	return e.Expand(set, w)
}

// Between returns the instance starts of comp in [start, end).
func (e *Engine) Between(comp *ical.Component, start, end time.Time) ([]time.Time, error) {
	set, err := e.FromComponent(comp)
	if err != nil {
		return nil, err
	}
	return e.All(set, &Window{Start: start, End: end})
}

// HasOccurrenceInRange reports whether any instance of comp overlaps
// [rangeStart, rangeEnd). An instance without duration overlaps when its
// start lies in the range.
func (e *Engine) HasOccurrenceInRange(comp *ical.Component, rangeStart, rangeEnd time.Time) (bool, error) {
	if e.cache == nil {
		return e.hasOccurrenceInRange(comp, rangeStart, rangeEnd)
	}
	key := cacheKey(comp, rangeStart, rangeEnd)
	if hit, ok := e.cache.get(key); ok {
		return hit, nil
	}
	hit, err := e.hasOccurrenceInRange(comp, rangeStart, rangeEnd)
	if err != nil {
		return false, err
	}
	e.cache.set(key, hit)
	return hit, nil
}

func (e *Engine) hasOccurrenceInRange(comp *ical.Component, rangeStart, rangeEnd time.Time) (bool, error) {
	set, err := e.FromComponent(comp)
	if err != nil {
		return false, err
	}
	end := e.span(comp, set)
	longest := end(set.Start).Sub(set.Start)
	w := &Window{Start: rangeStart.Add(-longest - 24*time.Hour), End: rangeEnd}
	it, err := e.Expand(set, w)
	if err != nil {
		return false, err
	}
	for t := range it.All() {
		if overlaps(t, end(t), rangeStart, rangeEnd) {
			return true, nil
		}
	}
	return false, nil
}

func overlaps(start, end, rangeStart, rangeEnd time.Time) bool {
	if !start.Before(rangeEnd) {
		return false
	}
	if end.After(start) {
		return end.After(rangeStart)
	}
	return !start.Before(rangeStart)
}

// span returns how an instance start maps to its end: DTEND (DUE for a
// VTODO) minus DTSTART, else DURATION, else one day for DATE starts and
// zero otherwise.
func (e *Engine) span(comp *ical.Component, set Set) func(time.Time) time.Time {
	endName := "DTEND"
	if comp.Name == ical.CompToDo {
		endName = "DUE"
	}
	if v, ok := comp.GetProperty(endName).Get(); ok {
		if end, date, ok := instant(v, set.Start.Location()); ok {
			if date && set.AllDay {
				days := daysBetween(value.DateOf(set.Start), value.DateOf(end))
				return func(t time.Time) time.Time { return t.AddDate(0, 0, days) }
			}
			d := end.Sub(set.Start)
			return func(t time.Time) time.Time { return t.Add(d) }
		}
	}
	if d, ok := ical.Get[value.Duration](comp, "DURATION").Get(); ok {
		return d.AddTo
	}
	if set.AllDay {
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	}
	return func(t time.Time) time.Time { return t }
}

func daysBetween(a, b value.Date) int {
	return int(b.In(time.UTC).Sub(a.In(time.UTC)).Hours() / 24)
}

// Occurrences materializes the instances of the component with uid whose
// start lies in w. Instances with a RECURRENCE-ID override are replaced by
// the override; the override's own DTSTART decides whether it is in w.
func (e *Engine) Occurrences(cal *ical.Calendar, uid string, w Window) ([]Occurrence, error) {
	if w.End.IsZero() {
		return nil, ErrUnboundedWindow
	}
	master := cal.Master(uid)
	if master == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, uid)
	}
	set, err := e.FromComponent(master)
	if err != nil {
		return nil, err
	}
	end := e.span(master, set)

	overridden := map[int64]bool{}
	var out []Occurrence
	for _, oc := range cal.Overrides(uid) {
		res := e.override(oc, set)
		occ, err := res.Get()
		if err != nil {
			e.config.Logger.Warn("skipping override", "uid", uid, "error", err)
			continue
		}
		overridden[occ.RecurrenceID.UnixNano()] = true
		if w.contains(occ.Start) {
			out = append(out, occ)
		}
	}

	it, err := e.Expand(set, &w)
	if err != nil {
		return nil, err
	}
	for t := range it.All() {
		if overridden[t.UnixNano()] {
			continue
		}
		if e.config.MaxOccurrences > 0 && len(out) >= e.config.MaxOccurrences {
			return nil, fmt.Errorf("recurrence set exceeds %d occurrences", e.config.MaxOccurrences)
		}
		out = append(out, Occurrence{Start: t, End: end(t), RecurrenceID: t, Component: master})
	}
	slices.SortStableFunc(out, func(a, b Occurrence) int { return a.Start.Compare(b.Start) })
	return out, nil
}

// Instance resolves the single instance of uid generated at recurrenceID,
// preferring an override when one exists.
func (e *Engine) Instance(cal *ical.Calendar, uid string, recurrenceID time.Time) mo.Result[Occurrence] {
	master := cal.Master(uid)
	if master == nil {
		return mo.Err[Occurrence](fmt.Errorf("%w: %q", ErrNotFound, uid))
	}
	set, err := e.FromComponent(master)
	if err != nil {
		return mo.Err[Occurrence](err)
	}
	for _, oc := range cal.Overrides(uid) {
		res := e.override(oc, set)
		if occ, err := res.Get(); err == nil && occ.RecurrenceID.Equal(recurrenceID) {
			return res
		}
	}
	it, err := e.Expand(set, &Window{Start: recurrenceID, End: recurrenceID.Add(time.Second)})
	if err != nil {
		return mo.Err[Occurrence](err)
	}
	t, ok := it.Next()
	if !ok || !t.Equal(recurrenceID) {
		return mo.Err[Occurrence](fmt.Errorf("%w: %s", ErrNoInstance, recurrenceID))
	}
	return mo.Ok(Occurrence{Start: t, End: e.span(master, set)(t), RecurrenceID: t, Component: master})
}

// override resolves one RECURRENCE-ID component against the master set.
// An override without DTSTART keeps the generated start.
func (e *Engine) override(oc *ical.Component, master Set) mo.Result[Occurrence] {
	v, ok := oc.GetProperty("RECURRENCE-ID").Get()
	if !ok {
		return mo.Err[Occurrence](errors.New("component has no RECURRENCE-ID"))
	}
	rid, _, ok := instant(v, master.Start.Location())
	if !ok {
		return mo.Err[Occurrence](fmt.Errorf("RECURRENCE-ID has unexpected type %s", v.Type()))
	}
	set := Set{Start: rid, AllDay: master.AllDay}
	if sv, ok := oc.GetProperty("DTSTART").Get(); ok {
		if start, date, ok := instant(sv, e.config.FloatingLocation); ok {
			set.Start, set.AllDay = start, date
		}
	}
	return mo.Ok(Occurrence{
		Start:        set.Start,
		End:          e.span(oc, set)(set.Start),
		RecurrenceID: rid,
		Override:     true,
		Component:    oc,
	})
}
