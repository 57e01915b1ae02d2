package recurrence

import (
	"iter"
	"time"

	"github.com/cyp0633/libical/internal/metrics"
	"github.com/cyp0633/libical/value"
)

// Iterator yields the instances of a Set in strictly increasing order.
type Iterator struct {
	rule     stream
	head     time.Time
	headOK   bool
	ruleDone bool

	rdates  []time.Time
	ri      int
	exrules []*exclusion
	exdates map[int64]bool
	exdays  map[value.Date]bool
	loc     *time.Location
	window  *Window

	last    time.Time
	started bool
	done    bool
	metrics *metrics.Collector
}

// exclusion walks an EXRULE in lockstep with the main stream.
type exclusion struct {
	s      stream
	head   time.Time
	ok     bool
	primed bool
}

func (x *exclusion) excludes(t time.Time) bool {
	if !x.primed {
		x.head, x.ok = x.s.next()
		x.primed = true
	}
	for x.ok && x.head.Before(t) {
		x.head, x.ok = x.s.next()
	}
	return x.ok && x.head.Equal(t)
}

// Next returns the next instance, or false once the set or the window is
// exhausted.
func (it *Iterator) Next() (time.Time, bool) {
	for !it.done {
		t, ok := it.pull()
		if !ok {
			it.done = true
			break
		}
		if it.started && !t.After(it.last) {
			continue
		}
		it.started = true
		it.last = t
		if it.excluded(t) {
			continue
		}
		if it.window != nil && !it.window.End.IsZero() && !t.Before(it.window.End) {
			it.done = true
			break
		}
		if !it.window.contains(t) {
			continue
		}
		it.metrics.Occurrence()
		return t, true
	}
	return time.Time{}, false
}

// All returns the remaining instances as a sequence.
func (it *Iterator) All() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for t, ok := it.Next(); ok; t, ok = it.Next() {
			if !yield(t) {
				return
			}
		}
	}
}

// Take returns up to n further instances.
func (it *Iterator) Take(n int) []time.Time {
	var out []time.Time
	for len(out) < n {
		t, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, t)
	}
	return out
}

// pull merges the rule stream with the sorted RDATEs.
func (it *Iterator) pull() (time.Time, bool) {
	if !it.headOK && !it.ruleDone {
		it.head, it.headOK = it.rule.next()
		it.ruleDone = !it.headOK
	}
	hasRDate := it.ri < len(it.rdates)
	switch {
	case it.headOK && (!hasRDate || !it.rdates[it.ri].Before(it.head)):
		it.headOK = false
		return it.head, true
	case hasRDate:
		it.ri++
		return it.rdates[it.ri-1], true
	}
	return time.Time{}, false
}

func (it *Iterator) excluded(t time.Time) bool {
	if it.exdates[t.UnixNano()] {
		return true
	}
	if len(it.exdays) > 0 && it.exdays[value.DateOf(t.In(it.loc))] {
		return true
	}
	for _, x := range it.exrules {
		if x.excludes(t) {
			return true
		}
	}
	return false
}
