package recurrence

import (
	"errors"
	"time"

	"github.com/cyp0633/libical/ical"
	"github.com/cyp0633/libical/value"
)

var (
	// ErrNoStart is returned when a component to expand has no DTSTART.
	ErrNoStart = errors.New("recurrence: component has no DTSTART")
	// ErrNoRule is returned by ExpandComponent for a component without RRULE.
	ErrNoRule = errors.New("recurrence: component has no RRULE")
	// ErrMultipleRules is returned for a component with more than one RRULE.
	ErrMultipleRules = errors.New("recurrence: component has more than one RRULE")
	// ErrNotFound is returned when no master component carries the UID.
	ErrNotFound = errors.New("recurrence: no component with that UID")
	// ErrNoInstance is returned when a RECURRENCE-ID names no instance.
	ErrNoInstance = errors.New("recurrence: no instance at that RECURRENCE-ID")
	// ErrUnboundedWindow is returned when materializing needs a window end.
	ErrUnboundedWindow = errors.New("recurrence: window has no end")
)

// Set is a recurrence set: the start, an optional rule, and explicit
// additions and exceptions. All instants are in Start's location.
type Set struct {
	Start    time.Time
	AllDay   bool // Start came from a DATE value
	Floating bool // Start came from a DATE-TIME without zone

	Rule    *value.Recur
	ExRules []*value.Recur
	RDates  []time.Time
	ExDates []time.Time
	// ExDays excludes every instance on these dates. It holds DATE
	// exceptions of a set whose start is a DATE-TIME.
	ExDays []value.Date
}

// Window is a half-open range [Start, End). A zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w *Window) contains(t time.Time) bool {
	if w == nil {
		return true
	}
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	return w.End.IsZero() || t.Before(w.End)
}

// Occurrence is one instance of a recurring component.
type Occurrence struct {
	Start        time.Time
	End          time.Time
	RecurrenceID time.Time       // the generated start this instance stands for
	Override     bool            // Component is a RECURRENCE-ID override
	Component    *ical.Component // master or override
}
