// Package query evaluates CalDAV calendar-query filters (RFC 4791 section
// 9.7) against parsed calendars.
package query

import "time"

// TextMatch describes a <text-match> constraint.
type TextMatch struct {
	Collation string // "i;ascii-casemap", "i;unicode-casemap" or "i;octet"
	MatchType string // "contains", "equals", "starts-with" or "ends-with"
	Negate    bool   // true if negate-condition="yes"
	Value     string // text to match
}

// ParamFilter describes a <param-filter> inside a prop-filter.
type ParamFilter struct {
	Name         string     // e.g. "LANGUAGE", "PARTSTAT"
	IsNotDefined bool       // <is-not-defined/>
	TextMatch    *TextMatch // optional
}

// PropFilter describes a <prop-filter> inside a comp-filter.
type PropFilter struct {
	Name         string        // e.g. "SUMMARY", "UID"
	IsNotDefined bool          // <is-not-defined/>
	TextMatch    *TextMatch    // optional
	ParamFilters []ParamFilter // zero or more <param-filter>
	Test         string        // "allof" (default) or "anyof"
}

// TimeRange describes a <time-range>. A nil bound is open.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// Filter is a <comp-filter> node. The root names VCALENDAR.
type Filter struct {
	Component    string       // Name of component (e.g. "VCALENDAR", "VEVENT")
	IsNotDefined bool         // <is-not-defined/>
	TimeRange    *TimeRange   // optional <time-range>
	PropFilters  []PropFilter // zero or more <prop-filter>
	Children     []Filter     // nested <comp-filter>
	Test         string       // "allof" (default) or "anyof"
}
