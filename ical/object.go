package ical

import (
	"fmt"
	"slices"
)

// ObjectOptions tunes ValidateObject.
type ObjectOptions struct {
	// TimezonesByReference accepts TZIDs without a VTIMEZONE, as RFC 7809
	// allows once client and server agreed on it. The decoder's resolver
	// then supplies the zone.
	TimezonesByReference bool
}

var objectKinds = []string{CompEvent, CompToDo, CompJournal}

// ValidateObject checks that cal is one calendar object resource in the
// sense of RFC 4791 section 4.1: every component other than VTIMEZONE has
// the same type and UID, at most one of them lacks RECURRENCE-ID, no two
// share a RECURRENCE-ID, METHOD is absent, and every TZID in use has its
// VTIMEZONE. All violations are returned as an ErrorList.
func ValidateObject(cal *Calendar, opts ObjectOptions) error {
	var errs ErrorList
	fail := func(path, comp, prop string, c Constraint, line int, format string, args ...any) {
		errs = append(errs, &SchemaError{
			Path:       path,
			Component:  comp,
			Property:   prop,
			Constraint: c,
			Line:       line,
			Detail:     fmt.Sprintf(format, args...),
		})
	}

	if p := cal.Prop("METHOD"); p != nil {
		fail(cal.Name, cal.Name, "METHOD", ConstraintObject, p.Line, "not allowed in a calendar object resource")
	}

	var (
		kind, uid string
		masters   int
		seen      = map[string]bool{}
		count     = map[string]int{}
	)
	for _, c := range cal.Children {
		count[c.Name]++
		if c.Name == CompTimezone {
			continue
		}
		path := fmt.Sprintf("%s/%s[%d]", cal.Name, c.Name, count[c.Name])
		if !slices.Contains(objectKinds, c.Name) {
			fail(path, c.Name, "", ConstraintObject, c.Line, "%s cannot be stored as a calendar object", c.Name)
			continue
		}
		if kind == "" {
			kind, uid = c.Name, c.Text("UID")
		}
		switch {
		case c.Name != kind:
			fail(path, c.Name, "", ConstraintObject, c.Line, "mixes %s with %s", c.Name, kind)
			continue
		case c.Text("UID") != uid:
			fail(path, c.Name, "UID", ConstraintObject, c.Line, "UID %q differs from %q", c.Text("UID"), uid)
			continue
		}
		rid := c.Prop("RECURRENCE-ID")
		if rid == nil {
			masters++
			if masters > 1 {
				fail(path, c.Name, "RECURRENCE-ID", ConstraintObject, c.Line, "more than one master component")
			}
			continue
		}
		if seen[rid.RawValue] {
			fail(path, c.Name, "RECURRENCE-ID", ConstraintObject, rid.Line, "duplicate override %s", rid.RawValue)
		}
		seen[rid.RawValue] = true
	}
	if kind == "" {
		fail(cal.Name, cal.Name, "", ConstraintObject, cal.Line, "no VEVENT, VTODO or VJOURNAL")
	}

	if !opts.TimezonesByReference {
		defined := map[string]bool{}
		for _, vtz := range cal.Timezones() {
			defined[vtz.Text("TZID")] = true
		}
		for _, tzid := range TZIDs(cal) {
			if !defined[tzid] {
				fail(cal.Name, cal.Name, CompTimezone, ConstraintMissingChild, cal.Line, "no VTIMEZONE for TZID %q", tzid)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// TZIDs returns the sorted TZID parameter values used by the components of
// cal, VTIMEZONE definitions excluded.
func TZIDs(cal *Calendar) []string {
	set := map[string]bool{}
	var walk func(c *Component)
	walk = func(c *Component) {
		for _, p := range c.Properties {
			if tzid := p.Params.Value("TZID"); tzid != "" {
				set[tzid] = true
			}
		}
		for _, child := range c.Children {
			walk(child)
		}
	}
	for _, c := range cal.Children {
		if c.Name != CompTimezone {
			walk(c)
		}
	}
	out := make([]string, 0, len(set))
	for tzid := range set {
		out = append(out, tzid)
	}
	slices.Sort(out)
	return out
}
