package ical

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cyp0633/libical/value"
)

// rule is a component-specific check run after the generic schema checks.
type rule func(v *validation)

// validation collects the schema errors of one component.
type validation struct {
	comp   *Component
	parent *Component // nil for the root
	path   string
	errs   []error
}

func (v *validation) fail(prop string, c Constraint, line int, format string, args ...any) {
	if line == 0 {
		line = v.comp.Line
	}
	v.errs = append(v.errs, &SchemaError{
		Path:       v.path,
		Component:  v.comp.Name,
		Property:   prop,
		Constraint: c,
		Line:       line,
		Detail:     fmt.Sprintf(format, args...),
	})
}

func (v *validation) has(name string) bool {
	return v.comp.Prop(name) != nil
}

// validate checks comp against its schema. Components without a schema
// are opaque and always pass.
func validate(comp, parent *Component, path string) []error {
	s, ok := schemas[comp.Name]
	if !ok {
		return nil
	}
	v := &validation{comp: comp, parent: parent, path: path}

	for _, name := range s.required {
		if !v.has(name) {
			v.fail(name, ConstraintRequired, 0, "missing required property")
		}
	}
	seen := make(map[string]bool, len(comp.Properties))
	for _, p := range comp.Properties {
		if seen[p.Name] && s.single(p.Name) {
			v.fail(p.Name, ConstraintCardinality, p.Line, "property may appear at most once")
		}
		seen[p.Name] = true
	}
	for _, pair := range s.exclusive {
		if seen[pair[0]] && seen[pair[1]] {
			v.fail(pair[1], ConstraintExclusive, v.comp.Prop(pair[1]).Line, "%s and %s must not both appear", pair[0], pair[1])
		}
	}
	for _, pair := range s.together {
		if seen[pair[0]] != seen[pair[1]] {
			v.fail(pair[0], ConstraintTogether, 0, "%s and %s must appear together", pair[0], pair[1])
		}
	}
	for _, pair := range s.requires {
		if seen[pair[0]] && !seen[pair[1]] {
			v.fail(pair[0], ConstraintDependency, v.comp.Prop(pair[0]).Line, "%s requires %s", pair[0], pair[1])
		}
	}

	count := 0
	for _, child := range comp.Children {
		switch {
		case slices.Contains(s.children, child.Name):
			count++
		case KnownComponent(child.Name):
			v.fail(child.Name, ConstraintIllegalChild, child.Line, "%s cannot contain %s", comp.Name, child.Name)
		default:
			count++
		}
	}
	if count < s.minChildren {
		v.fail("", ConstraintMissingChild, 0, "must contain at least %d of %s", s.minChildren, strings.Join(s.children, ", "))
	}

	for _, r := range s.rules {
		r(v)
	}
	return v.errs
}

func checkVersion(v *validation) {
	p := v.comp.Prop("VERSION")
	if p == nil {
		return
	}
	ver := v.comp.Text("VERSION")
	if _, hi, ok := strings.Cut(ver, ";"); ok {
		ver = hi
	}
	if ver != "2.0" {
		v.fail("VERSION", ConstraintValue, p.Line, "unsupported version %q", v.comp.Text("VERSION"))
	}
}

func checkCalscale(v *validation) {
	p := v.comp.Prop("CALSCALE")
	if p == nil {
		return
	}
	if s := v.comp.Text("CALSCALE"); !strings.EqualFold(s, "GREGORIAN") {
		v.fail("CALSCALE", ConstraintValue, p.Line, "unsupported calendar scale %q", s)
	}
}

// checkEventStart requires DTSTART unless the enclosing calendar carries a
// METHOD, in which case the event is a scheduling message.
func checkEventStart(v *validation) {
	if v.has("DTSTART") {
		return
	}
	if v.parent != nil && v.parent.Prop("METHOD") != nil {
		return
	}
	v.fail("DTSTART", ConstraintRequired, 0, "missing required property outside a scheduling message")
}

func checkUTC(v *validation) {
	for _, p := range v.comp.Properties {
		if !slices.Contains(utcOnly, p.Name) {
			continue
		}
		if dt, ok := p.Value.(value.DateTime); ok && dt.Form != value.UTC {
			v.fail(p.Name, ConstraintValue, p.Line, "must be a UTC date-time")
		}
	}
}

func checkUTCProps(names ...string) rule {
	return func(v *validation) {
		for _, name := range names {
			for _, p := range v.comp.Props(name) {
				if dt, ok := p.Value.(value.DateTime); ok && dt.Form != value.UTC {
					v.fail(name, ConstraintValue, p.Line, "must be a UTC date-time")
				}
			}
		}
	}
}

func checkFloatingStart(v *validation) {
	p := v.comp.Prop("DTSTART")
	if p == nil {
		return
	}
	if dt, ok := p.Value.(value.DateTime); ok && dt.Form != value.Floating {
		v.fail("DTSTART", ConstraintValue, p.Line, "must be a local time without zone")
	}
}

// sameKind reports whether a and b are both DATE values or both DATE-TIME
// values with the same floating-ness.
func sameKind(a, b value.Value) bool {
	switch a := a.(type) {
	case value.Date:
		_, ok := b.(value.Date)
		return ok
	case value.DateTime:
		bt, ok := b.(value.DateTime)
		if !ok {
			return false
		}
		return (a.Form == value.Floating) == (bt.Form == value.Floating)
	}
	return false
}

func checkRecurrenceID(v *validation) {
	rid := v.comp.Prop("RECURRENCE-ID")
	start := v.comp.Prop("DTSTART")
	if rid == nil || start == nil {
		return
	}
	if !sameKind(rid.Value, start.Value) {
		v.fail("RECURRENCE-ID", ConstraintTypeMismatch, rid.Line, "value type must match DTSTART")
	}
}

// checkEnd verifies that the end property matches DTSTART's value type and
// does not precede it.
func checkEnd(name string) rule {
	return func(v *validation) {
		end := v.comp.Prop(name)
		start := v.comp.Prop("DTSTART")
		if end == nil || start == nil {
			return
		}
		if !sameKind(end.Value, start.Value) {
			v.fail(name, ConstraintTypeMismatch, end.Line, "value type must match DTSTART")
			return
		}
		if before(end.Value, start.Value) {
			v.fail(name, ConstraintOrder, end.Line, "%s is before DTSTART", name)
		}
	}
}

func before(a, b value.Value) bool {
	switch a := a.(type) {
	case value.Date:
		return a.Before(b.(value.Date))
	case value.DateTime:
		return a.Time.Before(b.(value.DateTime).Time)
	}
	return false
}

func checkPercent(v *validation) {
	p := v.comp.Prop("PERCENT-COMPLETE")
	if p == nil {
		return
	}
	if n, ok := p.Value.(value.Integer); ok && (n < 0 || n > 100) {
		v.fail("PERCENT-COMPLETE", ConstraintValue, p.Line, "%d is outside 0..100", n)
	}
}

func checkAlarmAction(v *validation) {
	p := v.comp.Prop("ACTION")
	if p == nil {
		return
	}
	switch strings.ToUpper(v.comp.Text("ACTION")) {
	case "AUDIO":
		if attach := v.comp.Props("ATTACH"); len(attach) > 1 {
			v.fail("ATTACH", ConstraintCardinality, attach[1].Line, "AUDIO alarm allows one ATTACH")
		}
	case "DISPLAY":
		if !v.has("DESCRIPTION") {
			v.fail("DESCRIPTION", ConstraintRequired, 0, "DISPLAY alarm needs DESCRIPTION")
		}
	case "EMAIL":
		for _, name := range []string{"DESCRIPTION", "SUMMARY", "ATTENDEE"} {
			if !v.has(name) {
				v.fail(name, ConstraintRequired, 0, "EMAIL alarm needs %s", name)
			}
		}
	}
}
