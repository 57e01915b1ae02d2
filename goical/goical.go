// Package goical converts between github.com/emersion/go-ical trees and
// validated calendars.
package goical

import (
	"fmt"
	"io"
	"slices"

	gical "github.com/emersion/go-ical"

	"github.com/cyp0633/libical/contentline"
	"github.com/cyp0633/libical/ical"
	"github.com/cyp0633/libical/recurrence"
	"github.com/cyp0633/libical/value"
)

const productID = "-//libical//goical//EN"

// source replays a go-ical tree as content lines. go-ical keeps properties
// and parameters in maps, so both are emitted in name order; line numbers
// count the emitted lines.
type source struct {
	lines []contentline.Property
	pos   int
}

func (s *source) Next() (contentline.Property, error) {
	if s.pos == len(s.lines) {
		return contentline.Property{}, io.EOF
	}
	s.pos++
	return s.lines[s.pos-1], nil
}

func (s *source) emit(name, raw string, params contentline.Params) {
	s.lines = append(s.lines, contentline.Property{Name: name, Params: params, RawValue: raw, Line: len(s.lines) + 1})
}

func (s *source) component(c *gical.Component) {
	s.emit("BEGIN", c.Name, nil)
	names := make([]string, 0, len(c.Props))
	for name := range c.Props {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, p := range c.Props[name] {
			s.emit(p.Name, p.Value, params(p.Params))
		}
	}
	for _, child := range c.Children {
		s.component(child)
	}
	s.emit("END", c.Name, nil)
}

func params(ps gical.Params) contentline.Params {
	if len(ps) == 0 {
		return nil
	}
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make(contentline.Params, 0, len(names))
	for _, name := range names {
		out = append(out, contentline.Param{Name: name, Values: slices.Clone(ps[name])})
	}
	return out
}

// FromCalendar checks a go-ical calendar and returns it as a validated
// tree. Every property value is parsed exactly as the decoder would parse
// it from text.
func FromCalendar(gc *gical.Calendar, opts ...ical.Option) (*ical.Calendar, error) {
	if gc == nil || gc.Component == nil {
		return nil, fmt.Errorf("empty go-ical calendar")
	}
	src := &source{}
	src.component(gc.Component)
	return ical.NewSourceDecoder(src, opts...).Decode()
}

// ToCalendar converts a calendar into a go-ical tree.
func ToCalendar(cal *ical.Calendar) *gical.Calendar {
	return &gical.Calendar{Component: component(cal.Component)}
}

func component(c *ical.Component) *gical.Component {
	gc := gical.NewComponent(c.Name)
	for _, p := range c.Properties {
		prop := gical.NewProp(p.Name)
		prop.Value = p.RawValue
		if !p.Verbatim() && p.Value != nil {
			prop.Value = value.Format(p.Value)
		}
		for _, param := range p.Params {
			prop.Params[param.Name] = slices.Clone(param.Values)
		}
		gc.Props.Add(prop)
	}
	for _, child := range c.Children {
		gc.Children = append(gc.Children, component(child))
	}
	return gc
}

// RecurrenceSet extracts the recurrence set of a go-ical event, to-do or
// journal entry. The component is validated on the way.
func RecurrenceSet(e *recurrence.Engine, comp *gical.Component, opts ...ical.Option) (recurrence.Set, error) {
	wrapper := gical.NewCalendar()
	wrapper.Props.SetText(gical.PropVersion, "2.0")
	wrapper.Props.SetText(gical.PropProductID, productID)
	wrapper.Children = []*gical.Component{comp}

	cal, err := FromCalendar(wrapper, opts...)
	if err != nil {
		return recurrence.Set{}, fmt.Errorf("failed to convert %s: %w", comp.Name, err)
	}
	return e.FromComponent(cal.Children[0])
}
