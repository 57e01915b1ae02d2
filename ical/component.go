package ical

import (
	"fmt"

	"github.com/samber/mo"

	"github.com/cyp0633/libical/contentline"
	"github.com/cyp0633/libical/value"
)

// Property is a content line together with its typed value.
type Property struct {
	contentline.Property
	Value value.Value

	// verbatim properties are written back from RawValue; they were not
	// typed by a registry entry
	verbatim bool
}

// NewProperty builds a property from a typed value, adding TZID and VALUE
// parameters where the value needs them.
func NewProperty(name string, v value.Value, params ...contentline.Param) *Property {
	p := &Property{
		Property: contentline.Property{Name: name, Params: contentline.Params(params)},
		Value:    v,
	}
	p.sync()
	return p
}

// Verbatim reports whether the property was kept as opaque text. Such a
// property is written back from RawValue.
func (p *Property) Verbatim() bool { return p.verbatim }

func (p *Property) sync() {
	if p.Value == nil {
		return
	}
	p.RawValue = value.Format(p.Value)
	p.verbatim = false

	elem := p.Value
	if l, ok := elem.(value.List); ok && len(l.Items) > 0 {
		elem = l.Items[0]
	}
	switch v := elem.(type) {
	case value.DateTime:
		if v.Form == value.Zoned {
			p.Params = p.Params.Set("TZID", v.TZID)
		} else {
			p.Params = p.Params.Del("TZID")
		}
	case value.Period:
		if v.Start.Form == value.Zoned {
			p.Params = p.Params.Set("TZID", v.Start.TZID)
		}
	case value.Binary:
		p.Params = p.Params.Set("ENCODING", "BASE64")
	}
	if d, ok := lookupProperty("", p.Name); ok && !d.Geo && !d.Status {
		if t := p.Value.Type(); t != d.Default {
			p.Params = p.Params.Set("VALUE", string(t))
		} else {
			p.Params = p.Params.Del("VALUE")
		}
	}
}

// Component is a BEGIN/END delimited node. Properties and children keep
// their source order.
type Component struct {
	Name       string
	Properties []*Property
	Children   []*Component
	Line       int // line of the BEGIN marker, zero for constructed components
}

// NewComponent returns an empty component.
func NewComponent(name string) *Component {
	return &Component{Name: name}
}

// Props returns every property with the given name.
func (c *Component) Props(name string) []*Property {
	var out []*Property
	for _, p := range c.Properties {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

// Prop returns the first property with the given name, or nil.
func (c *Component) Prop(name string) *Property {
	for _, p := range c.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// GetProperty returns the typed value of the first property named name.
func (c *Component) GetProperty(name string) mo.Option[value.Value] {
	if p := c.Prop(name); p != nil && p.Value != nil {
		return mo.Some(p.Value)
	}
	return mo.None[value.Value]()
}

// GetRequired returns the value of a property the schema guarantees. It
// panics when the property is absent.
func (c *Component) GetRequired(name string) value.Value {
	v, ok := c.GetProperty(name).Get()
	if !ok {
		panic(fmt.Sprintf("ical: %s has no %s property", c.Name, name))
	}
	return v
}

// Get returns the value of the first property named name if it has type T.
func Get[T value.Value](c *Component, name string) mo.Option[T] {
	v, ok := c.GetProperty(name).Get()
	if !ok {
		return mo.None[T]()
	}
	t, ok := v.(T)
	if !ok {
		return mo.None[T]()
	}
	return mo.Some(t)
}

// Text returns the first TEXT value of name, or "".
func (c *Component) Text(name string) string {
	return string(Get[value.Text](c, name).OrEmpty())
}

// Set replaces every property named name with a single one.
func (c *Component) Set(name string, v value.Value, params ...contentline.Param) *Property {
	c.Remove(name)
	return c.Add(name, v, params...)
}

// Add appends a property.
func (c *Component) Add(name string, v value.Value, params ...contentline.Param) *Property {
	p := NewProperty(name, v, params...)
	c.Properties = append(c.Properties, p)
	return p
}

// Remove deletes every property named name.
func (c *Component) Remove(name string) {
	out := c.Properties[:0]
	for _, p := range c.Properties {
		if p.Name != name {
			out = append(out, p)
		}
	}
	c.Properties = out
}

// Components returns the direct children with the given name.
func (c *Component) Components(name string) []*Component {
	var out []*Component
	for _, child := range c.Children {
		if child.Name == name {
			out = append(out, child)
		}
	}
	return out
}

// Calendar is the root VCALENDAR component.
type Calendar struct {
	*Component
}

// Events returns the VEVENT children.
func (cal *Calendar) Events() []*Component { return cal.Components(CompEvent) }

// Todos returns the VTODO children.
func (cal *Calendar) Todos() []*Component { return cal.Components(CompToDo) }

// Journals returns the VJOURNAL children.
func (cal *Calendar) Journals() []*Component { return cal.Components(CompJournal) }

// Timezones returns the VTIMEZONE children.
func (cal *Calendar) Timezones() []*Component { return cal.Components(CompTimezone) }

// FindByUID returns every top-level component with the given UID: the
// master first as it appears in the stream, then any overrides.
func (cal *Calendar) FindByUID(uid string) []*Component {
	var out []*Component
	for _, child := range cal.Children {
		if child.Text("UID") == uid {
			out = append(out, child)
		}
	}
	return out
}

// Master returns the component with the given UID and no RECURRENCE-ID.
func (cal *Calendar) Master(uid string) *Component {
	for _, c := range cal.FindByUID(uid) {
		if c.Prop("RECURRENCE-ID") == nil {
			return c
		}
	}
	return nil
}

// Overrides returns the components with the given UID that carry a
// RECURRENCE-ID.
func (cal *Calendar) Overrides(uid string) []*Component {
	var out []*Component
	for _, c := range cal.FindByUID(uid) {
		if c.Prop("RECURRENCE-ID") != nil {
			out = append(out, c)
		}
	}
	return out
}
