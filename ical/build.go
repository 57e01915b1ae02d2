package ical

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cyp0633/libical/value"
)

// NewCalendar returns an empty VERSION 2.0 calendar. It does not validate
// until a component is added.
func NewCalendar(prodID string) *Calendar {
	cal := &Calendar{Component: NewComponent(CompCalendar)}
	cal.Set("PRODID", value.Text(prodID))
	cal.Set("VERSION", value.Text("2.0"))
	return cal
}

// Add appends a top-level component.
func (cal *Calendar) Add(c *Component) {
	cal.Children = append(cal.Children, c)
}

// NewEvent returns a VEVENT with a random UID and DTSTAMP set to now.
func NewEvent(start value.Value) *Component {
	c := newEntity(CompEvent)
	c.Set("DTSTART", start)
	return c
}

// NewTodo returns a VTODO with a random UID and DTSTAMP set to now.
func NewTodo() *Component {
	return newEntity(CompToDo)
}

// NewJournal returns a VJOURNAL with a random UID and DTSTAMP set to now.
func NewJournal() *Component {
	return newEntity(CompJournal)
}

func newEntity(name string) *Component {
	c := NewComponent(name)
	c.Set("UID", value.Text(uuid.New().String()))
	c.Set("DTSTAMP", value.DateTime{
		Time: time.Now().UTC().Truncate(time.Second),
		Form: value.UTC,
	})
	return c
}

// Validate checks a constructed calendar against the schema table, the
// same checks the decoder runs. It returns every violation.
func Validate(cal *Calendar) error {
	var errs ErrorList
	walk(cal.Component, nil, CompCalendar, &errs)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func walk(c, parent *Component, path string, errs *ErrorList) {
	*errs = append(*errs, validate(c, parent, path)...)
	if !KnownComponent(c.Name) {
		return
	}
	seen := map[string]int{}
	for _, child := range c.Children {
		seen[child.Name]++
		walk(child, c, fmt.Sprintf("%s/%s[%d]", path, child.Name, seen[child.Name]), errs)
	}
}
