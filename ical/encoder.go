package ical

import (
	"bytes"
	"io"

	"github.com/cyp0633/libical/contentline"
	"github.com/cyp0633/libical/value"
)

// Encoder writes calendars as folded CRLF content lines.
type Encoder struct {
	w *contentline.Writer
}

// NewEncoder returns an Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: contentline.NewWriter(w)}
}

// Encode writes cal. Typed values are written in canonical form; opaque
// properties keep their original text.
func (e *Encoder) Encode(cal *Calendar) error {
	return e.component(cal.Component)
}

func (e *Encoder) component(c *Component) error {
	if err := e.w.WriteProperty(contentline.Property{Name: "BEGIN", RawValue: c.Name}); err != nil {
		return err
	}
	for _, p := range c.Properties {
		line := p.Property
		if !p.verbatim && p.Value != nil {
			line.RawValue = value.Format(p.Value)
		}
		if err := e.w.WriteProperty(line); err != nil {
			return err
		}
	}
	for _, child := range c.Children {
		if err := e.component(child); err != nil {
			return err
		}
	}
	return e.w.WriteProperty(contentline.Property{Name: "END", RawValue: c.Name})
}

// Encode writes cal to w.
func Encode(w io.Writer, cal *Calendar) error {
	return NewEncoder(w).Encode(cal)
}

// Serialize returns the encoded form of cal.
func Serialize(cal *Calendar) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
