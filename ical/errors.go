package ical

import (
	"fmt"
	"strings"
)

// Constraint names the schema rule a SchemaError violates.
type Constraint string

const (
	ConstraintRequired     Constraint = "required"
	ConstraintCardinality  Constraint = "at-most-one"
	ConstraintExclusive    Constraint = "mutually-exclusive"
	ConstraintTogether     Constraint = "required-together"
	ConstraintDependency   Constraint = "requires"
	ConstraintIllegalChild Constraint = "illegal-child"
	ConstraintMissingChild Constraint = "missing-child"
	ConstraintValue        Constraint = "value"
	ConstraintTypeMismatch Constraint = "type-mismatch"
	ConstraintOrder        Constraint = "order"
	// ConstraintObject marks a calendar that is not one calendar object
	// resource.
	ConstraintObject Constraint = "calendar-object"
)

// SchemaError reports a component that violates its schema.
type SchemaError struct {
	Path       string // e.g. VCALENDAR/VEVENT[2]
	Component  string
	Property   string // property or child component name, may be empty
	Constraint Constraint
	Line       int
	Detail     string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Path)
	if e.Property != "" {
		b.WriteString(": ")
		b.WriteString(e.Property)
	}
	fmt.Fprintf(&b, ": %s", e.Constraint)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// StructuralError reports unbalanced or mismatched BEGIN/END markers and
// other problems with the shape of the stream.
type StructuralError struct {
	Line   int
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: structure: %s", e.Line, e.Reason)
	}
	return "structure: " + e.Reason
}

// UnknownComponentError reports a non-extension component name that no
// schema describes.
type UnknownComponentError struct {
	Path string
	Name string
	Line int
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("line %d: %s: unknown component %s", e.Line, e.Path, e.Name)
}

// UnknownPropertyError reports a non-extension property that the enclosing
// component's schema does not list.
type UnknownPropertyError struct {
	Path     string
	Property string
	Line     int
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("line %d: %s: unknown property %s", e.Line, e.Path, e.Property)
}

// ErrorList carries the recoverable errors collected when the decoder runs
// with CollectErrors. errors.As and errors.Is see every element.
type ErrorList []error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(l), strings.Join(msgs, "; "))
}

func (l ErrorList) Unwrap() []error { return l }
