package value

import (
	"errors"
	"fmt"
)

// ErrNoResolver is the cause of a TimezoneResolutionError raised when a
// TZID is present but no resolver was supplied.
var ErrNoResolver = errors.New("no timezone resolver configured")

// ValueTypeError reports raw text that does not match its value type.
// Property and Line are filled in by the caller when known.
type ValueTypeError struct {
	Expected Type
	Raw      string
	Reason   string
	Property string
	Line     int
}

func (e *ValueTypeError) Error() string {
	msg := fmt.Sprintf("invalid %s value %q", e.Expected, e.Raw)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return withContext(msg, e.Property, e.Line)
}

// TimezoneResolutionError reports a TZID the resolver could not map to a
// location.
type TimezoneResolutionError struct {
	TZID     string
	Err      error
	Property string
	Line     int
}

func (e *TimezoneResolutionError) Error() string {
	msg := fmt.Sprintf("cannot resolve TZID %q", e.TZID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return withContext(msg, e.Property, e.Line)
}

func (e *TimezoneResolutionError) Unwrap() error { return e.Err }

// RecurrenceRuleError reports a RECUR value that is malformed or combines
// rule parts in a way RFC 5545 forbids.
type RecurrenceRuleError struct {
	Part     string
	Value    string
	Reason   string
	Property string
	Line     int
}

func (e *RecurrenceRuleError) Error() string {
	msg := "recurrence rule"
	if e.Part != "" {
		msg += " " + e.Part
		if e.Value != "" {
			msg += "=" + e.Value
		}
	}
	msg += ": " + e.Reason
	return withContext(msg, e.Property, e.Line)
}

func withContext(msg, property string, line int) string {
	switch {
	case property != "" && line > 0:
		return fmt.Sprintf("line %d: %s: %s", line, property, msg)
	case property != "":
		return property + ": " + msg
	case line > 0:
		return fmt.Sprintf("line %d: %s", line, msg)
	}
	return msg
}

func typeErr(t Type, raw, format string, args ...any) *ValueTypeError {
	return &ValueTypeError{Expected: t, Raw: raw, Reason: fmt.Sprintf(format, args...)}
}

func ruleErr(part, val, format string, args ...any) *RecurrenceRuleError {
	return &RecurrenceRuleError{Part: part, Value: val, Reason: fmt.Sprintf(format, args...)}
}
