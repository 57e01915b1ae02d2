// Package value implements the RFC 5545 value types: parsing raw property
// text into typed values, validating them, and formatting them back.
//
// Every value type implements the closed Value interface. Consumers switch
// on the concrete type.
package value

import (
	"strings"
	"time"
)

// Type names an iCalendar value type as it appears in a VALUE parameter.
type Type string

const (
	TypeBinary     Type = "BINARY"
	TypeBoolean    Type = "BOOLEAN"
	TypeCalAddress Type = "CAL-ADDRESS"
	TypeDate       Type = "DATE"
	TypeDateTime   Type = "DATE-TIME"
	TypeDuration   Type = "DURATION"
	TypeFloat      Type = "FLOAT"
	TypeInteger    Type = "INTEGER"
	TypePeriod     Type = "PERIOD"
	TypeRecur      Type = "RECUR"
	TypeText       Type = "TEXT"
	TypeTime       Type = "TIME"
	TypeURI        Type = "URI"
	TypeUTCOffset  Type = "UTC-OFFSET"
)

var knownTypes = map[Type]bool{
	TypeBinary: true, TypeBoolean: true, TypeCalAddress: true, TypeDate: true,
	TypeDateTime: true, TypeDuration: true, TypeFloat: true, TypeInteger: true,
	TypePeriod: true, TypeRecur: true, TypeText: true, TypeTime: true,
	TypeURI: true, TypeUTCOffset: true,
}

// ParseType maps a VALUE parameter to a Type. The second result is false for
// unregistered names.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(s))
	return t, knownTypes[t]
}

// Value is a typed property value.
type Value interface {
	Type() Type
	isValue()
}

type (
	// Boolean is a BOOLEAN value.
	Boolean bool
	// Integer is an INTEGER value, limited to the signed 32-bit range.
	Integer int64
	// Float is a FLOAT value.
	Float float64
	// Text is an unescaped TEXT value.
	Text string
	// Binary holds decoded BINARY content.
	Binary []byte
	// CalAddress is a CAL-ADDRESS URI such as mailto:jane@example.com.
	CalAddress string
	// URI is a URI value.
	URI string
)

func (Boolean) Type() Type    { return TypeBoolean }
func (Integer) Type() Type    { return TypeInteger }
func (Float) Type() Type      { return TypeFloat }
func (Text) Type() Type       { return TypeText }
func (Binary) Type() Type     { return TypeBinary }
func (CalAddress) Type() Type { return TypeCalAddress }
func (URI) Type() Type        { return TypeURI }
func (Date) Type() Type       { return TypeDate }
func (DateTime) Type() Type   { return TypeDateTime }
func (Time) Type() Type       { return TypeTime }
func (Duration) Type() Type   { return TypeDuration }
func (Period) Type() Type     { return TypePeriod }
func (UTCOffset) Type() Type  { return TypeUTCOffset }
func (*Recur) Type() Type     { return TypeRecur }
func (Geo) Type() Type        { return TypeFloat }

func (Boolean) isValue()    {}
func (Integer) isValue()    {}
func (Float) isValue()      {}
func (Text) isValue()       {}
func (Binary) isValue()     {}
func (CalAddress) isValue() {}
func (URI) isValue()        {}
func (Date) isValue()       {}
func (DateTime) isValue()   {}
func (Time) isValue()       {}
func (Duration) isValue()   {}
func (Period) isValue()     {}
func (UTCOffset) isValue()  {}
func (*Recur) isValue()     {}
func (Geo) isValue()        {}
func (List) isValue()       {}

// List is a comma-separated multi-value. All items share Elem.
type List struct {
	Elem  Type
	Items []Value
}

// Type reports the element type.
func (l List) Type() Type { return l.Elem }

// Geo is the structured GEO value: latitude and longitude in degrees.
type Geo struct {
	Latitude  float64
	Longitude float64
}

// TimeForm says how a DATE-TIME or TIME is anchored to the time line.
type TimeForm int

const (
	// Floating values carry a wall clock and no zone.
	Floating TimeForm = iota
	// UTC values end in Z.
	UTC
	// Zoned values carry a TZID parameter resolved to a location.
	Zoned
)

func (f TimeForm) String() string {
	switch f {
	case Floating:
		return "floating"
	case UTC:
		return "utc"
	case Zoned:
		return "zoned"
	default:
		return "unknown"
	}
}

// Date is a calendar date with no time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// DateTime is a DATE-TIME value. For Floating values Time holds the wall
// clock in time.UTC; for Zoned values Time is in the resolved location.
type DateTime struct {
	Time time.Time
	Form TimeForm
	TZID string
}

// In places a floating value in loc. UTC and zoned values are returned
// unchanged as instants.
func (dt DateTime) In(loc *time.Location) time.Time {
	if dt.Form != Floating {
		return dt.Time
	}
	t := dt.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// Time is a TIME value.
type Time struct {
	Hour, Minute, Second int
	Form                 TimeForm
	TZID                 string
}
