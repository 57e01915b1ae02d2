package ical

import (
	"slices"

	"github.com/cyp0633/libical/value"
)

// propertyDef describes how a registered property's value is typed.
type propertyDef struct {
	Default value.Type
	Alt     []value.Type // other types a VALUE parameter may select
	Multi   bool         // comma-separated list of values
	Geo     bool         // the structured latitude;longitude value
	Status  bool         // the structured code;description[;data] value
}

func (d propertyDef) allows(t value.Type) bool {
	return t == d.Default || slices.Contains(d.Alt, t)
}

func def(t value.Type, alt ...value.Type) propertyDef {
	return propertyDef{Default: t, Alt: alt}
}

func multi(t value.Type, alt ...value.Type) propertyDef {
	return propertyDef{Default: t, Alt: alt, Multi: true}
}

// properties is the registry of RFC 5545 and RFC 7986 properties.
var properties = map[string]propertyDef{
	// calendar
	"CALSCALE": def(value.TypeText),
	"METHOD":   def(value.TypeText),
	"PRODID":   def(value.TypeText),
	"VERSION":  def(value.TypeText),

	// descriptive
	"ATTACH":           def(value.TypeURI, value.TypeBinary),
	"CATEGORIES":       multi(value.TypeText),
	"CLASS":            def(value.TypeText),
	"COMMENT":          def(value.TypeText),
	"DESCRIPTION":      def(value.TypeText),
	"GEO":              {Default: value.TypeFloat, Geo: true},
	"LOCATION":         def(value.TypeText),
	"PERCENT-COMPLETE": def(value.TypeInteger),
	"PRIORITY":         def(value.TypeInteger),
	"RESOURCES":        multi(value.TypeText),
	"STATUS":           def(value.TypeText),
	"SUMMARY":          def(value.TypeText),

	// date and time
	"COMPLETED": def(value.TypeDateTime),
	"DTEND":     def(value.TypeDateTime, value.TypeDate),
	"DUE":       def(value.TypeDateTime, value.TypeDate),
	"DTSTART":   def(value.TypeDateTime, value.TypeDate),
	"DURATION":  def(value.TypeDuration),
	"FREEBUSY":  multi(value.TypePeriod),
	"TRANSP":    def(value.TypeText),

	// time zone
	"TZID":         def(value.TypeText),
	"TZNAME":       def(value.TypeText),
	"TZOFFSETFROM": def(value.TypeUTCOffset),
	"TZOFFSETTO":   def(value.TypeUTCOffset),
	"TZURL":        def(value.TypeURI),

	// relationship
	"ATTENDEE":      def(value.TypeCalAddress),
	"CONTACT":       def(value.TypeText),
	"ORGANIZER":     def(value.TypeCalAddress),
	"RECURRENCE-ID": def(value.TypeDateTime, value.TypeDate),
	"RELATED-TO":    def(value.TypeText),
	"URL":           def(value.TypeURI),
	"UID":           def(value.TypeText),

	// recurrence
	"EXDATE": multi(value.TypeDateTime, value.TypeDate),
	"RDATE":  multi(value.TypeDateTime, value.TypeDate, value.TypePeriod),
	"RRULE":  def(value.TypeRecur),
	"EXRULE": def(value.TypeRecur),

	// alarm
	"ACTION":       def(value.TypeText),
	"REPEAT":       def(value.TypeInteger),
	"TRIGGER":      def(value.TypeDuration, value.TypeDateTime),
	"ACKNOWLEDGED": def(value.TypeDateTime),

	// change management
	"CREATED":       def(value.TypeDateTime),
	"DTSTAMP":       def(value.TypeDateTime),
	"LAST-MODIFIED": def(value.TypeDateTime),
	"SEQUENCE":      def(value.TypeInteger),

	"REQUEST-STATUS": {Default: value.TypeText, Status: true},

	// RFC 7986
	"NAME":             def(value.TypeText),
	"REFRESH-INTERVAL": def(value.TypeDuration),
	"SOURCE":           def(value.TypeURI),
	"COLOR":            def(value.TypeText),
	"IMAGE":            def(value.TypeURI, value.TypeBinary),
	"CONFERENCE":       def(value.TypeURI),
}

// utcOnly lists properties whose DATE-TIME must be in UTC.
var utcOnly = []string{"DTSTAMP", "CREATED", "LAST-MODIFIED", "COMPLETED", "ACKNOWLEDGED"}

// componentProperties narrows the registry inside specific components.
var componentProperties = map[string]map[string]propertyDef{
	"STANDARD":  {"DTSTART": def(value.TypeDateTime)},
	"DAYLIGHT":  {"DTSTART": def(value.TypeDateTime)},
	"VFREEBUSY": {"DTSTART": def(value.TypeDateTime), "DTEND": def(value.TypeDateTime)},
}

// lookupProperty resolves a property definition in the context of the
// enclosing component.
func lookupProperty(component, name string) (propertyDef, bool) {
	if d, ok := componentProperties[component][name]; ok {
		return d, true
	}
	d, ok := properties[name]
	return d, ok
}

// DefaultType reports the default value type of a registered property.
func DefaultType(name string) (value.Type, bool) {
	d, ok := properties[name]
	return d.Default, ok
}
