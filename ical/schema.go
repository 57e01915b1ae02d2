package ical

import "slices"

// Component names defined by RFC 5545.
const (
	CompCalendar = "VCALENDAR"
	CompEvent    = "VEVENT"
	CompToDo     = "VTODO"
	CompJournal  = "VJOURNAL"
	CompFreeBusy = "VFREEBUSY"
	CompTimezone = "VTIMEZONE"
	CompStandard = "STANDARD"
	CompDaylight = "DAYLIGHT"
	CompAlarm    = "VALARM"
)

// schema is the constraint record of one component type.
type schema struct {
	required    []string
	singleton   []string // at most once; required properties are implicitly singletons
	repeatable  []string
	children    []string
	minChildren int
	exclusive   [][2]string // never both
	together    [][2]string // both or neither
	requires    [][2]string // first needs second
	rules       []rule      // component-specific checks
}

func (s *schema) allows(prop string) bool {
	return slices.Contains(s.required, prop) || slices.Contains(s.singleton, prop) || slices.Contains(s.repeatable, prop)
}

func (s *schema) single(prop string) bool {
	return slices.Contains(s.required, prop) || slices.Contains(s.singleton, prop)
}

var repeatableEntityProps = []string{
	"ATTACH", "ATTENDEE", "CATEGORIES", "COMMENT", "CONTACT", "EXDATE",
	"REQUEST-STATUS", "RELATED-TO", "RESOURCES", "RDATE", "EXRULE",
	"CONFERENCE", "IMAGE",
}

var schemas = map[string]*schema{
	CompCalendar: {
		required:    []string{"PRODID", "VERSION"},
		singleton:   []string{"CALSCALE", "METHOD", "UID", "LAST-MODIFIED", "URL", "REFRESH-INTERVAL", "SOURCE", "COLOR"},
		repeatable:  []string{"NAME", "DESCRIPTION", "CATEGORIES", "IMAGE"},
		children:    []string{CompEvent, CompToDo, CompJournal, CompFreeBusy, CompTimezone},
		minChildren: 1,
		rules:       []rule{checkVersion, checkCalscale},
	},
	CompEvent: {
		required: []string{"DTSTAMP", "UID"},
		singleton: []string{
			"DTSTART", "CLASS", "CREATED", "DESCRIPTION", "GEO", "LAST-MODIFIED",
			"LOCATION", "ORGANIZER", "PRIORITY", "SEQUENCE", "STATUS", "SUMMARY",
			"TRANSP", "URL", "RECURRENCE-ID", "RRULE", "DTEND", "DURATION", "COLOR",
		},
		repeatable: repeatableEntityProps,
		children:   []string{CompAlarm},
		exclusive:  [][2]string{{"DTEND", "DURATION"}},
		rules:      []rule{checkEventStart, checkUTC, checkRecurrenceID, checkEnd("DTEND")},
	},
	CompToDo: {
		required: []string{"DTSTAMP", "UID"},
		singleton: []string{
			"CLASS", "COMPLETED", "CREATED", "DESCRIPTION", "DTSTART", "GEO",
			"LAST-MODIFIED", "LOCATION", "ORGANIZER", "PERCENT-COMPLETE", "PRIORITY",
			"RECURRENCE-ID", "SEQUENCE", "STATUS", "SUMMARY", "URL", "RRULE",
			"DUE", "DURATION", "COLOR",
		},
		repeatable: repeatableEntityProps,
		children:   []string{CompAlarm},
		exclusive:  [][2]string{{"DUE", "DURATION"}},
		requires:   [][2]string{{"DURATION", "DTSTART"}},
		rules:      []rule{checkUTC, checkRecurrenceID, checkEnd("DUE"), checkPercent},
	},
	CompJournal: {
		required: []string{"DTSTAMP", "UID"},
		singleton: []string{
			"CLASS", "CREATED", "DTSTART", "LAST-MODIFIED", "ORGANIZER",
			"RECURRENCE-ID", "SEQUENCE", "STATUS", "SUMMARY", "URL", "RRULE", "COLOR",
		},
		repeatable: []string{
			"ATTACH", "ATTENDEE", "CATEGORIES", "COMMENT", "CONTACT", "DESCRIPTION",
			"EXDATE", "RELATED-TO", "RDATE", "REQUEST-STATUS", "EXRULE", "IMAGE",
		},
		rules: []rule{checkUTC, checkRecurrenceID},
	},
	CompFreeBusy: {
		required:   []string{"DTSTAMP", "UID"},
		singleton:  []string{"CONTACT", "DTSTART", "DTEND", "ORGANIZER", "URL"},
		repeatable: []string{"ATTENDEE", "COMMENT", "FREEBUSY", "REQUEST-STATUS"},
		rules:      []rule{checkUTC, checkUTCProps("DTSTART", "DTEND"), checkEnd("DTEND")},
	},
	CompTimezone: {
		required:    []string{"TZID"},
		singleton:   []string{"LAST-MODIFIED", "TZURL"},
		children:    []string{CompStandard, CompDaylight},
		minChildren: 1,
		rules:       []rule{checkUTC},
	},
	CompStandard: {
		required:   []string{"DTSTART", "TZOFFSETTO", "TZOFFSETFROM"},
		singleton:  []string{"RRULE"},
		repeatable: []string{"COMMENT", "RDATE", "TZNAME"},
		rules:      []rule{checkFloatingStart},
	},
	CompDaylight: {
		required:   []string{"DTSTART", "TZOFFSETTO", "TZOFFSETFROM"},
		singleton:  []string{"RRULE"},
		repeatable: []string{"COMMENT", "RDATE", "TZNAME"},
		rules:      []rule{checkFloatingStart},
	},
	CompAlarm: {
		required:   []string{"ACTION", "TRIGGER"},
		singleton:  []string{"DURATION", "REPEAT", "DESCRIPTION", "SUMMARY", "UID", "ACKNOWLEDGED"},
		repeatable: []string{"ATTACH", "ATTENDEE", "RELATED-TO"},
		together:   [][2]string{{"DURATION", "REPEAT"}},
		rules:      []rule{checkUTC, checkAlarmAction, checkUTCProps("TRIGGER")},
	},
}

// KnownComponent reports whether name has a schema.
func KnownComponent(name string) bool {
	_, ok := schemas[name]
	return ok
}
