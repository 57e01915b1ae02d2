package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/libical/tz"
)

var newYorkZone = []string{
	"BEGIN:VTIMEZONE",
	"TZID:America/New_York",
	"BEGIN:STANDARD",
	"DTSTART:19701101T020000",
	"TZOFFSETFROM:-0400",
	"TZOFFSETTO:-0500",
	"END:STANDARD",
	"END:VTIMEZONE",
}

func objectEvent(uid string, props ...string) []string {
	out := []string{"BEGIN:VEVENT", "UID:" + uid, "DTSTAMP:20240101T000000Z"}
	out = append(out, props...)
	return append(out, "END:VEVENT")
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestValidateObject(t *testing.T) {
	tests := []struct {
		name       string
		body       []string
		opts       ObjectOptions
		constraint Constraint
		property   string
	}{
		{
			name: "master with overrides",
			body: concat(newYorkZone,
				objectEvent("a", "DTSTART;TZID=America/New_York:20240101T090000", "RRULE:FREQ=DAILY;COUNT=3"),
				objectEvent("a", "DTSTART;TZID=America/New_York:20240102T100000", "RECURRENCE-ID;TZID=America/New_York:20240102T090000"),
				objectEvent("a", "DTSTART;TZID=America/New_York:20240103T100000", "RECURRENCE-ID;TZID=America/New_York:20240103T090000"),
			),
		},
		{
			name: "overrides without master",
			body: concat(
				objectEvent("a", "DTSTART:20240102T100000Z", "RECURRENCE-ID:20240102T090000Z"),
			),
		},
		{
			name: "single todo",
			body: []string{"BEGIN:VTODO", "UID:t", "DTSTAMP:20240101T000000Z", "END:VTODO"},
		},
		{
			name: "zone by reference",
			body: objectEvent("a", "DTSTART;TZID=America/New_York:20240101T090000"),
			opts: ObjectOptions{TimezonesByReference: true},
		},
		{
			name:       "zone missing",
			body:       objectEvent("a", "DTSTART;TZID=America/New_York:20240101T090000"),
			constraint: ConstraintMissingChild,
			property:   CompTimezone,
		},
		{
			name: "differing UIDs",
			body: concat(
				objectEvent("a", "DTSTART:20240101T090000Z"),
				objectEvent("b", "DTSTART:20240101T090000Z"),
			),
			constraint: ConstraintObject,
			property:   "UID",
		},
		{
			name: "mixed component types",
			body: concat(
				objectEvent("a", "DTSTART:20240101T090000Z"),
				[]string{"BEGIN:VTODO", "UID:a", "DTSTAMP:20240101T000000Z", "END:VTODO"},
			),
			constraint: ConstraintObject,
		},
		{
			name: "two masters",
			body: concat(
				objectEvent("a", "DTSTART:20240101T090000Z"),
				objectEvent("a", "DTSTART:20240102T090000Z"),
			),
			constraint: ConstraintObject,
			property:   "RECURRENCE-ID",
		},
		{
			name: "duplicate override",
			body: concat(
				objectEvent("a", "DTSTART:20240101T090000Z", "RRULE:FREQ=DAILY"),
				objectEvent("a", "DTSTART:20240102T100000Z", "RECURRENCE-ID:20240102T090000Z"),
				objectEvent("a", "DTSTART:20240102T110000Z", "RECURRENCE-ID:20240102T090000Z"),
			),
			constraint: ConstraintObject,
			property:   "RECURRENCE-ID",
		},
		{
			name:       "free busy",
			body:       []string{"BEGIN:VFREEBUSY", "UID:fb", "DTSTAMP:20240101T000000Z", "END:VFREEBUSY"},
			constraint: ConstraintObject,
		},
		{
			name:       "only a time zone",
			body:       newYorkZone,
			constraint: ConstraintObject,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := parseString(calendarOf(tt.body...), WithResolver(resolver))
			require.NoError(t, err)

			err = ValidateObject(cal, tt.opts)
			if tt.constraint == "" {
				assert.NoError(t, err)
				return
			}
			var list ErrorList
			require.ErrorAs(t, err, &list)
			require.Len(t, list, 1)
			var sErr *SchemaError
			require.ErrorAs(t, list[0], &sErr)
			assert.Equal(t, tt.constraint, sErr.Constraint)
			assert.Equal(t, tt.property, sErr.Property)
		})
	}
}

func TestValidateObject_Method(t *testing.T) {
	input := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\nMETHOD:REQUEST\r\n" +
		"BEGIN:VEVENT\r\nUID:a\r\nDTSTAMP:20240101T000000Z\r\nDTSTART:20240101T090000Z\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	cal, err := parseString(input)
	require.NoError(t, err)

	var sErr *SchemaError
	require.ErrorAs(t, ValidateObject(cal, ObjectOptions{}), &sErr)
	assert.Equal(t, "METHOD", sErr.Property)
	assert.Equal(t, 4, sErr.Line)
}

func TestTZIDs(t *testing.T) {
	cal, err := parseString(calendarOf(concat(newYorkZone,
		objectEvent("a",
			"DTSTART;TZID=America/New_York:20240101T090000",
			"DTEND;TZID=America/New_York:20240101T100000",
			"EXDATE;TZID=Europe/Berlin:20240102T150000",
			"BEGIN:VALARM", "ACTION:DISPLAY", "DESCRIPTION:x", "TRIGGER;VALUE=DATE-TIME:20240101T080000Z", "END:VALARM",
		),
	)...), WithResolver(tz.Chain{resolver, tz.Static{"Europe/Berlin": time.FixedZone("CET", 3600)}}))
	require.NoError(t, err)
	assert.Equal(t, []string{"America/New_York", "Europe/Berlin"}, TZIDs(cal))

	cal, err = parseString(calendarOf(objectEvent("b", "DTSTART:20240101T090000Z")...))
	require.NoError(t, err)
	assert.Empty(t, TZIDs(cal))
}
