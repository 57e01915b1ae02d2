package ical

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/libical/contentline"
	"github.com/cyp0633/libical/internal/testutil"
	"github.com/cyp0633/libical/tz"
	"github.com/cyp0633/libical/value"
)

var eastern = time.FixedZone("EST", -5*3600)

var resolver = tz.Static{"America/New_York": eastern}

const fixture = `
BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Example//Test//EN
BEGIN:VTIMEZONE
TZID:Custom/Eastern
X-LIC-LOCATION:America/New_York
BEGIN:STANDARD
DTSTART:19701101T020000
TZOFFSETFROM:-0400
TZOFFSETTO:-0500
RRULE:FREQ=YEARLY;BYMONTH=11;BYDAY=1SU
END:STANDARD
END:VTIMEZONE
BEGIN:VEVENT
UID:event-1@example.com
DTSTAMP:20240101T120000Z
DTSTART;TZID=Custom/Eastern:20240105T090000
DTEND;TZID=Custom/Eastern:20240105T100000
SUMMARY:Team sync\, weekly
DESCRIPTION:Agenda: Überblick über die Woche\, Planung für Montag und Dienstag\nBitte vorbereiten.
CATEGORIES:WORK,MEETINGS
GEO:37.386013;-122.082932
ATTENDEE;CN="Doe, Jane";ROLE=REQ-PARTICIPANT:mailto:jane@example.com
RRULE:FREQ=WEEKLY;BYDAY=FR;COUNT=4
X-CUSTOM;X-PARAM=1:raw\qvalue
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER:-PT15M
DESCRIPTION:Reminder
END:VALARM
END:VEVENT
END:VCALENDAR
`

func calendarOf(body ...string) string {
	lines := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//Test//EN"}, body...)
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

// eventOf wraps props in a VEVENT with UID and DTSTAMP. The first of props
// lands on line 7 of calendarOf's output.
func eventOf(props ...string) []string {
	out := []string{"BEGIN:VEVENT", "UID:1@example.com", "DTSTAMP:20240101T000000Z"}
	out = append(out, props...)
	return append(out, "END:VEVENT")
}

func parseString(s string, opts ...Option) (*Calendar, error) {
	return Parse(strings.NewReader(s), opts...)
}

func TestParse_Fixture(t *testing.T) {
	cal, err := parseString(testutil.CRLF(fixture), WithResolver(resolver), WithLogger(testutil.Logger(t)))
	require.NoError(t, err)

	assert.Len(t, cal.Timezones(), 1)
	events := cal.Events()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, 14, ev.Line)

	assert.Equal(t, "Team sync, weekly", ev.Text("SUMMARY"))
	assert.Contains(t, ev.Text("DESCRIPTION"), "Woche, Planung")

	start := Get[value.DateTime](ev, "DTSTART").MustGet()
	assert.Equal(t, value.Zoned, start.Form)
	assert.Equal(t, "Custom/Eastern", start.TZID)
	assert.True(t, start.Time.Equal(time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC)))

	cats := Get[value.List](ev, "CATEGORIES").MustGet()
	assert.Equal(t, []value.Value{value.Text("WORK"), value.Text("MEETINGS")}, cats.Items)

	geo := Get[value.Geo](ev, "GEO").MustGet()
	assert.InDelta(t, 37.386013, geo.Latitude, 1e-9)

	attendee := ev.Prop("ATTENDEE")
	assert.Equal(t, "Doe, Jane", attendee.Params.Value("CN"))
	assert.Equal(t, value.CalAddress("mailto:jane@example.com"), attendee.Value)

	rule := Get[*value.Recur](ev, "RRULE").MustGet()
	assert.Equal(t, value.Weekly, rule.Freq)
	assert.Equal(t, 4, rule.Count)

	assert.Equal(t, value.Text(`raw\qvalue`), ev.GetRequired("X-CUSTOM"))

	alarms := ev.Components(CompAlarm)
	require.Len(t, alarms, 1)
	assert.Equal(t, value.Duration{Negative: true, Minutes: 15}, alarms[0].GetRequired("TRIGGER"))

	assert.True(t, ev.GetProperty("LOCATION").IsAbsent())
	assert.True(t, Get[value.Integer](ev, "SUMMARY").IsAbsent())
}

func TestParse_UnresolvableZone(t *testing.T) {
	failing := value.ResolverFunc(func(tzid string) (*time.Location, error) {
		return nil, errors.New("zone database unavailable")
	})
	input := calendarOf(eventOf("DTSTART;TZID=America/New_York:20240101T090000")...)

	_, err := parseString(input, WithResolver(failing))
	var tzErr *value.TimezoneResolutionError
	require.ErrorAs(t, err, &tzErr)
	assert.Equal(t, "America/New_York", tzErr.TZID)
	assert.Equal(t, "DTSTART", tzErr.Property)
	assert.Equal(t, 7, tzErr.Line)

	_, err = parseString(input, WithResolver(nil))
	require.ErrorAs(t, err, &tzErr)
	assert.ErrorIs(t, err, value.ErrNoResolver)
}

func TestParse_WindowsZoneName(t *testing.T) {
	input := calendarOf(
		"BEGIN:VTIMEZONE",
		"TZID:W. Europe Standard Time",
		"BEGIN:STANDARD",
		"DTSTART:16010101T030000",
		"TZOFFSETFROM:+0200",
		"TZOFFSETTO:+0100",
		"RRULE:FREQ=YEARLY;BYDAY=-1SU;BYMONTH=10",
		"END:STANDARD",
		"BEGIN:DAYLIGHT",
		"DTSTART:16010101T020000",
		"TZOFFSETFROM:+0100",
		"TZOFFSETTO:+0200",
		"RRULE:FREQ=YEARLY;BYDAY=-1SU;BYMONTH=3",
		"END:DAYLIGHT",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"UID:outlook-1@example.com",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;TZID=W. Europe Standard Time:20240715T100000",
		"END:VEVENT",
	)

	cal, err := parseString(input)
	require.NoError(t, err)
	dt := Get[value.DateTime](cal.Events()[0], "DTSTART").MustGet()
	assert.Equal(t, "W. Europe Standard Time", dt.TZID)
	assert.Equal(t, "Europe/Berlin", dt.Time.Location().String())
	assert.Equal(t, time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC), dt.Time.UTC())
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       []string
		constraint Constraint
		property   string
	}{
		{
			name:       "missing UID",
			body:       []string{"BEGIN:VEVENT", "DTSTAMP:20240101T000000Z", "DTSTART:20240101T090000Z", "END:VEVENT"},
			constraint: ConstraintRequired,
			property:   "UID",
		},
		{
			name:       "duplicate DTSTART",
			body:       eventOf("DTSTART:20240101T090000Z", "DTSTART:20240102T090000Z"),
			constraint: ConstraintCardinality,
			property:   "DTSTART",
		},
		{
			name:       "DTEND with DURATION",
			body:       eventOf("DTSTART:20240101T090000Z", "DTEND:20240101T100000Z", "DURATION:PT1H"),
			constraint: ConstraintExclusive,
			property:   "DURATION",
		},
		{
			name:       "missing DTSTART",
			body:       eventOf("SUMMARY:no start"),
			constraint: ConstraintRequired,
			property:   "DTSTART",
		},
		{
			name:       "DTEND before DTSTART",
			body:       eventOf("DTSTART:20240101T100000Z", "DTEND:20240101T090000Z"),
			constraint: ConstraintOrder,
			property:   "DTEND",
		},
		{
			name:       "DTEND type differs from DTSTART",
			body:       eventOf("DTSTART:20240101T090000Z", "DTEND;VALUE=DATE:20240102"),
			constraint: ConstraintTypeMismatch,
			property:   "DTEND",
		},
		{
			name:       "floating DTSTAMP",
			body:       []string{"BEGIN:VEVENT", "UID:x", "DTSTAMP:20240101T000000", "DTSTART:20240101T090000Z", "END:VEVENT"},
			constraint: ConstraintValue,
			property:   "DTSTAMP",
		},
		{
			name:       "RECURRENCE-ID type differs from DTSTART",
			body:       eventOf("DTSTART:20240101T090000Z", "RECURRENCE-ID;VALUE=DATE:20240101"),
			constraint: ConstraintTypeMismatch,
			property:   "RECURRENCE-ID",
		},
		{
			name: "display alarm without description",
			body: eventOf("DTSTART:20240101T090000Z",
				"BEGIN:VALARM", "ACTION:DISPLAY", "TRIGGER:-PT15M", "END:VALARM"),
			constraint: ConstraintRequired,
			property:   "DESCRIPTION",
		},
		{
			name: "alarm DURATION without REPEAT",
			body: eventOf("DTSTART:20240101T090000Z",
				"BEGIN:VALARM", "ACTION:AUDIO", "TRIGGER:-PT15M", "DURATION:PT5M", "END:VALARM"),
			constraint: ConstraintTogether,
			property:   "DURATION",
		},
		{
			name: "floating absolute trigger",
			body: eventOf("DTSTART:20240101T090000Z",
				"BEGIN:VALARM", "ACTION:AUDIO", "TRIGGER;VALUE=DATE-TIME:20240101T080000", "END:VALARM"),
			constraint: ConstraintValue,
			property:   "TRIGGER",
		},
		{
			name:       "todo DURATION without DTSTART",
			body:       []string{"BEGIN:VTODO", "UID:t", "DTSTAMP:20240101T000000Z", "DURATION:PT1H", "END:VTODO"},
			constraint: ConstraintDependency,
			property:   "DURATION",
		},
		{
			name:       "percent complete out of range",
			body:       []string{"BEGIN:VTODO", "UID:t", "DTSTAMP:20240101T000000Z", "PERCENT-COMPLETE:150", "END:VTODO"},
			constraint: ConstraintValue,
			property:   "PERCENT-COMPLETE",
		},
		{
			name:       "alarm directly in calendar",
			body:       []string{"BEGIN:VALARM", "ACTION:AUDIO", "TRIGGER:-PT5M", "END:VALARM"},
			constraint: ConstraintIllegalChild,
			property:   "VALARM",
		},
		{
			name:       "calendar without components",
			constraint: ConstraintMissingChild,
		},
		{
			name: "zoned observance start",
			body: []string{"BEGIN:VTIMEZONE", "TZID:Test", "BEGIN:STANDARD",
				"DTSTART:19701101T020000Z", "TZOFFSETFROM:-0400", "TZOFFSETTO:-0500",
				"END:STANDARD", "END:VTIMEZONE"},
			constraint: ConstraintValue,
			property:   "DTSTART",
		},
		{
			name: "timezone without observance",
			body: []string{"BEGIN:VTIMEZONE", "TZID:Test", "END:VTIMEZONE"},
			constraint: ConstraintMissingChild,
		},
		{
			name:       "floating free/busy start",
			body:       []string{"BEGIN:VFREEBUSY", "UID:f", "DTSTAMP:20240101T000000Z", "DTSTART:20240101T090000", "END:VFREEBUSY"},
			constraint: ConstraintValue,
			property:   "DTSTART",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := parseString(calendarOf(tt.body...))
			assert.Nil(t, cal)
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.constraint, schemaErr.Constraint)
			assert.Equal(t, tt.property, schemaErr.Property)
			assert.NotZero(t, schemaErr.Line)
		})
	}
}

func TestParse_SchedulingMessageWithoutStart(t *testing.T) {
	body := append([]string{"METHOD:CANCEL"}, eventOf("SUMMARY:cancelled")...)
	_, err := parseString(calendarOf(body...))
	assert.NoError(t, err)
}

func TestParse_Version(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{version: "2.0"},
		{version: "1.0;2.0"},
		{version: "1.0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			input := strings.Replace(calendarOf(eventOf("DTSTART:20240101T090000Z")...), "VERSION:2.0", "VERSION:"+tt.version, 1)
			_, err := parseString(input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, "VERSION", schemaErr.Property)
			assert.Equal(t, 2, schemaErr.Line)
		})
	}
}

func TestParse_UnknownProperty(t *testing.T) {
	input := calendarOf(eventOf("DTSTART:20240101T090000Z", "FOO;BAR=1:some\\,text")...)

	tests := []struct {
		name   string
		policy Policy
	}{
		{name: "error", policy: PolicyError},
		{name: "warn", policy: PolicyWarn},
		{name: "ignore", policy: PolicyIgnore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultStrictness()
			s.UnknownProperties = tt.policy
			cal, err := parseString(input, WithStrictness(s), WithLogger(testutil.Logger(t)))
			if tt.policy == PolicyError {
				var propErr *UnknownPropertyError
				require.ErrorAs(t, err, &propErr)
				assert.Equal(t, "FOO", propErr.Property)
				assert.Equal(t, "VCALENDAR/VEVENT[1]", propErr.Path)
				assert.Equal(t, 8, propErr.Line)
				return
			}
			require.NoError(t, err)
			p := cal.Events()[0].Prop("FOO")
			require.NotNil(t, p)
			assert.Equal(t, value.Text("some,text"), p.Value)
			assert.Equal(t, "1", p.Params.Value("BAR"))
		})
	}
}

func TestParse_RegisteredPropertyInWrongComponent(t *testing.T) {
	s := DefaultStrictness()
	s.UnknownProperties = PolicyError
	_, err := parseString(calendarOf(eventOf("DTSTART:20240101T090000Z", "DUE:20240102T090000Z")...), WithStrictness(s))
	var propErr *UnknownPropertyError
	require.ErrorAs(t, err, &propErr)
	assert.Equal(t, "DUE", propErr.Property)
}

func TestParse_UnknownComponent(t *testing.T) {
	body := append(eventOf("DTSTART:20240101T090000Z"),
		"BEGIN:VFOO", "DTSTART:not a date", "BEGIN:VEVENT", "END:VEVENT", "END:VFOO",
		"BEGIN:X-VENDOR", "ANYTHING:goes", "END:X-VENDOR")
	input := calendarOf(body...)

	_, err := parseString(input)
	var compErr *UnknownComponentError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "VFOO", compErr.Name)
	assert.Equal(t, "VCALENDAR/VFOO[1]", compErr.Path)

	s := DefaultStrictness()
	s.UnknownComponents = PolicyWarn
	cal, err := parseString(input, WithStrictness(s), WithLogger(testutil.Logger(t)))
	require.NoError(t, err)
	require.Len(t, cal.Children, 3)
	foo := cal.Children[1]
	assert.Equal(t, "VFOO", foo.Name)
	assert.Equal(t, value.Text("not a date"), foo.GetRequired("DTSTART"))
	// descendants of an opaque component are opaque too
	require.Len(t, foo.Children, 1)
	assert.Empty(t, foo.Children[0].Properties)
	assert.Equal(t, "X-VENDOR", cal.Children[2].Name)
}

func TestParse_CollectErrors(t *testing.T) {
	body := []string{
		"BEGIN:VEVENT", "DTSTAMP:20240101T000000Z", "DTSTART:20240101T090000Z", "END:VEVENT",
		"BEGIN:VFOO", "END:VFOO",
	}
	cal, err := parseString(calendarOf(body...), WithCollectErrors(true))
	require.NotNil(t, cal)
	require.Len(t, cal.Children, 2)

	var list ErrorList
	require.ErrorAs(t, err, &list)
	require.Len(t, list, 2)

	var schemaErr *SchemaError
	require.ErrorAs(t, list[0], &schemaErr)
	assert.Equal(t, "UID", schemaErr.Property)
	assert.Equal(t, "VCALENDAR/VEVENT[1]", schemaErr.Path)

	var compErr *UnknownComponentError
	assert.ErrorAs(t, err, &compErr)
	assert.Contains(t, err.Error(), "2 errors")
}

func TestParse_CollectErrorsKeepsGrammarErrorsFatal(t *testing.T) {
	input := calendarOf(eventOf("DTSTART:20240101T090000Z", `ATTENDEE;CN="Alice:mailto:alice@example.com`)...)
	cal, err := parseString(input, WithCollectErrors(true))
	assert.Nil(t, cal)
	var grammarErr *contentline.PropertyGrammarError
	require.ErrorAs(t, err, &grammarErr)
	assert.Equal(t, 8, grammarErr.Line)
}

func TestParse_ValueErrors(t *testing.T) {
	tests := []struct {
		name  string
		prop  string
		check func(t *testing.T, err error)
	}{
		{
			name: "impossible date",
			prop: "DTSTART:20240230T090000",
			check: func(t *testing.T, err error) {
				var vErr *value.ValueTypeError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, value.TypeDateTime, vErr.Expected)
				assert.Equal(t, "DTSTART", vErr.Property)
				assert.Equal(t, 7, vErr.Line)
			},
		},
		{
			name: "VALUE type not allowed",
			prop: "DTSTART;VALUE=BOOLEAN:TRUE",
			check: func(t *testing.T, err error) {
				var vErr *value.ValueTypeError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "DTSTART", vErr.Property)
			},
		},
		{
			name: "COUNT with UNTIL",
			prop: "RRULE:FREQ=DAILY;COUNT=3;UNTIL=20240110T000000Z",
			check: func(t *testing.T, err error) {
				var rErr *value.RecurrenceRuleError
				require.ErrorAs(t, err, &rErr)
				assert.Equal(t, "RRULE", rErr.Property)
			},
		},
		{
			name: "bad duration",
			prop: "DURATION:P1W2D",
			check: func(t *testing.T, err error) {
				var vErr *value.ValueTypeError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, value.TypeDuration, vErr.Expected)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// value errors stay fatal in collect mode
			_, err := parseString(calendarOf(eventOf(tt.prop)...), WithCollectErrors(true))
			tt.check(t, err)
		})
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{
			name:  "mismatched END",
			input: calendarOf("BEGIN:VEVENT", "UID:x", "END:VTODO"),
			line:  6,
		},
		{
			name:  "missing END:VCALENDAR",
			input: "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n",
			line:  2,
		},
		{
			name:  "END without BEGIN",
			input: "END:VCALENDAR\r\n",
			line:  1,
		},
		{
			name:  "property before BEGIN",
			input: "VERSION:2.0\r\n" + calendarOf(eventOf("DTSTART:20240101T090000Z")...),
			line:  1,
		},
		{
			name:  "component outside calendar",
			input: "BEGIN:VEVENT\r\nEND:VEVENT\r\n",
			line:  1,
		},
		{
			name:  "second calendar",
			input: calendarOf(eventOf("DTSTART:20240101T090000Z")...) + calendarOf(eventOf("DTSTART:20240101T090000Z")...),
			line:  10,
		},
		{
			name:  "empty input",
			input: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := parseString(tt.input)
			assert.Nil(t, cal)
			var structErr *StructuralError
			require.ErrorAs(t, err, &structErr)
			assert.Equal(t, tt.line, structErr.Line)
		})
	}
}

func TestDecoder_MultipleCalendars(t *testing.T) {
	one := calendarOf(eventOf("DTSTART:20240101T090000Z", "SUMMARY:one")...)
	two := calendarOf(eventOf("DTSTART:20240101T090000Z", "SUMMARY:two")...)
	d := NewDecoder(strings.NewReader(one + two))

	first, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, "one", first.Events()[0].Text("SUMMARY"))

	second, err := d.Decode()
	require.NoError(t, err)
	assert.Equal(t, "two", second.Events()[0].Text("SUMMARY"))

	_, err = d.Decode()
	assert.ErrorIs(t, err, io.EOF)
}

func TestParse_LineLength(t *testing.T) {
	input := calendarOf(eventOf("DTSTART:20240101T090000Z", "DESCRIPTION:"+strings.Repeat("a", 80))...)

	_, err := parseString(input, WithLogger(testutil.Logger(t)))
	require.NoError(t, err)

	s := DefaultStrictness()
	s.LineLength = LineLengthEnforced
	_, err = parseString(input, WithStrictness(s))
	var foldErr *contentline.LineFoldingError
	require.ErrorAs(t, err, &foldErr)
	assert.Equal(t, 8, foldErr.Line)
}

func TestParse_Charset(t *testing.T) {
	input := calendarOf(eventOf("DTSTART:20240101T090000Z", "SUMMARY:Caf\xe9")...)

	cal, err := parseString(input, WithCharset("ISO-8859-1"))
	require.NoError(t, err)
	assert.Equal(t, "Café", cal.Events()[0].Text("SUMMARY"))

	_, err = parseString(input)
	var grammarErr *contentline.PropertyGrammarError
	assert.ErrorAs(t, err, &grammarErr)
}

func TestParse_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := parseString(testutil.CRLF(fixture), WithResolver(resolver), WithRegisterer(reg))
	require.NoError(t, err)

	n, err := promtest.GatherAndCount(reg, "ical_components_total")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, err = parseString("END:VCALENDAR\r\n", WithRegisterer(reg))
	require.Error(t, err)
	n, err = promtest.GatherAndCount(reg, "ical_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// strip clears what legitimately differs between two decodes of the same
// calendar: line numbers and the source text of typed values.
func strip(c *Component) {
	c.Line = 0
	for _, p := range c.Properties {
		p.Line = 0
		if !p.verbatim {
			p.RawValue = ""
		}
	}
	for _, child := range c.Children {
		strip(child)
	}
}

func TestRoundTrip(t *testing.T) {
	opts := []Option{WithResolver(resolver)}
	first, err := parseString(testutil.CRLF(fixture), opts...)
	require.NoError(t, err)

	encoded, err := Serialize(first)
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSuffix(string(encoded), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), contentline.MaxLineOctets)
	}

	second, err := Parse(bytes.NewReader(encoded), opts...)
	require.NoError(t, err)

	reencoded, err := Serialize(second)
	require.NoError(t, err)
	assert.Equal(t, string(encoded), string(reencoded))

	strip(first.Component)
	strip(second.Component)
	assert.Equal(t, first, second)
}

func TestParse_RequestStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want value.RequestStatus
	}{
		{"2.0;Success", value.RequestStatus{Code: "2.0", Description: "Success"}},
		{"3.7;Invalid user;ATTENDEE:mailto:js@example.com",
			value.RequestStatus{Code: "3.7", Description: "Invalid user", Data: "ATTENDEE:mailto:js@example.com"}},
		{`2.8;Ignored\, once;RRULE:FREQ=WEEKLY\;INTERVAL=2`,
			value.RequestStatus{Code: "2.8", Description: "Ignored, once", Data: "RRULE:FREQ=WEEKLY;INTERVAL=2"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cal, err := parseString(calendarOf(eventOf("DTSTART:20240101T090000Z", "REQUEST-STATUS:"+tt.raw)...))
			require.NoError(t, err)
			assert.Equal(t, tt.want, Get[value.RequestStatus](cal.Events()[0], "REQUEST-STATUS").MustGet())

			encoded, err := Serialize(cal)
			require.NoError(t, err)
			assert.Contains(t, string(encoded), "\r\nREQUEST-STATUS:"+tt.raw+"\r\n")
		})
	}

	_, err := parseString(calendarOf(eventOf("DTSTART:20240101T090000Z", "REQUEST-STATUS:Success")...))
	var vte *value.ValueTypeError
	require.ErrorAs(t, err, &vte)
	assert.Equal(t, "REQUEST-STATUS", vte.Property)
}
