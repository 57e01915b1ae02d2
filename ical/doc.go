/*
Package ical assembles RFC 5545 content lines into a validated component tree.

# Basic Usage

	cal, err := ical.Parse(r)
	if err != nil {
		log.Fatal(err)
	}
	for _, ev := range cal.Events() {
		summary := ical.Get[value.Text](ev, "SUMMARY").OrEmpty()
		start := ev.GetRequired("DTSTART")
		fmt.Println(summary, start)
	}

Every property value is parsed when its line is read, using the value type
the property registry assigns in the enclosing component or the type an
explicit VALUE parameter selects. Components are checked against the
schema table when their END line is read.

# Strictness

Unknown input is handled according to a Strictness:

	unknown_properties: error|warn|ignore
	unknown_components: error|warn|ignore
	line_length: enforced|advisory
	collect_errors: true|false

X- properties and X- components are always kept. Their values are stored
as TEXT and written back verbatim.

With collect_errors, schema violations and unknown names do not stop the
decoder. Parse then returns the calendar together with an ErrorList:

	cal, err := ical.Parse(r, ical.WithCollectErrors(true))
	var list ical.ErrorList
	if errors.As(err, &list) {
		for _, e := range list {
			log.Println(e)
		}
	}

Grammar, value, timezone and structural errors are always fatal.

# Time Zones

TZID parameters are resolved through a value.Resolver, by default a cached
wrapper around time.LoadLocation. A VTIMEZONE carrying X-LIC-LOCATION makes
its TZID resolvable under that name for the rest of the stream.
*/
package ical
