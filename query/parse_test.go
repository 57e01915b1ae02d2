package query

import (
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createElementFromXML is a test helper that creates an etree Element from XML string
func createElementFromXML(t *testing.T, xmlStr string) *etree.Element {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xmlStr))
	return doc.Root()
}

func TestParseFilterElement_Nil(t *testing.T) {
	filter, err := ParseFilterElement(nil)
	assert.Nil(t, filter)
	assert.Nil(t, err)
}

func TestParseFilterElement_Empty(t *testing.T) {
	filterElem := createElementFromXML(t, `<C:filter xmlns:C="urn:ietf:params:xml:ns:caldav"></C:filter>`)
	filter, err := ParseFilterElement(filterElem)
	assert.Nil(t, filter)
	assert.Nil(t, err)
}

func TestParseFilterElement_Complete(t *testing.T) {
	filterXML := `
    <C:filter xmlns:C="urn:ietf:params:xml:ns:caldav">
        <C:comp-filter name="VCALENDAR">
            <C:comp-filter name="vevent" test="anyof">
                <C:time-range start="20240101T000000Z" end="20240131T235959Z"/>
                <C:prop-filter name="SUMMARY">
                    <C:text-match collation="i;unicode-casemap" match-type="starts-with">Meeting</C:text-match>
                </C:prop-filter>
                <C:prop-filter name="LOCATION">
                    <C:is-not-defined/>
                </C:prop-filter>
                <C:prop-filter name="ATTENDEE">
                    <C:param-filter name="PARTSTAT">
                        <C:text-match negate-condition="yes">DECLINED</C:text-match>
                    </C:param-filter>
                </C:prop-filter>
                <C:comp-filter name="VALARM"/>
            </C:comp-filter>
        </C:comp-filter>
    </C:filter>
    `
	filter, err := ParseFilterElement(createElementFromXML(t, filterXML))
	require.NoError(t, err)
	require.NotNil(t, filter)
	assert.Equal(t, "VCALENDAR", filter.Component)
	assert.Equal(t, "allof", filter.Test)
	require.Len(t, filter.Children, 1)

	eventFilter := filter.Children[0]
	assert.Equal(t, "VEVENT", eventFilter.Component)
	assert.Equal(t, "anyof", eventFilter.Test)
	require.NotNil(t, eventFilter.TimeRange)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *eventFilter.TimeRange.Start)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), *eventFilter.TimeRange.End)

	require.Len(t, eventFilter.PropFilters, 3)
	summary := eventFilter.PropFilters[0]
	assert.Equal(t, &TextMatch{Collation: "i;unicode-casemap", MatchType: "starts-with", Value: "Meeting"}, summary.TextMatch)
	assert.True(t, eventFilter.PropFilters[1].IsNotDefined)

	attendee := eventFilter.PropFilters[2]
	require.Len(t, attendee.ParamFilters, 1)
	assert.Equal(t, "PARTSTAT", attendee.ParamFilters[0].Name)
	assert.Equal(t, &TextMatch{Collation: "i;ascii-casemap", MatchType: "contains", Negate: true, Value: "DECLINED"}, attendee.ParamFilters[0].TextMatch)

	require.Len(t, eventFilter.Children, 1)
	assert.Equal(t, "VALARM", eventFilter.Children[0].Component)
}

func TestParseFilterElement_Errors(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{
			name: "bad time format",
			xml:  `<filter><comp-filter name="VCALENDAR"><comp-filter name="VEVENT"><time-range start="2024-01-01"/></comp-filter></comp-filter></filter>`,
		},
		{
			name: "empty time range",
			xml:  `<filter><comp-filter name="VCALENDAR"><comp-filter name="VEVENT"><time-range/></comp-filter></comp-filter></filter>`,
		},
		{
			name: "end before start",
			xml:  `<filter><comp-filter name="VCALENDAR"><comp-filter name="VEVENT"><time-range start="20240201T000000Z" end="20240101T000000Z"/></comp-filter></comp-filter></filter>`,
		},
		{
			name: "comp-filter without name",
			xml:  `<filter><comp-filter/></filter>`,
		},
		{
			name: "prop-filter without name",
			xml:  `<filter><comp-filter name="VCALENDAR"><prop-filter/></comp-filter></filter>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilterElement(createElementFromXML(t, tt.xml))
			assert.Error(t, err)
		})
	}
}

func TestParseFilter(t *testing.T) {
	doc := `<?xml version="1.0" encoding="utf-8" ?>
<C:calendar-query xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">
  <D:prop><D:getetag/></D:prop>
  <C:filter>
    <C:comp-filter name="VCALENDAR">
      <C:comp-filter name="VTODO">
        <C:prop-filter name="COMPLETED"><C:is-not-defined/></C:prop-filter>
      </C:comp-filter>
    </C:comp-filter>
  </C:filter>
</C:calendar-query>`
	filter, err := ParseFilter(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, filter.Children, 1)
	assert.Equal(t, "VTODO", filter.Children[0].Component)
	assert.True(t, filter.Children[0].PropFilters[0].IsNotDefined)

	_, err = ParseFilter(strings.NewReader(`<C:calendar-query xmlns:C="urn:ietf:params:xml:ns:caldav"/>`))
	assert.ErrorIs(t, err, ErrNoFilter)
	_, err = ParseFilter(strings.NewReader(`<propfind/>`))
	assert.Error(t, err)
}
