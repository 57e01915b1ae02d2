package query

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beevik/etree"
)

const timeRangeLayout = "20060102T150405Z"

// ErrNoFilter is returned by ParseFilter for a document without <filter>.
var ErrNoFilter = errors.New("query: document has no filter element")

// ParseFilter reads a <calendar-query> or <filter> document.
func ParseFilter(r io.Reader) (*Filter, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read filter: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrNoFilter
	}
	switch localName(root.Tag) {
	case "filter":
	case "calendar-query":
		root = findElementIgnoreNS(root, "filter")
		if root == nil {
			return nil, ErrNoFilter
		}
	default:
		return nil, fmt.Errorf("unexpected root element %q", root.Tag)
	}
	return ParseFilterElement(root)
}

// ParseFilterElement parses a <filter> element into a Filter structure
func ParseFilterElement(filterElem *etree.Element) (*Filter, error) {
	if filterElem == nil {
		return nil, nil
	}

	// Find comp-filter elements
	compFilters := getElementsIgnoreNS(filterElem, "comp-filter")
	if len(compFilters) == 0 {
		return nil, nil
	}

	// Parse the first comp-filter (should be VCALENDAR)
	return parseCompFilter(compFilters[0])
}

// parseCompFilter recursively parses a comp-filter element
func parseCompFilter(compFilterElem *etree.Element) (*Filter, error) {
	filter := &Filter{
		Component: strings.ToUpper(compFilterElem.SelectAttrValue("name", "")),
		Test:      compFilterElem.SelectAttrValue("test", "allof"),
	}
	if filter.Component == "" {
		return nil, fmt.Errorf("comp-filter without name")
	}

	// If is-not-defined is present, other elements should not be
	if findElementIgnoreNS(compFilterElem, "is-not-defined") != nil {
		filter.IsNotDefined = true
		return filter, nil
	}

	if timeRangeElem := findElementIgnoreNS(compFilterElem, "time-range"); timeRangeElem != nil {
		tr, err := parseTimeRange(timeRangeElem)
		if err != nil {
			return nil, fmt.Errorf("comp-filter %s: %w", filter.Component, err)
		}
		filter.TimeRange = tr
	}

	for _, propFilterElem := range getElementsIgnoreNS(compFilterElem, "prop-filter") {
		propFilter, err := parsePropFilter(propFilterElem)
		if err != nil {
			return nil, err
		}
		filter.PropFilters = append(filter.PropFilters, propFilter)
	}

	for _, nestedElem := range getElementsIgnoreNS(compFilterElem, "comp-filter") {
		nestedFilter, err := parseCompFilter(nestedElem)
		if err != nil {
			return nil, err
		}
		filter.Children = append(filter.Children, *nestedFilter)
	}

	return filter, nil
}

// parsePropFilter parses a prop-filter element
func parsePropFilter(propFilterElem *etree.Element) (PropFilter, error) {
	propFilter := PropFilter{
		Name: strings.ToUpper(propFilterElem.SelectAttrValue("name", "")),
		Test: propFilterElem.SelectAttrValue("test", "allof"),
	}
	if propFilter.Name == "" {
		return PropFilter{}, fmt.Errorf("prop-filter without name")
	}

	if findElementIgnoreNS(propFilterElem, "is-not-defined") != nil {
		propFilter.IsNotDefined = true
		return propFilter, nil
	}

	if textMatchElem := findElementIgnoreNS(propFilterElem, "text-match"); textMatchElem != nil {
		propFilter.TextMatch = parseTextMatch(textMatchElem)
	}

	for _, paramFilterElem := range getElementsIgnoreNS(propFilterElem, "param-filter") {
		propFilter.ParamFilters = append(propFilter.ParamFilters, parseParamFilter(paramFilterElem))
	}

	return propFilter, nil
}

// parseParamFilter parses a param-filter element
func parseParamFilter(paramFilterElem *etree.Element) ParamFilter {
	paramFilter := ParamFilter{
		Name: strings.ToUpper(paramFilterElem.SelectAttrValue("name", "")),
	}

	if findElementIgnoreNS(paramFilterElem, "is-not-defined") != nil {
		paramFilter.IsNotDefined = true
		return paramFilter
	}

	if textMatchElem := findElementIgnoreNS(paramFilterElem, "text-match"); textMatchElem != nil {
		paramFilter.TextMatch = parseTextMatch(textMatchElem)
	}

	return paramFilter
}

// parseTextMatch parses a text-match element
func parseTextMatch(textMatchElem *etree.Element) *TextMatch {
	return &TextMatch{
		Collation: textMatchElem.SelectAttrValue("collation", "i;ascii-casemap"),
		MatchType: textMatchElem.SelectAttrValue("match-type", "contains"),
		Negate:    textMatchElem.SelectAttrValue("negate-condition", "no") == "yes",
		Value:     textMatchElem.Text(),
	}
}

// parseTimeRange parses a time-range element. Both bounds are UTC and at
// least one must be present.
func parseTimeRange(timeRangeElem *etree.Element) (*TimeRange, error) {
	timeRange := &TimeRange{}
	for _, bound := range []struct {
		attr string
		dst  **time.Time
	}{
		{"start", &timeRange.Start},
		{"end", &timeRange.End},
	} {
		s := timeRangeElem.SelectAttrValue(bound.attr, "")
		if s == "" {
			continue
		}
		t, err := time.Parse(timeRangeLayout, s)
		if err != nil {
			return nil, fmt.Errorf("time-range %s %q: %w", bound.attr, s, err)
		}
		*bound.dst = &t
	}
	if timeRange.Start == nil && timeRange.End == nil {
		return nil, fmt.Errorf("time-range needs start or end")
	}
	if timeRange.Start != nil && timeRange.End != nil && !timeRange.End.After(*timeRange.Start) {
		return nil, fmt.Errorf("time-range end is not after start")
	}
	return timeRange, nil
}

// Helper functions to handle namespaces

func localName(tag string) string {
	if i := strings.LastIndex(tag, ":"); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// getElementsIgnoreNS returns all child elements with the given local name, ignoring namespace
func getElementsIgnoreNS(parent *etree.Element, name string) []*etree.Element {
	var elements []*etree.Element
	for _, child := range parent.ChildElements() {
		if strings.EqualFold(localName(child.Tag), name) {
			elements = append(elements, child)
		}
	}
	return elements
}

// findElementIgnoreNS finds the first child element with the given local name, ignoring namespace
func findElementIgnoreNS(parent *etree.Element, name string) *etree.Element {
	elements := getElementsIgnoreNS(parent, name)
	if len(elements) > 0 {
		return elements[0]
	}
	return nil
}
