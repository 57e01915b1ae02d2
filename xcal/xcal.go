// Package xcal writes calendars in the RFC 6321 XML representation.
package xcal

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/cyp0633/libical/contentline"
	"github.com/cyp0633/libical/ical"
	"github.com/cyp0633/libical/value"
)

// Namespace is the xCal namespace.
const Namespace = "urn:ietf:params:xml:ns:icalendar-2.0"

// paramTypes lists the parameters whose value is not TEXT.
var paramTypes = map[string]string{
	"ALTREP":         "uri",
	"DIR":            "uri",
	"DELEGATED-FROM": "cal-address",
	"DELEGATED-TO":   "cal-address",
	"MEMBER":         "cal-address",
	"SENT-BY":        "cal-address",
	"RSVP":           "boolean",
}

// Document builds an xCal document holding cal.
func Document(cal *ical.Calendar) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", Namespace)
	root.AddChild(Element(cal.Component))
	return doc
}

// Encode writes cal to w as indented xCal.
func Encode(w io.Writer, cal *ical.Calendar) error {
	doc := Document(cal)
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xCal: %w", err)
	}
	return nil
}

// Element converts one component and its descendants.
func Element(c *ical.Component) *etree.Element {
	el := etree.NewElement(strings.ToLower(c.Name))
	if len(c.Properties) > 0 {
		props := el.CreateElement("properties")
		for _, p := range c.Properties {
			props.AddChild(propertyElement(p))
		}
	}
	if len(c.Children) > 0 {
		comps := el.CreateElement("components")
		for _, child := range c.Children {
			comps.AddChild(Element(child))
		}
	}
	return el
}

func propertyElement(p *ical.Property) *etree.Element {
	el := etree.NewElement(strings.ToLower(p.Name))
	if params := paramsElement(p.Params); params != nil {
		el.AddChild(params)
	}
	if p.Verbatim() || p.Value == nil {
		el.CreateElement("unknown").SetText(p.RawValue)
		return el
	}
	items := []value.Value{p.Value}
	if l, ok := p.Value.(value.List); ok {
		items = l.Items
	}
	for _, v := range items {
		addValue(el, v)
	}
	return el
}

func paramsElement(params contentline.Params) *etree.Element {
	var el *etree.Element
	for _, p := range params {
		// the value type is carried by the element name
		if p.Name == "VALUE" {
			continue
		}
		if el == nil {
			el = etree.NewElement("parameters")
		}
		pe := el.CreateElement(strings.ToLower(p.Name))
		typ, ok := paramTypes[p.Name]
		if !ok {
			typ = "text"
		}
		for _, v := range p.Values {
			if typ == "boolean" {
				v = strings.ToLower(v)
			}
			pe.CreateElement(typ).SetText(v)
		}
	}
	return el
}

func addValue(el *etree.Element, v value.Value) {
	switch v := v.(type) {
	case value.Boolean:
		el.CreateElement("boolean").SetText(strconv.FormatBool(bool(v)))
	case value.Integer:
		el.CreateElement("integer").SetText(strconv.FormatInt(int64(v), 10))
	case value.Float:
		el.CreateElement("float").SetText(formatFloat(float64(v)))
	case value.Text:
		el.CreateElement("text").SetText(string(v))
	case value.Binary:
		el.CreateElement("binary").SetText(base64.StdEncoding.EncodeToString(v))
	case value.CalAddress:
		el.CreateElement("cal-address").SetText(string(v))
	case value.URI:
		el.CreateElement("uri").SetText(string(v))
	case value.Date:
		el.CreateElement("date").SetText(date(v))
	case value.DateTime:
		el.CreateElement("date-time").SetText(dateTime(v))
	case value.Time:
		s := fmt.Sprintf("%02d:%02d:%02d", v.Hour, v.Minute, v.Second)
		if v.Form == value.UTC {
			s += "Z"
		}
		el.CreateElement("time").SetText(s)
	case value.Duration:
		el.CreateElement("duration").SetText(v.String())
	case value.Period:
		pe := el.CreateElement("period")
		pe.CreateElement("start").SetText(dateTime(v.Start))
		if v.HasDuration {
			pe.CreateElement("duration").SetText(v.Duration.String())
		} else {
			pe.CreateElement("end").SetText(dateTime(v.End))
		}
	case value.UTCOffset:
		el.CreateElement("utc-offset").SetText(utcOffset(v))
	case value.Geo:
		el.CreateElement("latitude").SetText(formatFloat(v.Latitude))
		el.CreateElement("longitude").SetText(formatFloat(v.Longitude))
	case value.RequestStatus:
		el.CreateElement("code").SetText(v.Code)
		el.CreateElement("description").SetText(v.Description)
		if v.Data != "" {
			el.CreateElement("data").SetText(v.Data)
		}
	case *value.Recur:
		el.AddChild(recur(v))
	}
}

func recur(r *value.Recur) *etree.Element {
	el := etree.NewElement("recur")
	el.CreateElement("freq").SetText(r.Freq.String())
	if u := r.Until; u != nil {
		if u.DateOnly {
			el.CreateElement("until").SetText(date(value.DateOf(u.Time)))
		} else {
			el.CreateElement("until").SetText(dateTime(value.DateTime{Time: u.Time, Form: u.Form}))
		}
	}
	if r.Count > 0 {
		el.CreateElement("count").SetText(strconv.Itoa(r.Count))
	}
	if r.Interval > 1 {
		el.CreateElement("interval").SetText(strconv.Itoa(r.Interval))
	}
	ints := func(name string, vs []int) {
		for _, v := range vs {
			el.CreateElement(name).SetText(strconv.Itoa(v))
		}
	}
	ints("bysecond", r.BySecond)
	ints("byminute", r.ByMinute)
	ints("byhour", r.ByHour)
	for _, d := range r.ByDay {
		el.CreateElement("byday").SetText(d.String())
	}
	ints("bymonthday", r.ByMonthDay)
	ints("byyearday", r.ByYearDay)
	ints("byweekno", r.ByWeekNo)
	ints("bymonth", r.ByMonth)
	ints("bysetpos", r.BySetPos)
	if r.WeekStart != time.Monday {
		el.CreateElement("wkst").SetText(value.WeekdayNum{Weekday: r.WeekStart}.String())
	}
	return el
}

func date(d value.Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func dateTime(dt value.DateTime) string {
	s := dt.Time.Format("2006-01-02T15:04:05")
	if dt.Form == value.UTC {
		s += "Z"
	}
	return s
}

func utcOffset(o value.UTCOffset) string {
	sign, secs := '+', o.Seconds
	if secs < 0 {
		sign, secs = '-', -secs
	}
	s := fmt.Sprintf("%c%02d:%02d", sign, secs/3600, secs%3600/60)
	if secs%60 != 0 {
		s += fmt.Sprintf(":%02d", secs%60)
	}
	return s
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
