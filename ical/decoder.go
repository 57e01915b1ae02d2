package ical

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cyp0633/libical/contentline"
	"github.com/cyp0633/libical/internal/metrics"
	"github.com/cyp0633/libical/tz"
	"github.com/cyp0633/libical/value"
)

// Source yields parsed content lines. It returns io.EOF after the last one.
type Source interface {
	Next() (contentline.Property, error)
}

type lineSource struct {
	r *contentline.Reader
}

func (s lineSource) Next() (contentline.Property, error) {
	l, err := s.r.Next()
	if err != nil {
		return contentline.Property{}, err
	}
	return contentline.ParseProperty(l)
}

// Decoder assembles VCALENDAR trees from a content line stream.
type Decoder struct {
	cfg      config
	src      Source
	lines    *contentline.Reader // nil when reading from a Source
	metrics  *metrics.Collector
	aliases  map[string]string // TZID to X-LIC-LOCATION
	resolver value.Resolver
	overlong int
	err      error
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := newDecoder(newConfig(opts))
	lr, err := contentline.NewReader(r, contentline.ReaderOptions{
		StrictLineLength: d.cfg.strictness.LineLength == LineLengthEnforced,
		Charset:          d.cfg.charset,
	})
	if err != nil {
		d.err = err
		return d
	}
	d.lines = lr
	d.src = lineSource{r: lr}
	return d
}

// NewSourceDecoder returns a Decoder over already parsed content lines.
// The line length and charset settings do not apply.
func NewSourceDecoder(src Source, opts ...Option) *Decoder {
	d := newDecoder(newConfig(opts))
	d.src = src
	return d
}

func newDecoder(cfg config) *Decoder {
	d := &Decoder{cfg: cfg, aliases: map[string]string{}}
	if cfg.resolver != nil {
		d.resolver = tz.Aliases{Base: cfg.resolver, Aliases: d.aliases}
	}
	m, err := metrics.New(cfg.registerer)
	if err != nil {
		cfg.logger.Warn("metrics disabled", "error", err)
	}
	d.metrics = m
	return d
}

// Parse decodes exactly one VCALENDAR from r. Input after its END line is a
// StructuralError. In collect mode a non-nil calendar may come back together
// with an ErrorList.
func Parse(r io.Reader, opts ...Option) (*Calendar, error) {
	d := NewDecoder(r, opts...)
	cal, err := d.Decode()
	if errors.Is(err, io.EOF) {
		return nil, &StructuralError{Reason: "no VCALENDAR in input"}
	}
	if cal == nil {
		return nil, err
	}
	extra, nerr := d.src.Next()
	switch {
	case nerr == nil:
		return nil, d.fatal(&StructuralError{Line: extra.Line, Reason: fmt.Sprintf("unexpected %s after END:VCALENDAR", extra.Name)})
	case !errors.Is(nerr, io.EOF):
		return nil, d.fatal(nerr)
	}
	return cal, err
}

type frame struct {
	comp   *Component
	path   string
	opaque bool
	seen   map[string]int // child count by name, for paths
}

// Decode returns the next VCALENDAR in the stream, or io.EOF when the
// stream holds no more content.
func (d *Decoder) Decode() (*Calendar, error) {
	if d.err != nil {
		return nil, d.err
	}
	var (
		stack    []*frame
		errs     ErrorList
		lastLine int
	)
	for {
		prop, err := d.src.Next()
		if errors.Is(err, io.EOF) {
			if len(stack) == 0 {
				return nil, io.EOF
			}
			top := stack[len(stack)-1]
			return nil, d.fatal(&StructuralError{Line: lastLine, Reason: fmt.Sprintf("end of input inside %s", top.comp.Name)})
		}
		if err != nil {
			return nil, d.fatal(err)
		}
		lastLine = prop.Line
		d.checkOverlong(prop.Line)

		switch prop.Name {
		case "BEGIN":
			f, err := d.begin(stack, prop, &errs)
			if err != nil {
				return nil, d.fatal(err)
			}
			stack = append(stack, f)

		case "END":
			name := strings.ToUpper(prop.RawValue)
			if len(stack) == 0 {
				return nil, d.fatal(&StructuralError{Line: prop.Line, Reason: fmt.Sprintf("END:%s without BEGIN", name)})
			}
			top := stack[len(stack)-1]
			if name != top.comp.Name {
				return nil, d.fatal(&StructuralError{Line: prop.Line, Reason: fmt.Sprintf("END:%s does not close BEGIN:%s on line %d", name, top.comp.Name, top.comp.Line)})
			}
			stack = stack[:len(stack)-1]
			var parent *Component
			if len(stack) > 0 {
				parent = stack[len(stack)-1].comp
			}
			if err := d.end(top, parent, &errs); err != nil {
				return nil, d.fatal(err)
			}
			if len(stack) == 0 {
				cal := &Calendar{Component: top.comp}
				d.cfg.logger.Debug("calendar assembled",
					"components", len(cal.Children),
					"errors", len(errs))
				if len(errs) > 0 {
					return cal, errs
				}
				return cal, nil
			}

		default:
			if len(stack) == 0 {
				return nil, d.fatal(&StructuralError{Line: prop.Line, Reason: fmt.Sprintf("property %s outside of a component", prop.Name)})
			}
			top := stack[len(stack)-1]
			p, err := d.property(top, prop, &errs)
			if err != nil {
				return nil, d.fatal(err)
			}
			top.comp.Properties = append(top.comp.Properties, p)
		}
	}
}

func (d *Decoder) begin(stack []*frame, prop contentline.Property, errs *ErrorList) (*frame, error) {
	name := strings.ToUpper(prop.RawValue)
	if !contentline.IsName(name) {
		return nil, &StructuralError{Line: prop.Line, Reason: fmt.Sprintf("invalid component name %q", prop.RawValue)}
	}
	comp := &Component{Name: name, Line: prop.Line}

	if len(stack) == 0 {
		if name != CompCalendar {
			return nil, &StructuralError{Line: prop.Line, Reason: fmt.Sprintf("BEGIN:%s outside of VCALENDAR", name)}
		}
		return &frame{comp: comp, path: name, seen: map[string]int{}}, nil
	}

	parent := stack[len(stack)-1]
	parent.seen[name]++
	f := &frame{
		comp:   comp,
		path:   fmt.Sprintf("%s/%s[%d]", parent.path, name, parent.seen[name]),
		opaque: parent.opaque,
		seen:   map[string]int{},
	}
	parent.comp.Children = append(parent.comp.Children, comp)

	if f.opaque || KnownComponent(name) {
		return f, nil
	}
	f.opaque = true
	if isExtension(name) {
		return f, nil
	}
	switch d.cfg.strictness.UnknownComponents {
	case PolicyError:
		err := &UnknownComponentError{Path: f.path, Name: name, Line: prop.Line}
		if !d.cfg.strictness.CollectErrors {
			return nil, err
		}
		d.record(err, errs)
	case PolicyWarn:
		d.cfg.logger.Warn("unknown component kept as opaque", "component", name, "path", f.path, "line", prop.Line)
	}
	return f, nil
}

func (d *Decoder) end(f *frame, parent *Component, errs *ErrorList) error {
	d.metrics.Component(f.comp.Name)
	if f.opaque {
		return nil
	}
	if f.comp.Name == CompTimezone {
		if loc := f.comp.Text("X-LIC-LOCATION"); loc != "" {
			d.aliases[f.comp.Text("TZID")] = loc
		}
	}
	verrs := validate(f.comp, parent, f.path)
	if len(verrs) == 0 {
		return nil
	}
	if !d.cfg.strictness.CollectErrors {
		return verrs[0]
	}
	for _, err := range verrs {
		d.record(err, errs)
	}
	return nil
}

func (d *Decoder) property(f *frame, prop contentline.Property, errs *ErrorList) (*Property, error) {
	if f.opaque || isExtension(prop.Name) {
		return opaqueProperty(prop), nil
	}
	def, known := lookupProperty(f.comp.Name, prop.Name)
	if !known || !schemas[f.comp.Name].allows(prop.Name) {
		switch d.cfg.strictness.UnknownProperties {
		case PolicyError:
			err := &UnknownPropertyError{Path: f.path, Property: prop.Name, Line: prop.Line}
			if !d.cfg.strictness.CollectErrors {
				return nil, err
			}
			d.record(err, errs)
		case PolicyWarn:
			d.cfg.logger.Warn("unknown property kept as text", "property", prop.Name, "path", f.path, "line", prop.Line)
		}
		return opaqueProperty(prop), nil
	}

	v, err := d.typed(def, prop)
	if err != nil {
		return nil, annotate(err, prop.Name, prop.Line)
	}
	return &Property{Property: prop, Value: v}, nil
}

func (d *Decoder) typed(def propertyDef, prop contentline.Property) (value.Value, error) {
	t := def.Default
	if param, ok := prop.Params.Get("VALUE"); ok {
		vt, known := value.ParseType(param.Value())
		if !known || !def.allows(vt) {
			return nil, &value.ValueTypeError{
				Expected: def.Default,
				Raw:      prop.RawValue,
				Reason:   fmt.Sprintf("VALUE=%s is not allowed here", param.Value()),
			}
		}
		t = vt
	}
	ctx := value.Context{Params: prop.Params, Resolver: d.resolver}
	switch {
	case def.Geo:
		g, err := value.ParseGeo(prop.RawValue)
		if err != nil {
			return nil, err
		}
		return g, nil
	case def.Status:
		rs, err := value.ParseRequestStatus(prop.RawValue)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case def.Multi:
		l, err := value.ParseList(t, prop.RawValue, ctx)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return value.Parse(t, prop.RawValue, ctx)
}

func (d *Decoder) record(err error, errs *ErrorList) {
	d.metrics.Error(errorKind(err))
	*errs = append(*errs, err)
}

func (d *Decoder) fatal(err error) error {
	d.metrics.Error(errorKind(err))
	return err
}

func (d *Decoder) checkOverlong(line int) {
	if d.lines == nil {
		return
	}
	if n := d.lines.OverlongLines(); n > d.overlong {
		d.overlong = n
		d.cfg.logger.Warn("physical line exceeds 75 octets", "near_line", line, "total", n)
	}
}

// opaqueProperty keeps a property it cannot type as lenient TEXT. Its raw
// value is written back unchanged.
func opaqueProperty(prop contentline.Property) *Property {
	return &Property{
		Property: prop,
		Value:    value.Text(contentline.UnescapeTextLenient(prop.RawValue)),
		verbatim: true,
	}
}

func isExtension(name string) bool {
	return strings.HasPrefix(name, "X-")
}

// annotate fills in the property name and line on value-layer errors.
func annotate(err error, name string, line int) error {
	var (
		vte *value.ValueTypeError
		tze *value.TimezoneResolutionError
		rre *value.RecurrenceRuleError
	)
	switch {
	case errors.As(err, &vte):
		vte.Property, vte.Line = name, line
	case errors.As(err, &tze):
		tze.Property, tze.Line = name, line
	case errors.As(err, &rre):
		rre.Property, rre.Line = name, line
	}
	return err
}

func errorKind(err error) string {
	var (
		lfe *contentline.LineFoldingError
		pge *contentline.PropertyGrammarError
		pe  *contentline.ParameterError
		vte *value.ValueTypeError
		tze *value.TimezoneResolutionError
		rre *value.RecurrenceRuleError
		se  *SchemaError
		ste *StructuralError
		uce *UnknownComponentError
		upe *UnknownPropertyError
	)
	switch {
	case errors.As(err, &lfe):
		return "line_folding"
	case errors.As(err, &pge):
		return "property_grammar"
	case errors.As(err, &pe):
		return "parameter"
	case errors.As(err, &vte):
		return "value_type"
	case errors.As(err, &tze):
		return "timezone_resolution"
	case errors.As(err, &rre):
		return "recurrence_rule"
	case errors.As(err, &se):
		return "schema"
	case errors.As(err, &ste):
		return "structural"
	case errors.As(err, &uce):
		return "unknown_component"
	case errors.As(err, &upe):
		return "unknown_property"
	}
	return "other"
}
