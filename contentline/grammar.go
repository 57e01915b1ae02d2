package contentline

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Property is one parsed content line. RawValue is exactly the text after
// the first unquoted colon; no unescaping has been applied.
type Property struct {
	Name     string
	Params   Params
	RawValue string
	Line     int
}

const eof = -1

// stateFn is one step of the grammar state machine.
type stateFn func(*scanner) stateFn

type scanner struct {
	line  Line
	input string
	start int
	pos   int
	width int

	prop  Property
	param *Param
	err   error
}

// ParseProperty splits a logical line into name, parameters and raw value.
//
//	contentline = name *(";" param ) ":" value
//	param       = param-name "=" param-value *("," param-value)
func ParseProperty(l Line) (Property, error) {
	if !utf8.ValidString(l.Text) {
		return Property{}, &PropertyGrammarError{Line: l.Number, Reason: "line is not valid UTF-8"}
	}
	s := &scanner{line: l, input: l.Text}
	s.prop.Line = l.Number
	for state := scanName; state != nil; {
		state = state(s)
	}
	if s.err != nil {
		return Property{}, s.err
	}
	return s.prop, nil
}

func (s *scanner) next() rune {
	if s.pos >= len(s.input) {
		s.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(s.input[s.pos:])
	s.width = w
	s.pos += w
	return r
}

func (s *scanner) backup() {
	s.pos -= s.width
}

func (s *scanner) token() string {
	t := s.input[s.start:s.pos]
	s.start = s.pos
	return t
}

func (s *scanner) skip() {
	s.start = s.pos
}

func (s *scanner) grammarf(format string, args ...any) stateFn {
	s.err = &PropertyGrammarError{Line: s.line.Number, Reason: fmt.Sprintf(format, args...)}
	return nil
}

func (s *scanner) paramf(name, format string, args ...any) stateFn {
	s.err = &ParameterError{Line: s.line.Number, Param: name, Reason: fmt.Sprintf(format, args...)}
	return nil
}

// scanName reads the property name.
//
//	name       = iana-token / x-name
//	iana-token = 1*(ALPHA / DIGIT / "-")
func scanName(s *scanner) stateFn {
	for isName(s.next()) {
	}
	s.backup()
	name := s.token()
	if name == "" {
		return s.grammarf("missing property name")
	}
	s.prop.Name = strings.ToUpper(name)
	return scanDelimiter
}

// scanDelimiter expects ";" or ":" after a name or parameter value.
func scanDelimiter(s *scanner) stateFn {
	switch r := s.next(); r {
	case ';':
		s.skip()
		return scanParamName
	case ':':
		s.skip()
		return scanValue
	case eof:
		return s.grammarf("missing \":\" before value of %s", s.prop.Name)
	default:
		return s.grammarf("unexpected character %#U after %s", r, s.prop.Name)
	}
}

func scanParamName(s *scanner) stateFn {
	for isName(s.next()) {
	}
	s.backup()
	name := strings.ToUpper(s.token())
	if name == "" {
		return s.grammarf("missing parameter name in %s", s.prop.Name)
	}
	if s.next() != '=' {
		return s.grammarf("missing \"=\" after parameter %s", name)
	}
	s.skip()
	if s.prop.Params.Has(name) {
		return s.paramf(name, "duplicate parameter")
	}
	s.prop.Params = append(s.prop.Params, Param{Name: name})
	s.param = &s.prop.Params[len(s.prop.Params)-1]
	return scanParamValue
}

// scanParamValue reads one value of the current parameter.
//
//	param-value   = paramtext / quoted-string
//	quoted-string = DQUOTE *QSAFE-CHAR DQUOTE
func scanParamValue(s *scanner) stateFn {
	name := s.param.Name
	if r := s.next(); r == '"' {
		s.skip()
		for {
			r := s.next()
			if r == '"' {
				break
			}
			if r == eof {
				return s.grammarf("unterminated quoted value for parameter %s", name)
			}
			if !isQSafeChar(r) {
				return s.grammarf("invalid character %#U in quoted value of parameter %s", r, name)
			}
		}
		s.backup()
		v := s.token()
		s.next()
		s.skip()
		s.param.Values = append(s.param.Values, decodeCaret(v))
		return scanParamSeparator
	}
	s.backup()

	for {
		r := s.next()
		if isSafeChar(r) {
			continue
		}
		if r == '"' {
			return s.grammarf("unexpected quote inside value of parameter %s", name)
		}
		if r != eof && r != ',' && r != ';' && r != ':' {
			return s.grammarf("invalid character %#U in value of parameter %s", r, name)
		}
		s.backup()
		break
	}
	v := s.token()
	if v == "" {
		return s.paramf(name, "empty value")
	}
	s.param.Values = append(s.param.Values, decodeCaret(v))
	return scanParamSeparator
}

func scanParamSeparator(s *scanner) stateFn {
	switch r := s.next(); r {
	case ',':
		s.skip()
		return scanParamValue
	case ';':
		s.skip()
		return scanParamName
	case ':':
		s.skip()
		return scanValue
	case eof:
		return s.grammarf("missing \":\" before value of %s", s.prop.Name)
	default:
		return s.grammarf("unexpected character %#U after value of parameter %s", r, s.param.Name)
	}
}

// scanValue takes the rest of the line.
//
//	value      = *VALUE-CHAR
//	VALUE-CHAR = WSP / %x21-7E / NON-US-ASCII
func scanValue(s *scanner) stateFn {
	for {
		r := s.next()
		if r == eof {
			break
		}
		if r != '\t' && unicode.IsControl(r) {
			return s.grammarf("control character %#U in value of %s", r, s.prop.Name)
		}
	}
	s.prop.RawValue = s.token()
	return nil
}

func isName(r rune) bool {
	return r == '-' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// IsName reports whether s is a valid iana-token or x-name.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isName(r) {
			return false
		}
	}
	return true
}

func isQSafeChar(r rune) bool {
	if r == eof {
		return false
	}
	return r != '"' && (r == '\t' || !unicode.IsControl(r))
}

func isSafeChar(r rune) bool {
	return isQSafeChar(r) && r != ';' && r != ':' && r != ','
}

// decodeCaret applies RFC 6868 parameter value encoding.
func decodeCaret(v string) string {
	if !strings.Contains(v, "^") {
		return v
	}
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] == '^' && i+1 < len(v) {
			switch v[i+1] {
			case 'n', 'N':
				b.WriteByte('\n')
				i++
				continue
			case '\'':
				b.WriteByte('"')
				i++
				continue
			case '^':
				b.WriteByte('^')
				i++
				continue
			}
		}
		b.WriteByte(v[i])
	}
	return b.String()
}

func encodeCaret(v string) string {
	if !strings.ContainsAny(v, "^\n\"") {
		return v
	}
	r := strings.NewReplacer("^", "^^", "\n", "^n", "\"", "^'")
	return r.Replace(v)
}
