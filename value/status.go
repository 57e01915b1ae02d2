package value

import (
	"strings"

	"github.com/cyp0633/libical/contentline"
)

// RequestStatus is the structured REQUEST-STATUS value
// "code;description[;data]". Description and Data are unescaped text.
type RequestStatus struct {
	Code        string
	Description string
	Data        string
}

func (RequestStatus) Type() Type { return TypeText }
func (RequestStatus) isValue()   {}

// ParseRequestStatus parses a REQUEST-STATUS value. Semicolons separate the
// parts; an escaped one belongs to the text around it.
func ParseRequestStatus(s string) (RequestStatus, error) {
	parts := splitStructured(s, 3)
	if len(parts) < 2 {
		return RequestStatus{}, typeErr(TypeText, s, "REQUEST-STATUS needs code;description")
	}
	if !validStatusCode(parts[0]) {
		return RequestStatus{}, typeErr(TypeText, s, "bad status code %q", parts[0])
	}
	rs := RequestStatus{Code: parts[0]}
	var err error
	if rs.Description, err = contentline.UnescapeText(parts[1]); err != nil {
		return RequestStatus{}, typeErr(TypeText, s, "%v", err)
	}
	if len(parts) == 3 {
		if rs.Data, err = contentline.UnescapeText(parts[2]); err != nil {
			return RequestStatus{}, typeErr(TypeText, s, "%v", err)
		}
	}
	return rs, nil
}

func (rs RequestStatus) String() string {
	out := rs.Code + ";" + contentline.EscapeText(rs.Description)
	if rs.Data != "" {
		out += ";" + contentline.EscapeText(rs.Data)
	}
	return out
}

// splitStructured splits on unescaped semicolons into at most n parts.
func splitStructured(s string, n int) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s) && len(parts) < n-1; i++ {
		switch s[i] {
		case '\\':
			i++
		case ';':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// validStatusCode accepts 1*DIGIT 1*2("." 1*DIGIT).
func validStatusCode(code string) bool {
	fields := strings.Split(code, ".")
	if len(fields) < 2 || len(fields) > 3 {
		return false
	}
	for _, f := range fields {
		if !allDigits(f) {
			return false
		}
	}
	return true
}
