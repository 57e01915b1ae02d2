package contentline

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Writer emits content lines folded at MaxLineOctets with CRLF endings.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteProperty formats, folds and writes one property.
func (w *Writer) WriteProperty(p Property) error {
	_, err := io.WriteString(w.w, Fold(Format(p))+"\r\n")
	return err
}

// Format renders a property as a single unfolded logical line.
func Format(p Property) string {
	var b strings.Builder
	b.WriteString(p.Name)
	for _, param := range p.Params {
		b.WriteByte(';')
		b.WriteString(param.Name)
		b.WriteByte('=')
		for i, v := range param.Values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteParamValue(v))
		}
	}
	b.WriteByte(':')
	b.WriteString(p.RawValue)
	return b.String()
}

func quoteParamValue(v string) string {
	v = encodeCaret(v)
	if v == "" || strings.ContainsAny(v, ":;,") {
		return `"` + v + `"`
	}
	return v
}

// Fold splits a logical line into physical lines of at most MaxLineOctets
// octets joined by CRLF and a single space. Multi-octet characters are
// never split.
func Fold(line string) string {
	if len(line) <= MaxLineOctets {
		return line
	}
	var b strings.Builder
	limit := MaxLineOctets
	n := 0
	for i := 0; i < len(line); {
		_, size := utf8.DecodeRuneInString(line[i:])
		if n+size > limit {
			b.WriteString("\r\n ")
			// the leading space counts toward the next line
			limit = MaxLineOctets - 1
			n = 0
		}
		b.WriteString(line[i : i+size])
		n += size
		i += size
	}
	return b.String()
}

// Unfold reverses Fold, accepting CRLF or LF followed by a space or tab.
func Unfold(s string) string {
	r := strings.NewReplacer("\r\n ", "", "\r\n\t", "", "\n ", "", "\n\t", "")
	return r.Replace(s)
}
