// Package contentline implements the lowest layer of RFC 5545: turning a byte
// stream into unfolded logical lines and splitting each line into a property
// name, its parameters and a raw value.
package contentline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxLineOctets is the longest physical line a producer may emit, excluding
// the line break.
const MaxLineOctets = 75

// Line is one unfolded logical line.
type Line struct {
	Number int // physical line where the logical line starts, 1-based
	Text   string
}

// ReaderOptions controls how a Reader treats its input.
type ReaderOptions struct {
	// StrictLineLength turns physical lines longer than MaxLineOctets into a
	// LineFoldingError. When false they are only counted.
	StrictLineLength bool
	// Charset is the declared encoding of the stream. Empty means UTF-8.
	Charset string
}

type physical struct {
	number int
	text   string
}

// Reader yields unfolded logical lines from a stream. It accepts CRLF and
// bare LF line endings and skips blank lines.
type Reader struct {
	opts     ReaderOptions
	src      *bufio.Reader
	lineNo   int
	peeked   *physical
	eof      bool
	overlong int
}

// NewReader returns a Reader over r. A leading byte order mark is consumed.
// It fails only when opts.Charset names an encoding that cannot be decoded.
func NewReader(r io.Reader, opts ReaderOptions) (*Reader, error) {
	lr := &Reader{opts: opts}
	if err := lr.Reset(r); err != nil {
		return nil, err
	}
	return lr, nil
}

// Reset discards all state and starts reading from r.
func (r *Reader) Reset(src io.Reader) error {
	decoded, err := decode(src, r.opts.Charset)
	if err != nil {
		return err
	}
	r.src = bufio.NewReader(decoded)
	r.lineNo = 0
	r.peeked = nil
	r.eof = false
	r.overlong = 0
	return nil
}

// OverlongLines reports how many physical lines exceeded MaxLineOctets so far.
func (r *Reader) OverlongLines() int {
	return r.overlong
}

// Next returns the next logical line, or io.EOF when the input is exhausted.
func (r *Reader) Next() (Line, error) {
	for {
		first, err := r.read()
		if err != nil {
			return Line{}, err
		}
		if first.text == "" {
			continue
		}
		if isFold(first.text[0]) {
			return Line{}, &LineFoldingError{Line: first.number, Reason: "continuation line without a preceding content line"}
		}

		var b strings.Builder
		b.WriteString(first.text)
		for {
			next, err := r.peek()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return Line{}, err
			}
			if next.text == "" || !isFold(next.text[0]) {
				break
			}
			r.peeked = nil
			b.WriteString(next.text[1:])
		}
		return Line{Number: first.number, Text: b.String()}, nil
	}
}

func (r *Reader) peek() (*physical, error) {
	if r.peeked != nil {
		return r.peeked, nil
	}
	p, err := r.readPhysical()
	if err != nil {
		return nil, err
	}
	r.peeked = &p
	return r.peeked, nil
}

func (r *Reader) read() (physical, error) {
	if r.peeked != nil {
		p := *r.peeked
		r.peeked = nil
		return p, nil
	}
	return r.readPhysical()
}

func (r *Reader) readPhysical() (physical, error) {
	if r.eof {
		return physical{}, io.EOF
	}
	s, err := r.src.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return physical{}, fmt.Errorf("contentline: read: %w", err)
		}
		r.eof = true
		if s == "" {
			return physical{}, io.EOF
		}
	}
	r.lineNo++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")

	if len(s) > MaxLineOctets {
		if r.opts.StrictLineLength {
			return physical{}, &LineFoldingError{
				Line:   r.lineNo,
				Length: len(s),
				Reason: fmt.Sprintf("physical line is %d octets, limit is %d", len(s), MaxLineOctets),
			}
		}
		r.overlong++
	}
	return physical{number: r.lineNo, text: s}, nil
}

func isFold(c byte) bool {
	return c == ' ' || c == '\t'
}

// decode wraps src so that it yields UTF-8. A BOM always wins over the
// declared charset.
func decode(src io.Reader, charset string) (io.Reader, error) {
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		return transform.NewReader(src, unicode.BOMOverride(transform.Nop)), nil
	}
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("contentline: unknown charset %q: %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("contentline: charset %q is not supported", charset)
	}
	return transform.NewReader(src, unicode.BOMOverride(enc.NewDecoder())), nil
}
