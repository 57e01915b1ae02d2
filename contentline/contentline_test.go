package contentline

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string, opts ReaderOptions) ([]Line, error) {
	t.Helper()
	r, err := NewReader(strings.NewReader(input), opts)
	require.NoError(t, err)
	var lines []Line
	for {
		l, err := r.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, l)
	}
}

func TestReader_Unfolding(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Line
	}{
		{
			name:     "CRLF lines",
			input:    "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n",
			expected: []Line{{1, "BEGIN:VCALENDAR"}, {2, "VERSION:2.0"}},
		},
		{
			name:     "bare LF and missing final newline",
			input:    "BEGIN:VCALENDAR\nVERSION:2.0",
			expected: []Line{{1, "BEGIN:VCALENDAR"}, {2, "VERSION:2.0"}},
		},
		{
			name:     "space and tab continuations",
			input:    "DESCRIPTION:This is a lo\r\n ng description\r\n\t that exists\r\nUID:1\r\n",
			expected: []Line{{1, "DESCRIPTION:This is a long description that exists"}, {4, "UID:1"}},
		},
		{
			name:     "fold splits a multi-octet character",
			input:    "SUMMARY:\xc3\r\n \xbc\r\n",
			expected: []Line{{1, "SUMMARY:ü"}},
		},
		{
			name:     "blank lines are skipped",
			input:    "A:1\r\n\r\n\r\nB:2\r\n",
			expected: []Line{{1, "A:1"}, {4, "B:2"}},
		},
		{
			name:     "BOM is removed",
			input:    "\xef\xbb\xbfBEGIN:VCALENDAR\r\n",
			expected: []Line{{1, "BEGIN:VCALENDAR"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := readAll(t, tt.input, ReaderOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, lines)
		})
	}
}

func TestReader_LeadingContinuation(t *testing.T) {
	_, err := readAll(t, " orphan\r\nA:1\r\n", ReaderOptions{})
	var foldErr *LineFoldingError
	require.ErrorAs(t, err, &foldErr)
	assert.Equal(t, 1, foldErr.Line)
}

func TestReader_LineLength(t *testing.T) {
	long := "DESCRIPTION:" + strings.Repeat("x", 80) + "\r\n"

	t.Run("advisory", func(t *testing.T) {
		r, err := NewReader(strings.NewReader(long), ReaderOptions{})
		require.NoError(t, err)
		l, err := r.Next()
		require.NoError(t, err)
		assert.Len(t, l.Text, 92)
		assert.Equal(t, 1, r.OverlongLines())
	})

	t.Run("enforced", func(t *testing.T) {
		_, err := readAll(t, long, ReaderOptions{StrictLineLength: true})
		var foldErr *LineFoldingError
		require.ErrorAs(t, err, &foldErr)
		assert.Equal(t, 92, foldErr.Length)
	})
}

func TestReader_Reset(t *testing.T) {
	r, err := NewReader(strings.NewReader("A:1\r\n"), ReaderOptions{})
	require.NoError(t, err)
	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, r.Reset(strings.NewReader("B:2\r\n")))
	l, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, Line{Number: 1, Text: "B:2"}, l)
}

func TestReader_Charset(t *testing.T) {
	lines, err := func() ([]Line, error) {
		r, err := NewReader(strings.NewReader("SUMMARY:caf\xe9\r\n"), ReaderOptions{Charset: "ISO-8859-1"})
		if err != nil {
			return nil, err
		}
		l, err := r.Next()
		return []Line{l}, err
	}()
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY:café", lines[0].Text)

	_, err = NewReader(strings.NewReader(""), ReaderOptions{Charset: "no-such-charset"})
	assert.Error(t, err)
}

func TestParseProperty(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected Property
	}{
		{
			name:     "plain",
			line:     "summary:Team meeting",
			expected: Property{Name: "SUMMARY", RawValue: "Team meeting", Line: 1},
		},
		{
			name: "parameters with lists and quotes",
			line: `ATTENDEE;role=REQ-PARTICIPANT;DELEGATED-TO="mailto:a@example.com","mailto:b@example.com";CN="Doe, Jane":mailto:jane@example.com`,
			expected: Property{
				Name: "ATTENDEE",
				Params: Params{
					{Name: "ROLE", Values: []string{"REQ-PARTICIPANT"}},
					{Name: "DELEGATED-TO", Values: []string{"mailto:a@example.com", "mailto:b@example.com"}},
					{Name: "CN", Values: []string{"Doe, Jane"}},
				},
				RawValue: "mailto:jane@example.com",
				Line:     1,
			},
		},
		{
			name:     "value keeps colons and escapes",
			line:     `DESCRIPTION:Meet at 10:30\; bring\, snacks\n`,
			expected: Property{Name: "DESCRIPTION", RawValue: `Meet at 10:30\; bring\, snacks\n`, Line: 1},
		},
		{
			name:     "empty value",
			line:     "X-EMPTY:",
			expected: Property{Name: "X-EMPTY", Line: 1},
		},
		{
			name:     "explicit empty quoted parameter",
			line:     `X-A;X-P="":v`,
			expected: Property{Name: "X-A", Params: Params{{Name: "X-P", Values: []string{""}}}, RawValue: "v", Line: 1},
		},
		{
			name:     "caret encoded parameter",
			line:     `ATTENDEE;CN="George Herman ^'Babe^' Ruth":mailto:babe@example.com`,
			expected: Property{Name: "ATTENDEE", Params: Params{{Name: "CN", Values: []string{`George Herman "Babe" Ruth`}}}, RawValue: "mailto:babe@example.com", Line: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProperty(Line{Number: 1, Text: tt.line})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestParseProperty_Errors(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		grammar   bool
		parameter string
	}{
		{name: "unterminated quote", line: `ATTENDEE;CN="Alice:mailto:alice@example.com`, grammar: true},
		{name: "missing colon", line: "SUMMARY", grammar: true},
		{name: "missing colon after params", line: "SUMMARY;LANGUAGE=en", grammar: true},
		{name: "empty name", line: ":value", grammar: true},
		{name: "missing parameter name", line: "SUMMARY;=x:value", grammar: true},
		{name: "missing equals", line: "SUMMARY;LANGUAGE:value", grammar: true},
		{name: "quote inside unquoted value", line: `SUMMARY;X-A=a"b:value`, grammar: true},
		{name: "junk after quoted value", line: `SUMMARY;X-A="a"b:value`, grammar: true},
		{name: "control character in value", line: "SUMMARY:a\x01b", grammar: true},
		{name: "invalid UTF-8", line: "SUMMARY:\xff", grammar: true},
		{name: "duplicate parameter", line: "SUMMARY;LANGUAGE=en;language=de:x", parameter: "LANGUAGE"},
		{name: "empty parameter value", line: "SUMMARY;LANGUAGE=:x", parameter: "LANGUAGE"},
		{name: "empty element in list", line: "SUMMARY;X-A=a,;X-B=c:x", parameter: "X-A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				_, err := ParseProperty(Line{Number: 7, Text: tt.line})
				require.Error(t, err)
				if tt.grammar {
					var gErr *PropertyGrammarError
					require.ErrorAs(t, err, &gErr)
					assert.Equal(t, 7, gErr.Line)
					return
				}
				var pErr *ParameterError
				require.ErrorAs(t, err, &pErr)
				assert.Equal(t, tt.parameter, pErr.Param)
			})
		})
	}
}

func TestParseProperty_EndsInsideParameter(t *testing.T) {
	lines := []string{
		"ATTENDEE;CN=Alice",
		"ATTENDEE;CN=Alice,Bob",
		"ATTENDEE;CN=",
		"ATTENDEE;CN",
		`ATTENDEE;CN="Alice"`,
		"ATTENDEE;ROLE=CHAIR;CN=Alice",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := ParseProperty(Line{Number: 3, Text: line})
				done <- err
			}()
			select {
			case err := <-done:
				require.Error(t, err)
				var gErr *PropertyGrammarError
				var pErr *ParameterError
				assert.True(t, errors.As(err, &gErr) || errors.As(err, &pErr), "unexpected error %T", err)
			case <-time.After(2 * time.Second):
				t.Fatal("ParseProperty did not return")
			}
		})
	}
}

func TestTextEscaping(t *testing.T) {
	tests := []struct {
		raw  string
		text string
	}{
		{raw: `a\,b\;c\\d\ne`, text: "a,b;c\\d\ne"},
		{raw: `plain`, text: "plain"},
		{raw: `line\Nbreak`, text: "line\nbreak"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := UnescapeText(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)

			back, err := UnescapeText(EscapeText(got))
			require.NoError(t, err)
			assert.Equal(t, tt.text, back)
		})
	}

	_, err := UnescapeText(`bad\x`)
	assert.Error(t, err)
	_, err = UnescapeText(`dangling\`)
	assert.Error(t, err)
	assert.Equal(t, `keep\x`, UnescapeTextLenient(`keep\x`))
	assert.Equal(t, []string{`a\,b`, "c", ""}, SplitText(`a\,b,c,`))
}

func TestFoldRoundTrip(t *testing.T) {
	lines := []string{
		"SUMMARY:short",
		"DESCRIPTION:" + strings.Repeat("abcdefghij", 20),
		"SUMMARY:" + strings.Repeat("日本語", 40),
		"X-EMOJI:" + strings.Repeat("🎉", 30),
	}
	for _, line := range lines {
		folded := Fold(line)
		for _, physical := range strings.Split(folded, "\r\n") {
			assert.LessOrEqual(t, len(physical), MaxLineOctets)
		}
		assert.Equal(t, line, Unfold(folded))

		r, err := NewReader(strings.NewReader(folded+"\r\n"), ReaderOptions{StrictLineLength: true})
		require.NoError(t, err)
		l, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, line, l.Text)
	}
}

func TestFormat_ParseRoundTrip(t *testing.T) {
	p := Property{
		Name: "ATTENDEE",
		Params: Params{
			{Name: "CN", Values: []string{`Doe; "Jane"`}},
			{Name: "MEMBER", Values: []string{"mailto:a@example.com", "mailto:b@example.com"}},
			{Name: "X-EMPTY", Values: []string{""}},
		},
		RawValue: "mailto:jane@example.com",
		Line:     1,
	}
	var b strings.Builder
	require.NoError(t, NewWriter(&b).WriteProperty(p))
	assert.True(t, strings.HasSuffix(b.String(), "\r\n"))

	back, err := ParseProperty(Line{Number: 1, Text: Unfold(strings.TrimSuffix(b.String(), "\r\n"))})
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestParams(t *testing.T) {
	ps := Params{{Name: "TZID", Values: []string{"Europe/Paris"}}}
	assert.Equal(t, "Europe/Paris", ps.Value("tzid"))
	assert.False(t, ps.Has("VALUE"))

	ps = ps.Set("value", "DATE")
	assert.Equal(t, "DATE", ps.Value("VALUE"))
	ps = ps.Set("TZID", "UTC")
	assert.Len(t, ps, 2)
	assert.Equal(t, "UTC", ps.Value("TZID"))

	ps = ps.Del("tzid")
	assert.Len(t, ps, 1)
	assert.False(t, ps.Has("TZID"))
}
