package contentline

import "fmt"

// LineFoldingError reports a malformed fold or, in strict mode, a physical
// line longer than MaxLineOctets.
type LineFoldingError struct {
	Line   int
	Length int // octets in the offending physical line, zero when not relevant
	Reason string
}

func (e *LineFoldingError) Error() string {
	return fmt.Sprintf("line %d: folding: %s", e.Line, e.Reason)
}

// PropertyGrammarError reports a logical line that does not match
// name *(";" param) ":" value.
type PropertyGrammarError struct {
	Line   int
	Reason string
}

func (e *PropertyGrammarError) Error() string {
	return fmt.Sprintf("line %d: grammar: %s", e.Line, e.Reason)
}

// ParameterError reports a duplicate parameter or a parameter without values.
type ParameterError struct {
	Line   int
	Param  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("line %d: parameter %s: %s", e.Line, e.Param, e.Reason)
}
