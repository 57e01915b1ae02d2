package ical

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/cyp0633/libical/tz"
	"github.com/cyp0633/libical/value"
)

// Policy says what the decoder does with input it does not recognise.
type Policy int

const (
	// PolicyError rejects the input.
	PolicyError Policy = iota
	// PolicyWarn keeps the input as an opaque value and logs it.
	PolicyWarn
	// PolicyIgnore keeps the input as an opaque value silently.
	PolicyIgnore
)

var policyNames = map[Policy]string{
	PolicyError:  "error",
	PolicyWarn:   "warn",
	PolicyIgnore: "ignore",
}

func (p Policy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy parses "error", "warn" or "ignore".
func ParsePolicy(s string) (Policy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown policy %q", s)
}

func (p Policy) MarshalYAML() (any, error) { return p.String(), nil }

func (p *Policy) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParsePolicy(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*p = parsed
	return nil
}

// LineLengthMode says whether the 75-octet physical line limit is enforced.
type LineLengthMode int

const (
	// LineLengthAdvisory counts and logs overlong lines.
	LineLengthAdvisory LineLengthMode = iota
	// LineLengthEnforced fails on the first overlong line.
	LineLengthEnforced
)

func (m LineLengthMode) String() string {
	if m == LineLengthEnforced {
		return "enforced"
	}
	return "advisory"
}

func (m LineLengthMode) MarshalYAML() (any, error) { return m.String(), nil }

func (m *LineLengthMode) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(node.Value) {
	case "advisory":
		*m = LineLengthAdvisory
	case "enforced":
		*m = LineLengthEnforced
	default:
		return fmt.Errorf("line %d: unknown line length mode %q", node.Line, node.Value)
	}
	return nil
}

// Strictness selects how forgiving the decoder is.
type Strictness struct {
	UnknownProperties Policy         `yaml:"unknown_properties"`
	UnknownComponents Policy         `yaml:"unknown_components"`
	LineLength        LineLengthMode `yaml:"line_length"`
	// CollectErrors makes schema and unknown-name errors non-fatal. They are
	// returned as an ErrorList next to the assembled calendar.
	CollectErrors bool `yaml:"collect_errors"`
}

// DefaultStrictness warns on unknown properties, rejects unknown
// components, and treats the line limit as advisory.
func DefaultStrictness() Strictness {
	return Strictness{
		UnknownProperties: PolicyWarn,
		UnknownComponents: PolicyError,
		LineLength:        LineLengthAdvisory,
	}
}

// LoadStrictness reads a YAML strictness document. Keys that are absent
// keep their default. An empty document yields DefaultStrictness.
func LoadStrictness(r io.Reader) (Strictness, error) {
	s := DefaultStrictness()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return DefaultStrictness(), nil
		}
		return Strictness{}, fmt.Errorf("failed to load strictness: %w", err)
	}
	return s, nil
}

// defaultResolver is shared so its location cache survives across decoders.
var defaultResolver = tz.NewSystem()

type config struct {
	strictness Strictness
	resolver   value.Resolver
	logger     *slog.Logger
	registerer prometheus.Registerer
	charset    string
}

func newConfig(opts []Option) config {
	c := config{
		strictness: DefaultStrictness(),
		resolver:   defaultResolver,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures a Decoder.
type Option func(*config)

// WithStrictness replaces the strictness settings.
func WithStrictness(s Strictness) Option {
	return func(c *config) {
		c.strictness = s
	}
}

// WithCollectErrors turns collect-all-errors mode on or off without
// touching the other strictness settings.
func WithCollectErrors(collect bool) Option {
	return func(c *config) {
		c.strictness.CollectErrors = collect
	}
}

// WithResolver sets the timezone resolver used for TZID parameters. A nil
// resolver makes every TZID fail to resolve.
func WithResolver(r value.Resolver) Option {
	return func(c *config) {
		c.resolver = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegisterer enables prometheus counters on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithCharset declares the input encoding by its IANA name.
func WithCharset(charset string) Option {
	return func(c *config) {
		c.charset = charset
	}
}
