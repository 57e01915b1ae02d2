// Package tz provides timezone resolvers for value.Resolver backed by the
// Go zone database, fixed maps, or a chain of both.
package tz

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cyp0633/libical/value"
)

// ErrUnknownZone is returned when no resolver knows a TZID.
var ErrUnknownZone = errors.New("unknown time zone")

// System resolves TZIDs through time.LoadLocation and caches the result.
type System struct {
	cache  *LocationCache
	logger *slog.Logger
}

// Option configures a System resolver.
type Option func(*System)

// WithLogger sets the logger for the resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(s *System) {
		s.logger = logger
	}
}

// WithCacheConfig replaces the default cache configuration.
func WithCacheConfig(config CacheConfig) Option {
	return func(s *System) {
		s.cache = NewLocationCache(config)
	}
}

// NewSystem creates a resolver over the host zone database.
func NewSystem(opts ...Option) *System {
	s := &System{
		cache:  NewLocationCache(DefaultCacheConfig),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location implements value.Resolver. Vendor-prefixed identifiers such as
// /mozilla.org/20050126_1/America/New_York fall back to their Olson suffix,
// and Windows names such as "W. Europe Standard Time" to their IANA zone.
func (s *System) Location(tzid string) (*time.Location, error) {
	if e, ok := s.cache.Get(tzid); ok {
		return e.Location, e.Err
	}
	loc, err := s.load(tzid)
	s.cache.Set(tzid, loc, err)
	return loc, err
}

func (s *System) load(tzid string) (*time.Location, error) {
	if tzid == "" || tzid == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, tzid)
	}
	loc, err := time.LoadLocation(tzid)
	if err == nil {
		return loc, nil
	}
	if strings.HasPrefix(tzid, "/") {
		parts := strings.Split(strings.Trim(tzid, "/"), "/")
		for i := 1; i < len(parts); i++ {
			candidate := strings.Join(parts[i:], "/")
			if l, lerr := time.LoadLocation(candidate); lerr == nil {
				s.logger.Debug("resolved vendor TZID", "tzid", tzid, "location", candidate)
				return l, nil
			}
		}
	}
	if iana, ok := WindowsZone(tzid); ok {
		if l, lerr := time.LoadLocation(iana); lerr == nil {
			s.logger.Debug("resolved Windows TZID", "tzid", tzid, "location", iana)
			return l, nil
		}
	}
	s.logger.Warn("unknown TZID", "tzid", tzid, "error", err)
	return nil, fmt.Errorf("%w: %q", ErrUnknownZone, tzid)
}

// Stats exposes the cache statistics.
func (s *System) Stats() CacheStats {
	return s.cache.Stats()
}

// Static resolves from a fixed map.
type Static map[string]*time.Location

// Location implements value.Resolver.
func (m Static) Location(tzid string) (*time.Location, error) {
	if loc, ok := m[tzid]; ok {
		return loc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownZone, tzid)
}

// Chain tries each resolver in order and returns the first success.
type Chain []value.Resolver

// Location implements value.Resolver.
func (c Chain) Location(tzid string) (*time.Location, error) {
	var errs []error
	for _, r := range c {
		loc, err := r.Location(tzid)
		if err == nil && loc != nil {
			return loc, nil
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, tzid)
	}
	return nil, errors.Join(errs...)
}

// Aliases maps TZIDs to other identifiers before asking Base.
type Aliases struct {
	Base    value.Resolver
	Aliases map[string]string
}

// Location implements value.Resolver. The TZID itself is tried first.
func (a Aliases) Location(tzid string) (*time.Location, error) {
	loc, err := a.Base.Location(tzid)
	if err == nil {
		return loc, nil
	}
	if alias, ok := a.Aliases[tzid]; ok && alias != tzid {
		if l, aerr := a.Base.Location(alias); aerr == nil {
			return l, nil
		}
	}
	return nil, err
}
