package value

import "time"

// Resolver maps a TZID to a location. Implementations live outside this
// package; see package tz.
type Resolver interface {
	Location(tzid string) (*time.Location, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(tzid string) (*time.Location, error)

func (f ResolverFunc) Location(tzid string) (*time.Location, error) { return f(tzid) }

// ResolveOffset returns the UTC offset in effect for tzid at instant.
func ResolveOffset(r Resolver, tzid string, instant time.Time) (UTCOffset, error) {
	loc, err := resolve(r, tzid)
	if err != nil {
		return UTCOffset{}, err
	}
	_, off := instant.In(loc).Zone()
	return UTCOffset{Seconds: off}, nil
}

func resolve(r Resolver, tzid string) (*time.Location, error) {
	if r == nil {
		return nil, &TimezoneResolutionError{TZID: tzid, Err: ErrNoResolver}
	}
	loc, err := r.Location(tzid)
	if err != nil {
		return nil, &TimezoneResolutionError{TZID: tzid, Err: err}
	}
	if loc == nil {
		return nil, &TimezoneResolutionError{TZID: tzid}
	}
	return loc, nil
}
