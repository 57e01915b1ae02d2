package contentline

import "strings"

// Param is a property parameter. Values is never empty for parsed input.
type Param struct {
	Name   string
	Values []string
}

// Value returns the first value, or "" if there is none.
func (p Param) Value() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

// Params keeps parameters in source order. Names are unique and uppercase.
type Params []Param

// Get looks up a parameter by name, case-insensitively.
func (ps Params) Get(name string) (Param, bool) {
	for _, p := range ps {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Param{}, false
}

// Value returns the first value of the named parameter, or "".
func (ps Params) Value(name string) string {
	p, _ := ps.Get(name)
	return p.Value()
}

// Has reports whether the named parameter is present.
func (ps Params) Has(name string) bool {
	_, ok := ps.Get(name)
	return ok
}

// Set replaces the named parameter, appending it if absent.
func (ps Params) Set(name string, values ...string) Params {
	name = strings.ToUpper(name)
	for i := range ps {
		if ps[i].Name == name {
			ps[i].Values = values
			return ps
		}
	}
	return append(ps, Param{Name: name, Values: values})
}

// Del removes the named parameter.
func (ps Params) Del(name string) Params {
	if !ps.Has(name) {
		return ps
	}
	out := make(Params, 0, len(ps))
	for _, p := range ps {
		if !strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out
}
