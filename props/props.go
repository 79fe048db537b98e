// Package props looks up device properties such as the installed build name.
//
// Every Source returns an empty string when a property cannot be resolved;
// lookups never fail. Platform specific mechanisms (the Android getprop tool,
// a build.prop file, static overrides) are interchangeable behind Source.
package props

// Source resolves a named device property. It returns "" when the property is
// unknown or the lookup failed.
type Source interface {
	Lookup(name string) string
}

// SourceFunc adapts a function to Source.
type SourceFunc func(name string) string

func (f SourceFunc) Lookup(name string) string {
	return f(name)
}

// Static is a fixed set of property values.
type Static map[string]string

func (s Static) Lookup(name string) string {
	return s[name]
}

// Chain asks each source in order and returns the first non-empty value.
type Chain []Source

func (c Chain) Lookup(name string) string {
	for _, src := range c {
		if src == nil {
			continue
		}
		if v := src.Lookup(name); v != "" {
			return v
		}
	}
	return ""
}
