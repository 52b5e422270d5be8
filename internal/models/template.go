package models

import "sort"

// PackNameVariable is the conventional variable kept in sync with the active pack.
const PackNameVariable = "pack_name"

// Variables maps placeholder names to their current values. Entries for names no
// longer present in the template are kept.
type Variables map[string]string

// Get returns the value for name and whether an entry exists.
func (v Variables) Get(name string) (string, bool) {
	value, ok := v[name]
	return value, ok
}

// Resolved reports whether name has a non-empty value.
func (v Variables) Resolved(name string) bool {
	return v[name] != ""
}

// Clone returns an independent copy. A nil receiver yields an empty map.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Names returns every entry name in lexical order.
func (v Variables) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Slot is a placeholder detected in the current template together with its value.
type Slot struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Resolved bool   `json:"resolved"`
}
