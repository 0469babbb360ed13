package zone

import "fmt"

// MutableSlice is a read-only view over the zone vector with one index
// carved out. Split hands the caller an exclusive pointer to that zone
// together with this view; the view refuses to resolve the carved-out
// index, so the caller can mutate its zone while reading every sibling.
type MutableSlice struct {
	zones   []Zone
	focused Index
}

// Split returns a shared view over zones and an exclusive handle on
// zones[i].
func Split(zones []Zone, i Index) (*MutableSlice, *Zone) {
	return &MutableSlice{zones: zones, focused: i}, &zones[i]
}

// Get resolves a zone by index. Resolving the focused index is a
// programming error: that zone is being mutated through the exclusive
// handle.
func (s *MutableSlice) Get(idx Index) *Zone {
	if idx == s.focused {
		panic(fmt.Sprintf("zone %d is exclusively held and cannot be read through the view", idx))
	}
	return &s.zones[idx]
}
