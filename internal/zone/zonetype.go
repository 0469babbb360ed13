package zone

import (
	"encoding/json"
	"fmt"
)

// ZoneType classifies an administrative zone, ordered from the most
// specific (Suburb) to the most general (NonAdministrative).
type ZoneType int

const (
	// TypeNone marks a zone that has not been typed (yet).
	TypeNone ZoneType = iota
	Suburb
	CityDistrict
	City
	StateDistrict
	State
	CountryRegion
	Country
	NonAdministrative
)

var typeNames = map[ZoneType]string{
	Suburb:            "suburb",
	CityDistrict:      "city_district",
	City:              "city",
	StateDistrict:     "state_district",
	State:             "state",
	CountryRegion:     "country_region",
	Country:           "country",
	NonAdministrative: "non_administrative",
}

// ParseZoneType converts a lower-snake-case type name (the form used in
// rule files and in serialized zones) back to a ZoneType.
func ParseZoneType(s string) (ZoneType, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return TypeNone, fmt.Errorf("unknown zone type %q", s)
}

// String returns the lower-snake-case name, or "none" for an untyped zone.
func (t ZoneType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "none"
}

// MoreGeneralThan reports whether t is strictly more general than other
// in the type order (Country is more general than City, etc.).
func (t ZoneType) MoreGeneralThan(other ZoneType) bool {
	return t > other
}

// IsAdmin reports whether the type takes part in the administrative
// hierarchy. Untyped and non-administrative zones do not.
func (t ZoneType) IsAdmin() bool {
	return t != TypeNone && t != NonAdministrative
}

// MarshalJSON encodes the type as its snake-case name, or null when unset.
func (t ZoneType) MarshalJSON() ([]byte, error) {
	if t == TypeNone {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts a snake-case type name or null.
func (t *ZoneType) UnmarshalJSON(data []byte) error {
	var name *string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name == nil {
		*t = TypeNone
		return nil
	}
	parsed, err := ParseZoneType(*name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML accepts a snake-case type name, as used in rule files.
func (t *ZoneType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseZoneType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
