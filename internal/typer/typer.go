// Package typer resolves a zone's type from per-country rule files.
// The rule directory follows the libpostal boundary layout: one YAML
// file per ISO country code mapping OSM admin_level values to zone
// types, with optional overrides keyed on OSM ids.
package typer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/zonograph/internal/zone"
	"gopkg.in/yaml.v3"
)

// InvalidCountryError is returned when no rule file exists for the
// resolved country.
type InvalidCountryError struct {
	Country string
}

func (e *InvalidCountryError) Error() string {
	return fmt.Sprintf("no rules for country %q", e.Country)
}

// UnknownLevelError is returned when the zone's admin_level is absent
// or not listed in the country's rules.
type UnknownLevelError struct {
	Level   *uint32
	Country string
}

func (e *UnknownLevelError) Error() string {
	if e.Level == nil {
		return fmt.Sprintf("no admin_level for country %q", e.Country)
	}
	return fmt.Sprintf("admin_level %d not handled for country %q", *e.Level, e.Country)
}

// countryRules is the schema of one rule file.
type countryRules struct {
	AdminLevel map[uint32]zone.ZoneType `yaml:"admin_level"`
	Overrides  overrides                `yaml:"overrides"`
}

type overrides struct {
	ID          idOverrides          `yaml:"id"`
	ContainedBy containedByOverrides `yaml:"contained_by"`
}

// idOverrides forces a type for specific relations.
type idOverrides struct {
	Relation map[string]zone.ZoneType `yaml:"relation"`
}

// containedByOverrides swaps in an alternative admin_level table for
// zones enclosed by specific relations.
type containedByOverrides struct {
	Relation map[string]struct {
		AdminLevel map[uint32]zone.ZoneType `yaml:"admin_level"`
	} `yaml:"relation"`
}

// Typer maps (country, admin_level) to a zone type.
type Typer struct {
	countries map[string]countryRules
}

// New loads every rule file from dir. File names (without extension)
// are ISO country codes.
func New(dir string) (*Typer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules directory %s: %w", dir, err)
	}

	countries := make(map[string]countryRules)
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read rule file %s: %w", name, err)
		}
		var rules countryRules
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("malformed rule file %s: %w", name, err)
		}
		code := strings.ToUpper(strings.TrimSuffix(name, ext))
		countries[code] = rules
	}

	if len(countries) == 0 {
		return nil, fmt.Errorf("no rule files found in %s", dir)
	}
	return &Typer{countries: countries}, nil
}

// HasCountry reports whether rules exist for the country code.
func (t *Typer) HasCountry(code string) bool {
	_, ok := t.countries[strings.ToUpper(code)]
	return ok
}

// TypeOf resolves the zone's type under the given country's rules.
// Override rules on the zone's own OSM id short-circuit everything;
// contained_by overrides match ancestors from the inclusion list and
// swap in their own level table; otherwise the country's plain
// admin_level table applies.
func (t *Typer) TypeOf(z *zone.Zone, country string, inclusions []zone.Index, all []zone.Zone) (zone.ZoneType, error) {
	rules, ok := t.countries[strings.ToUpper(country)]
	if !ok {
		return zone.TypeNone, &InvalidCountryError{Country: country}
	}

	if id, ok := relationID(z.OSMID); ok {
		if forced, ok := rules.Overrides.ID.Relation[id]; ok {
			return forced, nil
		}
	}

	for _, ancestor := range inclusions {
		id, ok := relationID(all[ancestor].OSMID)
		if !ok {
			continue
		}
		contained, ok := rules.Overrides.ContainedBy.Relation[id]
		if !ok {
			continue
		}
		if z.AdminLevel != nil {
			if zt, ok := contained.AdminLevel[*z.AdminLevel]; ok {
				return zt, nil
			}
		}
	}

	if z.AdminLevel == nil {
		return zone.TypeNone, &UnknownLevelError{Country: country}
	}
	zt, ok := rules.AdminLevel[*z.AdminLevel]
	if !ok {
		return zone.TypeNone, &UnknownLevelError{Level: z.AdminLevel, Country: country}
	}
	return zt, nil
}

func relationID(osmID string) (string, bool) {
	return strings.CutPrefix(osmID, "relation:")
}
