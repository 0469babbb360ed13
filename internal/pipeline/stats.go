package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MeKo-Tech/zonograph/internal/zone"
)

// Stats aggregates what happened during a build: how many zones of
// each type survived, and how many were lost to missing countries,
// missing rules, or unhandled admin levels.
type Stats struct {
	ZoneTypeCounts              map[string]int            `json:"zone_type_counts"`
	ZoneWithoutCountry          int                       `json:"zone_without_country"`
	ZoneWithUnknownCountryRules map[string]int            `json:"zone_with_unknown_country_rules"`
	UnhandledAdminLevel         map[string]map[uint32]int `json:"unhandled_admin_level"`
	GeometryFailures            int                       `json:"geometry_failures"`
}

// NewStats returns empty statistics with all maps allocated.
func NewStats() Stats {
	return Stats{
		ZoneTypeCounts:              map[string]int{},
		ZoneWithUnknownCountryRules: map[string]int{},
		UnhandledAdminLevel:         map[string]map[uint32]int{},
	}
}

// CountUnknownCountryRules records a zone whose country has no rule file.
func (s *Stats) CountUnknownCountryRules(country string) {
	s.ZoneWithUnknownCountryRules[country]++
}

// CountUnhandledLevel records a zone whose admin_level has no rule in
// its country. An absent level is bucketed as 0.
func (s *Stats) CountUnhandledLevel(country string, level *uint32) {
	l := uint32(0)
	if level != nil {
		l = *level
	}
	if s.UnhandledAdminLevel[country] == nil {
		s.UnhandledAdminLevel[country] = map[uint32]int{}
	}
	s.UnhandledAdminLevel[country][l]++
}

// Compute fills in the per-type zone counts from the final vector.
func (s *Stats) Compute(zones []zone.Zone) {
	for i := range zones {
		s.ZoneTypeCounts[zones[i].Type.String()]++
	}
}

// String renders the statistics for the CLI summary.
func (s Stats) String() string {
	var b strings.Builder

	types := make([]string, 0, len(s.ZoneTypeCounts))
	for t := range s.ZoneTypeCounts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "  %s: %d\n", t, s.ZoneTypeCounts[t])
	}

	fmt.Fprintf(&b, "  zones without country: %d\n", s.ZoneWithoutCountry)

	countries := make([]string, 0, len(s.ZoneWithUnknownCountryRules))
	for c := range s.ZoneWithUnknownCountryRules {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	for _, c := range countries {
		fmt.Fprintf(&b, "  zones with unknown rules for %s: %d\n", c, s.ZoneWithUnknownCountryRules[c])
	}

	countries = countries[:0]
	for c := range s.UnhandledAdminLevel {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	for _, c := range countries {
		levels := make([]int, 0, len(s.UnhandledAdminLevel[c]))
		for l := range s.UnhandledAdminLevel[c] {
			levels = append(levels, int(l))
		}
		sort.Ints(levels)
		for _, l := range levels {
			fmt.Fprintf(&b, "  unhandled admin_level %d in %s: %d\n", l, c, s.UnhandledAdminLevel[c][uint32(l)])
		}
	}

	if s.GeometryFailures > 0 {
		fmt.Fprintf(&b, "  geometry failures: %d\n", s.GeometryFailures)
	}
	return b.String()
}
