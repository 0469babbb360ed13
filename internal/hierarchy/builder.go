package hierarchy

import (
	"log/slog"

	"github.com/MeKo-Tech/zonograph/internal/zone"
)

// BuildHierarchy assigns every zone its immediate parent: among the
// zones that enclose it, the most specific one whose type is strictly
// more general than its own. Ties are broken by greatest admin_level
// (deeper in the OSM hierarchy means more specific), then by smallest
// OSM id. Zones with no eligible candidate stay roots.
//
// The parent graph is acyclic by construction: a parent's type is
// always strictly more general than its child's.
func BuildHierarchy(zones []zone.Zone, inclusions [][]zone.Index, logger *slog.Logger) {
	logger.Info("building zone hierarchy")

	wired := 0
	for i := range zones {
		z := &zones[i]
		if !z.IsAdmin() {
			continue
		}

		var parent *zone.Zone
		for _, candidate := range inclusions[i] {
			c := &zones[candidate]
			if !c.IsAdmin() || !c.Type.MoreGeneralThan(z.Type) {
				continue
			}
			if parent == nil || better(c, parent) {
				parent = c
			}
		}
		if parent != nil {
			idx := parent.ID
			z.SetParent(&idx)
			wired++
		}
	}
	logger.Info("hierarchy built", "zones_with_parent", wired)
}

// better reports whether candidate beats current as a parent: more
// specific type first, then greater admin_level, then smaller OSM id.
func better(candidate, current *zone.Zone) bool {
	if candidate.Type != current.Type {
		return candidate.Type < current.Type
	}
	cl, pl := level(candidate), level(current)
	if cl != pl {
		return cl > pl
	}
	return zone.CompareOSMID(candidate.OSMID, current.OSMID) < 0
}

func level(z *zone.Zone) uint32 {
	if z.AdminLevel == nil {
		return 0
	}
	return *z.AdminLevel
}
