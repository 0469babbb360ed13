// Package additional promotes admin-less place nodes into synthetic
// city zones and attaches them to the existing hierarchy.
package additional

import (
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/zonograph/internal/osm"
	"github.com/MeKo-Tech/zonograph/internal/zone"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/qedus/osmpbf"
)

type zoneSpatial struct {
	idx   zone.Index
	bound orb.Bound
}

// Bounds implements the rtreego.Spatial interface.
func (s *zoneSpatial) Bounds() rtreego.Rect {
	const epsilon = 1e-9
	lengths := []float64{s.bound.Max[0] - s.bound.Min[0], s.bound.Max[1] - s.bound.Min[1]}
	for i := range lengths {
		if lengths[i] <= 0 {
			lengths[i] = epsilon
		}
	}
	rect, _ := rtreego.NewRect(rtreego.Point{s.bound.Min[0], s.bound.Min[1]}, lengths)
	return rect
}

func pointRect(p orb.Point) rtreego.Rect {
	const epsilon = 1e-9
	rect, _ := rtreego.NewRect(rtreego.Point{p[0], p[1]}, []float64{epsilon, epsilon})
	return rect
}

// ComputeAdditionalCities re-scans the extract for place nodes (city,
// town, village, hamlet). Nodes not already covered by a City-typed
// zone become synthetic City zones with a point center and no
// boundary, parented on the most specific enclosing zone whose type is
// strictly more general than City.
func ComputeAdditionalCities(zones []zone.Zone, src *osm.Source, logger *slog.Logger) ([]zone.Zone, error) {
	logger.Info("computing additional cities")

	tree := buildZoneTree(zones)

	var added []zone.Zone
	nextID := len(zones)

	err := src.Places(func(node *osmpbf.Node) {
		if city := promotePlace(zones, tree, node, nextID); city != nil {
			added = append(added, *city)
			nextID++
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info("additional cities computed", "count", len(added))
	return added, nil
}

// buildZoneTree indexes every typed zone with a boundary.
func buildZoneTree(zones []zone.Zone) *rtreego.Rtree {
	tree := rtreego.NewTree(2, 25, 50)
	for i := range zones {
		if zones[i].Boundary == nil || zones[i].Type == zone.TypeNone {
			continue
		}
		tree.Insert(&zoneSpatial{idx: zones[i].ID, bound: zones[i].Boundary.Bound()})
	}
	return tree
}

// promotePlace turns one place node into a synthetic City zone, or nil
// when the node already lies inside a mapped city.
func promotePlace(zones []zone.Zone, tree *rtreego.Rtree, node *osmpbf.Node, nextID int) *zone.Zone {
	pt := orb.Point{node.Lon, node.Lat}

	var parent *zone.Zone
	for _, item := range tree.SearchIntersect(pointRect(pt)) {
		candidate := &zones[item.(*zoneSpatial).idx]
		if !candidate.ContainsPoint(pt) {
			continue
		}
		if candidate.Type == zone.City {
			// The place is already part of a mapped city.
			return nil
		}
		// Same eligibility as the hierarchy builder: only administrative
		// zones strictly more general than City can be parents.
		if !candidate.IsAdmin() || !candidate.Type.MoreGeneralThan(zone.City) {
			continue
		}
		if parent == nil || betterParent(candidate, parent) {
			parent = candidate
		}
	}

	city := zone.Zone{
		ID:       nextID,
		OSMID:    fmt.Sprintf("node:%d", node.ID),
		Type:     zone.City,
		Name:     node.Tags["name"],
		ZipCodes: zone.ZipCodesFromTags(node.Tags),
		Center:   &pt,
		Tags:     node.Tags,
		Wikidata: node.Tags["wikidata"],
	}
	if parent != nil {
		idx := parent.ID
		city.Parent = &idx
	}
	return &city
}

// betterParent mirrors the hierarchy tie-break: most specific type,
// then greatest admin_level, then smallest OSM id.
func betterParent(candidate, current *zone.Zone) bool {
	if candidate.Type != current.Type {
		return candidate.Type < current.Type
	}
	cl, pl := uint32(0), uint32(0)
	if candidate.AdminLevel != nil {
		cl = *candidate.AdminLevel
	}
	if current.AdminLevel != nil {
		pl = *current.AdminLevel
	}
	if cl != pl {
		return cl > pl
	}
	return zone.CompareOSMID(candidate.OSMID, current.OSMID) < 0
}
