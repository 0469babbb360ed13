package osm

import (
	"log/slog"

	"github.com/MeKo-Tech/zonograph/internal/zone"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/qedus/osmpbf"
)

// IngestZones reads every admin boundary relation out of the source.
// With geometry enabled the member ways and nodes are decoded in two
// further passes, boundaries reconstructed, and relations whose
// boundary cannot be built are dropped.
func IngestZones(src *Source, withGeom bool, logger *slog.Logger) ([]zone.Zone, error) {
	logger.Info("reading pbf", "path", src.Path(), "geometry", withGeom)
	relations, err := src.AdminRelations()
	if err != nil {
		return nil, err
	}
	logger.Info("admin relations read", "count", len(relations))

	if !withGeom {
		zones := make([]zone.Zone, 0, len(relations))
		for _, rel := range relations {
			if z := zone.FromRelation(rel, len(zones)); z != nil {
				zones = append(zones, *z)
			}
		}
		return zones, nil
	}

	ways, nodes, err := loadMembers(src, relations)
	if err != nil {
		return nil, err
	}

	zones := make([]zone.Zone, 0, len(relations))
	for _, rel := range relations {
		z := zone.FromRelation(rel, len(zones))
		if z == nil {
			continue
		}
		z.Boundary = BuildBoundary(rel, ways, nodes)
		if z.Boundary == nil {
			logger.Debug("zone without boundary dropped", "osm_id", z.OSMID, "name", z.Name)
			continue
		}
		z.Center = resolveCenter(rel, nodes, z.Boundary)
		zones = append(zones, *z)
	}
	logger.Info("zones ingested", "count", len(zones))
	return zones, nil
}

// loadMembers decodes the ways referenced by the relations, then the
// nodes referenced by those ways plus any admin_centre member nodes.
func loadMembers(src *Source, relations []*osmpbf.Relation) (map[int64][]int64, map[int64]orb.Point, error) {
	wayIDs := make(map[int64]bool)
	nodeIDs := make(map[int64]bool)
	for _, rel := range relations {
		for _, member := range rel.Members {
			switch member.Type {
			case osmpbf.WayType:
				wayIDs[member.ID] = true
			case osmpbf.NodeType:
				if member.Role == "admin_centre" {
					nodeIDs[member.ID] = true
				}
			}
		}
	}

	ways, err := src.Ways(wayIDs)
	if err != nil {
		return nil, nil, err
	}
	for _, way := range ways {
		for _, id := range way {
			nodeIDs[id] = true
		}
	}

	nodes, err := src.Nodes(nodeIDs)
	if err != nil {
		return nil, nil, err
	}
	return ways, nodes, nil
}

// resolveCenter picks the admin_centre member node when present, and
// falls back to the boundary centroid.
func resolveCenter(rel *osmpbf.Relation, nodes map[int64]orb.Point, boundary orb.MultiPolygon) *orb.Point {
	for _, member := range rel.Members {
		if member.Type == osmpbf.NodeType && member.Role == "admin_centre" {
			if pt, ok := nodes[member.ID]; ok {
				return &pt
			}
		}
	}
	if boundary != nil {
		centroid, _ := planar.CentroidArea(boundary)
		return &centroid
	}
	return nil
}
