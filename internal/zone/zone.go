// Package zone holds the administrative zone model: the zone record
// itself, its type enumeration, geometric containment, label
// computation, and the split-view accessor used while labelling.
package zone

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/qedus/osmpbf"
)

// Index is a dense handle into the zone vector. It is only valid until
// the final prune step; afterwards zones are identified by OSMID.
type Index = int

// Zone is one administrative (or place-derived) zone.
type Zone struct {
	ID         Index
	OSMID      string // "relation:<N>" or "node:<N>"
	AdminLevel *uint32
	Type       ZoneType // TypeNone until the typer assigns one
	Name       string
	Label      string
	ZipCodes   []string
	Center     *orb.Point
	Boundary   orb.MultiPolygon // nil when ingested without geometry
	Tags       map[string]string
	Parent     *Index
	Wikidata   string
}

// IsAdmin reports whether the zone takes part in the administrative
// hierarchy (it has a type, and that type is not NonAdministrative).
func (z *Zone) IsAdmin() bool {
	return z.Type.IsAdmin()
}

// SetParent records the immediate parent, or clears it.
func (z *Zone) SetParent(idx *Index) {
	z.Parent = idx
}

// FromRelation builds a zone from a decoded admin relation, without
// geometry. Relations without a name tag are rejected.
func FromRelation(rel *osmpbf.Relation, idx Index) *Zone {
	name, ok := rel.Tags["name"]
	if !ok {
		slog.Warn("administrative region without name, skipped", "relation", rel.ID)
		return nil
	}

	var level *uint32
	if raw, ok := rel.Tags["admin_level"]; ok {
		if parsed, err := strconv.ParseUint(raw, 10, 32); err == nil {
			l := uint32(parsed)
			level = &l
		}
	}

	return &Zone{
		ID:         idx,
		OSMID:      fmt.Sprintf("relation:%d", rel.ID),
		AdminLevel: level,
		Name:       name,
		ZipCodes:   ZipCodesFromTags(rel.Tags),
		Tags:       rel.Tags,
		Wikidata:   rel.Tags["wikidata"],
	}
}

// ZipCodesFromTags extracts the zone's zip codes from addr:postcode
// (falling back to postal_code), split on ';', de-duplicated and sorted.
func ZipCodesFromTags(tags map[string]string) []string {
	raw, ok := tags["addr:postcode"]
	if !ok {
		raw = tags["postal_code"]
	}

	seen := make(map[string]bool)
	zips := []string{}
	for _, z := range strings.Split(raw, ";") {
		if z == "" || seen[z] {
			continue
		}
		seen[z] = true
		zips = append(zips, z)
	}
	sort.Strings(zips)
	return zips
}

// geomFailures counts containment tests that could not be evaluated
// because one side had degenerate geometry. Reset at pipeline start,
// folded into the statistics at the end.
var geomFailures atomic.Int64

// ResetGeometryFailures clears the process-wide failure counter.
func ResetGeometryFailures() { geomFailures.Store(0) }

// GeometryFailures returns the number of containment tests skipped on
// degenerate geometry since the last reset.
func GeometryFailures() int64 { return geomFailures.Load() }

// Contains reports whether z covers other: other's envelope lies within
// z's, and every vertex of other's rings is a point of z's boundary,
// boundary included. Only vertices are tested; an edge of other that
// leaves z between two covered vertices is not detected. A polygon
// covers its own boundary even though it does not strictly contain it,
// which is the relation the hierarchy needs. Zones without boundaries
// never contain anything; degenerate geometry is logged and treated as
// not contained.
func (z *Zone) Contains(other *Zone) bool {
	if z.Boundary == nil || other.Boundary == nil {
		return false
	}
	covered, err := covers(z.Boundary, other.Boundary)
	if err != nil {
		geomFailures.Add(1)
		slog.Info("containment test skipped", "zone", z.OSMID, "other", other.OSMID, "error", err)
		return false
	}
	return covered
}

// ContainsPoint reports whether the point lies inside the zone's
// boundary, boundary included.
func (z *Zone) ContainsPoint(p orb.Point) bool {
	if z.Boundary == nil {
		return false
	}
	return planar.MultiPolygonContains(z.Boundary, p)
}

// covers tests multipolygon coverage. The envelope check rejects the
// bulk cheaply; the exact test verifies that every vertex of b lies in
// a (planar.RingContains counts boundary points as inside, so shared
// boundaries pass).
func covers(a, b orb.MultiPolygon) (bool, error) {
	if err := checkGeometry(a); err != nil {
		return false, err
	}
	if err := checkGeometry(b); err != nil {
		return false, err
	}

	if !boundCovers(a.Bound(), b.Bound()) {
		return false, nil
	}

	for _, poly := range b {
		for _, ring := range poly {
			for _, pt := range ring {
				if !planar.MultiPolygonContains(a, pt) {
					return false, nil
				}
			}
		}
	}
	return true, nil
}

func checkGeometry(mp orb.MultiPolygon) error {
	if len(mp) == 0 {
		return fmt.Errorf("empty multipolygon")
	}
	for _, poly := range mp {
		if len(poly) == 0 || len(poly[0]) < 4 {
			return fmt.Errorf("degenerate polygon ring")
		}
	}
	return nil
}

// boundCovers reports whether envelope a fully covers envelope b.
func boundCovers(a, b orb.Bound) bool {
	return a.Min[0] <= b.Min[0] && a.Min[1] <= b.Min[1] &&
		a.Max[0] >= b.Max[0] && a.Max[1] >= b.Max[1]
}

// CompareOSMID orders OSM ids of the form "<kind>:<N>" by kind, then
// numerically by N. It is the deterministic tie-breaker used when two
// candidates are otherwise equivalent.
func CompareOSMID(a, b string) int {
	ka, na := splitOSMID(a)
	kb, nb := splitOSMID(b)
	if ka != kb {
		return strings.Compare(ka, kb)
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	}
	return 0
}

func splitOSMID(id string) (string, int64) {
	kind, num, ok := strings.Cut(id, ":")
	if !ok {
		return id, 0
	}
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return kind, 0
	}
	return kind, n
}
