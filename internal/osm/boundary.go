package osm

import (
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/qedus/osmpbf"
)

// BuildBoundary reconstructs a relation's multipolygon from its member
// ways. Ways are stitched end-to-end into closed rings; rings from
// members with role "inner" become holes of the outer ring that
// contains them. Returns nil when no closed outer ring can be built.
func BuildBoundary(rel *osmpbf.Relation, ways map[int64][]int64, nodes map[int64]orb.Point) orb.MultiPolygon {
	var outerWays, innerWays []orb.LineString
	for _, member := range rel.Members {
		if member.Type != osmpbf.WayType {
			continue
		}
		line := wayLine(ways[member.ID], nodes)
		if len(line) < 2 {
			continue
		}
		if member.Role == "inner" {
			innerWays = append(innerWays, line)
		} else {
			outerWays = append(outerWays, line)
		}
	}

	outerRings := stitchRings(outerWays)
	innerRings := stitchRings(innerWays)
	if len(outerRings) == 0 {
		slog.Debug("no closed outer ring for relation", "relation", rel.ID)
		return nil
	}

	polygons := make(orb.MultiPolygon, len(outerRings))
	for i, outer := range outerRings {
		polygons[i] = orb.Polygon{outer}
	}
	for _, inner := range innerRings {
		for i, outer := range outerRings {
			if planar.RingContains(outer, inner[0]) {
				polygons[i] = append(polygons[i], inner)
				break
			}
		}
	}
	return polygons
}

// wayLine resolves a way's node ids to coordinates, skipping nodes
// missing from the extract.
func wayLine(nodeIDs []int64, nodes map[int64]orb.Point) orb.LineString {
	line := make(orb.LineString, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if pt, ok := nodes[id]; ok {
			line = append(line, pt)
		}
	}
	return line
}

// stitchRings joins open way segments that share endpoints into closed
// rings. Segments that cannot be closed are discarded.
func stitchRings(segments []orb.LineString) []orb.Ring {
	remaining := make([]orb.LineString, len(segments))
	copy(remaining, segments)

	var rings []orb.Ring
	for len(remaining) > 0 {
		current := remaining[0]
		remaining = remaining[1:]

		for !closed(current) {
			joined := false
			for i, seg := range remaining {
				if extended, ok := join(current, seg); ok {
					current = extended
					remaining = append(remaining[:i], remaining[i+1:]...)
					joined = true
					break
				}
			}
			if !joined {
				break
			}
		}

		if closed(current) && len(current) >= 4 {
			rings = append(rings, orb.Ring(current))
		}
	}
	return rings
}

func closed(line orb.LineString) bool {
	return len(line) >= 3 && line[0] == line[len(line)-1]
}

// join concatenates seg onto line when they share an endpoint,
// reversing seg as needed. The result never aliases either input.
func join(line, seg orb.LineString) (orb.LineString, bool) {
	last := line[len(line)-1]
	switch {
	case last == seg[0]:
		return concat(line, seg[1:]), true
	case last == seg[len(seg)-1]:
		return concat(line, reversed(seg)[1:]), true
	}

	first := line[0]
	switch {
	case first == seg[len(seg)-1]:
		return concat(seg, line[1:]), true
	case first == seg[0]:
		return concat(reversed(seg), line[1:]), true
	}
	return nil, false
}

func concat(a, b orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func reversed(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, pt := range line {
		out[len(line)-1-i] = pt
	}
	return out
}
