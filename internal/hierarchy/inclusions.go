// Package hierarchy computes the is-inside relation over all zones and
// wires each zone to its immediate parent.
package hierarchy

import (
	"context"
	"log/slog"

	"github.com/MeKo-Tech/zonograph/internal/worker"
	"github.com/MeKo-Tech/zonograph/internal/zone"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// zoneSpatial indexes one zone by its bounding envelope.
type zoneSpatial struct {
	idx   zone.Index
	bound orb.Bound
}

// Bounds implements the rtreego.Spatial interface.
func (s *zoneSpatial) Bounds() rtreego.Rect {
	return boundRect(s.bound)
}

func boundRect(b orb.Bound) rtreego.Rect {
	const epsilon = 1e-9
	lengths := []float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]}
	for i := range lengths {
		if lengths[i] <= 0 {
			lengths[i] = epsilon
		}
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, lengths)
	return rect
}

// boundCovers reports whether envelope a fully covers envelope b.
func boundCovers(a, b orb.Bound) bool {
	return a.Min[0] <= b.Min[0] && a.Min[1] <= b.Min[1] &&
		a.Max[0] >= b.Max[0] && a.Max[1] >= b.Max[1]
}

// FindInclusions computes, for every zone, the indices of the zones
// whose boundary covers it. An R-tree over bounding envelopes
// pre-filters the candidates; survivors go through the exact cover
// test. Zones are processed in parallel, each worker writing only its
// own slot of the result; onProgress (optional) is called as slots
// complete. Zones without boundary get an empty list. The order
// within each list is unspecified.
func FindInclusions(zones []zone.Zone, workers int, onProgress worker.ProgressFunc, logger *slog.Logger) [][]zone.Index {
	logger.Info("computing zone inclusions", "zones", len(zones))

	tree := rtreego.NewTree(2, 25, 50)
	for i := range zones {
		if zones[i].Boundary == nil {
			continue
		}
		tree.Insert(&zoneSpatial{idx: zones[i].ID, bound: zones[i].Boundary.Bound()})
	}

	inclusions := make([][]zone.Index, len(zones))
	pool := worker.New(worker.Config{Workers: workers, OnProgress: onProgress})
	pool.RunIndexed(context.Background(), len(zones), func(i int) error {
		z := &zones[i]
		if z.Boundary == nil {
			inclusions[i] = []zone.Index{}
			return nil
		}

		bound := z.Boundary.Bound()
		candidates := []zone.Index{}
		for _, item := range tree.SearchIntersect(boundRect(bound)) {
			spatial := item.(*zoneSpatial)
			if spatial.idx == z.ID || !boundCovers(spatial.bound, bound) {
				continue
			}
			if zones[spatial.idx].Contains(z) {
				candidates = append(candidates, spatial.idx)
			}
		}
		inclusions[i] = candidates
		return nil
	})

	return inclusions
}
