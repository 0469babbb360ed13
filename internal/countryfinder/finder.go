// Package countryfinder resolves the country a zone belongs to, from a
// spatial index of the country-typed zones found in the extract.
package countryfinder

import (
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/zonograph/internal/typer"
	"github.com/MeKo-Tech/zonograph/internal/zone"
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// countryEntry indexes one detected country zone by its envelope.
type countryEntry struct {
	idx   zone.Index
	code  string
	bound orb.Bound
}

// Bounds implements the rtreego.Spatial interface.
func (e *countryEntry) Bounds() rtreego.Rect {
	return boundRect(e.bound)
}

// boundRect converts an orb envelope to an rtreego rectangle. Zero
// extents are widened by an epsilon; rtreego rejects empty lengths.
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

// Finder holds the spatial index of country zones.
type Finder struct {
	tree    *rtreego.Rtree
	indexed map[zone.Index]string
}

// New detects country zones: each zone carrying an ISO3166-1 country
// code tag whose rules type it as Country is indexed by its envelope.
func New(zones []zone.Zone, t *typer.Typer) *Finder {
	finder := &Finder{
		tree:    rtreego.NewTree(2, 25, 50),
		indexed: make(map[zone.Index]string),
	}

	for i := range zones {
		z := &zones[i]
		code := isoCode(z.Tags)
		if code == "" || z.Boundary == nil {
			continue
		}
		zt, err := t.TypeOf(z, code, nil, zones)
		if err != nil || zt != zone.Country {
			continue
		}
		finder.indexed[z.ID] = code
		finder.tree.Insert(&countryEntry{idx: z.ID, code: code, bound: z.Boundary.Bound()})
	}

	slog.Info("countries detected", "count", len(finder.indexed))
	return finder
}

func isoCode(tags map[string]string) string {
	code := tags["ISO3166-1:alpha2"]
	if code == "" {
		code = tags["ISO3166-1"]
	}
	return strings.ToUpper(code)
}

// IsEmpty reports whether no country zone was detected.
func (f *Finder) IsEmpty() bool {
	return len(f.indexed) == 0
}

// CountryOf resolves the zone's country code. Inclusion ancestors that
// are indexed countries win; otherwise the spatial index is queried
// for countries whose envelope intersects the zone and whose boundary
// covers it. Ties go to the candidate with the smallest OSM id.
// Returns "" when no country contains the zone.
func (f *Finder) CountryOf(z *zone.Zone, inclusions []zone.Index, all []zone.Zone) string {
	best := zone.Index(-1)
	bestCode := ""
	consider := func(idx zone.Index, code string) {
		if best >= 0 && zone.CompareOSMID(all[best].OSMID, all[idx].OSMID) <= 0 {
			return
		}
		best = idx
		bestCode = code
	}

	for _, idx := range inclusions {
		if code, ok := f.indexed[idx]; ok {
			consider(idx, code)
		}
	}
	if best >= 0 {
		return bestCode
	}

	if z.Boundary == nil {
		return ""
	}
	for _, item := range f.tree.SearchIntersect(boundRect(z.Boundary.Bound())) {
		entry := item.(*countryEntry)
		if entry.idx == z.ID {
			continue
		}
		if all[entry.idx].Contains(z) {
			consider(entry.idx, entry.code)
		}
	}
	return bestCode
}
