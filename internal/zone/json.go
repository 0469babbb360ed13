package zone

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// zoneJSON is the serialized layout of a zone. Field order is the wire
// order; geometry fields are GeoJSON Geometry objects or null.
type zoneJSON struct {
	ID         Index             `json:"id"`
	OSMID      string            `json:"osm_id"`
	AdminLevel *uint32           `json:"admin_level"`
	Type       ZoneType          `json:"zone_type"`
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	ZipCodes   []string          `json:"zip_codes"`
	Center     *geojson.Geometry `json:"center"`
	Boundary   *geojson.Geometry `json:"geometry"`
	Tags       map[string]string `json:"tags"`
	Parent     *Index            `json:"parent"`
	Wikidata   *string           `json:"wikidata"`
}

// MarshalJSON encodes the zone with a stable field order.
func (z Zone) MarshalJSON() ([]byte, error) {
	out := zoneJSON{
		ID:         z.ID,
		OSMID:      z.OSMID,
		AdminLevel: z.AdminLevel,
		Type:       z.Type,
		Name:       z.Name,
		Label:      z.Label,
		ZipCodes:   z.ZipCodes,
		Tags:       z.Tags,
		Parent:     z.Parent,
	}
	if out.ZipCodes == nil {
		out.ZipCodes = []string{}
	}
	if out.Tags == nil {
		out.Tags = map[string]string{}
	}
	if z.Center != nil {
		out.Center = geojson.NewGeometry(*z.Center)
	}
	if z.Boundary != nil {
		out.Boundary = geojson.NewGeometry(z.Boundary)
	}
	if z.Wikidata != "" {
		out.Wikidata = &z.Wikidata
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a serialized zone, rejecting geometry-type
// mismatches: center must be a Point and geometry a MultiPolygon.
func (z *Zone) UnmarshalJSON(data []byte) error {
	var in zoneJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*z = Zone{
		ID:         in.ID,
		OSMID:      in.OSMID,
		AdminLevel: in.AdminLevel,
		Type:       in.Type,
		Name:       in.Name,
		Label:      in.Label,
		ZipCodes:   in.ZipCodes,
		Tags:       in.Tags,
		Parent:     in.Parent,
	}
	if z.ZipCodes == nil {
		z.ZipCodes = []string{}
	}
	if z.Tags == nil {
		z.Tags = map[string]string{}
	}
	if in.Wikidata != nil {
		z.Wikidata = *in.Wikidata
	}

	if in.Center != nil {
		point, ok := in.Center.Geometry().(orb.Point)
		if !ok {
			return fmt.Errorf("zone %s: center must be a Point, got %s", z.OSMID, in.Center.Type)
		}
		z.Center = &point
	}
	if in.Boundary != nil {
		mp, ok := in.Boundary.Geometry().(orb.MultiPolygon)
		if !ok {
			return fmt.Errorf("zone %s: geometry must be a MultiPolygon, got %s", z.OSMID, in.Boundary.Type)
		}
		z.Boundary = mp
	}
	return nil
}
