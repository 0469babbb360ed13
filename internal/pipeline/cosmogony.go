// Package pipeline orchestrates a full build: ingestion, inclusion
// computation, typing, hierarchy wiring, enrichment, labelling, and
// pruning, producing the final zone catalog.
package pipeline

import "github.com/MeKo-Tech/zonograph/internal/zone"

// Cosmogony is the build artefact: the typed, labelled, parented zone
// catalog plus metadata.
type Cosmogony struct {
	Zones []zone.Zone `json:"zones"`
	Meta  Metadata    `json:"meta"`
}

// Metadata describes where the catalog came from and how the build went.
type Metadata struct {
	OSMFilename string `json:"osm_filename"`
	Stats       Stats  `json:"stats"`
}
