// Package osm reads OpenStreetMap PBF extracts: admin boundary
// relations with their reconstructed geometry, and place nodes for the
// additional-city enrichment.
package osm

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/paulmach/orb"
	"github.com/qedus/osmpbf"
)

// Source wraps an open PBF file. The file is decoded in multiple
// passes; each pass rewinds and restarts the decoder.
type Source struct {
	file *os.File
	path string
}

// Open opens a PBF file for decoding.
func Open(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSM file: %w", err)
	}
	return &Source{file: file, path: path}, nil
}

// Path returns the path the source was opened with.
func (s *Source) Path() string {
	return s.path
}

// Close releases the underlying file.
func (s *Source) Close() error {
	return s.file.Close()
}

// scan rewinds the file and decodes every object through fn.
func (s *Source) scan(fn func(obj interface{})) error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind OSM file: %w", err)
	}

	decoder := osmpbf.NewDecoder(s.file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return fmt.Errorf("failed to start PBF decoder: %w", err)
	}

	for {
		obj, err := decoder.Decode()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error decoding OSM data: %w", err)
		}
		fn(obj)
	}
}

// IsAdminRelation reports whether the relation is an administrative
// boundary carrying an admin_level tag.
func IsAdminRelation(rel *osmpbf.Relation) bool {
	if rel.Tags["boundary"] != "administrative" {
		return false
	}
	_, ok := rel.Tags["admin_level"]
	return ok
}

// AdminRelations decodes every admin boundary relation in the extract.
func (s *Source) AdminRelations() ([]*osmpbf.Relation, error) {
	var relations []*osmpbf.Relation
	err := s.scan(func(obj interface{}) {
		if rel, ok := obj.(*osmpbf.Relation); ok && IsAdminRelation(rel) {
			relations = append(relations, rel)
		}
	})
	if err != nil {
		return nil, err
	}
	return relations, nil
}

// Ways decodes the node lists of the requested ways.
func (s *Source) Ways(ids map[int64]bool) (map[int64][]int64, error) {
	ways := make(map[int64][]int64, len(ids))
	err := s.scan(func(obj interface{}) {
		if way, ok := obj.(*osmpbf.Way); ok && ids[way.ID] {
			ways[way.ID] = way.NodeIDs
		}
	})
	if err != nil {
		return nil, err
	}
	return ways, nil
}

// Nodes decodes the coordinates of the requested nodes.
func (s *Source) Nodes(ids map[int64]bool) (map[int64]orb.Point, error) {
	nodes := make(map[int64]orb.Point, len(ids))
	err := s.scan(func(obj interface{}) {
		if node, ok := obj.(*osmpbf.Node); ok && ids[node.ID] {
			nodes[node.ID] = orb.Point{node.Lon, node.Lat}
		}
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// placeValues are the place tags promoted into synthetic city zones.
var placeValues = map[string]bool{
	"city":    true,
	"town":    true,
	"village": true,
	"hamlet":  true,
}

// Places re-scans the extract for named place nodes and hands each one
// to fn.
func (s *Source) Places(fn func(node *osmpbf.Node)) error {
	return s.scan(func(obj interface{}) {
		node, ok := obj.(*osmpbf.Node)
		if !ok {
			return
		}
		if !placeValues[node.Tags["place"]] || node.Tags["name"] == "" {
			return
		}
		fn(node)
	})
}
