package osm

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/qedus/osmpbf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grid lays out the node ids 1..n on given coordinates.
func grid(coords ...[2]float64) map[int64]orb.Point {
	nodes := make(map[int64]orb.Point, len(coords))
	for i, c := range coords {
		nodes[int64(i+1)] = orb.Point{c[0], c[1]}
	}
	return nodes
}

func wayMember(id int64, role string) osmpbf.Member {
	return osmpbf.Member{ID: id, Type: osmpbf.WayType, Role: role}
}

func TestBuildBoundary_SingleClosedWay(t *testing.T) {
	nodes := grid([2]float64{0, 0}, [2]float64{4, 0}, [2]float64{4, 4}, [2]float64{0, 4})
	ways := map[int64][]int64{10: {1, 2, 3, 4, 1}}
	rel := &osmpbf.Relation{ID: 1, Members: []osmpbf.Member{wayMember(10, "outer")}}

	boundary := BuildBoundary(rel, ways, nodes)
	require.Len(t, boundary, 1)
	require.Len(t, boundary[0], 1)
	assert.Len(t, boundary[0][0], 5)
}

func TestBuildBoundary_StitchesOpenWays(t *testing.T) {
	nodes := grid([2]float64{0, 0}, [2]float64{4, 0}, [2]float64{4, 4}, [2]float64{0, 4})
	// Two half-rings; the second one runs in the opposite direction.
	ways := map[int64][]int64{
		10: {1, 2, 3},
		11: {1, 4, 3},
	}
	rel := &osmpbf.Relation{ID: 1, Members: []osmpbf.Member{
		wayMember(10, "outer"),
		wayMember(11, "outer"),
	}}

	boundary := BuildBoundary(rel, ways, nodes)
	require.Len(t, boundary, 1)

	ring := boundary[0][0]
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Len(t, ring, 5)
}

func TestBuildBoundary_InnerRingBecomesHole(t *testing.T) {
	nodes := grid(
		[2]float64{0, 0}, [2]float64{10, 0}, [2]float64{10, 10}, [2]float64{0, 10},
		[2]float64{4, 4}, [2]float64{6, 4}, [2]float64{6, 6}, [2]float64{4, 6},
	)
	ways := map[int64][]int64{
		10: {1, 2, 3, 4, 1},
		11: {5, 6, 7, 8, 5},
	}
	rel := &osmpbf.Relation{ID: 1, Members: []osmpbf.Member{
		wayMember(10, "outer"),
		wayMember(11, "inner"),
	}}

	boundary := BuildBoundary(rel, ways, nodes)
	require.Len(t, boundary, 1)
	assert.Len(t, boundary[0], 2) // outer ring plus hole
}

func TestBuildBoundary_UnclosableReturnsNil(t *testing.T) {
	nodes := grid([2]float64{0, 0}, [2]float64{4, 0}, [2]float64{4, 4})
	ways := map[int64][]int64{10: {1, 2, 3}}
	rel := &osmpbf.Relation{ID: 1, Members: []osmpbf.Member{wayMember(10, "outer")}}

	assert.Nil(t, BuildBoundary(rel, ways, nodes))
}

func TestIsAdminRelation(t *testing.T) {
	assert.True(t, IsAdminRelation(&osmpbf.Relation{Tags: map[string]string{
		"boundary":    "administrative",
		"admin_level": "4",
	}}))
	assert.False(t, IsAdminRelation(&osmpbf.Relation{Tags: map[string]string{
		"boundary": "administrative",
	}}))
	assert.False(t, IsAdminRelation(&osmpbf.Relation{Tags: map[string]string{
		"boundary":    "postal",
		"admin_level": "4",
	}}))
}
