package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit_MutateWhileReading(t *testing.T) {
	zones := []Zone{makeZone("a", 0), makeZone("b", 1), makeZone("c", 2)}

	view, focused := Split(zones, 1)
	focused.Label = view.Get(0).Name + "-" + view.Get(2).Name

	assert.Equal(t, "a-c", zones[1].Label)
}

func TestSplit_FocusedIndexRefused(t *testing.T) {
	zones := []Zone{makeZone("a", 0), makeZone("b", 1)}

	view, _ := Split(zones, 1)

	assert.Panics(t, func() { view.Get(1) })
	assert.NotPanics(t, func() { view.Get(0) })
}
