package zone

import (
	"fmt"
	"iter"
	"strings"
)

// IterParents yields the zone's parent, grandparent, and so on until a
// root is reached. Terminates because the parent relation is acyclic.
func (z *Zone) IterParents(all *MutableSlice) iter.Seq[*Zone] {
	return func(yield func(*Zone) bool) {
		current := z
		for current.Parent != nil {
			current = all.Get(*current.Parent)
			if !yield(current) {
				return
			}
		}
	}
}

// ComputeLabel fills in the human-readable label carrying the zone's
// hierarchy, e.g. "Paris (75000-75116), Île-de-France, France".
//
// The format follows opencage's address formatting: the names along the
// parent chain joined with ", ", consecutive duplicates collapsed
// ("Luxembourg, Luxembourg, Europe" becomes "Luxembourg, Europe"), and
// the zone's zip codes appended to the first element only.
func (z *Zone) ComputeLabel(all *MutableSlice) {
	names := []string{z.Name}
	for parent := range z.IterParents(all) {
		if names[len(names)-1] != parent.Name {
			names = append(names, parent.Name)
		}
	}

	names[0] += formatZipCodes(z.ZipCodes)
	z.Label = strings.Join(names, ", ")
}

// formatZipCodes renders the zip code suffix: nothing without zips,
// " (75000)" for one, " (75000-75116)" for the sorted range otherwise.
func formatZipCodes(zips []string) string {
	switch len(zips) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf(" (%s)", zips[0])
	default:
		return fmt.Sprintf(" (%s-%s)", zips[0], zips[len(zips)-1])
	}
}
