package matcher

import (
	"strings"

	"github.com/satryanta/geofuse/pkg/datastructure"
)

// FormatFullAddress builds a display address from the road's own metadata:
// "<number> <name>, <locality>, <adminArea>". Empty parts are skipped; a
// nameless road falls back to its ref.
func FormatFullAddress(road *datastructure.RoadSegment) string {
	street := road.Name()
	if street == "" {
		street = road.Ref()
	}
	if road.StreetNumber() != "" && street != "" {
		street = road.StreetNumber() + " " + street
	}

	parts := make([]string, 0, 3)
	if street != "" {
		parts = append(parts, street)
	}
	if road.Locality() != "" {
		parts = append(parts, road.Locality())
	}
	if road.AdminArea() != "" {
		parts = append(parts, road.AdminArea())
	}
	return strings.Join(parts, ", ")
}
