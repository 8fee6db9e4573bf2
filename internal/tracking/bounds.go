package tracking

import (
	"github.com/paulmach/orb"

	"github.com/nurpe/drillfleet/internal/model"
)

// HistoryBounds frames a machine's history on the map. With no samples it centres on
// fallback and reports Empty.
func HistoryBounds(records []model.LocationRecord, fallback model.Coordinate) model.MapBounds {
	points := make(orb.MultiPoint, 0, len(records))
	for _, r := range records {
		if !validCoordinate(r.Latitude, r.Longitude) {
			continue
		}
		points = append(points, orb.Point{r.Longitude, r.Latitude})
	}
	return boundsOf(points, fallback)
}

// MarkerBounds frames every marker currently on the map.
func MarkerBounds(markers []Marker, fallback model.Coordinate) model.MapBounds {
	points := make(orb.MultiPoint, 0, len(markers))
	for _, m := range markers {
		points = append(points, orb.Point{m.Longitude, m.Latitude})
	}
	return boundsOf(points, fallback)
}

func boundsOf(points orb.MultiPoint, fallback model.Coordinate) model.MapBounds {
	if len(points) == 0 {
		return model.MapBounds{Center: fallback, Min: fallback, Max: fallback, Empty: true}
	}
	b := points.Bound()
	center := b.Center()
	return model.MapBounds{
		Center: model.Coordinate{Lat: center.Lat(), Lng: center.Lon()},
		Min:    model.Coordinate{Lat: b.Min.Lat(), Lng: b.Min.Lon()},
		Max:    model.Coordinate{Lat: b.Max.Lat(), Lng: b.Max.Lon()},
	}
}
