package domain

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// LineBounds returns the bounding box of an ordered coordinate sequence.
// ok is false for an empty sequence.
func LineBounds(line []Coordinate) (b Bounds, ok bool) {
	if len(line) == 0 {
		return Bounds{}, false
	}
	b = Bounds{
		MinLat: line[0].Lat, MaxLat: line[0].Lat,
		MinLon: line[0].Lon, MaxLon: line[0].Lon,
	}
	for _, c := range line[1:] {
		if c.Lat < b.MinLat {
			b.MinLat = c.Lat
		}
		if c.Lat > b.MaxLat {
			b.MaxLat = c.Lat
		}
		if c.Lon < b.MinLon {
			b.MinLon = c.Lon
		}
		if c.Lon > b.MaxLon {
			b.MaxLon = c.Lon
		}
	}
	return b, true
}
