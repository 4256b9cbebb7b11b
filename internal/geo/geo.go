package geo

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is usable. The (0,0) null island
// point counts as missing, which is what a denied geolocation prompt
// produces on the client.
func (c Coordinate) Valid() bool {
	if c.Lat == 0 && c.Lng == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Resolver substitutes a fixed fallback for missing or invalid
// coordinates so a denied geolocation never blocks submission.
type Resolver struct {
	fallback Coordinate
}

// NewResolver builds a resolver around the configured fallback point.
func NewResolver(fallback Coordinate) *Resolver {
	return &Resolver{fallback: fallback}
}

// Resolve returns the given coordinate when valid, the fallback otherwise.
func (r *Resolver) Resolve(c Coordinate) Coordinate {
	if c.Valid() {
		return c
	}
	return r.fallback
}
