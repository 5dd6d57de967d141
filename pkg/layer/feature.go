package layer

import "github.com/go-spatial/geom"

// Feature is a decoded feature: a typed geometry and its projected,
// decoded attributes keyed by output field name.
type Feature struct {
	Geometry   geom.Geometry
	Attributes map[string]interface{}
}

// FeatureCollection is the unit yielded per page and the unit merged
// across pages.
type FeatureCollection struct {
	Projection string
	Name       string
	Features   []Feature
}
