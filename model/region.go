package model

// RegionType identifies the shape of a water region.
type RegionType string

const (
	RegionTypeCircle  RegionType = "circle"
	RegionTypePolygon RegionType = "polygon"
)

// RegionDefinition describes the permitted water body in scenario files.
// Circle regions use Center/Radius; polygon regions use Vertices.
type RegionDefinition struct {
	Type     RegionType
	Center   Point
	Radius   float64
	Vertices []Point
}
