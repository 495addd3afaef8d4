package model

// Point is a planar position. Units are whatever the caller's coordinate
// system uses (metres, UTM, lon/lat); the engine never interprets them.
type Point struct {
	X float64
	Y float64
}

// PathPoint is a Point annotated with its step index along a path.
type PathPoint struct {
	Point
	Step int
}

// Path is an ordered sequence of path points. The first point is the origin;
// every point is expected to lie inside the region that produced the path.
type Path []PathPoint

// Origin returns the first point of the path.
func (p Path) Origin() Point {
	return p[0].Point
}

// Points returns the bare positions of the path, dropping step indices.
func (p Path) Points() []Point {
	pts := make([]Point, len(p))
	for i, pp := range p {
		pts[i] = pp.Point
	}
	return pts
}
