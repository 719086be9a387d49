package grid

// GeoMapper reuses the rectangular partition over arbitrary coordinate
// extents, e.g. a lon/lat bounding box around the surveyed border segment.
// It performs no geodesic math; cells are equal spans of the extents, which
// is adequate at surveillance-camera scale.
type GeoMapper struct {
	mapper         *Mapper
	minX, minY     float64
	spanX, spanY   float64
	frameW, frameH float64
}

// NewGeoMapper wraps a Mapper so that coordinates in
// [minX,maxX]x[minY,maxY] resolve to grid cells.
func NewGeoMapper(m *Mapper, minX, minY, maxX, maxY float64) *GeoMapper {
	return &GeoMapper{
		mapper: m,
		minX:   minX,
		minY:   minY,
		spanX:  maxX - minX,
		spanY:  maxY - minY,
		frameW: float64(m.frameWidth),
		frameH: float64(m.frameHeight),
	}
}

// CellAt maps a geographic coordinate to a grid cell, clamping outside
// coordinates to the nearest edge cell.
func (g *GeoMapper) CellAt(x, y float64) Cell {
	var px, py float64
	if g.spanX > 0 {
		px = (x - g.minX) / g.spanX * g.frameW
	}
	if g.spanY > 0 {
		py = (y - g.minY) / g.spanY * g.frameH
	}
	return g.mapper.CellAt(px, py)
}

// ReferenceAt is shorthand for CellAt(x, y).Reference.
func (g *GeoMapper) ReferenceAt(x, y float64) string {
	return g.CellAt(x, y).Reference
}
