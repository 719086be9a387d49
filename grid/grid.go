// Package grid - Military-style grid reference system. The frame is divided
// into a rectangular partition of lettered columns and numbered rows
// ("A-1" ... "F-5" by default); each cell carries static zone metadata used
// by threat scoring and patrol dispatch.
package grid

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ZoneInfo is the static metadata attached to a grid cell, loaded once at
// startup from the zone configuration store.
type ZoneInfo struct {
	// Sensitivity tier: critical/high/medium/normal/low.
	Sensitivity string `json:"sensitivity" mapstructure:"sensitivity"`
	// Terrain type, free-form.
	Terrain string `json:"terrain" mapstructure:"terrain"`
	// Points contributed to a threat score by this zone.
	Points int `json:"points" mapstructure:"points"`
	// NearestPatrol is a pre-configured hint for the patrol locator.
	NearestPatrol string `json:"nearest_patrol" mapstructure:"nearest_patrol"`
	// PatrolETAMinutes is the configured ETA for the hinted patrol.
	PatrolETAMinutes int `json:"patrol_eta_minutes" mapstructure:"patrol_eta_minutes"`
	// DistanceToBorderM is the distance to the border line in meters.
	DistanceToBorderM int `json:"distance_to_border_m" mapstructure:"distance_to_border_m"`
	// RiskFactors is a free-form list of known risks for the zone.
	RiskFactors []string `json:"risk_factors" mapstructure:"risk_factors"`
}

// DefaultZoneInfo is applied to references absent from configuration.
// An unconfigured zone is not an error.
func DefaultZoneInfo() ZoneInfo {
	return ZoneInfo{
		Sensitivity:      "normal",
		Terrain:          "unknown",
		Points:           1,
		PatrolETAMinutes: 10,
	}
}

// Cell is one cell of the grid partition. Built once at startup and never
// mutated afterwards.
type Cell struct {
	Reference string `json:"reference"`
	Column    string `json:"column"`
	Row       string `json:"row"`

	// Pixel bounds, X2/Y2 exclusive.
	X1, Y1, X2, Y2 int

	// Center pixel.
	CenterX, CenterY int

	Zone ZoneInfo `json:"zone"`
}

// FormatReference builds the canonical "{Letter}-{Number}" reference.
func FormatReference(column, row string) string {
	return strings.ToUpper(column) + "-" + row
}

// ParseReference splits a reference into its column and row labels.
func ParseReference(reference string) (column, row string, err error) {
	parts := strings.Split(strings.ToUpper(reference), "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.Errorf("invalid grid reference %q", reference)
	}
	return parts[0], parts[1], nil
}

// Mapper converts pixel coordinates to grid cells. All lookups clamp
// out-of-range input to the nearest valid cell rather than failing.
type Mapper struct {
	frameWidth  int
	frameHeight int
	columns     int
	rows        int
	colLabels   []string
	rowLabels   []string
	cellWidth   float64
	cellHeight  float64
	cells       map[string]Cell
}

// MapperConfig describes the grid partition and its zone table.
type MapperConfig struct {
	FrameWidth   int                 `mapstructure:"frame_width"`
	FrameHeight  int                 `mapstructure:"frame_height"`
	Columns      int                 `mapstructure:"columns"`
	Rows         int                 `mapstructure:"rows"`
	ColumnLabels []string            `mapstructure:"column_labels"`
	RowLabels    []string            `mapstructure:"row_labels"`
	Zones        map[string]ZoneInfo `mapstructure:"zones"`
}

// DefaultMapperConfig returns the standard 6x5 grid over a 640x480 frame.
func DefaultMapperConfig() MapperConfig {
	return MapperConfig{
		FrameWidth:   640,
		FrameHeight:  480,
		Columns:      6,
		Rows:         5,
		ColumnLabels: []string{"A", "B", "C", "D", "E", "F"},
		RowLabels:    []string{"1", "2", "3", "4", "5"},
	}
}

// NewMapper builds the complete cell table from configuration. Fails on
// dimension/label mismatches; an empty or partial zone table is fine.
func NewMapper(cfg MapperConfig) (*Mapper, error) {
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		return nil, errors.Errorf("invalid frame dimensions %dx%d", cfg.FrameWidth, cfg.FrameHeight)
	}
	if cfg.Columns <= 0 || cfg.Rows <= 0 {
		return nil, errors.Errorf("invalid grid dimensions %dx%d", cfg.Columns, cfg.Rows)
	}
	if len(cfg.ColumnLabels) != cfg.Columns {
		return nil, errors.Errorf("have %d column labels for %d columns", len(cfg.ColumnLabels), cfg.Columns)
	}
	if len(cfg.RowLabels) != cfg.Rows {
		return nil, errors.Errorf("have %d row labels for %d rows", len(cfg.RowLabels), cfg.Rows)
	}

	// Zone keys are canonicalized so case-folded config sources still hit.
	zones := make(map[string]ZoneInfo, len(cfg.Zones))
	for ref, zone := range cfg.Zones {
		zones[strings.ToUpper(ref)] = zone
	}

	m := &Mapper{
		frameWidth:  cfg.FrameWidth,
		frameHeight: cfg.FrameHeight,
		columns:     cfg.Columns,
		rows:        cfg.Rows,
		colLabels:   cfg.ColumnLabels,
		rowLabels:   cfg.RowLabels,
		cellWidth:   float64(cfg.FrameWidth) / float64(cfg.Columns),
		cellHeight:  float64(cfg.FrameHeight) / float64(cfg.Rows),
		cells:       make(map[string]Cell, cfg.Columns*cfg.Rows),
	}

	for colIdx, colLabel := range cfg.ColumnLabels {
		for rowIdx, rowLabel := range cfg.RowLabels {
			ref := FormatReference(colLabel, rowLabel)

			x1 := int(float64(colIdx) * m.cellWidth)
			y1 := int(float64(rowIdx) * m.cellHeight)
			x2 := int(float64(colIdx+1) * m.cellWidth)
			y2 := int(float64(rowIdx+1) * m.cellHeight)

			zone, ok := zones[ref]
			if !ok {
				zone = DefaultZoneInfo()
			}

			m.cells[ref] = Cell{
				Reference: ref,
				Column:    colLabel,
				Row:       rowLabel,
				X1:        x1,
				Y1:        y1,
				X2:        x2,
				Y2:        y2,
				CenterX:   (x1 + x2) / 2,
				CenterY:   (y1 + y2) / 2,
				Zone:      zone,
			}
		}
	}

	return m, nil
}

// Columns returns the number of grid columns.
func (m *Mapper) Columns() int { return m.columns }

// Rows returns the number of grid rows.
func (m *Mapper) Rows() int { return m.rows }

// CellAt returns the cell containing pixel (x, y). Out-of-range coordinates
// clamp to the nearest valid cell.
func (m *Mapper) CellAt(x, y float64) Cell {
	if x < 0 {
		x = 0
	}
	if max := float64(m.frameWidth - 1); x > max {
		x = max
	}
	if y < 0 {
		y = 0
	}
	if max := float64(m.frameHeight - 1); y > max {
		y = max
	}

	colIdx := int(x / m.cellWidth)
	if colIdx >= m.columns {
		colIdx = m.columns - 1
	}
	rowIdx := int(y / m.cellHeight)
	if rowIdx >= m.rows {
		rowIdx = m.rows - 1
	}

	return m.cells[FormatReference(m.colLabels[colIdx], m.rowLabels[rowIdx])]
}

// ReferenceAt is shorthand for CellAt(x, y).Reference.
func (m *Mapper) ReferenceAt(x, y float64) string {
	return m.CellAt(x, y).Reference
}

// Cell looks up a cell by reference.
func (m *Mapper) Cell(reference string) (Cell, bool) {
	c, ok := m.cells[strings.ToUpper(reference)]
	return c, ok
}

// ZoneAt returns the zone metadata for a reference, falling back to the
// default zone when the reference is unknown.
func (m *Mapper) ZoneAt(reference string) ZoneInfo {
	if c, ok := m.Cell(reference); ok {
		return c.Zone
	}
	return DefaultZoneInfo()
}

// CenterOf returns the center pixel of a referenced cell. Unknown
// references fall back to the frame center.
func (m *Mapper) CenterOf(reference string) (x, y int) {
	if c, ok := m.Cell(reference); ok {
		return c.CenterX, c.CenterY
	}
	return m.frameWidth / 2, m.frameHeight / 2
}

// indexOf resolves a reference to column/row indices.
func (m *Mapper) indexOf(reference string) (colIdx, rowIdx int, err error) {
	col, row, err := ParseReference(reference)
	if err != nil {
		return 0, 0, err
	}
	colIdx, rowIdx = -1, -1
	for i, l := range m.colLabels {
		if l == col {
			colIdx = i
			break
		}
	}
	for i, l := range m.rowLabels {
		if l == row {
			rowIdx = i
			break
		}
	}
	if colIdx < 0 || rowIdx < 0 {
		return 0, 0, errors.Errorf("reference %q outside the grid", reference)
	}
	return colIdx, rowIdx, nil
}

// Adjacent returns the 8-connected neighbors of a cell. An invalid
// reference yields an empty slice.
func (m *Mapper) Adjacent(reference string) []Cell {
	colIdx, rowIdx, err := m.indexOf(reference)
	if err != nil {
		return nil
	}

	var adjacent []Cell
	for dc := -1; dc <= 1; dc++ {
		for dr := -1; dr <= 1; dr++ {
			if dc == 0 && dr == 0 {
				continue
			}
			c := colIdx + dc
			r := rowIdx + dr
			if c < 0 || c >= m.columns || r < 0 || r >= m.rows {
				continue
			}
			adjacent = append(adjacent, m.cells[FormatReference(m.colLabels[c], m.rowLabels[r])])
		}
	}
	return adjacent
}

// Distance returns the Chebyshev grid distance between two references:
// max(|dColumn|, |dRow|). References outside the grid yield an error.
func (m *Mapper) Distance(ref1, ref2 string) (int, error) {
	c1, r1, err := m.indexOf(ref1)
	if err != nil {
		return 0, err
	}
	c2, r2, err := m.indexOf(ref2)
	if err != nil {
		return 0, err
	}

	dc := c1 - c2
	if dc < 0 {
		dc = -dc
	}
	dr := r1 - r2
	if dr < 0 {
		dr = -dr
	}
	if dc > dr {
		return dc, nil
	}
	return dr, nil
}

// Cells returns every cell of the grid in column-major order.
func (m *Mapper) Cells() []Cell {
	cells := make([]Cell, 0, len(m.cells))
	for _, colLabel := range m.colLabels {
		for _, rowLabel := range m.rowLabels {
			cells = append(cells, m.cells[FormatReference(colLabel, rowLabel)])
		}
	}
	return cells
}

// CellsInRow returns all cells with the given row label.
func (m *Mapper) CellsInRow(row string) []Cell {
	var out []Cell
	for _, colLabel := range m.colLabels {
		if c, ok := m.cells[FormatReference(colLabel, row)]; ok {
			out = append(out, c)
		}
	}
	return out
}

// BorderRow returns the cells of the topmost row, the row adjacent to the
// border line in the standard camera orientation.
func (m *Mapper) BorderRow() []Cell {
	return m.CellsInRow(m.rowLabels[0])
}

// CellsInColumn returns all cells with the given column label.
func (m *Mapper) CellsInColumn(column string) []Cell {
	var out []Cell
	for _, rowLabel := range m.rowLabels {
		if c, ok := m.cells[FormatReference(column, rowLabel)]; ok {
			out = append(out, c)
		}
	}
	return out
}

// CellsBySensitivity returns all cells with the given sensitivity tier.
func (m *Mapper) CellsBySensitivity(sensitivity string) []Cell {
	var out []Cell
	for _, c := range m.Cells() {
		if c.Zone.Sensitivity == sensitivity {
			out = append(out, c)
		}
	}
	return out
}

// Overlay is the geometry a renderer needs to draw the grid. Pure data,
// no drawing happens here.
type Overlay struct {
	FrameWidth      int      `json:"frame_width"`
	FrameHeight     int      `json:"frame_height"`
	CellWidth       int      `json:"cell_width"`
	CellHeight      int      `json:"cell_height"`
	ColumnLabels    []string `json:"column_labels"`
	RowLabels       []string `json:"row_labels"`
	VerticalLines   []int    `json:"vertical_lines"`
	HorizontalLines []int    `json:"horizontal_lines"`
}

// OverlayData exports the grid line positions for rendering layers.
func (m *Mapper) OverlayData() Overlay {
	o := Overlay{
		FrameWidth:   m.frameWidth,
		FrameHeight:  m.frameHeight,
		CellWidth:    int(m.cellWidth),
		CellHeight:   int(m.cellHeight),
		ColumnLabels: m.colLabels,
		RowLabels:    m.rowLabels,
	}
	for i := 1; i < m.columns; i++ {
		o.VerticalLines = append(o.VerticalLines, int(float64(i)*m.cellWidth))
	}
	for i := 1; i < m.rows; i++ {
		o.HorizontalLines = append(o.HorizontalLines, int(float64(i)*m.cellHeight))
	}
	return o
}

func (m *Mapper) String() string {
	return fmt.Sprintf("grid %dx%d over %dx%d px", m.columns, m.rows, m.frameWidth, m.frameHeight)
}
