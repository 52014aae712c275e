package physics

import (
	"math"

	"github.com/san-kum/ripplesim/internal/compute"
	"github.com/san-kum/ripplesim/internal/dynamo"
)

const (
	DefaultCellSize    = 10.0
	DefaultGridDamping = 0.98
	DefaultPenRadius   = 40.0
	MinGridDamping     = 0.95
	MaxGridDamping     = 0.99

	// minFalloffDistance floors the distance in the pen falloff.
	minFalloffDistance = 4.0
	diagonalWeight     = 0.5
	relaxRate          = 0.25
)

// Direction indexes a cell's neighbour links.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
	UpLeft
	UpRight
	DownLeft
	DownRight
	numDirections
)

var directionNames = [...]string{"up", "down", "left", "right", "up-left", "up-right", "down-left", "down-right"}

func (d Direction) String() string {
	if d < 0 || d >= numDirections {
		return "invalid"
	}
	return directionNames[d]
}

// Directions lists every link direction in index order.
func Directions() []Direction {
	return []Direction{Up, Down, Left, Right, UpLeft, UpRight, DownLeft, DownRight}
}

// Cell is one site of the pressure/velocity grid. Links hold indices into
// the grid's cell slice and never change after NewGrid.
type Cell struct {
	X, Y     float64
	Col, Row int
	VX, VY   float64
	Pressure float64
	Links    [numDirections]int
}

// Grid is a toroidal lattice of cells relaxed by a two-phase
// pressure/velocity exchange.
type Grid struct {
	cols, rows int
	cellSize   float64
	damping    float64
	cells      []Cell
	backend    compute.Backend
}

func NewGrid(cols, rows int, cellSize, damping float64) (*Grid, error) {
	if cols <= 0 {
		return nil, dynamo.Invalid("cols", "must be positive, got %d", cols)
	}
	if rows <= 0 {
		return nil, dynamo.Invalid("rows", "must be positive, got %d", rows)
	}
	if !finite(cellSize) || cellSize <= 0 {
		return nil, dynamo.Invalid("cell_size", "must be positive, got %g", cellSize)
	}
	if !finite(damping) || damping < MinGridDamping || damping > MaxGridDamping {
		return nil, dynamo.Invalid("damping", "must be in [%g, %g], got %g", MinGridDamping, MaxGridDamping, damping)
	}

	g := &Grid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		damping:  damping,
		cells:    make([]Cell, cols*rows),
		backend:  compute.Serial{},
	}

	// linking needs every cell in place
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			g.cells[g.index(col, row)] = Cell{
				X:   float64(col) * cellSize,
				Y:   float64(row) * cellSize,
				Col: col,
				Row: row,
			}
		}
	}
	g.link()
	return g, nil
}

// link gives each cell its up, left, up-left and up-right neighbours and
// sets the reciprocal link on each of them.
func (g *Grid) link() {
	for row := 0; row < g.rows; row++ {
		rowUp := row - 1
		if rowUp < 0 {
			rowUp = g.rows - 1
		}
		for col := 0; col < g.cols; col++ {
			colLeft := col - 1
			if colLeft < 0 {
				colLeft = g.cols - 1
			}
			colRight := col + 1
			if colRight == g.cols {
				colRight = 0
			}

			i := g.index(col, row)
			up := g.index(col, rowUp)
			left := g.index(colLeft, row)
			upLeft := g.index(colLeft, rowUp)
			upRight := g.index(colRight, rowUp)

			c := &g.cells[i]
			c.Links[Up] = up
			c.Links[Left] = left
			c.Links[UpLeft] = upLeft
			c.Links[UpRight] = upRight

			g.cells[up].Links[Down] = i
			g.cells[left].Links[Right] = i
			g.cells[upLeft].Links[DownRight] = i
			g.cells[upRight].Links[DownLeft] = i
		}
	}
}

func (g *Grid) index(col, row int) int       { return row*g.cols + col }
func (g *Grid) Cols() int                    { return g.cols }
func (g *Grid) Rows() int                    { return g.rows }
func (g *Grid) Len() int                     { return len(g.cells) }
func (g *Grid) CellSize() float64            { return g.cellSize }
func (g *Grid) Damping() float64             { return g.damping }
func (g *Grid) Width() float64               { return float64(g.cols) * g.cellSize }
func (g *Grid) Height() float64              { return float64(g.rows) * g.cellSize }
func (g *Grid) Energy() float64              { return g.KineticEnergy() }
func (g *Grid) SetBackend(b compute.Backend) { g.backend = b }
func (g *Grid) Contains(x, y float64) bool   { return x >= 0 && y >= 0 && x < g.Width() && y < g.Height() }
func (g *Grid) at(i int, d Direction) *Cell  { return &g.cells[g.cells[i].Links[d]] }

// Cell returns a copy of the cell at (col, row).
func (g *Grid) Cell(col, row int) (Cell, error) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return Cell{}, &dynamo.BoundsError{Op: "cell", X: float64(col), Y: float64(row), Width: float64(g.cols), Height: float64(g.rows)}
	}
	return g.cells[g.index(col, row)], nil
}

// Index returns the flat index of (col, row).
func (g *Grid) Index(col, row int) (int, error) {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return 0, &dynamo.BoundsError{Op: "index", X: float64(col), Y: float64(row), Width: float64(g.cols), Height: float64(g.rows)}
	}
	return g.index(col, row), nil
}

// Neighbor returns the index linked from cell i in direction d.
func (g *Grid) Neighbor(i int, d Direction) (int, error) {
	if i < 0 || i >= len(g.cells) || d < 0 || d >= numDirections {
		return 0, &dynamo.BoundsError{Op: "neighbor", X: float64(i), Y: float64(d), Width: float64(len(g.cells)), Height: float64(numDirections)}
	}
	return g.cells[i].Links[d], nil
}

// ApplyDisturbance pushes velocity into every cell closer than penRadius to
// point, measured on the torus. Power falls off as penRadius/distance with
// the distance floored at 4.
func (g *Grid) ApplyDisturbance(point, velocity dynamo.Vec2, penRadius float64) error {
	if !point.IsValid() || !velocity.IsValid() || !finite(penRadius) {
		return dynamo.ErrInvalidInput
	}
	if penRadius <= 0 {
		return dynamo.Invalid("pen_radius", "must be positive, got %g", penRadius)
	}
	if !g.Contains(point.X, point.Y) {
		return &dynamo.BoundsError{Op: "disturb", X: point.X, Y: point.Y, Width: g.Width(), Height: g.Height()}
	}

	w, h := g.Width(), g.Height()
	for i := range g.cells {
		c := &g.cells[i]
		dist := math.Hypot(WrappedDelta(c.X, point.X, w), WrappedDelta(c.Y, point.Y, h))
		if dist >= penRadius {
			continue
		}
		power := penRadius / math.Max(dist, minFalloffDistance)
		c.VX += velocity.X * power
		c.VY += velocity.Y * power
	}
	return nil
}

// Step relaxes the grid one frame: every pressure is recomputed from the
// current velocities before any velocity reads a pressure.
func (g *Grid) Step() {
	g.backend.Rows(g.rows, g.pressureRows)
	g.backend.Rows(g.rows, g.velocityRows)
}

func (g *Grid) pressureRows(lo, hi int) {
	for i := lo * g.cols; i < hi*g.cols; i++ {
		g.updatePressure(i)
	}
}

func (g *Grid) velocityRows(lo, hi int) {
	for i := lo * g.cols; i < hi*g.cols; i++ {
		g.updateVelocity(i)
	}
}

func (g *Grid) updatePressure(i int) {
	ul, ur := g.at(i, UpLeft), g.at(i, UpRight)
	dl, dr := g.at(i, DownLeft), g.at(i, DownRight)

	px := ul.VX*diagonalWeight + g.at(i, Left).VX + dl.VX*diagonalWeight -
		ur.VX*diagonalWeight - g.at(i, Right).VX - dr.VX*diagonalWeight
	py := ul.VY*diagonalWeight + g.at(i, Up).VY + ur.VY*diagonalWeight -
		dl.VY*diagonalWeight - g.at(i, Down).VY - dr.VY*diagonalWeight

	g.cells[i].Pressure = (px + py) * relaxRate
}

func (g *Grid) updateVelocity(i int) {
	ul, ur := g.at(i, UpLeft).Pressure, g.at(i, UpRight).Pressure
	dl, dr := g.at(i, DownLeft).Pressure, g.at(i, DownRight).Pressure

	c := &g.cells[i]
	c.VX += (ul*diagonalWeight + g.at(i, Left).Pressure + dl*diagonalWeight -
		ur*diagonalWeight - g.at(i, Right).Pressure - dr*diagonalWeight) * relaxRate
	c.VY += (ul*diagonalWeight + g.at(i, Up).Pressure + ur*diagonalWeight -
		dl*diagonalWeight - g.at(i, Down).Pressure - dr*diagonalWeight) * relaxRate

	c.VX *= g.damping
	c.VY *= g.damping
}

// KineticEnergy is the sum of |v|^2/2 over all cells.
func (g *Grid) KineticEnergy() float64 {
	total := 0.0
	for i := range g.cells {
		c := &g.cells[i]
		total += 0.5 * (c.VX*c.VX + c.VY*c.VY)
	}
	return total
}

// Velocities appends the speed of every cell to dst.
func (g *Grid) Velocities(dst []float64) []float64 {
	for i := range g.cells {
		dst = append(dst, math.Hypot(g.cells[i].VX, g.cells[i].VY))
	}
	return dst
}

func (g *Grid) Reset() {
	for i := range g.cells {
		c := &g.cells[i]
		c.VX, c.VY, c.Pressure = 0, 0, 0
	}
}
