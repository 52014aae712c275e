package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ripplesim/internal/compute"
	"github.com/san-kum/ripplesim/internal/dynamo"
)

func mustGrid(t *testing.T, cols, rows int, cellSize float64) *Grid {
	t.Helper()
	g, err := NewGrid(cols, rows, cellSize, DefaultGridDamping)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func TestGridInvalidConfig(t *testing.T) {
	tests := []struct {
		name       string
		cols, rows int
		cellSize   float64
		damping    float64
	}{
		{"zero cols", 0, 4, 10, 0.98},
		{"negative rows", 4, -2, 10, 0.98},
		{"zero cell size", 4, 4, 0, 0.98},
		{"nan cell size", 4, 4, math.NaN(), 0.98},
		{"damping too low", 4, 4, 10, 0.5},
		{"damping too high", 4, 4, 10, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.cols, tt.rows, tt.cellSize, tt.damping)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGridToroidalClosure(t *testing.T) {
	reciprocal := map[Direction]Direction{
		Up: Down, Down: Up, Left: Right, Right: Left,
		UpLeft: DownRight, DownRight: UpLeft, UpRight: DownLeft, DownLeft: UpRight,
	}

	for _, size := range [][2]int{{10, 10}, {7, 3}, {1, 5}, {2, 2}} {
		g := mustGrid(t, size[0], size[1], 1)
		for i := 0; i < g.Len(); i++ {
			for _, d := range Directions() {
				n, err := g.Neighbor(i, d)
				if err != nil {
					t.Fatalf("neighbor: %v", err)
				}
				back, _ := g.Neighbor(n, reciprocal[d])
				if back != i {
					t.Errorf("%dx%d cell %d: %s then %s lands on %d", size[0], size[1], i, d, reciprocal[d], back)
				}
			}
		}
	}
}

func TestGridEdgesWrap(t *testing.T) {
	g := mustGrid(t, 10, 6, 1)

	link := func(col, row int, d Direction) int {
		i, _ := g.Index(col, row)
		n, _ := g.Neighbor(i, d)
		return n
	}
	idx := func(col, row int) int {
		i, _ := g.Index(col, row)
		return i
	}

	tests := []struct {
		name     string
		got, exp int
	}{
		{"origin up", link(0, 0, Up), idx(0, 5)},
		{"origin left", link(0, 0, Left), idx(9, 0)},
		{"origin up-left", link(0, 0, UpLeft), idx(9, 5)},
		{"origin up-right", link(0, 0, UpRight), idx(1, 5)},
		{"last col right", link(9, 2, Right), idx(0, 2)},
		{"last row down", link(4, 5, Down), idx(4, 0)},
		{"far corner down-right", link(9, 5, DownRight), idx(0, 0)},
		{"far corner down-left", link(0, 5, DownLeft), idx(9, 0)},
		{"interior", link(3, 3, UpRight), idx(4, 2)},
	}
	for _, tt := range tests {
		if tt.got != tt.exp {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.exp, tt.got)
		}
	}
}

func TestGridCellPositions(t *testing.T) {
	g := mustGrid(t, 4, 3, 10)
	c, err := g.Cell(3, 2)
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	if c.X != 30 || c.Y != 20 || c.Col != 3 || c.Row != 2 {
		t.Errorf("unexpected cell %+v", c)
	}
	if g.Width() != 40 || g.Height() != 30 {
		t.Errorf("expected 40x30, got %gx%g", g.Width(), g.Height())
	}
	if _, err := g.Cell(4, 0); !errors.Is(err, dynamo.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
	if _, err := g.Neighbor(-1, Up); !errors.Is(err, dynamo.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestGridStaysZeroWithoutDisturbance(t *testing.T) {
	g := mustGrid(t, 12, 9, 10)
	for i := 0; i < 200; i++ {
		g.Step()
	}
	for row := 0; row < g.Rows(); row++ {
		for col := 0; col < g.Cols(); col++ {
			c, _ := g.Cell(col, row)
			if c.VX != 0 || c.VY != 0 || c.Pressure != 0 {
				t.Fatalf("cell (%d,%d) moved: %+v", col, row, c)
			}
		}
	}
}

func TestGridDisturbanceWrapsAcrossCorner(t *testing.T) {
	g := mustGrid(t, 10, 10, 1)
	if err := g.ApplyDisturbance(dynamo.Vec2{}, dynamo.Vec2{X: 2, Y: -1}, 3); err != nil {
		t.Fatalf("disturb: %v", err)
	}

	corner, _ := g.Cell(9, 9)
	middle, _ := g.Cell(5, 5)
	cornerSpeed := math.Hypot(corner.VX, corner.VY)
	middleSpeed := math.Hypot(middle.VX, middle.VY)

	if cornerSpeed <= middleSpeed {
		t.Errorf("expected wrapped corner to move more than centre: %g vs %g", cornerSpeed, middleSpeed)
	}
	// distance sqrt(2) is under the floor of 4, so power is 3/4
	if math.Abs(corner.VX-1.5) > 1e-12 || math.Abs(corner.VY+0.75) > 1e-12 {
		t.Errorf("expected corner velocity (1.5, -0.75), got (%g, %g)", corner.VX, corner.VY)
	}
}

func TestGridDisturbanceFalloff(t *testing.T) {
	g := mustGrid(t, 30, 20, 10)
	point := dynamo.Vec2{X: 150, Y: 100}
	if err := g.ApplyDisturbance(point, dynamo.Vec2{X: 1}, 40); err != nil {
		t.Fatalf("disturb: %v", err)
	}

	// power is 40/max(distance, 4); (19,10) sits on the pen edge
	tests := []struct {
		col, row int
		expected float64
	}{
		{15, 10, 10},
		{16, 10, 4},
		{17, 10, 2},
		{15, 13, 40.0 / 30},
		{19, 10, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		c, _ := g.Cell(tt.col, tt.row)
		if math.Abs(c.VX-tt.expected) > 1e-9 {
			t.Errorf("cell (%d,%d): expected vx %g, got %g", tt.col, tt.row, tt.expected, c.VX)
		}
		if c.VY != 0 {
			t.Errorf("cell (%d,%d): expected vy 0, got %g", tt.col, tt.row, c.VY)
		}
	}
}

func TestGridDisturbanceRejectsOutside(t *testing.T) {
	g := mustGrid(t, 10, 10, 10)
	tests := []struct {
		name  string
		point dynamo.Vec2
		want  error
	}{
		{"negative", dynamo.Vec2{X: -1, Y: 5}, dynamo.ErrOutOfBounds},
		{"past width", dynamo.Vec2{X: 100, Y: 5}, dynamo.ErrOutOfBounds},
		{"nan", dynamo.Vec2{X: math.NaN(), Y: 5}, dynamo.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ApplyDisturbance(tt.point, dynamo.Vec2{X: 1}, 40)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if g.KineticEnergy() != 0 {
		t.Error("rejected disturbance changed the grid")
	}
}

func TestGridPressureFromVelocity(t *testing.T) {
	g := mustGrid(t, 5, 5, 1)
	i, _ := g.Index(2, 2)
	g.cells[i].VX = 1

	g.Step()

	// the cell to the right sees it as its left neighbour: +1 * 0.25
	right, _ := g.Cell(3, 2)
	left, _ := g.Cell(1, 2)
	upRight, _ := g.Cell(3, 1)
	if math.Abs(right.Pressure-0.25) > 1e-12 {
		t.Errorf("expected right pressure 0.25, got %g", right.Pressure)
	}
	if math.Abs(left.Pressure+0.25) > 1e-12 {
		t.Errorf("expected left pressure -0.25, got %g", left.Pressure)
	}
	if math.Abs(upRight.Pressure-0.125) > 1e-12 {
		t.Errorf("expected diagonal pressure 0.125, got %g", upRight.Pressure)
	}
}

func TestGridRelaxes(t *testing.T) {
	g := mustGrid(t, 30, 20, 10)
	_ = g.ApplyDisturbance(dynamo.Vec2{X: 150, Y: 100}, dynamo.Vec2{X: 5, Y: 2}, 40)
	initial := g.KineticEnergy()
	if initial == 0 {
		t.Fatal("expected energy after disturbance")
	}

	for i := 0; i < 500; i++ {
		g.Step()
	}
	if ratio := g.KineticEnergy() / initial; ratio > 1e-6 {
		t.Errorf("expected grid to relax, energy ratio %g", ratio)
	}
}

func TestGridParallelMatchesSerial(t *testing.T) {
	serial := mustGrid(t, 40, 32, 10)
	parallel := mustGrid(t, 40, 32, 10)
	parallel.SetBackend(compute.NewCPUBackend(3))

	for i := 0; i < 50; i++ {
		if i%5 == 0 {
			p := dynamo.Vec2{X: float64(20 + i*5), Y: float64(300 - i*3)}
			v := dynamo.Vec2{X: 3, Y: -2}
			_ = serial.ApplyDisturbance(p, v, 40)
			_ = parallel.ApplyDisturbance(p, v, 40)
		}
		serial.Step()
		parallel.Step()
	}

	for i := range serial.cells {
		if serial.cells[i] != parallel.cells[i] {
			t.Fatalf("backends diverged at cell %d: %+v vs %+v", i, serial.cells[i], parallel.cells[i])
		}
	}
}

func TestGridReset(t *testing.T) {
	g := mustGrid(t, 6, 6, 10)
	_ = g.ApplyDisturbance(dynamo.Vec2{X: 30, Y: 30}, dynamo.Vec2{X: 1, Y: 1}, 20)
	g.Step()
	g.Reset()
	if g.KineticEnergy() != 0 {
		t.Error("expected zero energy after reset")
	}
}
