package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ripplesim/internal/dynamo"
	"github.com/san-kum/ripplesim/internal/effect"
	"github.com/san-kum/ripplesim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameRate       = 30

	// canvasStyle padding, in terminal cells
	padLeft, padTop = 2, 1

	// rippleThreshold is the |energy| above which a ripple dot is lit.
	rippleThreshold = 16
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(padTop, padLeft)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	graphStyle  = lipgloss.NewStyle().Padding(1, 0)
)

type TickMsg time.Time

// Model is the live terminal view. The mouse is the disturbance source:
// pressing or dragging posts the pointer, releasing ends the stroke.
type Model struct {
	sim           *sim.Simulator
	effect        effect.Effect
	dt            float64
	width, height int
	canvas        *Canvas
	rng           *rand.Rand
	running       bool
	energy        []float64
	recording     bool
	frames        []*image.Paletted
	gifPath       string
	snapshot      func() (string, error)
	message       string
	showHelp      bool
	err           error
}

type Option func(*Model)

// WithSnapshot installs the handler for the "s" key; it returns the path
// written.
func WithSnapshot(fn func() (string, error)) Option {
	return func(m *Model) { m.snapshot = fn }
}

func WithGIFPath(path string) Option {
	return func(m *Model) { m.gifPath = path }
}

func NewModel(s *sim.Simulator, e effect.Effect, dt float64, opts ...Option) Model {
	m := Model{
		sim:     s,
		effect:  e,
		dt:      dt,
		width:   width,
		height:  height,
		canvas:  NewCanvas(width, height),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		running: true,
		energy:  make([]float64, 0, historyCapacity),
		gifPath: "ripplesim.gif",
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.draw()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Err is the step failure that ended the session, if any.
func (m Model) Err() error { return m.err }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.sim.Reset()
			m.energy = m.energy[:0]
		case "n":
			if !m.running {
				m.step()
			}
		case "g":
			m.toggleRecording()
		case "s":
			m.takeSnapshot()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == CurrentTheme.Name {
					SetTheme(names[(i+1)%len(names)])
					break
				}
			}
		}
	case tea.MouseMsg:
		m.pointer(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		if m.err != nil {
			return m, tea.Quit
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

// pointer maps a terminal cell onto the effect's canvas and posts it.
func (m *Model) pointer(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionRelease:
		m.sim.Mailbox().Release()
		return
	case tea.MouseActionPress, tea.MouseActionMotion:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
	default:
		return
	}

	col, row := msg.X-padLeft, msg.Y-padTop
	if col < 0 || row < 0 || col >= m.width || row >= m.height {
		return
	}
	// centre of the character cell
	x := (float64(col) + 0.5) / float64(m.width) * m.effect.Width()
	y := (float64(row) + 0.5) / float64(m.height) * m.effect.Height()
	m.sim.Mailbox().Post(dynamo.At(x, y))
}

func (m *Model) step() {
	f, err := m.sim.Tick(m.dt)
	if err != nil {
		m.err = err
		return
	}
	m.energy = append(m.energy, f.Energy)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

func (m *Model) takeSnapshot() {
	if m.snapshot == nil {
		return
	}
	path, err := m.snapshot()
	if err != nil {
		m.message = "snapshot failed: " + err.Error()
		return
	}
	m.message = "saved " + path
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		m.message = "recording"
		return
	}
	if err := m.saveGIF(); err != nil {
		m.message = "gif failed: " + err.Error()
	} else {
		m.message = fmt.Sprintf("saved %s (%d frames)", m.gifPath, len(m.frames))
	}
	m.recording = false
	m.frames = nil
}

// draw renders the effect onto the braille canvas.
func (m *Model) draw() {
	m.canvas.Clear()
	switch e := m.effect.(type) {
	case *effect.Ripple:
		m.drawRipple(e)
	case *effect.Swarm:
		m.drawSwarm(e)
	}
}

func (m *Model) drawRipple(r *effect.Ripple) {
	field := r.Field()
	fw, fh := field.Size()
	cw, ch := m.canvas.SubSize()
	for y := 0; y < ch; y++ {
		fy := y * fh / ch
		for x := 0; x < cw; x++ {
			e, err := field.EnergyAt(x*fw/cw, fy)
			if err != nil {
				continue
			}
			if e > rippleThreshold || e < -rippleThreshold {
				m.canvas.Set(x, y)
			}
		}
	}
}

func (m *Model) drawSwarm(s *effect.Swarm) {
	cw, ch := m.canvas.SubSize()
	sx, sy := float64(cw)/s.Width(), float64(ch)/s.Height()
	for seg := range s.Segments(m.rng) {
		m.canvas.DrawLine(int(seg.X0*sx), int(seg.Y0*sy), int(seg.X1*sx), int(seg.Y1*sy))
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Foreground(CurrentTheme.Primary).Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.effect.Name())) + "\n")

	switch {
	case m.recording:
		s.WriteString(StatusRecording.Render("● REC"))
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Foreground(CurrentTheme.Secondary).Render(chart) + "\n\n")
	}

	energy := 0.0
	if len(m.energy) > 0 {
		energy = m.energy[len(m.energy)-1]
	}
	injected, rejected := m.sim.Totals()
	posted, dropped := m.sim.Mailbox().Stats()
	s.WriteString(metric("Frame", fmt.Sprintf("%d", m.sim.Frame())))
	s.WriteString(metric("Energy", fmt.Sprintf("%.2f", energy)))
	s.WriteString(metric("Injected", fmt.Sprintf("%d", injected)))
	s.WriteString(metric("Rejected", fmt.Sprintf("%d", rejected)))
	s.WriteString(metric("Pointer", fmt.Sprintf("%d (%d merged)", posted, dropped)))
	s.WriteString(metric("Theme", CurrentTheme.Name))
	if len(m.energy) > 1 {
		s.WriteString("\n" + SparklineChart(m.energy, 30) + "\n")
	}
	if m.message != "" {
		s.WriteString("\n" + Subtle.Render(m.message) + "\n")
	}
	s.WriteString(KeyHint.Render("\n─────────────────────\nSP:Pause N:Step R:Reset Q:Quit\nT:Theme G:Record S:Snapshot ?:Help\nDrag the mouse to disturb"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Mouse    - Press/drag to disturb    ║
║  Space    - Pause/Resume simulation  ║
║  N        - Single step when paused  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  G        - Toggle GIF recording     ║
║  S        - Save a PNG snapshot      ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func metric(label, value string) string {
	return MetricLabel.Width(12).Render(label) + MetricValue.Render(value) + "\n"
}

// captureFrame rasterises the canvas into a two-colour GIF frame.
func (m *Model) captureFrame() {
	const charW, charH = 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, m.width*charW, m.height*charH), color.Palette{color.Black, color.White})
	for x, y := range m.canvas.Dots() {
		for py := 0; py < dotH; py++ {
			for px := 0; px < dotW; px++ {
				img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/frameRate)
	}
	f, err := os.Create(m.gifPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// Run starts the live view with mouse reporting on the alternate screen.
func Run(m Model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
