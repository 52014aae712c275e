package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ripplesim/internal/config"
)

var presetInfo = map[string]string{
	"ripple/pond": "texture refraction", "ripple/syrup": "heavy damping", "ripple/storm": "constant rain",
	"ripple/still": "no rain", "swarm/default": "particle trails", "swarm/dense": "20k particles",
	"swarm/coarse": "large cells", "swarm/viscous": "slow flow", "swarm/small": "small canvas",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// Launcher turns a picked config into a running live view.
type Launcher func(cfg *config.Config) (Model, error)

// param is one adjustable field on the config screen.
type param struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = map[string][]param{
	"ripple": {
		{"damping_shift", 1, func(c *config.Config) float64 { return float64(c.Ripple.DampingShift) }, func(c *config.Config, v float64) { c.Ripple.DampingShift = uint(max(v, 1)) }},
		{"radius", 1, func(c *config.Config) float64 { return float64(c.Ripple.Radius) }, func(c *config.Config, v float64) { c.Ripple.Radius = int(v) }},
		{"magnitude", 64, func(c *config.Config) float64 { return float64(c.Ripple.Magnitude) }, func(c *config.Config, v float64) { c.Ripple.Magnitude = int32(v) }},
		{"rain_interval", 5, func(c *config.Config) float64 { return float64(c.Ripple.RainInterval) }, func(c *config.Config, v float64) { c.Ripple.RainInterval = int(v) }},
	},
	"swarm": {
		{"pen_radius", 5, func(c *config.Config) float64 { return c.Swarm.PenRadius }, func(c *config.Config, v float64) { c.Swarm.PenRadius = v }},
		{"damping", 0.01, func(c *config.Config) float64 { return c.Swarm.Damping }, func(c *config.Config, v float64) { c.Swarm.Damping = v }},
		{"blend", 0.01, func(c *config.Config) float64 { return c.Swarm.Blend }, func(c *config.Config, v float64) { c.Swarm.Blend = v }},
		{"particle_damping", 0.05, func(c *config.Config) float64 { return c.Swarm.ParticleDamping }, func(c *config.Config, v float64) { c.Swarm.ParticleDamping = v }},
	},
}

type picker struct {
	state, cursor int
	entries       []string
	selected      string
	cfg           *config.Config
	paramCursor   int
	launch        Launcher
	err           error
	liveModel     Model
}

// NewPicker lists every preset of every effect, lets the user adjust the
// main parameters and starts the live view through launch.
func NewPicker(launch Launcher) tea.Model {
	var entries []string
	for _, eff := range []string{"ripple", "swarm"} {
		for _, name := range config.ListPresets(eff) {
			entries = append(entries, eff+"/"+name)
		}
	}
	return picker{state: stateMenu, entries: entries, launch: launch}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(key)
	case stateConfig:
		return m.configKey(key)
	}
	return m, nil
}

func (m picker) menuKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.selected = m.entries[m.cursor]
		eff, preset, _ := strings.Cut(m.selected, "/")
		m.cfg = config.GetPreset(eff, preset)
		m.state, m.paramCursor, m.err = stateConfig, 0, nil
	}
	return m, nil
}

func (m picker) configKey(msg tea.KeyMsg) (picker, tea.Cmd) {
	ps := params[m.cfg.Effect]
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(ps)-1 {
			m.paramCursor++
		}
	case "left", "h":
		p := ps[m.paramCursor]
		p.set(m.cfg, p.get(m.cfg)-p.step)
	case "right", "l":
		p := ps[m.paramCursor]
		p.set(m.cfg, p.get(m.cfg)+p.step)
	case "s", "enter":
		return m.start()
	}
	return m, nil
}

func (m picker) start() (picker, tea.Cmd) {
	if err := m.cfg.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	live, err := m.launch(m.cfg.Clone())
	if err != nil {
		m.err = err
		return m, nil
	}
	m.liveModel, m.state = live, stateSim
	return m, m.liveModel.Init()
}

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func title(head, sub string) string {
	h := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true)
	return "\n\n    " + h.Render(head) + "\n    " + Subtle.Render(sub) + "\n    " + Subtle.Render("─────────────────────────") + "\n\n"
}

func hints(pairs ...string) string {
	key := lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true)
	var b strings.Builder
	b.WriteString("\n    ")
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(key.Render(pairs[i]) + Subtle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String() + "\n"
}

func (m picker) viewMenu() string {
	var b strings.Builder
	b.WriteString(title("RIPPLESIM", "interactive water and particle effects"))
	for i, name := range m.entries {
		desc := presetInfo[name]
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true).Render("▸"), lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(fmt.Sprintf("%-16s", name)), lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render(fmt.Sprintf("  %-16s", name)), Subtle.Render(desc)))
		}
	}
	b.WriteString(hints("j/k", "navigate", "enter", "select", "q", "quit"))
	return b.String()
}

func (m picker) viewConfig() string {
	var b strings.Builder
	b.WriteString(title(strings.ToUpper(m.selected), presetInfo[m.selected]))
	for i, p := range params[m.cfg.Effect] {
		valStr := fmt.Sprintf("%8.3f", p.get(m.cfg))
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", lipgloss.NewStyle().Foreground(CurrentTheme.Secondary).Bold(true).Render("▸"), lipgloss.NewStyle().Foreground(CurrentTheme.Text).Bold(true).Render(fmt.Sprintf("%-18s", p.name)), lipgloss.NewStyle().Foreground(CurrentTheme.Accent).Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", lipgloss.NewStyle().Foreground(CurrentTheme.Muted).Render(fmt.Sprintf("  %-18s", p.name)), Subtle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString(hints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back"))
	return b.String()
}

// RunInteractive opens the preset picker.
func RunInteractive(launch Launcher) error {
	final, err := tea.NewProgram(NewPicker(launch), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return err
	}
	if p, ok := final.(picker); ok && p.state == stateSim {
		return p.liveModel.Err()
	}
	return nil
}
