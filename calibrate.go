package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"modtap/config"
	"modtap/monitor"
	"modtap/tap"
)

type decisionMsg tap.Decision

// nullSink keeps calibration from actually switching the input method.
type nullSink struct{}

func (nullSink) Emit(tap.Action) {}

var (
	calTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	calHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	calTableStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	calFiredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	calSlowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	calNoiseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	calSuggestions = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

type calibrateModel struct {
	modifier string
	windowMS int

	// Durations in ms of timed releases (fired and slow) per side.
	taps     [2][]float64
	verdicts [2]map[tap.Reason]int
	recent   []tap.Decision

	width, height int
}

func newCalibrateModel(cfg config.Config) calibrateModel {
	return calibrateModel{
		modifier: cfg.Keys.Modifier,
		windowMS: cfg.Tap.WindowMS,
		verdicts: [2]map[tap.Reason]int{{}, {}},
	}
}

func (m calibrateModel) Init() tea.Cmd {
	return nil
}

func (m calibrateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "enter", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case decisionMsg:
		d := tap.Decision(msg)
		m.verdicts[d.Side][d.Reason]++
		if d.Reason == tap.ReasonFired || d.Reason == tap.ReasonSlow {
			m.taps[d.Side] = append(m.taps[d.Side], float64(d.Duration.Milliseconds()))
		}
		m.recent = append([]tap.Decision{d}, m.recent...)
		if len(m.recent) > 8 {
			m.recent = m.recent[:8]
		}
	}
	return m, nil
}

func (m calibrateModel) View() string {
	var b strings.Builder

	b.WriteString(calTitleStyle.Render("modtap calibration") + "\n\n")
	b.WriteString(fmt.Sprintf("Tap your left and right %s keys the way you normally would.\n", m.modifier))
	b.WriteString(calHelpStyle.Render("Mix in some held shortcuts too. Press q when done.") + "\n\n")

	b.WriteString(calTableStyle.Render(m.renderTable()) + "\n\n")

	if len(m.recent) > 0 {
		b.WriteString("recent:\n")
		for _, d := range m.recent {
			b.WriteString("  " + renderDecision(d) + "\n")
		}
		b.WriteString("\n")
	}

	if rec := m.recommend(); rec > 0 {
		b.WriteString(calSuggestions.Render(
			fmt.Sprintf("suggested window_ms: %d (current: %d)", rec, m.windowMS)) + "\n")
	} else {
		b.WriteString(calHelpStyle.Render("tap a few more times for a suggestion") + "\n")
	}

	return b.String()
}

func (m calibrateModel) renderTable() string {
	row := func(side tap.Side) string {
		v := m.verdicts[side]
		s := percentiles(m.taps[side])
		return fmt.Sprintf("%-10s %5d %5d %6.0f %6.0f %6.0f %6.0f %6.0f",
			side.String(),
			v[tap.ReasonFired], v[tap.ReasonSlow],
			s[0], s[1], s[2], s[3], s[4])
	}
	return fmt.Sprintf("%-10s %5s %5s %6s %6s %6s %6s %6s\n%s\n%s",
		"", "taps", "slow", "min", "p50", "p90", "p95", "max",
		row(tap.Primary), row(tap.Secondary))
}

func renderDecision(d tap.Decision) string {
	switch d.Reason {
	case tap.ReasonFired:
		return calFiredStyle.Render(fmt.Sprintf("✓ %-9s %4dms", d.Side, d.Duration.Milliseconds()))
	case tap.ReasonSlow:
		return calSlowStyle.Render(fmt.Sprintf("✗ %-9s %4dms (slow)", d.Side, d.Duration.Milliseconds()))
	case tap.ReasonInterference:
		return calNoiseStyle.Render(fmt.Sprintf("✗ %-9s %4dms (other keys)", d.Side, d.Duration.Milliseconds()))
	default:
		return calHelpStyle.Render(fmt.Sprintf("✗ %-9s (stale release)", d.Side))
	}
}

// percentiles returns min, p50, p90, p95 and max of the samples.
func percentiles(samples []float64) [5]float64 {
	if len(samples) == 0 {
		return [5]float64{}
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	pct := func(p float64) float64 {
		return sorted[int(float64(len(sorted)-1)*p)]
	}
	return [5]float64{sorted[0], pct(0.50), pct(0.90), pct(0.95), sorted[len(sorted)-1]}
}

// recommend suggests a window that admits 95% of observed taps with a
// little headroom, rounded up to 10ms.
func (m calibrateModel) recommend() int {
	all := append(append([]float64(nil), m.taps[tap.Primary]...), m.taps[tap.Secondary]...)
	if len(all) < 5 {
		return 0
	}
	s := percentiles(all)
	rec := int(math.Ceil(s[3]/10)*10) + 30
	if rec < 100 {
		rec = 100
	}
	return rec
}

func runCalibrate(cfg config.Config) int {
	left, right, err := monitor.LookupModifier(cfg.Keys.Modifier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	p := tea.NewProgram(newCalibrateModel(cfg), tea.WithAltScreen())

	decisions := make(chan tap.Decision, 64)
	go func() {
		for d := range decisions {
			p.Send(decisionMsg(d))
		}
	}()

	engine := tap.New(tap.Config{
		MaxTapDuration: cfg.Window(),
		Keys:           [2]tap.Key{left, right},
		Actions:        [2]tap.Action{tap.ActionEisu, tap.ActionKana},
		OnDecision: func(d tap.Decision) {
			select {
			case decisions <- d:
			default:
			}
		},
	}, monitor.New(monitor.Options{Devices: cfg.Keys.Devices}), nullSink{}, nil)

	if err := engine.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	final, err := p.Run()
	engine.Stop()
	close(decisions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if m, ok := final.(calibrateModel); ok {
		if rec := m.recommend(); rec > 0 {
			fmt.Printf("Suggested tap window: %dms (current %dms)\n", rec, m.windowMS)
			fmt.Println("Set it under [tap] window_ms in your config file.")
		} else {
			fmt.Println("Not enough taps recorded to make a suggestion.")
		}
	}
	return 0
}
