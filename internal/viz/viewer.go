package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/scatsim/internal/experiment"
	"github.com/san-kum/scatsim/internal/scatter"
)

type Mode int

const (
	ModePhase Mode = iota
	ModeDelay
	ModeCrossSection
	numModes
)

func (m Mode) String() string {
	switch m {
	case ModePhase:
		return "phase shift"
	case ModeDelay:
		return "time delay"
	case ModeCrossSection:
		return "cross section"
	}
	return "unknown"
}

// Viewer browses one finished run.
type Viewer struct {
	title  string
	res    *experiment.Result
	ells   []int
	idx    int
	mode   Mode
	theme  int
	st     styles
	width  int
	height int
}

func NewViewer(title string, res *experiment.Result) Viewer {
	return Viewer{
		title:  title,
		res:    res,
		ells:   res.Phases.Ells(),
		st:     newStyles(Themes[0]),
		width:  80,
		height: 24,
	}
}

func (v Viewer) Ell() int {
	if len(v.ells) == 0 {
		return -1
	}
	return v.ells[v.idx]
}

func (v Viewer) Mode() Mode { return v.mode }

func (v Viewer) Theme() Theme { return Themes[v.theme] }

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return v, tea.Quit
		case "right", "l":
			if len(v.ells) > 0 {
				v.idx = (v.idx + 1) % len(v.ells)
			}
		case "left", "h":
			if len(v.ells) > 0 {
				v.idx = (v.idx + len(v.ells) - 1) % len(v.ells)
			}
		case "tab":
			v.mode = (v.mode + 1) % numModes
		case "t":
			v.theme = (v.theme + 1) % len(Themes)
			v.st = newStyles(Themes[v.theme])
		}
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
	}
	return v, nil
}

func (v Viewer) View() string {
	var b strings.Builder

	b.WriteString(v.st.title.Render(v.title))
	b.WriteString("\n")
	b.WriteString(v.field("potential", v.res.Potential))
	b.WriteString(v.field("E*", fmt.Sprintf("%.4g", v.res.EStar)))
	b.WriteString(v.field("k*", fmt.Sprintf("%.4g", v.res.KStar)))
	b.WriteString(v.field("sigma_tot", fmt.Sprintf("%.4g", v.res.SigmaTotal)))
	b.WriteString("\n")

	w, h := v.width-12, v.height-14
	ell := v.Ell()
	switch v.mode {
	case ModePhase:
		b.WriteString(Plot(v.res.Phases[ell].Deltas(), fmt.Sprintf("delta_l(E), l=%d", ell), w, h))
	case ModeDelay:
		b.WriteString(Plot(v.res.Delays[ell].Taus(), fmt.Sprintf("tau_l(E), l=%d", ell), w, h))
	case ModeCrossSection:
		vals := make([]float64, len(v.res.CrossSection))
		for i, s := range v.res.CrossSection {
			vals[i] = s.Value
		}
		b.WriteString(Plot(vals, fmt.Sprintf("dsigma/dOmega(theta) at E*=%.4g", v.res.EStar), w, h))
	}
	b.WriteString("\n\n")

	if v.mode != ModeCrossSection {
		b.WriteString(v.candidates(v.res.Candidates[ell]))
	}
	b.WriteString(v.st.muted.Render(fmt.Sprintf("[%s]  h/l: wave  tab: view  t: theme  q: quit", v.mode)))
	b.WriteString("\n")
	return b.String()
}

func (v Viewer) field(label, value string) string {
	return v.st.label.Render(fmt.Sprintf("%-10s", label)) + " " + v.st.value.Render(value) + "\n"
}

func (v Viewer) candidates(cands []scatter.Candidate) string {
	if len(cands) == 0 {
		return v.st.muted.Render("no resonance candidates") + "\n"
	}
	rows := make([]table.Row, len(cands))
	for i, c := range cands {
		rows[i] = table.Row{fmt.Sprintf("%.4g", c.Energy), fmt.Sprintf("%.3g", c.Score)}
	}
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "E", Width: 10},
			{Title: "score", Width: 10},
		}),
		table.WithRows(rows),
		table.WithHeight(min(len(rows), 5)+1),
	)
	return v.st.warn.Render("resonances") + "\n" + t.View() + "\n"
}

// Run opens the viewer on the terminal's alternate screen.
func Run(title string, res *experiment.Result) error {
	p := tea.NewProgram(NewViewer(title, res), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
