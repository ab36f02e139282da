package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/san-kum/scatsim/internal/experiment"
)

// Summary describes a run as markdown: the potential, the reference point and
// one table row per partial wave.
func Summary(title string, res *experiment.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **potential** `%s`\n", res.Potential)
	fmt.Fprintf(&b, "- **mu_red** %g, **hbar** %g\n", res.ReducedMass, res.Hbar)
	fmt.Fprintf(&b, "- **E\\*** %.4g, **k\\*** %.4g\n", res.EStar, res.KStar)
	fmt.Fprintf(&b, "- **sigma_tot** %.6g\n\n", res.SigmaTotal)

	b.WriteString("| l | points | candidates |\n|---|---|---|\n")
	for _, ell := range res.Phases.Ells() {
		cands := res.Candidates[ell]
		parts := make([]string, len(cands))
		for i, c := range cands {
			parts[i] = fmt.Sprintf("%.4g (%.3g)", c.Energy, c.Score)
		}
		list := strings.Join(parts, ", ")
		if list == "" {
			list = "none"
		}
		fmt.Fprintf(&b, "| %d | %d | %s |\n", ell, len(res.Phases[ell]), list)
	}
	return b.String()
}

// RenderSummary renders Summary for a terminal of the given width. An empty
// style picks one from the terminal background.
func RenderSummary(title string, res *experiment.Result, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(Summary(title, res))
}
