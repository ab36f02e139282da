package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// Plot renders data as an ASCII line chart. Non-finite samples are dropped
// and an empty result yields a placeholder line.
func Plot(data []float64, caption string, width, height int) string {
	clean := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return "(no data) " + caption
	}
	if width < 10 {
		width = 10
	}
	if height < 3 {
		height = 3
	}
	return asciigraph.Plot(clean,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
