package benchcompare

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotLeafFill renders a bar chart of per-leaf fill percentage to path,
// one bar per leaf page in page-number order. This replaces the
// os/exec-shelled-out-to-Graphviz tree export the comparison tooling
// used to rely on: the chart is produced in-process.
func PlotLeafFill(pageNums []uint64, fillPercent []float64, path string) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("benchcompare: new plot: %w", err)
	}
	p.Title.Text = "Leaf page fill"
	p.Y.Label.Text = "% of CellsPerPage used"
	p.Y.Min = 0
	p.Y.Max = 100

	values := make(plotter.Values, len(fillPercent))
	copy(values, fillPercent)

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return fmt.Errorf("benchcompare: new bar chart: %w", err)
	}
	p.Add(bars)

	labels := make([]string, len(pageNums))
	for i, n := range pageNums {
		labels[i] = fmt.Sprintf("page %d", n)
	}
	p.NominalX(labels...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("benchcompare: save chart: %w", err)
	}
	return nil
}
