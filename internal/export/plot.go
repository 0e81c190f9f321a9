// Package export renders stored trajectories as PNG plots.
package export

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/spacetime"
	"github.com/san-kum/geodesim/internal/storage"
)

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

// RadiusPNG plots r against the affine parameter.
func RadiusPNG(w io.Writer, title string, samples *storage.Samples) error {
	if len(samples.States) == 0 {
		return fmt.Errorf("no samples to plot")
	}
	pts := make(plotter.XYs, len(samples.States))
	for i, r := range samples.Radii() {
		pts[i].X = samples.Lambdas[i]
		pts[i].Y = r
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "lambda"
	p.Y.Label.Text = "r"
	return render(w, p, pts)
}

// OrbitPNG plots the trajectory projected on the equatorial plane. Samples
// taken in near-pole charts are mapped back to polar angles first.
func OrbitPNG(w io.Writer, title string, samples *storage.Samples) error {
	if len(samples.States) == 0 {
		return fmt.Errorf("no samples to plot")
	}
	pts := make(plotter.XYs, len(samples.States))
	for i, st := range samples.States {
		var x manifold.Coords
		copy(x[:], st)
		pts[i].X, pts[i].Y, _ = spacetime.Spatial(samples.Charts[i], x)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	return render(w, p, pts)
}

func render(w io.Writer, p *plot.Plot, pts plotter.XYs) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	p.Add(plotter.NewGrid(), line)

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
