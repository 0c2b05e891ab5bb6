package main

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	pf "github.com/jhoydich/coupled-particle-filter"
)

var (
	trackedParticleColor  = color.NRGBA{R: 220, A: 90}
	shadowedParticleColor = color.NRGBA{G: 160, A: 90}
	agentColor            = color.NRGBA{A: 255}
	landmarkColor         = color.NRGBA{B: 255, A: 255}
)

type layer struct {
	points plotter.XYs
	style  draw.GlyphStyle
}

// savePlot draws the belief of both filters: tracked particles as red
// triangles, shadowed particles as green pyramids, real agents in black and
// landmarks as blue rings.
func savePlot(dir string, w pf.World, phase pf.Phase, s pf.Snapshot) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Turn %d (%s)", s.Step, phase)
	p.X.Min, p.X.Max = 0, w.Size
	p.Y.Min, p.Y.Max = 0, w.Size
	p.Add(plotter.NewGrid())

	landmarks := make(plotter.XYs, len(w.Landmarks))
	for i, lm := range w.Landmarks {
		landmarks[i].X, landmarks[i].Y = lm.X, lm.Y
	}

	layers := []layer{
		{posesXY(s.TrackedParticles), draw.GlyphStyle{Color: trackedParticleColor, Shape: draw.TriangleGlyph{}, Radius: vg.Points(2)}},
		{posesXY(s.ShadowedParticles), draw.GlyphStyle{Color: shadowedParticleColor, Shape: draw.PyramidGlyph{}, Radius: vg.Points(2)}},
		{posesXY([]pf.Pose{s.Tracked}), draw.GlyphStyle{Color: agentColor, Shape: draw.TriangleGlyph{}, Radius: vg.Points(5)}},
		{posesXY([]pf.Pose{s.Shadowed}), draw.GlyphStyle{Color: agentColor, Shape: draw.PyramidGlyph{}, Radius: vg.Points(5)}},
		{landmarks, draw.GlyphStyle{Color: landmarkColor, Shape: draw.RingGlyph{}, Radius: vg.Points(6)}},
	}
	for _, l := range layers {
		sc, err := plotter.NewScatter(l.points)
		if err != nil {
			return "", err
		}
		sc.GlyphStyle = l.style
		p.Add(sc)
	}

	name := filepath.Join(dir, fmt.Sprintf("belief%03d-%s.png", s.Step, phase))
	if err := p.Save(5*vg.Inch, 5*vg.Inch, name); err != nil {
		return "", err
	}
	return name, nil
}

func posesXY(poses []pf.Pose) plotter.XYs {
	pts := make(plotter.XYs, len(poses))
	for i, p := range poses {
		pts[i].X = p.X
		pts[i].Y = p.Y
	}
	return pts
}
