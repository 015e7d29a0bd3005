/*
 * plot.go, part of gauss.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package qm

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

//smallest value drawn in the logarithmic axis
const plotFloor = 1e-7

func traceXYs(vals []float64) plotter.XYs {
	pts := make(plotter.XYs, len(vals))
	for i, v := range vals {
		pts[i].X = float64(i + 1)
		pts[i].Y = math.Max(math.Abs(v), plotFloor)
	}
	return pts
}

//ConvergencePlot draws the forces and displacements of each optimization
//step, with their thresholds, and saves it to name. The format follows the
//extension of name (png, svg, pdf...).
func ConvergencePlot(T *OptTrace, name string) error {
	if T == nil || T.Steps == 0 {
		return newError(ErrBadSettings, name, "no optimization steps to plot", nil, "ConvergencePlot")
	}
	p := plot.New()
	p.Title.Text = "Geometry optimization"
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "Value (a.u.)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}
	p.Add(plotter.NewGrid())
	series := []struct {
		name      string
		vals      []float64
		threshold float64
	}{
		{"Maximum force", T.MaxForce, T.MaxForceThreshold},
		{"RMS force", T.RMSForce, T.RMSForceThreshold},
		{"Maximum displacement", T.MaxDisplacement, T.MaxDisplacementThreshold},
		{"RMS displacement", T.RMSDisplacement, T.RMSDisplacementThreshold},
	}
	for i, s := range series {
		if len(s.vals) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(traceXYs(s.vals))
		if err != nil {
			return newError(ErrCantInput, name, s.name, err, "plotter.NewLinePoints", "ConvergencePlot")
		}
		c := plotutil.Color(i)
		line.Color = c
		points.Color = c
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
		if s.threshold > 0 {
			th, err := plotter.NewLine(plotter.XYs{{X: 1, Y: s.threshold}, {X: float64(len(s.vals)), Y: s.threshold}})
			if err != nil {
				return newError(ErrCantInput, name, s.name, err, "plotter.NewLine", "ConvergencePlot")
			}
			th.Color = c
			th.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(th)
		}
	}
	p.Legend.Top = true
	p.Legend.TextStyle.Color = color.Black
	if err := p.Save(6*vg.Inch, 4*vg.Inch, name); err != nil {
		return newError(ErrCantInput, name, "can't save plot", err, "plot.Save", "ConvergencePlot")
	}
	return nil
}
