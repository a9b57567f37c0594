// seehuhn.de/go/grade - colour grading transforms and 3D lookup tables
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package grade

// lattice locates a point within the LUT grid.  It holds the offset of the
// lower corner of the enclosing cell, the strides along the three axes,
// and the fractional position within the cell.
type lattice struct {
	base                int
	rStep, gStep, bStep int
	fr, fg, fb          float64
}

// locate finds the grid cell containing (r, g, b).  The inputs are clamped
// to [0, 1].  n must be at least 2.
//
// Data is stored with red varying fastest, so the offset of grid point
// (ri, gi, bi) is ((bi*n+gi)*n+ri)*3.
func locate(n int, r, g, b float64) lattice {
	scale := float64(n - 1)
	split := func(v float64) (int, float64) {
		pos := clamp(v, 0, 1) * scale
		i := min(int(pos), n-2)
		return i, clamp(pos-float64(i), 0, 1)
	}
	ri, fr := split(r)
	gi, fg := split(g)
	bi, fb := split(b)

	rStep := 3
	gStep := n * rStep
	bStep := n * gStep
	return lattice{
		base:  bi*bStep + gi*gStep + ri*rStep,
		rStep: rStep,
		gStep: gStep,
		bStep: bStep,
		fr:    fr,
		fg:    fg,
		fb:    fb,
	}
}

// tetrahedralInterp3D interpolates an RGB lattice of size n³.
// The cell is split into six tetrahedra, selected by the ordering of the
// fractional coordinates.
func tetrahedralInterp3D(data []float32, n int, r, g, b float64) RGB {
	if n < 2 {
		if len(data) < 3 {
			return RGB{}
		}
		return RGB{float64(data[0]), float64(data[1]), float64(data[2])}
	}

	p := locate(n, r, g, b)
	fr, fg, fb := p.fr, p.fg, p.fb

	c000 := p.base
	c100 := c000 + p.rStep
	c010 := c000 + p.gStep
	c001 := c000 + p.bStep
	c110 := c100 + p.gStep
	c101 := c100 + p.bStep
	c011 := c010 + p.bStep
	c111 := c110 + p.bStep

	var (
		w0, w1, w2, w3 float64
		v1, v2         int
	)
	if fr > fg {
		if fg > fb {
			// fr > fg > fb
			w0, w1, w2, w3 = 1-fr, fr-fg, fg-fb, fb
			v1, v2 = c100, c110
		} else if fr > fb {
			// fr > fb >= fg
			w0, w1, w2, w3 = 1-fr, fr-fb, fb-fg, fg
			v1, v2 = c100, c101
		} else {
			// fb >= fr > fg
			w0, w1, w2, w3 = 1-fb, fb-fr, fr-fg, fg
			v1, v2 = c001, c101
		}
	} else {
		if fr > fb {
			// fg >= fr > fb
			w0, w1, w2, w3 = 1-fg, fg-fr, fr-fb, fb
			v1, v2 = c010, c110
		} else if fg > fb {
			// fg > fb >= fr
			w0, w1, w2, w3 = 1-fg, fg-fb, fb-fr, fr
			v1, v2 = c010, c011
		} else {
			// fb >= fg >= fr
			w0, w1, w2, w3 = 1-fb, fb-fg, fg-fr, fr
			v1, v2 = c001, c011
		}
	}

	var out [3]float64
	for i := range out {
		out[i] = w0*float64(data[c000+i]) +
			w1*float64(data[v1+i]) +
			w2*float64(data[v2+i]) +
			w3*float64(data[c111+i])
	}
	return RGB{out[0], out[1], out[2]}
}

// trilinearInterp3D interpolates an RGB lattice of size n³, using the
// eight corners of the enclosing cell.
func trilinearInterp3D(data []float32, n int, r, g, b float64) RGB {
	if n < 2 {
		return tetrahedralInterp3D(data, n, r, g, b)
	}

	p := locate(n, r, g, b)
	lerp := func(a, b float32, t float64) float64 {
		return float64(a) + t*(float64(b)-float64(a))
	}

	var out [3]float64
	for i := range out {
		at := func(dr, dg, db int) float32 {
			return data[p.base+dr*p.rStep+dg*p.gStep+db*p.bStep+i]
		}
		c00 := lerp(at(0, 0, 0), at(1, 0, 0), p.fr)
		c10 := lerp(at(0, 1, 0), at(1, 1, 0), p.fr)
		c01 := lerp(at(0, 0, 1), at(1, 0, 1), p.fr)
		c11 := lerp(at(0, 1, 1), at(1, 1, 1), p.fr)
		c0 := c00 + p.fg*(c10-c00)
		c1 := c01 + p.fg*(c11-c01)
		out[i] = c0 + p.fb*(c1-c0)
	}
	return RGB{out[0], out[1], out[2]}
}
