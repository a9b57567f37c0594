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

import (
	"fmt"
	"math"
	"sort"
)

// CurvePoint is a control point of a [Curve].
// Both coordinates are conceptually in [0, 1].
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is a user-editable transfer curve, given by its control points.
//
// The points may be in any order.  Before evaluation, the points are sorted
// by X and points with duplicate X are removed, keeping the later one.
// Empty and single-point curves are valid.
//
// RGB curves map the unit interval to itself.  Hue curves are periodic with
// period 1 ("loop" mode); there the X coordinate is the hue divided by 360
// degrees and a Y value of 0.5 means "no change".
type Curve []CurvePoint

// InterpolationMode selects how a curve is interpolated between its
// control points.  Hue curves in loop mode always use Catmull-Rom splines.
type InterpolationMode int

// These are the supported interpolation modes.
const (
	// Monotonic uses cubic Hermite interpolation with Fritsch-Carlson
	// tangent limiting.  The curve never overshoots its control points.
	Monotonic InterpolationMode = iota

	// CatmullRom uses uniform Catmull-Rom splines.  This can overshoot.
	CatmullRom

	// Linear connects the control points with straight lines.
	Linear
)

func (m InterpolationMode) String() string {
	switch m {
	case Monotonic:
		return "monotonic"
	case CatmullRom:
		return "catmullRom"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("InterpolationMode(%d)", int(m))
	}
}

// MarshalText implements the [encoding.TextMarshaler] interface.
func (m InterpolationMode) MarshalText() ([]byte, error) {
	switch m {
	case Monotonic, CatmullRom, Linear:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("invalid interpolation mode %d", int(m))
}

// UnmarshalText implements the [encoding.TextUnmarshaler] interface.
func (m *InterpolationMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "monotonic", "":
		*m = Monotonic
	case "catmullRom":
		*m = CatmullRom
	case "linear":
		*m = Linear
	default:
		return fmt.Errorf("unknown interpolation mode %q", text)
	}
	return nil
}

// Normalize returns a copy of the curve, sorted by X, where for every X
// value only the last occurrence is kept.
func (c Curve) Normalize() Curve {
	return normalizePoints(c, false)
}

func normalizePoints(c Curve, loop bool) Curve {
	pts := make(Curve, len(c))
	copy(pts, c)
	if loop {
		for i := range pts {
			pts[i].X = wrapUnit(pts[i].X)
		}
	}

	// The stable sort keeps equal X values in their original order,
	// so the last point of every run is the later occurrence.
	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].X < pts[j].X
	})
	out := pts[:0]
	for i, p := range pts {
		if i+1 < len(pts) && pts[i+1].X == p.X {
			continue
		}
		out = append(out, p)
	}
	return out
}

// AddPoint returns a normalised copy of the curve with p added.
// An existing point with the same X is replaced.
func (c Curve) AddPoint(p CurvePoint) Curve {
	res := make(Curve, 0, len(c)+1)
	res = append(res, c...)
	res = append(res, p)
	return res.Normalize()
}

// RemovePoint returns a normalised copy of the curve with the point at
// index i (in normalised order) removed.  The end points at X=0 and X=1
// cannot be removed; in this case, and if i is out of range, the
// normalised curve is returned unchanged.
func (c Curve) RemovePoint(i int) Curve {
	pts := c.Normalize()
	if i < 0 || i >= len(pts) {
		return pts
	}
	if x := pts[i].X; x == 0 || x == 1 {
		return pts
	}
	return append(pts[:i], pts[i+1:]...)
}

// ResetCurve returns the identity curve for RGB curves.
func ResetCurve() Curve {
	return Curve{{X: 0, Y: 0}, {X: 1, Y: 1}}
}

// ResetHueCurve returns the neutral curve for hue curves.
func ResetHueCurve() Curve {
	return Curve{{X: 0, Y: 0.5}, {X: 1, Y: 0.5}}
}

// EvaluateCurve evaluates the curve at x.
// If loop is set, the curve is treated as periodic with period 1.
// The result is always in [0, 1].
//
// Callers which evaluate the same curve many times should use
// [Curve.Spline] instead, which normalises the points only once.
func EvaluateCurve(c Curve, x float64, loop bool, mode InterpolationMode) float64 {
	return c.Spline(loop, mode).Eval(x)
}

// Spline is a curve prepared for repeated evaluation.
// A Spline is immutable and safe for concurrent use.
type Spline struct {
	pts  Curve
	loop bool
	mode InterpolationMode

	// tangents for monotonic interpolation
	m []float64

	// periodic extension of pts, used in loop mode
	ext Curve
}

// Spline prepares the curve for evaluation.
func (c Curve) Spline(loop bool, mode InterpolationMode) *Spline {
	s := &Spline{
		pts:  normalizePoints(c, loop),
		loop: loop,
		mode: mode,
	}
	n := len(s.pts)
	switch {
	case loop && n >= 2:
		s.ext = make(Curve, 0, 3*n)
		for _, shift := range []float64{-1, 0, 1} {
			for _, p := range s.pts {
				s.ext = append(s.ext, CurvePoint{X: p.X + shift, Y: p.Y})
			}
		}
	case !loop && mode == Monotonic:
		s.m = monotoneTangents(s.pts)
	}
	return s
}

// Eval evaluates the spline at x.  The result is always in [0, 1].
func (s *Spline) Eval(x float64) float64 {
	if s.loop {
		return s.evalLoop(x)
	}

	pts := s.pts
	n := len(pts)
	if n == 0 || math.IsNaN(x) {
		return 0
	}
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	// Outside the control points, continue with a straight line to the
	// corners (0,0) and (1,1).
	first, last := pts[0], pts[n-1]
	if x < first.X {
		return Clamp01(first.Y * x / first.X)
	}
	if x > last.X {
		return Clamp01(last.Y + (1-last.Y)*(x-last.X)/(1-last.X))
	}
	if n == 1 {
		return Clamp01(first.Y)
	}

	i := segment(pts, x)
	p0, p1 := pts[i], pts[i+1]
	h := p1.X - p0.X
	t := (x - p0.X) / h

	var y float64
	switch s.mode {
	case Linear:
		y = p0.Y + t*(p1.Y-p0.Y)
	case CatmullRom:
		y = catmullRom(pointY(pts, i-1), p0.Y, p1.Y, pointY(pts, i+2), t)
	default:
		y = hermite(p0.Y, p1.Y, s.m[i]*h, s.m[i+1]*h, t)
	}
	return Clamp01(y)
}

func (s *Spline) evalLoop(x float64) float64 {
	switch len(s.pts) {
	case 0:
		return 0.5
	case 1:
		return Clamp01(s.pts[0].Y)
	}

	x = wrapUnit(x)

	ext := s.ext
	i := segment(ext, x)
	p0, p1 := ext[i], ext[i+1]
	t := (x - p0.X) / (p1.X - p0.X)
	y := catmullRom(pointY(ext, i-1), p0.Y, p1.Y, pointY(ext, i+2), t)
	return Clamp01(y)
}

// Table samples the spline at resolution evenly spaced positions covering
// [0, 1].  If resolution is less than 2, [DefaultTableSize] is used.
func (s *Spline) Table(resolution int) CurveTable {
	if resolution < 2 {
		resolution = DefaultTableSize
	}
	tab := make(CurveTable, resolution)
	for i := range tab {
		tab[i] = s.Eval(float64(i) / float64(resolution-1))
	}
	return tab
}

// Table samples a non-periodic, monotonically interpolated curve.
// See [Spline.Table].
func (c Curve) Table(resolution int) CurveTable {
	return c.Spline(false, Monotonic).Table(resolution)
}

// DefaultTableSize is the number of samples used by [Curve.Table]
// when no valid resolution is given.
const DefaultTableSize = 256

// CurveTable holds evenly spaced samples of a curve over [0, 1].
type CurveTable []float64

// Lookup evaluates the table at x, using linear interpolation between
// samples.  Inputs outside [0, 1] are clamped.
func (tab CurveTable) Lookup(x float64) float64 {
	n := len(tab)
	if n == 0 {
		return Clamp01(x)
	}
	if n == 1 {
		return tab[0]
	}

	pos := Clamp01(x) * float64(n-1)
	idx := int(pos)
	if idx >= n-1 {
		return tab[n-1]
	}
	frac := pos - float64(idx)
	return tab[idx] + frac*(tab[idx+1]-tab[idx])
}

// segment returns the index i of the segment pts[i]..pts[i+1] containing x.
// The result is in the range [0, len(pts)-2].
func segment(pts Curve, x float64) int {
	i := sort.Search(len(pts), func(j int) bool {
		return pts[j].X > x
	}) - 1
	return max(0, min(i, len(pts)-2))
}

// pointY returns the Y value of pts[i].  Indices just outside the valid
// range give virtual end points, extrapolated from the last two points.
func pointY(pts Curve, i int) float64 {
	n := len(pts)
	switch {
	case i < 0:
		return 2*pts[0].Y - pts[1].Y
	case i >= n:
		return 2*pts[n-1].Y - pts[n-2].Y
	}
	return pts[i].Y
}

// wrapUnit maps x to [0, 1).  Non-finite values are mapped to 0.
func wrapUnit(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	x -= math.Floor(x)
	if x >= 1 {
		// tiny negative inputs round up to 1
		x = 0
	}
	return x
}

// flatSlope is the secant slope below which a segment is treated as flat.
const flatSlope = 1e-9

// monotoneTangents computes Fritsch-Carlson limited tangents for cubic
// Hermite interpolation through pts.
func monotoneTangents(pts Curve) []float64 {
	n := len(pts)
	m := make([]float64, n)
	if n < 2 {
		return m
	}

	d := make([]float64, n-1)
	for k := range d {
		d[k] = (pts[k+1].Y - pts[k].Y) / (pts[k+1].X - pts[k].X)
	}

	m[0] = d[0]
	m[n-1] = d[n-2]
	for k := 1; k < n-1; k++ {
		if d[k-1]*d[k] <= 0 {
			m[k] = 0
		} else {
			m[k] = (d[k-1] + d[k]) / 2
		}
	}

	for k, dk := range d {
		if math.Abs(dk) < flatSlope {
			m[k] = 0
			m[k+1] = 0
			continue
		}
		if m[k]/dk > 3 {
			m[k] = 3 * dk
		}
		if m[k+1]/dk > 3 {
			m[k+1] = 3 * dk
		}
	}
	return m
}

// hermite evaluates the cubic Hermite polynomial with end values y0, y1
// and end derivatives (already scaled to the unit interval) m0, m1.
func hermite(y0, y1, m0, m1, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*y0 + h10*m0 + h01*y1 + h11*m1
}

// catmullRom evaluates the uniform Catmull-Rom spline through p0, ..., p3
// between p1 (t=0) and p2 (t=1).
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	t2 := t * t
	t3 := t2 * t
	return 0.5 * (2*p1 +
		(p2-p0)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(3*p1-p0-3*p2+p3)*t3)
}
