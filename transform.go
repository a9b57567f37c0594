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

// Transformer maps RGB colours to RGB colours.
// Implementations must be safe for concurrent use.
type Transformer interface {
	Apply(r, g, b float64) (float64, float64, float64)
}

// TransformFunc adapts an ordinary function to the [Transformer] interface.
type TransformFunc func(r, g, b float64) (float64, float64, float64)

// Apply calls f(r, g, b).
func (f TransformFunc) Apply(r, g, b float64) (float64, float64, float64) {
	return f(r, g, b)
}

// IdentityTransform leaves all colours unchanged.
var IdentityTransform Transformer = TransformFunc(func(r, g, b float64) (float64, float64, float64) {
	return r, g, b
})

// TransformOptions control how a [Pipeline] is compiled.
type TransformOptions struct {
	// CurveTableSize, if positive, makes the transform evaluate the RGB
	// and hue curves through lookup tables of this size, instead of
	// evaluating the splines directly.
	CurveTableSize int
}

// TransformOption modifies the options used by [NewTransform].
type TransformOption func(opt *TransformOptions)

// WithCurveTables makes the transform use precomputed curve tables with n
// entries.  This trades a small amount of accuracy for speed, which is
// useful when generating large lookup tables.
func WithCurveTables(n int) TransformOption {
	return func(opt *TransformOptions) {
		opt.CurveTableSize = n
	}
}

// toneCurve maps a channel value to a new channel value.
type toneCurve func(float64) float64

// Transform is a compiled grading pipeline.
//
// The stages are, in order: conversion to linear light, basic correction,
// temperature and tint, colour wheels, tonal correction, conversion back to
// sRGB, RGB curves, hue curves and secondary corrections.  The output is
// clamped to [0, 1].
//
// A Transform does not change after creation and is safe for concurrent use.
type Transform struct {
	basic       *BasicCorrection
	temperature float64
	tint        float64
	wheels      *ColorWheels
	tonal       *TonalCorrection

	master, red, green, blue toneCurve

	hueVsHue, hueVsSat, hueVsLuma toneCurve

	secondary []SecondaryCorrection
}

// NewTransform compiles a grading pipeline.
// The pipeline is copied, so later changes to p do not affect the
// transform.  A nil pipeline gives the identity transform, up to rounding
// in the sRGB round trip.
func NewTransform(p *Pipeline, opts ...TransformOption) *Transform {
	opt := &TransformOptions{}
	for _, o := range opts {
		o(opt)
	}

	t := &Transform{}
	if p == nil {
		return t
	}
	p = p.Clone()

	t.basic = p.Basic
	t.temperature = p.Temperature
	t.tint = p.Tint
	t.wheels = p.Wheels
	t.tonal = p.Tonal
	t.secondary = p.Secondary

	if c := p.Curves; c != nil {
		t.master = compileCurve(c.Master, false, p.CurveMode, opt.CurveTableSize)
		t.red = compileCurve(c.Red, false, p.CurveMode, opt.CurveTableSize)
		t.green = compileCurve(c.Green, false, p.CurveMode, opt.CurveTableSize)
		t.blue = compileCurve(c.Blue, false, p.CurveMode, opt.CurveTableSize)
	}
	if hc := p.HueCurves; hc != nil {
		t.hueVsHue = compileCurve(hc.HueVsHue, true, CatmullRom, opt.CurveTableSize)
		t.hueVsSat = compileCurve(hc.HueVsSat, true, CatmullRom, opt.CurveTableSize)
		t.hueVsLuma = compileCurve(hc.HueVsLuma, true, CatmullRom, opt.CurveTableSize)
	}

	return t
}

// compileCurve returns nil for curves without control points, so that the
// corresponding stage is skipped.
func compileCurve(c Curve, loop bool, mode InterpolationMode, tableSize int) toneCurve {
	if len(c) == 0 {
		return nil
	}
	s := c.Spline(loop, mode)
	if tableSize < 2 {
		return s.Eval
	}
	tab := s.Table(tableSize)
	if loop {
		return func(x float64) float64 {
			return tab.Lookup(wrapUnit(x))
		}
	}
	return tab.Lookup
}

// BuildColorTransform compiles a grading pipeline into a function.
func BuildColorTransform(p *Pipeline) TransformFunc {
	return NewTransform(p).Apply
}

// Apply transforms a colour.  The inputs are expected to be in [0, 1],
// the outputs are guaranteed to be in [0, 1].
func (t *Transform) Apply(r, g, b float64) (float64, float64, float64) {
	c := t.ApplyRGB(RGB{r, g, b})
	return c.R, c.G, c.B
}

// ApplyRGB transforms a colour.
func (t *Transform) ApplyRGB(c RGB) RGB {
	c = SRGBToLinear(c)

	if t.basic != nil {
		c = ApplyBasicCorrection(c, *t.basic)
	}
	if t.temperature != 0 || t.tint != 0 {
		if t.temperature != 0 {
			c = ApplyTemperature(c, t.temperature)
		}
		if t.tint != 0 {
			c = ApplyTint(c, t.tint)
		}
		c = c.Clamp()
	}
	if t.wheels != nil {
		c = ApplyColorWheels(c, *t.wheels)
	}
	if t.tonal != nil {
		c = ApplyTonalCorrection(c, *t.tonal).Clamp()
	}

	c = LinearToSRGB(c)

	c = t.applyCurves(c)
	c = t.applyHueCurves(c)

	for i := range t.secondary {
		c = t.secondary[i].Apply(c)
	}

	return c.Clamp()
}

func (t *Transform) applyCurves(c RGB) RGB {
	if t.master != nil {
		c = RGB{t.master(c.R), t.master(c.G), t.master(c.B)}
	}
	if t.red != nil {
		c.R = t.red(c.R)
	}
	if t.green != nil {
		c.G = t.green(c.G)
	}
	if t.blue != nil {
		c.B = t.blue(c.B)
	}
	return c
}

func (t *Transform) applyHueCurves(c RGB) RGB {
	if t.hueVsHue == nil && t.hueVsSat == nil && t.hueVsLuma == nil {
		return c
	}

	h, s, l := RGBToHSL(c)
	x := h / 360
	if t.hueVsHue != nil {
		h = wrapHue(h + (t.hueVsHue(x)-0.5)*360)
	}
	if t.hueVsSat != nil {
		s = Clamp01(s * 2 * t.hueVsSat(x))
	}
	if t.hueVsLuma != nil {
		gain := hueLumaGain(t.hueVsLuma(x))
		l = Clamp01(l * (1 + (gain-1)*s))
	}
	return HSLToRGB(h, s, l)
}

// hueLumaGain maps a hue-vs-luma curve value to a lightness multiplier.
// The value 0.5 maps to 1.
func hueLumaGain(y float64) float64 {
	if y < 0.5 {
		return 1.2*y + 0.4
	}
	return 6*y - 2
}
