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

import "math"

// HSLKeyerParams describes a soft selection of colours in HSL space.
//
// Each component selects values within Width of the Center at full
// strength, and fades out linearly over the following Softness.
// Hue values are in degrees, all others in [0, 1].
type HSLKeyerParams struct {
	HueCenter   float64 `json:"hueCenter"`
	HueWidth    float64 `json:"hueWidth"`
	HueSoftness float64 `json:"hueSoftness"`

	SatCenter   float64 `json:"satCenter"`
	SatWidth    float64 `json:"satWidth"`
	SatSoftness float64 `json:"satSoftness"`

	LumCenter   float64 `json:"lumCenter"`
	LumWidth    float64 `json:"lumWidth"`
	LumSoftness float64 `json:"lumSoftness"`

	Invert bool `json:"invert"`
}

// minSoftness keeps the ramp of a component mask finite.
const minSoftness = 0.0001

// ComponentMask returns the key strength for a single component,
// given the distance of the value from the key centre.
func ComponentMask(distance, width, softness float64) float64 {
	if distance <= width {
		return 1
	}
	if distance >= width+softness {
		return 0
	}
	return 1 - Clamp01((distance-width)/math.Max(minSoftness, softness))
}

// HSLKey returns the strength in [0, 1] with which the colour c is
// selected by the keyer.  The result is used as a blend weight.
func HSLKey(c RGB, p HSLKeyerParams) float64 {
	h, s, l := RGBToHSL(c)

	dh := math.Abs(h - wrapHue(p.HueCenter))
	dh = math.Min(dh, 360-dh)

	key := ComponentMask(dh, p.HueWidth, p.HueSoftness) *
		ComponentMask(math.Abs(s-p.SatCenter), p.SatWidth, p.SatSoftness) *
		ComponentMask(math.Abs(l-p.LumCenter), p.LumWidth, p.LumSoftness)
	if p.Invert {
		key = 1 - key
	}
	return Clamp01(key)
}

// LumaKey returns a key which only depends on the Rec. 709 luma of c.
// Only the luminance fields and Invert of p are used.
func LumaKey(c RGB, p HSLKeyerParams) float64 {
	d := math.Abs(Luminance(c) - p.LumCenter)
	feather := math.Max(minSoftness, p.LumSoftness*0.5)
	key := ComponentMask(d, p.LumWidth, feather)
	if p.Invert {
		key = 1 - key
	}
	return Clamp01(key)
}

// SecondaryAdjustment is the correction applied to the keyed colours.
// Nil fields leave the corresponding property unchanged.
type SecondaryAdjustment struct {
	Saturation *float64 `json:"saturation,omitempty"` // multiplier
	HueShift   *float64 `json:"hueShift,omitempty"`   // degrees
	Brightness *float64 `json:"brightness,omitempty"` // lightness offset
}

// SecondaryCorrection applies an adjustment to the colours selected by a
// keyer.
type SecondaryCorrection struct {
	Keyer      HSLKeyerParams      `json:"keyer"`
	Correction SecondaryAdjustment `json:"correction"`
}

// Apply blends the corrected colour into c, weighted by the key.
func (sc *SecondaryCorrection) Apply(c RGB) RGB {
	key := HSLKey(c, sc.Keyer)
	if key <= 0 {
		return c
	}

	h, s, l := RGBToHSL(c)
	adj := &sc.Correction
	if adj.Saturation != nil {
		s = Clamp01(s * *adj.Saturation)
	}
	if adj.HueShift != nil {
		h = wrapHue(h + *adj.HueShift)
	}
	if adj.Brightness != nil {
		l = Clamp01(l + *adj.Brightness)
	}
	corrected := HSLToRGB(h, s, l)

	return c.lerp(corrected, key)
}

// clone returns a deep copy of the correction.
func (sc SecondaryCorrection) clone() SecondaryCorrection {
	dup := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	sc.Correction = SecondaryAdjustment{
		Saturation: dup(sc.Correction.Saturation),
		HueShift:   dup(sc.Correction.HueShift),
		Brightness: dup(sc.Correction.Brightness),
	}
	return sc
}
