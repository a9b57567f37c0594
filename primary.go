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
	"encoding/json"
	"math"
)

// BasicCorrection holds the basic tone controls.
//
// The zero value is not the identity: use [DefaultBasicCorrection] as the
// starting point.  When decoded from JSON, missing fields take their
// identity values.
type BasicCorrection struct {
	Exposure   float64 `json:"exposure"`   // EV, typically -3..3
	Brightness float64 `json:"brightness"` // additive offset, -1..1
	Contrast   float64 `json:"contrast"`   // 0..3, 1 = identity
	Saturation float64 `json:"saturation"` // 0..3, 1 = identity
	Gamma      float64 `json:"gamma"`      // 0.1..3, 1 = identity
}

// DefaultBasicCorrection returns the identity basic correction.
func DefaultBasicCorrection() BasicCorrection {
	return BasicCorrection{
		Contrast:   1,
		Saturation: 1,
		Gamma:      1,
	}
}

// UnmarshalJSON decodes the correction, using identity values for missing
// fields.
func (bc *BasicCorrection) UnmarshalJSON(data []byte) error {
	type defaults BasicCorrection
	def := defaults(DefaultBasicCorrection())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*bc = BasicCorrection(def)
	return nil
}

// ApplyExposure multiplies all channels by 2^ev.
func ApplyExposure(c RGB, ev float64) RGB {
	return c.scale(math.Exp2(ev))
}

// ApplyBrightness adds an offset to all channels.
func ApplyBrightness(c RGB, offset float64) RGB {
	return c.add(offset)
}

// ApplyContrast scales all channels around 0.5.
func ApplyContrast(c RGB, contrast float64) RGB {
	f := func(v float64) float64 { return (v-0.5)*contrast + 0.5 }
	return RGB{f(c.R), f(c.G), f(c.B)}
}

// ApplySaturation scales the HSL saturation of the colour.
func ApplySaturation(c RGB, saturation float64) RGB {
	h, s, l := RGBToHSL(c)
	return HSLToRGB(h, Clamp01(s*saturation), l)
}

// ApplyGamma applies a power function with exponent 1/gamma.
// Negative values are mapped to 0.
func ApplyGamma(c RGB, gamma float64) RGB {
	e := 1 / math.Max(gamma, minGamma)
	f := func(v float64) float64 { return math.Pow(math.Max(0, v), e) }
	return RGB{f(c.R), f(c.G), f(c.B)}
}

// minGamma keeps the exponent 1/gamma finite.
const minGamma = 0.0001

// ApplyBasicCorrection applies exposure, brightness, contrast, saturation
// and gamma, in this order.  Stages with identity parameters are skipped.
// The result is clamped to [0, 1].
func ApplyBasicCorrection(c RGB, bc BasicCorrection) RGB {
	if bc.Exposure != 0 {
		c = ApplyExposure(c, bc.Exposure)
	}
	if bc.Brightness != 0 {
		c = ApplyBrightness(c, bc.Brightness)
	}
	if bc.Contrast != 1 {
		c = ApplyContrast(c, bc.Contrast)
	}
	if bc.Saturation != 1 {
		c = ApplySaturation(c, bc.Saturation)
	}
	if bc.Gamma != 1 {
		c = ApplyGamma(c, bc.Gamma)
	}
	return c.Clamp()
}

// ApplyTemperature shifts the colour balance between blue (negative
// values) and red (positive values).  The temperature is in the range
// -100..100.
//
// This is a fast linear approximation, not a white balance along the
// Planckian locus.
func ApplyTemperature(c RGB, temperature float64) RGB {
	k := 0.3 * temperature / 100
	return RGB{c.R * (1 + k), c.G, c.B * (1 - k)}
}

// ApplyTint scales the green channel.  Positive tint values in the range
// -100..100 add green.
func ApplyTint(c RGB, tint float64) RGB {
	return RGB{c.R, c.G * (1 + 0.2*tint/100), c.B}
}

// TonalCorrection lifts or lowers shadows, midtones and highlights.
// Each value is in the range -100..100, with 0 meaning no change.
type TonalCorrection struct {
	Shadows    float64 `json:"shadows"`
	Midtones   float64 `json:"midtones"`
	Highlights float64 `json:"highlights"`
}

// tonalRange is the luma window affected by one tonal control.
type tonalRange struct {
	center, width float64
}

var (
	shadowRange    = tonalRange{center: 0, width: 0.5}
	midtoneRange   = tonalRange{center: 0.5, width: 0.3}
	highlightRange = tonalRange{center: 1, width: 0.5}
)

// mask returns the smoothstep weight of luma within the range.
func (r tonalRange) mask(luma float64) float64 {
	falloff := math.Max(0, 1-math.Abs(luma-r.center)/r.width)
	return falloff * falloff * (3 - 2*falloff)
}

// ApplyTonalCorrection adds the same lift to all three channels, computed
// from the Rec. 709 luma of the colour.
func ApplyTonalCorrection(c RGB, tc TonalCorrection) RGB {
	luma := Luminance(c)
	lift := tc.Shadows/100*0.2*shadowRange.mask(luma) +
		tc.Midtones/100*0.2*midtoneRange.mask(luma) +
		tc.Highlights/100*0.2*highlightRange.mask(luma)
	return c.add(lift)
}

// ColorWheelControl is the state of one colour wheel.
type ColorWheelControl struct {
	Hue        float64 `json:"hue"`        // degrees, 0..360
	Saturation float64 `json:"saturation"` // 0..1
	Luminance  float64 `json:"luminance"`  // -1..1
}

// ColorWheels holds the three-way colour corrector.
type ColorWheels struct {
	Lift  ColorWheelControl `json:"lift"`
	Gamma ColorWheelControl `json:"gamma"`
	Gain  ColorWheelControl `json:"gain"`
}

// ColorWheelToRGB converts a wheel position into a per-channel adjustment
// centred at zero.  A wheel with zero saturation and luminance gives
// (0, 0, 0).
func ColorWheelToRGB(w ColorWheelControl) RGB {
	c := HSLToRGB(w.Hue, w.Saturation, 0.5)
	return c.add(w.Luminance - 0.5)
}

// ApplyLift adds the wheel adjustment to the colour.
//
// Although lift is thought of as a shadow control, the offset is the same
// for all tones.
func ApplyLift(c RGB, w ColorWheelControl) RGB {
	adj := ColorWheelToRGB(w)
	return RGB{c.R + adj.R, c.G + adj.G, c.B + adj.B}
}

// ApplyWheelGamma applies a per-channel power function with exponent
// 1/(1+adjustment).
func ApplyWheelGamma(c RGB, w ColorWheelControl) RGB {
	adj := ColorWheelToRGB(w)
	f := func(v, a float64) float64 {
		return math.Pow(math.Max(0, v), 1/math.Max(1+a, minWheelGamma))
	}
	return RGB{f(c.R, adj.R), f(c.G, adj.G), f(c.B, adj.B)}
}

// minWheelGamma bounds 1+adjustment away from zero.
const minWheelGamma = 0.01

// ApplyGain multiplies each channel by 1+adjustment.
func ApplyGain(c RGB, w ColorWheelControl) RGB {
	adj := ColorWheelToRGB(w)
	return RGB{c.R * (1 + adj.R), c.G * (1 + adj.G), c.B * (1 + adj.B)}
}

// ApplyColorWheels applies lift, gamma and gain, in this order,
// and clamps the result to [0, 1].
func ApplyColorWheels(c RGB, w ColorWheels) RGB {
	c = ApplyLift(c, w.Lift)
	c = ApplyWheelGamma(c, w.Gamma)
	c = ApplyGain(c, w.Gain)
	return c.Clamp()
}
