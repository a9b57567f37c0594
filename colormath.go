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
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/exp/constraints"
)

// RGB is a colour with red, green and blue components.
// Components are nominally in [0, 1], but intermediate results of the
// grading stages may leave this range.
type RGB struct {
	R, G, B float64
}

// Clamp returns the colour with every component saturated to [0, 1].
func (c RGB) Clamp() RGB {
	return RGB{Clamp01(c.R), Clamp01(c.G), Clamp01(c.B)}
}

func (c RGB) add(v float64) RGB {
	return RGB{c.R + v, c.G + v, c.B + v}
}

func (c RGB) scale(v float64) RGB {
	return RGB{c.R * v, c.G * v, c.B * v}
}

// lerp blends c towards d with weight t.
func (c RGB) lerp(d RGB, t float64) RGB {
	return RGB{
		c.R*(1-t) + d.R*t,
		c.G*(1-t) + d.G*t,
		c.B*(1-t) + d.B*t,
	}
}

// SRGBToLinear applies the inverse sRGB transfer function to each component.
func SRGBToLinear(c RGB) RGB {
	return RGB{srgbToLinear(c.R), srgbToLinear(c.G), srgbToLinear(c.B)}
}

// LinearToSRGB applies the sRGB transfer function to each component.
func LinearToSRGB(c RGB) RGB {
	return RGB{linearToSRGB(c.R), linearToSRGB(c.G), linearToSRGB(c.B)}
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

// RGBToHSL converts a colour to hue, saturation and lightness.
// The hue is in degrees, in the range [0, 360).  Grey colours
// have hue and saturation 0.
func RGBToHSL(c RGB) (h, s, l float64) {
	h, s, l = colorful.Color{R: c.R, G: c.G, B: c.B}.Hsl()
	if h >= 360 {
		h -= 360
	}
	// out-of-gamut input with max+min == 2 makes the saturation formula
	// divide by zero
	if math.IsNaN(s) || math.IsInf(s, 0) {
		s = 0
	}
	return h, s, l
}

// HSLToRGB converts hue (in degrees), saturation and lightness to RGB.
func HSLToRGB(h, s, l float64) RGB {
	c := colorful.Hsl(wrapHue(h), s, l)
	return RGB{c.R, c.G, c.B}
}

// wrapHue maps an angle in degrees to [0, 360).
func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// Luminance returns the Rec. 709 luma of a colour.
func Luminance(c RGB) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// Clamp01 saturates v to the range [0, 1].
func Clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// clamp restricts v to [lo, hi].  NaN is mapped to lo.
func clamp[T constraints.Float](v, lo, hi T) T {
	if v > hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}
