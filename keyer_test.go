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
	"testing"
)

func redKey() HSLKeyerParams {
	return HSLKeyerParams{
		HueCenter: 0, HueWidth: 30, HueSoftness: 0,
		SatCenter: 0.75, SatWidth: 0.25, SatSoftness: 0,
		LumCenter: 0.5, LumWidth: 0.2, LumSoftness: 0,
	}
}

func TestComponentMask(t *testing.T) {
	cases := []struct {
		d, w, s, want float64
	}{
		{0, 0.1, 0.1, 1},
		{0.1, 0.1, 0.1, 1},
		{0.15, 0.1, 0.1, 0.5},
		{0.2, 0.1, 0.1, 0},
		{0.5, 0.1, 0.1, 0},
		{0.1, 0.1, 0, 1},
		{0.1000001, 0.1, 0, 0},
	}
	for _, tc := range cases {
		got := ComponentMask(tc.d, tc.w, tc.s)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ComponentMask(%g, %g, %g) = %g, want %g", tc.d, tc.w, tc.s, got, tc.want)
		}
	}
}

func TestHSLKeyRed(t *testing.T) {
	if k := HSLKey(RGB{1, 0, 0}, redKey()); k <= 0.5 {
		t.Errorf("pure red key = %g, want > 0.5", k)
	}

	p := redKey()
	p.Invert = true
	if k := HSLKey(RGB{1, 0, 0}, p); k >= 0.5 {
		t.Errorf("inverted pure red key = %g, want < 0.5", k)
	}
}

func TestHSLKeyCircularHue(t *testing.T) {
	p := HSLKeyerParams{
		HueCenter: 30, HueWidth: 30, HueSoftness: 0,
		SatCenter: 0.5, SatWidth: 0.5,
		LumCenter: 0.5, LumWidth: 0.5,
	}
	if k := HSLKey(HSLToRGB(270, 1, 0.5), p); k > 1e-9 {
		t.Errorf("key 240 degrees away = %g, want 0", k)
	}
	if k := HSLKey(HSLToRGB(30, 1, 0.5), p); k != 1 {
		t.Errorf("key at centre = %g, want 1", k)
	}

	// 350 degrees is 20 degrees away from 10 degrees
	p.HueCenter = 10
	p.HueWidth = 25
	if k := HSLKey(HSLToRGB(350, 1, 0.5), p); k != 1 {
		t.Errorf("key across 0 degrees = %g, want 1", k)
	}
}

func TestHSLKeySoftness(t *testing.T) {
	p := HSLKeyerParams{
		HueCenter: 120, HueWidth: 10, HueSoftness: 20,
		SatCenter: 0.5, SatWidth: 0.5,
		LumCenter: 0.5, LumWidth: 0.5,
	}
	k := HSLKey(HSLToRGB(140, 1, 0.5), p)
	if math.Abs(k-0.5) > 1e-6 {
		t.Errorf("key in the soft range = %g, want 0.5", k)
	}
}

func TestLumaKey(t *testing.T) {
	p := HSLKeyerParams{LumCenter: 0.2, LumWidth: 0.1, LumSoftness: 0.2}
	cases := []struct {
		c    RGB
		want float64
	}{
		{RGB{0.2, 0.2, 0.2}, 1},
		{RGB{0.3, 0.3, 0.3}, 1},
		{RGB{0.35, 0.35, 0.35}, 0.5},
		{RGB{0.6, 0.6, 0.6}, 0},
	}
	for _, tc := range cases {
		if got := LumaKey(tc.c, p); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("LumaKey(%v) = %g, want %g", tc.c, got, tc.want)
		}
	}
}

func TestSecondaryCorrection(t *testing.T) {
	sat := 0.0
	sc := SecondaryCorrection{
		Keyer:      redKey(),
		Correction: SecondaryAdjustment{Saturation: &sat},
	}

	// red is fully keyed and fully desaturated
	got := sc.Apply(RGB{1, 0, 0})
	if d := math.Abs(got.R-0.5) + math.Abs(got.G-0.5) + math.Abs(got.B-0.5); d > 1e-9 {
		t.Errorf("desaturated red = %v", got)
	}

	// blue is not keyed
	blue := RGB{0, 0, 1}
	if got := sc.Apply(blue); got != blue {
		t.Errorf("unkeyed colour changed to %v", got)
	}

	shift := 120.0
	sc = SecondaryCorrection{
		Keyer:      redKey(),
		Correction: SecondaryAdjustment{HueShift: &shift},
	}
	got = sc.Apply(RGB{1, 0, 0})
	if d := math.Abs(got.R) + math.Abs(got.G-1) + math.Abs(got.B); d > 1e-9 {
		t.Errorf("hue shifted red = %v, want green", got)
	}
}
