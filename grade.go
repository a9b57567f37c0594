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

// Package grade implements colour grading transforms and 3D lookup tables.
//
// A grading configuration is described by a [Pipeline] value: basic tone
// controls, temperature and tint, three-way colour wheels, tonal lift,
// RGB and hue curves, and a list of keyed secondary corrections.
// The configuration is compiled into an immutable [Transform], which maps
// RGB colours in [0, 1] to RGB colours in [0, 1].
//
// # Building Transforms
//
// Use [ParsePipeline] to read a configuration from JSON, or fill in a
// [Pipeline] directly, and then call [NewTransform]:
//
//	p, err := grade.ParsePipeline(data)
//	if err != nil {
//	    // handle error
//	}
//	t := grade.NewTransform(p)
//	r, g, b := t.Apply(0.2, 0.4, 0.6)
//
// Stages which are not set in the Pipeline are skipped, so that the empty
// Pipeline gives the identity transform.
//
// # Lookup Tables
//
// A transform can be sampled into a [LUT3D] using [GenerateLUT3D], and
// lookup tables can be written and read in the ".cube" and ".3dl" text
// formats:
//
//	lut, err := grade.GenerateLUT3D(33, t)
//	if err != nil {
//	    // handle error
//	}
//	err = grade.WriteCube(w, &grade.LUTFile{LUT3D: lut, Title: "my look"})
//
// LUT data is stored with the red index varying fastest and the blue index
// varying slowest, as in the .cube format.
package grade

import (
	"encoding/json"
	"slices"
)

// RGBCurves are tone curves applied to the display-referred signal.
// The master curve is applied to all three channels first, then each
// channel is passed through its own curve.
type RGBCurves struct {
	Master Curve `json:"master,omitempty"`
	Red    Curve `json:"red,omitempty"`
	Green  Curve `json:"green,omitempty"`
	Blue   Curve `json:"blue,omitempty"`
}

// HueCurves are cyclic curves indexed by hue, where x = hue/360.
// A value of y = 0.5 leaves the colour unchanged.
type HueCurves struct {
	HueVsHue  Curve `json:"hueVsHue,omitempty"`
	HueVsSat  Curve `json:"hueVsSat,omitempty"`
	HueVsLuma Curve `json:"hueVsLuma,omitempty"`
}

// Pipeline is a complete grading configuration.
//
// Nil fields, and zero values for Temperature and Tint, disable the
// corresponding stage.
type Pipeline struct {
	// Basic holds the basic tone controls.  Start from
	// [DefaultBasicCorrection] when filling this in: the zero
	// BasicCorrection has zero contrast, saturation and gamma, and maps
	// every colour to black.
	Basic *BasicCorrection `json:"basic,omitempty"`

	Temperature float64               `json:"temperature,omitempty"` // -100..100
	Tint        float64               `json:"tint,omitempty"`        // -100..100
	Wheels      *ColorWheels          `json:"wheels,omitempty"`
	Tonal       *TonalCorrection      `json:"tonal,omitempty"`
	Curves      *RGBCurves            `json:"curves,omitempty"`
	HueCurves   *HueCurves            `json:"hueCurves,omitempty"`
	Secondary   []SecondaryCorrection `json:"secondary,omitempty"`

	// CurveMode selects the interpolation used for the RGB curves.
	CurveMode InterpolationMode `json:"curveMode,omitempty"`
}

// ParsePipeline decodes a grading configuration from JSON.
func ParsePipeline(data []byte) (*Pipeline, error) {
	p := &Pipeline{}
	err := json.Unmarshal(data, p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Clone returns a deep copy of the pipeline.
func (p *Pipeline) Clone() *Pipeline {
	if p == nil {
		return nil
	}
	res := &Pipeline{
		Temperature: p.Temperature,
		Tint:        p.Tint,
		CurveMode:   p.CurveMode,
	}
	if p.Basic != nil {
		bc := *p.Basic
		res.Basic = &bc
	}
	if p.Wheels != nil {
		w := *p.Wheels
		res.Wheels = &w
	}
	if p.Tonal != nil {
		tc := *p.Tonal
		res.Tonal = &tc
	}
	if p.Curves != nil {
		res.Curves = &RGBCurves{
			Master: slices.Clone(p.Curves.Master),
			Red:    slices.Clone(p.Curves.Red),
			Green:  slices.Clone(p.Curves.Green),
			Blue:   slices.Clone(p.Curves.Blue),
		}
	}
	if p.HueCurves != nil {
		res.HueCurves = &HueCurves{
			HueVsHue:  slices.Clone(p.HueCurves.HueVsHue),
			HueVsSat:  slices.Clone(p.HueCurves.HueVsSat),
			HueVsLuma: slices.Clone(p.HueCurves.HueVsLuma),
		}
	}
	if p.Secondary != nil {
		res.Secondary = make([]SecondaryCorrection, len(p.Secondary))
		for i, sc := range p.Secondary {
			res.Secondary[i] = sc.clone()
		}
	}
	return res
}
