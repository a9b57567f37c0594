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

import "encoding/json"

// LegacyColorCorrection is the flat parameter set used by older
// colour correction nodes.
type LegacyColorCorrection struct {
	Exposure    float64 `json:"exposure"`
	Brightness  float64 `json:"brightness"`
	Contrast    float64 `json:"contrast"`
	Saturation  float64 `json:"saturation"`
	Gamma       float64 `json:"gamma"`
	Shadows     float64 `json:"shadows"`
	Highlights  float64 `json:"highlights"`
	Temperature float64 `json:"temperature"`
	Tint        float64 `json:"tint"`
}

// DefaultLegacyColorCorrection returns the identity parameter set.
func DefaultLegacyColorCorrection() LegacyColorCorrection {
	return LegacyColorCorrection{
		Contrast:   1,
		Saturation: 1,
		Gamma:      1,
	}
}

// UnmarshalJSON decodes the parameters, using identity values for missing
// fields.
func (lc *LegacyColorCorrection) UnmarshalJSON(data []byte) error {
	type defaults LegacyColorCorrection
	def := defaults(DefaultLegacyColorCorrection())
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*lc = LegacyColorCorrection(def)
	return nil
}

// Pipeline translates the legacy parameters into a grading pipeline.
// The midtones of the tonal correction are always 0.
func (lc LegacyColorCorrection) Pipeline() *Pipeline {
	return &Pipeline{
		Basic: &BasicCorrection{
			Exposure:   lc.Exposure,
			Brightness: lc.Brightness,
			Contrast:   lc.Contrast,
			Saturation: lc.Saturation,
			Gamma:      lc.Gamma,
		},
		Temperature: lc.Temperature,
		Tint:        lc.Tint,
		Tonal: &TonalCorrection{
			Shadows:    lc.Shadows,
			Midtones:   0,
			Highlights: lc.Highlights,
		},
	}
}

// NewLegacyTransform compiles legacy colour correction parameters.
func NewLegacyTransform(lc LegacyColorCorrection, opts ...TransformOption) *Transform {
	return NewTransform(lc.Pipeline(), opts...)
}
