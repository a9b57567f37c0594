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
	"fmt"
)

// NodeSettings are the settings attached to a processing node.
// The concrete types are [*TrimSettings] and [*ColorCorrectionSettings].
type NodeSettings interface {
	// Kind returns the tag used in the "kind" field of the JSON encoding.
	Kind() NodeKind

	isNodeSettings()
}

// NodeKind identifies the type of a [NodeSettings] value.
type NodeKind string

// These are the supported node kinds.
const (
	KindTrim            NodeKind = "trim"
	KindColorCorrection NodeKind = "colorCorrection"
)

// TrimSettings select a time range of a clip, in seconds.
type TrimSettings struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Kind implements the [NodeSettings] interface.
func (*TrimSettings) Kind() NodeKind { return KindTrim }

func (*TrimSettings) isNodeSettings() {}

// ColorCorrectionSettings hold the grading configuration of a colour node.
// Exactly one of Pipeline and Legacy is normally set; if both are,
// Pipeline takes precedence.
type ColorCorrectionSettings struct {
	Pipeline *Pipeline              `json:"pipeline,omitempty"`
	Legacy   *LegacyColorCorrection `json:"legacy,omitempty"`
}

// Kind implements the [NodeSettings] interface.
func (*ColorCorrectionSettings) Kind() NodeKind { return KindColorCorrection }

func (*ColorCorrectionSettings) isNodeSettings() {}

// Transform compiles the colour correction.
func (s *ColorCorrectionSettings) Transform(opts ...TransformOption) *Transform {
	switch {
	case s.Pipeline != nil:
		return NewTransform(s.Pipeline, opts...)
	case s.Legacy != nil:
		return NewLegacyTransform(*s.Legacy, opts...)
	default:
		return NewTransform(nil, opts...)
	}
}

// DecodeNodeSettings decodes node settings from JSON.
// The "kind" field selects the concrete type.
func DecodeNodeSettings(data []byte) (NodeSettings, error) {
	var head struct {
		Kind NodeKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	var s NodeSettings
	switch head.Kind {
	case KindTrim:
		s = &TrimSettings{}
	case KindColorCorrection:
		s = &ColorCorrectionSettings{}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, head.Kind)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// EncodeNodeSettings encodes node settings as JSON, including the "kind"
// field.
func EncodeNodeSettings(s NodeSettings) ([]byte, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, err := json.Marshal(s.Kind())
	if err != nil {
		return nil, err
	}
	fields["kind"] = kind
	return json.Marshal(fields)
}
