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
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// Built-in grading presets, stored as JSON pipeline descriptions.
//
//go:embed presets/*.json
var presetFS embed.FS

var (
	presetOnce sync.Once
	presetData map[string][]byte
)

func loadPresets() {
	presetData = make(map[string][]byte)
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		panic(err) // embedded directory must exist
	}
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok {
			continue
		}
		body, err := presetFS.ReadFile(path.Join("presets", e.Name()))
		if err != nil {
			panic(err)
		}
		presetData[name] = body
	}
}

// PresetNames returns the names of the built-in presets, in sorted order.
func PresetNames() []string {
	presetOnce.Do(loadPresets)
	names := maps.Keys(presetData)
	slices.Sort(names)
	return names
}

// Preset returns a new copy of the built-in pipeline with the given name.
func Preset(name string) (*Pipeline, error) {
	presetOnce.Do(loadPresets)
	body, ok := presetData[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	p, err := ParsePipeline(body)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	return p, nil
}
