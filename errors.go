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
	"errors"
	"fmt"
)

var (
	// ErrResolution is returned when a LUT resolution is outside the
	// range [MinResolution, MaxResolution].
	ErrResolution = errors.New("grade: invalid LUT resolution")

	// ErrUnknownPreset is returned by [Preset] for unknown preset names.
	ErrUnknownPreset = errors.New("grade: unknown preset")

	// ErrUnknownKind is returned by [DecodeNodeSettings] when the "kind"
	// field is missing or has an unsupported value.
	ErrUnknownKind = errors.New("grade: unknown node kind")

	// ErrUnknownFormat is returned for unsupported LUT file formats.
	ErrUnknownFormat = errors.New("grade: unknown LUT format")
)

// CubeParseError indicates that a LUT file could not be parsed.
// Despite the name, it is used for both .cube and .3dl files.
type CubeParseError struct {
	Format Format

	// Line is the 1-based line number where the problem was found,
	// or 0 if the problem is not tied to a single line.
	Line int

	Reason string
}

func newParseError(format Format, line int, reason string, args ...any) *CubeParseError {
	return &CubeParseError{
		Format: format,
		Line:   line,
		Reason: fmt.Sprintf(reason, args...),
	}
}

func (e *CubeParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Line %d: %s", e.Line, e.Reason)
	}
	return e.Reason
}

// Is reports whether target is a *CubeParseError.
func (e *CubeParseError) Is(target error) bool {
	_, ok := target.(*CubeParseError)
	return ok
}

// ValidationError describes why a LUT failed validation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "grade: invalid LUT: " + e.Reason
}

// Is reports whether target is a *ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}
