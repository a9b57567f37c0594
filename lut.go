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
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// The range of supported LUT resolutions.
const (
	MinResolution = 2
	MaxResolution = 256
)

// LUT3D is a three-dimensional colour lookup table.
//
// Data holds Resolution³ RGB triples.  The red index varies fastest and the
// blue index slowest, so that the output for grid point (ri, gi, bi) starts
// at Data[((bi*Resolution+gi)*Resolution+ri)*3].
type LUT3D struct {
	Resolution int
	Data       []float32
}

// Format identifies a LUT file format.
type Format int

// These are the supported LUT file formats.
const (
	FormatCube Format = iota // Adobe/Resolve .cube
	Format3DL                // Autodesk/Lustre .3dl
)

func (f Format) String() string {
	switch f {
	case FormatCube:
		return "cube"
	case Format3DL:
		return "3dl"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat converts a format name, as returned by [Format.String],
// into a Format.  A leading dot is ignored, so that file name extensions
// can be used directly.
func ParseFormat(name string) (Format, error) {
	if len(name) > 0 && name[0] == '.' {
		name = name[1:]
	}
	switch name {
	case "cube":
		return FormatCube, nil
	case "3dl":
		return Format3DL, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownFormat, name)
}

// LUTFile is a lookup table together with the metadata stored in a LUT file.
type LUTFile struct {
	*LUT3D

	Title string

	// DomainMin and DomainMax give the input range of the table, as stored
	// in the file.  The data in LUT3D is always normalised to [0, 1].
	DomainMin [3]float64
	DomainMax [3]float64

	Format Format
}

// DefaultDomainMin and DefaultDomainMax are the default LUT input range.
var (
	DefaultDomainMin = [3]float64{0, 0, 0}
	DefaultDomainMax = [3]float64{1, 1, 1}
)

// NewLUT3D allocates a lookup table with all outputs set to black.
func NewLUT3D(resolution int) (*LUT3D, error) {
	if resolution < MinResolution || resolution > MaxResolution {
		return nil, fmt.Errorf("%w: %d", ErrResolution, resolution)
	}
	return &LUT3D{
		Resolution: resolution,
		Data:       make([]float32, resolution*resolution*resolution*3),
	}, nil
}

// GenerateLUT3D samples the transform t on a regular grid.
// Input values are i/(resolution-1) for i = 0, ..., resolution-1, and
// the outputs are clamped to [0, 1].
func GenerateLUT3D(resolution int, t Transformer) (*LUT3D, error) {
	return GenerateLUT3DContext(context.Background(), resolution, t)
}

// GenerateLUT3DContext is like [GenerateLUT3D], but evaluates the blue
// planes of the table concurrently and stops early if ctx is cancelled.
// The transform must be safe for concurrent use.
func GenerateLUT3DContext(ctx context.Context, resolution int, t Transformer) (*LUT3D, error) {
	lut, err := NewLUT3D(resolution)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	Logger().Debug("generating LUT", "resolution", resolution)

	n := resolution
	scale := 1 / float64(n-1)
	plane := n * n * 3

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for bi := range n {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := float64(bi) * scale
			out := lut.Data[bi*plane : (bi+1)*plane]
			pos := 0
			for gi := range n {
				g := float64(gi) * scale
				for ri := range n {
					r := float64(ri) * scale
					ro, gOut, bo := t.Apply(r, g, b)
					out[pos] = float32(Clamp01(ro))
					out[pos+1] = float32(Clamp01(gOut))
					out[pos+2] = float32(Clamp01(bo))
					pos += 3
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	Logger().Debug("generated LUT",
		"resolution", resolution,
		"elapsed", time.Since(start))
	return lut, nil
}

// IdentityLUT returns the lookup table of the identity transform.
func IdentityLUT(resolution int) (*LUT3D, error) {
	return GenerateLUT3D(resolution, IdentityTransform)
}

// At returns the output stored for grid point (ri, gi, bi).
func (l *LUT3D) At(ri, gi, bi int) RGB {
	n := l.Resolution
	k := ((bi*n+gi)*n + ri) * 3
	return RGB{float64(l.Data[k]), float64(l.Data[k+1]), float64(l.Data[k+2])}
}

// Set stores the output for grid point (ri, gi, bi).
func (l *LUT3D) Set(ri, gi, bi int, c RGB) {
	n := l.Resolution
	k := ((bi*n+gi)*n + ri) * 3
	l.Data[k] = float32(c.R)
	l.Data[k+1] = float32(c.G)
	l.Data[k+2] = float32(c.B)
}

// Apply looks up a colour in the table, using tetrahedral interpolation
// between the grid points.  This implements the [Transformer] interface.
func (l *LUT3D) Apply(r, g, b float64) (float64, float64, float64) {
	c := tetrahedralInterp3D(l.Data, l.Resolution, r, g, b)
	return c.R, c.G, c.B
}

// ApplyTrilinear looks up a colour in the table, using trilinear
// interpolation between the grid points.
func (l *LUT3D) ApplyTrilinear(r, g, b float64) (float64, float64, float64) {
	c := trilinearInterp3D(l.Data, l.Resolution, r, g, b)
	return c.R, c.G, c.B
}

// Check verifies that the table has a valid resolution, that the data has
// the expected length, and that all values are finite and in [0, 1].
func (l *LUT3D) Check() error {
	if err := l.checkShape(); err != nil {
		return err
	}
	for i, v := range l.Data {
		if !isFinite(v) {
			return &ValidationError{Reason: fmt.Sprintf("non-finite value at index %d", i)}
		}
		if v < 0 || v > 1 {
			return &ValidationError{Reason: fmt.Sprintf("value %g at index %d out of range", v, i)}
		}
	}
	return nil
}

// CheckImported verifies a table read from an untrusted file.
// Unlike [LUT3D.Check], values outside [0, 1] are accepted.
func (l *LUT3D) CheckImported() error {
	if err := l.checkShape(); err != nil {
		return err
	}
	for i, v := range l.Data {
		if !isFinite(v) {
			return &ValidationError{Reason: fmt.Sprintf("non-finite value at index %d", i)}
		}
	}
	return nil
}

func (l *LUT3D) checkShape() error {
	if l == nil {
		return &ValidationError{Reason: "missing table"}
	}
	n := l.Resolution
	if n < MinResolution {
		return &ValidationError{Reason: fmt.Sprintf("resolution %d too small", n)}
	}
	if n > MaxResolution {
		return &ValidationError{Reason: fmt.Sprintf("resolution %d too large", n)}
	}
	if want := n * n * n * 3; len(l.Data) != want {
		return &ValidationError{
			Reason: fmt.Sprintf("data length %d, expected %d", len(l.Data), want),
		}
	}
	return nil
}

// ValidateLUT reports whether the table passes [LUT3D.Check].
func ValidateLUT(l *LUT3D) bool {
	return l.Check() == nil
}

// ValidateImportedLUT reports whether the table passes
// [LUT3D.CheckImported].
func ValidateImportedLUT(l *LUT3D) bool {
	return l.CheckImported() == nil
}

func isFinite(v float32) bool {
	x := float64(v)
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
