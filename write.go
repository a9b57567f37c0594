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
	"bufio"
	"fmt"
	"io"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// WriteLUT writes a lookup table in the format given by f.Format.
func WriteLUT(w io.Writer, f *LUTFile) error {
	switch f.Format {
	case FormatCube:
		return WriteCube(w, f)
	case Format3DL:
		return Write3DL(w, f)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, f.Format)
}

// ExportCube returns the .cube representation of lut, using the default
// domain [0, 1].
func ExportCube(lut *LUT3D, title string) string {
	b := &strings.Builder{}
	// writing to a strings.Builder cannot fail
	_ = WriteCube(b, &LUTFile{
		LUT3D:     lut,
		Title:     title,
		DomainMin: DefaultDomainMin,
		DomainMax: DefaultDomainMax,
	})
	return b.String()
}

// WriteCube writes a lookup table in .cube format.
//
// The header consists of the TITLE (possibly empty), LUT_3D_SIZE,
// DOMAIN_MIN and DOMAIN_MAX keywords, followed by a blank line and one
// line per grid point, in the storage order of the data.  Values are
// written with six decimal places.  If the file has a non-default domain,
// the normalised data is mapped back to this domain.
func WriteCube(w io.Writer, f *LUTFile) error {
	if err := f.checkShape(); err != nil {
		return err
	}

	lo, hi := f.DomainMin, f.DomainMax
	if lo == hi {
		lo, hi = DefaultDomainMin, DefaultDomainMax
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "TITLE \"%s\"\n", cleanTitle(f.Title))
	fmt.Fprintf(bw, "LUT_3D_SIZE %d\n", f.Resolution)
	fmt.Fprintf(bw, "DOMAIN_MIN %s %s %s\n", formatDomain(lo[0]), formatDomain(lo[1]), formatDomain(lo[2]))
	fmt.Fprintf(bw, "DOMAIN_MAX %s %s %s\n", formatDomain(hi[0]), formatDomain(hi[1]), formatDomain(hi[2]))
	bw.WriteByte('\n')

	rescale := lo != DefaultDomainMin || hi != DefaultDomainMax
	buf := make([]byte, 0, 32)
	data := f.Data
	for i := 0; i < len(data); i += 3 {
		buf = buf[:0]
		for c := range 3 {
			v := float64(data[i+c])
			if rescale {
				v = lo[c] + v*(hi[c]-lo[c])
			}
			if c > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, v, 'f', 6, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// cleanTitle prepares a title for use inside a quoted header line.
func cleanTitle(title string) string {
	title = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\n', '\r':
			return -1
		}
		return r
	}, title)
	return norm.NFC.String(strings.TrimSpace(title))
}

// formatDomain formats a domain bound, always including a decimal point.
func formatDomain(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// threeDLBits is the output bit depth used by [Write3DL].
const threeDLBits = 12

// Write3DL writes a lookup table in the Autodesk/Lustre .3dl format,
// with 10-bit input and 12-bit output values.
//
// After a Mesh header giving the bit depths, the first line lists the
// input positions of the grid points.
// The data lines follow, with the blue index varying fastest.
// The domain of f is ignored.
func Write3DL(w io.Writer, f *LUTFile) error {
	if err := f.checkShape(); err != nil {
		return err
	}
	n := f.Resolution
	outMax := float64(int(1)<<threeDLBits - 1)

	bw := bufio.NewWriter(w)
	if title := cleanTitle(f.Title); title != "" {
		fmt.Fprintf(bw, "# %s\n", title)
	}
	meshBits := bits.Len(uint(n - 2))
	fmt.Fprintf(bw, "3DMESH\nMesh %d %d\n", meshBits, threeDLBits)
	for i := range n {
		if i > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.Itoa(int(math.Round(float64(i) * 1023 / float64(n-1)))))
	}
	bw.WriteByte('\n')

	buf := make([]byte, 0, 32)
	for ri := range n {
		for gi := range n {
			for bi := range n {
				k := ((bi*n+gi)*n + ri) * 3
				buf = buf[:0]
				for c := range 3 {
					v := math.Round(Clamp01(float64(f.Data[k+c])) * outMax)
					if c > 0 {
						buf = append(buf, ' ')
					}
					buf = strconv.AppendInt(buf, int64(v), 10)
				}
				buf = append(buf, '\n')
				if _, err := bw.Write(buf); err != nil {
					return err
				}
			}
		}
	}
	return bw.Flush()
}
