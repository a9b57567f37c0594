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
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxLineLength bounds the length of a single line in a LUT file.
const maxLineLength = 64 * 1024

// ReadLUT reads a lookup table in the given format.
func ReadLUT(r io.Reader, format Format) (*LUTFile, error) {
	switch format {
	case FormatCube:
		return ReadCube(r)
	case Format3DL:
		return Read3DL(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// ParseCube parses the contents of a .cube file.
func ParseCube(content string) (*LUTFile, error) {
	return ReadCube(strings.NewReader(content))
}

// ReadCube reads a 3D LUT in .cube format.
//
// Blank lines and lines starting with '#' are ignored, as are unknown
// keywords.  The LUT_3D_SIZE keyword is required and the number of data
// lines must be exactly LUT_3D_SIZE³.  If the file specifies a non-default
// domain, the data is normalised to [0, 1] per channel.
//
// Malformed input is reported as a [*CubeParseError].
func ReadCube(r io.Reader) (*LUTFile, error) {
	res := &LUTFile{
		DomainMin: DefaultDomainMin,
		DomainMax: DefaultDomainMax,
		Format:    FormatCube,
	}

	var (
		size      int
		expected  int
		count     int
		extraLine int
		domLine   int
		data      []float32
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		if len(fields) == 3 {
			if v, ok := parseTriple(fields); ok {
				count++
				if expected > 0 && count > expected {
					if extraLine == 0 {
						extraLine = lineNo
					}
					continue
				}
				data = append(data, float32(v[0]), float32(v[1]), float32(v[2]))
				continue
			}
		}

		switch fields[0] {
		case "TITLE":
			res.Title = parseTitle(strings.TrimSpace(line[len("TITLE"):]))
		case "LUT_3D_SIZE":
			if len(fields) != 2 {
				return nil, newParseError(FormatCube, lineNo, "malformed LUT_3D_SIZE")
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, newParseError(FormatCube, lineNo, "invalid LUT_3D_SIZE %q", fields[1])
			}
			if n < MinResolution || n > MaxResolution {
				return nil, newParseError(FormatCube, lineNo,
					"LUT_3D_SIZE %d out of range [%d, %d]", n, MinResolution, MaxResolution)
			}
			size = n
			expected = n * n * n
			if count > 0 {
				// data before the size keyword: the position of the
				// first surplus line is no longer known
				extraLine = 0
			}
		case "DOMAIN_MIN", "DOMAIN_MAX":
			if len(fields) != 4 {
				return nil, newParseError(FormatCube, lineNo, "malformed %s", fields[0])
			}
			v, ok := parseTriple(fields[1:])
			if !ok {
				return nil, newParseError(FormatCube, lineNo, "malformed %s", fields[0])
			}
			domLine = lineNo
			if fields[0] == "DOMAIN_MIN" {
				res.DomainMin = v
			} else {
				res.DomainMax = v
			}
		case "LUT_3D_INPUT_RANGE":
			if len(fields) != 3 {
				return nil, newParseError(FormatCube, lineNo, "malformed LUT_3D_INPUT_RANGE")
			}
			lo, err1 := strconv.ParseFloat(fields[1], 64)
			hi, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				return nil, newParseError(FormatCube, lineNo, "malformed LUT_3D_INPUT_RANGE")
			}
			domLine = lineNo
			res.DomainMin = [3]float64{lo, lo, lo}
			res.DomainMax = [3]float64{hi, hi, hi}
		default:
			Logger().Debug("ignoring .cube line", "line", lineNo, "keyword", fields[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if size == 0 {
		return nil, newParseError(FormatCube, 0, "missing LUT_3D_SIZE")
	}
	if count != expected {
		line := 0
		if count > expected {
			line = extraLine
		}
		return nil, newParseError(FormatCube, line,
			"expected %d data lines, found %d", expected, count)
	}
	for c := range 3 {
		if !(res.DomainMax[c] > res.DomainMin[c]) {
			return nil, newParseError(FormatCube, domLine,
				"malformed domain: DOMAIN_MAX must exceed DOMAIN_MIN")
		}
	}

	if res.DomainMin != DefaultDomainMin || res.DomainMax != DefaultDomainMax {
		normalizeDomain(data, res.DomainMin, res.DomainMax)
	}

	res.LUT3D = &LUT3D{Resolution: size, Data: data}
	return res, nil
}

// parseTriple parses three floating point numbers.
func parseTriple(fields []string) ([3]float64, bool) {
	var v [3]float64
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, false
		}
		v[i] = x
	}
	return v, true
}

// parseTitle extracts the text of a TITLE keyword.  Quotes are optional.
func parseTitle(s string) string {
	if len(s) >= 2 && s[0] == '"' {
		if end := strings.LastIndexByte(s, '"'); end > 0 {
			s = s[1:end]
		}
	}
	return norm.NFC.String(s)
}

// normalizeDomain maps values from [lo, hi] to [0, 1], per channel.
func normalizeDomain(data []float32, lo, hi [3]float64) {
	for i, v := range data {
		c := i % 3
		data[i] = float32((float64(v) - lo[c]) / (hi[c] - lo[c]))
	}
}

// Read3DL reads a 3D LUT in the Autodesk/Lustre .3dl format.
//
// The file consists of an optional shaper line, listing the input grid
// positions, followed by one line of three integers per grid point, with the
// blue index varying fastest.  If the file has a "3DMESH" or "Mesh" header,
// the first line of integers is always the shaper line.  Without a header,
// a line is only taken as the shaper line if it has more than three values.  The bit depth of the data is taken from a
// "Mesh" header line if present, and is otherwise inferred from the largest
// value in the file.
func Read3DL(r io.Reader) (*LUTFile, error) {
	var (
		size       int
		outBits    int
		maxVal     int64
		values     []int64
		dataLines  int
		firstExtra int
		mesh       bool
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		if fields[0] == "3DMESH" {
			mesh = true
			continue
		}
		if fields[0] == "Mesh" {
			mesh = true
			if len(fields) == 3 {
				bits, err := strconv.Atoi(fields[2])
				if err != nil || bits < 1 || bits > 16 {
					return nil, newParseError(Format3DL, lineNo, "malformed Mesh line")
				}
				outBits = bits
			}
			continue
		}

		ints, ok := parseInts(fields)
		if !ok {
			Logger().Debug("ignoring .3dl line", "line", lineNo, "keyword", fields[0])
			continue
		}

		if size == 0 && dataLines == 0 && (mesh || len(ints) > 3) {
			n := len(ints)
			if n < MinResolution || n > MaxResolution {
				return nil, newParseError(Format3DL, lineNo,
					"grid size %d out of range [%d, %d]", n, MinResolution, MaxResolution)
			}
			size = n
			continue
		}
		if len(ints) != 3 {
			return nil, newParseError(Format3DL, lineNo,
				"expected 3 values, found %d", len(ints))
		}

		dataLines++
		if size > 0 && dataLines > size*size*size {
			if firstExtra == 0 {
				firstExtra = lineNo
			}
			continue
		}
		for _, v := range ints {
			if v < 0 {
				return nil, newParseError(Format3DL, lineNo, "negative value %d", v)
			}
			maxVal = max(maxVal, v)
		}
		values = append(values, ints...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if size == 0 {
		size = int(math.Round(math.Cbrt(float64(dataLines))))
		if size < MinResolution || size > MaxResolution || size*size*size != dataLines {
			return nil, newParseError(Format3DL, 0,
				"cannot infer grid size from %d data lines", dataLines)
		}
	}
	if expected := size * size * size; dataLines != expected {
		return nil, newParseError(Format3DL, firstExtra,
			"expected %d data lines, found %d", expected, dataLines)
	}

	var scale float64
	switch {
	case outBits > 0:
		scale = float64(int64(1)<<outBits - 1)
	case maxVal <= 1023:
		scale = 1023
	case maxVal <= 4095:
		scale = 4095
	case maxVal <= 65535:
		scale = 65535
	default:
		return nil, newParseError(Format3DL, 0, "value %d exceeds 16 bits", maxVal)
	}

	lut := &LUT3D{
		Resolution: size,
		Data:       make([]float32, len(values)),
	}
	n := size
	for k := range dataLines {
		ri := k / (n * n)
		gi := (k / n) % n
		bi := k % n
		dst := ((bi*n+gi)*n + ri) * 3
		for c := range 3 {
			lut.Data[dst+c] = float32(float64(values[3*k+c]) / scale)
		}
	}

	return &LUTFile{
		LUT3D:     lut,
		DomainMin: DefaultDomainMin,
		DomainMax: DefaultDomainMax,
		Format:    Format3DL,
	}, nil
}

func parseInts(fields []string) ([]int64, bool) {
	res := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, false
		}
		res[i] = v
	}
	return res, true
}
