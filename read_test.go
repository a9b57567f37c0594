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
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestCubeRoundTrip(t *testing.T) {
	lut, err := IdentityLUT(17)
	if err != nil {
		t.Fatal(err)
	}
	f, err := ParseCube(ExportCube(lut, "identity"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Resolution != 17 {
		t.Errorf("resolution = %d, want 17", f.Resolution)
	}
	if len(f.Data) != 17*17*17*3 {
		t.Fatalf("len(data) = %d, want %d", len(f.Data), 17*17*17*3)
	}
	for i, v := range f.Data {
		if math.Abs(float64(v-lut.Data[i])) > 1e-5 {
			t.Fatalf("data[%d] = %g, want %g", i, v, lut.Data[i])
		}
	}
	if f.Title != "identity" {
		t.Errorf("title = %q, want %q", f.Title, "identity")
	}
	if f.Format != FormatCube {
		t.Errorf("format = %s, want cube", f.Format)
	}
}

func TestExportCubeFormat(t *testing.T) {
	lut, err := IdentityLUT(2)
	if err != nil {
		t.Fatal(err)
	}
	got := ExportCube(lut, "test")
	want := `TITLE "test"
LUT_3D_SIZE 2
DOMAIN_MIN 0.0 0.0 0.0
DOMAIN_MAX 1.0 1.0 1.0

0.000000 0.000000 0.000000
1.000000 0.000000 0.000000
0.000000 1.000000 0.000000
1.000000 1.000000 0.000000
0.000000 0.000000 1.000000
1.000000 0.000000 1.000000
0.000000 1.000000 1.000000
1.000000 1.000000 1.000000
`
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestExportCubeEmptyTitle(t *testing.T) {
	lut, err := IdentityLUT(2)
	if err != nil {
		t.Fatal(err)
	}
	out := ExportCube(lut, "")
	if !strings.HasPrefix(out, "TITLE \"\"\nLUT_3D_SIZE 2\n") {
		t.Errorf("unexpected header %q", strings.SplitN(out, "\n", 2)[0])
	}
	f, err := ParseCube(out)
	if err != nil {
		t.Fatal(err)
	}
	if f.Title != "" {
		t.Errorf("title = %q, want empty", f.Title)
	}
}

func TestParseCubeErrors(t *testing.T) {
	eight := strings.Repeat("0 0 0\n", 8)
	cases := []struct {
		name  string
		input string
		line  int
	}{
		{"missing size", eight, 0},
		{"size too small", "LUT_3D_SIZE 1\n0 0 0\n", 1},
		{"size too large", "# comment\nLUT_3D_SIZE 257\n", 2},
		{"size not a number", "LUT_3D_SIZE two\n", 1},
		{"too few lines", "LUT_3D_SIZE 2\n0 0 0\n1 1 1\n", 0},
		{"too many lines", "LUT_3D_SIZE 2\n" + eight + "1 1 1\n", 10},
		{"short domain", "LUT_3D_SIZE 2\nDOMAIN_MIN 0 0\n" + eight, 2},
		{"bad domain", "LUT_3D_SIZE 2\nDOMAIN_MAX 1 x 1\n" + eight, 2},
		{"empty domain", "LUT_3D_SIZE 2\nDOMAIN_MIN 0 0 0\nDOMAIN_MAX 1 0 1\n" + eight, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCube(tc.input)
			var perr *CubeParseError
			if !errors.As(err, &perr) {
				t.Fatalf("err = %v, want *CubeParseError", err)
			}
			if perr.Line != tc.line {
				t.Errorf("line = %d, want %d (%v)", perr.Line, tc.line, err)
			}
		})
	}
}

func TestCubeParseErrorMessage(t *testing.T) {
	_, err := ParseCube("LUT_3D_SIZE 300\n")
	if err == nil || err.Error() != "Line 1: LUT_3D_SIZE 300 out of range [2, 256]" {
		t.Errorf("unexpected error %v", err)
	}

	_, err = ParseCube("LUT_3D_SIZE 2\n0 0 0\n0 0 0\n")
	if err == nil || err.Error() != "expected 8 data lines, found 2" {
		t.Errorf("unexpected error %v", err)
	}
	if !errors.Is(err, &CubeParseError{}) {
		t.Errorf("errors.Is failed for %v", err)
	}
}

func TestParseCubeLenient(t *testing.T) {
	input := `# created by hand
TITLE "Mixed  file"
LUT_1D_INPUT_RANGE 0 1

  LUT_3D_SIZE 2
0 0 0
1 0 0
# a comment between data lines
0 1 0
1 1 0
0 0 1
1 0 1
0 1 1
1 1 1
`
	f, err := ParseCube(input)
	if err != nil {
		t.Fatal(err)
	}
	if f.Title != "Mixed  file" {
		t.Errorf("title = %q", f.Title)
	}
	want, _ := IdentityLUT(2)
	if d := cmp.Diff(want.Data, f.Data); d != "" {
		t.Errorf("data mismatch (-want +got):\n%s", d)
	}
}

func TestParseCubeDomain(t *testing.T) {
	var b strings.Builder
	b.WriteString("LUT_3D_SIZE 2\nDOMAIN_MIN 0 -1 0\nDOMAIN_MAX 2 1 4\n")
	ref, _ := IdentityLUT(2)
	for i := 0; i < len(ref.Data); i += 3 {
		r := 2 * ref.Data[i]
		g := 2*ref.Data[i+1] - 1
		bl := 4 * ref.Data[i+2]
		b.WriteString(strings.Join([]string{ftoa(r), ftoa(g), ftoa(bl)}, " ") + "\n")
	}

	f, err := ParseCube(b.String())
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(ref.Data, f.Data, cmpopts.EquateApprox(0, 1e-6)); d != "" {
		t.Errorf("data mismatch (-want +got):\n%s", d)
	}
	if f.DomainMin != [3]float64{0, -1, 0} || f.DomainMax != [3]float64{2, 1, 4} {
		t.Errorf("domain = %v .. %v", f.DomainMin, f.DomainMax)
	}

	// writing restores the original domain
	buf := &bytes.Buffer{}
	if err := WriteCube(buf, f); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "DOMAIN_MIN 0.0 -1.0 0.0\nDOMAIN_MAX 2.0 1.0 4.0\n") {
		t.Errorf("domain not written:\n%s", buf.String())
	}
	g, err := ParseCube(buf.String())
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(f.Data, g.Data, cmpopts.EquateApprox(0, 1e-6)); d != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", d)
	}
}

func ftoa(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func TestCubeTitleNormalization(t *testing.T) {
	lut, _ := IdentityLUT(2)
	// "e" followed by a combining acute accent
	out := ExportCube(lut, "Cafe\u0301 \"look\"\n")
	if !strings.HasPrefix(out, "TITLE \"Caf\u00e9 look\"\n") {
		t.Errorf("unexpected header %q", strings.SplitN(out, "\n", 2)[0])
	}
	f, err := ParseCube(out)
	if err != nil {
		t.Fatal(err)
	}
	if f.Title != "Caf\u00e9 look" {
		t.Errorf("title = %q", f.Title)
	}
}

func Test3DLRoundTrip(t *testing.T) {
	f := TransformFunc(func(r, g, b float64) (float64, float64, float64) {
		return r * r, 0.5 + 0.5*g, 1 - b
	})
	for _, n := range []int{MinResolution, 3, 9} {
		lut, err := GenerateLUT3D(n, f)
		if err != nil {
			t.Fatal(err)
		}

		buf := &bytes.Buffer{}
		err = WriteLUT(buf, &LUTFile{LUT3D: lut, Title: "test", Format: Format3DL})
		if err != nil {
			t.Fatal(err)
		}
		got, err := ReadLUT(buf, Format3DL)
		if err != nil {
			t.Fatalf("resolution %d: %v", n, err)
		}
		if got.Resolution != n || got.Format != Format3DL {
			t.Fatalf("resolution %d, format %s, want %d", got.Resolution, got.Format, n)
		}
		// 12 bit quantisation
		if d := cmp.Diff(lut.Data, got.Data, cmpopts.EquateApprox(0, 0.5/4095+1e-7)); d != "" {
			t.Errorf("resolution %d: round trip mismatch (-want +got):\n%s", n, d)
		}
	}
}

func TestRead3DLShortShaper(t *testing.T) {
	// after a mesh header, a two-entry line is the shaper line
	var b strings.Builder
	b.WriteString("3DMESH\nMesh 0 10\n0 1023\n")
	for ri := range 2 {
		for gi := range 2 {
			for bi := range 2 {
				b.WriteString(strings.Join([]string{
					strconv.Itoa(ri * 1023), strconv.Itoa(gi * 1023), strconv.Itoa(bi * 1023),
				}, " ") + "\n")
			}
		}
	}
	f, err := Read3DL(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := IdentityLUT(2)
	if d := cmp.Diff(want.Data, f.Data); d != "" {
		t.Errorf("data mismatch (-want +got):\n%s", d)
	}
}

func TestRead3DLInferred(t *testing.T) {
	// no shaper line and no Mesh header: size and bit depth are inferred
	var b strings.Builder
	n := 2
	for ri := range n {
		for gi := range n {
			for bi := range n {
				b.WriteString(strings.Join([]string{
					strconv.Itoa(ri * 1023), strconv.Itoa(gi * 1023), strconv.Itoa(bi * 1023),
				}, " ") + "\n")
			}
		}
	}
	f, err := Read3DL(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := IdentityLUT(2)
	if d := cmp.Diff(want.Data, f.Data); d != "" {
		t.Errorf("data mismatch (-want +got):\n%s", d)
	}

	_, err = Read3DL(strings.NewReader("0 0 0\n1 1 1\n"))
	var perr *CubeParseError
	if !errors.As(err, &perr) || perr.Format != Format3DL {
		t.Errorf("err = %v, want *CubeParseError", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Format
	}{
		{"cube", FormatCube},
		{".cube", FormatCube},
		{"3dl", Format3DL},
		{".3dl", Format3DL},
	} {
		got, err := ParseFormat(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q) = %s, %v", tc.in, got, err)
		}
	}
	if _, err := ParseFormat(".png"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
