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
	"errors"
	"math"
	"testing"
)

func TestGenerateLUT3DLength(t *testing.T) {
	for _, n := range []int{2, 3, 17, 33} {
		lut, err := IdentityLUT(n)
		if err != nil {
			t.Fatal(err)
		}
		if lut.Resolution != n {
			t.Errorf("resolution = %d, want %d", lut.Resolution, n)
		}
		if len(lut.Data) != n*n*n*3 {
			t.Errorf("len(data) = %d, want %d", len(lut.Data), n*n*n*3)
		}
		if !ValidateLUT(lut) {
			t.Errorf("identity LUT of size %d fails validation", n)
		}
	}
}

func TestGenerateLUT3DOrder(t *testing.T) {
	n := 5
	lut, err := IdentityLUT(n)
	if err != nil {
		t.Fatal(err)
	}

	// red varies fastest, blue slowest
	k := 0
	for bi := range n {
		for gi := range n {
			for ri := range n {
				want := [3]float32{
					float32(float64(ri) / float64(n-1)),
					float32(float64(gi) / float64(n-1)),
					float32(float64(bi) / float64(n-1)),
				}
				got := [3]float32{lut.Data[k], lut.Data[k+1], lut.Data[k+2]}
				if got != want {
					t.Fatalf("entry (%d, %d, %d) = %v, want %v", ri, gi, bi, got, want)
				}
				k += 3
			}
		}
	}
}

func TestGenerateLUT3DClamps(t *testing.T) {
	wild := TransformFunc(func(r, g, b float64) (float64, float64, float64) {
		return 2*r - 0.5, math.NaN(), math.Inf(1)
	})
	lut, err := GenerateLUT3D(5, wild)
	if err != nil {
		t.Fatal(err)
	}
	if err := lut.Check(); err != nil {
		t.Errorf("generated LUT fails validation: %v", err)
	}
	if c := lut.At(0, 0, 0); c != (RGB{0, 0, 1}) {
		t.Errorf("At(0, 0, 0) = %v", c)
	}
}

func TestGenerateLUT3DResolution(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 257} {
		_, err := IdentityLUT(n)
		if !errors.Is(err, ErrResolution) {
			t.Errorf("resolution %d: err = %v, want ErrResolution", n, err)
		}
	}
}

func TestGenerateLUT3DCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateLUT3DContext(ctx, 17, IdentityTransform)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestValidateLUT(t *testing.T) {
	good, err := IdentityLUT(3)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name           string
		lut            *LUT3D
		valid, imports bool
	}{
		{"good", good, true, true},
		{"nil", nil, false, false},
		{"short", &LUT3D{Resolution: 3, Data: good.Data[:80]}, false, false},
		{"resolution 1", &LUT3D{Resolution: 1, Data: make([]float32, 3)}, false, false},
		{"out of range", withValue(good, 1.5), false, true},
		{"negative", withValue(good, -0.1), false, true},
		{"NaN", withValue(good, float32(math.NaN())), false, false},
		{"Inf", withValue(good, float32(math.Inf(-1))), false, false},
	}
	for _, tc := range cases {
		if got := ValidateLUT(tc.lut); got != tc.valid {
			t.Errorf("%s: ValidateLUT = %t, want %t", tc.name, got, tc.valid)
		}
		if got := ValidateImportedLUT(tc.lut); got != tc.imports {
			t.Errorf("%s: ValidateImportedLUT = %t, want %t", tc.name, got, tc.imports)
		}
	}

	var verr *ValidationError
	if err := withValue(good, 2).Check(); !errors.As(err, &verr) {
		t.Errorf("Check returned %v, want *ValidationError", err)
	}
}

// withValue returns a copy of lut with one entry replaced.
func withValue(lut *LUT3D, v float32) *LUT3D {
	res := &LUT3D{Resolution: lut.Resolution, Data: make([]float32, len(lut.Data))}
	copy(res.Data, lut.Data)
	res.Data[len(res.Data)/2] = v
	return res
}

func TestLUTApplyIdentity(t *testing.T) {
	lut, err := IdentityLUT(9)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range [][3]float64{
		{0, 0, 0}, {1, 1, 1}, {0.3, 0.6, 0.9}, {0.9, 0.1, 0.5}, {0.5, 0.5, 0.2}, {0.05, 0.95, 0.5},
	} {
		for name, apply := range map[string]func(r, g, b float64) (float64, float64, float64){
			"tetrahedral": lut.Apply,
			"trilinear":   lut.ApplyTrilinear,
		} {
			r, g, b := apply(in[0], in[1], in[2])
			if math.Abs(r-in[0]) > 1e-6 || math.Abs(g-in[1]) > 1e-6 || math.Abs(b-in[2]) > 1e-6 {
				t.Errorf("%s: Apply(%v) = %g, %g, %g", name, in, r, g, b)
			}
		}
	}

	// inputs outside the domain are clamped
	r, g, b := lut.Apply(-1, 2, 0.5)
	if math.Abs(r) > 1e-6 || math.Abs(g-1) > 1e-6 || math.Abs(b-0.5) > 1e-6 {
		t.Errorf("Apply(-1, 2, 0.5) = %g, %g, %g", r, g, b)
	}
}

func TestLUTApplyMatchesTransform(t *testing.T) {
	// a linear transform is reproduced exactly by both interpolation methods
	f := TransformFunc(func(r, g, b float64) (float64, float64, float64) {
		return 0.5*r + 0.25*g + 0.25*b, 0.8 * g, 1 - 0.5*b
	})
	lut, err := GenerateLUT3D(5, f)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i <= 10; i++ {
		v := float64(i) / 10
		in := [3]float64{v, 1 - v, v * v}
		wr, wg, wb := f(in[0], in[1], in[2])
		for _, apply := range []func(r, g, b float64) (float64, float64, float64){lut.Apply, lut.ApplyTrilinear} {
			r, g, b := apply(in[0], in[1], in[2])
			if math.Abs(r-wr) > 1e-6 || math.Abs(g-wg) > 1e-6 || math.Abs(b-wb) > 1e-6 {
				t.Errorf("Apply(%v) = %g, %g, %g, want %g, %g, %g", in, r, g, b, wr, wg, wb)
			}
		}
	}
}

func TestLUTSetAt(t *testing.T) {
	lut, err := NewLUT3D(4)
	if err != nil {
		t.Fatal(err)
	}
	c := RGB{0.25, 0.5, 0.75}
	lut.Set(1, 2, 3, c)
	if got := lut.At(1, 2, 3); got != c {
		t.Errorf("At(1, 2, 3) = %v, want %v", got, c)
	}
	if k := ((3*4+2)*4 + 1) * 3; lut.Data[k] != 0.25 {
		t.Errorf("Set stored the value at the wrong offset")
	}
}

func BenchmarkGenerateLUT3D(b *testing.B) {
	p, err := Preset("teal-orange")
	if err != nil {
		b.Fatal(err)
	}
	tr := NewTransform(p)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := GenerateLUT3D(33, tr)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGenerateLUT3DCurveTables(b *testing.B) {
	p, err := Preset("bleach-bypass")
	if err != nil {
		b.Fatal(err)
	}
	tr := NewTransform(p, WithCurveTables(DefaultTableSize))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := GenerateLUT3D(33, tr)
		if err != nil {
			b.Fatal(err)
		}
	}
}
