package matmod

import (
	"testing"

	hillcrypt "github.com/hillcrypt/hillcrypt-go"
)

func TestMod(t *testing.T) {
	cases := []struct {
		x    int64
		m    int
		want int
	}{
		{0, 256, 0},
		{255, 256, 255},
		{256, 256, 0},
		{-1, 256, 255},
		{-513, 256, 255},
		{1000, 256, 232},
	}
	for _, c := range cases {
		if got := Mod(c.x, c.m); got != c.want {
			t.Errorf("Mod(%d, %d) = %d, want %d", c.x, c.m, got, c.want)
		}
	}
}

func TestGCD(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{11, 256, 1},
		{12, 256, 4},
		{0, 256, 256},
		{256, 0, 256},
		{-11, 256, 1},
	}
	for _, c := range cases {
		if got := GCD(c.a, c.b); got != c.want {
			t.Errorf("GCD(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestModInverse(t *testing.T) {
	for _, a := range []int{1, 3, 5, 11, 77, 255} {
		inv, err := ModInverse(a, 256)
		if err != nil {
			t.Fatalf("ModInverse(%d, 256) failed: %v", a, err)
		}
		if Mod(int64(a)*int64(inv), 256) != 1 {
			t.Errorf("ModInverse(%d, 256) = %d, product is not 1", a, inv)
		}
	}

	for _, a := range []int{0, 2, 128, 256} {
		if _, err := ModInverse(a, 256); err == nil {
			t.Errorf("ModInverse(%d, 256) should fail", a)
		}
	}
}

func TestDeterminant(t *testing.T) {
	cases := []struct {
		m    hillcrypt.Matrix
		want int64
	}{
		{hillcrypt.Matrix{{3, 2}, {5, 7}}, 11},
		{hillcrypt.Matrix{{1, 0}, {0, 1}}, 1},
		{hillcrypt.Matrix{{2, 4}, {1, 2}}, 0},
		{hillcrypt.Matrix{{6, 24, 1}, {13, 16, 10}, {20, 17, 15}}, 441},
		{hillcrypt.Matrix{
			{1, 0, 0, 0},
			{0, 2, 0, 0},
			{0, 0, 3, 0},
			{0, 0, 0, 4},
		}, 24},
	}
	for _, c := range cases {
		if got := Determinant(c.m); got != c.want {
			t.Errorf("Determinant(%v) = %d, want %d", c.m, got, c.want)
		}
	}
}

func TestIsInvertible(t *testing.T) {
	if !IsInvertible(hillcrypt.Matrix{{3, 2}, {5, 7}}, 256) {
		t.Error("det 11 matrix should be invertible mod 256")
	}
	if IsInvertible(hillcrypt.Matrix{{2, 4}, {1, 2}}, 256) {
		t.Error("det 0 matrix should not be invertible")
	}
	if IsInvertible(hillcrypt.Matrix{{2, 0}, {0, 1}}, 256) {
		t.Error("even determinant should not be invertible mod 256")
	}
}

func TestInvertRoundTrip(t *testing.T) {
	cases := []hillcrypt.Matrix{
		{{3, 2}, {5, 7}},
		{{1, 2, 3}, {0, 1, 4}, {5, 6, 0}},
		{{1, 2, 3, 4}, {5, 1, 0, 2}, {0, 6, 1, 8}, {2, 0, 4, 1}},
	}
	for _, m := range cases {
		if !IsInvertible(m, 256) {
			t.Fatalf("test matrix %v is not invertible, pick another", m)
		}
		inv, err := Invert(m, 256)
		if err != nil {
			t.Fatalf("Invert(%v) failed: %v", m, err)
		}
		got := Mul(m, inv, 256)
		want := Identity(len(m))
		for i := range want {
			for j := range want {
				if got[i][j] != want[i][j] {
					t.Fatalf("m * m^-1 != I at (%d,%d): got %v", i, j, got)
				}
			}
		}
	}
}

func TestInvertNotInvertible(t *testing.T) {
	if _, err := Invert(hillcrypt.Matrix{{2, 4}, {1, 2}}, 256); err == nil {
		t.Error("Invert should fail for a singular matrix")
	}
}

func TestInvertCanonicalRange(t *testing.T) {
	inv, err := Invert(hillcrypt.Matrix{{1, 2, 3}, {0, 1, 4}, {5, 6, 0}}, 256)
	if err != nil {
		t.Fatalf("Invert failed: %v", err)
	}
	for i, row := range inv {
		for j, v := range row {
			if v < 0 || v > 255 {
				t.Errorf("entry (%d,%d) = %d outside [0, 255]", i, j, v)
			}
		}
	}
}

func TestMulVecKnownBlock(t *testing.T) {
	// K = [[3,2],[5,7]], P = [5,10]: C = (3*5+2*10, 5*5+7*10) mod 256 = (35, 95).
	k := hillcrypt.Matrix{{3, 2}, {5, 7}}
	in := []byte{5, 10}
	out := make([]byte, 2)
	MulVec(k, in, out, 256)
	if out[0] != 35 || out[1] != 95 {
		t.Fatalf("MulVec = %v, want [35 95]", out)
	}

	inv, err := Invert(k, 256)
	if err != nil {
		t.Fatalf("Invert failed: %v", err)
	}
	back := make([]byte, 2)
	MulVec(inv, out, back, 256)
	if back[0] != 5 || back[1] != 10 {
		t.Fatalf("inverse transform = %v, want [5 10]", back)
	}
}
