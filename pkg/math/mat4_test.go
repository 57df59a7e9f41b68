package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestFromLDraw(t *testing.T) {
	// 1 16 10 20 30 1 2 3 4 5 6 7 8 9 part.dat
	m := FromLDraw(10, 20, 30, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	got := m.TransformPoint(Vec3{1, 0, 0})
	want := Vec3{11, 24, 37}
	if got != want {
		t.Errorf("FromLDraw x axis: got %v, want %v", got, want)
	}
	got = m.TransformPoint(Vec3{0, 0, 1})
	want = Vec3{13, 26, 39}
	if got != want {
		t.Errorf("FromLDraw z axis: got %v, want %v", got, want)
	}
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		p    Vec3
		want Vec3
	}{
		{"translate", Translate(10, 20, 30), Vec3{1, 2, 3}, Vec3{11, 22, 33}},
		{"scale", Scale(2, 2, 2), Vec3{1, 2, 3}, Vec3{2, 4, 6}},
		{"mul", Translate(1, 0, 0).Mul(Scale(2, 2, 2)), Vec3{1, 1, 1}, Vec3{3, 2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.TransformPoint(tt.p); got != tt.want {
				t.Errorf("TransformPoint: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2))
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result.X) > 0.001 || abs(result.Y) > 0.001 || abs(result.Z+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	got := Translate(5, 5, 5).TransformDirection(Vec3{0, 1, 0})
	if got != (Vec3{0, 1, 0}) {
		t.Errorf("TransformDirection: got %v, want (0, 1, 0)", got)
	}
}

func TestProject(t *testing.T) {
	m := Identity()
	m[11] = 1 // w = z + 1
	got := m.Project(Vec3{4, 6, 1})
	if got != (Vec2{2, 3}) {
		t.Errorf("Project: got %v, want (2, 3)", got)
	}
}

func TestDeterminant3(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		want float32
	}{
		{"identity", Identity(), 1},
		{"scale", Scale(2, 3, 4), 24},
		{"mirror", Scale(-1, 1, 1), -1},
		{"translation ignored", Translate(7, 8, 9), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Determinant3(); got != tt.want {
				t.Errorf("Determinant3 = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestNormalMatrix(t *testing.T) {
	// Non-uniform scale: a surface normal must scale by the inverse.
	n, ok := Scale(2, 1, 1).NormalMatrix()
	if !ok {
		t.Fatal("NormalMatrix reported singular for Scale(2,1,1)")
	}
	got := n.TransformDirection(Vec3{1, 1, 0})
	if abs(got.X-0.5) > 0.0001 || abs(got.Y-1) > 0.0001 {
		t.Errorf("NormalMatrix direction: got %v, want (0.5, 1, 0)", got)
	}

	rot := RotateY(0.7)
	n, _ = rot.NormalMatrix()
	for i := 0; i < 11; i++ {
		if i%4 == 3 {
			continue
		}
		if abs(n[i]-rot[i]) > 0.0001 {
			t.Errorf("rotation normal matrix element %d: got %f, want %f", i, n[i], rot[i])
		}
	}

	if _, ok := Scale(1, 0, 1).NormalMatrix(); ok {
		t.Error("NormalMatrix should report a singular matrix")
	}
}

func TestInverse(t *testing.T) {
	m := Translate(1, 2, 3).Mul(Scale(2, 4, 8))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported singular")
	}
	prod := m.Mul(inv)
	id := Identity()
	for i := range prod {
		if abs(prod[i]-id[i]) > 0.0001 {
			t.Errorf("M * M^-1 element %d: got %f, want %f", i, prod[i], id[i])
		}
	}

	if got, ok := Scale(0, 1, 1).Inverse(); ok || got != Identity() {
		t.Error("singular Inverse should return identity and false")
	}
}

func TestLookAt(t *testing.T) {
	m := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})

	got := m.TransformPoint(Vec3{})
	if abs(got.Z+5) > 0.0001 {
		t.Errorf("LookAt should place the center 5 units ahead, got %v", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
