package mathx

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLookDir_AxesAndUnitLength(t *testing.T) {
	d := LookDir(0, 0)
	if !near(d.X, 0) || !near(d.Y, 0) || !near(d.Z, -1) {
		t.Fatalf("yaw 0 should look down -Z, got %+v", d)
	}
	d = LookDir(math.Pi/2, 0)
	if !near(d.X, -1) || !near(d.Z, 0) {
		t.Fatalf("yaw pi/2 should look down -X, got %+v", d)
	}
	for _, yp := range [][2]float64{{0.3, 0.9}, {-2, -1.1}, {4, 0.2}} {
		if l := LookDir(yp[0], yp[1]).Len(); !near(l, 1) {
			t.Fatalf("LookDir(%v) len=%v", yp, l)
		}
	}
}

func TestForwardRight_Orthogonal(t *testing.T) {
	for _, yaw := range []float64{0, 0.7, -1.3, math.Pi} {
		if dot := Forward(yaw).Dot(Right(yaw)); !near(dot, 0) {
			t.Fatalf("yaw=%v forward.right=%v", yaw, dot)
		}
	}
}

func TestToView_MapsLocalAxes(t *testing.T) {
	got := ToView(0, 0, V(1, 2, -3))
	if !near(got.X, 1) || !near(got.Y, 2) || !near(got.Z, -3) {
		t.Fatalf("identity view: got %+v", got)
	}
	got = ToView(0.4, 0.6, V(0, 0, -1))
	want := LookDir(0.4, 0.6)
	if !near(got.X, want.X) || !near(got.Y, want.Y) || !near(got.Z, want.Z) {
		t.Fatalf("local -Z should be the look dir: got %+v want %+v", got, want)
	}
}

func TestRayAABB(t *testing.T) {
	min, max := V(-0.25, 0.9, -10.25), V(0.25, 1.4, -9.75)
	tt, ok := RayAABB(V(0, 1.15, 0), V(0, 0, -1), min, max)
	if !ok || !near(tt, 9.75) {
		t.Fatalf("hit: ok=%v t=%v", ok, tt)
	}
	if _, ok := RayAABB(V(0, 1.15, 0), V(0, 0, 1), min, max); ok {
		t.Fatalf("box behind ray must miss")
	}
	if _, ok := RayAABB(V(2, 1.15, 0), V(0, 0, -1), min, max); ok {
		t.Fatalf("parallel offset ray must miss")
	}
	if tt, ok := RayAABB(V(0, 1.15, -10), V(0, 0, -1), min, max); !ok || tt != 0 {
		t.Fatalf("origin inside: ok=%v t=%v", ok, tt)
	}
}

func TestRaySphere(t *testing.T) {
	tt, ok := RaySphere(V(0, 0, 0), V(1, 0, 0), V(5, 0, 0), 1)
	if !ok || !near(tt, 4) {
		t.Fatalf("hit: ok=%v t=%v", ok, tt)
	}
	if _, ok := RaySphere(V(0, 0, 0), V(-1, 0, 0), V(5, 0, 0), 1); ok {
		t.Fatalf("sphere behind must miss")
	}
	if _, ok := RaySphere(V(0, 2, 0), V(1, 0, 0), V(5, 0, 0), 1); ok {
		t.Fatalf("grazing outside radius must miss")
	}
}

func TestPlanarDistSq_IgnoresHeight(t *testing.T) {
	if d := PlanarDistSq(V(0, 100, 0), V(3, 0, 4)); d != 25 {
		t.Fatalf("got %v want 25", d)
	}
	if d := DistSq(V(0, 0, 0), V(1, 2, 2)); d != 9 {
		t.Fatalf("got %v want 9", d)
	}
}
