package availability

import (
	"testing"
	"time"
)

func TestDiscretizeSnapsStartBackward(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 7, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	points := Discretize(start, end, 15*time.Minute)
	if len(points) == 0 {
		t.Fatal("no points")
	}
	want := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	if !points[0].Equal(want) {
		t.Errorf("first point = %v, want %v", points[0], want)
	}
}

func TestDiscretizeHalfOpen(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	points := Discretize(start, end, 15*time.Minute)
	if len(points) != 12 {
		t.Fatalf("len(points) = %d, want 12", len(points))
	}
	last := points[len(points)-1]
	want := time.Date(2026, 1, 5, 11, 45, 0, 0, time.UTC)
	if !last.Equal(want) {
		t.Errorf("last point = %v, want %v (end is never emitted)", last, want)
	}
}

func TestDiscretizeIdempotent(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 7, 33, 0, time.UTC)
	end := time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC)

	a := Discretize(start, end, 15*time.Minute)
	b := Discretize(start, end, 15*time.Minute)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Errorf("point %d: %v vs %v", i, a[i], b[i])
		}
	}
	for i := 1; i < len(a); i++ {
		if !a[i].After(a[i-1]) {
			t.Errorf("points not strictly ascending at %d", i)
		}
	}
}

func TestDiscretizeDegenerate(t *testing.T) {
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	if got := Discretize(at, at, 15*time.Minute); got != nil {
		t.Errorf("empty interval: got %v", got)
	}
	if got := Discretize(at.Add(time.Hour), at, 15*time.Minute); got != nil {
		t.Errorf("inverted interval: got %v", got)
	}
	if got := Discretize(at, at.Add(time.Hour), 0); got != nil {
		t.Errorf("zero interval: got %v", got)
	}
}

func TestDiscretizeMinutes(t *testing.T) {
	got := discretizeMinutes(545, 630, 15) // 09:05 to 10:30
	want := []int{540, 555, 570, 585, 600, 615}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %d, want %d", i, got[i], want[i])
		}
	}
}
