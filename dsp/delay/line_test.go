package delay

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}
}

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		d.Write(float64(i))
	}

	for delay := 0; delay < 8; delay++ {
		want := float64(7 - delay)
		if got := d.Read(delay); got != want {
			t.Fatalf("Read(%d) = %v, want %v", delay, got, want)
		}
	}
}

func TestWriteCursorWrapsMostRecent(t *testing.T) {
	const capacity = 16

	for _, k := range []int{0, 1, 5, 15, 16, 37} {
		d, err := New(capacity)
		if err != nil {
			t.Fatal(err)
		}

		total := capacity + k
		for i := 0; i < total; i++ {
			d.Write(float64(i + 1))
		}

		if pos := d.WritePos(); pos < 0 || pos >= capacity {
			t.Fatalf("k=%d: write cursor %d out of [0, %d)", k, pos, capacity)
		}

		got := d.ReadAt(float64(d.WritePos() - 1))
		if got != float64(total) {
			t.Fatalf("k=%d: ReadAt(write-1) = %v, want %v", k, got, float64(total))
		}
	}
}

func TestReadAtInterpolatesBetweenTaps(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 8; i++ {
		d.Write(float64(i * i))
	}

	for _, idx := range []float64{0.5, 2.25, 3.75, 6.1} {
		lo := math.Floor(idx)
		a := float64(int(lo) * int(lo))
		b := float64((int(lo) + 1) * (int(lo) + 1))
		want := a + (idx-lo)*(b-a)
		if got := d.ReadAt(idx); !approxEqual(got, want, 1e-12) {
			t.Fatalf("ReadAt(%v) = %v, want %v", idx, got, want)
		}
	}

	// Between the last and first slot the read wraps.
	want := 49 + 0.5*(0-49.0)
	if got := d.ReadAt(7.5); !approxEqual(got, want, 1e-12) {
		t.Fatalf("ReadAt(7.5) = %v, want %v", got, want)
	}
	if got := d.ReadAt(-0.5); !approxEqual(got, want, 1e-12) {
		t.Fatalf("ReadAt(-0.5) = %v, want %v", got, want)
	}
}

func TestReadFractional(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		d.Write(float64(i))
	}

	if got := d.ReadFractional(0); got != 9 {
		t.Fatalf("ReadFractional(0) = %v, want 9", got)
	}
	if got := d.ReadFractional(2.5); !approxEqual(got, 6.5, 1e-12) {
		t.Fatalf("ReadFractional(2.5) = %v, want 6.5", got)
	}
	if got := d.ReadFractional(-3); got != 9 {
		t.Fatalf("ReadFractional(-3) = %v, want 9", got)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	d.Write(1)
	d.Write(2)
	d.Reset()

	if d.WritePos() != 0 {
		t.Fatalf("WritePos() = %d, want 0", d.WritePos())
	}
	for i := 0; i < d.Len(); i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("Read(%d) = %v after reset, want 0", i, got)
		}
	}
}
