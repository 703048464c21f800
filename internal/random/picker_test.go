package random

import (
	"math"
	"testing"
)

func TestPickerEmpty(t *testing.T) {
	var p Picker[string]
	if _, ok := p.Pick(New(1)); ok {
		t.Fatal("empty picker returned an item")
	}

	p.Add("never", 0)
	p.Add("negative", -3)
	p.Add("nan", math.NaN())
	if !p.IsEmpty() {
		t.Errorf("non-positive weights were added: len %d", p.Len())
	}
}

func TestPickerSingle(t *testing.T) {
	var p Picker[int]
	p.Add(42, 0.5)
	rng := New(7)
	for i := 0; i < 100; i++ {
		if v, ok := p.Pick(rng); !ok || v != 42 {
			t.Fatalf("Pick() = %d, %v", v, ok)
		}
	}
}

func TestPickerDeterministic(t *testing.T) {
	build := func() *Picker[int] {
		p := &Picker[int]{}
		for i := 0; i < 10; i++ {
			p.Add(i, float64(i+1))
		}
		return p
	}
	a, b := build(), build()
	ra, rb := New(99), New(99)
	for i := 0; i < 200; i++ {
		va, _ := a.Pick(ra)
		vb, _ := b.Pick(rb)
		if va != vb {
			t.Fatalf("draw %d differs: %d vs %d", i, va, vb)
		}
	}
}

func TestPickerWeightedFrequencies(t *testing.T) {
	weights := map[string]float64{"a": 1, "b": 2, "c": 5, "zero": 0}
	var p Picker[string]
	for _, name := range []string{"a", "b", "c", "zero"} {
		p.Add(name, weights[name])
	}

	const n = 200000
	counts := make(map[string]int)
	rng := New(12345)
	for i := 0; i < n; i++ {
		v, _ := p.Pick(rng)
		counts[v]++
	}

	if counts["zero"] != 0 {
		t.Errorf("zero-weight item drawn %d times", counts["zero"])
	}
	total := 8.0
	for _, name := range []string{"a", "b", "c"} {
		want := weights[name] / total
		got := float64(counts[name]) / n
		if math.Abs(got-want) > 0.01 {
			t.Errorf("frequency of %s = %.4f, want %.4f", name, got, want)
		}
	}
}

func TestPickerClear(t *testing.T) {
	var p Picker[int]
	p.Add(1, 1)
	p.Clear()
	if !p.IsEmpty() || p.Total() != 0 {
		t.Error("Clear left state behind")
	}
	p.Add(2, 1)
	if v, ok := p.Pick(New(0)); !ok || v != 2 {
		t.Errorf("Pick after Clear = %d, %v", v, ok)
	}
}
