package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestDominantFindsPeriod(t *testing.T) {
	const n, period = 256, 16
	series := make([]float64, n)
	for i := range series {
		series[i] = 100 + 10*math.Sin(2*math.Pi*float64(i)/period)
	}

	p, err := Dominant(series)
	if err != nil {
		t.Fatal(err)
	}
	if p.Bin != n/period {
		t.Errorf("expected bin %d, got %d", n/period, p.Bin)
	}
	if math.Abs(p.Period-period) > 1e-9 {
		t.Errorf("expected period %d, got %g", period, p.Period)
	}
}

func TestPowerSpectrumDropsOffset(t *testing.T) {
	ps := PowerSpectrum([]float64{5, 5, 5, 5, 5, 5, 5, 5})
	for i, v := range ps {
		if v > 1e-9 {
			t.Errorf("bin %d = %g for a constant series", i, v)
		}
	}
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("single sample should have no spectrum")
	}
}

func TestDominantTooShort(t *testing.T) {
	if _, err := Dominant([]float64{1, 2}); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestRingDown(t *testing.T) {
	energy := []float64{0, 0, 50}
	e := 1000.0
	for i := 0; i < 40; i++ {
		energy = append(energy, e)
		e *= 0.9
	}
	energy = append(energy, 0, 0, 7)

	d, err := RingDown(energy, 3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d.Factor-0.9) > 1e-9 {
		t.Errorf("expected factor 0.9, got %g", d.Factor)
	}
	if d.Samples != 40 {
		t.Errorf("expected 40 samples, got %d", d.Samples)
	}
	want := math.Ln2 / -math.Log(0.9)
	if math.Abs(d.HalfLife-want) > 1e-6 {
		t.Errorf("expected half life %g, got %g", want, d.HalfLife)
	}
}

func TestRingDownGrowing(t *testing.T) {
	d, err := RingDown([]float64{1, 2, 4, 8}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(d.HalfLife, 1) {
		t.Errorf("growing energy should have infinite half life, got %g", d.HalfLife)
	}
	if _, err := RingDown([]float64{1, 0, 3, 4}, 0); !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}
