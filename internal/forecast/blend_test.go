package forecast_test

import (
	"testing"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

func TestBuildCandidates(t *testing.T) {
	base := models.Range{Low: 100000, High: 150000}
	c := forecast.BuildCandidates(base, 1.1, 1.2, 1.0, 1.05)

	if c.A != base {
		t.Fatalf("A = %+v, want base", c.A)
	}
	if !approx(c.B.Low, 110000, 1e-6) || !approx(c.B.High, 165000, 1e-6) {
		t.Errorf("B = %+v", c.B)
	}
	if !approx(c.D.Low, 132000, 1e-6) || !approx(c.D.High, 198000, 1e-6) {
		t.Errorf("D = %+v", c.D)
	}
	if !approx(c.E.Low, 138600, 1e-6) || !approx(c.E.High, 207900, 1e-6) {
		t.Errorf("E = %+v", c.E)
	}
}

func TestBlendIsStepwiseWeightedAverage(t *testing.T) {
	base := models.Range{Low: 100000, High: 150000}
	c := forecast.BuildCandidates(base, 1.1, 1.2, 1.0, 1.05)
	w := forecast.Weights{Skills: 0.2, Geo: 0.2, Regression: 0.2}

	got := forecast.Blend(c, w)

	low := 0.8*c.A.Low + 0.2*c.B.Low
	low = 0.8*low + 0.2*c.D.Low
	low = 0.8*low + 0.2*c.E.Low
	if !approx(got.Low, low, 1e-6) {
		t.Fatalf("blend low = %v, want %v", got.Low, low)
	}

	product := base.Low * 1.1 * 1.2 * 1.05
	if approx(got.Low, product, 1) {
		t.Fatalf("blend collapsed to the plain product %v", product)
	}
	if !(c.A.Low < got.Low && got.Low < c.E.Low) {
		t.Fatalf("blend %v outside (%v, %v)", got.Low, c.A.Low, c.E.Low)
	}
}

func TestBlendWeightExtremes(t *testing.T) {
	c := forecast.BuildCandidates(models.Range{Low: 90000, High: 120000}, 1.15, 1.1, 1.05, 0.97)

	if got := forecast.Blend(c, forecast.Weights{}); got != c.A {
		t.Errorf("zero weights = %+v, want A %+v", got, c.A)
	}
	if got := forecast.Blend(c, forecast.Weights{Skills: 1, Geo: 1, Regression: 1}); got != c.E {
		t.Errorf("unit weights = %+v, want E %+v", got, c.E)
	}

	neutral := forecast.BuildCandidates(models.Range{Low: 90000, High: 120000}, 1, 1, 1, 1)
	if got := forecast.Blend(neutral, forecast.Weights{Skills: 0.2, Geo: 0.2, Regression: 0.2}); !approx(got.Low, 90000, 1e-9) || !approx(got.High, 120000, 1e-9) {
		t.Errorf("neutral multipliers moved the range: %+v", got)
	}
}
