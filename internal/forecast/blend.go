package forecast

import "github.com/fr4nk3nst1ner/salaryforecast/internal/models"

// Candidates are the parallel estimates the blender pulls toward
type Candidates struct {
	A models.Range // inflation-adjusted base
	B models.Range // A with skills
	D models.Range // A with skills, geo and demand
	E models.Range // D with the regression adjustment
}

// BuildCandidates derives every candidate from the same inflation-adjusted base
func BuildCandidates(base models.Range, skills, geo, demand, regression float64) Candidates {
	d := models.Range{
		Low:  base.Low * skills * geo * demand,
		High: base.High * skills * geo * demand,
	}
	return Candidates{
		A: base,
		B: models.Range{Low: base.Low * skills, High: base.High * skills},
		D: d,
		E: models.Range{Low: d.Low * regression, High: d.High * regression},
	}
}

// Blend starts from A and moves toward B, then D, then E, each step only by
// its weight. This is not the same as multiplying A by every factor.
func Blend(c Candidates, w Weights) models.Range {
	r := blendStep(c.A, c.B, w.Skills)
	r = blendStep(r, c.D, w.Geo)
	r = blendStep(r, c.E, w.Regression)
	return r
}

func blendStep(cur, target models.Range, w float64) models.Range {
	return models.Range{
		Low:  (1-w)*cur.Low + w*target.Low,
		High: (1-w)*cur.High + w*target.High,
	}
}
