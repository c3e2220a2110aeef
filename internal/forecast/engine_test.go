package forecast_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

func newEngine(t *testing.T, p *forecast.Profile) *forecast.Engine {
	t.Helper()
	e, err := forecast.New(p)
	if err != nil {
		t.Fatalf("New(%s): %v", p.Name, err)
	}
	return e
}

func approx(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPredictExamples(t *testing.T) {
	e := newEngine(t, forecast.Cybersecurity())

	cases := []struct {
		name       string
		q          models.Query
		role       models.RoleKey
		level      models.LevelKey
		low, mid   float64
		high       float64
		skills     float64
		geo        float64
		regression float64
	}{
		{
			name:  "mid engineer in texas",
			q:     models.Query{Role: "Cybersecurity Engineer", Level: "Mid", YearsExperience: 4, Location: "TX", Skills: []string{"siem", "soar", "zero_trust", "cissp"}},
			role:  "cybersecurity_engineer",
			level: models.LevelMid,
			low:   152093, mid: 177441, high: 202790,
			skills: 1.1275, geo: 1.03, regression: 1.0,
		},
		{
			name:  "senior cloud engineer in california",
			q:     models.Query{Role: "Cloud Security Engineer", Level: "Senior", YearsExperience: 9, Location: "CA", Skills: []string{"aws_security", "kubernetes", "terraform", "cnapp", "ccsp"}},
			role:  "cloud_security_engineer",
			level: models.LevelSenior,
			low:   250025, mid: 289315, high: 328604,
			skills: 1.1785, geo: 1.18, regression: 1.01,
		},
		{
			name:  "entry soc analyst remote",
			q:     models.Query{Role: "SOC Analyst", Level: "Entry", YearsExperience: 1, Location: "REMOTE", Skills: []string{"siem", "edr", "security_plus"}},
			role:  "soc_analyst",
			level: models.LevelEntry,
			low:   84975, mid: 100149, high: 115323,
			skills: 1.0595, geo: 1.0, regression: 1.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Predict(tc.q)
			if got.Role != tc.role || got.Level != tc.level {
				t.Fatalf("resolved %s/%s, want %s/%s", got.Role, got.Level, tc.role, tc.level)
			}
			if !approx(got.FinalLow, tc.low, 1) || !approx(got.FinalMid, tc.mid, 1) || !approx(got.FinalHigh, tc.high, 1) {
				t.Fatalf("final = %v/%v/%v, want %v/%v/%v", got.FinalLow, got.FinalMid, got.FinalHigh, tc.low, tc.mid, tc.high)
			}
			if !approx(got.SkillsMultiplier, tc.skills, 1e-9) {
				t.Errorf("skills multiplier = %v, want %v", got.SkillsMultiplier, tc.skills)
			}
			if got.GeoMultiplier != tc.geo {
				t.Errorf("geo multiplier = %v, want %v", got.GeoMultiplier, tc.geo)
			}
			if !approx(got.RegressionMultiplier, tc.regression, 1e-12) {
				t.Errorf("regression multiplier = %v, want %v", got.RegressionMultiplier, tc.regression)
			}
			if got.DemandMultiplier != 1.0 {
				t.Errorf("demand multiplier = %v, want 1", got.DemandMultiplier)
			}
		})
	}
}

func TestPredictTexasBreakdown(t *testing.T) {
	e := newEngine(t, forecast.Cybersecurity())
	got := e.Predict(models.Query{
		Role: "Cybersecurity Engineer", Level: "Mid", YearsExperience: 4, Location: "TX",
		Skills: []string{"siem", "soar", "zero_trust", "cissp"},
	})
	b := got.Breakdown

	if b.Baseline != (models.Range{Low: 120000, High: 160000}) {
		t.Fatalf("baseline = %+v", b.Baseline)
	}
	if !approx(b.Growth.Low, 132300, 1e-6) || !approx(b.Growth.High, 176400, 1e-6) {
		t.Fatalf("growth = %+v", b.Growth)
	}
	if !approx(b.Inflation.Low, 141561, 1e-6) || !approx(b.Inflation.High, 188748, 1e-6) {
		t.Fatalf("inflation = %+v", b.Inflation)
	}

	// each blend step is a weighted average, so the result sits strictly between A and E
	if !(b.CandidateA.Low < b.Final.Low && b.Final.Low < b.CandidateE.Low) {
		t.Errorf("final low %v not within (%v, %v)", b.Final.Low, b.CandidateA.Low, b.CandidateE.Low)
	}
	if !(b.CandidateA.High < b.Final.High && b.Final.High < b.CandidateE.High) {
		t.Errorf("final high %v not within (%v, %v)", b.Final.High, b.CandidateA.High, b.CandidateE.High)
	}
	if b.FinalMid != (b.Final.Low+b.Final.High)/2 {
		t.Errorf("mid %v is not the midpoint of %+v", b.FinalMid, b.Final)
	}
}

func TestPredictUnknownRoleFallsBack(t *testing.T) {
	e := newEngine(t, forecast.Cybersecurity())
	got := e.Predict(models.Query{Role: "Unicorn Wrangler", Level: "Mid", YearsExperience: 4, Location: "TX"})
	if got.Role != "cybersecurity_engineer" {
		t.Fatalf("role = %q, want default role", got.Role)
	}
	if got.FinalLow <= 0 || got.FinalHigh < got.FinalLow {
		t.Fatalf("unexpected range %v-%v", got.FinalLow, got.FinalHigh)
	}
}

func TestPredictIsDeterministic(t *testing.T) {
	e := newEngine(t, forecast.Cybersecurity())
	q := models.Query{
		Role: "Threat Hunter", Level: "staff", YearsExperience: 11.5, Location: "ny",
		Skills: []string{"threat_hunting", "malware_analysis", "gcih"},
	}
	first := e.Predict(q)
	for i := 0; i < 50; i++ {
		if got := e.Predict(q); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestPredictPermissiveInputs(t *testing.T) {
	e := newEngine(t, forecast.Cybersecurity())

	cases := []models.Query{
		{Role: "", Level: "", YearsExperience: -20, Location: ""},
		{Role: "SOC Analyst", Level: "Entry", YearsExperience: math.NaN(), Location: "??"},
		{Role: "grc analyst", Level: "principal", YearsExperience: math.Inf(1), Skills: []string{"", "nope"}},
	}
	for _, q := range cases {
		got := e.Predict(q)
		for _, v := range []float64{got.FinalLow, got.FinalMid, got.FinalHigh} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
				t.Fatalf("Predict(%+v) produced %v", q, v)
			}
		}
	}
}

func TestPredictStrict(t *testing.T) {
	e := newEngine(t, forecast.Cybersecurity())

	cases := []struct {
		name string
		q    models.Query
		want []error
	}{
		{
			name: "valid",
			q:    models.Query{Role: "SOC Analyst", Level: "Entry", YearsExperience: 1, Location: "REMOTE", Skills: []string{"siem"}},
		},
		{
			name: "explicit default location",
			q:    models.Query{Role: "soc_analyst", Level: "mid", YearsExperience: 4, Location: "default"},
		},
		{
			name: "negative experience",
			q:    models.Query{Role: "SOC Analyst", Level: "Entry", YearsExperience: -1, Location: "TX"},
			want: []error{forecast.ErrInvalidExperience},
		},
		{
			name: "unknown everything",
			q:    models.Query{Role: "Unicorn Wrangler", Level: "wizard", YearsExperience: 2, Location: "Mars", Skills: []string{"juggling"}},
			want: []error{forecast.ErrUnknownRole, forecast.ErrUnknownLevel, forecast.ErrUnknownLocation, forecast.ErrUnknownSkill},
		},
		{
			name: "ambiguous alias",
			q:    models.Query{Role: "Lead Cloud Security Engineer", Level: "Senior", YearsExperience: 8, Location: "WA"},
			want: []error{forecast.ErrAmbiguousRole},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.PredictStrict(tc.q)
			if len(tc.want) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			for _, want := range tc.want {
				if !errors.Is(err, want) {
					t.Errorf("error %v does not wrap %v", err, want)
				}
			}
			if !reflect.DeepEqual(res, e.Predict(tc.q)) {
				t.Errorf("strict result differs from permissive result")
			}
		})
	}
}

func TestNewRejectsInvalidProfile(t *testing.T) {
	p := forecast.Cybersecurity()
	delete(p.Baselines, p.DefaultRole)
	if _, err := forecast.New(p); !errors.Is(err, forecast.ErrInvalidProfile) {
		t.Fatalf("New with missing default role: err = %v", err)
	}
	if _, err := forecast.New(nil); !errors.Is(err, forecast.ErrInvalidProfile) {
		t.Fatalf("New(nil): err = %v", err)
	}
}

func TestEngineOwnsItsProfile(t *testing.T) {
	p := forecast.Cybersecurity()
	e := newEngine(t, p)
	q := models.Query{Role: "SOC Analyst", Level: "Entry", YearsExperience: 1, Location: "TX"}
	before := e.Predict(q)

	p.Inflation = 2
	p.Baselines["soc_analyst"][models.LevelEntry] = models.Range{Low: 1, High: 2}
	e.Profile().Geo["TX"] = 5

	if after := e.Predict(q); !reflect.DeepEqual(before, after) {
		t.Fatalf("engine result changed after caller mutated profiles")
	}
}

func TestDemandMultiplierAppliedToCandidateD(t *testing.T) {
	e := newEngine(t, forecast.SoftwareEngineering())
	got := e.Predict(models.Query{Role: "Software Engineer", Level: "mid", YearsExperience: 4, Location: "WA", Skills: []string{"AWS", "Kubernetes"}})

	if got.Role != "software_developer" {
		t.Fatalf("role = %q", got.Role)
	}
	if got.DemandMultiplier != 1.15 {
		t.Fatalf("demand multiplier = %v, want 1.15", got.DemandMultiplier)
	}
	b := got.Breakdown
	want := b.CandidateA.Low * got.SkillsMultiplier * got.GeoMultiplier * got.DemandMultiplier
	if !approx(b.CandidateD.Low, want, 1e-6) {
		t.Fatalf("candidate D low = %v, want %v", b.CandidateD.Low, want)
	}
}
