package models

// RoleKey is the canonical identifier of a job role (e.g. "cybersecurity_engineer")
type RoleKey string

// LevelKey is one of the three canonical seniority levels
type LevelKey string

const (
	LevelEntry  LevelKey = "entry"
	LevelMid    LevelKey = "mid"
	LevelSenior LevelKey = "senior"
)

// Levels lists the canonical levels in ascending seniority
var Levels = []LevelKey{LevelEntry, LevelMid, LevelSenior}

// Valid reports whether l is one of the canonical levels
func (l LevelKey) Valid() bool {
	switch l {
	case LevelEntry, LevelMid, LevelSenior:
		return true
	}
	return false
}

// GeoKey is a normalized 2-letter state code, REMOTE or DEFAULT
type GeoKey string

const (
	GeoRemote  GeoKey = "REMOTE"
	GeoDefault GeoKey = "DEFAULT"
)

// Range is a [Low, High] salary pair in USD
type Range struct {
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// Scale multiplies both bounds by factor
func (r Range) Scale(factor float64) Range {
	return Range{Low: r.Low * factor, High: r.High * factor}
}

// Mid returns the midpoint of the range
func (r Range) Mid() float64 {
	return (r.Low + r.High) / 2.0
}

// Query is the input of a single prediction
type Query struct {
	Role            string   `json:"role"`
	Level           string   `json:"level"`
	YearsExperience float64  `json:"years_experience"`
	Location        string   `json:"location"`
	Skills          []string `json:"skills,omitempty"`
	// Description is optional job posting text used to enrich role, level and skills
	Description string `json:"description,omitempty"`
}

// Breakdown keeps the unrounded intermediate values of a prediction
type Breakdown struct {
	Baseline  Range `json:"baseline"`
	Growth    Range `json:"growth"`
	Inflation Range `json:"inflation"`
	// Candidates of the blend: A is the inflation-adjusted base, B adds skills,
	// D adds skills, geo and demand, E adds the regression adjustment on top of D.
	CandidateA Range   `json:"candidate_a"`
	CandidateB Range   `json:"candidate_b"`
	CandidateD Range   `json:"candidate_d"`
	CandidateE Range   `json:"candidate_e"`
	Final      Range   `json:"final"`
	FinalMid   float64 `json:"final_mid"`
}

// PredictionResult is the packaged output of a prediction
type PredictionResult struct {
	Role                 RoleKey   `json:"role"`
	Level                LevelKey  `json:"level"`
	Location             GeoKey    `json:"location"`
	Skills               []string  `json:"skills,omitempty"`
	FinalLow             float64   `json:"final_low"`
	FinalMid             float64   `json:"final_mid"`
	FinalHigh            float64   `json:"final_high"`
	SkillsMultiplier     float64   `json:"skills_multiplier"`
	GeoMultiplier        float64   `json:"geo_multiplier"`
	DemandMultiplier     float64   `json:"demand_multiplier"`
	RegressionMultiplier float64   `json:"regression_multiplier"`
	Breakdown            Breakdown `json:"breakdown"`
}
