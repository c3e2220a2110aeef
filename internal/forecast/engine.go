package forecast

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

// Engine runs predictions against a validated, private copy of a profile.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	profile *Profile
}

// New validates the profile and returns an engine bound to a copy of it
func New(profile *Profile) (*Engine, error) {
	if profile == nil {
		return nil, fmt.Errorf("%w: nil profile", ErrInvalidProfile)
	}
	cp := profile.Clone()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return &Engine{profile: cp}, nil
}

// Profile returns a copy of the engine's profile
func (e *Engine) Profile() *Profile {
	return e.profile.Clone()
}

// Predict forecasts the target-year salary range for the query. It always
// returns a complete result: every unknown input has a fallback.
func (e *Engine) Predict(q models.Query) models.PredictionResult {
	res, _ := e.predict(q, false)
	return res
}

// PredictStrict is Predict with input validation. The result is still
// computed on failure; the returned error joins every validation problem.
func (e *Engine) PredictStrict(q models.Query) (models.PredictionResult, error) {
	return e.predict(q, true)
}

func (e *Engine) predict(q models.Query, strict bool) (models.PredictionResult, error) {
	p := e.profile

	role, roleMatch := p.resolveRole(q.Role)
	level, levelMatch := p.resolveLevel(q.Level)
	geo := p.NormalizeGeo(q.Location)
	skills := p.normalizeSkills(q.Skills)

	var err error
	if strict {
		err = e.validate(q, roleMatch, levelMatch, geo, skills)
	}

	base := p.Baseline(role, level)
	grown := p.Growth(base, role)
	inflated := p.Inflate(grown)

	sMult := p.SkillsMultiplier(skills)
	gMult := p.GeoMultiplier(geo)
	dMult := p.DemandMultiplier(role)
	rMult := p.RegressionMultiplier(role, level, q.YearsExperience)

	c := BuildCandidates(inflated, sMult, gMult, dMult, rMult)
	final := Blend(c, p.Weights)
	mid := final.Mid()

	return models.PredictionResult{
		Role:                 role,
		Level:                level,
		Location:             geo,
		Skills:               skills,
		FinalLow:             math.Round(final.Low),
		FinalMid:             math.Round(mid),
		FinalHigh:            math.Round(final.High),
		SkillsMultiplier:     sMult,
		GeoMultiplier:        gMult,
		DemandMultiplier:     dMult,
		RegressionMultiplier: rMult,
		Breakdown: models.Breakdown{
			Baseline:   base,
			Growth:     grown,
			Inflation:  inflated,
			CandidateA: c.A,
			CandidateB: c.B,
			CandidateD: c.D,
			CandidateE: c.E,
			Final:      final,
			FinalMid:   mid,
		},
	}, err
}

func (e *Engine) validate(q models.Query, roleMatch, levelMatch matchKind, geo models.GeoKey, skills []string) error {
	p := e.profile
	var errs []error

	if math.IsNaN(q.YearsExperience) || q.YearsExperience < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidExperience, q.YearsExperience))
	}

	switch roleMatch {
	case matchDefault:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownRole, q.Role))
	case matchSubstring:
		if keys := distinctKeys(p.MatchingRoleAliases(q.Role)); len(keys) > 1 {
			errs = append(errs, fmt.Errorf("%w: %q matches %s", ErrAmbiguousRole, q.Role, strings.Join(keys, ", ")))
		}
	}

	if levelMatch == matchDefault {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownLevel, q.Level))
	}

	if geo == models.GeoDefault && !strings.EqualFold(strings.TrimSpace(q.Location), string(models.GeoDefault)) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownLocation, q.Location))
	}

	var unknown []string
	for _, s := range skills {
		if _, ok := p.SkillPremium[s]; !ok {
			unknown = append(unknown, s)
		}
	}
	if len(unknown) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownSkill, strings.Join(unknown, ", ")))
	}

	return errors.Join(errs...)
}

func distinctKeys(aliases []Alias) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, a := range aliases {
		if _, ok := seen[a.Key]; ok {
			continue
		}
		seen[a.Key] = struct{}{}
		keys = append(keys, a.Key)
	}
	return keys
}
