package forecast

import (
	"math"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

// Baseline returns the configured range for a role and level. Unknown roles
// fall back to the default role and unknown levels to the role's mid range.
func (p *Profile) Baseline(role models.RoleKey, level models.LevelKey) models.Range {
	levels, ok := p.Baselines[role]
	if !ok {
		levels = p.Baselines[p.DefaultRole]
	}
	if r, ok := levels[level]; ok {
		return r
	}
	return levels[models.LevelMid]
}

// GrowthFactor is (1 + cagr)^GrowthYears for the role
func (p *Profile) GrowthFactor(role models.RoleKey) float64 {
	cagr, ok := p.CAGR[role]
	if !ok {
		cagr = p.DefaultCAGR
	}
	return math.Pow(1.0+cagr, p.GrowthYears)
}

// Growth applies the role's compound growth over the configured horizon
func (p *Profile) Growth(r models.Range, role models.RoleKey) models.Range {
	return r.Scale(p.GrowthFactor(role))
}

// Inflate converts base-year dollars into target-year dollars
func (p *Profile) Inflate(r models.Range) models.Range {
	return r.Scale(p.Inflation)
}

// SkillsMultiplier sums the premiums of the known skills, caps the sum and
// dampens it. Unknown skills contribute nothing and duplicates count once.
func (p *Profile) SkillsMultiplier(skills []string) float64 {
	total := 0.0
	for _, s := range p.normalizeSkills(skills) {
		total += p.SkillPremium[s]
	}
	total = math.Min(total, p.SkillsCap)
	return 1.0 + (p.SkillsDamping * total)
}

// GeoMultiplier returns the location factor, undamped
func (p *Profile) GeoMultiplier(key models.GeoKey) float64 {
	if g, ok := p.Geo[key]; ok {
		return g
	}
	return p.Geo[models.GeoDefault]
}

// DemandMultiplier returns the role's demand factor, 1.0 when none is configured
func (p *Profile) DemandMultiplier(role models.RoleKey) float64 {
	if d, ok := p.Demand[role]; ok {
		return d
	}
	return 1.0
}

// RegressionMultiplier adjusts for experience relative to the level's anchor.
// The adjustment is clipped to [ClipLow, ClipHigh].
func (p *Profile) RegressionMultiplier(role models.RoleKey, level models.LevelKey, yearsExp float64) float64 {
	target, ok := p.LevelAnchors[level]
	if !ok {
		target = p.LevelAnchors[models.LevelMid]
	}

	delta := yearsExp - target
	if math.IsNaN(delta) {
		delta = 0
	}

	leverage := p.Leverage
	if containsRole(p.HighLeverageRoles, role) {
		leverage = p.HighLeverage
	}

	adj := delta * leverage
	clipped := math.Max(p.ClipLow, math.Min(p.ClipHigh, adj))
	return 1.0 + clipped
}
