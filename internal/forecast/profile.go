package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

// Alias maps a free-text phrase to a canonical key
type Alias struct {
	Phrase string `yaml:"phrase" json:"phrase"`
	Key    string `yaml:"key" json:"key"`
}

// Weights are the blend strengths of the skills, geo and regression steps
type Weights struct {
	Skills     float64 `yaml:"skills" json:"skills"`
	Geo        float64 `yaml:"geo" json:"geo"`
	Regression float64 `yaml:"regression" json:"regression"`
}

// Profile holds every table and constant the forecasting pipeline reads.
// A profile is treated as read-only once handed to New.
type Profile struct {
	Name        string
	DefaultRole models.RoleKey
	BaseYear    int
	TargetYear  int

	Baselines map[models.RoleKey]map[models.LevelKey]models.Range
	// RoleOrder fixes the order of roles in reports; sorted keys are used when empty.
	RoleOrder []models.RoleKey
	// ONETCodes maps roles to O*NET occupation codes for live wage refreshes.
	ONETCodes map[models.RoleKey]string

	CAGR        map[models.RoleKey]float64
	DefaultCAGR float64
	GrowthYears float64
	Inflation   float64

	SkillPremium  map[string]float64
	SkillAliases  map[string]string
	SkillsCap     float64
	SkillsDamping float64

	Geo    map[models.GeoKey]float64
	Demand map[models.RoleKey]float64

	// Alias tables are scanned in order, first match wins.
	RoleAliases  []Alias
	LevelAliases []Alias

	Weights Weights

	LevelAnchors      map[models.LevelKey]float64
	Leverage          float64
	HighLeverage      float64
	HighLeverageRoles []models.RoleKey
	ClipLow           float64
	ClipHigh          float64
}

// Roles returns the canonical role keys in report order
func (p *Profile) Roles() []models.RoleKey {
	if len(p.RoleOrder) > 0 {
		out := make([]models.RoleKey, 0, len(p.RoleOrder))
		for _, r := range p.RoleOrder {
			if _, ok := p.Baselines[r]; ok {
				out = append(out, r)
			}
		}
		// roles added by overrides but missing from the order go last
		var extra []models.RoleKey
		for r := range p.Baselines {
			if !containsRole(out, r) {
				extra = append(extra, r)
			}
		}
		sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
		return append(out, extra...)
	}

	out := make([]models.RoleKey, 0, len(p.Baselines))
	for r := range p.Baselines {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GeoKeys returns the configured location keys, sorted
func (p *Profile) GeoKeys() []models.GeoKey {
	out := make([]models.GeoKey, 0, len(p.Geo))
	for k := range p.Geo {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Skills returns the skills that carry a premium, sorted
func (p *Profile) Skills() []string {
	out := make([]string, 0, len(p.SkillPremium))
	for k := range p.SkillPremium {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of the profile
func (p *Profile) Clone() *Profile {
	cp := *p

	cp.Baselines = make(map[models.RoleKey]map[models.LevelKey]models.Range, len(p.Baselines))
	for role, levels := range p.Baselines {
		m := make(map[models.LevelKey]models.Range, len(levels))
		for l, r := range levels {
			m[l] = r
		}
		cp.Baselines[role] = m
	}

	cp.RoleOrder = append([]models.RoleKey(nil), p.RoleOrder...)
	cp.ONETCodes = copyMap(p.ONETCodes)
	cp.CAGR = copyMap(p.CAGR)
	cp.SkillPremium = copyMap(p.SkillPremium)
	cp.SkillAliases = copyMap(p.SkillAliases)
	cp.Geo = copyMap(p.Geo)
	cp.Demand = copyMap(p.Demand)
	cp.RoleAliases = append([]Alias(nil), p.RoleAliases...)
	cp.LevelAliases = append([]Alias(nil), p.LevelAliases...)
	cp.LevelAnchors = copyMap(p.LevelAnchors)
	cp.HighLeverageRoles = append([]models.RoleKey(nil), p.HighLeverageRoles...)

	return &cp
}

// WithBaselines returns a copy of the profile whose baseline table is
// overridden level by level with the given ranges
func (p *Profile) WithBaselines(baselines map[models.RoleKey]map[models.LevelKey]models.Range) *Profile {
	cp := p.Clone()
	for role, levels := range baselines {
		m, ok := cp.Baselines[role]
		if !ok {
			m = make(map[models.LevelKey]models.Range, len(levels))
			cp.Baselines[role] = m
		}
		for l, r := range levels {
			m[l] = r
		}
	}
	return cp
}

// Validate checks the invariants the pipeline relies on
func (p *Profile) Validate() error {
	if p.DefaultRole == "" {
		return invalidf("default role is empty")
	}
	def, ok := p.Baselines[p.DefaultRole]
	if !ok {
		return invalidf("default role %q has no baselines", p.DefaultRole)
	}
	for _, l := range models.Levels {
		if _, ok := def[l]; !ok {
			return invalidf("default role %q is missing level %q", p.DefaultRole, l)
		}
	}

	for role, levels := range p.Baselines {
		if string(role) != strings.ToLower(strings.TrimSpace(string(role))) {
			return invalidf("role key %q must be trimmed lower-case text", role)
		}
		if _, ok := levels[models.LevelMid]; !ok {
			return invalidf("role %q is missing level %q", role, models.LevelMid)
		}
		for l, r := range levels {
			if !l.Valid() {
				return invalidf("role %q has unknown level %q", role, l)
			}
			if !finite(r.Low, r.High) || !(r.Low > 0) || r.High < r.Low {
				return invalidf("role %q level %q has invalid range [%v, %v]", role, l, r.Low, r.High)
			}
		}
	}

	scalars := []struct {
		name  string
		value float64
	}{
		{"default cagr", p.DefaultCAGR},
		{"growth years", p.GrowthYears},
		{"inflation", p.Inflation},
		{"skills cap", p.SkillsCap},
		{"skills damping", p.SkillsDamping},
		{"skills weight", p.Weights.Skills},
		{"geo weight", p.Weights.Geo},
		{"regression weight", p.Weights.Regression},
		{"leverage", p.Leverage},
		{"high leverage", p.HighLeverage},
		{"clip low", p.ClipLow},
		{"clip high", p.ClipHigh},
	}
	for _, sc := range scalars {
		if !finite(sc.value) {
			return invalidf("%s must be a finite number, got %v", sc.name, sc.value)
		}
	}
	if err := finiteTable("cagr", p.CAGR); err != nil {
		return err
	}
	if err := finiteTable("skill premium", p.SkillPremium); err != nil {
		return err
	}
	if err := finiteTable("geo", p.Geo); err != nil {
		return err
	}
	if err := finiteTable("demand", p.Demand); err != nil {
		return err
	}
	if err := finiteTable("level anchor", p.LevelAnchors); err != nil {
		return err
	}

	if p.Inflation <= 0 {
		return invalidf("inflation factor must be positive, got %v", p.Inflation)
	}
	if p.GrowthYears < 0 {
		return invalidf("growth horizon must not be negative, got %v", p.GrowthYears)
	}
	if p.DefaultCAGR <= -1 {
		return invalidf("default cagr must be greater than -1, got %v", p.DefaultCAGR)
	}
	for role, c := range p.CAGR {
		if c <= -1 {
			return invalidf("cagr for %q must be greater than -1, got %v", role, c)
		}
	}

	for skill, w := range p.SkillPremium {
		if w < 0 || w >= 1 {
			return invalidf("skill %q premium %v outside [0, 1)", skill, w)
		}
	}
	if p.SkillsCap < 0 {
		return invalidf("skills cap must not be negative, got %v", p.SkillsCap)
	}
	if p.SkillsDamping < 0 || p.SkillsDamping >= 1 {
		return invalidf("skills damping %v outside [0, 1)", p.SkillsDamping)
	}

	if _, ok := p.Geo[models.GeoDefault]; !ok {
		return invalidf("geo table has no %s entry", models.GeoDefault)
	}
	for k, g := range p.Geo {
		if g <= 0 {
			return invalidf("geo multiplier for %q must be positive, got %v", k, g)
		}
	}
	for k, d := range p.Demand {
		if d <= 0 {
			return invalidf("demand multiplier for %q must be positive, got %v", k, d)
		}
	}

	for _, w := range []float64{p.Weights.Skills, p.Weights.Geo, p.Weights.Regression} {
		if w < 0 || w > 1 {
			return invalidf("blend weight %v outside [0, 1]", w)
		}
	}
	if p.ClipLow > 0 || p.ClipHigh < 0 {
		return invalidf("regression clip band [%v, %v] must contain 0", p.ClipLow, p.ClipHigh)
	}
	if p.ClipLow <= -1 {
		return invalidf("regression clip floor must be greater than -1, got %v", p.ClipLow)
	}
	for _, l := range models.Levels {
		if _, ok := p.LevelAnchors[l]; !ok {
			return invalidf("level %q has no experience anchor", l)
		}
	}

	for _, a := range p.RoleAliases {
		if err := checkPhrase(a); err != nil {
			return err
		}
		if _, ok := p.Baselines[models.RoleKey(a.Key)]; !ok {
			return invalidf("role alias %q points at unknown role %q", a.Phrase, a.Key)
		}
	}
	for _, a := range p.LevelAliases {
		if err := checkPhrase(a); err != nil {
			return err
		}
		if !models.LevelKey(a.Key).Valid() {
			return invalidf("level alias %q points at unknown level %q", a.Phrase, a.Key)
		}
	}

	// canonical keys must survive normalization unchanged
	for role := range p.Baselines {
		if got := p.NormalizeRole(string(role)); got != role {
			return invalidf("canonical role %q is captured by an alias for %q", role, got)
		}
	}

	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finiteTable[K comparable](name string, table map[K]float64) error {
	for k, v := range table {
		if !finite(v) {
			return invalidf("%s for %v must be a finite number, got %v", name, k, v)
		}
	}
	return nil
}

// checkPhrase rejects phrases the normalizer could never match, or would match everywhere
func checkPhrase(a Alias) error {
	if a.Phrase == "" {
		return invalidf("alias for %q has an empty phrase", a.Key)
	}
	if a.Phrase != strings.ToLower(strings.TrimSpace(a.Phrase)) {
		return invalidf("alias phrase %q must be trimmed lower-case text", a.Phrase)
	}
	return nil
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProfile, fmt.Sprintf(format, args...))
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func containsRole(roles []models.RoleKey, r models.RoleKey) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}
