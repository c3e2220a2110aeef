package forecast

import (
	"regexp"
	"strings"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	skillSepRe   = regexp.MustCompile(`[\s\-/]+`)
)

// matchKind records how a free-text input was resolved
type matchKind int

const (
	matchExact matchKind = iota
	matchSubstring
	matchCanonical
	matchDefault
)

// NormalizeRole maps free text to a canonical role key. It never fails:
// unmatched input resolves to the profile's default role.
func (p *Profile) NormalizeRole(text string) models.RoleKey {
	key, _ := p.resolveRole(text)
	return key
}

func (p *Profile) resolveRole(text string) (models.RoleKey, matchKind) {
	r := strings.ToLower(strings.TrimSpace(text))

	if key, ok := lookupAlias(p.RoleAliases, r); ok {
		return models.RoleKey(key), matchExact
	}
	if key, ok := scanAlias(p.RoleAliases, r); ok {
		return models.RoleKey(key), matchSubstring
	}

	keyish := models.RoleKey(whitespaceRe.ReplaceAllString(r, "_"))
	if _, ok := p.Baselines[keyish]; ok {
		return keyish, matchCanonical
	}

	return p.DefaultRole, matchDefault
}

// MatchingRoleAliases returns every alias that matches the input, either
// exactly or as a substring, in table order. More than one distinct key
// means the substring scan resolved the role by table priority alone.
func (p *Profile) MatchingRoleAliases(text string) []Alias {
	r := strings.ToLower(strings.TrimSpace(text))
	var out []Alias
	for _, a := range p.RoleAliases {
		if r == a.Phrase || strings.Contains(r, a.Phrase) {
			out = append(out, a)
		}
	}
	return out
}

// NormalizeLevel maps free text to one of the canonical levels, defaulting to mid
func (p *Profile) NormalizeLevel(text string) models.LevelKey {
	key, _ := p.resolveLevel(text)
	return key
}

func (p *Profile) resolveLevel(text string) (models.LevelKey, matchKind) {
	l := strings.ToLower(strings.TrimSpace(text))

	if key, ok := lookupAlias(p.LevelAliases, l); ok {
		return models.LevelKey(key), matchExact
	}
	if key, ok := scanAlias(p.LevelAliases, l); ok {
		return models.LevelKey(key), matchSubstring
	}
	return models.LevelMid, matchDefault
}

// NormalizeGeo maps a location to a geo key, defaulting to DEFAULT
func (p *Profile) NormalizeGeo(text string) models.GeoKey {
	key := models.GeoKey(strings.ToUpper(strings.TrimSpace(text)))
	if _, ok := p.Geo[key]; ok {
		return key
	}
	return models.GeoDefault
}

// NormalizeSkill maps a skill or certification token to its premium table key.
// The result is not guaranteed to exist in the premium table.
func (p *Profile) NormalizeSkill(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if alias, ok := p.SkillAliases[s]; ok {
		return alias
	}
	s = strings.Trim(skillSepRe.ReplaceAllString(s, "_"), "_")
	if alias, ok := p.SkillAliases[s]; ok {
		return alias
	}
	return s
}

// normalizeSkills normalizes and de-duplicates a skill list, keeping first-seen order
func (p *Profile) normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		key := p.NormalizeSkill(s)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func lookupAlias(aliases []Alias, text string) (string, bool) {
	for _, a := range aliases {
		if a.Phrase == text {
			return a.Key, true
		}
	}
	return "", false
}

func scanAlias(aliases []Alias, text string) (string, bool) {
	for _, a := range aliases {
		if strings.Contains(text, a.Phrase) {
			return a.Key, true
		}
	}
	return "", false
}
