// Package extract mines free-text job postings for the role, level and
// skills a forecast query needs.
package extract

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

var separatorRe = regexp.MustCompile(`[\s\-/_]+`)

// certSpellings are spelled-out certifications that do not appear as table tokens
var certSpellings = map[string]string{
	"security plus":            "security_plus",
	"comptia security plus":    "security_plus",
	"certified ethical hacker": "ceh",
}

// Extraction is what a posting revealed. Role and Level are empty when nothing matched.
type Extraction struct {
	Role   models.RoleKey  `json:"role,omitempty"`
	Level  models.LevelKey `json:"level,omitempty"`
	Skills []string        `json:"skills"`
}

// FromText extracts role, level and skills from posting text.
// The longest matching role phrase wins so that "cloud security engineer"
// beats the more generic "security engineer". Level is the first level
// alias in table order that appears as a whole word.
func FromText(p *forecast.Profile, text string) Extraction {
	t := flatten(text)
	var ext Extraction

	best := -1
	for _, a := range p.RoleAliases {
		phrase := flatten(a.Phrase)
		if phrase != "" && strings.Contains(t, phrase) && len(phrase) > best {
			ext.Role = models.RoleKey(a.Key)
			best = len(phrase)
		}
	}

	for _, a := range p.LevelAliases {
		if containsWord(t, flatten(a.Phrase)) {
			ext.Level = models.LevelKey(a.Key)
			break
		}
	}

	found := make(map[string]struct{})
	for _, sk := range p.Skills() {
		if containsWord(t, flatten(sk)) {
			found[sk] = struct{}{}
		}
	}
	for phrase, key := range p.SkillAliases {
		if containsWord(t, flatten(phrase)) {
			found[key] = struct{}{}
		}
	}
	for phrase, key := range certSpellings {
		if _, known := p.SkillPremium[key]; known && containsWord(t, phrase) {
			found[key] = struct{}{}
		}
	}

	ext.Skills = make([]string, 0, len(found))
	for sk := range found {
		ext.Skills = append(ext.Skills, sk)
	}
	sort.Strings(ext.Skills)
	return ext
}

// FromHTML extracts from the visible text of an HTML posting
func FromHTML(p *forecast.Profile, r io.Reader) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to parse posting HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	doc.Find("title, body").Each(func(i int, s *goquery.Selection) {
		collectText(s, &parts)
	})
	return FromText(p, strings.Join(parts, " ")), nil
}

// collectText gathers text nodes one by one so adjacent elements do not run together
func collectText(s *goquery.Selection, parts *[]string) {
	s.Contents().Each(func(i int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			*parts = append(*parts, c.Text())
			return
		}
		collectText(c, parts)
	})
}

// Enrich folds the query's Description into the query: an extracted role or
// level replaces the given one and extracted skills are merged in.
func Enrich(p *forecast.Profile, q models.Query) models.Query {
	if strings.TrimSpace(q.Description) == "" {
		return q
	}
	return Apply(p, q, FromText(p, q.Description))
}

// Apply merges an extraction into a query
func Apply(p *forecast.Profile, q models.Query, ext Extraction) models.Query {
	if ext.Role != "" {
		q.Role = string(ext.Role)
	}
	if ext.Level != "" {
		q.Level = string(ext.Level)
	}

	seen := make(map[string]struct{}, len(q.Skills)+len(ext.Skills))
	var skills []string
	for _, s := range append(append([]string(nil), q.Skills...), ext.Skills...) {
		key := p.NormalizeSkill(s)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			skills = append(skills, key)
		}
	}
	sort.Strings(skills)
	q.Skills = skills
	return q
}

// flatten lower-cases text and folds dashes, slashes, underscores and runs of whitespace into single spaces
func flatten(s string) string {
	return strings.TrimSpace(separatorRe.ReplaceAllString(strings.ToLower(s), " "))
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '+' || b == '#'
}

// containsWord reports whether phrase occurs in t without touching other word characters
func containsWord(t, phrase string) bool {
	if phrase == "" {
		return false
	}
	for from := 0; ; {
		i := strings.Index(t[from:], phrase)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(phrase)
		if (start == 0 || !isWordByte(t[start-1])) && (end == len(t) || !isWordByte(t[end])) {
			return true
		}
		from = start + 1
	}
}
