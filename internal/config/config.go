package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

// Config is the application configuration
type Config struct {
	Profile   string           `yaml:"profile"`
	Strict    bool             `yaml:"strict"`
	Overrides ProfileOverrides `yaml:"overrides"`
	Report    ReportConfig     `yaml:"report"`
	Server    ServerConfig     `yaml:"server"`
	Fetch     FetchConfig      `yaml:"fetch"`
}

type ReportConfig struct {
	OutDir  string `yaml:"out_dir"`
	Format  string `yaml:"format"` // csv or json
	Chart   string `yaml:"chart"`  // png, svg or none
	Workers int    `yaml:"workers"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	Username       string   `yaml:"username"` // Prefer WEB_USERNAME env var
	Password       string   `yaml:"password"` // Prefer WEB_PASSWORD env var
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type FetchConfig struct {
	ProxyURL           string `yaml:"proxy_url"` // Prefer HTTP_PROXY_URL env var
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	ONET               bool   `yaml:"onet"`
}

// ProfileOverrides replaces parts of a built-in profile. Maps are merged key
// by key, aliases are placed ahead of the built-in ones, nil scalars keep the
// profile's value.
type ProfileOverrides struct {
	DefaultRole models.RoleKey `yaml:"default_role"`
	BaseYear    *int           `yaml:"base_year"`
	TargetYear  *int           `yaml:"target_year"`

	Baselines map[models.RoleKey]map[models.LevelKey]models.Range `yaml:"baselines"`
	ONETCodes map[models.RoleKey]string                           `yaml:"onet_codes"`

	CAGR        map[models.RoleKey]float64 `yaml:"cagr"`
	DefaultCAGR *float64                   `yaml:"default_cagr"`
	GrowthYears *float64                   `yaml:"growth_years"`
	Inflation   *float64                   `yaml:"inflation"`

	SkillPremium  map[string]float64 `yaml:"skill_premium"`
	SkillAliases  map[string]string  `yaml:"skill_aliases"`
	SkillsCap     *float64           `yaml:"skills_cap"`
	SkillsDamping *float64           `yaml:"skills_damping"`

	Geo    map[models.GeoKey]float64  `yaml:"geo"`
	Demand map[models.RoleKey]float64 `yaml:"demand"`

	RoleAliases  []forecast.Alias `yaml:"role_aliases"`
	LevelAliases []forecast.Alias `yaml:"level_aliases"`

	Weights WeightOverrides `yaml:"weights"`

	LevelAnchors      map[models.LevelKey]float64 `yaml:"level_anchors"`
	Leverage          *float64                    `yaml:"leverage"`
	HighLeverage      *float64                    `yaml:"high_leverage"`
	HighLeverageRoles []models.RoleKey            `yaml:"high_leverage_roles"`
	ClipLow           *float64                    `yaml:"clip_low"`
	ClipHigh          *float64                    `yaml:"clip_high"`
}

// WeightOverrides replaces single blend weights; unset ones keep the profile's value
type WeightOverrides struct {
	Skills     *float64 `yaml:"skills"`
	Geo        *float64 `yaml:"geo"`
	Regression *float64 `yaml:"regression"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Profile: forecast.ProfileCybersecurity,
		Report: ReportConfig{
			OutDir:  "reports",
			Format:  "csv",
			Chart:   "png",
			Workers: 4,
		},
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
		},
	}
}

// Load reads .env, then the YAML config, then environment overrides.
// An empty path falls back to SALARYFORECAST_CONFIG and then to the search
// path; a missing file found that way yields the defaults. A path given
// explicitly must exist.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv("SALARYFORECAST_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = findConfigPath()
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func findConfigPath() string {
	paths := []string{
		"salaryforecast.yaml",
		"config.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "salaryforecast", "config.yaml"))
	}
	paths = append(paths, "/etc/salaryforecast/config.yaml")

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return "salaryforecast.yaml"
}

func (c *Config) applyEnv() {
	c.Profile = getEnv("SALARYFORECAST_PROFILE", c.Profile)
	c.Fetch.ProxyURL = getEnv("HTTP_PROXY_URL", c.Fetch.ProxyURL)
	c.Server.Username = getEnv("WEB_USERNAME", c.Server.Username)
	c.Server.Password = getEnv("WEB_PASSWORD", c.Server.Password)
	c.Server.Port = getEnv("PORT", c.Server.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// BuildProfile resolves the named profile and applies the overrides.
// The result has been validated.
func (c *Config) BuildProfile() (*forecast.Profile, error) {
	base, err := forecast.ProfileByName(c.Profile)
	if err != nil {
		return nil, err
	}
	p := c.Overrides.Apply(base)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply returns a copy of p with the overrides applied
func (o ProfileOverrides) Apply(p *forecast.Profile) *forecast.Profile {
	cp := p.WithBaselines(o.Baselines)

	if o.DefaultRole != "" {
		cp.DefaultRole = o.DefaultRole
	}
	setInt(&cp.BaseYear, o.BaseYear)
	setInt(&cp.TargetYear, o.TargetYear)

	cp.ONETCodes = mergeMap(cp.ONETCodes, o.ONETCodes)
	cp.CAGR = mergeMap(cp.CAGR, o.CAGR)
	setFloat(&cp.DefaultCAGR, o.DefaultCAGR)
	setFloat(&cp.GrowthYears, o.GrowthYears)
	setFloat(&cp.Inflation, o.Inflation)

	aliases := make(map[string]string, len(o.SkillAliases))
	for phrase, key := range o.SkillAliases {
		aliases[strings.ToLower(strings.TrimSpace(phrase))] = key
	}
	cp.SkillAliases = mergeMap(cp.SkillAliases, aliases)
	premiums := make(map[string]float64, len(o.SkillPremium))
	for skill, premium := range o.SkillPremium {
		premiums[cp.NormalizeSkill(skill)] = premium
	}
	cp.SkillPremium = mergeMap(cp.SkillPremium, premiums)
	setFloat(&cp.SkillsCap, o.SkillsCap)
	setFloat(&cp.SkillsDamping, o.SkillsDamping)

	geo := make(map[models.GeoKey]float64, len(o.Geo))
	for key, mult := range o.Geo {
		geo[models.GeoKey(strings.ToUpper(strings.TrimSpace(string(key))))] = mult
	}
	cp.Geo = mergeMap(cp.Geo, geo)
	cp.Demand = mergeMap(cp.Demand, o.Demand)

	cp.RoleAliases = append(lowerPhrases(o.RoleAliases), cp.RoleAliases...)
	cp.LevelAliases = append(lowerPhrases(o.LevelAliases), cp.LevelAliases...)

	setFloat(&cp.Weights.Skills, o.Weights.Skills)
	setFloat(&cp.Weights.Geo, o.Weights.Geo)
	setFloat(&cp.Weights.Regression, o.Weights.Regression)

	cp.LevelAnchors = mergeMap(cp.LevelAnchors, o.LevelAnchors)
	setFloat(&cp.Leverage, o.Leverage)
	setFloat(&cp.HighLeverage, o.HighLeverage)
	if o.HighLeverageRoles != nil {
		cp.HighLeverageRoles = append([]models.RoleKey(nil), o.HighLeverageRoles...)
	}
	setFloat(&cp.ClipLow, o.ClipLow)
	setFloat(&cp.ClipHigh, o.ClipHigh)

	return cp
}

func lowerPhrases(aliases []forecast.Alias) []forecast.Alias {
	out := make([]forecast.Alias, 0, len(aliases))
	for _, a := range aliases {
		out = append(out, forecast.Alias{Phrase: strings.ToLower(strings.TrimSpace(a.Phrase)), Key: a.Key})
	}
	return out
}

func mergeMap[K comparable, V any](dst, src map[K]V) map[K]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[K]V, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func setFloat(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst, src *int) {
	if src != nil {
		*dst = *src
	}
}
