package config_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/config"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SALARYFORECAST_CONFIG", "SALARYFORECAST_PROFILE", "HTTP_PROXY_URL", "WEB_USERNAME", "WEB_PASSWORD", "PORT"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "salaryforecast.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	def := config.Default()
	if cfg.Profile != def.Profile || cfg.Server.Port != def.Server.Port || cfg.Report.Workers != def.Report.Workers {
		t.Fatalf("Load without a file = %+v, want defaults", cfg)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
profile: software_engineering
strict: true
report:
  format: json
  workers: 8
server:
  port: "9000"
  username: admin
fetch:
  proxy_url: http://proxy.local:3128
  insecure_skip_verify: true
`)
	t.Setenv("PORT", "9999")
	t.Setenv("WEB_PASSWORD", "s3cret")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != forecast.ProfileSoftwareEngineering || !cfg.Strict {
		t.Errorf("profile/strict = %q/%v", cfg.Profile, cfg.Strict)
	}
	if cfg.Report.Format != "json" || cfg.Report.Workers != 8 || cfg.Report.Chart != "png" {
		t.Errorf("report = %+v", cfg.Report)
	}
	if cfg.Server.Port != "9999" || cfg.Server.Username != "admin" || cfg.Server.Password != "s3cret" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Fetch.ProxyURL != "http://proxy.local:3128" || cfg.Fetch.TimeoutSeconds != 30 || !cfg.Fetch.InsecureSkipVerify {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "profile: data_analytics\n")
	t.Setenv("SALARYFORECAST_CONFIG", path)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Profile != forecast.ProfileDataAnalytics {
		t.Fatalf("profile = %q", cfg.Profile)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "report: [not, a, map")
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestBuildProfileOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
profile: cybersecurity
overrides:
  inflation: 1.05
  baselines:
    soc_analyst:
      entry: {low: 75000, high: 99000}
  geo:
    pr: 0.85
  skill_premium:
    Detection Engineering: 0.04
  role_aliases:
    - phrase: Security Operations Analyst
      key: soc_analyst
  weights: {skills: 0.3, geo: 0.2, regression: 0.1}
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := cfg.BuildProfile()
	if err != nil {
		t.Fatal(err)
	}

	if p.Inflation != 1.05 {
		t.Errorf("inflation = %v", p.Inflation)
	}
	if got := p.Baseline("soc_analyst", models.LevelEntry); got != (models.Range{Low: 75000, High: 99000}) {
		t.Errorf("soc entry = %+v", got)
	}
	if got := p.Baseline("soc_analyst", models.LevelMid); got != forecast.Cybersecurity().Baseline("soc_analyst", models.LevelMid) {
		t.Errorf("untouched level changed: %+v", got)
	}
	if p.Geo["PR"] != 0.85 {
		t.Errorf("geo PR = %v", p.Geo["PR"])
	}
	if p.SkillPremium["detection_engineering"] != 0.04 {
		t.Errorf("premium table = %v", p.SkillPremium)
	}
	if got := p.NormalizeRole("Security Operations Analyst II"); got != "soc_analyst" {
		t.Errorf("override alias resolved to %q", got)
	}
	if p.Weights.Skills != 0.3 || p.Weights.Regression != 0.1 {
		t.Errorf("weights = %+v", p.Weights)
	}

	if forecast.Cybersecurity().Inflation == 1.05 {
		t.Fatal("built-in profile was mutated")
	}
}

func TestBuildProfileValidates(t *testing.T) {
	cases := map[string]config.Config{
		"unknown profile": {Profile: "astronaut"},
		"bad inflation": {Profile: forecast.ProfileCybersecurity, Overrides: config.ProfileOverrides{
			Inflation: ptr(0.0),
		}},
		"alias to unknown role": {Profile: forecast.ProfileCybersecurity, Overrides: config.ProfileOverrides{
			RoleAliases: []forecast.Alias{{Phrase: "astronaut", Key: "astronaut"}},
		}},
		"nan inflation": {Profile: forecast.ProfileCybersecurity, Overrides: config.ProfileOverrides{
			Inflation: ptr(math.NaN()),
		}},
		"nan weight": {Profile: forecast.ProfileCybersecurity, Overrides: config.ProfileOverrides{
			Weights: config.WeightOverrides{Skills: ptr(math.NaN())},
		}},
		"infinite geo": {Profile: forecast.ProfileCybersecurity, Overrides: config.ProfileOverrides{
			Geo: map[models.GeoKey]float64{"TX": math.Inf(1)},
		}},
		"upper-case role key": {Profile: forecast.ProfileCybersecurity, Overrides: config.ProfileOverrides{
			Baselines: map[models.RoleKey]map[models.LevelKey]models.Range{
				"Red_Team": {models.LevelMid: {Low: 100000, High: 150000}},
			},
		}},
	}
	for name, cfg := range cases {
		if _, err := cfg.BuildProfile(); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}

	cfg := config.Config{Profile: forecast.ProfileCybersecurity, Overrides: config.ProfileOverrides{Inflation: ptr(0.0)}}
	if _, err := cfg.BuildProfile(); !errors.Is(err, forecast.ErrInvalidProfile) {
		t.Errorf("err = %v, want ErrInvalidProfile", err)
	}
}

func TestWeightOverrideKeepsUnsetWeights(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
overrides:
  weights: {skills: 0.3}
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	p, err := cfg.BuildProfile()
	if err != nil {
		t.Fatal(err)
	}

	def := forecast.Cybersecurity().Weights
	want := forecast.Weights{Skills: 0.3, Geo: def.Geo, Regression: def.Regression}
	if p.Weights != want {
		t.Fatalf("weights = %+v, want %+v", p.Weights, want)
	}
}

func TestLoadRejectsNaNOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
overrides:
  inflation: .nan
  weights: {skills: .nan}
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cfg.BuildProfile(); !errors.Is(err, forecast.ErrInvalidProfile) {
		t.Fatalf("BuildProfile with NaN overrides: err = %v, want ErrInvalidProfile", err)
	}
}

func ptr[T any](v T) *T {
	return &v
}
