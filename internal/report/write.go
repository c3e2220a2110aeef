package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
)

// Manifest wraps a batch with the metadata needed to reproduce it
type Manifest struct {
	RunID       string    `json:"run_id"`
	Profile     string    `json:"profile"`
	BaseYear    int       `json:"base_year"`
	TargetYear  int       `json:"target_year"`
	GeneratedAt time.Time `json:"generated_at"`
	Count       int       `json:"count"`
	Entries     []Entry   `json:"entries"`
}

// NewManifest stamps a batch with a fresh run id
func NewManifest(p *forecast.Profile, entries []Entry, now time.Time) Manifest {
	return Manifest{
		RunID:       uuid.NewString(),
		Profile:     p.Name,
		BaseYear:    p.BaseYear,
		TargetYear:  p.TargetYear,
		GeneratedAt: now.UTC(),
		Count:       len(entries),
		Entries:     entries,
	}
}

var csvHeader = []string{
	"role", "level", "location", "years_experience", "skills",
	"low", "mid", "high",
	"skills_multiplier", "geo_multiplier", "demand_multiplier", "regression_multiplier",
	"error",
}

// WriteCSV writes one row per entry
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range entries {
		r := e.Result
		row := []string{
			string(r.Role),
			string(r.Level),
			string(r.Location),
			strconv.FormatFloat(e.Query.YearsExperience, 'f', -1, 64),
			strings.Join(r.Skills, ";"),
			money(r.FinalLow),
			money(r.FinalMid),
			money(r.FinalHigh),
			multiplier(r.SkillsMultiplier),
			multiplier(r.GeoMultiplier),
			multiplier(r.DemandMultiplier),
			multiplier(r.RegressionMultiplier),
			e.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", e.Index, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the manifest as indented JSON
func WriteJSON(w io.Writer, m Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func multiplier(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
