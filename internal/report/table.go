package report

import (
	"strings"

	"github.com/pterm/pterm"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/utils"
)

// TableData lays the entries out as a pterm table with a header row
func TableData(entries []Entry) pterm.TableData {
	data := pterm.TableData{
		{"Role", "Level", "Location", "Low", "Mid", "High", "Skills", "Geo", "Demand", "Regression"},
	}
	for _, e := range entries {
		r := e.Result
		data = append(data, []string{
			utils.TruncateString(string(r.Role), 32),
			string(r.Level),
			string(r.Location),
			utils.FormatUSD(r.FinalLow),
			utils.FormatUSD(r.FinalMid),
			utils.FormatUSD(r.FinalHigh),
			utils.FormatMultiplier(r.SkillsMultiplier),
			utils.FormatMultiplier(r.GeoMultiplier),
			utils.FormatMultiplier(r.DemandMultiplier),
			utils.FormatMultiplier(r.RegressionMultiplier),
		})
	}
	return data
}

// RenderTable prints the entries as a boxed table
func RenderTable(entries []Entry) error {
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(TableData(entries)).Render()
}

// Failures lists the validation errors of a strict run, one line per failed entry
func Failures(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		if e.Error != "" {
			out = append(out, strings.ReplaceAll(e.Error, "\n", "; "))
		}
	}
	return out
}
