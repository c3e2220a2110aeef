package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

// SaveOptions selects what Save writes
type SaveOptions struct {
	Dir    string
	Format string // csv or json
	Chart  string // png, svg or none
}

// Save writes the manifest and, unless disabled, one bar and one range chart
// per level into opts.Dir. It returns the written paths.
func Save(m Manifest, opts SaveOptions) ([]string, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	stem := fmt.Sprintf("%s_%d", m.Profile, m.TargetYear)
	var written []string

	format := strings.ToLower(opts.Format)
	dataPath := filepath.Join(opts.Dir, stem+"."+format)
	err := writeFile(dataPath, func(f *os.File) error {
		switch format {
		case "csv":
			return WriteCSV(f, m.Entries)
		case "json":
			return WriteJSON(f, m)
		}
		return fmt.Errorf("unsupported report format %q (want csv or json)", opts.Format)
	})
	if err != nil {
		return nil, err
	}
	written = append(written, dataPath)

	chartFormat := strings.ToLower(opts.Chart)
	if chartFormat == "" || chartFormat == "none" {
		return written, nil
	}
	if _, err := ParseChartFormat(chartFormat); err != nil {
		return written, err
	}

	for _, level := range models.Levels {
		if len(atLevel(m.Entries, level)) == 0 {
			continue
		}

		midPath := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s_mid.%s", stem, level, chartFormat))
		title := fmt.Sprintf("%d %s forecast, %s level (mid)", m.TargetYear, m.Profile, level)
		if err := writeFile(midPath, func(f *os.File) error {
			return BarChart(f, m.Entries, level, title, chartFormat)
		}); err != nil {
			return written, err
		}
		written = append(written, midPath)

		rangePath := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s_range.%s", stem, level, chartFormat))
		title = fmt.Sprintf("%d %s forecast, %s level (low to high)", m.TargetYear, m.Profile, level)
		if err := writeFile(rangePath, func(f *os.File) error {
			return RangeChart(f, m.Entries, level, title, chartFormat)
		}); err != nil {
			return written, err
		}
		written = append(written, rangePath)
	}

	return written, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
