// Package report runs batches of forecasts and writes them out as CSV,
// JSON, terminal tables and charts.
package report

import (
	"context"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/errgroup"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/extract"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/forecast"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
)

const defaultWorkers = 4

// Entry is one forecast of a batch
type Entry struct {
	Index  int                     `json:"index"`
	Query  models.Query            `json:"query"`
	Result models.PredictionResult `json:"result"`
	Error  string                  `json:"error,omitempty"`
}

// RunOptions controls a batch run
type RunOptions struct {
	Workers int
	// Strict records validation failures in Entry.Error
	Strict bool
	Bar    *pb.ProgressBar
}

// Rows builds the default grid of the profile: every role at every level,
// at the level's anchor experience, in the DEFAULT location, without skills.
func Rows(p *forecast.Profile) []models.Query {
	var queries []models.Query
	for _, role := range p.Roles() {
		for _, level := range models.Levels {
			queries = append(queries, models.Query{
				Role:            string(role),
				Level:           string(level),
				YearsExperience: p.LevelAnchors[level],
				Location:        string(models.GeoDefault),
			})
		}
	}
	return queries
}

// Run forecasts every query concurrently. Entries come back in input order.
// Query descriptions are folded in before prediction. The only error is a
// cancelled context.
func Run(ctx context.Context, e *forecast.Engine, queries []models.Query, opts RunOptions) ([]Entry, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	profile := e.Profile()

	entries := make([]Entry, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			entry := Entry{Index: i, Query: q}
			enriched := extract.Enrich(profile, q)
			if opts.Strict {
				res, err := e.PredictStrict(enriched)
				entry.Result = res
				if err != nil {
					entry.Error = err.Error()
				}
			} else {
				entry.Result = e.Predict(enriched)
			}
			entries[i] = entry

			if opts.Bar != nil {
				opts.Bar.Increment()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
