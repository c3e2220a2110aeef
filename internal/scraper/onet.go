package scraper

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/cheggaaa/pb/v3"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/client"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/models"
	"github.com/fr4nk3nst1ner/salaryforecast/internal/utils"
)

const maxConcurrent = 4

// onetBaseURL is a variable so tests can point the fetchers at a local server
var onetBaseURL = "https://www.onetonline.org"

// ErrWageRowNotFound is returned when a wage page or export has no national row
var ErrWageRowNotFound = errors.New("no United States wage row found")

var (
	wageRowRe = regexp.MustCompile(`United States\s*\$([\d,]+)\+?\s*\$([\d,]+)\+?\s*\$([\d,]+)\+?\s*\$([\d,]+)\+?\s*\$([\d,]+)\+?`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Wages holds the national annual wage percentiles of one O*NET occupation
type Wages struct {
	Code      string  `json:"code"`
	SourceURL string  `json:"source_url"`
	P10       float64 `json:"p10"`
	P25       float64 `json:"p25"`
	P50       float64 `json:"p50"`
	P75       float64 `json:"p75"`
	P90       float64 `json:"p90"`
}

// Baselines maps the percentiles onto a level table
func (w Wages) Baselines() map[models.LevelKey]models.Range {
	return map[models.LevelKey]models.Range{
		models.LevelEntry:  {Low: w.P10, High: w.P25},
		models.LevelMid:    {Low: w.P25, High: w.P75},
		models.LevelSenior: {Low: w.P75, High: w.P90},
	}
}

func (w Wages) validate() error {
	values := []float64{w.P10, w.P25, w.P50, w.P75, w.P90}
	for i, v := range values {
		if v <= 0 {
			return fmt.Errorf("invalid wage values for %s: %+v", w.Code, w)
		}
		if i > 0 && v < values[i-1] {
			return fmt.Errorf("wage percentiles for %s are not ascending: %+v", w.Code, w)
		}
	}
	return nil
}

// FetchError records a failed fetch for one occupation code
type FetchError struct {
	Code string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("onet %s: %v", e.Code, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func wagesPageURL(code string) string {
	return fmt.Sprintf("%s/link/localwages/%s", onetBaseURL, code)
}

func wagesCSVURL(code string) string {
	return fmt.Sprintf("%s/link/localwagestable/%s/LocalWages_%s_US.csv?fmt=csv", onetBaseURL, code, code)
}

// FetchWages scrapes the national percentiles from the O*NET local wages page
func FetchWages(ctx context.Context, httpClient *http.Client, code string, debug bool) (Wages, error) {
	target := wagesPageURL(code)
	if debug {
		fmt.Printf("Fetching O*NET wages page: %s\n", target)
	}

	body, err := client.Get(ctx, httpClient, target, "")
	if err != nil {
		return Wages{}, err
	}

	w, err := parseWagesHTML(code, bytes.NewReader(body))
	if err != nil {
		return Wages{}, err
	}
	w.SourceURL = target
	return w, nil
}

// FetchWagesCSV reads the national percentiles from the O*NET CSV export
func FetchWagesCSV(ctx context.Context, httpClient *http.Client, code string, debug bool) (Wages, error) {
	target := wagesCSVURL(code)
	if debug {
		fmt.Printf("Fetching O*NET wages export: %s\n", target)
	}

	body, err := client.Get(ctx, httpClient, target, "text/csv,*/*")
	if err != nil {
		return Wages{}, err
	}

	w, err := parseWagesCSV(code, bytes.NewReader(body))
	if err != nil {
		return Wages{}, err
	}
	w.SourceURL = target
	return w, nil
}

func parseWagesHTML(code string, r io.Reader) (Wages, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Wages{}, fmt.Errorf("failed to parse wages page for %s: %w", code, err)
	}

	text := spaceRe.ReplaceAllString(doc.Find("body").Text(), " ")
	m := wageRowRe.FindStringSubmatch(text)
	if m == nil {
		return Wages{}, fmt.Errorf("%s: %w", code, ErrWageRowNotFound)
	}

	var values [5]float64
	for i := range values {
		v, err := utils.ParseMoney(m[i+1])
		if err != nil {
			return Wages{}, fmt.Errorf("unexpected wage row for %s: %w", code, err)
		}
		values[i] = v
	}

	w := Wages{Code: code, P10: values[0], P25: values[1], P50: values[2], P75: values[3], P90: values[4]}
	return w, w.validate()
}

func parseWagesCSV(code string, r io.Reader) (Wages, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return Wages{}, fmt.Errorf("failed to read wages export for %s: %w", code, err)
	}

	// the export may carry a title block above the header
	headerAt := -1
	for i, rec := range records {
		if findColumn(rec, "location") >= 0 {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return Wages{}, fmt.Errorf("missing Location column in wages export for %s", code)
	}
	header := records[headerAt]

	loc := findColumn(header, "location")
	low := findColumn(header, "annuallow")
	ql := findColumn(header, "annualql")
	median := findColumn(header, "annualmedian")
	qu := findColumn(header, "annualqu")
	high := findColumn(header, "annualhigh")
	if low < 0 || median < 0 || high < 0 {
		return Wages{}, fmt.Errorf("missing annual wage columns in export for %s: %v", code, header)
	}

	for _, rec := range records[headerAt+1:] {
		if loc >= len(rec) || strings.TrimSpace(rec[loc]) != "United States" {
			continue
		}

		cell := func(i int) (float64, error) {
			if i < 0 || i >= len(rec) {
				return 0, nil
			}
			return utils.ParseMoney(strings.TrimSuffix(strings.TrimSpace(rec[i]), "+"))
		}

		w := Wages{Code: code}
		for _, f := range []struct {
			col int
			dst *float64
		}{{low, &w.P10}, {ql, &w.P25}, {median, &w.P50}, {qu, &w.P75}, {high, &w.P90}} {
			v, err := cell(f.col)
			if err != nil {
				return Wages{}, fmt.Errorf("invalid wage value for %s: %w", code, err)
			}
			*f.dst = v
		}

		// quartiles are interpolated when the export omits them
		if w.P25 == 0 {
			w.P25 = (w.P10 + w.P50) / 2
		}
		if w.P75 == 0 {
			w.P75 = (w.P50 + w.P90) / 2
		}
		return w, w.validate()
	}

	return Wages{}, fmt.Errorf("%s: %w", code, ErrWageRowNotFound)
}

// findColumn returns the index of the first header containing name, ignoring case and spaces
func findColumn(header []string, name string) int {
	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(h, " ", ""))
		if strings.Contains(key, name) {
			return i
		}
	}
	return -1
}

// FetchAll fetches wages for every role concurrently. Roles sharing an
// occupation code are fetched once. The wages page is tried first, the CSV
// export second. Failed codes are reported as FetchErrors alongside the
// wages that did arrive.
func FetchAll(ctx context.Context, httpClient *http.Client, codes map[models.RoleKey]string, debug bool, bar *pb.ProgressBar) (map[models.RoleKey]Wages, []error) {
	unique := make([]string, 0, len(codes))
	seen := make(map[string]bool)
	for _, code := range codes {
		if !seen[code] {
			seen[code] = true
			unique = append(unique, code)
		}
	}
	sort.Strings(unique)

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		byCode = make(map[string]Wages, len(unique))
		errs   []error
	)
	semaphore := make(chan struct{}, maxConcurrent)

	for _, code := range unique {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() {
				<-semaphore
				if bar != nil {
					bar.Increment()
				}
			}()

			w, err := FetchWages(ctx, httpClient, code, debug)
			if err != nil {
				if debug {
					fmt.Printf("Wages page failed for %s, trying export: %v\n", code, err)
				}
				w, err = FetchWagesCSV(ctx, httpClient, code, debug)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, &FetchError{Code: code, Err: err})
				return
			}
			byCode[code] = w
		}(code)
	}
	wg.Wait()

	out := make(map[models.RoleKey]Wages, len(codes))
	for role, code := range codes {
		if w, ok := byCode[code]; ok {
			out[role] = w
		}
	}

	sort.Slice(errs, func(i, j int) bool {
		return errs[i].(*FetchError).Code < errs[j].(*FetchError).Code
	})
	return out, errs
}

// Baselines converts fetched wages into a baseline table for Profile.WithBaselines
func Baselines(wages map[models.RoleKey]Wages) map[models.RoleKey]map[models.LevelKey]models.Range {
	out := make(map[models.RoleKey]map[models.LevelKey]models.Range, len(wages))
	for role, w := range wages {
		out[role] = w.Baselines()
	}
	return out
}
