package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fr4nk3nst1ner/salaryforecast/internal/client"
)

// FetchPosting downloads a job posting page so its text can be mined for role, level and skills
func FetchPosting(ctx context.Context, httpClient *http.Client, postingURL string, debug bool) ([]byte, error) {
	u, err := url.Parse(postingURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid posting URL %q", postingURL)
	}

	if debug {
		fmt.Printf("Fetching job posting: %s\n", postingURL)
	}
	return client.Get(ctx, httpClient, u.String(), "")
}
