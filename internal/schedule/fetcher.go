package schedule

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Variant selects which day's page to fetch.
type Variant int

const (
	Current Variant = iota
	Next
)

func (v Variant) String() string {
	if v == Next {
		return "next"
	}
	return "current"
}

const userAgent = "shutdowns-bot/1.0"

// Fetcher downloads the raw shutdowns page.
type Fetcher struct {
	baseURL   string
	nextQuery string
	client    *http.Client
}

// NewFetcher creates a fetcher for baseURL. nextQuery (e.g. "next=1") is
// appended to the URL for the Next variant.
func NewFetcher(baseURL, nextQuery string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		baseURL:   baseURL,
		nextQuery: nextQuery,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the address fetched for the given variant.
func (f *Fetcher) URL(v Variant) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if v == Next && f.nextQuery != "" {
		extra, err := url.ParseQuery(f.nextQuery)
		if err != nil {
			return "", fmt.Errorf("parse next query: %w", err)
		}
		q := u.Query()
		for k, vals := range extra {
			for _, val := range vals {
				q.Add(k, val)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Fetch performs a single GET of the page. It does not retry.
func (f *Fetcher) Fetch(ctx context.Context, v Variant) (string, error) {
	target, err := f.URL(v)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &NetworkError{URL: target, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &NetworkError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &NetworkError{URL: target, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: target, Err: fmt.Errorf("read body: %w", err)}
	}
	return string(body), nil
}
