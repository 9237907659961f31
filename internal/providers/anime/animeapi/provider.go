package animeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

const (
	DefaultBaseURL = "http://localhost:4444/api"
	userAgent      = "anime-browser/0.1"
	maxBodyBytes   = 8 << 20
)

type Provider struct {
	httpClient *http.Client
	baseURL    string
	logger     *log.Logger
}

func New(httpClient *http.Client, baseURL string, logger *log.Logger) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Provider{httpClient: httpClient, baseURL: baseURL, logger: logger}
}

// BaseURL is the normalized API root requests are sent to.
func (provider *Provider) BaseURL() string {
	return provider.baseURL
}

func (provider *Provider) Home(ctx context.Context) (anime.Home, error) {
	var results struct {
		Trending  []rawSummary `json:"trending"`
		Spotlight []rawSummary `json:"spotlight"`
	}
	if err := provider.get(ctx, "/", nil, &results); err != nil {
		return anime.Home{}, err
	}

	return anime.Home{
		Trending:  normalizeSummaries(results.Trending),
		Spotlight: normalizeSummaries(results.Spotlight),
	}, nil
}

func (provider *Provider) Info(ctx context.Context, id string) (anime.Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return anime.Detail{}, &RequestFailedError{Endpoint: "/info", Message: "anime id missing"}
	}

	var results rawDetail
	if err := provider.get(ctx, "/info", url.Values{"id": {id}}, &results); err != nil {
		return anime.Detail{}, err
	}

	detail := results.normalize()
	if detail.ID == "" {
		detail.ID = id
	}
	return detail, nil
}

func (provider *Provider) Search(ctx context.Context, keyword string) ([]anime.Summary, error) {
	var results struct {
		Animes []rawSummary `json:"animes"`
	}
	if err := provider.get(ctx, "/search", url.Values{"keyword": {keyword}}, &results); err != nil {
		return nil, err
	}

	return normalizeSummaries(results.Animes), nil
}

func (provider *Provider) Suggest(ctx context.Context, query string) ([]anime.Suggestion, error) {
	var results struct {
		Suggestions []rawSuggestion `json:"suggestions"`
	}
	if err := provider.get(ctx, "/search/suggest", url.Values{"q": {query}}, &results); err != nil {
		return nil, err
	}

	suggestions := make([]anime.Suggestion, 0, len(results.Suggestions))
	for _, entry := range results.Suggestions {
		if entry.Name == "" {
			continue
		}
		suggestions = append(suggestions, anime.Suggestion(entry))
	}
	return suggestions, nil
}

func (provider *Provider) TopTen(ctx context.Context, period anime.Period) ([]anime.Summary, error) {
	if period == "" {
		period = anime.PeriodToday
	}

	// Only the requested period is decoded; other keys may hold anything.
	var results map[string]json.RawMessage
	if err := provider.get(ctx, "/top-ten", url.Values{"filter": {string(period)}}, &results); err != nil {
		return nil, err
	}

	var summaries []rawSummary
	if raw, ok := results[string(period)]; ok {
		if err := json.Unmarshal(raw, &summaries); err != nil {
			err = &RequestFailedError{Endpoint: "/top-ten", Message: fmt.Sprintf("error parsing results: %v", err), Err: err}
			provider.logger.Error("API Error", "endpoint", "/top-ten", "error", err)
			return nil, err
		}
	}
	return normalizeSummaries(summaries), nil
}

func (provider *Provider) Random(ctx context.Context) (anime.Detail, error) {
	var results rawDetail
	if err := provider.get(ctx, "/random", nil, &results); err != nil {
		return anime.Detail{}, err
	}

	return results.normalize(), nil
}

type envelope struct {
	Success bool            `json:"success"`
	Results json.RawMessage `json:"results"`
	Message string          `json:"message"`
}

func (provider *Provider) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	requestURL := provider.baseURL + endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	err := provider.fetch(ctx, requestURL, out)
	if err != nil {
		var failed *RequestFailedError
		if errors.As(err, &failed) {
			failed.Endpoint = endpoint
		} else {
			err = &RequestFailedError{Endpoint: endpoint, Message: err.Error(), Err: err}
		}
		provider.logger.Error("API Error", "endpoint", endpoint, "error", err)
		return err
	}

	provider.logger.Debug("API request complete", "endpoint", endpoint)
	return nil
}

func (provider *Provider) fetch(ctx context.Context, requestURL string, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept", "application/json")

	response, err := provider.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	var result envelope
	if err := json.Unmarshal(body, &result); err != nil {
		if response.StatusCode != http.StatusOK {
			return fmt.Errorf("request failed: %s", response.Status)
		}
		return fmt.Errorf("error parsing response: %w", err)
	}

	if !result.Success {
		message := strings.TrimSpace(result.Message)
		if message == "" {
			message = DefaultFailureMessage
		}
		return &RequestFailedError{Message: message}
	}

	if out == nil || len(result.Results) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Results, out); err != nil {
		return fmt.Errorf("error parsing results: %w", err)
	}

	return nil
}
