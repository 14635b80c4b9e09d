package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"hermes/internal/adapters/config"
	"hermes/internal/domain/news"
	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// Compile-time check
var _ news.Fetcher = (*Client)(nil)

// queries maps a currency to its news search expression
var queries = map[string]string{
	"BTC": "bitcoin OR BTC",
	"ETH": "ethereum OR ETH",
}

// Client fetches articles from NewsAPI
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a NewsAPI client. An empty API key is an error; callers
// that want news to be optional should skip construction instead.
func NewClient(cfg config.NewsAPIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "newsapi key is required")
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.Get().With("component", "newsapi"),
	}, nil
}

type articleResponse struct {
	Status       string `json:"status"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

// GetNews returns recent English-language articles for a currency over the
// lookback window, newest first
func (c *Client) GetNews(ctx context.Context, currency string, days int) ([]news.Article, error) {
	query, ok := queries[currency]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnsupportedCurrency, "currency %s", currency)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("from", time.Now().AddDate(0, 0, -days).Format("2006-01-02"))
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", "100")

	reqURL := fmt.Sprintf("%s/everything?%s", c.baseURL, params.Encode())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create news request")
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "send news request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read news response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrUnavailable,
			"newsapi returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed articleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "unmarshal news response")
	}
	if parsed.Status != "ok" {
		return nil, errors.Wrapf(errors.ErrUnavailable, "newsapi status %s", parsed.Status)
	}

	articles := make([]news.Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		articles = append(articles, news.Article{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}

	c.log.Debugw("news fetched", "currency", currency, "articles", len(articles))
	return articles, nil
}
