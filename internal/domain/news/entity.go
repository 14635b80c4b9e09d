package news

import (
	"context"
	"time"
)

// Article is one news item returned by the news provider
type Article struct {
	Title       string
	Description string
	Source      string
	URL         string
	PublishedAt time.Time
}

// Fetcher retrieves recent articles for a currency over a lookback window
type Fetcher interface {
	GetNews(ctx context.Context, currency string, days int) ([]Article, error)
}
