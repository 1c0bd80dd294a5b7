package websearch

import (
	"context"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const userAgent = "Mozilla/5.0 (compatible; RagChef/1.0)"

// Summarizer reads the meta description of recipe pages
type Summarizer struct {
	timeout time.Duration
}

// NewSummarizer creates a Summarizer whose page fetches time out after timeout
func NewSummarizer(timeout time.Duration) *Summarizer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Summarizer{timeout: timeout}
}

// Describe returns the page's description meta tag, falling back to og:description
func (s *Summarizer) Describe(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(userAgent),
	)
	c.SetRequestTimeout(s.timeout)

	var description, ogDescription string
	c.OnHTML(`meta[name="description"]`, func(e *colly.HTMLElement) {
		if description == "" {
			description = strings.TrimSpace(e.Attr("content"))
		}
	})
	c.OnHTML(`meta[property="og:description"]`, func(e *colly.HTMLElement) {
		if ogDescription == "" {
			ogDescription = strings.TrimSpace(e.Attr("content"))
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return "", err
	}
	if description != "" {
		return description, nil
	}
	return ogDescription, nil
}
