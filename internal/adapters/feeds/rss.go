package feeds

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/selivandex/market-scanner/pkg/models"
)

// RSSProvider fetches items from a single RSS 2.0 feed
type RSSProvider struct {
	name   string
	url    string
	client *http.Client
}

// NewRSSProvider creates provider for one feed
func NewRSSProvider(name, url string, timeout time.Duration) *RSSProvider {
	return &RSSProvider{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (r *RSSProvider) GetName() string {
	return r.name
}

func (r *RSSProvider) IsEnabled() bool {
	return true
}

// rssDocument mirrors the subset of RSS 2.0 the scanner needs
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	GUID    string `xml:"guid"`
	PubDate string `xml:"pubDate"`
}

// FetchLatest downloads and parses the feed, preserving delivery order
func (r *RSSProvider) FetchLatest(ctx context.Context, limit int) ([]models.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var doc rssDocument
	decoder := xml.NewDecoder(resp.Body)
	// Government feeds occasionally declare legacy charsets
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]models.NewsItem, 0, limit)
	for _, entry := range doc.Channel.Items {
		if len(items) >= limit {
			break
		}

		id := strings.TrimSpace(entry.Link)
		if id == "" {
			id = strings.TrimSpace(entry.GUID)
		}
		title := strings.TrimSpace(entry.Title)
		if id == "" || title == "" {
			continue
		}

		items = append(items, models.NewsItem{
			ID:          id,
			Source:      r.name,
			Title:       title,
			URL:         id,
			PublishedAt: parsePubDate(entry.PubDate),
		})
	}

	return items, nil
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"2006-01-02T15:04:05Z07:00",
}

// parsePubDate parses common RSS date formats, zero time on failure
func parsePubDate(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range pubDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
