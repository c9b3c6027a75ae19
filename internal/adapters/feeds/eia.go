package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-scanner/pkg/logger"
	"github.com/selivandex/market-scanner/pkg/models"
)

// Weekly US crude stocks excluding SPR, thousand barrels
const eiaAPIURL = "https://api.eia.gov/v2/petroleum/stoc/wstk/data/" +
	"?api_key=%s&frequency=weekly&data[0]=value&facets[series][]=WCESTUS1" +
	"&sort[0][column]=period&sort[0][direction]=desc&length=2"

const eiaReportURL = "https://www.eia.gov/petroleum/supply/weekly/"

// EIAProvider turns the weekly EIA crude inventory report into one synthetic
// item per reporting period. The period keys the item ID, so the ledger
// dedups a report exactly like a news link and each week is delivered once.
type EIAProvider struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewEIAProvider creates provider; disabled without an API key
func NewEIAProvider(apiKey string, timeout time.Duration) *EIAProvider {
	return &EIAProvider{
		apiKey: apiKey,
		apiURL: eiaAPIURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (e *EIAProvider) GetName() string {
	return "EIA"
}

func (e *EIAProvider) IsEnabled() bool {
	return e.apiKey != ""
}

// FetchLatest fetches the two most recent weekly stock levels and emits a
// single item describing the week-over-week change
func (e *EIAProvider) FetchLatest(ctx context.Context, limit int) ([]models.NewsItem, error) {
	if !e.IsEnabled() || limit < 1 {
		return nil, nil
	}

	url := fmt.Sprintf(e.apiURL, e.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Response struct {
			Data []struct {
				Period string  `json:"period"`
				Value  float64 `json:"value"`
			} `json:"data"`
		} `json:"response"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	data := result.Response.Data
	if len(data) < 2 {
		logger.Debug("EIA returned insufficient weekly data",
			zap.Int("rows", len(data)),
		)
		return nil, nil
	}

	// Values are thousand barrels; report the change in millions
	changeMB := (data[0].Value - data[1].Value) / 1000.0

	direction := "build"
	if changeMB < 0 {
		direction = "draw"
	}

	title := fmt.Sprintf("EIA weekly crude oil inventory %s of %.1f million barrels",
		direction, math.Abs(changeMB))

	item := models.NewsItem{
		ID:     fmt.Sprintf("eia-crude-%s", data[0].Period),
		Source: e.GetName(),
		Title:  title,
		URL:    eiaReportURL,
	}
	if ts, err := time.Parse("2006-01-02", data[0].Period); err == nil {
		item.PublishedAt = ts
	}

	return []models.NewsItem{item}, nil
}
