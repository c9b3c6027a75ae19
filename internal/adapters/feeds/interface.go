package feeds

import (
	"context"

	"github.com/selivandex/market-scanner/pkg/models"
)

// Provider represents a polled item source. Fetching must be idempotent and
// side-effect-free; deduplication happens downstream in the scanner ledger.
type Provider interface {
	// GetName returns provider name for logging and message attribution
	GetName() string

	// FetchLatest fetches the newest items in delivery order
	FetchLatest(ctx context.Context, limit int) ([]models.NewsItem, error)

	// IsEnabled returns whether provider is enabled
	IsEnabled() bool
}
