package scanner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/market-scanner/internal/adapters/feeds"
	"github.com/selivandex/market-scanner/internal/bias"
	"github.com/selivandex/market-scanner/internal/classifier"
	"github.com/selivandex/market-scanner/internal/state"
	"github.com/selivandex/market-scanner/pkg/logger"
	"github.com/selivandex/market-scanner/pkg/models"
)

// Notifier delivers item notifications with an optional link button
type Notifier interface {
	Send(text string) error
	SendWithLink(text, label, url string) error
}

// Persister snapshots ledger and accumulator after each mutation
type Persister interface {
	Save(ledger *state.Ledger, acc *bias.Accumulator) error
}

// Pipeline runs one ingestion pass: fetch every feed, classify fresh items,
// fold sentiment into the accumulator and push notifications. All state
// mutation happens here, on the scanner loop's single goroutine.
type Pipeline struct {
	providers    []feeds.Provider
	ledger       *state.Ledger
	acc          *bias.Accumulator
	store        Persister
	notifier     Notifier
	itemsPerFeed int
}

// NewPipeline creates ingestion pipeline
func NewPipeline(providers []feeds.Provider, ledger *state.Ledger, acc *bias.Accumulator, store Persister, notifier Notifier, itemsPerFeed int) *Pipeline {
	return &Pipeline{
		providers:    providers,
		ledger:       ledger,
		acc:          acc,
		store:        store,
		notifier:     notifier,
		itemsPerFeed: itemsPerFeed,
	}
}

// RunCycle processes every enabled provider in declared order. A failing
// provider is logged and skipped; it never aborts the rest of the cycle.
func (p *Pipeline) RunCycle(ctx context.Context) {
	for _, provider := range p.providers {
		if !provider.IsEnabled() {
			continue
		}

		items, err := provider.FetchLatest(ctx, p.itemsPerFeed)
		if err != nil {
			logger.Warn("feed fetch failed",
				zap.String("feed", provider.GetName()),
				zap.Error(err),
			)
			continue
		}

		fresh := 0
		for _, item := range items {
			if p.processItem(item) {
				fresh++
			}
		}

		logger.Debug("feed processed",
			zap.String("feed", provider.GetName()),
			zap.Int("items", len(items)),
			zap.Int("fresh", fresh),
		)
	}
}

// processItem handles a single item end to end. Returns true when the item
// was new and classified. The ledger is marked before notify: delivery is
// at-most-once, a failed send is never retried.
func (p *Pipeline) processItem(item models.NewsItem) bool {
	if p.ledger.Seen(item.ID) {
		return false
	}

	res := classifier.Classify(item.Title)
	if !res.Matched {
		// Irrelevant item, dropped without marking; the ledger only tracks
		// items that produced a notification.
		return false
	}

	p.acc.Add(res.Asset, res.Delta)
	p.persist("bias update")

	p.ledger.Mark(item.ID)
	p.persist("ledger update")

	text := formatItem(item, res, p.acc.Score(res.Asset))
	if err := p.notifier.SendWithLink(text, "Open link", item.URL); err != nil {
		logger.Warn("item notification failed",
			zap.String("id", item.ID),
			zap.Error(err),
		)
	}

	return true
}

// persist saves the snapshot; on failure the in-memory state stays
// authoritative and the next successful save catches up
func (p *Pipeline) persist(reason string) {
	if err := p.store.Save(p.ledger, p.acc); err != nil {
		logger.Error("state persistence failed",
			zap.String("after", reason),
			zap.Error(err),
		)
	}
}

// formatItem renders the channel message for one classified item
func formatItem(item models.NewsItem, res classifier.Result, score int) string {
	banner := "🟢 News"
	if res.HighImpact {
		banner = "🔥 HIGH IMPACT"
	}

	sentiment := "Neutral"
	if res.Delta > 0 {
		sentiment = "Bullish"
	} else if res.Delta < 0 {
		sentiment = "Bearish"
	}

	return fmt.Sprintf(
		"%s\n\n"+
			"Asset: *%s*\n"+
			"Source: %s\n"+
			"Sentiment: %s | Bias %+d (%s) | %d%%\n\n"+
			"%s\n\n"+
			"%s",
		banner,
		res.Asset,
		item.Source,
		sentiment, score, bias.StrengthLabel(score), bias.Probability(score, 1),
		item.Title,
		item.URL,
	)
}
