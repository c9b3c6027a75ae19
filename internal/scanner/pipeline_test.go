package scanner

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/selivandex/market-scanner/internal/adapters/feeds"
	"github.com/selivandex/market-scanner/internal/bias"
	"github.com/selivandex/market-scanner/internal/classifier"
	"github.com/selivandex/market-scanner/internal/state"
	"github.com/selivandex/market-scanner/pkg/logger"
	"github.com/selivandex/market-scanner/pkg/models"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeProvider struct {
	name  string
	items []models.NewsItem
	err   error
	calls int
}

func (f *fakeProvider) GetName() string { return f.name }
func (f *fakeProvider) IsEnabled() bool { return true }

func (f *fakeProvider) FetchLatest(ctx context.Context, limit int) ([]models.NewsItem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

type fakeNotifier struct {
	sent []string
	fail bool
}

func (f *fakeNotifier) Send(text string) error {
	if f.fail {
		return errors.New("send failed")
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeNotifier) SendWithLink(text, label, url string) error {
	return f.Send(text)
}

type fakeStore struct {
	saves int
	fail  bool
}

func (f *fakeStore) Save(ledger *state.Ledger, acc *bias.Accumulator) error {
	if f.fail {
		return errors.New("disk full")
	}
	f.saves++
	return nil
}

func newTestPipeline(providers []feeds.Provider, notifier *fakeNotifier, store *fakeStore) (*Pipeline, *state.Ledger, *bias.Accumulator) {
	ledger := state.NewLedger()
	acc := bias.NewAccumulator()
	return NewPipeline(providers, ledger, acc, store, notifier, 30), ledger, acc
}

func newsItem(id, title string) models.NewsItem {
	return models.NewsItem{ID: id, Source: "TestWire", Title: title, URL: id}
}

func TestPipeline_NotifiesAtMostOnce(t *testing.T) {
	provider := &fakeProvider{
		name:  "TestWire",
		items: []models.NewsItem{newsItem("https://t.example/1", "Nifty hits record high on FII buying")},
	}
	notifier := &fakeNotifier{}
	store := &fakeStore{}
	pipeline, ledger, _ := newTestPipeline([]feeds.Provider{provider}, notifier, store)

	// Feed re-delivers the same entry across many cycles
	for i := 0; i < 5; i++ {
		pipeline.RunCycle(context.Background())
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("want exactly 1 notification, got %d", len(notifier.sent))
	}
	if !ledger.Seen("https://t.example/1") {
		t.Error("processed item missing from ledger")
	}
}

func TestPipeline_AccumulatesBias(t *testing.T) {
	provider := &fakeProvider{
		name: "TestWire",
		items: []models.NewsItem{
			newsItem("a", "Crude prices surge on supply worries"),
			newsItem("b", "Brent crude falls as demand outlook dims"),
			newsItem("c", "Oil rally extends as opec holds output cut"),
		},
	}
	notifier := &fakeNotifier{}
	pipeline, _, acc := newTestPipeline([]feeds.Provider{provider}, notifier, &fakeStore{})

	pipeline.RunCycle(context.Background())

	// +1 -1 +1 = 1
	if got := acc.Score(classifier.AssetCrudeOil); got != 1 {
		t.Errorf("CRUDE OIL bias = %d, want 1", got)
	}
	if len(notifier.sent) != 3 {
		t.Errorf("want 3 notifications, got %d", len(notifier.sent))
	}
}

func TestPipeline_DropsUnmatchedTitles(t *testing.T) {
	provider := &fakeProvider{
		name: "TestWire",
		items: []models.NewsItem{
			newsItem("x", "Cricket team announces new captain"),
		},
	}
	notifier := &fakeNotifier{}
	pipeline, ledger, _ := newTestPipeline([]feeds.Provider{provider}, notifier, &fakeStore{})

	pipeline.RunCycle(context.Background())

	if len(notifier.sent) != 0 {
		t.Errorf("unmatched item must not notify, got %d", len(notifier.sent))
	}
	if ledger.Seen("x") {
		t.Error("unmatched item must not be marked seen")
	}
}

func TestPipeline_FeedFailureIsolated(t *testing.T) {
	broken := &fakeProvider{name: "Broken", err: errors.New("connection refused")}
	healthy := &fakeProvider{
		name:  "Healthy",
		items: []models.NewsItem{newsItem("y", "Sensex gains on banking rally")},
	}
	notifier := &fakeNotifier{}
	pipeline, _, _ := newTestPipeline([]feeds.Provider{broken, healthy}, notifier, &fakeStore{})

	pipeline.RunCycle(context.Background())

	if healthy.calls != 1 {
		t.Error("healthy feed skipped after broken feed failure")
	}
	if len(notifier.sent) != 1 {
		t.Errorf("want 1 notification from healthy feed, got %d", len(notifier.sent))
	}
}

// Mark-before-notify: a failed delivery still marks the item, so it is never
// retried. At-most-once beats duplicates when there is no delivery receipt.
func TestPipeline_FailedNotifyStillMarked(t *testing.T) {
	provider := &fakeProvider{
		name:  "TestWire",
		items: []models.NewsItem{newsItem("z", "Gold surges to record high")},
	}
	notifier := &fakeNotifier{fail: true}
	store := &fakeStore{}
	pipeline, ledger, _ := newTestPipeline([]feeds.Provider{provider}, notifier, store)

	pipeline.RunCycle(context.Background())

	if !ledger.Seen("z") {
		t.Error("item must be marked seen before notify")
	}

	notifier.fail = false
	pipeline.RunCycle(context.Background())
	if len(notifier.sent) != 0 {
		t.Errorf("failed item must not be redelivered, got %d sends", len(notifier.sent))
	}
}

func TestPipeline_PersistFailureKeepsProcessing(t *testing.T) {
	provider := &fakeProvider{
		name:  "TestWire",
		items: []models.NewsItem{newsItem("p", "Nifty surges past resistance")},
	}
	notifier := &fakeNotifier{}
	store := &fakeStore{fail: true}
	pipeline, ledger, acc := newTestPipeline([]feeds.Provider{provider}, notifier, store)

	pipeline.RunCycle(context.Background())

	// In-memory state stays authoritative despite the write failure
	if got := acc.Score(classifier.AssetNifty); got != 1 {
		t.Errorf("NIFTY bias = %d, want 1", got)
	}
	if !ledger.Seen("p") {
		t.Error("item should be marked despite persistence failure")
	}
	if len(notifier.sent) != 1 {
		t.Errorf("want notification despite persistence failure, got %d", len(notifier.sent))
	}
}

func TestPipeline_MessageFormat(t *testing.T) {
	// Providers stamp items with their own name as Source; mirror that here
	item := newsItem("https://r.example/cpi", "US inflation data beats estimates")
	item.Source = "Reuters"
	provider := &fakeProvider{
		name:  "Reuters",
		items: []models.NewsItem{item},
	}
	notifier := &fakeNotifier{}
	pipeline, _, _ := newTestPipeline([]feeds.Provider{provider}, notifier, &fakeStore{})

	pipeline.RunCycle(context.Background())

	if len(notifier.sent) != 1 {
		t.Fatalf("want 1 notification, got %d", len(notifier.sent))
	}
	msg := notifier.sent[0]

	for _, want := range []string{"🔥 HIGH IMPACT", "US CPI / GDP", "Reuters", "Bullish", "https://r.example/cpi"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
