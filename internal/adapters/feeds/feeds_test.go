package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/selivandex/market-scanner/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init("error", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Wire</title>
    <item>
      <title>RBI announces repo rate hike</title>
      <link>https://wire.example/rbi-hike</link>
      <pubDate>Mon, 09 Feb 2026 04:30:00 +0000</pubDate>
    </item>
    <item>
      <title>Crude prices surge on supply worries</title>
      <link>https://wire.example/crude-surge</link>
      <pubDate>Mon, 09 Feb 2026 04:00:00 +0000</pubDate>
    </item>
    <item>
      <title>No link, only guid</title>
      <guid>guid-123</guid>
    </item>
    <item>
      <title></title>
      <link>https://wire.example/empty-title</link>
    </item>
  </channel>
</rss>`

func TestRSSProvider_FetchLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	provider := NewRSSProvider("Test Wire", server.URL, 5*time.Second)

	items, err := provider.FetchLatest(context.Background(), 30)
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}

	// Empty-title entry dropped, guid-only entry kept
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d", len(items))
	}

	// Delivery order preserved
	if items[0].ID != "https://wire.example/rbi-hike" {
		t.Errorf("first item ID = %q", items[0].ID)
	}
	if items[0].Title != "RBI announces repo rate hike" {
		t.Errorf("first item title = %q", items[0].Title)
	}
	if items[0].Source != "Test Wire" {
		t.Errorf("first item source = %q", items[0].Source)
	}
	if items[0].PublishedAt.IsZero() {
		t.Error("pubDate should have parsed")
	}
	if items[2].ID != "guid-123" {
		t.Errorf("guid fallback ID = %q", items[2].ID)
	}
}

func TestRSSProvider_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	provider := NewRSSProvider("Test Wire", server.URL, 5*time.Second)

	items, err := provider.FetchLatest(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item with limit 1, got %d", len(items))
	}
}

func TestRSSProvider_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewRSSProvider("Test Wire", server.URL, 5*time.Second)

	if _, err := provider.FetchLatest(context.Background(), 30); err == nil {
		t.Fatal("want error on HTTP 503")
	}
}

const sampleEIA = `{
  "response": {
    "data": [
      {"period": "2026-02-06", "value": 424000.0},
      {"period": "2026-01-30", "value": 426500.0}
    ]
  }
}`

func TestEIAProvider_FetchLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleEIA))
	}))
	defer server.Close()

	provider := NewEIAProvider("test-key", 5*time.Second)
	provider.apiURL = server.URL + "/?api_key=%s"

	items, err := provider.FetchLatest(context.Background(), 30)
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("want 1 item, got %d", len(items))
	}

	item := items[0]
	if item.ID != "eia-crude-2026-02-06" {
		t.Errorf("ID = %q, want period-keyed id", item.ID)
	}
	// 424.0M - 426.5M = draw of 2.5M barrels
	want := "EIA weekly crude oil inventory draw of 2.5 million barrels"
	if item.Title != want {
		t.Errorf("Title = %q, want %q", item.Title, want)
	}
}

func TestEIAProvider_Disabled(t *testing.T) {
	provider := NewEIAProvider("", 5*time.Second)

	if provider.IsEnabled() {
		t.Error("provider without key should be disabled")
	}

	items, err := provider.FetchLatest(context.Background(), 30)
	if err != nil || items != nil {
		t.Errorf("disabled provider should return nothing, got %v, %v", items, err)
	}
}

func TestEIAProvider_InsufficientData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": {"data": [{"period": "2026-02-06", "value": 424000.0}]}}`))
	}))
	defer server.Close()

	provider := NewEIAProvider("test-key", 5*time.Second)
	provider.apiURL = server.URL + "/?api_key=%s"

	items, err := provider.FetchLatest(context.Background(), 30)
	if err != nil {
		t.Fatalf("FetchLatest failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("one data row should produce no items, got %d", len(items))
	}
}
