package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ss-scraper/config"
	"ss-scraper/models"
	"ss-scraper/notify"
	"ss-scraper/scraper/ss"
	"ss-scraper/services"
	"ss-scraper/storage"
	"ss-scraper/utils"
)

// pageFetcher serves canned listing pages.
type pageFetcher struct {
	pages map[string][]byte
}

func (f *pageFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return body, nil
}

func (f *pageFetcher) Close() error { return nil }

// recordingChannel collects every message sent through it.
type recordingChannel struct {
	sent   []notify.Message
	closed int
}

func (c *recordingChannel) Send(_ context.Context, _ string, msg notify.Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func (c *recordingChannel) Close() error {
	c.closed++
	return nil
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("scraper", "ss", "testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func flatPages(t *testing.T) map[string][]byte {
	base := models.Flats.BaseURL
	first := readFixture(t, "flats_page1.html")
	return map[string][]byte{
		base:                first,
		base + "page1.html": first,
		base + "page2.html": readFixture(t, "flats_page2.html"),
	}
}

func newFlatStore(t *testing.T) *storage.SQLStore[models.Flat] {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "run.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := storage.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return storage.NewSQLStore(db, storage.FlatTable)
}

// seedOldFlat stores one listing seen two days ago.
func seedOldFlat(t *testing.T, store storage.RecordStore[models.Flat]) {
	t.Helper()
	old := models.Flat{
		Address:     "TeikaVecā iela 1",
		ProjectType: "Jaun.",
		PriceRaw:    "50,000  €",
		AdID:        "dm_1",
		Link:        "https://www.ss.lv/msg/old.html",
		Price:       sql.NullFloat64{Float64: 50000, Valid: true},
		PricePerM2:  sql.NullFloat64{Float64: 1000, Valid: true},
		ExtractedAt: time.Now().Add(-48 * time.Hour).UTC().Round(0),
	}
	if err := store.Save(context.Background(), []models.Flat{old}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func newTestApp(cfg *config.Config, pages map[string][]byte) (*app, *recordingChannel) {
	logger := utils.NewLoggerTo(io.Discard, io.Discard)
	ch := &recordingChannel{}
	return &app{
		cfg:      cfg,
		logger:   logger,
		runID:    "test-run",
		pipeline: ss.NewPipeline(&pageFetcher{pages: pages}, nil, logger),
		notifier: notify.NewNotifier(func(context.Context) (notify.Channel, error) { return ch, nil }, logger),
		dest:     "chat_id_flats",
		insights: services.NewInsightService(logger),
	}, ch
}

func runFlats(a *app, store storage.RecordStore[models.Flat]) error {
	return runCategory(context.Background(), a, services.FlatsVertical(models.Flats),
		store, storage.FlatTable, notify.FlatFormatter())
}

func loadAdIDs(t *testing.T, store storage.RecordStore[models.Flat]) []string {
	t.Helper()
	flats, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ids := make([]string, len(flats))
	for i, f := range flats {
		ids[i] = f.AdID
	}
	return ids
}

func TestRunCategorySavesThenNotifies(t *testing.T) {
	store := newFlatStore(t)
	seedOldFlat(t, store)

	csvPath := filepath.Join(t.TempDir(), "flats.csv")
	a, ch := newTestApp(&config.Config{CSVOutputPath: csvPath}, flatPages(t))

	if err := runFlats(a, store); err != nil {
		t.Fatalf("runCategory: %v", err)
	}

	want := "dm_1 dm_54321 dm_54322 dm_54400"
	if got := strings.Join(loadAdIDs(t, store), " "); got != want {
		t.Errorf("stored ads: got %s, want %s", got, want)
	}

	if len(ch.sent) != 4 {
		t.Fatalf("messages: got %d, want 4", len(ch.sent))
	}
	if !strings.HasPrefix(ch.sent[0].Text, "2 new flats") {
		t.Errorf("headline: %q", ch.sent[0].Text)
	}
	if !ch.sent[1].Monospace {
		t.Error("summary table should be monospace")
	}
	links := ch.sent[3].Text
	if i, j := strings.Index(links, "bxkfo"), strings.Index(links, "qwert"); i < 0 || j < i {
		t.Errorf("links should list the cheapest per m2 first:\n%s", links)
	}
	if ch.closed != 1 {
		t.Errorf("channel closed %d times, want 1", ch.closed)
	}

	if _, err := os.Stat(csvPath); err != nil {
		t.Errorf("CSV export missing: %v", err)
	}
}

func TestRunCategoryRerunAddsNothing(t *testing.T) {
	store := newFlatStore(t)
	a, _ := newTestApp(&config.Config{}, flatPages(t))

	if err := runFlats(a, store); err != nil {
		t.Fatalf("first run: %v", err)
	}
	a, ch := newTestApp(&config.Config{}, flatPages(t))
	if err := runFlats(a, store); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if got := len(loadAdIDs(t, store)); got != 3 {
		t.Errorf("stored rows after rerun: got %d, want 3", got)
	}
	if len(ch.sent) != 4 || !strings.HasPrefix(ch.sent[0].Text, "2 new flats") {
		t.Errorf("rerun within the window should report the same fresh offers, got %d messages", len(ch.sent))
	}
}

func TestRunCategoryPageFailureKeepsStore(t *testing.T) {
	store := newFlatStore(t)
	seedOldFlat(t, store)

	pages := flatPages(t)
	delete(pages, models.Flats.BaseURL+"page2.html")
	a, ch := newTestApp(&config.Config{}, pages)

	if err := runFlats(a, store); err == nil {
		t.Fatal("expected the failed page to abort the run")
	}

	if got := loadAdIDs(t, store); len(got) != 1 || got[0] != "dm_1" {
		t.Errorf("store should be untouched, got %v", got)
	}
	if len(ch.sent) != 0 || ch.closed != 0 {
		t.Errorf("no message should be sent: %d sent, %d closes", len(ch.sent), ch.closed)
	}
}

func TestRunCategoryDryRunSkipsSave(t *testing.T) {
	store := newFlatStore(t)
	seedOldFlat(t, store)
	a, ch := newTestApp(&config.Config{DryRun: true}, flatPages(t))

	if err := runFlats(a, store); err != nil {
		t.Fatalf("runCategory: %v", err)
	}

	if got := loadAdIDs(t, store); len(got) != 1 || got[0] != "dm_1" {
		t.Errorf("dry run should not save, got %v", got)
	}
	if len(ch.sent) != 4 {
		t.Errorf("messages: got %d, want 4", len(ch.sent))
	}
}
