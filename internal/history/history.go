// Package history keeps the append-only, device-local log of article
// read events. The log is the only persisted state the personalization
// core depends on; everything else is derived from it.
package history

import (
	"log"
	"time"

	"github.com/kindlingnews/kindling/internal/classify"
)

// Entry is one "article read" event. One entry exists per distinct
// (ArticleID, Date) pair; entries are never mutated or deleted.
type Entry struct {
	ArticleID  string              `json:"articleId"`
	Title      string              `json:"title"`
	Source     string              `json:"source"`
	Categories []classify.Category `json:"categories"`
	Timestamp  int64               `json:"timestamp"` // epoch millis
	Date       string              `json:"date"`      // YYYY-MM-DD, local time
}

// Store persists the full history sequence. Implementations must treat
// missing state as an empty sequence.
type Store interface {
	Load() ([]Entry, error)
	Save([]Entry) error
}

// Tracker records and reads the history through a Store. Storage failures
// never propagate to callers of the read path: they are logged and
// degrade to empty results.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker creates a Tracker over the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// NewTrackerAt creates a Tracker with a fixed clock, for tests and
// deterministic replay.
func NewTrackerAt(store Store, now func() time.Time) *Tracker {
	return &Tracker{store: store, now: now}
}

// DateOf formats t as a local-time YYYY-MM-DD history date.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}

// TrackRead records that an article was opened. Re-reading the same
// article on the same calendar day is a no-op. The write is best effort;
// the returned error is informational and safe to ignore.
func (t *Tracker) TrackRead(articleID, title, source string, categories []classify.Category) error {
	entries := t.All()
	now := t.now()
	today := DateOf(now)

	for _, e := range entries {
		if e.ArticleID == articleID && e.Date == today {
			return nil
		}
	}

	entry := Entry{
		ArticleID:  articleID,
		Title:      title,
		Source:     source,
		Categories: categories,
		Timestamp:  now.UnixMilli(),
		Date:       today,
	}
	entries = append([]Entry{entry}, entries...)

	if err := t.store.Save(entries); err != nil {
		log.Printf("Failed to save reading history: %v", err)
		return err
	}
	return nil
}

// All returns the history, most recent first. Missing or unreadable
// state yields an empty sequence.
func (t *Tracker) All() []Entry {
	entries, err := t.store.Load()
	if err != nil {
		log.Printf("Failed to load reading history: %v", err)
		return nil
	}
	return entries
}

// Calendar returns a date-to-read-count map covering the trailing `days`
// calendar days including today, pre-seeded with zeros.
func (t *Tracker) Calendar(days int) map[string]int {
	calendar := make(map[string]int, days)

	now := t.now()
	for i := 0; i < days; i++ {
		calendar[DateOf(now.AddDate(0, 0, -i))] = 0
	}

	for _, e := range t.All() {
		if _, ok := calendar[e.Date]; ok {
			calendar[e.Date]++
		}
	}
	return calendar
}
