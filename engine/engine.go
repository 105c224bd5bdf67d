// Package engine derives the panel's read-model views from the flat message
// log: ranked conversation summaries, per-user threads, text search, and
// usage rollups. It never writes and keeps no state of its own.
package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mustafa-eser/whatsapp-panel/store"
)

// SearchLimit caps search results to the most recent matches.
const SearchLimit = 100

// weekDays is the length of the trailing weekly window, today included.
const weekDays = 7

// ErrEmptyUserID is returned when a thread is requested without a user id.
var ErrEmptyUserID = errors.New("user id must not be empty")

// MessageStore is the read surface the engine needs from the message log.
type MessageStore interface {
	LatestPerUser(ctx context.Context) ([]store.ConversationSummary, error)
	MessagesForUser(ctx context.Context, userID string) ([]store.Message, error)
	SearchMessages(ctx context.Context, query string, limit int) ([]store.Message, error)
	Totals(ctx context.Context, dayStart, dayEnd time.Time) (store.Stats, error)
	DailyCounts(ctx context.Context, start, end time.Time) ([]store.DayCount, error)
	Ping(ctx context.Context) error
}

// WeeklyBucket is one calendar day of the trailing 7-day series. Days with
// no messages appear with zero counts.
type WeeklyBucket struct {
	Date     string `json:"date"`
	Count    int64  `json:"count"`
	Incoming int64  `json:"incoming"`
	Outgoing int64  `json:"outgoing"`
}

type Engine struct {
	store MessageStore
	now   func() time.Time
}

func New(st MessageStore) *Engine {
	return &Engine{
		store: st,
		now:   time.Now,
	}
}

// ListConversations returns one summary per distinct user, most recently
// active first. An empty log yields an empty sequence.
func (e *Engine) ListConversations(ctx context.Context) ([]store.ConversationSummary, error) {
	return e.store.LatestPerUser(ctx)
}

// GetThread returns every message for userID, oldest first. A user with no
// messages yields an empty sequence, not an error.
func (e *Engine) GetThread(ctx context.Context, userID string) ([]store.Message, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	return e.store.MessagesForUser(ctx, userID)
}

// Search returns up to SearchLimit of the newest messages containing query
// case-insensitively. An empty or whitespace-only query is a no-op and never
// reaches the store.
func (e *Engine) Search(ctx context.Context, query string) ([]store.Message, error) {
	if strings.TrimSpace(query) == "" {
		return []store.Message{}, nil
	}
	return e.store.SearchMessages(ctx, query, SearchLimit)
}

// GetStats computes the totals against the store's current state. "Today" is
// the current UTC calendar day.
func (e *Engine) GetStats(ctx context.Context) (store.Stats, error) {
	dayStart := truncateDay(e.now().UTC())
	return e.store.Totals(ctx, dayStart, dayStart.AddDate(0, 0, 1))
}

// GetWeeklyStats returns exactly 7 day buckets covering the trailing window,
// oldest first, with explicit zero entries for silent days.
func (e *Engine) GetWeeklyStats(ctx context.Context) ([]WeeklyBucket, error) {
	today := truncateDay(e.now().UTC())
	start := today.AddDate(0, 0, -(weekDays - 1))
	end := today.AddDate(0, 0, 1)

	counts, err := e.store.DailyCounts(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return fillWeek(today, counts), nil
}

// CheckStore reports whether the message store answers a round-trip.
func (e *Engine) CheckStore(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// fillWeek materializes the 7-bucket series ending at today from the sparse
// per-day counts the store returns.
func fillWeek(today time.Time, counts []store.DayCount) []WeeklyBucket {
	byDay := make(map[string]store.DayCount, len(counts))
	for _, dc := range counts {
		byDay[dc.Day] = dc
	}

	buckets := make([]WeeklyBucket, 0, weekDays)
	for i := weekDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		bucket := WeeklyBucket{Date: day}
		if dc, ok := byDay[day]; ok {
			bucket.Count = dc.Count
			bucket.Incoming = dc.Incoming
			bucket.Outgoing = dc.Outgoing
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
