package models

import (
	"encoding/json"
	"time"

	"github.com/cyderes/notion-sync/internal/notion"
)

// Document is the snapshot written on every sync
type Document struct {
	SyncedAt   time.Time                     `json:"syncedAt"`
	Habits     FeedResult[HabitsSummary]     `json:"habits"`
	Journal    FeedResult[JournalSummary]    `json:"journal"`
	Skincare   FeedResult[SkincareSummary]   `json:"skincare"`
	Treatments FeedResult[TreatmentsSummary] `json:"treatments"`
}

// FeedError is the JSON shape of a feed that failed
type FeedError struct {
	Error string `json:"error"`
}

// FeedResult holds either a feed summary or the error that replaced it
type FeedResult[T any] struct {
	Data *T
	Err  error
}

// Ok wraps a successful summary
func Ok[T any](data T) FeedResult[T] { return FeedResult[T]{Data: &data} }

// Failed wraps a feed error
func Failed[T any](err error) FeedResult[T] { return FeedResult[T]{Err: err} }

// Failed reports whether the feed errored
func (r FeedResult[T]) Failed() bool { return r.Err != nil }

// MarshalJSON encodes the summary, or {"error": message} when the feed failed
func (r FeedResult[T]) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(FeedError{Error: r.Err.Error()})
	}
	if r.Data == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.Data)
}

// HabitsSummary describes today's habit record. Today is nil when no record
// exists yet for the current date, in which case HabitNames lists the checkboxes.
type HabitsSummary struct {
	Today       map[string]bool
	HabitNames  []string
	PageID      string
	LastUpdated time.Time
}

func (h HabitsSummary) MarshalJSON() ([]byte, error) {
	if h.Today == nil {
		names := h.HabitNames
		if names == nil {
			names = []string{}
		}
		return json.Marshal(struct {
			Today       *map[string]bool `json:"today"`
			HabitNames  []string         `json:"habitNames"`
			LastUpdated time.Time        `json:"lastUpdated"`
		}{nil, names, h.LastUpdated})
	}
	return json.Marshal(struct {
		Today       map[string]bool `json:"today"`
		PageID      string          `json:"pageId"`
		LastUpdated time.Time       `json:"lastUpdated"`
	}{h.Today, h.PageID, h.LastUpdated})
}

// JournalEntry is one flattened journal page
type JournalEntry struct {
	ID    string       `json:"id"`
	Date  notion.Value `json:"date"`
	Title notion.Value `json:"title"`
	Mood  notion.Value `json:"mood"`
	Tags  notion.Value `json:"tags"`
	URL   string       `json:"url"`
}

type JournalSummary struct {
	Entries     []JournalEntry `json:"entries"`
	LastUpdated time.Time      `json:"lastUpdated"`
}

// Product is one flattened skincare page
type Product struct {
	ID         string       `json:"id"`
	Name       notion.Value `json:"name"`
	Brand      notion.Value `json:"brand"`
	Category   notion.Value `json:"category"`
	Tags       notion.Value `json:"tags"`
	StockLevel notion.Value `json:"stockLevel"`
	Notes      notion.Value `json:"notes"`
	URL        string       `json:"url"`
}

type SkincareSummary struct {
	Products    []Product `json:"products"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Treatment is one flattened treatment session
type Treatment struct {
	ID       string       `json:"id"`
	Name     notion.Value `json:"name"`
	Date     notion.Value `json:"date"`
	Duration notion.Value `json:"duration"`
	Notes    notion.Value `json:"notes"`
	Type     notion.Value `json:"type"`
	URL      string       `json:"url"`
}

type TreatmentsSummary struct {
	Treatments  []Treatment `json:"treatments"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// SyncStatus tracks the outcome of the most recent sync run
type SyncStatus struct {
	LastAttempt       time.Time      `json:"last_attempt" bson:"last_attempt" dynamodbav:"last_attempt"`
	LastSuccessfulRun time.Time      `json:"last_successful_run" bson:"last_successful_run,omitempty" dynamodbav:"last_successful_run"`
	Status            string         `json:"status" bson:"status" dynamodbav:"status"` // "success", "partial", "failure"
	ErrorMessage      string         `json:"error_message,omitempty" bson:"error_message" dynamodbav:"error_message"`
	FailedFeeds       []string       `json:"failed_feeds,omitempty" bson:"failed_feeds" dynamodbav:"failed_feeds"`
	RecordCounts      map[string]int `json:"record_counts,omitempty" bson:"record_counts" dynamodbav:"record_counts"`
}

const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailure = "failure"
)
