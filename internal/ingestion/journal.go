package ingestion

import (
	"context"

	"github.com/cyderes/notion-sync/internal/models"
	"github.com/cyderes/notion-sync/internal/notion"
)

const journalLimit = 20

var (
	journalDate  = notion.Chain{Fields: []string{"Date", "Created", notion.CreatedTimeField}}
	journalTitle = notion.Chain{Fields: []string{"Name", "Title"}, Default: notion.String("Untitled")}
	journalMood  = notion.Chain{Fields: []string{"Mood", "Emoji"}, Default: notion.String("✨")}
	journalTags  = notion.Chain{Fields: []string{"Tags"}, Default: notion.List(nil)}
)

// fetchJournal returns the most recent entries, newest first
func (s *Service) fetchJournal(ctx context.Context) (models.JournalSummary, error) {
	pages, err := s.source.QueryAll(ctx, s.databases.Journal, notion.Query{
		Sorts: []notion.Sort{{Property: "Created", Direction: notion.Descending}},
	})
	if err != nil {
		return models.JournalSummary{}, err
	}

	if len(pages) > journalLimit {
		pages = pages[:journalLimit]
	}
	entries := make([]models.JournalEntry, 0, len(pages))
	for _, p := range pages {
		entries = append(entries, models.JournalEntry{
			ID:    p.ID,
			Date:  journalDate.Resolve(p),
			Title: journalTitle.Resolve(p),
			Mood:  journalMood.Resolve(p),
			Tags:  journalTags.Resolve(p),
			URL:   p.URL,
		})
	}
	return models.JournalSummary{Entries: entries, LastUpdated: s.now()}, nil
}
