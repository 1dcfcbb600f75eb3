package ingestion

import (
	"context"
	"fmt"
	"sort"

	"github.com/cyderes/notion-sync/internal/models"
	"github.com/cyderes/notion-sync/internal/notion"
)

// fetchHabits looks up the record dated today. Without one it returns the
// checkbox columns of the schema so consumers can render empty checkboxes.
func (s *Service) fetchHabits(ctx context.Context) (models.HabitsSummary, error) {
	id := s.databases.Habits
	if id == "" {
		return models.HabitsSummary{HabitNames: []string{}, LastUpdated: s.now()}, nil
	}

	today := s.now().UTC().Format("2006-01-02")
	pages, err := s.source.QueryAll(ctx, id, notion.Query{
		Filter: notion.Filter{
			"property": "Date",
			"date":     map[string]any{"equals": today},
		},
	})
	if err != nil {
		return models.HabitsSummary{}, err
	}

	if len(pages) == 0 {
		db, err := s.source.RetrieveDatabase(ctx, id)
		if err != nil {
			return models.HabitsSummary{}, err
		}
		if db == nil {
			return models.HabitsSummary{}, fmt.Errorf("empty schema for database %s", id)
		}
		return models.HabitsSummary{HabitNames: checkboxNames(db.Properties), LastUpdated: s.now()}, nil
	}

	page := pages[0]
	habits := make(map[string]bool)
	for name, prop := range page.Properties {
		if prop.Type == notion.TypeCheckbox {
			habits[name] = prop.Checkbox
		}
	}
	return models.HabitsSummary{Today: habits, PageID: page.ID, LastUpdated: s.now()}, nil
}

func checkboxNames(props map[string]notion.PropertySchema) []string {
	names := []string{}
	for name, p := range props {
		if p.Type == notion.TypeCheckbox {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
