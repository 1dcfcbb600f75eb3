package ingestion

import (
	"context"

	"github.com/cyderes/notion-sync/internal/models"
	"github.com/cyderes/notion-sync/internal/notion"
)

const treatmentsLimit = 50

// A stored 0 or false is a value and stops the chain; only null, "" and []
// fall through to the next field.
var (
	treatmentName     = notion.Chain{Fields: []string{"Name", "Treatment"}, Default: notion.String("Session")}
	treatmentDate     = notion.Chain{Fields: []string{"Date", notion.CreatedTimeField}}
	treatmentDuration = notion.Chain{Fields: []string{"Duration", "Time"}, Default: notion.String("")}
	treatmentNotes    = notion.Chain{Fields: []string{"Notes", "Details"}, Default: notion.String("")}
	treatmentType     = notion.Chain{Fields: []string{"Type", "Category"}, Default: notion.String("")}
)

// fetchTreatments returns the most recent sessions, newest first
func (s *Service) fetchTreatments(ctx context.Context) (models.TreatmentsSummary, error) {
	pages, err := s.source.QueryAll(ctx, s.databases.Treatments, notion.Query{
		Sorts: []notion.Sort{{Property: "Date", Direction: notion.Descending}},
	})
	if err != nil {
		return models.TreatmentsSummary{}, err
	}

	if len(pages) > treatmentsLimit {
		pages = pages[:treatmentsLimit]
	}
	treatments := make([]models.Treatment, 0, len(pages))
	for _, p := range pages {
		treatments = append(treatments, models.Treatment{
			ID:       p.ID,
			Name:     treatmentName.Resolve(p),
			Date:     treatmentDate.Resolve(p),
			Duration: treatmentDuration.Resolve(p),
			Notes:    treatmentNotes.Resolve(p),
			Type:     treatmentType.Resolve(p),
			URL:      p.URL,
		})
	}
	return models.TreatmentsSummary{Treatments: treatments, LastUpdated: s.now()}, nil
}
