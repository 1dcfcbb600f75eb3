package ingestion

import (
	"context"

	"github.com/cyderes/notion-sync/internal/models"
	"github.com/cyderes/notion-sync/internal/notion"
)

// A stored 0 or false is a value and stops the chain; only null, "" and []
// fall through to the next field.
var (
	productName     = notion.Chain{Fields: []string{"Name", "Product"}, Default: notion.String("Unknown")}
	productBrand    = notion.Chain{Fields: []string{"Brand"}, Default: notion.String("")}
	productCategory = notion.Chain{Fields: []string{"Category", "Type"}, Default: notion.String("")}
	productTags     = notion.Chain{Fields: []string{"Tags", "When"}, Default: notion.List(nil)}
	productStock    = notion.Chain{Fields: []string{"Stock Level", "Stock"}}
	productNotes    = notion.Chain{Fields: []string{"Notes"}, Default: notion.String("")}
)

// fetchSkincare returns every product ordered by name
func (s *Service) fetchSkincare(ctx context.Context) (models.SkincareSummary, error) {
	pages, err := s.source.QueryAll(ctx, s.databases.Skincare, notion.Query{
		Sorts: []notion.Sort{{Property: "Name", Direction: notion.Ascending}},
	})
	if err != nil {
		return models.SkincareSummary{}, err
	}

	products := make([]models.Product, 0, len(pages))
	for _, p := range pages {
		products = append(products, models.Product{
			ID:         p.ID,
			Name:       productName.Resolve(p),
			Brand:      productBrand.Resolve(p),
			Category:   productCategory.Resolve(p),
			Tags:       productTags.Resolve(p),
			StockLevel: productStock.Resolve(p),
			Notes:      productNotes.Resolve(p),
			URL:        p.URL,
		})
	}
	return models.SkincareSummary{Products: products, LastUpdated: s.now()}, nil
}
