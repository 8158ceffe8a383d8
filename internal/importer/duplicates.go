package importer

import (
	"fmt"

	"catalog-service/internal/models"
)

// findDuplicates flags rows colliding with already-persisted catalog entries
// by name or slug. One batch query covers the whole row set; matching is
// exact post-trim, unlike the case-insensitive dimension lookup.
func (imp *Importer) findDuplicates(tenantID string, rows []models.NormalizedRow) (map[int]bool, error) {
	var names, slugs []string
	nameSeen := make(map[string]bool)
	slugSeen := make(map[string]bool)

	for _, row := range rows {
		if name := row.Fields["name"]; name != "" && !nameSeen[name] {
			nameSeen[name] = true
			names = append(names, name)
		}
		if slug := row.Fields["slug"]; slug != "" && !slugSeen[slug] {
			slugSeen[slug] = true
			slugs = append(slugs, slug)
		}
	}

	if len(names) == 0 && len(slugs) == 0 {
		return map[int]bool{}, nil
	}

	existing, err := imp.catalog.FindByNamesOrSlugs(tenantID, names, slugs)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing products: %w", err)
	}

	existingNames := make(map[string]bool, len(existing))
	existingSlugs := make(map[string]bool, len(existing))
	for _, product := range existing {
		existingNames[product.Name] = true
		existingSlugs[product.Slug] = true
	}

	duplicates := make(map[int]bool)
	for i, row := range rows {
		name := row.Fields["name"]
		slug := row.Fields["slug"]
		if (name != "" && existingNames[name]) || (slug != "" && existingSlugs[slug]) {
			duplicates[i] = true
		}
	}

	return duplicates, nil
}
