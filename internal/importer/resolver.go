package importer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"catalog-service/internal/models"
)

// DimensionMaps holds the resolver output: per kind, a map keyed by
// lower-cased trimmed name to the resolved (or proposed) reference.
type DimensionMaps map[models.DimensionKind]map[string]models.DimensionRef

// Ref looks up the resolved reference for a free-text name. Returns nil when
// the name is blank or the kind was never resolved.
func (m DimensionMaps) Ref(kind models.DimensionKind, name string) *models.DimensionRef {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}
	refs, ok := m[kind]
	if !ok {
		return nil
	}
	ref, ok := refs[strings.ToLower(trimmed)]
	if !ok {
		return nil
	}
	return &ref
}

// dimensionFieldKind maps a canonical row field to the dimension kind its
// values resolve against. The category field is profile-dependent: the
// parent/child profile treats it as a subcategory under parentCategory, the
// flat profile as the single-level category.
func dimensionFieldKind(field string, profile models.ValidationProfile) (models.DimensionKind, bool) {
	switch field {
	case "parentCategory":
		return models.DimensionCategory, true
	case "category":
		if profile == models.ProfileParentChildCategory {
			return models.DimensionSubCategory, true
		}
		return models.DimensionCategory, true
	case "brand":
		return models.DimensionBrand, true
	case "tax":
		return models.DimensionTax, true
	case "unit":
		return models.DimensionUnit, true
	case "color":
		return models.DimensionColor, true
	case "warranty":
		return models.DimensionWarranty, true
	case "size":
		return models.DimensionSize, true
	case "volume":
		return models.DimensionVolume, true
	}
	return "", false
}

// resolveOrder fixes the kind resolution sequence so categories exist before
// subcategories look up their parents.
var resolveOrder = []models.DimensionKind{
	models.DimensionCategory,
	models.DimensionSubCategory,
	models.DimensionBrand,
	models.DimensionTax,
	models.DimensionUnit,
	models.DimensionColor,
	models.DimensionWarranty,
	models.DimensionSize,
	models.DimensionVolume,
}

// resolveDimensions batch-resolves every dimension name referenced by the row
// set: one store query per kind for existing entities, then creation of the
// missing ones. In preview mode nothing is persisted; missing entities get
// freshly minted IDs and Proposed refs. Store failures are batch-fatal.
func (imp *Importer) resolveDimensions(tenantID string, rows []models.NormalizedRow, opts models.ImportOptions) (DimensionMaps, error) {
	// Phase 0: collect distinct names per kind, keeping first-seen casing
	names := make(map[models.DimensionKind]map[string]string)
	for _, row := range rows {
		for field, value := range row.Fields {
			kind, ok := dimensionFieldKind(field, opts.Profile)
			if !ok {
				continue
			}
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				continue
			}
			if names[kind] == nil {
				names[kind] = make(map[string]string)
			}
			key := strings.ToLower(trimmed)
			if _, seen := names[kind][key]; !seen {
				names[kind][key] = trimmed
			}
		}
	}

	maps := make(DimensionMaps)
	for _, kind := range resolveOrder {
		wanted := names[kind]
		if len(wanted) == 0 {
			continue
		}

		distinct := make([]string, 0, len(wanted))
		for _, display := range wanted {
			distinct = append(distinct, display)
		}

		existing, err := imp.dimensions.FindByNames(tenantID, kind, distinct)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %s entities: %w", strings.ToLower(string(kind)), err)
		}

		refs := make(map[string]models.DimensionRef, len(wanted))
		for _, entity := range existing {
			refs[strings.ToLower(strings.TrimSpace(entity.Name))] = models.DimensionRef{
				ID:   entity.ID,
				Name: entity.Name,
				Slug: entity.Slug,
			}
		}

		for key, display := range wanted {
			if _, found := refs[key]; found {
				continue
			}

			entity := imp.newDimensionEntity(kind, display, key, rows, maps)
			if opts.Save {
				persisted, created, err := imp.dimensions.Create(tenantID, entity)
				if err != nil {
					return nil, fmt.Errorf("failed to create %s '%s': %w", strings.ToLower(string(kind)), display, err)
				}
				if created {
					imp.log.WithFields(map[string]interface{}{
						"kind": kind,
						"name": persisted.Name,
					}).Info("Created dimension entity during import")
				}
				refs[key] = models.DimensionRef{
					ID:   persisted.ID,
					Name: persisted.Name,
					Slug: persisted.Slug,
				}
			} else {
				refs[key] = models.DimensionRef{
					ID:       uuid.New(),
					Name:     entity.Name,
					Slug:     entity.Slug,
					Proposed: true,
				}
			}
		}

		maps[kind] = refs
	}

	return maps, nil
}

// newDimensionEntity builds a DimensionEntity for a name the store does not
// know yet, applying kind-specific defaults.
func (imp *Importer) newDimensionEntity(kind models.DimensionKind, display, key string, rows []models.NormalizedRow, maps DimensionMaps) *models.DimensionEntity {
	entity := &models.DimensionEntity{
		Kind: kind,
		Name: display,
		Slug: models.Slugify(display),
	}

	switch kind {
	case models.DimensionSubCategory:
		// First row pairing this subcategory with a parent category wins
		if parent := findParentRef(rows, key, maps); parent != nil {
			parentID := parent.ID
			entity.ParentID = &parentID
		}
	case models.DimensionUnit:
		symbol := unitSymbol(display)
		unitType := models.DefaultUnitType
		entity.Symbol = &symbol
		entity.UnitType = &unitType
	case models.DimensionTax:
		rate := models.DefaultTaxRate
		entity.Rate = &rate
	}

	return entity
}

// findParentRef scans the row set for the first row that pairs the given
// subcategory name (lower-cased key) with a non-blank parent category, and
// returns the parent's resolved reference.
func findParentRef(rows []models.NormalizedRow, subKey string, maps DimensionMaps) *models.DimensionRef {
	for _, row := range rows {
		if strings.ToLower(strings.TrimSpace(row.Fields["category"])) != subKey {
			continue
		}
		if parent := maps.Ref(models.DimensionCategory, row.Fields["parentCategory"]); parent != nil {
			return parent
		}
	}
	return nil
}

// unitSymbol derives a unit's display symbol from its name: the name itself
// when short enough, otherwise its first character.
func unitSymbol(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) <= 3 {
		return string(runes)
	}
	return string(runes[:1])
}
