package importer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
)

// DimensionStore is the dimension entity store the resolver runs against.
type DimensionStore interface {
	FindByNames(tenantID string, kind models.DimensionKind, names []string) ([]models.DimensionEntity, error)
	Create(tenantID string, entity *models.DimensionEntity) (*models.DimensionEntity, bool, error)
}

// CatalogStore is the product store the detector and executor run against.
type CatalogStore interface {
	FindByNamesOrSlugs(tenantID string, names []string, slugs []string) ([]models.Product, error)
	NameOrSlugExists(tenantID string, name string, slug string) (bool, error)
	CreateProduct(tenantID string, product *models.Product) error
}

// Importer runs the bulk import pipeline: normalize, resolve dimensions,
// detect duplicates, validate and map rows, then preview or persist.
type Importer struct {
	dimensions DimensionStore
	catalog    CatalogStore
	log        *logrus.Entry
}

func New(dimensions DimensionStore, catalog CatalogStore, logger *logrus.Logger) *Importer {
	return &Importer{
		dimensions: dimensions,
		catalog:    catalog,
		log:        logger.WithField("component", "importer"),
	}
}

// Run executes one import over the given rows. The whole pipeline completes
// within the calling request; row-level problems annotate that row's outcome
// while only store unavailability aborts the batch with no report.
func (imp *Importer) Run(tenantID string, rows []models.RawRow, opts models.ImportOptions) (*models.BatchReport, error) {
	if opts.Profile == "" {
		opts.Profile = models.ProfileFlatCategory
	}

	imp.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"rows":      len(rows),
		"profile":   opts.Profile,
		"save":      opts.Save,
	}).Info("Starting catalog import")

	normalized := make([]models.NormalizedRow, 0, len(rows))
	for i, raw := range rows {
		row := NormalizeRow(raw)
		if row.Row == 0 {
			row.Row = i + 1 + opts.HeaderOffset
		}
		normalized = append(normalized, row)
	}

	dims, err := imp.resolveDimensions(tenantID, normalized, opts)
	if err != nil {
		return nil, fmt.Errorf("dimension resolution failed: %w", err)
	}

	duplicates, err := imp.findDuplicates(tenantID, normalized)
	if err != nil {
		return nil, fmt.Errorf("duplicate detection failed: %w", err)
	}

	report := &models.BatchReport{
		Total:    len(rows),
		Preview:  !opts.Save,
		Outcomes: make([]models.RowOutcome, 0, len(rows)),
	}

	// Intra-batch collisions: first occurrence of a name or slug wins
	seenNames := make(map[string]bool)
	seenSlugs := make(map[string]bool)

	for i, row := range normalized {
		outcome := MapRow(row, opts.Profile, dims, duplicates[i])

		if outcome.Status == models.RowStatusValid {
			name := outcome.Product.Product.Name
			slug := outcome.Product.Product.Slug
			if seenNames[name] || seenSlugs[slug] {
				outcome = rejected(row, models.RejectDuplicateNameOrSlug, "name", "Duplicate of an earlier row in this batch")
			} else {
				seenNames[name] = true
				seenSlugs[slug] = true
			}
		}

		if outcome.Status == models.RowStatusValid && opts.Save {
			outcome = imp.persistCandidate(tenantID, row, outcome, opts)
		}

		if outcome.Failure != nil {
			report.InvalidCount++
			report.Failures = append(report.Failures, *outcome.Failure)
		} else {
			report.ValidCount++
			if outcome.Status == models.RowStatusSaved {
				report.SavedCount++
			}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	imp.log.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"total":     report.Total,
		"valid":     report.ValidCount,
		"invalid":   report.InvalidCount,
		"saved":     report.SavedCount,
	}).Info("Catalog import finished")

	return report, nil
}

// persistCandidate saves one accepted candidate. The batch-level duplicate
// check is re-run per row right before the write; a failure here annotates
// the row and never aborts the remaining rows.
func (imp *Importer) persistCandidate(tenantID string, row models.NormalizedRow, outcome models.RowOutcome, opts models.ImportOptions) models.RowOutcome {
	product := &outcome.Product.Product
	product.CreatedBy = opts.CreatedBy
	product.UpdatedBy = opts.CreatedBy

	exists, err := imp.catalog.NameOrSlugExists(tenantID, product.Name, product.Slug)
	if err != nil {
		imp.log.WithError(err).WithField("row", row.Row).Warn("Duplicate re-check failed")
		return rejected(row, models.RejectPersistenceError, "", err.Error())
	}
	if exists {
		return rejected(row, models.RejectDuplicateNameOrSlug, "name", "A product with this name or slug already exists")
	}

	if err := imp.catalog.CreateProduct(tenantID, product); err != nil {
		imp.log.WithError(err).WithField("row", row.Row).Warn("Failed to persist imported product")
		return rejected(row, models.RejectPersistenceError, "", err.Error())
	}

	outcome.Status = models.RowStatusSaved
	return outcome
}
