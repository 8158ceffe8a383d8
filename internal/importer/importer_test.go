package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

// fakeDimensionStore keeps dimension entities in memory, keyed per kind by
// lower-cased name like the real repository's lookup.
type fakeDimensionStore struct {
	entities map[models.DimensionKind]map[string]*models.DimensionEntity
	created  []*models.DimensionEntity
	findErr  error
}

var _ DimensionStore = (*fakeDimensionStore)(nil)

func newFakeDimensionStore() *fakeDimensionStore {
	return &fakeDimensionStore{
		entities: make(map[models.DimensionKind]map[string]*models.DimensionEntity),
	}
}

func (s *fakeDimensionStore) seed(kind models.DimensionKind, name string) *models.DimensionEntity {
	entity := &models.DimensionEntity{
		ID:   uuid.New(),
		Kind: kind,
		Name: name,
		Slug: models.Slugify(name),
	}
	if s.entities[kind] == nil {
		s.entities[kind] = make(map[string]*models.DimensionEntity)
	}
	s.entities[kind][strings.ToLower(name)] = entity
	return entity
}

func (s *fakeDimensionStore) FindByNames(tenantID string, kind models.DimensionKind, names []string) ([]models.DimensionEntity, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var found []models.DimensionEntity
	for _, name := range names {
		if entity, ok := s.entities[kind][strings.ToLower(strings.TrimSpace(name))]; ok {
			found = append(found, *entity)
		}
	}
	return found, nil
}

func (s *fakeDimensionStore) Create(tenantID string, entity *models.DimensionEntity) (*models.DimensionEntity, bool, error) {
	key := strings.ToLower(strings.TrimSpace(entity.Name))
	if existing, ok := s.entities[entity.Kind][key]; ok {
		return existing, false, nil
	}
	clone := *entity
	clone.ID = uuid.New()
	if s.entities[clone.Kind] == nil {
		s.entities[clone.Kind] = make(map[string]*models.DimensionEntity)
	}
	s.entities[clone.Kind][key] = &clone
	s.created = append(s.created, &clone)
	return &clone, true, nil
}

// fakeCatalogStore keeps persisted products in memory with exact name and
// slug matching.
type fakeCatalogStore struct {
	products     []models.Product
	findErr      error
	createErrFor map[string]error
}

var _ CatalogStore = (*fakeCatalogStore)(nil)

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{createErrFor: make(map[string]error)}
}

func (s *fakeCatalogStore) FindByNamesOrSlugs(tenantID string, names []string, slugs []string) ([]models.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}
	slugSet := make(map[string]bool, len(slugs))
	for _, sl := range slugs {
		slugSet[sl] = true
	}
	var found []models.Product
	for _, p := range s.products {
		if nameSet[p.Name] || slugSet[p.Slug] {
			found = append(found, p)
		}
	}
	return found, nil
}

func (s *fakeCatalogStore) NameOrSlugExists(tenantID string, name string, slug string) (bool, error) {
	for _, p := range s.products {
		if p.Name == name || p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeCatalogStore) CreateProduct(tenantID string, product *models.Product) error {
	if err := s.createErrFor[product.Name]; err != nil {
		return err
	}
	s.products = append(s.products, *product)
	return nil
}

func newTestImporter(dims *fakeDimensionStore, catalog *fakeCatalogStore) *Importer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(dims, catalog, logger)
}

func csvRow(n string, fields models.RawRow) models.RawRow {
	row := models.RawRow{models.RowKey: n}
	for k, v := range fields {
		row[k] = v
	}
	return row
}

func TestRunPreviewAcceptsNewProduct(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget", "parent_category": "Gadgets", "selling_price": "9.99"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{
		Profile: models.ProfileParentChildCategory,
	})
	require.NoError(t, err)

	assert.True(t, report.Preview)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.ValidCount)
	assert.Zero(t, report.InvalidCount)
	assert.Zero(t, report.SavedCount)

	require.Len(t, report.Outcomes, 1)
	outcome := report.Outcomes[0]
	assert.Equal(t, models.RowStatusValid, outcome.Status)
	assert.Equal(t, 2, outcome.Row)

	product := outcome.Product.Product
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, 9.99, product.Price)
	assert.Equal(t, models.StockStatusAvailable, product.StockStatus)
	assert.Equal(t, models.DefaultMaxPurchaseQty, product.MaxPurchaseQty)

	// The unknown category is proposed, not persisted
	require.NotNil(t, outcome.Product.Category)
	assert.Equal(t, "Gadgets", outcome.Product.Category.Name)
	assert.True(t, outcome.Product.Category.Proposed)
	assert.Empty(t, dims.created)
	assert.Empty(t, catalog.products)
}

func TestRunSavePersistsProductsAndDimensions(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget", "parent_category": "Gadgets", "category": "Widgets", "brand": "Acme"}),
		csvRow("3", models.RawRow{"name": "Gizmo", "parent_category": "Gadgets"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{
		Profile: models.ProfileParentChildCategory,
		Save:    true,
	})
	require.NoError(t, err)

	assert.False(t, report.Preview)
	assert.Equal(t, 2, report.SavedCount)
	require.Len(t, catalog.products, 2)
	assert.Equal(t, "Widget", catalog.products[0].Name)
	assert.Equal(t, "widget", catalog.products[0].Slug)

	// Gadgets created once and shared by both rows
	require.Len(t, dims.entities[models.DimensionCategory], 1)
	gadgets := dims.entities[models.DimensionCategory]["gadgets"]
	require.NotNil(t, catalog.products[0].CategoryID)
	require.NotNil(t, catalog.products[1].CategoryID)
	assert.Equal(t, gadgets.ID, *catalog.products[0].CategoryID)
	assert.Equal(t, gadgets.ID, *catalog.products[1].CategoryID)

	// Subcategory is parented under the category from the same row
	widgets := dims.entities[models.DimensionSubCategory]["widgets"]
	require.NotNil(t, widgets)
	require.NotNil(t, widgets.ParentID)
	assert.Equal(t, gadgets.ID, *widgets.ParentID)
}

func TestRunReusesExistingDimensionsCaseInsensitively(t *testing.T) {
	dims := newFakeDimensionStore()
	existing := dims.seed(models.DimensionBrand, "Acme")
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget", "brand": "ACME"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{Save: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SavedCount)
	assert.Empty(t, dims.created)
	require.NotNil(t, catalog.products[0].BrandID)
	assert.Equal(t, existing.ID, *catalog.products[0].BrandID)
}

func TestRunCreatedUnitAndTaxDefaults(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget", "unit": "kg", "tax": "VAT Standard"}),
		csvRow("3", models.RawRow{"name": "Gizmo", "unit": "Kilogram"}),
	}

	_, err := imp.Run("tenant-1", rows, models.ImportOptions{Save: true})
	require.NoError(t, err)

	kg := dims.entities[models.DimensionUnit]["kg"]
	require.NotNil(t, kg)
	require.NotNil(t, kg.Symbol)
	assert.Equal(t, "kg", *kg.Symbol)
	require.NotNil(t, kg.UnitType)
	assert.Equal(t, models.DefaultUnitType, *kg.UnitType)

	// Long unit names abbreviate to the first character
	kilogram := dims.entities[models.DimensionUnit]["kilogram"]
	require.NotNil(t, kilogram)
	require.NotNil(t, kilogram.Symbol)
	assert.Equal(t, "K", *kilogram.Symbol)

	vat := dims.entities[models.DimensionTax]["vat standard"]
	require.NotNil(t, vat)
	require.NotNil(t, vat.Rate)
	assert.Equal(t, models.DefaultTaxRate, *vat.Rate)
}

func TestRunRejectsExistingProducts(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	catalog.products = append(catalog.products, models.Product{Name: "Widget", Slug: "widget"})
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget"}),
		csvRow("3", models.RawRow{"name": "Gizmo"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{Save: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.InvalidCount)
	assert.Equal(t, 1, report.SavedCount)

	require.Len(t, report.Outcomes, 2)
	require.NotNil(t, report.Outcomes[0].Failure)
	assert.Equal(t, models.RejectDuplicateNameOrSlug, report.Outcomes[0].Failure.Reason)
	assert.Equal(t, models.RowStatusSaved, report.Outcomes[1].Status)

	// Only Gizmo was added
	assert.Len(t, catalog.products, 2)
}

func TestRunRejectsIntraBatchDuplicates(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget", "selling_price": "9.99"}),
		csvRow("3", models.RawRow{"name": "Widget", "selling_price": "19.99"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{Save: true})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SavedCount)
	assert.Equal(t, 1, report.InvalidCount)

	// First occurrence wins
	assert.Equal(t, models.RowStatusSaved, report.Outcomes[0].Status)
	require.NotNil(t, report.Outcomes[1].Failure)
	assert.Equal(t, models.RejectDuplicateNameOrSlug, report.Outcomes[1].Failure.Reason)
	require.Len(t, catalog.products, 1)
	assert.Equal(t, 9.99, catalog.products[0].Price)
}

func TestRunOutcomesMatchInputOrder(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget"}),
		csvRow("3", models.RawRow{}),
		csvRow("4", models.RawRow{"brand": "Acme"}),
		csvRow("5", models.RawRow{"name": "Gizmo"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{})
	require.NoError(t, err)

	require.Len(t, report.Outcomes, len(rows))
	assert.Equal(t, []int{2, 3, 4, 5}, []int{
		report.Outcomes[0].Row,
		report.Outcomes[1].Row,
		report.Outcomes[2].Row,
		report.Outcomes[3].Row,
	})

	assert.Equal(t, models.RowStatusValid, report.Outcomes[0].Status)
	assert.Equal(t, models.RejectEmptyRow, report.Outcomes[1].Failure.Reason)
	assert.Equal(t, models.RejectMissingRequiredField, report.Outcomes[2].Failure.Reason)
	assert.Equal(t, models.RowStatusValid, report.Outcomes[3].Status)

	assert.Equal(t, 2, report.ValidCount)
	assert.Equal(t, 2, report.InvalidCount)
	assert.Len(t, report.Failures, 2)
}

func TestRunPersistenceErrorDoesNotAbortBatch(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	catalog.createErrFor["Widget"] = errors.New("connection reset")
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget"}),
		csvRow("3", models.RawRow{"name": "Gizmo"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{Save: true})
	require.NoError(t, err)

	require.NotNil(t, report.Outcomes[0].Failure)
	assert.Equal(t, models.RejectPersistenceError, report.Outcomes[0].Failure.Reason)
	assert.Equal(t, models.RowStatusSaved, report.Outcomes[1].Status)
	assert.Equal(t, 1, report.SavedCount)
}

func TestRunStoreFailureIsBatchFatal(t *testing.T) {
	dims := newFakeDimensionStore()
	dims.findErr = errors.New("connection refused")
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget", "brand": "Acme"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{})
	assert.Nil(t, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension resolution failed")

	dims.findErr = nil
	catalog.findErr = errors.New("connection refused")
	report, err = imp.Run("tenant-1", rows, models.ImportOptions{})
	assert.Nil(t, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate detection failed")
}

func TestRunSameNameResolvesToSameReference(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget", "category": "Gadgets"}),
		csvRow("3", models.RawRow{"name": "Gizmo", "category": "gadgets"}),
	}

	report, err := imp.Run("tenant-1", rows, models.ImportOptions{})
	require.NoError(t, err)

	first := report.Outcomes[0].Product.Category
	second := report.Outcomes[1].Product.Category
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
}

func TestRunAppliesCreatedByOnSave(t *testing.T) {
	dims := newFakeDimensionStore()
	catalog := newFakeCatalogStore()
	imp := newTestImporter(dims, catalog)

	actor := uuid.New().String()
	rows := []models.RawRow{
		csvRow("2", models.RawRow{"name": "Widget"}),
	}

	_, err := imp.Run("tenant-1", rows, models.ImportOptions{Save: true, CreatedBy: &actor})
	require.NoError(t, err)

	require.Len(t, catalog.products, 1)
	require.NotNil(t, catalog.products[0].CreatedBy)
	assert.Equal(t, actor, *catalog.products[0].CreatedBy)
}
