package importer

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/models"
)

func dimsWith(kind models.DimensionKind, names ...string) DimensionMaps {
	dims := make(DimensionMaps)
	dims[kind] = make(map[string]models.DimensionRef)
	for _, name := range names {
		dims[kind][strings.ToLower(name)] = models.DimensionRef{
			ID:   uuid.New(),
			Name: name,
			Slug: models.Slugify(name),
		}
	}
	return dims
}

func TestMapRowRejectsEmptyRow(t *testing.T) {
	outcome := MapRow(NormalizeRow(models.RawRow{"name": "  "}), models.ProfileFlatCategory, nil, false)

	assert.Equal(t, models.RowStatusRejected, outcome.Status)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, models.RejectEmptyRow, outcome.Failure.Reason)
}

func TestMapRowRequiredFieldsPerProfile(t *testing.T) {
	row := NormalizeRow(models.RawRow{"brand": "Acme"})

	// Flat profile only requires name
	outcome := MapRow(row, models.ProfileFlatCategory, nil, false)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, models.RejectMissingRequiredField, outcome.Failure.Reason)
	assert.Equal(t, "name", outcome.Failure.Field)

	// Parent/child profile also requires parentCategory
	withName := NormalizeRow(models.RawRow{"name": "Widget"})
	outcome = MapRow(withName, models.ProfileParentChildCategory, nil, false)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, models.RejectMissingRequiredField, outcome.Failure.Reason)
	assert.Equal(t, "parentCategory", outcome.Failure.Field)

	// Same row passes under the flat profile
	outcome = MapRow(withName, models.ProfileFlatCategory, nil, false)
	assert.Equal(t, models.RowStatusValid, outcome.Status)
}

func TestMapRowRejectsDuplicates(t *testing.T) {
	row := NormalizeRow(models.RawRow{"name": "Widget"})

	outcome := MapRow(row, models.ProfileFlatCategory, nil, true)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, models.RejectDuplicateNameOrSlug, outcome.Failure.Reason)
	assert.Equal(t, "Widget", outcome.Failure.Data["name"])
}

func TestMapRowChecksEmptyBeforeDuplicate(t *testing.T) {
	outcome := MapRow(NormalizeRow(models.RawRow{}), models.ProfileFlatCategory, nil, true)
	require.NotNil(t, outcome.Failure)
	assert.Equal(t, models.RejectEmptyRow, outcome.Failure.Reason)
}

func TestBuildCandidateDefaults(t *testing.T) {
	row := NormalizeRow(models.RawRow{"name": "Widget"})
	outcome := MapRow(row, models.ProfileFlatCategory, nil, false)

	require.Equal(t, models.RowStatusValid, outcome.Status)
	product := outcome.Product.Product

	assert.Equal(t, "widget", product.Slug)
	assert.Equal(t, models.StockStatusAvailable, product.StockStatus)
	assert.Equal(t, models.DefaultMaxPurchaseQty, product.MaxPurchaseQty)
	assert.Equal(t, models.DefaultLowStockWarning, product.LowStockWarning)
	assert.True(t, product.ShowStockOut)
	assert.True(t, product.CanPurchase)
	assert.True(t, product.Refundable)
	assert.True(t, product.IsActive)
	assert.False(t, product.Featured)
	assert.Zero(t, product.Price)
	assert.Zero(t, product.CountInStock)
	assert.Nil(t, product.SKU)
}

func TestBuildCandidateStockStatusFallback(t *testing.T) {
	row := NormalizeRow(models.RawRow{"name": "Widget", "stock_status": "Backordered"})
	outcome := MapRow(row, models.ProfileFlatCategory, nil, false)

	require.Equal(t, models.RowStatusValid, outcome.Status)
	assert.Equal(t, models.StockStatusAvailable, outcome.Product.Product.StockStatus)

	row = NormalizeRow(models.RawRow{"name": "Widget", "stock_status": "Out of Stock"})
	outcome = MapRow(row, models.ProfileFlatCategory, nil, false)
	assert.Equal(t, models.StockStatusOutOfStock, outcome.Product.Product.StockStatus)
}

func TestBuildCandidateCoercions(t *testing.T) {
	row := NormalizeRow(models.RawRow{
		"name":             "Widget",
		"selling_price":    "9.99",
		"max_purchase_qty": "0",
		"featured":         "true",
		"refundable":       "nonsense",
		"quantity":         "-3",
		"tags":             "new, sale, ,clearance",
	})
	outcome := MapRow(row, models.ProfileFlatCategory, nil, false)

	require.Equal(t, models.RowStatusValid, outcome.Status)
	product := outcome.Product.Product

	assert.Equal(t, 9.99, product.Price)
	// Zero is not a usable purchase limit
	assert.Equal(t, models.DefaultMaxPurchaseQty, product.MaxPurchaseQty)
	assert.True(t, product.Featured)
	assert.True(t, product.Refundable)
	assert.Equal(t, -3, product.CountInStock)
	require.NotNil(t, product.Tags)
	assert.Equal(t, models.JSONArray{"new", "sale", "clearance"}, *product.Tags)
}

func TestBuildCandidateCategoryByProfile(t *testing.T) {
	dims := dimsWith(models.DimensionCategory, "Gadgets")
	dims[models.DimensionSubCategory] = dimsWith(models.DimensionSubCategory, "Widgets")[models.DimensionSubCategory]

	// Parent/child: parentCategory drives the category, category the subcategory
	row := NormalizeRow(models.RawRow{
		"name":            "Widget",
		"parent_category": "Gadgets",
		"category":        "Widgets",
	})
	outcome := MapRow(row, models.ProfileParentChildCategory, dims, false)
	require.Equal(t, models.RowStatusValid, outcome.Status)
	require.NotNil(t, outcome.Product.Category)
	require.NotNil(t, outcome.Product.SubCategory)
	assert.Equal(t, "Gadgets", outcome.Product.Category.Name)
	assert.Equal(t, "Widgets", outcome.Product.SubCategory.Name)
	require.NotNil(t, outcome.Product.Product.CategoryID)
	assert.Equal(t, outcome.Product.Category.ID, *outcome.Product.Product.CategoryID)

	// Flat: category drives the category, no subcategory
	flat := NormalizeRow(models.RawRow{"name": "Widget", "category": "Gadgets"})
	outcome = MapRow(flat, models.ProfileFlatCategory, dims, false)
	require.Equal(t, models.RowStatusValid, outcome.Status)
	require.NotNil(t, outcome.Product.Category)
	assert.Equal(t, "Gadgets", outcome.Product.Category.Name)
	assert.Nil(t, outcome.Product.SubCategory)
}

func TestBuildCandidateUnresolvedReferenceIsNotAFailure(t *testing.T) {
	row := NormalizeRow(models.RawRow{"name": "Widget", "brand": "Unknown Brand"})
	outcome := MapRow(row, models.ProfileFlatCategory, make(DimensionMaps), false)

	require.Equal(t, models.RowStatusValid, outcome.Status)
	assert.Nil(t, outcome.Product.Brand)
	assert.Nil(t, outcome.Product.Product.BrandID)
}

func TestBuildCandidateSpecifications(t *testing.T) {
	row := NormalizeRow(models.RawRow{"name": "Widget", "material": "steel"})
	outcome := MapRow(row, models.ProfileFlatCategory, nil, false)

	require.Equal(t, models.RowStatusValid, outcome.Status)
	require.NotNil(t, outcome.Product.Product.Specifications)
	assert.Len(t, *outcome.Product.Product.Specifications, 1)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "caf-au-lait-2", models.Slugify("Café au lait 2"))
	assert.Equal(t, "widget", models.Slugify("  Widget  "))
	assert.Equal(t, "a-b-c", models.Slugify("A/B/C"))
	assert.Equal(t, "", models.Slugify("!!!"))
}
