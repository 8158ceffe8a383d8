package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog-service/internal/models"
)

func TestNormalizeRowMapsAliases(t *testing.T) {
	row := NormalizeRow(models.RawRow{
		models.RowKey:    "2",
		"product_name":   "  Widget  ",
		"selling_price":  "9.99",
		"cost_price":     "4.50",
		"quantity":       "12",
		"parentcategory": "Gadgets",
		"colour":         "Red",
	})

	assert.Equal(t, 2, row.Row)
	assert.Equal(t, "Widget", row.Fields["name"])
	assert.Equal(t, "9.99", row.Fields["price"])
	assert.Equal(t, "4.50", row.Fields["buyingPrice"])
	assert.Equal(t, "12", row.Fields["countInStock"])
	assert.Equal(t, "Gadgets", row.Fields["parentCategory"])
	assert.Equal(t, "Red", row.Fields["color"])
	assert.Empty(t, row.Specifications)
}

func TestNormalizeRowDropsBlankValues(t *testing.T) {
	row := NormalizeRow(models.RawRow{
		"name":  "Widget",
		"brand": "   ",
		"sku":   "",
	})

	assert.Equal(t, "Widget", row.Fields["name"])
	_, hasBrand := row.Fields["brand"]
	assert.False(t, hasBrand)
	_, hasSKU := row.Fields["sku"]
	assert.False(t, hasSKU)
}

func TestNormalizeRowUnknownColumnsBecomeSpecifications(t *testing.T) {
	row := NormalizeRow(models.RawRow{
		"name":       "Widget",
		"material":   "steel",
		"country":    "DE",
		"dimensions": "",
	})

	assert.Equal(t, []models.Specification{
		{Key: "country", Value: "DE"},
		{Key: "material", Value: "steel"},
	}, row.Specifications)
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, IsEmptyRow(NormalizeRow(models.RawRow{})))
	assert.True(t, IsEmptyRow(NormalizeRow(models.RawRow{"name": "  ", "brand": ""})))

	// Only unrecognized columns carry values
	assert.True(t, IsEmptyRow(NormalizeRow(models.RawRow{"material": "steel"})))

	assert.False(t, IsEmptyRow(NormalizeRow(models.RawRow{"name": "Widget"})))
}
