package importer

import (
	"sort"
	"strconv"
	"strings"

	"catalog-service/internal/models"
)

// fieldAliases maps source column headers to canonical field names. Lookup is
// case-sensitive against these keys; headers are expected pre-lowercased by
// the file parsers except for a few conventional spellings kept as-is.
var fieldAliases = map[string]string{
	"name":         "name",
	"product_name": "name",
	"productname":  "name",
	"title":        "name",

	"slug": "slug",

	"sku": "sku",
	"SKU": "sku",

	"barcode": "barcode",
	"ean":     "barcode",

	"parent_category": "parentCategory",
	"parentcategory":  "parentCategory",
	"parent category": "parentCategory",

	"category":     "category",
	"sub_category": "category",
	"subcategory":  "category",
	"sub category": "category",

	"brand": "brand",

	"buying_price": "buyingPrice",
	"buyingprice":  "buyingPrice",
	"cost_price":   "buyingPrice",

	"selling_price": "price",
	"sellingprice":  "price",
	"price":         "price",

	"offer_price": "offerPrice",
	"offerprice":  "offerPrice",

	"discount": "discount",

	"tax": "tax",

	"stock_status": "stockStatus",
	"stockstatus":  "stockStatus",

	"show_stock_out": "showStockOut",
	"showstockout":   "showStockOut",

	"can_purchase": "canPurchase",
	"canpurchase":  "canPurchase",

	"refundable": "refundable",

	"is_active": "isActive",
	"isactive":  "isActive",

	"featured": "featured",

	"max_purchase_qty": "maxPurchaseQty",
	"maxpurchaseqty":   "maxPurchaseQty",

	"low_stock_warning": "lowStockWarning",
	"lowstockwarning":   "lowStockWarning",

	"unit": "unit",

	"weight": "weight",

	"tags": "tags",

	"description": "description",

	"short_description": "shortDescription",
	"shortdescription":  "shortDescription",

	"count_in_stock": "countInStock",
	"countinstock":   "countInStock",
	"quantity":       "countInStock",
	"stock":          "countInStock",

	"color":  "color",
	"colour": "color",

	"warranty": "warranty",

	"size": "size",

	"volume": "volume",
}

// NormalizeRow maps a raw row's columns to canonical field names via the
// alias table. Blank values are dropped; unrecognized columns with non-blank
// values become specification entries preserving the source header.
func NormalizeRow(raw models.RawRow) models.NormalizedRow {
	normalized := models.NormalizedRow{
		Fields: make(map[string]string),
	}

	for key, value := range raw {
		if key == models.RowKey {
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				normalized.Row = n
			}
			continue
		}

		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}

		if canonical, ok := fieldAliases[key]; ok {
			normalized.Fields[canonical] = trimmed
			continue
		}

		normalized.Specifications = append(normalized.Specifications, models.Specification{
			Key:   key,
			Value: trimmed,
		})
	}

	// Map iteration order is random; keep specification output deterministic
	sort.Slice(normalized.Specifications, func(i, j int) bool {
		return normalized.Specifications[i].Key < normalized.Specifications[j].Key
	})

	return normalized
}

// IsEmptyRow reports whether a normalized row carries no mapped field values.
// Specification-only rows count as empty.
func IsEmptyRow(row models.NormalizedRow) bool {
	return len(row.Fields) == 0
}
