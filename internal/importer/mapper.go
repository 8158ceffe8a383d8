package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"catalog-service/internal/models"
)

// MapRow validates one normalized row and builds a persistence-ready
// candidate. Checks short-circuit in order: empty row, required fields,
// duplicate, then candidate construction. Dimension fields are replaced by
// their resolved references; an unresolved reference is left absent, never a
// failure.
func MapRow(row models.NormalizedRow, profile models.ValidationProfile, dims DimensionMaps, isDuplicate bool) models.RowOutcome {
	if IsEmptyRow(row) {
		return rejected(row, models.RejectEmptyRow, "", "Row has no recognized field values")
	}

	for _, field := range profile.RequiredFields() {
		if row.Fields[field] == "" {
			return rejected(row, models.RejectMissingRequiredField, field, fmt.Sprintf("Required field '%s' is missing", field))
		}
	}

	if isDuplicate {
		return rejected(row, models.RejectDuplicateNameOrSlug, "name", "A product with this name or slug already exists")
	}

	candidate := buildCandidate(row, profile, dims)
	return models.RowOutcome{
		Row:     row.Row,
		Status:  models.RowStatusValid,
		Product: candidate,
	}
}

func rejected(row models.NormalizedRow, reason models.RejectReason, field, message string) models.RowOutcome {
	return models.RowOutcome{
		Row:    row.Row,
		Status: models.RowStatusRejected,
		Failure: &models.RowFailure{
			Row:     row.Row,
			Reason:  reason,
			Field:   field,
			Message: message,
			Data:    row.Fields,
		},
	}
}

// buildCandidate coerces field values into a typed product with defaults
// applied and dimension names swapped for resolved references.
func buildCandidate(row models.NormalizedRow, profile models.ValidationProfile, dims DimensionMaps) *models.CandidateProduct {
	fields := row.Fields
	name := fields["name"]

	slug := fields["slug"]
	if slug == "" {
		slug = models.Slugify(name)
	}

	product := models.Product{
		ID:               uuid.New(),
		Name:             name,
		Slug:             slug,
		SKU:              optionalString(fields["sku"]),
		Barcode:          optionalString(fields["barcode"]),
		BuyingPrice:      parseFloatOrDefault(fields["buyingPrice"], 0),
		Price:            parseFloatOrDefault(fields["price"], 0),
		OfferPrice:       parseFloatOrDefault(fields["offerPrice"], 0),
		Discount:         parseFloatOrDefault(fields["discount"], 0),
		StockStatus:      models.CanonicalStockStatus(fields["stockStatus"]),
		CountInStock:     parseIntOrDefault(fields["countInStock"], 0),
		MaxPurchaseQty:   parsePositiveIntOrDefault(fields["maxPurchaseQty"], models.DefaultMaxPurchaseQty),
		LowStockWarning:  parsePositiveIntOrDefault(fields["lowStockWarning"], models.DefaultLowStockWarning),
		ShowStockOut:     parseBoolOrDefault(fields["showStockOut"], true),
		CanPurchase:      parseBoolOrDefault(fields["canPurchase"], true),
		Refundable:       parseBoolOrDefault(fields["refundable"], true),
		IsActive:         parseBoolOrDefault(fields["isActive"], true),
		Featured:         parseBoolOrDefault(fields["featured"], false),
		Weight:           optionalString(fields["weight"]),
		Description:      optionalString(fields["description"]),
		ShortDescription: optionalString(fields["shortDescription"]),
	}
	product.SetTags(parseTags(fields["tags"]))
	product.SetSpecifications(row.Specifications)

	candidate := &models.CandidateProduct{
		Row:     row.Row,
		Product: product,
	}

	if profile == models.ProfileParentChildCategory {
		candidate.Category = dims.Ref(models.DimensionCategory, fields["parentCategory"])
		candidate.SubCategory = dims.Ref(models.DimensionSubCategory, fields["category"])
	} else {
		candidate.Category = dims.Ref(models.DimensionCategory, fields["category"])
	}
	candidate.Brand = dims.Ref(models.DimensionBrand, fields["brand"])
	candidate.Tax = dims.Ref(models.DimensionTax, fields["tax"])
	candidate.Unit = dims.Ref(models.DimensionUnit, fields["unit"])
	candidate.Color = dims.Ref(models.DimensionColor, fields["color"])
	candidate.Warranty = dims.Ref(models.DimensionWarranty, fields["warranty"])
	candidate.Size = dims.Ref(models.DimensionSize, fields["size"])
	candidate.Volume = dims.Ref(models.DimensionVolume, fields["volume"])

	candidate.Product.CategoryID = refID(candidate.Category)
	candidate.Product.SubCategoryID = refID(candidate.SubCategory)
	candidate.Product.BrandID = refID(candidate.Brand)
	candidate.Product.TaxID = refID(candidate.Tax)
	candidate.Product.UnitID = refID(candidate.Unit)
	candidate.Product.ColorID = refID(candidate.Color)
	candidate.Product.WarrantyID = refID(candidate.Warranty)
	candidate.Product.SizeID = refID(candidate.Size)
	candidate.Product.VolumeID = refID(candidate.Volume)

	return candidate
}

func refID(ref *models.DimensionRef) *uuid.UUID {
	if ref == nil {
		return nil
	}
	id := ref.ID
	return &id
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseFloatOrDefault(s string, def float64) float64 {
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return f
}

func parseIntOrDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// parsePositiveIntOrDefault treats zero and negative values as unset; used
// for limits that are meaningless at zero.
func parsePositiveIntOrDefault(s string, def int) int {
	n := parseIntOrDefault(s, def)
	if n <= 0 {
		return def
	}
	return n
}

func parseBoolOrDefault(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return def
	}
	return b
}

func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
