package models

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ValidationProfile selects the required-field set for an import run. The two
// intake paths historically diverged: CSV uploads describe a parent/child
// category tree and require a parent category per row, while spreadsheet
// uploads treat "category" as a flat single level.
type ValidationProfile string

const (
	ProfileParentChildCategory ValidationProfile = "PARENT_CHILD_CATEGORY"
	ProfileFlatCategory        ValidationProfile = "FLAT_CATEGORY"
)

// RequiredFields returns the canonical field names a row must carry under
// this profile.
func (p ValidationProfile) RequiredFields() []string {
	if p == ProfileParentChildCategory {
		return []string{"name", "parentCategory"}
	}
	return []string{"name"}
}

// ProfileForFormat maps an upload format to its default validation profile.
func ProfileForFormat(f ImportFormat) ValidationProfile {
	if f == ImportFormatCSV {
		return ProfileParentChildCategory
	}
	return ProfileFlatCategory
}

// RowKey is the reserved column name carrying the 1-based source row number
// through parsing and normalization.
const RowKey = "_row"

// RawRow is a parsed source row: column header -> raw cell value. Produced by
// the file parsers, consumed once by the normalizer.
type RawRow map[string]string

// NormalizedRow is a RawRow after header aliasing: canonical field name ->
// trimmed value, plus {key, value} specifications for columns the alias table
// does not recognize.
type NormalizedRow struct {
	Row            int               `json:"row"`
	Fields         map[string]string `json:"fields"`
	Specifications []Specification   `json:"specifications,omitempty"`
}

// RejectReason is the closed set of row-level rejection codes.
type RejectReason string

const (
	RejectEmptyRow             RejectReason = "EMPTY_ROW"
	RejectMissingRequiredField RejectReason = "MISSING_REQUIRED_FIELD"
	RejectDuplicateNameOrSlug  RejectReason = "DUPLICATE_NAME_OR_SLUG"
	RejectPersistenceError     RejectReason = "PERSISTENCE_ERROR"
)

// RowStatus represents the terminal state of one input row.
type RowStatus string

const (
	RowStatusValid    RowStatus = "VALID"
	RowStatusSaved    RowStatus = "SAVED"
	RowStatusRejected RowStatus = "REJECTED"
)

// CandidateProduct is a validated, defaulted, dimension-resolved record ready
// to persist, with its dimension references expanded into display objects.
type CandidateProduct struct {
	Row         int           `json:"row"`
	Product     Product       `json:"product"`
	Category    *DimensionRef `json:"category,omitempty"`
	SubCategory *DimensionRef `json:"subCategory,omitempty"`
	Brand       *DimensionRef `json:"brand,omitempty"`
	Tax         *DimensionRef `json:"tax,omitempty"`
	Unit        *DimensionRef `json:"unit,omitempty"`
	Color       *DimensionRef `json:"color,omitempty"`
	Warranty    *DimensionRef `json:"warranty,omitempty"`
	Size        *DimensionRef `json:"size,omitempty"`
	Volume      *DimensionRef `json:"volume,omitempty"`
}

// RowFailure describes why a row was rejected. Data carries the normalized
// row content so clients can show what was submitted.
type RowFailure struct {
	Row     int               `json:"row"`
	Reason  RejectReason      `json:"reason"`
	Field   string            `json:"field,omitempty"`
	Message string            `json:"message,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// RowOutcome is the tagged per-row result: exactly one of Product or Failure
// is set.
type RowOutcome struct {
	Row     int               `json:"row"`
	Status  RowStatus         `json:"status"`
	Product *CandidateProduct `json:"product,omitempty"`
	Failure *RowFailure       `json:"failure,omitempty"`
}

// BatchReport summarizes one import run. Outcomes preserves input row order
// and has one entry per input row; Failures is the rejected subset in the
// same order for client convenience.
type BatchReport struct {
	Total        int          `json:"total"`
	ValidCount   int          `json:"valid"`
	InvalidCount int          `json:"invalid"`
	SavedCount   int          `json:"saved"`
	Preview      bool         `json:"preview"`
	Outcomes     []RowOutcome `json:"results"`
	Failures     []RowFailure `json:"failures,omitempty"`
}

// ImportOptions configures one import run.
type ImportOptions struct {
	Profile      ValidationProfile `json:"profile"`
	Save         bool              `json:"save"`
	HeaderOffset int               `json:"headerOffset"`
	CreatedBy    *string           `json:"createdBy,omitempty"`
}

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ProductImportColumns returns the column definitions for product import
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Blue Cotton T-Shirt"},
		{Name: "parent_category", Description: "Top-level category - auto-creates if not exists (required for CSV uploads)", Required: false, Type: "string", Example: "Apparel"},
		{Name: "category", Description: "Subcategory under the parent - auto-creates if not exists", Required: false, Type: "string", Example: "T-Shirts"},
		{Name: "brand", Description: "Brand name - auto-creates if not exists", Required: false, Type: "string", Example: "Acme"},
		{Name: "sku", Description: "Product SKU", Required: false, Type: "string", Example: "TSH-BLU-001"},
		{Name: "barcode", Description: "Barcode / EAN", Required: false, Type: "string", Example: ""},
		{Name: "buying_price", Description: "Purchase cost", Required: false, Type: "number", Example: "12.50"},
		{Name: "selling_price", Description: "Selling price", Required: false, Type: "number", Example: "29.99"},
		{Name: "offer_price", Description: "Discounted price", Required: false, Type: "number", Example: ""},
		{Name: "discount", Description: "Discount percentage", Required: false, Type: "number", Example: ""},
		{Name: "tax", Description: "Tax name - auto-creates at 5% if not exists", Required: false, Type: "string", Example: "VAT"},
		{Name: "stock_status", Description: "One of: Available Product, Out of Stock, PreOrder", Required: false, Type: "string", Example: "Available Product"},
		{Name: "count_in_stock", Description: "Initial stock quantity", Required: false, Type: "number", Example: "100"},
		{Name: "max_purchase_qty", Description: "Maximum quantity per order (default 10)", Required: false, Type: "number", Example: ""},
		{Name: "low_stock_warning", Description: "Low stock alert threshold (default 5)", Required: false, Type: "number", Example: ""},
		{Name: "show_stock_out", Description: "true/false (default true)", Required: false, Type: "boolean", Example: ""},
		{Name: "can_purchase", Description: "true/false (default true)", Required: false, Type: "boolean", Example: ""},
		{Name: "refundable", Description: "true/false (default true)", Required: false, Type: "boolean", Example: ""},
		{Name: "unit", Description: "Unit name - auto-creates if not exists", Required: false, Type: "string", Example: "Piece"},
		{Name: "weight", Description: "Product weight", Required: false, Type: "string", Example: "0.2kg"},
		{Name: "tags", Description: "Comma-separated tags", Required: false, Type: "string", Example: "summer,cotton"},
		{Name: "color", Description: "Color name - auto-creates if not exists", Required: false, Type: "string", Example: "Blue"},
		{Name: "warranty", Description: "Warranty name - auto-creates if not exists", Required: false, Type: "string", Example: ""},
		{Name: "size", Description: "Size name - auto-creates if not exists", Required: false, Type: "string", Example: "M"},
		{Name: "volume", Description: "Volume name - auto-creates if not exists", Required: false, Type: "string", Example: ""},
		{Name: "description", Description: "Product description", Required: false, Type: "string", Example: ""},
		{Name: "short_description", Description: "Short description", Required: false, Type: "string", Example: ""},
	}
}

// ProductImportTemplate returns the template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}
