package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockStatus represents the purchasability state of a product
type StockStatus string

const (
	StockStatusAvailable  StockStatus = "Available Product"
	StockStatusOutOfStock StockStatus = "Out of Stock"
	StockStatusPreOrder   StockStatus = "PreOrder"
)

// CanonicalStockStatus maps any input to one of the allowed stock statuses,
// falling back to StockStatusAvailable on blank or unrecognized values.
func CanonicalStockStatus(s string) StockStatus {
	switch StockStatus(s) {
	case StockStatusAvailable, StockStatusOutOfStock, StockStatusPreOrder:
		return StockStatus(s)
	}
	return StockStatusAvailable
}

// Defaults applied when a field is blank or unparseable on create/import.
const (
	DefaultMaxPurchaseQty  = 10
	DefaultLowStockWarning = 5
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONArray type for PostgreSQL JSONB (array)
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Specification is a free-form {key, value} attribute attached to a product,
// typically carried over from unrecognized import columns.
type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Product represents a catalog entry. Dimension references (category, brand,
// tax, ...) point at DimensionEntity rows rather than embedding names.
type Product struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string    `json:"tenantId" gorm:"not null;index:idx_products_tenant_id;uniqueIndex:idx_products_tenant_slug"`

	Name    string  `json:"name" gorm:"not null;index"`
	Slug    string  `json:"slug" gorm:"not null;uniqueIndex:idx_products_tenant_slug"`
	SKU     *string `json:"sku,omitempty" gorm:"index"`
	Barcode *string `json:"barcode,omitempty"`

	// Dimension references
	CategoryID    *uuid.UUID `json:"categoryId,omitempty" gorm:"type:uuid;index"`
	SubCategoryID *uuid.UUID `json:"subCategoryId,omitempty" gorm:"type:uuid;index"`
	BrandID       *uuid.UUID `json:"brandId,omitempty" gorm:"type:uuid;index"`
	TaxID         *uuid.UUID `json:"taxId,omitempty" gorm:"type:uuid"`
	UnitID        *uuid.UUID `json:"unitId,omitempty" gorm:"type:uuid"`
	ColorID       *uuid.UUID `json:"colorId,omitempty" gorm:"type:uuid"`
	WarrantyID    *uuid.UUID `json:"warrantyId,omitempty" gorm:"type:uuid"`
	SizeID        *uuid.UUID `json:"sizeId,omitempty" gorm:"type:uuid"`
	VolumeID      *uuid.UUID `json:"volumeId,omitempty" gorm:"type:uuid"`

	BuyingPrice float64 `json:"buyingPrice"`
	Price       float64 `json:"price" gorm:"not null"`
	OfferPrice  float64 `json:"offerPrice"`
	Discount    float64 `json:"discount"`

	StockStatus     StockStatus `json:"stockStatus" gorm:"type:varchar(50);not null;default:'Available Product'"`
	CountInStock    int         `json:"countInStock" gorm:"default:0"`
	MaxPurchaseQty  int         `json:"maxPurchaseQty" gorm:"default:10"`
	LowStockWarning int         `json:"lowStockWarning" gorm:"default:5"`

	ShowStockOut bool `json:"showStockOut" gorm:"default:true"`
	CanPurchase  bool `json:"canPurchase" gorm:"default:true"`
	Refundable   bool `json:"refundable" gorm:"default:true"`
	IsActive     bool `json:"isActive" gorm:"default:true"`
	Featured     bool `json:"featured" gorm:"default:false"`

	Weight           *string    `json:"weight,omitempty"`
	Tags             *JSONArray `json:"tags,omitempty" gorm:"type:jsonb"`
	Description      *string    `json:"description,omitempty"`
	ShortDescription *string    `json:"shortDescription,omitempty"`
	Specifications   *JSONArray `json:"specifications,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
	CreatedBy *string         `json:"createdBy,omitempty"`
	UpdatedBy *string         `json:"updatedBy,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// SetTags stores a string slice as the product's JSONB tags array.
func (p *Product) SetTags(tags []string) {
	if len(tags) == 0 {
		return
	}
	arr := make(JSONArray, len(tags))
	for i, t := range tags {
		arr[i] = t
	}
	p.Tags = &arr
}

// SetSpecifications stores free-form specifications as a JSONB array.
func (p *Product) SetSpecifications(specs []Specification) {
	if len(specs) == 0 {
		return
	}
	arr := make(JSONArray, len(specs))
	for i, s := range specs {
		arr[i] = s
	}
	p.Specifications = &arr
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name             string          `json:"name" binding:"required"`
	Slug             *string         `json:"slug,omitempty"`
	SKU              *string         `json:"sku,omitempty"`
	Barcode          *string         `json:"barcode,omitempty"`
	CategoryID       *string         `json:"categoryId,omitempty"`
	SubCategoryID    *string         `json:"subCategoryId,omitempty"`
	BrandID          *string         `json:"brandId,omitempty"`
	TaxID            *string         `json:"taxId,omitempty"`
	UnitID           *string         `json:"unitId,omitempty"`
	ColorID          *string         `json:"colorId,omitempty"`
	WarrantyID       *string         `json:"warrantyId,omitempty"`
	SizeID           *string         `json:"sizeId,omitempty"`
	VolumeID         *string         `json:"volumeId,omitempty"`
	BuyingPrice      *float64        `json:"buyingPrice,omitempty"`
	Price            float64         `json:"price" binding:"required"`
	OfferPrice       *float64        `json:"offerPrice,omitempty"`
	Discount         *float64        `json:"discount,omitempty"`
	StockStatus      *string         `json:"stockStatus,omitempty"`
	CountInStock     *int            `json:"countInStock,omitempty"`
	MaxPurchaseQty   *int            `json:"maxPurchaseQty,omitempty"`
	LowStockWarning  *int            `json:"lowStockWarning,omitempty"`
	ShowStockOut     *bool           `json:"showStockOut,omitempty"`
	CanPurchase      *bool           `json:"canPurchase,omitempty"`
	Refundable       *bool           `json:"refundable,omitempty"`
	IsActive         *bool           `json:"isActive,omitempty"`
	Featured         *bool           `json:"featured,omitempty"`
	Weight           *string         `json:"weight,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	Description      *string         `json:"description,omitempty"`
	ShortDescription *string         `json:"shortDescription,omitempty"`
	Specifications   []Specification `json:"specifications,omitempty"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name             *string         `json:"name,omitempty"`
	Slug             *string         `json:"slug,omitempty"`
	SKU              *string         `json:"sku,omitempty"`
	Barcode          *string         `json:"barcode,omitempty"`
	CategoryID       *string         `json:"categoryId,omitempty"`
	SubCategoryID    *string         `json:"subCategoryId,omitempty"`
	BrandID          *string         `json:"brandId,omitempty"`
	TaxID            *string         `json:"taxId,omitempty"`
	UnitID           *string         `json:"unitId,omitempty"`
	ColorID          *string         `json:"colorId,omitempty"`
	WarrantyID       *string         `json:"warrantyId,omitempty"`
	SizeID           *string         `json:"sizeId,omitempty"`
	VolumeID         *string         `json:"volumeId,omitempty"`
	BuyingPrice      *float64        `json:"buyingPrice,omitempty"`
	Price            *float64        `json:"price,omitempty"`
	OfferPrice       *float64        `json:"offerPrice,omitempty"`
	Discount         *float64        `json:"discount,omitempty"`
	StockStatus      *string         `json:"stockStatus,omitempty"`
	CountInStock     *int            `json:"countInStock,omitempty"`
	MaxPurchaseQty   *int            `json:"maxPurchaseQty,omitempty"`
	LowStockWarning  *int            `json:"lowStockWarning,omitempty"`
	ShowStockOut     *bool           `json:"showStockOut,omitempty"`
	CanPurchase      *bool           `json:"canPurchase,omitempty"`
	Refundable       *bool           `json:"refundable,omitempty"`
	IsActive         *bool           `json:"isActive,omitempty"`
	Featured         *bool           `json:"featured,omitempty"`
	Weight           *string         `json:"weight,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	Description      *string         `json:"description,omitempty"`
	ShortDescription *string         `json:"shortDescription,omitempty"`
	Specifications   []Specification `json:"specifications,omitempty"`
}

// ListProductsRequest represents listing filters for products
type ListProductsRequest struct {
	Query         *string `form:"q"`
	CategoryID    *string `form:"categoryId"`
	SubCategoryID *string `form:"subCategoryId"`
	BrandID       *string `form:"brandId"`
	StockStatus   *string `form:"stockStatus"`
	Featured      *bool   `form:"featured"`
	IsActive      *bool   `form:"isActive"`
	SortBy        *string `form:"sortBy"`
	SortOrder     *string `form:"sortOrder"`
	Page          int     `form:"page"`
	Limit         int     `form:"limit"`
}

// Response types
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data"`
	Message *string  `json:"message,omitempty"`
}

type ProductListResponse struct {
	Success    bool            `json:"success"`
	Data       []Product       `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
