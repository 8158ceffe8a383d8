package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DimensionKind identifies a reference-entity family that products point to.
type DimensionKind string

const (
	DimensionCategory    DimensionKind = "CATEGORY"
	DimensionSubCategory DimensionKind = "SUB_CATEGORY"
	DimensionBrand       DimensionKind = "BRAND"
	DimensionTax         DimensionKind = "TAX"
	DimensionUnit        DimensionKind = "UNIT"
	DimensionColor       DimensionKind = "COLOR"
	DimensionWarranty    DimensionKind = "WARRANTY"
	DimensionSize        DimensionKind = "SIZE"
	DimensionVolume      DimensionKind = "VOLUME"
)

// AllDimensionKinds lists every kind the service manages, in display order.
var AllDimensionKinds = []DimensionKind{
	DimensionCategory,
	DimensionSubCategory,
	DimensionBrand,
	DimensionTax,
	DimensionUnit,
	DimensionColor,
	DimensionWarranty,
	DimensionSize,
	DimensionVolume,
}

// ParseDimensionKind maps a URL path segment (e.g. "sub-category", "brand")
// to a DimensionKind. Returns false for unknown kinds.
func ParseDimensionKind(s string) (DimensionKind, bool) {
	switch s {
	case "category", "categories":
		return DimensionCategory, true
	case "sub-category", "subcategory", "sub-categories":
		return DimensionSubCategory, true
	case "brand", "brands":
		return DimensionBrand, true
	case "tax", "taxes":
		return DimensionTax, true
	case "unit", "units":
		return DimensionUnit, true
	case "color", "colors":
		return DimensionColor, true
	case "warranty", "warranties":
		return DimensionWarranty, true
	case "size", "sizes":
		return DimensionSize, true
	case "volume", "volumes":
		return DimensionVolume, true
	}
	return "", false
}

// Default values applied when the import engine creates dimension entities
// without explicit attributes.
const (
	DefaultTaxRate  = 5.0
	DefaultUnitType = "piece"
)

// DimensionEntity is a kind-discriminated reference entity (category, brand,
// tax, unit, ...). Identity is the case-insensitive trimmed name per
// (tenant, kind); at most one live entity per normalized name.
//
// Symbol and UnitType are only meaningful for UNIT, Rate for TAX, and
// ParentID for SUB_CATEGORY; they stay nil for other kinds.
type DimensionEntity struct {
	ID       uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID string        `json:"tenantId" gorm:"not null;index:idx_dimensions_tenant_kind;uniqueIndex:idx_dimensions_tenant_kind_slug"`
	Kind     DimensionKind `json:"kind" gorm:"type:varchar(50);not null;index:idx_dimensions_tenant_kind;uniqueIndex:idx_dimensions_tenant_kind_slug"`
	Name     string        `json:"name" gorm:"not null"`
	Slug     string        `json:"slug" gorm:"not null;uniqueIndex:idx_dimensions_tenant_kind_slug"`
	ParentID *uuid.UUID    `json:"parentId,omitempty" gorm:"type:uuid"`
	Symbol   *string       `json:"symbol,omitempty"`
	UnitType *string       `json:"unitType,omitempty"`
	Rate     *float64      `json:"rate,omitempty"`
	IsActive *bool         `json:"isActive" gorm:"default:true"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName specifies the table name for DimensionEntity
func (DimensionEntity) TableName() string {
	return "dimension_entities"
}

// DimensionRef is the display form of a resolved dimension reference, as
// returned in import previews and reports. Proposed marks entities that a
// preview run would create but has not persisted.
type DimensionRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Proposed bool      `json:"proposed,omitempty"`
}

// CreateDimensionRequest represents a request to create a dimension entity
type CreateDimensionRequest struct {
	Name     string   `json:"name" binding:"required"`
	Slug     *string  `json:"slug,omitempty"`
	ParentID *string  `json:"parentId,omitempty"`
	Symbol   *string  `json:"symbol,omitempty"`
	UnitType *string  `json:"unitType,omitempty"`
	Rate     *float64 `json:"rate,omitempty"`
}

// UpdateDimensionRequest represents a request to update a dimension entity
type UpdateDimensionRequest struct {
	Name     *string  `json:"name,omitempty"`
	Slug     *string  `json:"slug,omitempty"`
	ParentID *string  `json:"parentId,omitempty"`
	Symbol   *string  `json:"symbol,omitempty"`
	UnitType *string  `json:"unitType,omitempty"`
	Rate     *float64 `json:"rate,omitempty"`
	IsActive *bool    `json:"isActive,omitempty"`
}

// DimensionResponse wraps a single dimension entity
type DimensionResponse struct {
	Success bool             `json:"success"`
	Data    *DimensionEntity `json:"data"`
	Message *string          `json:"message,omitempty"`
}

// DimensionListResponse wraps a dimension entity listing
type DimensionListResponse struct {
	Success    bool              `json:"success"`
	Data       []DimensionEntity `json:"data"`
	Pagination *PaginationInfo   `json:"pagination"`
}
