package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

// DimensionsHandler serves admin CRUD for the reference entities products
// point to: categories, subcategories, brands, taxes, units, colors,
// warranties, sizes and volumes, selected by the :kind path segment.
type DimensionsHandler struct {
	repo *repository.DimensionRepository
	log  *logrus.Entry
}

func NewDimensionsHandler(repo *repository.DimensionRepository, logger *logrus.Logger) *DimensionsHandler {
	return &DimensionsHandler{
		repo: repo,
		log:  logger.WithField("component", "dimensions_handler"),
	}
}

func (h *DimensionsHandler) kindFromPath(c *gin.Context) (models.DimensionKind, bool) {
	kind, ok := models.ParseDimensionKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "UNKNOWN_KIND",
				Message: "Unknown dimension kind",
				Field:   "kind",
			},
		})
		return "", false
	}
	return kind, true
}

// ListDimensions retrieves entities of one kind with pagination
// GET /api/v1/dimensions/:kind
func (h *DimensionsHandler) ListDimensions(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	kind, ok := h.kindFromPath(c)
	if !ok {
		return
	}

	page := parsePositiveQueryInt(c, "page", 1)
	limit := parsePositiveQueryInt(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	entities, total, err := h.repo.List(tenantID.(string), kind, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve dimension entities",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.DimensionListResponse{
		Success:    true,
		Data:       entities,
		Pagination: buildPagination(page, limit, total),
	})
}

// GetDimension retrieves one entity by ID
// GET /api/v1/dimensions/:kind/:id
func (h *DimensionsHandler) GetDimension(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	kind, ok := h.kindFromPath(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid ID format",
				Field:   "id",
			},
		})
		return
	}

	entity, err := h.repo.GetByID(tenantID.(string), id)
	if err != nil {
		if errors.Is(err, repository.ErrDimensionNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Dimension entity not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve dimension entity",
			},
		})
		return
	}

	if entity.Kind != kind {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "NOT_FOUND",
				Message: "Dimension entity not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.DimensionResponse{
		Success: true,
		Data:    entity,
	})
}

// CreateDimension creates a new entity of one kind
// POST /api/v1/dimensions/:kind
func (h *DimensionsHandler) CreateDimension(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	kind, ok := h.kindFromPath(c)
	if !ok {
		return
	}

	var req models.CreateDimensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	entity := &models.DimensionEntity{
		Kind:     kind,
		Name:     req.Name,
		Symbol:   req.Symbol,
		UnitType: req.UnitType,
		Rate:     req.Rate,
	}
	if req.Slug != nil {
		entity.Slug = *req.Slug
	}

	parentID, err := parseUUIDPtr(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid UUID format",
				Field:   "parentId",
			},
		})
		return
	}
	entity.ParentID = parentID

	// Kind-specific defaults matching the import resolver's behavior
	switch kind {
	case models.DimensionTax:
		if entity.Rate == nil {
			rate := models.DefaultTaxRate
			entity.Rate = &rate
		}
	case models.DimensionUnit:
		if entity.UnitType == nil {
			unitType := models.DefaultUnitType
			entity.UnitType = &unitType
		}
	}

	persisted, created, err := h.repo.Create(tenantID.(string), entity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATION_FAILED",
				Message: "Failed to create dimension entity",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	if !created {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "ALREADY_EXISTS",
				Message: "An entity with this name already exists",
				Field:   "name",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, models.DimensionResponse{
		Success: true,
		Data:    persisted,
		Message: stringPtr("Dimension entity created successfully"),
	})
}

// UpdateDimension updates an entity
// PUT /api/v1/dimensions/:kind/:id
func (h *DimensionsHandler) UpdateDimension(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	kind, ok := h.kindFromPath(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid ID format",
				Field:   "id",
			},
		})
		return
	}

	var req models.UpdateDimensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	updates := &models.DimensionEntity{Kind: kind}
	if req.Name != nil {
		updates.Name = *req.Name
	}
	if req.Slug != nil {
		updates.Slug = *req.Slug
	}
	if req.Symbol != nil {
		updates.Symbol = req.Symbol
	}
	if req.UnitType != nil {
		updates.UnitType = req.UnitType
	}
	if req.Rate != nil {
		updates.Rate = req.Rate
	}
	if req.IsActive != nil {
		updates.IsActive = req.IsActive
	}
	parentID, err := parseUUIDPtr(req.ParentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid UUID format",
				Field:   "parentId",
			},
		})
		return
	}
	updates.ParentID = parentID

	if err := h.repo.Update(tenantID.(string), id, updates); err != nil {
		if errors.Is(err, repository.ErrDimensionNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Dimension entity not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "UPDATE_FAILED",
				Message: "Failed to update dimension entity",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	entity, err := h.repo.GetByID(tenantID.(string), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve updated entity",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.DimensionResponse{
		Success: true,
		Data:    entity,
		Message: stringPtr("Dimension entity updated successfully"),
	})
}

// DeleteDimension soft deletes an entity
// DELETE /api/v1/dimensions/:kind/:id
func (h *DimensionsHandler) DeleteDimension(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	kind, ok := h.kindFromPath(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid ID format",
				Field:   "id",
			},
		})
		return
	}

	if err := h.repo.Delete(tenantID.(string), kind, id); err != nil {
		if errors.Is(err, repository.ErrDimensionNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Dimension entity not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DELETE_FAILED",
				Message: "Failed to delete dimension entity",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Dimension entity deleted successfully"),
	})
}

func parsePositiveQueryInt(c *gin.Context, key string, def int) int {
	value := c.Query(key)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return def
	}
	return n
}
