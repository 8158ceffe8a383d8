package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

type ProductsHandler struct {
	repo            *repository.ProductsRepository
	eventsPublisher *events.Publisher
	log             *logrus.Entry
}

func NewProductsHandler(repo *repository.ProductsRepository, eventsPublisher *events.Publisher, logger *logrus.Logger) *ProductsHandler {
	return &ProductsHandler{
		repo:            repo,
		eventsPublisher: eventsPublisher,
		log:             logger.WithField("component", "products_handler"),
	}
}

// CreateProduct creates a new product
// POST /api/v1/products
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	userID, _ := c.Get("user_id")

	var req models.CreateProductRequest
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

	product := &models.Product{
		Name:             req.Name,
		SKU:              req.SKU,
		Barcode:          req.Barcode,
		Price:            req.Price,
		StockStatus:      models.StockStatusAvailable,
		MaxPurchaseQty:   models.DefaultMaxPurchaseQty,
		LowStockWarning:  models.DefaultLowStockWarning,
		ShowStockOut:     true,
		CanPurchase:      true,
		Refundable:       true,
		IsActive:         true,
		Weight:           req.Weight,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
	}

	if req.Slug != nil {
		product.Slug = *req.Slug
	}
	if req.StockStatus != nil {
		product.StockStatus = models.CanonicalStockStatus(*req.StockStatus)
	}
	if req.BuyingPrice != nil {
		product.BuyingPrice = *req.BuyingPrice
	}
	if req.OfferPrice != nil {
		product.OfferPrice = *req.OfferPrice
	}
	if req.Discount != nil {
		product.Discount = *req.Discount
	}
	if req.CountInStock != nil {
		product.CountInStock = *req.CountInStock
	}
	if req.MaxPurchaseQty != nil && *req.MaxPurchaseQty > 0 {
		product.MaxPurchaseQty = *req.MaxPurchaseQty
	}
	if req.LowStockWarning != nil && *req.LowStockWarning > 0 {
		product.LowStockWarning = *req.LowStockWarning
	}
	if req.ShowStockOut != nil {
		product.ShowStockOut = *req.ShowStockOut
	}
	if req.CanPurchase != nil {
		product.CanPurchase = *req.CanPurchase
	}
	if req.Refundable != nil {
		product.Refundable = *req.Refundable
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	product.SetTags(req.Tags)
	product.SetSpecifications(req.Specifications)

	dimensionIDs := []struct {
		value  *string
		target **uuid.UUID
		field  string
	}{
		{req.CategoryID, &product.CategoryID, "categoryId"},
		{req.SubCategoryID, &product.SubCategoryID, "subCategoryId"},
		{req.BrandID, &product.BrandID, "brandId"},
		{req.TaxID, &product.TaxID, "taxId"},
		{req.UnitID, &product.UnitID, "unitId"},
		{req.ColorID, &product.ColorID, "colorId"},
		{req.WarrantyID, &product.WarrantyID, "warrantyId"},
		{req.SizeID, &product.SizeID, "sizeId"},
		{req.VolumeID, &product.VolumeID, "volumeId"},
	}
	for _, ref := range dimensionIDs {
		id, err := parseUUIDPtr(ref.value)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "VALIDATION_ERROR",
					Message: "Invalid UUID format",
					Field:   ref.field,
				},
			})
			return
		}
		*ref.target = id
	}

	if userID != nil {
		if id, ok := userID.(string); ok && id != "" {
			product.CreatedBy = &id
			product.UpdatedBy = &id
		}
	}

	if err := h.repo.CreateProduct(tenantID.(string), product); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "CREATION_FAILED",
				Message: "Failed to create product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		actorID := ""
		if userID != nil {
			actorID, _ = userID.(string)
		}
		_ = h.eventsPublisher.PublishProductCreated(c.Request.Context(), product, tenantID.(string), actorID)
	}

	c.JSON(http.StatusCreated, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Product created successfully"),
	})
}

// GetProduct retrieves a product by ID
// GET /api/v1/products/:id
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid product ID format",
				Field:   "id",
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(tenantID.(string), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Product not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
	})
}

// ListProducts retrieves products with filters and pagination
// GET /api/v1/products
func (h *ProductsHandler) ListProducts(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")

	var req models.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	products, total, err := h.repo.ListProducts(tenantID.(string), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success:    true,
		Data:       products,
		Pagination: buildPagination(req.Page, req.Limit, total),
	})
}

// UpdateProduct updates a product
// PUT /api/v1/products/:id
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	userID, _ := c.Get("user_id")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid product ID format",
				Field:   "id",
			},
		})
		return
	}

	var req models.UpdateProductRequest
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

	updates, changedFields := buildProductUpdates(&req)
	if userID != nil {
		if id, ok := userID.(string); ok && id != "" {
			updates["updated_by"] = id
		}
	}

	if len(changedFields) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "No fields to update",
			},
		})
		return
	}

	if err := h.repo.UpdateProduct(tenantID.(string), productID, updates); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Product not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "UPDATE_FAILED",
				Message: "Failed to update product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(tenantID.(string), productID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve updated product",
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		actorID := ""
		if userID != nil {
			actorID, _ = userID.(string)
		}
		_ = h.eventsPublisher.PublishProductUpdated(c.Request.Context(), product, changedFields, tenantID.(string), actorID)
	}

	c.JSON(http.StatusOK, models.ProductResponse{
		Success: true,
		Data:    product,
		Message: stringPtr("Product updated successfully"),
	})
}

// DeleteProduct soft deletes a product
// DELETE /api/v1/products/:id
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	userID, _ := c.Get("user_id")

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid product ID format",
				Field:   "id",
			},
		})
		return
	}

	product, err := h.repo.GetProductByID(tenantID.(string), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "NOT_FOUND",
					Message: "Product not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: "Failed to retrieve product",
			},
		})
		return
	}

	if err := h.repo.DeleteProduct(tenantID.(string), productID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DELETE_FAILED",
				Message: "Failed to delete product",
				Details: &models.JSON{"error": err.Error()},
			},
		})
		return
	}

	if h.eventsPublisher != nil {
		actorID := ""
		if userID != nil {
			actorID, _ = userID.(string)
		}
		_ = h.eventsPublisher.PublishProductDeleted(c.Request.Context(), product, tenantID.(string), actorID)
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: stringPtr("Product deleted successfully"),
	})
}

// buildProductUpdates converts the sparse update request into a column update
// map, returning the list of changed field names for the audit event.
func buildProductUpdates(req *models.UpdateProductRequest) (map[string]interface{}, []string) {
	updates := make(map[string]interface{})
	var changed []string

	set := func(column, field string, value interface{}) {
		updates[column] = value
		changed = append(changed, field)
	}

	if req.Name != nil {
		set("name", "name", *req.Name)
	}
	if req.Slug != nil {
		set("slug", "slug", *req.Slug)
	}
	if req.SKU != nil {
		set("sku", "sku", *req.SKU)
	}
	if req.Barcode != nil {
		set("barcode", "barcode", *req.Barcode)
	}
	if req.CategoryID != nil {
		set("category_id", "categoryId", *req.CategoryID)
	}
	if req.SubCategoryID != nil {
		set("sub_category_id", "subCategoryId", *req.SubCategoryID)
	}
	if req.BrandID != nil {
		set("brand_id", "brandId", *req.BrandID)
	}
	if req.TaxID != nil {
		set("tax_id", "taxId", *req.TaxID)
	}
	if req.UnitID != nil {
		set("unit_id", "unitId", *req.UnitID)
	}
	if req.ColorID != nil {
		set("color_id", "colorId", *req.ColorID)
	}
	if req.WarrantyID != nil {
		set("warranty_id", "warrantyId", *req.WarrantyID)
	}
	if req.SizeID != nil {
		set("size_id", "sizeId", *req.SizeID)
	}
	if req.VolumeID != nil {
		set("volume_id", "volumeId", *req.VolumeID)
	}
	if req.BuyingPrice != nil {
		set("buying_price", "buyingPrice", *req.BuyingPrice)
	}
	if req.Price != nil {
		set("price", "price", *req.Price)
	}
	if req.OfferPrice != nil {
		set("offer_price", "offerPrice", *req.OfferPrice)
	}
	if req.Discount != nil {
		set("discount", "discount", *req.Discount)
	}
	if req.StockStatus != nil {
		set("stock_status", "stockStatus", models.CanonicalStockStatus(*req.StockStatus))
	}
	if req.CountInStock != nil {
		set("count_in_stock", "countInStock", *req.CountInStock)
	}
	if req.MaxPurchaseQty != nil {
		set("max_purchase_qty", "maxPurchaseQty", *req.MaxPurchaseQty)
	}
	if req.LowStockWarning != nil {
		set("low_stock_warning", "lowStockWarning", *req.LowStockWarning)
	}
	if req.ShowStockOut != nil {
		set("show_stock_out", "showStockOut", *req.ShowStockOut)
	}
	if req.CanPurchase != nil {
		set("can_purchase", "canPurchase", *req.CanPurchase)
	}
	if req.Refundable != nil {
		set("refundable", "refundable", *req.Refundable)
	}
	if req.IsActive != nil {
		set("is_active", "isActive", *req.IsActive)
	}
	if req.Featured != nil {
		set("featured", "featured", *req.Featured)
	}
	if req.Weight != nil {
		set("weight", "weight", *req.Weight)
	}
	if req.Description != nil {
		set("description", "description", *req.Description)
	}
	if req.ShortDescription != nil {
		set("short_description", "shortDescription", *req.ShortDescription)
	}
	if len(req.Tags) > 0 {
		arr := make(models.JSONArray, len(req.Tags))
		for i, t := range req.Tags {
			arr[i] = t
		}
		set("tags", "tags", arr)
	}
	if len(req.Specifications) > 0 {
		arr := make(models.JSONArray, len(req.Specifications))
		for i, s := range req.Specifications {
			arr[i] = s
		}
		set("specifications", "specifications", arr)
	}

	return updates, changed
}

func buildPagination(page, limit int, total int64) *models.PaginationInfo {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &models.PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

func stringPtr(s string) *string {
	return &s
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
