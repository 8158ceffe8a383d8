package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute // Single product cache
	ProductListCacheTTL = 2 * time.Minute // Product list cache (shorter due to frequent changes)
)

var (
	// ErrProductNotFound is returned when a product does not exist
	ErrProductNotFound = errors.New("product not found")
)

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	repo := &ProductsRepository{
		db:    db,
		redis: redisClient,
	}

	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ProductCacheTTL,
			KeyPrefix:  "tesseract:products:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(tenantID string, prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s:%s", prefix, tenantID, hex.EncodeToString(hash[:]))
}

// invalidateProductCaches invalidates all caches related to a product
func (r *ProductsRepository) invalidateProductCaches(ctx context.Context, tenantID string, productID uuid.UUID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, fmt.Sprintf("product:%s:%s", tenantID, productID.String()))
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

// invalidateTenantProductListCaches invalidates all product list caches for a tenant
func (r *ProductsRepository) invalidateTenantProductListCaches(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("products:list:%s:*", tenantID))
}

// CreateProduct creates a new product with tenant isolation
func (r *ProductsRepository) CreateProduct(tenantID string, product *models.Product) error {
	product.TenantID = tenantID
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if product.Slug == "" {
		product.Slug = models.Slugify(product.Name)
	}

	err := r.db.Create(product).Error
	if err == nil {
		r.invalidateTenantProductListCaches(context.Background(), tenantID)
	}
	return err
}

// GetProductByID retrieves a product by ID with caching
func (r *ProductsRepository) GetProductByID(tenantID string, productID uuid.UUID) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("product:%s:%s", tenantID, productID.String())

	fetch := func() (*models.Product, error) {
		var product models.Product
		if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		return &product, nil
	}

	if r.cache != nil {
		var product models.Product
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &product, ProductCacheTTL, func() (any, error) {
			return fetch()
		})
		if err != nil {
			return nil, err
		}
		return &product, nil
	}

	return fetch()
}

// FindByNamesOrSlugs retrieves existing products whose name or slug matches
// any of the given values, in a single query. Used by the import duplicate
// detector to bound query count for large batches.
func (r *ProductsRepository) FindByNamesOrSlugs(tenantID string, names []string, slugs []string) ([]models.Product, error) {
	if len(names) == 0 && len(slugs) == 0 {
		return []models.Product{}, nil
	}

	query := r.db.Where("tenant_id = ?", tenantID)
	switch {
	case len(names) > 0 && len(slugs) > 0:
		query = query.Where("name IN ? OR slug IN ?", names, slugs)
	case len(names) > 0:
		query = query.Where("name IN ?", names)
	default:
		query = query.Where("slug IN ?", slugs)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// NameOrSlugExists checks whether a product with the given name or slug
// already exists for the tenant. Blank values are not matched.
func (r *ProductsRepository) NameOrSlugExists(tenantID string, name string, slug string) (bool, error) {
	if name == "" && slug == "" {
		return false, nil
	}

	query := r.db.Model(&models.Product{}).Where("tenant_id = ?", tenantID)
	switch {
	case name != "" && slug != "":
		query = query.Where("name = ? OR slug = ?", name, slug)
	case name != "":
		query = query.Where("name = ?", name)
	default:
		query = query.Where("slug = ?", slug)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListProducts retrieves products with filters and pagination
func (r *ProductsRepository) ListProducts(tenantID string, req *models.ListProductsRequest) ([]models.Product, int64, error) {
	ctx := context.Background()
	cacheKey := generateListCacheKey(tenantID, "products:list", req)

	fetch := func() ([]models.Product, int64, error) {
		var products []models.Product
		var total int64

		query := r.db.Model(&models.Product{}).Where("tenant_id = ?", tenantID)
		query = r.applyProductFilters(query, req)

		if err := query.Count(&total).Error; err != nil {
			return nil, 0, err
		}

		if req.SortBy != nil && *req.SortBy != "" {
			sortOrder := "DESC"
			if req.SortOrder != nil && strings.ToUpper(*req.SortOrder) == "ASC" {
				sortOrder = "ASC"
			}
			query = query.Order(fmt.Sprintf("%s %s", *req.SortBy, sortOrder))
		} else {
			query = query.Order("created_at DESC")
		}

		offset := (req.Page - 1) * req.Limit
		if err := query.Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
			return nil, 0, err
		}
		return products, total, nil
	}

	if r.cache != nil {
		type listResult struct {
			Products []models.Product `json:"products"`
			Total    int64            `json:"total"`
		}
		var result listResult
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &result, ProductListCacheTTL, func() (any, error) {
			products, total, err := fetch()
			if err != nil {
				return nil, err
			}
			return &listResult{Products: products, Total: total}, nil
		})
		if err != nil {
			return nil, 0, err
		}
		return result.Products, result.Total, nil
	}

	return fetch()
}

// UpdateProduct updates a product and invalidates cache
func (r *ProductsRepository) UpdateProduct(tenantID string, productID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.Model(&models.Product{}).
		Where("tenant_id = ? AND id = ?", tenantID, productID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	r.invalidateProductCaches(context.Background(), tenantID, productID)
	return nil
}

// DeleteProduct soft deletes a product
func (r *ProductsRepository) DeleteProduct(tenantID string, productID uuid.UUID) error {
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, productID).
		Delete(&models.Product{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	r.invalidateProductCaches(context.Background(), tenantID, productID)
	return nil
}

// Helper function to apply product filters
func (r *ProductsRepository) applyProductFilters(query *gorm.DB, req *models.ListProductsRequest) *gorm.DB {
	if req.Query != nil && *req.Query != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(*req.Query)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ?", term, term)
	}

	if req.CategoryID != nil && *req.CategoryID != "" {
		query = query.Where("category_id = ?", *req.CategoryID)
	}

	if req.SubCategoryID != nil && *req.SubCategoryID != "" {
		query = query.Where("sub_category_id = ?", *req.SubCategoryID)
	}

	if req.BrandID != nil && *req.BrandID != "" {
		query = query.Where("brand_id = ?", *req.BrandID)
	}

	if req.StockStatus != nil && *req.StockStatus != "" {
		query = query.Where("stock_status = ?", *req.StockStatus)
	}

	if req.Featured != nil {
		query = query.Where("featured = ?", *req.Featured)
	}

	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	return query
}
