package repository

import (
	"context"
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

// DimensionCacheTTL is the cache lifetime for dimension entities; they change
// rarely compared to products.
const DimensionCacheTTL = 30 * time.Minute

var (
	// ErrDimensionNotFound is returned when a dimension entity does not exist
	ErrDimensionNotFound = errors.New("dimension entity not found")
)

type DimensionRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

func NewDimensionRepository(db *gorm.DB, redisClient *redis.Client) *DimensionRepository {
	repo := &DimensionRepository{
		db:    db,
		redis: redisClient,
	}

	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: DimensionCacheTTL,
			KeyPrefix:  "tesseract:catalog:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// invalidateDimensionCaches invalidates cached dimension lists for a tenant/kind
func (r *DimensionRepository) invalidateDimensionCaches(ctx context.Context, tenantID string, kind models.DimensionKind, id *uuid.UUID) {
	if r.cache == nil {
		return
	}
	if id != nil {
		_ = r.cache.Delete(ctx, fmt.Sprintf("dimension:%s:%s", tenantID, id.String()))
	}
	_ = r.cache.DeletePattern(ctx, fmt.Sprintf("dimensions:list:%s:%s:*", tenantID, kind))
}

// FindByNames retrieves live entities of one kind whose name matches any of
// the given names, case-insensitively. Used by the import resolver to
// batch-load existing entities in a single query.
func (r *DimensionRepository) FindByNames(tenantID string, kind models.DimensionKind, names []string) ([]models.DimensionEntity, error) {
	if len(names) == 0 {
		return []models.DimensionEntity{}, nil
	}

	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(n)))
	}

	var entities []models.DimensionEntity
	err := r.db.Where("tenant_id = ? AND kind = ? AND LOWER(name) IN ?", tenantID, kind, lowered).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// Create persists a dimension entity, filling in slug and timestamps. If a
// concurrent writer already created an entity with the same normalized name,
// the existing row is fetched and returned instead of failing.
// Returns the persisted entity and whether this call created it.
func (r *DimensionRepository) Create(tenantID string, entity *models.DimensionEntity) (*models.DimensionEntity, bool, error) {
	entity.TenantID = tenantID
	entity.CreatedAt = time.Now()
	entity.UpdatedAt = time.Now()

	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	if entity.Slug == "" {
		entity.Slug = models.Slugify(entity.Name)
	}
	if entity.IsActive == nil {
		isActive := true
		entity.IsActive = &isActive
	}

	var result *models.DimensionEntity
	var created bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entity).Error; err != nil {
			// Concurrent import may have created the same name; fetch the winner
			if strings.Contains(err.Error(), "duplicate") {
				var existing models.DimensionEntity
				findErr := tx.Where("tenant_id = ? AND kind = ? AND LOWER(name) = LOWER(?)",
					tenantID, entity.Kind, entity.Name).First(&existing).Error
				if findErr == nil {
					result = &existing
					created = false
					return nil
				}
			}
			return fmt.Errorf("failed to create %s '%s': %w", strings.ToLower(string(entity.Kind)), entity.Name, err)
		}
		result = entity
		created = true
		return nil
	})

	if err != nil {
		return nil, false, err
	}

	if created {
		r.invalidateDimensionCaches(context.Background(), tenantID, entity.Kind, nil)
	}
	return result, created, nil
}

// GetByID retrieves a dimension entity by ID with caching
func (r *DimensionRepository) GetByID(tenantID string, id uuid.UUID) (*models.DimensionEntity, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("dimension:%s:%s", tenantID, id.String())

	fetch := func() (*models.DimensionEntity, error) {
		var entity models.DimensionEntity
		if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&entity).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDimensionNotFound
			}
			return nil, err
		}
		return &entity, nil
	}

	if r.cache != nil {
		var entity models.DimensionEntity
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &entity, DimensionCacheTTL, func() (any, error) {
			return fetch()
		})
		if err != nil {
			return nil, err
		}
		return &entity, nil
	}

	return fetch()
}

// BatchGetByIDs retrieves multiple dimension entities in a single query.
// Used to expand resolved references into display objects for reports.
func (r *DimensionRepository) BatchGetByIDs(tenantID string, ids []uuid.UUID) ([]models.DimensionEntity, error) {
	if len(ids) == 0 {
		return []models.DimensionEntity{}, nil
	}

	var entities []models.DimensionEntity
	err := r.db.Where("tenant_id = ? AND id IN ?", tenantID, ids).Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// List retrieves dimension entities of one kind with pagination
func (r *DimensionRepository) List(tenantID string, kind models.DimensionKind, page, limit int) ([]models.DimensionEntity, int64, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("dimensions:list:%s:%s:%d:%d", tenantID, kind, page, limit)

	fetch := func() ([]models.DimensionEntity, int64, error) {
		var entities []models.DimensionEntity
		var total int64
		query := r.db.Model(&models.DimensionEntity{}).Where("tenant_id = ? AND kind = ?", tenantID, kind)
		if err := query.Count(&total).Error; err != nil {
			return nil, 0, err
		}
		offset := (page - 1) * limit
		if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&entities).Error; err != nil {
			return nil, 0, err
		}
		return entities, total, nil
	}

	if r.cache != nil {
		type listResult struct {
			Entities []models.DimensionEntity `json:"entities"`
			Total    int64                    `json:"total"`
		}
		var result listResult
		err := r.cache.GetOrSetJSON(ctx, cacheKey, &result, DimensionCacheTTL, func() (any, error) {
			entities, total, err := fetch()
			if err != nil {
				return nil, err
			}
			return &listResult{Entities: entities, Total: total}, nil
		})
		if err != nil {
			return nil, 0, err
		}
		return result.Entities, result.Total, nil
	}

	return fetch()
}

// Update updates a dimension entity
func (r *DimensionRepository) Update(tenantID string, id uuid.UUID, updates *models.DimensionEntity) error {
	updates.UpdatedAt = time.Now()
	result := r.db.Model(&models.DimensionEntity{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDimensionNotFound
	}

	r.invalidateDimensionCaches(context.Background(), tenantID, updates.Kind, &id)
	return nil
}

// Delete soft deletes a dimension entity
func (r *DimensionRepository) Delete(tenantID string, kind models.DimensionKind, id uuid.UUID) error {
	result := r.db.Where("tenant_id = ? AND kind = ? AND id = ?", tenantID, kind, id).
		Delete(&models.DimensionEntity{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDimensionNotFound
	}

	r.invalidateDimensionCaches(context.Background(), tenantID, kind, &id)
	return nil
}
