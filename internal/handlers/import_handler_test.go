package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-service/internal/importer"
	"catalog-service/internal/models"
)

type stubDimensionStore struct {
	entities map[models.DimensionKind]map[string]*models.DimensionEntity
}

var _ importer.DimensionStore = (*stubDimensionStore)(nil)

func (s *stubDimensionStore) FindByNames(tenantID string, kind models.DimensionKind, names []string) ([]models.DimensionEntity, error) {
	var found []models.DimensionEntity
	for _, name := range names {
		if entity, ok := s.entities[kind][strings.ToLower(name)]; ok {
			found = append(found, *entity)
		}
	}
	return found, nil
}

func (s *stubDimensionStore) Create(tenantID string, entity *models.DimensionEntity) (*models.DimensionEntity, bool, error) {
	clone := *entity
	clone.ID = uuid.New()
	if s.entities == nil {
		s.entities = make(map[models.DimensionKind]map[string]*models.DimensionEntity)
	}
	if s.entities[clone.Kind] == nil {
		s.entities[clone.Kind] = make(map[string]*models.DimensionEntity)
	}
	s.entities[clone.Kind][strings.ToLower(clone.Name)] = &clone
	return &clone, true, nil
}

type stubCatalogStore struct {
	products []models.Product
}

var _ importer.CatalogStore = (*stubCatalogStore)(nil)

func (s *stubCatalogStore) FindByNamesOrSlugs(tenantID string, names []string, slugs []string) ([]models.Product, error) {
	var found []models.Product
	for _, p := range s.products {
		for _, n := range names {
			if p.Name == n {
				found = append(found, p)
			}
		}
	}
	return found, nil
}

func (s *stubCatalogStore) NameOrSlugExists(tenantID string, name string, slug string) (bool, error) {
	for _, p := range s.products {
		if p.Name == name || p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubCatalogStore) CreateProduct(tenantID string, product *models.Product) error {
	s.products = append(s.products, *product)
	return nil
}

func newImportTestRouter(catalog *stubCatalogStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	imp := importer.New(&stubDimensionStore{}, catalog, logger)
	handler := NewImportHandler(imp, nil, 100, logger)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("tenant_id", "test-tenant")
		c.Set("user_id", uuid.New().String())
	})
	router.POST("/import", handler.ImportProducts)
	router.GET("/import/template", handler.GetImportTemplate)
	return router
}

func uploadCSV(t *testing.T, router *gin.Engine, filename, content string, preview bool) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	if preview {
		require.NoError(t, writer.WriteField("preview", "true"))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportProductsCSVPreview(t *testing.T) {
	catalog := &stubCatalogStore{}
	router := newImportTestRouter(catalog)

	csv := "name *,parent_category *,selling_price\n" +
		"Widget,Gadgets,9.99\n" +
		",,\n" +
		"Gizmo,,\n"

	w := uploadCSV(t, router, "products.csv", csv, true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    models.BatchReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Preview)
	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.ValidCount)
	assert.Equal(t, 2, resp.Data.InvalidCount)

	require.Len(t, resp.Data.Outcomes, 3)
	// Row numbers point at the source file, header included
	assert.Equal(t, 2, resp.Data.Outcomes[0].Row)
	assert.Equal(t, models.RowStatusValid, resp.Data.Outcomes[0].Status)
	assert.Equal(t, models.RejectEmptyRow, resp.Data.Outcomes[1].Failure.Reason)
	// CSV uploads require a parent category
	assert.Equal(t, models.RejectMissingRequiredField, resp.Data.Outcomes[2].Failure.Reason)
	assert.Equal(t, "parentCategory", resp.Data.Outcomes[2].Failure.Field)

	assert.Empty(t, catalog.products)
}

func TestImportProductsCSVSave(t *testing.T) {
	catalog := &stubCatalogStore{}
	router := newImportTestRouter(catalog)

	csv := "name,parent_category\nWidget,Gadgets\n"

	w := uploadCSV(t, router, "products.csv", csv, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.BatchReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.False(t, resp.Data.Preview)
	assert.Equal(t, 1, resp.Data.SavedCount)
	require.Len(t, catalog.products, 1)
	assert.Equal(t, "Widget", catalog.products[0].Name)
}

func TestImportProductsRejectsUnsupportedExtension(t *testing.T) {
	router := newImportTestRouter(&stubCatalogStore{})

	w := uploadCSV(t, router, "products.pdf", "name\nWidget\n", false)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_FORMAT", resp.Error.Code)
}

func TestImportProductsRequiresFile(t *testing.T) {
	router := newImportTestRouter(&stubCatalogStore{})

	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FILE_REQUIRED", resp.Error.Code)
}

func TestImportProductsEnforcesRowLimit(t *testing.T) {
	router := newImportTestRouter(&stubCatalogStore{})

	var sb strings.Builder
	sb.WriteString("name,parent_category\n")
	for i := 0; i < 101; i++ {
		sb.WriteString("Widget ")
		sb.WriteString(strings.Repeat("x", i%5+1))
		sb.WriteString(",Gadgets\n")
	}

	w := uploadCSV(t, router, "products.csv", sb.String(), true)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "TOO_MANY_ROWS", resp.Error.Code)
}

func TestGetImportTemplateJSON(t *testing.T) {
	router := newImportTestRouter(&stubCatalogStore{})

	req := httptest.NewRequest(http.MethodGet, "/import/template", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool                  `json:"success"`
		Template models.ImportTemplate `json:"template"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "products", resp.Template.Entity)
	assert.NotEmpty(t, resp.Template.Columns)
	assert.Equal(t, "name", resp.Template.Columns[0].Name)
	assert.True(t, resp.Template.Columns[0].Required)
}
