package landmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/labormap/core/internal/middleware"
	"github.com/labormap/core/internal/pkg/jwt"
)

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth())
	NewHandler(NewService(db, t.TempDir()), NewImporter(db)).RegisterRoutes(api, middleware.Auth())
	return r
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.SignAdmin(time.Hour)
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateSuggestionIsAlwaysUnpublished(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodPost, "/api/landmarks", "", gin.H{
		"name":             "Suggested Site",
		"lat":              40.0,
		"lng":              -80.0,
		"isPublished":      true,
		"submitterName":    "Pat",
		"submitterEmail":   "pat@example.org",
		"submitterComment": "my grandfather worked here",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["isPublished"])
	// Submitter metadata is not echoed to anonymous callers.
	assert.NotContains(t, resp, "submitterName")
	assert.NotContains(t, resp, "submitterEmail")
}

func TestCreateByAdminCanPublish(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodPost, "/api/landmarks", adminToken(t), gin.H{
		"name":        "Curated Site",
		"lat":         "41.5",
		"lng":         "-81.5",
		"isPublished": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["isPublished"])
	assert.InDelta(t, 41.5, resp["lat"], 1e-9)
}

func TestCreateRejectsMissingFields(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodPost, "/api/landmarks", "", gin.H{"lat": 40.0, "lng": -80.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/landmarks", "", gin.H{"name": "No Coords"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, countLandmarks(t, db))
}

func TestUnpublishedHiddenFromPublic(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	token := adminToken(t)

	w := doJSON(r, http.MethodPost, "/api/landmarks", "", gin.H{
		"name": "Pending Site", "lat": 40.0, "lng": -80.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := int(created["id"].(float64))

	w = doJSON(r, http.MethodGet, "/api/landmarks", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var publicList []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &publicList))
	assert.Empty(t, publicList)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/landmarks/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Admin sees the pending record together with its submitter metadata.
	w = doJSON(r, http.MethodGet, "/api/landmarks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var adminList []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &adminList))
	require.Len(t, adminList, 1)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/landmarks/%d", id), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublishToggle(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	token := adminToken(t)

	w := doJSON(r, http.MethodPost, "/api/landmarks", "", gin.H{
		"name": "Pending Site", "lat": 40.0, "lng": -80.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := int(created["id"].(float64))

	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/api/landmarks/%d/publish", id), token, gin.H{"isPublished": true})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodGet, fmt.Sprintf("/api/landmarks/%d", id), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPatch, "/api/landmarks/999/publish", token, gin.H{"isPublished": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	token := adminToken(t)

	w := doJSON(r, http.MethodPost, "/api/landmarks", token, gin.H{
		"name": "Original", "city": "Chicago", "lat": 41.0, "lng": -87.0, "isPublished": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := int(created["id"].(float64))

	w = doJSON(r, http.MethodPut, fmt.Sprintf("/api/landmarks/%d", id), token, gin.H{"city": "Pullman"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Original", updated["name"])
	assert.Equal(t, "Pullman", updated["city"])
	assert.InDelta(t, 41.0, updated["lat"], 1e-9)
}

func TestDeleteLandmark(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	token := adminToken(t)

	w := doJSON(r, http.MethodPost, "/api/landmarks", token, gin.H{
		"name": "Doomed", "lat": 40.0, "lng": -80.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := int(created["id"].(float64))

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/landmarks/%d", id), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.EqualValues(t, 0, countLandmarks(t, db))

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/landmarks/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportRequiresAuth(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodPost, "/api/landmarks/import", "", []gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestImportRejectsNonArrayPayload(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodPost, "/api/landmarks/import", adminToken(t), gin.H{
		"name": "Single Object", "lat": 40.0, "lng": -80.0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 0, countLandmarks(t, db))
}

func TestImportResponseShape(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodPost, "/api/landmarks/import", adminToken(t), []gin.H{
		{"name": "Site A", "lat": 40.0, "lng": -80.0, "sourceUrl": "https://example.org/a"},
		{"name": "Site B", "lat": "41.5", "lng": "-81.5"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message string      `json:"message"`
		Stats   ImportStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "2 records")
	assert.Equal(t, ImportStats{Added: 2}, resp.Stats)
}

func TestImportValidationErrorReportsIndex(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)

	w := doJSON(r, http.MethodPost, "/api/landmarks/import", adminToken(t), []gin.H{
		{"name": "Fine", "lat": 40.0, "lng": -80.0},
		{"lat": 40.0, "lng": -80.0},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "record 1")
	assert.EqualValues(t, 0, countLandmarks(t, db))
}

func TestListPagination(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db)
	token := adminToken(t)

	for i := 0; i < 5; i++ {
		w := doJSON(r, http.MethodPost, "/api/landmarks", token, gin.H{
			"name": fmt.Sprintf("Site %d", i), "lat": 40.0 + float64(i), "lng": -80.0, "isPublished": true,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(r, http.MethodGet, "/api/landmarks?page=1&size=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var paged struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination struct {
			Total       int64 `json:"total"`
			TotalPage   int   `json:"total_page"`
			CurrentPage int   `json:"current_page"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paged))
	assert.Len(t, paged.Data, 2)
	assert.EqualValues(t, 5, paged.Pagination.Total)

	// Without paging params the full list comes back as a bare array.
	w = doJSON(r, http.MethodGet, "/api/landmarks", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 5)
}
