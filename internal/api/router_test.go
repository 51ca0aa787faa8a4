package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/access"
	iauth "github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/auth"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/database"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	identity := access.IdentityConfig{
		SuperuserID:       "ffffffff-ffff-ffff-ffff-ffffffffffff",
		SystemAccountID:   "00000000-0000-0000-0000-000000000001",
		TemplateAccountID: "00000000-0000-0000-0000-000000000002",
	}
	require.NoError(t, database.AutoMigrateAndSeed(db, identity))

	resolver, err := access.NewResolver(db, identity, nil)
	require.NoError(t, err)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "test",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)

	router, err := NewRouter(db, jwtSvc, resolver)
	require.NoError(t, err)

	return router, db, jwtSvc
}

func createRouterTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func bearerFor(t *testing.T, jwtSvc *iauth.JWTService, userID string) string {
	t.Helper()
	token, err := jwtSvc.GenerateAccessToken(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	router, _, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/invitations", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/access/check", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterInvitationFlow(t *testing.T) {
	router, db, jwtSvc := setupRouter(t)

	creator := createRouterTestUser(t, db, "router-creator")
	outsider := createRouterTestUser(t, db, "router-outsider")

	body, _ := json.Marshal(map[string]any{"email": "guest@example.com"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/invitations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, creator.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data models.Invitation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.ID)

	// Creator may read it back.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/invitations/"+created.Data.ID, nil)
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, creator.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// An outsider sees a 404, not a 403.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/invitations/"+created.Data.ID, nil)
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, outsider.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterAccessCheckAndGrants(t *testing.T) {
	router, db, jwtSvc := setupRouter(t)

	creator := createRouterTestUser(t, db, "check-creator")
	viewer := createRouterTestUser(t, db, "check-viewer")

	inv := &models.Invitation{
		AuditedModel: models.AuditedModel{CreatedByUserID: creator.ID},
		Email:        "check@example.com",
		Code:         "check-code",
		Status:       "pending",
	}
	require.NoError(t, db.Create(inv).Error)

	checkBody, _ := json.Marshal(map[string]any{
		"resource_type": "invitations",
		"resource_id":   inv.ID,
		"permission":    "view",
	})

	// Before any grant the viewer is denied but the resource exists.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/access/check", bytes.NewReader(checkBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, viewer.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"allowed":false`)

	// Grant view through the API as the creator.
	grantBody, _ := json.Marshal(map[string]any{
		"resource_type": "invitations",
		"resource_id":   inv.ID,
		"user_id":       viewer.ID,
		"permission":    "view",
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/grants", bytes.NewReader(grantBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, creator.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/access/check", bytes.NewReader(checkBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, viewer.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"allowed":true`)

	// A check against a missing row maps to 404.
	missingBody, _ := json.Marshal(map[string]any{
		"resource_type": "invitations",
		"resource_id":   "does-not-exist",
		"permission":    "view",
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/access/check", bytes.NewReader(missingBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, jwtSvc, viewer.ID))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	// Decisions are audited.
	var auditCount int64
	require.NoError(t, db.Model(&models.AccessAuditEntry{}).Count(&auditCount).Error)
	require.EqualValues(t, 3, auditCount)
}

func TestRouterMetricsExposeLatencySeries(t *testing.T) {
	router, _, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	metricsRec := httptest.NewRecorder()
	metricsReq, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(metricsRec, metricsReq)
	require.Equal(t, http.StatusOK, metricsRec.Code)

	body := metricsRec.Body.String()
	series := fmt.Sprintf(`framework_api_latency_seconds_count{method=%q,path=%q,status=%q}`, "GET", "/health", "200")
	require.True(t, strings.Contains(body, series), "metrics output missing latency series")
}
