package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/civicworks/infra-report/internal/config"
	"github.com/civicworks/infra-report/internal/export"
	"github.com/civicworks/infra-report/internal/models"
	"github.com/civicworks/infra-report/internal/repository"
	"github.com/civicworks/infra-report/internal/workflow"
	"github.com/civicworks/infra-report/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *repository.ReportRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).RunMigrations("../../migrations"))

	reportRepo := repository.NewReportRepository(db.DB, logger)
	entryRepo := repository.NewEntryRepository(db.DB, logger)
	engine := workflow.NewEngine(db, reportRepo, entryRepo, true, logger)
	handler := NewReportHandler(reportRepo, entryRepo, engine, export.NewExporter(logger), logger)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testSecret
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000
	cfg.Logger.Level = "info"

	return NewRouter(cfg, handler, logger), reportRepo
}

func signToken(t *testing.T, actor models.Actor) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Name: actor.Name,
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("missing token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/reports", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/reports", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, models.Actor{ID: "u-1", Name: "Sam", Role: models.RoleCitizen})
		w := doJSON(t, router, http.MethodGet, "/api/v1/reports", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCreateAndTransitionFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	citizenToken := signToken(t, models.Actor{ID: "u-cz", Name: "Sam", Role: models.RoleCitizen})
	managerToken := signToken(t, models.Actor{ID: "u-cm", Name: "Dana", Role: models.RoleCityManager})

	// Citizen submits a report
	w := doJSON(t, router, http.MethodPost, "/api/v1/reports", citizenToken, gin.H{
		"title":       "Streetlight out",
		"description": "Dark corner at night",
		"category":    "streetlight",
		"location":    "Oak Ave 3",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.StagePendingCityManager, created.CurrentStage)
	assert.Equal(t, models.StatusSubmitted, created.Status)
	assert.Equal(t, "u-cz", created.ReporterID)

	// Citizen may not act on the workflow
	w = doJSON(t, router, http.MethodPost, "/api/v1/reports/"+created.ID+"/transition", citizenToken, gin.H{
		"action":     "approve",
		"note":       "self-service",
		"next_stage": "pending_infra_manager",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// City manager approves
	w = doJSON(t, router, http.MethodPost, "/api/v1/reports/"+created.ID+"/transition", managerToken, gin.H{
		"action":     "approve",
		"note":       "verified on site",
		"next_stage": "pending_infra_manager",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.StagePendingInfraManager, updated.CurrentStage)
	assert.Equal(t, models.StatusUnderReview, updated.Status)
	require.Len(t, updated.ApprovalHistory, 1)
	assert.Equal(t, models.StagePendingCityManager, updated.ApprovalHistory[0].Stage)

	// Read-after-write: fetching shows the same state
	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/"+created.ID, citizenToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched models.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, models.StagePendingInfraManager, fetched.CurrentStage)
	require.Len(t, fetched.ApprovalHistory, 1)
}

func TestTransitionErrorMapping(t *testing.T) {
	router, _ := newTestRouter(t)
	managerToken := signToken(t, models.Actor{ID: "u-cm", Name: "Dana", Role: models.RoleCityManager})

	t.Run("unknown report", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/reports/nope/transition", managerToken, gin.H{
			"action":     "approve",
			"note":       "x",
			"next_stage": "pending_infra_manager",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "NotFound", body["kind"])
	})

	t.Run("illegal edge", func(t *testing.T) {
		citizenToken := signToken(t, models.Actor{ID: "u-cz", Name: "Sam", Role: models.RoleCitizen})
		w := doJSON(t, router, http.MethodPost, "/api/v1/reports", citizenToken, gin.H{
			"title":       "Pothole",
			"description": "Big one",
			"category":    "pothole",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var created models.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		w = doJSON(t, router, http.MethodPost, "/api/v1/reports/"+created.ID+"/transition", managerToken, gin.H{
			"action":     "approve",
			"note":       "skip ahead",
			"next_stage": "completed",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "InvalidTransition", body["kind"])
	})

	t.Run("invalid payload", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/reports/any/transition", managerToken, gin.H{
			"note": "missing action",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateReportValidation(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signToken(t, models.Actor{ID: "u-cz", Name: "Sam", Role: models.RoleCitizen})

	t.Run("unknown category", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/reports", token, gin.H{
			"title":       "Hm",
			"description": "x",
			"category":    "ufo-sighting",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("half a coordinate pair", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/v1/reports", token, gin.H{
			"title":       "Drain",
			"description": "x",
			"category":    "drainage",
			"latitude":    52.1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStaffOnlyEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	citizenToken := signToken(t, models.Actor{ID: "u-cz", Name: "Sam", Role: models.RoleCitizen})
	managerToken := signToken(t, models.Actor{ID: "u-cm", Name: "Dana", Role: models.RoleCityManager})

	w := doJSON(t, router, http.MethodGet, "/api/v1/reports/stats", citizenToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/stats", managerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/reports/export", managerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
