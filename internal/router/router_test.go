package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/internal/api"
	"github.com/jwalitptl/clinic-console/internal/handler"
	"github.com/jwalitptl/clinic-console/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-console/internal/middleware"
	"github.com/jwalitptl/clinic-console/internal/resource"
	"github.com/jwalitptl/clinic-console/internal/timeline"
	"github.com/jwalitptl/clinic-console/internal/view"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newClinicBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/patients", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []gin.H{{"id": 7, "nom": "Benali"}, {"id": 8, "nom": "Durand"}}})
	})
	r.GET("/patients/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "nom": "Benali"})
	})
	r.GET("/services", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": gin.H{"message": "Maintenance en cours"}})
	})
	r.DELETE("/patients/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/hospitalisations/patient/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 5, "patientId": c.Param("id"), "dateDebut": "2024-06-01"}})
	})
	r.PUT("/hospitalisations/:id/terminer", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "dateFin": "2024-06-14"})
	})
	r.GET("/operations/patient/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 9, "patientId": c.Param("id"), "dateOperation": "2024-06-02"}})
	})
	r.GET("/consultations/patient/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{})
	})
	r.GET("/rendez-vous", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "date": "20/06/2024"}})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	backend := newClinicBackend(t)
	reg := promclient.NewRegistry()
	m := metrics.NewMetrics("clinic", reg)

	client := api.NewClient(api.Config{BaseURL: backend.URL}, api.WithMetrics(m))
	broker := messaging.NewMemoryBroker()
	t.Cleanup(func() { _ = broker.Close() })
	registry := resource.NewRegistry(client, broker, resource.Options{Logger: zerolog.Nop(), Metrics: m})
	views := view.NewService(registry, timeline.Default(), view.DefaultConfig(), view.WithClock(func() time.Time {
		return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)
	}))

	r := NewRouter(handler.NewHandler(views, registry, broker), prometheus.New("clinic", reg), RouterConfig{
		CORSConfig:     middleware.DefaultCORSConfig(),
		RequestTimeout: 5 * time.Second,
		Logger:         zerolog.Nop(),
	})
	r.Setup()
	return r.Engine()
}

func do(t *testing.T, engine *gin.Engine, method, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealthEndpoints(t *testing.T) {
	engine := newTestRouter(t)

	w, env := do(t, engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))

	w, _ = do(t, engine, http.MethodGet, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshAndSnapshotStore(t *testing.T) {
	engine := newTestRouter(t)

	w, env := do(t, engine, http.MethodPost, "/api/v1/stores/patients/refresh")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))

	var snap struct {
		Entity          string            `json:"entity"`
		Items           []json.RawMessage `json:"items"`
		SuccessMessages map[string]string `json:"successMessages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "patient", snap.Entity)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, "Patient list loaded", snap.SuccessMessages["getAll"])

	w, _ = do(t, engine, http.MethodDelete, "/api/v1/stores/patients/8")
	require.Equal(t, http.StatusOK, w.Code)

	_, env = do(t, engine, http.MethodGet, "/api/v1/stores/patients")
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Len(t, snap.Items, 1)
}

func TestStoreErrors(t *testing.T) {
	engine := newTestRouter(t)

	w, env := do(t, engine, http.MethodGet, "/api/v1/stores/factures")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)

	w, env = do(t, engine, http.MethodPost, "/api/v1/stores/services/refresh")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Maintenance en cours", env.Error.Message)
}

func TestHistoryFlow(t *testing.T) {
	engine := newTestRouter(t)

	w, env := do(t, engine, http.MethodPost, "/api/v1/patients/7/history/refresh")
	require.Equal(t, http.StatusOK, w.Code)

	var history struct {
		PatientID string `json:"patientId"`
		Items     []struct {
			SourceType string `json:"sourceType"`
			ID         string `json:"id"`
			Status     string `json:"derivedStatus"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history.Items, 2)
	assert.Equal(t, "operation", history.Items[0].SourceType)
	assert.Equal(t, "hospitalization", history.Items[1].SourceType)
	assert.Equal(t, "ongoing", history.Items[1].Status)

	w, env = do(t, engine, http.MethodPost, "/api/v1/hospitalizations/5/end")
	require.Equal(t, http.StatusOK, w.Code, string(env.Data))

	_, env = do(t, engine, http.MethodGet, "/api/v1/patients/7/history")
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Equal(t, "ended", history.Items[1].Status)
}

func TestCalendarEndpoint(t *testing.T) {
	engine := newTestRouter(t)

	w, _ := do(t, engine, http.MethodPost, "/api/v1/stores/appointments/refresh")
	require.Equal(t, http.StatusOK, w.Code)

	w, env := do(t, engine, http.MethodGet, "/api/v1/calendar?month=6&year=2024")
	require.Equal(t, http.StatusOK, w.Code)
	var agenda struct {
		Cells []struct {
			HasAppointment bool `json:"hasAppointment"`
			Today          bool `json:"today"`
		} `json:"cells"`
		Highlighted int `json:"highlighted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &agenda))
	assert.Len(t, agenda.Cells, 42)
	assert.Equal(t, 1, agenda.Highlighted)

	w, _ = do(t, engine, http.MethodGet, "/api/v1/calendar")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, engine, http.MethodGet, "/api/v1/calendar?month=juin&year=2024")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, engine, http.MethodGet, "/api/v1/calendar?month=13&year=2024")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newTestRouter(t)
	do(t, engine, http.MethodPost, "/api/v1/stores/patients/refresh")

	w, _ := do(t, engine, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "clinic_store_operations_total")
	assert.Contains(t, body, "clinic_api_requests_total")
	assert.Contains(t, body, "clinic_http_requests_total")
}
