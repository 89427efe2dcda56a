package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-console/internal/calendar"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/resource"
	"github.com/jwalitptl/clinic-console/internal/view"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/httputil"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
)

// Handler serves store snapshots and derived views to the display layer.
type Handler struct {
	views  *view.Service
	reg    *resource.Registry
	pinger messaging.Pinger
}

// NewHandler creates a new handler instance. pinger may be nil.
func NewHandler(views *view.Service, reg *resource.Registry, pinger messaging.Pinger) *Handler {
	return &Handler{views: views, reg: reg, pinger: pinger}
}

func (h *Handler) RegisterHealth(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/health/live", h.LivenessCheck)
	r.GET("/health/ready", h.ReadinessCheck)
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	stores := r.Group("/stores")
	{
		stores.GET("", h.ListStores)
		stores.GET("/:entity", h.GetSnapshot)
		stores.POST("/:entity/refresh", h.RefreshStore)
		stores.DELETE("/:entity/:id", h.DeleteRecord)
	}

	patients := r.Group("/patients")
	{
		patients.GET("/:id/history", h.GetHistory)
		patients.POST("/:id/history/refresh", h.RefreshHistory)
	}

	r.POST("/hospitalizations/:id/end", h.EndHospitalization)
	r.GET("/calendar", h.GetCalendar)
}

func (h *Handler) Health(c *gin.Context) {
	versions := make(map[string]uint64)
	for _, name := range h.reg.Entities() {
		versions[name] = h.reg.Version(name)
	}
	httputil.RespondWithSuccess(c, gin.H{
		"status":   "healthy",
		"time":     time.Now(),
		"versions": versions,
	})
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.pinger != nil {
		if err := h.pinger.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "DOWN",
				"reason": "notification broker unreachable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ListStores(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.views.Entities())
}

func (h *Handler) GetSnapshot(c *gin.Context) {
	snap, err := h.views.Snapshot(c.Param("entity"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, snap)
}

// RefreshStore reloads a store and answers with its new snapshot. A failed
// reload still leaves the previous collection in the store.
func (h *Handler) RefreshStore(c *gin.Context) {
	entity := c.Param("entity")
	if err := h.reg.Refresh(c.Request.Context(), entity); err != nil {
		_ = c.Error(err)
		httputil.RespondWithError(c, err)
		return
	}
	snap, err := h.views.Snapshot(entity)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, snap)
}

// DeleteRecord expects the display layer to have confirmed the deletion.
func (h *Handler) DeleteRecord(c *gin.Context) {
	entity, id := c.Param("entity"), c.Param("id")
	if err := h.reg.Remove(c.Request.Context(), entity, id); err != nil {
		_ = c.Error(err)
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"entity": entity, "id": id})
}

func (h *Handler) GetHistory(c *gin.Context) {
	history, err := h.views.PatientHistory(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, history)
}

// RefreshHistory loads the patient's record, then serves the history. Sources
// that failed are listed in the history's errors rather than failing the call.
func (h *Handler) RefreshHistory(c *gin.Context) {
	id := c.Param("id")
	if err := h.reg.LoadPatientRecord(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		if errors.Is(err, errors.ErrValidation) {
			httputil.RespondWithError(c, err)
			return
		}
	}
	h.GetHistory(c)
}

func (h *Handler) EndHospitalization(c *gin.Context) {
	var req model.EndHospitalizationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
			return
		}
	}
	stay, err := h.reg.Hospitalizations.End(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stay)
}

// GetCalendar serves ?month=&year=, defaulting to the current month.
func (h *Handler) GetCalendar(c *gin.Context) {
	m := h.views.CurrentMonth()
	monthParam, yearParam := strings.TrimSpace(c.Query("month")), strings.TrimSpace(c.Query("year"))
	if monthParam != "" || yearParam != "" {
		month, err1 := strconv.Atoi(monthParam)
		year, err2 := strconv.Atoi(yearParam)
		if err1 != nil || err2 != nil {
			httputil.RespondWithError(c, errors.BadRequest("month and year must both be numbers", nil))
			return
		}
		var err error
		if m, err = calendar.NewMonth(month, year); err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}
	httputil.RespondWithSuccess(c, h.views.AgendaMonth(m))
}
