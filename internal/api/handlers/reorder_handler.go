package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ReorderHandler struct {
	service *service.RecommendationService
}

func NewReorderHandler(service *service.RecommendationService) *ReorderHandler {
	return &ReorderHandler{service: service}
}

// GetReorder serves GET /reorder/:store/:sku.
func (h *ReorderHandler) GetReorder(c *gin.Context) {
	storeID := c.Param("store")
	sku := c.Param("sku")

	rec, err := h.service.GetReorder(c.Request.Context(), storeID, sku)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no reorder data found for store_id=" + storeID + ", sku=" + sku,
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// GetAlerts serves GET /alerts. Without a risk_level filter only MED and
// HIGH items are returned, most urgent first.
func (h *ReorderHandler) GetAlerts(c *gin.Context) {
	filter := domain.AlertFilter{Limit: 50}

	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && limit > 0 {
		if limit > 500 {
			limit = 500
		}
		filter.Limit = limit
	}

	if raw := strings.TrimSpace(c.Query("risk_level")); raw != "" {
		level := domain.RiskLevel(strings.ToUpper(raw))
		if !level.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "risk_level must be one of LOW, MED, HIGH"})
			return
		}
		filter.RiskLevel = level
	}

	if stores := strings.TrimSpace(c.Query("store_ids")); stores != "" {
		for _, id := range strings.Split(stores, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.StoreIDs = append(filter.StoreIDs, id)
			}
		}
	}

	recs, err := h.service.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []domain.Recommendation{}
	}

	c.JSON(http.StatusOK, recs)
}

// GetSummary serves GET /reorders/summary.
func (h *ReorderHandler) GetSummary(c *gin.Context) {
	summaries, err := h.service.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if summaries == nil {
		summaries = []domain.RecommendationSummary{}
	}

	c.JSON(http.StatusOK, summaries)
}

// RunSweep serves POST /reorders/run. The sweep is synchronous; the
// response carries the per-tier breakdown and any per-pair failures.
func (h *ReorderHandler) RunSweep(c *gin.Context) {
	result, err := h.service.RunSweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
