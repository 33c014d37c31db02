package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/demandiq/backend-go/internal/domain"
	"github.com/andresuchdata/demandiq/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ModelHandler struct {
	service *service.SelectionService
}

func NewModelHandler(service *service.SelectionService) *ModelHandler {
	return &ModelHandler{service: service}
}

// GetScores serves GET /models/scores, the full selection audit table.
func (h *ModelHandler) GetScores(c *gin.Context) {
	filter := domain.ScoreFilter{
		StoreIDs: splitParam(c.Query("store_ids")),
		SKUs:     splitParam(c.Query("skus")),
		BestOnly: c.Query("best_only") == "true",
	}

	scores, err := h.service.ListScores(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if scores == nil {
		scores = []domain.ModelScore{}
	}

	c.JSON(http.StatusOK, scores)
}

// RunSelection serves POST /models/select.
func (h *ModelHandler) RunSelection(c *gin.Context) {
	result, err := h.service.RunSelection(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func splitParam(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
