package handlers

import (
	"net/http"
	"strconv"

	"github.com/andresuchdata/demandiq/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

type forecastItem struct {
	Date            string  `json:"date"`
	PredictedDemand float64 `json:"predicted_demand"`
}

type forecastResponse struct {
	StoreID            string         `json:"store_id"`
	SKU                string         `json:"sku"`
	ForecastPeriodDays int            `json:"forecast_period_days"`
	Model              string         `json:"model,omitempty"`
	Forecasts          []forecastItem `json:"forecasts"`
}

// GetForecast serves GET /forecast/:store/:sku?days=7.
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	storeID := c.Param("store")
	sku := c.Param("sku")

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	records, err := h.service.GetForecast(c.Request.Context(), storeID, sku, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "no forecast found for store_id=" + storeID + ", sku=" + sku,
		})
		return
	}

	resp := forecastResponse{
		StoreID:            storeID,
		SKU:                sku,
		ForecastPeriodDays: days,
		Model:              records[0].Model,
		Forecasts:          make([]forecastItem, 0, len(records)),
	}
	for _, rec := range records {
		resp.Forecasts = append(resp.Forecasts, forecastItem{
			Date:            rec.ForecastDate.Format("2006-01-02"),
			PredictedDemand: rec.PredictedDemand,
		})
	}

	c.JSON(http.StatusOK, resp)
}
