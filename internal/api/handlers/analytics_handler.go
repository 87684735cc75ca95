package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/pipestock/backend-go/internal/domain"
	"github.com/andresuchdata/pipestock/backend-go/internal/service"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) parseFilter(c *gin.Context) domain.HeatmapFilter {
	filter := domain.HeatmapFilter{}

	if date := strings.TrimSpace(c.Query("snapshot_date")); date != "" {
		filter.SnapshotDate = date
	}

	if source := strings.TrimSpace(c.Query("source")); source != "" {
		switch strings.ToLower(source) {
		case "stock":
			filter.Source = domain.SourceStock
		case "incoming":
			filter.Source = domain.SourceIncoming
		case "reservations":
			filter.Source = domain.SourceReservations
		}
	}

	if grade := strings.TrimSpace(c.Query("grade")); grade != "" {
		filter.Grade = grade
	}

	if spec := strings.TrimSpace(c.Query("specification")); spec != "" {
		filter.Specification = strings.ToUpper(spec)
	}

	return filter
}

func (h *AnalyticsHandler) GetHeatmap(c *gin.Context) {
	filter := h.parseFilter(c)
	if filter.SnapshotDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_date is required"})
		return
	}

	table, err := h.service.Heatmap(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build heatmap", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, table)
}

func (h *AnalyticsHandler) GetFreeForSale(c *gin.Context) {
	date := strings.TrimSpace(c.Query("snapshot_date"))
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_date is required"})
		return
	}

	records, err := h.service.FreeForSale(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute free for sale", "details": err.Error()})
		return
	}
	if records == nil {
		records = make([]domain.AggregatedRecord, 0)
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot_date": date,
		"records":       records,
	})
}

func (h *AnalyticsHandler) GetComparison(c *gin.Context) {
	oldDate := strings.TrimSpace(c.Query("old_date"))
	newDate := strings.TrimSpace(c.Query("new_date"))
	if oldDate == "" || newDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "old_date and new_date are required"})
		return
	}

	records, err := h.service.Comparison(c.Request.Context(), oldDate, newDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compare snapshots", "details": err.Error()})
		return
	}
	if records == nil {
		records = make([]domain.ComparisonRecord, 0)
	}

	// Optional status filter, e.g. ?status=increased
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		parsed, ok := domain.ParseComparisonStatus(status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter", "status": status})
			return
		}
		filtered := make([]domain.ComparisonRecord, 0, len(records))
		for _, rec := range records {
			if rec.Status == parsed {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"old_date": oldDate,
		"new_date": newDate,
		"records":  records,
	})
}

func (h *AnalyticsHandler) GetPriority(c *gin.Context) {
	date := strings.TrimSpace(c.Query("snapshot_date"))
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_date is required"})
		return
	}

	threshold := 0.0
	if v := strings.TrimSpace(c.Query("threshold_mt")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			threshold = f
		}
	}

	topN := 0
	if v := strings.TrimSpace(c.Query("top_n")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			topN = n
		}
	}

	ranked, err := h.service.Priority(c.Request.Context(), date, threshold, topN)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rank specifications", "details": err.Error()})
		return
	}
	if ranked == nil {
		ranked = make([]domain.RankedSpec, 0)
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot_date": date,
		"specs":         ranked,
	})
}

func (h *AnalyticsHandler) GetAvailableDates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if limit <= 0 {
		limit = 30
	}

	dates, err := h.service.AvailableDates(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch available dates", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

func (h *AnalyticsHandler) GetGrades(c *gin.Context) {
	date := strings.TrimSpace(c.Query("snapshot_date"))

	grades, err := h.service.Grades(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch grades", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"grades": grades})
}

func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	date := strings.TrimSpace(c.Query("snapshot_date"))
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot_date is required"})
		return
	}

	summaries, err := h.service.SpecSummaries(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary", "details": err.Error()})
		return
	}
	if summaries == nil {
		summaries = make([]domain.SpecSummary, 0)
	}

	c.JSON(http.StatusOK, gin.H{
		"snapshot_date": date,
		"specs":         summaries,
	})
}
