package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"map-action-api/models"
	"map-action-api/services"
)

// analysisRequestBody is the wire form of an incident-analysis request.
// Coordinates may be omitted when an incident location label is given;
// the pipeline geocodes the label in that case.
type analysisRequestBody struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	IncidentLocation string  `json:"incident_location"`
	IncidentType     string  `json:"incident_type"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
}

// AnalyzeIncident runs the full analysis pipeline and persists the report.
// POST /api/analysis
func (h *Handler) AnalyzeIncident(c *gin.Context) {
	var body analysisRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corps de requête invalide"})
		return
	}

	start, err := models.ParseYYYYMMDD(body.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date invalide, format attendu YYYYMMDD"})
		return
	}
	end, err := models.ParseYYYYMMDD(body.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date invalide, format attendu YYYYMMDD"})
		return
	}
	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date doit précéder end_date"})
		return
	}

	req := models.AnalysisRequest{
		Latitude:      body.Latitude,
		Longitude:     body.Longitude,
		LocationLabel: body.IncidentLocation,
		IncidentType:  models.ParseIncidentType(body.IncidentType),
		StartDate:     start,
		EndDate:       end,
	}

	result, err := h.Analysis.AnalyzeIncidentZone(c.Request.Context(), req)
	if err != nil {
		log.Printf("incident analysis failed: %v", err)
		if errors.Is(err, services.ErrExternalService) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "service d'analyse satellite indisponible"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analyse impossible pour le moment"})
		return
	}

	reportID, err := h.Reports.Save(c.Request.Context(), req, result)
	if err != nil {
		// The analysis itself succeeded; losing the stored copy should
		// not withhold the result from the reporter.
		log.Printf("saving analysis report failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"report_id": reportID,
		"data":      result,
	})
}

// ListReports returns recent stored analyses, newest first.
// GET /api/analysis?limit=50
func (h *Handler) ListReports(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := h.Reports.List(c.Request.Context(), limit)
	if err != nil {
		log.Printf("listing analysis reports failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lecture des rapports impossible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": reports, "count": len(reports)})
}

// GetReport returns one stored analysis.
// GET /api/analysis/:id
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.Reports.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "rapport introuvable"})
		return
	}
	if err != nil {
		log.Printf("loading analysis report failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lecture du rapport impossible"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": report})
}
