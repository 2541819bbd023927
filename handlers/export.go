package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"map-action-api/services"
)

// ExportReportExcel streams a stored report's raw data as an Excel
// workbook attachment.
// GET /api/analysis/:id/export/excel
func (h *Handler) ExportReportExcel(c *gin.Context) {
	id := c.Param("id")
	report, err := h.Reports.Get(c.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "rapport introuvable"})
		return
	}
	if err != nil {
		log.Printf("loading analysis report for export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lecture du rapport impossible"})
		return
	}

	f, err := services.BuildReportWorkbook(report)
	if err != nil {
		log.Printf("building report workbook failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export impossible pour le moment"})
		return
	}

	filename := fmt.Sprintf("analyse_%s.xlsx", id)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("writing workbook response failed: %v", err)
	}
}
