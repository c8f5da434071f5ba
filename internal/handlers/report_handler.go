package handlers

import (
	"net/http"

	"order_service/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetStatistics serves the seller sales report over an optional date
// range.
func (h *ReportHandler) GetStatistics(c *gin.Context) {
	sellerID := parseUintQuery(c, "seller_id")
	if sellerID == 0 {
		respondBadRequest(c, "seller_id is required")
		return
	}

	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	report, err := h.reportService.GetStatistics(sellerID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, "Statistics fetched successfully", report)
}
