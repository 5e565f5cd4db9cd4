package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"aguipuntos_backend/internal/services"
	"aguipuntos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the reporting services.
type ReportHandler struct {
	reportService  services.ReportService
	summaryService services.DailySummaryService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService, ds services.DailySummaryService) *ReportHandler {
	return &ReportHandler{reportService: rs, summaryService: ds}
}

// reportOptionsFromQuery reads the shared report window query parameters.
func reportOptionsFromQuery(c *gin.Context) (services.ReportOptions, error) {
	opts := services.ReportOptions{
		From:     c.Query("from"),
		To:       c.Query("to"),
		Timezone: c.Query("tz"),
	}
	if userIDStr := c.Query("userId"); userIDStr != "" {
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			return opts, err
		}
		opts.UserID = &userID
	}
	if userName := c.Query("userName"); userName != "" {
		opts.UserName = &userName
	}
	return opts, nil
}

// GetPointsLoadedReport returns loaded/voided totals and per-load items for a
// date window in the business timezone.
func (h *ReportHandler) GetPointsLoadedReport(c *gin.Context) {
	opts, err := reportOptionsFromQuery(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid userId format.", err.Error()))
		return
	}

	report, err := h.reportService.ComputeReport(opts)
	if err != nil {
		utils.LogError(err, "GetPointsLoadedReport: Error from reportService.ComputeReport")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute report.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetDailySummary returns the digest used by the Telegram broadcast, without
// sending it anywhere.
func (h *ReportHandler) GetDailySummary(c *gin.Context) {
	opts, err := reportOptionsFromQuery(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid userId format.", err.Error()))
		return
	}

	summary, err := h.summaryService.BuildDailySummary(opts)
	if err != nil {
		utils.LogError(err, "GetDailySummary: Error from summaryService.BuildDailySummary")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build daily summary.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, summary)
}
