package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	analyticsmapper "github.com/Apurer/storekeeper/internal/domains/analytics/adapters/http/mapper"
)

// Get /v1/owners/:ownerId/reports
// Computes the period report for ?period=today|week|month|year|all|custom&start=&end=
func (h *Handler) GetReport(c *gin.Context) {
	input := analyticsmapper.ToReportInput(ownerID(c), c.Query("period"), c.Query("start"), c.Query("end"))
	report, err := h.services.Analytics.ComputeReport(c.Request.Context(), input)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, analyticsmapper.FromReport(report))
}
