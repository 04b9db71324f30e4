package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homedash/internal/view"
)

// ListAlerts handles GET /alerts.
func (h *Handler) ListAlerts(c *gin.Context) {
	alerts, err := h.store.ListAlerts(c.Request.Context())
	if err != nil {
		h.storeFailed(c, "Failed to retrieve alerts", err)
		return
	}
	c.HTML(http.StatusOK, view.Alerts, gin.H{"Alerts": alerts})
}

// AcknowledgeAlert handles POST /acknowledge_alert/:id.
func (h *Handler) AcknowledgeAlert(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	err := h.store.AcknowledgeAlert(c.Request.Context(), id)
	h.metrics.RecordAction("acknowledge_alert", err)
	if err != nil {
		h.storeFailed(c, "Failed to acknowledge alert", err)
		return
	}
	redirect(c, "/alerts")
}
