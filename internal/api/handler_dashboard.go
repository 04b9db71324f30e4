package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homedash/internal/model"
	"homedash/internal/view"
)

// Dashboard handles GET /.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.store.CountDevices(ctx, "")
	if err != nil {
		h.storeFailed(c, "Failed to load dashboard", err)
		return
	}
	on, err := h.store.CountDevices(ctx, model.StatusOn)
	if err != nil {
		h.storeFailed(c, "Failed to load dashboard", err)
		return
	}
	unread, err := h.store.CountUnreadAlerts(ctx)
	if err != nil {
		h.storeFailed(c, "Failed to load dashboard", err)
		return
	}

	c.HTML(http.StatusOK, view.Dashboard, gin.H{
		"DeviceCount":  total,
		"OnCount":      on,
		"UnreadAlerts": unread,
	})
}
