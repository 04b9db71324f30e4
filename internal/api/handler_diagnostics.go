package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homedash/internal/model"
	"homedash/internal/view"
)

// ListDiagnostics handles GET /diagnostics.
func (h *Handler) ListDiagnostics(c *gin.Context) {
	devices, err := h.store.ListDevices(c.Request.Context())
	if err != nil {
		h.storeFailed(c, "Failed to retrieve devices", err)
		return
	}
	c.HTML(http.StatusOK, view.Diagnostics, gin.H{"Devices": devices})
}

// RunDiagnostics handles POST /run_diagnostics/:id. The probe result is
// written to the device's health; an issue also raises an alert.
func (h *Handler) RunDiagnostics(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	device, err := h.store.GetDevice(ctx, id)
	if err != nil {
		h.storeFailed(c, "Failed to run diagnostics", err)
		return
	}

	health := h.prober.Probe(ctx, device)
	err = h.store.SetDeviceHealth(ctx, id, health)
	h.metrics.RecordAction("run_diagnostics", err)
	if err != nil {
		h.storeFailed(c, "Failed to run diagnostics", err)
		return
	}

	if health == model.HealthIssue {
		alert, err := h.store.InsertAlert(ctx, fmt.Sprintf("Diagnostics found an issue with %s (device #%d)", device.Name, device.ID))
		if err != nil {
			// the health write already succeeded
			h.log.Error("failed to raise diagnostics alert", zap.Int64("device_id", id), zap.Error(err))
		} else {
			h.notifier.Dispatch(alert.ID)
		}
	}
	redirect(c, "/diagnostics")
}
