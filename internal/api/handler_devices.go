package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"homedash/internal/export"
	"homedash/internal/view"
)

// writeDevicesXLSX is swapped in tests to simulate a failing export.
var writeDevicesXLSX = export.WriteDevicesXLSX

type addDeviceForm struct {
	Name string `form:"name"`
	Type string `form:"type"`
}

// ListDevices handles GET /devices.
func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.store.ListDevices(c.Request.Context())
	if err != nil {
		h.storeFailed(c, "Failed to retrieve devices", err)
		return
	}
	c.HTML(http.StatusOK, view.Devices, gin.H{"Devices": devices})
}

// AddDevice handles POST /add_device.
func (h *Handler) AddDevice(c *gin.Context) {
	var form addDeviceForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid device form", err)
		return
	}

	_, err := h.store.InsertDevice(c.Request.Context(), form.Name, form.Type)
	h.metrics.RecordAction("add_device", err)
	if err != nil {
		h.storeFailed(c, "Failed to add device", err)
		return
	}
	redirect(c, "/devices")
}

// ToggleDevice handles POST /toggle_device/:id. Unknown ids answer 404.
func (h *Handler) ToggleDevice(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	_, err := h.store.ToggleDevice(c.Request.Context(), id)
	h.metrics.RecordAction("toggle_device", err)
	if err != nil {
		h.storeFailed(c, "Failed to toggle device", err)
		return
	}
	redirect(c, "/devices")
}

// ExportDevices handles GET /devices/export.xlsx.
func (h *Handler) ExportDevices(c *gin.Context) {
	devices, err := h.store.ListDevices(c.Request.Context())
	if err != nil {
		h.storeFailed(c, "Failed to retrieve devices", err)
		return
	}

	var buf bytes.Buffer
	if err := writeDevicesXLSX(&buf, devices); err != nil {
		h.renderError(c, http.StatusInternalServerError, "Failed to export devices", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="devices.xlsx"`)
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}
