package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homedash/internal/view"
)

type addScheduleForm struct {
	DeviceID     int64  `form:"device_id"`
	Action       string `form:"action"`
	ScheduleTime string `form:"schedule_time"`
}

// ListSchedules handles GET /schedules.
func (h *Handler) ListSchedules(c *gin.Context) {
	ctx := c.Request.Context()

	schedules, err := h.store.ListSchedules(ctx)
	if err != nil {
		h.storeFailed(c, "Failed to retrieve schedules", err)
		return
	}
	devices, err := h.store.ListDevices(ctx)
	if err != nil {
		h.storeFailed(c, "Failed to retrieve devices", err)
		return
	}

	c.HTML(http.StatusOK, view.Schedules, gin.H{
		"Schedules": schedules,
		"Devices":   devices,
	})
}

// AddSchedule handles POST /add_schedule. The device is not required to exist.
func (h *Handler) AddSchedule(c *gin.Context) {
	var form addScheduleForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid schedule form", err)
		return
	}

	_, err := h.store.InsertSchedule(c.Request.Context(), form.DeviceID, form.Action, form.ScheduleTime)
	h.metrics.RecordAction("add_schedule", err)
	if err != nil {
		h.storeFailed(c, "Failed to add schedule", err)
		return
	}
	redirect(c, "/schedules")
}
