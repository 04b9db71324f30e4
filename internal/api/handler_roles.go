package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homedash/internal/view"
)

// ListRoles handles GET /roles.
func (h *Handler) ListRoles(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.storeFailed(c, "Failed to retrieve users", err)
		return
	}
	c.HTML(http.StatusOK, view.Roles, gin.H{"Users": users})
}

// ModifyRole handles POST /modify_role/:id. The role is free text.
func (h *Handler) ModifyRole(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	err := h.store.SetUserRole(c.Request.Context(), id, c.PostForm("role"))
	h.metrics.RecordAction("modify_role", err)
	if err != nil {
		h.storeFailed(c, "Failed to modify role", err)
		return
	}
	redirect(c, "/roles")
}
