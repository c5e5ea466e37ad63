package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"weddinggo/backend/internal/models"
)

type resolveAppealRequest struct {
	Decision models.AppealStatus `json:"decision" binding:"required"`
	Notes    string              `json:"notes"`
}

// ResolveAppeal decides a pending appeal. The admin identity comes from the
// validated JWT, never from the request body.
func (h *Handler) ResolveAppeal(c *gin.Context) {
	appealID := c.Param("id")
	adminID := c.GetString("admin_id")

	var req resolveAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	appeal, err := h.Appeals.Resolve(appealID, req.Decision, adminID, req.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, appeal)
}

// ListAppeals lists appeals by status for the admin surface. Defaults to the
// pending queue.
func (h *Handler) ListAppeals(c *gin.Context) {
	status := models.AppealStatus(c.DefaultQuery("status", string(models.AppealPending)))

	appeals, err := h.Storage.ListAppealsByStatus(status)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "failed to list appeals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appeals": appeals})
}

type suspendRequest struct {
	Reason    models.SuspensionReason `json:"reason" binding:"required"`
	Details   string                  `json:"details"`
	CanAppeal bool                    `json:"can_appeal"`
}

// SuspendAccount applies a manual suspension, bypassing the score path.
func (h *Handler) SuspendAccount(c *gin.Context) {
	accountID := c.Param("id")
	adminID := c.GetString("admin_id")

	var req suspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.Enforcement.SuspendManually(accountID, req.Reason, req.Details, req.CanAppeal, adminID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "status": models.StatusSuspended})
}

// ReinstateAccount lifts a suspension without resetting the score.
func (h *Handler) ReinstateAccount(c *gin.Context) {
	accountID := c.Param("id")
	adminID := c.GetString("admin_id")

	if err := h.Enforcement.Reinstate(accountID, adminID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "status": models.StatusActive})
}

// ListSuspensions lists currently active suspensions.
func (h *Handler) ListSuspensions(c *gin.Context) {
	suspensions, err := h.Storage.ListActiveSuspensions()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "failed to list suspensions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suspensions": suspensions})
}
