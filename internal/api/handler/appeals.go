package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type submitAppealRequest struct {
	Message string `json:"message"`
}

// SubmitAppeal files an appeal for a suspended account. Eligibility gating
// lives in the appeal service; this handler only shapes the transport.
func (h *Handler) SubmitAppeal(c *gin.Context) {
	accountID := c.Param("id")

	var req submitAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	appeal, err := h.Appeals.Submit(accountID, req.Message)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, appeal)
}
