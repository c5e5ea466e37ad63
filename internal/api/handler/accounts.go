package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"weddinggo/backend/internal/models"
)

type recordViolationRequest struct {
	Type            models.ViolationType `json:"type" binding:"required"`
	Severity        models.Severity      `json:"severity"`
	Description     string               `json:"description"`
	SourceReference *string              `json:"source_reference"`
	Categories      []string             `json:"categories"`
}

// RecordViolation is called by the trusted message pipeline (and the no-show
// booking flow) after it decided to record a violation. End users have no
// write path into the ledger.
func (h *Handler) RecordViolation(c *gin.Context) {
	accountID := c.Param("id")

	var req recordViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Severity == "" {
		req.Severity = models.SeverityNone
	}

	account, err := h.Enforcement.RecordViolation(accountID, req.Type, req.Severity, req.Description, req.SourceReference, req.Categories)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":       account.ID,
		"reputation_score": account.ReputationScore,
		"status":           account.Status,
		"can_appeal":       account.CanAppeal,
	})
}

// GetReputation returns the score recomputed from the ledger.
func (h *Handler) GetReputation(c *gin.Context) {
	accountID := c.Param("id")

	score, err := h.Enforcement.CurrentReputation(accountID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "reputation_score": score})
}

// GetWarningLevel returns the derived, display-only risk bucket.
func (h *Handler) GetWarningLevel(c *gin.Context) {
	accountID := c.Param("id")

	level, err := h.Enforcement.WarningLevel(accountID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "warning_level": level})
}

// ListViolations is the owner's read-only view of their own ledger.
func (h *Handler) ListViolations(c *gin.Context) {
	accountID := c.Param("id")

	violations, err := h.Storage.GetViolationsForAccount(accountID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "failed to load violations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "violations": violations})
}
