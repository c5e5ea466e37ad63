package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"weddinggo/backend/internal/analyzer"
	"weddinggo/backend/internal/models"
)

type analyzeRequest struct {
	Text string `json:"text"`
}

// Analyze runs the message pipeline contract: the caller must invoke this
// synchronously before persisting or delivering an outbound message, and
// must reject the message when blocked=true.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := analyzer.Analyze(req.Text)

	response := gin.H{
		"result":  result,
		"blocked": result.ShouldBlockMessage(),
		"warn":    result.ShouldWarnUser(),
	}

	// Blocked messages get an explicit, category-appropriate denial; warned
	// messages get the confirmation-step text.
	if category, ok := primaryCategory(result); ok {
		lang := h.lang(c)
		if result.ShouldBlockMessage() {
			response["explanation"] = h.Localizer.BlockExplanation(lang, category)
		} else if result.ShouldWarnUser() {
			response["explanation"] = h.Localizer.WarnExplanation(lang, category)
		}
	}

	c.JSON(http.StatusOK, response)
}

// primaryCategory picks the most severe match to explain the decision with.
func primaryCategory(result models.DetectionResult) (models.MatchCategory, bool) {
	var best models.PatternMatch
	found := false
	for _, m := range result.Matches {
		if !found || !best.Severity.AtLeast(m.Severity) {
			best = m
			found = true
		}
	}
	return best.Category, found
}
