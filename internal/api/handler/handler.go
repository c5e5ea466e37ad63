package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"weddinggo/backend/internal/appeal"
	"weddinggo/backend/internal/enforcement"
	"weddinggo/backend/internal/feed"
	"weddinggo/backend/internal/localization"
	"weddinggo/backend/internal/storage"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	Storage     *storage.Service
	Enforcement *enforcement.Service
	Appeals     *appeal.Service
	Hub         *feed.Hub
	Localizer   *localization.Localizer
}

func NewHandler(s *storage.Service, e *enforcement.Service, a *appeal.Service, hub *feed.Hub, l *localization.Localizer) *Handler {
	return &Handler{
		Storage:     s,
		Enforcement: e,
		Appeals:     a,
		Hub:         hub,
		Localizer:   l,
	}
}

// lang picks the response language from Accept-Language. Portuguese is the
// product's main market; everything else falls back to English.
func (h *Handler) lang(c *gin.Context) string {
	accept := c.GetHeader("Accept-Language")
	if strings.HasPrefix(strings.ToLower(accept), "pt") {
		return "pt"
	}
	return "en"
}

// abortWithError maps the enforcement error taxonomy onto HTTP status codes.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, enforcement.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, enforcement.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, enforcement.ErrNotEligible):
		status = http.StatusForbidden
	case errors.Is(err, enforcement.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, enforcement.ErrPersistence):
		status = http.StatusServiceUnavailable
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
