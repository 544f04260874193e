package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openhall/session-registration/internal/cache"
	"github.com/openhall/session-registration/internal/model"
	"github.com/openhall/session-registration/internal/service"
)

// SessionHandler serves the public session listing the registration forms
// are built from.
type SessionHandler struct {
	Directory *service.SessionDirectory
	Cache     *cache.SessionListCache
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(dir *service.SessionDirectory, listCache *cache.SessionListCache) *SessionHandler {
	if dir == nil {
		panic("nil directory passed to NewSessionHandler")
	}
	return &SessionHandler{Directory: dir, Cache: listCache}
}

// ListSessions handles GET /api/sessions?audience=general|member.  It
// returns the active sessions visible to that audience, in display order,
// annotated with occupancy and remaining spots.  Results are served from the
// Redis cache when fresh.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	audience := c.QueryParam("audience")
	if audience == "" {
		audience = model.KindGeneral
	}
	if audience != model.KindGeneral && audience != model.KindMember {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "audience must be general or member"})
	}

	ctx := c.Request().Context()
	if items, ok := h.Cache.Get(ctx, audience); ok {
		return c.JSON(http.StatusOK, echo.Map{"sessions": items})
	}

	items, err := h.Directory.ListFor(ctx, audience)
	if err != nil {
		c.Logger().Errorf("list sessions: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sessions"})
	}
	if items == nil {
		items = []service.SessionAvailability{}
	}
	h.Cache.Set(ctx, audience, items)
	return c.JSON(http.StatusOK, echo.Map{"sessions": items})
}
