package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openhall/session-registration/internal/cache"
	"github.com/openhall/session-registration/internal/config"
	"github.com/openhall/session-registration/internal/model"
	"github.com/openhall/session-registration/internal/service"
	"github.com/openhall/session-registration/internal/utils"
)

// AdminHandler serves the authenticated admin surface: login, the session
// catalog CRUD, registration exports and the manual reminder trigger.
type AdminHandler struct {
	Cfg        config.Config
	Directory  *service.SessionDirectory
	Regs       service.RegistrationStore
	Dispatcher *service.ReminderDispatcher
	Cache      *cache.SessionListCache
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(cfg config.Config, dir *service.SessionDirectory, regs service.RegistrationStore, dispatcher *service.ReminderDispatcher, listCache *cache.SessionListCache) *AdminHandler {
	if dir == nil {
		panic("nil directory passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Directory: dir, Regs: regs, Dispatcher: dispatcher, Cache: listCache}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/admin/login.  There is a single shared admin
// identity; credentials are checked against ADMIN_USER and the bcrypt hash in
// ADMIN_PASS_HASH.
func (h *AdminHandler) Login(c echo.Context) error {
	var body loginRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Username != h.Cfg.AdminUser || !utils.VerifyPassword(h.Cfg.AdminPassHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	tok, err := utils.NewAdminToken(h.Cfg.JWTSecret, body.Username, h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("admin login: mint token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, tok)
}

// sessionRequest is the create/update payload for a catalog session.
type sessionRequest struct {
	Name         string `json:"name"`
	Audience     string `json:"audience"`
	ChildLimit   int    `json:"child_limit"`
	Active       *bool  `json:"active"`
	DisplayOrder int    `json:"display_order"`
	Date         string `json:"date"` // RFC 3339 or YYYY-MM-DD
}

func (r *sessionRequest) toModel() (*model.Session, error) {
	date, err := parseSessionDate(r.Date)
	if err != nil {
		return nil, err
	}
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &model.Session{
		Name:         r.Name,
		Audience:     r.Audience,
		ChildLimit:   r.ChildLimit,
		Active:       active,
		DisplayOrder: r.DisplayOrder,
		Date:         date,
	}, nil
}

func parseSessionDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

// ListSessions handles GET /api/admin/sessions: the full catalog, inactive
// sessions included, annotated with occupancy.
func (h *AdminHandler) ListSessions(c echo.Context) error {
	items, err := h.Directory.ListAll(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("admin list sessions: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sessions"})
	}
	if items == nil {
		items = []service.SessionAvailability{}
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": items})
}

// CreateSession handles POST /api/admin/sessions.
func (h *AdminHandler) CreateSession(c echo.Context) error {
	var body sessionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, err := body.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session date"})
	}
	if err := h.Directory.Create(c.Request().Context(), s); err != nil {
		return h.sessionError(c, err, "create session")
	}
	h.Cache.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, s)
}

// UpdateSession handles PUT /api/admin/sessions/:id.
func (h *AdminHandler) UpdateSession(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	var body sessionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	s, err := body.toModel()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session date"})
	}
	s.ID = id
	if err := h.Directory.Update(c.Request().Context(), s); err != nil {
		return h.sessionError(c, err, "update session")
	}
	h.Cache.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, s)
}

// DeleteSession handles DELETE /api/admin/sessions/:id.  The response says
// whether the session was deleted outright or deactivated because
// registrations reference it.
func (h *AdminHandler) DeleteSession(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	outcome, err := h.Directory.Remove(c.Request().Context(), id)
	if err != nil {
		return h.sessionError(c, err, "delete session")
	}
	h.Cache.Invalidate(c.Request().Context())
	if outcome == service.Deactivated {
		return c.JSON(http.StatusOK, echo.Map{
			"deleted":     false,
			"deactivated": true,
			"message":     "session has registrations and was deactivated instead of deleted",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"deleted":     true,
		"deactivated": false,
		"message":     "session deleted",
	})
}

// ListRegistrations handles GET /api/admin/registrations?session=NAME.  Both
// audience tables are merged, ordered by submission time.
func (h *AdminHandler) ListRegistrations(c echo.Context) error {
	name := c.QueryParam("session")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session query parameter is required"})
	}
	regs, err := h.Regs.ListBySession(c.Request().Context(), name)
	if err != nil {
		c.Logger().Errorf("admin list registrations: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load registrations"})
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	return c.JSON(http.StatusOK, echo.Map{"session": name, "count": len(regs), "registrations": regs})
}

type reminderRequest struct {
	Session string `json:"session"`
	DryRun  bool   `json:"dry_run"`
}

// RunReminders handles POST /api/admin/reminders/run.  With a session name it
// dispatches that session regardless of date; without one it runs the normal
// two-days-ahead sweep.
func (h *AdminHandler) RunReminders(c echo.Context) error {
	if h.Dispatcher == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "reminder dispatch is not configured"})
	}
	var body reminderRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	if body.Session != "" {
		sum, err := h.Dispatcher.RunForSession(ctx, body.Session, body.DryRun)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
			}
			c.Logger().Errorf("admin run reminders: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reminder run failed"})
		}
		return c.JSON(http.StatusOK, echo.Map{"dry_run": body.DryRun, "summaries": []service.Summary{sum}})
	}

	summaries, err := h.Dispatcher.Run(ctx)
	if err != nil {
		c.Logger().Errorf("admin run reminders: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reminder run failed"})
	}
	if summaries == nil {
		summaries = []service.Summary{}
	}
	return c.JSON(http.StatusOK, echo.Map{"dry_run": false, "summaries": summaries})
}

func (h *AdminHandler) sessionError(c echo.Context, err error, op string) error {
	var valErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, service.ErrDuplicateSessionName):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.As(err, &valErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": valErr.Error()})
	default:
		c.Logger().Errorf("%s: %v", op, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": op + " failed"})
	}
}
