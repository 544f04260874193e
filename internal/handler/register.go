// Package handler contains the Echo HTTP handlers.  Handlers translate
// requests into service calls and map typed service errors onto HTTP status
// codes; they hold no business logic of their own.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openhall/session-registration/internal/cache"
	"github.com/openhall/session-registration/internal/mail"
	"github.com/openhall/session-registration/internal/model"
	"github.com/openhall/session-registration/internal/queue"
	"github.com/openhall/session-registration/internal/service"
)

// registerRequest is the submission payload shared by both registration
// forms.  The member fields are only required on the member route.
type registerRequest struct {
	MemberFirstName string        `json:"member_first_name"`
	MemberLastName  string        `json:"member_last_name"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	StreetAddress   string        `json:"street_address"`
	City            string        `json:"city"`
	State           string        `json:"state"`
	Zip             string        `json:"zip"`
	NumAdults       int           `json:"num_adults"`
	NumChildren     int           `json:"num_children"`
	Children        []model.Child `json:"children"`
	Comments        string        `json:"comments"`
	RequestInfo     bool          `json:"request_info"`
	Session         string        `json:"session"`
}

// RegistrationHandler serves the two public registration endpoints.
type RegistrationHandler struct {
	Ledger    *service.CapacityLedger
	Mailer    mail.Mailer
	Publisher *queue.Publisher
	Cache     *cache.SessionListCache
}

// NewRegistrationHandler constructs a RegistrationHandler.  Mailer and
// Publisher may be nil; confirmation mail and event publishing are then
// skipped.
func NewRegistrationHandler(ledger *service.CapacityLedger, mailer mail.Mailer, pub *queue.Publisher, listCache *cache.SessionListCache) *RegistrationHandler {
	if ledger == nil {
		panic("nil ledger passed to NewRegistrationHandler")
	}
	return &RegistrationHandler{Ledger: ledger, Mailer: mailer, Publisher: pub, Cache: listCache}
}

// RegisterGeneral handles POST /api/register/general.
func (h *RegistrationHandler) RegisterGeneral(c echo.Context) error {
	return h.register(c, model.KindGeneral)
}

// RegisterMember handles POST /api/register/member.
func (h *RegistrationHandler) RegisterMember(c echo.Context) error {
	return h.register(c, model.KindMember)
}

func (h *RegistrationHandler) register(c echo.Context, kind string) error {
	var body registerRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	reg := &model.Registration{
		Kind:            kind,
		MemberFirstName: body.MemberFirstName,
		MemberLastName:  body.MemberLastName,
		FirstName:       body.FirstName,
		LastName:        body.LastName,
		Email:           body.Email,
		Phone:           body.Phone,
		StreetAddress:   body.StreetAddress,
		City:            body.City,
		State:           body.State,
		Zip:             body.Zip,
		NumAdults:       body.NumAdults,
		NumChildren:     body.NumChildren,
		Children:        body.Children,
		Comments:        body.Comments,
		RequestInfo:     body.RequestInfo,
		Session:         body.Session,
	}

	session, err := h.Ledger.TryReserve(c.Request().Context(), reg)
	if err != nil {
		var capErr *service.CapacityError
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		case errors.Is(err, service.ErrSessionInactive):
			return c.JSON(http.StatusConflict, echo.Map{"error": "session is no longer accepting registrations"})
		case errors.Is(err, service.ErrAudienceMismatch):
			return c.JSON(http.StatusConflict, echo.Map{"error": "session is not offered to this audience"})
		case errors.As(err, &capErr):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":           capErr.Error(),
				"spots_remaining": capErr.SpotsRemaining,
			})
		default:
			// Validation failures surface their message; anything else is a
			// storage problem the client cannot act on.
			var valErr *service.ValidationError
			if errors.As(err, &valErr) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": valErr.Error()})
			}
			c.Logger().Errorf("register: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}
	}

	// Admission is committed; everything below is best-effort.
	h.Cache.Invalidate(c.Request().Context())
	go h.confirm(reg, session)

	return c.JSON(http.StatusCreated, echo.Map{
		"success":         true,
		"message":         "Registration successful!",
		"registration_id": reg.ID,
	})
}

// confirm sends the confirmation email and publishes the confirmed event.
// It runs detached from the request: the registration already stands, so
// failures here are logged, never surfaced.
func (h *RegistrationHandler) confirm(reg *model.Registration, session *model.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if h.Mailer != nil {
		subject, bodyHTML := mail.RenderConfirmation(reg, session)
		if err := h.Mailer.Send(ctx, reg.Email, subject, bodyHTML); err != nil {
			log.Printf("register: confirmation mail to %s failed: %v", reg.Email, err)
		}
	}
	if err := h.Publisher.PublishRegistrationConfirmed(ctx, queue.RegistrationConfirmedEvent{
		RegistrationID: reg.ID,
		Kind:           reg.Kind,
		SessionName:    session.Name,
		Email:          reg.Email,
		NumAdults:      reg.NumAdults,
		NumChildren:    reg.NumChildren,
		ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("register: publish confirmed event failed: %v", err)
	}
}
