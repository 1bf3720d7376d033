package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rahul2317-NRK/chatbot9/internal/models"
	"github.com/rahul2317-NRK/chatbot9/internal/service"
	"github.com/rahul2317-NRK/chatbot9/internal/store"
)

// HeaderUserID carries the caller's user id.
const HeaderUserID = "X-User-ID"

const userKey = "user_id"

// Identity stores the caller's user id on the context. Requests without the
// header get a fresh anonymous id.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if id == "" {
				id = AnonymousID()
			}
			c.Set(userKey, id)
			return next(c)
		}
	}
}

// AnonymousID returns "anonymous_" followed by 8 hex characters.
func AnonymousID() string {
	return models.AnonymousPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func userID(c echo.Context) string {
	if id, ok := c.Get(userKey).(string); ok && id != "" {
		return id
	}
	return AnonymousID()
}

// httpError maps service errors to status codes.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Session not found")
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied to this session")
	case errors.Is(err, service.ErrAuthRequired):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrPropertyNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Property not found")
	case errors.Is(err, service.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}
