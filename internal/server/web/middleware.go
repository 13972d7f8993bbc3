package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

const (
	sessionCookieName = "session_token"
	currentUserKey    = "current_user"
)

// currentUser resolves the session cookie to a user, or nil when the
// request is anonymous or the cookie no longer verifies.
func (s *Server) currentUser(c echo.Context) *models.User {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	user, err := s.users.ResolveSession(c.Request().Context(), cookie.Value)
	if err != nil {
		return nil
	}

	return user
}

// requireAuth gates HTML endpoints: an unauthenticated request is sent to
// the login page with the originally requested destination preserved, so
// it can be resumed after login.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := s.currentUser(c)
		if user == nil {
			dest := c.Request().URL.RequestURI()
			return c.Redirect(http.StatusSeeOther, "/login?next="+url.QueryEscape(dest))
		}
		c.Set(currentUserKey, user)
		return next(c)
	}
}

// requireAuthJSON gates the recorder endpoint, which expects a JSON body
// rather than a redirect.
func (s *Server) requireAuthJSON(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := s.currentUser(c)
		if user == nil {
			return c.JSON(http.StatusUnauthorized, recordResponse{OK: false, Error: "unauthorized"})
		}
		c.Set(currentUserKey, user)
		return next(c)
	}
}

func requester(c echo.Context) *models.User {
	user, _ := c.Get(currentUserKey).(*models.User)
	return user
}

// setSessionCookie binds the session token to the browser, replacing any
// prior binding.
func (s *Server) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessionValidity),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// safeNext validates a post-login destination: it must be a local path,
// never an absolute or scheme-relative URL.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}
