package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/model"
)

const tokenCookieName = "token"

// userContextKey is where the gate parks the resolved caller for the
// handlers downstream.
const userContextKey = "backoffice.user"

// publicPaths bypass the gate entirely: the auth endpoints themselves
// and the internal role lookup.
var publicPaths = map[string]bool{
	"/api/auth/login":         true,
	"/api/auth/logout":        true,
	"/api/auth/me":            true,
	"/api/internal/user-data": true,
}

// PermissionTable decides, per HTTP method and role, whether a request
// may proceed past the gate. Methods absent from the table are allowed
// for every role.
type PermissionTable map[string]map[model.Role]bool

// DefaultPermissions denies all mutating methods to the USER role.
func DefaultPermissions() PermissionTable {
	mutating := map[model.Role]bool{
		model.RoleAdmin: true,
		model.RoleUser:  false,
	}
	return PermissionTable{
		http.MethodPost:   mutating,
		http.MethodPut:    mutating,
		http.MethodPatch:  mutating,
		http.MethodDelete: mutating,
	}
}

// Allows reports whether the method is permitted for the role.
func (t PermissionTable) Allows(method string, role model.Role) bool {
	byRole, ok := t[method]
	if !ok {
		return true
	}
	return byRole[role]
}

// gate is the per-request authorization state machine: allowlist, cookie
// presence, token validity, role resolution, permission table. Each
// failure is terminal for the request; there is no retry path.
func (s *Server) gate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if publicPaths[c.Request().URL.Path] {
			return next(c)
		}

		cookie, err := c.Cookie(tokenCookieName)
		if err != nil || cookie.Value == "" {
			return errUnauthorized("authentication required")
		}

		claims, err := s.tokens.Validate(cookie.Value)
		if err != nil {
			s.clearTokenCookie(c)
			return errUnauthorized("invalid or expired token")
		}

		var user model.User
		if err := s.db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errForbidden("unknown user")
			}
			return errInternal(fmt.Errorf("role lookup: %w", err))
		}
		if !model.ValidRole(user.Role) {
			return errForbidden("no role assigned")
		}

		if !s.perms.Allows(c.Request().Method, user.Role) {
			return errForbidden("insufficient role")
		}

		c.Set(userContextKey, &user)
		return next(c)
	}
}

// currentUser returns the caller the gate resolved. Only valid on gated
// routes.
func currentUser(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}

func (s *Server) setTokenCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Server) clearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// requestLogger logs one line per request with method, path, status and
// latency.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.log.Info("request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}
