package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/auth"
	"backoffice/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login verifies credentials and sets the signed session cookie. Bad
// username and bad password are indistinguishable to the caller.
func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errBadRequest("invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return errValidation(map[string]string{
			"username": "required",
			"password": "required",
		})
	}

	var user model.User
	err := s.db.Where("username = ?", req.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUnauthorized("invalid username or password")
		}
		return errInternal(fmt.Errorf("login lookup: %w", err))
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		return errUnauthorized("invalid username or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return errInternal(err)
	}
	s.setTokenCookie(c, token, time.Now().Add(auth.TokenTTL))

	s.log.Info("login", zap.String("username", user.Username))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"user":    user.Public(),
	})
}

func (s *Server) logout(c echo.Context) error {
	s.clearTokenCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logout successful"})
}

// me reports the session state from the cookie. Always 200; an absent or
// broken token just means isAuthenticated=false.
func (s *Server) me(c echo.Context) error {
	unauthenticated := echo.Map{"isAuthenticated": false, "user": nil}

	cookie, err := c.Cookie(tokenCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusOK, unauthenticated)
	}
	claims, err := s.tokens.Validate(cookie.Value)
	if err != nil {
		s.clearTokenCookie(c)
		return c.JSON(http.StatusOK, unauthenticated)
	}

	var user model.User
	if err := s.db.First(&user, claims.UserID).Error; err != nil {
		return c.JSON(http.StatusOK, unauthenticated)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"isAuthenticated": true,
		"user":            user.Public(),
	})
}

// userData is the internal role lookup: public user fields keyed by id.
func (s *Server) userData(c echo.Context) error {
	raw := c.QueryParam("userId")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return errValidation(map[string]string{"userId": "must be a positive integer"})
	}

	var user model.User
	if err := s.db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound("user")
		}
		return errInternal(fmt.Errorf("user lookup: %w", err))
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user.Public()})
}
