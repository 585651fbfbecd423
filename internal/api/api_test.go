package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backoffice/internal/config"
	"backoffice/internal/database"
)

const (
	testAdminPassword = "admin-secret"
	testUserPassword  = "user-secret"
)

// newTestServer builds a server over a fresh in-memory sqlite database
// seeded with the admin and user accounts.
func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := database.Open(dsn, false)
	require.NoError(t, err)
	require.NoError(t, database.Seed(db, testAdminPassword, testUserPassword))

	cfg := &config.Config{
		DatabaseURL: dsn,
		TokenSecret: []byte("test-secret"),
		Addr:        ":0",
		DevMode:     true,
		StaticDir:   t.TempDir(),
	}
	return New(db, cfg, zap.NewNop()), db
}

// doJSON performs a request against the server and returns the recorder.
func doJSON(t *testing.T, s *Server, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// login authenticates and returns the session cookie.
func login(t *testing.T, s *Server, username, password string) *http.Cookie {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == tokenCookieName {
			return ck
		}
	}
	t.Fatal("no token cookie in login response")
	return nil
}

func adminCookie(t *testing.T, s *Server) *http.Cookie {
	return login(t, s, "admin", testAdminPassword)
}

func userCookie(t *testing.T, s *Server) *http.Cookie {
	return login(t, s, "user", testUserPassword)
}

// decodeBody unmarshals a JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
