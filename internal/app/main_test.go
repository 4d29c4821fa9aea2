package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/vendor-booking-backend/internal/app"
	dirHttp "github.com/nekogravitycat/vendor-booking-backend/internal/directory/http"
	"github.com/nekogravitycat/vendor-booking-backend/internal/seed"
)

// fixedNow is the morning the fixture slots take place.
var fixedNow = time.Date(2025, 5, 18, 7, 0, 0, 0, time.UTC)

type testApp struct {
	container *app.Container
}

// newTestApp builds an in-memory application loaded with the fixtures.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	container, err := app.NewContainer(context.Background(), app.Config{
		JWTSecret:    "test-secret",
		JWTTTL:       30 * time.Minute,
		BcryptCost:   bcrypt.MinCost, // Lower cost for testing purposes
		SeedFixtures: true,
		Now:          func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return &testApp{container: container}
}

func (a *testApp) executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.container.Router.ServeHTTP(w, req)
	return w
}

// login exercises the login endpoint and returns the bearer token.
func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	w := a.executeRequest("POST", "/v1/auth/login", dirHttp.LoginRequest{Email: email, Password: seed.Password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dirHttp.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func (a *testApp) token(t *testing.T, partyID, role string) string {
	t.Helper()
	token, err := a.container.JWTManager.GenerateAccessToken(partyID, role)
	require.NoError(t, err)
	return token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
