package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"MediLedger/apperrors"
	"MediLedger/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	identity models.Identity
}

func (s stubAuth) Authenticate(token string, _ ...models.Role) (models.Identity, error) {
	if token != "good" {
		return models.Identity{}, errors.New("invalid")
	}
	return s.identity, nil
}

func perform(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTokenAuthStoresIdentity(t *testing.T) {
	router := gin.New()
	doctor := models.Identity{ID: "D001", Role: models.RoleDoctor, Name: "Dr. Rao"}
	router.GET("/me", TokenAuthMiddleware(stubAuth{identity: doctor}), func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		assert.True(t, ok)
		c.JSON(http.StatusOK, identity)
	})
	router.GET("/doctors-only", TokenAuthMiddleware(stubAuth{identity: doctor}), RoleAuthMiddleware(models.RolePatient), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := perform(router, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(router, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer bad"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(router, http.MethodGet, "/me", http.Header{"Authorization": {"Bearer good"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "D001")

	w = perform(router, http.MethodGet, "/me", http.Header{"Cookie": {"accessToken=good"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(router, http.MethodGet, "/doctors-only", http.Header{"Authorization": {"Bearer good"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestValidateBearerToken(t *testing.T) {
	router := gin.New()
	router.Use(ValidateBearerToken("secret"))
	router.GET("/rpc", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/rpc", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/rpc", http.Header{"Authorization": {"Basic secret"}}).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(router, http.MethodGet, "/rpc", http.Header{"Authorization": {"Bearer wrong"}}).Code)
	assert.Equal(t, http.StatusOK, perform(router, http.MethodGet, "/rpc", http.Header{"Authorization": {"Bearer secret"}}).Code)
}

func TestRateLimiterIsPerClient(t *testing.T) {
	router := gin.New()
	router.Use(NewRateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 0.001, Burst: 2}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestCorsPreflight(t *testing.T) {
	router := gin.New()
	router.Use(CorsMiddleware(DefaultCorsConfig([]string{"http://localhost:3000"})))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(router, http.MethodOptions, "/", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = perform(router, http.MethodGet, "/", http.Header{"Origin": {"http://evil.example"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCorsWildcardNeverGrantsCredentials(t *testing.T) {
	router := gin.New()
	router.Use(CorsMiddleware(DefaultCorsConfig([]string{"*", "http://localhost:3000"})))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(router, http.MethodGet, "/", http.Header{"Origin": {"http://evil.example"}})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = perform(router, http.MethodGet, "/", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestHttpErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.Validation("date is required"), http.StatusBadRequest},
		{apperrors.NotAuthorized("reserved"), http.StatusForbidden},
		{apperrors.AlreadyResolved("request 1"), http.StatusConflict},
		{apperrors.Rejected("Request already processed"), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err, status := tc.err, tc.status
		router := gin.New()
		router.GET("/", func(c *gin.Context) { HttpError(c, zap.NewNop(), err) })
		w := perform(router, http.MethodGet, "/", nil)
		assert.Equal(t, status, w.Code, err.Error())
		if status == http.StatusInternalServerError {
			assert.NotContains(t, w.Body.String(), "boom")
		} else {
			assert.Contains(t, w.Body.String(), err.Error())
		}
	}
}
