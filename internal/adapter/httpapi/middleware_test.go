package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler := AuthMiddleware("secret")(okHandler())

	req := httptest.NewRequest("GET", "/api/portfolios", nil)
	req.Header.Set("Authorization", "Bearer secret")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	handler := AuthMiddleware("secret")(okHandler())

	req := httptest.NewRequest("GET", "/api/portfolios", nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	handler := AuthMiddleware("secret")(okHandler())

	req := httptest.NewRequest("GET", "/api/portfolios", nil)
	req.Header.Set("Authorization", "Bearer wrong")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_NoPrefix(t *testing.T) {
	handler := AuthMiddleware("secret")(okHandler())

	req := httptest.NewRequest("GET", "/api/portfolios", nil)
	req.Header.Set("Authorization", "secret")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_DisabledWithoutToken(t *testing.T) {
	handler := AuthMiddleware("")(okHandler())

	req := httptest.NewRequest("GET", "/api/portfolios", nil)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware_EnforcesLimit(t *testing.T) {
	handler := RateLimitMiddleware(NewRateLimiter(2))(okHandler())

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/api/portfolios", nil)
		req.RemoteAddr = "10.0.0.1:5000"

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Equal(t, http.StatusOK, statuses[1])
	assert.Equal(t, http.StatusTooManyRequests, statuses[2])
}

func TestRateLimitMiddleware_PerClient(t *testing.T) {
	handler := RateLimitMiddleware(NewRateLimiter(1))(okHandler())

	first := httptest.NewRequest("GET", "/api/portfolios", nil)
	first.RemoteAddr = "10.0.0.1:5000"
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, first)

	second := httptest.NewRequest("GET", "/api/portfolios", nil)
	second.RemoteAddr = "10.0.0.2:5000"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, second)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, http.StatusOK, w2.Code)
}
