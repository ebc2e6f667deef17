package auth

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"Shortcircuit/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu     sync.Mutex
	byName map[string]struct {
		id   int
		hash string
	}
}

func newMemUsers() *memUsers {
	return &memUsers{byName: map[string]struct {
		id   int
		hash string
	}{}}
}

func (m *memUsers) CreateUser(_ context.Context, login, _, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[login]; ok {
		return 0, repo.ErrDuplicate
	}
	id := len(m.byName) + 1
	m.byName[login] = struct {
		id   int
		hash string
	}{id, password}
	return id, nil
}

func (m *memUsers) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byName[login]
	return u.id, u.hash, nil
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body)))
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	env := &Authenv{JWTkey: []byte("test-key"), Repo: newMemUsers()}

	rec := post(env.RegisterHandler, `{"login":"ops","email":"ops@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, rec.Result().Cookies())

	rec = post(env.RegisterHandler, `{"login":"ops","email":"ops@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = post(env.RegisterHandler, `{"login":"x","email":"x@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(env.AuthHandler, `{"login":"ops","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	id, err := env.ParseToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	rec = post(env.AuthHandler, `{"login":"ops","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = post(env.AuthHandler, `{"login":"nobody","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseTokenRejects(t *testing.T) {
	env := &Authenv{JWTkey: []byte("test-key")}

	expired, err := env.NewToken(7, "ops", time.Now().Add(-2*tokenTTL))
	require.NoError(t, err)
	_, err = env.ParseToken(expired)
	assert.Error(t, err)

	other := &Authenv{JWTkey: []byte("other-key")}
	foreign, err := other.NewToken(7, "ops", time.Now())
	require.NoError(t, err)
	_, err = env.ParseToken(foreign)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": 7, "login": "ops"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = env.ParseToken(unsigned)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	env := &Authenv{JWTkey: []byte("test-key")}
	var seen int
	h := env.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := env.NewToken(42, "ops", time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 42, seen)
}

func TestRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(0.001, 2)
	h := l.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another port on the same host shares the bucket, another host does not
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:6000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	req.RemoteAddr = "10.0.0.2:6000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
