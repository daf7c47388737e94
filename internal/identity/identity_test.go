package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinofightergenesis/dinofighterg/internal/session"
)

func TestHeaderProvider(t *testing.T) {
	p := HeaderProvider{Header: "X-Holder-ID"}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := p.Identify(r)
	require.ErrorIs(t, err, session.ErrNotAuthenticated)

	r.Header.Set("X-Holder-ID", " alice ")
	id, err := p.Identify(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
}

func TestJWTProvider(t *testing.T) {
	p := NewJWTProvider("s3cret", "dinofighter")
	token, err := p.Sign("alice", time.Hour, time.Now())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	id, err := p.Identify(r)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	ws := httptest.NewRequest(http.MethodGet, "/stream?access_token="+token, nil)
	id, err = p.Identify(ws)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
}

func TestJWTProviderRejects(t *testing.T) {
	p := NewJWTProvider("s3cret", "dinofighter")
	now := time.Now()

	expired, err := p.Sign("alice", time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)
	foreign, err := NewJWTProvider("other", "dinofighter").Sign("alice", time.Hour, now)
	require.NoError(t, err)
	wrongIssuer, err := NewJWTProvider("s3cret", "elsewhere").Sign("alice", time.Hour, now)
	require.NoError(t, err)
	noSubject, err := p.Sign("", time.Hour, now)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"garbage":      "Bearer not-a-token",
		"expired":      "Bearer " + expired,
		"bad secret":   "Bearer " + foreign,
		"wrong issuer": "Bearer " + wrongIssuer,
		"no subject":   "Bearer " + noSubject,
	} {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			_, err := p.Identify(r)
			assert.ErrorIs(t, err, session.ErrNotAuthenticated)
		})
	}
}

func TestMiddleware(t *testing.T) {
	var seen string
	h := Middleware(HeaderProvider{Header: "X-Holder-ID"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = HolderFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, seen)

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Holder-ID", "bob")
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", seen)
}
