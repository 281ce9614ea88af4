package apitest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, h http.Handler, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, BasePath+path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSignupThenLogin(t *testing.T) {
	srv := New(Options{SignupRole: 1})
	creds := map[string]string{"email": "a@x.com", "password": "pw"}

	rec := postJSON(t, srv.Handler(), "/users/signup", creds, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, srv.Handler(), "/users/signup", creds, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = postJSON(t, srv.Handler(), "/users/login", creds, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload["id"])
	assert.NotEmpty(t, payload["token"])
	assert.NotEmpty(t, payload["socketToken"])
	assert.EqualValues(t, 1, payload["role"])
	assert.Equal(t, 2, srv.Calls("/users/signup"))
	assert.Equal(t, 1, srv.Calls("/users/login"))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	srv := New(Options{})
	srv.AddAccount(Account{Email: "a@x.com", Password: "pw"})

	rec := postJSON(t, srv.Handler(), "/users/login", map[string]string{"email": "a@x.com", "password": "nope"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestIssuedTokenExpiry(t *testing.T) {
	srv := New(Options{TokenTTL: -time.Minute})
	srv.AddAccount(Account{Email: "a@x.com", Password: "pw"})

	rec := postJSON(t, srv.Handler(), "/users/login", map[string]string{"email": "a@x.com", "password": "pw"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	claims := &jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(payload.Token, claims)
	require.NoError(t, err)
	assert.True(t, claims.ExpiresAt.Before(time.Now()))
}

func TestEditProfileRequiresCredentials(t *testing.T) {
	srv := New(Options{OpaqueTokens: true})
	acct := srv.AddAccount(Account{Email: "a@x.com", Password: "pw"})

	rec := postJSON(t, srv.Handler(), "/users/editProfile", map[string]string{"name": "B"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, srv.Handler(), "/users/login", map[string]string{"email": "a@x.com", "password": "pw"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	rec = postJSON(t, srv.Handler(), "/users/editProfile", map[string]string{"name": "B"},
		map[string]string{"token": payload.Token, "id": acct.ID})
	assert.Equal(t, http.StatusOK, rec.Code)

	stored, ok := srv.Account("a@x.com")
	require.True(t, ok)
	assert.Equal(t, "B", stored.Profile["name"])
}

func TestFailNextIsConsumedOnce(t *testing.T) {
	srv := New(Options{})
	srv.AddAccount(Account{Email: "a@x.com", Password: "pw"})
	srv.FailNext("/users/login", http.StatusServiceUnavailable, "maintenance")

	creds := map[string]string{"email": "a@x.com", "password": "pw"}
	rec := postJSON(t, srv.Handler(), "/users/login", creds, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "maintenance")

	rec = postJSON(t, srv.Handler(), "/users/login", creds, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
