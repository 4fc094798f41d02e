package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
)

type errorBody struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error"`
}

func (b errorBody) messages(t *testing.T) []string {
	t.Helper()
	var list []string
	require.NoError(t, json.Unmarshal(b.Message, &list))
	return list
}

func (b errorBody) message(t *testing.T) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(b.Message, &s))
	return s
}

func newAuthRouter(t *testing.T, revocations auth.Revocations) http.Handler {
	t.Helper()
	issuer := newTestIssuer(t)
	service := auth.NewService(auth.NewMemoryRepository(), newTestHasher(t), issuer, auth.ServiceConfig{Revocations: revocations})
	var checker auth.RevocationChecker
	if revocations != nil {
		checker = revocations
	}
	handler := auth.NewHandler(nil, service, auth.NewGuard(issuer, checker, nil), auth.HandlerOptions{ExposeCredential: true})
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, rr.Code, body.StatusCode)
	return body
}

const aliceJSON = `{"name":"Alice","email":"alice@example.com","password":"Secret1!"}`

func loginToken(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/auth/register", aliceJSON, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	rr = do(t, h, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Secret1!"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestRegisterEndpoint(t *testing.T) {
	h := newAuthRouter(t, nil)

	rr := do(t, h, http.MethodPost, "/auth/register", aliceJSON, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var user map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &user))
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotEqual(t, "Secret1!", user["password"])
	assert.Contains(t, user["password"], ".")

	rr = do(t, h, http.MethodPost, "/auth/register", aliceJSON, "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid credentials!", decodeError(t, rr).message(t))
}

func TestRegisterHidesCredentialWhenConfigured(t *testing.T) {
	issuer := newTestIssuer(t)
	service := auth.NewService(auth.NewMemoryRepository(), newTestHasher(t), issuer, auth.ServiceConfig{})
	handler := auth.NewHandler(nil, service, auth.NewGuard(issuer, nil, nil), auth.HandlerOptions{})
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)

	rr := do(t, r, http.MethodPost, "/auth/register", aliceJSON, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestRegisterValidation(t *testing.T) {
	h := newAuthRouter(t, nil)

	cases := []struct {
		name string
		body string
		want []string
	}{
		{"weak password", `{"name":"A","email":"a@example.com","password":"abc"}`, []string{
			auth.MessagePasswordTooShort,
			auth.MessagePasswordNoNumber,
			auth.MessagePasswordNoSpecial,
		}},
		{"bad email", `{"name":"A","email":"sadasd","password":"Secret1!"}`, []string{"email must be an email"}},
		{"missing name", `{"email":"a@example.com","password":"Secret1!"}`, []string{"name must be a string"}},
		{"unknown property", `{"name":"A","email":"a@example.com","password":"Secret1!","role":"admin"}`, []string{"property role should not exist"}},
		{"wrong type", `{"name":1,"email":"a@example.com","password":"Secret1!"}`, []string{"name has an invalid type"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/auth/register", tc.body, "")
			require.Equal(t, http.StatusBadRequest, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, "Bad Request", body.Error)
			assert.Equal(t, tc.want, body.messages(t))
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	h := newAuthRouter(t, nil)
	loginToken(t, h)

	wrong := do(t, h, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Wrong1!!"}`, "")
	unknown := do(t, h, http.MethodPost, "/auth/login", `{"email":"bob@example.com","password":"Secret1!"}`, "")
	require.Equal(t, http.StatusBadRequest, wrong.Code)
	require.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Equal(t, "Invalid credentials!", decodeError(t, wrong).message(t))
}

func TestLoginEmptyBody(t *testing.T) {
	h := newAuthRouter(t, nil)

	for _, body := range []string{"", "{}"} {
		rr := do(t, h, http.MethodPost, "/auth/login", body, "")
		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, []string{"email must be an email", "password must be a string"}, decodeError(t, rr).messages(t))
	}
}

func TestCurrentUserEndpoint(t *testing.T) {
	h := newAuthRouter(t, nil)
	token := loginToken(t, h)

	rr := do(t, h, http.MethodGet, "/auth/current-user", "", token)
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["id"])
	assert.Len(t, body, 1)

	rr = do(t, h, http.MethodGet, "/auth/me", "", token)
	require.Equal(t, http.StatusOK, rr.Code)
	var profile map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, body["id"], profile["id"])
	assert.Equal(t, "alice@example.com", profile["email"])
	assert.NotContains(t, profile, "password")
}

func TestCurrentUserRejectsRequests(t *testing.T) {
	h := newAuthRouter(t, nil)

	rr := do(t, h, http.MethodGet, "/auth/current-user", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, auth.MessageMissingToken, decodeError(t, rr).message(t))

	req := httptest.NewRequest(http.MethodGet, "/auth/current-user", nil)
	req.Header.Set("Authorization", "Token abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, auth.MessageMalformedToken, decodeError(t, rr).message(t))

	rr = do(t, h, http.MethodGet, "/auth/current-user", "", "garbage")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, rr).message(t))
}

func TestLogoutEndpoint(t *testing.T) {
	h := newAuthRouter(t, &memoryRevocations{})
	token := loginToken(t, h)

	rr := do(t, h, http.MethodPost, "/auth/logout", "", token)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/auth/current-user", "", token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogoutWithoutRevocation(t *testing.T) {
	h := newAuthRouter(t, nil)
	token := loginToken(t, h)

	rr := do(t, h, http.MethodPost, "/auth/logout", "", token)
	assert.Equal(t, http.StatusNotImplemented, rr.Code)
}
