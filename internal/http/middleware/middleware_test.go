package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-user-api/internal/models"
)

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errEnvelope struct {
	Error apiError `json:"error"`
}

// fakeVerifier принимает единственный "валидный" токен.
type fakeVerifier struct {
	token     string
	principal *models.Principal
}

func (v *fakeVerifier) VerifyAccessToken(raw string) (*models.Principal, error) {
	if raw == v.token {
		return v.principal, nil
	}

	return nil, errors.New("invalid token")
}

// fakeRevoked — множество отозванных субъектов.
type fakeRevoked map[string]bool

func (f fakeRevoked) IsRevoked(email string) bool { return f[email] }

func TestChain_Order(t *testing.T) {
	order := []string{}

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m1-end")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m2-end")
		})
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), m1, m2)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}), RequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, seen, 32)
	require.Equal(t, seen, rec.Header().Get("X-Request-Id"))
}

func TestRequestID_RespectsIncoming(t *testing.T) {
	var seen string

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}), RequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-from-lb")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "rid-from-lb", seen)
	require.Equal(t, "rid-from-lb", rec.Header().Get("X-Request-Id"))
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), Recover())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "internal", env.Error.Code)
	require.NotContains(t, rec.Body.String(), "boom")
}

// authRequest собирает запрос с нужным набором сессионных атрибутов.
func authRequest(method string, csrfCookie, csrfHeader, accessToken string) *http.Request {
	req := httptest.NewRequest(method, "/users", nil)
	if csrfCookie != "" {
		req.AddCookie(&http.Cookie{Name: CSRFCookie, Value: csrfCookie})
	}
	if csrfHeader != "" {
		req.Header.Set(CSRFHeader, csrfHeader)
	}
	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: accessToken})
	}
	return req
}

func TestAuthenticate(t *testing.T) {
	verifier := &fakeVerifier{
		token:     "good-token",
		principal: &models.Principal{Subject: "alice@example.com", Role: models.RoleUser},
	}
	revoked := fakeRevoked{"deleted@example.com": true}

	var gotPrincipal *models.Principal
	var principalOK bool

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrincipal, principalOK = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), Authenticate(verifier, revoked))

	tcs := []struct {
		name       string
		req        *http.Request
		wantStatus int
	}{
		{"ok", authRequest(http.MethodGet, "csrf-1", "csrf-1", "good-token"), http.StatusNoContent},
		{"options_bypass", authRequest(http.MethodOptions, "", "", ""), http.StatusNoContent},
		{"no_csrf_cookie", authRequest(http.MethodGet, "", "csrf-1", "good-token"), http.StatusUnauthorized},
		{"no_csrf_header", authRequest(http.MethodGet, "csrf-1", "", "good-token"), http.StatusUnauthorized},
		{"csrf_mismatch", authRequest(http.MethodGet, "csrf-1", "csrf-2", "good-token"), http.StatusUnauthorized},
		{"no_access_cookie", authRequest(http.MethodGet, "csrf-1", "csrf-1", ""), http.StatusUnauthorized},
		{"bad_token", authRequest(http.MethodGet, "csrf-1", "csrf-1", "forged"), http.StatusUnauthorized},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotPrincipal, principalOK = nil, false

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tc.req)

			require.Equal(t, tc.wantStatus, rec.Code)

			if tc.wantStatus == http.StatusUnauthorized {
				// Единый ответ по всем причинам отказа.
				var env errEnvelope
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
				require.Equal(t, "unauthenticated", env.Error.Code)
				require.Equal(t, "unauthenticated", env.Error.Message)
			}

			if tc.name == "ok" {
				require.True(t, principalOK)
				require.Equal(t, "alice@example.com", gotPrincipal.Subject)
			}
		})
	}
}

func TestAuthenticate_RevokedSubject(t *testing.T) {
	verifier := &fakeVerifier{
		token:     "good-token",
		principal: &models.Principal{Subject: "deleted@example.com", Role: models.RoleUser},
	}
	revoked := fakeRevoked{"deleted@example.com": true}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for revoked subject")
	}), Authenticate(verifier, revoked))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authRequest(http.MethodGet, "csrf-1", "csrf-1", "good-token"))

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "unauthenticated", env.Error.Code)
}

// TestAuthenticate_CSRFHeaderName фиксирует имя заголовка на проводе:
// оно совпадает с именем cookie, клиент возвращает значение как есть.
func TestAuthenticate_CSRFHeaderName(t *testing.T) {
	require.Equal(t, "xsrf-token", CSRFHeader)
	require.Equal(t, CSRFCookie, CSRFHeader)

	verifier := &fakeVerifier{
		token:     "good-token",
		principal: &models.Principal{Subject: "alice@example.com", Role: models.RoleUser},
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), Authenticate(verifier, fakeRevoked{}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(&http.Cookie{Name: "xsrf-token", Value: "csrf-1"})
	req.Header.Set("xsrf-token", "csrf-1")
	req.AddCookie(&http.Cookie{Name: "jwt-access-token", Value: "good-token"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPrincipalFrom_AbsentWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	p, ok := PrincipalFrom(req.Context())
	require.False(t, ok)
	require.Nil(t, p)
}
