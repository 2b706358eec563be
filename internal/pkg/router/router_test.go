package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/shandysiswandi/stepup/internal/pkg/goerror"
	"github.com/shandysiswandi/stepup/internal/pkg/jwt"
	"github.com/shandysiswandi/stepup/internal/pkg/uid"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name string `json:"name"`
}

func newTestRouter(t *testing.T) (*Router, jwt.JWT) {
	t.Helper()

	tokens, err := jwt.NewHS512(jwt.Config{
		Secret:    bytes.Repeat([]byte("k"), 64),
		Issuer:    "stepup",
		Audiences: []string{"stepup"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	enforcer, err := NewEnforcer([]string{
		"workflow /api/echo POST",
		"workflow /api/fail/:kind post",
	})
	require.NoError(t, err)

	r := NewRouter(Config{UUID: uid.NewUUID(), JWT: tokens, Enforcer: enforcer})
	r.GET("/health", func(*Request) (any, error) { return map[string]string{"status": "ok"}, nil })
	r.POST("/api/echo", func(req *Request) (any, error) {
		var in echoRequest
		if err := req.DecodeBody(&in); err != nil {
			return nil, err
		}
		return map[string]string{"name": in.Name, "client": req.ClientID()}, nil
	})
	r.POST("/api/fail/:kind", func(req *Request) (any, error) {
		switch req.GetParam("kind") {
		case "attempt":
			return nil, goerror.NewAttemptFailure("smsAuthorization.failed", goerror.CodeSMSAuthorizationFailed, 2)
		case "validation":
			return nil, goerror.NewInvalidInput(validator.ValidationError{{Field: "user_id", Key: "smsAuthorization.userId.empty"}})
		case "server":
			return nil, goerror.NewServer(errors.New("db exploded"))
		default:
			return nil, errors.New("raw")
		}
	})

	return r, tokens
}

func do(t *testing.T, h http.Handler, method, path, body, token string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestRouter_Auth(t *testing.T) {
	r, tokens := newTestRouter(t)

	workflow, err := tokens.Generate("workflow")
	require.NoError(t, err)
	other, err := tokens.Generate("other")
	require.NoError(t, err)

	code, body := do(t, r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])

	code, body = do(t, r, http.MethodPost, "/api/echo", `{"name":"a"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	code, body = do(t, r, http.MethodPost, "/api/echo", `{"name":"a"}`, "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	code, body = do(t, r, http.MethodPost, "/api/echo", `{"name":"a"}`, other)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", body["code"])

	code, body = do(t, r, http.MethodPost, "/api/echo", `{"name":"a"}`, workflow)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a", body["data"].(map[string]any)["name"])
	assert.Equal(t, "workflow", body["data"].(map[string]any)["client"])
}

func TestRouter_Errors(t *testing.T) {
	r, tokens := newTestRouter(t)
	token, err := tokens.Generate("workflow")
	require.NoError(t, err)

	code, body := do(t, r, http.MethodPost, "/api/echo", `{"name":"a","extra":1}`, token)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INPUT_INVALID", body["code"])

	code, body = do(t, r, http.MethodPost, "/api/echo", `{"name":"a"}{"name":"b"}`, token)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INPUT_INVALID", body["code"])

	code, body = do(t, r, http.MethodPost, "/api/fail/attempt", "", token)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "SMS_AUTHORIZATION_FAILED", body["code"])
	assert.Equal(t, "smsAuthorization.failed", body["message"])
	assert.EqualValues(t, 2, body["remaining_attempts"])

	code, body = do(t, r, http.MethodPost, "/api/fail/validation", "", token)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]any{"user_id": "smsAuthorization.userId.empty"}, body["error"])

	code, body = do(t, r, http.MethodPost, "/api/fail/server", "", token)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "ERROR_GENERIC", body["code"])
	assert.Equal(t, "Unknown Error", body["message"])
	assert.NotContains(t, body, "remaining_attempts")

	code, body = do(t, r, http.MethodPost, "/api/fail/raw", "", token)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "ERROR_GENERIC", body["code"])

	code, body = do(t, r, http.MethodGet, "/nope", "", token)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestRouter_CorrelationID(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderCorrelationID, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(HeaderCorrelationID))
}

func TestNewEnforcer_InvalidPolicy(t *testing.T) {
	_, err := NewEnforcer([]string{"workflow /api/echo"})
	assert.Error(t, err)
}

func TestCorrelationID_Headers(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "correlation header", headers: map[string]string{HeaderCorrelationID: " abc "}, want: "abc"},
		{name: "request id fallback", headers: map[string]string{HeaderRequestID: "req-1"}, want: "req-1"},
		{name: "control characters ignored", headers: map[string]string{HeaderCorrelationID: "a\tb", HeaderRequestID: "req-2"}, want: "req-2"},
		{name: "truncated", headers: map[string]string{HeaderCorrelationID: strings.Repeat("x", 200)}, want: strings.Repeat("x", maxCorrelationIDLen)},
		{name: "none", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, correlationID(req))
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	ip, ok := clientIP(req)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", ip.String())

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	ip, ok = clientIP(req)
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", ip.String())

	req.Header.Set("X-Real-IP", "not-an-ip")
	ip, ok = clientIP(req)
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", ip.String())
}

func TestRequest_DecodeBody_ContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{name: "json with charset", contentType: "application/json; charset=utf-8"},
		{name: "no content type"},
		{name: "form", contentType: "application/x-www-form-urlencoded", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hr := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
			if tt.contentType != "" {
				hr.Header.Set("Content-Type", tt.contentType)
			}

			var in echoRequest
			err := (&Request{Request: hr}).DecodeBody(&in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", in.Name)
		})
	}
}

func TestPeekBody_RestoresBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"secret"}`))

	head, truncated := peekBody(req)
	assert.False(t, truncated)
	assert.Equal(t, `{"password":"secret"}`, string(head))

	var in map[string]string
	require.NoError(t, json.NewDecoder(req.Body).Decode(&in))
	assert.Equal(t, "secret", in["password"])
}

func TestResponseCapture_Truncates(t *testing.T) {
	rec := &responseCapture{ResponseWriter: httptest.NewRecorder()}

	n, err := rec.Write(bytes.Repeat([]byte("a"), maxLoggedBodyBytes+10))
	require.NoError(t, err)
	assert.Equal(t, maxLoggedBodyBytes+10, n)
	assert.Equal(t, maxLoggedBodyBytes, rec.body.Len())
	assert.True(t, rec.truncated)
	assert.Equal(t, http.StatusOK, rec.statusCode())

	rec.SetError(goerror.NewBusiness("authentication.failed", goerror.CodeAuthenticationFailed))
	assert.Equal(t, "AUTHENTICATION_FAILED", rec.errorCode())
}
