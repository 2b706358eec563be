package authorization

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/stepup/internal/authorization/outbound/db"
	"github.com/shandysiswandi/stepup/internal/pkg/clock"
	"github.com/shandysiswandi/stepup/internal/pkg/config"
	"github.com/shandysiswandi/stepup/internal/pkg/hash"
	"github.com/shandysiswandi/stepup/internal/pkg/instrument"
	"github.com/shandysiswandi/stepup/internal/pkg/jwt"
	"github.com/shandysiswandi/stepup/internal/pkg/l10n"
	"github.com/shandysiswandi/stepup/internal/pkg/messaging"
	"github.com/shandysiswandi/stepup/internal/pkg/router"
	"github.com/shandysiswandi/stepup/internal/pkg/testkit"
	"github.com/shandysiswandi/stepup/internal/pkg/uid"
	"github.com/shandysiswandi/stepup/internal/pkg/validator"
	"github.com/shandysiswandi/stepup/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moduleConfig = `
authorization:
  default_lang: en
  store:
    driver: %DRIVER%
  sms:
    expiration_time: 300
    max_verify_tries: 3
  users:
    - "12345678:jdoe:John:Doe:RETAIL"
`

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Message           string            `json:"message"`
	Code              string            `json:"code"`
	Error             map[string]string `json:"error"`
	RemainingAttempts *int              `json:"remaining_attempts"`
}

type harness struct {
	server *httptest.Server
	broker *messaging.Memory
	token  string
}

func newDependency(t *testing.T, driver string) (Dependency, *messaging.Memory, jwt.JWT) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(strings.ReplaceAll(moduleConfig, "%DRIVER%", driver)))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	catalog, err := l10n.New("en")
	require.NoError(t, err)

	bcrypt, err := hash.NewBcrypt(4, "")
	require.NoError(t, err)

	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    bytes.Repeat([]byte("m"), 64),
		Issuer:    "stepup",
		Audiences: []string{"stepup"},
		TTL:       time.Hour,
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	require.NoError(t, err)

	enforcer, err := router.NewEnforcer([]string{"gateway /api/* POST"})
	require.NoError(t, err)

	broker := messaging.NewMemory(16)
	t.Cleanup(func() { _ = broker.Close() })

	return Dependency{
		Router: router.NewRouter(router.Config{
			Config:   cfg,
			UUID:     uid.NewUUID(),
			JWT:      signer,
			Enforcer: enforcer,
		}),
		Messaging:  broker,
		Catalog:    catalog,
		Config:     cfg,
		Instrument: instrument.NewNoop(),
		UUID:       uid.NewRandomUUID(),
		Bcrypt:     bcrypt,
		Clock:      clock.New(),
		Validator:  v,
	}, broker, signer
}

func newHarness(t *testing.T, driver string) *harness {
	t.Helper()

	dep, broker, signer := newDependency(t, driver)
	switch driver {
	case StoreDriverPostgres:
		dep.DBConn = testkit.Postgres(t, db.Schema)
	case StoreDriverRedis:
		dep.CacheConn = testkit.Redis(t)
	}

	require.NoError(t, New(dep))

	token, err := signer.Generate("gateway")
	require.NoError(t, err)

	srv := httptest.NewServer(dep.Router)
	t.Cleanup(srv.Close)

	return &harness{server: srv, broker: broker, token: token}
}

func (h *harness) doJSON(t *testing.T, path string, payload any, token string) (int, []byte) {
	t.Helper()

	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(payload))

	req, err := http.NewRequest(http.MethodPost, h.server.URL+path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func decodeSuccess(t *testing.T, body []byte, out any) successEnvelope {
	t.Helper()

	var env successEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

// issue creates a login authorization and reads the code from the published SMS.
func (h *harness) issue(t *testing.T) (messageID, code string) {
	t.Helper()

	status, body := h.doJSON(t, "/api/auth/sms/create", map[string]any{
		"user_id":         "12345678",
		"organization_id": "RETAIL",
		"operation_context": map[string]any{
			"id":   "op-1",
			"name": "login",
		},
	}, h.token)
	require.Equal(t, http.StatusOK, status, string(body))

	var out struct {
		MessageID string `json:"message_id"`
	}
	decodeSuccess(t, body, &out)
	require.NotEmpty(t, out.MessageID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got event.SMSAuthorizationRequestedMessage
	_ = h.broker.Consume(ctx, event.SMSAuthorizationRequestedDestination, func(_ context.Context, msg messaging.Message) error {
		if err := json.Unmarshal(msg.Body(), &got); err != nil {
			return err
		}
		cancel()
		return nil
	})
	require.Equal(t, out.MessageID, got.MessageID)

	fields := strings.Fields(got.MessageText)
	require.NotEmpty(t, fields)

	return out.MessageID, fields[len(fields)-1]
}

func TestNew_UnknownStoreDriver(t *testing.T) {
	dep, _, _ := newDependency(t, "sqlite")

	err := New(dep)
	require.ErrorIs(t, err, ErrUnknownStoreDriver)
}

func TestNew_StoreConnectionRequired(t *testing.T) {
	for _, driver := range []string{StoreDriverPostgres, StoreDriverRedis} {
		t.Run(driver, func(t *testing.T) {
			dep, _, _ := newDependency(t, driver)

			err := New(dep)
			require.ErrorIs(t, err, ErrUnknownStoreDriver)
		})
	}
}

func TestNew_MissingDependency(t *testing.T) {
	dep, _, _ := newDependency(t, StoreDriverRedis)
	dep.Catalog = nil

	require.Error(t, New(dep))
}

func TestModule_SMSFlow(t *testing.T) {
	for _, driver := range []string{StoreDriverPostgres, StoreDriverRedis} {
		t.Run(driver, func(t *testing.T) {
			h := newHarness(t, driver)

			messageID, code := h.issue(t)
			assert.Len(t, code, 8)

			status, body := h.doJSON(t, "/api/auth/sms/verify", map[string]any{
				"message_id":         messageID,
				"authorization_code": "00000000",
			}, h.token)
			require.Equal(t, http.StatusUnauthorized, status)
			env := decodeError(t, body)
			assert.Equal(t, "SMS_AUTHORIZATION_FAILED", env.Code)
			assert.Equal(t, "smsAuthorization.failed", env.Message)
			require.NotNil(t, env.RemainingAttempts)
			assert.Equal(t, 2, *env.RemainingAttempts)

			status, body = h.doJSON(t, "/api/auth/sms/verify", map[string]any{
				"message_id":         messageID,
				"authorization_code": code,
			}, h.token)
			require.Equal(t, http.StatusOK, status, string(body))
			assert.Equal(t, "smsAuthorization.verified", decodeSuccess(t, body, nil).Message)

			status, body = h.doJSON(t, "/api/auth/sms/verify", map[string]any{
				"message_id":         messageID,
				"authorization_code": code,
			}, h.token)
			require.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "smsAuthorization.alreadyVerified", decodeError(t, body).Message)
		})
	}
}

func TestModule_CombinedAuthentication(t *testing.T) {
	h := newHarness(t, StoreDriverRedis)

	messageID, code := h.issue(t)

	status, body := h.doJSON(t, "/api/auth/combined/authenticate", map[string]any{
		"username":           "jdoe",
		"password":           "wrong",
		"message_id":         messageID,
		"authorization_code": code,
	}, h.token)
	require.Equal(t, http.StatusUnauthorized, status)
	env := decodeError(t, body)
	assert.Equal(t, "AUTHENTICATION_FAILED", env.Code)
	require.NotNil(t, env.RemainingAttempts)
	assert.Equal(t, 2, *env.RemainingAttempts)

	status, body = h.doJSON(t, "/api/auth/combined/authenticate", map[string]any{
		"username":           "jdoe",
		"password":           "test",
		"message_id":         messageID,
		"authorization_code": code,
	}, h.token)
	require.Equal(t, http.StatusOK, status, string(body))

	var out struct {
		UserID string `json:"user_id"`
	}
	decodeSuccess(t, body, &out)
	assert.Equal(t, "12345678", out.UserID)
}

func TestModule_ServiceAuthentication(t *testing.T) {
	h := newHarness(t, StoreDriverRedis)

	status, body := h.doJSON(t, "/api/auth/user/info", map[string]any{"user_id": "12345678"}, "")
	require.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, body).Code)

	status, body = h.doJSON(t, "/api/auth/user/info", map[string]any{"user_id": "12345678"}, h.token)
	require.Equal(t, http.StatusOK, status, string(body))

	var out struct {
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	decodeSuccess(t, body, &out)
	assert.Equal(t, "John", out.GivenName)
	assert.Equal(t, "Doe", out.FamilyName)
}
