package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  name: stepup
  maintenance:
    enabled: false
    endpoints: "/api/auth/sms/create, ,/api/auth/sms/verify"
authorization:
  sms:
    expiration_time: 300
    max_verify_tries: 5
  lang: en
auth:
  policies:
    - "workflow /api/auth/sms/create POST"
    - "workflow /api/auth/sms/verify POST"
  jwt:
    secret: c2VjcmV0
    ttl: 1h30m
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "stepup", cfg.GetString("app.name"))
	assert.False(t, cfg.GetBool("app.maintenance.enabled"))
	assert.Equal(t, []string{"/api/auth/sms/create", "/api/auth/sms/verify"}, cfg.GetArray("app.maintenance.endpoints"))
	assert.Equal(t, []string{"workflow /api/auth/sms/create POST", "workflow /api/auth/sms/verify POST"}, cfg.GetArray("auth.policies"))
	assert.Equal(t, 300*time.Second, cfg.GetSecond("authorization.sms.expiration_time"))
	assert.Equal(t, 5, cfg.GetInt("authorization.sms.max_verify_tries"))
	assert.Equal(t, 90*time.Minute, cfg.GetDuration("auth.jwt.ttl"))
	assert.Equal(t, []byte("secret"), cfg.GetBinary("auth.jwt.secret"))
	assert.Empty(t, cfg.GetArray("missing.key"))
	assert.NoError(t, cfg.Close())

	_, err = NewViperFromBytes("", nil)
	assert.Error(t, err)
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("STEPUP_AUTHORIZATION_SMS_MAX_VERIFY_TRIES", "3")

	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.GetInt("authorization.sms.max_verify_tries"))
}

func TestNewViper_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := NewViper(path)
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.GetString("authorization.lang"))

	_, err = NewViper(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
