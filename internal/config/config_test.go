package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

const minimalYAML = `
storage:
  dsn: postgres://localhost/launchbase
jwt:
  access_secret: a-secret
  refresh_secret: r-secret
  reset_secret: x-secret
`

func TestLoadDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Cache.Kind)
	assert.Equal(t, "168h", c.JWT.AccessTTL)
	assert.Equal(t, "1h", c.JWT.ResetTTL)
	assert.Equal(t, 10, c.Rate.Login.Limit)
	assert.Equal(t, "10m", c.Rate.Forgot.Window)
}

func TestLoadRequiresDSNAndSecrets(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  addr: \":9999\"\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, `
storage:
  dsn: postgres://localhost/launchbase
jwt:
  access_secret: same
  refresh_secret: same
  reset_secret: other
`))
	require.Error(t, err, "secretos repetidos entre variantes deben rechazarse")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9001")
	t.Setenv("JWT_ACCESS_SECRET", "env-access")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")

	c, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9001", c.Server.Addr)
	assert.Equal(t, "env-access", c.JWT.AccessSecret)
	assert.Equal(t, "sk_test_123", c.Stripe.SecretKey)
}

func TestDurationHelper(t *testing.T) {
	assert.Equal(t, 2*time.Minute, Duration("2m", time.Hour))
	assert.Equal(t, time.Hour, Duration("garbage", time.Hour))
	assert.Equal(t, time.Hour, Duration("", time.Hour))
}
