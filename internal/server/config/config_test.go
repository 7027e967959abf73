package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":8080", cfg.EndpointAddr)
	assert.Equal(t, "HS256", cfg.SigningAlgorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Less(t, cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)
}

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("FINAUTH_JWT_SECRET_KEY", "env-secret")
	t.Setenv("FINAUTH_JWT_ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("FINAUTH_JWT_REFRESH_TOKEN_EXPIRE_DAYS", "14")
	t.Setenv("FINAUTH_IDENTITY_PROVIDER_TIMEOUT", "2s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "env-secret", cfg.SecretKey)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTokenValidityDuration)
	assert.Equal(t, 2*time.Second, cfg.IdentityProviderTimeout)
	// untouched values keep defaults
	assert.Equal(t, ":8080", cfg.EndpointAddr)
}

func TestParseJson_File(t *testing.T) {
	jc := JsonConfig{
		EndpointAddr:     ":9090",
		DatabaseDSN:      "postgres://u:p@h:5432/db",
		SecretKey:        "json-secret",
		SigningAlgorithm: "HS512",
	}
	jc.AccessTokenValidityDuration.Duration = 10 * time.Minute
	jc.RefreshTokenValidityDuration.Duration = 48 * time.Hour

	b, err := json.Marshal(jc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, b, 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"app", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, ":9090", cfg.EndpointAddr)
	assert.Equal(t, "json-secret", cfg.SecretKey)
	assert.Equal(t, "HS512", cfg.SigningAlgorithm)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenValidityDuration)
}

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"app", "-a", ":7070", "-s", "flag-secret", "-t", "5", "-r", "3"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, "flag-secret", cfg.SecretKey)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 3*24*time.Hour, cfg.RefreshTokenValidityDuration)
}
