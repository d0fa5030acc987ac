package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connectkit/internal/oauth"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, oauth.DefaultScopes, cfg.Scopes)
	assert.Equal(t, oauth.DefaultCallbackPort, cfg.CallbackPort)
	assert.Equal(t, oauth.DefaultCallbackTimeout, time.Duration(cfg.CallbackTimeout))
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfigFile(t, `
endpoints:
  token: http://localhost:9000/token
scopes:
  - openid
  - email
callbackPort: 9914
callbackTimeout: 90s
replicateBaseURL: http://localhost:9001
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/token", cfg.Endpoints.Token)
	assert.Empty(t, cfg.Endpoints.Authorization)
	assert.Equal(t, []string{"openid", "email"}, cfg.Scopes)
	assert.Equal(t, 9914, cfg.CallbackPort)
	assert.Equal(t, 90*time.Second, time.Duration(cfg.CallbackTimeout))
	assert.Equal(t, "http://localhost:9001", cfg.ReplicateBaseURL)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, "callbackPort: 9000\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.CallbackPort)
	assert.Equal(t, oauth.DefaultScopes, cfg.Scopes)
	assert.Equal(t, oauth.DefaultCallbackTimeout, time.Duration(cfg.CallbackTimeout))
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "callbackPort: [not a port\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfigFile(t, "callbackTimeout: soon\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestConfig_OAuthEndpoints(t *testing.T) {
	cfg := Config{}
	endpoints := cfg.OAuthEndpoints()
	assert.Equal(t, oauth.DefaultEndpoints(), endpoints)

	cfg.Endpoints.Token = "http://localhost:9000/token"
	endpoints = cfg.OAuthEndpoints()
	assert.Equal(t, "http://localhost:9000/token", endpoints.Token)
	assert.Equal(t, oauth.DefaultAuthorizationEndpoint, endpoints.Authorization)
	assert.Equal(t, oauth.DefaultUserinfoEndpoint, endpoints.Userinfo)
}
