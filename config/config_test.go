package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))

	assert.Equal(t, "Lapmart", cfg.System.Appid)
	assert.Equal(t, 5000, cfg.Web.Port)
	assert.Equal(t, "lapmart", cfg.Database.Name)
	assert.Equal(t, "usd", cfg.Payment.Currency)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "lapmart.yml")
	content := `
system:
  appid: Lapmart
  location: UTC
  workdir: ` + dir + `
web:
  host: 127.0.0.1
  port: 8090
  jwt_secret: file-secret
database:
  url: mongodb://db:27017
  name: lapmart_test
payment:
  provider_url: https://pay.example.com/intents
  currency: eur
logger:
  mode: production
`
	require.NoError(t, os.WriteFile(cfile, []byte(content), 0644))

	cfg := LoadConfig(cfile)

	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
	assert.Equal(t, 8090, cfg.Web.Port)
	assert.Equal(t, "file-secret", cfg.Web.JwtSecret)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.Url)
	assert.Equal(t, "lapmart_test", cfg.Database.Name)
	assert.Equal(t, "eur", cfg.Payment.Currency)
	assert.Equal(t, "production", cfg.Logger.Mode)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("LAPMART_WEB_PORT", "9001")
	t.Setenv("LAPMART_DB_NAME", "lapmart_env")
	t.Setenv("LAPMART_WEB_JWT_SECRET", "env-secret")

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))

	assert.Equal(t, 9001, cfg.Web.Port)
	assert.Equal(t, "lapmart_env", cfg.Database.Name)
	assert.Equal(t, "env-secret", cfg.Web.JwtSecret)
}
