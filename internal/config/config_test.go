package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
services:
  metadata:
    enabled: true
    host: 0.0.0.0
    port: 8080
  data:
    enabled: true
    host: 0.0.0.0
    port: 8081
metadataDatabase:
  dialect: embedded
  embeddedDbPath: ${TRAC_DB_PATH}
storagePlugins:
  default:
    type: LOCAL
    properties:
      rootPath: /var/trac/data
tenants:
  bootstrap:
    - acme
  dynamic: true
authentication:
  signingKeyAlias: trac-signing-key
gateway:
  apiPrefix: /trac
  restPrefix: /api/v1
`

func TestLoadSubstitutesEnvAndParses(t *testing.T) {
	t.Setenv("TRAC_DB_PATH", "/var/trac/meta.db")

	dir := t.TempDir()
	path := filepath.Join(dir, "trac.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/trac/meta.db", cfg.MetadataDatabase.EmbeddedDBPath)
	assert.True(t, cfg.Services["metadata"].Enabled)
	assert.Equal(t, 8081, cfg.Services["data"].Port)
	assert.Equal(t, "LOCAL", cfg.StoragePlugins["default"].Type)
	assert.Equal(t, []string{"acme"}, cfg.Tenants.Bootstrap)
	assert.True(t, cfg.Tenants.Dynamic)
	assert.Equal(t, "trac-signing-key", cfg.Authentication.SigningKeyAlias)
}

func TestLoadRejectsMissingStoragePlugins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trac.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
metadataDatabase:
  dialect: embedded
  embeddedDbPath: /tmp/trac.db
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage plugin")
}

func TestLoadRejectsUnknownDialect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trac.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
metadataDatabase:
  dialect: mysql
storagePlugins:
  default:
    type: LOCAL
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialect")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/trac.yaml")
	require.Error(t, err)
}
