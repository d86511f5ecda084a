package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATA_SOURCE", "")
	t.Setenv("DATA_VERSIONS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "files", cfg.Data.Source)
	assert.Equal(t, []string{"Jun", "Sep"}, cfg.Data.Versions)
	assert.False(t, cfg.PostgreSQL.Enabled)
}

func TestLoadPostgresSourceNeedsConnection(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_ENABLED", "false")
	t.Setenv("DATA_SOURCE", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", " Jun, Sep ,,Dec")
	assert.Equal(t, []string{"Jun", "Sep", "Dec"}, getEnvAsList("TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, getEnvAsList("TEST_LIST_MISSING", []string{"x"}))
}

func TestHasVersion(t *testing.T) {
	d := DataConfig{Versions: []string{"Jun", "Sep"}}
	assert.True(t, d.HasVersion("jun"))
	assert.False(t, d.HasVersion("Dec"))
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AZURE_OPENAI_API_KEY", "key")
	t.Setenv("AZURE_OPENAI_API_VERSION", "2024-02-01")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	t.Setenv("AZURE_OPENAI_CHAT_DEPLOYMENT_NAME", "gpt-4o")

	p, err := NewCredentialsProvider(SourceEnv, "")
	require.NoError(t, err)

	creds, err := p.Credentials()
	require.NoError(t, err)
	assert.True(t, creds.Complete())
	assert.Equal(t, "gpt-4o", creds.DeploymentName)
}

func TestSecretsFileCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	content := "AZURE_OPENAI_API_KEY: secret\n" +
		"AZURE_OPENAI_API_VERSION: \"2024-02-01\"\n" +
		"AZURE_OPENAI_ENDPOINT: https://example.openai.azure.com\n" +
		"AZURE_OPENAI_CHAT_DEPLOYMENT_NAME: gpt-4o-mini\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := NewCredentialsProvider(SourceSecrets, path)
	require.NoError(t, err)
	assert.Equal(t, SourceSecrets, p.Name())

	creds, err := p.Credentials()
	require.NoError(t, err)
	assert.Equal(t, Credentials{
		APIKey:         "secret",
		APIVersion:     "2024-02-01",
		Endpoint:       "https://example.openai.azure.com",
		DeploymentName: "gpt-4o-mini",
	}, creds)
}

func TestSecretsFileMissing(t *testing.T) {
	p := SecretsFileCredentials{Path: filepath.Join(t.TempDir(), "nope.yaml")}
	_, err := p.Credentials()
	assert.Error(t, err)
}

func TestUnknownCredentialsSource(t *testing.T) {
	_, err := NewCredentialsProvider("vault", "")
	assert.Error(t, err)
}
