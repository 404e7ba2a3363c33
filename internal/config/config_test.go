package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vals map[string]string) func(string) string {
	return func(k string) string { return vals[k] }
}

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"DOCGUARD_HOST", "DOCGUARD_PORT", "DOCGUARD_CLOUD_DEFAULT", "DOCGUARD_DEV_ORIGINS",
		"DOCGUARD_LOG_LEVEL", "DOCGUARD_AUDIT_PATH", "DOCGUARD_KNOWLEDGE_PROVIDER",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:48155", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.False(t, cfg.Cloud.DefaultAllow)
	assert.Contains(t, cfg.Server.DevOrigins, "null")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.Limit)
	assert.Equal(t, SentenceModelPunkt, cfg.NLP.SentenceModel)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000

[cloud]
provider = "ollama"
base_url = "http://localhost:11434"
model = "llama3.2"

[search]
limit = 3
watch = false

[log]
level = "DEBUG"
`), 0600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, ProviderOllama, cfg.Cloud.Provider)
	assert.Equal(t, 3, cfg.Search.Limit)
	assert.False(t, cfg.Search.Watch)
	assert.Equal(t, 200_000, cfg.Extraction.MaxChars)
}

func TestLoad_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(env(map[string]string{
		"DOCGUARD_HOST":               "0.0.0.0",
		"DOCGUARD_PORT":               "8080",
		"DOCGUARD_CLOUD_DEFAULT":      "TRUE",
		"DOCGUARD_DEV_ORIGINS":        "http://a:1, ,http://b:2",
		"DOCGUARD_LOG_LEVEL":          "warn",
		"DOCGUARD_AUDIT_PATH":         "-",
		"DOCGUARD_KNOWLEDGE_PROVIDER": "Ollama",
		"OPENAI_API_KEY":              "k",
		"OPENAI_MODEL":                "gpt-4.1",
	}))

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.True(t, cfg.Cloud.DefaultAllow)
	assert.Equal(t, []string{"http://a:1", "http://b:2"}, cfg.Server.DevOrigins[len(cfg.Server.DevOrigins)-2:])
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "", cfg.Audit.Path)
	assert.Equal(t, ProviderOllama, cfg.Cloud.Provider)
	assert.Equal(t, "k", cfg.Cloud.APIKey)
	assert.Equal(t, "gpt-4.1", cfg.Cloud.Model)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 70000
	cfg.Cloud.TimeoutSeconds = 0
	cfg.Cloud.Provider = "gemini"
	cfg.Log.Level = "LOUD"

	err := cfg.Validate()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, v := range verrs {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"server.port", "cloud.timeout_seconds", "cloud.provider", "log.level"}, fields)
}

func TestValidate_BadPortFromEnv(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(env(map[string]string{"DOCGUARD_PORT": "http"}))

	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestSave_DropsEnvCredential(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.Cloud.APIKey = "from-env"

	require.NoError(t, Save(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "from-env")

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, reloaded.Server)
	assert.Equal(t, "", reloaded.Cloud.APIKey)
}

func TestSave_KeepsFileCredential(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cloud]\napi_key = \"from-file\"\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "from-file")
}

func TestAuditPath_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Default()

	assert.Equal(t, filepath.Join(home, ".docguard", "audit.db"), cfg.AuditPath())
}
