package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("NOVEL_TEST_HOST", "db.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "host: ${NOVEL_TEST_HOST}", "host: db.internal"},
		{"set variable ignores default", "host: ${NOVEL_TEST_HOST:localhost}", "host: db.internal"},
		{"default used", "port: ${NOVEL_TEST_PORT_UNSET:5432}", "port: 5432"},
		{"empty default", "key: ${NOVEL_TEST_KEY_UNSET:}", "key: "},
		{"unset without default kept", "key: ${NOVEL_TEST_KEY_UNSET}", "key: ${NOVEL_TEST_KEY_UNSET}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadFromMergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("APP_ENV", "staging")
	t.Setenv("NOVEL_TEST_XAI", "xai-secret")

	writeConfig(t, dir, "config.yaml", `
vector:
  backend: milvus
llm:
  providers:
    grok:
      api_key: ${NOVEL_TEST_XAI}
retrieval:
  chunk_size: 400
  chunk_overlap: 50
`)
	writeConfig(t, dir, "config.staging.yaml", `
retrieval:
  default_top_k: 8
`)

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, VectorBackendMilvus, cfg.Vector.Backend)
	assert.Equal(t, "xai-secret", cfg.LLM.Providers["grok"].APIKey)
	assert.Equal(t, 400, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 8, cfg.Retrieval.DefaultTopK)
	assert.Equal(t, 50, cfg.Retrieval.MaxTopK)
	assert.Equal(t, "idx_novel_chunks", cfg.Vector.RediSearch.IndexName)
	assert.Equal(t, time.Minute, cfg.Security.RateLimit.Window)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Vector:    VectorConfig{Backend: VectorBackendRedis},
			Retrieval: RetrievalConfig{ChunkSize: 600, ChunkOverlap: 100},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Vector.Backend = "faiss"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Retrieval.ChunkOverlap = 600
	assert.Error(t, cfg.Validate())
}

func TestPostgresConnString(t *testing.T) {
	c := PostgresConfig{Host: "h", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", c.ConnString())

	c.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnString())
}
