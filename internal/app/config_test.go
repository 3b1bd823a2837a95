package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsage/server/internal/core"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("POSTGRES_URL", "postgres://localhost/skills")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, core.Production, cfg.Env())
	assert.Equal(t, "postgres://localhost/skills", cfg.Postgres.URL)
	assert.False(t, cfg.Redis.Enabled())
	assert.InDelta(t, 0.6, cfg.Pipeline.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 2, cfg.Pipeline.RefinementCap)
	assert.Equal(t, "banded", cfg.Pipeline.VerifyScoreMode)
	assert.InDelta(t, 0.6, cfg.Retrieval.SimilarityThreshold, 1e-9)
	assert.Equal(t, []string{"reddit", "twitter"}, cfg.Access.BlockedSources)

	ttl, err := cfg.ConversationTTL()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VERIFY_SCORE_MODE=numeric\nRETRIEVAL_MAX_SKILLS=7\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("VERIFY_SCORE_MODE")
		os.Unsetenv("RETRIEVAL_MAX_SKILLS")
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "numeric", cfg.Pipeline.VerifyScoreMode)
	assert.Equal(t, 7, cfg.Retrieval.MaxSkills)
}

func TestConversationTTL_Invalid(t *testing.T) {
	cfg := Config{}
	cfg.Conversation.TTL = "soon"
	_, err := cfg.ConversationTTL()
	assert.Error(t, err)
}
