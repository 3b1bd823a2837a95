package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := Config{URL: "redis://" + mr.Addr(), ReadTimeout: 1, WriteTimeout: 1, DialTimeout: 1}

	client, err := cfg.New()
	require.NoError(t, err)
	defer client.Close()
	assert.True(t, cfg.Enabled())
}

func TestNewRequiresURL(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.Enabled())
	_, err := cfg.New()
	assert.Error(t, err)
}

func TestNewRejectsBadURL(t *testing.T) {
	cfg := Config{URL: "://nope"}
	_, err := cfg.New()
	assert.Error(t, err)
}
