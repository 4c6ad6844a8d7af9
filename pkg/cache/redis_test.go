package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedis_Enabled(t *testing.T) {
	assert.False(t, Redis{}.Enabled())
	assert.False(t, Redis{Address: "  "}.Enabled())
	assert.True(t, Redis{Address: "127.0.0.1:6379"}.Enabled())
}

func TestNewRedis_UnsupportedMode(t *testing.T) {
	_, err := NewRedis(Redis{Mode: "cluster", Address: "127.0.0.1:6379"})
	assert.ErrorContains(t, err, "unsupported redis mode")
}
