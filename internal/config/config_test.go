package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunabot/werewolf-server-go/internal/rules"
)

func validConfig() *Config {
	return &Config{
		Port:                8080,
		DatabaseURL:         "postgres://localhost/werewolf",
		RedisURL:            "redis://localhost:6379",
		LogLevel:            "info",
		MinParticipants:     5,
		MaxParticipants:     12,
		NightTieBreak:       "first_actor",
		LobbyTTLMinutes:     120,
		PhaseTimeoutMinutes: 15,
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/werewolf")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("MAX_PARTICIPANTS", "18")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 5, cfg.MinParticipants)
	assert.Equal(t, 18, cfg.MaxParticipants)
	assert.Equal(t, "first_actor", cfg.NightTieBreak)
	assert.Equal(t, 2*time.Hour, cfg.LobbyTTL())
	assert.Equal(t, 15*time.Minute, cfg.PhaseTimeout())
}

func TestValidate(t *testing.T) {
	t.Run("accepts a sane config", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate(false))
	})

	t.Run("rejects a plaintext admin password", func(t *testing.T) {
		cfg := validConfig()
		cfg.AdminPasswordHash = "hunter2"
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("accepts a bcrypt admin hash", func(t *testing.T) {
		cfg := validConfig()
		cfg.AdminPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("rejects too few minimum participants", func(t *testing.T) {
		cfg := validConfig()
		cfg.MinParticipants = 2
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects max below min", func(t *testing.T) {
		cfg := validConfig()
		cfg.MaxParticipants = 4
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("rejects unknown tie-break policies", func(t *testing.T) {
		cfg := validConfig()
		cfg.NightTieBreak = "coin_flip"
		assert.Error(t, cfg.Validate(false))
	})
}

func TestRuleset(t *testing.T) {
	cfg := validConfig()
	cfg.NightTieBreak = "majority"

	rs := cfg.Ruleset()
	assert.Equal(t, 5, rs.MinParticipants)
	assert.Equal(t, 12, rs.MaxParticipants)
	assert.Equal(t, rules.TieBreakMajority, rs.NightTieBreak)
}
