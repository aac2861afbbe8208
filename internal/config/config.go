package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	"github.com/lunabot/werewolf-server-go/internal/rules"
)

type Config struct {
	Port              int    `env:"PORT" envDefault:"8080"`
	DatabaseURL       string `env:"DATABASE_URL,required"`
	RedisURL          string `env:"REDIS_URL,required"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`

	MinParticipants int    `env:"MIN_PARTICIPANTS" envDefault:"5"`
	MaxParticipants int    `env:"MAX_PARTICIPANTS" envDefault:"12"`
	NightTieBreak   string `env:"NIGHT_TIE_BREAK" envDefault:"first_actor"`

	LobbyTTLMinutes     int `env:"LOBBY_TTL_MINUTES" envDefault:"120"`
	PhaseTimeoutMinutes int `env:"PHASE_TIMEOUT_MINUTES" envDefault:"15"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LobbyTTL is how long an idle lobby survives before the sweeper removes it.
func (c *Config) LobbyTTL() time.Duration {
	return time.Duration(c.LobbyTTLMinutes) * time.Minute
}

// PhaseTimeout is how long an active phase may sit idle before the sweeper
// forces it to resolve.
func (c *Config) PhaseTimeout() time.Duration {
	return time.Duration(c.PhaseTimeoutMinutes) * time.Minute
}

// Ruleset builds the game policy configuration.
func (c *Config) Ruleset() rules.Ruleset {
	return rules.Ruleset{
		MinParticipants: c.MinParticipants,
		MaxParticipants: c.MaxParticipants,
		NightTieBreak:   rules.NightTieBreak(c.NightTieBreak),
	}
}

func (c *Config) Validate(isProduction bool) error {
	if c.AdminPasswordHash != "" {
		if !strings.HasPrefix(c.AdminPasswordHash, "$2a$") &&
			!strings.HasPrefix(c.AdminPasswordHash, "$2b$") &&
			!strings.HasPrefix(c.AdminPasswordHash, "$2y$") {
			return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash (generate with: go run scripts/hash-password.go <password>)")
		}
	}

	if c.MinParticipants < 3 {
		return fmt.Errorf("MIN_PARTICIPANTS must be at least 3")
	}
	if c.MaxParticipants < c.MinParticipants {
		return fmt.Errorf("MAX_PARTICIPANTS must be >= MIN_PARTICIPANTS")
	}
	if !rules.ValidNightTieBreak(c.NightTieBreak) {
		return fmt.Errorf("NIGHT_TIE_BREAK must be one of: first_actor, majority")
	}

	if isProduction {
		if c.AdminPasswordHash == "" {
			log.Warn().Msg("ADMIN_PASSWORD_HASH is empty in production: forced phase advance endpoint disabled")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
