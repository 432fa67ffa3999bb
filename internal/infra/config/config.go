package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the process configuration.
type Config struct {
	// DiscordToken authenticates the gateway session. Required.
	DiscordToken string `koanf:"discord_token"`

	// DatabaseURL is the Postgres DSN. Required.
	DatabaseURL string `koanf:"database_url"`

	// AllowedGuilds whitelists the guilds the bot tracks. Required.
	AllowedGuilds []string `koanf:"allowed_guilds"`

	// Prefix is the command prefix, default "+".
	Prefix string `koanf:"prefix"`

	// HTTPAddr is the keep-alive/metrics listen address, default ":8080".
	HTTPAddr string `koanf:"http_addr"`

	// RepublishMinutes is the leaderboard republish interval, default 5.
	RepublishMinutes int `koanf:"republish_minutes"`

	// VoiceFlushSeconds is the open-session partial-flush interval,
	// default 60.
	VoiceFlushSeconds int `koanf:"voice_flush_seconds"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

func defaults() Config {
	return Config{
		Prefix:            "+",
		HTTPAddr:          ":8080",
		RepublishMinutes:  5,
		VoiceFlushSeconds: 60,
		LogLevel:          "info",
	}
}

// Load layers defaults, an optional YAML file (ACTIVITYBOT_CONFIG),
// and ACTIVITYBOT_-prefixed env vars, highest last.
func Load() (Config, error) {
	cfg := defaults()
	k := koanf.New(".")

	if path := os.Getenv("ACTIVITYBOT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, err
		}
	}

	// ACTIVITYBOT_DATABASE_URL -> database_url, etc.
	envProvider := env.Provider("ACTIVITYBOT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ACTIVITYBOT_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, err
	}

	cfg.AllowedGuilds = splitGuilds(cfg.AllowedGuilds)

	switch {
	case cfg.DiscordToken == "":
		return Config{}, errors.New("discord_token must not be empty")
	case cfg.DatabaseURL == "":
		return Config{}, errors.New("database_url must not be empty")
	case len(cfg.AllowedGuilds) == 0:
		return Config{}, errors.New("allowed_guilds must not be empty")
	}
	if cfg.RepublishMinutes <= 0 {
		cfg.RepublishMinutes = 5
	}
	if cfg.VoiceFlushSeconds <= 0 {
		cfg.VoiceFlushSeconds = 60
	}
	return cfg, nil
}

// splitGuilds tolerates a single comma-joined env value as well as a
// YAML list.
func splitGuilds(in []string) []string {
	var out []string
	for _, v := range in {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}
