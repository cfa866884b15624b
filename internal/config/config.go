// Package config loads server configuration from an optional YAML file.
// Command-line flags override anything the file sets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr             string `yaml:"listen_addr"`
	DBPath                 string `yaml:"db_path"`
	AdminKeyFile           string `yaml:"admin_key_file"`
	MaxAutocompleteResults int    `yaml:"max_autocomplete_results"`
	NotifyOnNewComment     *bool  `yaml:"notify_on_new_comment"`
	RateLimitPerMinute     int    `yaml:"rate_limit_per_minute"`
	Dev                    bool   `yaml:"dev"`
}

func Default() Config {
	notify := true
	return Config{
		ListenAddr:             ":8080",
		DBPath:                 "colloq.db",
		AdminKeyFile:           "admin-api-key.txt",
		MaxAutocompleteResults: 5,
		NotifyOnNewComment:     &notify,
		RateLimitPerMinute:     120,
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// when path is empty; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.NotifyOnNewComment == nil {
		notify := true
		cfg.NotifyOnNewComment = &notify
	}
	return cfg, nil
}

func (c Config) Notify() bool {
	return c.NotifyOnNewComment == nil || *c.NotifyOnNewComment
}
