// Package config loads the TOML configuration file into a single immutable
// Config struct, following spec.md §6. Loading is the only mutable phase;
// once Load returns, the struct is read-only for the remainder of the
// process lifetime.
package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// ContentRoot is one [[content]] entry: a scan root and its scanner options.
type ContentRoot struct {
	Type           string `mapstructure:"type"`
	Path           string `mapstructure:"path"`
	UseFolderNames bool   `mapstructure:"use_folder_names"`
	UseCollections bool   `mapstructure:"use_collections"`
}

// DB holds the content store location.
type DB struct {
	Path string `mapstructure:"path"`
}

// Server holds HTTP/SSDP advertisement settings.
type Server struct {
	UUID     string `mapstructure:"uuid"`
	Port     uint16 `mapstructure:"port"`
	Hostname string `mapstructure:"hostname"`
	Name     string `mapstructure:"name"`
}

// Logging holds log sink settings.
type Logging struct {
	Path     string `mapstructure:"path"`
	Truncate bool   `mapstructure:"truncate"`
}

// Config is the fully materialized, immutable configuration.
type Config struct {
	Content []ContentRoot `mapstructure:"content"`
	DB      DB            `mapstructure:"db"`
	Server  Server        `mapstructure:"server"`
	Logging Logging       `mapstructure:"logging"`
}

// Load reads and validates the TOML file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	for i := range cfg.Content {
		// viper leaves an absent bool at its zero value, so detect
		// "key present in the file" explicitly to apply spec.md's
		// "default true" semantics rather than Go's zero-value default.
		key := fmt.Sprintf("content.%d", i)
		if !v.IsSet(key + ".use_folder_names") {
			cfg.Content[i].UseFolderNames = true
		}
		if !v.IsSet(key + ".use_collections") {
			cfg.Content[i].UseCollections = true
		}
		if cfg.Content[i].Path == "" {
			return nil, fmt.Errorf("config: content[%d] missing required path", i)
		}
	}

	if cfg.Server.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "localhost"
		}
		cfg.Server.Hostname = hostname
	}

	if cfg.Server.Name == "" {
		cfg.Server.Name = fmt.Sprintf("EEMSat %s", cfg.Server.Hostname)
	}

	if cfg.Server.UUID == "" {
		cfg.Server.UUID = DeriveUUID(cfg.Server.Hostname)
	}

	if cfg.DB.Path == "" {
		cfg.DB.Path = "/var/lib/eems/db"
	}

	return &cfg, nil
}

// DeriveUUID computes a deterministic DNS-namespaced UUIDv5 from a host
// name, used when server.uuid is absent from the configuration.
func DeriveUUID(hostname string) string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(hostname)).String()
}
