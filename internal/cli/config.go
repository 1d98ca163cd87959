package cli

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// defaultConfigFile is looked up in the working directory when no
// --config flag is given.
const defaultConfigFile = ".pinfold.toml"

// Config is the optional TOML configuration file.
//
//	[cache]
//	location = "redis://localhost:6379/0"
//	ttl = "24h"
//
//	[lint]
//	disable = ["vcs-no-ref"]
//	unpinned = true
//
//	[registry]
//	url = "https://pypi.org/pypi"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Cache    CacheConfig    `toml:"cache"`
	Lint     LintConfig     `toml:"lint"`
	Registry RegistryConfig `toml:"registry"`
	Server   ServerConfig   `toml:"server"`
}

// CacheConfig selects the cache backend. Location accepts a directory
// path, a redis:// URL, a mongodb:// URL, or "none".
type CacheConfig struct {
	Location string       `toml:"location"`
	TTL      tomlDuration `toml:"ttl"`
}

// LintConfig carries default lint settings, overridable per invocation.
// FailOn names the severity ("info", "warning", "error") at which the
// lint command exits non-zero; empty means error.
type LintConfig struct {
	Disable  []string `toml:"disable"`
	Unpinned bool     `toml:"unpinned"`
	FailOn   string   `toml:"fail_on"`
}

// RegistryConfig points verification at a registry API.
type RegistryConfig struct {
	URL string `toml:"url"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads the TOML config at path, or defaultConfigFile when
// path is empty. A missing default file is not an error; a missing
// explicit file is.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	return cfg, nil
}

// tomlDuration parses durations written as strings ("24h", "30m").
type tomlDuration struct {
	time.Duration
}

func (d *tomlDuration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}
