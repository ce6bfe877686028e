// Package config loads filesync settings the layered way: embedded
// defaults first, then an optional TOML file next to the invocation.
// Command-line flags override both at the CLI layer.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	syncerrors "github.com/arthur-debert/filesync/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config holds the tunables for a sync run
type Config struct {
	Sync struct {
		// Workers is the number of hashing workers; 0 means one per CPU
		Workers int `koanf:"workers"`
		// ProgressInterval is the record-count cadence for progress updates
		ProgressInterval int `koanf:"progress_interval"`
	} `koanf:"sync"`

	Placer struct {
		// MaxCollisionAttempts bounds the collision-resolution loop
		MaxCollisionAttempts int `koanf:"max_collision_attempts"`
	} `koanf:"placer"`

	Database struct {
		// Keep retains the record database after the run
		Keep bool `koanf:"keep"`
	} `koanf:"database"`
}

// configFileNames are tried in order within the search directory
var configFileNames = []string{".filesync.toml", "filesync.toml"}

// Load reads configuration: embedded defaults, then the first of
// .filesync.toml / filesync.toml found in dir (usually the working
// directory). A missing file is not an error; a malformed one is.
func Load(dir string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, syncerrors.Wrap(err, syncerrors.ErrConfigLoad, "failed to load defaults")
	}

	for _, filename := range configFileNames {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, syncerrors.Wrapf(err, syncerrors.ErrConfigLoad,
				"failed to load config from %s", path)
		}
		break
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, syncerrors.Wrap(err, syncerrors.ErrConfigLoad, "failed to unmarshal config")
	}

	return &cfg, nil
}

// Default returns the embedded defaults without touching the filesystem
func Default() *Config {
	cfg, err := Load(string(os.PathSeparator) + "nonexistent-config-dir")
	if err != nil {
		// The embedded defaults always parse; reaching here is a bug
		panic(err)
	}
	return cfg
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
