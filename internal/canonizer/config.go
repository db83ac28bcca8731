package canonizer

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	RepoPath string `koanf:"repo_path"` // canonizer checkout
	VenvPath string `koanf:"venv_path"` // virtualenv holding the executable
	BinName  string `koanf:"bin_name"`  // default "can"
}

// Bin is the expected executable path inside the venv.
func (c Config) Bin() string {
	return filepath.Join(c.VenvPath, "bin", c.BinName)
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `CANONIZE_ENGINE__`, delimiter `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("engine schema_version %q not supported (want v1)", sv)
	}

	// CANONIZE_ENGINE__REPO_PATH ⇒ repo_path
	_ = k.Load(env.Provider("CANONIZE_ENGINE__", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "CANONIZE_ENGINE__")), "__", ".")
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	if c.BinName == "" {
		c.BinName = "can"
	}
}
