package config

import (
	ccfg "canonize/internal/canonizer"
)

// LoadEngineConfig delegates to the canonizer loader while centralizing
// loader entrypoints under internal/config.
func LoadEngineConfig(path string) (ccfg.Config, error) {
	return ccfg.LoadConfig(path)
}
