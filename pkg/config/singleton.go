package config

import (
	"fmt"
	"sync"
)

var (
	// global holds the singleton configuration and the path it came from.
	global struct {
		cfg  *Config
		path string
	}

	// globalMu protects access to the singleton.
	globalMu sync.RWMutex

	// initOnce ensures configuration is initialized only once.
	initOnce sync.Once
)

// Initialize loads configuration from the specified path with environment
// variable overrides and stores it as the process-wide configuration.
// It should be called once at application startup; subsequent calls are
// no-ops. The path is remembered so ReloadConfig can re-read it later.
//
// The singleton exists for the CLI entry points. Library code receives its
// configuration explicitly and never reaches for this.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		globalMu.Lock()
		global.cfg = cfg
		global.path = path
		globalMu.Unlock()
	})

	return initErr
}

// Initialized reports whether Initialize has completed successfully.
func Initialized() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global.cfg != nil
}

// GetConfig returns the process-wide configuration instance.
// It returns nil if Initialize has not been called successfully.
func GetConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global.cfg
}

// SetConfig replaces the process-wide configuration instance.
// Intended for tests; production code goes through Initialize.
func SetConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global.cfg = cfg
}

// ReloadConfig re-reads the configuration from the path given to Initialize.
// The new configuration replaces the current one only if loading and
// validation succeed; on error the existing configuration stays in effect.
func ReloadConfig() error {
	globalMu.RLock()
	path := global.path
	globalMu.RUnlock()

	if path == "" {
		return fmt.Errorf("configuration not initialized: call Initialize first")
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	globalMu.Lock()
	global.cfg = cfg
	globalMu.Unlock()

	return nil
}

// MustGetConfig returns the process-wide configuration instance.
// It panics if the configuration has not been initialized. Use only after
// successful startup; elsewhere prefer GetConfig and handle nil.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
