// Package config loads bufferlab settings.
//
// Settings are layered, lowest precedence first:
//
//  1. Built-in defaults
//  2. The TOML file (bufferlab.toml by default)
//  3. BUFLAB_ environment variables
//  4. Overrides from WithOverride, such as command-line flags
//
// A missing file is not an error. The merged map is read through typed
// getters into a Config, which is then validated.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.WithFile("bufferlab.toml"))
//	if err != nil {
//	    return err
//	}
//	kinds, _ := cfg.EngineKinds()
//	for _, k := range kinds {
//	    b, _ := engine.New(k, cfg.EngineOptions()...)
//	    ...
//	}
package config
