// Package config loads rla's tool settings: which executables and jars the
// pipelines drive, the debug signing identity and the worker limit.
// Settings are layered from embedded defaults, the user's config.toml under
// the XDG config directory and RLA_ prefixed environment variables.
//
// Per-project state (.rla.config.json) lives in package project.
package config
