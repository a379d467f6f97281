// Package config manages gitstack repository configuration.
//
// It handles:
//   - The per-repository config.toml stored next to the stack definitions
//   - Environment overrides for the push remote and push-on-sync
//   - Reading and writing individual keys for `gitstack config`
package config
