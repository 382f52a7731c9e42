// Package config loads the workspace configuration.
//
// Configuration comes from an optional YAML file (workspace.yaml by default,
// or the path in WORKSPACE_CONFIG), then environment overrides, then
// defaults. Every field has a default, so an empty file or no file at all
// yields the stock topology.
package config
