// Package config resolves runtime settings for the olp client.
//
// Sources, highest precedence first:
//  1. Environment variables (OLP_*), after loading a .env file if present
//  2. An optional YAML or TOML file chosen by extension
//  3. Built-in defaults
//
// The bus endpoint is resolved from the environment only, once at start:
// OLP_URL, then OLP_BASE_URL + "/frame", then DefaultEndpoint.
package config
