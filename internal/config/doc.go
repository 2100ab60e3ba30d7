// Package config loads server settings from an optional YAML file and
// the environment. Environment variables (DEVBANK_DB_PATH,
// DEVBANK_HTTP_ADDR, DEVBANK_LOG_LEVEL) override file values, and a
// .env file in the working directory is honored when present.
package config
