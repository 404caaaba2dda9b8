// Package config loads, normalizes, and validates musicfreq configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads `.env` files, and honours environment
// fallbacks such as BOT_TOKEN and OPENAI_API_KEY. The Config type centralizes
// every knob the bot and CLI need so credentials, timeouts, and runtime
// directories are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
