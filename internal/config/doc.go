// Package config manages the ~/.compass-engine/config.yaml file through Viper,
// with a COMPASS_-prefixed environment variable overlay. Commands resolve their
// defaults here once and thread them through explicit option structs; nothing
// below the cli package reads Viper directly.
package config
