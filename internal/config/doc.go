// Package config provides configuration for footprint: defaults, the
// optional YAML file (.footprint), credentials from the environment or a
// .env file, and validation.
package config
