// Package config loads the recall service configuration.
//
// Values are resolved in order: built-in defaults, a YAML file, environment
// variables, then command-line flags applied by the caller. The model API
// key is only ever read from the environment variable named by
// model.api_key_env.
package config
