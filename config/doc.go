// Package config provides configuration loading and validation for stowgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (STOWGATE_ prefix)
//  4. CLI flags
//
// # Example
//
//	server:
//	  port: 5780
//	gateway:
//	  chunk_size: 1MiB
//	  if_modified_since: exact
//	locations:
//	  - prefix: /media/
//	    pool: media
//	    driver: filesystem
//	    conf: /etc/stowgate/fs.yaml
//	    throttle: 2MiB
//
// # Environment Variables
//
// Scalar keys map to environment variables with the STOWGATE_ prefix:
//
//	STOWGATE_SERVER_PORT=8080
//	STOWGATE_GATEWAY_CHUNK_SIZE=512KiB
//	STOWGATE_LOG_LEVEL=debug
//
// Locations can only be set from configuration files.
package config
