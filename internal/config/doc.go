// Package config handles configuration loading for the chat widget gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	backend:
//	  token: "${XL_TOKEN}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	session:
//	  retention: "24h"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Backend API:
//
//	backend:
//	  base_url: "https://csxl.unc.edu/api"
//	  token: "${XL_TOKEN}"
//
// Session persistence:
//
//	session:
//	  backend: "sqlite"              # sqlite, redis, or memory
//	  database_path: "./sessions.db" # sqlite only
//	  redis_addr: "localhost:6379"   # redis only
//	  redis_prefix: "xl-chat"        # redis only
//	  retention: "24h"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - backend.base_url presence
//   - Session backend name and its backend-specific fields
//   - Duration format validity
package config
