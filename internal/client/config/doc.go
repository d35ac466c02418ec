// Package config loads runtime configuration for the notesum terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags of the cobra root command, which override both.
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "request_timeout": "90s",
//	  "online_check_interval": "5s",
//	  "state_file": "notesum.db",
//	  "export_dir": "exports"
//	}
package config
