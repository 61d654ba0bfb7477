// Package config loads runtime configuration for the notesync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected with -c or --config.
//  3. Command-line flags bound by BindFlags, which override earlier values.
//
// Supported flags
//
//	-a, --server string      base URL of the HTTP endpoint
//	-g, --grpc string        address:port of the gRPC endpoint
//	-m, --transport string   http or grpc
//	-d, --db string          path of the local SQLite database
//	-k, --token string       access token sent to the server
//	-i, --timeout int        request timeout (seconds)
//
// # File schema
//
// Durations accept strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:3000",
//	  "transport": "http",
//	  "database_path": "notesync.db",
//	  "request_timeout": "10s"
//	}
package config
