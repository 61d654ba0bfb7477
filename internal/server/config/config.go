// Package config handles configuration for the server component,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the notesync server.
//
// Fields:
//   - HTTPAddr / GRPCAddr: bind addresses; an empty GRPCAddr disables gRPC.
//   - DatabaseDriver: "postgres", "sqlite" or "memory".
//   - DatabaseDSN: pgx DSN or SQLite file name.
//   - SecretKey: HMAC secret for JWTs (HS256). Empty disables the auth guard.
//   - StrictVersioning: conditional (compare-and-swap) writes on accepted updates.
//   - TransactionalBatches: run each sync batch inside one SQL transaction.
//   - S3*: object storage for snapshots. An empty S3Bucket disables snapshots.
type Config struct {
	HTTPAddr                    string
	GRPCAddr                    string
	DatabaseDriver              string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	StrictVersioning            bool
	TransactionalBatches        bool
	ShutdownTimeout             time.Duration
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
}

// LoadDefaults populates Config with development defaults: an on-disk
// SQLite database, no auth and no snapshots.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":3000"
	c.GRPCAddr = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "notes.db"
	c.SecretKey = ""
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.StrictVersioning = false
	c.TransactionalBatches = false
	c.ShutdownTimeout = 10 * time.Second
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// SnapshotsEnabled reports whether object storage is configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.S3Bucket != ""
}

// AuthEnabled reports whether requests must carry a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.SecretKey != ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional config file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
