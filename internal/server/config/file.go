package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/notesync/internal/flagx"
	"github.com/dmitrijs2005/notesync/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the server configuration. Durations
// accept "5s"-style strings or integer nanoseconds. Pointer fields tell an
// absent key apart from an explicit false.
type FileConfig struct {
	HTTPAddr                    string         `json:"http_addr" yaml:"http_addr"`
	GRPCAddr                    string         `json:"grpc_addr" yaml:"grpc_addr"`
	DatabaseDriver              string         `json:"database_driver" yaml:"database_driver"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	StrictVersioning            *bool          `json:"strict_versioning" yaml:"strict_versioning"`
	TransactionalBatches        *bool          `json:"transactional_batches" yaml:"transactional_batches"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile loads configuration values from the file named by -c or
// -config. Files ending in .yaml or .yml are decoded as YAML, anything else
// as JSON. Keys missing from the file leave the current value untouched.
// An unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c, err := decodeFile(path, data)
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func decodeFile(path string, data []byte) (*FileConfig, error) {
	c := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("error parsing yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("error parsing json config %s: %w", path, err)
		}
	}

	return c, nil
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.StrictVersioning != nil {
		config.StrictVersioning = *c.StrictVersioning
	}
	if c.TransactionalBatches != nil {
		config.TransactionalBatches = *c.TransactionalBatches
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
