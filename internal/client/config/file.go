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

// FileConfig is the on-disk shape of the CLI configuration.
type FileConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	GRPCEndpointAddr   string         `json:"grpc_endpoint_addr" yaml:"grpc_endpoint_addr"`
	Transport          string         `json:"transport" yaml:"transport"`
	DatabasePath       string         `json:"database_path" yaml:"database_path"`
	AccessToken        string         `json:"access_token" yaml:"access_token"`
	RequestTimeout     timex.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// parseFile overlays cfg with the file named by -c or --config. Missing
// keys keep their current value. Read or decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag(os.Args[1:])

	// nothing to load
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		panic(fmt.Errorf("error parsing config %s: %w", path, err))
	}

	setString(&cfg.ServerEndpointAddr, c.ServerEndpointAddr)
	setString(&cfg.GRPCEndpointAddr, c.GRPCEndpointAddr)
	setString(&cfg.Transport, c.Transport)
	setString(&cfg.DatabasePath, c.DatabasePath)
	setString(&cfg.AccessToken, c.AccessToken)
	if c.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = c.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
