package config

import "time"

// Transports understood by Transport.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings for the notesync CLI.
type Config struct {
	ServerEndpointAddr string
	GRPCEndpointAddr   string
	Transport          string
	DatabasePath       string
	AccessToken        string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:3000"
	c.GRPCEndpointAddr = "127.0.0.1:50051"
	c.Transport = TransportHTTP
	c.DatabasePath = "notesync.db"
	c.AccessToken = ""
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config from defaults and the optional config
// file. Flags are applied later by the command line parser, see BindFlags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	return cfg
}
