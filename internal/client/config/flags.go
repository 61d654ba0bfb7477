package config

import (
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// BindFlags registers the CLI flags on fs with the current values of cfg
// as defaults, so parsing overrides only what the user passed.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ServerEndpointAddr, "server", "a", cfg.ServerEndpointAddr, "base URL of the notes server")
	fs.StringVarP(&cfg.GRPCEndpointAddr, "grpc", "g", cfg.GRPCEndpointAddr, "address and port of the gRPC endpoint")
	fs.StringVarP(&cfg.Transport, "transport", "m", cfg.Transport, "transport to use (http|grpc)")
	fs.StringVarP(&cfg.DatabasePath, "db", "d", cfg.DatabasePath, "path of the local database")
	fs.StringVarP(&cfg.AccessToken, "token", "k", cfg.AccessToken, "access token")
	fs.VarP((*seconds)(&cfg.RequestTimeout), "timeout", "i", "request timeout (in seconds)")
}

// seconds exposes a time.Duration as an integer number of seconds.
type seconds time.Duration

func (s *seconds) String() string {
	return strconv.Itoa(int(time.Duration(*s).Seconds()))
}

func (s *seconds) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*s = seconds(time.Duration(n) * time.Second)
	return nil
}

func (s *seconds) Type() string {
	return "int"
}
