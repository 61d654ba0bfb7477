package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/notesync/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-g string   gRPC bind address (e.g., ":50051"), empty disables gRPC
//	-t string   database driver: postgres, sqlite or memory
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-v int      access token validity, minutes
//	-x          strict versioning (compare-and-swap updates)
//	-b          run each sync batch in one transaction
//	-w int      graceful shutdown timeout, seconds
//	-u string   S3 root user
//	-p string   S3 root password
//	-k string   S3 bucket name
//	-r string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is filtered with flagx.FilterArgs first so the config file flag
// and unknown arguments do not break parsing. A parse error panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-g", "-t", "-d", "-s", "-v", "-x", "-b", "-w", "-u", "-p", "-k", "-r", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port to run server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "t", config.DatabaseDriver, "database driver (postgres|sqlite|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("v", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.BoolVar(&config.StrictVersioning, "x", config.StrictVersioning, "reject concurrent updates with compare-and-swap")
	fs.BoolVar(&config.TransactionalBatches, "b", config.TransactionalBatches, "run each sync batch in a single transaction")

	shutdownTimeout := fs.Int("w", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "k", config.S3Bucket, "S3 bucket, empty disables snapshots")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
}
