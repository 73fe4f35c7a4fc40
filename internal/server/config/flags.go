package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/followhub/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-m string   storage backend: postgres | memory
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-t int      session validity, hours
//	-n int      feed page size
//	-r int      transaction attempts
//	-b int      base retry backoff, milliseconds
//
// Unknown arguments are filtered out with flagx.FilterArgs first, so -c and
// any flags meant for other loaders do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-m", "-d", "-s", "-t", "-n", "-r", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.StorageBackend, "m", config.StorageBackend, "storage backend (postgres|memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionHours := fs.Int("t", int(config.SessionValidityDuration.Hours()), "session validity (in hours)")
	fs.IntVar(&config.FeedPageSize, "n", config.FeedPageSize, "feed page size")
	fs.IntVar(&config.TxMaxAttempts, "r", config.TxMaxAttempts, "transaction attempts")
	backoffMs := fs.Int("b", int(config.TxBaseBackoff.Milliseconds()), "base retry backoff (in milliseconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionHours) * time.Hour
	config.TxBaseBackoff = time.Duration(*backoffMs) * time.Millisecond
}
