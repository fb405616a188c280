package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/walletlink/internal/flagx"
)

var handledFlags = []string{"-a", "-g", "-d", "-s", "-t", "-o", "-w", "-r", "-b", "-e", "-l"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      link session validity, minutes
//	-o string   origin shown in challenge messages
//	-w int      idempotency window, seconds
//	-r string   Redis address
//	-b string   S3 bucket for link receipts
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string   log level
//
// Only the flags above are parsed; everything else in args is ignored.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.HealthAddrGRPC, "g", config.HealthAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "link session validity (in minutes)")

	fs.StringVar(&config.LinkOrigin, "o", config.LinkOrigin, "origin shown in challenge messages")

	window := fs.Int("w", int(config.IdempotencyWindow.Seconds()), "idempotency window (in seconds)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for link receipts")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, handledFlags)); err != nil {
		return err
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
	config.IdempotencyWindow = time.Duration(*window) * time.Second
	return nil
}
