// Command token mints a bearer token for a profile, for local testing of the
// order and payment endpoints.
//
//	token -profile 42 -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
)

func main() {
	profileID := flag.Int64("profile", 0, "profile id the token identifies")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.AuthConfig{
		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTIssuer: os.Getenv("JWT_ISSUER"),
	}
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "storefront"
	}

	token, err := auth.MintToken(cfg, time.Now(), *profileID, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
