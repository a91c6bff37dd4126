package main

import (
	"flag"
	"fmt"

	"timeguesser/internal/config"
	"timeguesser/internal/logger"
	"timeguesser/internal/service"
)

// admin_token prints a bearer token for the /api/v1/admin routes.
func main() {
	subject := flag.String("sub", "operator", "token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (default 24h)")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	tokens := service.NewAdminTokens(cfg.AdminJWTSecret, *ttl)
	if tokens == nil {
		logger.Fatal("ADMIN_JWT_SECRET not set")
	}

	token, err := tokens.Issue(*subject)
	if err != nil {
		logger.Fatal("issue token", "error", err)
	}
	fmt.Println(token)
}
