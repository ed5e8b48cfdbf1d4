package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"property-catalog/internal/auth"
	"property-catalog/pkg/logger"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a write-scoped bearer token for `subject` and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of a token printed by -issue-token")
	flag.Parse()

	cfg := LoadConfiguration()

	if *issueToken != "" {
		details, err := auth.GenerateJWT(*issueToken, auth.ScopeWrite, cfg.Auth.JWTSecret, *tokenTTL)
		if err != nil {
			logger.GlobalLogger.Errorf("failed to issue token: %v", err)
			os.Exit(1)
		}
		json.NewEncoder(os.Stdout).Encode(details)
		return
	}

	app := NewApp(cfg)
	app.InitializeServer()
	app.StartServer()
}
