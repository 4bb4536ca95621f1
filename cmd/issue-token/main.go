// Command issue-token mints a shopper bearer token for local development.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/llmndev/perfume-storefront/internal/platform/auth"
)

const defaultTTL = time.Hour

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <user-id>", os.Args[0])
	}
	userID, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil || userID <= 0 {
		log.Fatalf("user id must be a positive integer, got %q", os.Args[1])
	}
	validator, err := auth.NewValidator(os.Getenv("AUTH_JWT_SECRET"), strings.TrimSpace(os.Getenv("AUTH_JWT_ISSUER")))
	if err != nil {
		log.Fatalf("cannot sign tokens: %v", err)
	}
	token, err := validator.Issue(userID, tokenTTLFromEnv())
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Println(token)
}

func tokenTTLFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("TOKEN_TTL_MINUTES"))
	if raw == "" {
		return defaultTTL
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return defaultTTL
	}
	return time.Duration(minutes) * time.Minute
}
