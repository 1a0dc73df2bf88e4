// Command devtoken mints an access token for an existing user, for local testing
// of the list API without the session service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/creatorhub/creatorhub-api/internal/config"
	"github.com/creatorhub/creatorhub-api/internal/domain/user"
	"github.com/creatorhub/creatorhub-api/internal/pkg/database"
	"github.com/creatorhub/creatorhub-api/internal/pkg/jwt"
)

func main() {
	userID := flag.Int64("user", 0, "user id to issue the token for")
	flag.Parse()

	if *userID <= 0 {
		log.Fatal("-user is required")
	}

	cfg := config.Load()
	if cfg.IsProduction() {
		log.Fatal("devtoken refuses to run with ENV=production")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL, database.PoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.ClosePostgres(db)

	u, err := user.NewRepository(db).GetByID(context.Background(), *userID)
	if err != nil {
		log.Fatalf("Failed to load user %d: %v", *userID, err)
	}
	if u.IsBanned {
		log.Printf("WARNING: user %d is banned, the API will reject this token", u.ID)
	}
	if !u.IsCreator() {
		log.Printf("WARNING: user %d is a %s, list routes require a creator", u.ID, u.UserType)
	}

	token, err := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL).GenerateAccessToken(u.ID, string(u.UserType), u.IsBanned)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("User: %d | %s | %s\n", u.ID, u.Username, u.UserType)
	fmt.Println(token)
}
