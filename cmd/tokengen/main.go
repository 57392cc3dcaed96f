package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mkuznetsov/todo-api/internal/auth"
)

// Утилита для локальной разработки: выпускает bearer-токен на указанного
// пользователя тем же секретом, что проверяет сервер.
func main() {
	subject := flag.String("sub", "", "subject (user id) to put into the token")
	secret := flag.String("secret", os.Getenv("JWT_SECRET"), "HS256 signing secret (defaults to JWT_SECRET)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *subject == "" {
		log.Fatal("-sub is required")
	}
	if *secret == "" {
		log.Fatal("-secret flag or JWT_SECRET env is required")
	}

	token, err := auth.NewIssuer(*secret, *ttl).Mint(*subject)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
