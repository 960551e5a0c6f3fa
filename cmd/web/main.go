package main

import (
	"fmt"
	"log"

	"github.com/apartment-accesscode/internal/config"
	"github.com/apartment-accesscode/internal/store"
	"github.com/apartment-accesscode/internal/web"
)

func main() {
	config.LoadEnv()

	fmt.Println("=== Apartment AccessCode Dashboard ===")

	host := config.GetEnv("WEB_HOST", "localhost")
	port := config.GetEnvInt("WEB_PORT", 8080)
	settings := config.LoadSettings()

	// The store is optional: without a database the server still answers
	// the live classification endpoints.
	var st *store.Store
	if settings.DatabaseURL != "" {
		var err error
		st, err = store.NewStore(settings.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		fmt.Println("Database connected successfully")
	} else {
		fmt.Println("DATABASE_URL not set - stored-results endpoints disabled")
	}

	server := web.NewServer(&web.Config{
		Host:        host,
		Port:        port,
		LogRequests: config.GetEnvBool("WEB_REQUEST_LOGGING", true),
	}, st)

	if err := server.Start(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
