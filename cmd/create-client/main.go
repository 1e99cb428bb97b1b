package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradeops/backoffice/internal/config"
	"github.com/tradeops/backoffice/internal/domain"
	"github.com/tradeops/backoffice/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/create-client/main.go <client-name> <api-key>")
		fmt.Println("Example: go run cmd/create-client/main.go \"Customs Desk\" \"customs-api-key-12345\"")
		os.Exit(1)
	}

	clientName := os.Args[1]
	apiKey := os.Args[2]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)

	client := &domain.APIClient{
		Name:       clientName,
		APIKeyHash: string(apiKeyHash),
		IsActive:   true,
	}

	if err := repos.APIClient.Create(context.Background(), client); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create API client: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API client created\n\n")
	fmt.Printf("Client ID: %s\n", client.ID.String())
	fmt.Printf("Client Name: %s\n", client.Name)
	fmt.Printf("\nThe key is stored only as a hash. Send it in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
