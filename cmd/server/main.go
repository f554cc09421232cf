package main

import (
	"context"
	"log"
	"os"

	"lawassist-backend/archive"
	"lawassist-backend/extract"
	"lawassist-backend/handlers"
	"lawassist-backend/llm"
	"lawassist-backend/service"
	"lawassist-backend/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	provider, err := llm.NewProviderFromEnv(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}
	log.Printf("LLM provider initialized: %s", provider.Name())

	archiver, err := archive.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize document archive: %v", err)
	}
	if archiver == nil {
		log.Println("Document archival disabled")
	} else {
		log.Println("Document archive initialized")
	}

	caseStore := store.NewCaseStore()

	evaluator := service.NewEvaluatorService(
		service.WithProvider(provider),
		service.WithTextExtractor(extract.NewFromEnv()),
		service.WithCaseStore(caseStore),
		service.WithArchiver(archiver),
	)

	caseHandler := handlers.NewCaseHandler(evaluator, caseStore)

	// Setup Gin router
	r := gin.Default()
	r.Use(cors.New(corsConfig()))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", caseHandler.Health)
		api.GET("/disclaimer", caseHandler.Disclaimer)

		// Evaluation endpoints
		api.POST("/evaluate-text", caseHandler.EvaluateText)
		api.POST("/evaluate-from-file", caseHandler.EvaluateFromFile)
		api.POST("/evaluate-batch", caseHandler.EvaluateBatch)

		// Stored case endpoints
		api.GET("/cases", caseHandler.ListCases)
		api.GET("/cases/:id", caseHandler.GetCase)
		api.DELETE("/cases/:id", caseHandler.DeleteCase)
		api.DELETE("/cases", caseHandler.ClearCases)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		origins = append(origins, frontend)
	}
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	return cfg
}
