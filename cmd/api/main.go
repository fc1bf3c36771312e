package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edutrack/verify-api/internal/config"
	"github.com/edutrack/verify-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/edutrack/verify-api/internal/infrastructure/jwt"
	s3infra "github.com/edutrack/verify-api/internal/infrastructure/s3"
	"github.com/edutrack/verify-api/internal/infrastructure/smtp"
	"github.com/edutrack/verify-api/internal/infrastructure/sns"
	transporthttp "github.com/edutrack/verify-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Bootstrap the registrations table (creates it if it doesn't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTableRegistrations)

	// Attachment archive.
	s3Client := s3infra.NewClient(cfg)
	archive := s3infra.NewArchive(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS verified-event publisher (optional — graceful fallback).
	var publisher sns.EventPublisher
	if cfg.SNSTopicARN != "" {
		if p, err := sns.NewPublisher(cfg); err == nil {
			publisher = p
		} else {
			log.Printf("WARN: SNS publisher not available: %v", err)
		}
	}

	deps := &transporthttp.Deps{
		RegistrationRepo: dynamo.NewRegistrationRepo(dynamoClient, cfg.DynamoTableRegistrations),
		Archive:          archive,
		Mailer:           mailer,
		Publisher:        publisher,
		JWTProvider:      jwtinfra.NewProvider(cfg.ServiceTokenSecret, 24*time.Hour),
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s (env=%s, mode=%s)", cfg.AppPort, cfg.AppEnv, cfg.VerificationMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
