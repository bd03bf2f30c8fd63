package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/certwatch/backend/config"
	httpDelivery "github.com/certwatch/backend/internal/delivery/http"
	"github.com/certwatch/backend/internal/infrastructure/classifier"
	"github.com/certwatch/backend/internal/infrastructure/storage"
	"github.com/certwatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting CertWatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Module: %s", cfg.Audit.ModuleType)

	// Initialize infrastructure dependencies
	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	pendingRepo := storage.NewPendingJudgmentRepo(db)
	blacklistRepo := storage.NewBlacklistRepo(db)

	classifierClient := classifier.NewClient(cfg.Classifier.APIKey, cfg.Classifier.BaseURL, cfg.Classifier.Timeout)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		classifierClient.SetDebug(true)
		log.Printf("Classifier client debug mode enabled")
	}

	if cfg.Classifier.APIKey != "" {
		log.Printf("Classifier configured: %s", cfg.Classifier.BaseURL)
	} else {
		log.Printf("WARNING: Classifier configured without API key: %s", cfg.Classifier.BaseURL)
	}

	// Initialize usecase layer
	catalog := usecase.NewKeywordCatalog()
	matcher := usecase.NewKeywordMatcher(catalog, usecase.MatcherConfig{
		FuzzyThreshold: cfg.Matcher.FuzzyThreshold,
	})

	judgeService := usecase.NewJudgeService(classifierClient)
	pendingService := usecase.NewPendingJudgmentService(pendingRepo, cfg.JudgmentTTL())
	auditService := usecase.NewAuditService(judgeService, pendingService, blacklistRepo, usecase.AuditConfig{
		Workers:    cfg.Audit.Workers,
		ModuleType: cfg.Audit.ModuleType,
	})
	ingestService := usecase.NewIngestService(matcher, catalog, cfg.Crawl.DuplicateThreshold)

	log.Printf("Audit: workers=%d, fuzzy=%.2f, duplicateThreshold=%d, judgmentExpiry=%dd",
		cfg.Audit.Workers, cfg.Matcher.FuzzyThreshold,
		cfg.Crawl.DuplicateThreshold, cfg.Judgment.ExpiryDays)

	// Sweep expired pending judgments in the background
	go runCleanupLoop(pendingService, cfg.Judgment.CleanupInterval)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(
		catalog, matcher, auditService, pendingService, ingestService,
		blacklistRepo, cfg.Audit.ModuleType,
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runCleanupLoop expires stale pending judgments on a fixed interval
func runCleanupLoop(pending *usecase.PendingJudgmentService, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if _, err := pending.CleanupExpired(ctx); err != nil {
			log.Printf("Cleanup of expired judgments failed: %v", err)
		}
		cancel()
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
