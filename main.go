package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/room4-2/TableTalk/config"
	"github.com/room4-2/TableTalk/dialogue"
	"github.com/room4-2/TableTalk/gemini"
	"github.com/room4-2/TableTalk/knowledge"
	"github.com/room4-2/TableTalk/respond"
	"github.com/room4-2/TableTalk/server"
	"github.com/room4-2/TableTalk/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kb := knowledge.NewBase()

	// Pluggable NLU boundary: deterministic rules by default, Gemini when
	// configured. Swapping providers never changes the state machine.
	var nlu dialogue.Extractor = dialogue.NewRuleExtractor()
	if cfg.NLUProvider == config.NLUGemini {
		nlu, err = gemini.NewExtractor(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini extractor: %v", err)
		}
	}

	var renderer respond.Renderer = respond.NewTemplateRenderer()
	if cfg.Renderer == config.RendererGemini {
		renderer, err = gemini.NewRenderer(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini renderer: %v", err)
		}
	}

	engine := dialogue.NewEngine(dialogue.NewLexiconFilter(), nlu, kb, cfg.MaxViolations)

	// Create session manager
	sessionManager, err := session.NewManager(cfg, engine, renderer)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}

	// Start cleanup routine
	go sessionManager.StartCleanupRoutine(ctx)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	switch cfg.ServerType {
	case "http":
		srv := server.NewServerHTTP(cfg, sessionManager, kb)

		go func() {
			<-sigChan
			log.Println("\nReceived shutdown signal...")
			cancel()
			sessionManager.Shutdown()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server shutdown error: %v", err)
			}
		}()

		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Server error: %v", err)
		}

	case "websocket":
		wsSrv := server.NewServerWebsocket(cfg, sessionManager)

		go func() {
			<-sigChan
			log.Println("\nReceived shutdown signal...")
			cancel()
			sessionManager.Shutdown()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := wsSrv.Shutdown(shutdownCtx); err != nil {
				log.Printf("WebSocket server shutdown error: %v", err)
			}
		}()

		if err := wsSrv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("WebSocket server error: %v", err)
		}

	case "both":
		srv := server.NewServerHTTP(cfg, sessionManager, kb)
		wsSrv := server.NewServerWebsocket(cfg, sessionManager)

		go func() {
			<-sigChan
			log.Println("\nReceived shutdown signal...")
			cancel()
			sessionManager.Shutdown()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
			}
			if err := wsSrv.Shutdown(shutdownCtx); err != nil {
				log.Printf("WebSocket server shutdown error: %v", err)
			}
		}()

		// Start WebSocket server in background
		go func() {
			if err := wsSrv.Start(); err != nil && err.Error() != "http: Server closed" {
				log.Fatalf("WebSocket server error: %v", err)
			}
		}()

		// Start HTTP server (blocks)
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Server error: %v", err)
		}

	default:
		log.Fatalf("Unknown SERVER_TYPE: %s", cfg.ServerType)
	}

	log.Println("Server stopped")
}
