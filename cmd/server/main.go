// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/skinai/go-skinai/internal/config"
	"github.com/skinai/go-skinai/internal/domain"
	"github.com/skinai/go-skinai/internal/handlers"
	"github.com/skinai/go-skinai/internal/middleware"
	"github.com/skinai/go-skinai/internal/ratelimit"
	"github.com/skinai/go-skinai/internal/repository/state"
	"github.com/skinai/go-skinai/internal/repository/user"
	"github.com/skinai/go-skinai/internal/services"
	"github.com/skinai/go-skinai/internal/services/conversation"
	"github.com/skinai/go-skinai/internal/services/knowledge"
	"github.com/skinai/go-skinai/internal/services/responder"
	"github.com/skinai/go-skinai/internal/services/session"
	"github.com/skinai/go-skinai/internal/services/transcription"
	"github.com/skinai/go-skinai/internal/services/user_services"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// buildResponder selects the reply provider from configuration. The canned
// provider needs no credentials; the OpenAI provider optionally retrieves
// dermatology snippets from Pinecone before answering.
func buildResponder(cfg *config.Config, logger services.Logger) (responder.Service, error) {
	if cfg.ResponderProvider != "openai" {
		return responder.NewCannedProvider(), nil
	}

	respCfg := responder.DefaultConfig()
	respCfg.APIKey = cfg.OpenAIAPIKey
	respCfg.BaseURL = cfg.OpenAIBaseURL
	respCfg.ChatModel = cfg.ChatModelName
	respCfg.EmbeddingModel = cfg.EmbeddingModelName
	respCfg.RetrievalTopK = cfg.RetrievalTopK

	provider, err := responder.NewOpenAIProvider(respCfg, nil)
	if err != nil {
		return nil, err
	}

	if cfg.PineconeAPIKey == "" || cfg.PineconeIndexHost == "" {
		logger.Info("pinecone not configured; responder runs without retrieval")
		return provider, nil
	}

	knowCfg := knowledge.DefaultConfig()
	knowCfg.APIKey = cfg.PineconeAPIKey
	knowCfg.IndexHost = cfg.PineconeIndexHost
	knowCfg.Namespace = cfg.PineconeNamespace
	knowCfg.TopK = cfg.RetrievalTopK

	retriever, err := knowledge.NewRetriever(knowCfg, provider, logger)
	if err != nil {
		return nil, err
	}
	return responder.NewOpenAIProvider(respCfg, retriever)
}

func buildTranscriber(cfg *config.Config) (transcription.Service, error) {
	if cfg.TranscriberProvider != "openai" {
		return transcription.NewCannedProvider(), nil
	}
	return transcription.NewWhisperProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("skinai")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &state.Record{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	stateRepo := state.NewStateRepository(db)

	// --- Services ---
	responderSvc, err := buildResponder(cfg, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize responder: %v", err)
	}

	transcriberSvc, err := buildTranscriber(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize transcriber: %v", err)
	}

	store, err := conversation.NewStore(stateRepo, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize conversation store: %v", err)
	}

	controller, err := session.NewController(
		store,
		stateRepo,
		responderSvc,
		transcriberSvc,
		session.RemoteCaptureDevice{},
		session.NewLoggingView(logger),
		logger,
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize session controller: %v", err)
	}

	if err := controller.Bootstrap(context.Background()); err != nil {
		log.Fatalf("FATAL: Failed to load session state: %v", err)
	}

	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, logger)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, controller)
	sessionHandler := handlers.NewSessionHandler(controller, store)

	// --- Rate limiting for auth endpoints ---
	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(authService)

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	authRoutes := r.PathPrefix("/").Subrouter()
	authRoutes.Use(middleware.RateLimitMiddleware(authLimiter, "auth"))
	authRoutes.Use(middleware.AuthSuccessMiddleware(authLimiter, "auth"))
	authRoutes.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRoutes.HandleFunc("/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/logout", authHandler.Logout).Methods("GET")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/sessions", sessionHandler.ListSessions).Methods("GET")
	api.HandleFunc("/sessions", sessionHandler.CreateSession).Methods("POST")
	api.HandleFunc("/sessions/{id}", sessionHandler.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}/select", sessionHandler.SelectSession).Methods("POST")
	api.HandleFunc("/sessions/{id}/pin", sessionHandler.TogglePin).Methods("POST")
	api.HandleFunc("/sessions/{id}", sessionHandler.DeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/delete/cancel", sessionHandler.CancelDelete).Methods("POST")
	api.HandleFunc("/messages", sessionHandler.SubmitMessage).Methods("POST")
	api.HandleFunc("/image", sessionHandler.SubmitImage).Methods("POST")
	api.HandleFunc("/voice/begin", sessionHandler.BeginVoice).Methods("POST")
	api.HandleFunc("/voice/end", sessionHandler.EndVoice).Methods("POST")
	api.HandleFunc("/voice/pending", sessionHandler.PendingInput).Methods("GET")
	api.HandleFunc("/sidebar", sessionHandler.SetSidebar).Methods("POST")

	// --- Server Configuration ---
	port := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	logger.Info("server starting", "port", cfg.ServerPort, "responder", cfg.ResponderProvider)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	if err := store.Save(ctx); err != nil {
		logger.Error("final save failed", "error", err)
	}
	logger.Info("server stopped")
}
