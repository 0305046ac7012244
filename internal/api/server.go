// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tipjar-service/internal/models"
	"github.com/tipjar-service/internal/service"
	"github.com/tipjar-service/internal/types"
	"github.com/tipjar-service/internal/wallet"
)

// Service interfaces for dependency injection and testing

// AuthServiceInterface defines the interface for auth operations
type AuthServiceInterface interface {
	Login(ctx context.Context, idToken string) (*wallet.Session, error)
}

// TipServiceInterface defines the interface for tip submission operations
type TipServiceInterface interface {
	SendToken(ctx context.Context, input *service.SendTokenInput) (*models.Job, error)
	SendCoffee(ctx context.Context, input *service.SendCoffeeInput) (*models.Job, error)
	RequestMessages(ctx context.Context, from string) (string, error)
}

// ReconcileServiceInterface defines the interface for job reconciliation
type ReconcileServiceInterface interface {
	ListJobs(ctx context.Context, intentType types.IntentType) ([]models.Job, error)
	RefreshOne(ctx context.Context, intentType types.IntentType, jobID string) (models.Job, bool, error)
	RefreshAll(ctx context.Context, intentType types.IntentType) ([]models.Job, error)
	RefreshEverything(ctx context.Context) error
}

// PortfolioServiceInterface defines the interface for account and portfolio reads
type PortfolioServiceInterface interface {
	GetAccounts(ctx context.Context) ([]types.Account, error)
	GetNetworkAccount(ctx context.Context) (*types.Account, error)
	GetPortfolio(ctx context.Context) (*types.Portfolio, error)
	GetActivity(ctx context.Context) ([]types.ActivityEntry, error)
}

// PriceServiceInterface defines the interface for price quoting
type PriceServiceInterface interface {
	GetETHUSD(ctx context.Context) (float64, error)
	QuoteETH(ctx context.Context, usd float64) (string, error)
}

// Server represents the HTTP API server.
type Server struct {
	router           *mux.Router
	httpServer       *http.Server
	authService      AuthServiceInterface
	tipService       TipServiceInterface
	reconcileService ReconcileServiceInterface
	portfolioService PortfolioServiceInterface
	priceService     PriceServiceInterface
	config           *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    int
	RateLimitBurst  int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	authService AuthServiceInterface,
	tipService TipServiceInterface,
	reconcileService ReconcileServiceInterface,
	portfolioService PortfolioServiceInterface,
	priceService PriceServiceInterface,
) *Server {
	s := &Server{
		router:           mux.NewRouter(),
		authService:      authService,
		tipService:       tipService,
		reconcileService: reconcileService,
		portfolioService: portfolioService,
		priceService:     priceService,
		config:           config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)

	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter)) // Rate limiting after CORS
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")

	// Dashboard reads
	api.HandleFunc("/account", s.handleGetAccount).Methods("GET")
	api.HandleFunc("/portfolio", s.handleGetPortfolio).Methods("GET")
	api.HandleFunc("/activity", s.handleGetActivity).Methods("GET")

	// Price quoting
	api.HandleFunc("/price", s.handleGetPrice).Methods("GET")
	api.HandleFunc("/quote", s.handleGetQuote).Methods("GET")

	// Tip submission
	api.HandleFunc("/tips/transfer", s.handleSendToken).Methods("POST")
	api.HandleFunc("/tips/coffee", s.handleSendCoffee).Methods("POST")
	api.HandleFunc("/tips/messages", s.handleRequestMessages).Methods("POST")

	// Job ledger
	api.HandleFunc("/jobs", s.handleListJobs).Methods("GET")
	api.HandleFunc("/jobs/refresh", s.handleRefreshAll).Methods("POST")
	api.HandleFunc("/jobs/{id}/refresh", s.handleRefreshOne).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "tipjar",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting API server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
