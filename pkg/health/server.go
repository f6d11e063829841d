package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speedrun-hq/lzbridger/pkg/chains"
	"github.com/speedrun-hq/lzbridger/pkg/circuitbreaker"
	"github.com/speedrun-hq/lzbridger/pkg/logger"
	"github.com/speedrun-hq/lzbridger/pkg/metrics"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 15 * time.Second
	probeTimeout = 5 * time.Second
)

// BlockNumberReader is the part of a chain client the status endpoint probes
type BlockNumberReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Chain is one chain exposed by the server. Client is nil when the chain
// could not be dialed.
type Chain struct {
	Descriptor chains.Descriptor
	Client     BlockNumberReader
	Breaker    *circuitbreaker.CircuitBreaker
}

// Server represents a health check HTTP server
type Server struct {
	port          string
	chains        map[string]Chain
	tracker       *Tracker
	metricsAPIKey string
	logger        logger.Logger
	server        *http.Server
}

// NewServer creates a new health check server
func NewServer(port, metricsAPIKey string, chainList []Chain, tracker *Tracker, log logger.Logger) *Server {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	if tracker == nil {
		tracker = NewTracker()
	}

	byName := make(map[string]Chain, len(chainList))
	for _, chain := range chainList {
		byName[strings.ToLower(chain.Descriptor.Name)] = chain
	}

	return &Server{
		port:          port,
		chains:        byName,
		tracker:       tracker,
		metricsAPIKey: metricsAPIKey,
		logger:        log,
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Router returns the HTTP routes served by the server
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.readyHandler).Methods(http.MethodGet)
	r.Handle("/status", s.metricsAuthMiddleware(http.HandlerFunc(s.statusHandler))).Methods(http.MethodGet)
	r.Handle("/circuit/reset", s.metricsAuthMiddleware(http.HandlerFunc(s.circuitResetHandler))).Methods(http.MethodPost)
	r.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler())).Methods(http.MethodGet)
	return r
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	s.logger.Info("Starting health and metrics server on port %s", s.port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Health server error: %v", err)
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// readyHandler reports ready once every chain has a connected client
func (s *Server) readyHandler(w http.ResponseWriter, _ *http.Request) {
	for _, name := range s.chainNames() {
		if s.chains[name].Client == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(fmt.Sprintf("Chain %s client not connected", name)))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ready"))
}

type chainStatus struct {
	LzChainID     uint16  `json:"lz_chain_id"`
	ChainID       int64   `json:"chain_id"`
	BridgeAddress string  `json:"bridge_address"`
	TokenAddress  string  `json:"token_address"`
	Connected     bool    `json:"connected"`
	Circuit       string  `json:"circuit"`
	LatestBlock   *uint64 `json:"latest_block,omitempty"`
}

type statusResponse struct {
	Chains    map[string]chainStatus `json:"chains"`
	Stages    map[string]int         `json:"stages"`
	Active    int                    `json:"active"`
	Workflows []WorkflowStatus       `json:"workflows"`
}

// statusHandler reports chains and workflows. RPC URLs are left out as
// they may carry API keys.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	response := statusResponse{
		Chains:    make(map[string]chainStatus, len(s.chains)),
		Stages:    s.tracker.Counts(),
		Active:    s.tracker.Active(),
		Workflows: s.tracker.Workflows(),
	}

	for _, name := range s.chainNames() {
		chain := s.chains[name]

		circuitStatus := "closed"
		if chain.Breaker != nil && chain.Breaker.IsOpen() {
			circuitStatus = "open"
		}

		status := chainStatus{
			LzChainID:     chain.Descriptor.LzChainID,
			ChainID:       chain.Descriptor.EVMChainID,
			BridgeAddress: chain.Descriptor.BridgeAddress.Hex(),
			TokenAddress:  chain.Descriptor.TokenAddress.Hex(),
			Connected:     chain.Client != nil,
			Circuit:       circuitStatus,
		}

		if chain.Client != nil {
			ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
			blockNumber, err := chain.Client.BlockNumber(ctx)
			cancel()
			if err == nil {
				status.LatestBlock = &blockNumber
			}
		}

		response.Chains[name] = status
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Error encoding status JSON: %v", err)
	}
}

// circuitResetHandler closes the circuit breaker of the chain named by ?chain=
func (s *Server) circuitResetHandler(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("chain"))
	if name == "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Missing chain parameter"))
		return
	}

	chain, ok := s.chains[name]
	if !ok || chain.Breaker == nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(fmt.Sprintf("No circuit breaker for chain %s", name)))
		return
	}

	chain.Breaker.Reset()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	s.logger.Notice("Circuit breaker for chain %s reset", name)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(fmt.Sprintf("Circuit breaker for chain %s reset", name)))
}

func (s *Server) chainNames() []string {
	names := make([]string, 0, len(s.chains))
	for name := range s.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
