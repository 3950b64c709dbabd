// Copyright 2025 The Polyboost Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/polyboost/installhook/internal/installation"
)

// EventHandler processes one installation lifecycle event. It must absorb
// its own failures: by the time it runs, the webhook response is already
// committed to be 200.
type EventHandler interface {
	HandleInstallationChange(ctx context.Context, eventName string, event *installation.Event)
}

// Server receives GitHub App webhook deliveries
type Server struct {
	addr          string
	port          int
	handler       EventHandler
	webhookSecret string
	server        *http.Server
	rateLimiter   *RateLimiter
	log           *zap.Logger
}

// RateLimiter provides per-account rate limiting
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*bucket
	limit    int
	window   time.Duration
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// NewServer creates a new webhook server
func NewServer(addr string, port int, handler EventHandler, webhookSecret string, log *zap.Logger) *Server {
	return &Server{
		addr:          addr,
		port:          port,
		handler:       handler,
		webhookSecret: webhookSecret,
		rateLimiter:   NewRateLimiter(10, time.Second), // 10 requests per second per account
		log:           log,
	}
}

// maxBuckets bounds the limiter map. The process can be long-lived, so
// buckets for accounts that stopped sending must not pile up forever.
const maxBuckets = 1024

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*bucket),
		limit:    limit,
		window:   window,
	}
}

// Allow checks if a request for the given account should be allowed
func (rl *RateLimiter) Allow(account string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.limiters[account]
	if !exists {
		if len(rl.limiters) >= maxBuckets {
			rl.evictStale()
		}
		b = &bucket{
			tokens:    rl.limit,
			lastReset: time.Now(),
		}
		rl.limiters[account] = b
	}

	// Reset bucket if window has passed
	if time.Since(b.lastReset) >= rl.window {
		b.tokens = rl.limit
		b.lastReset = time.Now()
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}

	return false
}

// evictStale drops buckets idle for a full window. Their next request
// would start from a fresh bucket anyway, so nothing is lost. Caller must
// hold rl.mu.
func (rl *RateLimiter) evictStale() {
	for account, b := range rl.limiters {
		if time.Since(b.lastReset) >= rl.window {
			delete(rl.limiters, account)
		}
	}
}

// Handler returns the HTTP handler serving the webhook and health
// endpoints. It is exposed separately from Start so the same routing can
// sit behind the Lambda proxy adapter.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start runs the webhook server until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.addr, s.port),
		Handler: s.Handler(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("starting webhook server", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info("shutting down webhook server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleWebhook handles GitHub webhook deliveries. Transport-level
// problems (bad method, bad signature, unparseable JSON) are rejected with
// their HTTP status; once a delivery is accepted and dispatched, the
// response is 200 no matter what happens inside the handler.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.log.Error("failed to read request body", zap.Error(err))
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if !ValidateSignature(payload, signature, s.webhookSecret) {
		s.log.Warn("invalid webhook signature",
			zap.String("delivery", r.Header.Get("X-GitHub-Delivery")))
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType != "installation" && eventType != "installation_repositories" {
		s.log.Debug("ignoring event", zap.String("event", eventType))
		w.WriteHeader(http.StatusOK)
		return
	}

	var event installation.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		s.log.Error("failed to parse JSON payload", zap.Error(err))
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if !s.rateLimiter.Allow(event.Installation.Account.Login) {
		s.log.Warn("rate limit exceeded",
			zap.String("account", event.Installation.Account.Login))
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	s.handler.HandleInstallationChange(r.Context(), eventType, &event)
	w.WriteHeader(http.StatusOK)
}
