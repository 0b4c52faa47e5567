// ==============================================================================
// OKOA CHAPAA LOAN FUNNEL - cmd/server/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"okoa/internal/handler"
	"okoa/internal/middleware"
	"okoa/internal/mpesa"
	"okoa/internal/session"
	"okoa/internal/workflow"
	"okoa/pkg/cache"
	"okoa/pkg/config"
	"okoa/pkg/logger"
	"okoa/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("okoa-server")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Session aggregates live in Redis so they survive server restarts
	// within their TTL. Without Redis the in-memory store keeps the funnel
	// usable for local development.
	var store session.Store
	if redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn("Redis unavailable, using in-memory session store", map[string]interface{}{
			"error": err.Error(),
			"url":   cfg.Redis.URL,
		})
		store = session.NewMemoryStore()
	} else {
		defer redisCache.Close()
		store = session.NewRedisStore(redisCache, cfg.Session.TTL)
	}

	gateway := mpesa.NewClient(cfg.Gateway, log)
	machine := workflow.NewMachine(store, gateway, cfg, log)
	val := validator.New()

	appHandler := handler.NewApplicationHandler(machine, val, log)
	payHandler := handler.NewPaymentHandler(machine, val, log)

	r := mux.NewRouter()

	// Global middleware
	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(1 << 20))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","service":"okoa-server"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Session(cfg.Session.CookieName))

	api.HandleFunc("/eligibility", appHandler.SubmitEligibility).Methods("POST")
	api.HandleFunc("/loan-options", appHandler.ListLoanOptions).Methods("GET")
	api.HandleFunc("/loan-selection", appHandler.SelectLoan).Methods("POST")
	api.HandleFunc("/application", appHandler.GetStatus).Methods("GET")
	api.HandleFunc("/dashboard", appHandler.GetDashboard).Methods("GET")
	api.HandleFunc("/restart", appHandler.Restart).Methods("POST")

	api.HandleFunc("/payment", payHandler.GetPaymentPage).Methods("GET")
	api.HandleFunc("/payment/strategy", payHandler.ChooseStrategy).Methods("POST")
	api.HandleFunc("/payment/stk-push", payHandler.InitiatePush).Methods("POST")
	api.HandleFunc("/payment/stk-push/retry", payHandler.RetryPush).Methods("POST")
	api.HandleFunc("/payment/stk-push/cancel", payHandler.CancelPush).Methods("POST")
	api.HandleFunc("/payment/callback", payHandler.GatewayCallback).Methods("POST")
	api.HandleFunc("/payment/confirmation", payHandler.SubmitConfirmation).Methods("POST")

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Server stopped gracefully", nil)
}
