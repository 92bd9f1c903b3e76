package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"girlmath-server/src/api"
	"girlmath-server/src/config"
	"girlmath-server/src/db"
	"girlmath-server/src/util"
)

func main() {
	cfg := config.Load()
	if err := cfg.ValidateServer(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	store, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer store.Close()

	var cache *db.TransactionCache
	if cfg.CacheEnabled {
		if cache, err = db.NewTransactionCache(cfg.CacheTTL); err != nil {
			log.Fatalf("Cache setup failed: %v", err)
		}
		defer cache.Close()
	}

	// Router
	router, err := api.NewRouter(store, api.Options{
		Sessions: util.NewSessions(cfg.SecretKey, cfg.SessionTTL, cfg.SecureCookies),
		Cache:    cache,
		ReadOnly: cfg.ReadOnly,
	})
	if err != nil {
		log.Fatalf("Router setup failed: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ERROR: Shutdown failed: %v", err)
		}
	}()

	log.Printf("INFO: Server running on port %s (driver %s, read-only %t)", cfg.Port, cfg.DBDriver, cfg.ReadOnly)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
