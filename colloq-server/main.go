package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colloq/internal/api"
	"colloq/internal/config"
	"colloq/internal/db"
	"colloq/internal/engine"
	"colloq/internal/search"
)

const serverVersion = "0.1.0-dev"

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		listenAddr = flag.String("listen", "", "listen address, overrides config")
		dbPath     = flag.String("db", "", "path to SQLite database, overrides config")
		dev        = flag.Bool("dev", false, "enable development endpoints")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *dev {
		cfg.Dev = true
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	adminName, err := db.EnsureBootstrapAdmin(database, cfg.AdminKeyFile)
	if err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}
	if adminName != "" {
		log.Printf("bootstrap admin %q created, key written to %s", adminName, cfg.AdminKeyFile)
	}

	eng := engine.New(database, engine.Config{
		MaxAutocompleteResults: cfg.MaxAutocompleteResults,
		NotifyOnNewComment:     cfg.Notify(),
	}, search.NewFTS(database))

	mux := api.NewRouter(database, eng, api.Options{
		Version:            serverVersion,
		Dev:                cfg.Dev,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
		eng.DrainNotifications()
	}()

	log.Printf("colloq-server listening on %s", server.Addr)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	<-shutdownDone
}
