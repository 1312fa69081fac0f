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

	"lingo-client/internal/app"
	"lingo-client/internal/config"
	"lingo-client/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[server] config error: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("[server] startup error: %v", err)
	}
	defer a.Close()

	// Pick up a session left by a previous run.
	if a.Session.Restore() {
		log.Printf("[server] restored session for user %d", a.Session.UserID())
	}

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           web.NewServer(a).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[server] listening on %s (api %s)", srv.Addr, cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] server start error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown error: %v", err)
	}
}
