package main

import (
	"context"
	"log"

	"github.com/shobhitgupta26/resumeai2-sub000/internal/bootstrap"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/config"
	"github.com/shobhitgupta26/resumeai2-sub000/internal/shared/server"
)

type runner interface {
	Run(addr ...string) error
}

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s (llm=%s history=%s)", addr, cfg.LLMProvider, cfg.HistoryBackend)

	if err := serve(app.Router, app.Close, addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// serve runs the router and always releases app resources before returning.
func serve(r runner, closeFn func() error, addr string) error {
	runErr := r.Run(addr)
	if err := closeFn(); err != nil {
		log.Printf("shutdown: %v", err)
	}
	return runErr
}
