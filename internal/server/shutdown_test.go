package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/config"
)

func TestGracefulServer_RunsHooksOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpServer := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	gs := NewGracefulServer(httpServer, logger, config.ServerConfig{ShutdownTimeout: time.Second})

	var order []string
	gs.RegisterShutdownHook("first", func(ctx context.Context) error {
		order = append(order, "first")
		return nil
	})
	gs.RegisterShutdownHook("second", func(ctx context.Context) error {
		order = append(order, "second")
		return errors.New("flush failed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gs.ListenAndServe(ctx)
	if err == nil || !strings.Contains(err.Error(), "shutdown hook second failed") {
		t.Fatalf("expected hook error, got %v", err)
	}
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("hooks ran in order %v", order)
	}
}

func TestGracefulServer_ListenError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpServer := &http.Server{Addr: "127.0.0.1:-1"}
	gs := NewGracefulServer(httpServer, logger, config.ServerConfig{ShutdownTimeout: time.Second})

	if err := gs.ListenAndServe(context.Background()); err == nil {
		t.Fatal("expected listen error")
	}
}
