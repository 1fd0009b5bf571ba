package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/vertexforge/vertexforge/internal/collab"
	"github.com/vertexforge/vertexforge/internal/config"
	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/export"
	"github.com/vertexforge/vertexforge/internal/logging"
	mw "github.com/vertexforge/vertexforge/internal/middleware"
	"github.com/vertexforge/vertexforge/internal/scene"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logFile := logging.Init(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	defer logFile.Close()

	// Scene factory for the collaboration hub. Scenes live in memory only.
	sceneFactory := func(sceneID string) (*engine.Engine, error) {
		e := engine.NewEngine(
			engine.WithPickRange(cfg.VertexPickRange),
			engine.WithLogger(slog.Default().With("scene", sceneID)),
		)
		if cfg.SeedSample {
			if err := e.LoadSampleScene(sceneID); err != nil {
				return nil, fmt.Errorf("seed sample scene: %w", err)
			}
		}
		return e, nil
	}

	hub := collab.NewHub(sceneFactory, collab.WithMaxRooms(cfg.MaxRooms))
	go hub.Run()

	sceneHandler := scene.NewHandler(scene.NewService(hub))
	exportHandler := export.NewHandler(hub, cfg.PreviewSize)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.AllowedOrigins))
	r.Use(mw.Identity)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	sceneHandler.Routes(r)

	r.HandleFunc("/scenes/{sceneId}/preview.png", exportHandler.Preview).Methods("GET")
	r.HandleFunc("/scenes/{sceneId}/download", exportHandler.Download).Methods("GET")

	// WebSocket endpoint
	originPatterns := websocketOrigins(cfg.AllowedOrigins)
	r.HandleFunc("/ws/scene/{sceneId}", func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWebSocket(w, r, mux.Vars(r)["sceneId"], mw.UserIDFromContext(r.Context()),
			&websocket.AcceptOptions{OriginPatterns: originPatterns})
	})

	// Preflight requests only need the CORS headers.
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// websocketOrigins turns the CORS origin list into host patterns for the
// websocket handshake, which matches on host only.
func websocketOrigins(allowed string) []string {
	var patterns []string
	for _, o := range strings.Split(allowed, ",") {
		o = strings.TrimSpace(o)
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
