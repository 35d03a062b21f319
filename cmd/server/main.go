// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/tilerush/tilerush/internal/auth"
	"github.com/tilerush/tilerush/internal/config"
	"github.com/tilerush/tilerush/internal/handlers"
	"github.com/tilerush/tilerush/internal/history"
	"github.com/tilerush/tilerush/internal/middleware"
	"github.com/tilerush/tilerush/internal/stats"
)

func main() {
	logger := logrus.New()
	if os.Getenv("DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Seat token signing keys: persistent if key files are configured,
	// ephemeral otherwise. Ephemeral keys invalidate seat tokens across
	// restarts, which matches reservations living in memory anyway.
	privPath := os.Getenv("SEAT_KEY_PRIVATE")
	pubPath := os.Getenv("SEAT_KEY_PUBLIC")
	if privPath != "" && pubPath != "" {
		if err := auth.InitFromPath(privPath, pubPath); err != nil {
			log.Fatalf("failed to load seat token keys: %v", err)
		}
	} else {
		auth.Init()
	}

	// Stats collaborator: postgres when configured, in-memory otherwise.
	var statsStore stats.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pg, err := stats.NewPostgresStore(ctx, dsn)
		cancel()
		if err != nil {
			log.Fatalf("failed to connect stats store: %v", err)
		}
		defer pg.Close()
		statsStore = pg
		logger.Info("stats: using postgres store")
	} else {
		statsStore = stats.NewMemoryStore()
		logger.Info("stats: using in-memory store")
	}

	// Match history queue is best effort; the server runs fine without it.
	historyPub, err := history.Connect(logger)
	if err != nil {
		logger.Warnf("match history disabled: %v", err)
		historyPub = nil
	}

	srv := handlers.NewServer(config.RoomFromEnv(), statsStore, historyPub, logger)
	logged := middleware.LogRequests(logger)

	mux := http.NewServeMux()
	mux.Handle("/rooms/create", logged(handlers.CreateRoomHandler(srv)))
	mux.Handle("/rooms/list", logged(handlers.ListRoomsHandler(srv)))
	mux.Handle("/rooms/ws/", logged(handlers.RoomWSHandler(srv)))
	mux.Handle("/stats", logged(handlers.StatsHandler(srv)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	httpSrv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("Running on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server exited: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Warnf("shutdown error: %v", err)
	}
}
