// Package handlers wires the HTTP and WebSocket surface to the room layer.
package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/tilerush/tilerush/internal/config"
	"github.com/tilerush/tilerush/internal/history"
	"github.com/tilerush/tilerush/internal/room"
	"github.com/tilerush/tilerush/internal/stats"
)

// Server bundles the shared collaborators every handler needs.
type Server struct {
	Rooms   *room.Store
	RoomCfg config.RoomConfig
	Stats   stats.Store
	History *history.Publisher
	Logger  *logrus.Logger
}

// NewServer builds a Server around an empty in-memory room store.
func NewServer(cfg config.RoomConfig, statsStore stats.Store, historyPub *history.Publisher, logger *logrus.Logger) *Server {
	return &Server{
		Rooms:   room.NewStore(),
		RoomCfg: cfg,
		Stats:   statsStore,
		History: historyPub,
		Logger:  logger,
	}
}
