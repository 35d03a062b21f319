package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tilerush/tilerush/internal/auth"
	"github.com/tilerush/tilerush/internal/room"
)

type createRoomRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

// CreateRoomHandler creates an ephemeral in-memory room. No DB writes; the
// room removes itself from the store once it empties out.
func CreateRoomHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
			http.Error(w, "bad room request payload", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			req.Name = "Tile Rush Room"
		}
		if len(req.Name) > 64 {
			http.Error(w, "room name too long", http.StatusBadRequest)
			return
		}

		passcodeHash := ""
		if req.Passcode != "" {
			hash, err := auth.HashPasscode(req.Passcode)
			if err != nil {
				s.Logger.Errorf("failed to hash room passcode: %v", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			passcodeHash = hash
		}

		rm := room.New(req.Name, passcodeHash, s.RoomCfg, s.Stats, s.History, s.Logger)
		s.Rooms.Add(rm)
		s.Logger.Infof("created room %s (%q)", rm.ID, req.Name)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rm.Metadata())
	}
}

// ListRoomsHandler returns listing metadata for every live room.
func ListRoomsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.Rooms.List())
	}
}

// StatsHandler exposes the stats collaborator's current snapshot.
func StatsHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		snap, err := s.Stats.GetSnapshot(ctx)
		if err != nil {
			s.Logger.Warnf("stats snapshot failed: %v", err)
			http.Error(w, "stats unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snap)
	}
}
