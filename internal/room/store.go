package room

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Metadata is the public listing view of a room.
type Metadata struct {
	RoomID          string `json:"roomId"`
	Name            string `json:"name"`
	Phase           string `json:"phase"`
	OwnerName       string `json:"ownerName,omitempty"`
	PlayerCount     int    `json:"playerCount"`
	ConnectedCount  int    `json:"connectedCount"`
	ReservedCount   int    `json:"reservedCount"`
	MaxPlayers      int    `json:"maxPlayers"`
	HasActiveGame   bool   `json:"hasActiveGame"`
	HasPasscode     bool   `json:"hasPasscode"`
	RoundsPlayed    int    `json:"roundsPlayed"`
	LastWinnerName  string `json:"lastWinnerName,omitempty"`
	LastLongestWord string `json:"lastLongestWord,omitempty"`
	CreatedAt       int64  `json:"createdAt"`
}

// Metadata snapshots the room's listing view under its own lock.
func (r *Room) Metadata() Metadata {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	ownerName := ""
	if owner, ok := r.players[r.OwnerSessionID]; ok {
		ownerName = owner.Name
	}
	return Metadata{
		RoomID:          r.ID.String(),
		Name:            r.Name,
		Phase:           string(r.Phase),
		OwnerName:       ownerName,
		PlayerCount:     len(r.players),
		ConnectedCount:  r.connectedCountLocked(),
		ReservedCount:   r.seats.ReservedCount(),
		MaxPlayers:      MaxRoundPlayers,
		HasActiveGame:   r.Phase == PhasePlaying,
		HasPasscode:     r.passcodeHash != "",
		RoundsPlayed:    r.RoundsPlayed,
		LastWinnerName:  r.LastWinnerName,
		LastLongestWord: r.LastLongestWord,
		CreatedAt:       r.CreatedAt.Unix(),
	}
}

// Store manages ephemeral rooms in memory only.
type Store struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

// NewStore returns an in-memory room store.
func NewStore() *Store {
	return &Store{rooms: make(map[uuid.UUID]*Room)}
}

// Add stores the room and wires its OnEmpty callback so the room removes
// itself once the last player leaves with no pending reservations.
func (s *Store) Add(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.OnEmpty = s.Delete
	s.rooms[r.ID] = r
}

// Delete removes the room from memory and stops its sweep.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	r, ok := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()
	if ok {
		r.Close()
	}
}

// Get retrieves a room if it exists.
func (s *Store) Get(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// List returns listing metadata for every room, newest first.
func (s *Store) List() []Metadata {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	// Metadata takes each room's lock; do it outside the store lock.
	out := make([]Metadata, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Metadata())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].RoomID < out[j].RoomID
	})
	return out
}

// Len reports how many rooms are live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}
