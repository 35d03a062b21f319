package room

import (
	"time"

	"github.com/google/uuid"

	"github.com/tilerush/tilerush/internal/auth"
)

// SeatReservation is a time-boxed hold on a disconnected player's identity
// and board. Created on ungraceful disconnect, consumed on reclaim, swept on
// expiry. Never exposed to other clients.
type SeatReservation struct {
	PlayerID  uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// seatManager owns resume tokens and seat reservations for one room. All
// methods assume the room mutex is held.
type seatManager struct {
	roomID uuid.UUID
	window time.Duration

	// tokens maps playerID to its issued resume token. A token is issued
	// once per seat and reused for later reservations.
	tokens  map[uuid.UUID]string
	byToken map[string]uuid.UUID

	reservations map[uuid.UUID]*SeatReservation
}

func newSeatManager(roomID uuid.UUID, window time.Duration) *seatManager {
	return &seatManager{
		roomID:       roomID,
		window:       window,
		tokens:       make(map[uuid.UUID]string),
		byToken:      make(map[string]uuid.UUID),
		reservations: make(map[uuid.UUID]*SeatReservation),
	}
}

// IssueToken returns the player's resume token, minting one on first use.
func (m *seatManager) IssueToken(playerID uuid.UUID) (string, error) {
	if token, ok := m.tokens[playerID]; ok {
		return token, nil
	}
	token, err := auth.CreateSeatToken(playerID, m.roomID)
	if err != nil {
		return "", err
	}
	m.tokens[playerID] = token
	m.byToken[token] = playerID
	return token, nil
}

// Reserve registers a reservation for a disconnecting player, issuing a token
// if none exists yet. An existing reservation has its window restarted.
func (m *seatManager) Reserve(playerID uuid.UUID, now time.Time) (*SeatReservation, error) {
	token, err := m.IssueToken(playerID)
	if err != nil {
		return nil, err
	}
	res := &SeatReservation{
		PlayerID:  playerID,
		Token:     token,
		ExpiresAt: now.Add(m.window),
	}
	m.reservations[playerID] = res
	return res, nil
}

// Redeem validates a presented token against the live reservation registry
// and consumes the reservation on success. The token signature is checked
// first, but the registry is authoritative: a well-signed token with no
// unexpired reservation is rejected.
func (m *seatManager) Redeem(token string, now time.Time) (uuid.UUID, bool) {
	playerID, roomID, err := auth.ParseSeatToken(token)
	if err != nil || roomID != m.roomID {
		return uuid.Nil, false
	}
	if issued, ok := m.tokens[playerID]; !ok || issued != token {
		return uuid.Nil, false
	}
	res, ok := m.reservations[playerID]
	if !ok || now.After(res.ExpiresAt) {
		return uuid.Nil, false
	}
	delete(m.reservations, playerID)
	return playerID, true
}

// Forget drops all token and reservation state for a player. Called on
// graceful leave and on full removal after expiry.
func (m *seatManager) Forget(playerID uuid.UUID) {
	if token, ok := m.tokens[playerID]; ok {
		delete(m.byToken, token)
		delete(m.tokens, playerID)
	}
	delete(m.reservations, playerID)
}

// Expired returns the players whose reservations have lapsed as of now.
func (m *seatManager) Expired(now time.Time) []uuid.UUID {
	var out []uuid.UUID
	for pid, res := range m.reservations {
		if now.After(res.ExpiresAt) {
			out = append(out, pid)
		}
	}
	return out
}

// ReservedCount reports pending reservations, for room metadata.
func (m *seatManager) ReservedCount() int {
	return len(m.reservations)
}
