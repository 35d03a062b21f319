package room

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/tilerush/tilerush/internal/engine"
)

// BoardStore holds each seated player's GameState for the active round,
// keyed by durable player id, and owns the shared bag-count invariant.
//
// The shared bag is one conceptual resource, but every player holds a private
// drawPile copy so letter identities stay hidden. After any operation that
// changes the true bag size, the store resizes every other pile to the
// authoritative count, padding with synthetic filler letters or truncating.
// Only the count is shared; per-letter fidelity across players is
// deliberately sacrificed (see DESIGN.md). Invariant after every settled
// operation: all pile lengths are equal.
//
// Not safe for concurrent use on its own; the owning room's mutex guards it.
type BoardStore struct {
	boards map[uuid.UUID]engine.GameState
}

func newBoardStore() *BoardStore {
	return &BoardStore{boards: make(map[uuid.UUID]engine.GameState)}
}

func (b *BoardStore) Get(playerID uuid.UUID) (engine.GameState, bool) {
	s, ok := b.boards[playerID]
	return s, ok
}

func (b *BoardStore) Put(playerID uuid.UUID, s engine.GameState) {
	b.boards[playerID] = s
}

func (b *BoardStore) Delete(playerID uuid.UUID) {
	delete(b.boards, playerID)
}

// Clear discards every board. Called on round teardown.
func (b *BoardStore) Clear() {
	b.boards = make(map[uuid.UUID]engine.GameState)
}

func (b *BoardStore) Count() int {
	return len(b.boards)
}

// BagCount returns the shared bag count. All piles are the same length by
// invariant, so any board answers.
func (b *BoardStore) BagCount() int {
	for _, s := range b.boards {
		return len(s.DrawPile)
	}
	return 0
}

// SyncBagCount makes the actor's pile length authoritative and resizes every
// other player's pile to match. Returns the authoritative count.
func (b *BoardStore) SyncBagCount(actorID uuid.UUID, rng *rand.Rand) int {
	actor, ok := b.boards[actorID]
	if !ok {
		return b.BagCount()
	}
	count := len(actor.DrawPile)
	for pid, s := range b.boards {
		if pid == actorID || len(s.DrawPile) == count {
			continue
		}
		b.boards[pid] = resizePile(s, count, rng)
	}
	return count
}

// ForceBagCount resizes one player's pile to n. Used for late joiners before
// their first snapshot.
func (b *BoardStore) ForceBagCount(playerID uuid.UUID, n int, rng *rand.Rand) {
	s, ok := b.boards[playerID]
	if !ok {
		return
	}
	b.boards[playerID] = resizePile(s, n, rng)
}

// resizePile truncates from the front (where draws come from) or pads the
// back with distribution-sampled filler letters.
func resizePile(s engine.GameState, n int, rng *rand.Rand) engine.GameState {
	if n < 0 {
		n = 0
	}
	pile := make([]string, len(s.DrawPile))
	copy(pile, s.DrawPile)
	for len(pile) > n {
		pile = pile[1:]
	}
	for len(pile) < n {
		pile = append(pile, engine.SampleLetter(rng))
	}
	s.DrawPile = pile
	return s
}
