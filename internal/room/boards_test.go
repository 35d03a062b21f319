package room

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilerush/tilerush/internal/engine"
)

func boardWithPile(n int) engine.GameState {
	pile := make([]string, n)
	for i := range pile {
		pile[i] = "E"
	}
	return engine.GameState{Config: engine.DefaultConfig(), DrawPile: pile}
}

func TestBagCountEmptyStore(t *testing.T) {
	b := newBoardStore()
	assert.Equal(t, 0, b.BagCount())
}

func TestSyncBagCountTruncatesFromFront(t *testing.T) {
	b := newBoardStore()
	rng := rand.New(rand.NewSource(1))
	actor, other := uuid.New(), uuid.New()

	short := boardWithPile(10)
	long := boardWithPile(14)
	long.DrawPile[0] = "Z" // front tiles are the next draws
	long.DrawPile[13] = "Q"
	b.Put(actor, short)
	b.Put(other, long)

	count := b.SyncBagCount(actor, rng)
	assert.Equal(t, 10, count)

	got, ok := b.Get(other)
	require.True(t, ok)
	require.Len(t, got.DrawPile, 10)
	assert.NotEqual(t, "Z", got.DrawPile[0], "truncation drops the front of the pile")
	assert.Equal(t, "Q", got.DrawPile[9], "the back of the pile survives")
}

func TestSyncBagCountPadsWithFiller(t *testing.T) {
	b := newBoardStore()
	rng := rand.New(rand.NewSource(1))
	actor, other := uuid.New(), uuid.New()

	b.Put(actor, boardWithPile(12))
	b.Put(other, boardWithPile(8))

	count := b.SyncBagCount(actor, rng)
	assert.Equal(t, 12, count)

	got, _ := b.Get(other)
	require.Len(t, got.DrawPile, 12)
	for _, letter := range got.DrawPile {
		assert.Len(t, letter, 1)
	}
}

func TestSyncBagCountUnknownActor(t *testing.T) {
	b := newBoardStore()
	rng := rand.New(rand.NewSource(1))
	b.Put(uuid.New(), boardWithPile(7))

	// An unknown actor changes nothing and reports the existing count.
	assert.Equal(t, 7, b.SyncBagCount(uuid.New(), rng))
}

func TestForceBagCount(t *testing.T) {
	b := newBoardStore()
	rng := rand.New(rand.NewSource(1))
	pid := uuid.New()
	b.Put(pid, boardWithPile(5))

	b.ForceBagCount(pid, 9, rng)
	got, _ := b.Get(pid)
	assert.Len(t, got.DrawPile, 9)

	b.ForceBagCount(pid, 0, rng)
	got, _ = b.Get(pid)
	assert.Empty(t, got.DrawPile)
}

func TestClearAndCount(t *testing.T) {
	b := newBoardStore()
	b.Put(uuid.New(), boardWithPile(3))
	b.Put(uuid.New(), boardWithPile(3))
	assert.Equal(t, 2, b.Count())

	b.Clear()
	assert.Equal(t, 0, b.Count())
	assert.Equal(t, 0, b.BagCount())
}
