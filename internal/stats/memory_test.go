package stats

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRecordMatch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	snap, err := store.GetSnapshot(ctx)
	require.NoError(t, err)
	assert.Zero(t, snap.TotalMatches)

	result := MatchResult{
		RoomID:      uuid.New(),
		WinnerName:  "Ada",
		LongestWord: "QUARTZ",
		Players: []PlayerLine{
			{PlayerID: uuid.New(), Name: "Ada", Winner: true},
			{PlayerID: uuid.New(), Name: "Grace", Winner: false},
		},
	}
	snap, err = store.RecordMatch(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalMatches)
	assert.Equal(t, "QUARTZ", snap.LongestWordEver)
	require.Len(t, snap.Leaders, 1)
	assert.Equal(t, LeaderLine{Name: "Ada", Wins: 1}, snap.Leaders[0])
}

func TestMemoryStoreLeadersOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	record := func(winner, word string) {
		_, err := store.RecordMatch(ctx, MatchResult{RoomID: uuid.New(), WinnerName: winner, LongestWord: word})
		require.NoError(t, err)
	}
	record("Grace", "AT")
	record("Ada", "TO")
	record("Grace", "IN")

	snap, err := store.GetSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Leaders, 2)
	assert.Equal(t, "Grace", snap.Leaders[0].Name)
	assert.Equal(t, 2, snap.Leaders[0].Wins)
	assert.Equal(t, "Ada", snap.Leaders[1].Name)
}
