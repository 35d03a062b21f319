package engine

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// setupGame builds a small deterministic game for operation tests.
func setupGame(t *testing.T, players int) GameState {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Players = players
	s := NewGame(cfg, testRNG())
	require.Equal(t, StatusRunning, s.Status)
	return s
}

func stagingCount(s GameState) int {
	n := 0
	for _, tl := range s.Tiles {
		if tl.Zone == ZoneStaging {
			n++
		}
	}
	return n
}

func TestNewGameClampsPlayers(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Players = 9
	s := NewGame(cfg, testRNG())
	assert.Equal(t, 4, s.Config.Players)

	cfg.Players = 1
	s = NewGame(cfg, testRNG())
	assert.Equal(t, 2, s.Config.Players)
}

func TestNewGameInitialDeal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Players = 2
	cfg.InitialVisibleTiles = 21
	s := NewGame(cfg, testRNG())

	// Each serve round consumes `players` letters: players-1 hidden, 1 visible.
	assert.Equal(t, BagSize-21*2, len(s.DrawPile))
	assert.Equal(t, 21, len(s.Tiles))
	assert.Equal(t, 21, stagingCount(s))
	assert.Equal(t, 0, s.Turn)
}

func TestNewGameDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	a := NewGame(cfg, rand.New(rand.NewSource(7)))
	b := NewGame(cfg, rand.New(rand.NewSource(7)))
	assert.Equal(t, a.DrawPile, b.DrawPile)
	assert.Equal(t, a.Tiles, b.Tiles)
}

func TestServePlateDrawsFromBag(t *testing.T) {
	s := setupGame(t, 3)
	before := len(s.DrawPile)

	next := ServePlate(s)

	assert.Equal(t, StatusRunning, next.Status)
	assert.Equal(t, before-3, len(next.DrawPile))
	assert.Equal(t, len(s.Tiles)+1, len(next.Tiles))
	assert.Equal(t, s.Turn+1, next.Turn)
	// Input must be untouched.
	assert.Equal(t, before, len(s.DrawPile))
}

func TestServePlateWinsOnExhaustedBag(t *testing.T) {
	s := setupGame(t, 2)
	s.DrawPile = s.DrawPile[:2] // exactly `players` letters left

	next := ServePlate(s)

	assert.Equal(t, StatusWon, next.Status)
	assert.Equal(t, s.Turn, next.Turn, "a failed serve should not advance the turn")
	assert.Equal(t, len(s.Tiles), len(next.Tiles))
}

func TestApplyPressureTickLosesOnExhaustedBag(t *testing.T) {
	s := setupGame(t, 2)
	s.DrawPile = s.DrawPile[:1]

	next := ApplyPressureTick(s)
	assert.Equal(t, StatusLost, next.Status)
}

func TestApplyPressureTickServes(t *testing.T) {
	s := setupGame(t, 2)
	next := ApplyPressureTick(s)
	assert.Equal(t, StatusRunning, next.Status)
	assert.Equal(t, len(s.DrawPile)-2, len(next.DrawPile))
	assert.Equal(t, s.Turn+1, next.Turn)
}

func TestTradeTileNoOpWhenBagLow(t *testing.T) {
	s := setupGame(t, 2)
	s.DrawPile = s.DrawPile[:3]
	tileID := s.Tiles[0].ID

	next := TradeTile(s, tileID, testRNG())

	assert.False(t, CanTradeTile(s))
	assert.True(t, next.Rejected)
	assert.Equal(t, s.Tiles, next.Tiles)
	assert.Equal(t, s.DrawPile, next.DrawPile)
	assert.Equal(t, s.Turn, next.Turn)
	assert.NotEqual(t, s.LastAction, next.LastAction)
}

func TestTradeTileSwapsOneForThree(t *testing.T) {
	s := setupGame(t, 2)
	require.True(t, CanTradeTile(s))
	bagBefore := len(s.DrawPile)
	tilesBefore := len(s.Tiles)
	traded := s.Tiles[0]

	next := TradeTile(s, traded.ID, testRNG())

	// One letter returned, three drawn: net bag -2, net tiles +2.
	assert.Equal(t, bagBefore-2, len(next.DrawPile))
	assert.Equal(t, tilesBefore+2, len(next.Tiles))
	assert.Equal(t, s.Turn+1, next.Turn)
	assert.Less(t, next.tileIndex(traded.ID), 0, "traded tile should leave play")

	// Input state object is never mutated.
	assert.Equal(t, bagBefore, len(s.DrawPile))
	assert.Equal(t, tilesBefore, len(s.Tiles))
}

func TestTradeTileUnknownTile(t *testing.T) {
	s := setupGame(t, 2)
	next := TradeTile(s, "t999", testRNG())
	assert.True(t, next.Rejected)
	assert.Equal(t, s.Tiles, next.Tiles)
	assert.Equal(t, s.DrawPile, next.DrawPile)
}

func TestMoveTileUnknownTileRejected(t *testing.T) {
	s := setupGame(t, 2)
	next := MoveTile(s, "t999", 3, 4)
	assert.True(t, next.Rejected)
	assert.Equal(t, s.Tiles, next.Tiles)
}

// The flag is the rejection signal; accepted operations must never carry it,
// even when replayed from a previously rejected state.
func TestRejectedFlagClearedOnAcceptedOps(t *testing.T) {
	s := setupGame(t, 2)
	rejected := MoveTile(s, "t999", 1, 1)
	require.True(t, rejected.Rejected)

	moved := MoveTile(rejected, rejected.Tiles[0].ID, 3, 4)
	assert.False(t, moved.Rejected)

	traded := TradeTile(rejected, rejected.Tiles[0].ID, testRNG())
	assert.False(t, traded.Rejected)

	served := ServePlate(rejected)
	assert.False(t, served.Rejected)
}

func TestMoveTileFromStagingToFreeCell(t *testing.T) {
	s := setupGame(t, 2)
	tileID := s.Tiles[0].ID

	next := MoveTile(s, tileID, 3, 4)

	moved := next.Tiles[next.tileIndex(tileID)]
	assert.Equal(t, ZoneBoard, moved.Zone)
	assert.Equal(t, 3, moved.Row)
	assert.Equal(t, 4, moved.Col)
	// Original state keeps the tile in staging.
	assert.Equal(t, ZoneStaging, s.Tiles[0].Zone)
}

func TestMoveTileClampsIntoBounds(t *testing.T) {
	s := setupGame(t, 2)
	tileID := s.Tiles[0].ID

	next := MoveTile(s, tileID, 99, -5)

	moved := next.Tiles[next.tileIndex(tileID)]
	assert.Equal(t, s.Config.Rows, moved.Row)
	assert.Equal(t, 1, moved.Col)
}

func TestMoveTileBoardToBoardSwaps(t *testing.T) {
	s := setupGame(t, 2)
	a := s.Tiles[0].ID
	b := s.Tiles[1].ID
	s = MoveTile(s, a, 1, 1)
	s = MoveTile(s, b, 2, 2)

	next := MoveTile(s, a, 2, 2)

	ta := next.Tiles[next.tileIndex(a)]
	tb := next.Tiles[next.tileIndex(b)]
	assert.Equal(t, [2]int{2, 2}, [2]int{ta.Row, ta.Col})
	assert.Equal(t, ZoneBoard, tb.Zone)
	assert.Equal(t, [2]int{1, 1}, [2]int{tb.Row, tb.Col})
	assert.GreaterOrEqual(t, next.boardTileAt(2, 2), 0)
}

func TestMoveTileStagingEvictsOccupant(t *testing.T) {
	s := setupGame(t, 2)
	a := s.Tiles[0].ID
	b := s.Tiles[1].ID
	s = MoveTile(s, a, 5, 5)

	next := MoveTile(s, b, 5, 5)

	ta := next.Tiles[next.tileIndex(a)]
	tb := next.Tiles[next.tileIndex(b)]
	assert.Equal(t, ZoneStaging, ta.Zone)
	assert.Zero(t, ta.Row)
	assert.Zero(t, ta.Col)
	assert.Equal(t, ZoneBoard, tb.Zone)
	assert.Equal(t, [2]int{5, 5}, [2]int{tb.Row, tb.Col})

	// Exactly one board tile at the contested cell.
	count := 0
	for _, tl := range next.Tiles {
		if tl.Zone == ZoneBoard && tl.Row == 5 && tl.Col == 5 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestMoveTileOntoItselfIsStable(t *testing.T) {
	s := setupGame(t, 2)
	a := s.Tiles[0].ID
	s = MoveTile(s, a, 4, 4)

	next := MoveTile(s, a, 4, 4)
	ta := next.Tiles[next.tileIndex(a)]
	assert.Equal(t, ZoneBoard, ta.Zone)
	assert.Equal(t, [2]int{4, 4}, [2]int{ta.Row, ta.Col})
}

func TestGameStateJSONRoundTrip(t *testing.T) {
	s := setupGame(t, 3)
	s = MoveTile(s, s.Tiles[0].ID, 2, 3)
	s = ServePlate(s)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var back GameState
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, s.Tiles, back.Tiles)
	assert.Equal(t, len(s.DrawPile), len(back.DrawPile))
	assert.Equal(t, s.Config, back.Config)
	assert.Equal(t, s.Turn, back.Turn)
	assert.Equal(t, s.NextTileID, back.NextTileID)
}
