// Package room implements the authoritative core of a tile-race room: the
// lobby/playing state machine, per-player board isolation with a shared
// bag-count invariant, and the seat-reservation protocol that lets a
// disconnected player rejoin and recover their exact board.
package room

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tilerush/tilerush/internal/config"
	"github.com/tilerush/tilerush/internal/engine"
	"github.com/tilerush/tilerush/internal/history"
	"github.com/tilerush/tilerush/internal/models"
	"github.com/tilerush/tilerush/internal/protocol"
	"github.com/tilerush/tilerush/internal/stats"
)

// Phase is the room-level state.
type Phase string

const (
	PhaseLobby   Phase = "lobby"
	PhasePlaying Phase = "playing"
)

// MaxRoundPlayers caps how many seats take part in a round.
const MaxRoundPlayers = 4

// Room is a single game room. Every message handler and timer callback runs
// to completion under Mu, so roster, boards and reservations never see
// parallel mutation; the only suspension point is the stats collaborator,
// which is invoked after the phase has already flipped back to lobby.
type Room struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time

	// passcodeHash is empty for open rooms; argon2id-encoded otherwise.
	passcodeHash string

	Phase          Phase
	OwnerSessionID uuid.UUID

	// players is keyed by current session id; sessionByPlayer is the reverse
	// index from durable player id. A disconnected player stays in players
	// under their last session id until reclaim rekeys them.
	players         map[uuid.UUID]*models.Player
	sessionByPlayer map[uuid.UUID]uuid.UUID
	// order holds player ids in join order for stable host succession.
	order []uuid.UUID

	boards *BoardStore
	seats  *seatManager
	rng    *rand.Rand
	cfg    config.RoomConfig

	// activeRoundPlayers is fixed at round start and reused for late joiners.
	activeRoundPlayers int
	startedAt          time.Time

	LastWinnerName  string
	LastLongestWord string
	RoundsPlayed    int

	statsStore stats.Store
	historyPub *history.Publisher
	log        *logrus.Entry

	// OnEmpty is invoked (outside the lock) once the room holds no players
	// and no pending reservations, typically to delete it from the store.
	OnEmpty func(roomID uuid.UUID)

	Mu        sync.Mutex
	sweepStop chan struct{}
	closed    bool
}

// New creates a room and starts its reservation sweep.
func New(name, passcodeHash string, cfg config.RoomConfig, statsStore stats.Store, historyPub *history.Publisher, logger *logrus.Logger) *Room {
	id := uuid.New()
	r := &Room{
		ID:              id,
		Name:            name,
		CreatedAt:       time.Now(),
		passcodeHash:    passcodeHash,
		Phase:           PhaseLobby,
		players:         make(map[uuid.UUID]*models.Player),
		sessionByPlayer: make(map[uuid.UUID]uuid.UUID),
		boards:          newBoardStore(),
		seats:           newSeatManager(id, time.Duration(cfg.ReservationSeconds)*time.Second),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:             cfg,
		statsStore:      statsStore,
		historyPub:      historyPub,
		log:             logger.WithField("room", id.String()[:8]),
		sweepStop:       make(chan struct{}),
	}
	go r.runSweep(time.Duration(cfg.SweepIntervalSec) * time.Second)
	return r
}

// Close stops the reservation sweep. Safe to call more than once.
func (r *Room) Close() {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if !r.closed {
		r.closed = true
		close(r.sweepStop)
	}
}

// RequiresPasscode reports whether joiners must present a passcode.
func (r *Room) RequiresPasscode() bool {
	return r.passcodeHash != ""
}

// PasscodeHash returns the stored hash for the transport layer to verify
// against. Empty for open rooms.
func (r *Room) PasscodeHash() string {
	return r.passcodeHash
}

// HandleJoin seats a connection. A valid, unexpired seat token reclaims the
// existing player record in place, preserving the exact board; otherwise a
// fresh seat is created. Returns the player's new session id.
func (r *Room) HandleJoin(name, seatToken string, send func(v interface{})) uuid.UUID {
	name = sanitizeName(name)

	r.Mu.Lock()

	now := time.Now()
	var p *models.Player

	if seatToken != "" {
		if playerID, ok := r.seats.Redeem(seatToken, now); ok {
			if oldSID, ok := r.sessionByPlayer[playerID]; ok {
				p = r.players[oldSID]
				delete(r.players, oldSID)
			}
		}
	}

	newSID := uuid.New()
	if p != nil {
		// Reclaim: rebind the transport identity, keep everything else.
		p.SessionID = newSID
		p.Connected = true
		p.Send = send
		if name != "" {
			p.Name = name
		}
		r.log.Infof("player %s reclaimed seat as session %s", p.PlayerID, newSID)
	} else {
		if name == "" {
			name = fmt.Sprintf("Player %d", len(r.order)+1)
		}
		p = &models.Player{
			PlayerID:  uuid.New(),
			SessionID: newSID,
			Name:      name,
			Connected: true,
			Send:      send,
		}
		r.order = append(r.order, p.PlayerID)
		r.log.Infof("player %s joined as session %s", p.PlayerID, newSID)
	}
	r.players[newSID] = p
	r.sessionByPlayer[p.PlayerID] = newSID
	r.ensureOwnerLocked()

	// Mid-round joiners get a board: the reclaimed one if it survived,
	// otherwise a fresh state forced to the shared bag count.
	if r.Phase == PhasePlaying {
		if _, ok := r.boards.Get(p.PlayerID); !ok {
			r.boards.Put(p.PlayerID, engine.NewGame(r.roundConfigLocked(), r.rng))
			if auth := r.firstBoardOwnerLocked(); auth != p.PlayerID {
				r.boards.SyncBagCount(auth, r.rng)
			}
		}
		r.sendTo(p, protocol.NewGameStarted(r.startedAt))
		if state, ok := r.boards.Get(p.PlayerID); ok {
			r.sendTo(p, protocol.NewGameSnapshot(state, r.boards.BagCount(), "resync", ""))
		}
	}

	r.broadcastRoomStateLocked()
	r.broadcastLocked(protocol.NewRoomNotice(protocol.NoticeInfo, fmt.Sprintf("%s joined the room", p.Name)))
	r.Mu.Unlock()
	return newSID
}

// HandleDisconnect processes an ungraceful drop: the seat is reserved for a
// bounded window during which the player's board survives untouched.
func (r *Room) HandleDisconnect(sessionID uuid.UUID) {
	r.Mu.Lock()
	p, ok := r.players[sessionID]
	if !ok || !p.Connected {
		r.Mu.Unlock()
		return
	}
	p.Connected = false
	p.Send = nil
	if _, err := r.seats.Reserve(p.PlayerID, time.Now()); err != nil {
		r.log.Warnf("failed to reserve seat for %s: %v", p.PlayerID, err)
	}
	r.log.Infof("player %s disconnected, seat reserved for %ds", p.PlayerID, r.cfg.ReservationSeconds)

	r.ensureOwnerLocked()
	if r.Phase == PhasePlaying && r.connectedCountLocked() < 2 {
		r.endRoundNoWinnerLocked("round ended: not enough connected players")
	}
	r.broadcastRoomStateLocked()
	r.broadcastLocked(protocol.NewRoomNotice(protocol.NoticeInfo, fmt.Sprintf("%s disconnected", p.Name)))
	r.Mu.Unlock()
}

// HandleLeave processes a graceful leave: player, board and reservation state
// are deleted immediately, bypassing the reservation window.
func (r *Room) HandleLeave(sessionID uuid.UUID) {
	r.Mu.Lock()
	p, ok := r.players[sessionID]
	if !ok {
		r.Mu.Unlock()
		return
	}
	name := p.Name
	r.removePlayerLocked(p)
	r.log.Infof("player %s left", p.PlayerID)
	r.broadcastRoomStateLocked()
	r.broadcastLocked(protocol.NewRoomNotice(protocol.NoticeInfo, fmt.Sprintf("%s left the room", name)))
	empty := r.emptyLocked()
	r.Mu.Unlock()

	if empty {
		r.dispose()
	}
}

// HandleMessage dispatches one decoded client message under the room lock.
func (r *Room) HandleMessage(sessionID uuid.UUID, msg models.Message) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.players[sessionID]
	if !ok || !p.Connected {
		return
	}

	switch m := msg.(type) {
	case models.SetName:
		p.Name = m.Name
		r.broadcastRoomStateLocked()
	case models.SetReady:
		p.Ready = m.Ready
		r.broadcastRoomStateLocked()
	case models.StartGame:
		r.handleStartGameLocked(p)
	case models.RequestSeatToken:
		r.handleSeatTokenRequestLocked(p)
	case models.MoveTile:
		r.handleMoveLocked(p, m)
	case models.TradeTile:
		r.handleTradeLocked(p, m)
	case models.ServePlate:
		r.handleServeLocked(p)
	case models.Chat:
		r.broadcastLocked(protocol.NewChat(p.SessionID.String(), p.Name, m.Text))
	case models.Ping:
		r.sendTo(p, protocol.NewPong())
	}
}

func (r *Room) handleStartGameLocked(p *models.Player) {
	if r.Phase != PhaseLobby {
		r.sendTo(p, protocol.NewActionRejected("A round is already in progress."))
		return
	}
	if p.SessionID != r.OwnerSessionID {
		r.sendTo(p, protocol.NewActionRejected("Only the room owner can start the game."))
		return
	}
	connected := r.connectedCountLocked()
	if connected < 2 {
		r.sendTo(p, protocol.NewActionRejected("At least two connected players are required."))
		return
	}

	r.Phase = PhasePlaying
	r.startedAt = time.Now()
	r.activeRoundPlayers = connected
	if r.activeRoundPlayers > MaxRoundPlayers {
		r.activeRoundPlayers = MaxRoundPlayers
	}

	cfg := r.roundConfigLocked()
	for _, pid := range r.order {
		sid, ok := r.sessionByPlayer[pid]
		if !ok {
			continue
		}
		if pl := r.players[sid]; pl != nil && pl.Connected {
			pl.Ready = false
			r.boards.Put(pid, engine.NewGame(cfg, r.rng))
		}
	}
	r.log.Infof("round started with %d players, bag %d", r.boards.Count(), r.boards.BagCount())

	r.broadcastLocked(protocol.NewGameStarted(r.startedAt))
	r.broadcastSnapshotsLocked("start", "")
	r.broadcastRoomStateLocked()
}

func (r *Room) handleSeatTokenRequestLocked(p *models.Player) {
	token, err := r.seats.IssueToken(p.PlayerID)
	if err != nil {
		r.log.Errorf("failed to issue seat token for %s: %v", p.PlayerID, err)
		r.sendTo(p, protocol.NewRoomNotice(protocol.NoticeError, "Could not issue a seat token."))
		return
	}
	r.sendTo(p, protocol.NewSeatToken(token, p.PlayerID.String(), r.ID.String(), r.cfg.ReservationSeconds))
}

// requireBoardLocked runs the shared action-validation ladder: the room must
// be mid-round and the acting session must own an active board.
func (r *Room) requireBoardLocked(p *models.Player) (engine.GameState, bool) {
	if r.Phase != PhasePlaying {
		r.sendTo(p, protocol.NewActionRejected("No round is in progress."))
		return engine.GameState{}, false
	}
	state, ok := r.boards.Get(p.PlayerID)
	if !ok {
		r.sendTo(p, protocol.NewActionRejected("You have no active board this round."))
		return engine.GameState{}, false
	}
	return state, true
}

func (r *Room) handleMoveLocked(p *models.Player, m models.MoveTile) {
	state, ok := r.requireBoardLocked(p)
	if !ok {
		return
	}
	next := engine.MoveTile(state, m.TileID, *m.Row, *m.Col)
	if next.Rejected {
		r.sendTo(p, protocol.NewActionRejected(next.LastAction))
		return
	}
	r.boards.Put(p.PlayerID, next)
	// A move only touches the actor's private board; nobody else's view changes.
	r.sendTo(p, protocol.NewGameSnapshot(next, r.boards.BagCount(), "move", p.SessionID.String()))
}

func (r *Room) handleTradeLocked(p *models.Player, m models.TradeTile) {
	state, ok := r.requireBoardLocked(p)
	if !ok {
		return
	}
	if r.boards.BagCount() <= 3 {
		r.sendTo(p, protocol.NewActionRejected("The bag is too low to trade."))
		return
	}
	next := engine.TradeTile(state, m.TileID, r.rng)
	if next.Rejected {
		r.sendTo(p, protocol.NewActionRejected(next.LastAction))
		return
	}
	r.boards.Put(p.PlayerID, next)
	count := r.boards.SyncBagCount(p.PlayerID, r.rng)
	r.log.Debugf("player %s traded, bag now %d", p.PlayerID, count)
	r.broadcastSnapshotsLocked("trade", p.SessionID.String())
}

func (r *Room) handleServeLocked(p *models.Player) {
	state, ok := r.requireBoardLocked(p)
	if !ok {
		return
	}
	if engine.HasStagingTiles(state) {
		r.sendTo(p, protocol.NewActionRejected("You must place all tray tiles before serving a new plate."))
		return
	}

	next := engine.ServePlate(state)
	if next.Status == engine.StatusWon {
		r.finalizeWinLocked(p, next)
		return
	}
	r.boards.Put(p.PlayerID, next)
	count := r.boards.SyncBagCount(p.PlayerID, r.rng)
	r.log.Debugf("player %s served, bag now %d", p.PlayerID, count)
	r.broadcastSnapshotsLocked("serve", p.SessionID.String())
}

// finalizeWinLocked settles a validated win. Flipping the phase back to
// lobby is the first step, which makes a duplicate win trigger for the same
// round impossible: any concurrent serve fails the phase check.
func (r *Room) finalizeWinLocked(winner *models.Player, winningState engine.GameState) {
	r.Phase = PhaseLobby

	if winner == nil {
		r.endRoundNoWinnerLocked("round ended with no winner")
		return
	}

	longest := engine.LongestRun(winningState)
	board := engine.BoardTiles(winningState)

	result := stats.MatchResult{
		RoomID:      r.ID,
		WinnerName:  winner.Name,
		LongestWord: longest,
		FinishedAt:  time.Now(),
	}
	for _, pid := range r.order {
		sid, ok := r.sessionByPlayer[pid]
		if !ok {
			continue
		}
		pl := r.players[sid]
		if pl == nil {
			continue
		}
		if _, played := r.boards.Get(pid); !played {
			continue
		}
		pl.GamesPlayed++
		pl.Ready = false
		result.Players = append(result.Players, stats.PlayerLine{
			PlayerID: pid,
			Name:     pl.Name,
			Winner:   pid == winner.PlayerID,
		})
	}
	winner.Wins++
	if len(longest) > len(winner.LongestWord) {
		winner.LongestWord = longest
	}

	r.LastWinnerName = winner.Name
	r.LastLongestWord = longest
	r.RoundsPlayed++
	r.boards.Clear()
	r.log.Infof("round won by %s, longest word %q", winner.Name, longest)

	r.broadcastLocked(protocol.NewGameFinished(winner.Name, longest, winner.SessionID.String(), board))
	r.broadcastRoomStateLocked()

	// Stats and history are best effort and must not block or break the
	// room. Capture send functions under the lock; the collaborator call
	// happens outside it.
	sends := r.connectedSendsLocked()
	store := r.statsStore
	pub := r.historyPub
	record := history.MatchRecord{
		RoomID:       r.ID,
		WinnerName:   winner.Name,
		LongestWord:  longest,
		PlayerCount:  len(result.Players),
		RoundsPlayed: r.RoundsPlayed,
		Timestamp:    time.Now().Unix(),
	}
	logEntry := r.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		pub.PublishMatch(ctx, record)
		if store == nil {
			return
		}
		snap, err := store.RecordMatch(ctx, result)
		if err != nil {
			logEntry.Warnf("stats collaborator failed to record match: %v", err)
			return
		}
		ev := protocol.NewStatsSnapshot(snap)
		for _, send := range sends {
			send(ev)
		}
	}()
}

// endRoundNoWinnerLocked degrades the round to a no-winner end rather than
// crashing: tear down boards, return to lobby, tell everyone why.
func (r *Room) endRoundNoWinnerLocked(reason string) {
	r.Phase = PhaseLobby
	r.boards.Clear()
	for _, pl := range r.players {
		pl.Ready = false
	}
	r.log.Infof("round torn down: %s", reason)
	r.broadcastLocked(protocol.NewRoomNotice(protocol.NoticeInfo, reason))
}

// removePlayerLocked erases every trace of a player: roster, join order,
// board, reservation and token state, and ownership if held.
func (r *Room) removePlayerLocked(p *models.Player) {
	delete(r.players, p.SessionID)
	delete(r.sessionByPlayer, p.PlayerID)
	for i, pid := range r.order {
		if pid == p.PlayerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.boards.Delete(p.PlayerID)
	r.seats.Forget(p.PlayerID)
	p.Send = nil

	r.ensureOwnerLocked()
	if r.Phase == PhasePlaying && r.connectedCountLocked() < 2 {
		r.endRoundNoWinnerLocked("round ended: not enough connected players")
	}
}

// ensureOwnerLocked keeps ownership on a connected player: first remaining
// connected player in join order, or cleared when none are connected.
func (r *Room) ensureOwnerLocked() {
	if own, ok := r.players[r.OwnerSessionID]; ok && own.Connected {
		return
	}
	r.OwnerSessionID = uuid.Nil
	for _, pid := range r.order {
		if sid, ok := r.sessionByPlayer[pid]; ok {
			if pl := r.players[sid]; pl != nil && pl.Connected {
				r.OwnerSessionID = sid
				return
			}
		}
	}
}

// runSweep periodically expires lapsed reservations. Expiry is re-evaluated
// against the wall clock on every tick rather than scheduled as one-shot
// callbacks, so it tolerates timer drift.
func (r *Room) runSweep(interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.sweepStop:
			return
		case <-ticker.C:
			r.sweepOnce(time.Now())
		}
	}
}

// sweepOnce removes players whose reservations expired while they stayed
// disconnected. The clock is a parameter so tests can drive it.
func (r *Room) sweepOnce(now time.Time) {
	r.Mu.Lock()
	expired := r.seats.Expired(now)
	removed := []string{}
	for _, pid := range expired {
		sid, ok := r.sessionByPlayer[pid]
		if !ok {
			r.seats.Forget(pid)
			continue
		}
		p := r.players[sid]
		if p == nil || p.Connected {
			// Reclaimed between expiry and sweep; reservation is gone already.
			r.seats.Forget(pid)
			continue
		}
		removed = append(removed, p.Name)
		r.removePlayerLocked(p)
		r.log.Infof("reservation expired, removed player %s", pid)
	}
	if len(removed) > 0 {
		r.broadcastRoomStateLocked()
		for _, name := range removed {
			r.broadcastLocked(protocol.NewRoomNotice(protocol.NoticeInfo, fmt.Sprintf("%s's seat expired", name)))
		}
	}
	empty := r.emptyLocked()
	r.Mu.Unlock()

	if empty {
		r.dispose()
	}
}

// emptyLocked reports whether the room can be disposed.
func (r *Room) emptyLocked() bool {
	return len(r.players) == 0 && r.seats.ReservedCount() == 0
}

func (r *Room) dispose() {
	r.Close()
	if r.OnEmpty != nil {
		r.OnEmpty(r.ID)
	}
}

// sanitizeName applies the same display-name rules as the set_name message:
// blank collapses to empty (the caller assigns a default) and overlong names
// are truncated rather than rejected, since a join is already committed.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > models.MaxNameLength {
		name = name[:models.MaxNameLength]
	}
	return name
}

func (r *Room) connectedCountLocked() int {
	n := 0
	for _, p := range r.players {
		if p.Connected {
			n++
		}
	}
	return n
}

// connectedSendsLocked snapshots the send functions of connected players so
// async work can fan out without re-taking the room lock.
func (r *Room) connectedSendsLocked() []func(v interface{}) {
	sends := make([]func(v interface{}), 0, len(r.players))
	for _, p := range r.players {
		if p.Connected && p.Send != nil {
			sends = append(sends, p.Send)
		}
	}
	return sends
}

func (r *Room) roundConfigLocked() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Rows = r.cfg.Rows
	cfg.Cols = r.cfg.Cols
	cfg.InitialVisibleTiles = r.cfg.InitialVisibleTiles
	cfg.Players = r.activeRoundPlayers
	return cfg
}

// firstBoardOwnerLocked returns any current board owner, for count syncing
// when a late joiner arrives.
func (r *Room) firstBoardOwnerLocked() uuid.UUID {
	for _, pid := range r.order {
		if _, ok := r.boards.Get(pid); ok {
			return pid
		}
	}
	return uuid.Nil
}

// broadcastSnapshotsLocked sends each connected player their own private
// board view; other players' tiles are never included.
func (r *Room) broadcastSnapshotsLocked(reason, actorSessionID string) {
	count := r.boards.BagCount()
	for _, p := range r.players {
		if !p.Connected {
			continue
		}
		state, ok := r.boards.Get(p.PlayerID)
		if !ok {
			continue
		}
		r.sendTo(p, protocol.NewGameSnapshot(state, count, reason, actorSessionID))
	}
}

func (r *Room) broadcastLocked(ev interface{}) {
	for _, p := range r.players {
		r.sendTo(p, ev)
	}
}

func (r *Room) sendTo(p *models.Player, ev interface{}) {
	if p != nil && p.Connected && p.Send != nil {
		p.Send(ev)
	}
}

func (r *Room) broadcastRoomStateLocked() {
	for _, p := range r.players {
		if p.Connected {
			r.sendTo(p, r.roomStateLocked(p.SessionID))
		}
	}
}

func (r *Room) roomStateLocked(forSession uuid.UUID) protocol.RoomState {
	st := protocol.RoomState{
		Type:            "room_state",
		RoomID:          r.ID.String(),
		Phase:           string(r.Phase),
		YourSessionID:   forSession.String(),
		LastWinnerName:  r.LastWinnerName,
		LastLongestWord: r.LastLongestWord,
		RoundsPlayed:    r.RoundsPlayed,
	}
	for _, pid := range r.order {
		sid, ok := r.sessionByPlayer[pid]
		if !ok {
			continue
		}
		p := r.players[sid]
		if p == nil {
			continue
		}
		st.Players = append(st.Players, protocol.RosterEntry{
			SessionID: sid.String(),
			Name:      p.Name,
			Connected: p.Connected,
			Ready:     p.Ready,
			IsOwner:   sid == r.OwnerSessionID,
			Wins:      p.Wins,
		})
	}
	return st
}
