package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tilerush/tilerush/internal/auth"
	"github.com/tilerush/tilerush/internal/models"
	"github.com/tilerush/tilerush/internal/protocol"
	"github.com/tilerush/tilerush/internal/room"
)

// Subprotocol clients must speak on the room socket.
const Subprotocol = "tilerush"

// outChanSize bounds how many undelivered events a slow client may queue
// before the server starts dropping for it.
const outChanSize = 32

// RoomWSHandler upgrades /rooms/ws/{room_id} connections and runs the
// read/write pumps for one seat. Query parameters:
//
//	name     display name for a fresh seat (optional)
//	seat     resume token to reclaim a reserved seat (optional)
//	passcode plaintext passcode for protected rooms
func RoomWSHandler(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteAddr := r.RemoteAddr
		idStr := strings.TrimPrefix(r.URL.Path, "/rooms/ws/")
		if i := strings.IndexByte(idStr, '/'); i >= 0 {
			idStr = idStr[:i]
		}
		roomID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid room_id", http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			s.Logger.Warnf("websocket accept error from %s: %v", remoteAddr, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the tilerush subprotocol")
			return
		}

		rm, ok := s.Rooms.Get(roomID)
		if !ok {
			c.Close(InvalidRoomIDError, "room does not exist")
			return
		}

		query := r.URL.Query()
		if rm.RequiresPasscode() {
			match, err := auth.VerifyPasscode(query.Get("passcode"), rm.PasscodeHash())
			if err != nil || !match {
				c.Close(InvalidPasscodeError, "wrong passcode")
				return
			}
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan interface{}, outChanSize)
		send := func(v interface{}) {
			select {
			case out <- v:
			default:
				// The room lock is held here; never block on a slow client.
				s.Logger.Warnf("dropping event for slow client %s in room %s", remoteAddr, roomID)
			}
		}

		sessionID := rm.HandleJoin(query.Get("name"), query.Get("seat"), send)
		s.Logger.Infof("session %s (%s) connected to room %s", sessionID, remoteAddr, roomID)

		go writePump(ctx, c, out, s.Logger)

		graceful := readPump(ctx, c, rm, sessionID, send, s.Logger)
		cancel()

		if graceful {
			rm.HandleLeave(sessionID)
		} else {
			rm.HandleDisconnect(sessionID)
		}
		s.Logger.Infof("session %s left room %s (graceful=%v)", sessionID, roomID, graceful)
	}
}

// writePump drains the out channel onto the socket until the context ends.
func writePump(ctx context.Context, c *websocket.Conn, out <-chan interface{}, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-out:
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Errorf("failed to marshal outbound event: %v", err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound messages until the socket closes. The return
// value reports whether the closure was graceful: a normal or going-away
// close frame means the client meant to leave and forfeits its seat
// reservation, anything else is treated as a drop worth reserving for.
func readPump(ctx context.Context, c *websocket.Conn, rm *room.Room, sessionID uuid.UUID, send func(v interface{}), logger *logrus.Logger) bool {
	for {
		typ, raw, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return true
			}
			if !strings.Contains(err.Error(), "context canceled") {
				logger.Infof("session %s read error: %v (status %d)", sessionID, err, status)
			}
			return false
		}
		if typ != websocket.MessageText {
			continue
		}

		msg, err := models.Decode(raw)
		if err != nil {
			// Malformed actions are rejected back to the sender, never
			// silently dropped.
			logger.Debugf("session %s sent a bad message: %v", sessionID, err)
			send(protocol.NewActionRejected(err.Error()))
			continue
		}
		rm.HandleMessage(sessionID, msg)
	}
}
