package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/tilerush/tilerush/internal/room"
)

// wsEnvelope is the minimal outbound frame shape the tests care about.
type wsEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func dialRoom(t *testing.T, ctx context.Context, srvURL string, rm *room.Room) *websocket.Conn {
	t.Helper()
	url := strings.Replace(srvURL, "http", "ws", 1) + "/rooms/ws/" + rm.ID.String() + "?name=Alice"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		Subprotocols: []string{Subprotocol},
	})
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	return c
}

// readUntilType drains frames until one matches the wanted type or the
// context expires.
func readUntilType(t *testing.T, ctx context.Context, c *websocket.Conn, want string) wsEnvelope {
	t.Helper()
	for {
		_, raw, err := c.Read(ctx)
		if err != nil {
			t.Fatalf("no %q frame arrived: %v", want, err)
		}
		var env wsEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("unparseable frame %s: %v", raw, err)
		}
		if env.Type == want {
			return env
		}
	}
}

func TestMalformedActionGetsRejected(t *testing.T) {
	s := newTestServer()
	rm := room.New("ws test", "", s.RoomCfg, s.Stats, nil, s.Logger)
	s.Rooms.Add(rm)

	srv := httptest.NewServer(RoomWSHandler(s))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialRoom(t, ctx, srv.URL, rm)
	defer c.Close(websocket.StatusNormalClosure, "")

	// A move with no col fails payload validation; the sender must hear why.
	bad := `{"type":"action_move_tile","data":{"tileId":"t1","row":2}}`
	if err := c.Write(ctx, websocket.MessageText, []byte(bad)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	env := readUntilType(t, ctx, c, "action_rejected")
	if !strings.Contains(env.Message, "row and col") {
		t.Fatalf("rejection should name the missing fields, got %q", env.Message)
	}
}

func TestUnknownMessageTypeGetsRejected(t *testing.T) {
	s := newTestServer()
	rm := room.New("ws test", "", s.RoomCfg, s.Stats, nil, s.Logger)
	s.Rooms.Add(rm)

	srv := httptest.NewServer(RoomWSHandler(s))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := dialRoom(t, ctx, srv.URL, rm)
	defer c.Close(websocket.StatusNormalClosure, "")

	if err := c.Write(ctx, websocket.MessageText, []byte(`{"type":"cast_fireball"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	env := readUntilType(t, ctx, c, "action_rejected")
	if !strings.Contains(env.Message, "unknown message type") {
		t.Fatalf("rejection should name the unknown type, got %q", env.Message)
	}
}
