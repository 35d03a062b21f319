// Inbound client messages. Each message kind is a tagged variant with an
// explicit schema; payloads that fail to decode or validate are rejected,
// never coerced.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message is an inbound client message after decoding and validation.
type Message interface {
	// Kind returns the wire-level type tag.
	Kind() string
}

// Envelope is the wire shape of every inbound message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	MsgSetName          = "set_name"
	MsgSetReady         = "set_ready"
	MsgStartGame        = "start_game"
	MsgRequestSeatToken = "request_seat_token"
	MsgMoveTile         = "action_move_tile"
	MsgTradeTile        = "action_trade_tile"
	MsgServePlate       = "action_serve_plate"
	MsgChat             = "chat"
	MsgPing             = "ping"
)

// MaxNameLength bounds display names; longer names are rejected, not trimmed.
const MaxNameLength = 32

// SetName updates the player's display name.
type SetName struct {
	Name string `json:"name"`
}

func (SetName) Kind() string { return MsgSetName }

func (m SetName) validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(m.Name) > MaxNameLength {
		return fmt.Errorf("name exceeds %d characters", MaxNameLength)
	}
	return nil
}

// SetReady toggles the player's lobby ready flag.
type SetReady struct {
	Ready bool `json:"ready"`
}

func (SetReady) Kind() string { return MsgSetReady }

// StartGame asks the room to begin a round. Owner only.
type StartGame struct{}

func (StartGame) Kind() string { return MsgStartGame }

// RequestSeatToken asks for a resume token for the current seat.
type RequestSeatToken struct{}

func (RequestSeatToken) Kind() string { return MsgRequestSeatToken }

// MoveTile places a tile on the board. Row and Col are pointers so a missing
// coordinate is distinguishable from zero and rejected.
type MoveTile struct {
	TileID string `json:"tileId"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

func (MoveTile) Kind() string { return MsgMoveTile }

func (m MoveTile) validate() error {
	if m.TileID == "" {
		return fmt.Errorf("tileId is required")
	}
	if m.Row == nil || m.Col == nil {
		return fmt.Errorf("row and col are required")
	}
	return nil
}

// TradeTile swaps one tile for three fresh draws.
type TradeTile struct {
	TileID string `json:"tileId"`
}

func (TradeTile) Kind() string { return MsgTradeTile }

func (m TradeTile) validate() error {
	if m.TileID == "" {
		return fmt.Errorf("tileId is required")
	}
	return nil
}

// ServePlate commits the current staging contents and ends the turn.
type ServePlate struct{}

func (ServePlate) Kind() string { return MsgServePlate }

// Chat is a room-wide text message.
type Chat struct {
	Text string `json:"text"`
}

func (Chat) Kind() string { return MsgChat }

func (m Chat) validate() error {
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("text is required")
	}
	if len(m.Text) > 500 {
		return fmt.Errorf("message too long")
	}
	return nil
}

// Ping is a keepalive; the server answers with a pong event.
type Ping struct{}

func (Ping) Kind() string { return MsgPing }

// Decode parses a raw inbound frame into its typed variant, validating the
// payload. Unknown types and malformed payloads return an error the caller
// surfaces to the acting client only.
func Decode(raw []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("missing message type")
	}

	data := env.Data
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	switch env.Type {
	case MsgSetName:
		var m SetName
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		return m, nil
	case MsgSetReady:
		var m SetReady
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		return m, nil
	case MsgStartGame:
		return StartGame{}, nil
	case MsgRequestSeatToken:
		return RequestSeatToken{}, nil
	case MsgMoveTile:
		var m MoveTile
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		return m, nil
	case MsgTradeTile:
		var m TradeTile
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		return m, nil
	case MsgServePlate:
		return ServePlate{}, nil
	case MsgChat:
		var m Chat
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", env.Type, err)
		}
		return m, nil
	case MsgPing:
		return Ping{}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", env.Type)
	}
}
