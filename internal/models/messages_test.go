package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMoveTile(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"action_move_tile","data":{"tileId":"t3","row":2,"col":5}}`))
	require.NoError(t, err)

	mv, ok := msg.(MoveTile)
	require.True(t, ok)
	assert.Equal(t, "t3", mv.TileID)
	assert.Equal(t, 2, *mv.Row)
	assert.Equal(t, 5, *mv.Col)
}

func TestDecodeMoveTileMissingCoordinates(t *testing.T) {
	_, err := Decode([]byte(`{"type":"action_move_tile","data":{"tileId":"t3","row":2}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":"action_move_tile","data":{"row":1,"col":1}}`))
	assert.Error(t, err)
}

func TestDecodeRejectsTypeMismatch(t *testing.T) {
	// A string row must be rejected, not coerced.
	_, err := Decode([]byte(`{"type":"action_move_tile","data":{"tileId":"t1","row":"2","col":3}}`))
	assert.Error(t, err)
}

func TestDecodeSetName(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"set_name","data":{"name":"Ada"}}`))
	require.NoError(t, err)
	assert.Equal(t, SetName{Name: "Ada"}, msg)

	_, err = Decode([]byte(`{"type":"set_name","data":{"name":"   "}}`))
	assert.Error(t, err)
}

func TestDecodeEmptyPayloadVariants(t *testing.T) {
	for _, typ := range []string{MsgStartGame, MsgRequestSeatToken, MsgServePlate, MsgPing} {
		msg, err := Decode([]byte(`{"type":"` + typ + `"}`))
		require.NoError(t, err, typ)
		assert.Equal(t, typ, msg.Kind())
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"action_teleport"}`))
	assert.Error(t, err)
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{}`))
	assert.Error(t, err)
}
