package handlers

// Custom WebSocket close codes used by the room handler. These give clients
// more specific closure reasons than the standard codes.
const (
	BadSubprotocolError  = 3000 // Client connected with an unsupported subprotocol.
	InvalidRoomIDError   = 3003 // Room ID in the WS URL is malformed or names no live room.
	InvalidPasscodeError = 3004 // Room requires a passcode and the presented one did not verify.
)
