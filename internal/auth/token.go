// Package auth mints and verifies the opaque tokens used by the seat
// reservation protocol, plus room passcode hashing.
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// privateKey and publicKey sign and verify seat tokens.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
)

// Init generates a fresh ed25519 key pair at runtime. Tokens do not survive a
// process restart, which matches the rooms they resume: room state is not
// persisted either.
func Init() {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		fmt.Printf("failed to generate ed25519 key pair: %v\n", err)
		os.Exit(1)
	}
}

// InitFromPath reads an ed25519 key pair from files instead of generating one.
func InitFromPath(privatePath, publicPath string) error {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return fmt.Errorf("failed to read public key file: %w", err)
	}
	privateKey = ed25519.PrivateKey(privateKeyData)
	publicKey = ed25519.PublicKey(publicKeyData)
	return nil
}

// CreateSeatToken signs a resume token binding a durable player identity to a
// room. The token carries no exp claim: expiry is owned by the room's
// reservation sweep, which judges wall-clock time itself. The signature only
// makes tokens unguessable and self-describing; the reservation registry
// remains the sole authority on whether a token is redeemable.
func CreateSeatToken(playerID, roomID uuid.UUID) (string, error) {
	// jti makes every mint unique, so re-reserving a forgotten seat yields a
	// token the old one cannot impersonate.
	claims := jwt.MapClaims{
		"sub":  playerID.String(),
		"room": roomID.String(),
		"jti":  uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// ParseSeatToken verifies a seat token and returns its player and room ids.
func ParseSeatToken(tokenString string) (playerID, roomID uuid.UUID, err error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("seat token parse error: %w", err)
	}
	if !t.Valid {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid seat token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid seat token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("missing sub in seat token")
	}
	room, ok := claims["room"].(string)
	if !ok {
		return uuid.Nil, uuid.Nil, fmt.Errorf("missing room in seat token")
	}

	playerID, err = uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("malformed player id in seat token: %w", err)
	}
	roomID, err = uuid.Parse(room)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("malformed room id in seat token: %w", err)
	}
	return playerID, roomID, nil
}
