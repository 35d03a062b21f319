// Package config reads server tunables from the environment, once, as plain
// values. A .env file is loaded by the entrypoint via godotenv.
package config

import (
	"os"
	"strconv"
)

// RoomConfig holds the per-room tunables, read at room creation.
type RoomConfig struct {
	Rows                int
	Cols                int
	InitialVisibleTiles int
	ReservationSeconds  int
	SweepIntervalSec    int
}

// RoomFromEnv builds a RoomConfig from the environment with defaults matching
// the standard game.
func RoomFromEnv() RoomConfig {
	return RoomConfig{
		Rows:                GetEnvInt("BOARD_ROWS", 12),
		Cols:                GetEnvInt("BOARD_COLS", 12),
		InitialVisibleTiles: GetEnvInt("INITIAL_VISIBLE_TILES", 21),
		ReservationSeconds:  GetEnvInt("RESERVATION_SECONDS", 300),
		SweepIntervalSec:    GetEnvInt("SEAT_SWEEP_INTERVAL_SECONDS", 10),
	}
}

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses an environment variable as an integer, else a default.
func GetEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
