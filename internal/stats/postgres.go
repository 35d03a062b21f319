package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists match results to postgres.
//
// Expected schema:
//
//	CREATE TABLE matches (
//	    id bigserial PRIMARY KEY,
//	    room_id uuid NOT NULL,
//	    winner_name text NOT NULL,
//	    longest_word text NOT NULL,
//	    finished_at timestamptz NOT NULL
//	);
//	CREATE TABLE match_players (
//	    match_id bigint REFERENCES matches(id),
//	    player_id uuid NOT NULL,
//	    name text NOT NULL,
//	    winner boolean NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool against the given DSN and pings it.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("stats database unreachable: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) RecordMatch(ctx context.Context, result MatchResult) (Snapshot, error) {
	finishedAt := result.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = time.Now()
	}

	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var matchID int64
		insertMatch := `
			INSERT INTO matches (room_id, winner_name, longest_word, finished_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, insertMatch, result.RoomID, result.WinnerName, result.LongestWord, finishedAt).Scan(&matchID); err != nil {
			return err
		}

		insertPlayer := `
			INSERT INTO match_players (match_id, player_id, name, winner)
			VALUES ($1, $2, $3, $4)
		`
		for _, pl := range result.Players {
			if _, err := tx.Exec(ctx, insertPlayer, matchID, pl.PlayerID, pl.Name, pl.Winner); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("record match: %w", err)
	}
	return s.GetSnapshot(ctx)
}

func (s *PostgresStore) GetSnapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{UpdatedAt: time.Now()}

	summary := `
		SELECT count(*),
		       coalesce((SELECT longest_word FROM matches ORDER BY length(longest_word) DESC, finished_at ASC LIMIT 1), '')
		FROM matches
	`
	if err := s.pool.QueryRow(ctx, summary).Scan(&snap.TotalMatches, &snap.LongestWordEver); err != nil {
		return Snapshot{}, fmt.Errorf("stats summary: %w", err)
	}

	leadersQ := `
		SELECT winner_name, count(*) AS wins
		FROM matches
		GROUP BY winner_name
		ORDER BY wins DESC, winner_name ASC
		LIMIT 10
	`
	rows, err := s.pool.Query(ctx, leadersQ)
	if err != nil {
		return Snapshot{}, fmt.Errorf("stats leaders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line LeaderLine
		if err := rows.Scan(&line.Name, &line.Wins); err != nil {
			return Snapshot{}, fmt.Errorf("stats leaders scan: %w", err)
		}
		snap.Leaders = append(snap.Leaders, line)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("stats leaders rows: %w", err)
	}
	return snap, nil
}
