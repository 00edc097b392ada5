package storage

import (
	"context"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	EloK       = 32
	InitialElo = 1000
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS match_history (
	id UUID PRIMARY KEY,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	player0_user_id TEXT NOT NULL,
	player1_user_id TEXT NOT NULL,
	player0_name TEXT NOT NULL,
	player1_name TEXT NOT NULL,
	player0_score INT NOT NULL,
	player1_score INT NOT NULL,
	rounds_played INT NOT NULL DEFAULT 0,
	winner_index SMALLINT,
	end_reason TEXT,
	player0_elo_before INT,
	player0_elo_after INT,
	player1_elo_before INT,
	player1_elo_after INT
);
CREATE INDEX IF NOT EXISTS idx_match_history_player0 ON match_history(player0_user_id);
CREATE INDEX IF NOT EXISTS idx_match_history_player1 ON match_history(player1_user_id);
CREATE TABLE IF NOT EXISTS round_result (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	match_id UUID NOT NULL,
	round_no INT NOT NULL,
	player0_total INT NOT NULL,
	player1_total INT NOT NULL,
	winner_index SMALLINT,
	ended_by TEXT NOT NULL,
	bombom_declared_by SMALLINT,
	bombom_cancelled BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_round_result_match_id ON round_result(match_id);
CREATE INDEX IF NOT EXISTS idx_round_result_match_round ON round_result(match_id, round_no);
CREATE TABLE IF NOT EXISTS player_ratings (
	user_id      TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	elo          INT  NOT NULL DEFAULT 1000,
	wins         INT  NOT NULL DEFAULT 0,
	losses       INT  NOT NULL DEFAULT 0,
	draws        INT  NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_player_ratings_elo ON player_ratings(elo DESC);
`

// Store persists and retrieves match history and ratings.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the schema exists. If
// databaseURL is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// computeEloUpdates returns new ratings (newR0, newR1) given current ratings
// and winnerIdx (0, 1, or -1 for draw).
func computeEloUpdates(r0, r1 int, winnerIdx int) (newR0, newR1 int) {
	var score0, score1 float64
	switch winnerIdx {
	case 0:
		score0, score1 = 1, 0
	case 1:
		score0, score1 = 0, 1
	default:
		score0, score1 = 0.5, 0.5
	}
	e0 := 1 / (1 + math.Pow(10, float64(r1-r0)/400))
	e1 := 1 - e0
	newR0 = r0 + int(math.Round(EloK*(score0-e0)))
	newR1 = r1 + int(math.Round(EloK*(score1-e1)))
	if newR0 < 0 {
		newR0 = 0
	}
	if newR1 < 0 {
		newR1 = 0
	}
	return newR0, newR1
}

// UpdateRatingsAfterMatch updates Elo and W/L/D for both players after a
// finished match. Returns each player's elo before and after so the caller
// can store them in match_history.
func (s *Store) UpdateRatingsAfterMatch(ctx context.Context, p0UserID, p1UserID, p0Name, p1Name string, winnerIdx int) (elo0Before, elo0After, elo1Before, elo1After int, err error) {
	if s == nil || s.pool == nil {
		return 0, 0, 0, 0, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	defer tx.Rollback(ctx)

	for _, uid := range []string{p0UserID, p1UserID} {
		_, _ = tx.Exec(ctx, `INSERT INTO player_ratings (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, uid)
	}

	var r0, w0, l0, d0, r1, w1, l1, d1 int
	err = tx.QueryRow(ctx, `SELECT elo, wins, losses, draws FROM player_ratings WHERE user_id = $1`, p0UserID).Scan(&r0, &w0, &l0, &d0)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	err = tx.QueryRow(ctx, `SELECT elo, wins, losses, draws FROM player_ratings WHERE user_id = $1`, p1UserID).Scan(&r1, &w1, &l1, &d1)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	elo0Before, elo1Before = r0, r1
	newR0, newR1 := computeEloUpdates(r0, r1, winnerIdx)
	elo0After, elo1After = newR0, newR1

	switch winnerIdx {
	case 0:
		w0++
		l1++
	case 1:
		l0++
		w1++
	default:
		d0++
		d1++
	}

	_, err = tx.Exec(ctx, `UPDATE player_ratings SET display_name = $1, elo = $2, wins = $3, losses = $4, draws = $5, updated_at = now() WHERE user_id = $6`,
		p0Name, newR0, w0, l0, d0, p0UserID)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	_, err = tx.Exec(ctx, `UPDATE player_ratings SET display_name = $1, elo = $2, wins = $3, losses = $4, draws = $5, updated_at = now() WHERE user_id = $6`,
		p1Name, newR1, w1, l1, d1, p1UserID)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, 0, 0, 0, err
	}
	return elo0Before, elo0After, elo1Before, elo1After, nil
}

// InsertMatchResult records a finished match. matchID is the session UUID.
// winnerIndex is 0 or 1, or -1 for a draw (stored as NULL). Elo columns are
// nil when ratings were not updated.
func (s *Store) InsertMatchResult(ctx context.Context, matchID, player0UserID, player1UserID, player0Name, player1Name string, player0Score, player1Score, roundsPlayed int, winnerIndex int, endReason string, elo0Before, elo0After, elo1Before, elo1After *int) error {
	if s == nil || s.pool == nil {
		return nil
	}
	var winner *int
	if winnerIndex >= 0 && winnerIndex <= 1 {
		winner = &winnerIndex
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO match_history (id, player0_user_id, player1_user_id, player0_name, player1_name, player0_score, player1_score, rounds_played, winner_index, end_reason, player0_elo_before, player0_elo_after, player1_elo_before, player1_elo_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		matchID, player0UserID, player1UserID, player0Name, player1Name, player0Score, player1Score, roundsPlayed, winner, endReason, elo0Before, elo0After, elo1Before, elo1After)
	return err
}

// InsertRoundResult records one scored round for telemetry and history.
// winnerIndex and bombomDeclaredBy use -1 for none (stored as NULL).
func (s *Store) InsertRoundResult(ctx context.Context, matchID string, roundNo, player0Total, player1Total, winnerIndex int, endedBy string, bombomDeclaredBy int, bombomCancelled bool) error {
	if s == nil || s.pool == nil {
		return nil
	}
	var winner, declarer *int
	if winnerIndex >= 0 && winnerIndex <= 1 {
		winner = &winnerIndex
	}
	if bombomDeclaredBy >= 0 && bombomDeclaredBy <= 1 {
		declarer = &bombomDeclaredBy
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO round_result (match_id, round_no, player0_total, player1_total, winner_index, ended_by, bombom_declared_by, bombom_cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		matchID, roundNo, player0Total, player1Total, winner, endedBy, declarer, bombomCancelled)
	return err
}

// MatchRecord is a single row returned for the history API.
type MatchRecord struct {
	ID               string `json:"id"`
	PlayedAt         string `json:"played_at"` // ISO8601
	Player0UserID    string `json:"player0_user_id"`
	Player1UserID    string `json:"player1_user_id"`
	Player0Name      string `json:"player0_name"`
	Player1Name      string `json:"player1_name"`
	Player0Score     int    `json:"player0_score"`
	Player1Score     int    `json:"player1_score"`
	RoundsPlayed     int    `json:"rounds_played"`
	WinnerIndex      *int   `json:"winner_index"` // 0 or 1, or null for draw
	EndReason        string `json:"end_reason"`
	YourIndex        *int   `json:"your_index"` // set by ListByUserID
	Player0EloBefore *int   `json:"player0_elo_before,omitempty"`
	Player0EloAfter  *int   `json:"player0_elo_after,omitempty"`
	Player1EloBefore *int   `json:"player1_elo_before,omitempty"`
	Player1EloAfter  *int   `json:"player1_elo_after,omitempty"`
}

// ListByUserID returns all matches where the user participated, ordered by
// played_at DESC. Each record has your_index set to 0 or 1 so the client
// can show "You" vs opponent.
func (s *Store) ListByUserID(ctx context.Context, userID string) ([]MatchRecord, error) {
	if s == nil || s.pool == nil {
		return []MatchRecord{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, to_char(played_at, 'YYYY-MM-DD"T"HH24:MI:SSOF'), player0_user_id, player1_user_id,
		       player0_name, player1_name, player0_score, player1_score, rounds_played,
		       winner_index, COALESCE(end_reason, ''),
		       player0_elo_before, player0_elo_after, player1_elo_before, player1_elo_after
		FROM match_history
		WHERE player0_user_id = $1 OR player1_user_id = $1
		ORDER BY played_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []MatchRecord{}
	for rows.Next() {
		var rec MatchRecord
		if err := rows.Scan(&rec.ID, &rec.PlayedAt, &rec.Player0UserID, &rec.Player1UserID,
			&rec.Player0Name, &rec.Player1Name, &rec.Player0Score, &rec.Player1Score, &rec.RoundsPlayed,
			&rec.WinnerIndex, &rec.EndReason,
			&rec.Player0EloBefore, &rec.Player0EloAfter, &rec.Player1EloBefore, &rec.Player1EloAfter); err != nil {
			return nil, err
		}
		idx := 0
		if rec.Player1UserID == userID {
			idx = 1
		}
		rec.YourIndex = &idx
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LeaderboardEntry is one row of the global leaderboard.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Elo           int    `json:"elo"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Draws         int    `json:"draws"`
	IsCurrentUser bool   `json:"is_current_user,omitempty"`
}

// ListLeaderboard returns the leaderboard ordered by elo DESC.
func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return []LeaderboardEntry{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, display_name, elo, wins, losses, draws
		FROM player_ratings
		ORDER BY elo DESC, updated_at ASC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	rank := offset
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Elo, &e.Wins, &e.Losses, &e.Draws); err != nil {
			return nil, err
		}
		rank++
		e.Rank = rank
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetLeaderboardEntryByUserID returns one user's leaderboard entry with its
// global rank, or nil when the user has no rating yet.
func (s *Store) GetLeaderboardEntryByUserID(ctx context.Context, userID string) (*LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	var e LeaderboardEntry
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, display_name, elo, wins, losses, draws,
		       (SELECT COUNT(*) + 1 FROM player_ratings pr2 WHERE pr2.elo > pr.elo) AS rank
		FROM player_ratings pr
		WHERE user_id = $1`, userID).
		Scan(&e.UserID, &e.DisplayName, &e.Elo, &e.Wins, &e.Losses, &e.Draws, &e.Rank)
	if err != nil {
		return nil, nil
	}
	return &e, nil
}
