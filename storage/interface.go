package storage

import "context"

// HistoryStore is the persistence surface the HTTP API reads from.
type HistoryStore interface {
	ListByUserID(ctx context.Context, userID string) ([]MatchRecord, error)
	ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error)
	GetLeaderboardEntryByUserID(ctx context.Context, userID string) (*LeaderboardEntry, error)
}
