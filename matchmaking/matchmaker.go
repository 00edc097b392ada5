package matchmaking

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"bombom-game-server/config"
	"bombom-game-server/game"
	"bombom-game-server/matcherrors"
	"bombom-game-server/storage"
	"bombom-game-server/ws"
	"github.com/google/uuid"
)

const persistTimeout = 5 * time.Second

type sessionEntry struct {
	sess   *game.Session
	rounds int
}

// Matchmaker pairs queued players into sessions and tracks running sessions
// for rejoin.
type Matchmaker struct {
	queue  chan *ws.Client
	config *config.Config
	store  *storage.Store

	mu       sync.Mutex
	left     map[*ws.Client]bool
	sessions map[string]*sessionEntry
}

// NewMatchmaker creates a new Matchmaker. store may be nil; sessions then run
// without persistence.
func NewMatchmaker(cfg *config.Config, store *storage.Store) *Matchmaker {
	return &Matchmaker{
		queue:    make(chan *ws.Client, 100),
		config:   cfg,
		store:    store,
		left:     make(map[*ws.Client]bool),
		sessions: make(map[string]*sessionEntry),
	}
}

// Enqueue adds a client to the matchmaking queue.
func (m *Matchmaker) Enqueue(c *ws.Client) {
	m.mu.Lock()
	delete(m.left, c)
	m.mu.Unlock()
	m.queue <- c
}

// LeaveQueue marks a queued client as gone so Run skips it when pairing.
func (m *Matchmaker) LeaveQueue(c *ws.Client) {
	m.mu.Lock()
	m.left[c] = true
	m.mu.Unlock()
}

func (m *Matchmaker) hasLeft(c *ws.Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.left[c] {
		delete(m.left, c)
		return true
	}
	return false
}

// Run is the matchmaker's main loop. It blocks reading pairs of clients from
// the queue and creates sessions for them. Should be run as a goroutine.
func (m *Matchmaker) Run() {
	var waiting *ws.Client
	for c := range m.queue {
		if m.hasLeft(c) {
			continue
		}
		if waiting == nil || m.hasLeft(waiting) {
			waiting = c
			continue
		}
		m.createSession(waiting, c)
		waiting = nil
	}
}

func (m *Matchmaker) createSession(client1, client2 *ws.Client) {
	sessionID := uuid.NewString()

	p0 := game.NewPlayer(client1.Name, client1.Send)
	p1 := game.NewPlayer(client2.Name, client2.Send)

	s := game.NewSession(sessionID, m.config, p0, p1)
	s.RejoinTokens = [2]string{uuid.NewString(), uuid.NewString()}
	s.PlayerUserIDs = [2]string{client1.UserID, client2.UserID}
	s.OnRoundEnd = m.onRoundEnd
	s.OnSessionEnd = m.onSessionEnd

	client1.Session = s
	client1.PlayerID = 0
	client2.Session = s
	client2.PlayerID = 1

	m.mu.Lock()
	m.sessions[sessionID] = &sessionEntry{sess: s}
	m.mu.Unlock()

	slog.Info("match created", "tag", "matchmaking",
		"session", sessionID, "player0", client1.Name, "player1", client2.Name)

	m.sendMatchFound(client1, client2, s)
	m.sendMatchFound(client2, client1, s)

	go s.Run()
}

func (m *Matchmaker) sendMatchFound(client, opponent *ws.Client, s *game.Session) {
	msg := ws.MatchFoundMsg{
		Type:           "match_found",
		SessionID:      s.ID,
		RejoinToken:    s.RejoinTokens[client.PlayerID],
		YourIndex:      client.PlayerID,
		OpponentName:   opponent.Name,
		OpponentUserID: opponent.UserID,
		HandSize:       game.InitialHandSize,
		TurnLimitSec:   m.config.TurnLimitSec,
	}
	data, _ := json.Marshal(msg)
	safeSend(client.Send, data)
}

// Rejoin returns the session and seat for a valid rejoin token. The seat must
// currently be disconnected.
func (m *Matchmaker) Rejoin(sessionID, rejoinToken, name string) (*game.Session, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[sessionID]
	if !ok {
		return nil, 0, matcherrors.ErrSessionNotFound
	}
	s := entry.sess
	if s.Finished {
		return nil, 0, matcherrors.ErrSessionFinished
	}
	for i := 0; i < 2; i++ {
		if s.RejoinTokens[i] == rejoinToken && rejoinToken != "" {
			if s.DisconnectedIdx != i {
				return nil, 0, matcherrors.ErrNotDisconnected
			}
			if name != "" {
				s.Players[i].Name = name
			}
			return s, i, nil
		}
	}
	return nil, 0, matcherrors.ErrInvalidToken
}

// RejoinByUser finds the running session in which the authenticated user is
// the disconnected seat, returning the session, seat and rejoin token.
func (m *Matchmaker) RejoinByUser(userID string) (*game.Session, int, string, error) {
	if userID == "" {
		return nil, 0, "", matcherrors.ErrNoActiveSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.sessions {
		s := entry.sess
		if s.Finished {
			continue
		}
		for i := 0; i < 2; i++ {
			if s.PlayerUserIDs[i] == userID && s.DisconnectedIdx == i {
				return s, i, s.RejoinTokens[i], nil
			}
		}
	}
	return nil, 0, "", matcherrors.ErrNoActiveSession
}

func (m *Matchmaker) onRoundEnd(sessionID string, rec game.RoundRecord) {
	m.mu.Lock()
	if entry, ok := m.sessions[sessionID]; ok {
		entry.rounds++
	}
	m.mu.Unlock()

	if m.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		err := m.store.InsertRoundResult(ctx, sessionID, rec.Round,
			rec.Totals[0], rec.Totals[1], rec.WinnerIdx, rec.EndedBy,
			rec.BombomDeclaredBy, rec.BombomCancelled)
		if err != nil {
			slog.Error("persist round result failed", "tag", "matchmaking", "session", sessionID, "err", err)
		}
	}()
}

func (m *Matchmaker) onSessionEnd(sessionID string, userIDs [2]string, names [2]string, scores [2]int, winnerIdx int, endReason string) {
	m.mu.Lock()
	rounds := 0
	if entry, ok := m.sessions[sessionID]; ok {
		rounds = entry.rounds
	}
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	slog.Info("session ended", "tag", "matchmaking",
		"session", sessionID, "winner", winnerIdx, "reason", endReason)

	if m.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		var elo0Before, elo0After, elo1Before, elo1After *int
		// Ratings only move for completed matches between two
		// authenticated players.
		if endReason == game.EndReasonCompleted && userIDs[0] != "" && userIDs[1] != "" {
			b0, a0, b1, a1, err := m.store.UpdateRatingsAfterMatch(ctx,
				userIDs[0], userIDs[1], names[0], names[1], winnerIdx)
			if err != nil {
				slog.Error("rating update failed", "tag", "matchmaking", "session", sessionID, "err", err)
			} else {
				elo0Before, elo0After = &b0, &a0
				elo1Before, elo1After = &b1, &a1
			}
		}

		err := m.store.InsertMatchResult(ctx, sessionID,
			userIDs[0], userIDs[1], names[0], names[1],
			scores[0], scores[1], rounds, winnerIdx, endReason,
			elo0Before, elo0After, elo1Before, elo1After)
		if err != nil {
			slog.Error("persist match result failed", "tag", "matchmaking", "session", sessionID, "err", err)
		}
	}()
}

// safeSend sends data to a channel without panicking if the channel is closed.
func safeSend(ch chan []byte, data []byte) {
	defer func() {
		recover()
	}()
	select {
	case ch <- data:
	default:
	}
}
