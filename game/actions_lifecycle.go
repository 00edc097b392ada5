package game

import (
	"log/slog"
	"time"
)

// handleQuit ends the session immediately: the opponent wins by forfeit and
// no partial scoring is computed.
func (s *Session) handleQuit(playerIdx int) {
	opponentIdx := 1 - playerIdx
	slog.Info("player quit", "tag", "game", "session", s.ID, "player", s.Players[playerIdx].Name)
	s.broadcastEvent(PlayerQuitMsg{Type: "player_quit", PlayerIdx: playerIdx})
	s.endSession(opponentIdx, EndReasonForfeit)
}

// handlePlayerDisconnected opens a reconnection window. Every countdown is
// frozen (the penalty one included) so the absent player loses nothing but
// wall-clock time.
func (s *Session) handlePlayerDisconnected(playerIdx int) {
	if s.DisconnectedIdx >= 0 {
		return
	}
	s.DisconnectedIdx = playerIdx
	s.freezeAll()
	s.penaltyTimer.Freeze()

	timeoutSec := s.Config.ReconnectTimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 120
	}
	s.ReconnectDeadline = time.Now().Add(time.Duration(timeoutSec) * time.Second)
	s.reconnectTimer.Start(time.Duration(timeoutSec) * time.Second)

	s.sendEvent(1-playerIdx, OpponentReconnectingMsg{
		Type:           "opponent_reconnecting",
		DeadlineUnixMs: s.ReconnectDeadline.UnixMilli(),
	})
}

// handleReconnectTimeout forfeits the session against the absent player.
func (s *Session) handleReconnectTimeout() {
	idx := s.DisconnectedIdx
	if idx < 0 {
		return
	}
	s.DisconnectedIdx = -1
	s.endSession(1-idx, EndReasonDisconnected)
	s.sendEvent(1-idx, PlayerQuitMsg{Type: "player_quit", PlayerIdx: idx})
}

// handleRejoinCompleted restores the rejoined player's send channel and
// resumes every frozen countdown where it left off.
func (s *Session) handleRejoinCompleted(playerIdx int, newSend chan []byte) {
	if s.DisconnectedIdx != playerIdx {
		return
	}
	s.reconnectTimer.Stop()
	s.DisconnectedIdx = -1
	if playerIdx >= 0 && playerIdx <= 1 && newSend != nil {
		s.Players[playerIdx].Send = newSend
	}
	s.resumeAll()
	s.penaltyTimer.Resume()
	s.sendEvent(1-playerIdx, OpponentReconnectedMsg{Type: "opponent_reconnected"})
	s.broadcastState()
}
