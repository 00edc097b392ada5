package game

import "log/slog"

// handleDeclareBombom registers the active player's showdown declaration.
// Only one live declaration per round; declaring ends the turn, and when
// control returns to the declarer their turn becomes the ShowTime decision.
func (s *Session) handleDeclareBombom(playerIdx int) {
	if s.Phase != PhaseTurn || playerIdx != s.ActiveIdx {
		s.sendError(playerIdx, "You can only declare Bombom on your own turn.")
		return
	}
	if s.PendingDraw != nil || s.Power.Kind != PowerNone || s.Penalty != nil {
		s.sendError(playerIdx, "You cannot declare Bombom right now.")
		return
	}
	if s.BombomDeclaredBy >= 0 {
		s.sendError(playerIdx, "Bombom has already been declared this round.")
		return
	}
	s.BombomDeclaredBy = playerIdx
	s.Players[playerIdx].BombomDeclared = true
	slog.Info("bombom declared", "tag", "game", "session", s.ID, "player", s.Players[playerIdx].Name)
	s.broadcastEvent(BombomDeclaredMsg{Type: "bombom_declared", PlayerIdx: playerIdx})
	s.endTurn()
}

// handleCancelBombom spends the declarer's single lifetime cancellation and
// resumes a normal turn with the decision window's remaining time.
func (s *Session) handleCancelBombom(playerIdx int) {
	if s.Phase != PhaseShowTimeDecision || playerIdx != s.ActiveIdx {
		s.sendError(playerIdx, "There is no Bombom decision pending for you.")
		return
	}
	p := s.Players[playerIdx]
	if p.BombomCancelUsed {
		s.sendError(playerIdx, "You have already used your only cancellation. ShowTime is mandatory.")
		return
	}
	p.BombomCancelUsed = true
	p.BombomDeclared = false
	s.BombomDeclaredBy = -1
	s.bombomCancelledThisRound = true
	s.Phase = PhaseTurn
	slog.Info("bombom cancelled", "tag", "game", "session", s.ID, "player", p.Name)
	s.broadcastEvent(BombomCancelledMsg{Type: "bombom_cancelled", PlayerIdx: playerIdx})
	s.broadcastState()
}

// handleConfirmShowTime triggers the showdown from the decision window.
func (s *Session) handleConfirmShowTime(playerIdx int) {
	if s.Phase != PhaseShowTimeDecision || playerIdx != s.ActiveIdx {
		s.sendError(playerIdx, "There is no ShowTime decision pending for you.")
		return
	}
	s.showTime()
}
