package game

import (
	"log/slog"
	"time"
)

// handleQuickMatch attempts to discard one of the acting player's occupied
// slots against the top of the discard pile. Available to either player,
// active or not, once the memorization phase has ended, as long as no
// pending draw, power or penalty blocks the table.
func (s *Session) handleQuickMatch(playerIdx, slotIdx int) {
	if !s.QuickMatchEnabled || (s.Phase != PhaseTurn && s.Phase != PhaseShowTimeDecision) {
		s.sendError(playerIdx, "Quick-match is not available right now.")
		return
	}
	if s.PendingDraw != nil || s.Power.Kind != PowerNone {
		s.sendError(playerIdx, "Quick-match is blocked while a draw or power is pending.")
		return
	}
	if s.Penalty != nil {
		s.sendError(playerIdx, "A penalty is in progress.")
		return
	}
	top, ok := s.Deck.PeekDiscardTop()
	if !ok {
		s.sendError(playerIdx, "There is no discard to match yet.")
		return
	}
	hand := s.Players[playerIdx].Hand
	if !hand.Occupied(slotIdx) {
		s.sendError(playerIdx, "That slot is not occupied.")
		return
	}

	clicked := hand.Slots[slotIdx].Card
	if clicked.Matches(top) {
		card := hand.Take(slotIdx)
		s.Deck.DiscardTop(card)
		s.broadcastEvent(QuickMatchMsg{
			Type:      "quick_match",
			PlayerIdx: playerIdx,
			SlotIdx:   slotIdx,
			Card:      NewCardView(card),
			Matched:   true,
		})
		if s.checkEmptyHandWin(playerIdx) {
			return
		}
		s.broadcastState()
		return
	}

	s.startPenalty(playerIdx, slotIdx)
}

// startPenalty locks the offending player into the penalty overlay: the
// clicked slot is forced face-down, the configured number of cards is drawn
// and appended to their hand face-down, and every gameplay countdown is
// frozen for the penalty window.
func (s *Session) startPenalty(playerIdx, slotIdx int) {
	hand := s.Players[playerIdx].Hand
	hand.SetFaceUp(slotIdx, false)

	cards, err := s.Deck.Deal(s.Config.PenaltyDrawCount)
	if err != nil {
		s.abortRound(err)
		return
	}
	hand.Append(cards...)

	d := time.Duration(s.Config.PenaltyDurationMS) * time.Millisecond
	s.Penalty = &PenaltyState{PlayerIdx: playerIdx, Until: time.Now().Add(d)}
	s.freezeAll()
	s.penaltyTimer.Start(d)

	slog.Info("quick-match penalty", "tag", "game", "session", s.ID,
		"player", s.Players[playerIdx].Name, "cards", len(cards))
	s.broadcastEvent(PenaltyStartedMsg{
		Type:       "penalty_started",
		PlayerIdx:  playerIdx,
		DurationMS: s.Config.PenaltyDurationMS,
		CardsDrawn: len(cards),
	})
	s.broadcastState()
}

// endPenalty lifts the overlay and resumes the frozen countdowns with their
// prior remaining values.
func (s *Session) endPenalty() {
	if s.Penalty == nil {
		return
	}
	s.Penalty = nil
	s.resumeAll()
	s.broadcastEvent(PenaltyEndedMsg{Type: "penalty_ended"})
	s.broadcastState()
}
