package game

import (
	"time"
)

// handleActivatePower commits the active player to using the pending face
// card's power instead of swapping it into hand. The matching selection
// sub-state opens and fully occupies the engine until resolved.
func (s *Session) handleActivatePower(playerIdx int) {
	if s.Phase != PhaseTurn || playerIdx != s.ActiveIdx {
		s.sendError(playerIdx, "It is not your turn.")
		return
	}
	if s.PendingDraw == nil {
		s.sendError(playerIdx, "Draw a card first.")
		return
	}
	if s.Power.Kind != PowerNone {
		s.sendError(playerIdx, "A power is already active.")
		return
	}
	if !s.PendingDraw.IsFaceCard() {
		s.sendError(playerIdx, "Only Jack, Queen and King carry a power.")
		return
	}
	switch s.PendingDraw.Rank {
	case RankJack:
		s.Power = PowerState{Kind: PowerJackSelect}
	case RankQueen:
		s.Power = PowerState{Kind: PowerQueenSelect}
	case RankKing:
		s.Power = PowerState{Kind: PowerKingSelect}
	}
	s.broadcastEvent(PowerActivatedMsg{Type: "power_activated", PlayerIdx: playerIdx, Power: s.Power.Kind.String()})
	s.broadcastState()
}

// handleResolveJackTarget reveals one of the active player's own occupied
// slots face-up for the configured interval. The reveal is public.
func (s *Session) handleResolveJackTarget(playerIdx, slotIdx int) {
	if playerIdx != s.ActiveIdx || s.Power.Kind != PowerJackSelect {
		s.sendError(playerIdx, "No Jack power to resolve.")
		return
	}
	hand := s.Players[playerIdx].Hand
	if !hand.Occupied(slotIdx) {
		// Selection is not consumed; the player picks again.
		s.sendError(playerIdx, "That slot is empty.")
		return
	}
	hand.SetFaceUp(slotIdx, true)
	s.beginReveal(PowerJackReveal, TargetRef{PlayerIdx: playerIdx, SlotIdx: slotIdx})
	s.broadcastEvent(CardRevealedMsg{
		Type:        "card_revealed",
		PlayerIdx:   playerIdx,
		SlotIdx:     slotIdx,
		Card:        NewCardView(hand.Slots[slotIdx].Card),
		UntilUnixMs: s.Power.RevealUntil.UnixMilli(),
	})
	s.broadcastState()
}

// handleResolveQueenTarget reveals one of the opponent's occupied slots for
// the configured interval, visible only to the acting player's side.
func (s *Session) handleResolveQueenTarget(playerIdx, slotIdx int) {
	if playerIdx != s.ActiveIdx || s.Power.Kind != PowerQueenSelect {
		s.sendError(playerIdx, "No Queen power to resolve.")
		return
	}
	opponentIdx := 1 - playerIdx
	hand := s.Players[opponentIdx].Hand
	if !hand.Occupied(slotIdx) {
		s.sendError(playerIdx, "That slot is empty.")
		return
	}
	// The slot stays face-down publicly; only the acting player's snapshot
	// carries the card identity while the reveal lasts.
	s.beginReveal(PowerQueenReveal, TargetRef{PlayerIdx: opponentIdx, SlotIdx: slotIdx})
	s.sendEvent(playerIdx, CardRevealedMsg{
		Type:        "card_revealed",
		PlayerIdx:   opponentIdx,
		SlotIdx:     slotIdx,
		Card:        NewCardView(hand.Slots[slotIdx].Card),
		UntilUnixMs: s.Power.RevealUntil.UnixMilli(),
	})
	s.broadcastState()
}

// handleResolveKingTarget records one of the King's two picks. Targets may
// belong to either player; picking an empty slot or repeating the first pick
// is rejected without consuming the selection. The second pick swaps the two
// cards (face-down before and after), discards the King and ends the turn.
func (s *Session) handleResolveKingTarget(playerIdx, targetPlayerIdx, slotIdx int) {
	if playerIdx != s.ActiveIdx || s.Power.Kind != PowerKingSelect {
		s.sendError(playerIdx, "No King power to resolve.")
		return
	}
	if targetPlayerIdx < 0 || targetPlayerIdx > 1 {
		s.sendError(playerIdx, "Invalid target player.")
		return
	}
	target := TargetRef{PlayerIdx: targetPlayerIdx, SlotIdx: slotIdx}
	if !s.Players[targetPlayerIdx].Hand.Occupied(slotIdx) {
		s.sendError(playerIdx, "That slot is empty.")
		return
	}
	if s.Power.KingFirst == nil {
		s.Power.KingFirst = &target
		s.broadcastState()
		return
	}
	first := *s.Power.KingFirst
	if first == target {
		s.sendError(playerIdx, "Pick two different slots.")
		return
	}

	handA := s.Players[first.PlayerIdx].Hand
	handB := s.Players[target.PlayerIdx].Hand
	handA.Slots[first.SlotIdx].Card, handB.Slots[target.SlotIdx].Card =
		handB.Slots[target.SlotIdx].Card, handA.Slots[first.SlotIdx].Card

	s.broadcastEvent(CardsSwappedMsg{Type: "cards_swapped", SlotA: first, SlotB: target})
	s.endTurn()
}

// beginReveal enters a timed reveal state. The turn countdown is frozen for
// the duration: a reveal cannot be interrupted by a turn timeout.
func (s *Session) beginReveal(kind PowerKind, target TargetRef) {
	d := time.Duration(s.Config.PowerRevealMS) * time.Millisecond
	s.Power = PowerState{
		Kind:        kind,
		Reveal:      target,
		RevealUntil: time.Now().Add(d),
	}
	s.turnTimer.Freeze()
	s.revealTimer.Start(d)
}

// resolveRevealExpiry re-hides the revealed slot, discards the power card
// and ends the turn.
func (s *Session) resolveRevealExpiry() {
	switch s.Power.Kind {
	case PowerJackReveal:
		target := s.Power.Reveal
		s.Players[target.PlayerIdx].Hand.SetFaceUp(target.SlotIdx, false)
	case PowerQueenReveal:
		// Nothing to re-hide publicly; the private view simply lapses.
	default:
		return
	}
	s.endTurn()
}
