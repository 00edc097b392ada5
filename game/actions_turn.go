package game

// handleToggleReady flips a player's ready flag in the lobby. Dealing starts
// when both seats are ready.
func (s *Session) handleToggleReady(playerIdx int) {
	if s.Phase != PhaseLobby {
		s.sendError(playerIdx, "The game has already started.")
		return
	}
	p := s.Players[playerIdx]
	p.Ready = !p.Ready
	s.broadcastEvent(ReadyChangedMsg{Type: "ready_changed", PlayerIdx: playerIdx, Ready: p.Ready})
	if s.Players[0].Ready && s.Players[1].Ready {
		s.startRound()
		return
	}
	s.broadcastState()
}

// handleMemorizePeek toggles one of the player's own slots face-up during
// the memorization countdown. Each player may inspect at most the configured
// number of distinct slots (2); re-hiding and re-showing an already
// inspected slot consumes nothing.
func (s *Session) handleMemorizePeek(playerIdx, slotIdx int) {
	if s.Phase != PhaseMemorize {
		s.sendError(playerIdx, "You can only peek during the memorization countdown.")
		return
	}
	p := s.Players[playerIdx]
	if !p.Hand.Occupied(slotIdx) {
		s.sendError(playerIdx, "That slot is not occupied.")
		return
	}
	if !p.memPeeked[slotIdx] && len(p.memPeeked) >= s.Config.MemorizePeekBudget {
		s.sendError(playerIdx, "You have already inspected your allowed cards.")
		return
	}
	p.memPeeked[slotIdx] = true
	slot := &p.Hand.Slots[slotIdx]
	slot.FaceUp = !slot.FaceUp
	s.broadcastState()
}

// handleDrawCard draws one card into the pending slot. Only the active
// player may draw, only during a normal turn with nothing pending.
func (s *Session) handleDrawCard(playerIdx int) {
	if s.Phase != PhaseTurn || playerIdx != s.ActiveIdx {
		s.sendError(playerIdx, "It is not your turn to draw.")
		return
	}
	if s.PendingDraw != nil {
		s.sendError(playerIdx, "You have already drawn a card.")
		return
	}
	if s.Power.Kind != PowerNone {
		s.sendError(playerIdx, "Resolve the active power first.")
		return
	}
	if s.Penalty != nil {
		s.sendError(playerIdx, "A penalty is in progress.")
		return
	}
	card, err := s.Deck.Draw()
	if err != nil {
		s.abortRound(err)
		return
	}
	s.PendingDraw = &card
	// The drawn card's identity is private to the drawer until resolved;
	// the snapshot handles the asymmetry.
	s.broadcastState()
}

// handleDiscardDrawn moves the pending draw straight to the discard pile and
// ends the turn. Not available while a power selection is open, and not
// available for face cards: a drawn Jack, Queen or King must either be
// activated or swapped into the hand.
func (s *Session) handleDiscardDrawn(playerIdx int) {
	if playerIdx != s.ActiveIdx || s.PendingDraw == nil {
		s.sendError(playerIdx, "You have no drawn card to discard.")
		return
	}
	if s.Power.Kind != PowerNone {
		s.sendError(playerIdx, "Resolve the active power first.")
		return
	}
	if s.PendingDraw.IsFaceCard() {
		s.sendError(playerIdx, "Face cards must be activated or swapped into your hand.")
		return
	}
	s.endTurn()
}

// handleSwapDrawnInto replaces one of the active player's own slots with the
// pending draw (face-down); the old card goes to the discard pile and the
// turn ends. Whether the target slot must currently be occupied is
// configurable; the reference behavior accepts any original slot.
func (s *Session) handleSwapDrawnInto(playerIdx, slotIdx int) {
	if playerIdx != s.ActiveIdx || s.PendingDraw == nil {
		s.sendError(playerIdx, "You have no drawn card to swap.")
		return
	}
	if s.Power.Kind != PowerNone {
		s.sendError(playerIdx, "Resolve the active power first.")
		return
	}
	hand := s.Players[playerIdx].Hand
	if s.Config.SwapRequiresOccupied {
		// Strict rule: any occupied slot, penalty slots included.
		if !hand.Occupied(slotIdx) {
			s.sendError(playerIdx, "That slot is empty.")
			return
		}
	} else {
		// Reference rule: only the original dealt indices. A matched-away gap
		// still cannot receive a card; gaps close only via quick-match removal.
		if slotIdx < 0 || slotIdx >= InitialHandSize || !hand.Occupied(slotIdx) {
			s.sendError(playerIdx, "Pick one of your original slots.")
			return
		}
	}
	old := hand.Replace(slotIdx, *s.PendingDraw)
	s.PendingDraw = nil
	s.Deck.DiscardTop(old)
	s.broadcastEvent(CardDiscardedMsg{Type: "card_discarded", Card: NewCardView(old)})
	s.endTurn()
}

// handleRequestNextRound marks a seat ready for the next round; when both
// have asked, a new deck is shuffled and dealt. Cumulative scores persist.
func (s *Session) handleRequestNextRound(playerIdx int) {
	if s.Phase != PhaseRoundEnd {
		s.sendError(playerIdx, "The round is still in progress.")
		return
	}
	p := s.Players[playerIdx]
	if p.Ready {
		return
	}
	p.Ready = true
	s.broadcastEvent(ReadyChangedMsg{Type: "ready_changed", PlayerIdx: playerIdx, Ready: true})
	if s.Players[0].Ready && s.Players[1].Ready {
		s.startRound()
		return
	}
	s.broadcastState()
}
