package game

import (
	"log/slog"
	"time"

	"bombom-game-server/config"
)

// Phase is the top-level state of a session.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseDealing
	PhaseMemorizePrep
	PhaseMemorize
	PhaseTurn
	PhaseShowTimeDecision
	PhaseRoundEnd
	PhaseMatchEnd
)

// String returns the protocol string for a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseDealing:
		return "dealing"
	case PhaseMemorizePrep:
		return "memorize_prep"
	case PhaseMemorize:
		return "memorize"
	case PhaseTurn:
		return "turn"
	case PhaseShowTimeDecision:
		return "showtime_decision"
	case PhaseRoundEnd:
		return "round_end"
	case PhaseMatchEnd:
		return "match_end"
	default:
		return "unknown"
	}
}

// PowerKind tags the power sub-state nested under a turn. Selecting states
// fully occupy the engine (no draw, no quick-match) until resolved.
type PowerKind int

const (
	PowerNone PowerKind = iota
	PowerJackSelect
	PowerQueenSelect
	PowerKingSelect
	PowerJackReveal
	PowerQueenReveal
)

// String returns the protocol string for a PowerKind.
func (k PowerKind) String() string {
	switch k {
	case PowerNone:
		return "none"
	case PowerJackSelect:
		return "jack_select"
	case PowerQueenSelect:
		return "queen_select"
	case PowerKingSelect:
		return "king_select"
	case PowerJackReveal:
		return "jack_reveal"
	case PowerQueenReveal:
		return "queen_reveal"
	default:
		return "unknown"
	}
}

// TargetRef addresses one slot of one player.
type TargetRef struct {
	PlayerIdx int `json:"playerIdx"`
	SlotIdx   int `json:"slotIdx"`
}

// PowerState is the tagged union for an in-progress power. KingFirst holds
// the first of the King's two picks; Reveal and RevealUntil describe an
// active Jack/Queen reveal.
type PowerState struct {
	Kind        PowerKind
	KingFirst   *TargetRef
	Reveal      TargetRef
	RevealUntil time.Time
}

// PenaltyState is the overlay entered after a failed quick-match. While it
// holds, every other countdown is frozen and all actions except timer expiry
// are rejected.
type PenaltyState struct {
	PlayerIdx int
	Until     time.Time
}

// ActionType enumerates the actions a session can process.
type ActionType int

const (
	ActionToggleReady ActionType = iota
	ActionMemorizePeek
	ActionDrawCard
	ActionDiscardDrawn
	ActionSwapDrawnInto
	ActionActivatePower
	ActionResolveJackTarget
	ActionResolveQueenTarget
	ActionResolveKingTarget
	ActionQuickMatch
	ActionDeclareBombom
	ActionCancelBombom
	ActionConfirmShowTime
	ActionRequestNextRound
	ActionQuit
	ActionPlayerDisconnected // player lost connection; start reconnection window
	ActionRejoinCompleted    // player rejoined; restore Send and resume
	ActionTimerExpired       // internal: fired by a Countdown
)

// Action is one unit of work for the session loop. External actions carry
// the acting player's index; internal timer expiries carry the timer kind
// and sequence so stale fires can be discarded.
type Action struct {
	Type            ActionType
	PlayerIdx       int
	SlotIdx         int
	TargetPlayerIdx int // for King picks: owner of the targeted slot
	Timer           TimerKind
	TimerSeq        int
	NewSend         chan []byte // for ActionRejoinCompleted
}

// RoundRecord summarizes a finished round for persistence.
type RoundRecord struct {
	Round            int
	Totals           [2]int
	WinnerIdx        int // -1 = tie
	EndedBy          string
	BombomDeclaredBy int // -1 = none
	BombomCancelled  bool
}

// Round end reasons.
const (
	RoundEndShowTime  = "showtime"
	RoundEndEmptyHand = "empty_hand"
)

// Session end reasons.
const (
	EndReasonCompleted    = "completed"
	EndReasonForfeit      = "forfeit"
	EndReasonDisconnected = "opponent_disconnected"
)

// Session is the authoritative state machine for one two-player match. All
// mutation happens on the goroutine draining Actions; timers report expiry
// through the same channel, so turn ownership, pending draw and power
// sub-state can never race.
type Session struct {
	ID      string
	Config  *config.Config
	Players [2]*Player
	Deck    *Deck

	Phase             Phase
	ActiveIdx         int
	Round             int
	QuickMatchEnabled bool
	PendingDraw       *Card
	Power             PowerState
	Penalty           *PenaltyState

	// BombomDeclaredBy is the seat with a live declaration this round, or -1.
	BombomDeclaredBy         int
	bombomCancelledThisRound bool

	turnTimer      *Countdown
	memTimer       *Countdown
	penaltyTimer   *Countdown
	revealTimer    *Countdown
	reconnectTimer *Countdown

	// DisconnectedIdx is the seat that lost its connection (-1 = none); the
	// session is frozen until rejoin or window expiry.
	DisconnectedIdx   int
	ReconnectDeadline time.Time
	RejoinTokens      [2]string
	PlayerUserIDs     [2]string

	Finished bool
	Actions  chan Action
	Done     chan struct{}

	// OnRoundEnd is called after each scored round; optional.
	OnRoundEnd func(sessionID string, rec RoundRecord)
	// OnSessionEnd is called exactly once when the session terminates.
	// winnerIdx is 0, 1, or -1 for a drawn completed match.
	OnSessionEnd func(sessionID string, userIDs [2]string, names [2]string, scores [2]int, winnerIdx int, endReason string)
}

// NewSession creates a session in the lobby phase. Dealing starts once both
// players toggle ready.
func NewSession(id string, cfg *config.Config, p0, p1 *Player) *Session {
	s := &Session{
		ID:               id,
		Config:           cfg,
		Players:          [2]*Player{p0, p1},
		Phase:            PhaseLobby,
		BombomDeclaredBy: -1,
		DisconnectedIdx:  -1,
		Actions:          make(chan Action, 16),
		Done:             make(chan struct{}),
	}
	s.turnTimer = newCountdown(TimerTurn, s.postTimerExpiry)
	s.memTimer = newCountdown(TimerMemorize, s.postTimerExpiry)
	s.penaltyTimer = newCountdown(TimerPenalty, s.postTimerExpiry)
	s.revealTimer = newCountdown(TimerReveal, s.postTimerExpiry)
	s.reconnectTimer = newCountdown(TimerReconnect, s.postTimerExpiry)
	return s
}

// Run is the session's event loop. It should be run as a goroutine; it
// returns when the session finishes.
func (s *Session) Run() {
	defer close(s.Done)
	s.broadcastState()
	for {
		action, ok := <-s.Actions
		if !ok || s.Finished {
			return
		}
		s.dispatch(action)
		if s.Finished {
			return
		}
	}
}

// dispatch applies one action against the current state.
func (s *Session) dispatch(a Action) {
	// A disconnect freeze blocks everything except the window's own lifecycle.
	if s.DisconnectedIdx >= 0 {
		switch a.Type {
		case ActionRejoinCompleted, ActionTimerExpired, ActionQuit, ActionPlayerDisconnected:
		default:
			return
		}
	}

	switch a.Type {
	case ActionToggleReady:
		s.handleToggleReady(a.PlayerIdx)
	case ActionMemorizePeek:
		s.handleMemorizePeek(a.PlayerIdx, a.SlotIdx)
	case ActionDrawCard:
		s.handleDrawCard(a.PlayerIdx)
	case ActionDiscardDrawn:
		s.handleDiscardDrawn(a.PlayerIdx)
	case ActionSwapDrawnInto:
		s.handleSwapDrawnInto(a.PlayerIdx, a.SlotIdx)
	case ActionActivatePower:
		s.handleActivatePower(a.PlayerIdx)
	case ActionResolveJackTarget:
		s.handleResolveJackTarget(a.PlayerIdx, a.SlotIdx)
	case ActionResolveQueenTarget:
		s.handleResolveQueenTarget(a.PlayerIdx, a.SlotIdx)
	case ActionResolveKingTarget:
		s.handleResolveKingTarget(a.PlayerIdx, a.TargetPlayerIdx, a.SlotIdx)
	case ActionQuickMatch:
		s.handleQuickMatch(a.PlayerIdx, a.SlotIdx)
	case ActionDeclareBombom:
		s.handleDeclareBombom(a.PlayerIdx)
	case ActionCancelBombom:
		s.handleCancelBombom(a.PlayerIdx)
	case ActionConfirmShowTime:
		s.handleConfirmShowTime(a.PlayerIdx)
	case ActionRequestNextRound:
		s.handleRequestNextRound(a.PlayerIdx)
	case ActionQuit:
		s.handleQuit(a.PlayerIdx)
	case ActionPlayerDisconnected:
		s.handlePlayerDisconnected(a.PlayerIdx)
	case ActionRejoinCompleted:
		s.handleRejoinCompleted(a.PlayerIdx, a.NewSend)
	case ActionTimerExpired:
		s.handleTimerExpired(a.Timer, a.TimerSeq)
	}
}

// postTimerExpiry feeds a countdown expiry back into the action loop. Called
// from timer goroutines.
func (s *Session) postTimerExpiry(kind TimerKind, seq int) {
	select {
	case s.Actions <- Action{Type: ActionTimerExpired, Timer: kind, TimerSeq: seq}:
	case <-s.Done:
	}
}

func (s *Session) handleTimerExpired(kind TimerKind, seq int) {
	var cd *Countdown
	switch kind {
	case TimerTurn:
		cd = s.turnTimer
	case TimerMemorizePrep, TimerMemorize:
		cd = s.memTimer
	case TimerPenalty:
		cd = s.penaltyTimer
	case TimerReveal:
		cd = s.revealTimer
	case TimerReconnect:
		cd = s.reconnectTimer
	}
	if cd == nil || !cd.matches(seq) {
		// Stale fire: the countdown was cancelled, frozen or restarted after
		// this expiry was posted.
		return
	}
	cd.Stop()

	switch kind {
	case TimerTurn:
		s.handleTurnTimeout()
	case TimerMemorizePrep:
		s.beginMemorizeCountdown()
	case TimerMemorize:
		s.endMemorization()
	case TimerPenalty:
		s.endPenalty()
	case TimerReveal:
		s.resolveRevealExpiry()
	case TimerReconnect:
		s.handleReconnectTimeout()
	}
}

// freezeAll suspends every gameplay countdown (turn, memorization, reveal).
// The penalty countdown is excluded: it runs in real time while everything
// else is frozen.
func (s *Session) freezeAll() {
	s.turnTimer.Freeze()
	s.memTimer.Freeze()
	s.revealTimer.Freeze()
}

// resumeAll restarts whatever freezeAll suspended, with prior remaining values.
func (s *Session) resumeAll() {
	s.turnTimer.Resume()
	s.memTimer.Resume()
	s.revealTimer.Resume()
}

// startRound shuffles a fresh deck, deals both hands and enters the
// memorization preparation interval.
func (s *Session) startRound() {
	s.Round++
	s.Phase = PhaseDealing
	s.Deck = NewDeck()
	s.QuickMatchEnabled = false
	s.PendingDraw = nil
	s.Power = PowerState{}
	s.Penalty = nil
	s.BombomDeclaredBy = -1
	s.bombomCancelledThisRound = false

	for i := 0; i < 2; i++ {
		cards, err := s.Deck.Deal(InitialHandSize)
		if err != nil {
			s.abortRound(err)
			return
		}
		s.Players[i].resetForRound(cards)
	}
	slog.Info("round dealt", "tag", "game", "session", s.ID, "round", s.Round)
	s.broadcastEvent(CardsDealtMsg{
		Type:            "cards_dealt",
		Round:           s.Round,
		PerPlayerCounts: [2]int{InitialHandSize, InitialHandSize},
	})

	s.Phase = PhaseMemorizePrep
	s.memTimer.kind = TimerMemorizePrep
	s.memTimer.Start(time.Duration(s.Config.MemorizePrepSec) * time.Second)
	s.broadcastState()
}

func (s *Session) beginMemorizeCountdown() {
	s.Phase = PhaseMemorize
	s.memTimer.kind = TimerMemorize
	s.memTimer.Start(time.Duration(s.Config.MemorizeCountdownSec) * time.Second)
	s.broadcastState()
}

// endMemorization hides every slot, enables quick-match and hands the first
// turn to seat 0.
func (s *Session) endMemorization() {
	for i := 0; i < 2; i++ {
		s.Players[i].Hand.HideAll()
	}
	s.QuickMatchEnabled = true
	s.startTurn(0)
}

// startTurn gives the turn to seat idx with a full countdown. If the seat
// has a live bombom declaration, the turn becomes the ShowTime decision
// instead of a normal turn.
func (s *Session) startTurn(idx int) {
	s.ActiveIdx = idx
	if s.Players[idx].BombomDeclared {
		s.Phase = PhaseShowTimeDecision
	} else {
		s.Phase = PhaseTurn
	}
	s.turnTimer.Start(time.Duration(s.Config.TurnLimitSec) * time.Second)
	s.broadcastEvent(TurnChangedMsg{
		Type:         "turn_changed",
		ActiveIdx:    idx,
		TimerSeconds: s.Config.TurnLimitSec,
		Decision:     s.Phase == PhaseShowTimeDecision,
	})
	s.broadcastState()
}

// endTurn discards any unresolved draw and passes control to the other seat.
func (s *Session) endTurn() {
	if s.PendingDraw != nil {
		s.Deck.DiscardTop(*s.PendingDraw)
		s.broadcastEvent(CardDiscardedMsg{Type: "card_discarded", Card: NewCardView(*s.PendingDraw)})
		s.PendingDraw = nil
	}
	s.Power = PowerState{}
	s.turnTimer.Stop()
	s.revealTimer.Stop()
	s.startTurn(1 - s.ActiveIdx)
}

func (s *Session) handleTurnTimeout() {
	if s.Phase == PhaseShowTimeDecision {
		// The declarer let the decision window lapse: ShowTime is mandatory.
		s.showTime()
		return
	}
	if s.Phase != PhaseTurn {
		return
	}
	s.endTurn()
}

// checkEmptyHandWin ends the round immediately if idx's hand has no occupied
// slots. Returns true when the round ended.
func (s *Session) checkEmptyHandWin(idx int) bool {
	if s.Players[idx].Hand.OccupiedCount() > 0 {
		return false
	}
	s.finishRound(idx, RoundEndEmptyHand)
	return true
}

// showTime reveals all hands and scores the round per the scoring rules.
func (s *Session) showTime() {
	t0 := HandTotal(s.Players[0].Hand)
	t1 := HandTotal(s.Players[1].Hand)
	s.finishRound(RoundWinner(t0, t1), RoundEndShowTime)
}

// finishRound reveals hands, applies scoring (the loser's total is added to
// their cumulative score; ties change nothing) and enters RoundEnd — or ends
// the match when a cumulative score reaches the configured target.
func (s *Session) finishRound(winnerIdx int, endedBy string) {
	s.turnTimer.Stop()
	s.memTimer.Stop()
	s.revealTimer.Stop()
	s.penaltyTimer.Stop()
	s.Penalty = nil
	s.PendingDraw = nil
	s.Power = PowerState{}

	for i := 0; i < 2; i++ {
		s.Players[i].Hand.RevealAll()
	}
	totals := [2]int{HandTotal(s.Players[0].Hand), HandTotal(s.Players[1].Hand)}
	if winnerIdx >= 0 {
		loser := 1 - winnerIdx
		s.Players[loser].Score += totals[loser]
	}

	rec := RoundRecord{
		Round:            s.Round,
		Totals:           totals,
		WinnerIdx:        winnerIdx,
		EndedBy:          endedBy,
		BombomDeclaredBy: s.BombomDeclaredBy,
		BombomCancelled:  s.bombomCancelledThisRound,
	}
	if s.OnRoundEnd != nil {
		s.OnRoundEnd(s.ID, rec)
	}
	slog.Info("round ended", "tag", "game", "session", s.ID, "round", s.Round,
		"winner", winnerIdx, "by", endedBy, "totals0", totals[0], "totals1", totals[1])

	s.Phase = PhaseRoundEnd
	s.broadcastEvent(RoundEndedMsg{
		Type:       "round_ended",
		Round:      s.Round,
		WinnerIdx:  winnerIdx,
		Totals:     totals,
		Cumulative: [2]int{s.Players[0].Score, s.Players[1].Score},
		EndedBy:    endedBy,
	})
	s.broadcastState()

	if target := s.Config.MatchTargetScore; target > 0 {
		if s.Players[0].Score >= target || s.Players[1].Score >= target {
			s.finishMatch()
		}
	}
}

// finishMatch ends the session normally: the lower cumulative score wins.
func (s *Session) finishMatch() {
	winnerIdx := RoundWinner(s.Players[0].Score, s.Players[1].Score)
	s.Phase = PhaseMatchEnd
	s.broadcastEvent(MatchEndedMsg{
		Type:       "match_ended",
		WinnerIdx:  winnerIdx,
		Cumulative: [2]int{s.Players[0].Score, s.Players[1].Score},
	})
	s.endSession(winnerIdx, EndReasonCompleted)
}

// abortRound handles a fatal invariant violation (deck exhaustion). The
// session cannot continue coherently, so it is terminated without a winner.
func (s *Session) abortRound(err error) {
	slog.Error("aborting round", "tag", "game", "session", s.ID, "round", s.Round, "err", err)
	s.broadcastEvent(ErrorMsg{Type: "error", Message: "Round aborted: internal deck error."})
	s.endSession(-1, EndReasonCompleted)
}

// endSession terminates the session exactly once.
func (s *Session) endSession(winnerIdx int, reason string) {
	if s.Finished {
		return
	}
	s.Finished = true
	s.turnTimer.Stop()
	s.memTimer.Stop()
	s.penaltyTimer.Stop()
	s.revealTimer.Stop()
	s.reconnectTimer.Stop()
	if s.OnSessionEnd != nil {
		s.OnSessionEnd(s.ID, s.PlayerUserIDs,
			[2]string{s.Players[0].Name, s.Players[1].Name},
			[2]int{s.Players[0].Score, s.Players[1].Score},
			winnerIdx, reason)
	}
}
