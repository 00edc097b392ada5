package game

import (
	"encoding/json"
	"log/slog"

	"bombom-game-server/wsutil"
)

// CardView is the client-facing representation of a card identity.
type CardView struct {
	Rank  int    `json:"rank"`
	Suit  string `json:"suit,omitempty"`
	Joker int    `json:"joker,omitempty"`
	Copy  int    `json:"copy"`
}

// NewCardView builds the wire form of a card.
func NewCardView(c Card) CardView {
	if c.IsJoker() {
		return CardView{Rank: -1, Joker: int(c.Joker), Copy: c.Copy}
	}
	return CardView{Rank: int(c.Rank), Suit: c.Suit.String(), Copy: c.Copy}
}

// SlotView is one hand slot as seen by a specific viewer. Card is only set
// when the slot's identity is visible to that viewer.
type SlotView struct {
	Index  int       `json:"index"`
	Empty  bool      `json:"empty"`
	FaceUp bool      `json:"faceUp"`
	Card   *CardView `json:"card,omitempty"`
}

// PlayerView is the client-facing representation of a seat.
type PlayerView struct {
	Name             string     `json:"name"`
	Score            int        `json:"score"`
	Ready            bool       `json:"ready"`
	BombomDeclared   bool       `json:"bombomDeclared"`
	BombomCancelUsed bool       `json:"bombomCancelUsed"`
	Slots            []SlotView `json:"slots"`
}

// PenaltyView describes an active penalty overlay.
type PenaltyView struct {
	PlayerIdx   int   `json:"playerIdx"`
	UntilUnixMs int64 `json:"untilUnixMs"`
}

// StateMsg is the full session snapshot broadcast to a specific player
// after every mutation.
type StateMsg struct {
	Type              string       `json:"type"`
	Phase             string       `json:"phase"`
	Round             int          `json:"round"`
	You               PlayerView   `json:"you"`
	Opponent          PlayerView   `json:"opponent"`
	YourTurn          bool         `json:"yourTurn"`
	ActiveIdx         int          `json:"activeIdx"`
	QuickMatchEnabled bool         `json:"quickMatchEnabled"`
	DeckCount         int          `json:"deckCount"`
	DiscardTop        *CardView    `json:"discardTop,omitempty"`
	HasPendingDraw    bool         `json:"hasPendingDraw"`
	DrawnCard         *CardView    `json:"drawnCard,omitempty"`
	Power             string       `json:"power"`
	KingFirstPick     *TargetRef   `json:"kingFirstPick,omitempty"`
	Penalty           *PenaltyView `json:"penalty,omitempty"`
	BombomDeclaredBy  int          `json:"bombomDeclaredBy"`
	// TurnEndsAtUnixMs is set while the turn countdown runs; while frozen
	// (penalty, reveal, reconnect) TurnRemainingMS carries the held value.
	TurnEndsAtUnixMs     int64 `json:"turnEndsAtUnixMs,omitempty"`
	TurnRemainingMS      int64 `json:"turnRemainingMs,omitempty"`
	MemorizeEndsAtUnixMs int64 `json:"memorizeEndsAtUnixMs,omitempty"`
}

// --- discrete event messages ---

type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ReadyChangedMsg struct {
	Type      string `json:"type"`
	PlayerIdx int    `json:"playerIdx"`
	Ready     bool   `json:"ready"`
}

type CardsDealtMsg struct {
	Type            string `json:"type"`
	Round           int    `json:"round"`
	PerPlayerCounts [2]int `json:"perPlayerCounts"`
}

type TurnChangedMsg struct {
	Type         string `json:"type"`
	ActiveIdx    int    `json:"activeIdx"`
	TimerSeconds int    `json:"timerSeconds"`
	// Decision is true when this "turn" is the declarer's ShowTime decision
	// window rather than a normal turn.
	Decision bool `json:"decision"`
}

type CardRevealedMsg struct {
	Type        string   `json:"type"`
	PlayerIdx   int      `json:"playerIdx"`
	SlotIdx     int      `json:"slotIdx"`
	Card        CardView `json:"card"`
	UntilUnixMs int64    `json:"untilUnixMs"`
}

type CardDiscardedMsg struct {
	Type string   `json:"type"`
	Card CardView `json:"card"`
}

type CardsSwappedMsg struct {
	Type  string    `json:"type"`
	SlotA TargetRef `json:"slotA"`
	SlotB TargetRef `json:"slotB"`
}

type PowerActivatedMsg struct {
	Type      string `json:"type"`
	PlayerIdx int    `json:"playerIdx"`
	Power     string `json:"power"`
}

type QuickMatchMsg struct {
	Type      string   `json:"type"`
	PlayerIdx int      `json:"playerIdx"`
	SlotIdx   int      `json:"slotIdx"`
	Card      CardView `json:"card"`
	Matched   bool     `json:"matched"`
}

type PenaltyStartedMsg struct {
	Type       string `json:"type"`
	PlayerIdx  int    `json:"playerIdx"`
	DurationMS int    `json:"durationMs"`
	CardsDrawn int    `json:"cardsDrawn"`
}

type PenaltyEndedMsg struct {
	Type string `json:"type"`
}

type BombomDeclaredMsg struct {
	Type      string `json:"type"`
	PlayerIdx int    `json:"playerIdx"`
}

type BombomCancelledMsg struct {
	Type      string `json:"type"`
	PlayerIdx int    `json:"playerIdx"`
}

type RoundEndedMsg struct {
	Type       string `json:"type"`
	Round      int    `json:"round"`
	WinnerIdx  int    `json:"winnerIdx"`
	Totals     [2]int `json:"totals"`
	Cumulative [2]int `json:"cumulative"`
	EndedBy    string `json:"endedBy"`
}

type MatchEndedMsg struct {
	Type       string `json:"type"`
	WinnerIdx  int    `json:"winnerIdx"`
	Cumulative [2]int `json:"cumulative"`
}

type PlayerQuitMsg struct {
	Type      string `json:"type"`
	PlayerIdx int    `json:"playerIdx"`
}

type OpponentReconnectingMsg struct {
	Type           string `json:"type"`
	DeadlineUnixMs int64  `json:"deadlineUnixMs"`
}

type OpponentReconnectedMsg struct {
	Type string `json:"type"`
}

// --- send helpers ---

func (s *Session) sendError(playerIdx int, message string) {
	s.sendEvent(playerIdx, ErrorMsg{Type: "error", Message: message})
}

// sendEvent delivers a message to a single seat.
func (s *Session) sendEvent(playerIdx int, msg any) {
	p := s.Players[playerIdx]
	if p == nil || p.Send == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshaling event", "tag", "game", "err", err)
		return
	}
	wsutil.SafeSend(p.Send, data)
}

// broadcastEvent delivers a message to both seats.
func (s *Session) broadcastEvent(msg any) {
	for i := 0; i < 2; i++ {
		s.sendEvent(i, msg)
	}
}

// broadcastState sends each player their own obfuscated snapshot.
func (s *Session) broadcastState() {
	for i := 0; i < 2; i++ {
		s.sendEvent(i, s.BuildStateForPlayer(i))
	}
}

// cardVisibleTo decides whether the viewer may see the card in owner's slot.
// Own face-up slots are always visible. Opponent face-up slots are visible
// except during the memorization countdown, where peeks are private to their
// owner. A Queen reveal exposes exactly one opponent slot to the acting
// player only.
func (s *Session) cardVisibleTo(viewerIdx, ownerIdx, slotIdx int) bool {
	slot := s.Players[ownerIdx].Hand.Slots[slotIdx]
	if slot.Empty {
		return false
	}
	if slot.FaceUp {
		if viewerIdx == ownerIdx {
			return true
		}
		return s.Phase != PhaseMemorize
	}
	if s.Power.Kind == PowerQueenReveal && viewerIdx == s.ActiveIdx {
		r := s.Power.Reveal
		return r.PlayerIdx == ownerIdx && r.SlotIdx == slotIdx
	}
	return false
}

func (s *Session) buildPlayerView(viewerIdx, seatIdx int) PlayerView {
	p := s.Players[seatIdx]
	view := PlayerView{
		Name:             p.Name,
		Score:            p.Score,
		Ready:            p.Ready,
		BombomDeclared:   p.BombomDeclared,
		BombomCancelUsed: p.BombomCancelUsed,
	}
	if p.Hand == nil {
		return view
	}
	view.Slots = make([]SlotView, len(p.Hand.Slots))
	for i, slot := range p.Hand.Slots {
		sv := SlotView{Index: i, Empty: slot.Empty, FaceUp: slot.FaceUp}
		if s.cardVisibleTo(viewerIdx, seatIdx, i) {
			cv := NewCardView(slot.Card)
			sv.Card = &cv
		}
		// During the owner's private memorization peek the opponent should
		// not even learn which slots were inspected.
		if s.Phase == PhaseMemorize && viewerIdx != seatIdx {
			sv.FaceUp = false
		}
		view.Slots[i] = sv
	}
	return view
}

// BuildStateForPlayer returns the snapshot for the given seat (0 or 1).
func (s *Session) BuildStateForPlayer(viewerIdx int) StateMsg {
	msg := StateMsg{
		Type:              "game_state",
		Phase:             s.Phase.String(),
		Round:             s.Round,
		You:               s.buildPlayerView(viewerIdx, viewerIdx),
		Opponent:          s.buildPlayerView(viewerIdx, 1-viewerIdx),
		YourTurn:          (s.Phase == PhaseTurn || s.Phase == PhaseShowTimeDecision) && viewerIdx == s.ActiveIdx,
		ActiveIdx:         s.ActiveIdx,
		QuickMatchEnabled: s.QuickMatchEnabled,
		Power:             s.Power.Kind.String(),
		BombomDeclaredBy:  s.BombomDeclaredBy,
		HasPendingDraw:    s.PendingDraw != nil,
	}
	if s.Deck != nil {
		msg.DeckCount = s.Deck.Remaining()
		if top, ok := s.Deck.PeekDiscardTop(); ok {
			cv := NewCardView(top)
			msg.DiscardTop = &cv
		}
	}
	if s.PendingDraw != nil && viewerIdx == s.ActiveIdx {
		cv := NewCardView(*s.PendingDraw)
		msg.DrawnCard = &cv
	}
	if s.Power.Kind == PowerKingSelect && s.Power.KingFirst != nil {
		pick := *s.Power.KingFirst
		msg.KingFirstPick = &pick
	}
	if s.Penalty != nil {
		msg.Penalty = &PenaltyView{PlayerIdx: s.Penalty.PlayerIdx, UntilUnixMs: s.Penalty.Until.UnixMilli()}
	}
	if s.turnTimer.Active() {
		if s.turnTimer.Frozen() {
			msg.TurnRemainingMS = s.turnTimer.Remaining().Milliseconds()
		} else {
			msg.TurnEndsAtUnixMs = s.turnTimer.Deadline().UnixMilli()
		}
	}
	if s.Phase == PhaseMemorize && s.memTimer.Active() && !s.memTimer.Frozen() {
		msg.MemorizeEndsAtUnixMs = s.memTimer.Deadline().UnixMilli()
	}
	return msg
}
