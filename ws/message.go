package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg carries a JWT. Optional; required only for persisted history
// and ratings.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// SetNameMsg declares a display name and enters the matchmaking queue.
type SetNameMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// SlotMsg is the shared payload for messages that target one of the
// sender's own hand slots (memorize_peek, swap_drawn, resolve_jack,
// quick_match).
type SlotMsg struct {
	Type string `json:"type"`
	Slot int    `json:"slot"`
}

// OpponentSlotMsg targets a slot in the opponent's hand (resolve_queen).
type OpponentSlotMsg struct {
	Type string `json:"type"`
	Slot int    `json:"slot"`
}

// KingTargetMsg is one of the two incremental picks of a King swap.
// Opponent selects whose hand the slot belongs to.
type KingTargetMsg struct {
	Type     string `json:"type"`
	Opponent bool   `json:"opponent"`
	Slot     int    `json:"slot"`
}

// RejoinMsg is sent by the client to rejoin a session after reconnect or
// page refresh.
type RejoinMsg struct {
	Type        string `json:"type"`
	SessionID   string `json:"sessionId"`
	RejoinToken string `json:"rejoinToken"`
	Name        string `json:"name"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AuthOkMsg confirms a successful auth message.
type AuthOkMsg struct {
	Type        string `json:"type"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// WaitingForMatchMsg confirms the player is in the matchmaking queue.
type WaitingForMatchMsg struct {
	Type string `json:"type"`
}

// MatchFoundMsg is sent when two players are paired.
type MatchFoundMsg struct {
	Type           string `json:"type"`
	SessionID      string `json:"sessionId"`
	RejoinToken    string `json:"rejoinToken"`
	YourIndex      int    `json:"yourIndex"`
	OpponentName   string `json:"opponentName"`
	OpponentUserID string `json:"opponentUserId,omitempty"`
	HandSize       int    `json:"handSize"`
	TurnLimitSec   int    `json:"turnLimitSec"`
}

// RejoinedMsg confirms a successful rejoin; the full session state follows
// as a separate game_state message.
type RejoinedMsg struct {
	Type        string `json:"type"`
	SessionID   string `json:"sessionId"`
	RejoinToken string `json:"rejoinToken"`
	YourIndex   int    `json:"yourIndex"`
}
