package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"bombom-game-server/auth"
	"bombom-game-server/game"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Name     string
	UserID   string
	Session  *game.Session
	PlayerID int // 0 or 1 within the session
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "tag", "ws", "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "auth":
		c.handleAuth(envelope.Raw)
	case "set_name":
		c.handleSetName(envelope.Raw)
	case "rejoin":
		c.handleRejoin(envelope.Raw)
	case "toggle_ready":
		c.postAction(game.Action{Type: game.ActionToggleReady})
	case "memorize_peek":
		c.handleSlotAction(envelope.Raw, game.ActionMemorizePeek)
	case "draw_card":
		c.postAction(game.Action{Type: game.ActionDrawCard})
	case "discard_drawn":
		c.postAction(game.Action{Type: game.ActionDiscardDrawn})
	case "swap_drawn":
		c.handleSlotAction(envelope.Raw, game.ActionSwapDrawnInto)
	case "activate_power":
		c.postAction(game.Action{Type: game.ActionActivatePower})
	case "resolve_jack":
		c.handleSlotAction(envelope.Raw, game.ActionResolveJackTarget)
	case "resolve_queen":
		c.handleSlotAction(envelope.Raw, game.ActionResolveQueenTarget)
	case "resolve_king":
		c.handleResolveKing(envelope.Raw)
	case "quick_match":
		c.handleSlotAction(envelope.Raw, game.ActionQuickMatch)
	case "declare_bombom":
		c.postAction(game.Action{Type: game.ActionDeclareBombom})
	case "cancel_bombom":
		c.postAction(game.Action{Type: game.ActionCancelBombom})
	case "confirm_showtime":
		c.postAction(game.Action{Type: game.ActionConfirmShowTime})
	case "next_round":
		c.postAction(game.Action{Type: game.ActionRequestNextRound})
	case "quit":
		c.postAction(game.Action{Type: game.ActionQuit})
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid auth message.")
		return
	}
	if c.Hub.Config.AuthBaseURL == "" {
		c.sendError("Server auth not configured.")
		return
	}

	claims, err := auth.ValidateToken(c.Hub.Config.AuthBaseURL, msg.Token)
	if err != nil {
		slog.Warn("token validation failed", "tag", "ws", "err", err)
		c.sendError("Invalid token.")
		return
	}

	c.UserID = auth.UserIDFromClaims(claims)
	displayName := auth.DisplayNameFromClaims(claims)
	if c.Name == "" {
		c.Name = displayName
	}

	ok := AuthOkMsg{Type: "auth_ok", UserID: c.UserID, DisplayName: displayName}
	data, _ := json.Marshal(ok)
	c.trySend(data)

	// A refresh drops the socket but the session keeps running; offer the
	// authenticated user their seat back before matchmaking.
	if sess, playerIdx, token, err := c.Hub.Matchmaker.RejoinByUser(c.UserID); err == nil {
		c.completeRejoin(sess, playerIdx, token)
	}
}

func (c *Client) handleSetName(raw json.RawMessage) {
	var msg SetNameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid set_name message.")
		return
	}

	if len(msg.Name) < 1 || len(msg.Name) > c.Hub.Config.MaxNameLength {
		c.sendError(fmt.Sprintf("Name must be between 1 and %d characters.", c.Hub.Config.MaxNameLength))
		return
	}

	if c.Session != nil && !c.Session.Finished {
		c.sendError("Cannot change name while in a match.")
		return
	}

	c.Name = msg.Name
	c.Session = nil
	c.PlayerID = 0

	c.Hub.Matchmaker.Enqueue(c)

	waitMsg := WaitingForMatchMsg{Type: "waiting_for_match"}
	data, _ := json.Marshal(waitMsg)
	c.trySend(data)
}

func (c *Client) handleRejoin(raw json.RawMessage) {
	var msg RejoinMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid rejoin message.")
		return
	}

	sess, playerIdx, err := c.Hub.Matchmaker.Rejoin(msg.SessionID, msg.RejoinToken, msg.Name)
	if err != nil {
		c.sendError("Cannot rejoin: " + err.Error())
		return
	}
	if msg.Name != "" {
		c.Name = msg.Name
	}
	c.completeRejoin(sess, playerIdx, msg.RejoinToken)
}

func (c *Client) completeRejoin(sess *game.Session, playerIdx int, token string) {
	c.Session = sess
	c.PlayerID = playerIdx

	msg := RejoinedMsg{Type: "rejoined", SessionID: sess.ID, RejoinToken: token, YourIndex: playerIdx}
	data, _ := json.Marshal(msg)
	c.trySend(data)

	select {
	case sess.Actions <- game.Action{
		Type:      game.ActionRejoinCompleted,
		PlayerIdx: playerIdx,
		NewSend:   c.Send,
	}:
	case <-sess.Done:
	}
}

func (c *Client) handleSlotAction(raw json.RawMessage, actionType game.ActionType) {
	var msg SlotMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid message payload.")
		return
	}
	c.postAction(game.Action{Type: actionType, SlotIdx: msg.Slot})
}

func (c *Client) handleResolveKing(raw json.RawMessage) {
	var msg KingTargetMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid resolve_king message.")
		return
	}
	target := c.PlayerID
	if msg.Opponent {
		target = 1 - c.PlayerID
	}
	c.postAction(game.Action{
		Type:            game.ActionResolveKingTarget,
		SlotIdx:         msg.Slot,
		TargetPlayerIdx: target,
	})
}

// postAction stamps the action with the client's seat and forwards it to the
// session goroutine. Once the session loop has exited nothing drains Actions,
// so the send races against Done instead of blocking the read pump.
func (c *Client) postAction(a game.Action) {
	if c.Session == nil {
		c.sendError("You are not in a match.")
		return
	}
	a.PlayerIdx = c.PlayerID
	select {
	case c.Session.Actions <- a:
	case <-c.Session.Done:
		c.sendError("The match has already ended.")
	}
}

func (c *Client) sendError(message string) {
	msg := ErrorMsg{Type: "error", Message: message}
	data, _ := json.Marshal(msg)
	c.trySend(data)
}

func (c *Client) trySend(data []byte) {
	select {
	case c.Send <- data:
	default:
	}
}
