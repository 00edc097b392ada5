package ws

import (
	"encoding/json"
	"testing"
	"time"

	"bombom-game-server/config"
	"bombom-game-server/game"
)

// finishedSession builds a session whose loop has already exited.
func finishedSession(t *testing.T) *game.Session {
	t.Helper()
	cfg := config.Defaults()
	p0 := game.NewPlayer("Alice", make(chan []byte, 100))
	p1 := game.NewPlayer("Bob", make(chan []byte, 100))
	s := game.NewSession("test-session", cfg, p0, p1)
	go s.Run()

	s.Actions <- game.Action{Type: game.ActionQuit, PlayerIdx: 1}
	select {
	case <-s.Done:
	case <-time.After(time.Second):
		t.Fatal("session did not finish")
	}
	return s
}

func TestPostActionAfterSessionEnd(t *testing.T) {
	s := finishedSession(t)

	// Saturate the action buffer; nothing drains it anymore.
	for i := 0; i < cap(s.Actions); i++ {
		s.Actions <- game.Action{}
	}

	send := make(chan []byte, 10)
	c := &Client{Send: send, Session: s, PlayerID: 0}

	done := make(chan struct{})
	go func() {
		c.postAction(game.Action{Type: game.ActionDrawCard})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("postAction blocked on a finished session")
	}

	select {
	case data := <-send:
		var msg ErrorMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("failed to unmarshal error: %v", err)
		}
		if msg.Type != "error" {
			t.Errorf("expected type 'error', got %q", msg.Type)
		}
	default:
		t.Error("expected an error message for the late action")
	}
}
