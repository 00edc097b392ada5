package matchmaking

import (
	"encoding/json"
	"testing"
	"time"

	"bombom-game-server/config"
	"bombom-game-server/ws"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.TurnLimitSec = 1
	cfg.MemorizePrepSec = 1
	cfg.MemorizeCountdownSec = 1
	return cfg
}

func TestMatchmakerPairsPlayers(t *testing.T) {
	cfg := testConfig()
	mm := NewMatchmaker(cfg, nil)
	go mm.Run()

	send1 := make(chan []byte, 100)
	send2 := make(chan []byte, 100)

	c1 := &ws.Client{Send: send1, Name: "Alice"}
	c2 := &ws.Client{Send: send2, Name: "Bob"}

	mm.Enqueue(c1)
	mm.Enqueue(c2)

	// Wait for pairing
	time.Sleep(200 * time.Millisecond)

	checkMatchFound := func(ch chan []byte, expectedOpponent string, expectedIndex int) {
		select {
		case msg := <-ch:
			var mf ws.MatchFoundMsg
			if err := json.Unmarshal(msg, &mf); err != nil {
				t.Fatalf("failed to unmarshal MatchFound: %v", err)
			}
			if mf.Type != "match_found" {
				t.Errorf("expected type 'match_found', got %q", mf.Type)
			}
			if mf.OpponentName != expectedOpponent {
				t.Errorf("expected opponent name %q, got %q", expectedOpponent, mf.OpponentName)
			}
			if mf.YourIndex != expectedIndex {
				t.Errorf("expected yourIndex=%d, got %d", expectedIndex, mf.YourIndex)
			}
			if mf.RejoinToken == "" {
				t.Error("expected a rejoin token")
			}
			if mf.SessionID == "" {
				t.Error("expected a session ID")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for MatchFound message")
		}
	}

	checkMatchFound(send1, "Bob", 0)
	checkMatchFound(send2, "Alice", 1)

	if c1.Session == nil {
		t.Fatal("client 1 should have a session assigned")
	}
	if c2.Session == nil {
		t.Fatal("client 2 should have a session assigned")
	}
	if c1.Session != c2.Session {
		t.Error("both clients should be in the same session")
	}
}

func TestMatchmakerLeaveQueue(t *testing.T) {
	cfg := testConfig()
	mm := NewMatchmaker(cfg, nil)
	go mm.Run()

	send1 := make(chan []byte, 100)
	send2 := make(chan []byte, 100)
	send3 := make(chan []byte, 100)

	c1 := &ws.Client{Send: send1, Name: "Alice"}
	c2 := &ws.Client{Send: send2, Name: "Bob"}
	c3 := &ws.Client{Send: send3, Name: "Carol"}

	mm.Enqueue(c1)
	time.Sleep(50 * time.Millisecond)
	mm.LeaveQueue(c1)

	mm.Enqueue(c2)
	mm.Enqueue(c3)
	time.Sleep(200 * time.Millisecond)

	if c1.Session != nil {
		t.Error("client who left queue should not be in a session")
	}
	if c2.Session == nil || c3.Session == nil {
		t.Fatal("remaining clients should have been paired")
	}
	if c2.Session != c3.Session {
		t.Error("remaining clients should share a session")
	}

	select {
	case msg := <-send1:
		var mf ws.MatchFoundMsg
		if err := json.Unmarshal(msg, &mf); err == nil && mf.Type == "match_found" {
			t.Error("client who left queue should not receive match_found")
		}
	case <-time.After(100 * time.Millisecond):
		// expected: no match
	}
}

func TestMatchmakerRejoin(t *testing.T) {
	cfg := testConfig()
	mm := NewMatchmaker(cfg, nil)
	go mm.Run()

	send1 := make(chan []byte, 100)
	send2 := make(chan []byte, 100)

	c1 := &ws.Client{Send: send1, Name: "Alice", UserID: "user-alice"}
	c2 := &ws.Client{Send: send2, Name: "Bob", UserID: "user-bob"}

	mm.Enqueue(c1)
	mm.Enqueue(c2)
	time.Sleep(200 * time.Millisecond)

	if c1.Session == nil {
		t.Fatal("expected session")
	}
	s := c1.Session
	token := s.RejoinTokens[0]

	// Not disconnected yet: rejoin must be refused.
	if _, _, err := mm.Rejoin(s.ID, token, "Alice"); err == nil {
		t.Error("rejoin should fail while the seat is still connected")
	}

	s.DisconnectedIdx = 0

	sess, idx, err := mm.Rejoin(s.ID, token, "Alice2")
	if err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	if sess != s || idx != 0 {
		t.Errorf("expected seat 0 of the original session, got idx=%d", idx)
	}
	if sess.Players[0].Name != "Alice2" {
		t.Errorf("rejoin should update the display name, got %q", sess.Players[0].Name)
	}

	if _, _, err := mm.Rejoin(s.ID, "bogus-token", ""); err == nil {
		t.Error("rejoin with an invalid token should fail")
	}
	if _, _, err := mm.Rejoin("no-such-session", token, ""); err == nil {
		t.Error("rejoin with an unknown session ID should fail")
	}
}

func TestMatchmakerRejoinByUser(t *testing.T) {
	cfg := testConfig()
	mm := NewMatchmaker(cfg, nil)
	go mm.Run()

	send1 := make(chan []byte, 100)
	send2 := make(chan []byte, 100)

	c1 := &ws.Client{Send: send1, Name: "Alice", UserID: "user-alice"}
	c2 := &ws.Client{Send: send2, Name: "Bob", UserID: "user-bob"}

	mm.Enqueue(c1)
	mm.Enqueue(c2)
	time.Sleep(200 * time.Millisecond)

	if c1.Session == nil {
		t.Fatal("expected session")
	}
	s := c1.Session

	if _, _, _, err := mm.RejoinByUser("user-bob"); err == nil {
		t.Error("rejoin-by-user should fail while the seat is connected")
	}

	s.DisconnectedIdx = 1

	sess, idx, token, err := mm.RejoinByUser("user-bob")
	if err != nil {
		t.Fatalf("rejoin-by-user failed: %v", err)
	}
	if sess != s || idx != 1 {
		t.Errorf("expected seat 1 of the original session, got idx=%d", idx)
	}
	if token != s.RejoinTokens[1] {
		t.Error("rejoin-by-user should return the seat's rejoin token")
	}

	if _, _, _, err := mm.RejoinByUser("user-nobody"); err == nil {
		t.Error("rejoin-by-user for an unknown user should fail")
	}
}
