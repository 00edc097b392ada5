package game

import "testing"

func testCards(n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = Card{Rank: Rank(i), Suit: Clubs}
	}
	return cards
}

func TestHandTakeLeavesGap(t *testing.T) {
	h := NewHand(testCards(4))
	c := h.Take(1)
	if c.Rank != 1 {
		t.Errorf("expected rank 1, got %d", c.Rank)
	}
	if h.Occupied(1) {
		t.Error("slot 1 should be empty after Take")
	}
	if len(h.Slots) != 4 {
		t.Errorf("slots must not be renumbered, got %d", len(h.Slots))
	}
	if h.OccupiedCount() != 3 {
		t.Errorf("expected 3 occupied, got %d", h.OccupiedCount())
	}
	// Neighbors keep their indices.
	if h.Slots[2].Card.Rank != 2 {
		t.Errorf("slot 2 should still hold rank 2, got %d", h.Slots[2].Card.Rank)
	}
}

func TestHandAppendAfterGap(t *testing.T) {
	h := NewHand(testCards(4))
	h.Take(0)
	h.Append(Card{Rank: RankKing, Suit: Spades}, Card{Joker: JokerOne})

	if len(h.Slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(h.Slots))
	}
	if h.Occupied(0) {
		t.Error("the gap must not be refilled by Append")
	}
	if !h.Occupied(4) || !h.Occupied(5) {
		t.Error("appended cards should occupy new trailing slots")
	}
	if h.Slots[4].FaceUp || h.Slots[5].FaceUp {
		t.Error("appended cards must be face-down")
	}
}

func TestHandReplace(t *testing.T) {
	h := NewHand(testCards(4))
	h.SetFaceUp(2, true)
	old := h.Replace(2, Card{Rank: RankQueen, Suit: Hearts})
	if old.Rank != 2 {
		t.Errorf("expected old rank 2, got %d", old.Rank)
	}
	if h.Slots[2].FaceUp {
		t.Error("replaced card must enter face-down")
	}
	if h.Slots[2].Card.Rank != RankQueen {
		t.Errorf("expected queen in slot 2, got %v", h.Slots[2].Card)
	}
}

func TestHandHideAndRevealAll(t *testing.T) {
	h := NewHand(testCards(4))
	h.SetFaceUp(0, true)
	h.SetFaceUp(3, true)
	h.HideAll()
	for i, s := range h.Slots {
		if s.FaceUp {
			t.Errorf("slot %d should be face-down after HideAll", i)
		}
	}

	h.Take(1)
	h.RevealAll()
	for i, s := range h.Slots {
		if s.Empty {
			continue
		}
		if !s.FaceUp {
			t.Errorf("slot %d should be face-up after RevealAll", i)
		}
	}
	if h.Slots[1].FaceUp {
		t.Error("an empty slot has nothing to reveal")
	}
}

func TestHandBounds(t *testing.T) {
	h := NewHand(testCards(2))
	if h.Occupied(-1) || h.Occupied(2) {
		t.Error("out-of-range indices are never occupied")
	}
	if h.InBounds(-1) || h.InBounds(2) {
		t.Error("out-of-range indices are not in bounds")
	}
	if !h.InBounds(0) || !h.InBounds(1) {
		t.Error("valid indices should be in bounds")
	}
}
