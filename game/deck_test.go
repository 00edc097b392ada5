package game

import "testing"

func TestNewDeckComposition(t *testing.T) {
	d := NewDeck()
	if d.Remaining() != DeckSize {
		t.Fatalf("expected %d cards, got %d", DeckSize, d.Remaining())
	}

	rankCounts := make(map[Rank]int)
	suitCounts := make(map[Suit]int)
	jokerCounts := make(map[JokerKind]int)
	seen := make(map[Card]bool)
	for _, c := range d.cards {
		if seen[c] {
			t.Fatalf("duplicate physical card: %v", c)
		}
		seen[c] = true
		if c.IsJoker() {
			jokerCounts[c.Joker]++
			continue
		}
		rankCounts[c.Rank]++
		suitCounts[c.Suit]++
	}

	for rank := RankAce; rank <= RankKing; rank++ {
		if rankCounts[rank] != 8 {
			t.Errorf("rank %d: expected 8 copies (2 decks x 4 suits), got %d", rank, rankCounts[rank])
		}
	}
	for suit := Clubs; suit <= Spades; suit++ {
		if suitCounts[suit] != 26 {
			t.Errorf("suit %v: expected 26 cards, got %d", suit, suitCounts[suit])
		}
	}
	if jokerCounts[JokerOne] != 6 || jokerCounts[JokerTwo] != 6 {
		t.Errorf("expected 6 jokers of each kind, got %d and %d", jokerCounts[JokerOne], jokerCounts[JokerTwo])
	}
}

func TestDeckDealAndDraw(t *testing.T) {
	d := NewDeck()

	cards, err := d.Deal(InitialHandSize)
	if err != nil {
		t.Fatalf("deal failed: %v", err)
	}
	if len(cards) != InitialHandSize {
		t.Fatalf("expected %d cards, got %d", InitialHandSize, len(cards))
	}
	if d.Remaining() != DeckSize-InitialHandSize {
		t.Errorf("expected %d remaining, got %d", DeckSize-InitialHandSize, d.Remaining())
	}

	c, err := d.Draw()
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	d.DiscardTop(c)
	top, ok := d.PeekDiscardTop()
	if !ok || top != c {
		t.Errorf("discard top should be the discarded card")
	}
	// Peeking does not remove.
	if d.Discarded() != 1 {
		t.Errorf("expected 1 discard, got %d", d.Discarded())
	}
}

func TestDeckExhaustion(t *testing.T) {
	d := &Deck{}
	if _, err := d.Draw(); err != ErrDeckExhausted {
		t.Errorf("expected ErrDeckExhausted on empty draw, got %v", err)
	}
	if _, err := d.Deal(1); err != ErrDeckExhausted {
		t.Errorf("expected ErrDeckExhausted on empty deal, got %v", err)
	}

	d = &Deck{cards: []Card{{Rank: RankAce, Suit: Spades}}}
	if _, err := d.Deal(2); err != ErrDeckExhausted {
		t.Errorf("expected ErrDeckExhausted on short deal, got %v", err)
	}
	// A failed deal must not consume cards.
	if d.Remaining() != 1 {
		t.Errorf("failed deal should leave the pile intact, got %d", d.Remaining())
	}
}

func TestPeekEmptyDiscard(t *testing.T) {
	d := NewDeck()
	if _, ok := d.PeekDiscardTop(); ok {
		t.Error("fresh deck should have no discard top")
	}
}
