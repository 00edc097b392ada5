package game

// InitialHandSize is the number of slots dealt to each player.
const InitialHandSize = 4

// Slot is one position in a hand: either empty (its card was legitimately
// discarded) or holding a card that is face-up or face-down.
type Slot struct {
	Card   Card
	FaceUp bool
	Empty  bool
}

// Hand is a player's ordered sequence of slots. Slots are never renumbered:
// a successful quick-match leaves a gap, and penalty cards are appended at
// the end, so indices stay stable for the whole round.
type Hand struct {
	Slots []Slot
}

// NewHand creates a hand holding the given cards face-down.
func NewHand(cards []Card) *Hand {
	slots := make([]Slot, len(cards))
	for i, c := range cards {
		slots[i] = Slot{Card: c}
	}
	return &Hand{Slots: slots}
}

// OccupiedCount returns the number of non-empty slots.
func (h *Hand) OccupiedCount() int {
	n := 0
	for _, s := range h.Slots {
		if !s.Empty {
			n++
		}
	}
	return n
}

// Occupied reports whether index i is a valid, non-empty slot.
func (h *Hand) Occupied(i int) bool {
	return i >= 0 && i < len(h.Slots) && !h.Slots[i].Empty
}

// InBounds reports whether index i addresses an existing slot, empty or not.
func (h *Hand) InBounds(i int) bool {
	return i >= 0 && i < len(h.Slots)
}

// Replace puts card into slot i face-down and returns the card that was
// there. The caller must have checked occupancy per the active targeting rule.
func (h *Hand) Replace(i int, card Card) Card {
	old := h.Slots[i].Card
	h.Slots[i] = Slot{Card: card}
	return old
}

// Take removes the card from slot i, leaving the slot empty.
func (h *Hand) Take(i int) Card {
	c := h.Slots[i].Card
	h.Slots[i] = Slot{Empty: true}
	return c
}

// Append adds cards to the end of the hand, face-down. Used for the
// quick-match penalty draw; gaps are never reused.
func (h *Hand) Append(cards ...Card) {
	for _, c := range cards {
		h.Slots = append(h.Slots, Slot{Card: c})
	}
}

// SetFaceUp flips slot i.
func (h *Hand) SetFaceUp(i int, up bool) {
	h.Slots[i].FaceUp = up
}

// HideAll forces every occupied slot face-down.
func (h *Hand) HideAll() {
	for i := range h.Slots {
		h.Slots[i].FaceUp = false
	}
}

// RevealAll turns every occupied slot face-up (ShowTime).
func (h *Hand) RevealAll() {
	for i := range h.Slots {
		if !h.Slots[i].Empty {
			h.Slots[i].FaceUp = true
		}
	}
}
