package game

import (
	"errors"
	"math/rand/v2"
)

// DeckSize is the number of cards in a fresh deck: two 52-card decks plus
// twelve jokers (six of each kind).
const DeckSize = 116

// ErrDeckExhausted signals a draw or deal from an empty draw pile. With 116
// cards against at most ~20 in play this is an invariant violation, not a
// normal runtime path; the round is aborted when it surfaces.
var ErrDeckExhausted = errors.New("draw pile exhausted")

// Deck owns the shuffled draw pile and the discard pile. Gameplay rules only
// ever see the top discard; the rest of the pile is kept so the card count
// invariant can be checked.
type Deck struct {
	cards    []Card // draw pile; cards leave from the end
	discards []Card // discard pile; last element is the top
}

// NewDeck builds the 116-card deck and applies a uniform shuffle.
// rand.Shuffle performs a Fisher-Yates permutation.
func NewDeck() *Deck {
	cards := make([]Card, 0, DeckSize)
	for copyIdx := 0; copyIdx < 2; copyIdx++ {
		for suit := Clubs; suit <= Spades; suit++ {
			for rank := RankAce; rank <= RankKing; rank++ {
				cards = append(cards, Card{Rank: rank, Suit: suit, Copy: copyIdx})
			}
		}
	}
	for i := 0; i < 6; i++ {
		cards = append(cards, Card{Joker: JokerOne, Copy: i})
		cards = append(cards, Card{Joker: JokerTwo, Copy: i})
	}
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// Deal removes n cards from the end of the draw pile.
func (d *Deck) Deal(n int) ([]Card, error) {
	if len(d.cards) < n {
		return nil, ErrDeckExhausted
	}
	dealt := make([]Card, n)
	copy(dealt, d.cards[len(d.cards)-n:])
	d.cards = d.cards[:len(d.cards)-n]
	return dealt, nil
}

// Draw pops a single card from the draw pile.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckExhausted
	}
	c := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return c, nil
}

// DiscardTop places a card on top of the discard pile.
func (d *Deck) DiscardTop(c Card) {
	d.discards = append(d.discards, c)
}

// PeekDiscardTop returns the top discard without removing it. The second
// return value is false while the discard pile is empty.
func (d *Deck) PeekDiscardTop() (Card, bool) {
	if len(d.discards) == 0 {
		return Card{}, false
	}
	return d.discards[len(d.discards)-1], true
}

// Remaining returns the draw pile size.
func (d *Deck) Remaining() int { return len(d.cards) }

// Discarded returns the discard pile size.
func (d *Deck) Discarded() int { return len(d.discards) }
