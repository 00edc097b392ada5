package game

// Suit identifies one of the four suits of a ranked card. Suits carry no
// gameplay meaning; together with the deck copy they give each physical card
// a distinct display identity even though ranks repeat.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// String returns the protocol string for a Suit.
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// Rank is the 0-12 face value of a card: 0 = Ace, 1..8 = Two..Nine,
// 9 = Ten, 10 = Jack, 11 = Queen, 12 = King.
type Rank int

const (
	RankAce   Rank = 0
	RankTwo   Rank = 1
	RankNine  Rank = 8
	RankTen   Rank = 9
	RankJack  Rank = 10
	RankQueen Rank = 11
	RankKing  Rank = 12
)

// JokerKind distinguishes the two joker point values. Zero means the card
// is not a joker.
type JokerKind int

const (
	NotJoker JokerKind = 0
	JokerOne JokerKind = 1
	JokerTwo JokerKind = 2
)

// Card is an immutable card value. Ranked cards have a Rank, Suit and Copy
// (which of the two physical decks they came from); jokers carry only their
// kind.
type Card struct {
	Rank  Rank      `json:"rank"`
	Suit  Suit      `json:"suit"`
	Joker JokerKind `json:"joker"`
	Copy  int       `json:"copy"`
}

// IsJoker reports whether the card is one of the twelve jokers.
func (c Card) IsJoker() bool { return c.Joker != NotJoker }

// IsFaceCard reports whether the card triggers a power when drawn
// (Jack, Queen or King).
func (c Card) IsFaceCard() bool {
	return !c.IsJoker() && c.Rank >= RankJack && c.Rank <= RankKing
}

// Matches implements the quick-match rule: two jokers match only when they
// are the same kind, a joker never matches a ranked card, and two ranked
// cards match iff their ranks are equal.
func (c Card) Matches(o Card) bool {
	if c.IsJoker() || o.IsJoker() {
		return c.Joker == o.Joker && c.IsJoker() && o.IsJoker()
	}
	return c.Rank == o.Rank
}

// String returns a short human-readable form for logs.
func (c Card) String() string {
	if c.IsJoker() {
		if c.Joker == JokerOne {
			return "joker-1"
		}
		return "joker-2"
	}
	names := [...]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
	if c.Rank < 0 || int(c.Rank) >= len(names) {
		return "?"
	}
	return names[c.Rank] + " of " + c.Suit.String()
}
