package game

// Player represents one seat in a session. Score accumulates across rounds
// within a match; the bombom cancellation budget spans the whole match.
type Player struct {
	Name string
	Send chan []byte // reference to the client's send channel

	Hand  *Hand
	Score int

	// Ready gates dealing: set in the lobby and again between rounds.
	Ready bool

	// BombomDeclared is true from declaration until ShowTime or cancellation.
	BombomDeclared bool
	// BombomCancelUsed is the single lifetime cancellation; once spent,
	// ShowTime is mandatory for this player's declarations.
	BombomCancelUsed bool

	// memPeeked tracks which own slots this player has inspected during the
	// current memorization countdown. Toggling a slot already in the set is
	// free; new slots are limited by the configured budget.
	memPeeked map[int]bool
}

// NewPlayer creates a new Player with the given name and send channel.
func NewPlayer(name string, send chan []byte) *Player {
	return &Player{
		Name:      name,
		Send:      send,
		memPeeked: make(map[int]bool),
	}
}

func (p *Player) resetForRound(cards []Card) {
	p.Hand = NewHand(cards)
	p.Ready = false
	p.BombomDeclared = false
	p.memPeeked = make(map[int]bool)
}
