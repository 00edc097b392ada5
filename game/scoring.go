package game

// CardValue returns the point value of a card at ShowTime:
// Ace 1, Two..Nine face value, Ten 0, Jack/Queen/King 10,
// joker kind 1 -1, joker kind 2 -2.
func CardValue(c Card) int {
	switch c.Joker {
	case JokerOne:
		return -1
	case JokerTwo:
		return -2
	}
	switch {
	case c.Rank == RankAce:
		return 1
	case c.Rank <= RankNine:
		return int(c.Rank) + 1
	case c.Rank == RankTen:
		return 0
	default: // Jack, Queen, King
		return 10
	}
}

// HandTotal sums the values of all occupied slots. Empty slots contribute 0.
func HandTotal(h *Hand) int {
	total := 0
	for _, s := range h.Slots {
		if !s.Empty {
			total += CardValue(s.Card)
		}
	}
	return total
}

// RoundWinner returns the index of the player with the strictly lower total,
// or -1 on a tie.
func RoundWinner(total0, total1 int) int {
	switch {
	case total0 < total1:
		return 0
	case total1 < total0:
		return 1
	default:
		return -1
	}
}
