// Package engine implements the Vinto simulation core used by the bot:
// the card model, a compact search state, the strategically pruned move
// generator, the pure state transition, and the position evaluator.
//
// The package is deliberately dependency-free so the search hot path
// allocates and links nothing beyond the standard library.
package engine

import (
	"encoding/json"
	"fmt"
)

// Rank identifies a card rank. Joker is rank 0; for every other rank the
// numeric value equals the enum value (Ace=1 .. Ten=10, Jack=11, Queen=12,
// King=13).
type Rank uint8

const (
	RankJoker Rank = iota
	RankAce
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing

	NumRanks = 14
)

// Value returns the point value of the rank. Joker scores -1; every other
// rank scores its face value. Out-of-range ranks (the undeterminized
// sentinel) score 0.
func (r Rank) Value() int {
	switch {
	case r == RankJoker:
		return -1
	case r >= NumRanks:
		return 0
	default:
		return int(r)
	}
}

// ActionKind is the special action a rank carries when played from the
// discard pile or discarded after a draw.
type ActionKind uint8

const (
	ActionNone      ActionKind = iota
	ActionPeekOwn              // Seven, Eight
	ActionPeekOther            // Nine, Ten
	ActionSwapBlind            // Jack
	ActionPeekSwap             // Queen
	ActionDeclare              // King — rank declaration with cascade
	ActionForceDraw            // Ace — force an opponent to draw
)

// Action returns the action kind associated with the rank.
func (r Rank) Action() ActionKind {
	switch r {
	case RankSeven, RankEight:
		return ActionPeekOwn
	case RankNine, RankTen:
		return ActionPeekOther
	case RankJack:
		return ActionSwapBlind
	case RankQueen:
		return ActionPeekSwap
	case RankKing:
		return ActionDeclare
	case RankAce:
		return ActionForceDraw
	default:
		return ActionNone
	}
}

// HasAction reports whether the rank carries a special action.
func (r Rank) HasAction() bool { return r.Action() != ActionNone }

var rankNames = [NumRanks]string{
	"Joker", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K",
}

func (r Rank) String() string {
	if r < NumRanks {
		return rankNames[r]
	}
	return fmt.Sprintf("Rank(%d)", uint8(r))
}

// ParseRank is the inverse of String.
func ParseRank(s string) (Rank, error) {
	for i, name := range rankNames {
		if name == s {
			return Rank(i), nil
		}
	}
	return 0, fmt.Errorf("engine: unknown rank %q", s)
}

// MarshalJSON encodes the rank as its string name.
func (r Rank) MarshalJSON() ([]byte, error) {
	if r >= NumRanks {
		return nil, fmt.Errorf("engine: invalid rank %d", uint8(r))
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a rank from its string name.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRank(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// DeckSize is the number of cards in a full Vinto deck: 4 of each rank
// Ace through King plus 2 Jokers.
const DeckSize = 54

// RankCount returns how many copies of the rank a full deck holds.
func RankCount(r Rank) int {
	if r == RankJoker {
		return 2
	}
	return 4
}

// FullDeckCounts returns the per-rank card counts of a full deck.
func FullDeckCounts() [NumRanks]int {
	var counts [NumRanks]int
	for r := Rank(0); r < NumRanks; r++ {
		counts[r] = RankCount(r)
	}
	return counts
}

// Card is a dealt card. The rank never changes; Played marks an action
// card whose action has already been consumed from the discard pile.
type Card struct {
	Rank   Rank `json:"rank"`
	Played bool `json:"played,omitempty"`
}

// Value returns the point value of the card.
func (c Card) Value() int { return c.Rank.Value() }

// HasUnusedAction reports whether the card still offers its action.
func (c Card) HasUnusedAction() bool { return c.Rank.HasAction() && !c.Played }

func (c Card) String() string {
	if c.Played {
		return c.Rank.String() + "*"
	}
	return c.Rank.String()
}

// HandScore sums the point values of a hand.
func HandScore(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.Value()
	}
	return total
}
