// Package bot is the façade the rule engine talks to: one method per
// decision point, taking a read-only game snapshot and returning the
// decision shape the engine expects. Normal play runs the tree search;
// during the final coalition round the service consults the shared plan
// first. Missing knowledge never errors, it degrades to unknown.
package bot

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

// CardInfo is a card as the rule engine reveals it: rank plus whether its
// action has already been consumed from the discard pile.
type CardInfo struct {
	Rank   engine.Rank `json:"rank"`
	Played bool        `json:"played"`
}

// PlayerSnapshot is one seat as this bot sees it. Known holds only the
// positions the rule engine says this bot is entitled to know.
type PlayerSnapshot struct {
	ID        uuid.UUID        `json:"id"`
	HandSize  int              `json:"handSize"`
	Known     map[int]CardInfo `json:"known,omitempty"`
	Coalition bool             `json:"coalition"`
}

// GameSnapshot is the read-only view the rule engine supplies with every
// decision call. StockRanks, when present and complete, carries the full
// ordered draw pile (bottom to top) and unlocks the exact coalition
// solver.
type GameSnapshot struct {
	GameID  uuid.UUID        `json:"gameId"`
	Players []PlayerSnapshot `json:"players"`
	Current int              `json:"current"`
	Turn    int              `json:"turn"`

	// Discard is ordered bottom to top.
	Discard    []CardInfo    `json:"discard"`
	StockSize  int           `json:"stockSize"`
	StockRanks []engine.Rank `json:"stockRanks,omitempty"`
	Pending    *CardInfo     `json:"pending,omitempty"`

	CallerID       uuid.UUID `json:"callerId"`
	LeaderID       uuid.UUID `json:"leaderId"`
	FinalRound     bool      `json:"finalRound"`
	FinalTurnsLeft int       `json:"finalTurnsLeft"`
}

// RevealedCard is knowledge the rule engine surfaced since the last call:
// a peek result, a swap outcome, or own-hand knowledge.
type RevealedCard struct {
	PlayerID uuid.UUID `json:"playerId"`
	Position int       `json:"position"`
	Card     CardInfo  `json:"card"`
}

// CardSwap reports two hand slots whose cards were exchanged since the
// last call (a Jack or Queen swap the bot watched). A side whose player
// is not in the snapshot means the card left the tracked hands, and the
// belief there is dropped instead of moved.
type CardSwap struct {
	From TargetRef `json:"from"`
	To   TargetRef `json:"to"`
}

// DecisionContext carries the per-decision extras: the live discard top,
// the action card being resolved, reveals and swap outcomes to fold into
// memory and the rank an open toss-in window is matching.
type DecisionContext struct {
	DiscardTop *CardInfo      `json:"discardTop,omitempty"`
	ActionRank engine.Rank    `json:"actionRank,omitempty"`
	Revealed   []RevealedCard `json:"revealed,omitempty"`
	Swapped    []CardSwap     `json:"swapped,omitempty"`
	TossRank   engine.Rank    `json:"tossRank,omitempty"`
}

func (g *GameSnapshot) playerIndex(id uuid.UUID) (uint8, bool) {
	for i, p := range g.Players {
		if p.ID == id {
			return uint8(i), true
		}
	}
	return 0, false
}

func (g *GameSnapshot) stockFullyKnown() bool {
	return g.StockSize > 0 && len(g.StockRanks) == g.StockSize
}
