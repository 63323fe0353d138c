package bot

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

// TurnAction is the top-level choice at turn start.
type TurnAction string

const (
	TurnDraw        TurnAction = "draw"
	TurnTakeDiscard TurnAction = "take-discard"
	TurnCallVinto   TurnAction = "call-vinto"
)

// TurnDecision is the answer to "what do you do this turn".
type TurnDecision struct {
	Action TurnAction `json:"action"`
}

// TargetRef points at one card by the ids the rule engine gave us; the
// service never invents identities of its own.
type TargetRef struct {
	PlayerID uuid.UUID `json:"playerId"`
	Position int       `json:"position"`
}

// TargetDecision is the answer to "where does this action go". ShouldSwap
// only applies to the peek-and-swap action; DeclaredRank only to the King
// declaration.
type TargetDecision struct {
	Targets      []TargetRef `json:"targets"`
	ShouldSwap   bool        `json:"shouldSwap,omitempty"`
	DeclaredRank engine.Rank `json:"declaredRank,omitempty"`
}
