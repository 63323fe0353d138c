package engine

import (
	"fmt"
	"strings"
)

// MoveKind tags the move union. Every consumer switches over all kinds;
// an unhandled kind is a programming error surfaced by the default case.
type MoveKind uint8

const (
	MoveDraw        MoveKind = iota // draw the top stock card
	MoveTakeDiscard                 // consume the discard top's unused action
	MoveSwap                        // place the pending card at Pos, discarding the old card
	MoveDiscard                     // discard the pending card; UseAction enters the action phase
	MoveUseAction                   // resolve the pending action against Targets
	MoveTossIn                      // toss the matching own card at Pos out of turn
	MoveCallVinto                   // end the round, starting the coalition final round
	MovePass                        // decline (toss-in window, degenerate search fallback)
)

var moveKindNames = map[MoveKind]string{
	MoveDraw:        "draw",
	MoveTakeDiscard: "take-discard",
	MoveSwap:        "swap",
	MoveDiscard:     "discard",
	MoveUseAction:   "use-action",
	MoveTossIn:      "toss-in",
	MoveCallVinto:   "call-vinto",
	MovePass:        "pass",
}

func (k MoveKind) String() string {
	if name, ok := moveKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("MoveKind(%d)", uint8(k))
}

// Target references a card position in some player's hand. For player-level
// actions (force-draw) Pos is -1.
type Target struct {
	Player uint8
	Pos    int8
}

// Move is the tagged union of everything a player can do. Kind-specific
// payloads:
//
//	MoveSwap, MoveTossIn    Pos
//	MoveDiscard             UseAction
//	MoveUseAction           Targets; DeclaredRank (King); WithSwap (Queen)
//
// Other kinds carry no payload.
type Move struct {
	Kind         MoveKind
	Pos          int8
	UseAction    bool
	Targets      []Target
	DeclaredRank Rank
	WithSwap     bool
}

func (m Move) String() string {
	switch m.Kind {
	case MoveSwap, MoveTossIn:
		return fmt.Sprintf("%s(%d)", m.Kind, m.Pos)
	case MoveDiscard:
		if m.UseAction {
			return "discard+action"
		}
		return "discard"
	case MoveUseAction:
		parts := make([]string, 0, len(m.Targets))
		for _, t := range m.Targets {
			parts = append(parts, fmt.Sprintf("p%d:%d", t.Player, t.Pos))
		}
		desc := strings.Join(parts, ",")
		if m.DeclaredRank != 0 {
			desc = "declare " + m.DeclaredRank.String()
		}
		if m.WithSwap {
			desc += "+swap"
		}
		return fmt.Sprintf("%s(%s)", m.Kind, desc)
	default:
		return m.Kind.String()
	}
}

// Equal compares two moves including payloads.
func (m Move) Equal(o Move) bool {
	if m.Kind != o.Kind || m.Pos != o.Pos || m.UseAction != o.UseAction ||
		m.DeclaredRank != o.DeclaredRank || m.WithSwap != o.WithSwap ||
		len(m.Targets) != len(o.Targets) {
		return false
	}
	for i := range m.Targets {
		if m.Targets[i] != o.Targets[i] {
			return false
		}
	}
	return true
}

// TargetsPlayer reports whether any target of the move references p's hand.
func (m Move) TargetsPlayer(p uint8) bool {
	for _, t := range m.Targets {
		if t.Player == p {
			return true
		}
	}
	return false
}
