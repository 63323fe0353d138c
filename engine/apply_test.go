package engine

import (
	"testing"
)

// TestApplyNeverMutatesInput verifies the transition is pure: the source
// state is byte-for-byte untouched after any application.
func TestApplyNeverMutatesInput(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankFive}, {Rank: RankNine}},
		[]Card{{Rank: RankTwo}, {Rank: RankKing}},
	)
	s.Stock = []Card{{Rank: RankSeven}, {Rank: RankThree}}
	s.StockLen = 2

	before := s.Clone()
	_ = Apply(s, Move{Kind: MoveDraw})

	if s.StockLen != before.StockLen || len(s.Stock) != len(before.Stock) {
		t.Error("draw mutated the source stock")
	}
	if s.Pending != nil {
		t.Error("draw mutated the source pending card")
	}
	if s.Phase != before.Phase {
		t.Error("draw mutated the source phase")
	}
}

// TestDrawAndSwap verifies the drawn card lands in the hand, the old card
// hits the discard and a toss window opens on its rank.
func TestDrawAndSwap(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankKing}, {Rank: RankFive}},
		[]Card{{Rank: RankTwo}},
	)
	s.Stock = []Card{{Rank: RankThree}}
	s.StockLen = 1

	s2 := Apply(s, Move{Kind: MoveDraw})
	if s2.Phase != PhaseDrawn || s2.Pending == nil || s2.Pending.Rank != RankThree {
		t.Fatalf("draw did not stage the Three: %+v", s2.Pending)
	}

	s3 := Apply(s2, Move{Kind: MoveSwap, Pos: 0})
	if s3.Players[0].Hand[0].Rank != RankThree {
		t.Error("swap did not place the drawn card")
	}
	if top, _ := s3.DiscardTop(); top.Rank != RankKing {
		t.Error("swap did not discard the replaced King")
	}
	if s3.Phase != PhaseTossIn || s3.TossRank != RankKing {
		t.Error("swap must open a toss window on the discarded rank")
	}
	if !s3.Players[0].KnownBy[0].Has(0) {
		t.Error("owner must know the card they just placed")
	}
}

// TestUndeterminizedDrawStaysUnknown verifies drawing from a hidden stock
// stages the unknown placeholder instead of ending the branch.
func TestUndeterminizedDrawStaysUnknown(t *testing.T) {
	s := makeState([]Card{{Rank: RankFive}}, []Card{{Rank: RankTwo}})
	s.Stock = nil
	s.StockKnown = false
	s.StockLen = 5

	s2 := Apply(s, Move{Kind: MoveDraw})
	if s2.Pending == nil || s2.Pending.Rank != RankUnknown {
		t.Fatalf("hidden draw should stage the unknown placeholder, got %+v", s2.Pending)
	}
	if s2.StockLen != 4 {
		t.Errorf("hidden stock size = %d, want 4", s2.StockLen)
	}
}

// TestKingCascade verifies declaring a rank strips it from every hand and
// that an ineffective declare removes nothing.
func TestKingCascade(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankFive}, {Rank: RankNine}},
		[]Card{{Rank: RankFive}, {Rank: RankKing}},
		[]Card{{Rank: RankFive}},
	)
	s.Phase = PhaseAction
	s.Actor = 0
	s.ActionRank = RankKing

	s2 := Apply(s, Move{Kind: MoveUseAction, DeclaredRank: RankFive})
	for p := range s2.Players {
		for _, c := range s2.Players[p].Hand {
			if c.Rank == RankFive {
				t.Errorf("player %d still holds a Five after the cascade", p)
			}
		}
	}
	if len(s2.Discard) != len(s.Discard)+3 {
		t.Errorf("cascade discarded %d cards, want 3", len(s2.Discard)-len(s.Discard))
	}

	// Declaring a lone Nine (action rank, count 1) must remove nothing.
	s.ActionRank = RankKing
	s3 := Apply(s, Move{Kind: MoveUseAction, DeclaredRank: RankNine})
	if len(s3.Players[0].Hand) != 2 {
		t.Error("ineffective declare removed cards")
	}
}

// TestTossInQueue verifies a toss shrinks the hand and leaves the tosser
// queued for further copies, and that passing drains the window.
func TestTossInQueue(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankFive}, {Rank: RankFive}, {Rank: RankNine}},
		[]Card{{Rank: RankTwo}},
	)
	s.Phase = PhaseTossIn
	s.TossRank = RankFive
	s.TossQueue = []uint8{0, 1}

	s2 := Apply(s, Move{Kind: MoveTossIn, Pos: 0})
	if len(s2.Players[0].Hand) != 2 {
		t.Error("toss-in did not remove the card")
	}
	if len(s2.TossQueue) == 0 || s2.TossQueue[0] != 0 {
		t.Error("tosser must stay at the queue front for further copies")
	}

	s3 := Apply(s2, Move{Kind: MovePass})
	if len(s3.TossQueue) != 1 || s3.TossQueue[0] != 1 {
		t.Errorf("pass should advance the queue, got %v", s3.TossQueue)
	}
	s4 := Apply(s3, Move{Kind: MovePass})
	if s4.Phase == PhaseTossIn {
		t.Error("window must close when the queue drains")
	}
}

// TestForceDraw verifies the Ace pushes a stock card into the target hand
// face down.
func TestForceDraw(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankAce}},
		[]Card{{Rank: RankTwo}},
	)
	s.Stock = []Card{{Rank: RankQueen}}
	s.StockLen = 1
	s.Phase = PhaseAction
	s.Actor = 0
	s.ActionRank = RankAce

	s2 := Apply(s, Move{Kind: MoveUseAction, Targets: []Target{{Player: 1, Pos: -1}}})
	if len(s2.Players[1].Hand) != 2 {
		t.Fatal("force-draw did not grow the target hand")
	}
	if s2.Players[1].Hand[1].Rank != RankQueen {
		t.Error("force-draw delivered the wrong card")
	}
	if s2.Players[1].KnownBy[1] != 0 {
		t.Error("force-drawn card must arrive face down")
	}
}

// TestCallVintoStartsFinalRound verifies the caller flags, the coalition
// assignment and that exactly one turn per other player remains.
func TestCallVintoStartsFinalRound(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankJoker}},
		[]Card{{Rank: RankFive}},
		[]Card{{Rank: RankSix}},
	)
	s.Stock = []Card{{Rank: RankTwo}, {Rank: RankTwo}, {Rank: RankTwo}, {Rank: RankTwo}}
	s.StockLen = 4
	s.Current = 0

	s2 := Apply(s, Move{Kind: MoveCallVinto})
	if s2.Caller != 0 || !s2.FinalRound {
		t.Fatal("call did not start the final round")
	}
	if s2.Players[0].Coalition || !s2.Players[1].Coalition || !s2.Players[2].Coalition {
		t.Error("coalition flags wrong after the call")
	}
	if s2.Current != 1 {
		t.Errorf("turn should pass to player 1, got %d", s2.Current)
	}

	// Each remaining player takes one full turn, then the game ends.
	turns := 0
	for !s2.IsTerminal() && turns < 10 {
		s2 = Apply(s2, Move{Kind: MoveDraw})
		s2 = Apply(s2, Move{Kind: MoveDiscard})
		for s2.Phase == PhaseTossIn {
			s2 = Apply(s2, Move{Kind: MovePass})
		}
		turns++
	}
	if turns != 2 {
		t.Errorf("final round lasted %d turns, want 2", turns)
	}
	if !s2.IsTerminal() {
		t.Error("game must end when the final round completes")
	}
}

// TestPeekRevealsToViewerOnly verifies a peek grows exactly one mask.
func TestPeekRevealsToViewerOnly(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankSeven}},
		[]Card{{Rank: RankSix}},
	)
	hideAll(s, 1)
	s.Phase = PhaseAction
	s.Actor = 0
	s.ActionRank = RankNine

	s2 := Apply(s, Move{Kind: MoveUseAction, Targets: []Target{{Player: 1, Pos: 0}}})
	if !s2.Players[1].KnownBy[0].Has(0) {
		t.Error("peek did not reveal the card to the actor")
	}
	if s2.Players[1].KnownBy[0].Has(1) {
		t.Error("peek revealed the card to its owner")
	}
}
