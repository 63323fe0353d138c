package engine

import (
	"testing"
)

// TestWinnersCallerTie verifies a score tie involving the caller goes to
// the caller alone.
func TestWinnersCallerTie(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankTwo}, {Rank: RankThree}}, // 5
		[]Card{{Rank: RankFive}},                   // 5
		[]Card{{Rank: RankKing}},                   // 13
	)
	s.Phase = PhaseGameOver

	winners := Winners(s)
	if len(winners) != 2 {
		t.Fatalf("expected a two-way tie, got %v", winners)
	}

	s.Caller = 1
	winners = Winners(s)
	if len(winners) != 1 || winners[0] != 1 {
		t.Errorf("caller should win the tie alone, got %v", winners)
	}
}

// TestTerminalEvaluate verifies exact terminal outcomes, including the
// coalition view where any non-caller win counts.
func TestTerminalEvaluate(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankJoker}}, // -1, wins
		[]Card{{Rank: RankFive}},
		[]Card{{Rank: RankKing}},
	)
	s.Phase = PhaseGameOver
	tun := defaultTun()

	if got := Evaluate(s, 0, tun); got != 1.0 {
		t.Errorf("winner viewpoint = %v, want 1.0", got)
	}
	if got := Evaluate(s, 1, tun); got != 0.0 {
		t.Errorf("loser viewpoint = %v, want 0.0", got)
	}

	// Coalition view: player 2 loses outright but the coalition still won
	// because a non-caller holds the lowest hand.
	s.Caller = 1
	s.FinalRound = true
	s.Players[0].Coalition = true
	s.Players[2].Coalition = true
	if got := Evaluate(s, 2, tun); got != 1.0 {
		t.Errorf("coalition viewpoint = %v, want 1.0", got)
	}
	if got := Evaluate(s, 1, tun); got != 0.0 {
		t.Errorf("beaten caller viewpoint = %v, want 0.0", got)
	}
}

// TestChampionSelection verifies the strictly-lowest rule with
// first-in-order tie resolution, caller exclusion and leader eligibility.
func TestChampionSelection(t *testing.T) {
	s := makeState(
		[]Card{{Rank: RankTwo}},
		[]Card{{Rank: RankTwo}},
		[]Card{{Rank: RankKing}},
		[]Card{{Rank: RankJoker}},
	)
	s.Caller = 3 // the lowest hand belongs to the caller
	s.FinalRound = true
	for p := 0; p < 3; p++ {
		s.Players[p].Coalition = true
	}
	s.Leader = 1

	scores := []float64{2, 2, 13, -1}
	champ, ok := ChampionByScores(s, scores)
	if !ok {
		t.Fatal("champion expected")
	}
	if champ != 0 {
		t.Errorf("tie must resolve to the first member in order, got %d", champ)
	}

	// The selection is deterministic across repeated calls.
	for i := 0; i < 5; i++ {
		again, _ := ChampionByScores(s, scores)
		if again != champ {
			t.Fatal("champion selection is not deterministic")
		}
	}

	// With no coalition members there is no champion.
	for p := range s.Players {
		s.Players[p].Coalition = false
	}
	if _, ok := ChampionByScores(s, scores); ok {
		t.Error("champion reported without coalition members")
	}
}

// TestEvaluateBounds verifies heuristic scores stay inside [0,1] across a
// spread of states.
func TestEvaluateBounds(t *testing.T) {
	tun := defaultTun()
	for seed := int64(1); seed <= 10; seed++ {
		s := NewGame(seed, DefaultRules())
		for v := uint8(0); v < s.Rules.NumPlayers; v++ {
			got := Evaluate(s, v, tun)
			if got < 0 || got > 1 {
				t.Fatalf("seed %d viewpoint %d: Evaluate = %v out of range", seed, v, got)
			}
		}
	}
}

// TestEvaluatePrefersLowerHand verifies a clearly better hand scores
// higher than a clearly worse one in an otherwise identical position.
func TestEvaluatePrefersLowerHand(t *testing.T) {
	tun := defaultTun()
	low := makeState(
		[]Card{{Rank: RankJoker}, {Rank: RankAce}},
		[]Card{{Rank: RankSeven}, {Rank: RankSeven}},
	)
	high := makeState(
		[]Card{{Rank: RankSix}, {Rank: RankSix}},
		[]Card{{Rank: RankSeven}, {Rank: RankSeven}},
	)
	if Evaluate(low, 0, tun) <= Evaluate(high, 0, tun) {
		t.Error("lower hand should evaluate higher")
	}
}
