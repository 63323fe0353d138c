package engine

import "testing"

func TestNewGameClampsPlayerCount(t *testing.T) {
	rules := DefaultRules()
	rules.NumPlayers = 9
	s := NewGame(1, rules)
	if len(s.Players) != MaxPlayers {
		t.Fatalf("expected %d players, got %d", MaxPlayers, len(s.Players))
	}

	rules.NumPlayers = 1
	s = NewGame(1, rules)
	if len(s.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(s.Players))
	}
}

func TestDiscardHistoryLookup(t *testing.T) {
	s := &SimState{
		Discard: []Card{{Rank: RankTwo}, {Rank: RankFive}, {Rank: RankKing}},
	}

	top, ok := s.DiscardTop()
	if !ok || top.Rank != RankKing {
		t.Fatalf("top = %v, %v", top, ok)
	}
	for offset, want := range []Rank{RankKing, RankFive, RankTwo} {
		c, ok := s.DiscardAt(offset)
		if !ok || c.Rank != want {
			t.Fatalf("offset %d: got %v, %v, want %s", offset, c, ok, want)
		}
	}
	if _, ok := s.DiscardAt(3); ok {
		t.Fatal("offset past the pile bottom must report absence")
	}
	if _, ok := s.DiscardAt(-1); ok {
		t.Fatal("negative offset must report absence")
	}

	s.Discard = nil
	if _, ok := s.DiscardTop(); ok {
		t.Fatal("empty pile must report absence")
	}
}
