package agent

import (
	"math/rand"

	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

// Determinize samples one fully-known world consistent with the
// viewpoint's knowledge and beliefs. It always works on a fresh clone —
// determinized worlds are never shared across search branches — and must
// be called once per simulation.
//
// The remaining multiset is the full deck minus the discard pile, minus
// every position the viewpoint is confident about (mask-known in the
// state, or memory confidence > 0.5), minus a known stock order and a
// known pending card. Within the sampled world no rank is assigned more
// times than remain in the multiset; if the multiset runs dry the sampler
// falls back to the memory distribution, a documented relaxation of the
// no-duplication guarantee.
func Determinize(s *engine.SimState, viewpoint uint8, mem *Memory, rng *rand.Rand) *engine.SimState {
	n := s.Clone()

	counts := engine.FullDeckCounts()
	take := func(r engine.Rank) {
		if r < engine.NumRanks && counts[r] > 0 {
			counts[r]--
		}
	}

	for _, c := range n.Discard {
		take(c.Rank)
	}
	if n.StockKnown {
		for _, c := range n.Stock {
			take(c.Rank)
		}
	}
	if n.Pending != nil && n.Pending.Rank != engine.RankUnknown {
		take(n.Pending.Rank)
	}

	// First pass: pin down what the viewpoint already knows, so sampling
	// never hands out those copies again.
	type slot struct {
		player uint8
		pos    int
	}
	var unknown []slot
	for p := range n.Players {
		pl := &n.Players[p]
		for i := range pl.Hand {
			if pl.KnownBy[i].Has(viewpoint) && pl.Hand[i].Rank != engine.RankUnknown {
				take(pl.Hand[i].Rank)
				continue
			}
			if b := mem.CardAt(uint8(p), i); b.Confidence > 0.5 {
				pl.Hand[i] = engine.Card{Rank: b.Rank}
				take(b.Rank)
				continue
			}
			unknown = append(unknown, slot{player: uint8(p), pos: i})
		}
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	draw := func() engine.Rank {
		if total == 0 {
			return mem.SampleCardFromDistribution(rng)
		}
		pick := rng.Intn(total)
		for r := engine.Rank(0); r < engine.NumRanks; r++ {
			pick -= counts[r]
			if pick < 0 {
				counts[r]--
				total--
				return r
			}
		}
		return mem.SampleCardFromDistribution(rng)
	}

	// Second pass: fill every low-confidence position uniformly without
	// replacement.
	for _, sl := range unknown {
		n.Players[sl.player].Hand[sl.pos] = engine.Card{Rank: draw()}
	}

	if n.Pending != nil && n.Pending.Rank == engine.RankUnknown {
		n.Pending = &engine.Card{Rank: draw()}
	}

	// Rebuild the hidden stock from whatever is left so rollouts can draw
	// concrete cards.
	if !n.StockKnown {
		stock := make([]engine.Card, 0, n.StockLen)
		for len(stock) < n.StockLen {
			stock = append(stock, engine.Card{Rank: draw()})
		}
		rng.Shuffle(len(stock), func(i, j int) { stock[i], stock[j] = stock[j], stock[i] })
		n.Stock = stock
		n.StockKnown = true
	}
	return n
}
