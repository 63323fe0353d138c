package coalition

import (
	"encoding/binary"
	"hash/fnv"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

// dpEntry caches the best reachable champion score for one memoized
// state, together with the action script that achieves it.
type dpEntry struct {
	score   float64
	actions []PlanAction
}

// SolveExact computes a provably optimal final-round plan. It is only
// available when nothing is hidden: the full draw-pile order is known,
// every hand card is concrete and no drawn card is pending. When any of
// that fails it reports false and the caller falls back to Solve.
func (sv *Solver) SolveExact(gameID uuid.UUID, s *engine.SimState) (Plan, bool) {
	if !exactSolvable(s) {
		return Plan{}, false
	}

	scores := make([]float64, len(s.Players))
	for p := range s.Players {
		scores[p] = float64(s.Players[p].Score())
	}
	champ, ok := engine.ChampionByScores(s, scores)
	if !ok {
		return Plan{}, false
	}

	memo := make(map[uint64]dpEntry)

	var dfs func(state *engine.SimState) (float64, []PlanAction)
	dfs = func(state *engine.SimState) (float64, []PlanAction) {
		if state.IsTerminal() {
			return float64(state.Players[champ].Score()), nil
		}
		key := exactStateKey(state)
		if e, hit := memo[key]; hit {
			return e.score, e.actions
		}

		member := state.Current
		bestScore := float64(1 << 20)
		var bestActions []PlanAction
		for _, opt := range memberOptions(state, member) {
			next := playOption(state, opt)
			score, rest := dfs(next)
			if score < bestScore {
				bestScore = score
				bestActions = append([]PlanAction{{Player: member, Steps: opt.steps()}}, rest...)
			}
		}

		memo[key] = dpEntry{score: bestScore, actions: bestActions}
		return bestScore, bestActions
	}

	score, actions := dfs(s)
	sv.log.WithFields(logrus.Fields{
		"game":     gameID,
		"champion": champ,
		"score":    score,
		"states":   len(memo),
	}).Debug("exact coalition plan computed")

	return Plan{
		GameID:     gameID,
		Champion:   champ,
		Score:      score,
		Confidence: 1,
		Actions:    actions,
		Exact:      true,
	}, true
}

// exactSolvable reports whether the state carries enough certainty for
// the DP: known stock order, concrete hands, no pending card, inside a
// final round.
func exactSolvable(s *engine.SimState) bool {
	if !s.FinalRound || s.IsTerminal() {
		return false
	}
	if !s.StockKnown || len(s.Stock) != s.StockLen || s.Pending != nil {
		return false
	}
	if s.Phase != engine.PhaseTurnStart {
		return false
	}
	for p := range s.Players {
		for _, c := range s.Players[p].Hand {
			if c.Rank == engine.RankUnknown {
				return false
			}
		}
	}
	return true
}

// exactStateKey hashes the decision-relevant state: each player's hand as
// a sorted multiset, the remaining stock order, the discard top and the
// turn counter. Ownership positions inside a hand do not matter to the
// champion's final score, so sorting ranks merges transposed states.
func exactStateKey(s *engine.SimState) uint64 {
	h := fnv.New64a()
	var buf [4]byte

	var ranks []byte
	for p := range s.Players {
		ranks = ranks[:0]
		for _, c := range s.Players[p].Hand {
			ranks = append(ranks, byte(c.Rank))
		}
		sort.Slice(ranks, func(i, j int) bool { return ranks[i] < ranks[j] })
		h.Write(ranks)
		h.Write([]byte{0xFE})
	}

	for _, c := range s.Stock {
		h.Write([]byte{byte(c.Rank)})
	}
	h.Write([]byte{0xFE})

	if top, ok := s.DiscardTop(); ok {
		h.Write([]byte{byte(top.Rank)})
	}
	h.Write([]byte{0xFE, byte(s.Current), byte(s.FinalTurnsLeft)})

	binary.LittleEndian.PutUint32(buf[:], uint32(s.Turn))
	h.Write(buf[:])
	return h.Sum64()
}
