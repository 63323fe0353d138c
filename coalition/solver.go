package coalition

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto-sub003/agent"
	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

// Solver computes final-round plans. Two strategies are available: the
// exhaustive bounded search (always applicable) and the exact DP solver
// (only when the remaining draw-pile order is fully known).
type Solver struct {
	log *logrus.Logger
	tun engine.Tunables

	// MaxSequences caps the exhaustive enumeration.
	MaxSequences int
}

// NewSolver builds a solver with default tunables. A nil logger falls
// back to the logrus standard logger.
func NewSolver(log *logrus.Logger) *Solver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Solver{
		log:          log,
		tun:          engine.DefaultTunables(),
		MaxSequences: 512,
	}
}

// turnOption is one member's compound turn: draw then discard, draw then
// swap into a position, or (with a known drawn King) a cascade declare.
type turnOption struct {
	swapPos int8
	declare engine.Rank
	isSwap  bool
	isDecl  bool
}

func (o turnOption) steps() []engine.Move {
	switch {
	case o.isDecl:
		return []engine.Move{
			{Kind: engine.MoveDraw},
			{Kind: engine.MoveDiscard, UseAction: true},
			{Kind: engine.MoveUseAction, DeclaredRank: o.declare},
		}
	case o.isSwap:
		return []engine.Move{
			{Kind: engine.MoveDraw},
			{Kind: engine.MoveSwap, Pos: o.swapPos},
		}
	default:
		return []engine.Move{
			{Kind: engine.MoveDraw},
			{Kind: engine.MoveDiscard},
		}
	}
}

// memberOptions enumerates the member's compound turns. The declare
// option only exists when the next draw is a known King — the cascade has
// to come off a drawn card.
func memberOptions(s *engine.SimState, member uint8) []turnOption {
	opts := []turnOption{{}} // draw-discard
	for pos := range s.Players[member].Hand {
		opts = append(opts, turnOption{isSwap: true, swapPos: int8(pos)})
	}
	if s.StockKnown && len(s.Stock) > 0 {
		if next := s.Stock[len(s.Stock)-1]; next.Rank == engine.RankKing {
			for r := engine.Rank(0); r < engine.NumRanks; r++ {
				if engine.CascadeLegal(s, r) {
					opts = append(opts, turnOption{isDecl: true, declare: r})
				}
			}
		}
	}
	return opts
}

// playOption applies a compound turn through the real transition,
// auto-passing any toss-in window it opens.
func playOption(s *engine.SimState, opt turnOption) *engine.SimState {
	for _, mv := range opt.steps() {
		if s.IsTerminal() {
			return s
		}
		s = engine.Apply(s, mv)
	}
	for s.Phase == engine.PhaseTossIn {
		s = engine.Apply(s, engine.Move{Kind: engine.MovePass})
	}
	return s
}

// orderedMembers lists the coalition members still to act, in turn order
// from the current player.
func orderedMembers(s *engine.SimState) []uint8 {
	var members []uint8
	n := uint8(len(s.Players))
	p := s.Current
	for i := uint8(0); i < n; i++ {
		cur := (p + i) % n
		if !s.IsCaller(cur) && s.Players[cur].Coalition {
			members = append(members, cur)
		}
	}
	if len(members) > 4 {
		members = members[:4]
	}
	return members
}

// ownScores estimates every player's score from their own knowledge:
// seen cards exact, unseen worth the mean remaining value.
func ownScores(s *engine.SimState, unknownValue float64) []float64 {
	scores := make([]float64, len(s.Players))
	for p := range s.Players {
		scores[p] = s.EstimatedScore(uint8(p), uint8(p), unknownValue)
	}
	return scores
}

// championScore estimates the champion's hand: known cards exact, unknown
// cards as the mean of the remaining possible ranks.
func championScore(s *engine.SimState, champ uint8, unknownValue float64) float64 {
	return s.EstimatedScore(champ, champ, unknownValue)
}

// championConfidence is the known/estimated ratio of the champion's hand.
func championConfidence(s *engine.SimState, champ uint8) float64 {
	pl := &s.Players[champ]
	if len(pl.Hand) == 0 {
		return 1
	}
	known := 0
	for i, c := range pl.Hand {
		if pl.KnownBy[i].Has(champ) && c.Rank != engine.RankUnknown {
			known++
		}
	}
	return float64(known) / float64(len(pl.Hand))
}

// Solve runs the exhaustive bounded search: one compound action per
// member per pass, every sequence simulated to completion, keeping the
// minimum champion score and, on ties, the higher confidence.
func (sv *Solver) Solve(gameID uuid.UUID, s *engine.SimState, mem *agent.Memory) Plan {
	unknownValue := sv.tun.UnknownCardValue
	if mem != nil {
		unknownValue = mem.MeanRemainingValue()
	}

	members := orderedMembers(s)
	scores := ownScores(s, unknownValue)
	champ, ok := engine.ChampionByScores(s, scores)
	if !ok {
		return Plan{GameID: gameID}
	}

	best := Plan{
		GameID:     gameID,
		Champion:   champ,
		Score:      championScore(s, champ, unknownValue),
		Confidence: championConfidence(s, champ),
	}
	examined := 0

	var dfs func(state *engine.SimState, idx int, seq []PlanAction)
	dfs = func(state *engine.SimState, idx int, seq []PlanAction) {
		if examined >= sv.MaxSequences {
			return
		}
		if idx == len(members) || state.IsTerminal() {
			examined++
			score := championScore(state, champ, unknownValue)
			conf := championConfidence(state, champ)
			if score < best.Score || (score == best.Score && conf > best.Confidence) {
				best.Score = score
				best.Confidence = conf
				best.Actions = append([]PlanAction(nil), seq...)
			}
			return
		}
		member := members[idx]
		for _, opt := range memberOptions(state, member) {
			next := playOption(state, opt)
			dfs(next, idx+1, append(seq, PlanAction{Player: member, Steps: opt.steps()}))
		}
	}
	dfs(s, 0, nil)

	sv.log.WithFields(logrus.Fields{
		"game":      gameID,
		"champion":  best.Champion,
		"score":     best.Score,
		"sequences": examined,
	}).Debug("coalition plan computed")
	return best
}
