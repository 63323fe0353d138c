// Package search implements the Monte Carlo Tree Search engine the bot
// uses for normal play: UCB1 selection, single-node expansion, one fresh
// determinization per simulation, uniform-random rollouts and full-path
// backpropagation.
package search

import (
	"math"
	"math/rand"

	"github.com/coder/quartz"

	"github.com/Lonli-Lokli/vinto-sub003/agent"
	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

type node struct {
	state    *engine.SimState
	move     engine.Move
	parent   *node
	children []*node
	untried  []engine.Move
	visits   int
	reward   float64
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.reward / float64(n.visits)
}

// Searcher runs MCTS from one bot's viewpoint. It is single-threaded and
// CPU-bound per call; a caller wanting parallel rollouts must give each
// worker its own Searcher and determinized clones.
type Searcher struct {
	diff      Difficulty
	viewpoint uint8
	mem       *agent.Memory
	rng       *rand.Rand
	clock     quartz.Clock
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithClock injects the clock used for the wall-time budget (a mock clock
// in tests).
func WithClock(c quartz.Clock) Option {
	return func(s *Searcher) { s.clock = c }
}

// New builds a Searcher for the given viewpoint. mem supplies the beliefs
// determinization samples from; rng drives both determinization and
// rollouts, so a fixed seed makes the search repeatable.
func New(diff Difficulty, viewpoint uint8, mem *agent.Memory, rng *rand.Rand, opts ...Option) *Searcher {
	s := &Searcher{
		diff:      diff,
		viewpoint: viewpoint,
		mem:       mem,
		rng:       rng,
		clock:     quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search picks a move for the root state. The root move is the
// most-visited child — robust to reward variance — falling back to pass
// when the root never expanded.
func (s *Searcher) Search(root *engine.SimState) engine.Move {
	tun := &s.diff.Tunables
	rootNode := &node{
		state:   root,
		untried: engine.GenerateMoves(root, tun),
	}

	start := s.clock.Now()
	for i := 0; i < s.diff.Iterations; i++ {
		// The budget is checked strictly between iterations; a single
		// pass runs to completion, bounded by the rollout depth cap.
		if s.diff.TimeBudget > 0 && s.clock.Now().Sub(start) >= s.diff.TimeBudget {
			break
		}
		s.iterate(rootNode, tun)
	}

	var best *node
	for _, c := range rootNode.children {
		if best == nil || c.visits > best.visits {
			best = c
		}
	}
	if best == nil {
		return engine.Move{Kind: engine.MovePass}
	}
	return best.move
}

func (s *Searcher) iterate(root *node, tun *engine.Tunables) {
	// Select: descend UCB1 until a node has untried moves or no children.
	n := root
	for len(n.untried) == 0 && len(n.children) > 0 {
		n = s.selectChild(n)
	}

	// Expand: materialize one untried move.
	if len(n.untried) > 0 && !n.state.IsTerminal() {
		mv := n.untried[0]
		n.untried = n.untried[1:]
		childState := engine.Apply(n.state, mv)
		child := &node{
			state:   childState,
			move:    mv,
			parent:  n,
			untried: engine.GenerateMoves(childState, tun),
		}
		n.children = append(n.children, child)
		n = child
	}

	// Simulate on a fresh determinized clone, then backpropagate along
	// the whole path.
	reward := s.simulate(n.state, tun)
	for ; n != nil; n = n.parent {
		n.visits++
		n.reward += reward
	}
}

// selectChild applies UCB1: mean reward plus C·sqrt(ln(parent)/child).
func (s *Searcher) selectChild(n *node) *node {
	logParent := math.Log(float64(n.visits))
	var best *node
	bestScore := math.Inf(-1)
	for _, c := range n.children {
		if c.visits == 0 {
			return c
		}
		score := c.mean() + s.diff.Exploration*math.Sqrt(logParent/float64(c.visits))
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

func (s *Searcher) simulate(state *engine.SimState, tun *engine.Tunables) float64 {
	// One determinization per simulation, never shared across branches.
	world := agent.Determinize(state, s.viewpoint, s.mem, s.rng)
	for depth := 0; depth < s.diff.RolloutDepth && !world.IsTerminal(); depth++ {
		moves := engine.GenerateMoves(world, tun)
		if len(moves) == 0 {
			break
		}
		world = engine.Apply(world, moves[s.rng.Intn(len(moves))])
	}
	return engine.Evaluate(world, s.viewpoint, tun)
}
