// Command selfplay runs bot-vs-bot games and reports per-seat win rates.
// Seat 0 plays the challenger profile, every other seat the baseline, so
// a difficulty change can be measured head to head.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Lonli-Lokli/vinto-sub003/agent"
	"github.com/Lonli-Lokli/vinto-sub003/engine"
	"github.com/Lonli-Lokli/vinto-sub003/search"
)

type cliArgs struct {
	Games      int    `help:"Number of games to play." default:"100"`
	Players    int    `help:"Players per game." default:"4"`
	Baseline   string `help:"Difficulty for seats 1..n." enum:"easy,medium,hard" default:"medium"`
	Challenger string `help:"Difficulty for seat 0." enum:"easy,medium,hard" default:"medium"`
	Seed       int64  `help:"Base RNG seed; game i uses seed+i." default:"1"`
	Parallel   int    `help:"Concurrent games." default:"4"`
	Verbose    bool   `help:"Per-game result logging." short:"v"`
}

type tally struct {
	mu     sync.Mutex
	wins   []int
	scores []int
	games  int
}

func (t *tally) record(winners []uint8, scores []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.games++
	for _, w := range winners {
		t.wins[w]++
	}
	for i, sc := range scores {
		t.scores[i] += sc
	}
}

func main() {
	_ = godotenv.Load()

	var args cliArgs
	kong.Parse(&args,
		kong.Name("selfplay"),
		kong.Description("Vinto bot self-play evaluation."),
	)

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if args.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	rules := engine.DefaultRules()
	rules.NumPlayers = uint8(args.Players)

	results := &tally{
		wins:   make([]int, args.Players),
		scores: make([]int, args.Players),
	}

	var eg errgroup.Group
	eg.SetLimit(args.Parallel)
	for i := 0; i < args.Games; i++ {
		seed := args.Seed + int64(i)
		eg.Go(func() error {
			winners, scores := playGame(seed, rules, args)
			results.record(winners, scores)
			log.WithFields(logrus.Fields{
				"seed":    seed,
				"winners": winners,
				"scores":  scores,
			}).Debug("game finished")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.WithError(err).Fatal("self-play run failed")
	}

	report(results, args)
}

// playGame runs one full game, every seat deciding through its own
// memory and searcher.
func playGame(seed int64, rules engine.Rules, args cliArgs) ([]uint8, []int) {
	state := engine.NewGame(seed, rules)

	memories := make([]*agent.Memory, rules.NumPlayers)
	searchers := make([]*search.Searcher, rules.NumPlayers)
	for p := uint8(0); p < rules.NumPlayers; p++ {
		diff := search.ByName(args.Baseline)
		if p == 0 {
			diff = search.ByName(args.Challenger)
		}
		memories[p] = agent.NewMemory()
		rng := rand.New(rand.NewSource(seed*int64(rules.NumPlayers) + int64(p)))
		searchers[p] = search.New(diff, p, memories[p], rng)
	}

	discardsSeen := make([]int, rules.NumPlayers)
	for !state.IsTerminal() {
		actor := state.ActingPlayer()
		syncMemory(memories[actor], actor, state, &discardsSeen[actor])
		mv := searchers[actor].Search(state)
		state = engine.Apply(state, mv)
	}

	scores := make([]int, len(state.Players))
	for p := range state.Players {
		scores[p] = state.Players[p].Score()
	}
	return engine.Winners(state), scores
}

// syncMemory folds everything the player is entitled to see in the live
// state into their belief store before they decide: cards discarded
// since their last look, then every position their knowledge mask
// covers.
func syncMemory(mem *agent.Memory, viewer uint8, s *engine.SimState, discardsSeen *int) {
	for _, c := range s.Discard[*discardsSeen:] {
		mem.NoteDiscard(c.Rank)
	}
	*discardsSeen = len(s.Discard)
	for p := range s.Players {
		pl := &s.Players[p]
		for pos, c := range pl.Hand {
			if !pl.KnownBy[pos].Has(viewer) || c.Rank == engine.RankUnknown {
				continue
			}
			if cur := mem.CardAt(uint8(p), pos); cur.Confidence >= 1 && cur.Rank == c.Rank {
				continue
			}
			mem.ObserveCard(c.Rank, uint8(p), pos)
		}
	}
}

func report(t *tally, args cliArgs) {
	fmt.Printf("games: %d  baseline: %s  challenger: %s\n", t.games, args.Baseline, args.Challenger)
	for p := 0; p < args.Players; p++ {
		role := "baseline"
		if p == 0 {
			role = "challenger"
		}
		winRate := 0.0
		stderr := 0.0
		avgScore := 0.0
		if t.games > 0 {
			winRate = float64(t.wins[p]) / float64(t.games)
			stderr = math.Sqrt(winRate * (1 - winRate) / float64(t.games))
			avgScore = float64(t.scores[p]) / float64(t.games)
		}
		fmt.Printf("seat %d (%s): wins %d (%.1f%% ± %.1f%%)  avg score %.2f\n",
			p, role, t.wins[p], winRate*100, stderr*100, avgScore)
	}
}
