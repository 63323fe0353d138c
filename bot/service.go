package bot

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto-sub003/agent"
	"github.com/Lonli-Lokli/vinto-sub003/coalition"
	"github.com/Lonli-Lokli/vinto-sub003/engine"
	"github.com/Lonli-Lokli/vinto-sub003/search"
)

// memoryKey scopes a belief store to one bot inside one game.
type memoryKey struct {
	game uuid.UUID
	bot  uuid.UUID
}

// botMemory pairs one bot's belief store with how much of the public
// discard history it has already folded, so replaying the same snapshot
// never double-counts a dead card.
type botMemory struct {
	mem          *agent.Memory
	discardsSeen int
}

// Service answers the rule engine's decision points for any number of
// bots across any number of games. Memories are bound lazily per
// (game, bot) pair; coalition plans go through the injected store so
// separate bot processes of the same game can share them.
type Service struct {
	log    *logrus.Logger
	diff   search.Difficulty
	plans  coalition.PlanStore
	solver *coalition.Solver
	clock  quartz.Clock

	mu       sync.Mutex
	memories map[memoryKey]*botMemory
	rng      *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the standard logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithPlanStore replaces the in-process plan store, e.g. with the Redis
// one when bots run in separate processes.
func WithPlanStore(store coalition.PlanStore) Option {
	return func(s *Service) { s.plans = store }
}

// WithClock injects the clock the search budget runs on.
func WithClock(c quartz.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithSeed makes every decision deterministic for a given call sequence.
func WithSeed(seed int64) Option {
	return func(s *Service) { s.rng = rand.New(rand.NewSource(seed)) }
}

// NewService builds a Service with the given difficulty profile.
func NewService(diff search.Difficulty, opts ...Option) *Service {
	s := &Service{
		log:      logrus.StandardLogger(),
		diff:     diff,
		plans:    coalition.NewMemoryPlanStore(),
		clock:    quartz.NewReal(),
		memories: make(map[memoryKey]*botMemory),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.solver = coalition.NewSolver(s.log)
	return s
}

// EndGame drops the bot memories and shared plan of a finished game.
func (s *Service) EndGame(ctx context.Context, gameID uuid.UUID) {
	s.mu.Lock()
	for key := range s.memories {
		if key.game == gameID {
			delete(s.memories, key)
		}
	}
	s.mu.Unlock()
	if err := s.plans.Delete(ctx, gameID); err != nil {
		s.log.WithError(err).WithField("game", gameID).Warn("plan cleanup failed")
	}
}

// ChooseTurnAction answers the turn-start decision: draw, take the
// discard, or call Vinto.
func (s *Service) ChooseTurnAction(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext) TurnDecision {
	mv := s.decide(ctx, botID, snap, dctx, engine.PhaseTurnStart)
	switch mv.Kind {
	case engine.MoveTakeDiscard:
		return TurnDecision{Action: TurnTakeDiscard}
	case engine.MoveCallVinto:
		return TurnDecision{Action: TurnCallVinto}
	default:
		return TurnDecision{Action: TurnDraw}
	}
}

// ShouldCallVinto answers the standalone Vinto prompt some engines issue
// before the turn proper.
func (s *Service) ShouldCallVinto(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext) bool {
	mv := s.decide(ctx, botID, snap, dctx, engine.PhaseTurnStart)
	return mv.Kind == engine.MoveCallVinto
}

// ChooseSwapPosition answers where to place a drawn card; -1 means
// discard it instead.
func (s *Service) ChooseSwapPosition(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext) int {
	mv := s.decide(ctx, botID, snap, dctx, engine.PhaseDrawn)
	if mv.Kind == engine.MoveSwap {
		return int(mv.Pos)
	}
	return -1
}

// ShouldUseAction answers whether a drawn action card should be played
// for its action when discarded.
func (s *Service) ShouldUseAction(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext) bool {
	mv := s.decide(ctx, botID, snap, dctx, engine.PhaseDrawn)
	return mv.Kind == engine.MoveDiscard && mv.UseAction
}

// ChooseActionTargets answers where a pending action goes. For the
// peek-and-swap it also reports whether to swap; for the King declaration
// it carries the declared rank.
func (s *Service) ChooseActionTargets(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext) TargetDecision {
	mv := s.decide(ctx, botID, snap, dctx, engine.PhaseAction)
	if mv.Kind != engine.MoveUseAction {
		return TargetDecision{}
	}
	out := TargetDecision{
		ShouldSwap:   mv.WithSwap,
		DeclaredRank: mv.DeclaredRank,
	}
	for _, t := range mv.Targets {
		if int(t.Player) >= len(snap.Players) {
			continue
		}
		out.Targets = append(out.Targets, TargetRef{
			PlayerID: snap.Players[t.Player].ID,
			Position: int(t.Pos),
		})
	}
	return out
}

// ShouldSwapAfterPeek answers the peek-and-swap follow-up once the peeked
// card is known: the reveal goes into memory and the search re-decides.
func (s *Service) ShouldSwapAfterPeek(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext) bool {
	mv := s.decide(ctx, botID, snap, dctx, engine.PhaseAction)
	return mv.Kind == engine.MoveUseAction && mv.WithSwap
}

// ChooseKingDeclaration answers which rank a King declares. Returns false
// when no legal cascade is worth declaring.
func (s *Service) ChooseKingDeclaration(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext) (engine.Rank, bool) {
	mv := s.decide(ctx, botID, snap, dctx, engine.PhaseAction)
	if mv.Kind != engine.MoveUseAction {
		return 0, false
	}
	return mv.DeclaredRank, true
}

// ShouldTossIn answers whether to toss the card at pos into an open
// toss-in window.
func (s *Service) ShouldTossIn(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext, pos int) bool {
	mv := s.decide(ctx, botID, snap, dctx, engine.PhaseTossIn)
	return mv.Kind == engine.MoveTossIn && int(mv.Pos) == pos
}

// decide is the shared decision path: bind memory, fold reveals, build
// the simulation state, consult the coalition plan when one applies and
// otherwise search.
func (s *Service) decide(ctx context.Context, botID uuid.UUID, snap *GameSnapshot, dctx *DecisionContext, phase engine.Phase) engine.Move {
	me, ok := snap.playerIndex(botID)
	if !ok {
		s.log.WithFields(logrus.Fields{"game": snap.GameID, "bot": botID}).
			Warn("unknown bot id in snapshot")
		return engine.Move{Kind: engine.MovePass}
	}

	s.mu.Lock()
	bm := s.memoryLocked(snap.GameID, botID)
	s.foldKnowledge(bm, snap, dctx)
	mem := bm.mem
	rng := rand.New(rand.NewSource(s.rng.Int63()))
	s.mu.Unlock()

	state := s.buildState(me, snap, dctx, phase, mem)

	if snap.FinalRound && snap.Players[me].Coalition && !state.IsCaller(me) {
		if mv, ok := s.planMove(ctx, me, snap, state, mem, phase); ok {
			return mv
		}
	}

	searcher := search.New(s.diff, me, mem, rng, search.WithClock(s.clock))
	mv := searcher.Search(state)
	s.log.WithFields(logrus.Fields{
		"game": snap.GameID,
		"bot":  botID,
		"move": mv.String(),
	}).Debug("decision")
	return mv
}

func (s *Service) memoryLocked(gameID, botID uuid.UUID) *botMemory {
	key := memoryKey{game: gameID, bot: botID}
	bm, ok := s.memories[key]
	if !ok {
		bm = &botMemory{mem: agent.NewMemory()}
		s.memories[key] = bm
	}
	return bm
}

// foldKnowledge pushes everything the snapshot reveals into memory:
// newly discarded cards, observed swap outcomes, per-player known
// positions and fresh reveals. The discard pile is folded from the
// per-memory cursor so each dead card shifts the remaining distribution
// exactly once.
func (s *Service) foldKnowledge(bm *botMemory, snap *GameSnapshot, dctx *DecisionContext) {
	mem := bm.mem
	if n := len(snap.Discard); n > bm.discardsSeen {
		for _, c := range snap.Discard[bm.discardsSeen:] {
			mem.NoteDiscard(c.Rank)
		}
		bm.discardsSeen = n
	}
	if dctx != nil {
		for _, sw := range dctx.Swapped {
			from, okFrom := snap.playerIndex(sw.From.PlayerID)
			to, okTo := snap.playerIndex(sw.To.PlayerID)
			switch {
			case okFrom && okTo:
				mem.MoveBelief(from, sw.From.Position, to, sw.To.Position)
			case okFrom:
				mem.ForgetCard(from, sw.From.Position)
			case okTo:
				mem.ForgetCard(to, sw.To.Position)
			}
		}
	}
	for p, pl := range snap.Players {
		for pos, info := range pl.Known {
			if cur := mem.CardAt(uint8(p), pos); cur.Confidence >= 1 && cur.Rank == info.Rank {
				continue
			}
			mem.ObserveCard(info.Rank, uint8(p), pos)
		}
	}
	if dctx == nil {
		return
	}
	for _, rc := range dctx.Revealed {
		owner, ok := snap.playerIndex(rc.PlayerID)
		if !ok {
			continue
		}
		if cur := mem.CardAt(owner, rc.Position); cur.Confidence >= 1 && cur.Rank == rc.Card.Rank {
			continue
		}
		mem.ObserveCard(rc.Card.Rank, owner, rc.Position)
	}
}

// buildState projects the snapshot into a simulation state. Cards the
// snapshot pins are concrete; memory beliefs at or above the difficulty's
// confidence threshold count as known too; everything else stays unknown
// for the determinizer to fill per simulation.
func (s *Service) buildState(me uint8, snap *GameSnapshot, dctx *DecisionContext, phase engine.Phase, mem *agent.Memory) *engine.SimState {
	rules := engine.DefaultRules()
	rules.NumPlayers = uint8(len(snap.Players))

	st := &engine.SimState{
		Rules:          rules,
		Players:        make([]engine.SimPlayer, len(snap.Players)),
		Current:        uint8(snap.Current),
		Turn:           snap.Turn,
		StockLen:       snap.StockSize,
		Caller:         -1,
		Leader:         -1,
		FinalRound:     snap.FinalRound,
		FinalTurnsLeft: uint8(snap.FinalTurnsLeft),
		Phase:          phase,
	}

	for p, pl := range snap.Players {
		hand := make([]engine.Card, pl.HandSize)
		known := make([]engine.PlayerMask, pl.HandSize)
		for i := range hand {
			hand[i] = engine.Card{Rank: engine.RankUnknown}
		}
		for pos, info := range pl.Known {
			if pos < 0 || pos >= pl.HandSize {
				continue
			}
			hand[pos] = engine.Card{Rank: info.Rank, Played: info.Played}
			known[pos] = engine.OwnerOnly(me)
			if uint8(p) != me {
				known[pos] = known[pos].With(uint8(p))
			}
		}
		for pos := range hand {
			if known[pos] != 0 {
				continue
			}
			if b := mem.CardAt(uint8(p), pos); b.Known() && b.Confidence >= s.diff.ConfidenceThreshold {
				hand[pos] = engine.Card{Rank: b.Rank}
				known[pos] = engine.OwnerOnly(me)
			}
		}
		st.Players[p] = engine.SimPlayer{
			Hand:      hand,
			KnownBy:   known,
			Coalition: pl.Coalition,
		}
	}

	st.Discard = make([]engine.Card, len(snap.Discard))
	for i, c := range snap.Discard {
		st.Discard[i] = engine.Card{Rank: c.Rank, Played: c.Played}
	}
	if len(st.Discard) == 0 && dctx != nil && dctx.DiscardTop != nil {
		// Some engines send only the live top card instead of the pile.
		st.Discard = []engine.Card{{Rank: dctx.DiscardTop.Rank, Played: dctx.DiscardTop.Played}}
	}

	if snap.stockFullyKnown() {
		st.Stock = make([]engine.Card, len(snap.StockRanks))
		for i, r := range snap.StockRanks {
			st.Stock[i] = engine.Card{Rank: r}
		}
		st.StockKnown = true
	}

	if snap.Pending != nil {
		st.Pending = &engine.Card{Rank: snap.Pending.Rank, Played: snap.Pending.Played}
	}

	if idx, ok := snap.playerIndex(snap.CallerID); ok {
		st.Caller = int8(idx)
	}
	if idx, ok := snap.playerIndex(snap.LeaderID); ok {
		st.Leader = int8(idx)
	}

	switch phase {
	case engine.PhaseAction:
		st.Actor = me
		if dctx != nil {
			st.ActionRank = dctx.ActionRank
		}
	case engine.PhaseDrawn:
		st.Actor = me
		if st.Pending == nil {
			// The engine asked a placement question without telling us the
			// card: treat it as unknown and let determinization fill it.
			st.Pending = &engine.Card{Rank: engine.RankUnknown}
		}
	case engine.PhaseTossIn:
		st.TossQueue = []uint8{me}
		if dctx != nil && dctx.TossRank != 0 {
			st.TossRank = dctx.TossRank
		} else if top, ok := st.DiscardTop(); ok {
			// Toss windows match the live discard top; a Joker window
			// arrives this way since its rank is the zero value.
			st.TossRank = top.Rank
		}
	}
	return st
}

// planMove consults the shared coalition plan, computing and publishing
// one if this bot gets there first. The step matching the current phase
// is returned; when the plan has nothing for this bot at this phase the
// search decides instead.
func (s *Service) planMove(ctx context.Context, me uint8, snap *GameSnapshot, state *engine.SimState, mem *agent.Memory, phase engine.Phase) (engine.Move, bool) {
	plan, found, err := s.plans.Get(ctx, snap.GameID)
	if err != nil {
		s.log.WithError(err).WithField("game", snap.GameID).Warn("plan fetch failed")
		return engine.Move{}, false
	}
	if !found {
		// Plans are only computed from a turn-start state; mid-turn calls
		// without a plan fall through to the search.
		if phase != engine.PhaseTurnStart {
			return engine.Move{}, false
		}
		if exact, ok := s.solver.SolveExact(snap.GameID, state); ok {
			plan = exact
		} else {
			plan = s.solver.Solve(snap.GameID, state, mem)
		}
		if len(plan.Actions) == 0 {
			return engine.Move{}, false
		}
		if err := s.plans.Put(ctx, plan); err != nil {
			s.log.WithError(err).WithField("game", snap.GameID).Warn("plan publish failed")
		}
	}

	for _, action := range plan.ActionsFor(me) {
		for _, step := range action.Steps {
			if stepMatchesPhase(step, phase) {
				return step, true
			}
		}
	}
	return engine.Move{}, false
}

func stepMatchesPhase(mv engine.Move, phase engine.Phase) bool {
	switch phase {
	case engine.PhaseTurnStart:
		return mv.Kind == engine.MoveDraw || mv.Kind == engine.MoveTakeDiscard
	case engine.PhaseDrawn:
		return mv.Kind == engine.MoveSwap || mv.Kind == engine.MoveDiscard
	case engine.PhaseAction:
		return mv.Kind == engine.MoveUseAction
	case engine.PhaseTossIn:
		return mv.Kind == engine.MoveTossIn
	default:
		return false
	}
}
