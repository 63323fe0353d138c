package bot

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lonli-Lokli/vinto-sub003/engine"
	"github.com/Lonli-Lokli/vinto-sub003/search"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// takeSevenSnapshot builds the canonical scenario: the bot holds three
// unknown cards, the discard top is an unused Seven and the stock is
// empty, so taking the peek is the only sensible turn.
func takeSevenSnapshot(botID, oppID uuid.UUID) *GameSnapshot {
	return &GameSnapshot{
		GameID: uuid.New(),
		Players: []PlayerSnapshot{
			{ID: botID, HandSize: 3},
			{ID: oppID, HandSize: 2},
		},
		Current:   0,
		Turn:      4,
		Discard:   []CardInfo{{Rank: engine.RankSeven}},
		StockSize: 0,
	}
}

// TestTakeUnusedSevenEndToEnd walks the whole decision chain: take the
// Seven, peek an own unknown card, and confirm exactly one new
// confidence-1.0 belief lands in memory.
func TestTakeUnusedSevenEndToEnd(t *testing.T) {
	ctx := context.Background()
	botID, oppID := uuid.New(), uuid.New()
	svc := NewService(search.Easy(), WithSeed(42), WithLogger(quietLogger()))

	snap := takeSevenSnapshot(botID, oppID)
	dctx := &DecisionContext{DiscardTop: &CardInfo{Rank: engine.RankSeven}}

	decision := svc.ChooseTurnAction(ctx, botID, snap, dctx)
	require.Equal(t, TurnTakeDiscard, decision.Action)

	// The engine resolves the take; the Seven's peek now needs a target.
	targets := svc.ChooseActionTargets(ctx, botID, snap, &DecisionContext{ActionRank: engine.RankSeven})
	require.Len(t, targets.Targets, 1)
	assert.Equal(t, botID, targets.Targets[0].PlayerID, "peek-own must target the bot's hand")
	peeked := targets.Targets[0].Position
	assert.GreaterOrEqual(t, peeked, 0)
	assert.Less(t, peeked, 3)

	// The engine reveals the peeked card; the next call folds it in.
	reveal := &DecisionContext{
		Revealed: []RevealedCard{
			{PlayerID: botID, Position: peeked, Card: CardInfo{Rank: engine.RankFive}},
		},
	}
	svc.ShouldTossIn(ctx, botID, snap, reveal, peeked)

	svc.mu.Lock()
	bm := svc.memories[memoryKey{game: snap.GameID, bot: botID}]
	svc.mu.Unlock()
	require.NotNil(t, bm)

	confident := 0
	for _, b := range bm.mem.PlayerMemory(0) {
		if b.Confidence == 1.0 {
			confident++
		}
	}
	assert.Equal(t, 1, confident, "exactly one new confidence-1.0 position expected")
	assert.Equal(t, engine.RankFive, bm.mem.CardAt(0, peeked).Rank)
}

// TestUnknownBotDegradesToPass verifies a snapshot without the bot never
// errors.
func TestUnknownBotDegradesToPass(t *testing.T) {
	ctx := context.Background()
	svc := NewService(search.Easy(), WithSeed(1), WithLogger(quietLogger()))

	snap := takeSevenSnapshot(uuid.New(), uuid.New())
	decision := svc.ChooseTurnAction(ctx, uuid.New(), snap, nil)
	assert.Equal(t, TurnDraw, decision.Action)
}

// TestSnapshotKnowledgeFolds verifies per-player Known maps become
// confident beliefs on first contact.
func TestSnapshotKnowledgeFolds(t *testing.T) {
	ctx := context.Background()
	botID, oppID := uuid.New(), uuid.New()
	svc := NewService(search.Easy(), WithSeed(3), WithLogger(quietLogger()))

	snap := takeSevenSnapshot(botID, oppID)
	snap.Players[0].Known = map[int]CardInfo{
		0: {Rank: engine.RankJoker},
		2: {Rank: engine.RankKing},
	}

	svc.ChooseTurnAction(ctx, botID, snap, nil)

	svc.mu.Lock()
	bm := svc.memories[memoryKey{game: snap.GameID, bot: botID}]
	svc.mu.Unlock()
	require.NotNil(t, bm)
	assert.Equal(t, engine.RankJoker, bm.mem.CardAt(0, 0).Rank)
	assert.Equal(t, engine.RankKing, bm.mem.CardAt(0, 2).Rank)
	assert.False(t, bm.mem.CardAt(0, 1).Known())
}

// TestDiscardHistoryFoldsOnce verifies every publicly dead card shifts
// the remaining distribution exactly once, however often the rule engine
// replays the same snapshot.
func TestDiscardHistoryFoldsOnce(t *testing.T) {
	ctx := context.Background()
	botID, oppID := uuid.New(), uuid.New()
	svc := NewService(search.Easy(), WithSeed(11), WithLogger(quietLogger()))

	snap := takeSevenSnapshot(botID, oppID)
	snap.Discard = []CardInfo{{Rank: engine.RankKing}, {Rank: engine.RankKing}}

	svc.ChooseTurnAction(ctx, botID, snap, nil)
	svc.ChooseTurnAction(ctx, botID, snap, nil)

	svc.mu.Lock()
	bm := svc.memories[memoryKey{game: snap.GameID, bot: botID}]
	svc.mu.Unlock()
	require.NotNil(t, bm)
	assert.Equal(t, 2, bm.mem.Remaining()[engine.RankKing], "two dead Kings noted once each")

	// A grown pile folds only the new cards.
	snap.Discard = append(snap.Discard, CardInfo{Rank: engine.RankQueen})
	svc.ChooseTurnAction(ctx, botID, snap, nil)

	assert.Equal(t, 2, bm.mem.Remaining()[engine.RankKing])
	assert.Equal(t, 3, bm.mem.Remaining()[engine.RankQueen])
	assert.Less(t, bm.mem.MeanRemainingValue(), 6.7,
		"dead high cards must pull the unknown-card estimate down")
}

// TestSwapOutcomeMovesBelief verifies a reported swap carries the belief
// to its new slot without the card being revealed again.
func TestSwapOutcomeMovesBelief(t *testing.T) {
	ctx := context.Background()
	botID, oppID := uuid.New(), uuid.New()
	svc := NewService(search.Easy(), WithSeed(13), WithLogger(quietLogger()))

	first := takeSevenSnapshot(botID, oppID)
	first.Players[1].Known = map[int]CardInfo{0: {Rank: engine.RankQueen}}
	svc.ChooseTurnAction(ctx, botID, first, nil)

	second := takeSevenSnapshot(botID, oppID)
	second.GameID = first.GameID
	dctx := &DecisionContext{Swapped: []CardSwap{{
		From: TargetRef{PlayerID: oppID, Position: 0},
		To:   TargetRef{PlayerID: botID, Position: 1},
	}}}
	svc.ChooseTurnAction(ctx, botID, second, dctx)

	svc.mu.Lock()
	bm := svc.memories[memoryKey{game: first.GameID, bot: botID}]
	svc.mu.Unlock()
	require.NotNil(t, bm)
	assert.Equal(t, engine.RankQueen, bm.mem.CardAt(0, 1).Rank)
	assert.False(t, bm.mem.CardAt(1, 0).Known(), "the old slot no longer holds the Queen")
}

// TestSwapOffTableForgets verifies a swap whose far side left the
// tracked hands drops the belief and returns the rank to the
// distribution.
func TestSwapOffTableForgets(t *testing.T) {
	ctx := context.Background()
	botID, oppID := uuid.New(), uuid.New()
	svc := NewService(search.Easy(), WithSeed(17), WithLogger(quietLogger()))

	first := takeSevenSnapshot(botID, oppID)
	first.Players[0].Known = map[int]CardInfo{0: {Rank: engine.RankKing}}
	svc.ChooseTurnAction(ctx, botID, first, nil)

	second := takeSevenSnapshot(botID, oppID)
	second.GameID = first.GameID
	dctx := &DecisionContext{Swapped: []CardSwap{{
		From: TargetRef{PlayerID: botID, Position: 0},
		To:   TargetRef{PlayerID: uuid.Nil, Position: 0},
	}}}
	svc.ChooseTurnAction(ctx, botID, second, dctx)

	svc.mu.Lock()
	bm := svc.memories[memoryKey{game: first.GameID, bot: botID}]
	svc.mu.Unlock()
	require.NotNil(t, bm)
	assert.False(t, bm.mem.CardAt(0, 0).Known())
	assert.Equal(t, 4, bm.mem.Remaining()[engine.RankKing], "the lost King rejoins the distribution")
}

// TestEndGameDropsState verifies memories and plans are released.
func TestEndGameDropsState(t *testing.T) {
	ctx := context.Background()
	botID, oppID := uuid.New(), uuid.New()
	svc := NewService(search.Easy(), WithSeed(5), WithLogger(quietLogger()))

	snap := takeSevenSnapshot(botID, oppID)
	svc.ChooseTurnAction(ctx, botID, snap, nil)

	svc.mu.Lock()
	require.Len(t, svc.memories, 1)
	svc.mu.Unlock()

	svc.EndGame(ctx, snap.GameID)

	svc.mu.Lock()
	assert.Empty(t, svc.memories)
	svc.mu.Unlock()
}

// TestCoalitionPlanIsConsulted verifies the final-round path reads the
// shared plan instead of searching.
func TestCoalitionPlanIsConsulted(t *testing.T) {
	ctx := context.Background()
	botID, callerID := uuid.New(), uuid.New()
	svc := NewService(search.Easy(), WithSeed(9), WithLogger(quietLogger()))

	snap := &GameSnapshot{
		GameID: uuid.New(),
		Players: []PlayerSnapshot{
			{ID: botID, HandSize: 3, Coalition: true,
				Known: map[int]CardInfo{
					0: {Rank: engine.RankJoker},
					1: {Rank: engine.RankKing},
					2: {Rank: engine.RankKing},
				}},
			{ID: callerID, HandSize: 1, Known: map[int]CardInfo{0: {Rank: engine.RankTwo}}},
		},
		Current:        0,
		Turn:           30,
		Discard:        []CardInfo{{Rank: engine.RankTwo}},
		StockSize:      3,
		StockRanks:     []engine.Rank{engine.RankFour, engine.RankSix, engine.RankKing},
		CallerID:       callerID,
		FinalRound:     true,
		FinalTurnsLeft: 1,
	}

	decision := svc.ChooseTurnAction(ctx, botID, snap, nil)
	assert.Equal(t, TurnDraw, decision.Action, "the cascade line starts with a draw")

	plan, found, err := svc.plans.Get(ctx, snap.GameID)
	require.NoError(t, err)
	require.True(t, found, "the computed plan must be published")
	assert.True(t, plan.Exact)
	assert.Equal(t, -1.0, plan.Score)

	// The drawn King should be played for its declare, not kept.
	use := svc.ShouldUseAction(ctx, botID, snap, &DecisionContext{})
	assert.True(t, use)

	targets := svc.ChooseActionTargets(ctx, botID, snap, &DecisionContext{ActionRank: engine.RankKing})
	assert.Equal(t, engine.RankKing, targets.DeclaredRank)
}
