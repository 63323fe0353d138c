// Package coalition implements the final-round planning that runs once a
// Vinto call has been made: every non-caller cooperates to push one
// champion below the caller's score. Plans are computed once per game and
// published to a shared store so each bot instance reads its own slice
// instead of renegotiating.
package coalition

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

// PlanAction is one coalition member's scripted turn: the micro-moves the
// member should feed back to the rule engine, in order.
type PlanAction struct {
	Player uint8         `json:"player"`
	Steps  []engine.Move `json:"steps"`
}

// Plan is the agreed final-round script. Confidence is the known/estimated
// card ratio of the champion's projected final hand; Exact marks a plan
// produced by the DP solver over a fully-known draw pile.
type Plan struct {
	GameID     uuid.UUID    `json:"gameId"`
	Champion   uint8        `json:"champion"`
	Score      float64      `json:"score"`
	Confidence float64      `json:"confidence"`
	Actions    []PlanAction `json:"actions"`
	Exact      bool         `json:"exact"`
}

// ActionsFor returns the plan slice for one player.
func (p *Plan) ActionsFor(player uint8) []PlanAction {
	var out []PlanAction
	for _, a := range p.Actions {
		if a.Player == player {
			out = append(out, a)
		}
	}
	return out
}

// PlanStore shares plans between the bot instances of one live game,
// keyed by game id. Absence is a normal result, not an error.
type PlanStore interface {
	Get(ctx context.Context, gameID uuid.UUID) (Plan, bool, error)
	Put(ctx context.Context, plan Plan) error
	Delete(ctx context.Context, gameID uuid.UUID) error
}

// MemoryPlanStore is the in-process PlanStore. Concurrent games use
// disjoint keys and within one game writers only touch their own entry,
// so a single mutex around the map suffices.
type MemoryPlanStore struct {
	mu    sync.Mutex
	plans map[uuid.UUID]Plan
}

// NewMemoryPlanStore returns an empty store. The caller owns the
// lifecycle: create it at final-round start, drop it at game end.
func NewMemoryPlanStore() *MemoryPlanStore {
	return &MemoryPlanStore{plans: make(map[uuid.UUID]Plan)}
}

func (s *MemoryPlanStore) Get(_ context.Context, gameID uuid.UUID) (Plan, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[gameID]
	return plan, ok, nil
}

func (s *MemoryPlanStore) Put(_ context.Context, plan Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.GameID] = plan
	return nil
}

func (s *MemoryPlanStore) Delete(_ context.Context, gameID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, gameID)
	return nil
}
