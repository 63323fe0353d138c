package coalition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const planKeyPrefix = "vintobot:plan:"

// RedisPlanStore shares plans across processes when the bot instances of
// one game do not live in the same runtime. Plans are stored as JSON with
// a TTL that outlives any final round.
type RedisPlanStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisPlanStore wraps an existing client. A zero ttl defaults to one
// hour.
func NewRedisPlanStore(rdb *redis.Client, ttl time.Duration) *RedisPlanStore {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &RedisPlanStore{rdb: rdb, ttl: ttl}
}

func planKey(gameID uuid.UUID) string { return planKeyPrefix + gameID.String() }

func (s *RedisPlanStore) Get(ctx context.Context, gameID uuid.UUID) (Plan, bool, error) {
	data, err := s.rdb.Get(ctx, planKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Plan{}, false, nil
	}
	if err != nil {
		return Plan{}, false, fmt.Errorf("coalition: fetch plan: %w", err)
	}
	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return Plan{}, false, fmt.Errorf("coalition: decode plan: %w", err)
	}
	return plan, true, nil
}

func (s *RedisPlanStore) Put(ctx context.Context, plan Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("coalition: encode plan: %w", err)
	}
	if err := s.rdb.Set(ctx, planKey(plan.GameID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("coalition: store plan: %w", err)
	}
	return nil
}

func (s *RedisPlanStore) Delete(ctx context.Context, gameID uuid.UUID) error {
	if err := s.rdb.Del(ctx, planKey(gameID)).Err(); err != nil {
		return fmt.Errorf("coalition: delete plan: %w", err)
	}
	return nil
}
