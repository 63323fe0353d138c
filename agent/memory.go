// Package agent implements per-bot belief tracking over hidden cards and
// the determinizer that samples fully-known worlds for search rollouts.
package agent

import (
	"math/rand"

	"github.com/Lonli-Lokli/vinto-sub003/engine"
)

// PositionKey addresses one hand slot: a player and a position index.
type PositionKey struct {
	Owner uint8
	Pos   int
}

// CardMemory is a belief about one hand slot. The zero value means
// "unknown" — absence of knowledge is a value, never an error.
type CardMemory struct {
	Rank       engine.Rank
	Confidence float64
}

// Known reports whether the belief is a real observation rather than the
// unknown zero value.
func (c CardMemory) Known() bool { return c.Confidence > 0 }

// Memory is one bot's belief store: per-slot beliefs plus the remaining
// distribution of ranks the bot has not yet seen anywhere. Confidence only
// increases via explicit observation (own knowledge, peeks, swap
// outcomes); there is no decay.
type Memory struct {
	beliefs   map[PositionKey]CardMemory
	remaining [engine.NumRanks]int
}

// NewMemory returns a memory seeded with the full-deck distribution.
func NewMemory() *Memory {
	return &Memory{
		beliefs:   make(map[PositionKey]CardMemory),
		remaining: engine.FullDeckCounts(),
	}
}

// ObserveCard records a confidence-1.0 belief and removes the rank from
// the remaining distribution. A previous confident belief about the slot
// is returned to the distribution first.
func (m *Memory) ObserveCard(r engine.Rank, owner uint8, pos int) {
	key := PositionKey{Owner: owner, Pos: pos}
	m.release(key)
	m.beliefs[key] = CardMemory{Rank: r, Confidence: 1.0}
	m.take(r)
}

// Suspect records a partial-confidence belief (e.g. inferred from a swap
// outcome). It never lowers an existing confidence.
func (m *Memory) Suspect(r engine.Rank, owner uint8, pos int, confidence float64) {
	key := PositionKey{Owner: owner, Pos: pos}
	if prev, ok := m.beliefs[key]; ok && prev.Confidence >= confidence {
		return
	}
	m.beliefs[key] = CardMemory{Rank: r, Confidence: confidence}
}

// ForgetCard drops the belief about a slot, returning a confident rank to
// the remaining distribution (the card went somewhere the bot lost track
// of).
func (m *Memory) ForgetCard(owner uint8, pos int) {
	m.release(PositionKey{Owner: owner, Pos: pos})
}

// MoveBelief transfers a belief between slots, following a card the bot
// watched move (swap outcomes keep their confidence).
func (m *Memory) MoveBelief(fromOwner uint8, fromPos int, toOwner uint8, toPos int) {
	from := PositionKey{Owner: fromOwner, Pos: fromPos}
	to := PositionKey{Owner: toOwner, Pos: toPos}
	a, okA := m.beliefs[from]
	b, okB := m.beliefs[to]
	delete(m.beliefs, from)
	delete(m.beliefs, to)
	if okA {
		m.beliefs[to] = a
	}
	if okB {
		m.beliefs[from] = b
	}
}

// NoteDiscard removes a publicly visible rank (discards, cascades) from
// the remaining distribution.
func (m *Memory) NoteDiscard(r engine.Rank) { m.take(r) }

// CardAt is a pure lookup: the zero-value CardMemory (confidence 0) when
// nothing is known.
func (m *Memory) CardAt(owner uint8, pos int) CardMemory {
	return m.beliefs[PositionKey{Owner: owner, Pos: pos}]
}

// PlayerMemory returns a copy of every belief held about one player.
func (m *Memory) PlayerMemory(owner uint8) map[int]CardMemory {
	out := make(map[int]CardMemory)
	for key, b := range m.beliefs {
		if key.Owner == owner {
			out[key.Pos] = b
		}
	}
	return out
}

// Remaining returns a copy of the remaining-rank distribution.
func (m *Memory) Remaining() [engine.NumRanks]int { return m.remaining }

// RemainingTotal is the number of unseen cards.
func (m *Memory) RemainingTotal() int {
	total := 0
	for _, n := range m.remaining {
		total += n
	}
	return total
}

// MeanRemainingValue is the expected value of an unseen card, used to
// estimate unknown positions.
func (m *Memory) MeanRemainingValue() float64 {
	total, sum := 0, 0
	for r := engine.Rank(0); r < engine.NumRanks; r++ {
		n := m.remaining[r]
		total += n
		sum += n * r.Value()
	}
	if total == 0 {
		return engine.DefaultTunables().UnknownCardValue
	}
	return float64(sum) / float64(total)
}

// SampleCardFromDistribution draws a rank proportionally to the remaining
// counts. The last-resort fallback when the distribution itself is empty
// is a uniform full-deck draw.
func (m *Memory) SampleCardFromDistribution(rng *rand.Rand) engine.Rank {
	total := m.RemainingTotal()
	if total == 0 {
		full := engine.FullDeckCounts()
		pick := rng.Intn(engine.DeckSize)
		for r := engine.Rank(0); r < engine.NumRanks; r++ {
			pick -= full[r]
			if pick < 0 {
				return r
			}
		}
		return engine.RankKing
	}
	pick := rng.Intn(total)
	for r := engine.Rank(0); r < engine.NumRanks; r++ {
		pick -= m.remaining[r]
		if pick < 0 {
			return r
		}
	}
	return engine.RankKing
}

// KnownDangerCount counts the confident beliefs about owner's unplayed
// swing cards (Jack, Queen, King) — the opponent-threat input of the
// Vinto assessment.
func (m *Memory) KnownDangerCount(owner uint8) int {
	count := 0
	for key, b := range m.beliefs {
		if key.Owner != owner || b.Confidence <= 0.5 {
			continue
		}
		switch b.Rank {
		case engine.RankJack, engine.RankQueen, engine.RankKing:
			count++
		}
	}
	return count
}

func (m *Memory) take(r engine.Rank) {
	if r < engine.NumRanks && m.remaining[r] > 0 {
		m.remaining[r]--
	}
}

func (m *Memory) release(key PositionKey) {
	if prev, ok := m.beliefs[key]; ok {
		if prev.Confidence > 0.5 && prev.Rank < engine.NumRanks {
			m.remaining[prev.Rank]++
		}
		delete(m.beliefs, key)
	}
}
