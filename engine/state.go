package engine

import "math/rand"

const (
	MaxPlayers  = 6
	MaxHandSize = 8
)

// RankUnknown marks a hand position whose card has not been determinized.
// It never appears in a determinized world or on the discard pile.
const RankUnknown Rank = 0xFF

// Rules holds the fixed game parameters the simulation runs under.
type Rules struct {
	NumPlayers     uint8
	CardsPerPlayer uint8
	InitialPeeks   uint8 // own cards each player sees at deal time
	MaxGameTurns   int   // 0 = unlimited
}

// DefaultRules returns the standard four-player Vinto setup.
func DefaultRules() Rules {
	return Rules{
		NumPlayers:     4,
		CardsPerPlayer: 5,
		InitialPeeks:   2,
		MaxGameTurns:   120,
	}
}

// Phase describes what kind of decision the simulation is waiting on.
type Phase uint8

const (
	PhaseTurnStart Phase = iota // acting player chooses draw / take-discard / call-vinto
	PhaseDrawn                  // acting player places or discards the drawn card
	PhaseAction                 // acting player picks targets for a pending action
	PhaseTossIn                 // out-of-turn toss-in window
	PhaseGameOver
)

// PlayerMask is a bitmask of player indices who have seen a card.
type PlayerMask uint8

func (m PlayerMask) Has(p uint8) bool     { return m&(1<<p) != 0 }
func (m PlayerMask) With(p uint8) PlayerMask { return m | (1 << p) }

// OwnerOnly returns a mask containing just the given player.
func OwnerOnly(p uint8) PlayerMask { return 1 << p }

// SimPlayer is one player's side of the simulation state. Hand and KnownBy
// are parallel slices; KnownBy[i] records which players have seen Hand[i].
type SimPlayer struct {
	Hand      []Card
	KnownBy   []PlayerMask
	Coalition bool
}

// Score sums the player's hand values. Only meaningful once every position
// holds a concrete card.
func (p *SimPlayer) Score() int { return HandScore(p.Hand) }

// SimState is the compact simulation state the search operates on. It is
// never mutated in place: Apply clones it and returns a new instance, so no
// state aliases across sibling tree branches.
type SimState struct {
	Rules   Rules
	Players []SimPlayer

	Current uint8
	Turn    int

	Discard []Card // last element is the top of the pile
	Stock   []Card // last element is the next draw; may be empty before determinization

	// StockLen is the authoritative hidden draw-pile size. StockKnown is true
	// when Stock holds the real ordered pile (snapshot supplied it, or the
	// state is fully determinized) — the DP solver requires it.
	StockLen   int
	StockKnown bool

	Pending *Card // drawn card awaiting placement

	Caller int8 // Vinto caller index, -1 before the call
	Leader int8 // coalition leader index, -1 if unset

	FinalRound     bool
	FinalTurnsLeft uint8

	Phase Phase

	// PhaseAction bookkeeping.
	ActionRank Rank
	Actor      uint8

	// PhaseTossIn bookkeeping.
	TossRank  Rank
	TossQueue []uint8
}

// NewGame deals a fresh, fully concrete game for self-play and tests.
// Every card is dealt face down; each player additionally sees
// rules.InitialPeeks of their own cards.
func NewGame(seed int64, rules Rules) *SimState {
	if rules.NumPlayers < 2 {
		rules.NumPlayers = 2
	}
	if rules.NumPlayers > MaxPlayers {
		rules.NumPlayers = MaxPlayers
	}
	rng := rand.New(rand.NewSource(seed))

	deck := make([]Card, 0, DeckSize)
	for r := Rank(0); r < NumRanks; r++ {
		for i := 0; i < RankCount(r); i++ {
			deck = append(deck, Card{Rank: r})
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	s := &SimState{
		Rules:   rules,
		Players: make([]SimPlayer, rules.NumPlayers),
		Caller:  -1,
		Leader:  -1,
	}
	for c := uint8(0); c < rules.CardsPerPlayer; c++ {
		for p := range s.Players {
			card := deck[len(deck)-1]
			deck = deck[:len(deck)-1]
			s.Players[p].Hand = append(s.Players[p].Hand, card)
			s.Players[p].KnownBy = append(s.Players[p].KnownBy, 0)
		}
	}
	for p := range s.Players {
		for i := uint8(0); i < rules.InitialPeeks && int(i) < len(s.Players[p].Hand); i++ {
			s.Players[p].KnownBy[i] = OwnerOnly(uint8(p))
		}
	}

	// Flip the top card to start the discard pile.
	top := deck[len(deck)-1]
	deck = deck[:len(deck)-1]
	s.Discard = append(s.Discard, top)

	s.Stock = deck
	s.StockLen = len(deck)
	s.StockKnown = true
	s.Current = uint8(rng.Intn(int(rules.NumPlayers)))
	return s
}

// Clone returns a deep copy. Hands, knowledge masks, piles and the toss
// queue are all duplicated; the input is never aliased.
func (s *SimState) Clone() *SimState {
	c := *s
	c.Players = make([]SimPlayer, len(s.Players))
	for i := range s.Players {
		c.Players[i] = SimPlayer{
			Hand:      append([]Card(nil), s.Players[i].Hand...),
			KnownBy:   append([]PlayerMask(nil), s.Players[i].KnownBy...),
			Coalition: s.Players[i].Coalition,
		}
	}
	c.Discard = append([]Card(nil), s.Discard...)
	c.Stock = append([]Card(nil), s.Stock...)
	c.TossQueue = append([]uint8(nil), s.TossQueue...)
	if s.Pending != nil {
		pending := *s.Pending
		c.Pending = &pending
	}
	return &c
}

// IsTerminal reports whether the game has ended.
func (s *SimState) IsTerminal() bool { return s.Phase == PhaseGameOver }

// CoalitionActive reports whether Vinto has been called and the final
// coalition round is running.
func (s *SimState) CoalitionActive() bool { return s.Caller >= 0 }

// IsCaller reports whether p is the Vinto caller.
func (s *SimState) IsCaller(p uint8) bool { return s.Caller >= 0 && uint8(s.Caller) == p }

// ActingPlayer returns the player who must decide next.
func (s *SimState) ActingPlayer() uint8 {
	switch s.Phase {
	case PhaseTossIn:
		if len(s.TossQueue) > 0 {
			return s.TossQueue[0]
		}
		return s.Current
	case PhaseAction, PhaseDrawn:
		return s.Actor
	default:
		return s.Current
	}
}

// DiscardTop returns the top discard card.
func (s *SimState) DiscardTop() (Card, bool) { return s.DiscardAt(0) }

// DiscardAt returns the discard card at the given offset from the top
// (0 = top).
func (s *SimState) DiscardAt(offset int) (Card, bool) {
	idx := len(s.Discard) - 1 - offset
	if idx < 0 || idx >= len(s.Discard) {
		return Card{}, false
	}
	return s.Discard[idx], true
}

// NextPlayer returns the player after p in turn order, skipping the Vinto
// caller during the final round (the caller's turns are spent).
func (s *SimState) NextPlayer(p uint8) uint8 {
	n := uint8(len(s.Players))
	next := (p + 1) % n
	if s.FinalRound && s.IsCaller(next) {
		next = (next + 1) % n
	}
	return next
}

// Opponents returns every player index except p.
func (s *SimState) Opponents(p uint8) []uint8 {
	opps := make([]uint8, 0, len(s.Players)-1)
	for i := range s.Players {
		if uint8(i) != p {
			opps = append(opps, uint8(i))
		}
	}
	return opps
}

// KnownTo reports whether viewer has seen owner's card at pos.
func (s *SimState) KnownTo(viewer, owner uint8, pos int) bool {
	pl := &s.Players[owner]
	if pos < 0 || pos >= len(pl.KnownBy) {
		return false
	}
	return pl.KnownBy[pos].Has(viewer)
}

// EstimatedScore estimates owner's hand score from viewer's perspective:
// seen cards count exactly, unseen positions count as unknownValue (the
// caller supplies the mean of the remaining distribution).
func (s *SimState) EstimatedScore(viewer, owner uint8, unknownValue float64) float64 {
	pl := &s.Players[owner]
	total := 0.0
	for i, c := range pl.Hand {
		if pl.KnownBy[i].Has(viewer) && c.Rank != RankUnknown {
			total += float64(c.Value())
		} else {
			total += unknownValue
		}
	}
	return total
}
