package engine

// Move generation. Every generator works from the acting player's
// knowledge (the KnownBy masks), so the same code drives both the real
// decision and determinized rollouts. Output order matters: the search
// expands untried moves front to back, so higher-priority candidates come
// first.

// positionSets is the shared categorization every generator consumes. The
// coalition filter lives here and only here: when the acting player is a
// coalition member, the Vinto caller's positions are never emitted, so no
// individual generator can target the caller by accident.
type positionSets struct {
	ownKnown   []int8
	ownUnknown []int8
	oppKnown   []Target
	oppUnknown []Target
}

func categorizePositions(s *SimState, actor uint8) positionSets {
	var ps positionSets
	own := &s.Players[actor]
	for i := range own.Hand {
		if own.KnownBy[i].Has(actor) {
			ps.ownKnown = append(ps.ownKnown, int8(i))
		} else {
			ps.ownUnknown = append(ps.ownUnknown, int8(i))
		}
	}
	memberActing := s.CoalitionActive() && !s.IsCaller(actor)
	for _, opp := range s.Opponents(actor) {
		if memberActing && s.IsCaller(opp) {
			continue
		}
		pl := &s.Players[opp]
		for i := range pl.Hand {
			t := Target{Player: opp, Pos: int8(i)}
			if pl.KnownBy[i].Has(actor) {
				ps.oppKnown = append(ps.oppKnown, t)
			} else {
				ps.oppUnknown = append(ps.oppUnknown, t)
			}
		}
	}
	return ps
}

// cardAt returns the card at a target. The generator only inspects ranks
// of positions the actor has seen.
func cardAt(s *SimState, t Target) Card {
	return s.Players[t.Player].Hand[t.Pos]
}

// GenerateMoves enumerates the legal, strategically pruned moves for the
// acting player. A non-terminal state always yields at least one move
// (MovePass in the degenerate cases).
func GenerateMoves(s *SimState, tun *Tunables) []Move {
	switch s.Phase {
	case PhaseGameOver:
		return nil
	case PhaseTossIn:
		return tossInMoves(s)
	case PhaseAction:
		return actionMoves(s, tun)
	case PhaseDrawn:
		return drawnCardMoves(s, tun)
	case PhaseTurnStart:
		return turnStartMoves(s, tun)
	default:
		return []Move{{Kind: MovePass}}
	}
}

func tossInMoves(s *SimState) []Move {
	actor := s.ActingPlayer()
	moves := []Move{}
	own := &s.Players[actor]
	for i, c := range own.Hand {
		if own.KnownBy[i].Has(actor) && c.Rank == s.TossRank {
			moves = append(moves, Move{Kind: MoveTossIn, Pos: int8(i)})
		}
	}
	return append(moves, Move{Kind: MovePass})
}

func turnStartMoves(s *SimState, tun *Tunables) []Move {
	actor := s.Current
	var moves []Move

	if s.StockLen > 0 {
		moves = append(moves, Move{Kind: MoveDraw})
	}
	if top, ok := s.DiscardTop(); ok && top.HasUnusedAction() && wantDiscardAction(s, actor, top) {
		moves = append(moves, Move{Kind: MoveTakeDiscard})
	}
	if !s.CoalitionActive() && shouldCallVinto(s, actor, tun) {
		moves = append(moves, Move{Kind: MoveCallVinto})
	}
	if len(moves) == 0 {
		moves = append(moves, Move{Kind: MovePass})
	}
	return moves
}

// wantDiscardAction is the take-discard heuristic. A Queen is always worth
// taking; the peek ranks only when there is something left to learn. Jack,
// King, Ace and plain values are never taken — their action (or lack of
// one) is worth less than the draw.
func wantDiscardAction(s *SimState, actor uint8, top Card) bool {
	ps := categorizePositions(s, actor)
	switch top.Rank.Action() {
	case ActionPeekSwap:
		return true
	case ActionPeekOwn:
		return len(ps.ownUnknown) >= 1
	case ActionPeekOther:
		return len(ps.oppUnknown) >= 1
	case ActionSwapBlind, ActionDeclare, ActionForceDraw, ActionNone:
		return false
	default:
		return false
	}
}

// shouldCallVinto is the threat assessment behind call-vinto. The bot must
// lead the opponent average by a margin that widens as the opponents are
// known to hold dangerous action cards (J/Q/K), and at high danger must
// also clearly beat the single best opponent.
func shouldCallVinto(s *SimState, actor uint8, tun *Tunables) bool {
	opps := s.Opponents(actor)
	if len(opps) == 0 {
		return false
	}
	myScore := s.EstimatedScore(actor, actor, tun.UnknownCardValue)

	sum := 0.0
	best := 0.0
	for i, opp := range opps {
		sc := s.EstimatedScore(actor, opp, tun.UnknownCardValue)
		sum += sc
		if i == 0 || sc < best {
			best = sc
		}
	}
	avg := sum / float64(len(opps))

	danger := knownDangerCount(s, actor)
	margin := tun.VintoBaseMargin
	switch {
	case danger >= tun.VintoHighDanger:
		margin += tun.VintoHighBump
	case danger >= tun.VintoMidDanger:
		margin += tun.VintoMidBump
	}
	if myScore > avg-margin {
		return false
	}
	if danger >= tun.VintoHighDanger && myScore > best-tun.VintoClearLead {
		return false
	}
	return true
}

// knownDangerCount counts opponent cards the actor has seen that still
// threaten a swing: unplayed Jacks, Queens and Kings.
func knownDangerCount(s *SimState, actor uint8) int {
	count := 0
	for _, opp := range s.Opponents(actor) {
		pl := &s.Players[opp]
		for i, c := range pl.Hand {
			if !pl.KnownBy[i].Has(actor) {
				continue
			}
			switch c.Rank {
			case RankJack, RankQueen, RankKing:
				count++
			}
		}
	}
	return count
}

func drawnCardMoves(s *SimState, tun *Tunables) []Move {
	actor := s.Actor
	var moves []Move

	// Swapping into a known high position first: that is the usual best
	// line and the search should try it early.
	own := &s.Players[actor]
	ordered := make([]posVal, 0, len(own.Hand))
	for i, c := range own.Hand {
		pv := posVal{pos: int8(i)}
		if own.KnownBy[i].Has(actor) && c.Rank != RankUnknown {
			pv.val = c.Value()
			pv.seen = true
		}
		ordered = append(ordered, pv)
	}
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if rankSwapBefore(ordered[j], ordered[i]) {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	for _, pv := range ordered {
		moves = append(moves, Move{Kind: MoveSwap, Pos: pv.pos})
	}

	if s.Pending != nil && s.Pending.HasUnusedAction() && actionUsable(s, actor, s.Pending.Rank, tun) {
		moves = append(moves, Move{Kind: MoveDiscard, UseAction: true})
	}
	moves = append(moves, Move{Kind: MoveDiscard})
	return moves
}

type posVal struct {
	pos  int8
	val  int
	seen bool
}

func rankSwapBefore(a, b posVal) bool {
	// Known high cards beat unknowns beat known low cards.
	switch {
	case a.seen && b.seen:
		return a.val > b.val
	case a.seen:
		return a.val >= 8
	case b.seen:
		return b.val < 8
	default:
		return false
	}
}

// actionUsable mirrors the teacher's ability-fizzle check: an action is
// only offered when it has at least one legal target.
func actionUsable(s *SimState, actor uint8, r Rank, tun *Tunables) bool {
	ps := categorizePositions(s, actor)
	switch r.Action() {
	case ActionPeekOwn:
		return len(ps.ownUnknown) > 0
	case ActionPeekOther:
		return len(ps.oppUnknown) > 0
	case ActionSwapBlind:
		return len(ps.oppKnown)+len(ps.oppUnknown) > 0 && len(s.Players[actor].Hand) > 0
	case ActionPeekSwap:
		return len(ps.oppKnown)+len(ps.oppUnknown) > 0 && len(s.Players[actor].Hand) > 0
	case ActionDeclare:
		return len(declareCandidates(s, actor)) > 0
	case ActionForceDraw:
		if s.CoalitionActive() && !s.IsCaller(actor) {
			return false
		}
		if len(s.Opponents(actor)) == 0 || s.StockLen == 0 {
			return false
		}
		// Spend the Ace only while an opponent is within striking
		// distance of the actor's own score.
		my := s.EstimatedScore(actor, actor, tun.UnknownCardValue)
		for _, opp := range s.Opponents(actor) {
			if s.EstimatedScore(actor, opp, tun.UnknownCardValue) <= my+tun.AceScoreGap {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func actionMoves(s *SimState, tun *Tunables) []Move {
	actor := s.Actor
	ps := categorizePositions(s, actor)
	var moves []Move

	switch s.ActionRank.Action() {
	case ActionPeekOwn:
		for _, pos := range ps.ownUnknown {
			moves = append(moves, Move{Kind: MoveUseAction, Targets: []Target{{Player: actor, Pos: pos}}})
		}

	case ActionPeekOther:
		for _, t := range ps.oppUnknown {
			moves = append(moves, Move{Kind: MoveUseAction, Targets: []Target{t}})
		}

	case ActionSwapBlind:
		moves = append(moves, blindSwapMoves(s, actor, ps, tun)...)

	case ActionPeekSwap:
		moves = append(moves, peekSwapMoves(s, actor, ps, tun)...)

	case ActionDeclare:
		for _, r := range declareCandidates(s, actor) {
			moves = append(moves, Move{Kind: MoveUseAction, DeclaredRank: r})
		}

	case ActionForceDraw:
		if !(s.CoalitionActive() && !s.IsCaller(actor)) && s.StockLen > 0 {
			for _, opp := range s.Opponents(actor) {
				moves = append(moves, Move{Kind: MoveUseAction, Targets: []Target{{Player: opp, Pos: -1}}})
			}
		}
	}

	if len(moves) == 0 {
		// Action fizzles: nothing worth (or legal) to target.
		moves = append(moves, Move{Kind: MovePass})
	}
	return moves
}

// blindSwapMoves ranks Jack swap pairs: shipping a known high own card for
// an opponent unknown/low card first, opponent-vs-opponent disruption
// second, pure exploration last.
func blindSwapMoves(s *SimState, actor uint8, ps positionSets, tun *Tunables) []Move {
	own := &s.Players[actor]
	var high, disrupt, explore []Move

	oppTargets := append(append([]Target(nil), ps.oppUnknown...), ps.oppKnown...)

	for _, pos := range ps.ownKnown {
		if own.Hand[pos].Value() < tun.HighCardCutoff {
			continue
		}
		for _, t := range oppTargets {
			isKnown := s.KnownTo(actor, t.Player, int(t.Pos))
			if isKnown && cardAt(s, t).Value() > tun.LowCardCutoff {
				continue
			}
			high = append(high, Move{Kind: MoveUseAction, Targets: []Target{{Player: actor, Pos: pos}, t}})
		}
	}

	// Disruption: shuffle a known opponent card into another opponent's
	// hand. Helps in normal play by scrambling others' information.
	for _, a := range ps.oppKnown {
		for _, b := range ps.oppUnknown {
			if a.Player == b.Player {
				continue
			}
			disrupt = append(disrupt, Move{Kind: MoveUseAction, Targets: []Target{a, b}})
		}
	}

	for _, pos := range ps.ownUnknown {
		for _, t := range ps.oppUnknown {
			explore = append(explore, Move{Kind: MoveUseAction, Targets: []Target{{Player: actor, Pos: pos}, t}})
		}
	}

	moves := append(high, disrupt...)
	moves = append(moves, explore...)
	if len(moves) > tun.MaxSwapCandidates {
		moves = moves[:tun.MaxSwapCandidates]
	}
	return moves
}

// peekSwapMoves builds the Queen's candidate pairs. Each pair is emitted
// twice: peek-only and peek-and-swap. Opponent cards known to be a Joker
// or King, worth at most LowCardCutoff, or matching a live toss-in rank
// are prioritized over plain unknowns.
func peekSwapMoves(s *SimState, actor uint8, ps positionSets, tun *Tunables) []Move {
	var priority, plain []Target
	for _, t := range ps.oppKnown {
		c := cardAt(s, t)
		switch {
		case c.Rank == RankJoker || c.Rank == RankKing:
			priority = append(priority, t)
		case c.Value() <= tun.LowCardCutoff:
			priority = append(priority, t)
		default:
			if top, ok := s.DiscardTop(); ok && c.Rank == top.Rank {
				// Matches the live toss-in rank: swapping it to the
				// actor's hand sets up an immediate toss.
				priority = append(priority, t)
			}
		}
	}
	plain = append(plain, ps.oppUnknown...)

	ownSide := append(append([]int8(nil), ps.ownUnknown...), ps.ownKnown...)
	if len(ownSide) == 0 {
		return nil
	}

	var moves []Move
	emit := func(t Target) {
		own := Target{Player: actor, Pos: ownSide[0]}
		pair := []Target{own, t}
		moves = append(moves,
			Move{Kind: MoveUseAction, Targets: pair},
			Move{Kind: MoveUseAction, Targets: pair, WithSwap: true},
		)
	}
	for _, t := range priority {
		emit(t)
	}
	for _, t := range plain {
		emit(t)
	}
	if len(moves) > 2*tun.MaxSwapCandidates {
		moves = moves[:2*tun.MaxSwapCandidates]
	}
	return moves
}

// CascadeLegal reports whether declaring rank r removes anything: an
// action rank needs at least two copies across all hands, a plain rank at
// least one.
func CascadeLegal(s *SimState, r Rank) bool {
	count := countRankAllHands(s, r)
	if r.HasAction() {
		return count >= 2
	}
	return count >= 1
}

func countRankAllHands(s *SimState, r Rank) int {
	count := 0
	for p := range s.Players {
		for _, c := range s.Players[p].Hand {
			if c.Rank == r {
				count++
			}
		}
	}
	return count
}

// declareCandidates picks the ranks worth declaring with a King. Own-hand
// cascades come first (multi-card and King cascades ahead of the rest); a
// rank the actor holds no copy of is only declared in coalition mode,
// where stripping a teammate's duplicates still helps the champion.
func declareCandidates(s *SimState, actor uint8) []Rank {
	own := &s.Players[actor]
	ownCount := [NumRanks]int{}
	for i, c := range own.Hand {
		if own.KnownBy[i].Has(actor) && c.Rank < NumRanks {
			ownCount[c.Rank]++
		}
	}

	memberActing := s.CoalitionActive() && !s.IsCaller(actor)

	var multi, single, assist []Rank
	for r := Rank(0); r < NumRanks; r++ {
		if !CascadeLegal(s, r) {
			continue
		}
		switch {
		case ownCount[r] >= 2 || (ownCount[r] >= 1 && r == RankKing):
			multi = append(multi, r)
		case ownCount[r] >= 1:
			single = append(single, r)
		case memberActing:
			// Coalition attack: the rank lives only in other hands.
			assist = append(assist, r)
		}
	}
	out := append(multi, single...)
	return append(out, assist...)
}
