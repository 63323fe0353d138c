package engine

// Apply is the pure transition: it clones the state, applies the move to
// the clone and returns it. The input is never mutated. Moves are trusted
// generator output — no legality re-validation happens here; applying a
// move the generator would not emit is undefined behavior, guarded only by
// AssertLegal in tests.
func Apply(s *SimState, mv Move) *SimState {
	n := s.Clone()
	actor := s.ActingPlayer()

	switch mv.Kind {
	case MoveDraw:
		applyDraw(n, actor)
	case MoveTakeDiscard:
		applyTakeDiscard(n, actor)
	case MoveSwap:
		applySwap(n, actor, mv.Pos)
	case MoveDiscard:
		applyDiscardPending(n, actor, mv.UseAction)
	case MoveUseAction:
		applyAction(n, actor, mv)
	case MoveTossIn:
		applyTossIn(n, actor, mv.Pos)
	case MoveCallVinto:
		applyCallVinto(n, actor)
	case MovePass:
		applyPass(n)
	}
	return n
}

func applyDraw(n *SimState, actor uint8) {
	var card Card
	if len(n.Stock) > 0 {
		card = n.Stock[len(n.Stock)-1]
		n.Stock = n.Stock[:len(n.Stock)-1]
	} else {
		// Undeterminized stock: the tree still branches over the
		// post-draw decisions, the card itself stays a placeholder until
		// a rollout determinizes the world.
		card = Card{Rank: RankUnknown}
	}
	n.StockLen--
	n.Pending = &card
	n.Actor = actor
	n.Phase = PhaseDrawn
}

func applyTakeDiscard(n *SimState, actor uint8) {
	top := &n.Discard[len(n.Discard)-1]
	top.Played = true
	n.ActionRank = top.Rank
	n.Actor = actor
	n.Phase = PhaseAction
}

func applySwap(n *SimState, actor uint8, pos int8) {
	pl := &n.Players[actor]
	old := pl.Hand[pos]
	pl.Hand[pos] = *n.Pending
	pl.KnownBy[pos] = OwnerOnly(actor)
	n.Pending = nil
	discardCard(n, old)
	openTossWindow(n, old.Rank)
}

func applyDiscardPending(n *SimState, actor uint8, useAction bool) {
	card := *n.Pending
	n.Pending = nil
	if useAction && card.HasUnusedAction() {
		card.Played = true
		discardCard(n, card)
		n.ActionRank = card.Rank
		n.Actor = actor
		n.Phase = PhaseAction
		return
	}
	discardCard(n, card)
	openTossWindow(n, card.Rank)
}

func applyAction(n *SimState, actor uint8, mv Move) {
	switch n.ActionRank.Action() {
	case ActionPeekOwn, ActionPeekOther:
		t := mv.Targets[0]
		reveal(n, actor, t)

	case ActionSwapBlind:
		swapTargets(n, mv.Targets[0], mv.Targets[1])

	case ActionPeekSwap:
		reveal(n, actor, mv.Targets[0])
		reveal(n, actor, mv.Targets[1])
		if mv.WithSwap {
			swapTargets(n, mv.Targets[0], mv.Targets[1])
		}

	case ActionDeclare:
		cascade(n, mv.DeclaredRank)

	case ActionForceDraw:
		forceDraw(n, mv.Targets[0].Player)
	}
	n.ActionRank = 0
	endTurn(n)
}

func reveal(n *SimState, viewer uint8, t Target) {
	pl := &n.Players[t.Player]
	if t.Pos >= 0 && int(t.Pos) < len(pl.KnownBy) {
		pl.KnownBy[t.Pos] = pl.KnownBy[t.Pos].With(viewer)
	}
}

// swapTargets exchanges two hand cards. Knowledge masks travel with the
// cards: everyone who had seen a card still knows it at its new home.
func swapTargets(n *SimState, a, b Target) {
	pa, pb := &n.Players[a.Player], &n.Players[b.Player]
	pa.Hand[a.Pos], pb.Hand[b.Pos] = pb.Hand[b.Pos], pa.Hand[a.Pos]
	pa.KnownBy[a.Pos], pb.KnownBy[b.Pos] = pb.KnownBy[b.Pos], pa.KnownBy[a.Pos]
}

// cascade removes every card of rank r from every hand when the declare
// is effective (CascadeLegal); otherwise nothing is removed. Removed cards
// land on the discard pile face up.
func cascade(n *SimState, r Rank) {
	if !CascadeLegal(n, r) {
		return
	}
	for p := range n.Players {
		pl := &n.Players[p]
		kept := pl.Hand[:0]
		keptKnown := pl.KnownBy[:0]
		for i, c := range pl.Hand {
			if c.Rank == r {
				discardCard(n, c)
				continue
			}
			kept = append(kept, c)
			keptKnown = append(keptKnown, pl.KnownBy[i])
		}
		pl.Hand = kept
		pl.KnownBy = keptKnown
	}
}

func forceDraw(n *SimState, target uint8) {
	if len(n.Stock) == 0 {
		return
	}
	pl := &n.Players[target]
	if len(pl.Hand) >= MaxHandSize {
		return
	}
	card := n.Stock[len(n.Stock)-1]
	n.Stock = n.Stock[:len(n.Stock)-1]
	n.StockLen--
	pl.Hand = append(pl.Hand, card)
	pl.KnownBy = append(pl.KnownBy, 0)
}

func applyTossIn(n *SimState, actor uint8, pos int8) {
	pl := &n.Players[actor]
	card := pl.Hand[pos]
	pl.Hand = append(pl.Hand[:pos], pl.Hand[pos+1:]...)
	pl.KnownBy = append(pl.KnownBy[:pos], pl.KnownBy[pos+1:]...)
	discardCard(n, card)
	// The tosser stays at the front of the queue: multiple copies may be
	// tossed in one window.
}

func applyCallVinto(n *SimState, actor uint8) {
	n.Caller = int8(actor)
	n.FinalRound = true
	// The caller's own endTurn consumes one tick, leaving one final turn
	// per coalition member.
	n.FinalTurnsLeft = uint8(len(n.Players))
	for p := range n.Players {
		n.Players[p].Coalition = uint8(p) != actor
	}
	endTurn(n)
}

func applyPass(n *SimState) {
	if n.Phase == PhaseTossIn {
		if len(n.TossQueue) > 0 {
			n.TossQueue = n.TossQueue[1:]
		}
		if len(n.TossQueue) == 0 {
			endTurn(n)
		}
		return
	}
	endTurn(n)
}

func discardCard(n *SimState, c Card) {
	n.Discard = append(n.Discard, c)
}

// openTossWindow starts an out-of-turn toss-in window on rank r. Every
// player gets a slot, starting with the player after the discarder.
func openTossWindow(n *SimState, r Rank) {
	n.TossRank = r
	n.TossQueue = n.TossQueue[:0]
	start := n.Current
	count := uint8(len(n.Players))
	for i := uint8(0); i < count; i++ {
		n.TossQueue = append(n.TossQueue, (start+1+i)%count)
	}
	n.Phase = PhaseTossIn
}

// endTurn advances to the next player's turn start, handling final-round
// countdown, the turn cap and deck exhaustion.
func endTurn(n *SimState) {
	n.Phase = PhaseTurnStart
	n.Actor = 0
	n.TossQueue = n.TossQueue[:0]
	n.Turn++

	if n.FinalRound {
		if n.FinalTurnsLeft > 0 {
			n.FinalTurnsLeft--
		}
		if n.FinalTurnsLeft == 0 {
			n.Phase = PhaseGameOver
			return
		}
	}
	if n.Rules.MaxGameTurns > 0 && n.Turn >= n.Rules.MaxGameTurns {
		n.Phase = PhaseGameOver
		return
	}
	if n.StockLen == 0 {
		n.Phase = PhaseGameOver
		return
	}
	n.Current = n.NextPlayer(n.Current)
}

// AssertLegal reports whether the generator would emit mv in state s. It
// exists as a defensive check for tests; a failure indicates a generator
// defect, not something to correct silently.
func AssertLegal(s *SimState, mv Move, tun *Tunables) bool {
	for _, m := range GenerateMoves(s, tun) {
		if m.Equal(mv) {
			return true
		}
	}
	return false
}
