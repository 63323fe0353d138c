package engine

// State evaluation in [0,1] from one player's (or the coalition's)
// viewpoint. Non-terminal scores are heuristic blends; terminal states are
// exact outcomes.

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Winners returns the players with the lowest hand score. A tie involving
// the Vinto caller goes to the caller alone.
func Winners(s *SimState) []uint8 {
	min := 0
	for p := range s.Players {
		sc := s.Players[p].Score()
		if p == 0 || sc < min {
			min = sc
		}
	}
	var winners []uint8
	for p := range s.Players {
		if s.Players[p].Score() == min {
			winners = append(winners, uint8(p))
		}
	}
	if s.Caller >= 0 {
		for _, w := range winners {
			if w == uint8(s.Caller) {
				return []uint8{w}
			}
		}
	}
	return winners
}

// Evaluate scores the state for the given viewpoint. During the coalition
// round a non-caller viewpoint is scored as the coalition: the round is
// won when any non-caller beats the caller.
func Evaluate(s *SimState, viewpoint uint8, tun *Tunables) float64 {
	if s.IsTerminal() {
		return terminalValue(s, viewpoint)
	}
	if s.CoalitionActive() && !s.IsCaller(viewpoint) {
		return coalitionEval(s, viewpoint, tun)
	}
	return normalEval(s, viewpoint, tun)
}

func terminalValue(s *SimState, viewpoint uint8) float64 {
	winners := Winners(s)
	if s.CoalitionActive() && !s.IsCaller(viewpoint) {
		for _, w := range winners {
			if !s.IsCaller(w) {
				return 1.0
			}
		}
		return 0.0
	}
	for _, w := range winners {
		if w == viewpoint {
			return 1.0
		}
	}
	return 0.0
}

func normalEval(s *SimState, viewpoint uint8, tun *Tunables) float64 {
	opps := s.Opponents(viewpoint)
	myScore := s.EstimatedScore(viewpoint, viewpoint, tun.UnknownCardValue)
	oppSum, oppCards := 0.0, 0.0
	for _, o := range opps {
		oppSum += s.EstimatedScore(viewpoint, o, tun.UnknownCardValue)
		oppCards += float64(len(s.Players[o].Hand))
	}
	oppAvg := oppSum / float64(len(opps))
	oppAvgCards := oppCards / float64(len(opps))

	toss := tossPotential(s, viewpoint, viewpoint)

	position := 0.5*clamp01(0.5+(oppAvg-myScore)/40) +
		0.5*clamp01(0.5+(oppAvgCards-float64(len(s.Players[viewpoint].Hand)))/10)

	action := actionValueHeld(s, viewpoint)
	info := informationAdvantage(s, viewpoint)
	threat := 1 - clamp01(float64(knownDangerCount(s, viewpoint))/4)

	v := tun.WTossIn*toss +
		tun.WPosition*position +
		tun.WActionValue*action +
		tun.WInformation*info +
		tun.WThreat*threat
	return clamp01(v)
}

// tossPotential measures how many of owner's cards (as seen by viewer)
// match the live discard rank and could be tossed in.
func tossPotential(s *SimState, viewer, owner uint8) float64 {
	top, ok := s.DiscardTop()
	if !ok {
		return 0
	}
	pl := &s.Players[owner]
	matches := 0.0
	for i, c := range pl.Hand {
		if pl.KnownBy[i].Has(viewer) && c.Rank == top.Rank {
			matches += 0.5
		}
	}
	return clamp01(matches)
}

// actionValueHeld weighs the unplayed action cards the viewpoint knows in
// its own hand: big swings (J/Q/K) count full, the rest half.
func actionValueHeld(s *SimState, viewpoint uint8) float64 {
	pl := &s.Players[viewpoint]
	sum := 0.0
	for i, c := range pl.Hand {
		if !pl.KnownBy[i].Has(viewpoint) || !c.HasUnusedAction() {
			continue
		}
		switch c.Rank {
		case RankJack, RankQueen, RankKing:
			sum += 1.0
		default:
			sum += 0.5
		}
	}
	return clamp01(sum / 3)
}

// informationAdvantage is the fraction of all live hand cards the
// viewpoint has seen.
func informationAdvantage(s *SimState, viewpoint uint8) float64 {
	total, known := 0, 0
	for p := range s.Players {
		pl := &s.Players[p]
		for i := range pl.Hand {
			total++
			if pl.KnownBy[i].Has(viewpoint) {
				known++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(known) / float64(total)
}

// ChampionByScores picks the champion: the non-caller coalition member
// with the strictly lowest estimated score; ties resolve to the first in
// player order. The coalition leader is eligible like any member.
func ChampionByScores(s *SimState, scores []float64) (uint8, bool) {
	best := -1
	for p := range s.Players {
		if s.IsCaller(uint8(p)) || !s.Players[p].Coalition {
			continue
		}
		if best < 0 || scores[p] < scores[best] {
			best = p
		}
	}
	if best < 0 {
		return 0, false
	}
	return uint8(best), true
}

// EstimatedScores returns every player's score as seen by viewer.
func EstimatedScores(s *SimState, viewer uint8, unknownValue float64) []float64 {
	scores := make([]float64, len(s.Players))
	for p := range s.Players {
		scores[p] = s.EstimatedScore(viewer, uint8(p), unknownValue)
	}
	return scores
}

// coalitionEval recomputes the champion every call, so the search hedges
// as the designation shifts from turn to turn: 60% champion sub-score,
// 40% average over the remaining members.
func coalitionEval(s *SimState, viewpoint uint8, tun *Tunables) float64 {
	scores := EstimatedScores(s, viewpoint, tun.UnknownCardValue)
	champ, ok := ChampionByScores(s, scores)
	if !ok {
		return normalEval(s, viewpoint, tun)
	}

	champScore := coalitionMemberScore(s, viewpoint, champ, scores, tun)
	otherSum, others := 0.0, 0
	for p := range s.Players {
		m := uint8(p)
		if s.IsCaller(m) || !s.Players[p].Coalition || m == champ {
			continue
		}
		otherSum += coalitionMemberScore(s, viewpoint, m, scores, tun)
		others++
	}
	if others == 0 {
		return clamp01(champScore)
	}
	blend := tun.ChampionBlend*champScore + (1-tun.ChampionBlend)*(otherSum/float64(others))
	return clamp01(blend)
}

func coalitionMemberScore(s *SimState, viewer, member uint8, scores []float64, tun *Tunables) float64 {
	caller := uint8(s.Caller)
	scoreAdv := clamp01(0.5 + (scores[caller]-scores[member])/40)
	cardAdv := clamp01(0.5 + float64(len(s.Players[caller].Hand)-len(s.Players[member].Hand))/10)
	toss := tossPotential(s, viewer, member)
	callerThreat := 1 - clamp01(callerDanger(s, viewer)/3)

	return tun.CoalWScore*scoreAdv +
		tun.CoalWCards*cardAdv +
		tun.CoalWTossIn*toss +
		tun.CoalWCallerThreat*callerThreat
}

// callerDanger counts the caller's known unplayed J/Q/K from the viewer's
// perspective.
func callerDanger(s *SimState, viewer uint8) float64 {
	caller := uint8(s.Caller)
	pl := &s.Players[caller]
	count := 0.0
	for i, c := range pl.Hand {
		if !pl.KnownBy[i].Has(viewer) || c.Played {
			continue
		}
		switch c.Rank {
		case RankJack, RankQueen, RankKing:
			count++
		}
	}
	return count
}
