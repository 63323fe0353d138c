package engine

// Tunables collects the heuristic constants of the move generator and the
// evaluator. They are configuration, not contract: difficulty profiles may
// override any of them.
type Tunables struct {
	// Vinto call gating.
	VintoBaseMargin  float64 // required lead over the opponent average
	VintoMidDanger   int     // known opponent J/Q/K count raising the margin by VintoMidBump
	VintoHighDanger  int     // count raising it by VintoHighBump and requiring a clear lead
	VintoMidBump     float64
	VintoHighBump    float64
	VintoClearLead   float64 // required lead over the single best opponent at high danger

	// Move generation.
	HighCardCutoff    int // own known card worth giving away in a blind swap
	LowCardCutoff     int // opponent card worth stealing
	MaxSwapCandidates int // cap on emitted swap pairs per action
	AceScoreGap       float64 // minimum estimated deficit before spending an Ace

	// Mean value of a card nobody has seen, used wherever an estimate is
	// needed without a live remaining-distribution.
	UnknownCardValue float64

	// Evaluator weights, normal play.
	WTossIn      float64
	WPosition    float64
	WActionValue float64
	WInformation float64
	WThreat      float64

	// Evaluator weights, coalition member sub-score.
	CoalWScore        float64
	CoalWCards        float64
	CoalWTossIn       float64
	CoalWCallerThreat float64

	// Champion share of the blended coalition evaluation.
	ChampionBlend float64
}

// DefaultTunables returns the tuned defaults.
func DefaultTunables() Tunables {
	return Tunables{
		VintoBaseMargin: 5,
		VintoMidDanger:  2,
		VintoHighDanger: 4,
		VintoMidBump:    3,
		VintoHighBump:   5,
		VintoClearLead:  2,

		HighCardCutoff:    8,
		LowCardCutoff:     5,
		MaxSwapCandidates: 8,
		AceScoreGap:       4,

		// Full deck totals 362 points over 54 cards.
		UnknownCardValue: 6.7,

		WTossIn:      0.30,
		WPosition:    0.25,
		WActionValue: 0.20,
		WInformation: 0.15,
		WThreat:      0.10,

		CoalWScore:        0.40,
		CoalWCards:        0.30,
		CoalWTossIn:       0.20,
		CoalWCallerThreat: 0.10,

		ChampionBlend: 0.60,
	}
}
