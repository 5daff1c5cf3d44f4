package compiler

import (
	"math"
	"strconv"
)

// startTick returns the absolute tick for a note's position.
//
// The two position conventions use different formulas and are deliberately
// not unified. Beat-indexed notes scale inversely with tempo, which is not
// how ticks normally behave at a fixed PPQN, but it is the observed
// behavior beat-indexed files depend on; see DESIGN.md before touching
// either formula.
func startTick(n *Note, bpm float64) int {
	if n.Beat != nil {
		return clampTick(math.Round((*n.Beat - 1) * PPQN / bpm))
	}
	var st float64
	if n.StartTime != nil {
		st = *n.StartTime
	}
	return clampTick(math.Round(st * 0.5 * PPQN / 64))
}

// DurationTicks converts a symbolic note length into a tick span at the
// fixed PPQN resolution: "4" is one quarter note (PPQN ticks), "8" half of
// that, and so on.
func DurationTicks(symbol string) int {
	den, err := strconv.Atoi(symbol)
	if err != nil || den <= 0 {
		den = 4
	}
	return int(math.Round(PPQN * 4 / float64(den)))
}

// clampTick floors negative positions to zero; tick values are never
// negative.
func clampTick(f float64) int {
	if f < 0 {
		return 0
	}
	return int(f)
}
