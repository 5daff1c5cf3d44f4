// Package compiler turns declarative beat-based compositions into Standard
// MIDI File byte streams: it normalizes loose input into a canonical model,
// converts beat positions into ticks, sequences per-track events and hands
// them to the SMF encoder.
package compiler

import (
	"encoding/json"
	"math"
	"strconv"
)

const (
	// PPQN is the fixed tick resolution, in pulses per quarter note.
	PPQN = 128

	// DefaultVelocity is used when a note carries no velocity.
	DefaultVelocity = 100

	// DefaultDuration is the symbolic quarter note, used when a duration is
	// missing or unrecognized.
	DefaultDuration = "4"
)

// TimeSignature is a musical meter, e.g. 4/4 or 3/4.
type TimeSignature struct {
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

// Composition is a complete piece: tempo, meter and an ordered set of
// tracks. It is built once per compilation from untrusted input, normalized
// in place, and discarded after the bytes are produced.
type Composition struct {
	BPM           float64        `json:"bpm,omitempty"`
	Tempo         float64        `json:"tempo,omitempty"` // legacy alias for bpm
	TimeSignature *TimeSignature `json:"timeSignature,omitempty"`
	Tracks        []Track        `json:"tracks"`
}

// Track is one instrument line. Its index in the composition determines the
// default channel assignment (index mod 16).
type Track struct {
	Name       string `json:"name,omitempty"`
	Instrument *int   `json:"instrument,omitempty"` // General MIDI program number
	Notes      []Note `json:"notes"`
}

// Note is a single pitch with a position and length. Position is either
// beat-indexed (1-based, fractional) or a startTime offset; the two follow
// different tick formulas and are not interchangeable.
type Note struct {
	Pitch     Pitch    `json:"pitch"`
	Beat      *float64 `json:"beat,omitempty"`
	StartTime *float64 `json:"startTime,omitempty"`
	Time      *float64 `json:"time,omitempty"` // legacy alias for startTime
	Duration  Duration `json:"duration,omitempty"`
	Velocity  *int     `json:"velocity,omitempty"`
	Channel   *int     `json:"channel,omitempty"`
}

// Pitch is a MIDI note number. JSON input may give it as a number or as a
// note name such as "C4", "F#3" or "Bb2" (C4 = middle C = 60).
type Pitch struct {
	Value int
	Name  string // original spelling when the input was a note name
}

func (p *Pitch) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return &MalformedInputError{Field: "pitch", Reason: err.Error()}
		}
		v, err := ParseNoteName(name)
		if err != nil {
			return err
		}
		p.Value = v
		p.Name = name
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return &MalformedInputError{Field: "pitch", Reason: "must be a number or a note name"}
	}
	p.Value = int(math.Round(f))
	p.Name = ""
	return nil
}

func (p Pitch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Value)
}

// Semitone offsets of the natural notes from C.
var noteOffsets = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParseNoteName converts a note name like "C4", "F#3" or "Bb2" into a MIDI
// note number (C4 = 60). The octave may be negative: "C-1" is note 0. The
// result is clamped to the 0-127 MIDI range.
func ParseNoteName(name string) (int, error) {
	if len(name) < 2 {
		return 0, &UnsupportedValueError{Field: "pitch", Value: name}
	}

	letter := name[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	semitone, ok := noteOffsets[letter]
	if !ok {
		return 0, &UnsupportedValueError{Field: "pitch", Value: name}
	}

	i := 1
	switch name[i] {
	case '#':
		semitone++
		i++
	case 'b':
		semitone--
		i++
	}

	octave, err := strconv.Atoi(name[i:])
	if err != nil {
		return 0, &UnsupportedValueError{Field: "pitch", Value: name}
	}

	// C-1 = 0, C0 = 12, C4 = 60.
	return clamp((octave+1)*12+semitone, 0, 127), nil
}

// Duration is a symbolic note length from the closed set {"1", "2", "4",
// "8", "16", "32", "64"}, whole note through sixty-fourth note. JSON input
// may give the symbol as a string, a bare number, or a decimal fraction of
// a whole note; Canonical resolves all three.
type Duration struct {
	sym   string
	num   float64
	isNum bool
}

// DurationOf returns the Duration for a symbolic note length.
func DurationOf(symbol string) Duration {
	return Duration{sym: symbol}
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &MalformedInputError{Field: "duration", Reason: err.Error()}
		}
		*d = Duration{sym: s}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return &MalformedInputError{Field: "duration", Reason: "must be a string or a number"}
	}
	*d = Duration{num: f, isNum: true}
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Canonical())
}

// decimalDurations maps fractions of a whole note onto the symbolic set.
var decimalDurations = map[float64]string{
	0.125: "32",
	0.25:  "16",
	0.5:   "8",
	1:     "4",
	2:     "2",
}

var validDurations = map[string]bool{
	"1": true, "2": true, "4": true, "8": true, "16": true, "32": true, "64": true,
}

// Canonical returns the symbolic note length. Decimal input goes through
// the fraction table; anything unrecognized falls back to a quarter note so
// malformed decorative data stays non-fatal.
func (d Duration) Canonical() string {
	if d.isNum {
		if sym, ok := decimalDurations[d.num]; ok {
			return sym
		}
		return DefaultDuration
	}
	if validDurations[d.sym] {
		return d.sym
	}
	return DefaultDuration
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
