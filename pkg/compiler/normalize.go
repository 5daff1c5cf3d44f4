package compiler

import (
	"encoding/json"
	"errors"
	"os"
)

// ParseJSON decodes a composition from JSON text. Structural problems are
// reported as MalformedInput; typed errors raised by the field decoders
// (bad pitch names and the like) pass through unchanged.
func ParseJSON(data []byte) (*Composition, error) {
	var c Composition
	if err := json.Unmarshal(data, &c); err != nil {
		var malformed *MalformedInputError
		var unsupported *UnsupportedValueError
		if errors.As(err, &malformed) || errors.As(err, &unsupported) {
			return nil, err
		}
		return nil, &MalformedInputError{Reason: err.Error()}
	}
	return &c, nil
}

// LoadFile reads a composition from a JSON file.
func LoadFile(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return ParseJSON(data)
}

// Normalize validates the composition and canonicalizes it in place:
//
//   - bpm falls back to the legacy tempo alias; missing or non-positive
//     tempo fails.
//   - The time signature defaults to 4/4; non-positive fields fail.
//   - A note's legacy time field is copied into startTime when startTime is
//     absent, then discarded; startTime wins when both are present.
//   - Durations collapse to their canonical symbol.
//   - Velocity defaults to 100, channel to track-index mod 16; provided
//     channels are reduced mod 16 regardless of magnitude.
//   - Pitch, velocity and instrument are clamped to 0-127.
//
// Normalize performs no I/O and is idempotent. After it returns nil the
// composition satisfies every range invariant the encoder asserts.
func (c *Composition) Normalize() error {
	if c.BPM <= 0 {
		if c.Tempo <= 0 {
			return &MalformedInputError{Field: "bpm", Reason: "missing or non-positive tempo"}
		}
		c.BPM = c.Tempo
	}
	c.Tempo = 0

	if c.TimeSignature == nil {
		c.TimeSignature = &TimeSignature{Numerator: 4, Denominator: 4}
	}
	if c.TimeSignature.Numerator <= 0 || c.TimeSignature.Denominator <= 0 {
		return &MalformedInputError{Field: "timeSignature", Reason: "numerator and denominator must be positive"}
	}

	for ti := range c.Tracks {
		track := &c.Tracks[ti]
		if track.Instrument != nil {
			*track.Instrument = clamp(*track.Instrument, 0, 127)
		}

		for ni := range track.Notes {
			note := &track.Notes[ni]

			if note.StartTime == nil && note.Time != nil {
				note.StartTime = note.Time
			}
			note.Time = nil

			note.Duration = DurationOf(note.Duration.Canonical())
			note.Pitch.Value = clamp(note.Pitch.Value, 0, 127)

			if note.Velocity == nil {
				v := DefaultVelocity
				note.Velocity = &v
			} else {
				*note.Velocity = clamp(*note.Velocity, 0, 127)
			}

			if note.Channel == nil {
				ch := ti % 16
				note.Channel = &ch
			} else {
				ch := *note.Channel
				if ch < 0 {
					ch = 0
				}
				*note.Channel = ch % 16
			}
		}
	}

	return nil
}
