package smf

import (
	"fmt"
	"math"
)

const (
	// FormatMultiTrack is SMF format 1: one or more simultaneous tracks.
	FormatMultiTrack = 1

	headerChunkSize = 6
	maxTracks       = 0xFFFF
)

// Channel and meta event status bytes.
const (
	statusNoteOff       = 0x80
	statusNoteOn        = 0x90
	statusProgramChange = 0xC0

	metaMarker     = 0xFF
	metaTrackName  = 0x03
	metaEndOfTrack = 0x2F
	metaSetTempo   = 0x51
	metaTimeSig    = 0x58
)

// InvariantError reports an event that violates the encoder's input
// contract. It indicates a bug upstream of the encoder rather than bad user
// input: the normalizer is responsible for keeping every field in range
// before events reach this package.
type InvariantError struct {
	Reason string
}

func (e *InvariantError) Error() string {
	return "smf: encoding invariant violated: " + e.Reason
}

// File is an in-memory SMF ready to be serialized. Tracks are encoded in
// slice order, each as its own MTrk chunk. Every track must end with an
// EndOfTrack event and hold its events in non-decreasing tick order.
type File struct {
	TicksPerQuarter uint16
	Tracks          [][]Event
}

// Encode serializes the file into the SMF byte layout. Encoding is a pure
// function of the event lists: identical input always yields an identical
// byte stream.
func (f *File) Encode() ([]byte, error) {
	if f.TicksPerQuarter == 0 || f.TicksPerQuarter&0x8000 != 0 {
		return nil, &InvariantError{Reason: fmt.Sprintf("bad tick resolution %d", f.TicksPerQuarter)}
	}
	if len(f.Tracks) > maxTracks {
		return nil, &InvariantError{Reason: fmt.Sprintf("too many tracks (%d)", len(f.Tracks))}
	}

	out := append([]byte(nil), 'M', 'T', 'h', 'd')
	out = appendUint32(out, headerChunkSize)
	out = appendUint16(out, FormatMultiTrack)
	out = appendUint16(out, uint16(len(f.Tracks)))
	out = appendUint16(out, f.TicksPerQuarter)

	for i, track := range f.Tracks {
		chunk, err := encodeTrack(track)
		if err != nil {
			return nil, fmt.Errorf("failed to encode track %d: %w", i, err)
		}
		out = append(out, 'M', 'T', 'r', 'k')
		out = appendUint32(out, uint32(len(chunk)))
		out = append(out, chunk...)
	}

	return out, nil
}

// encodeTrack serializes one track's events as (delta-time, event-bytes)
// pairs, without the surrounding MTrk chunk header.
func encodeTrack(events []Event) ([]byte, error) {
	if len(events) == 0 || events[len(events)-1].Kind != EndOfTrack {
		return nil, &InvariantError{Reason: "track does not end with EndOfTrack"}
	}

	var out []byte
	prevTick := 0
	for i, ev := range events {
		if ev.Tick < 0 {
			return nil, &InvariantError{Reason: fmt.Sprintf("event %d has negative tick %d", i, ev.Tick)}
		}
		if ev.Tick < prevTick {
			return nil, &InvariantError{Reason: fmt.Sprintf("event %d at tick %d precedes tick %d", i, ev.Tick, prevTick)}
		}
		out = appendVarLen(out, uint32(ev.Tick-prevTick))
		prevTick = ev.Tick

		body, err := encodeEvent(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, body...)
	}
	return out, nil
}

func encodeEvent(ev Event) ([]byte, error) {
	switch ev.Kind {
	case TrackName:
		body := []byte{metaMarker, metaTrackName}
		body = appendVarLen(body, uint32(len(ev.Name)))
		return append(body, ev.Name...), nil

	case Tempo:
		if ev.BPM <= 0 {
			return nil, &InvariantError{Reason: fmt.Sprintf("non-positive tempo %g", ev.BPM)}
		}
		usPerQuarter := uint32(math.Round(60_000_000 / ev.BPM))
		if usPerQuarter > 0xFFFFFF {
			usPerQuarter = 0xFFFFFF
		}
		return []byte{
			metaMarker, metaSetTempo, 0x03,
			byte(usPerQuarter >> 16),
			byte(usPerQuarter >> 8),
			byte(usPerQuarter),
		}, nil

	case TimeSignature:
		if ev.Numerator == 0 || ev.Denominator == 0 {
			return nil, &InvariantError{Reason: "zero time signature field"}
		}
		// The denominator is stored as a power of two (4 = 2^2, so we store
		// 2); a non-power-of-two denominator floors to the nearest power
		// below it. 24 MIDI clocks per metronome click and 8 thirty-second
		// notes per quarter are the conventional trailing bytes.
		denomPower := uint8(0)
		for d := ev.Denominator; d > 1; d /= 2 {
			denomPower++
		}
		return []byte{metaMarker, metaTimeSig, 0x04, ev.Numerator, denomPower, 24, 8}, nil

	case ProgramChange:
		if err := checkChannel(ev.Channel); err != nil {
			return nil, err
		}
		if err := checkData("program", ev.Program); err != nil {
			return nil, err
		}
		return []byte{statusProgramChange | ev.Channel, ev.Program}, nil

	case NoteOn, NoteOff:
		if err := checkChannel(ev.Channel); err != nil {
			return nil, err
		}
		if err := checkData("note", ev.Note); err != nil {
			return nil, err
		}
		if err := checkData("velocity", ev.Velocity); err != nil {
			return nil, err
		}
		status := byte(statusNoteOn)
		if ev.Kind == NoteOff {
			status = statusNoteOff
		}
		return []byte{status | ev.Channel, ev.Note, ev.Velocity}, nil

	case EndOfTrack:
		return []byte{metaMarker, metaEndOfTrack, 0x00}, nil
	}

	return nil, &InvariantError{Reason: fmt.Sprintf("unknown event kind %d", ev.Kind)}
}

func checkChannel(ch uint8) error {
	if ch > 15 {
		return &InvariantError{Reason: fmt.Sprintf("channel %d out of range", ch)}
	}
	return nil
}

func checkData(field string, v uint8) error {
	if v > 127 {
		return &InvariantError{Reason: fmt.Sprintf("%s %d out of range", field, v)}
	}
	return nil
}

// appendVarLen appends v as an SMF variable-length quantity: base-128
// groups, most significant first, with the high bit set on every byte but
// the last.
func appendVarLen(b []byte, v uint32) []byte {
	groups := [5]byte{byte(v & 0x7F)}
	n := 1
	for v >>= 7; v > 0; v >>= 7 {
		groups[n] = byte(v & 0x7F)
		n++
	}
	for i := n - 1; i > 0; i-- {
		b = append(b, groups[i]|0x80)
	}
	return append(b, groups[0])
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}
