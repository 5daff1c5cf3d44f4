// Package smf serializes sequenced MIDI events into the Standard MIDI File
// binary container format (header chunk plus one track chunk per track).
package smf

// EventKind identifies the variant of an Event.
type EventKind int

const (
	TrackName EventKind = iota
	Tempo
	TimeSignature
	ProgramChange
	NoteOn
	NoteOff
	EndOfTrack
)

func (k EventKind) String() string {
	switch k {
	case TrackName:
		return "TrackName"
	case Tempo:
		return "Tempo"
	case TimeSignature:
		return "TimeSignature"
	case ProgramChange:
		return "ProgramChange"
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case EndOfTrack:
		return "EndOfTrack"
	}
	return "Unknown"
}

// Event is a single MIDI event at an absolute tick position within its
// track. Only the fields relevant to the Kind are consulted when encoding.
type Event struct {
	Tick int
	Kind EventKind

	// Channel events (ProgramChange, NoteOn, NoteOff)
	Channel  uint8 // 0-15
	Note     uint8 // 0-127
	Velocity uint8 // 0-127
	Program  uint8 // 0-127

	// Meta event payloads
	Name        string  // TrackName
	BPM         float64 // Tempo, quarter notes per minute
	Numerator   uint8   // TimeSignature
	Denominator uint8   // TimeSignature
}
