package smf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	gosmf "gitlab.com/gomidi/midi/v2/smf"
)

// TrackSummary describes one track of a parsed SMF stream.
type TrackSummary struct {
	Name      string
	Program   int // -1 when the track carries no program change
	NoteCount int
	Events    int
	LastTick  uint32
}

// Summary describes a parsed SMF stream.
type Summary struct {
	NumTracks       int
	TicksPerQuarter uint16
	BPM             float64
	Numerator       uint8
	Denominator     uint8
	Tracks          []TrackSummary
}

// Summarize parses SMF bytes with an independent decoder and reports what
// they contain. It deliberately does not share code with Encode, so a
// summary of freshly encoded bytes is a genuine cross-check.
func Summarize(data []byte) (*Summary, error) {
	s, err := gosmf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI data: %w", err)
	}

	sum := &Summary{
		NumTracks:       len(s.Tracks),
		TicksPerQuarter: 128,
		BPM:             120,
		Numerator:       4,
		Denominator:     4,
	}
	if mt, ok := s.TimeFormat.(gosmf.MetricTicks); ok {
		sum.TicksPerQuarter = mt.Resolution()
	}

	for _, track := range s.Tracks {
		ts := TrackSummary{Program: -1}
		var absTick uint32

		for _, ev := range track {
			absTick += ev.Delta
			ts.Events++

			var name string
			if ev.Message.GetMetaTrackName(&name) {
				ts.Name = name
			}
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				sum.BPM = bpm
			}
			// GetMetaTimeSig already expands the stored power-of-two
			// exponent into the real denominator.
			var num, denom, clocks, thirtySeconds uint8
			if ev.Message.GetMetaTimeSig(&num, &denom, &clocks, &thirtySeconds) {
				sum.Numerator = num
				sum.Denominator = denom
			}
			var channel, program uint8
			if ev.Message.GetProgramChange(&channel, &program) {
				ts.Program = int(program)
			}
			var note, velocity uint8
			if ev.Message.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
				ts.NoteCount++
			}
		}

		ts.LastTick = absTick
		sum.Tracks = append(sum.Tracks, ts)
	}

	return sum, nil
}

// ReadFile parses an SMF file from disk and summarizes it.
func ReadFile(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Summarize(data)
}

func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d track(s), %d ticks/quarter\n", s.NumTracks, s.TicksPerQuarter)
	fmt.Fprintf(&b, "Tempo: %.1f BPM, time signature %d/%d\n", s.BPM, s.Numerator, s.Denominator)
	for i, t := range s.Tracks {
		name := t.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(&b, "Track %d: %s: %d events, %d notes", i, name, t.Events, t.NoteCount)
		if t.Program >= 0 {
			fmt.Fprintf(&b, ", program %d", t.Program)
		}
		fmt.Fprintf(&b, ", ends at tick %d\n", t.LastTick)
	}
	return b.String()
}
