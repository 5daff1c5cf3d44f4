package compiler

import (
	"sort"

	"github.com/tubone24/midi-mcp-server/pkg/smf"
)

// sequenceTrack expands one normalized track into its ordered event list:
// meta events at tick 0, a NoteOn/NoteOff pair per note, and a terminal
// EndOfTrack. onNote, when non-nil, is called once per sequenced note.
//
// A track with zero notes still gets its meta events and EndOfTrack.
func sequenceTrack(c *Composition, trackIndex int, onNote func()) []smf.Event {
	track := &c.Tracks[trackIndex]

	var events []smf.Event
	if track.Name != "" {
		events = append(events, smf.Event{Kind: smf.TrackName, Name: track.Name})
	}
	events = append(events, smf.Event{Kind: smf.Tempo, BPM: c.BPM})
	events = append(events, smf.Event{
		Kind:        smf.TimeSignature,
		Numerator:   uint8(clamp(c.TimeSignature.Numerator, 1, 255)),
		Denominator: uint8(clamp(c.TimeSignature.Denominator, 1, 255)),
	})
	if track.Instrument != nil {
		events = append(events, smf.Event{
			Kind:    smf.ProgramChange,
			Channel: uint8(trackIndex % 16),
			Program: uint8(*track.Instrument),
		})
	}

	for ni := range track.Notes {
		note := &track.Notes[ni]
		start := startTick(note, c.BPM)
		end := start + DurationTicks(note.Duration.Canonical())
		channel := uint8(*note.Channel)
		pitch := uint8(note.Pitch.Value)

		events = append(events,
			smf.Event{Tick: start, Kind: smf.NoteOn, Channel: channel, Note: pitch, Velocity: uint8(*note.Velocity)},
			smf.Event{Tick: end, Kind: smf.NoteOff, Channel: channel, Note: pitch, Velocity: 0},
		)
		if onNote != nil {
			onNote()
		}
	}

	sortEvents(events)

	last := 0
	if len(events) > 0 {
		last = events[len(events)-1].Tick
	}
	return append(events, smf.Event{Tick: last, Kind: smf.EndOfTrack})
}

// eventRank breaks ties between events at the same tick: meta events come
// first, then NoteOff before NoteOn so a retriggered pitch never
// double-sounds.
func eventRank(e smf.Event) int {
	switch e.Kind {
	case smf.NoteOff:
		return 1
	case smf.NoteOn:
		return 2
	case smf.EndOfTrack:
		return 3
	}
	return 0
}

// sortEvents orders events by ascending tick with the rank tie-break. The
// sort is stable, so identical input always yields identical output.
func sortEvents(events []smf.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Tick != events[j].Tick {
			return events[i].Tick < events[j].Tick
		}
		return eventRank(events[i]) < eventRank(events[j])
	})
}
