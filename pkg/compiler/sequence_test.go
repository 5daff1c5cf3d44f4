package compiler

import (
	"testing"

	"github.com/tubone24/midi-mcp-server/pkg/smf"
)

func normalized(t *testing.T, c *Composition) *Composition {
	t.Helper()
	if err := c.Normalize(); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return c
}

func kinds(events []smf.Event) []smf.EventKind {
	out := make([]smf.EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestSequenceEmptyTrack(t *testing.T) {
	c := normalized(t, &Composition{BPM: 120, Tracks: []Track{
		{Name: "Drums", Instrument: intPtr(9)},
	}})

	events := sequenceTrack(c, 0, nil)

	expected := []smf.EventKind{smf.TrackName, smf.Tempo, smf.TimeSignature, smf.ProgramChange, smf.EndOfTrack}
	got := kinds(events)
	if len(got) != len(expected) {
		t.Fatalf("event kinds = %v, want %v", got, expected)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("event kinds = %v, want %v", got, expected)
		}
	}
	if events[len(events)-1].Tick != 0 {
		t.Errorf("EndOfTrack tick = %d, want 0", events[len(events)-1].Tick)
	}
}

func TestSequenceUnnamedTrackSkipsTrackName(t *testing.T) {
	c := normalized(t, &Composition{BPM: 120, Tracks: []Track{{}}})
	events := sequenceTrack(c, 0, nil)
	for _, ev := range events {
		if ev.Kind == smf.TrackName {
			t.Error("unnamed track should not emit a TrackName event")
		}
	}
}

func TestSequenceNotePair(t *testing.T) {
	c := normalized(t, &Composition{BPM: 120, Tracks: []Track{{Notes: []Note{
		{Pitch: Pitch{Value: 60}, StartTime: floatPtr(0), Duration: DurationOf("4")},
	}}}})

	events := sequenceTrack(c, 0, nil)

	var on, off *smf.Event
	for i := range events {
		switch events[i].Kind {
		case smf.NoteOn:
			on = &events[i]
		case smf.NoteOff:
			off = &events[i]
		}
	}
	if on == nil || off == nil {
		t.Fatal("missing NoteOn or NoteOff")
	}
	if on.Tick != 0 || on.Note != 60 || on.Velocity != 100 {
		t.Errorf("NoteOn = %+v, want tick 0 note 60 velocity 100", *on)
	}
	if off.Tick != 128 || off.Note != 60 || off.Velocity != 0 {
		t.Errorf("NoteOff = %+v, want tick 128 note 60 velocity 0", *off)
	}
	if last := events[len(events)-1]; last.Kind != smf.EndOfTrack || last.Tick != 128 {
		t.Errorf("terminal event = %+v, want EndOfTrack at tick 128", last)
	}
}

func TestSequenceNoteOffBeforeRetrigger(t *testing.T) {
	// Two quarter notes on the same pitch back to back: the first NoteOff
	// and the second NoteOn share tick 128, and the NoteOff must win.
	c := normalized(t, &Composition{BPM: 120, Tracks: []Track{{Notes: []Note{
		{Pitch: Pitch{Value: 60}, StartTime: floatPtr(0), Duration: DurationOf("4")},
		{Pitch: Pitch{Value: 60}, StartTime: floatPtr(128), Duration: DurationOf("4")},
	}}}})

	events := sequenceTrack(c, 0, nil)

	offIdx, onIdx := -1, -1
	for i, ev := range events {
		if ev.Tick != 128 {
			continue
		}
		switch ev.Kind {
		case smf.NoteOff:
			offIdx = i
		case smf.NoteOn:
			onIdx = i
		}
	}
	if offIdx < 0 || onIdx < 0 {
		t.Fatal("expected both a NoteOff and a NoteOn at tick 128")
	}
	if offIdx > onIdx {
		t.Errorf("NoteOff at index %d after NoteOn at index %d", offIdx, onIdx)
	}
}

func TestSequenceMetaBeforeNotesAtTickZero(t *testing.T) {
	c := normalized(t, &Composition{BPM: 120, Tracks: []Track{{
		Name:       "Piano",
		Instrument: intPtr(0),
		Notes: []Note{
			{Pitch: Pitch{Value: 60}, StartTime: floatPtr(0), Duration: DurationOf("4")},
		},
	}}})

	events := sequenceTrack(c, 0, nil)

	firstNote := -1
	lastMeta := -1
	for i, ev := range events {
		switch ev.Kind {
		case smf.NoteOn, smf.NoteOff:
			if firstNote < 0 {
				firstNote = i
			}
		case smf.TrackName, smf.Tempo, smf.TimeSignature:
			lastMeta = i
		}
	}
	if lastMeta > firstNote {
		t.Errorf("meta event at index %d after first note event at index %d", lastMeta, firstNote)
	}
}

func TestSequenceTicksNonDecreasing(t *testing.T) {
	c := normalized(t, &Composition{BPM: 120, Tracks: []Track{{Notes: []Note{
		{Pitch: Pitch{Value: 64}, StartTime: floatPtr(256), Duration: DurationOf("8")},
		{Pitch: Pitch{Value: 60}, StartTime: floatPtr(0), Duration: DurationOf("1")},
		{Pitch: Pitch{Value: 67}, StartTime: floatPtr(128), Duration: DurationOf("4")},
	}}}})

	events := sequenceTrack(c, 0, nil)

	prev := 0
	for i, ev := range events {
		if ev.Tick < prev {
			t.Fatalf("event %d at tick %d precedes tick %d", i, ev.Tick, prev)
		}
		prev = ev.Tick
	}
}

func TestSequenceProgramChangeChannel(t *testing.T) {
	tracks := make([]Track, 18)
	for i := range tracks {
		tracks[i].Instrument = intPtr(5)
	}
	c := normalized(t, &Composition{BPM: 120, Tracks: tracks})

	for _, ti := range []int{0, 1, 15, 16, 17} {
		events := sequenceTrack(c, ti, nil)
		found := false
		for _, ev := range events {
			if ev.Kind == smf.ProgramChange {
				found = true
				if want := uint8(ti % 16); ev.Channel != want {
					t.Errorf("track %d ProgramChange channel = %d, want %d", ti, ev.Channel, want)
				}
			}
		}
		if !found {
			t.Errorf("track %d missing ProgramChange", ti)
		}
	}
}

func TestSequenceProgressCallback(t *testing.T) {
	c := normalized(t, &Composition{BPM: 120, Tracks: []Track{{Notes: []Note{
		{Pitch: Pitch{Value: 60}, StartTime: floatPtr(0)},
		{Pitch: Pitch{Value: 62}, StartTime: floatPtr(128)},
		{Pitch: Pitch{Value: 64}, StartTime: floatPtr(256)},
	}}}})

	calls := 0
	sequenceTrack(c, 0, func() { calls++ })
	if calls != 3 {
		t.Errorf("onNote called %d times, want 3", calls)
	}
}
