package notation

import (
	"fmt"
	"strconv"
)

const (
	minMIDI = (int(MinOctave) + 1) * 12  // C0
	maxMIDI = (int(MaxOctave)+1)*12 + 11 // B9
)

// Pitch is a spelled pitch. Two pitches with different spellings may sound the same,
// compare them with Equal.
type Pitch struct {
	Note       NoteName
	Accidental Accidental
	Octave     Octave
}

// NewPitch builds a pitch
func NewPitch(note NoteName, octave Octave, acc Accidental) Pitch {
	return Pitch{Note: note, Accidental: acc, Octave: octave}
}

// raw is the letter offset plus the accidental, in -1..12
func (p Pitch) raw() int {
	return p.Note.Halftone() + p.Accidental.Offset()
}

// HalftoneValue returns the pitch class in 0..11
func (p Pitch) HalftoneValue() int {
	return (p.raw() + 12) % 12
}

// EffectiveOctave accounts for spellings that cross the octave boundary: B#4 sounds in
// octave 5 and Cb4 in octave 3.
func (p Pitch) EffectiveOctave() Octave {
	switch r := p.raw(); {
	case r < 0:
		return p.Octave - 1
	case r >= 12:
		return p.Octave + 1
	default:
		return p.Octave
	}
}

// MIDI returns the MIDI key number, C4 = 60
func (p Pitch) MIDI() int {
	return (int(p.EffectiveOctave())+1)*12 + p.HalftoneValue()
}

// Equal reports enharmonic equality
func (p Pitch) Equal(other Pitch) bool {
	return p.EffectiveOctave() == other.EffectiveOctave() && p.HalftoneValue() == other.HalftoneValue()
}

// MoveHalftoneUp raises the pitch by one halftone, preferring sharps.
// Returns false and leaves p unchanged at the top of the range.
func (p *Pitch) MoveHalftoneUp() bool {
	if p.MIDI() >= maxMIDI {
		return false
	}
	switch p.Accidental {
	case Flat:
		p.Accidental = Natural
	case Natural:
		p.Accidental = Sharp
	case Sharp:
		switch p.Note {
		case E:
			p.Note = F
		case B:
			p.Note = C
			p.Octave++
		default:
			p.Note = p.Note.Next()
			p.Accidental = Natural
		}
	}
	return true
}

// MoveHalftoneDown lowers the pitch by one halftone, preferring flats.
// Returns false and leaves p unchanged at the bottom of the range.
func (p *Pitch) MoveHalftoneDown() bool {
	if p.MIDI() <= minMIDI {
		return false
	}
	switch p.Accidental {
	case Sharp:
		p.Accidental = Natural
	case Natural:
		p.Accidental = Flat
	case Flat:
		switch p.Note {
		case F:
			p.Note = E
		case C:
			p.Note = B
			p.Octave--
		default:
			p.Note = p.Note.Prev()
			p.Accidental = Natural
		}
	}
	return true
}

// MoveToneUp raises the pitch by two halftones
func (p *Pitch) MoveToneUp() bool {
	if p.MIDI()+2 > maxMIDI {
		return false
	}
	p.MoveHalftoneUp()
	p.MoveHalftoneUp()
	return true
}

// MoveToneDown lowers the pitch by two halftones
func (p *Pitch) MoveToneDown() bool {
	if p.MIDI()-2 < minMIDI {
		return false
	}
	p.MoveHalftoneDown()
	p.MoveHalftoneDown()
	return true
}

// MoveHalftones applies n halftone moves, up for positive n. It stops at the range edge
// and returns the number of moves made.
func (p *Pitch) MoveHalftones(n int) int {
	moved := 0
	for ; n > 0 && p.MoveHalftoneUp(); n-- {
		moved++
	}
	for ; n < 0 && p.MoveHalftoneDown(); n++ {
		moved++
	}
	return moved
}

func (p Pitch) String() string {
	return p.Note.String() + p.Accidental.String() + strconv.Itoa(int(p.Octave))
}

// ParsePitch parses "C4", "F#3" or "Bb5"
func ParsePitch(s string) (Pitch, error) {
	note, acc, rest, err := parseSpelling(s)
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid pitch %q: %w", s, err)
	}
	o, err := strconv.Atoi(rest)
	if err != nil {
		return Pitch{}, fmt.Errorf("invalid octave in pitch %q", s)
	}
	p := NewPitch(note, Octave(o), acc)
	if !p.Octave.Valid() || p.MIDI() < minMIDI || p.MIDI() > maxMIDI {
		return Pitch{}, fmt.Errorf("pitch %q out of range %s..%s", s,
			NewPitch(C, MinOctave, Natural), NewPitch(B, MaxOctave, Natural))
	}
	return p, nil
}
