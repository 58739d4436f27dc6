// Package sanitizer normalizes generated scores before engraving: accidentals are respelled
// to match the key and long staves get line breaks.
package sanitizer

import (
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/magda-lsystem-go/notation"
)

var (
	// ErrKeyNotFound means a stave has no key signature
	ErrKeyNotFound = errors.New("cannot find key signature in stave")
	// ErrNoteBeforeKey means a note or chord precedes the first key signature
	ErrNoteBeforeKey = errors.New("found a note that isn't bound by any key")
)

// ScoreSanitizer respells every note to the accidental its key prefers
type ScoreSanitizer struct{}

// Sanitize rewrites the score in place
func (s ScoreSanitizer) Sanitize(score *notation.Score) error {
	for i := range score.Staves {
		if err := s.sanitizeStave(&score.Staves[i]); err != nil {
			return fmt.Errorf("stave %d: %w", i, err)
		}
	}
	return nil
}

func (s ScoreSanitizer) sanitizeStave(stave *notation.Stave) error {
	keyPos := -1
	var current notation.KeySignature
	for i, sym := range stave.Symbols {
		switch v := sym.(type) {
		case notation.Note, notation.Chord:
			return ErrNoteBeforeKey
		case notation.KeySignature:
			keyPos, current = i, v
		}
		if keyPos >= 0 {
			break
		}
	}
	if keyPos < 0 {
		return ErrKeyNotFound
	}

	pref, hasPref := PreferredAccidental(current)
	for i := keyPos + 1; i < len(stave.Symbols); i++ {
		switch v := stave.Symbols[i].(type) {
		case notation.KeySignature:
			pref, hasPref = PreferredAccidental(v)
		case notation.Note:
			v.Pitch = toKeySpelling(v.Pitch, pref, hasPref)
			stave.Symbols[i] = v
		case notation.Chord:
			pitches := make([]notation.Pitch, len(v.Pitches))
			for j, p := range v.Pitches {
				pitches[j] = toKeySpelling(p, pref, hasPref)
			}
			v.Pitches = pitches
			stave.Symbols[i] = v
		}
	}
	return nil
}

// toKeySpelling also folds E# and B# in sharp keys, Fb and Cb in flat keys, onto naturals
func toKeySpelling(p notation.Pitch, pref notation.Accidental, hasPref bool) notation.Pitch {
	if hasPref {
		switch {
		case pref == notation.Sharp && p.Accidental == notation.Sharp && (p.Note == notation.B || p.Note == notation.E):
			return ToPreferredSynonym(p, notation.Natural, false)
		case pref == notation.Flat && p.Accidental == notation.Flat && (p.Note == notation.F || p.Note == notation.C):
			return ToPreferredSynonym(p, notation.Natural, false)
		}
	}
	return ToPreferredSynonym(p, pref, hasPref)
}
