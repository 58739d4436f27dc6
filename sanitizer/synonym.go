package sanitizer

import "github.com/Conceptual-Machines/magda-lsystem-go/notation"

func key(n notation.NoteName, acc notation.Accidental, mode notation.Mode) notation.KeySignature {
	return notation.KeySignature{Note: n, Accidental: acc, Mode: mode}
}

// SharpKeys are keys whose notes are spelled with sharps
var SharpKeys = []notation.KeySignature{
	key(notation.C, notation.Natural, notation.Major),
	key(notation.G, notation.Natural, notation.Major),
	key(notation.D, notation.Natural, notation.Major),
	key(notation.A, notation.Natural, notation.Major),
	key(notation.E, notation.Natural, notation.Major),
	key(notation.B, notation.Natural, notation.Major),
	key(notation.E, notation.Sharp, notation.Major),
	key(notation.B, notation.Sharp, notation.Major),
	key(notation.F, notation.Flat, notation.Major),
	key(notation.C, notation.Sharp, notation.Major),

	key(notation.A, notation.Natural, notation.Minor),
	key(notation.E, notation.Natural, notation.Minor),
	key(notation.B, notation.Natural, notation.Minor),
	key(notation.F, notation.Sharp, notation.Minor),
	key(notation.C, notation.Sharp, notation.Minor),
	key(notation.G, notation.Sharp, notation.Minor),
	key(notation.D, notation.Sharp, notation.Minor),
	key(notation.A, notation.Sharp, notation.Minor),
}

// FlatKeys are keys whose notes are spelled with flats
var FlatKeys = []notation.KeySignature{
	key(notation.F, notation.Natural, notation.Major),
	key(notation.B, notation.Flat, notation.Major),
	key(notation.E, notation.Flat, notation.Major),
	key(notation.A, notation.Flat, notation.Major),
	key(notation.D, notation.Flat, notation.Major),
	key(notation.G, notation.Flat, notation.Major),
	key(notation.C, notation.Flat, notation.Major),
	key(notation.A, notation.Sharp, notation.Major),
	key(notation.D, notation.Sharp, notation.Major),
	key(notation.G, notation.Sharp, notation.Major),
	key(notation.F, notation.Sharp, notation.Major),

	key(notation.D, notation.Natural, notation.Minor),
	key(notation.G, notation.Natural, notation.Minor),
	key(notation.C, notation.Natural, notation.Minor),
	key(notation.F, notation.Natural, notation.Minor),
	key(notation.B, notation.Flat, notation.Minor),
	key(notation.E, notation.Flat, notation.Minor),
	key(notation.A, notation.Flat, notation.Minor),
}

// PreferredAccidental returns the accidental a key spells with. The second result is
// false for keys in neither table.
func PreferredAccidental(k notation.KeySignature) (notation.Accidental, bool) {
	for _, s := range SharpKeys {
		if s == k {
			return notation.Sharp, true
		}
	}
	for _, f := range FlatKeys {
		if f == k {
			return notation.Flat, true
		}
	}
	return notation.Natural, false
}

// ToPreferredSynonym respells p. With a sharp preference flats become the sharp (or natural)
// below, with a flat preference sharps become the flat (or natural) above. Without a
// preference only the four white-key spellings E#, Fb, B# and Cb are normalized.
// The sounding pitch never changes.
func ToPreferredSynonym(p notation.Pitch, pref notation.Accidental, hasPref bool) notation.Pitch {
	var out notation.Pitch
	switch {
	case hasPref && pref == notation.Sharp:
		if p.Accidental != notation.Flat {
			return p
		}
		switch p.Note {
		case notation.C:
			out = notation.NewPitch(notation.B, p.Octave-1, notation.Natural)
		case notation.F:
			out = notation.NewPitch(notation.E, p.Octave, notation.Natural)
		default:
			out = notation.NewPitch(p.Note.Prev(), p.Octave, notation.Sharp)
		}
	case hasPref && pref == notation.Flat:
		if p.Accidental != notation.Sharp {
			return p
		}
		switch p.Note {
		case notation.B:
			out = notation.NewPitch(notation.C, p.Octave+1, notation.Natural)
		case notation.E:
			out = notation.NewPitch(notation.F, p.Octave, notation.Natural)
		default:
			out = notation.NewPitch(p.Note.Next(), p.Octave, notation.Flat)
		}
	default:
		switch {
		case p.Note == notation.E && p.Accidental == notation.Sharp:
			out = notation.NewPitch(notation.F, p.Octave, notation.Natural)
		case p.Note == notation.F && p.Accidental == notation.Flat:
			out = notation.NewPitch(notation.E, p.Octave, notation.Natural)
		case p.Note == notation.B && p.Accidental == notation.Sharp:
			out = notation.NewPitch(notation.C, p.Octave+1, notation.Natural)
		case p.Note == notation.C && p.Accidental == notation.Flat:
			out = notation.NewPitch(notation.B, p.Octave-1, notation.Natural)
		default:
			return p
		}
	}
	if !out.Octave.Valid() {
		return p
	}
	return out
}
