package notation

import (
	"fmt"
	"strconv"
	"strings"
)

// NoteName is one of the seven natural note letters, C through B
type NoteName int

const (
	C NoteName = iota
	D
	E
	F
	G
	A
	B
)

var noteNames = [...]string{"C", "D", "E", "F", "G", "A", "B"}

// Halftone offsets of the natural letters within an octave
var noteHalftones = [...]int{0, 2, 4, 5, 7, 9, 11}

func (n NoteName) String() string {
	if n < C || n > B {
		return fmt.Sprintf("NoteName(%d)", int(n))
	}
	return noteNames[n]
}

// Next returns the following letter, wrapping B to C
func (n NoteName) Next() NoteName {
	return (n + 1) % 7
}

// Prev returns the preceding letter, wrapping C to B
func (n NoteName) Prev() NoteName {
	return (n + 6) % 7
}

// Halftone returns the natural letter's offset from C
func (n NoteName) Halftone() int {
	return noteHalftones[n]
}

// ParseNoteName parses a single letter, case-insensitive
func ParseNoteName(s string) (NoteName, error) {
	for i, name := range noteNames {
		if strings.EqualFold(s, name) {
			return NoteName(i), nil
		}
	}
	return C, fmt.Errorf("invalid note name: %q", s)
}

// Accidental alters a letter by a halftone. The zero value is Natural.
type Accidental int

const (
	Natural Accidental = iota
	Sharp
	Flat
)

// Offset returns the halftone shift applied by the accidental
func (a Accidental) Offset() int {
	switch a {
	case Sharp:
		return 1
	case Flat:
		return -1
	default:
		return 0
	}
}

func (a Accidental) String() string {
	switch a {
	case Sharp:
		return "#"
	case Flat:
		return "b"
	default:
		return ""
	}
}

// Octave is the scientific octave number
type Octave int

const (
	MinOctave Octave = 0
	MaxOctave Octave = 9
)

// Valid reports whether the octave lies in the supported range
func (o Octave) Valid() bool {
	return o >= MinOctave && o <= MaxOctave
}

// Duration is a note value denominator: 1 is a whole note, 4 a quarter, 128 the shortest
type Duration int

const (
	Whole               Duration = 1
	Half                Duration = 2
	Quarter             Duration = 4
	Eighth              Duration = 8
	Sixteenth           Duration = 16
	ThirtySecond        Duration = 32
	SixtyFourth         Duration = 64
	HundredTwentyEighth Duration = 128

	// Shortest is the smallest representable value
	Shortest = HundredTwentyEighth
)

// Valid reports whether d is a power of two between 1 and 128
func (d Duration) Valid() bool {
	return d >= Whole && d <= Shortest && d&(d-1) == 0
}

// Halve returns the next shorter value. At 1/128 it returns d unchanged and false.
func (d Duration) Halve() (Duration, bool) {
	if d >= Shortest {
		return d, false
	}
	return d * 2, true
}

// Value128 returns the length in 128th notes
func (d Duration) Value128() int {
	return int(Shortest / d)
}

func (d Duration) String() string {
	return strconv.Itoa(int(d))
}

// ParseDuration parses a denominator such as "4" or "16"
func ParseDuration(s string) (Duration, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d := Duration(n)
	if !d.Valid() {
		return 0, fmt.Errorf("invalid duration %q: must be a power of two between 1 and %d", s, Shortest)
	}
	return d, nil
}

// Mode of a key signature
type Mode int

const (
	Major Mode = iota
	Minor
)

func (m Mode) String() string {
	if m == Minor {
		return "minor"
	}
	return "major"
}

// KeySignature names the tonic and mode of a piece
type KeySignature struct {
	Note       NoteName
	Accidental Accidental
	Mode       Mode
}

// Halftone returns the tonic's offset from C in 0..11
func (k KeySignature) Halftone() int {
	return (k.Note.Halftone() + k.Accidental.Offset() + 12) % 12
}

func (k KeySignature) String() string {
	return k.Note.String() + k.Accidental.String() + " " + k.Mode.String()
}

// ParseKeySignature parses "D", "Eb minor" or "F# major". Mode defaults to major.
func ParseKeySignature(s string) (KeySignature, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return KeySignature{}, fmt.Errorf("invalid key signature: %q", s)
	}
	note, acc, rest, err := parseSpelling(fields[0])
	if err != nil {
		return KeySignature{}, fmt.Errorf("invalid key signature %q: %w", s, err)
	}
	if rest != "" {
		return KeySignature{}, fmt.Errorf("invalid key signature: %q", s)
	}
	key := KeySignature{Note: note, Accidental: acc, Mode: Major}
	if len(fields) == 2 {
		switch strings.ToLower(fields[1]) {
		case "major", "maj":
			key.Mode = Major
		case "minor", "min", "m":
			key.Mode = Minor
		default:
			return KeySignature{}, fmt.Errorf("invalid mode %q in key signature %q", fields[1], s)
		}
	}
	return key, nil
}

// parseSpelling reads a letter and an optional accidental and returns the remainder
func parseSpelling(s string) (NoteName, Accidental, string, error) {
	if s == "" {
		return C, Natural, "", fmt.Errorf("empty note")
	}
	note, err := ParseNoteName(s[:1])
	if err != nil {
		return C, Natural, "", err
	}
	rest := s[1:]
	acc := Natural
	if rest != "" {
		switch rest[0] {
		case '#':
			acc = Sharp
			rest = rest[1:]
		case 'b':
			acc = Flat
			rest = rest[1:]
		}
	}
	return note, acc, rest, nil
}

// TimeSignature is Beats beats of BeatUnit each
type TimeSignature struct {
	Beats    int
	BeatUnit Duration
}

// CommonTime returns 4/4
func CommonTime() TimeSignature {
	return TimeSignature{Beats: 4, BeatUnit: Quarter}
}

// BarValue128 returns the length of one bar in 128th notes
func (t TimeSignature) BarValue128() int {
	return t.Beats * t.BeatUnit.Value128()
}

func (t TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", t.Beats, t.BeatUnit)
}

// ParseTimeSignature parses "3/4"
func ParseTimeSignature(s string) (TimeSignature, error) {
	beats, unit, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return TimeSignature{}, fmt.Errorf("invalid time signature: %q", s)
	}
	n, err := strconv.Atoi(beats)
	if err != nil || n <= 0 {
		return TimeSignature{}, fmt.Errorf("invalid beat count in time signature %q", s)
	}
	d, err := ParseDuration(unit)
	if err != nil {
		return TimeSignature{}, fmt.Errorf("invalid time signature %q: %w", s, err)
	}
	return TimeSignature{Beats: n, BeatUnit: d}, nil
}

// Clef of a stave
type Clef int

const (
	Treble Clef = iota
	Bass
)

func (c Clef) String() string {
	if c == Bass {
		return "bass"
	}
	return "treble"
}

// ParseClef parses "treble" or "bass"
func ParseClef(s string) (Clef, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "treble", "g":
		return Treble, nil
	case "bass", "f":
		return Bass, nil
	default:
		return Treble, fmt.Errorf("invalid clef: %q", s)
	}
}

// Tempo is BPM beats of BeatUnit per minute
type Tempo struct {
	BeatUnit Duration
	BPM      int
}

// DefaultTempo is a quarter at 120
func DefaultTempo() Tempo {
	return Tempo{BeatUnit: Quarter, BPM: 120}
}

func (t Tempo) String() string {
	return fmt.Sprintf("%d = %d", t.BeatUnit, t.BPM)
}
