// Package lily serializes scores to LilyPond and renders them with the lilypond and
// fluidsynth tools.
package lily

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/magda-lsystem-go/notation"
)

// DefaultVersion is written to the \version statement
const DefaultVersion = "2.24.0"

// baseOctave is the octave LilyPond writes without ticks
const baseOctave = 3

// Element is one token of a LilyPond stave
type Element interface {
	fmt.Stringer
	element()
}

// Clef is \clef
type Clef struct{ Clef notation.Clef }

// Key is \key
type Key struct{ Key notation.KeySignature }

// Time is \time
type Time struct{ Time notation.TimeSignature }

// Tempo is \tempo
type Tempo struct{ Tempo notation.Tempo }

// Note is a single pitched note
type Note struct {
	Pitch    notation.Pitch
	Duration notation.Duration
}

// Chord is <...> with a shared duration
type Chord struct {
	Pitches  []notation.Pitch
	Duration notation.Duration
}

// Rest is r
type Rest struct{ Duration notation.Duration }

// Break is a forced line break
type Break struct{}

func (Clef) element()  {}
func (Key) element()   {}
func (Time) element()  {}
func (Tempo) element() {}
func (Note) element()  {}
func (Chord) element() {}
func (Rest) element()  {}
func (Break) element() {}

func (c Clef) String() string { return `\clef ` + c.Clef.String() }

func (k Key) String() string {
	return fmt.Sprintf(`\key %s \%s`, PitchName(k.Key.Note, k.Key.Accidental), k.Key.Mode)
}

func (t Time) String() string { return `\time ` + t.Time.String() }

func (t Tempo) String() string {
	return fmt.Sprintf(`\tempo %d = %d`, t.Tempo.BeatUnit, t.Tempo.BPM)
}

func (n Note) String() string {
	return pitchToken(n.Pitch) + n.Duration.String()
}

func (c Chord) String() string {
	tokens := make([]string, len(c.Pitches))
	for i, p := range c.Pitches {
		tokens[i] = pitchToken(p)
	}
	return "<" + strings.Join(tokens, " ") + ">" + c.Duration.String()
}

func (r Rest) String() string { return "r" + r.Duration.String() }

func (Break) String() string { return `\break` }

// PitchName returns the Dutch note name: cis, es, bes, fes ...
func PitchName(note notation.NoteName, acc notation.Accidental) string {
	name := strings.ToLower(note.String())
	switch acc {
	case notation.Sharp:
		return name + "is"
	case notation.Flat:
		if note == notation.E || note == notation.A {
			return name + "s"
		}
		return name + "es"
	default:
		return name
	}
}

// OctaveTicks returns the ' or , marks placing octave o relative to octave 3
func OctaveTicks(o notation.Octave) string {
	switch diff := int(o) - baseOctave; {
	case diff > 0:
		return strings.Repeat("'", diff)
	case diff < 0:
		return strings.Repeat(",", -diff)
	default:
		return ""
	}
}

func pitchToken(p notation.Pitch) string {
	return PitchName(p.Note, p.Accidental) + OctaveTicks(p.Octave)
}

// Stave is a \new Staff block
type Stave struct {
	Elements []Element
}

func (s Stave) String() string {
	tokens := make([]string, len(s.Elements))
	for i, e := range s.Elements {
		tokens[i] = e.String()
	}
	return `\new Staff { ` + strings.Join(tokens, " ") + " }"
}

// Header is the optional \header block
type Header struct {
	Title    string
	Composer string
	Arranger string
}

func (h Header) empty() bool {
	return h.Title == "" && h.Composer == "" && h.Arranger == ""
}

// Document is a complete LilyPond source
type Document struct {
	Version string
	Header  Header
	Staves  []Stave
	// MIDI wraps the music in \score with \layout and \midi so lilypond also writes a MIDI file
	MIDI bool
}

func (d *Document) String() string {
	var b strings.Builder
	version := d.Version
	if version == "" {
		version = DefaultVersion
	}
	fmt.Fprintf(&b, "\\version %s\n", strconv.Quote(version))

	if !d.Header.empty() {
		b.WriteString("\\header {\n")
		for _, field := range []struct{ key, value string }{
			{"title", d.Header.Title},
			{"composer", d.Header.Composer},
			{"arranger", d.Header.Arranger},
		} {
			if field.value != "" {
				fmt.Fprintf(&b, "  %s = %s\n", field.key, strconv.Quote(field.value))
			}
		}
		b.WriteString("}\n")
	}

	if d.MIDI {
		b.WriteString("\\score {\n")
	}
	b.WriteString("<<")
	for _, s := range d.Staves {
		b.WriteString("\n")
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	b.WriteString(">>")
	if d.MIDI {
		b.WriteString("\n\\layout { }\n\\midi { }\n}")
	}
	b.WriteString("\n")
	return b.String()
}

// FromScore converts a score. Every notation symbol has a LilyPond counterpart.
func FromScore(score *notation.Score, version string) *Document {
	doc := &Document{
		Version: version,
		Header: Header{
			Title:    score.Info.Name,
			Composer: score.Info.Author,
			Arranger: score.Info.Transcriber,
		},
		MIDI: true,
	}
	for _, stave := range score.Staves {
		doc.Staves = append(doc.Staves, fromStave(stave))
	}
	return doc
}

func fromStave(stave notation.Stave) Stave {
	elems := make([]Element, 0, len(stave.Symbols))
	for _, sym := range stave.Symbols {
		switch s := sym.(type) {
		case notation.Clef:
			elems = append(elems, Clef{Clef: s})
		case notation.KeySignature:
			elems = append(elems, Key{Key: s})
		case notation.TimeSignature:
			elems = append(elems, Time{Time: s})
		case notation.Tempo:
			elems = append(elems, Tempo{Tempo: s})
		case notation.Note:
			elems = append(elems, Note{Pitch: s.Pitch, Duration: s.Duration})
		case notation.Chord:
			elems = append(elems, Chord{Pitches: append([]notation.Pitch(nil), s.Pitches...), Duration: s.Duration})
		case notation.Rest:
			elems = append(elems, Rest{Duration: s.Duration})
		}
	}
	return Stave{Elements: elems}
}
